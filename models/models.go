package models

import (
	"encoding/json"
	"fmt"

	"github.com/shopspring/decimal"
)

// TokenIDKey is the field of a token response that carries the token id
const TokenIDKey = "paymentTokenId"

// Card holds raw card data for tokenization. It is never stored by the client.
type Card struct {
	Number   string `json:"number"`
	CVC      string `json:"cvc"`
	ExpMonth string `json:"expMonth"`
	ExpYear  string `json:"expYear"`
}

// Buyer represents the payer attached to a payment
type Buyer struct {
	FirstName  string `json:"firstName"`
	MiddleName string `json:"middleName"`
	LastName   string `json:"lastName"`
	Phone      string `json:"phone"`
	Email      string `json:"email"`
	Address1   string `json:"address1"`
	Address2   string `json:"address2"`
	City       string `json:"city"`
	State      string `json:"state"`
	Zip        string `json:"zip"`
	Country    string `json:"country"`
}

// Amount represents the total charged and its ISO currency code
type Amount struct {
	Total        decimal.Decimal `json:"total"`
	CurrencyCode string          `json:"currencyCode"`
}

// RedirectURLs are the optional pages the gateway sends the buyer to
type RedirectURLs struct {
	Success string `json:"success,omitempty"`
	Failure string `json:"failure,omitempty"`
	Cancel  string `json:"cancel,omitempty"`
}

// IsZero reports whether no redirect URL is set
func (r *RedirectURLs) IsZero() bool {
	return r == nil || (r.Success == "" && r.Failure == "" && r.Cancel == "")
}

// Token is the decoded tokenization response. Only paymentTokenId is relied on;
// everything else the gateway returns is kept as-is.
type Token map[string]any

// ID returns the token id, or false when the token has none
func (t Token) ID() (string, bool) {
	v, ok := t[TokenIDKey]
	if !ok || v == nil {
		return "", false
	}
	var id string
	switch x := v.(type) {
	case string:
		id = x
	case json.Number:
		id = x.String()
	case bool:
		return "", false
	default:
		id = fmt.Sprint(x)
	}
	if id == "" {
		return "", false
	}
	return id, true
}
