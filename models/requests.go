package models

import (
	"encoding/json"

	"github.com/shopspring/decimal"
)

// TokenRequest is the body sent to the payment-tokens endpoint
type TokenRequest struct {
	Card Card `json:"card"`
}

// PayRequest is the body sent to the payments endpoint
type PayRequest struct {
	PaymentTokenID string        `json:"paymentTokenId"`
	TotalAmount    TotalAmount   `json:"totalAmount"`
	Buyer          *BuyerPayload `json:"buyer,omitempty"`
	RedirectURL    *RedirectURLs `json:"redirectUrl,omitempty"`
}

// TotalAmount is the amount as the gateway expects it
type TotalAmount struct {
	Amount   json.Number `json:"amount"`
	Currency string      `json:"currency,omitempty"`
}

// BuyerPayload nests the buyer fields the way the gateway expects them
type BuyerPayload struct {
	FirstName      string          `json:"firstName,omitempty"`
	MiddleName     string          `json:"middleName,omitempty"`
	LastName       string          `json:"lastName,omitempty"`
	Contact        *Contact        `json:"contact,omitempty"`
	BillingAddress *BillingAddress `json:"billingAddress,omitempty"`
}

type Contact struct {
	Phone string `json:"phone,omitempty"`
	Email string `json:"email,omitempty"`
}

type BillingAddress struct {
	Line1       string `json:"line1,omitempty"`
	Line2       string `json:"line2,omitempty"`
	City        string `json:"city,omitempty"`
	State       string `json:"state,omitempty"`
	ZipCode     string `json:"zipCode,omitempty"`
	CountryCode string `json:"countryCode,omitempty"`
}

// NewPayRequest builds the pay body. The total is sent as given. Empty buyer fields and sub-objects are left out,
// as is redirectUrl when no URL is set.
func NewPayRequest(tokenID string, buyer *Buyer, amount Amount, urls *RedirectURLs) *PayRequest {
	req := &PayRequest{
		PaymentTokenID: tokenID,
		TotalAmount: TotalAmount{
			Amount:   formatAmount(amount.Total),
			Currency: amount.CurrencyCode,
		},
		Buyer: newBuyerPayload(buyer),
	}
	if !urls.IsZero() {
		req.RedirectURL = &RedirectURLs{
			Success: urls.Success,
			Failure: urls.Failure,
			Cancel:  urls.Cancel,
		}
	}
	return req
}

// formatAmount renders the total as a JSON number without rounding. Totals with
// at most two fraction digits are padded to two.
func formatAmount(total decimal.Decimal) json.Number {
	if total.Equal(total.Truncate(2)) {
		return json.Number(total.StringFixed(2))
	}
	return json.Number(total.String())
}

func newBuyerPayload(b *Buyer) *BuyerPayload {
	if b == nil {
		return nil
	}
	p := &BuyerPayload{
		FirstName:  b.FirstName,
		MiddleName: b.MiddleName,
		LastName:   b.LastName,
	}
	if b.Phone != "" || b.Email != "" {
		p.Contact = &Contact{Phone: b.Phone, Email: b.Email}
	}
	addr := BillingAddress{
		Line1:       b.Address1,
		Line2:       b.Address2,
		City:        b.City,
		State:       b.State,
		ZipCode:     b.Zip,
		CountryCode: b.Country,
	}
	if addr != (BillingAddress{}) {
		p.BillingAddress = &addr
	}
	return p
}
