package gateway

import (
	"errors"
	"fmt"
)

var (
	// ErrInvalidInput is returned before any network call when the card is incomplete
	ErrInvalidInput = errors.New("card information missing")
	// ErrNoToken is returned by Pay when no payment token has been set
	ErrNoToken = errors.New("cannot pay without token")
)

// fallbackBody is carried by a GatewayError when the gateway returned nothing
var fallbackBody = []byte(`{"message":"Something went wrong."}`)

// GatewayError carries the raw gateway response of a failed call
type GatewayError struct {
	Op         string
	StatusCode int
	// Body is the raw response, or {"message":"Something went wrong."} when
	// the gateway returned no body.
	Body []byte
	// Err is the transport error, if any
	Err error
}

func (e *GatewayError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("paymaya %s: %s: %v", e.Op, e.Body, e.Err)
	}
	if e.StatusCode != 0 {
		return fmt.Sprintf("paymaya %s: status %d: %s", e.Op, e.StatusCode, e.Body)
	}
	return fmt.Sprintf("paymaya %s: %s", e.Op, e.Body)
}

func (e *GatewayError) Unwrap() error {
	return e.Err
}

// IsGatewayError reports whether err is or wraps a *GatewayError
func IsGatewayError(err error) bool {
	var gerr *GatewayError
	return errors.As(err, &gerr)
}
