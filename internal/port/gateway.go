package port

import (
	"context"
	"errors"
	"fmt"

	"github.com/lamnm/aims-checkout/internal/core/domain"
)

// ErrUnrecognizedResponse marks a gateway response that matches no known
// shape. It is logged for investigation and never retried blindly.
var ErrUnrecognizedResponse = errors.New("unrecognized gateway response")

// PaymentError is an explicit decline or business failure reported by
// the gateway, including signature verification failures.
type PaymentError struct {
	Code    string
	Message string
}

func (e *PaymentError) Error() string {
	return fmt.Sprintf("payment failed: %s (code %s)", e.Message, e.Code)
}

// PaymentGateway abstracts the interbank payment provider so a second
// provider can be added without touching the orchestrator.
type PaymentGateway interface {
	// GenerateURL builds the redirect URL the customer is sent to for
	// an amount (smallest currency unit) and an order description.
	GenerateURL(ctx context.Context, amount int64, description string) (string, error)

	// ParseResponse turns a raw url-encoded callback query into a
	// completed Transaction. Declines and bad signatures surface as
	// *PaymentError; malformed responses wrap ErrUnrecognizedResponse.
	ParseResponse(ctx context.Context, raw string) (domain.Transaction, error)
}
