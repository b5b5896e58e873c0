package port

import (
	"context"
	"errors"

	"github.com/lamnm/aims-checkout/internal/core/domain"
)

var ErrItemUnavailable = errors.New("one or more cart items are unavailable")

// Cart is the session cart collaborator. Listing order is the order in
// which items were added.
type Cart interface {
	// ListItems returns the cart lines in insertion order.
	ListItems(ctx context.Context, sessionID string) ([]domain.CartItem, error)

	// TotalAmount returns the sum of line subtotals.
	TotalAmount(ctx context.Context, sessionID string) (int64, error)

	// EmptyCart removes every line from the session cart.
	EmptyCart(ctx context.Context, sessionID string) error

	// CheckAvailability verifies each line against current stock,
	// returning ErrItemUnavailable when any line cannot be fulfilled.
	CheckAvailability(ctx context.Context, sessionID string) error
}
