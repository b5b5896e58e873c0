package port

import (
	"context"
	"errors"

	"github.com/lamnm/aims-checkout/internal/core/domain"
)

var (
	ErrOrderNotFound = errors.New("order not found")

	// ErrAlreadySettled means a transaction is already durably recorded
	// for the order. The store enforces at most one settlement per
	// order identifier.
	ErrAlreadySettled = errors.New("order already has a settled transaction")
)

type OrderRepository interface {
	// CreateOrder persists the order with its lines and delivery info,
	// assigning and returning the order identifier.
	CreateOrder(ctx context.Context, order domain.Order) (string, error)

	// GetOrder loads an order by identifier, ErrOrderNotFound if absent.
	GetOrder(ctx context.Context, id string) (*domain.Order, error)

	// SaveTransaction durably records the transaction for the order.
	// Saving against an unknown order fails with ErrOrderNotFound; a
	// second save for the same order fails with ErrAlreadySettled.
	SaveTransaction(ctx context.Context, txn domain.Transaction, orderID string) error
}
