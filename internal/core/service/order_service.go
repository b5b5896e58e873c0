package service

import (
	"context"
	"fmt"

	"github.com/rs/zerolog/log"

	"github.com/lamnm/aims-checkout/internal/core/domain"
	"github.com/lamnm/aims-checkout/internal/core/validation"
	"github.com/lamnm/aims-checkout/internal/port"
)

// OrderService drives the place-order half of the checkout pipeline:
// availability check, cart-to-order assembly, delivery info gating,
// pricing and persistence.
type OrderService struct {
	cart port.Cart
	repo port.OrderRepository
}

func NewOrderService(cart port.Cart, repo port.OrderRepository) *OrderService {
	return &OrderService{cart: cart, repo: repo}
}

// PlaceOrder verifies every cart line is still fulfillable before the
// checkout flow starts.
func (s *OrderService) PlaceOrder(ctx context.Context, sessionID string) error {
	if err := s.cart.CheckAvailability(ctx, sessionID); err != nil {
		return fmt.Errorf("availability check failed: %w", err)
	}
	return nil
}

// CreateOrder assembles a pending order from a value snapshot of the
// session cart. The order is not persisted yet; it gets its identifier
// from SubmitOrder once delivery info and pricing are in place.
func (s *OrderService) CreateOrder(ctx context.Context, sessionID string) (*domain.Order, error) {
	items, err := s.cart.ListItems(ctx, sessionID)
	if err != nil {
		return nil, fmt.Errorf("list cart items: %w", err)
	}
	order := domain.NewOrderFromCart(items)
	return &order, nil
}

// ProcessDeliveryInfo gates the collected delivery fields and attaches
// them to the order. Invalid info never reaches pricing or the gateway.
func (s *OrderService) ProcessDeliveryInfo(order *domain.Order, info map[string]string) error {
	if err := validation.ValidateDeliveryInfo(info); err != nil {
		return err
	}
	order.DeliveryInfo = domain.DeliveryInfo{
		Phone:        info["phone"],
		Name:         info["name"],
		Address:      info["address"],
		Instructions: info["instructions"],
	}
	return nil
}

// PriceOrder sets the shipping fee on a validated order.
func (s *OrderService) PriceOrder(order *domain.Order) {
	order.ShippingFee = CalculateShippingFee(order)
}

// SubmitOrder persists the priced order and stamps the identifier the
// store assigned.
func (s *OrderService) SubmitOrder(ctx context.Context, order *domain.Order) error {
	id, err := s.repo.CreateOrder(ctx, *order)
	if err != nil {
		return fmt.Errorf("persist order: %w", err)
	}
	order.ID = id
	log.Info().
		Str("order_id", id).
		Int64("amount", order.Amount).
		Int64("shipping_fee", order.ShippingFee).
		Msg("order submitted")
	return nil
}

func (s *OrderService) GetOrder(ctx context.Context, id string) (*domain.Order, error) {
	return s.repo.GetOrder(ctx, id)
}

// CreateInvoice wraps a completed order. An order without line items
// cannot be invoiced; empty carts are already rejected upstream, this
// guards direct callers.
func (s *OrderService) CreateInvoice(order *domain.Order) (*domain.Invoice, error) {
	if len(order.Items) == 0 {
		return nil, ErrEmptyOrder
	}
	return &domain.Invoice{Order: order}, nil
}
