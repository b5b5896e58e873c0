package domain

import "time"

type OrderStatus string

const (
	OrderStatusPending OrderStatus = "pending"
	OrderStatusPaid    OrderStatus = "paid"
	OrderStatusFailed  OrderStatus = "failed"
)

// OrderItem is a value copy of a cart line taken at order-creation time.
// The order never aliases the cart's items, so clearing the cart after
// settlement cannot touch an already created order.
type OrderItem struct {
	ProductID string
	Quantity  int
	UnitPrice int64
}

func (i OrderItem) Subtotal() int64 {
	return int64(i.Quantity) * i.UnitPrice
}

type DeliveryInfo struct {
	Phone        string
	Name         string
	Address      string
	Instructions string
}

type Order struct {
	ID           string
	Items        []OrderItem
	Amount       int64 // sum of item subtotals at creation, before shipping
	ShippingFee  int64
	DeliveryInfo DeliveryInfo
	Status       OrderStatus
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// NewOrderFromCart snapshots the cart lines into a pending order,
// preserving the cart's listing order.
func NewOrderFromCart(items []CartItem) Order {
	order := Order{
		Items:     make([]OrderItem, 0, len(items)),
		Status:    OrderStatusPending,
		CreatedAt: time.Now(),
		UpdatedAt: time.Now(),
	}
	for _, item := range items {
		order.Items = append(order.Items, OrderItem{
			ProductID: item.ProductID,
			Quantity:  item.Quantity,
			UnitPrice: item.UnitPrice,
		})
		order.Amount += item.Subtotal()
	}
	return order
}

// TotalItems is the summed quantity over all lines.
func (o Order) TotalItems() int {
	total := 0
	for _, item := range o.Items {
		total += item.Quantity
	}
	return total
}

// Total is the amount the customer is charged: items plus shipping.
func (o Order) Total() int64 {
	return o.Amount + o.ShippingFee
}

// Invoice is a read projection over a completed order.
type Invoice struct {
	Order *Order
}
