package domain

// CartItem is a single line of the customer's cart. The cart owns these
// values; the order pipeline only ever reads them.
type CartItem struct {
	ProductID string
	Quantity  int
	UnitPrice int64
}

func (i CartItem) Subtotal() int64 {
	return int64(i.Quantity) * i.UnitPrice
}
