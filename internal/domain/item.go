package domain

// OrderItem is one line of an order. Lines are owned exclusively by their
// Order and never shared; repeated products stay separate lines so each
// keeps the unit price it was added at.
type OrderItem struct {
	productID ProductID
	quantity  int
	unitPrice Money
}

func NewOrderItem(productID ProductID, quantity int, unitPrice Money) (OrderItem, error) {
	if quantity < 1 {
		return OrderItem{}, ErrInvalidQuantity
	}
	return OrderItem{productID: productID, quantity: quantity, unitPrice: unitPrice}, nil
}

func (i OrderItem) ProductID() ProductID { return i.productID }
func (i OrderItem) Quantity() int        { return i.quantity }
func (i OrderItem) UnitPrice() Money     { return i.unitPrice }

func (i OrderItem) Subtotal() Money {
	return i.unitPrice.Mul(int64(i.quantity))
}
