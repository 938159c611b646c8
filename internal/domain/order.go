package domain

import (
	"fmt"
	"time"
)

type Status string

const (
	StatusPending   Status = "pending"
	StatusConfirmed Status = "confirmed"
	StatusPaid      Status = "paid"
	StatusShipped   Status = "shipped"
	StatusDelivered Status = "delivered"
	StatusCancelled Status = "cancelled"
)

// Order is the aggregate root. All mutation goes through its methods so
// invariants cannot be bypassed; the item slice is never handed out by
// reference. The version field is the optimistic-concurrency token: it is
// the value observed at load time, and the repository increments the
// persisted counter by one on every committed save.
type Order struct {
	id         OrderID
	customerID CustomerID
	items      []OrderItem
	status     Status
	currency   string // established by the first added item
	createdAt  time.Time
	version    int64

	events []Event
}

// NewOrder starts an empty Pending order for the customer.
func NewOrder(customerID CustomerID) *Order {
	return &Order{
		id:         NewOrderID(),
		customerID: customerID,
		status:     StatusPending,
		createdAt:  time.Now().UTC(),
	}
}

// RehydrateOrder rebuilds an aggregate from persisted state. Only the
// repository adapters should call it.
func RehydrateOrder(id OrderID, customerID CustomerID, status Status, createdAt time.Time, version int64, items []OrderItem) *Order {
	o := &Order{
		id:         id,
		customerID: customerID,
		status:     status,
		createdAt:  createdAt,
		version:    version,
		items:      append([]OrderItem(nil), items...),
	}
	if len(o.items) > 0 {
		o.currency = o.items[0].UnitPrice().Currency()
	}
	return o
}

func (o *Order) ID() OrderID            { return o.id }
func (o *Order) CustomerID() CustomerID { return o.customerID }
func (o *Order) Status() Status         { return o.status }
func (o *Order) CreatedAt() time.Time   { return o.createdAt }
func (o *Order) Version() int64         { return o.version }

// Items returns a copy of the line items; mutating it does not touch the order.
func (o *Order) Items() []OrderItem {
	return append([]OrderItem(nil), o.items...)
}

func (o *Order) ItemCount() int { return len(o.items) }

// AddItem appends a line item. Only Pending orders accept items, quantity
// must be at least 1, and every line must be priced in the order's currency
// (the first line establishes it). Repeated products are kept as separate
// lines so each keeps its own unit price.
func (o *Order) AddItem(productID ProductID, quantity int, unitPrice Money) error {
	if o.status != StatusPending {
		return fmt.Errorf("%w: status %s", ErrOrderNotModifiable, o.status)
	}
	item, err := NewOrderItem(productID, quantity, unitPrice)
	if err != nil {
		return err
	}
	if o.currency != "" && unitPrice.Currency() != o.currency {
		return fmt.Errorf("%w: order is in %s, item priced in %s",
			ErrCurrencyMismatch, o.currency, unitPrice.Currency())
	}
	if o.currency == "" {
		o.currency = unitPrice.Currency()
	}
	o.items = append(o.items, item)
	return nil
}

// RemoveItem drops every line for the product. Pending orders only.
func (o *Order) RemoveItem(productID ProductID) error {
	if o.status != StatusPending {
		return fmt.Errorf("%w: status %s", ErrOrderNotModifiable, o.status)
	}
	kept := o.items[:0]
	for _, it := range o.items {
		if it.ProductID() != productID {
			kept = append(kept, it)
		}
	}
	o.items = kept
	return nil
}

// Confirm moves Pending -> Confirmed and records an OrderConfirmed event.
// An order needs at least one item to be confirmed.
func (o *Order) Confirm() error {
	if o.status != StatusPending {
		return fmt.Errorf("%w: status %s", ErrOrderNotModifiable, o.status)
	}
	if len(o.items) == 0 {
		return ErrEmptyOrder
	}
	o.status = StatusConfirmed
	o.record(OrderConfirmed{OrderID: o.id, Total: o.Total(), At: time.Now().UTC()})
	return nil
}

// Cancel moves Pending or Confirmed -> Cancelled and records an
// OrderCancelled event. Shipped, Delivered and Cancelled are terminal:
// repeated cancel attempts keep failing and never change state.
func (o *Order) Cancel() error {
	switch o.status {
	case StatusShipped, StatusDelivered, StatusCancelled:
		return fmt.Errorf("%w: status %s", ErrOrderCannotBeCancelled, o.status)
	}
	o.status = StatusCancelled
	o.record(OrderCancelled{OrderID: o.id, At: time.Now().UTC()})
	return nil
}

// MarkPaid moves Confirmed -> Paid.
func (o *Order) MarkPaid() error {
	if o.status != StatusConfirmed {
		return fmt.Errorf("%w: %s -> %s", ErrInvalidTransition, o.status, StatusPaid)
	}
	o.status = StatusPaid
	return nil
}

// Ship moves Paid -> Shipped.
func (o *Order) Ship() error {
	if o.status != StatusPaid {
		return fmt.Errorf("%w: %s -> %s", ErrInvalidTransition, o.status, StatusShipped)
	}
	o.status = StatusShipped
	return nil
}

// Deliver moves Shipped -> Delivered.
func (o *Order) Deliver() error {
	if o.status != StatusShipped {
		return fmt.Errorf("%w: %s -> %s", ErrInvalidTransition, o.status, StatusDelivered)
	}
	o.status = StatusDelivered
	return nil
}

// Total sums the line subtotals. An empty order totals zero in the default
// currency.
func (o *Order) Total() Money {
	if len(o.items) == 0 {
		return ZeroMoney(DefaultCurrency)
	}
	total := ZeroMoney(o.currency)
	for _, it := range o.items {
		// AddItem guarantees a single currency per order.
		total, _ = total.Add(it.Subtotal())
	}
	return total
}

// PullEvents drains the event buffer: the caller receives every event
// recorded since the last drain, and the buffer is cleared. The persistence
// boundary calls this inside the save transaction so each event reaches the
// outbox exactly once per commit.
func (o *Order) PullEvents() []Event {
	evs := o.events
	o.events = nil
	return evs
}

func (o *Order) record(ev Event) {
	o.events = append(o.events, ev)
}
