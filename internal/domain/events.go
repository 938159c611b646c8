package domain

import "time"

// Event is an immutable fact recorded by the aggregate. Events are buffered
// on the Order and drained exactly once by the persistence boundary after a
// successful commit.
type Event interface {
	Name() string
	OccurredAt() time.Time
}

type OrderConfirmed struct {
	OrderID OrderID
	Total   Money
	At      time.Time
}

func (e OrderConfirmed) Name() string          { return "order.confirmed" }
func (e OrderConfirmed) OccurredAt() time.Time { return e.At }

type OrderCancelled struct {
	OrderID OrderID
	At      time.Time
}

func (e OrderCancelled) Name() string          { return "order.cancelled" }
func (e OrderCancelled) OccurredAt() time.Time { return e.At }
