package domain

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewOrder(t *testing.T) {
	customer := NewCustomerID()
	o := NewOrder(customer)

	assert.Equal(t, StatusPending, o.Status())
	assert.Equal(t, customer, o.CustomerID())
	assert.Zero(t, o.ItemCount())
	assert.Equal(t, int64(0), o.Version())
	assert.False(t, o.CreatedAt().IsZero())
}

func TestOrder_AddItem(t *testing.T) {
	o := NewOrder(NewCustomerID())
	p := NewProductID()

	err := o.AddItem(p, 2, NewMoneyFromInt(1000, "JPY"))

	require.NoError(t, err)
	assert.Equal(t, 1, o.ItemCount())
	assert.True(t, o.Total().Equal(NewMoneyFromInt(2000, "JPY")))
}

func TestOrder_AddItem_InvalidQuantity(t *testing.T) {
	o := NewOrder(NewCustomerID())

	for _, qty := range []int{0, -1, -100} {
		err := o.AddItem(NewProductID(), qty, NewMoneyFromInt(100, "JPY"))
		assert.ErrorIs(t, err, ErrInvalidQuantity, "qty=%d", qty)
	}
	assert.Zero(t, o.ItemCount())
}

func TestOrder_AddItem_SameProductKeepsSeparateLines(t *testing.T) {
	o := NewOrder(NewCustomerID())
	p := NewProductID()

	require.NoError(t, o.AddItem(p, 1, NewMoneyFromInt(1000, "JPY")))
	require.NoError(t, o.AddItem(p, 1, NewMoneyFromInt(900, "JPY"))) // price changed

	assert.Equal(t, 2, o.ItemCount())
	assert.True(t, o.Total().Equal(NewMoneyFromInt(1900, "JPY")))
}

func TestOrder_AddItem_CurrencyEstablishedByFirstLine(t *testing.T) {
	o := NewOrder(NewCustomerID())
	require.NoError(t, o.AddItem(NewProductID(), 1, NewMoneyFromInt(1000, "JPY")))

	err := o.AddItem(NewProductID(), 1, NewMoneyFromInt(10, "USD"))

	assert.ErrorIs(t, err, ErrCurrencyMismatch)
	assert.Equal(t, 1, o.ItemCount())
}

func TestOrder_AddItem_NotPending(t *testing.T) {
	statuses := []Status{StatusConfirmed, StatusPaid, StatusShipped, StatusDelivered, StatusCancelled}
	for _, st := range statuses {
		t.Run(string(st), func(t *testing.T) {
			o := orderInStatus(t, st)
			before := o.ItemCount()

			err := o.AddItem(NewProductID(), 1, NewMoneyFromInt(100, "JPY"))

			assert.ErrorIs(t, err, ErrOrderNotModifiable)
			assert.Equal(t, before, o.ItemCount(), "items must not change")
		})
	}
}

func TestOrder_RemoveItem(t *testing.T) {
	o := NewOrder(NewCustomerID())
	keep := NewProductID()
	drop := NewProductID()
	require.NoError(t, o.AddItem(keep, 1, NewMoneyFromInt(100, "JPY")))
	require.NoError(t, o.AddItem(drop, 2, NewMoneyFromInt(200, "JPY")))

	require.NoError(t, o.RemoveItem(drop))

	require.Equal(t, 1, o.ItemCount())
	assert.Equal(t, keep, o.Items()[0].ProductID())
}

func TestOrder_RemoveItem_NotPending(t *testing.T) {
	o := orderInStatus(t, StatusConfirmed)
	err := o.RemoveItem(o.Items()[0].ProductID())
	assert.ErrorIs(t, err, ErrOrderNotModifiable)
}

func TestOrder_Confirm(t *testing.T) {
	o := NewOrder(NewCustomerID())
	require.NoError(t, o.AddItem(NewProductID(), 2, NewMoneyFromInt(1000, "JPY")))
	require.NoError(t, o.AddItem(NewProductID(), 1, NewMoneyFromInt(500, "JPY")))

	require.True(t, o.Total().Equal(NewMoneyFromInt(2500, "JPY")))
	require.NoError(t, o.Confirm())

	assert.Equal(t, StatusConfirmed, o.Status())

	evs := o.PullEvents()
	require.Len(t, evs, 1)
	confirmed, ok := evs[0].(OrderConfirmed)
	require.True(t, ok)
	assert.Equal(t, o.ID(), confirmed.OrderID)
	assert.True(t, confirmed.Total.Equal(NewMoneyFromInt(2500, "JPY")))
	assert.False(t, confirmed.OccurredAt().IsZero())
}

func TestOrder_Confirm_Empty(t *testing.T) {
	o := NewOrder(NewCustomerID())

	err := o.Confirm()

	assert.ErrorIs(t, err, ErrEmptyOrder)
	assert.Equal(t, StatusPending, o.Status())
	assert.Empty(t, o.PullEvents())
}

func TestOrder_Confirm_Twice(t *testing.T) {
	o := orderInStatus(t, StatusConfirmed)
	err := o.Confirm()
	assert.ErrorIs(t, err, ErrOrderNotModifiable)
}

func TestOrder_Cancel(t *testing.T) {
	t.Run("from pending", func(t *testing.T) {
		o := orderInStatus(t, StatusPending)
		require.NoError(t, o.Cancel())
		assert.Equal(t, StatusCancelled, o.Status())
	})
	t.Run("from confirmed", func(t *testing.T) {
		o := orderInStatus(t, StatusConfirmed)
		o.PullEvents() // drop the confirm event
		require.NoError(t, o.Cancel())
		assert.Equal(t, StatusCancelled, o.Status())

		evs := o.PullEvents()
		require.Len(t, evs, 1)
		cancelled, ok := evs[0].(OrderCancelled)
		require.True(t, ok)
		assert.Equal(t, o.ID(), cancelled.OrderID)
	})
	for _, st := range []Status{StatusShipped, StatusDelivered, StatusCancelled} {
		t.Run("blocked from "+string(st), func(t *testing.T) {
			o := orderInStatus(t, st)
			o.PullEvents()
			err := o.Cancel()
			assert.ErrorIs(t, err, ErrOrderCannotBeCancelled)
			assert.Equal(t, st, o.Status())
			assert.Empty(t, o.PullEvents())
		})
	}
}

func TestOrder_Cancel_IsIdempotentFailureAfterwards(t *testing.T) {
	o := orderInStatus(t, StatusPending)

	require.NoError(t, o.Cancel())
	evs := o.PullEvents()
	require.Len(t, evs, 1)

	// second attempt keeps failing with the same error and records nothing
	err := o.Cancel()
	assert.ErrorIs(t, err, ErrOrderCannotBeCancelled)
	assert.Equal(t, StatusCancelled, o.Status())
	assert.Empty(t, o.PullEvents())
}

func TestOrder_FulfillmentTransitions(t *testing.T) {
	o := orderInStatus(t, StatusConfirmed)

	require.NoError(t, o.MarkPaid())
	assert.Equal(t, StatusPaid, o.Status())

	require.NoError(t, o.Ship())
	assert.Equal(t, StatusShipped, o.Status())

	require.NoError(t, o.Deliver())
	assert.Equal(t, StatusDelivered, o.Status())
}

func TestOrder_FulfillmentTransitions_OutOfOrder(t *testing.T) {
	o := orderInStatus(t, StatusPending)

	assert.ErrorIs(t, o.MarkPaid(), ErrInvalidTransition)
	assert.ErrorIs(t, o.Ship(), ErrInvalidTransition)
	assert.ErrorIs(t, o.Deliver(), ErrInvalidTransition)
	assert.Equal(t, StatusPending, o.Status())
}

func TestOrder_Total_EmptyOrder(t *testing.T) {
	o := NewOrder(NewCustomerID())
	total := o.Total()
	assert.True(t, total.IsZero())
	assert.Equal(t, DefaultCurrency, total.Currency())
}

func TestOrder_Total_SumsAllLines(t *testing.T) {
	o := NewOrder(NewCustomerID())
	lines := []struct {
		qty   int
		price int64
	}{
		{2, 1000}, {1, 500}, {3, 50}, {1, 1},
	}
	var want int64
	for _, l := range lines {
		require.NoError(t, o.AddItem(NewProductID(), l.qty, NewMoneyFromInt(l.price, "JPY")))
		want += int64(l.qty) * l.price
	}
	assert.True(t, o.Total().Equal(NewMoneyFromInt(want, "JPY")))
}

func TestOrder_Items_ReturnsCopy(t *testing.T) {
	o := NewOrder(NewCustomerID())
	require.NoError(t, o.AddItem(NewProductID(), 1, NewMoneyFromInt(100, "JPY")))

	items := o.Items()
	items[0] = OrderItem{} // clobber the copy

	assert.Equal(t, 1, o.Items()[0].Quantity(), "internal state must be unaffected")
}

func TestOrder_PullEvents_ReadOnce(t *testing.T) {
	o := orderInStatus(t, StatusConfirmed)

	first := o.PullEvents()
	second := o.PullEvents()

	assert.Len(t, first, 1)
	assert.Empty(t, second)
}

func TestRehydrateOrder(t *testing.T) {
	id := NewOrderID()
	customer := NewCustomerID()
	item, err := NewOrderItem(NewProductID(), 2, NewMoneyFromInt(300, "JPY"))
	require.NoError(t, err)

	o := RehydrateOrder(id, customer, StatusConfirmed, tstamp(t), 7, []OrderItem{item})

	assert.Equal(t, id, o.ID())
	assert.Equal(t, int64(7), o.Version())
	assert.Equal(t, StatusConfirmed, o.Status())
	assert.True(t, o.Total().Equal(NewMoneyFromInt(600, "JPY")))
	assert.Empty(t, o.PullEvents(), "rehydration must not replay events")
}

// orderInStatus walks a fresh one-item order to the requested status
// through the real transitions.
func orderInStatus(t *testing.T, st Status) *Order {
	t.Helper()
	o := NewOrder(NewCustomerID())
	if st == StatusPending {
		require.NoError(t, o.AddItem(NewProductID(), 1, NewMoneyFromInt(500, "JPY")))
		return o
	}
	require.NoError(t, o.AddItem(NewProductID(), 1, NewMoneyFromInt(500, "JPY")))
	if st == StatusCancelled {
		require.NoError(t, o.Cancel())
		return o
	}
	require.NoError(t, o.Confirm())
	if st == StatusConfirmed {
		return o
	}
	require.NoError(t, o.MarkPaid())
	if st == StatusPaid {
		return o
	}
	require.NoError(t, o.Ship())
	if st == StatusShipped {
		return o
	}
	require.NoError(t, o.Deliver())
	return o
}

func tstamp(t *testing.T) (ts time.Time) {
	t.Helper()
	ts, err := time.Parse(time.RFC3339, "2025-04-01T09:30:00Z")
	require.NoError(t, err)
	return ts
}
