package kafka

import (
	"context"
	"io"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sMiccu/shoporder/internal/adapter/repo"
	"github.com/sMiccu/shoporder/internal/domain"
	"github.com/sMiccu/shoporder/internal/usecase"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func confirmedOrder(t *testing.T, r *repo.MemoryOrderRepo) domain.OrderID {
	t.Helper()
	ctx := context.Background()
	o := domain.NewOrder(domain.NewCustomerID())
	require.NoError(t, r.Create(ctx, o))

	loaded, err := r.FindByID(ctx, o.ID())
	require.NoError(t, err)
	require.NoError(t, loaded.AddItem(domain.NewProductID(), 1, domain.NewMoneyFromInt(500, "JPY")))
	require.NoError(t, loaded.Confirm())
	require.NoError(t, r.Save(ctx, loaded))
	return o.ID()
}

func TestFulfillmentHandler_Handle(t *testing.T) {
	r := repo.NewMemoryOrderRepo()
	id := confirmedOrder(t, r)
	h := NewFulfillmentHandler(usecase.NewUpdateFulfillment(r, nil), discardLogger())

	err := h.Handle(context.Background(), usecase.FulfillmentStatusMsg{
		OrderID: id.String(),
		Step:    usecase.FulfillmentPaid,
	})

	require.NoError(t, err)
	state, err := r.FindByID(context.Background(), id)
	require.NoError(t, err)
	assert.Equal(t, domain.StatusPaid, state.Status())
}

func TestFulfillmentHandler_Handle_OutOfOrderIsDropped(t *testing.T) {
	r := repo.NewMemoryOrderRepo()
	id := confirmedOrder(t, r)
	h := NewFulfillmentHandler(usecase.NewUpdateFulfillment(r, nil), discardLogger())

	// delivering a confirmed-but-unshipped order is permanently wrong: no error,
	// no state change, message gets marked
	err := h.Handle(context.Background(), usecase.FulfillmentStatusMsg{
		OrderID: id.String(),
		Step:    usecase.FulfillmentDelivered,
	})

	require.NoError(t, err)
	state, findErr := r.FindByID(context.Background(), id)
	require.NoError(t, findErr)
	assert.Equal(t, domain.StatusConfirmed, state.Status())
}

func TestFulfillmentHandler_Handle_UnknownOrderIsDropped(t *testing.T) {
	r := repo.NewMemoryOrderRepo()
	h := NewFulfillmentHandler(usecase.NewUpdateFulfillment(r, nil), discardLogger())

	err := h.Handle(context.Background(), usecase.FulfillmentStatusMsg{
		OrderID: domain.NewOrderID().String(),
		Step:    usecase.FulfillmentPaid,
	})

	assert.NoError(t, err)
}
