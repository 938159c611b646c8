package usecase

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/sMiccu/shoporder/internal/domain"
	"github.com/sMiccu/shoporder/internal/logging"
)

func TestCreateOrder_Execute(t *testing.T) {
	repo := new(MockOrderRepository)
	idem := new(MockIdempotencyStore)
	uc := NewCreateOrder(repo, idem)

	customerID := domain.NewCustomerID().String()
	repo.On("Create", mock.Anything, mock.MatchedBy(func(o *domain.Order) bool {
		return o.Status() == domain.StatusPending && o.ItemCount() == 0
	})).Return(nil)

	out, err := uc.Execute(context.Background(), CreateOrderInput{CustomerID: customerID})

	require.NoError(t, err)
	assert.NotEmpty(t, out.OrderID)
	assert.Equal(t, "pending", out.Status)
	repo.AssertExpectations(t)
	idem.AssertNotCalled(t, "TryLock", mock.Anything, mock.Anything, mock.Anything)
}

func TestCreateOrder_Execute_BadCustomerID(t *testing.T) {
	repo := new(MockOrderRepository)
	idem := new(MockIdempotencyStore)
	uc := NewCreateOrder(repo, idem)

	_, err := uc.Execute(context.Background(), CreateOrderInput{CustomerID: "not-a-uuid"})

	assert.Error(t, err)
	repo.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
}

func TestCreateOrder_Execute_IdempotentReplay(t *testing.T) {
	repo := new(MockOrderRepository)
	idem := new(MockIdempotencyStore)
	uc := NewCreateOrder(repo, idem)

	customerID := domain.NewCustomerID().String()
	idem.On("Recall", mock.Anything, customerID, "key-1").Return("existing-order", true, nil)

	out, err := uc.Execute(context.Background(), CreateOrderInput{
		CustomerID:     customerID,
		IdempotencyKey: "key-1",
	})

	require.NoError(t, err)
	assert.Equal(t, "existing-order", out.OrderID)
	repo.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
}

func TestCreateOrder_Execute_RecallFailureFallsThroughToLock(t *testing.T) {
	repo := new(MockOrderRepository)
	idem := new(MockIdempotencyStore)
	uc := NewCreateOrder(repo, idem)

	customerID := domain.NewCustomerID().String()
	idem.On("Recall", mock.Anything, customerID, "key-1").Return("", false, errors.New("redis down"))
	idem.On("TryLock", mock.Anything, customerID, "key-1").Return(true, nil)
	repo.On("Create", mock.Anything, mock.Anything).Return(nil)
	idem.On("Remember", mock.Anything, customerID, "key-1", mock.Anything).Return(nil)

	ctx := logging.WithCtx(context.Background(), slog.New(slog.NewTextHandler(io.Discard, nil)))
	out, err := uc.Execute(ctx, CreateOrderInput{
		CustomerID:     customerID,
		IdempotencyKey: "key-1",
	})

	// a cache outage degrades to the lock path, it does not fail creation
	require.NoError(t, err)
	assert.NotEmpty(t, out.OrderID)
	idem.AssertExpectations(t)
}

func TestCreateOrder_Execute_DuplicateInFlight(t *testing.T) {
	repo := new(MockOrderRepository)
	idem := new(MockIdempotencyStore)
	uc := NewCreateOrder(repo, idem)

	customerID := domain.NewCustomerID().String()
	idem.On("Recall", mock.Anything, customerID, "key-1").Return("", false, nil)
	idem.On("TryLock", mock.Anything, customerID, "key-1").Return(false, nil)

	_, err := uc.Execute(context.Background(), CreateOrderInput{
		CustomerID:     customerID,
		IdempotencyKey: "key-1",
	})

	assert.ErrorIs(t, err, ErrDuplicate)
	repo.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
}
