package usecase

import (
	"context"

	"github.com/sMiccu/shoporder/internal/domain"
	"github.com/sMiccu/shoporder/internal/logging"
)

type CreateOrderInput struct {
	CustomerID     string
	IdempotencyKey string
}

type CreateOrderOutput struct {
	OrderID string
	Status  string
}

// CreateOrder starts an empty Pending order for a customer. When the caller
// supplies an idempotency key, a duplicate submit returns the original
// order id instead of creating a second order.
type CreateOrder struct {
	repo OrderRepository
	idem IdempotencyStore
}

func NewCreateOrder(repo OrderRepository, idem IdempotencyStore) *CreateOrder {
	return &CreateOrder{repo: repo, idem: idem}
}

func (uc *CreateOrder) Execute(ctx context.Context, in CreateOrderInput) (CreateOrderOutput, error) {
	customerID, err := domain.ParseCustomerID(in.CustomerID)
	if err != nil {
		return CreateOrderOutput{}, err
	}

	if in.IdempotencyKey != "" {
		// Fast path: idempotency recall
		id, ok, err := uc.idem.Recall(ctx, in.CustomerID, in.IdempotencyKey)
		if err != nil {
			logging.FromCtx(ctx).Warn("idempotency recall failed",
				"customer_id", in.CustomerID, "err", err)
		} else if ok {
			return CreateOrderOutput{OrderID: id, Status: string(domain.StatusPending)}, nil
		}
		ok, err = uc.idem.TryLock(ctx, in.CustomerID, in.IdempotencyKey)
		if err != nil {
			return CreateOrderOutput{}, err
		}
		if !ok {
			return CreateOrderOutput{}, ErrDuplicate
		}
	}

	order := domain.NewOrder(customerID)
	if err := uc.repo.Create(ctx, order); err != nil {
		return CreateOrderOutput{}, err
	}

	if in.IdempotencyKey != "" {
		_ = uc.idem.Remember(ctx, in.CustomerID, in.IdempotencyKey, order.ID().String())
	}

	return CreateOrderOutput{OrderID: order.ID().String(), Status: string(order.Status())}, nil
}
