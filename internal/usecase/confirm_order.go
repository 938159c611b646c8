package usecase

import (
	"context"
	"fmt"

	"github.com/sMiccu/shoporder/internal/domain"
)

// ConfirmOrder moves a Pending order with at least one item to Confirmed.
// The OrderConfirmed event recorded by the aggregate reaches the outbox in
// the same transaction as the save.
type ConfirmOrder struct {
	repo OrderRepository
}

func NewConfirmOrder(repo OrderRepository) *ConfirmOrder {
	return &ConfirmOrder{repo: repo}
}

func (uc *ConfirmOrder) Execute(ctx context.Context, rawOrderID string) error {
	orderID, err := domain.ParseOrderID(rawOrderID)
	if err != nil {
		return fmt.Errorf("%w: %s", ErrOrderNotFound, rawOrderID)
	}

	order, err := uc.repo.FindByID(ctx, orderID)
	if err != nil {
		return err
	}

	if err := order.Confirm(); err != nil {
		return err
	}

	return uc.repo.Save(ctx, order)
}
