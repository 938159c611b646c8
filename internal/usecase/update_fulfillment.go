package usecase

import (
	"context"
	"fmt"

	"github.com/sMiccu/shoporder/internal/domain"
)

// Fulfillment steps reported by the payment and shipping services.
const (
	FulfillmentPaid      = "PAID"
	FulfillmentShipped   = "SHIPPED"
	FulfillmentDelivered = "DELIVERED"
)

// UpdateFulfillment applies a downstream status report to the order through
// the usual load-mutate-save cycle, so out-of-order reports fail on the
// aggregate's transition checks instead of clobbering state. The status
// cache is refreshed best-effort after a successful save.
type UpdateFulfillment struct {
	repo  OrderRepository
	cache OrderCache // optional
}

func NewUpdateFulfillment(repo OrderRepository, cache OrderCache) *UpdateFulfillment {
	return &UpdateFulfillment{repo: repo, cache: cache}
}

func (uc *UpdateFulfillment) Execute(ctx context.Context, rawOrderID, step string) error {
	orderID, err := domain.ParseOrderID(rawOrderID)
	if err != nil {
		return fmt.Errorf("%w: %s", ErrOrderNotFound, rawOrderID)
	}

	order, err := uc.repo.FindByID(ctx, orderID)
	if err != nil {
		return err
	}

	switch step {
	case FulfillmentPaid:
		err = order.MarkPaid()
	case FulfillmentShipped:
		err = order.Ship()
	case FulfillmentDelivered:
		err = order.Deliver()
	default:
		return fmt.Errorf("%w: unknown step %q", domain.ErrInvalidTransition, step)
	}
	if err != nil {
		return err
	}

	if err := uc.repo.Save(ctx, order); err != nil {
		return err
	}

	if uc.cache != nil {
		_ = uc.cache.SetStatus(ctx, order.ID().String(), string(order.Status()))
	}
	return nil
}
