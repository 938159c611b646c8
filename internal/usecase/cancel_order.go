package usecase

import (
	"context"
	"fmt"

	"github.com/sMiccu/shoporder/internal/domain"
)

// CancelOrder cancels a Pending or Confirmed order. Shipped, Delivered and
// already-cancelled orders refuse with the aggregate's own error. After the
// cancellation commits, reserved stock is handed back to the catalog
// best-effort; a failed release does not undo the cancellation.
type CancelOrder struct {
	repo    OrderRepository
	catalog ProductCatalog // optional
}

func NewCancelOrder(repo OrderRepository, catalog ProductCatalog) *CancelOrder {
	return &CancelOrder{repo: repo, catalog: catalog}
}

func (uc *CancelOrder) Execute(ctx context.Context, rawOrderID string) error {
	orderID, err := domain.ParseOrderID(rawOrderID)
	if err != nil {
		return fmt.Errorf("%w: %s", ErrOrderNotFound, rawOrderID)
	}

	order, err := uc.repo.FindByID(ctx, orderID)
	if err != nil {
		return err
	}

	if err := order.Cancel(); err != nil {
		return err
	}

	if err := uc.repo.Save(ctx, order); err != nil {
		return err
	}

	if uc.catalog != nil {
		for _, item := range order.Items() {
			_ = uc.catalog.ReleaseStock(ctx, item.ProductID(), item.Quantity())
		}
	}
	return nil
}
