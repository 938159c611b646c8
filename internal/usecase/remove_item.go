package usecase

import (
	"context"
	"fmt"

	"github.com/sMiccu/shoporder/internal/domain"
)

// RemoveItemFromOrder drops every line for a product from a Pending order.
// Stock reserved for the removed lines is handed back best-effort after the
// save commits.
type RemoveItemFromOrder struct {
	repo    OrderRepository
	catalog ProductCatalog // optional
}

func NewRemoveItemFromOrder(repo OrderRepository, catalog ProductCatalog) *RemoveItemFromOrder {
	return &RemoveItemFromOrder{repo: repo, catalog: catalog}
}

func (uc *RemoveItemFromOrder) Execute(ctx context.Context, rawOrderID, rawProductID string) error {
	orderID, err := domain.ParseOrderID(rawOrderID)
	if err != nil {
		return fmt.Errorf("%w: %s", ErrOrderNotFound, rawOrderID)
	}
	productID, err := domain.ParseProductID(rawProductID)
	if err != nil {
		return fmt.Errorf("%w: %s", ErrProductNotFound, rawProductID)
	}

	order, err := uc.repo.FindByID(ctx, orderID)
	if err != nil {
		return err
	}

	removed := 0
	for _, item := range order.Items() {
		if item.ProductID() == productID {
			removed += item.Quantity()
		}
	}

	if err := order.RemoveItem(productID); err != nil {
		return err
	}

	if err := uc.repo.Save(ctx, order); err != nil {
		return err
	}

	if uc.catalog != nil && removed > 0 {
		_ = uc.catalog.ReleaseStock(ctx, productID, removed)
	}
	return nil
}
