package usecase

import (
	"context"
	"fmt"

	"github.com/sMiccu/shoporder/internal/domain"
)

type AddItemInput struct {
	OrderID   string
	ProductID string
	Quantity  int
}

type AddItemOutput struct {
	OrderID string
	Status  string
	Total   string
}

// AddItemToOrder appends a line priced at the catalog's current unit price
// and reserves stock for it. The aggregate accepts the line before any
// stock is touched: a rejected line never reaches inventory. On any
// failure after the in-memory mutation the aggregate is discarded, never
// persisted, and a reservation already taken is released again so a caller
// retrying the cycle does not decrement stock twice.
//
// A ConcurrencyConflict from Save is surfaced as-is; retrying the
// read-modify-write cycle is the caller's decision.
type AddItemToOrder struct {
	repo    OrderRepository
	catalog ProductCatalog
}

func NewAddItemToOrder(repo OrderRepository, catalog ProductCatalog) *AddItemToOrder {
	return &AddItemToOrder{repo: repo, catalog: catalog}
}

func (uc *AddItemToOrder) Execute(ctx context.Context, in AddItemInput) (AddItemOutput, error) {
	orderID, err := domain.ParseOrderID(in.OrderID)
	if err != nil {
		return AddItemOutput{}, fmt.Errorf("%w: %s", ErrOrderNotFound, in.OrderID)
	}
	productID, err := domain.ParseProductID(in.ProductID)
	if err != nil {
		return AddItemOutput{}, fmt.Errorf("%w: %s", ErrProductNotFound, in.ProductID)
	}

	order, err := uc.repo.FindByID(ctx, orderID)
	if err != nil {
		return AddItemOutput{}, err
	}

	available, err := uc.catalog.Available(ctx, productID)
	if err != nil {
		return AddItemOutput{}, err
	}
	if !available {
		return AddItemOutput{}, fmt.Errorf("%w: %s", ErrProductUnavailable, in.ProductID)
	}
	price, err := uc.catalog.Price(ctx, productID)
	if err != nil {
		return AddItemOutput{}, err
	}

	if err := order.AddItem(productID, in.Quantity, price); err != nil {
		return AddItemOutput{}, err
	}

	if err := uc.catalog.ReserveStock(ctx, productID, in.Quantity); err != nil {
		return AddItemOutput{}, err
	}

	if err := uc.repo.Save(ctx, order); err != nil {
		// the line dies with the discarded aggregate; hand its reservation back
		_ = uc.catalog.ReleaseStock(ctx, productID, in.Quantity)
		return AddItemOutput{}, err
	}

	return AddItemOutput{
		OrderID: order.ID().String(),
		Status:  string(order.Status()),
		Total:   order.Total().String(),
	}, nil
}
