package usecase

import (
	"context"
	"fmt"

	"github.com/sMiccu/shoporder/internal/domain"
)

// GetOrder is the read path; it does not mutate anything.
type GetOrder struct {
	repo OrderRepository
}

func NewGetOrder(repo OrderRepository) *GetOrder {
	return &GetOrder{repo: repo}
}

func (uc *GetOrder) Execute(ctx context.Context, rawOrderID string) (*domain.Order, error) {
	orderID, err := domain.ParseOrderID(rawOrderID)
	if err != nil {
		return nil, fmt.Errorf("%w: %s", ErrOrderNotFound, rawOrderID)
	}
	return uc.repo.FindByID(ctx, orderID)
}
