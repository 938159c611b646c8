package usecase

import (
	"context"

	"github.com/stretchr/testify/mock"

	"github.com/sMiccu/shoporder/internal/domain"
)

type MockOrderRepository struct {
	mock.Mock
}

func (m *MockOrderRepository) Create(ctx context.Context, o *domain.Order) error {
	args := m.Called(ctx, o)
	return args.Error(0)
}

func (m *MockOrderRepository) FindByID(ctx context.Context, id domain.OrderID) (*domain.Order, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Order), args.Error(1)
}

func (m *MockOrderRepository) Save(ctx context.Context, o *domain.Order) error {
	args := m.Called(ctx, o)
	return args.Error(0)
}

type MockProductCatalog struct {
	mock.Mock
}

func (m *MockProductCatalog) Price(ctx context.Context, id domain.ProductID) (domain.Money, error) {
	args := m.Called(ctx, id)
	return args.Get(0).(domain.Money), args.Error(1)
}

func (m *MockProductCatalog) Available(ctx context.Context, id domain.ProductID) (bool, error) {
	args := m.Called(ctx, id)
	return args.Bool(0), args.Error(1)
}

func (m *MockProductCatalog) ReserveStock(ctx context.Context, id domain.ProductID, quantity int) error {
	args := m.Called(ctx, id, quantity)
	return args.Error(0)
}

func (m *MockProductCatalog) ReleaseStock(ctx context.Context, id domain.ProductID, quantity int) error {
	args := m.Called(ctx, id, quantity)
	return args.Error(0)
}

type MockIdempotencyStore struct {
	mock.Mock
}

func (m *MockIdempotencyStore) TryLock(ctx context.Context, scope, key string) (bool, error) {
	args := m.Called(ctx, scope, key)
	return args.Bool(0), args.Error(1)
}

func (m *MockIdempotencyStore) Remember(ctx context.Context, scope, key, value string) error {
	args := m.Called(ctx, scope, key, value)
	return args.Error(0)
}

func (m *MockIdempotencyStore) Recall(ctx context.Context, scope, key string) (string, bool, error) {
	args := m.Called(ctx, scope, key)
	return args.String(0), args.Bool(1), args.Error(2)
}

type MockOrderCache struct {
	mock.Mock
}

func (m *MockOrderCache) SetStatus(ctx context.Context, orderID, status string) error {
	args := m.Called(ctx, orderID, status)
	return args.Error(0)
}

func (m *MockOrderCache) GetStatus(ctx context.Context, orderID string) (string, bool, error) {
	args := m.Called(ctx, orderID)
	return args.String(0), args.Bool(1), args.Error(2)
}
