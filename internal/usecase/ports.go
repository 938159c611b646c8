package usecase

import (
	"context"
	"errors"

	"github.com/sMiccu/shoporder/internal/domain"
)

var (
	ErrOrderNotFound = errors.New("order not found")

	// ErrConcurrencyConflict means the persisted version moved since this
	// aggregate was loaded. The write is not applied; callers may retry the
	// whole read-modify-write cycle.
	ErrConcurrencyConflict = errors.New("concurrent modification detected")

	ErrProductNotFound    = errors.New("product not found")
	ErrProductUnavailable = errors.New("product unavailable")

	// ErrInsufficientStock is transient: stock may come back.
	ErrInsufficientStock = errors.New("insufficient stock")

	ErrDuplicate = errors.New("duplicate idempotency key")
)

// OrderRepository persists the Order aggregate. Save performs the
// optimistic check: if the stored version differs from the aggregate's
// version-at-load it fails with ErrConcurrencyConflict and writes nothing;
// on success the stored version is the loaded one plus exactly one, and the
// aggregate's buffered events are drained into the outbox within the same
// transaction.
type OrderRepository interface {
	Create(ctx context.Context, o *domain.Order) error
	FindByID(ctx context.Context, id domain.OrderID) (*domain.Order, error)
	Save(ctx context.Context, o *domain.Order) error
}

// ProductCatalog is the read-plus-reserve capability owned by the catalog
// module. Stock is a separate resource with its own concurrency control.
type ProductCatalog interface {
	Price(ctx context.Context, id domain.ProductID) (domain.Money, error)
	Available(ctx context.Context, id domain.ProductID) (bool, error)
	ReserveStock(ctx context.Context, id domain.ProductID, quantity int) error
	ReleaseStock(ctx context.Context, id domain.ProductID, quantity int) error
}

// OrderCache mirrors the latest known status for cheap reads. Best effort.
type OrderCache interface {
	SetStatus(ctx context.Context, orderID string, status string) error
	GetStatus(ctx context.Context, orderID string) (string, bool, error)
}

type IdempotencyStore interface {
	TryLock(ctx context.Context, scope, key string) (bool, error)
	Remember(ctx context.Context, scope, key, value string) error
	Recall(ctx context.Context, scope, key string) (string, bool, error)
}
