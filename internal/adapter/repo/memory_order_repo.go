package repo

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/sMiccu/shoporder/internal/domain"
	"github.com/sMiccu/shoporder/internal/usecase"
)

type memoryRecord struct {
	customerID domain.CustomerID
	status     domain.Status
	createdAt  time.Time
	items      []domain.OrderItem
	version    int64
}

// MemoryOrderRepo keeps aggregates in a map behind a mutex. It honors the
// same contract as the MySQL adapter: compare-then-increment-or-reject on
// version, events drained only on successful save. Test fixture for use-case
// wiring and for exercising the concurrency property directly.
type MemoryOrderRepo struct {
	mu     sync.Mutex
	orders map[domain.OrderID]memoryRecord
	events []domain.Event // drained on save, in commit order
}

func NewMemoryOrderRepo() *MemoryOrderRepo {
	return &MemoryOrderRepo{orders: make(map[domain.OrderID]memoryRecord)}
}

func (r *MemoryOrderRepo) Create(ctx context.Context, o *domain.Order) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.orders[o.ID()]; ok {
		return fmt.Errorf("order %s already exists", o.ID())
	}
	r.orders[o.ID()] = snapshot(o, 0)
	return nil
}

func (r *MemoryOrderRepo) FindByID(ctx context.Context, id domain.OrderID) (*domain.Order, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	rec, ok := r.orders[id]
	if !ok {
		return nil, fmt.Errorf("%w: %s", usecase.ErrOrderNotFound, id)
	}
	return rehydrate(id, rec), nil
}

func (r *MemoryOrderRepo) Save(ctx context.Context, o *domain.Order) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	rec, ok := r.orders[o.ID()]
	if !ok {
		return fmt.Errorf("%w: %s", usecase.ErrOrderNotFound, o.ID())
	}
	if rec.version != o.Version() {
		return fmt.Errorf("%w: order %s version %d", usecase.ErrConcurrencyConflict, o.ID(), o.Version())
	}

	r.orders[o.ID()] = snapshot(o, rec.version+1)
	r.events = append(r.events, o.PullEvents()...)
	return nil
}

// PublishedEvents returns the events drained by committed saves so far.
func (r *MemoryOrderRepo) PublishedEvents() []domain.Event {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]domain.Event(nil), r.events...)
}

func snapshot(o *domain.Order, version int64) memoryRecord {
	return memoryRecord{
		customerID: o.CustomerID(),
		status:     o.Status(),
		createdAt:  o.CreatedAt(),
		items:      o.Items(),
		version:    version,
	}
}

func rehydrate(id domain.OrderID, rec memoryRecord) *domain.Order {
	return domain.RehydrateOrder(
		id, rec.customerID, rec.status,
		rec.createdAt, rec.version,
		append([]domain.OrderItem(nil), rec.items...),
	)
}

var _ usecase.OrderRepository = (*MemoryOrderRepo)(nil)
