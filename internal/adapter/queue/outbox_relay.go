package queue

import (
	"context"
	"log/slog"
	"time"

	"github.com/sMiccu/shoporder/internal/adapter/repo"
)

// OutboxRelay drains the transactional outbox into RabbitMQ. Delivery is
// at-least-once: a row is marked sent only after the broker accepted it,
// and failures back off and retry.
type OutboxRelay struct {
	outbox   *repo.MySQLOutboxRepo
	producer *RabbitProducer
	log      *slog.Logger

	interval  time.Duration
	batchSize int
	backoff   time.Duration
}

type RelayOption func(*OutboxRelay)

func WithInterval(d time.Duration) RelayOption  { return func(r *OutboxRelay) { r.interval = d } }
func WithBatchSize(n int) RelayOption           { return func(r *OutboxRelay) { r.batchSize = n } }
func WithRetryBackoff(d time.Duration) RelayOption {
	return func(r *OutboxRelay) { r.backoff = d }
}

// NewOutboxRelay constructs a relay. Defaults: interval=1s, batch=100, backoff=30s.
func NewOutboxRelay(outbox *repo.MySQLOutboxRepo, producer *RabbitProducer, log *slog.Logger, opts ...RelayOption) *OutboxRelay {
	r := &OutboxRelay{
		outbox:    outbox,
		producer:  producer,
		log:       log,
		interval:  time.Second,
		batchSize: 100,
		backoff:   30 * time.Second,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Run polls until ctx is cancelled.
func (r *OutboxRelay) Run(ctx context.Context) error {
	ticker := time.NewTicker(r.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			if err := r.drainOnce(ctx); err != nil {
				r.log.Error("outbox drain failed", "err", err)
			}
		}
	}
}

func (r *OutboxRelay) drainOnce(ctx context.Context) error {
	rows, err := r.outbox.FetchPending(ctx, r.batchSize)
	if err != nil {
		return err
	}
	for _, row := range rows {
		if err := r.producer.Publish(ctx, row.RoutingKey, row.Payload); err != nil {
			r.log.Warn("publish failed, backing off",
				"outbox_id", row.ID, "routing_key", row.RoutingKey,
				"retries", row.RetryCount, "err", err)
			if err := r.outbox.MarkFailed(ctx, row.ID, r.backoff); err != nil {
				return err
			}
			continue
		}
		if err := r.outbox.MarkSent(ctx, row.ID); err != nil {
			return err
		}
	}
	return nil
}
