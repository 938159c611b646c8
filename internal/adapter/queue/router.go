package queue

import (
	"context"
	"log/slog"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
)

// Router fans one AMQP channel out to a handler per registered queue.
// Handlers ack on success; failures nack with requeue unless disabled.
type Router struct {
	ch           *amqp.Channel
	log          *slog.Logger
	prefetch     int
	callTimeout  time.Duration
	requeueOnErr bool
	bindings     map[string]Handler
}

type RouterOption func(*Router)

func WithPrefetch(n int) RouterOption          { return func(r *Router) { r.prefetch = n } }
func WithTimeout(d time.Duration) RouterOption { return func(r *Router) { r.callTimeout = d } }
func WithRequeue(b bool) RouterOption          { return func(r *Router) { r.requeueOnErr = b } }

func NewRouter(ch *amqp.Channel, log *slog.Logger, opts ...RouterOption) *Router {
	r := &Router{
		ch:           ch,
		log:          log,
		prefetch:     50,
		callTimeout:  10 * time.Second,
		requeueOnErr: true,
		bindings:     make(map[string]Handler),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Register binds a handler to a queue. Later registrations for the same
// queue replace earlier ones.
func (r *Router) Register(queueName string, h Handler) {
	r.bindings[queueName] = h
}

// Start opens one consumer per registered queue and returns; each consumer
// runs on its own goroutine until the channel closes. Prefetch applies
// channel-wide.
func (r *Router) Start() error {
	if err := r.ch.Qos(r.prefetch, 0, false); err != nil {
		return err
	}

	for queueName, h := range r.bindings {
		deliveries, err := r.ch.Consume(
			queueName,
			"shoporder."+queueName, // consumer tag
			false,                  // manual ack
			false, false, false, nil,
		)
		if err != nil {
			return err
		}
		go r.consume(queueName, h, deliveries)
	}
	return nil
}

func (r *Router) consume(queueName string, h Handler, deliveries <-chan amqp.Delivery) {
	for d := range deliveries {
		ctx, cancel := context.WithTimeout(context.Background(), r.callTimeout)
		err := h.Handle(ctx, d)
		cancel()

		if err != nil {
			r.log.Error("queue handler failed",
				"queue", queueName, "routing_key", d.RoutingKey,
				"requeue", r.requeueOnErr, "err", err)
			_ = d.Nack(false, r.requeueOnErr)
			continue
		}
		_ = d.Ack(false)
	}
	r.log.Info("consumer stopped", "queue", queueName)
}
