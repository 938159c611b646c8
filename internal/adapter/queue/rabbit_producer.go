package queue

import (
	"context"
	"fmt"

	amqp "github.com/rabbitmq/amqp091-go"
)

const (
	exchangeName = "order.events"

	confirmedQueue = "order.confirmed.q"
	cancelledQueue = "order.cancelled.q"
)

// RabbitProducer publishes drained order events to the order.events topic
// exchange, routed by event name (order.confirmed, order.cancelled).
type RabbitProducer struct {
	ch *amqp.Channel
}

// NewRabbitProducer sets up the exchange, queues, and bindings once at startup.
func NewRabbitProducer(ch *amqp.Channel) (*RabbitProducer, error) {
	if err := ch.ExchangeDeclare(
		exchangeName,
		"topic",
		true,  // durable
		false, // auto-delete
		false, // internal
		false, // no-wait
		nil,
	); err != nil {
		return nil, fmt.Errorf("declare exchange: %w", err)
	}

	bindings := map[string]string{
		confirmedQueue: "order.confirmed",
		cancelledQueue: "order.cancelled",
	}
	for queue, routingKey := range bindings {
		q, err := ch.QueueDeclare(
			queue,
			true,  // durable
			false, // auto-delete
			false, // exclusive
			false, // no-wait
			nil,
		)
		if err != nil {
			return nil, fmt.Errorf("declare queue %s: %w", queue, err)
		}
		if err := ch.QueueBind(q.Name, routingKey, exchangeName, false, nil); err != nil {
			return nil, fmt.Errorf("bind queue %s: %w", queue, err)
		}
	}

	// publisher confirms so the relay only marks rows sent after broker ack
	if err := ch.Confirm(false); err != nil {
		return nil, fmt.Errorf("enable confirm mode: %w", err)
	}

	return &RabbitProducer{ch: ch}, nil
}

// Publish sends one event payload under its routing key and waits for the
// broker ack. Returning nil means the broker has the message; the relay
// may mark the outbox row sent.
func (p *RabbitProducer) Publish(ctx context.Context, routingKey string, body []byte) error {
	pub := amqp.Publishing{
		ContentType:  "application/json",
		DeliveryMode: amqp.Persistent,
		Body:         body,
	}
	confirmation, err := p.ch.PublishWithDeferredConfirmWithContext(
		ctx,
		exchangeName,
		routingKey,
		false, // mandatory
		false, // immediate
		pub,
	)
	if err != nil {
		return fmt.Errorf("publish %s: %w", routingKey, err)
	}
	acked, err := confirmation.WaitContext(ctx)
	if err != nil {
		return fmt.Errorf("confirm %s: %w", routingKey, err)
	}
	if !acked {
		return fmt.Errorf("publish %s: nacked by broker", routingKey)
	}
	return nil
}
