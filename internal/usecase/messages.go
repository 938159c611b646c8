package usecase

// FulfillmentStatusMsg is emitted on Kafka by the payment and shipping
// services when an order progresses downstream.
type FulfillmentStatusMsg struct {
	OrderID string `json:"orderId"`
	Step    string `json:"step"` // PAID | SHIPPED | DELIVERED
}

// OrderEventMsg is the wire shape of a drained domain event as the outbox
// relay publishes it to RabbitMQ.
type OrderEventMsg struct {
	Event    string `json:"event"`
	OrderID  string `json:"orderId"`
	Total    string `json:"total,omitempty"`
	Currency string `json:"currency,omitempty"`
	At       string `json:"at"`
}
