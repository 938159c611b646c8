package queue

import (
	"context"
	"log/slog"

	"github.com/sMiccu/shoporder/internal/usecase"
)

// AuditHandler is the in-process consumer of the order event queues: every
// confirmed or cancelled order lands in the structured audit log. External
// subscribers (notification, analytics) bind their own queues to the same
// exchange.
type AuditHandler struct {
	log *slog.Logger
}

func NewAuditHandler(log *slog.Logger) *AuditHandler {
	return &AuditHandler{log: log}
}

// HandleEvent is intended for queue.JSONHandler[usecase.OrderEventMsg].
func (h *AuditHandler) HandleEvent(ctx context.Context, msg usecase.OrderEventMsg) error {
	attrs := []any{
		"event", msg.Event,
		"order_id", msg.OrderID,
		"at", msg.At,
	}
	if msg.Total != "" {
		attrs = append(attrs, "total", msg.Total, "currency", msg.Currency)
	}
	h.log.Info("order_event", attrs...)
	return nil
}
