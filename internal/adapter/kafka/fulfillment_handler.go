package kafka

import (
	"context"
	"errors"
	"log/slog"

	"github.com/sMiccu/shoporder/internal/domain"
	"github.com/sMiccu/shoporder/internal/usecase"
)

// FulfillmentHandler applies payment/shipping status reports to orders.
// Out-of-order reports fail permanently on the aggregate's transition
// checks; those are logged and marked rather than retried, since a replay
// would fail identically.
type FulfillmentHandler struct {
	update *usecase.UpdateFulfillment
	log    *slog.Logger
}

func NewFulfillmentHandler(update *usecase.UpdateFulfillment, log *slog.Logger) *FulfillmentHandler {
	return &FulfillmentHandler{update: update, log: log}
}

func (h *FulfillmentHandler) Handle(ctx context.Context, msg usecase.FulfillmentStatusMsg) error {
	err := h.update.Execute(ctx, msg.OrderID, msg.Step)
	if errors.Is(err, domain.ErrInvalidTransition) || errors.Is(err, usecase.ErrOrderNotFound) {
		h.log.Warn("fulfillment report dropped",
			"order_id", msg.OrderID, "step", msg.Step, "err", err)
		return nil
	}
	return err
}
