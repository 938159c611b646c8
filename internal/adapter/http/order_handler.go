package http

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/sMiccu/shoporder/internal/adapter/http/middleware"
	"github.com/sMiccu/shoporder/internal/domain"
	"github.com/sMiccu/shoporder/internal/usecase"
)

// OrderHandler translates HTTP requests into use-case calls. Error kinds
// map to status codes here and nowhere earlier.
type OrderHandler struct {
	create     *usecase.CreateOrder
	addItem    *usecase.AddItemToOrder
	removeItem *usecase.RemoveItemFromOrder
	confirm    *usecase.ConfirmOrder
	cancel     *usecase.CancelOrder
	get        *usecase.GetOrder
}

func NewOrderHandler(
	create *usecase.CreateOrder,
	addItem *usecase.AddItemToOrder,
	removeItem *usecase.RemoveItemFromOrder,
	confirm *usecase.ConfirmOrder,
	cancel *usecase.CancelOrder,
	get *usecase.GetOrder,
) *OrderHandler {
	return &OrderHandler{
		create:     create,
		addItem:    addItem,
		removeItem: removeItem,
		confirm:    confirm,
		cancel:     cancel,
		get:        get,
	}
}

type createOrderReq struct {
	CustomerID string `json:"customerId" binding:"required,uuid"`
}

type createOrderResp struct {
	OrderID string `json:"orderId"`
	Status  string `json:"status"`
}

func (h *OrderHandler) CreateOrder(c *gin.Context) {
	var req createOrderReq
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "bad_request"})
		return
	}

	idemKey := c.GetHeader("X-Idempotency-Key") // prevent duplicated requests

	ctx, cancel := context.WithTimeout(c.Request.Context(), 3*time.Second)
	defer cancel()

	out, err := h.create.Execute(ctx, usecase.CreateOrderInput{
		CustomerID:     req.CustomerID,
		IdempotencyKey: idemKey,
	})
	if err != nil {
		writeError(c, err)
		return
	}

	c.JSON(http.StatusCreated, createOrderResp{OrderID: out.OrderID, Status: out.Status})
}

type addItemReq struct {
	ProductID string `json:"productId" binding:"required,uuid"`
	Quantity  int    `json:"quantity" binding:"required"`
}

func (h *OrderHandler) AddItem(c *gin.Context) {
	var req addItemReq
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "bad_request"})
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
	defer cancel()

	out, err := h.addItem.Execute(ctx, usecase.AddItemInput{
		OrderID:   c.Param("id"),
		ProductID: req.ProductID,
		Quantity:  req.Quantity,
	})
	if err != nil {
		writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"orderId": out.OrderID,
		"status":  out.Status,
		"total":   out.Total,
	})
}

func (h *OrderHandler) RemoveItem(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
	defer cancel()

	if err := h.removeItem.Execute(ctx, c.Param("id"), c.Param("productId")); err != nil {
		writeError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *OrderHandler) ConfirmOrder(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
	defer cancel()

	if err := h.confirm.Execute(ctx, c.Param("id")); err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": string(domain.StatusConfirmed)})
}

func (h *OrderHandler) CancelOrder(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
	defer cancel()

	if err := h.cancel.Execute(ctx, c.Param("id")); err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": string(domain.StatusCancelled)})
}

func (h *OrderHandler) GetOrderByID(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
	defer cancel()

	order, err := h.get.Execute(ctx, c.Param("id"))
	if err != nil {
		writeError(c, err)
		return
	}

	items := make([]gin.H, 0, order.ItemCount())
	for _, it := range order.Items() {
		items = append(items, gin.H{
			"productId": it.ProductID().String(),
			"quantity":  it.Quantity(),
			"unitPrice": it.UnitPrice().Amount().String(),
			"subtotal":  it.Subtotal().Amount().String(),
		})
	}
	total := order.Total()

	c.JSON(http.StatusOK, gin.H{
		"id":         order.ID().String(),
		"customerId": order.CustomerID().String(),
		"status":     string(order.Status()),
		"currency":   total.Currency(),
		"total":      total.Amount().String(),
		"items":      items,
		"createdAt":  order.CreatedAt().UTC().Format(time.RFC3339),
		"version":    order.Version(),
	})
}

// writeError maps error kinds onto HTTP statuses: invariant violations are
// the caller's fault (400/422), absences are 404, and transient conflicts
// are 409 so clients know a retry of the whole cycle may succeed.
func writeError(c *gin.Context, err error) {
	status := http.StatusInternalServerError
	switch {
	case errors.Is(err, usecase.ErrOrderNotFound),
		errors.Is(err, usecase.ErrProductNotFound):
		status = http.StatusNotFound
	case errors.Is(err, usecase.ErrConcurrencyConflict):
		status = http.StatusConflict
		c.Set(middleware.VersionConflictKey, true)
	case errors.Is(err, usecase.ErrInsufficientStock),
		errors.Is(err, usecase.ErrDuplicate):
		status = http.StatusConflict
	case errors.Is(err, domain.ErrOrderNotModifiable),
		errors.Is(err, domain.ErrOrderCannotBeCancelled),
		errors.Is(err, domain.ErrInvalidTransition):
		status = http.StatusUnprocessableEntity
	case errors.Is(err, domain.ErrInvalidQuantity),
		errors.Is(err, domain.ErrEmptyOrder),
		errors.Is(err, domain.ErrCurrencyMismatch),
		errors.Is(err, usecase.ErrProductUnavailable):
		status = http.StatusBadRequest
	}
	c.JSON(status, gin.H{"error": err.Error()})
}
