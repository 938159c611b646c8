package http

import (
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/sMiccu/shoporder/internal/adapter/http/middleware"
	"github.com/sMiccu/shoporder/internal/logging"
)

func NewRouter(h *OrderHandler, th *TokenHandler, authz *middleware.Authz) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery(), middleware.MetricsMiddleware())

	l := logging.New("http")
	r.Use(middleware.Logging(l))

	r.GET("/healthz", func(c *gin.Context) {
		c.JSON(200, gin.H{"ok": true})
	})
	// Prometheus endpoint (scraped by Prometheus)
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))
	r.POST("/v1/token", th.IssueToken)

	v1 := r.Group("/v1")
	{
		v1.POST("/orders", authz.Require("orders.write"), h.CreateOrder)
		v1.POST("/orders/:id/items", authz.Require("orders.write"), h.AddItem)
		v1.DELETE("/orders/:id/items/:productId", authz.Require("orders.write"), h.RemoveItem)
		v1.POST("/orders/:id/confirm", authz.Require("orders.write"), h.ConfirmOrder)
		v1.POST("/orders/:id/cancel", authz.Require("orders.write"), h.CancelOrder)
		v1.GET("/orders/:id", authz.Require("orders.read"), h.GetOrderByID)
	}

	return r
}
