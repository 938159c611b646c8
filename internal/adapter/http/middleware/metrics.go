package middleware

import (
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	requestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "shoporder",
			Subsystem: "http",
			Name:      "requests_total",
			Help:      "HTTP requests by method, route and status.",
		},
		[]string{"method", "route", "status"},
	)

	requestSeconds = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "shoporder",
			Subsystem: "http",
			Name:      "request_duration_seconds",
			Help:      "HTTP request latency.",
			Buckets:   prometheus.DefBuckets,
		},
		[]string{"method", "route"},
	)

	inFlight = promauto.NewGauge(
		prometheus.GaugeOpts{
			Namespace: "shoporder",
			Subsystem: "http",
			Name:      "requests_in_flight",
			Help:      "HTTP requests currently being served.",
		},
	)

	versionConflicts = promauto.NewCounter(
		prometheus.CounterOpts{
			Namespace: "shoporder",
			Name:      "order_version_conflicts_total",
			Help:      "Saves rejected by the optimistic version check.",
		},
	)
)

// VersionConflictKey marks a response caused by the optimistic version
// check. Other 409s (insufficient stock, duplicate submit) must not carry
// it.
const VersionConflictKey = "order_version_conflict"

func MetricsMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		inFlight.Inc()
		c.Next()
		inFlight.Dec()

		route := c.FullPath()
		if route == "" {
			route = "unmatched"
		}
		status := c.Writer.Status()

		requestsTotal.WithLabelValues(c.Request.Method, route, strconv.Itoa(status)).Inc()
		requestSeconds.WithLabelValues(c.Request.Method, route).Observe(time.Since(start).Seconds())
		if c.GetBool(VersionConflictKey) {
			versionConflicts.Inc()
		}
	}
}
