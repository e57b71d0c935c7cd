package metrics

import (
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Order lifecycle events counted by OrdersTotal.
const (
	OrderCreated  = "created"
	OrderUpdated  = "updated"
	OrderCanceled = "canceled"
	OrderDeleted  = "deleted"
)

var (
	// RequestsTotal tracks total HTTP requests
	RequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"service", "method", "endpoint", "status"},
	)

	// RequestDuration tracks HTTP request duration
	RequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "HTTP request duration in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"service", "method", "endpoint"},
	)

	// OrdersTotal tracks order lifecycle events
	OrdersTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "orders_total",
			Help: "Total number of order lifecycle events",
		},
		[]string{"event"},
	)

	// ProductsRestocked counts products topped up by a restock run
	ProductsRestocked = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "products_restocked_total",
			Help: "Total number of products restocked",
		},
	)

	// OrderValue tracks order totals in currency units
	OrderValue = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "order_total_price",
			Help:    "Order totals reported by the total endpoint",
			Buckets: []float64{10, 50, 100, 500, 1000, 5000},
		},
	)
)

// PrometheusMiddleware creates a Gin middleware for automatic metrics collection.
// Unmatched routes are recorded under the "unmatched" endpoint label.
func PrometheusMiddleware(serviceName string) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()

		c.Next()

		duration := time.Since(start).Seconds()
		status := strconv.Itoa(c.Writer.Status())
		endpoint := c.FullPath()
		if endpoint == "" {
			endpoint = "unmatched"
		}

		RequestsTotal.WithLabelValues(
			serviceName,
			c.Request.Method,
			endpoint,
			status,
		).Inc()

		RequestDuration.WithLabelValues(
			serviceName,
			c.Request.Method,
			endpoint,
		).Observe(duration)
	}
}
