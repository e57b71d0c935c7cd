package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"shopapi/internal/database"
	"shopapi/internal/metrics"
	"shopapi/internal/middleware"
	"shopapi/internal/store"
	"shopapi/internal/validation"
)

const serviceName = "shopapi"

// NewRouter builds the engine with the standard middleware chain and every
// route registered.
func NewRouter(st *store.Store, requestTimeout time.Duration) *gin.Engine {
	r := gin.New()
	r.Use(
		gin.Recovery(),
		middleware.RequestID(),
		middleware.AccessLog(),
		metrics.PrometheusMiddleware(serviceName),
		middleware.Timeout(requestTimeout),
	)
	RegisterRoutes(r, st)
	return r
}

func RegisterRoutes(r gin.IRouter, st *store.Store) {
	validation.Setup()

	r.GET("/health", Health(st))
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	r.GET("/products", GetProducts(st))
	r.GET("/products/:id", GetProduct(st))
	r.GET("/products/name_of_product/:name", GetProductByName(st))
	r.POST("/products", CreateProduct(st))
	r.PUT("/products/:id", UpdateProduct(st))
	r.DELETE("/products/:id", DeleteProduct(st))
	r.POST("/restock_products", RestockProducts(st))

	r.GET("/customers", GetCustomers(st))
	r.GET("/customers/:id", GetCustomer(st))
	r.GET("/customers/:id/orders", GetCustomerOrders(st))
	r.POST("/customers", CreateCustomer(st))
	r.PUT("/customers/:id", UpdateCustomer(st))
	r.DELETE("/customers/:id", DeleteCustomer(st))

	r.GET("/customer_accounts", GetCustomerAccounts(st))
	r.GET("/customer_accounts/:id", GetCustomerAccount(st))
	r.POST("/customer_accounts", CreateCustomerAccount(st))
	r.PUT("/customer_accounts/:id", UpdateCustomerAccount(st))
	r.DELETE("/customer_accounts/:id", DeleteCustomerAccount(st))

	orders := r.Group("/orders")
	{
		orders.GET("", GetOrders(st))
		orders.POST("", CreateOrder(st))
		orders.GET("/:id", GetOrdersByCustomer(st))
		orders.PUT("/:id", UpdateOrder(st))
		orders.DELETE("/:id", DeleteOrder(st))
		orders.GET("/:id/details", GetOrderDetails(st))
		orders.GET("/:id/total", GetOrderTotal(st))
		orders.POST("/:id/products", AddProductToOrder(st))
		orders.DELETE("/:id/products/:product_id", RemoveProductFromOrder(st))
	}

	r.GET("/track_order/:id", TrackOrder(st))
	r.DELETE("/cancel_order/:id", CancelOrder(st))
}

// Health reports whether the database answers a ping.
func Health(st *store.Store) gin.HandlerFunc {
	return func(c *gin.Context) {
		const route = "GET /health"
		defer handlePanic(c, route)

		if err := database.Ping(c.Request.Context(), st.DB()); err != nil {
			routeLogger(c, route).WithError(err).Warn("database ping failed")
			c.JSON(http.StatusServiceUnavailable, gin.H{"status": "unavailable", "error": "database unavailable"})
			return
		}
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	}
}
