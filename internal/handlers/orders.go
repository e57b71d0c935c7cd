package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"shopapi/internal/metrics"
	"shopapi/internal/models"
	"shopapi/internal/store"
)

type createOrderRequest struct {
	Date       string `json:"date" binding:"required,datetime=2006-01-02"`
	CustomerID uint   `json:"customer_id" binding:"required"`
	ProductIDs []uint `json:"product_ids" binding:"omitempty,dive,gt=0"`
}

type updateOrderRequest struct {
	Date       *string `json:"date" binding:"omitempty,datetime=2006-01-02"`
	CustomerID *uint   `json:"customer_id" binding:"omitempty,gt=0"`
	Status     *string `json:"status" binding:"omitempty,oneof=Created Processing Shipped Completed"`
	ProductIDs *[]uint `json:"product_ids" binding:"omitempty,dive,gt=0"`
}

type addOrderProductRequest struct {
	ProductID uint `json:"product_id" binding:"required"`
}

// orderDetails always carries a products array, empty when the order has none.
type orderDetails struct {
	OrderID    uint             `json:"order_id"`
	Date       models.Date      `json:"date"`
	CustomerID uint             `json:"customer_id"`
	Status     string           `json:"status"`
	Products   []models.Product `json:"products"`
}

func newOrderDetails(o models.Order) orderDetails {
	products := o.Products
	if products == nil {
		products = []models.Product{}
	}
	return orderDetails{
		OrderID:    o.OrderID,
		Date:       o.Date,
		CustomerID: o.CustomerID,
		Status:     o.Status,
		Products:   products,
	}
}

func GetOrders(st *store.Store) gin.HandlerFunc {
	return func(c *gin.Context) {
		const route = "GET /orders"
		defer handlePanic(c, route)

		page, err := pageFromQuery(c)
		if err != nil {
			respondWithError(c, http.StatusBadRequest, route, err.Error())
			return
		}

		orders, total, err := st.ListOrders(c.Request.Context(), page)
		if err != nil {
			respondStoreError(c, route, err)
			return
		}

		setTotalCount(c, total)
		c.JSON(http.StatusOK, orders)
	}
}

/*
GET /orders/:id
- :id is a customer id
- 404 when the customer has no orders or does not exist
*/
func GetOrdersByCustomer(st *store.Store) gin.HandlerFunc {
	return func(c *gin.Context) {
		const route = "GET /orders/:id"
		defer handlePanic(c, route)

		customerID, ok := parseID(c, route, "id")
		if !ok {
			return
		}

		ctx := c.Request.Context()
		orders, err := st.OrdersByCustomer(ctx, customerID)
		if err != nil {
			respondStoreError(c, route, err)
			return
		}

		if len(orders) == 0 {
			found, err := st.CustomerExists(ctx, customerID)
			if err != nil {
				respondStoreError(c, route, err)
				return
			}
			if !found {
				respondWithError(c, http.StatusNotFound, route, "Customer could not be found with that customer ID")
				return
			}
			respondWithError(c, http.StatusNotFound, route, "No orders found for this customer")
			return
		}

		c.JSON(http.StatusOK, orders)
	}
}

func GetOrderDetails(st *store.Store) gin.HandlerFunc {
	return func(c *gin.Context) {
		const route = "GET /orders/:id/details"
		defer handlePanic(c, route)

		id, ok := parseID(c, route, "id")
		if !ok {
			return
		}

		order, err := st.OrderDetails(c.Request.Context(), id)
		if err != nil {
			respondStoreError(c, route, err)
			return
		}
		c.JSON(http.StatusOK, newOrderDetails(*order))
	}
}

func GetOrderTotal(st *store.Store) gin.HandlerFunc {
	return func(c *gin.Context) {
		const route = "GET /orders/:id/total"
		defer handlePanic(c, route)

		id, ok := parseID(c, route, "id")
		if !ok {
			return
		}

		total, err := st.OrderTotal(c.Request.Context(), id)
		if err != nil {
			respondStoreError(c, route, err)
			return
		}

		metrics.OrderValue.Observe(total.TotalPrice)
		c.JSON(http.StatusOK, total)
	}
}

func CreateOrder(st *store.Store) gin.HandlerFunc {
	return func(c *gin.Context) {
		const route = "POST /orders"
		defer handlePanic(c, route)

		var req createOrderRequest
		if !bindJSON(c, route, &req) {
			return
		}

		date, err := models.ParseDate(req.Date)
		if err != nil {
			respondWithError(c, http.StatusBadRequest, route, err.Error())
			return
		}

		order := models.Order{Date: date, CustomerID: req.CustomerID}
		if err := st.CreateOrder(c.Request.Context(), &order, req.ProductIDs); err != nil {
			respondStoreError(c, route, err)
			return
		}

		metrics.OrdersTotal.WithLabelValues(metrics.OrderCreated).Inc()
		routeLogger(c, route).WithField("order_id", order.OrderID).Info("order created")
		c.JSON(http.StatusCreated, gin.H{
			"message": "New order added successfully",
			"order":   order,
		})
	}
}

func UpdateOrder(st *store.Store) gin.HandlerFunc {
	return func(c *gin.Context) {
		const route = "PUT /orders/:id"
		defer handlePanic(c, route)

		id, ok := parseID(c, route, "id")
		if !ok {
			return
		}

		var req updateOrderRequest
		if !bindJSON(c, route, &req) {
			return
		}

		patch := models.OrderPatch{
			CustomerID: req.CustomerID,
			Status:     req.Status,
			ProductIDs: req.ProductIDs,
		}
		if req.Date != nil {
			date, err := models.ParseDate(*req.Date)
			if err != nil {
				respondWithError(c, http.StatusBadRequest, route, err.Error())
				return
			}
			patch.Date = &date
		}

		order, err := st.UpdateOrder(c.Request.Context(), id, patch)
		if err != nil {
			respondStoreError(c, route, err)
			return
		}

		metrics.OrdersTotal.WithLabelValues(metrics.OrderUpdated).Inc()
		c.JSON(http.StatusOK, gin.H{
			"message": "Order updated successfully",
			"order":   order,
		})
	}
}

func DeleteOrder(st *store.Store) gin.HandlerFunc {
	return func(c *gin.Context) {
		const route = "DELETE /orders/:id"
		defer handlePanic(c, route)

		id, ok := parseID(c, route, "id")
		if !ok {
			return
		}

		if err := st.DeleteOrder(c.Request.Context(), id); err != nil {
			respondStoreError(c, route, err)
			return
		}

		metrics.OrdersTotal.WithLabelValues(metrics.OrderDeleted).Inc()
		c.JSON(http.StatusOK, gin.H{"message": "Order deleted successfully."})
	}
}

func AddProductToOrder(st *store.Store) gin.HandlerFunc {
	return func(c *gin.Context) {
		const route = "POST /orders/:id/products"
		defer handlePanic(c, route)

		orderID, ok := parseID(c, route, "id")
		if !ok {
			return
		}

		var req addOrderProductRequest
		if !bindJSON(c, route, &req) {
			return
		}

		if err := st.AddProductToOrder(c.Request.Context(), orderID, req.ProductID); err != nil {
			respondStoreError(c, route, err)
			return
		}

		c.JSON(http.StatusCreated, gin.H{
			"message":    "Product added to order successfully",
			"order_id":   orderID,
			"product_id": req.ProductID,
		})
	}
}

func RemoveProductFromOrder(st *store.Store) gin.HandlerFunc {
	return func(c *gin.Context) {
		const route = "DELETE /orders/:id/products/:product_id"
		defer handlePanic(c, route)

		orderID, ok := parseID(c, route, "id")
		if !ok {
			return
		}
		productID, ok := parseID(c, route, "product_id")
		if !ok {
			return
		}

		if err := st.RemoveProductFromOrder(c.Request.Context(), orderID, productID); err != nil {
			respondStoreError(c, route, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"message": "Product removed from order successfully."})
	}
}

func TrackOrder(st *store.Store) gin.HandlerFunc {
	return func(c *gin.Context) {
		const route = "GET /track_order/:id"
		defer handlePanic(c, route)

		id, ok := parseID(c, route, "id")
		if !ok {
			return
		}

		tracking, err := st.TrackOrder(c.Request.Context(), id)
		if err != nil {
			respondStoreError(c, route, err)
			return
		}
		c.JSON(http.StatusOK, tracking)
	}
}

func CancelOrder(st *store.Store) gin.HandlerFunc {
	return func(c *gin.Context) {
		const route = "DELETE /cancel_order/:id"
		defer handlePanic(c, route)

		id, ok := parseID(c, route, "id")
		if !ok {
			return
		}

		if err := st.CancelOrder(c.Request.Context(), id); err != nil {
			respondStoreError(c, route, err)
			return
		}

		metrics.OrdersTotal.WithLabelValues(metrics.OrderCanceled).Inc()
		c.JSON(http.StatusOK, gin.H{"message": "Order canceled successfully"})
	}
}
