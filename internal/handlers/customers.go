package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"shopapi/internal/models"
	"shopapi/internal/store"
)

type createCustomerRequest struct {
	Name  string `json:"name" binding:"required,max=255"`
	Email string `json:"email" binding:"required,email,max=320"`
	Phone string `json:"phone" binding:"required,max=15"`
}

type updateCustomerRequest struct {
	Name  *string `json:"name" binding:"omitempty,min=1,max=255"`
	Email *string `json:"email" binding:"omitempty,email,max=320"`
	Phone *string `json:"phone" binding:"omitempty,min=1,max=15"`
}

func GetCustomers(st *store.Store) gin.HandlerFunc {
	return func(c *gin.Context) {
		const route = "GET /customers"
		defer handlePanic(c, route)

		page, err := pageFromQuery(c)
		if err != nil {
			respondWithError(c, http.StatusBadRequest, route, err.Error())
			return
		}

		customers, total, err := st.ListCustomers(c.Request.Context(), page)
		if err != nil {
			respondStoreError(c, route, err)
			return
		}

		setTotalCount(c, total)
		c.JSON(http.StatusOK, customers)
	}
}

func GetCustomer(st *store.Store) gin.HandlerFunc {
	return func(c *gin.Context) {
		const route = "GET /customers/:id"
		defer handlePanic(c, route)

		id, ok := parseID(c, route, "id")
		if !ok {
			return
		}

		customer, err := st.GetCustomer(c.Request.Context(), id)
		if err != nil {
			respondStoreError(c, route, err)
			return
		}
		c.JSON(http.StatusOK, customer)
	}
}

// GetCustomerOrders returns a customer's order history with products attached.
func GetCustomerOrders(st *store.Store) gin.HandlerFunc {
	return func(c *gin.Context) {
		const route = "GET /customers/:id/orders"
		defer handlePanic(c, route)

		id, ok := parseID(c, route, "id")
		if !ok {
			return
		}

		orders, err := st.CustomerOrders(c.Request.Context(), id)
		if err != nil {
			respondStoreError(c, route, err)
			return
		}

		history := make([]orderDetails, 0, len(orders))
		for _, o := range orders {
			history = append(history, newOrderDetails(o))
		}
		c.JSON(http.StatusOK, history)
	}
}

func CreateCustomer(st *store.Store) gin.HandlerFunc {
	return func(c *gin.Context) {
		const route = "POST /customers"
		defer handlePanic(c, route)

		var req createCustomerRequest
		if !bindJSON(c, route, &req) {
			return
		}

		customer := models.Customer{Name: req.Name, Email: req.Email, Phone: req.Phone}
		if err := st.CreateCustomer(c.Request.Context(), &customer); err != nil {
			respondStoreError(c, route, err)
			return
		}

		c.JSON(http.StatusCreated, gin.H{
			"message":  "New customer added successfully",
			"customer": customer,
		})
	}
}

func UpdateCustomer(st *store.Store) gin.HandlerFunc {
	return func(c *gin.Context) {
		const route = "PUT /customers/:id"
		defer handlePanic(c, route)

		id, ok := parseID(c, route, "id")
		if !ok {
			return
		}

		var req updateCustomerRequest
		if !bindJSON(c, route, &req) {
			return
		}

		customer, err := st.UpdateCustomer(c.Request.Context(), id, models.CustomerPatch{
			Name:  req.Name,
			Email: req.Email,
			Phone: req.Phone,
		})
		if err != nil {
			respondStoreError(c, route, err)
			return
		}

		c.JSON(http.StatusOK, gin.H{
			"message":  "Customer updated successfully",
			"customer": customer,
		})
	}
}

func DeleteCustomer(st *store.Store) gin.HandlerFunc {
	return func(c *gin.Context) {
		const route = "DELETE /customers/:id"
		defer handlePanic(c, route)

		id, ok := parseID(c, route, "id")
		if !ok {
			return
		}

		if err := st.DeleteCustomer(c.Request.Context(), id); err != nil {
			respondStoreError(c, route, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"message": "Customer deleted successfully."})
	}
}
