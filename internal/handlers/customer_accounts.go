package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"shopapi/internal/models"
	"shopapi/internal/store"
)

// bcrypt ignores input past 72 bytes, so longer passwords are rejected.
type createAccountRequest struct {
	Username   string `json:"username" binding:"required,max=255"`
	Password   string `json:"password" binding:"required,maxbytes=72"`
	CustomerID uint   `json:"customer_id" binding:"required"`
}

type updateAccountRequest struct {
	Username   *string `json:"username" binding:"omitempty,min=1,max=255"`
	Password   *string `json:"password" binding:"omitempty,min=1,maxbytes=72"`
	CustomerID *uint   `json:"customer_id" binding:"omitempty,gt=0"`
}

func GetCustomerAccounts(st *store.Store) gin.HandlerFunc {
	return func(c *gin.Context) {
		const route = "GET /customer_accounts"
		defer handlePanic(c, route)

		page, err := pageFromQuery(c)
		if err != nil {
			respondWithError(c, http.StatusBadRequest, route, err.Error())
			return
		}

		accounts, total, err := st.ListAccounts(c.Request.Context(), page)
		if err != nil {
			respondStoreError(c, route, err)
			return
		}

		setTotalCount(c, total)
		c.JSON(http.StatusOK, accounts)
	}
}

func GetCustomerAccount(st *store.Store) gin.HandlerFunc {
	return func(c *gin.Context) {
		const route = "GET /customer_accounts/:id"
		defer handlePanic(c, route)

		id, ok := parseID(c, route, "id")
		if !ok {
			return
		}

		account, err := st.GetAccount(c.Request.Context(), id)
		if err != nil {
			respondStoreError(c, route, err)
			return
		}
		c.JSON(http.StatusOK, account)
	}
}

func CreateCustomerAccount(st *store.Store) gin.HandlerFunc {
	return func(c *gin.Context) {
		const route = "POST /customer_accounts"
		defer handlePanic(c, route)

		var req createAccountRequest
		if !bindJSON(c, route, &req) {
			return
		}

		account, err := st.CreateAccount(c.Request.Context(), store.AccountInput{
			Username:   req.Username,
			Password:   req.Password,
			CustomerID: req.CustomerID,
		})
		if err != nil {
			respondStoreError(c, route, err)
			return
		}

		c.JSON(http.StatusCreated, gin.H{
			"message":          "New customer account added successfully",
			"customer_account": account,
		})
	}
}

func UpdateCustomerAccount(st *store.Store) gin.HandlerFunc {
	return func(c *gin.Context) {
		const route = "PUT /customer_accounts/:id"
		defer handlePanic(c, route)

		id, ok := parseID(c, route, "id")
		if !ok {
			return
		}

		var req updateAccountRequest
		if !bindJSON(c, route, &req) {
			return
		}

		account, err := st.UpdateAccount(c.Request.Context(), id, models.CustomerAccountPatch{
			Username:   req.Username,
			Password:   req.Password,
			CustomerID: req.CustomerID,
		})
		if err != nil {
			respondStoreError(c, route, err)
			return
		}

		c.JSON(http.StatusOK, gin.H{
			"message":          "Customer Account updated successfully",
			"customer_account": account,
		})
	}
}

func DeleteCustomerAccount(st *store.Store) gin.HandlerFunc {
	return func(c *gin.Context) {
		const route = "DELETE /customer_accounts/:id"
		defer handlePanic(c, route)

		id, ok := parseID(c, route, "id")
		if !ok {
			return
		}

		if err := st.DeleteAccount(c.Request.Context(), id); err != nil {
			respondStoreError(c, route, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"message": "Customer account deleted successfully."})
	}
}
