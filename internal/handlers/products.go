package handlers

import (
	"errors"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"

	"shopapi/internal/metrics"
	"shopapi/internal/models"
	"shopapi/internal/store"
)

type createProductRequest struct {
	Name  string   `json:"name" binding:"required,max=255"`
	Price *float64 `json:"price" binding:"required,gte=0"`
	Stock *int     `json:"stock" binding:"omitempty,gte=0"`
}

type updateProductRequest struct {
	Name  *string  `json:"name" binding:"omitempty,min=1,max=255"`
	Price *float64 `json:"price" binding:"omitempty,gte=0"`
	Stock *int     `json:"stock" binding:"omitempty,gte=0"`
}

type restockRequest struct {
	Threshold *int `json:"threshold" binding:"omitempty,gte=0"`
}

/*
GET /products
- page + limit both given: paginated
- otherwise: every product
*/
func GetProducts(st *store.Store) gin.HandlerFunc {
	return func(c *gin.Context) {
		const route = "GET /products"
		defer handlePanic(c, route)

		page, err := pageFromQuery(c)
		if err != nil {
			respondWithError(c, http.StatusBadRequest, route, err.Error())
			return
		}

		products, total, err := st.ListProducts(c.Request.Context(), page)
		if err != nil {
			respondStoreError(c, route, err)
			return
		}

		routeLogger(c, route).Debugf("returning %d of %d products", len(products), total)
		setTotalCount(c, total)
		c.JSON(http.StatusOK, products)
	}
}

func GetProduct(st *store.Store) gin.HandlerFunc {
	return func(c *gin.Context) {
		const route = "GET /products/:id"
		defer handlePanic(c, route)

		id, ok := parseID(c, route, "id")
		if !ok {
			return
		}

		product, err := st.GetProduct(c.Request.Context(), id)
		if err != nil {
			respondStoreError(c, route, err)
			return
		}
		c.JSON(http.StatusOK, product)
	}
}

func GetProductByName(st *store.Store) gin.HandlerFunc {
	return func(c *gin.Context) {
		const route = "GET /products/name_of_product/:name"
		defer handlePanic(c, route)

		product, err := st.ProductByName(c.Request.Context(), c.Param("name"))
		if err != nil {
			respondStoreError(c, route, err)
			return
		}
		c.JSON(http.StatusOK, product)
	}
}

func CreateProduct(st *store.Store) gin.HandlerFunc {
	return func(c *gin.Context) {
		const route = "POST /products"
		defer handlePanic(c, route)

		var req createProductRequest
		if !bindJSON(c, route, &req) {
			return
		}

		product := models.Product{Name: req.Name, Price: *req.Price}
		if req.Stock != nil {
			product.Stock = *req.Stock
		}
		if err := st.CreateProduct(c.Request.Context(), &product); err != nil {
			respondStoreError(c, route, err)
			return
		}

		c.JSON(http.StatusCreated, gin.H{
			"message": "New product added successfully",
			"product": product,
		})
	}
}

func UpdateProduct(st *store.Store) gin.HandlerFunc {
	return func(c *gin.Context) {
		const route = "PUT /products/:id"
		defer handlePanic(c, route)

		id, ok := parseID(c, route, "id")
		if !ok {
			return
		}

		var req updateProductRequest
		if !bindJSON(c, route, &req) {
			return
		}

		product, err := st.UpdateProduct(c.Request.Context(), id, models.ProductPatch{
			Name:  req.Name,
			Price: req.Price,
			Stock: req.Stock,
		})
		if err != nil {
			respondStoreError(c, route, err)
			return
		}

		c.JSON(http.StatusOK, gin.H{
			"message": "Product updated successfully",
			"product": product,
		})
	}
}

func DeleteProduct(st *store.Store) gin.HandlerFunc {
	return func(c *gin.Context) {
		const route = "DELETE /products/:id"
		defer handlePanic(c, route)

		id, ok := parseID(c, route, "id")
		if !ok {
			return
		}

		if err := st.DeleteProduct(c.Request.Context(), id); err != nil {
			respondStoreError(c, route, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"message": "Product deleted successfully."})
	}
}

/*
POST /restock_products
- body optional, threshold defaults to 10
- products below the threshold gain 20 units
*/
func RestockProducts(st *store.Store) gin.HandlerFunc {
	return func(c *gin.Context) {
		const route = "POST /restock_products"
		defer handlePanic(c, route)

		var req restockRequest
		if err := c.ShouldBindJSON(&req); err != nil && !errors.Is(err, io.EOF) {
			respondValidationError(c, route, err)
			return
		}

		threshold := store.DefaultRestockThreshold
		if req.Threshold != nil {
			threshold = *req.Threshold
		}

		products, err := st.Restock(c.Request.Context(), threshold)
		if err != nil {
			respondStoreError(c, route, err)
			return
		}

		metrics.ProductsRestocked.Add(float64(len(products)))
		routeLogger(c, route).WithField("threshold", threshold).Infof("restocked %d products", len(products))
		c.JSON(http.StatusOK, products)
	}
}
