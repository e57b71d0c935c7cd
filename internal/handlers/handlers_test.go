package handlers

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	log "github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"shopapi/internal/config"
	"shopapi/internal/database"
	"shopapi/internal/models"
	"shopapi/internal/store"
)

func init() {
	gin.SetMode(gin.TestMode)
	log.SetOutput(io.Discard)
}

func newTestRouter(t *testing.T) *gin.Engine {
	t.Helper()

	db, err := database.Connect(config.DriverSQLite, "file::memory:?_pragma=foreign_keys(1)", database.PoolOptions{
		MaxOpenConns: 1,
		MaxIdleConns: 1,
	})
	require.NoError(t, err)
	require.NoError(t, database.Migrate(db))

	sqlDB, err := db.DB()
	require.NoError(t, err)
	t.Cleanup(func() { _ = sqlDB.Close() })

	return NewRouter(store.New(db, store.WithPasswordCost(bcrypt.MinCost)), 5*time.Second)
}

func do(t *testing.T, r http.Handler, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()

	var reader io.Reader
	switch b := body.(type) {
	case nil:
	case string:
		reader = bytes.NewBufferString(b)
	default:
		raw, err := json.Marshal(b)
		require.NoError(t, err)
		reader = bytes.NewReader(raw)
	}

	req := httptest.NewRequest(method, path, reader)
	if reader != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func decode[T any](t *testing.T, w *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &v), w.Body.String())
	return v
}

type errorBody struct {
	Error  string            `json:"error"`
	Fields map[string]string `json:"fields"`
}

func createCustomer(t *testing.T, r http.Handler, name string) models.Customer {
	t.Helper()
	w := do(t, r, http.MethodPost, "/customers", gin.H{"name": name, "email": name + "@x.com", "phone": "555-0100"})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	return decode[struct {
		Customer models.Customer `json:"customer"`
	}](t, w).Customer
}

func createProduct(t *testing.T, r http.Handler, name string, price float64, stock int) models.Product {
	t.Helper()
	w := do(t, r, http.MethodPost, "/products", gin.H{"name": name, "price": price, "stock": stock})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	return decode[struct {
		Product models.Product `json:"product"`
	}](t, w).Product
}

func createOrder(t *testing.T, r http.Handler, body gin.H) models.Order {
	t.Helper()
	w := do(t, r, http.MethodPost, "/orders", body)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	return decode[struct {
		Order models.Order `json:"order"`
	}](t, w).Order
}

func TestCustomerScenario(t *testing.T) {
	r := newTestRouter(t)

	w := do(t, r, http.MethodPost, "/customers", gin.H{"name": "A", "email": "a@x.com", "phone": "555-0100"})
	require.Equal(t, http.StatusCreated, w.Code)
	created := decode[struct {
		Message  string          `json:"message"`
		Customer models.Customer `json:"customer"`
	}](t, w)
	assert.Equal(t, "New customer added successfully", created.Message)
	id := created.Customer.CustomerID
	require.NotZero(t, id)

	path := fmt.Sprintf("/customers/%d", id)
	w = do(t, r, http.MethodGet, path, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, fmt.Sprintf(`{"customer_id":%d,"name":"A","email":"a@x.com","phone":"555-0100"}`, id), w.Body.String())

	w = do(t, r, http.MethodDelete, path, nil)
	require.Equal(t, http.StatusOK, w.Code)

	w = do(t, r, http.MethodGet, path, nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Equal(t, "Customer could not be found with that customer ID", decode[errorBody](t, w).Error)
}

func TestCreateCustomerValidation(t *testing.T) {
	r := newTestRouter(t)

	w := do(t, r, http.MethodPost, "/customers", gin.H{"name": "A", "email": "not-an-email"})
	require.Equal(t, http.StatusBadRequest, w.Code)
	body := decode[errorBody](t, w)
	assert.Equal(t, "validation failed", body.Error)
	assert.Equal(t, "Not a valid email address.", body.Fields["email"])
	assert.Equal(t, "Missing data for required field.", body.Fields["phone"])

	w = do(t, r, http.MethodPost, "/customers", nil)
	require.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, decode[errorBody](t, w).Fields, "body")

	w = do(t, r, http.MethodGet, "/customers", nil)
	assert.JSONEq(t, `[]`, w.Body.String())
}

func TestPartialUpdateKeepsOtherFields(t *testing.T) {
	r := newTestRouter(t)
	c := createCustomer(t, r, "bob")
	path := fmt.Sprintf("/customers/%d", c.CustomerID)

	w := do(t, r, http.MethodPut, path, gin.H{"phone": "555-0199"})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	got := decode[models.Customer](t, do(t, r, http.MethodGet, path, nil))
	assert.Equal(t, "bob", got.Name)
	assert.Equal(t, "bob@x.com", got.Email)
	assert.Equal(t, "555-0199", got.Phone)

	w = do(t, r, http.MethodPut, path, gin.H{})
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, got, decode[models.Customer](t, do(t, r, http.MethodGet, path, nil)))

	w = do(t, r, http.MethodPut, path, gin.H{"email": "broken"})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = do(t, r, http.MethodPut, "/customers/999", gin.H{"name": "x"})
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestProductCreateGetUpdate(t *testing.T) {
	r := newTestRouter(t)

	p := createProduct(t, r, "pen", 1.5, 4)
	path := fmt.Sprintf("/products/%d", p.ProductID)

	got := decode[models.Product](t, do(t, r, http.MethodGet, path, nil))
	assert.Equal(t, "pen", got.Name)
	assert.Equal(t, 1.5, got.Price)
	assert.Equal(t, 4, got.Stock)

	w := do(t, r, http.MethodPut, path, gin.H{"price": 2.5})
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "Product updated successfully", decode[gin.H](t, w)["message"])

	got = decode[models.Product](t, do(t, r, http.MethodGet, path, nil))
	assert.Equal(t, models.Product{ProductID: p.ProductID, Name: "pen", Price: 2.5, Stock: 4}, got)

	w = do(t, r, http.MethodPost, "/products", gin.H{"name": "free", "price": 0})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	w = do(t, r, http.MethodPost, "/products", gin.H{"name": "bad", "price": "cheap"})
	require.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "Not a valid number.", decode[errorBody](t, w).Fields["price"])

	w = do(t, r, http.MethodPost, "/products", gin.H{"name": "neg", "price": 1, "stock": -1})
	require.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, decode[errorBody](t, w).Fields, "stock")

	w = do(t, r, http.MethodDelete, path, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, http.StatusNotFound, do(t, r, http.MethodGet, path, nil).Code)
	assert.Equal(t, http.StatusNotFound, do(t, r, http.MethodDelete, path, nil).Code)
}

func TestProductByNameRoute(t *testing.T) {
	r := newTestRouter(t)
	p := createProduct(t, r, "ink", 3, 0)

	w := do(t, r, http.MethodGet, "/products/name_of_product/ink", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, p.ProductID, decode[models.Product](t, w).ProductID)

	w = do(t, r, http.MethodGet, "/products/name_of_product/paper", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestListPagination(t *testing.T) {
	r := newTestRouter(t)
	for _, name := range []string{"a", "b", "c"} {
		createProduct(t, r, name, 1, 0)
	}

	w := do(t, r, http.MethodGet, "/products?page=2&limit=2", nil)
	require.Equal(t, http.StatusOK, w.Code)
	page := decode[[]models.Product](t, w)
	require.Len(t, page, 1)
	assert.Equal(t, "c", page[0].Name)
	assert.Equal(t, "3", w.Header().Get(totalCountHeader))

	w = do(t, r, http.MethodGet, "/products?page=2", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Len(t, decode[[]models.Product](t, w), 3)

	w = do(t, r, http.MethodGet, "/products?page=0&limit=2", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestDuplicateUsernameConflict(t *testing.T) {
	r := newTestRouter(t)
	first := createCustomer(t, r, "alice")
	second := createCustomer(t, r, "carol")

	w := do(t, r, http.MethodPost, "/customer_accounts", gin.H{"username": "alice", "password": "s3cret", "customer_id": first.CustomerID})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	assert.NotContains(t, w.Body.String(), "password")
	assert.NotContains(t, w.Body.String(), "s3cret")

	w = do(t, r, http.MethodPost, "/customer_accounts", gin.H{"username": "alice", "password": "other", "customer_id": second.CustomerID})
	assert.Equal(t, http.StatusConflict, w.Code)

	w = do(t, r, http.MethodGet, "/customer_accounts", nil)
	require.Equal(t, http.StatusOK, w.Code)
	accounts := decode[[]models.CustomerAccount](t, w)
	require.Len(t, accounts, 1)
	assert.Equal(t, first.CustomerID, accounts[0].CustomerID)

	w = do(t, r, http.MethodPost, "/customer_accounts", gin.H{"username": "dave", "password": "pw", "customer_id": first.CustomerID})
	assert.Equal(t, http.StatusConflict, w.Code)

	w = do(t, r, http.MethodPost, "/customer_accounts", gin.H{"username": "erin", "password": "pw", "customer_id": 999})
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestAccountDetailAndUpdate(t *testing.T) {
	r := newTestRouter(t)
	c := createCustomer(t, r, "frank")

	w := do(t, r, http.MethodPost, "/customer_accounts", gin.H{"username": "frank", "password": "pw", "customer_id": c.CustomerID})
	require.Equal(t, http.StatusCreated, w.Code)
	account := decode[struct {
		Account models.CustomerAccount `json:"customer_account"`
	}](t, w).Account
	path := fmt.Sprintf("/customer_accounts/%d", account.AccountID)

	w = do(t, r, http.MethodGet, path, nil)
	require.Equal(t, http.StatusOK, w.Code)
	got := decode[models.CustomerAccount](t, w)
	require.NotNil(t, got.Customer)
	assert.Equal(t, "frank@x.com", got.Customer.Email)

	w = do(t, r, http.MethodPut, path, gin.H{"username": "frankie"})
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "Customer Account updated successfully", decode[gin.H](t, w)["message"])

	got = decode[models.CustomerAccount](t, do(t, r, http.MethodGet, path, nil))
	assert.Equal(t, "frankie", got.Username)
	assert.Equal(t, c.CustomerID, got.CustomerID)

	require.Equal(t, http.StatusConflict, do(t, r, http.MethodDelete, fmt.Sprintf("/customers/%d", c.CustomerID), nil).Code)
	require.Equal(t, http.StatusOK, do(t, r, http.MethodDelete, path, nil).Code)
	assert.Equal(t, http.StatusNotFound, do(t, r, http.MethodGet, path, nil).Code)
}

func TestTrackOrder(t *testing.T) {
	r := newTestRouter(t)
	c := createCustomer(t, r, "gus")
	o := createOrder(t, r, gin.H{"date": "2024-01-01", "customer_id": c.CustomerID})
	assert.Equal(t, models.StatusCreated, o.Status)

	w := do(t, r, http.MethodGet, fmt.Sprintf("/track_order/%d", o.OrderID), nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, fmt.Sprintf(
		`{"order_id":%d,"date":"2024-01-01","expected_delivery_date":"2024-01-08","customer_id":%d,"status":"In progress"}`,
		o.OrderID, c.CustomerID,
	), w.Body.String())

	w = do(t, r, http.MethodPut, fmt.Sprintf("/orders/%d", o.OrderID), gin.H{"status": models.StatusShipped})
	require.Equal(t, http.StatusOK, w.Code)
	tracking := decode[models.Tracking](t, do(t, r, http.MethodGet, fmt.Sprintf("/track_order/%d", o.OrderID), nil))
	assert.Equal(t, models.StatusShipped, tracking.Status)

	assert.Equal(t, http.StatusNotFound, do(t, r, http.MethodGet, "/track_order/999", nil).Code)
}

func TestCreateOrderValidation(t *testing.T) {
	r := newTestRouter(t)
	c := createCustomer(t, r, "hal")

	w := do(t, r, http.MethodPost, "/orders", gin.H{"date": "2024-13-01", "customer_id": c.CustomerID})
	require.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, decode[errorBody](t, w).Fields, "date")

	w = do(t, r, http.MethodPost, "/orders", gin.H{"date": "2024-01-01", "customer_id": 999})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = do(t, r, http.MethodPost, "/orders", gin.H{"date": "2024-01-01", "customer_id": c.CustomerID, "product_ids": []uint{42}})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = do(t, r, http.MethodGet, "/orders", nil)
	assert.JSONEq(t, `[]`, w.Body.String())
}

func TestOrdersByCustomer(t *testing.T) {
	r := newTestRouter(t)
	c := createCustomer(t, r, "ivy")

	w := do(t, r, http.MethodGet, fmt.Sprintf("/orders/%d", c.CustomerID), nil)
	require.Equal(t, http.StatusNotFound, w.Code)
	assert.Equal(t, "No orders found for this customer", decode[errorBody](t, w).Error)

	w = do(t, r, http.MethodGet, "/orders/999", nil)
	require.Equal(t, http.StatusNotFound, w.Code)
	assert.Equal(t, "Customer could not be found with that customer ID", decode[errorBody](t, w).Error)

	createOrder(t, r, gin.H{"date": "2024-02-01", "customer_id": c.CustomerID})
	w = do(t, r, http.MethodGet, fmt.Sprintf("/orders/%d", c.CustomerID), nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Len(t, decode[[]models.Order](t, w), 1)

	w = do(t, r, http.MethodGet, fmt.Sprintf("/customers/%d/orders", c.CustomerID), nil)
	require.Equal(t, http.StatusOK, w.Code)
	history := decode[[]orderDetails](t, w)
	require.Len(t, history, 1)
	assert.NotNil(t, history[0].Products)

	assert.Equal(t, http.StatusNotFound, do(t, r, http.MethodGet, "/customers/999/orders", nil).Code)
	assert.Equal(t, http.StatusBadRequest, do(t, r, http.MethodGet, "/orders/abc", nil).Code)
}

func TestOrderProductsAndTotal(t *testing.T) {
	r := newTestRouter(t)
	c := createCustomer(t, r, "jay")
	pen := createProduct(t, r, "pen", 1.5, 0)
	ink := createProduct(t, r, "ink", 2.25, 0)

	o := createOrder(t, r, gin.H{"date": "2024-03-01", "customer_id": c.CustomerID, "product_ids": []uint{pen.ProductID}})
	base := fmt.Sprintf("/orders/%d", o.OrderID)

	w := do(t, r, http.MethodPost, base+"/products", gin.H{"product_id": ink.ProductID})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	assert.Equal(t, http.StatusConflict, do(t, r, http.MethodPost, base+"/products", gin.H{"product_id": ink.ProductID}).Code)
	assert.Equal(t, http.StatusBadRequest, do(t, r, http.MethodPost, base+"/products", gin.H{"product_id": 999}).Code)
	assert.Equal(t, http.StatusNotFound, do(t, r, http.MethodPost, "/orders/999/products", gin.H{"product_id": pen.ProductID}).Code)

	w = do(t, r, http.MethodGet, base+"/total", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, models.OrderTotal{OrderID: o.OrderID, CustomerID: c.CustomerID, TotalPrice: 3.75, ProductCount: 2}, decode[models.OrderTotal](t, w))

	details := decode[orderDetails](t, do(t, r, http.MethodGet, base+"/details", nil))
	assert.Len(t, details.Products, 2)

	w = do(t, r, http.MethodDelete, fmt.Sprintf("%s/products/%d", base, pen.ProductID), nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, http.StatusNotFound, do(t, r, http.MethodDelete, fmt.Sprintf("%s/products/%d", base, pen.ProductID), nil).Code)

	w = do(t, r, http.MethodPut, base, gin.H{"product_ids": []uint{}})
	require.Equal(t, http.StatusOK, w.Code)
	w = do(t, r, http.MethodGet, base+"/details", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"products":[]`)

	total := decode[models.OrderTotal](t, do(t, r, http.MethodGet, base+"/total", nil))
	assert.Zero(t, total.TotalPrice)
	assert.Zero(t, total.ProductCount)
}

func TestOrderStatusAndCancel(t *testing.T) {
	r := newTestRouter(t)
	c := createCustomer(t, r, "kim")
	shipped := createOrder(t, r, gin.H{"date": "2024-04-01", "customer_id": c.CustomerID})
	path := fmt.Sprintf("/orders/%d", shipped.OrderID)

	w := do(t, r, http.MethodPut, path, gin.H{"status": "Lost"})
	require.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, decode[errorBody](t, w).Fields, "status")

	require.Equal(t, http.StatusOK, do(t, r, http.MethodPut, path, gin.H{"status": models.StatusShipped}).Code)
	assert.Equal(t, http.StatusBadRequest, do(t, r, http.MethodPut, path, gin.H{"status": models.StatusCreated}).Code)

	w = do(t, r, http.MethodDelete, fmt.Sprintf("/cancel_order/%d", shipped.OrderID), nil)
	require.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "Cannot cancel order. It has already been shipped or completed.", decode[errorBody](t, w).Error)

	open := createOrder(t, r, gin.H{"date": "2024-04-02", "customer_id": c.CustomerID})
	w = do(t, r, http.MethodDelete, fmt.Sprintf("/cancel_order/%d", open.OrderID), nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "Order canceled successfully", decode[gin.H](t, w)["message"])
	assert.Equal(t, http.StatusNotFound, do(t, r, http.MethodGet, fmt.Sprintf("/orders/%d/details", open.OrderID), nil).Code)
	assert.Equal(t, http.StatusNotFound, do(t, r, http.MethodDelete, "/cancel_order/999", nil).Code)

	require.Equal(t, http.StatusOK, do(t, r, http.MethodDelete, path, nil).Code)
	assert.Equal(t, http.StatusNotFound, do(t, r, http.MethodGet, path+"/details", nil).Code)
}

func TestRestockEndpoint(t *testing.T) {
	r := newTestRouter(t)
	createProduct(t, r, "a", 1, 5)
	createProduct(t, r, "b", 1, 12)
	createProduct(t, r, "c", 1, 3)

	w := do(t, r, http.MethodPost, "/restock_products", nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	restocked := decode[[]models.Product](t, w)
	require.Len(t, restocked, 2)
	assert.Equal(t, 25, restocked[0].Stock)
	assert.Equal(t, 23, restocked[1].Stock)

	products := decode[[]models.Product](t, do(t, r, http.MethodGet, "/products", nil))
	stocks := make([]int, 0, len(products))
	for _, p := range products {
		stocks = append(stocks, p.Stock)
	}
	assert.Equal(t, []int{25, 12, 23}, stocks)

	w = do(t, r, http.MethodPost, "/restock_products", gin.H{"threshold": 13})
	require.Equal(t, http.StatusOK, w.Code)
	assert.Len(t, decode[[]models.Product](t, w), 1)

	w = do(t, r, http.MethodPost, "/restock_products", gin.H{"threshold": -1})
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestHealthAndMetrics(t *testing.T) {
	r := newTestRouter(t)

	w := do(t, r, http.MethodGet, "/health", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"status":"ok"}`, w.Body.String())
	assert.NotEmpty(t, w.Header().Get("X-Request-Id"))

	w = do(t, r, http.MethodGet, "/metrics", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "http_requests_total")
}

func TestAccountPasswordLimitCountsBytes(t *testing.T) {
	r := newTestRouter(t)
	c := createCustomer(t, r, "lena")
	long := strings.Repeat("é", 40)

	w := do(t, r, http.MethodPost, "/customer_accounts", gin.H{"username": "lena", "password": long, "customer_id": c.CustomerID})
	require.Equal(t, http.StatusBadRequest, w.Code, w.Body.String())
	assert.Equal(t, "Longer than maximum length 72 bytes.", decode[errorBody](t, w).Fields["password"])

	w = do(t, r, http.MethodPost, "/customer_accounts", gin.H{"username": "lena", "password": strings.Repeat("é", 36), "customer_id": c.CustomerID})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	account := decode[struct {
		Account models.CustomerAccount `json:"customer_account"`
	}](t, w).Account

	w = do(t, r, http.MethodPut, fmt.Sprintf("/customer_accounts/%d", account.AccountID), gin.H{"password": long})
	require.Equal(t, http.StatusBadRequest, w.Code, w.Body.String())
	assert.Contains(t, decode[errorBody](t, w).Fields, "password")
}
