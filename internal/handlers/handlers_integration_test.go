package handlers_test

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"net/http/httptest"
	"os"
	"strings"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/sanddrika/flashsavvy/internal/handlers"
	"github.com/sanddrika/flashsavvy/internal/middleware"
	"github.com/sanddrika/flashsavvy/internal/models"
	"github.com/sanddrika/flashsavvy/internal/repositories"
	"github.com/sanddrika/flashsavvy/internal/services"
)

type testEnv struct {
	app         *fiber.App
	db          *gorm.DB
	authService *services.AuthService
	productRepo repositories.ProductRepository
}

// setupApp wires the full application against a private in-memory SQLite
// database, mirroring the composition in main.go.
func setupApp(t *testing.T) *testEnv {
	t.Helper()

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", strings.ReplaceAll(t.Name(), "/", "_"))
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	if err != nil {
		t.Fatalf("failed to connect to in-memory database: %v", err)
	}
	if err := db.AutoMigrate(&models.User{}, &models.Product{}, &models.Order{}, &models.OrderItem{}); err != nil {
		t.Fatalf("failed to auto-migrate database: %v", err)
	}

	productRepo := repositories.NewGORMProductRepository(db)
	orderRepo := repositories.NewGORMOrderRepository(db)
	userRepo := repositories.NewGORMUserRepository(db)

	authService := services.NewAuthService(userRepo, "test_jwt_secret")
	productService := services.NewProductService(productRepo)
	orderService := services.NewOrderService(orderRepo, productRepo, nil, false)

	authHandler := handlers.NewAuthHandler(authService)
	productHandler := handlers.NewProductHandler(productService, middleware.AdminRequired(authService))
	orderHandler := handlers.NewOrderHandler(orderService, middleware.IdentityRequired(authService))

	app := fiber.New()
	api := app.Group("/api")
	authHandler.RegisterRoutes(api)
	productHandler.RegisterRoutes(api)
	orderHandler.RegisterRoutes(api)

	seedProductsForTest(t, productRepo)

	return &testEnv{
		app:         app,
		db:          db,
		authService: authService,
		productRepo: productRepo,
	}
}

// seedProductsForTest populates the catalog with fixed IDs and prices.
func seedProductsForTest(t *testing.T, repo repositories.ProductRepository) {
	t.Helper()
	products := []models.Product{
		{ID: "prod-1", Name: "T-Shirt", Description: "100% cotton, unisex", Price: 19.99, Stock: 100},
		{ID: "prod-2", Name: "Hoodie", Description: "Warm and comfy", Price: 29.99, Stock: 50},
	}
	for i := range products {
		if err := repo.Create(&products[i]); err != nil {
			t.Fatalf("failed to seed product %s: %v", products[i].Name, err)
		}
	}
}

func postJSON(t *testing.T, app *fiber.App, path string, body interface{}, headers map[string]string) (*http.Response, map[string]interface{}) {
	t.Helper()
	jsonBody, _ := json.Marshal(body)
	req := httptest.NewRequest(http.MethodPost, path, bytes.NewReader(jsonBody))
	req.Header.Set("Content-Type", "application/json")
	for k, v := range headers {
		req.Header.Set(k, v)
	}
	resp, err := app.Test(req, -1)
	assert.NoError(t, err)
	return resp, decodeBody(t, resp)
}

func getJSON(t *testing.T, app *fiber.App, path string, headers map[string]string) (*http.Response, map[string]interface{}) {
	t.Helper()
	req := httptest.NewRequest(http.MethodGet, path, nil)
	for k, v := range headers {
		req.Header.Set(k, v)
	}
	resp, err := app.Test(req, -1)
	assert.NoError(t, err)
	return resp, decodeBody(t, resp)
}

func decodeBody(t *testing.T, resp *http.Response) map[string]interface{} {
	t.Helper()
	defer resp.Body.Close()
	raw, err := io.ReadAll(resp.Body)
	assert.NoError(t, err)
	var body map[string]interface{}
	if len(raw) > 0 {
		if err := json.Unmarshal(raw, &body); err != nil {
			// Some endpoints return arrays; callers decode those themselves.
			return nil
		}
	}
	return body
}

// registerAdmin creates an admin account directly through the service, the
// same way the bootstrap admin is created at startup.
func registerAdmin(t *testing.T, env *testEnv, email string) *models.User {
	t.Helper()
	admin := &models.User{Name: "Admin", Email: email, Password: "adminpass", IsAdmin: true}
	if err := env.authService.Register(admin); err != nil {
		t.Fatalf("failed to create admin account: %v", err)
	}
	return admin
}

func TestMain(m *testing.M) {
	log.SetOutput(io.Discard)
	os.Exit(m.Run())
}

func TestAuthRegisterAndLogin(t *testing.T) {
	env := setupApp(t)

	// Register
	resp, body := postJSON(t, env.app, "/api/auth/register", map[string]string{
		"name":     "Test User",
		"email":    "test@example.com",
		"password": "password123",
	}, nil)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "User registered", body["message"])
	registeredID, _ := body["user_id"].(string)
	assert.NotEmpty(t, registeredID)

	// Duplicate email is a conflict, surfaced as 400, and creates no account.
	resp, body = postJSON(t, env.app, "/api/auth/register", map[string]string{
		"name":     "Other User",
		"email":    "test@example.com",
		"password": "password456",
	}, nil)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.Equal(t, "Email already in use", body["error"])

	var userCount int64
	env.db.Model(&models.User{}).Count(&userCount)
	assert.EqualValues(t, 1, userCount)

	// Login with the same credentials returns the same account id.
	resp, body = postJSON(t, env.app, "/api/auth/login", map[string]string{
		"email":    "test@example.com",
		"password": "password123",
	}, nil)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "Login successful", body["message"])
	assert.Equal(t, registeredID, body["user_id"])
	assert.Equal(t, false, body["is_admin"])
	assert.NotEmpty(t, body["token"])

	// Wrong password and unknown email return the identical error shape.
	resp, wrongPass := postJSON(t, env.app, "/api/auth/login", map[string]string{
		"email":    "test@example.com",
		"password": "wrongpassword",
	}, nil)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)

	resp, unknown := postJSON(t, env.app, "/api/auth/login", map[string]string{
		"email":    "nobody@example.com",
		"password": "password123",
	}, nil)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	assert.Equal(t, wrongPass, unknown)

	// Missing fields
	resp, _ = postJSON(t, env.app, "/api/auth/login", map[string]string{"email": "test@example.com"}, nil)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	resp, _ = postJSON(t, env.app, "/api/auth/register", map[string]string{"email": "x@example.com"}, nil)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestProductEndpoints(t *testing.T) {
	env := setupApp(t)
	admin := registerAdmin(t, env, "admin@example.com")
	adminHeaders := map[string]string{"user-id": admin.ID, "is-admin": "true"}

	// Listing is public.
	req := httptest.NewRequest(http.MethodGet, "/api/products", nil)
	resp, err := env.app.Test(req, -1)
	assert.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	var listBody struct {
		Success bool             `json:"success"`
		Data    []models.Product `json:"data"`
	}
	assert.NoError(t, json.NewDecoder(resp.Body).Decode(&listBody))
	resp.Body.Close()
	assert.True(t, listBody.Success)
	assert.Len(t, listBody.Data, 2)

	// Creating without identity is unauthorized.
	resp, _ = postJSON(t, env.app, "/api/products", map[string]interface{}{
		"name": "Cap", "price": 9.99, "stock": 10,
	}, nil)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)

	// A forged admin claim on a non-admin account is refused: the flag is
	// re-verified against the account store.
	user := &models.User{Name: "Regular", Email: "user@example.com", Password: "password123"}
	assert.NoError(t, env.authService.Register(user))
	resp, _ = postJSON(t, env.app, "/api/products", map[string]interface{}{
		"name": "Cap", "price": 9.99, "stock": 10,
	}, map[string]string{"user-id": user.ID, "is-admin": "true"})
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)

	// Admins can create products.
	resp, body := postJSON(t, env.app, "/api/products", map[string]interface{}{
		"name": "Cap", "description": "Baseball cap", "price": 9.99, "stock": 10, "image_url": "http://img/cap.png",
	}, adminHeaders)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, true, body["success"])
	productID, _ := body["productId"].(string)
	assert.NotEmpty(t, productID)

	// Missing required fields fail validation.
	resp, body = postJSON(t, env.app, "/api/products", map[string]interface{}{
		"description": "no name, price, or stock",
	}, adminHeaders)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.Equal(t, "Name, price, and stock are required", body["error"])

	// Single product fetch.
	resp, body = getJSON(t, env.app, "/api/products/"+productID, nil)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "Cap", body["name"])

	resp, _ = getJSON(t, env.app, "/api/products/no-such-id", nil)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestOrderEndpoints(t *testing.T) {
	env := setupApp(t)

	user := &models.User{Name: "Buyer", Email: "buyer@example.com", Password: "password123"}
	assert.NoError(t, env.authService.Register(user))
	identity := map[string]string{"user-id": user.ID}

	// Place an order: 19.99*2 + 29.99 = 69.97.
	resp, body := postJSON(t, env.app, "/api/orders", map[string]interface{}{
		"user_id": user.ID,
		"items": []map[string]interface{}{
			{"product_id": "prod-1", "quantity": 2},
			{"product_id": "prod-2", "quantity": 1},
		},
	}, nil)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "Order created", body["message"])
	orderID, _ := body["order_id"].(string)
	assert.NotEmpty(t, orderID)

	resp, body = getJSON(t, env.app, "/api/orders/"+orderID, identity)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.InDelta(t, 69.97, body["total"].(float64), 0.0001)
	assert.Len(t, body["items"].([]interface{}), 2)

	// Malformed orders are rejected before anything is written.
	resp, _ = postJSON(t, env.app, "/api/orders", map[string]interface{}{
		"user_id": user.ID,
		"items":   []map[string]interface{}{},
	}, nil)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	resp, _ = postJSON(t, env.app, "/api/orders", map[string]interface{}{
		"items": []map[string]interface{}{{"product_id": "prod-1", "quantity": 1}},
	}, nil)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	var orderCount int64
	env.db.Model(&models.Order{}).Count(&orderCount)
	assert.EqualValues(t, 1, orderCount)

	// Unknown products are priced at zero but still recorded.
	resp, body = postJSON(t, env.app, "/api/orders", map[string]interface{}{
		"user_id": user.ID,
		"items": []map[string]interface{}{
			{"product_id": "prod-1", "quantity": 1},
			{"product_id": "no-such-product", "quantity": 3},
		},
	}, nil)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	quirkOrderID, _ := body["order_id"].(string)

	resp, body = getJSON(t, env.app, "/api/orders/"+quirkOrderID, identity)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.InDelta(t, 19.99, body["total"].(float64), 0.0001)
	assert.Len(t, body["items"].([]interface{}), 2)

	// Listing requires identity and only shows the caller's orders.
	resp, _ = getJSON(t, env.app, "/api/orders", nil)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)

	req := httptest.NewRequest(http.MethodGet, "/api/orders", nil)
	req.Header.Set("user-id", user.ID)
	listResp, err := env.app.Test(req, -1)
	assert.NoError(t, err)
	assert.Equal(t, http.StatusOK, listResp.StatusCode)
	var orders []models.Order
	assert.NoError(t, json.NewDecoder(listResp.Body).Decode(&orders))
	listResp.Body.Close()
	assert.Len(t, orders, 2)

	// Another user's order reads as missing.
	other := &models.User{Name: "Other", Email: "other@example.com", Password: "password123"}
	assert.NoError(t, env.authService.Register(other))
	resp, _ = getJSON(t, env.app, "/api/orders/"+orderID, map[string]string{"user-id": other.ID})
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestOrderWithBearerToken(t *testing.T) {
	env := setupApp(t)

	user := &models.User{Name: "Buyer", Email: "buyer@example.com", Password: "password123"}
	assert.NoError(t, env.authService.Register(user))

	resp, body := postJSON(t, env.app, "/api/auth/login", map[string]string{
		"email":    "buyer@example.com",
		"password": "password123",
	}, nil)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	token, _ := body["token"].(string)
	assert.NotEmpty(t, token)

	resp, body = postJSON(t, env.app, "/api/orders", map[string]interface{}{
		"user_id": user.ID,
		"items":   []map[string]interface{}{{"product_id": "prod-1", "quantity": 1}},
	}, nil)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	orderID, _ := body["order_id"].(string)

	resp, body = getJSON(t, env.app, "/api/orders/"+orderID, map[string]string{"Authorization": "Bearer " + token})
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, orderID, body["id"])
}
