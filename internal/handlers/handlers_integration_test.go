package handlers_test

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"catalog/internal/handlers"
	"catalog/internal/models"
	"catalog/internal/repositories"
	"catalog/internal/services"
)

// setupApp builds the Fiber app against a private in-memory SQLite database,
// wired exactly as in main: repository, service, handler, error mapper.
func setupApp(t *testing.T) *fiber.App {
	t.Helper()

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", strings.ReplaceAll(t.Name(), "/", "_"))
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		TranslateError: true,
		Logger:         gormlogger.Default.LogMode(gormlogger.Silent),
	})
	if err != nil {
		t.Fatalf("failed to connect to in-memory database: %v", err)
	}
	if err := db.AutoMigrate(&models.Product{}); err != nil {
		t.Fatalf("failed to migrate test database: %v", err)
	}

	productRepo := repositories.NewGORMProductRepository(db)
	productService := services.NewProductService(productRepo)
	productHandler := handlers.NewProductHandler(productService)

	app := fiber.New(fiber.Config{
		ErrorHandler: handlers.ErrorHandler,
	})
	apiV1 := app.Group("/api/v1")
	productHandler.RegisterRoutes(apiV1)

	return app
}

func performRequest(t *testing.T, app *fiber.App, method, path string, body interface{}) *http.Response {
	t.Helper()

	var reader *bytes.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			t.Fatalf("failed to marshal request body: %v", err)
		}
		reader = bytes.NewReader(payload)
	} else {
		reader = bytes.NewReader(nil)
	}

	req := httptest.NewRequest(method, path, reader)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := app.Test(req, -1)
	if err != nil {
		t.Fatalf("request %s %s failed: %v", method, path, err)
	}
	return resp
}

func decodeBody(t *testing.T, resp *http.Response, out interface{}) {
	t.Helper()
	defer resp.Body.Close()
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		t.Fatalf("failed to decode response body: %v", err)
	}
}

func createProduct(t *testing.T, app *fiber.App, request models.ProductRequest) models.ProductResponse {
	t.Helper()

	resp := performRequest(t, app, http.MethodPost, "/api/v1/products/", request)
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("expected 201 creating %q, got %d", request.Name, resp.StatusCode)
	}
	var created models.ProductResponse
	decodeBody(t, resp, &created)
	return created
}

func TestCreateProduct(t *testing.T) {
	app := setupApp(t)

	resp := performRequest(t, app, http.MethodPost, "/api/v1/products/",
		models.ProductRequest{Name: "Widget", Description: "A widget", Price: 9.99})

	assert.Equal(t, http.StatusCreated, resp.StatusCode)

	var created models.ProductResponse
	decodeBody(t, resp, &created)
	assert.NotZero(t, created.ID)
	assert.Equal(t, "Widget", created.Name)
	assert.Equal(t, 9.99, created.Price)
	assert.Equal(t, created.CreatedAt, created.UpdatedAt)
}

func TestCreateProduct_DuplicateNameDifferentCase(t *testing.T) {
	app := setupApp(t)
	createProduct(t, app, models.ProductRequest{Name: "Widget", Description: "A widget", Price: 9.99})

	resp := performRequest(t, app, http.MethodPost, "/api/v1/products/",
		models.ProductRequest{Name: "widget", Description: "lowercase clone", Price: 1.00})

	assert.Equal(t, http.StatusConflict, resp.StatusCode)

	var body handlers.ErrorResponse
	decodeBody(t, resp, &body)
	assert.Equal(t, http.StatusConflict, body.Status)
	assert.Equal(t, "Product Already Exists", body.Error)
	assert.Contains(t, body.Message, "widget")
	assert.False(t, body.Timestamp.IsZero())
}

func TestCreateProduct_ValidationFailures(t *testing.T) {
	app := setupApp(t)

	tests := []struct {
		name    string
		request models.ProductRequest
		field   string
	}{
		{"zero price", models.ProductRequest{Name: "Freebie", Price: 0.00}, "price"},
		{"negative price", models.ProductRequest{Name: "Refund", Price: -5.00}, "price"},
		{"missing name", models.ProductRequest{Price: 9.99}, "name"},
		{"blank name", models.ProductRequest{Name: "   ", Price: 9.99}, "name"},
		{"name too long", models.ProductRequest{Name: strings.Repeat("x", 51), Price: 9.99}, "name"},
		{"description too long", models.ProductRequest{Name: "Widget", Description: strings.Repeat("x", 101), Price: 9.99}, "description"},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			resp := performRequest(t, app, http.MethodPost, "/api/v1/products/", tc.request)
			assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

			var body handlers.ValidationErrorResponse
			decodeBody(t, resp, &body)
			assert.Equal(t, "Validation Failed", body.Error)
			assert.Equal(t, "Invalid input data", body.Message)
			assert.Contains(t, body.ValidationErrors, tc.field)
		})
	}
}

func TestGetProductByID(t *testing.T) {
	app := setupApp(t)
	created := createProduct(t, app, models.ProductRequest{Name: "Widget", Price: 9.99})

	resp := performRequest(t, app, http.MethodGet, fmt.Sprintf("/api/v1/products/%d", created.ID), nil)
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	var fetched models.ProductResponse
	decodeBody(t, resp, &fetched)
	assert.Equal(t, created.ID, fetched.ID)
	assert.Equal(t, "Widget", fetched.Name)
}

func TestGetProductByID_NotFound(t *testing.T) {
	app := setupApp(t)

	resp := performRequest(t, app, http.MethodGet, "/api/v1/products/999", nil)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)

	var body handlers.ErrorResponse
	decodeBody(t, resp, &body)
	assert.Equal(t, "Product Not Found", body.Error)
	assert.Contains(t, body.Message, "999")
}

func TestGetProductByID_NonNumericID(t *testing.T) {
	app := setupApp(t)

	resp := performRequest(t, app, http.MethodGet, "/api/v1/products/abc", nil)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestGetAllProducts(t *testing.T) {
	app := setupApp(t)
	createProduct(t, app, models.ProductRequest{Name: "Banana", Price: 2.00})
	createProduct(t, app, models.ProductRequest{Name: "Apple", Price: 3.00})
	createProduct(t, app, models.ProductRequest{Name: "Cherry", Price: 1.00})

	resp := performRequest(t, app, http.MethodGet, "/api/v1/products/?sortBy=name&sortDirection=asc&page=0&size=2", nil)
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	var page models.Page[models.ProductResponse]
	decodeBody(t, resp, &page)
	assert.Len(t, page.Content, 2)
	assert.Equal(t, "Apple", page.Content[0].Name)
	assert.Equal(t, "Banana", page.Content[1].Name)
	assert.Equal(t, int64(3), page.TotalElements)
	assert.Equal(t, 2, page.TotalPages)

	// Defaults: page=0, size=10, sorted by id ascending.
	resp = performRequest(t, app, http.MethodGet, "/api/v1/products/", nil)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	decodeBody(t, resp, &page)
	assert.Len(t, page.Content, 3)
	assert.Equal(t, "Banana", page.Content[0].Name)
	assert.Equal(t, 10, page.Size)
}

func TestUpdateProduct(t *testing.T) {
	app := setupApp(t)
	created := createProduct(t, app, models.ProductRequest{Name: "Widget", Description: "old", Price: 9.99})

	resp := performRequest(t, app, http.MethodPut, fmt.Sprintf("/api/v1/products/%d", created.ID),
		models.ProductRequest{Name: "Gadget", Description: "new", Price: 19.99})
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	var updated models.ProductResponse
	decodeBody(t, resp, &updated)
	assert.Equal(t, created.ID, updated.ID)
	assert.Equal(t, "Gadget", updated.Name)
	assert.Equal(t, 19.99, updated.Price)
	assert.Equal(t, created.CreatedAt.Unix(), updated.CreatedAt.Unix())
	assert.False(t, updated.UpdatedAt.Before(created.UpdatedAt))
}

func TestUpdateProduct_NoOpRename(t *testing.T) {
	app := setupApp(t)
	created := createProduct(t, app, models.ProductRequest{Name: "Widget", Price: 9.99})

	// Resubmitting the current name in a different case is not a conflict.
	resp := performRequest(t, app, http.MethodPut, fmt.Sprintf("/api/v1/products/%d", created.ID),
		models.ProductRequest{Name: "WIDGET", Price: 9.99})
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	var updated models.ProductResponse
	decodeBody(t, resp, &updated)
	assert.Equal(t, "WIDGET", updated.Name)
}

func TestUpdateProduct_NameTaken(t *testing.T) {
	app := setupApp(t)
	createProduct(t, app, models.ProductRequest{Name: "Widget", Price: 9.99})
	other := createProduct(t, app, models.ProductRequest{Name: "Gadget", Price: 5.00})

	resp := performRequest(t, app, http.MethodPut, fmt.Sprintf("/api/v1/products/%d", other.ID),
		models.ProductRequest{Name: "widget", Price: 5.00})

	assert.Equal(t, http.StatusConflict, resp.StatusCode)
}

func TestUpdateProduct_NotFound(t *testing.T) {
	app := setupApp(t)

	resp := performRequest(t, app, http.MethodPut, "/api/v1/products/999",
		models.ProductRequest{Name: "Ghost", Price: 1.00})

	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestDeleteProduct(t *testing.T) {
	app := setupApp(t)
	created := createProduct(t, app, models.ProductRequest{Name: "Widget", Price: 9.99})

	resp := performRequest(t, app, http.MethodDelete, fmt.Sprintf("/api/v1/products/%d", created.ID), nil)
	assert.Equal(t, http.StatusNoContent, resp.StatusCode)

	resp = performRequest(t, app, http.MethodGet, fmt.Sprintf("/api/v1/products/%d", created.ID), nil)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestDeleteProduct_NotFound(t *testing.T) {
	app := setupApp(t)

	resp := performRequest(t, app, http.MethodDelete, "/api/v1/products/999", nil)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestSearchProducts(t *testing.T) {
	app := setupApp(t)
	createProduct(t, app, models.ProductRequest{Name: "Widget", Price: 9.99})
	createProduct(t, app, models.ProductRequest{Name: "Super WIDGET", Price: 19.99})
	createProduct(t, app, models.ProductRequest{Name: "Gadget", Price: 5.00})

	resp := performRequest(t, app, http.MethodGet, "/api/v1/products/search?name=widget", nil)
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	var results []models.ProductResponse
	decodeBody(t, resp, &results)
	assert.Len(t, results, 2)

	// Without a name every product matches.
	resp = performRequest(t, app, http.MethodGet, "/api/v1/products/search", nil)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	decodeBody(t, resp, &results)
	assert.Len(t, results, 3)
}

func TestSearchByKeyword(t *testing.T) {
	app := setupApp(t)
	createProduct(t, app, models.ProductRequest{Name: "Widget", Description: "small tool", Price: 9.99})
	createProduct(t, app, models.ProductRequest{Name: "Gadget", Description: "a WIDGET adapter", Price: 5.00})
	createProduct(t, app, models.ProductRequest{Name: "Gizmo", Description: "unrelated", Price: 7.50})

	resp := performRequest(t, app, http.MethodGet, "/api/v1/products/search/keyword?keyword=widget", nil)
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	var page models.Page[models.ProductResponse]
	decodeBody(t, resp, &page)
	assert.Len(t, page.Content, 2)
	assert.Equal(t, int64(2), page.TotalElements)
}

func TestPriceRange(t *testing.T) {
	app := setupApp(t)
	createProduct(t, app, models.ProductRequest{Name: "Cheap", Price: 5.00})
	createProduct(t, app, models.ProductRequest{Name: "Mid", Price: 15.00})
	createProduct(t, app, models.ProductRequest{Name: "Dear", Price: 25.00})

	resp := performRequest(t, app, http.MethodGet, "/api/v1/products/price-range?minPrice=10.00&maxPrice=20.00", nil)
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	var results []models.ProductResponse
	decodeBody(t, resp, &results)
	assert.Len(t, results, 1)
	assert.Equal(t, "Mid", results[0].Name)

	// min > max yields an empty list, not an error.
	resp = performRequest(t, app, http.MethodGet, "/api/v1/products/price-range?minPrice=20.00&maxPrice=10.00", nil)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	decodeBody(t, resp, &results)
	assert.Empty(t, results)
}

func TestPriceRange_MissingParams(t *testing.T) {
	app := setupApp(t)

	resp := performRequest(t, app, http.MethodGet, "/api/v1/products/price-range?maxPrice=20.00", nil)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	resp = performRequest(t, app, http.MethodGet, "/api/v1/products/price-range?minPrice=abc&maxPrice=20.00", nil)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestAbovePrice(t *testing.T) {
	app := setupApp(t)
	createProduct(t, app, models.ProductRequest{Name: "Dear", Price: 25.00})
	createProduct(t, app, models.ProductRequest{Name: "Cheap", Price: 5.00})
	createProduct(t, app, models.ProductRequest{Name: "Mid", Price: 15.00})

	resp := performRequest(t, app, http.MethodGet, "/api/v1/products/above-price?price=5.00", nil)
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	var results []models.ProductResponse
	decodeBody(t, resp, &results)
	assert.Len(t, results, 2)
	assert.Equal(t, "Mid", results[0].Name)
	assert.Equal(t, "Dear", results[1].Name)
}

func TestMalformedBodyIsRejected(t *testing.T) {
	app := setupApp(t)

	req := httptest.NewRequest(http.MethodPost, "/api/v1/products/", strings.NewReader("{not json"))
	req.Header.Set("Content-Type", "application/json")

	resp, err := app.Test(req, -1)
	assert.NoError(t, err)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}
