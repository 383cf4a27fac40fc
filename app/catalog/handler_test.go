package catalog

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/shopbot/miniapp-shop/models"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// --- Helpers ---

func newTestProduct(id uint, name, category string, price float64) models.Product {
	return models.Product{
		ID:       id,
		Name:     name,
		Price:    decimal.NewFromFloat(price),
		PhotoRef: "http://img/" + name + ".png",
		Category: category,
	}
}

func seededStore() *MockProductStore {
	store := &MockProductStore{
		products: []models.Product{
			newTestProduct(1, "Burger", "Other", 25),
			newTestProduct(2, "Carrot", "Vegetables", 2.5),
			newTestProduct(3, "Potato", "Vegetables", 1.2),
		},
		nextID: 3,
	}
	store.products[0].Description = "Beef, cheddar, pickles"
	return store
}

func serve(h *CatalogHandler, target string) *httptest.ResponseRecorder {
	r := chi.NewRouter()
	r.Get("/api/products", h.HandleGet)
	r.Get("/api/products/{id}", h.HandleGetProduct)

	req := httptest.NewRequest(http.MethodGet, target, nil)
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	return rec
}

// --- Tests ---

func TestHandleGet(t *testing.T) {
	testCases := []struct {
		name               string
		url                string
		storeSetup         func() *MockProductStore
		expectedStatusCode int
		checkResponse      func(t *testing.T, rec *httptest.ResponseRecorder)
	}{
		{
			name:               "All products in id order",
			url:                "/api/products",
			storeSetup:         seededStore,
			expectedStatusCode: http.StatusOK,
			checkResponse: func(t *testing.T, rec *httptest.ResponseRecorder) {
				var resp Response
				require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
				assert.Equal(t, 3, resp.Total)
				require.Len(t, resp.Products, 3)
				assert.Equal(t, uint(1), resp.Products[0].ID)
				assert.Equal(t, "Burger", resp.Products[0].Name)
				assert.Equal(t, 25.0, resp.Products[0].Price)
				assert.Equal(t, "http://img/Burger.png", resp.Products[0].PhotoURL)
				assert.Equal(t, "Beef, cheddar, pickles", resp.Products[0].Description)
				assert.Empty(t, resp.Products[1].Description)
			},
		},
		{
			name:               "Filter by category",
			url:                "/api/products?category=Vegetables",
			storeSetup:         seededStore,
			expectedStatusCode: http.StatusOK,
			checkResponse: func(t *testing.T, rec *httptest.ResponseRecorder) {
				var resp Response
				require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
				assert.Equal(t, 2, resp.Total)
				for _, p := range resp.Products {
					assert.Equal(t, "Vegetables", p.Category)
				}
			},
		},
		{
			name:               "Empty catalog",
			url:                "/api/products",
			storeSetup:         func() *MockProductStore { return &MockProductStore{} },
			expectedStatusCode: http.StatusOK,
			checkResponse: func(t *testing.T, rec *httptest.ResponseRecorder) {
				var resp Response
				require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
				assert.Equal(t, 0, resp.Total)
				assert.NotNil(t, resp.Products)
				assert.Empty(t, resp.Products)
			},
		},
		{
			name: "Store error",
			url:  "/api/products",
			storeSetup: func() *MockProductStore {
				return &MockProductStore{ListErr: errors.New("db down")}
			},
			expectedStatusCode: http.StatusInternalServerError,
			checkResponse: func(t *testing.T, rec *httptest.ResponseRecorder) {
				var errResp map[string]string
				require.NoError(t, json.NewDecoder(rec.Body).Decode(&errResp))
				assert.Equal(t, "failed to fetch products", errResp["error"])
			},
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			// Arrange
			handler := NewCatalogHandler(newTestServiceWith(tc.storeSetup()))

			// Act
			rec := serve(handler, tc.url)

			// Assert
			assert.Equal(t, tc.expectedStatusCode, rec.Code)
			assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))
			if tc.checkResponse != nil {
				tc.checkResponse(t, rec)
			}
		})
	}
}

func TestHandleGetProduct(t *testing.T) {
	testCases := []struct {
		name               string
		url                string
		expectedStatusCode int
		expectedName       string
	}{
		{name: "Existing product", url: "/api/products/2", expectedStatusCode: http.StatusOK, expectedName: "Carrot"},
		{name: "Unknown product", url: "/api/products/99", expectedStatusCode: http.StatusNotFound},
		{name: "Invalid id", url: "/api/products/abc", expectedStatusCode: http.StatusBadRequest},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			handler := NewCatalogHandler(newTestServiceWith(seededStore()))

			rec := serve(handler, tc.url)

			assert.Equal(t, tc.expectedStatusCode, rec.Code)
			if tc.expectedName != "" {
				var p Product
				require.NoError(t, json.NewDecoder(rec.Body).Decode(&p))
				assert.Equal(t, tc.expectedName, p.Name)
				assert.Equal(t, 2.5, p.Price)
			}
		})
	}
}
