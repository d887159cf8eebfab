package routes

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/angelmondragon/storefront-backend/api/middleware"
	"github.com/angelmondragon/storefront-backend/internal/cart"
	"github.com/angelmondragon/storefront-backend/internal/catalog"
	"github.com/angelmondragon/storefront-backend/internal/orders"
	"github.com/angelmondragon/storefront-backend/pkg/config"
	"github.com/angelmondragon/storefront-backend/pkg/kvstore"
	"github.com/angelmondragon/storefront-backend/pkg/logger"
	"github.com/angelmondragon/storefront-backend/pkg/metrics"
)

type envelope struct {
	Data  json.RawMessage `json:"data"`
	Error *struct {
		Code    string `json:"code"`
		Message string `json:"message"`
	} `json:"error"`
}

type testServer struct {
	t       *testing.T
	handler http.Handler
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()
	logg := logger.New(logger.Options{ServiceName: "test", Output: io.Discard})
	store := kvstore.NewMemory()
	reg := prometheus.NewRegistry()
	m := metrics.NewStorefront(reg)

	data, err := catalog.Embedded()
	require.NoError(t, err)
	catalogSvc, err := catalog.NewService(data)
	require.NoError(t, err)
	carts, err := cart.NewService(store, m)
	require.NoError(t, err)
	seed, err := orders.SeedOrders()
	require.NoError(t, err)
	book, err := orders.NewBook(store, seed)
	require.NoError(t, err)
	creator, err := orders.NewCreator(catalogSvc, store, book)
	require.NoError(t, err)
	checkout, err := orders.NewCheckout(carts, creator, logg, orders.WithMetrics(m))
	require.NoError(t, err)

	cfg := &config.Config{App: config.AppConfig{Env: "test"}}
	h := NewRouter(cfg, logg, Services{
		Store:    store,
		Catalog:  catalogSvc,
		Cart:     carts,
		Checkout: checkout,
		Orders:   creator,
		Book:     book,
		Metrics:  reg,
	})
	return &testServer{t: t, handler: h}
}

func (s *testServer) do(method, path, session string, body any) (*httptest.ResponseRecorder, envelope) {
	s.t.Helper()
	var reader io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(s.t, err)
		reader = bytes.NewReader(raw)
	}
	req := httptest.NewRequest(method, path, reader).WithContext(context.Background())
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if session != "" {
		req.Header.Set(middleware.CartSessionHeader, session)
	}
	w := httptest.NewRecorder()
	s.handler.ServeHTTP(w, req)

	var env envelope
	if w.Body.Len() > 0 && w.Header().Get("Content-Type") == "application/json" {
		require.NoError(s.t, json.Unmarshal(w.Body.Bytes(), &env))
	}
	return w, env
}

func decode[T any](t *testing.T, raw json.RawMessage) T {
	t.Helper()
	var out T
	require.NoError(t, json.Unmarshal(raw, &out))
	return out
}

func TestHealthRoutes(t *testing.T) {
	s := newTestServer(t)
	w, _ := s.do(http.MethodGet, "/health/live", "", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "test", w.Header().Get("X-Storefront-Env"))

	w, env := s.do(http.MethodGet, "/health/ready", "", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "memory", decode[map[string]string](t, env.Data)["storage"])
}

func TestCatalogRoutes(t *testing.T) {
	s := newTestServer(t)

	w, env := s.do(http.MethodGet, "/api/v1/products", "", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Len(t, decode[[]map[string]any](t, env.Data), 4)

	w, env = s.do(http.MethodGet, "/api/v1/products?category=1", "", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Len(t, decode[[]map[string]any](t, env.Data), 2)

	w, env = s.do(http.MethodGet, "/api/v1/products/1", "", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "Completo Italiano", decode[map[string]any](t, env.Data)["name"])

	w, env = s.do(http.MethodGet, "/api/v1/products/5", "", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Equal(t, "NOT_FOUND", env.Error.Code)

	w, _ = s.do(http.MethodGet, "/api/v1/products/abc", "", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w, env = s.do(http.MethodGet, "/api/v1/products/search?q=palta", "", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.NotEmpty(t, decode[[]map[string]any](t, env.Data))

	for _, path := range []string{"/api/v1/products/featured", "/api/v1/categories", "/api/v1/categories/1", "/api/v1/categories/1/products", "/api/v1/tags", "/api/v1/tags/1", "/api/v1/ingredients"} {
		w, _ = s.do(http.MethodGet, path, "", nil)
		assert.Equal(t, http.StatusOK, w.Code, path)
	}

	w, _ = s.do(http.MethodGet, "/api/v1/categories/99/products", "", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestProductPriceQuote(t *testing.T) {
	s := newTestServer(t)

	w, env := s.do(http.MethodGet, "/api/v1/products/1/price?quantity=2&extras=11:2,14", "", nil)
	require.Equal(t, http.StatusOK, w.Code)
	quote := decode[map[string]any](t, env.Data)
	assert.Equal(t, 5700.0, quote["unit_price"])
	assert.Equal(t, 11400.0, quote["line_total"])

	// ingredient 15 belongs to an inactive ingredient
	w, env = s.do(http.MethodGet, "/api/v1/products/1/price?extras=15:1", "", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "VALIDATION_ERROR", env.Error.Code)

	w, _ = s.do(http.MethodGet, "/api/v1/products/1/price?extras=x:1", "", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestCartFlow(t *testing.T) {
	s := newTestServer(t)

	w, env := s.do(http.MethodPost, "/api/v1/cart/items", "", map[string]any{
		"product_id":                  1,
		"quantity":                    2,
		"extra_ingredient_quantities": map[string]int{"14": 1},
	})
	require.Equal(t, http.StatusCreated, w.Code)
	session := w.Header().Get(middleware.CartSessionHeader)
	require.NotEmpty(t, session)

	added := decode[struct {
		Item struct {
			ID string `json:"id"`
		} `json:"item"`
		Cart struct {
			Total float64 `json:"total"`
			Count int     `json:"count"`
		} `json:"cart"`
	}](t, env.Data)
	assert.Equal(t, 8200.0, added.Cart.Total)
	assert.Equal(t, 2, added.Cart.Count)

	w, env = s.do(http.MethodGet, "/api/v1/cart", session, nil)
	require.Equal(t, http.StatusOK, w.Code)
	view := decode[map[string]any](t, env.Data)
	assert.Len(t, view["items"], 1)

	w, env = s.do(http.MethodPatch, "/api/v1/cart/items/"+added.Item.ID, session, map[string]any{"quantity": 3})
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, 12300.0, decode[map[string]any](t, env.Data)["total"])

	w, _ = s.do(http.MethodPatch, "/api/v1/cart/items/not-a-uuid", session, map[string]any{"quantity": 3})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	// out of range positions leave the cart alone
	w, env = s.do(http.MethodDelete, "/api/v1/cart/lines/7", session, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, 3.0, decode[map[string]any](t, env.Data)["count"])

	w, env = s.do(http.MethodPatch, "/api/v1/cart/lines/0", session, map[string]any{"quantity": 0})
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, 0.0, decode[map[string]any](t, env.Data)["count"])

	w, _ = s.do(http.MethodPost, "/api/v1/cart/items", session, map[string]any{"product_id": 1, "extra_ingredient_quantities": map[string]int{"99": 1}})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w, _ = s.do(http.MethodPost, "/api/v1/cart/items", session, map[string]any{"product_id": 404})
	assert.Equal(t, http.StatusNotFound, w.Code)

	w, _ = s.do(http.MethodDelete, "/api/v1/cart", session, nil)
	assert.Equal(t, http.StatusOK, w.Code)
}

func checkoutForm() map[string]string {
	return map[string]string{
		"first_name": "Ana",
		"last_name":  "Pérez",
		"email":      "ana@example.cl",
		"phone":      "+56912345678",
		"street":     "Av. Matta",
		"number":     "221",
		"city":       "Santiago",
		"region":     "Metropolitana",
	}
}

func TestCheckoutAndAdminOrders(t *testing.T) {
	s := newTestServer(t)
	session := "checkout-session"

	w, env := s.do(http.MethodPost, "/api/v1/checkout", session, checkoutForm())
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "cart is empty", env.Error.Message)

	w, _ = s.do(http.MethodPost, "/api/v1/cart/items", session, map[string]any{"product_id": 3})
	require.Equal(t, http.StatusCreated, w.Code)

	w, env = s.do(http.MethodPost, "/api/v1/checkout", session, checkoutForm())
	require.Equal(t, http.StatusCreated, w.Code)
	order := decode[map[string]any](t, env.Data)
	assert.Equal(t, 1001.0, order["id"])
	assert.Equal(t, "pending", order["status"])
	assert.Equal(t, 5990.0, order["total_amount"])

	w, env = s.do(http.MethodGet, "/api/v1/cart", session, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, 0.0, decode[map[string]any](t, env.Data)["count"])

	type orderPage struct {
		Items []struct {
			ID float64 `json:"id"`
		} `json:"items"`
		NextCursor string `json:"next_cursor"`
	}
	w, env = s.do(http.MethodGet, "/api/admin/v1/orders", "", nil)
	require.Equal(t, http.StatusOK, w.Code)
	page := decode[orderPage](t, env.Data)
	require.Len(t, page.Items, 4)
	assert.Equal(t, 1001.0, page.Items[0].ID, "newest first")
	assert.Empty(t, page.NextCursor)

	w, env = s.do(http.MethodGet, "/api/admin/v1/orders?status=pending&limit=1", "", nil)
	require.Equal(t, http.StatusOK, w.Code)
	page = decode[orderPage](t, env.Data)
	assert.Len(t, page.Items, 1)
	assert.NotEmpty(t, page.NextCursor)

	w, _ = s.do(http.MethodGet, "/api/admin/v1/orders?limit=500", "", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w, _ = s.do(http.MethodGet, "/api/admin/v1/orders?status=lost", "", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w, env = s.do(http.MethodPatch, "/api/admin/v1/orders/1001/status", "", map[string]string{"status": "ready"})
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "ready", decode[map[string]any](t, env.Data)["status"])

	w, _ = s.do(http.MethodGet, "/api/admin/v1/orders/77", "", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)

	w, env = s.do(http.MethodDelete, "/api/admin/v1/orders/1", "", nil)
	assert.Equal(t, http.StatusNotImplemented, w.Code)
	assert.Equal(t, "NOT_AVAILABLE", env.Error.Code)
}

func TestCreateOrderEndpoint(t *testing.T) {
	s := newTestServer(t)
	w, env := s.do(http.MethodPost, "/api/v1/orders", "", map[string]any{
		"customer_name":   "Ana Pérez",
		"customer_phone":  "+56912345678",
		"customer_email":  "ana@example.cl",
		"delivery_street": "Av. Matta",
		"delivery_number": "221",
		"delivery_city":   "Santiago",
		"delivery_region": "Metropolitana",
		"items": []map[string]any{
			{"product_id": "4", "quantity": "3", "extras": map[string]string{}, "included_ingredients": []string{}},
		},
	})
	require.Equal(t, http.StatusCreated, w.Code)
	assert.Equal(t, 3600.0, decode[map[string]any](t, env.Data)["total_amount"])

	w, env = s.do(http.MethodPost, "/api/v1/orders", "", map[string]any{"customer_name": "x"})
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "VALIDATION_ERROR", env.Error.Code)
}

func TestCatalogAdminMutationsAreUnsupported(t *testing.T) {
	s := newTestServer(t)
	for _, tc := range []struct{ method, path string }{
		{http.MethodPost, "/api/admin/v1/products"},
		{http.MethodPut, "/api/admin/v1/categories/1"},
		{http.MethodPatch, "/api/admin/v1/tags/1"},
		{http.MethodDelete, "/api/admin/v1/ingredients/10"},
	} {
		w, env := s.do(tc.method, tc.path, "", nil)
		assert.Equal(t, http.StatusNotImplemented, w.Code, tc.path)
		require.NotNil(t, env.Error, tc.path)
		assert.Equal(t, "NOT_AVAILABLE", env.Error.Code)
	}
}

func TestMetricsEndpoint(t *testing.T) {
	s := newTestServer(t)
	w, _ := s.do(http.MethodPost, "/api/v1/cart/items", "m1", map[string]any{"product_id": 4})
	require.Equal(t, http.StatusCreated, w.Code)

	req := httptest.NewRequest(http.MethodGet, "/metrics", nil)
	rec := httptest.NewRecorder()
	s.handler.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `storefront_cart_mutations_total{op="add"} 1`)
}
