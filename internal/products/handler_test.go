package products

import (
	"bytes"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/require"
)

func newTestRouter(t *testing.T, repo Repository) http.Handler {
	t.Helper()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	handler := NewHandler(logger, NewService(repo))
	r := chi.NewRouter()
	handler.MountRoutes(r)
	return r
}

func doJSON(t *testing.T, h http.Handler, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(payload)
	}
	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func TestProductCRUDEndpoints(t *testing.T) {
	h := newTestRouter(t, newMemoryRepo())

	rec := doJSON(t, h, http.MethodPost, "/products", map[string]any{
		"name":          "Minyak Goreng 2L",
		"buying_price":  32000,
		"selling_price": 36000,
		"stock":         18,
		"category":      "Sembako",
	})
	require.Equal(t, http.StatusCreated, rec.Code)

	var created Product
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &created))
	require.NotZero(t, created.ID)
	require.Equal(t, UnitTypePiece, created.UnitType)

	rec = doJSON(t, h, http.MethodGet, "/products/1", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	rec = doJSON(t, h, http.MethodPut, "/products/1", map[string]any{
		"name":          "Minyak Goreng 2L",
		"selling_price": 38000,
	})
	require.Equal(t, http.StatusOK, rec.Code)
	var updated Product
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &updated))
	require.InDelta(t, 38000.0, updated.SellingPrice, 0.0001)

	rec = doJSON(t, h, http.MethodDelete, "/products/1", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	rec = doJSON(t, h, http.MethodGet, "/products/1", nil)
	require.Equal(t, http.StatusNotFound, rec.Code)
}

func TestCreateProductValidation(t *testing.T) {
	h := newTestRouter(t, newMemoryRepo())

	rec := doJSON(t, h, http.MethodPost, "/products", map[string]any{
		"buying_price": 100,
	})
	require.Equal(t, http.StatusBadRequest, rec.Code)

	rec = doJSON(t, h, http.MethodPost, "/products", map[string]any{
		"name":      "X",
		"unit_type": "carton",
	})
	require.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestUpdateProductValidation(t *testing.T) {
	h := newTestRouter(t, newMemoryRepo())

	rec := doJSON(t, h, http.MethodPost, "/products", map[string]any{"name": "Kopi Sachet"})
	require.Equal(t, http.StatusCreated, rec.Code)

	// A whitespace-only name slips past the form binding but must still be
	// rejected as a bad request, not a server error.
	rec = doJSON(t, h, http.MethodPut, "/products/1", map[string]any{"name": "   "})
	require.Equal(t, http.StatusBadRequest, rec.Code)

	rec = doJSON(t, h, http.MethodPut, "/products/1", map[string]any{"name": "Kopi Sachet", "stock": -3})
	require.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestListProductsEndpoint(t *testing.T) {
	repo := newMemoryRepo()
	h := newTestRouter(t, repo)

	rec := doJSON(t, h, http.MethodPost, "/products", map[string]any{"name": "Aqua 600ml"})
	require.Equal(t, http.StatusCreated, rec.Code)

	rec = doJSON(t, h, http.MethodGet, "/products", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var list []Product
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &list))
	require.Len(t, list, 1)
}

func TestShowProductBadID(t *testing.T) {
	h := newTestRouter(t, newMemoryRepo())
	rec := doJSON(t, h, http.MethodGet, "/products/abc", nil)
	require.Equal(t, http.StatusBadRequest, rec.Code)
}
