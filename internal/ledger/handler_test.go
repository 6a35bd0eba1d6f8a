package ledger

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

func newTestHandler(t *testing.T, repo *memoryRepo) http.Handler {
	t.Helper()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	handler := NewHandler(logger, NewService(repo, nil, nil), nil)
	r := chi.NewRouter()
	handler.MountRoutes(r)
	return r
}

func postJSON(t *testing.T, h http.Handler, path string, body any, headers map[string]string) *httptest.ResponseRecorder {
	t.Helper()
	payload, err := json.Marshal(body)
	require.NoError(t, err)
	req := httptest.NewRequest(http.MethodPost, path, bytes.NewReader(payload))
	req.Header.Set("Content-Type", "application/json")
	for k, v := range headers {
		req.Header.Set(k, v)
	}
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func TestRecordPurchaseEndpoint(t *testing.T) {
	repo := newMemoryRepo(seedProduct())
	h := newTestHandler(t, repo)

	rec := postJSON(t, h, "/purchases", map[string]any{
		"product_id":    1,
		"quantity":      5,
		"buying_price":  160,
		"selling_price": 200,
		"unit_type":     "piece",
	}, nil)
	require.Equal(t, http.StatusCreated, rec.Code)

	var receipt PurchaseReceipt
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &receipt))
	require.Equal(t, int64(5), receipt.Quantity)
	require.InDelta(t, 800.0, receipt.TotalCost, 0.0001)
	require.Equal(t, int64(15), repo.products[1].Stock)
}

func TestRecordPurchaseEndpointValidation(t *testing.T) {
	h := newTestHandler(t, newMemoryRepo(seedProduct()))

	rec := postJSON(t, h, "/purchases", map[string]any{
		"product_id":   1,
		"quantity":     5,
		"buying_price": 160,
	}, nil)
	require.Equal(t, http.StatusBadRequest, rec.Code)
	require.Contains(t, rec.Body.String(), "Validation Failed")
}

func TestRecordPurchaseEndpointBadIdempotencyKey(t *testing.T) {
	h := newTestHandler(t, newMemoryRepo(seedProduct()))

	rec := postJSON(t, h, "/purchases", map[string]any{
		"product_id":    1,
		"quantity":      5,
		"buying_price":  160,
		"selling_price": 200,
	}, map[string]string{"X-Idempotency-Key": "not-a-uuid"})
	require.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestRecordSaleEndpoint(t *testing.T) {
	repo := newMemoryRepo(seedProduct())
	h := newTestHandler(t, repo)

	rec := postJSON(t, h, "/sales", map[string]any{
		"product_id": 1,
		"quantity":   4,
	}, nil)
	require.Equal(t, http.StatusCreated, rec.Code)

	var receipt SaleReceipt
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &receipt))
	require.InDelta(t, 600.0, receipt.TotalPrice, 0.0001)
	require.InDelta(t, 100.0, receipt.BuyingPrice, 0.0001)
	require.Equal(t, int64(6), repo.products[1].Stock)
}

func TestRecordSaleEndpointInsufficientStock(t *testing.T) {
	h := newTestHandler(t, newMemoryRepo(seedProduct()))

	rec := postJSON(t, h, "/sales", map[string]any{
		"product_id": 1,
		"quantity":   999,
	}, nil)
	require.Equal(t, http.StatusBadRequest, rec.Code)
	require.Contains(t, rec.Body.String(), "available: 10")
}

func TestRecordSaleEndpointBelowCostWarning(t *testing.T) {
	h := newTestHandler(t, newMemoryRepo(seedProduct()))

	rec := postJSON(t, h, "/sales", map[string]any{
		"product_id":           1,
		"quantity":             2,
		"custom_selling_price": 80,
	}, nil)
	require.Equal(t, http.StatusCreated, rec.Code)
	require.Contains(t, rec.Body.String(), "below buying price")
}

func TestRecordSaleEndpointProductNotFound(t *testing.T) {
	h := newTestHandler(t, newMemoryRepo())

	rec := postJSON(t, h, "/sales", map[string]any{
		"product_id": 42,
		"quantity":   1,
	}, nil)
	require.Equal(t, http.StatusNotFound, rec.Code)
}

func TestListPurchasesEndpoint(t *testing.T) {
	repo := newMemoryRepo(seedProduct())
	h := newTestHandler(t, repo)

	rec := postJSON(t, h, "/purchases", map[string]any{
		"product_id":    1,
		"quantity":      5,
		"buying_price":  160,
		"selling_price": 200,
	}, nil)
	require.Equal(t, http.StatusCreated, rec.Code)

	req := httptest.NewRequest(http.MethodGet, "/purchases?product_id=1", nil)
	listRec := httptest.NewRecorder()
	h.ServeHTTP(listRec, req)
	require.Equal(t, http.StatusOK, listRec.Code)

	var list []Purchase
	require.NoError(t, json.Unmarshal(listRec.Body.Bytes(), &list))
	require.Len(t, list, 1)
	require.Equal(t, int64(5), list[0].Quantity)
}
