package ledger

import (
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"

	"github.com/tokokita/tokokita/internal/observability"
	"github.com/tokokita/tokokita/internal/platform/httpx"
	"github.com/tokokita/tokokita/internal/shared"
)

// Handler wires HTTP endpoints for purchase and sale postings.
type Handler struct {
	logger    *slog.Logger
	service   *Service
	validator *validator.Validate
	metrics   *observability.Metrics
}

// NewHandler constructs the ledger handler. metrics may be nil.
func NewHandler(logger *slog.Logger, service *Service, metrics *observability.Metrics) *Handler {
	return &Handler{logger: logger, service: service, validator: validator.New(), metrics: metrics}
}

// MountRoutes registers ledger routes on the provided router.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Get("/purchases", h.ListPurchases)
	r.Post("/purchases", h.RecordPurchase)
	r.Get("/sales", h.ListSales)
	r.Post("/sales", h.RecordSale)
}

func (h *Handler) ListPurchases(w http.ResponseWriter, r *http.Request) {
	list, err := h.service.ListPurchases(r.Context(), parseHistoryFilter(r))
	if err != nil {
		h.logger.Error("list purchases", slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, list)
}

func (h *Handler) ListSales(w http.ResponseWriter, r *http.Request) {
	list, err := h.service.ListSales(r.Context(), parseHistoryFilter(r))
	if err != nil {
		h.logger.Error("list sales", slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, list)
}

func (h *Handler) RecordPurchase(w http.ResponseWriter, r *http.Request) {
	var req PurchaseRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", "invalid request body")
		return
	}
	if err := h.validator.Struct(req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", err.Error())
		return
	}
	key, ok := idempotencyKey(w, r)
	if !ok {
		return
	}

	receipt, err := h.service.RecordPurchase(r.Context(), PurchaseInput{
		ProductID:       req.ProductID,
		Quantity:        req.Quantity,
		BuyingPrice:     req.BuyingPrice,
		SellingPrice:    req.SellingPrice,
		Supplier:        req.Supplier,
		UnitType:        req.UnitType,
		UnitsPerPackage: req.UnitsPerPackage,
		PackageName:     req.PackageName,
		IdempotencyKey:  key,
	})
	if err != nil {
		h.logger.Error("record purchase failed", slog.Any("error", err), slog.Int64("product_id", req.ProductID))
		h.record("purchase", "error")
		h.respondError(w, err)
		return
	}

	h.logger.Info("purchase recorded",
		slog.Int64("purchase_id", receipt.ID),
		slog.Int64("product_id", receipt.ProductID),
		slog.Int64("units", receipt.Quantity))
	h.record("purchase", "ok")
	httpx.JSON(w, http.StatusCreated, receipt)
}

func (h *Handler) RecordSale(w http.ResponseWriter, r *http.Request) {
	var req SaleRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", "invalid request body")
		return
	}
	if err := h.validator.Struct(req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", err.Error())
		return
	}
	key, ok := idempotencyKey(w, r)
	if !ok {
		return
	}

	receipt, err := h.service.RecordSale(r.Context(), SaleInput{
		ProductID:          req.ProductID,
		Quantity:           req.Quantity,
		CustomSellingPrice: req.CustomSellingPrice,
		IdempotencyKey:     key,
	})
	if err != nil {
		h.logger.Error("record sale failed", slog.Any("error", err), slog.Int64("product_id", req.ProductID))
		h.record("sale", "error")
		h.respondError(w, err)
		return
	}

	h.logger.Info("sale recorded",
		slog.Int64("sale_id", receipt.ID),
		slog.Int64("product_id", receipt.ProductID),
		slog.Float64("profit", receipt.Profit))
	h.record("sale", "ok")
	httpx.JSON(w, http.StatusCreated, receipt)
}

func (h *Handler) respondError(w http.ResponseWriter, err error) {
	var insufficient *InsufficientStockError
	switch {
	case errors.Is(err, ErrInvalidInput):
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", err.Error())
	case errors.Is(err, ErrProductNotFound):
		httpx.Problem(w, http.StatusNotFound, "Not Found", err.Error())
	case errors.As(err, &insufficient):
		httpx.Problem(w, http.StatusBadRequest, "Insufficient Stock",
			"insufficient stock, available: "+strconv.FormatInt(insufficient.Available, 10))
	case errors.Is(err, ErrStockConflict):
		httpx.Problem(w, http.StatusConflict, "Stock Conflict", err.Error())
	case errors.Is(err, shared.ErrIdempotencyConflict):
		httpx.Problem(w, http.StatusConflict, "Duplicate", err.Error())
	default:
		httpx.Problem(w, http.StatusInternalServerError, "Internal Error", "")
	}
}

func (h *Handler) record(kind, result string) {
	if h.metrics != nil {
		h.metrics.RecordPosting(kind, result)
	}
}

// idempotencyKey reads and validates the optional X-Idempotency-Key header.
func idempotencyKey(w http.ResponseWriter, r *http.Request) (string, bool) {
	key := r.Header.Get("X-Idempotency-Key")
	if key == "" {
		return "", true
	}
	if _, err := uuid.Parse(key); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", "idempotency key must be a UUID")
		return "", false
	}
	return key, true
}

func parseHistoryFilter(r *http.Request) HistoryFilter {
	q := r.URL.Query()
	filter := HistoryFilter{}
	if id, err := strconv.ParseInt(q.Get("product_id"), 10, 64); err == nil {
		filter.ProductID = id
	}
	if from, err := time.Parse("2006-01-02", q.Get("from")); err == nil {
		filter.From = from
	}
	if to, err := time.Parse("2006-01-02", q.Get("to")); err == nil {
		// include the whole day
		filter.To = to.Add(24*time.Hour - time.Nanosecond)
	}
	if limit, err := strconv.Atoi(q.Get("limit")); err == nil {
		filter.Limit = limit
	}
	return filter
}
