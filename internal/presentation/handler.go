package presentation

import (
	"context"
	"errors"
	"io"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/samber/lo"

	"github.com/RaikyD/orders-intake-service/internal/codec"
	"github.com/RaikyD/orders-intake-service/internal/domain"
	"github.com/RaikyD/orders-intake-service/internal/intake"
	"github.com/RaikyD/orders-intake-service/internal/logger"
	"github.com/RaikyD/orders-intake-service/internal/orderfixture"
	"github.com/RaikyD/orders-intake-service/internal/presentation/helpers"
)

type dispatcher interface {
	Dispatch(ctx context.Context, contentType string, body []byte) (intake.Ack, error)
}

type orderReader interface {
	GetByID(ctx context.Context, id uuid.UUID) (*domain.Order, error)
}

type OrdersHandler struct {
	dispatcher dispatcher
	orders     orderReader
	maxBody    int64
}

func NewOrdersHandler(d dispatcher, orders orderReader, maxBody int64) *OrdersHandler {
	return &OrdersHandler{dispatcher: d, orders: orders, maxBody: maxBody}
}

func (h *OrdersHandler) Register(r chi.Router) {
	r.Put("/", h.CreateOrder)
	r.Post("/orders", h.CreateOrder)
	r.Post("/orders/generate", h.GenerateOrders)
	r.Get("/orders/{id}", h.GetOrder)
	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		helpers.WriteJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})
}

// CreateOrder accepts application/json or application/xml bodies. A 200 means the
// order passed validation and is on its lane's queue.
func (h *OrdersHandler) CreateOrder(w http.ResponseWriter, r *http.Request) {
	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, h.maxBody))
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			helpers.HttpError(w, http.StatusRequestEntityTooLarge, "request body too large")
			return
		}
		helpers.HttpError(w, http.StatusBadRequest, "failed to read body")
		return
	}

	ack, err := h.dispatcher.Dispatch(r.Context(), r.Header.Get("Content-Type"), body)
	if err != nil {
		writeDispatchError(w, err)
		return
	}

	helpers.WriteJSON(w, http.StatusOK, map[string]any{
		"message": ack.Message,
		"id":      ack.OrderID,
	})
}

func writeDispatchError(w http.ResponseWriter, err error) {
	var (
		schemaErr    *domain.SchemaValidationError
		invariantErr *domain.InvariantViolation
	)
	switch {
	case errors.Is(err, domain.ErrUnsupportedMediaType):
		helpers.HttpError(w, http.StatusUnsupportedMediaType, "Unsupported media type")
	case errors.Is(err, domain.ErrEmptyBody):
		helpers.HttpError(w, http.StatusBadRequest, "Empty body")
	case errors.As(err, &schemaErr):
		helpers.HttpErrorDetails(w, http.StatusBadRequest, "invalid order", schemaErr.Violations)
	case errors.As(err, &invariantErr):
		helpers.HttpErrorDetails(w, http.StatusBadRequest, "order amounts do not add up",
			lo.Map(invariantErr.Mismatches, func(m domain.Mismatch, _ int) string { return m.String() }))
	case domain.IsValidationError(err):
		helpers.HttpError(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, domain.ErrQueueSubmission):
		helpers.HttpError(w, http.StatusInternalServerError, "Failed to process order")
	default:
		logger.Error("unexpected intake failure", "err", err)
		helpers.HttpError(w, http.StatusInternalServerError, "internal error")
	}
}

func (h *OrdersHandler) GetOrder(w http.ResponseWriter, r *http.Request) {
	raw := strings.TrimSpace(chi.URLParam(r, "id"))
	id, err := uuid.Parse(raw)
	if err != nil {
		helpers.HttpError(w, http.StatusBadRequest, "invalid order id")
		return
	}

	ord, err := h.orders.GetByID(r.Context(), id)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			helpers.HttpError(w, http.StatusNotFound, "order not found")
			return
		}
		helpers.HttpError(w, http.StatusInternalServerError, "failed to get order")
		return
	}
	helpers.WriteJSON(w, http.StatusOK, ord)
}

// GenerateOrders pushes random valid demo orders through the regular intake path.
// Query: count (1..1000, default 1), format (json|xml, default json).
func (h *OrdersHandler) GenerateOrders(w http.ResponseWriter, r *http.Request) {
	n := 1
	if q := r.URL.Query().Get("count"); q != "" {
		if v, err := strconv.Atoi(q); err == nil && v > 0 && v <= 1000 {
			n = v
		}
	}
	c := codec.JSON
	if f := r.URL.Query().Get("format"); f != "" {
		var err error
		if c, err = codec.ForFormat(domain.Format(f)); err != nil {
			helpers.HttpError(w, http.StatusBadRequest, "unknown format")
			return
		}
	}

	created := make([]string, 0, n)
	for range n {
		body, err := c.Encode(orderfixture.Order())
		if err != nil {
			logger.Warn("generate: encode failed", "err", err)
			continue
		}
		ack, err := h.dispatcher.Dispatch(r.Context(), c.ContentType, body)
		if err != nil {
			logger.Warn("generate: dispatch failed", "err", err)
			continue
		}
		created = append(created, ack.OrderID.String())
	}

	helpers.WriteJSON(w, http.StatusCreated, map[string]any{
		"status":      "ok",
		"created_ids": created,
	})
}
