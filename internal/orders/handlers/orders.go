package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/go-playground/validator/v10"

	"food-court/internal/common/logger"
	"food-court/internal/domain"
	"food-court/internal/orders/service"
)

// Dispatcher is the push side of a committed transition. The HTTP layer
// calls it only after the store write is durable.
type Dispatcher interface {
	Dispatch(ctx context.Context, ev *domain.StatusUpdate, userID, venueID int64)
}

type OrderHandler struct {
	svc        *service.OrderService
	dispatcher Dispatcher
	validate   *validator.Validate
	lg         *logger.Logger
}

func NewOrderHandler(svc *service.OrderService, dispatcher Dispatcher, lg *logger.Logger) *OrderHandler {
	return &OrderHandler{
		svc:        svc,
		dispatcher: dispatcher,
		validate:   validator.New(),
		lg:         lg,
	}
}

func (h *OrderHandler) Register(mux *http.ServeMux) {
	mux.HandleFunc("POST /api/orders", h.create)
	mux.HandleFunc("GET /api/orders", h.list)
	mux.HandleFunc("GET /api/orders/{orderId}", h.get)
	mux.HandleFunc("PUT /api/orders/{orderId}", h.updateStatus)
}

func (h *OrderHandler) create(w http.ResponseWriter, r *http.Request) {
	var req domain.CreateOrderRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "bad json")
		return
	}
	if err := h.validate.Struct(req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	o, err := h.svc.Create(r.Context(), req)
	if err != nil {
		h.lg.Error("create_order_failed", err, nil)
		writeError(w, http.StatusInternalServerError, "storage error")
		return
	}
	writeJSON(w, http.StatusCreated, domain.NewOrderResponse(o))
}

func (h *OrderHandler) get(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(r.PathValue("orderId"), 10, 64)
	if err != nil {
		writeError(w, http.StatusBadRequest, "bad order id")
		return
	}
	o, err := h.svc.Get(r.Context(), id)
	if err != nil {
		h.writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, domain.NewOrderResponse(o))
}

func (h *OrderHandler) list(w http.ResponseWriter, r *http.Request) {
	userID, err := strconv.ParseInt(r.URL.Query().Get("user_id"), 10, 64)
	if err != nil || userID <= 0 {
		writeError(w, http.StatusBadRequest, "user_id query parameter required")
		return
	}
	orders, err := h.svc.ListByUser(r.Context(), userID)
	if err != nil {
		h.lg.Error("list_orders_failed", err, nil)
		writeError(w, http.StatusInternalServerError, "storage error")
		return
	}
	out := make([]domain.OrderResponse, 0, len(orders))
	for i := range orders {
		out = append(out, domain.NewOrderResponse(&orders[i]))
	}
	writeJSON(w, http.StatusOK, out)
}

// updateStatus is the command surface of the state machine: validate and
// commit the transition, then fan out, then answer with the updated order.
// Fan-out runs strictly after the commit and its failures never surface
// here — by then the request has already succeeded.
func (h *OrderHandler) updateStatus(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(r.PathValue("orderId"), 10, 64)
	if err != nil {
		writeError(w, http.StatusBadRequest, "bad order id")
		return
	}
	var req domain.UpdateStatusRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "bad json")
		return
	}

	ev, err := h.svc.ApplyTransition(r.Context(), id, domain.Status(req.Status))
	if err != nil {
		h.writeDomainError(w, err)
		return
	}

	o, err := h.svc.Get(r.Context(), id)
	if err != nil {
		h.writeDomainError(w, err)
		return
	}

	// ev is nil for the idempotent no-op: nothing committed, nothing sent.
	if ev != nil {
		h.dispatcher.Dispatch(r.Context(), ev, o.UserID, o.VenueID)
	}
	writeJSON(w, http.StatusOK, domain.NewOrderResponse(o))
}

func (h *OrderHandler) writeDomainError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, domain.ErrNotFound):
		writeError(w, http.StatusNotFound, err.Error())
	case errors.Is(err, domain.ErrInvalidStatus):
		writeError(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, domain.ErrIllegalTransition):
		writeError(w, http.StatusUnprocessableEntity, err.Error())
	case errors.Is(err, domain.ErrConflict):
		writeError(w, http.StatusConflict, err.Error())
	default:
		h.lg.Error("order_request_failed", err, nil)
		writeError(w, http.StatusInternalServerError, "storage error")
	}
}

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, code int, msg string) {
	writeJSON(w, code, map[string]string{"error": msg})
}
