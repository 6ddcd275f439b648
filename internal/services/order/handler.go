package order

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"restaurante-api/internal/api"
	"restaurante-api/internal/api/middleware"
	"restaurante-api/internal/logger"
	"restaurante-api/internal/models"
)

// Handler handles HTTP requests for orders
type Handler struct {
	service *Service
	logger  *logger.Logger
}

// NewHandler creates a new order handler
func NewHandler(service *Service, log *logger.Logger) *Handler {
	return &Handler{
		service: service,
		logger:  log,
	}
}

// RegisterRoutes mounts the order resource surface.
func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Route("/pedidos", func(r chi.Router) {
		r.Get("/", h.List)
		r.Post("/", h.Create)
		r.Get("/meus-pedidos", h.ListOwn)
		r.Get("/{id}", h.Get)
		r.Patch("/{id}", h.Update)
		r.Post("/{id}/cancelar", h.Cancel)
	})
}

// List handles GET /pedidos. Admins see every order, everyone else
// sees only their own.
func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	requestID := middleware.RequestID(r)
	caller, _ := middleware.CallerFrom(r)

	orders, err := h.service.ListOrders(r.Context(), caller)
	if err != nil {
		api.WriteDomainError(w, err, requestID)
		return
	}
	if orders == nil {
		orders = []models.Order{}
	}

	api.WriteJSON(w, http.StatusOK, orders)
}

// ListOwn handles GET /pedidos/meus-pedidos.
func (h *Handler) ListOwn(w http.ResponseWriter, r *http.Request) {
	requestID := middleware.RequestID(r)
	caller, _ := middleware.CallerFrom(r)

	orders, err := h.service.ListOwnOrders(r.Context(), caller)
	if err != nil {
		api.WriteDomainError(w, err, requestID)
		return
	}
	if orders == nil {
		orders = []models.Order{}
	}

	api.WriteJSON(w, http.StatusOK, orders)
}

// Get handles GET /pedidos/{id}.
func (h *Handler) Get(w http.ResponseWriter, r *http.Request) {
	requestID := middleware.RequestID(r)
	caller, _ := middleware.CallerFrom(r)

	id, err := pathID(r)
	if err != nil {
		api.WriteError(w, http.StatusBadRequest, "invalid order id", requestID)
		return
	}

	ord, err := h.service.GetOrder(r.Context(), caller, id)
	if err != nil {
		api.WriteDomainError(w, err, requestID)
		return
	}

	api.WriteJSON(w, http.StatusOK, ord)
}

// Create handles POST /pedidos.
func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
	requestID := middleware.RequestID(r)
	caller, _ := middleware.CallerFrom(r)

	var req models.CreateOrderRequest
	if err := decodeJSON(r, &req); err != nil {
		api.WriteError(w, http.StatusBadRequest, "invalid JSON format", requestID)
		return
	}

	ord, err := h.service.CreateOrder(r.Context(), caller, &req, requestID)
	if err != nil {
		api.WriteDomainError(w, err, requestID)
		return
	}

	api.WriteJSON(w, http.StatusCreated, ord)
}

// Update handles PATCH /pedidos/{id}.
func (h *Handler) Update(w http.ResponseWriter, r *http.Request) {
	requestID := middleware.RequestID(r)
	caller, _ := middleware.CallerFrom(r)

	id, err := pathID(r)
	if err != nil {
		api.WriteError(w, http.StatusBadRequest, "invalid order id", requestID)
		return
	}

	var req models.UpdateOrderRequest
	if err := decodeJSON(r, &req); err != nil {
		api.WriteError(w, http.StatusBadRequest, "invalid JSON format", requestID)
		return
	}

	ord, err := h.service.UpdateOrder(r.Context(), caller, id, &req, requestID)
	if err != nil {
		api.WriteDomainError(w, err, requestID)
		return
	}

	api.WriteJSON(w, http.StatusOK, ord)
}

// Cancel handles POST /pedidos/{id}/cancelar.
func (h *Handler) Cancel(w http.ResponseWriter, r *http.Request) {
	requestID := middleware.RequestID(r)
	caller, _ := middleware.CallerFrom(r)

	id, err := pathID(r)
	if err != nil {
		api.WriteError(w, http.StatusBadRequest, "invalid order id", requestID)
		return
	}

	ord, err := h.service.CancelOrder(r.Context(), caller, id, requestID)
	if err != nil {
		api.WriteDomainError(w, err, requestID)
		return
	}

	api.WriteJSON(w, http.StatusOK, ord)
}

func pathID(r *http.Request) (int64, error) {
	return strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
}

// decodeJSON tolerates unknown fields so clients may echo a fetched order
// (total, status and the rest) back in a write payload.
func decodeJSON(r *http.Request, v interface{}) error {
	return json.NewDecoder(r.Body).Decode(v)
}
