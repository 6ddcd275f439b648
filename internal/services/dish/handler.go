package dish

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"

	"restaurante-api/internal/api"
	"restaurante-api/internal/api/middleware"
	"restaurante-api/internal/logger"
	"restaurante-api/internal/models"
)

// Handler handles HTTP requests for the dish catalogue
type Handler struct {
	service *Service
	logger  *logger.Logger
}

// NewHandler creates a new dish handler
func NewHandler(service *Service, log *logger.Logger) *Handler {
	return &Handler{
		service: service,
		logger:  log,
	}
}

// RegisterRoutes mounts the dish resource surface.
func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Route("/pratos", func(r chi.Router) {
		r.Get("/", h.List)
		r.Post("/", h.Create)
		r.Get("/mais-vendidos", h.MostPopular)
		r.Get("/{id}", h.Get)
		r.Put("/{id}", h.Update)
		r.Delete("/{id}", h.Delete)
	})
}

// List handles GET /pratos with search/filter/ordering query parameters.
func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	requestID := middleware.RequestID(r)

	filter := ListFilter{
		Search:  r.URL.Query().Get("search"),
		OrderBy: r.URL.Query().Get("ordering"),
	}
	if raw := r.URL.Query().Get("preco"); raw != "" {
		price, err := decimal.NewFromString(raw)
		if err != nil {
			api.WriteError(w, http.StatusBadRequest, "invalid preco filter", requestID)
			return
		}
		filter.Price = &price
	}
	filter.Limit, filter.Offset = pagination(r)

	dishes, err := h.service.ListDishes(r.Context(), filter)
	if err != nil {
		h.logger.Error("dish_list_failed", "Failed to list dishes", requestID, err, nil)
		api.WriteDomainError(w, err, requestID)
		return
	}
	if dishes == nil {
		dishes = []models.Dish{}
	}

	api.WriteJSON(w, http.StatusOK, dishes)
}

// MostPopular handles GET /pratos/mais-vendidos.
func (h *Handler) MostPopular(w http.ResponseWriter, r *http.Request) {
	requestID := middleware.RequestID(r)

	limit := 0
	if raw := r.URL.Query().Get("limit"); raw != "" {
		limit, _ = strconv.Atoi(raw)
	}

	dishes, err := h.service.MostPopular(r.Context(), limit)
	if err != nil {
		h.logger.Error("dish_popular_failed", "Failed to rank dishes", requestID, err, nil)
		api.WriteDomainError(w, err, requestID)
		return
	}
	if dishes == nil {
		dishes = []models.Dish{}
	}

	api.WriteJSON(w, http.StatusOK, dishes)
}

// Get handles GET /pratos/{id}.
func (h *Handler) Get(w http.ResponseWriter, r *http.Request) {
	requestID := middleware.RequestID(r)

	id, err := pathID(r)
	if err != nil {
		api.WriteError(w, http.StatusBadRequest, "invalid dish id", requestID)
		return
	}

	dish, err := h.service.GetDish(r.Context(), id)
	if err != nil {
		api.WriteDomainError(w, err, requestID)
		return
	}

	api.WriteJSON(w, http.StatusOK, dish)
}

// Create handles POST /pratos.
func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
	requestID := middleware.RequestID(r)
	caller, _ := middleware.CallerFrom(r)

	var req models.CreateDishRequest
	if err := decodeJSON(r, &req); err != nil {
		api.WriteError(w, http.StatusBadRequest, "invalid JSON format", requestID)
		return
	}

	dish, err := h.service.CreateDish(r.Context(), caller, &req, requestID)
	if err != nil {
		api.WriteDomainError(w, err, requestID)
		return
	}

	api.WriteJSON(w, http.StatusCreated, dish)
}

// Update handles PUT /pratos/{id}.
func (h *Handler) Update(w http.ResponseWriter, r *http.Request) {
	requestID := middleware.RequestID(r)
	caller, _ := middleware.CallerFrom(r)

	id, err := pathID(r)
	if err != nil {
		api.WriteError(w, http.StatusBadRequest, "invalid dish id", requestID)
		return
	}

	var req models.CreateDishRequest
	if err := decodeJSON(r, &req); err != nil {
		api.WriteError(w, http.StatusBadRequest, "invalid JSON format", requestID)
		return
	}

	dish, err := h.service.UpdateDish(r.Context(), caller, id, &req, requestID)
	if err != nil {
		api.WriteDomainError(w, err, requestID)
		return
	}

	api.WriteJSON(w, http.StatusOK, dish)
}

// Delete handles DELETE /pratos/{id}.
func (h *Handler) Delete(w http.ResponseWriter, r *http.Request) {
	requestID := middleware.RequestID(r)
	caller, _ := middleware.CallerFrom(r)

	id, err := pathID(r)
	if err != nil {
		api.WriteError(w, http.StatusBadRequest, "invalid dish id", requestID)
		return
	}

	if err := h.service.DeleteDish(r.Context(), caller, id, requestID); err != nil {
		if errors.Is(err, ErrDishInUse) {
			api.WriteError(w, http.StatusConflict, err.Error(), requestID)
			return
		}
		api.WriteDomainError(w, err, requestID)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

func pathID(r *http.Request) (int64, error) {
	return strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
}

// decodeJSON tolerates unknown fields so clients may echo a fetched dish
// (id, timestamps) back in a write payload.
func decodeJSON(r *http.Request, v interface{}) error {
	return json.NewDecoder(r.Body).Decode(v)
}

func pagination(r *http.Request) (limit, offset int) {
	if raw := r.URL.Query().Get("limit"); raw != "" {
		limit, _ = strconv.Atoi(raw)
	}
	if raw := r.URL.Query().Get("offset"); raw != "" {
		offset, _ = strconv.Atoi(raw)
	}
	return limit, offset
}
