package user

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	"restaurante-api/internal/api"
	"restaurante-api/internal/api/middleware"
	"restaurante-api/internal/auth"
	"restaurante-api/internal/logger"
)

// Handler handles the public authentication endpoints
type Handler struct {
	service *Service
	logger  *logger.Logger
}

// NewHandler creates a new user handler
func NewHandler(service *Service, log *logger.Logger) *Handler {
	return &Handler{
		service: service,
		logger:  log,
	}
}

// RegisterRoutes mounts the authentication surface. These routes sit
// outside the authenticated API group.
func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Post("/api/auth/register", h.Register)
	r.Post("/api/token", h.Token)
	r.Post("/api/token/refresh", h.Refresh)
}

// Register handles POST /api/auth/register.
func (h *Handler) Register(w http.ResponseWriter, r *http.Request) {
	requestID := middleware.RequestID(r)

	var req RegisterRequest
	if err := decodeJSON(r, &req); err != nil {
		api.WriteError(w, http.StatusBadRequest, "invalid JSON format", requestID)
		return
	}

	user, err := h.service.Register(r.Context(), &req, requestID)
	if err != nil {
		h.writeAuthError(w, err, requestID)
		return
	}

	api.WriteJSON(w, http.StatusCreated, user)
}

// Token handles POST /api/token, exchanging credentials for a token pair.
func (h *Handler) Token(w http.ResponseWriter, r *http.Request) {
	requestID := middleware.RequestID(r)

	var req LoginRequest
	if err := decodeJSON(r, &req); err != nil {
		api.WriteError(w, http.StatusBadRequest, "invalid JSON format", requestID)
		return
	}

	pair, err := h.service.Login(r.Context(), &req, requestID)
	if err != nil {
		h.writeAuthError(w, err, requestID)
		return
	}

	api.WriteJSON(w, http.StatusOK, pair)
}

// Refresh handles POST /api/token/refresh.
func (h *Handler) Refresh(w http.ResponseWriter, r *http.Request) {
	requestID := middleware.RequestID(r)

	var req RefreshRequest
	if err := decodeJSON(r, &req); err != nil {
		api.WriteError(w, http.StatusBadRequest, "invalid JSON format", requestID)
		return
	}

	pair, err := h.service.Refresh(r.Context(), &req, requestID)
	if err != nil {
		h.writeAuthError(w, err, requestID)
		return
	}

	api.WriteJSON(w, http.StatusOK, pair)
}

func (h *Handler) writeAuthError(w http.ResponseWriter, err error, requestID string) {
	switch {
	case errors.Is(err, ErrUsernameTaken):
		api.WriteError(w, http.StatusConflict, err.Error(), requestID)
	case errors.Is(err, ErrInvalidCredentials), errors.Is(err, auth.ErrInvalidToken):
		api.WriteError(w, http.StatusUnauthorized, err.Error(), requestID)
	default:
		api.WriteDomainError(w, err, requestID)
	}
}

func decodeJSON(r *http.Request, v interface{}) error {
	decoder := json.NewDecoder(r.Body)
	decoder.DisallowUnknownFields()
	return decoder.Decode(v)
}
