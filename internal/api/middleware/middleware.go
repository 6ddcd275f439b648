package middleware

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	"restaurante-api/internal/api"
	"restaurante-api/internal/auth"
	"restaurante-api/internal/logger"
	"restaurante-api/internal/models"
)

type contextKey string

const (
	requestIDKey contextKey = "request_id"
	callerKey    contextKey = "caller"
)

// RequestID retrieves the request id stored by the RequestIDMiddleware.
func RequestID(r *http.Request) string {
	if v, ok := r.Context().Value(requestIDKey).(string); ok {
		return v
	}
	return ""
}

// CallerFrom retrieves the authenticated caller stored by Authentication.
func CallerFrom(r *http.Request) (models.Caller, bool) {
	caller, ok := r.Context().Value(callerKey).(models.Caller)
	return caller, ok
}

// RequestIDMiddleware attaches a fresh request id to every request.
func RequestIDMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requestID := logger.GenerateRequestID()
		ctx := context.WithValue(r.Context(), requestIDKey, requestID)
		w.Header().Set("X-Request-Id", requestID)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// Authentication verifies the bearer token and stores the resolved caller
// in the request context. The core never authenticates by itself; this is
// the single place identity is established.
func Authentication(tokenMaker *auth.TokenMaker) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			requestID := RequestID(r)

			header := r.Header.Get("Authorization")
			if header == "" {
				api.WriteError(w, http.StatusUnauthorized, "authorization header is not provided", requestID)
				return
			}

			fields := strings.Fields(header)
			if len(fields) != 2 || !strings.EqualFold(fields[0], "Bearer") {
				api.WriteError(w, http.StatusUnauthorized, "invalid authorization header format", requestID)
				return
			}

			caller, err := tokenMaker.VerifyToken(fields[1], auth.AccessToken)
			if err != nil {
				api.WriteError(w, http.StatusUnauthorized, "token is invalid or expired", requestID)
				return
			}

			ctx := context.WithValue(r.Context(), callerKey, caller)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// statusRecorder wraps http.ResponseWriter to capture the status code
type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (w *statusRecorder) WriteHeader(status int) {
	w.status = status
	w.ResponseWriter.WriteHeader(status)
}

// Logging logs every request with its duration and status code.
func Logging(log *logger.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			requestID := RequestID(r)

			recorder := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
			next.ServeHTTP(recorder, r)

			log.Debug("request_completed",
				fmt.Sprintf("%s %s - %d", r.Method, r.URL.Path, recorder.status),
				requestID,
				map[string]interface{}{
					"method":      r.Method,
					"path":        r.URL.Path,
					"status_code": recorder.status,
					"duration_ms": time.Since(start).Milliseconds(),
					"remote_addr": r.RemoteAddr,
				})
		})
	}
}

// Recover converts panics into 500 responses instead of dropped connections.
func Recover(log *logger.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			defer func() {
				if rec := recover(); rec != nil {
					requestID := RequestID(r)
					log.Error("panic_recovered", fmt.Sprintf("panic: %v", rec), requestID, nil, map[string]interface{}{
						"method": r.Method,
						"path":   r.URL.Path,
					})
					api.WriteError(w, http.StatusInternalServerError, "internal server error", requestID)
				}
			}()
			next.ServeHTTP(w, r)
		})
	}
}
