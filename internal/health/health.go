package health

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"melodybot/internal/storage"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"
)

// Handler serves liveness and store health over HTTP
type Handler struct {
	store   storage.Store
	timeout time.Duration
	logger  *zap.Logger
}

// NewHandler creates a new health handler. Store pings are bounded by timeout.
func NewHandler(store storage.Store, timeout time.Duration, logger *zap.Logger) *Handler {
	return &Handler{
		store:   store,
		timeout: timeout,
		logger:  logger,
	}
}

// Routes sets up all HTTP routes
func (h *Handler) Routes() chi.Router {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)

	r.Get("/healthz", h.Health)

	return r
}

// Health handles GET /healthz. Stores that cannot be pinged are assumed up.
func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	pinger, ok := h.store.(storage.Pinger)
	if !ok {
		respond(w, http.StatusOK, map[string]string{"status": "ok"})
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	if err := pinger.Ping(ctx); err != nil {
		h.logger.Warn("Store health check failed",
			zap.String("request_id", middleware.GetReqID(r.Context())),
			zap.Error(err),
		)
		respond(w, http.StatusServiceUnavailable, map[string]string{
			"status": "unavailable",
			"error":  err.Error(),
		})
		return
	}

	respond(w, http.StatusOK, map[string]string{"status": "ok"})
}

func respond(w http.ResponseWriter, status int, body map[string]string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(body)
}
