package handlers

import (
	"context"
	"log/slog"
	"net/http"
	"time"
)

type Pinger interface {
	PingContext(ctx context.Context) error
}

type HealthHandler struct {
	db     Pinger
	logger *slog.Logger
}

func NewHealthHandler(db Pinger, logger *slog.Logger) *HealthHandler {
	return &HealthHandler{db: db, logger: logger}
}

// Health отвечает 503, пока база недоступна.
func (h *HealthHandler) Health(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
	defer cancel()

	if err := h.db.PingContext(ctx); err != nil {
		h.logger.Warn("health check failed", slog.Any("error", err))
		errorResponse(w, r, http.StatusServiceUnavailable, "database unavailable", nil, nil)
		return
	}
	successResponse(w, r, h.logger, http.StatusOK, jsonResponse{"database": "ok"})
}
