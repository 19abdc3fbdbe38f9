package handlers

import (
	"context"
	"net/http"
	"time"

	"classlink-portal/internal/models"

	"github.com/sirupsen/logrus"
)

type HealthHandler struct {
	store *models.Store
}

func NewHealthHandler(store *models.Store) *HealthHandler {
	return &HealthHandler{store: store}
}

// Health reports whether the database answers a ping.
func (h *HealthHandler) Health(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
	defer cancel()

	if err := h.store.Ping(ctx); err != nil {
		logrus.WithError(err).Warn("Health check failed")
		jsonResponse(w, http.StatusServiceUnavailable, map[string]string{"status": "unavailable"})
		return
	}
	jsonResponse(w, http.StatusOK, map[string]string{"status": "ok"})
}
