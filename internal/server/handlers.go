package server

import (
	"net/http"

	"parking-payments/internal/parking"
)

// StatsSource reports the progress of the running session.
type StatsSource interface {
	Snapshot() parking.SessionStats
}

type Handler struct {
	serviceName string
	stats       StatsSource
}

func NewHandler(serviceName string, stats StatsSource) *Handler {
	return &Handler{serviceName: serviceName, stats: stats}
}

func (h *Handler) HealthCheck(w http.ResponseWriter, r *http.Request) {
	WriteJSON(w, http.StatusOK, HealthResponse{
		Status:  "healthy",
		Service: h.serviceName,
		Meta:    extractMeta(r.Context()),
	})
}

func (h *Handler) SessionStats(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	if h.stats == nil {
		WriteError(ctx, w, http.StatusServiceUnavailable, "No session attached")
		return
	}

	WriteSuccess(ctx, w, "Session stats retrieved successfully", h.stats.Snapshot())
}
