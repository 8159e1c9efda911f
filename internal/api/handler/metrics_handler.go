package handler

import (
	"net/http"

	"github.com/multiclouddemo/message-pipeline/internal/queue"
)

// MetricsHandler serves a human-readable JSON queue snapshot.
// Raw Prometheus metrics (counters, histograms) are available at /metrics
// via promhttp.Handler and are separate from this endpoint.
type MetricsHandler struct {
	q         queue.Queue
	consumers func() []string
}

// NewMetricsHandler builds the snapshot handler. consumers, when non-nil,
// reports each consumer's loop state and is included in the snapshot.
func NewMetricsHandler(q queue.Queue, consumers func() []string) *MetricsHandler {
	return &MetricsHandler{q: q, consumers: consumers}
}

// GetMetrics handles GET /api/v1/metrics
//
// @Summary  Real-time queue depth and consumer state snapshot
// @Tags     metrics
// @Produce  json
// @Success  200  {object}  map[string]any
// @Failure  503  {object}  map[string]string
// @Router   /api/v1/metrics [get]
func (h *MetricsHandler) GetMetrics(w http.ResponseWriter, r *http.Request) {
	depth, err := h.q.Len(r.Context())
	if err != nil {
		mapError(w, err)
		return
	}
	body := map[string]any{
		"queue":       h.q.Name(),
		"queue_depth": depth,
	}
	if h.consumers != nil {
		body["consumers"] = h.consumers()
	}
	respondJSON(w, http.StatusOK, body)
}
