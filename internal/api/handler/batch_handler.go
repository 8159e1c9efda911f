package handler

import (
	"encoding/json"
	"net/http"

	"go.uber.org/zap"

	"github.com/multiclouddemo/message-pipeline/internal/domain"
	"github.com/multiclouddemo/message-pipeline/internal/service"
)

// BatchHandler handles multi-message submissions.
type BatchHandler struct {
	svc     *service.MessageService
	limiter Limiter
	logger  *zap.Logger
}

func NewBatchHandler(svc *service.MessageService, limiter Limiter, logger *zap.Logger) *BatchHandler {
	return &BatchHandler{svc: svc, limiter: limiter, logger: logger}
}

// SubmitBatch handles POST /api/v1/messages/batch
//
// @Summary  Queue up to 100 messages in a single request
// @Tags     messages
// @Accept   json
// @Produce  json
// @Param    body  body      domain.SubmitBatchRequest  true  "Batch payload"
// @Success  202   {object}  map[string]int
// @Failure  422   {object}  map[string]string
// @Failure  429   {object}  map[string]string
// @Router   /api/v1/messages/batch [post]
func (h *BatchHandler) SubmitBatch(w http.ResponseWriter, r *http.Request) {
	var req domain.SubmitBatchRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}

	// Empty and oversized batches fall through to the service, which
	// rejects them with 422 without spending tokens.
	if n := len(req.Messages); n > 0 && n <= service.MaxBatchSize && !h.limiter.AllowN(clientKey(r), n) {
		mapError(w, domain.ErrRateLimited)
		return
	}

	n, err := h.svc.SubmitBatch(r.Context(), req.Messages)
	if err != nil {
		h.logger.Warn("submit batch failed", zap.Error(err))
		mapError(w, err)
		return
	}

	respondJSON(w, http.StatusAccepted, map[string]int{"queued": n})
}
