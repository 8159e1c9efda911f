package handler

import (
	"encoding/json"
	"net"
	"net/http"
	"strconv"

	"go.uber.org/zap"

	apimw "github.com/multiclouddemo/message-pipeline/internal/api/middleware"
	"github.com/multiclouddemo/message-pipeline/internal/domain"
	"github.com/multiclouddemo/message-pipeline/internal/repository"
	"github.com/multiclouddemo/message-pipeline/internal/service"
)

// Limiter grants n submissions to a client, or refuses them.
type Limiter interface {
	AllowN(client string, n int) bool
}

// MessageHandler handles single-message submit and listing endpoints.
type MessageHandler struct {
	svc     *service.MessageService
	limiter Limiter
	logger  *zap.Logger
}

func NewMessageHandler(svc *service.MessageService, limiter Limiter, logger *zap.Logger) *MessageHandler {
	return &MessageHandler{svc: svc, limiter: limiter, logger: logger}
}

// Submit handles POST /api/v1/messages
//
// @Summary     Queue a message for the consumer
// @Tags        messages
// @Accept      json
// @Produce     json
// @Param       body  body      domain.SubmitRequest  true  "Message payload"
// @Success     202   {object}  map[string]string
// @Failure     422   {object}  map[string]string
// @Failure     429   {object}  map[string]string
// @Router      /api/v1/messages [post]
func (h *MessageHandler) Submit(w http.ResponseWriter, r *http.Request) {
	var req domain.SubmitRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}

	if !h.limiter.AllowN(clientKey(r), 1) {
		mapError(w, domain.ErrRateLimited)
		return
	}

	if err := h.svc.Submit(r.Context(), req); err != nil {
		h.logger.Warn("submit message failed",
			zap.String("correlation_id", apimw.GetCorrelationID(r.Context())),
			zap.Error(err),
		)
		mapError(w, err)
		return
	}

	respondJSON(w, http.StatusAccepted, map[string]string{"status": "queued"})
}

// Recent handles GET /api/v1/messages
//
// @Summary  List the most recently persisted messages
// @Tags     messages
// @Produce  json
// @Param    limit  query     int  false  "Items to return (default 100, max 100)"
// @Success  200    {object}  map[string]any
// @Router   /api/v1/messages [get]
func (h *MessageHandler) Recent(w http.ResponseWriter, r *http.Request) {
	limit := repository.DefaultRecentLimit
	if l, err := strconv.Atoi(r.URL.Query().Get("limit")); err == nil && l > 0 && l <= repository.DefaultRecentLimit {
		limit = l
	}

	records, err := h.svc.Recent(r.Context(), limit)
	if err != nil {
		h.logger.Error("list messages failed",
			zap.String("correlation_id", apimw.GetCorrelationID(r.Context())),
			zap.Error(err),
		)
		respondError(w, http.StatusServiceUnavailable, "unable to read messages from the database")
		return
	}

	respondJSON(w, http.StatusOK, map[string]any{
		"data":  records,
		"count": len(records),
		"limit": limit,
	})
}

// Random handles GET /api/v1/messages/random
//
// @Summary  Suggest a random message
// @Tags     messages
// @Produce  json
// @Success  200  {object}  map[string]string
// @Router   /api/v1/messages/random [get]
func (h *MessageHandler) Random(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, map[string]string{"content": h.svc.RandomMessage()})
}

// clientKey identifies the caller for rate limiting. RealIP middleware has
// already rewritten RemoteAddr from X-Forwarded-For when present.
func clientKey(r *http.Request) string {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}
