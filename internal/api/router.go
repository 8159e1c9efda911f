package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/multiclouddemo/message-pipeline/internal/api/handler"
	apimw "github.com/multiclouddemo/message-pipeline/internal/api/middleware"
	"github.com/multiclouddemo/message-pipeline/internal/queue"
	"github.com/multiclouddemo/message-pipeline/internal/service"
)

// NewRouter wires the producer's chi router, attaches all middleware, and
// registers every route. It is the single source of truth for the
// producer's HTTP surface area.
func NewRouter(
	svc *service.MessageService,
	q queue.Queue,
	limiter handler.Limiter,
	health *handler.HealthHandler,
	reg prometheus.Gatherer,
	logger *zap.Logger,
) http.Handler {
	r := newBaseRouter(health, reg, logger)

	mh := handler.NewMessageHandler(svc, limiter, logger)
	bh := handler.NewBatchHandler(svc, limiter, logger)
	qh := handler.NewMetricsHandler(q, nil)

	r.Route("/api/v1", func(r chi.Router) {
		// /random and /batch must be registered as literals alongside the
		// collection routes.
		r.Get("/messages/random", mh.Random)
		r.Post("/messages/batch", bh.SubmitBatch)
		r.Post("/messages", mh.Submit)
		r.Get("/messages", mh.Recent)

		// JSON queue snapshot
		r.Get("/metrics", qh.GetMetrics)
	})

	return r
}

// NewOpsRouter serves only the operational endpoints. The consumer has no
// public API; this is what its OPS_PORT exposes. consumers reports the loop
// state of each consumer in the /api/v1/metrics snapshot.
func NewOpsRouter(
	q queue.Queue,
	consumers func() []string,
	health *handler.HealthHandler,
	reg prometheus.Gatherer,
	logger *zap.Logger,
) http.Handler {
	r := newBaseRouter(health, reg, logger)
	r.Get("/api/v1/metrics", handler.NewMetricsHandler(q, consumers).GetMetrics)
	return r
}

func newBaseRouter(health *handler.HealthHandler, reg prometheus.Gatherer, logger *zap.Logger) chi.Router {
	r := chi.NewRouter()

	// --- global middleware (applied to every route) ---
	r.Use(chimw.Recoverer)            // recover panics, return 500
	r.Use(chimw.RealIP)               // trust X-Forwarded-For / X-Real-IP
	r.Use(chimw.RequestSize(1 << 20)) // 1 MB max request body
	r.Use(apimw.CorrelationID)        // X-Correlation-ID inject / echo
	r.Use(apimw.RequestLogger(logger))

	r.Get("/health", health.Health)
	r.Get("/ready", health.Ready)

	// Raw Prometheus scrape endpoint
	r.Handle("/metrics", promhttp.HandlerFor(reg, promhttp.HandlerOpts{}))

	return r
}
