package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/multiclouddemo/message-pipeline/internal/api"
	"github.com/multiclouddemo/message-pipeline/internal/api/handler"
	"github.com/multiclouddemo/message-pipeline/internal/config"
	"github.com/multiclouddemo/message-pipeline/internal/db"
	"github.com/multiclouddemo/message-pipeline/internal/logging"
	"github.com/multiclouddemo/message-pipeline/internal/metrics"
	"github.com/multiclouddemo/message-pipeline/internal/queue"
	"github.com/multiclouddemo/message-pipeline/internal/ratelimiter"
	"github.com/multiclouddemo/message-pipeline/internal/repository"
	"github.com/multiclouddemo/message-pipeline/internal/service"
	"github.com/multiclouddemo/message-pipeline/internal/startup"
)

// maxTrackedClients bounds the per-client limiter table.
const maxTrackedClients = 10000

func main() {
	os.Exit(run())
}

func run() int {
	// ---- configuration ----
	cfg, err := config.Load()
	if err != nil {
		bootLogger, _ := zap.NewProduction()
		bootLogger.Error("failed to load config", zap.Error(err))
		return 1
	}

	logger, err := logging.New(cfg.LogLevel, "producer")
	if err != nil {
		bootLogger, _ := zap.NewProduction()
		bootLogger.Error("failed to build logger", zap.Error(err))
		return 1
	}
	defer logger.Sync() //nolint:errcheck

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// ---- database ----
	pool, err := db.Connect(ctx, cfg)
	if err != nil {
		logger.Error("failed to configure database pool", zap.Error(err))
		return 1
	}
	defer pool.Close()

	repo := repository.NewPgMessageRepository(pool, cfg.DatabaseURL)

	// Submissions only touch the queue, so a missing database degrades the
	// listing endpoint and /ready but does not stop the producer.
	gate := startup.NewGate(repo, cfg.StartupTimeout, logger.Named("startup"))
	_ = gate.Run(ctx, startup.WarnAndContinue)

	// ---- queue ----
	client, err := queue.NewRedisClient(cfg.RedisURL)
	if err != nil {
		logger.Error("invalid redis url", zap.Error(err))
		return 1
	}
	defer client.Close() //nolint:errcheck
	q := queue.NewRedisQueue(client, cfg.QueueName)

	// ---- core dependencies ----
	reg := prometheus.NewRegistry()
	m := metrics.New(reg)
	svc := service.NewMessageService(q, repo, logger, m.SubmitHook(q.Name()))
	limiter := ratelimiter.New(cfg.RateLimit, service.MaxBatchSize, maxTrackedClients)

	// ---- HTTP server ----
	health := handler.NewHealthHandler(cfg.ReadTimeout, api.ReadinessChecks(gate, repo, q)...)
	srv := &http.Server{
		Addr:         ":" + cfg.HTTPPort,
		Handler:      api.NewRouter(svc, q, limiter, health, reg, logger),
		ReadTimeout:  cfg.ReadTimeout,
		WriteTimeout: cfg.WriteTimeout,
	}

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		logger.Info("server starting", zap.String("addr", srv.Addr), zap.String("queue", cfg.QueueName))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})

	// ---- graceful shutdown ----
	g.Go(func() error {
		<-gctx.Done()
		logger.Info("shutdown signal received")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			logger.Error("HTTP server shutdown error", zap.Error(err))
		}
		return nil
	})

	if err := g.Wait(); err != nil {
		logger.Error("server stopped with error", zap.Error(err))
		return 1
	}

	logger.Info("server stopped cleanly")
	return 0
}
