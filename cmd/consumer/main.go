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
	"github.com/multiclouddemo/message-pipeline/internal/repository"
	"github.com/multiclouddemo/message-pipeline/internal/startup"
	"github.com/multiclouddemo/message-pipeline/internal/worker"
)

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

	logger, err := logging.New(cfg.LogLevel, "consumer")
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

	// The loop must never start against a store it cannot write to.
	gate := startup.NewGate(repo, cfg.StartupTimeout, logger.Named("startup"))
	if err := gate.Run(ctx, startup.FailFast); err != nil {
		return 1
	}

	// ---- queue ----
	client, err := queue.NewRedisClient(cfg.RedisURL)
	if err != nil {
		logger.Error("invalid redis url", zap.Error(err))
		return 1
	}
	defer client.Close() //nolint:errcheck
	q := queue.NewRedisQueue(client, cfg.QueueName)

	// ---- metrics ----
	reg := prometheus.NewRegistry()
	m := metrics.New(reg)
	onPersisted, onFailed, onRequeued := m.ConsumerHooks(q.Name())

	// ---- consumers ----
	consumers := worker.NewPool(cfg, q, repo, logger, worker.MetricHooks{
		OnPersisted: onPersisted,
		OnFailed:    onFailed,
		OnRequeued:  onRequeued,
	})
	sampler := worker.NewDepthSampler(q, cfg.DepthSampleInterval, m.DepthHook(q.Name()), logger)

	// ---- ops HTTP server ----
	health := handler.NewHealthHandler(cfg.ReadTimeout, api.ReadinessChecks(gate, repo, q)...)
	srv := &http.Server{
		Addr:         ":" + cfg.OpsPort,
		Handler:      api.NewOpsRouter(q, consumers.StateNames, health, reg, logger),
		ReadTimeout:  cfg.ReadTimeout,
		WriteTimeout: cfg.WriteTimeout,
	}

	logger.Info("consumer starting",
		zap.String("queue", cfg.QueueName),
		zap.Int("workers", cfg.ConsumerWorkers),
		zap.Bool("requeue_on_failure", cfg.RequeueOnFailure),
	)

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		consumers.Start(gctx)
		consumers.Wait()
		return nil
	})

	g.Go(func() error {
		sampler.Run(gctx)
		return nil
	})

	g.Go(func() error {
		logger.Info("ops server starting", zap.String("addr", srv.Addr))
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
			logger.Error("ops server shutdown error", zap.Error(err))
		}
		return nil
	})

	if err := g.Wait(); err != nil {
		logger.Error("consumer stopped with error", zap.Error(err))
		return 1
	}

	logger.Info("consumer stopped cleanly")
	return 0
}
