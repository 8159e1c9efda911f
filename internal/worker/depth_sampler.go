package worker

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/multiclouddemo/message-pipeline/internal/queue"
)

// DepthSampler polls the queue length on a fixed interval and reports it,
// so operators can see a backlog building while consumers are backing off.
type DepthSampler struct {
	q        queue.Queue
	interval time.Duration
	record   func(int64)
	logger   *zap.Logger
}

func NewDepthSampler(
	q queue.Queue,
	interval time.Duration,
	record func(int64),
	logger *zap.Logger,
) *DepthSampler {
	return &DepthSampler{q: q, interval: interval, record: record, logger: logger}
}

// Run ticks every interval and records the current depth.
// Stops cleanly when ctx is cancelled.
func (ds *DepthSampler) Run(ctx context.Context) {
	ticker := time.NewTicker(ds.interval)
	defer ticker.Stop()

	ds.logger.Info("depth sampler started", zap.Duration("interval", ds.interval))

	for {
		select {
		case <-ctx.Done():
			ds.logger.Info("depth sampler stopping")
			return
		case <-ticker.C:
			ds.sample(ctx)
		}
	}
}

func (ds *DepthSampler) sample(ctx context.Context) {
	n, err := ds.q.Len(ctx)
	if err != nil {
		if ctx.Err() == nil {
			ds.logger.Warn("queue depth sample failed", zap.String("queue", ds.q.Name()), zap.Error(err))
		}
		return
	}
	ds.record(n)
}
