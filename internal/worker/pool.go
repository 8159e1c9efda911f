package worker

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/multiclouddemo/message-pipeline/internal/config"
	"github.com/multiclouddemo/message-pipeline/internal/queue"
	"github.com/multiclouddemo/message-pipeline/internal/repository"
)

// MetricHooks carries the metric callback functions injected by main.
// Using a struct keeps the constructor signatures clean.
type MetricHooks struct {
	OnPersisted func(latency time.Duration)
	OnFailed    func(reason string)
	OnRequeued  func()
}

// Pool manages the lifecycle of all consumers.
// Consumers share one queue; its atomic pop is the only coordination between
// them, so there is no ordering across consumers.
type Pool struct {
	consumers []*Consumer
	wg        sync.WaitGroup
}

// NewPool creates cfg.ConsumerWorkers identical consumers.
func NewPool(
	cfg *config.Config,
	q queue.Queue,
	repo repository.MessageRepository,
	logger *zap.Logger,
	hooks MetricHooks,
) *Pool {
	opts := Options{
		IdleDelay:        cfg.IdleDelay,
		BackoffDelay:     cfg.BackoffDelay,
		PersistTimeout:   cfg.PersistTimeout,
		PopTimeout:       cfg.PopTimeout,
		RequeueOnFailure: cfg.RequeueOnFailure,
	}

	consumers := make([]*Consumer, cfg.ConsumerWorkers)
	for i := range consumers {
		consumers[i] = NewConsumer(
			i, q, repo, opts,
			logger.With(zap.Int("consumer_id", i)),
			hooks,
		)
	}

	return &Pool{consumers: consumers}
}

// Start launches all consumers as goroutines.
// The provided ctx is forwarded to every consumer; cancelling it
// triggers a graceful shutdown of the entire pool.
func (p *Pool) Start(ctx context.Context) {
	for _, c := range p.consumers {
		p.wg.Add(1)
		go func(c *Consumer) {
			defer p.wg.Done()
			c.Run(ctx)
		}(c)
	}
}

// Wait blocks until every consumer has returned after ctx is cancelled.
// Call this after cancelling the context to ensure in-flight inserts finish.
func (p *Pool) Wait() {
	p.wg.Wait()
}

// States reports each consumer's current state, indexed by consumer id.
func (p *Pool) States() []State {
	states := make([]State, len(p.consumers))
	for i, c := range p.consumers {
		states[i] = c.State()
	}
	return states
}

// StateNames is States rendered for the ops snapshot.
func (p *Pool) StateNames() []string {
	states := p.States()
	names := make([]string, len(states))
	for i, s := range states {
		names[i] = s.String()
	}
	return names
}
