package worker

import (
	"context"
	"sync/atomic"
	"time"

	"go.uber.org/zap"

	"github.com/multiclouddemo/message-pipeline/internal/domain"
	"github.com/multiclouddemo/message-pipeline/internal/queue"
	"github.com/multiclouddemo/message-pipeline/internal/repository"
)

// State is the ingestion loop's position in its state machine.
type State int32

const (
	StatePolling State = iota
	StatePersisting
	StateIdleWait
	StateBackoffWait
	StateStopped
)

func (s State) String() string {
	switch s {
	case StatePolling:
		return "polling"
	case StatePersisting:
		return "persisting"
	case StateIdleWait:
		return "idle_wait"
	case StateBackoffWait:
		return "backoff_wait"
	case StateStopped:
		return "stopped"
	}
	return "unknown"
}

// Failure reasons passed to MetricHooks.OnFailed.
const (
	ReasonPop     = "pop"
	ReasonPersist = "persist"
	ReasonInvalid = "invalid"
)

// Options tunes a Consumer. Zero durations fall back to the defaults used
// by the original worker: 1s idle, 5s backoff.
type Options struct {
	IdleDelay      time.Duration
	BackoffDelay   time.Duration
	PersistTimeout time.Duration
	// PopTimeout bounds a single pop. The pop itself ignores cancellation so
	// an item Redis has already removed is never abandoned.
	PopTimeout time.Duration

	// RequeueOnFailure pushes a popped item back onto the queue when its
	// insert fails. Off by default: a failed insert drops the item.
	RequeueOnFailure bool

	// Now stamps processedAt. Defaults to time.Now.
	Now func() time.Time
	// OnTransition, if set, observes every state change.
	OnTransition func(from, to State)
}

const (
	defaultIdleDelay      = time.Second
	defaultBackoffDelay   = 5 * time.Second
	defaultPersistTimeout = 10 * time.Second
	defaultPopTimeout     = 5 * time.Second
)

// Consumer is a single goroutine that drains the queue into the store:
// pop, stamp, append, repeat. It waits IdleDelay when the queue is empty and
// BackoffDelay after a failure.
type Consumer struct {
	id     int
	q      queue.Queue
	repo   repository.MessageRepository
	opts   Options
	logger *zap.Logger
	state  atomic.Int32

	// Metric hooks, injected by the pool.
	onPersisted func(latency time.Duration)
	onFailed    func(reason string)
	onRequeued  func()
}

// NewConsumer constructs a consumer. Nil hooks are no-ops.
func NewConsumer(
	id int,
	q queue.Queue,
	repo repository.MessageRepository,
	opts Options,
	logger *zap.Logger,
	hooks MetricHooks,
) *Consumer {
	if opts.IdleDelay <= 0 {
		opts.IdleDelay = defaultIdleDelay
	}
	if opts.BackoffDelay <= 0 {
		opts.BackoffDelay = defaultBackoffDelay
	}
	if opts.PersistTimeout <= 0 {
		opts.PersistTimeout = defaultPersistTimeout
	}
	if opts.PopTimeout <= 0 {
		opts.PopTimeout = defaultPopTimeout
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	if hooks.OnPersisted == nil {
		hooks.OnPersisted = func(time.Duration) {}
	}
	if hooks.OnFailed == nil {
		hooks.OnFailed = func(string) {}
	}
	if hooks.OnRequeued == nil {
		hooks.OnRequeued = func() {}
	}
	return &Consumer{
		id: id, q: q, repo: repo, opts: opts, logger: logger,
		onPersisted: hooks.OnPersisted,
		onFailed:    hooks.OnFailed,
		onRequeued:  hooks.OnRequeued,
	}
}

// State returns the state the consumer is currently in.
func (c *Consumer) State() State {
	return State(c.state.Load())
}

// Run blocks until ctx is cancelled. Cancellation is observed between
// iterations and during waits; an item already popped is always carried
// through its insert first.
func (c *Consumer) Run(ctx context.Context) {
	c.logger.Info("consumer started",
		zap.String("queue", c.q.Name()),
		zap.Duration("idle_delay", c.opts.IdleDelay),
		zap.Duration("backoff_delay", c.opts.BackoffDelay),
		zap.Bool("requeue_on_failure", c.opts.RequeueOnFailure),
	)
	for {
		c.setState(StatePolling)

		next := c.Step(ctx)
		c.setState(next)

		switch next {
		case StateStopped:
			c.logger.Info("consumer stopping")
			return
		case StateIdleWait:
			if !sleep(ctx, c.opts.IdleDelay) {
				c.setState(StateStopped)
				c.logger.Info("consumer stopping")
				return
			}
		case StateBackoffWait:
			if !sleep(ctx, c.opts.BackoffDelay) {
				c.setState(StateStopped)
				c.logger.Info("consumer stopping")
				return
			}
		}
	}
}

// Step runs one iteration and returns the state to enter next:
// StatePolling after a handled item (no delay, the queue may be backed up),
// StateIdleWait on an empty queue, StateBackoffWait after a failure, or
// StateStopped if ctx was cancelled before anything was popped. Cancellation
// is checked before the pop; once issued, the pop and the insert that follows
// run to completion.
func (c *Consumer) Step(ctx context.Context) State {
	if ctx.Err() != nil {
		return StateStopped
	}

	popCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), c.opts.PopTimeout)
	payload, ok, err := c.q.TryPop(popCtx)
	cancel()
	if err != nil {
		if ctx.Err() != nil {
			return StateStopped
		}
		c.logger.Error("queue pop failed", zap.String("queue", c.q.Name()), zap.Error(err))
		c.onFailed(ReasonPop)
		return StateBackoffWait
	}
	if !ok {
		return StateIdleWait
	}

	c.setState(StatePersisting)
	return c.persist(ctx, payload)
}

func (c *Consumer) persist(ctx context.Context, payload string) State {
	rec := domain.NewRecord(payload, c.opts.Now())
	log := c.logger.With(
		zap.String("queue", c.q.Name()),
		zap.Int("content_length", len(payload)),
	)
	log.Debug("received message", zap.String("content", payload))

	if err := rec.Validate(); err != nil {
		log.Warn("dropping invalid message", zap.Error(err))
		c.onFailed(ReasonInvalid)
		return StatePolling
	}

	// The item is off the queue: finish the insert even if shutdown begins now.
	persistCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), c.opts.PersistTimeout)
	defer cancel()

	start := time.Now()
	id, err := c.repo.Append(persistCtx, rec)
	if err != nil {
		c.onFailed(ReasonPersist)
		c.handlePersistFailure(persistCtx, log, payload, err)
		return StateBackoffWait
	}

	c.onPersisted(time.Since(start))
	log.Info("message saved", zap.Int64("id", id), zap.Time("processed_at", rec.ProcessedAt))
	return StatePolling
}

// handlePersistFailure either drops the item (default) or pushes it back
// to the pop end of the queue when RequeueOnFailure is set.
func (c *Consumer) handlePersistFailure(ctx context.Context, log *zap.Logger, payload string, persistErr error) {
	if !c.opts.RequeueOnFailure {
		log.Error("failed to save message; it was already dequeued and is lost",
			zap.Error(persistErr))
		return
	}

	if err := c.q.Requeue(ctx, payload); err != nil {
		log.Error("failed to save message and failed to requeue it; message is lost",
			zap.NamedError("persist_error", persistErr), zap.Error(err))
		return
	}
	c.onRequeued()
	log.Warn("failed to save message; requeued for another attempt", zap.Error(persistErr))
}

func (c *Consumer) setState(s State) {
	prev := State(c.state.Swap(int32(s)))
	if prev != s && c.opts.OnTransition != nil {
		c.opts.OnTransition(prev, s)
	}
}

// sleep waits for d or until ctx is cancelled. It reports whether the full
// delay elapsed.
func sleep(ctx context.Context, d time.Duration) bool {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return false
	case <-t.C:
		return true
	}
}
