// Package startup holds the one-time readiness gate that must pass before
// the ingestion loop is allowed to run.
package startup

import (
	"context"
	"errors"
	"sync/atomic"
	"time"

	"go.uber.org/zap"

	"github.com/multiclouddemo/message-pipeline/internal/domain"
)

// Policy decides what a failed gate means for the calling process.
type Policy int

const (
	// FailFast returns the gate error; the caller exits non-zero.
	FailFast Policy = iota
	// WarnAndContinue logs the failure and lets the process run, for callers
	// that rely on a sibling process to finish provisioning.
	WarnAndContinue
)

func (p Policy) String() string {
	if p == WarnAndContinue {
		return "warn_and_continue"
	}
	return "fail_fast"
}

// Store is the subset of the persistence gateway the gate needs.
type Store interface {
	CanConnect(ctx context.Context) bool
	EnsureSchema(ctx context.Context) error
}

// Gate probes store connectivity and provisions the schema.
type Gate struct {
	store   Store
	timeout time.Duration
	logger  *zap.Logger
	ready   atomic.Bool
}

// NewGate builds a gate. A non-positive timeout means the caller's context
// is the only bound.
func NewGate(store Store, timeout time.Duration, logger *zap.Logger) *Gate {
	return &Gate{store: store, timeout: timeout, logger: logger}
}

// Check runs canConnect → ensureSchema once. It returns a KindConnectivity
// error when the store is unreachable (and does not attempt provisioning),
// or a KindSchema error when provisioning fails.
func (g *Gate) Check(ctx context.Context) error {
	if g.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, g.timeout)
		defer cancel()
	}

	g.logger.Info("probing database connectivity")
	if !g.store.CanConnect(ctx) {
		return domain.NewError(domain.KindConnectivity, "probe database", errors.New("database unreachable"))
	}
	g.logger.Info("database reachable")

	if err := g.store.EnsureSchema(ctx); err != nil {
		if domain.KindOf(err) == domain.KindSchema {
			return err
		}
		return domain.NewError(domain.KindSchema, "ensure schema", err)
	}
	g.logger.Info("database schema ensured")

	g.ready.Store(true)
	return nil
}

// Run applies policy to the outcome of Check. Under FailFast the gate error
// is returned unchanged; under WarnAndContinue it is logged and nil is
// returned. Ready reports the real outcome either way.
func (g *Gate) Run(ctx context.Context, policy Policy) error {
	err := g.Check(ctx)
	if err == nil {
		return nil
	}

	if policy == WarnAndContinue {
		g.logger.Warn("startup checks failed, continuing: another process may provision the database",
			zap.String("policy", policy.String()), zap.Error(err))
		return nil
	}

	g.logger.Error("startup checks failed", zap.String("policy", policy.String()), zap.Error(err))
	return err
}

// Ready reports whether a Check has passed.
func (g *Gate) Ready() bool {
	return g.ready.Load()
}
