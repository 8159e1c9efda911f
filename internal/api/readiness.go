package api

import (
	"context"
	"errors"

	"github.com/multiclouddemo/message-pipeline/internal/api/handler"
	"github.com/multiclouddemo/message-pipeline/internal/domain"
	"github.com/multiclouddemo/message-pipeline/internal/queue"
	"github.com/multiclouddemo/message-pipeline/internal/repository"
)

// ReadyReporter is satisfied by startup.Gate.
type ReadyReporter interface {
	Ready() bool
}

// ReadinessChecks returns the probes behind /ready: the startup gate
// outcome, a live store probe and a queue ping.
func ReadinessChecks(gate ReadyReporter, repo repository.MessageRepository, q queue.Queue) []handler.Check {
	return []handler.Check{
		{Name: "startup", Probe: func(context.Context) error {
			if !gate.Ready() {
				return domain.ErrNotReady
			}
			return nil
		}},
		{Name: "database", Probe: func(ctx context.Context) error {
			if !repo.CanConnect(ctx) {
				return domain.NewError(domain.KindConnectivity, "probe database", errors.New("database unreachable"))
			}
			return nil
		}},
		{Name: "queue", Probe: q.Ping},
	}
}
