package service

import (
	"context"
	"fmt"
	"math/rand"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/multiclouddemo/message-pipeline/internal/domain"
	"github.com/multiclouddemo/message-pipeline/internal/generator"
	"github.com/multiclouddemo/message-pipeline/internal/queue"
	"github.com/multiclouddemo/message-pipeline/internal/repository"
)

// MaxBatchSize bounds POST /messages/batch.
const MaxBatchSize = 100

// MessageService is the producer side of the pipeline: it validates and
// pushes submissions onto the queue and reads back what the consumer has
// persisted. HTTP handlers depend on this service, not on the queue or
// repository directly.
type MessageService struct {
	q        queue.Pusher
	repo     repository.MessageRepository
	logger   *zap.Logger
	onSubmit func(n int)

	rngMu sync.Mutex
	rng   *rand.Rand
	now   func() time.Time
}

func NewMessageService(
	q queue.Pusher,
	repo repository.MessageRepository,
	logger *zap.Logger,
	onSubmit func(n int),
) *MessageService {
	if onSubmit == nil {
		onSubmit = func(int) {}
	}
	return &MessageService{
		q:        q,
		repo:     repo,
		logger:   logger,
		onSubmit: onSubmit,
		rng:      rand.New(rand.NewSource(time.Now().UnixNano())),
		now:      time.Now,
	}
}

// Submit validates one message and pushes it onto the queue.
func (s *MessageService) Submit(ctx context.Context, req domain.SubmitRequest) error {
	if err := req.Validate(); err != nil {
		return err
	}
	if err := s.q.Push(ctx, req.Content); err != nil {
		return fmt.Errorf("push message: %w", err)
	}
	s.onSubmit(1)
	s.logger.Debug("message queued", zap.Int("content_length", len(req.Content)))
	return nil
}

// SubmitBatch validates every message first and pushes all of them in one
// call, so either the whole batch is queued or none of it is.
func (s *MessageService) SubmitBatch(ctx context.Context, reqs []domain.SubmitRequest) (int, error) {
	if len(reqs) == 0 {
		return 0, domain.ErrBatchEmpty
	}
	if len(reqs) > MaxBatchSize {
		return 0, domain.ErrBatchTooLarge
	}

	payloads := make([]string, len(reqs))
	for i, req := range reqs {
		if err := req.Validate(); err != nil {
			return 0, fmt.Errorf("item %d: %w", i, err)
		}
		payloads[i] = req.Content
	}

	if err := s.q.Push(ctx, payloads...); err != nil {
		return 0, fmt.Errorf("push batch: %w", err)
	}
	s.onSubmit(len(payloads))
	s.logger.Debug("batch queued", zap.Int("count", len(payloads)))
	return len(payloads), nil
}

// Recent lists the newest persisted messages.
func (s *MessageService) Recent(ctx context.Context, limit int) ([]*domain.Record, error) {
	return s.repo.Recent(ctx, limit)
}

// RandomMessage returns a generated suggestion for the submit form.
func (s *MessageService) RandomMessage() string {
	s.rngMu.Lock()
	defer s.rngMu.Unlock()
	return generator.Message(s.rng, s.now())
}
