package queue

import (
	"context"
	"sync"

	"github.com/multiclouddemo/message-pipeline/internal/domain"
)

// MemoryQueue is an in-process, bounded FIFO with the same contract as
// RedisQueue. It backs unit tests and single-process local runs.
//
// Push is non-blocking: if the queue is full, ErrQueueFull is returned
// immediately rather than blocking the caller (the HTTP handler).
type MemoryQueue struct {
	mu       sync.Mutex
	name     string
	items    []string
	capacity int

	// PopErr, when set, is returned by TryPop instead of an item.
	PopErr error
}

func NewMemoryQueue(name string, capacity int) *MemoryQueue {
	return &MemoryQueue{name: name, capacity: capacity}
}

func (q *MemoryQueue) Name() string { return q.name }

func (q *MemoryQueue) TryPop(ctx context.Context) (string, bool, error) {
	if err := ctx.Err(); err != nil {
		return "", false, err
	}
	q.mu.Lock()
	defer q.mu.Unlock()
	if q.PopErr != nil {
		return "", false, q.PopErr
	}
	if len(q.items) == 0 {
		return "", false, nil
	}
	head := q.items[0]
	q.items[0] = ""
	q.items = q.items[1:]
	return head, true, nil
}

func (q *MemoryQueue) Push(_ context.Context, payloads ...string) error {
	q.mu.Lock()
	defer q.mu.Unlock()
	if q.capacity > 0 && len(q.items)+len(payloads) > q.capacity {
		return domain.ErrQueueFull
	}
	q.items = append(q.items, payloads...)
	return nil
}

// Requeue ignores capacity: the item was already admitted once.
func (q *MemoryQueue) Requeue(_ context.Context, payload string) error {
	q.mu.Lock()
	defer q.mu.Unlock()
	q.items = append([]string{payload}, q.items...)
	return nil
}

func (q *MemoryQueue) Len(_ context.Context) (int64, error) {
	q.mu.Lock()
	defer q.mu.Unlock()
	return int64(len(q.items)), nil
}

func (q *MemoryQueue) Ping(context.Context) error { return nil }
