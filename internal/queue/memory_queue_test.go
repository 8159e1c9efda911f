package queue_test

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/multiclouddemo/message-pipeline/internal/domain"
	"github.com/multiclouddemo/message-pipeline/internal/queue"
)

func TestMemoryQueue_BasicPushPop(t *testing.T) {
	q := queue.NewMemoryQueue("messages", 10)
	ctx := context.Background()

	require.NoError(t, q.Push(ctx, "1", "2"))

	got, ok, err := q.TryPop(ctx)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, "1", got)

	n, _ := q.Len(ctx)
	assert.Equal(t, int64(1), n)
}

func TestMemoryQueue_ErrQueueFull(t *testing.T) {
	q := queue.NewMemoryQueue("messages", 2)
	ctx := context.Background()

	require.NoError(t, q.Push(ctx, "a", "b"))
	assert.ErrorIs(t, q.Push(ctx, "c"), domain.ErrQueueFull)

	// Requeue bypasses the bound.
	require.NoError(t, q.Requeue(ctx, "z"))
	got, _, _ := q.TryPop(ctx)
	assert.Equal(t, "z", got)
}

func TestMemoryQueue_CancelledContext(t *testing.T) {
	q := queue.NewMemoryQueue("messages", 0)
	require.NoError(t, q.Push(context.Background(), "kept"))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, ok, err := q.TryPop(ctx)
	assert.False(t, ok)
	assert.ErrorIs(t, err, context.Canceled)

	n, _ := q.Len(context.Background())
	assert.Equal(t, int64(1), n, "a cancelled pop must not remove the item")
}

// TestMemoryQueue_ConcurrentPushPop verifies there are no races and no
// duplicate deliveries when several goroutines push and pop at once.
func TestMemoryQueue_ConcurrentPushPop(t *testing.T) {
	q := queue.NewMemoryQueue("messages", 0)

	const producers = 5
	const itemsPerProducer = 100
	const total = producers * itemsPerProducer

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	var wg sync.WaitGroup
	for i := 0; i < producers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < itemsPerProducer; j++ {
				_ = q.Push(ctx, "id")
			}
		}()
	}

	var mu sync.Mutex
	received := 0
	var consumers sync.WaitGroup
	for i := 0; i < 3; i++ {
		consumers.Add(1)
		go func() {
			defer consumers.Done()
			for ctx.Err() == nil {
				_, ok, _ := q.TryPop(ctx)
				if !ok {
					mu.Lock()
					done := received == total
					mu.Unlock()
					if done {
						return
					}
					continue
				}
				mu.Lock()
				received++
				mu.Unlock()
			}
		}()
	}

	wg.Wait()
	consumers.Wait()
	assert.Equal(t, total, received)
}
