package queue_test

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/multiclouddemo/message-pipeline/internal/domain"
	"github.com/multiclouddemo/message-pipeline/internal/queue"
)

func withRedisQueue(t *testing.T) (*queue.RedisQueue, *miniredis.Miniredis) {
	t.Helper()
	srv := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: srv.Addr(), MaxRetries: -1})
	t.Cleanup(func() { _ = client.Close() })
	return queue.NewRedisQueue(client, "messages"), srv
}

func TestRedisQueue_FIFO(t *testing.T) {
	q, srv := withRedisQueue(t)
	ctx := context.Background()

	require.NoError(t, q.Push(ctx, "hello"))
	require.NoError(t, q.Push(ctx, "world"))

	// LPUSH keeps the newest item at the head; consumers pop the tail.
	list, err := srv.List("messages")
	require.NoError(t, err)
	assert.Equal(t, []string{"world", "hello"}, list)

	for _, want := range []string{"hello", "world"} {
		got, ok, err := q.TryPop(ctx)
		require.NoError(t, err)
		require.True(t, ok)
		assert.Equal(t, want, got)
	}
}

func TestRedisQueue_PushManyKeepsOrder(t *testing.T) {
	q, _ := withRedisQueue(t)
	ctx := context.Background()

	require.NoError(t, q.Push(ctx, "a", "b", "c"))

	for _, want := range []string{"a", "b", "c"} {
		got, ok, err := q.TryPop(ctx)
		require.NoError(t, err)
		require.True(t, ok)
		assert.Equal(t, want, got)
	}
}

func TestRedisQueue_EmptyPop(t *testing.T) {
	q, _ := withRedisQueue(t)

	got, ok, err := q.TryPop(context.Background())
	require.NoError(t, err)
	assert.False(t, ok)
	assert.Empty(t, got)
}

// TestRedisQueue_ConcurrentPopSingleItem verifies that two concurrent pops
// against a one-item queue deliver the item exactly once.
func TestRedisQueue_ConcurrentPopSingleItem(t *testing.T) {
	q, _ := withRedisQueue(t)
	ctx := context.Background()
	require.NoError(t, q.Push(ctx, "only"))

	var delivered, empty atomic.Int32
	var wg sync.WaitGroup
	for i := 0; i < 2; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, ok, err := q.TryPop(ctx)
			assert.NoError(t, err)
			if ok {
				delivered.Add(1)
			} else {
				empty.Add(1)
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, int32(1), delivered.Load())
	assert.Equal(t, int32(1), empty.Load())
}

func TestRedisQueue_RequeueIsNextOut(t *testing.T) {
	q, _ := withRedisQueue(t)
	ctx := context.Background()

	require.NoError(t, q.Push(ctx, "second"))
	require.NoError(t, q.Requeue(ctx, "first"))

	n, err := q.Len(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(2), n)

	got, _, err := q.TryPop(ctx)
	require.NoError(t, err)
	assert.Equal(t, "first", got)
}

func TestRedisQueue_TransportError(t *testing.T) {
	q, srv := withRedisQueue(t)
	ctx := context.Background()
	require.NoError(t, q.Ping(ctx))

	srv.Close()

	_, ok, err := q.TryPop(ctx)
	assert.False(t, ok)
	assert.ErrorIs(t, err, domain.ErrQueueTransport)

	assert.ErrorIs(t, q.Push(ctx, "x"), domain.ErrQueueTransport)
	assert.ErrorIs(t, q.Ping(ctx), domain.ErrConnectivity)
}

func TestNewRedisClient(t *testing.T) {
	c, err := queue.NewRedisClient("redis://:secret@cache:6380/3")
	require.NoError(t, err)
	assert.Equal(t, "cache:6380", c.Options().Addr)
	assert.Equal(t, 3, c.Options().DB)
	assert.Equal(t, "secret", c.Options().Password)

	c, err = queue.NewRedisClient("localhost:6379")
	require.NoError(t, err)
	assert.Equal(t, "localhost:6379", c.Options().Addr)

	_, err = queue.NewRedisClient("redis://cache:6380/notanumber")
	assert.Error(t, err)
}
