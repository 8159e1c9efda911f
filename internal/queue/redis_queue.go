package queue

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/redis/go-redis/v9"

	"github.com/multiclouddemo/message-pipeline/internal/domain"
)

// RedisQueue is a FIFO queue stored as a Redis list: LPUSH to enqueue,
// RPOP to dequeue. Both commands are atomic on the server, so concurrent
// consumers never receive the same item.
type RedisQueue struct {
	client redis.UniversalClient
	key    string
}

// NewRedisQueue wraps an existing client. The client is owned by the caller
// and shared across all operations.
func NewRedisQueue(client redis.UniversalClient, key string) *RedisQueue {
	return &RedisQueue{client: client, key: key}
}

// NewRedisClient builds a client from either a redis:// (or rediss://) URL
// or a bare host:port address.
func NewRedisClient(redisURL string) (*redis.Client, error) {
	if strings.HasPrefix(redisURL, "redis://") || strings.HasPrefix(redisURL, "rediss://") {
		opts, err := redis.ParseURL(redisURL)
		if err != nil {
			return nil, fmt.Errorf("parse redis URL: %w", err)
		}
		return redis.NewClient(opts), nil
	}
	return redis.NewClient(&redis.Options{Addr: redisURL}), nil
}

func (q *RedisQueue) Name() string { return q.key }

func (q *RedisQueue) TryPop(ctx context.Context) (string, bool, error) {
	payload, err := q.client.RPop(ctx, q.key).Result()
	if errors.Is(err, redis.Nil) {
		return "", false, nil
	}
	if err != nil {
		return "", false, domain.NewError(domain.KindQueueTransport, "rpop "+q.key, err)
	}
	return payload, true, nil
}

func (q *RedisQueue) Push(ctx context.Context, payloads ...string) error {
	if len(payloads) == 0 {
		return nil
	}
	values := make([]interface{}, len(payloads))
	for i, p := range payloads {
		values[i] = p
	}
	if err := q.client.LPush(ctx, q.key, values...).Err(); err != nil {
		return domain.NewError(domain.KindQueueTransport, "lpush "+q.key, err)
	}
	return nil
}

func (q *RedisQueue) Requeue(ctx context.Context, payload string) error {
	if err := q.client.RPush(ctx, q.key, payload).Err(); err != nil {
		return domain.NewError(domain.KindQueueTransport, "rpush "+q.key, err)
	}
	return nil
}

func (q *RedisQueue) Len(ctx context.Context) (int64, error) {
	n, err := q.client.LLen(ctx, q.key).Result()
	if err != nil {
		return 0, domain.NewError(domain.KindQueueTransport, "llen "+q.key, err)
	}
	return n, nil
}

func (q *RedisQueue) Ping(ctx context.Context) error {
	if err := q.client.Ping(ctx).Err(); err != nil {
		return domain.NewError(domain.KindConnectivity, "redis ping", err)
	}
	return nil
}
