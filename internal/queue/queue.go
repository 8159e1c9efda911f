// Package queue provides the list-backed work queue shared by the producer
// and the consumer. Producers push at one end; consumers pop from the other.
package queue

import "context"

// Popper is the consumer's view of the queue.
type Popper interface {
	// TryPop removes and returns the oldest item. ok is false when the
	// queue is empty. Removal is atomic: an item is delivered to at most
	// one caller. Transport failures are returned, never absorbed.
	TryPop(ctx context.Context) (payload string, ok bool, err error)
}

// Pusher is the producer's view of the queue.
type Pusher interface {
	// Push appends payloads in order; they are popped in the same order.
	Push(ctx context.Context, payloads ...string) error
}

// Queue is the full client used by the processes.
type Queue interface {
	Popper
	Pusher
	// Requeue puts payload back at the pop end so it is the next item returned.
	Requeue(ctx context.Context, payload string) error
	// Len reports the number of items waiting.
	Len(ctx context.Context) (int64, error)
	// Ping verifies the queue is reachable.
	Ping(ctx context.Context) error
	// Name is the queue key, used for logging and metric labels.
	Name() string
}
