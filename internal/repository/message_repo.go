package repository

import (
	"context"

	"github.com/multiclouddemo/message-pipeline/internal/domain"
)

// DefaultRecentLimit caps how many rows Recent returns when the caller
// passes a non-positive limit.
const DefaultRecentLimit = 100

// MessageRepository is the persistence gateway for processed messages.
// The pgx implementation is in pg_message_repo.go.
// Tests use a hand-written mock (mock_message_repo.go).
type MessageRepository interface {
	// CanConnect is a cheap connectivity probe with no schema side effects.
	CanConnect(ctx context.Context) bool
	// EnsureSchema creates the messages table if absent. Safe to call
	// repeatedly and concurrently.
	EnsureSchema(ctx context.Context) error
	// Append durably inserts one record and returns the store-assigned id.
	// On success r.ID is set as well. A failed call leaves no row behind.
	Append(ctx context.Context, r *domain.Record) (int64, error)
	// Recent returns up to limit records, newest processed first.
	Recent(ctx context.Context, limit int) ([]*domain.Record, error)
}
