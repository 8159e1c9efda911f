package repository

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/multiclouddemo/message-pipeline/internal/db"
	"github.com/multiclouddemo/message-pipeline/internal/domain"
)

type pgMessageRepository struct {
	pool        *pgxpool.Pool
	databaseURL string
	migrate     func(ctx context.Context, databaseURL string) error
}

// NewPgMessageRepository returns a MessageRepository backed by PostgreSQL.
// databaseURL is used only by EnsureSchema, which runs migrations over its
// own connection.
func NewPgMessageRepository(pool *pgxpool.Pool, databaseURL string) MessageRepository {
	return &pgMessageRepository{pool: pool, databaseURL: databaseURL, migrate: db.Migrate}
}

func (r *pgMessageRepository) CanConnect(ctx context.Context) bool {
	return r.pool.Ping(ctx) == nil
}

// EnsureSchema applies the embedded migrations. ctx's deadline bounds the
// wait for the migration lock and cancellation stops between files.
func (r *pgMessageRepository) EnsureSchema(ctx context.Context) error {
	if err := r.migrate(ctx, r.databaseURL); err != nil {
		return domain.NewError(domain.KindSchema, "ensure schema", err)
	}
	return nil
}

// Append is a single INSERT ... RETURNING statement, so the row either
// exists with its id or does not exist at all. The pool hands out a
// connection for the statement and takes it back as soon as it completes.
func (r *pgMessageRepository) Append(ctx context.Context, rec *domain.Record) (int64, error) {
	if err := rec.Validate(); err != nil {
		return 0, err
	}

	var id int64
	err := r.pool.QueryRow(ctx, `
		INSERT INTO messages (content, processed_at)
		VALUES ($1, $2)
		RETURNING id`,
		rec.Content, rec.ProcessedAt.UTC(),
	).Scan(&id)
	if err != nil {
		return 0, domain.NewError(domain.KindTransientPersistence, "insert message", err)
	}

	rec.ID = id
	return id, nil
}

func (r *pgMessageRepository) Recent(ctx context.Context, limit int) ([]*domain.Record, error) {
	if limit <= 0 || limit > DefaultRecentLimit {
		limit = DefaultRecentLimit
	}

	rows, err := r.pool.Query(ctx, `
		SELECT id, content, processed_at
		FROM messages
		ORDER BY processed_at DESC, id DESC
		LIMIT $1`, limit)
	if err != nil {
		return nil, fmt.Errorf("list messages: %w", err)
	}
	defer rows.Close()

	return scanRecords(rows)
}

// ---- helpers ----

func scanRecord(row pgx.Row) (*domain.Record, error) {
	var rec domain.Record
	if err := row.Scan(&rec.ID, &rec.Content, &rec.ProcessedAt); err != nil {
		return nil, err
	}
	rec.ProcessedAt = rec.ProcessedAt.UTC()
	return &rec, nil
}

func scanRecords(rows pgx.Rows) ([]*domain.Record, error) {
	result := make([]*domain.Record, 0)
	for rows.Next() {
		rec, err := scanRecord(rows)
		if err != nil {
			return nil, err
		}
		result = append(result, rec)
	}
	return result, rows.Err()
}
