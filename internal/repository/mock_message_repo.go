package repository

import (
	"context"
	"sort"
	"sync"

	"github.com/multiclouddemo/message-pipeline/internal/domain"
)

// MockMessageRepository is a hand-written, in-memory implementation of
// MessageRepository used in unit tests. Ids are assigned from a counter
// that never goes backwards.
type MockMessageRepository struct {
	mu        sync.RWMutex
	records   []*domain.Record
	nextID    int64
	schemaOK  bool
	ensureCnt int

	// Optional overrides, set in tests to simulate failure paths.
	Unreachable     bool
	EnsureSchemaErr error
	AppendErr       error
	// AppendErrFn, when set, decides per call (1-based) whether Append fails.
	AppendErrFn func(call int) error
	appendCalls int
}

func NewMockMessageRepository() *MockMessageRepository {
	return &MockMessageRepository{}
}

func (m *MockMessageRepository) CanConnect(_ context.Context) bool {
	return !m.Unreachable
}

func (m *MockMessageRepository) EnsureSchema(_ context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.ensureCnt++
	if m.EnsureSchemaErr != nil {
		return m.EnsureSchemaErr
	}
	m.schemaOK = true
	return nil
}

func (m *MockMessageRepository) Append(_ context.Context, r *domain.Record) (int64, error) {
	if err := r.Validate(); err != nil {
		return 0, err
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	m.appendCalls++
	if m.AppendErr != nil {
		return 0, m.AppendErr
	}
	if m.AppendErrFn != nil {
		if err := m.AppendErrFn(m.appendCalls); err != nil {
			return 0, err
		}
	}

	m.nextID++
	clone := *r
	clone.ID = m.nextID
	m.records = append(m.records, &clone)
	r.ID = clone.ID
	return clone.ID, nil
}

func (m *MockMessageRepository) Recent(_ context.Context, limit int) ([]*domain.Record, error) {
	if limit <= 0 || limit > DefaultRecentLimit {
		limit = DefaultRecentLimit
	}

	all := m.Records()
	sort.SliceStable(all, func(i, j int) bool {
		if all[i].ProcessedAt.Equal(all[j].ProcessedAt) {
			return all[i].ID > all[j].ID
		}
		return all[i].ProcessedAt.After(all[j].ProcessedAt)
	})
	if len(all) > limit {
		all = all[:limit]
	}
	return all, nil
}

// Records returns copies of all persisted records in insertion order.
func (m *MockMessageRepository) Records() []*domain.Record {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]*domain.Record, len(m.records))
	for i, r := range m.records {
		clone := *r
		out[i] = &clone
	}
	return out
}

// EnsureSchemaCalls reports how many times EnsureSchema ran.
func (m *MockMessageRepository) EnsureSchemaCalls() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.ensureCnt
}

// SchemaReady reports whether a call to EnsureSchema has succeeded.
func (m *MockMessageRepository) SchemaReady() bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.schemaOK
}
