package repository_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/multiclouddemo/message-pipeline/internal/domain"
	"github.com/multiclouddemo/message-pipeline/internal/repository"
)

func TestMockMessageRepository_RecentOrdering(t *testing.T) {
	repo := repository.NewMockMessageRepository()
	ctx := context.Background()
	base := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)

	for i, content := range []string{"a", "b", "c"} {
		_, err := repo.Append(ctx, domain.NewRecord(content, base.Add(time.Duration(i)*time.Second)))
		require.NoError(t, err)
	}

	recent, err := repo.Recent(ctx, 2)
	require.NoError(t, err)
	require.Len(t, recent, 2)
	assert.Equal(t, "c", recent[0].Content)
	assert.Equal(t, "b", recent[1].Content)
}

func TestMockMessageRepository_AppendErrFn(t *testing.T) {
	repo := repository.NewMockMessageRepository()
	boom := errors.New("boom")
	repo.AppendErrFn = func(call int) error {
		if call == 2 {
			return boom
		}
		return nil
	}
	ctx := context.Background()

	_, err := repo.Append(ctx, domain.NewRecord("one", time.Now()))
	require.NoError(t, err)
	_, err = repo.Append(ctx, domain.NewRecord("two", time.Now()))
	require.ErrorIs(t, err, boom)
	id, err := repo.Append(ctx, domain.NewRecord("three", time.Now()))
	require.NoError(t, err)

	assert.Equal(t, int64(2), id, "ids are not consumed by failed appends")
	assert.Len(t, repo.Records(), 2)
}
