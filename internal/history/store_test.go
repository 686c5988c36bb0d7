package history

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()
	store, err := Open(filepath.Join(t.TempDir(), "history.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close() })
	return store
}

func TestAppendAndRecent(t *testing.T) {
	store := openTestStore(t)
	ctx := context.Background()

	base := time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC)
	for i := 0; i < 3; i++ {
		_, err := store.Append(ctx, Record{
			StartedAt:  base.Add(time.Duration(i) * time.Minute),
			FinishedAt: base.Add(time.Duration(i)*time.Minute + 5*time.Second),
			Commit:     "abc1234",
			Services:   2,
			Methods:    9,
			Types:      4,
			Outcome:    OutcomeSuccess,
			Duration:   5 * time.Second,
		})
		require.NoError(t, err)
	}

	records, err := store.Recent(ctx, 10)
	require.NoError(t, err)
	require.Len(t, records, 3)

	// Newest first.
	assert.True(t, records[0].StartedAt.After(records[1].StartedAt))
	assert.Equal(t, "abc1234", records[0].Commit)
	assert.Equal(t, 9, records[0].Methods)
	assert.Equal(t, OutcomeSuccess, records[0].Outcome)
	assert.Equal(t, 5*time.Second, records[0].Duration)
	assert.NotEqual(t, uuid.Nil, records[0].ID)
}

func TestAppendAssignsID(t *testing.T) {
	store := openTestStore(t)

	rec, err := store.Append(context.Background(), Record{
		StartedAt:  time.Now(),
		FinishedAt: time.Now(),
		Outcome:    OutcomeFailure,
		Error:      "clone failed",
	})
	require.NoError(t, err)
	assert.NotEqual(t, uuid.Nil, rec.ID)

	records, err := store.Recent(context.Background(), 1)
	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.Equal(t, rec.ID, records[0].ID)
	assert.Equal(t, "clone failed", records[0].Error)
}

func TestRecentLimit(t *testing.T) {
	store := openTestStore(t)
	ctx := context.Background()

	for i := 0; i < 5; i++ {
		_, err := store.Append(ctx, Record{
			StartedAt:  time.Now().Add(time.Duration(i) * time.Second),
			FinishedAt: time.Now(),
			Outcome:    OutcomeSuccess,
		})
		require.NoError(t, err)
	}
	records, err := store.Recent(ctx, 2)
	require.NoError(t, err)
	assert.Len(t, records, 2)
}
