package sqlite_test

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mindhaven/recall-go/pkg/storage"
	"github.com/mindhaven/recall-go/pkg/storage/sqlite"
)

func newTestStore(t *testing.T) *sqlite.Client {
	t.Helper()

	client, err := sqlite.NewClient(&sqlite.Config{
		DBPath: filepath.Join(t.TempDir(), "store_test.db"),
	})
	require.NoError(t, err)
	t.Cleanup(func() { _ = client.Close() })

	return client
}

func TestInsertAndGet(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	memory := &storage.Memory{
		ID:        1,
		UserID:    "user_001",
		Content:   "I feel anxious before exams",
		Tags:      []string{"mood", "school"},
		IsCore:    false,
		CreatedAt: time.Date(2025, 3, 1, 10, 0, 0, 0, time.UTC),
	}
	require.NoError(t, store.Insert(ctx, memory))

	got, err := store.Get(ctx, 1, nil)
	require.NoError(t, err)
	assert.Equal(t, memory.UserID, got.UserID)
	assert.Equal(t, memory.Content, got.Content)
	assert.Equal(t, memory.Tags, got.Tags)
	assert.False(t, got.IsCore)
	assert.True(t, memory.CreatedAt.Equal(got.CreatedAt))
}

func TestGetEnforcesUserScope(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	require.NoError(t, store.Insert(ctx, &storage.Memory{
		ID:        1,
		UserID:    "user_001",
		Content:   "private statement",
		CreatedAt: time.Now().UTC(),
	}))

	_, err := store.Get(ctx, 1, &storage.GetOptions{UserID: "user_002"})
	assert.True(t, errors.Is(err, storage.ErrNotFound))

	got, err := store.Get(ctx, 1, &storage.GetOptions{UserID: "user_001"})
	require.NoError(t, err)
	assert.Equal(t, "private statement", got.Content)
}

func TestGetNotFound(t *testing.T) {
	store := newTestStore(t)

	_, err := store.Get(context.Background(), 999, nil)
	assert.True(t, errors.Is(err, storage.ErrNotFound))
}

func TestListOrdersOldestFirst(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()
	base := time.Date(2025, 3, 1, 10, 0, 0, 0, time.UTC)

	for i := int64(1); i <= 3; i++ {
		require.NoError(t, store.Insert(ctx, &storage.Memory{
			ID:        i,
			UserID:    "user_001",
			Content:   "entry",
			CreatedAt: base.Add(time.Duration(3-i) * time.Hour),
		}))
	}
	require.NoError(t, store.Insert(ctx, &storage.Memory{
		ID:        4,
		UserID:    "user_002",
		Content:   "other user",
		CreatedAt: base,
	}))

	memories, err := store.List(ctx, &storage.ListOptions{UserID: "user_001"})
	require.NoError(t, err)
	require.Len(t, memories, 3)
	assert.Equal(t, int64(3), memories[0].ID)
	assert.Equal(t, int64(1), memories[2].ID)
}

func TestListPagination(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()
	base := time.Date(2025, 3, 1, 10, 0, 0, 0, time.UTC)

	for i := int64(1); i <= 5; i++ {
		require.NoError(t, store.Insert(ctx, &storage.Memory{
			ID:        i,
			UserID:    "user_001",
			Content:   "entry",
			CreatedAt: base.Add(time.Duration(i) * time.Minute),
		}))
	}

	page, err := store.List(ctx, &storage.ListOptions{
		UserID: "user_001",
		Limit:  2,
		Offset: 2,
	})
	require.NoError(t, err)
	require.Len(t, page, 2)
	assert.Equal(t, int64(3), page[0].ID)
	assert.Equal(t, int64(4), page[1].ID)
}

func TestDeleteEnforcesUserScope(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	require.NoError(t, store.Insert(ctx, &storage.Memory{
		ID:        1,
		UserID:    "user_001",
		Content:   "to be deleted",
		CreatedAt: time.Now().UTC(),
	}))

	err := store.Delete(ctx, 1, &storage.DeleteOptions{UserID: "user_002"})
	assert.True(t, errors.Is(err, storage.ErrNotFound))

	require.NoError(t, store.Delete(ctx, 1, &storage.DeleteOptions{UserID: "user_001"}))

	err = store.Delete(ctx, 1, nil)
	assert.True(t, errors.Is(err, storage.ErrNotFound))
}

func TestDeleteAllByUser(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()
	now := time.Now().UTC()

	for i := int64(1); i <= 3; i++ {
		require.NoError(t, store.Insert(ctx, &storage.Memory{
			ID:        i,
			UserID:    "user_001",
			Content:   "entry",
			CreatedAt: now,
		}))
	}
	require.NoError(t, store.Insert(ctx, &storage.Memory{
		ID:        4,
		UserID:    "user_002",
		Content:   "other user",
		CreatedAt: now,
	}))

	deleted, err := store.DeleteAll(ctx, &storage.DeleteAllOptions{UserID: "user_001"})
	require.NoError(t, err)
	assert.Equal(t, int64(3), deleted)

	remaining, err := store.List(ctx, &storage.ListOptions{UserID: "user_002"})
	require.NoError(t, err)
	assert.Len(t, remaining, 1)
}

func TestDeleteAllTimeRange(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()
	day := time.Date(2025, 3, 5, 0, 0, 0, 0, time.UTC)

	entries := map[int64]time.Time{
		1: day.Add(-time.Hour),     // day before
		2: day.Add(time.Minute),    // in range
		3: day.Add(23 * time.Hour), // in range
		4: day.Add(24 * time.Hour), // boundary, excluded (To is exclusive)
	}
	for id, createdAt := range entries {
		require.NoError(t, store.Insert(ctx, &storage.Memory{
			ID:        id,
			UserID:    "user_001",
			Content:   "entry",
			CreatedAt: createdAt,
		}))
	}

	deleted, err := store.DeleteAll(ctx, &storage.DeleteAllOptions{
		UserID: "user_001",
		From:   day,
		To:     day.Add(24 * time.Hour),
	})
	require.NoError(t, err)
	assert.Equal(t, int64(2), deleted)

	remaining, err := store.List(ctx, &storage.ListOptions{UserID: "user_001"})
	require.NoError(t, err)
	require.Len(t, remaining, 2)
	assert.Equal(t, int64(1), remaining[0].ID)
	assert.Equal(t, int64(4), remaining[1].ID)
}

func TestDeleteAllBeforeCutoff(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()
	cutoff := time.Date(2025, 3, 5, 0, 0, 0, 0, time.UTC)

	require.NoError(t, store.Insert(ctx, &storage.Memory{
		ID: 1, UserID: "user_001", Content: "old", CreatedAt: cutoff.AddDate(0, -1, 0),
	}))
	require.NoError(t, store.Insert(ctx, &storage.Memory{
		ID: 2, UserID: "user_001", Content: "new", CreatedAt: cutoff.Add(time.Hour),
	}))

	deleted, err := store.DeleteAll(ctx, &storage.DeleteAllOptions{
		UserID: "user_001",
		To:     cutoff,
	})
	require.NoError(t, err)
	assert.Equal(t, int64(1), deleted)

	remaining, err := store.List(ctx, &storage.ListOptions{UserID: "user_001"})
	require.NoError(t, err)
	require.Len(t, remaining, 1)
	assert.Equal(t, "new", remaining[0].Content)
}

func TestDeleteAllNormalizesTimeZones(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()
	zone := time.FixedZone("UTC+10", 10*3600)
	day := time.Date(2025, 3, 5, 0, 0, 0, 0, time.UTC)

	// 2025-03-06 09:00 +10:00 is 23:00 UTC on March 5. Stored as local-zone
	// text it would sort after the UTC upper bound and survive the filter.
	require.NoError(t, store.Insert(ctx, &storage.Memory{
		ID:        1,
		UserID:    "user_001",
		Content:   "written from another timezone",
		CreatedAt: time.Date(2025, 3, 6, 9, 0, 0, 0, zone),
	}))
	require.NoError(t, store.Insert(ctx, &storage.Memory{
		ID:        2,
		UserID:    "user_001",
		Content:   "outside the day",
		CreatedAt: day.Add(25 * time.Hour),
	}))

	deleted, err := store.DeleteAll(ctx, &storage.DeleteAllOptions{
		UserID: "user_001",
		From:   day,
		To:     day.Add(24 * time.Hour),
	})
	require.NoError(t, err)
	assert.Equal(t, int64(1), deleted)

	// Bounds given in a non-UTC zone filter correctly too.
	deleted, err = store.DeleteAll(ctx, &storage.DeleteAllOptions{
		UserID: "user_001",
		To:     time.Date(2025, 3, 6, 12, 0, 0, 0, zone), // 02:00 UTC March 6
	})
	require.NoError(t, err)
	assert.Equal(t, int64(1), deleted)
}

func TestTagsRoundTrip(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	require.NoError(t, store.Insert(ctx, &storage.Memory{
		ID:        1,
		UserID:    "user_001",
		Content:   "untagged entry",
		CreatedAt: time.Now().UTC(),
	}))

	got, err := store.Get(ctx, 1, nil)
	require.NoError(t, err)
	assert.Empty(t, got.Tags)
}
