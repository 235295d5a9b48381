package core_test

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mindhaven/recall-go/pkg/core"
)

func newTestAsyncClient(t *testing.T) *core.AsyncClient {
	t.Helper()

	client, err := core.NewAsyncClient(&core.Config{
		Store: core.StoreConfig{
			Provider: "sqlite",
			Config: map[string]interface{}{
				"db_path": filepath.Join(t.TempDir(), "recall_async_test.db"),
			},
		},
	})
	require.NoError(t, err)
	t.Cleanup(func() { _ = client.Close() })

	return client
}

func TestRememberAsync(t *testing.T) {
	client := newTestAsyncClient(t)
	ctx := context.Background()

	result := <-client.RememberAsync(ctx, "I started a new job today",
		core.WithUserID("user_001"))
	require.NoError(t, result.Error)
	assert.NotZero(t, result.Memory.ID)
	assert.Equal(t, "I started a new job today", result.Memory.Content)
}

func TestRecallAsyncSeesCompletedWrites(t *testing.T) {
	client := newTestAsyncClient(t)
	ctx := context.Background()
	now := time.Date(2025, 3, 10, 12, 0, 0, 0, time.UTC)

	write := <-client.RememberAsync(ctx, "I feel anxious before school exams",
		core.WithUserID("user_001"), core.WithCreatedAt(now.AddDate(0, 0, -10)))
	require.NoError(t, write.Error)

	recall := <-client.RecallAsync(ctx, "exams tomorrow",
		core.WithUserIDForRecall("user_001"), core.WithNow(now))
	require.NoError(t, recall.Error)
	assert.Contains(t, recall.Context, "I feel anxious before school exams")
}

func TestForgetAsync(t *testing.T) {
	client := newTestAsyncClient(t)
	ctx := context.Background()

	write := <-client.RememberAsync(ctx, "something to remove later",
		core.WithUserID("user_001"))
	require.NoError(t, write.Error)

	err := <-client.ForgetAsync(ctx, write.Memory.ID,
		core.WithUserIDForForget("user_001"))
	require.NoError(t, err)
}

func TestEraseAllAsync(t *testing.T) {
	client := newTestAsyncClient(t)
	ctx := context.Background()

	for _, content := range []string{"first entry today", "second entry today"} {
		result := <-client.RememberAsync(ctx, content, core.WithUserID("user_001"))
		require.NoError(t, result.Error)
	}

	erase := <-client.EraseAllAsync(ctx, core.WithUserIDForErase("user_001"))
	require.NoError(t, erase.Error)
	assert.Equal(t, int64(2), erase.Deleted)
}

func TestWaitDrainsPendingOperations(t *testing.T) {
	client := newTestAsyncClient(t)
	ctx := context.Background()

	channels := make([]<-chan *core.MemoryResult, 0, 5)
	for i := 0; i < 5; i++ {
		channels = append(channels, client.RememberAsync(ctx,
			"a different significant statement each time",
			core.WithUserID("user_001")))
	}

	client.Wait()

	for _, ch := range channels {
		result := <-ch
		require.NoError(t, result.Error)
	}

	memories, err := client.GetAll(ctx, core.WithUserIDForGetAll("user_001"))
	require.NoError(t, err)
	assert.Len(t, memories, 5)
}
