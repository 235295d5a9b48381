package core_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/mindhaven/recall-go/pkg/core"
)

func TestRememberOptions(t *testing.T) {
	opts := &core.RememberOptions{}
	createdAt := time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)

	core.WithUserID("user_001")(opts)
	core.WithTags("mood", "journal")(opts)
	core.WithCore()(opts)
	core.WithCreatedAt(createdAt)(opts)

	assert.Equal(t, "user_001", opts.UserID)
	assert.Equal(t, []string{"mood", "journal"}, opts.Tags)
	assert.True(t, opts.Core)
	assert.Equal(t, createdAt, opts.CreatedAt)
}

func TestRecallOptions(t *testing.T) {
	opts := &core.RecallOptions{}
	now := time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)

	core.WithUserIDForRecall("user_001")(opts)
	core.WithConversationWindow("I could not sleep last night")(opts)
	core.WithConversationTurns("hello", "I feel anxious")(opts)
	core.WithNow(now)(opts)

	assert.Equal(t, "user_001", opts.UserID)
	assert.Equal(t, "I could not sleep last night", opts.Window)
	assert.Equal(t, []string{"hello", "I feel anxious"}, opts.Turns)
	assert.Equal(t, now, opts.Now)
}

func TestGetAllOptions(t *testing.T) {
	opts := &core.GetAllOptions{}

	core.WithUserIDForGetAll("user_001")(opts)
	core.WithLimit(10)(opts)
	core.WithOffset(20)(opts)

	assert.Equal(t, "user_001", opts.UserID)
	assert.Equal(t, 10, opts.Limit)
	assert.Equal(t, 20, opts.Offset)
}

func TestScopedUserIDOptions(t *testing.T) {
	getOpts := &core.GetOptions{}
	core.WithUserIDForGet("user_001")(getOpts)
	assert.Equal(t, "user_001", getOpts.UserID)

	forgetOpts := &core.ForgetOptions{}
	core.WithUserIDForForget("user_002")(forgetOpts)
	assert.Equal(t, "user_002", forgetOpts.UserID)

	eraseOpts := &core.EraseOptions{}
	core.WithUserIDForErase("user_003")(eraseOpts)
	assert.Equal(t, "user_003", eraseOpts.UserID)
}
