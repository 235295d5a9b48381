package core

import "time"

// RememberOption is a function type for configuring Remember operations.
//
// Options are applied using the functional options pattern, allowing
// flexible configuration without requiring all parameters.
type RememberOption func(*RememberOptions)

// RememberOptions contains configuration options for Remember operations.
type RememberOptions struct {
	// UserID identifies the user who owns this memory. Required.
	UserID string

	// Tags is a set of labels attached to the memory.
	Tags []string

	// Core marks the memory as permanently important, resistant to recency
	// decay during retrieval.
	Core bool

	// CreatedAt overrides the creation timestamp. Zero means "now". Intended
	// for imports and tests; normal ingestion leaves it unset.
	CreatedAt time.Time
}

// WithUserID sets the user ID for Remember operations.
//
// Example:
//
//	memory, _ := client.Remember(ctx, "content", core.WithUserID("user_001"))
func WithUserID(userID string) RememberOption {
	return func(opts *RememberOptions) {
		opts.UserID = userID
	}
}

// WithTags sets labels for Remember operations.
//
// Example:
//
//	memory, _ := client.Remember(ctx, "content", core.WithTags("mood", "journal"))
func WithTags(tags ...string) RememberOption {
	return func(opts *RememberOptions) {
		opts.Tags = tags
	}
}

// WithCore marks the memory as core for Remember operations.
//
// Core memories (identity, significant disclosures) surface during recall
// even without keyword overlap and resist recency decay.
//
// Example:
//
//	memory, _ := client.Remember(ctx, "My name is Sara",
//	    core.WithUserID("user_001"), core.WithCore())
func WithCore() RememberOption {
	return func(opts *RememberOptions) {
		opts.Core = true
	}
}

// WithCreatedAt overrides the creation timestamp for Remember operations.
//
// Intended for data imports and tests.
func WithCreatedAt(t time.Time) RememberOption {
	return func(opts *RememberOptions) {
		opts.CreatedAt = t
	}
}

// RecallOption is a function type for configuring Recall operations.
type RecallOption func(*RecallOptions)

// RecallOptions contains configuration options for Recall operations.
type RecallOptions struct {
	// UserID selects the memory partition to read. Required.
	UserID string

	// Window is the recent-conversation text matched against memories. When
	// Turns is also set, Turns wins.
	Window string

	// Turns is the conversation turn history; the trailing configured number
	// of turns is joined into the window.
	Turns []string

	// Now overrides the evaluation instant for the recency term. Zero means
	// time.Now().
	Now time.Time
}

// WithUserIDForRecall sets the user ID for Recall operations.
//
// Example:
//
//	block, _ := client.Recall(ctx, "exam anxiety", core.WithUserIDForRecall("user_001"))
func WithUserIDForRecall(userID string) RecallOption {
	return func(opts *RecallOptions) {
		opts.UserID = userID
	}
}

// WithConversationWindow sets the recent-conversation window text for Recall
// operations.
//
// Example:
//
//	block, _ := client.Recall(ctx, "query",
//	    core.WithUserIDForRecall("user_001"),
//	    core.WithConversationWindow("I could not sleep last night"))
func WithConversationWindow(window string) RecallOption {
	return func(opts *RecallOptions) {
		opts.Window = window
	}
}

// WithConversationTurns sets the conversation turn history for Recall
// operations. The trailing turns (the configured window size, default 5) are
// joined into the conversation window.
//
// Example:
//
//	block, _ := client.Recall(ctx, "query",
//	    core.WithUserIDForRecall("user_001"),
//	    core.WithConversationTurns(history...))
func WithConversationTurns(turns ...string) RecallOption {
	return func(opts *RecallOptions) {
		opts.Turns = turns
	}
}

// WithNow overrides the evaluation instant for Recall operations.
//
// Recall output is deterministic for a fixed now; pinning it makes results
// reproducible in tests.
func WithNow(now time.Time) RecallOption {
	return func(opts *RecallOptions) {
		opts.Now = now
	}
}

// GetOption is a function type for configuring Get operations.
type GetOption func(*GetOptions)

// GetOptions contains configuration options for Get operations.
type GetOptions struct {
	// UserID restricts access to memories belonging to this user.
	UserID string
}

// WithUserIDForGet sets the user ID for Get operations (multi-tenant
// isolation).
//
// Example:
//
//	memory, _ := client.Get(ctx, id, core.WithUserIDForGet("user_001"))
func WithUserIDForGet(userID string) GetOption {
	return func(opts *GetOptions) {
		opts.UserID = userID
	}
}

// GetAllOption is a function type for configuring GetAll operations.
type GetAllOption func(*GetAllOptions)

// GetAllOptions contains configuration options for GetAll operations.
type GetAllOptions struct {
	// UserID selects the memory partition to read. Required.
	UserID string

	// Limit bounds the number of results when > 0.
	Limit int

	// Offset skips results for pagination when > 0.
	Offset int
}

// WithUserIDForGetAll sets the user ID for GetAll operations.
func WithUserIDForGetAll(userID string) GetAllOption {
	return func(opts *GetAllOptions) {
		opts.UserID = userID
	}
}

// WithLimit sets the maximum number of results for GetAll operations.
func WithLimit(limit int) GetAllOption {
	return func(opts *GetAllOptions) {
		opts.Limit = limit
	}
}

// WithOffset sets the number of results to skip for GetAll operations.
func WithOffset(offset int) GetAllOption {
	return func(opts *GetAllOptions) {
		opts.Offset = offset
	}
}

// ForgetOption is a function type for configuring Forget operations.
type ForgetOption func(*ForgetOptions)

// ForgetOptions contains configuration options for Forget operations.
type ForgetOptions struct {
	// UserID restricts deletion to memories belonging to this user.
	UserID string
}

// WithUserIDForForget sets the user ID for Forget operations (prevents
// cross-tenant deletions).
//
// Example:
//
//	err := client.Forget(ctx, id, core.WithUserIDForForget("user_001"))
func WithUserIDForForget(userID string) ForgetOption {
	return func(opts *ForgetOptions) {
		opts.UserID = userID
	}
}

// EraseOption is a function type for configuring erase operations.
type EraseOption func(*EraseOptions)

// EraseOptions contains configuration options for EraseAll, EraseDay, and
// EraseBefore operations.
type EraseOptions struct {
	// UserID restricts erasure to memories belonging to this user. Required.
	UserID string
}

// WithUserIDForErase sets the user ID for erase operations.
//
// Example:
//
//	deleted, _ := client.EraseAll(ctx, core.WithUserIDForErase("user_001"))
func WithUserIDForErase(userID string) EraseOption {
	return func(opts *EraseOptions) {
		opts.UserID = userID
	}
}

// applyRememberOptions applies RememberOption functions to a new options struct.
func applyRememberOptions(opts []RememberOption) *RememberOptions {
	options := &RememberOptions{}
	for _, opt := range opts {
		opt(options)
	}
	return options
}

// applyRecallOptions applies RecallOption functions to a new options struct.
func applyRecallOptions(opts []RecallOption) *RecallOptions {
	options := &RecallOptions{}
	for _, opt := range opts {
		opt(options)
	}
	return options
}

// applyGetOptions applies GetOption functions to a new options struct.
func applyGetOptions(opts []GetOption) *GetOptions {
	options := &GetOptions{}
	for _, opt := range opts {
		opt(options)
	}
	return options
}

// applyGetAllOptions applies GetAllOption functions to a new options struct.
func applyGetAllOptions(opts []GetAllOption) *GetAllOptions {
	options := &GetAllOptions{}
	for _, opt := range opts {
		opt(options)
	}
	return options
}

// applyForgetOptions applies ForgetOption functions to a new options struct.
func applyForgetOptions(opts []ForgetOption) *ForgetOptions {
	options := &ForgetOptions{}
	for _, opt := range opts {
		opt(options)
	}
	return options
}

// applyEraseOptions applies EraseOption functions to a new options struct.
func applyEraseOptions(opts []EraseOption) *EraseOptions {
	options := &EraseOptions{}
	for _, opt := range opts {
		opt(options)
	}
	return options
}
