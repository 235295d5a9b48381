package core

import (
	"context"
	"errors"
	"strings"
	"sync"
	"time"
	"unicode/utf8"

	"github.com/bwmarrin/snowflake"

	"github.com/mindhaven/recall-go/pkg/retrieval"
	"github.com/mindhaven/recall-go/pkg/storage"
	"github.com/mindhaven/recall-go/pkg/storage/mysql"
	"github.com/mindhaven/recall-go/pkg/storage/postgres"
	"github.com/mindhaven/recall-go/pkg/storage/sqlite"
)

// Client is the main entry point for memory operations.
//
// It owns a memory store and a retrieval selector, and exposes the
// per-user memory lifecycle:
//
//   - Remember: append a statement to a user's memory
//   - Recall / RecallMemories: rank the user's memories against the current
//     query and conversation window
//   - Forget / EraseAll / EraseDay / EraseBefore: user-initiated deletion
//
// A Client is safe for concurrent use.
//
// Example:
//
//	client, err := core.NewClient(config)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer client.Close()
//
//	memory, err := client.Remember(ctx, "I feel anxious before exams",
//	    core.WithUserID("user_001"))
type Client struct {
	config   *Config
	store    storage.MemoryStore
	selector *retrieval.Selector
	node     *snowflake.Node
	mu       sync.RWMutex
	closed   bool
}

// NewClient creates a new Recall client with the given configuration.
//
// The function:
//  1. Validates the configuration
//  2. Initializes the memory store backend
//  3. Builds the retrieval selector from the configured weights
//
// Parameters:
//   - config: Complete configuration including store and retrieval settings
//
// Returns:
//   - *Client: The initialized client instance
//   - error: Error if validation or initialization fails
func NewClient(config *Config) (*Client, error) {
	if config == nil {
		return nil, NewRecallError("NewClient", ErrInvalidConfig)
	}
	if err := config.Validate(); err != nil {
		return nil, err
	}

	store, err := initStorage(config)
	if err != nil {
		return nil, NewRecallError("NewClient", err)
	}

	node, err := snowflake.NewNode(1)
	if err != nil {
		_ = store.Close()
		return nil, NewRecallError("NewClient", err)
	}

	return &Client{
		config:   config,
		store:    store,
		selector: retrieval.NewSelector(config.Retrieval.selectorConfig()),
		node:     node,
	}, nil
}

// NewClientWithStore creates a client around an existing memory store.
//
// Useful for tests and for callers that manage the store lifecycle
// themselves. The client does not close the store unless Close is called.
func NewClientWithStore(config *Config, store storage.MemoryStore) (*Client, error) {
	if config == nil {
		config = &Config{}
	}
	if store == nil {
		return nil, NewRecallError("NewClientWithStore", ErrInvalidConfig)
	}

	node, err := snowflake.NewNode(1)
	if err != nil {
		return nil, NewRecallError("NewClientWithStore", err)
	}

	return &Client{
		config:   config,
		store:    store,
		selector: retrieval.NewSelector(config.Retrieval.selectorConfig()),
		node:     node,
	}, nil
}

// initStorage initializes the memory store based on configuration.
func initStorage(config *Config) (storage.MemoryStore, error) {
	cfg := config.Store.Config
	if cfg == nil {
		cfg = map[string]interface{}{}
	}

	switch config.Store.Provider {
	case "sqlite":
		return sqlite.NewClient(&sqlite.Config{
			DBPath:    getStringConfig(cfg, "db_path", "./recall.db"),
			TableName: getStringConfig(cfg, "table_name", "memories"),
		})
	case "postgres":
		return postgres.NewClient(&postgres.Config{
			Host:      getStringConfig(cfg, "host", "localhost"),
			Port:      getIntConfig(cfg, "port", 5432),
			User:      getStringConfig(cfg, "user", "postgres"),
			Password:  getStringConfig(cfg, "password", ""),
			DBName:    getStringConfig(cfg, "db_name", "recall"),
			TableName: getStringConfig(cfg, "table_name", "memories"),
			SSLMode:   getStringConfig(cfg, "ssl_mode", "disable"),
		})
	case "mysql":
		return mysql.NewClient(&mysql.Config{
			Host:      getStringConfig(cfg, "host", "127.0.0.1"),
			Port:      getIntConfig(cfg, "port", 3306),
			User:      getStringConfig(cfg, "user", "root"),
			Password:  getStringConfig(cfg, "password", ""),
			DBName:    getStringConfig(cfg, "db_name", "recall"),
			TableName: getStringConfig(cfg, "table_name", "memories"),
		})
	default:
		return nil, ErrInvalidConfig
	}
}

// mapStorageError translates backend sentinels into the client's error
// vocabulary so callers only need errors.Is against core sentinels.
func mapStorageError(err error) error {
	if errors.Is(err, storage.ErrNotFound) {
		return ErrNotFound
	}
	return err
}

// getStringConfig extracts a string value from a config map.
func getStringConfig(cfg map[string]interface{}, key, defaultValue string) string {
	if v, ok := cfg[key].(string); ok && v != "" {
		return v
	}
	return defaultValue
}

// getIntConfig extracts an integer value from a config map.
//
// JSON unmarshals numbers as float64, so both forms are accepted.
func getIntConfig(cfg map[string]interface{}, key string, defaultValue int) int {
	switch v := cfg[key].(type) {
	case int:
		if v != 0 {
			return v
		}
	case float64:
		if v != 0 {
			return int(v)
		}
	}
	return defaultValue
}

// Remember appends a new memory for a user.
//
// Content is trimmed; empty or whitespace-only content is rejected with
// ErrEmptyContent rather than stored. The memory receives a snowflake ID and
// the current timestamp unless WithCreatedAt overrides it.
//
// Parameters:
//   - ctx: Context for the operation
//   - content: The statement to remember
//   - opts: Options (WithUserID required; WithTags, WithCore, WithCreatedAt
//     optional)
//
// Returns:
//   - *Memory: The stored memory with its assigned ID
//   - error: ErrEmptyContent, ErrMissingUserID, or a storage error
//
// Example:
//
//	memory, err := client.Remember(ctx, "My sister's name is Amira",
//	    core.WithUserID("user_001"), core.WithCore())
func (c *Client) Remember(ctx context.Context, content string, opts ...RememberOption) (*Memory, error) {
	options := applyRememberOptions(opts)

	content = strings.TrimSpace(content)
	if content == "" {
		return nil, NewRecallError("Remember", ErrEmptyContent)
	}
	if options.UserID == "" {
		return nil, NewRecallError("Remember", ErrMissingUserID)
	}

	createdAt := options.CreatedAt
	if createdAt.IsZero() {
		createdAt = time.Now()
	}

	memory := &Memory{
		ID:        c.node.Generate().Int64(),
		UserID:    options.UserID,
		Content:   content,
		Tags:      options.Tags,
		IsCore:    options.Core,
		CreatedAt: createdAt,
	}

	if err := c.store.Insert(ctx, toStorageMemory(memory)); err != nil {
		return nil, NewRecallError("Remember", err)
	}

	return memory, nil
}

// Significant reports whether a chat statement is worth remembering.
//
// The gate is deliberately crude: anything at least the configured number of
// runes long (default 20) passes. Callers that want smarter extraction can
// decide upstream and call Remember directly.
func (c *Client) Significant(content string) bool {
	return utf8.RuneCountInString(strings.TrimSpace(content)) >= c.config.Retrieval.minSignificantLength()
}

// Recall retrieves the rendered memory-context block for a user.
//
// The user's full memory set is loaded and ranked against the query and the
// recent conversation window; survivors are rendered as a bullet list under a
// fixed header. An empty string means no memory is relevant enough and the
// caller should omit memory context from the prompt entirely.
//
// Ranking itself never fails; the only error source is storage I/O.
//
// Parameters:
//   - ctx: Context for the operation
//   - query: The current user message
//   - opts: Options (WithUserIDForRecall required; WithConversationWindow,
//     WithConversationTurns, WithNow optional)
//
// Returns:
//   - string: The rendered context block, or "" when nothing is relevant
//   - error: ErrMissingUserID or a storage error
//
// Example:
//
//	block, err := client.Recall(ctx, "I'm worried about my exam",
//	    core.WithUserIDForRecall("user_001"),
//	    core.WithConversationTurns(history...))
func (c *Client) Recall(ctx context.Context, query string, opts ...RecallOption) (string, error) {
	block, _, err := c.recall(ctx, "Recall", query, opts)
	return block, err
}

// RecallMemories retrieves the ranked memories themselves rather than the
// rendered block.
//
// Each returned memory carries its ephemeral relevance score. The order is
// descending by score, capped at the configured maximum.
//
// Parameters:
//   - ctx: Context for the operation
//   - query: The current user message
//   - opts: Options (WithUserIDForRecall required)
//
// Returns:
//   - []*Memory: Ranked memories with scores, possibly empty
//   - error: ErrMissingUserID or a storage error
func (c *Client) RecallMemories(ctx context.Context, query string, opts ...RecallOption) ([]*Memory, error) {
	_, memories, err := c.recall(ctx, "RecallMemories", query, opts)
	return memories, err
}

// RecallWithMemories retrieves the rendered context block together with the
// ranked memories behind it.
//
// Both outputs come from a single read and a single scoring pass, so the
// block is always the rendering of exactly the returned memories even when
// writes interleave.
func (c *Client) RecallWithMemories(ctx context.Context, query string, opts ...RecallOption) (string, []*Memory, error) {
	return c.recall(ctx, "RecallWithMemories", query, opts)
}

// recall loads the user's memory set once, ranks it, and derives both the
// rendered block and the scored memories from that one ranking.
func (c *Client) recall(ctx context.Context, op, query string, opts []RecallOption) (string, []*Memory, error) {
	options := applyRecallOptions(opts)
	if options.UserID == "" {
		return "", nil, NewRecallError(op, ErrMissingUserID)
	}

	stored, err := c.store.List(ctx, &storage.ListOptions{UserID: options.UserID})
	if err != nil {
		return "", nil, NewRecallError(op, err)
	}

	candidates, window, now := c.prepareRanking(stored, options)
	ranked := c.selector.Rank(candidates, query, window, now)

	memories := make([]*Memory, 0, len(ranked))
	for _, r := range ranked {
		memory := fromStorageMemory(stored[r.Index])
		memory.Score = r.Score
		memories = append(memories, memory)
	}
	return c.selector.Render(candidates, ranked), memories, nil
}

// prepareRanking converts stored memories into scoring candidates and
// resolves the window and evaluation instant from the options.
func (c *Client) prepareRanking(memories []*storage.Memory, options *RecallOptions) ([]retrieval.Candidate, string, time.Time) {
	candidates := make([]retrieval.Candidate, len(memories))
	for i, m := range memories {
		candidates[i] = retrieval.Candidate{
			Content:   m.Content,
			CreatedAt: m.CreatedAt,
			IsCore:    m.IsCore,
		}
	}

	window := options.Window
	if len(options.Turns) > 0 {
		window = retrieval.ConversationWindow(options.Turns, c.config.Retrieval.windowTurns())
	}

	now := options.Now
	if now.IsZero() {
		now = time.Now()
	}

	return candidates, window, now
}

// Get retrieves a memory by ID.
//
// When WithUserIDForGet is supplied, memories belonging to other users are
// reported as not found rather than leaked.
//
// Returns the memory, or ErrNotFound.
func (c *Client) Get(ctx context.Context, id int64, opts ...GetOption) (*Memory, error) {
	options := applyGetOptions(opts)

	memory, err := c.store.Get(ctx, id, &storage.GetOptions{UserID: options.UserID})
	if err != nil {
		return nil, NewRecallError("Get", mapStorageError(err))
	}
	return fromStorageMemory(memory), nil
}

// GetAll retrieves all memories for a user in creation order (oldest first).
//
// Parameters:
//   - ctx: Context for the operation
//   - opts: Options (WithUserIDForGetAll required; WithLimit, WithOffset
//     optional)
func (c *Client) GetAll(ctx context.Context, opts ...GetAllOption) ([]*Memory, error) {
	options := applyGetAllOptions(opts)
	if options.UserID == "" {
		return nil, NewRecallError("GetAll", ErrMissingUserID)
	}

	memories, err := c.store.List(ctx, &storage.ListOptions{
		UserID: options.UserID,
		Limit:  options.Limit,
		Offset: options.Offset,
	})
	if err != nil {
		return nil, NewRecallError("GetAll", err)
	}
	return fromStorageMemories(memories), nil
}

// Forget deletes a single memory by ID.
//
// When WithUserIDForForget is supplied, the deletion only succeeds if the
// memory belongs to that user; otherwise ErrNotFound is returned.
//
// Example:
//
//	err := client.Forget(ctx, id, core.WithUserIDForForget("user_001"))
func (c *Client) Forget(ctx context.Context, id int64, opts ...ForgetOption) error {
	options := applyForgetOptions(opts)

	if err := c.store.Delete(ctx, id, &storage.DeleteOptions{UserID: options.UserID}); err != nil {
		return NewRecallError("Forget", mapStorageError(err))
	}
	return nil
}

// EraseAll deletes every memory belonging to a user and reports how many
// were removed.
//
// Example:
//
//	deleted, err := client.EraseAll(ctx, core.WithUserIDForErase("user_001"))
func (c *Client) EraseAll(ctx context.Context, opts ...EraseOption) (int64, error) {
	options := applyEraseOptions(opts)
	if options.UserID == "" {
		return 0, NewRecallError("EraseAll", ErrMissingUserID)
	}

	deleted, err := c.store.DeleteAll(ctx, &storage.DeleteAllOptions{UserID: options.UserID})
	if err != nil {
		return 0, NewRecallError("EraseAll", err)
	}
	return deleted, nil
}

// EraseDay deletes all of a user's memories created on a specific calendar
// day and reports how many were removed.
//
// The day boundary is computed in day's location: [midnight, midnight+24h).
//
// Example:
//
//	deleted, err := client.EraseDay(ctx, yesterday,
//	    core.WithUserIDForErase("user_001"))
func (c *Client) EraseDay(ctx context.Context, day time.Time, opts ...EraseOption) (int64, error) {
	options := applyEraseOptions(opts)
	if options.UserID == "" {
		return 0, NewRecallError("EraseDay", ErrMissingUserID)
	}

	start := time.Date(day.Year(), day.Month(), day.Day(), 0, 0, 0, 0, day.Location())
	end := start.Add(24 * time.Hour)

	deleted, err := c.store.DeleteAll(ctx, &storage.DeleteAllOptions{
		UserID: options.UserID,
		From:   start,
		To:     end,
	})
	if err != nil {
		return 0, NewRecallError("EraseDay", err)
	}
	return deleted, nil
}

// EraseBefore deletes all of a user's memories created strictly before the
// cutoff and reports how many were removed.
//
// Example:
//
//	deleted, err := client.EraseBefore(ctx, time.Now().AddDate(0, -6, 0),
//	    core.WithUserIDForErase("user_001"))
func (c *Client) EraseBefore(ctx context.Context, cutoff time.Time, opts ...EraseOption) (int64, error) {
	options := applyEraseOptions(opts)
	if options.UserID == "" {
		return 0, NewRecallError("EraseBefore", ErrMissingUserID)
	}

	deleted, err := c.store.DeleteAll(ctx, &storage.DeleteAllOptions{
		UserID: options.UserID,
		To:     cutoff,
	})
	if err != nil {
		return 0, NewRecallError("EraseBefore", err)
	}
	return deleted, nil
}

// Close closes the client and releases its resources.
//
// Safe to call multiple times.
func (c *Client) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.closed {
		return nil
	}
	c.closed = true

	if c.store != nil {
		return c.store.Close()
	}
	return nil
}
