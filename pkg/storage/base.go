// Package storage provides interfaces and types for memory persistence
// backends.
//
// It defines the MemoryStore interface that all storage implementations must
// satisfy. The store is partitioned by user: every read path takes a user
// identifier and no cross-user query exists. Memories are append-only; there
// is no update-in-place operation, only insertion and deletion.
package storage

import (
	"context"
	"errors"
	"time"
)

// ErrNotFound indicates that a requested memory does not exist or is not
// visible to the requesting user.
var ErrNotFound = errors.New("memory not found or access denied")

// Memory represents a remembered statement as persisted by a backend.
//
// This type is defined in the storage package to avoid circular dependencies
// with the core package. It mirrors the core.Memory structure minus the
// ephemeral score.
type Memory struct {
	// ID is the unique identifier of the memory.
	ID int64

	// UserID identifies the user who owns this memory.
	UserID string

	// Content is the remembered statement. Backends may assume it is
	// non-empty; the core validates content at write time.
	Content string

	// Tags is a set of labels attached at creation time.
	Tags []string

	// IsCore marks permanently important facts that resist recency decay
	// during retrieval.
	IsCore bool

	// CreatedAt is when the memory was created. Assigned once, never mutated.
	CreatedAt time.Time
}

// MemoryStore defines the interface for memory persistence backends.
//
// All storage implementations (SQLite, PostgreSQL, MySQL) must implement this
// interface. Concurrent access is the backend's concern; callers only require
// that List return a consistent snapshot for the duration of one retrieval
// pass.
type MemoryStore interface {
	// Insert persists a new memory.
	Insert(ctx context.Context, memory *Memory) error

	// Get retrieves a memory by ID with optional access control.
	//
	// If opts.UserID is specified, the memory is only returned when it
	// belongs to that user; otherwise ErrNotFound is returned.
	Get(ctx context.Context, id int64, opts *GetOptions) (*Memory, error)

	// List retrieves all memories for one user in creation order (oldest
	// first). There is no pagination requirement on the retrieval path; the
	// caller bounds set size through its ingestion policy. Limit and Offset
	// are honored when set.
	List(ctx context.Context, opts *ListOptions) ([]*Memory, error)

	// Delete removes a memory by ID with optional access control.
	//
	// Returns ErrNotFound when no matching row exists.
	Delete(ctx context.Context, id int64, opts *DeleteOptions) error

	// DeleteAll removes all memories matching the given filters and reports
	// how many rows were removed. An empty options value removes everything
	// (use with caution).
	DeleteAll(ctx context.Context, opts *DeleteAllOptions) (int64, error)

	// Close closes the store and releases resources.
	Close() error
}

// GetOptions contains options for get operations with access control.
type GetOptions struct {
	// UserID restricts access to memories belonging to this user.
	UserID string
}

// ListOptions contains options for List operations.
type ListOptions struct {
	// UserID selects the memory partition to read. Required.
	UserID string

	// Limit bounds the number of results when > 0.
	Limit int

	// Offset skips results for pagination when > 0.
	Offset int
}

// DeleteOptions contains options for delete operations with access control.
type DeleteOptions struct {
	// UserID restricts deletion to memories belonging to this user.
	UserID string
}

// DeleteAllOptions contains options for bulk deletion, used by the data
// erasure operations (erase a day, erase everything before a cutoff, erase
// all).
type DeleteAllOptions struct {
	// UserID restricts deletion to memories belonging to this user.
	UserID string

	// From, when non-zero, restricts deletion to memories created at or
	// after this instant.
	From time.Time

	// To, when non-zero, restricts deletion to memories created strictly
	// before this instant.
	To time.Time
}
