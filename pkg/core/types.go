// Package core provides the main Recall client for per-user memory
// management: remembering significant statements, retrieving a ranked context
// block for prompt injection, and honoring data-erasure requests.
package core

import "time"

// Memory represents a single remembered statement about a user.
//
// A memory is append-only: it is created once, read in bulk during retrieval,
// and removed by explicit user action or bulk erasure. No update-in-place
// operation exists.
//
// Example:
//
//	memory := &core.Memory{
//	    ID:      1234567890,
//	    UserID:  "user_001",
//	    Content: "I feel anxious before exams",
//	    Tags:    []string{"mood"},
//	}
type Memory struct {
	// ID is the unique identifier of the memory. IDs are snowflake-generated
	// and monotonically increase with creation time.
	ID int64 `json:"id"`

	// UserID identifies the user who owns this memory. Every memory belongs
	// to exactly one user.
	UserID string `json:"user_id"`

	// Content is the remembered statement. Guaranteed non-empty after
	// normalization; validated at write time.
	Content string `json:"content"`

	// Tags is a set of labels attached at creation time. Not consulted by
	// the relevance scorer.
	Tags []string `json:"tags,omitempty"`

	// IsCore marks permanently important facts (identity, significant
	// disclosures) that resist recency decay during retrieval. Set at
	// creation and not expected to change afterward.
	IsCore bool `json:"is_core"`

	// CreatedAt is when the memory was created. Assigned once, never mutated.
	CreatedAt time.Time `json:"created_at"`

	// Score is the relevance score from recall operations. Ephemeral:
	// computed per query, never persisted.
	Score float64 `json:"score,omitempty"`
}
