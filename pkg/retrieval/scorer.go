package retrieval

import (
	"strings"
	"time"
)

// Default tuning constants for the retrieval core.
//
// These were magic numbers in the original product; they are exposed here as
// configurable defaults rather than baked into the algorithm. The threshold
// and core boost are deliberately in tension: a merely-recent, non-core memory
// with zero keyword overlap peaks at 5 points (recency alone, at age zero) and
// barely fails the threshold, while a core memory clears it on its flat boost
// alone at any age.
const (
	// DefaultExactMatchWeight is awarded per query token found verbatim in
	// the memory's token set.
	DefaultExactMatchWeight = 10.0

	// DefaultPartialMatchWeight is awarded per query token that appears only
	// as a substring of the normalized memory text.
	DefaultPartialMatchWeight = 4.0

	// DefaultContextMatchWeight is awarded per conversation-window token
	// found in the memory's token set.
	DefaultContextMatchWeight = 3.0

	// DefaultRecencyHorizonDays is the age in days at which the linear
	// recency contribution reaches zero.
	DefaultRecencyHorizonDays = 5.0

	// DefaultCoreBoost is the flat bonus for memories flagged as core.
	DefaultCoreBoost = 6.0

	// DefaultThreshold is the minimum score a memory must reach to be
	// selected into the context block.
	DefaultThreshold = 5.0

	// DefaultMaxResults bounds the number of memories rendered into the
	// context block.
	DefaultMaxResults = 6

	// DefaultWindowTurns is the number of trailing conversation turns joined
	// into the conversation window.
	DefaultWindowTurns = 5
)

// Weights configures the additive signals of the relevance scorer.
type Weights struct {
	// ExactMatch is added for each query token present verbatim in the
	// memory's token set.
	ExactMatch float64

	// PartialMatch is added for each query token that appears as a substring
	// of the normalized memory text but not as an exact token. Exact and
	// partial are mutually exclusive per token; exact wins.
	PartialMatch float64

	// ContextMatch is added for each conversation-window token present in
	// the memory's token set. Independent of the query signal: a token in
	// both the query and the window counts twice.
	ContextMatch float64

	// RecencyHorizonDays is the age at which the linear recency term decays
	// to zero. The contribution is max(0, horizon - daysOld).
	RecencyHorizonDays float64

	// CoreBoost is the flat bonus for core memories, making them resist
	// recency decay.
	CoreBoost float64
}

// DefaultWeights returns the reference tuning of the scorer.
func DefaultWeights() Weights {
	return Weights{
		ExactMatch:         DefaultExactMatchWeight,
		PartialMatch:       DefaultPartialMatchWeight,
		ContextMatch:       DefaultContextMatchWeight,
		RecencyHorizonDays: DefaultRecencyHorizonDays,
		CoreBoost:          DefaultCoreBoost,
	}
}

// Candidate is the view of a stored memory the scorer needs. It carries no
// identity; callers map scored candidates back to their own records by slice
// position.
type Candidate struct {
	// Content is the remembered statement.
	Content string

	// CreatedAt is when the memory was created.
	CreatedAt time.Time

	// IsCore marks permanently important facts that should surface even
	// without keyword overlap.
	IsCore bool
}

// Scorer computes a non-negative relevance score for candidate memories
// against a query and a recent-conversation window.
//
// Scoring is a pure numeric computation: it never errors, never panics on
// empty inputs, and is deterministic for a fixed "now".
type Scorer struct {
	weights Weights
}

// NewScorer creates a scorer with the given weights. Zero-valued weight
// fields are left at zero, disabling that signal; use DefaultWeights for the
// reference behavior.
func NewScorer(w Weights) *Scorer {
	return &Scorer{weights: w}
}

// Score computes the relevance of a candidate memory at the given instant.
//
// Four additive signals are evaluated independently:
//  1. Query overlap: per query token, ExactMatch if the token is in the
//     memory's token set, else PartialMatch if it is a substring of the
//     normalized memory text. Never both.
//  2. Conversation overlap: ContextMatch per window token in the memory's
//     token set. Tokens shared with the query double-count on purpose;
//     recent context reinforces relevance.
//  3. Recency: max(0, RecencyHorizonDays - daysOld), a linear decay that
//     bottoms out at zero and never goes negative.
//  4. Core boost: a flat CoreBoost when IsCore is set.
//
// The result can legitimately be zero for an old, non-core memory sharing no
// tokens with either input.
func (s *Scorer) Score(mem Candidate, query, window string, now time.Time) float64 {
	memTokens := Tokenize(mem.Content)
	memText := Normalize(mem.Content)

	score := 0.0

	for tok := range Tokenize(query) {
		if _, ok := memTokens[tok]; ok {
			score += s.weights.ExactMatch
		} else if strings.Contains(memText, tok) {
			score += s.weights.PartialMatch
		}
	}

	for tok := range Tokenize(window) {
		if _, ok := memTokens[tok]; ok {
			score += s.weights.ContextMatch
		}
	}

	daysOld := now.Sub(mem.CreatedAt).Hours() / 24
	if recency := s.weights.RecencyHorizonDays - daysOld; recency > 0 {
		score += recency
	}

	if mem.IsCore {
		score += s.weights.CoreBoost
	}

	return score
}
