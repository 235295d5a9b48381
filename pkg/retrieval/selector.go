package retrieval

import (
	"sort"
	"strings"
	"time"
)

// DefaultHeader is the fixed instruction line prefixed to the rendered
// context block.
const DefaultHeader = "These are prioritized recollections about the user:"

// SelectorConfig configures a Selector. Zero values fall back to the
// reference defaults, so SelectorConfig{} yields the reference behavior.
type SelectorConfig struct {
	// Weights tunes the relevance scorer. The zero value means
	// DefaultWeights.
	Weights *Weights

	// Threshold is the minimum score for inclusion (default: DefaultThreshold).
	Threshold float64

	// MaxResults bounds the rendered block (default: DefaultMaxResults).
	MaxResults int

	// Header is the instruction line above the bullet list (default:
	// DefaultHeader).
	Header string
}

// Ranked identifies a selected candidate by its position in the input slice,
// together with its computed score.
type Ranked struct {
	// Index is the candidate's position in the slice passed to Rank/Select.
	Index int

	// Score is the relevance score at the evaluation instant.
	Score float64
}

// Selector ranks a user's full memory set and renders the survivors into a
// bounded text block for prompt injection.
//
// The selector is read-only and best-effort by design: it never errors and
// never panics, because it sits on a context-enrichment path where failure
// must degrade to "no memory context" rather than blocking the primary
// response flow.
type Selector struct {
	scorer     *Scorer
	threshold  float64
	maxResults int
	header     string
}

// NewSelector creates a selector from cfg, filling unset fields with the
// reference defaults.
func NewSelector(cfg SelectorConfig) *Selector {
	weights := DefaultWeights()
	if cfg.Weights != nil {
		weights = *cfg.Weights
	}
	threshold := cfg.Threshold
	if threshold == 0 {
		threshold = DefaultThreshold
	}
	maxResults := cfg.MaxResults
	if maxResults <= 0 {
		maxResults = DefaultMaxResults
	}
	header := cfg.Header
	if header == "" {
		header = DefaultHeader
	}
	return &Selector{
		scorer:     NewScorer(weights),
		threshold:  threshold,
		maxResults: maxResults,
		header:     header,
	}
}

// Rank scores every candidate independently, filters out those below the
// threshold, and returns the survivors in descending score order, truncated
// to the configured maximum.
//
// Ties keep the candidates' original relative order (stable sort); no
// secondary key is defined. An empty input short-circuits to nil without any
// scoring work.
func (s *Selector) Rank(memories []Candidate, query, window string, now time.Time) []Ranked {
	if len(memories) == 0 {
		return nil
	}

	ranked := make([]Ranked, 0, len(memories))
	for i, mem := range memories {
		score := s.scorer.Score(mem, query, window, now)
		if score >= s.threshold {
			ranked = append(ranked, Ranked{Index: i, Score: score})
		}
	}

	sort.SliceStable(ranked, func(a, b int) bool {
		return ranked[a].Score > ranked[b].Score
	})

	if len(ranked) > s.maxResults {
		ranked = ranked[:s.maxResults]
	}
	return ranked
}

// Select produces the rendered context block for the given memory set, or an
// empty string when nothing is relevant. An empty result signals "omit memory
// context from the prompt".
//
// Each surviving memory's content becomes one bullet line under the
// configured header. Select does not mutate its inputs and persists nothing.
func (s *Selector) Select(memories []Candidate, query, window string, now time.Time) string {
	return s.Render(memories, s.Rank(memories, query, window, now))
}

// Render formats an already-ranked result into the context block. It lets
// callers that need both the ranking and the block compute them from one
// scoring pass instead of ranking twice.
func (s *Selector) Render(memories []Candidate, ranked []Ranked) string {
	if len(ranked) == 0 {
		return ""
	}

	var b strings.Builder
	b.WriteString(s.header)
	for _, r := range ranked {
		b.WriteString("\n- ")
		b.WriteString(memories[r.Index].Content)
	}
	return b.String()
}
