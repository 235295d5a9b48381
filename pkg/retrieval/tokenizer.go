// Package retrieval implements the lexical memory-retrieval core: a token
// normalizer, an additive relevance scorer, and a bounded context selector.
//
// The package ranks a user's remembered statements against the current query
// and recent conversation, then renders the best candidates into a single
// text block suitable for injection into a downstream prompt. Everything in
// this package is a pure function of its inputs (plus an explicit "now"):
// there is no I/O, no shared state, and no failure mode. Loading the memory
// set and calling the generative API are the caller's concern.
package retrieval

import (
	"regexp"
	"strings"
)

// stopWords is the fixed set of common function words excluded from
// tokenization. Matching on these would inflate scores without signal.
var stopWords = map[string]struct{}{
	"the": {}, "and": {}, "for": {}, "are": {}, "but": {}, "not": {},
	"you": {}, "all": {}, "can": {}, "had": {}, "her": {}, "was": {},
	"one": {}, "our": {}, "out": {}, "has": {}, "his": {}, "him": {},
	"how": {}, "its": {}, "may": {}, "who": {}, "did": {}, "get": {},
	"she": {}, "too": {}, "use": {}, "that": {}, "this": {}, "with": {},
	"have": {}, "from": {}, "they": {}, "been": {}, "were": {}, "what": {},
	"when": {}, "your": {}, "will": {}, "would": {}, "there": {},
	"their": {}, "about": {}, "which": {}, "them": {}, "then": {},
	"than": {}, "some": {}, "very": {}, "just": {}, "into": {},
	"also": {}, "because": {},
}

// nonWord matches every rune that is neither a word character nor whitespace.
var nonWord = regexp.MustCompile(`[^\w\s]`)

// whitespace matches runs of whitespace for splitting.
var whitespace = regexp.MustCompile(`\s+`)

// Normalize lowercases text and strips all characters that are neither word
// characters nor whitespace. The result is the canonical form used both for
// tokenization and for substring (partial) matching.
//
// An empty input yields an empty string.
func Normalize(text string) string {
	lowered := strings.ToLower(text)
	return strings.TrimSpace(nonWord.ReplaceAllString(lowered, ""))
}

// Tokenize returns the set of significant lowercase word tokens in text.
//
// The text is normalized (see Normalize), split on runs of whitespace, and
// filtered: tokens of length <= 2 and stop words are discarded. Duplicates
// collapse because the result is a set; order is irrelevant.
//
// An empty or whitespace-only input yields an empty set. Tokenize is a pure
// function with no failure mode.
func Tokenize(text string) map[string]struct{} {
	normalized := Normalize(text)
	if normalized == "" {
		return map[string]struct{}{}
	}

	tokens := make(map[string]struct{})
	for _, tok := range whitespace.Split(normalized, -1) {
		if len(tok) <= 2 {
			continue
		}
		if _, stop := stopWords[tok]; stop {
			continue
		}
		tokens[tok] = struct{}{}
	}
	return tokens
}

// ConversationWindow joins the last n turns into a single window string,
// separated by newlines. It is a convenience for callers assembling the
// recent-conversation input to the scorer from a turn history.
//
// If n <= 0, DefaultWindowTurns is used. Fewer than n turns yields all of them.
func ConversationWindow(turns []string, n int) string {
	if n <= 0 {
		n = DefaultWindowTurns
	}
	if len(turns) > n {
		turns = turns[len(turns)-n:]
	}
	return strings.Join(turns, "\n")
}
