package retrieval_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/mindhaven/recall-go/pkg/retrieval"
)

func TestTokenizeEmptyInput(t *testing.T) {
	assert.Empty(t, retrieval.Tokenize(""))
	assert.Empty(t, retrieval.Tokenize("   \t\n  "))
}

func TestTokenizeLowercasesAndStripsPunctuation(t *testing.T) {
	tokens := retrieval.Tokenize("I Feel ANXIOUS, before exams!!")

	assert.Contains(t, tokens, "feel")
	assert.Contains(t, tokens, "anxious")
	assert.Contains(t, tokens, "before")
	assert.Contains(t, tokens, "exams")
	assert.NotContains(t, tokens, "ANXIOUS")
	assert.NotContains(t, tokens, "anxious,")
}

func TestTokenizeDropsShortTokens(t *testing.T) {
	tokens := retrieval.Tokenize("my cat is ok at it")

	// Everything here is a stop word or <= 2 characters except "cat".
	assert.Equal(t, map[string]struct{}{"cat": {}}, tokens)
}

func TestTokenizeDropsStopWords(t *testing.T) {
	tokens := retrieval.Tokenize("the exam and the results were from there")

	assert.Contains(t, tokens, "exam")
	assert.Contains(t, tokens, "results")
	assert.NotContains(t, tokens, "the")
	assert.NotContains(t, tokens, "and")
	assert.NotContains(t, tokens, "were")
	assert.NotContains(t, tokens, "from")
	assert.NotContains(t, tokens, "there")
}

func TestTokenizeCollapsesDuplicates(t *testing.T) {
	tokens := retrieval.Tokenize("exam exam exam anxiety")

	assert.Len(t, tokens, 2)
	assert.Contains(t, tokens, "exam")
	assert.Contains(t, tokens, "anxiety")
}

func TestNormalize(t *testing.T) {
	assert.Equal(t, "my name is sara", retrieval.Normalize("My name is Sara."))
	assert.Equal(t, "", retrieval.Normalize("!?.,;:"))
	assert.Equal(t, "", retrieval.Normalize(""))
}

func TestConversationWindow(t *testing.T) {
	turns := []string{"one", "two", "three", "four", "five", "six", "seven"}

	// Default keeps the trailing five turns.
	window := retrieval.ConversationWindow(turns, 0)
	assert.Equal(t, "three\nfour\nfive\nsix\nseven", window)

	// Explicit n.
	assert.Equal(t, "six\nseven", retrieval.ConversationWindow(turns, 2))

	// Fewer turns than n keeps everything.
	assert.Equal(t, "one\ntwo", retrieval.ConversationWindow(turns[:2], 5))

	assert.Equal(t, "", retrieval.ConversationWindow(nil, 5))
}
