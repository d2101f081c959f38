package prompt

import (
	"strings"
	"testing"

	"docrag-be/pkg/llm"
	"docrag-be/pkg/rag/retrieve"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBuildMessageOrder(t *testing.T) {
	history := []llm.Message{
		{Role: "user", Content: "first question"},
		{Role: "assistant", Content: "first answer"},
	}
	passages := []retrieve.Passage{
		{Source: "report.pdf", Content: "relevant text", Score: 0.9},
	}

	b := NewContextualBuilder("second question", history, passages, 8000)
	messages, included := b.Build()

	require.Len(t, messages, 4)
	assert.Equal(t, "system", messages[0].Role)
	assert.Equal(t, "first question", messages[1].Content)
	assert.Equal(t, "first answer", messages[2].Content)
	assert.Equal(t, llm.Message{Role: "user", Content: "second question"}, messages[3])
	assert.Len(t, included, 1)
}

func TestBuildPageLabelIsOneBased(t *testing.T) {
	page := 0
	passages := []retrieve.Passage{
		{Source: "report.pdf", Page: &page, Content: "intro"},
	}

	messages, _ := NewContextualBuilder("q", nil, passages, 8000).Build()

	assert.Contains(t, messages[0].Content, "report.pdf, page 1")
}

func TestBuildZeroPassages(t *testing.T) {
	messages, included := NewContextualBuilder("q", nil, nil, 8000).Build()

	assert.Empty(t, included)
	sys := messages[0].Content
	assert.NotContains(t, sys, "<reference_material>")
	assert.Contains(t, sys, "No relevant material was found")
}

func TestFitToBudgetKeepsRankOrderPrefix(t *testing.T) {
	passages := []retrieve.Passage{
		{Source: "a.txt", Content: strings.Repeat("a", 50), Score: 0.9},
		{Source: "b.txt", Content: strings.Repeat("b", 50), Score: 0.8},
		{Source: "c.txt", Content: strings.Repeat("c", 50), Score: 0.7},
	}

	_, included := NewContextualBuilder("q", nil, passages, 110).Build()

	require.Len(t, included, 2)
	assert.Equal(t, "a.txt", included[0].Source)
	assert.Equal(t, "b.txt", included[1].Source)
}

func TestFitToBudgetTruncatesLoneOversizedPassage(t *testing.T) {
	passages := []retrieve.Passage{
		{Source: "big.txt", Content: strings.Repeat("x", 500), Score: 0.9},
	}

	_, included := NewContextualBuilder("q", nil, passages, 100).Build()

	require.Len(t, included, 1)
	assert.Len(t, included[0].Content, 100)
}
