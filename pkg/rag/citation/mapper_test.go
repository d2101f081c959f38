package citation

import (
	"strings"
	"testing"

	"docrag-be/pkg/rag/retrieve"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func intPtr(v int) *int { return &v }

func TestMapDeduplicatesBySourceAndPage(t *testing.T) {
	passages := []retrieve.Passage{
		{Source: "report.pdf", Page: intPtr(2), Content: "first chunk of page three"},
		{Source: "report.pdf", Page: intPtr(2), Content: "second chunk of page three"},
		{Source: "report.pdf", Page: intPtr(4), Content: "page five"},
	}

	refs := NewMapper(200).Map(passages)

	require.Len(t, refs, 2)
	// First-seen wins: the snippet comes from the first chunk.
	assert.Equal(t, "first chunk of page three", refs[0].ContentSnippet)
	assert.Equal(t, 3, *refs[0].Page)
	assert.Equal(t, 5, *refs[1].Page)
}

func TestMapSamePageDifferentSources(t *testing.T) {
	passages := []retrieve.Passage{
		{Source: "a.pdf", Page: intPtr(0), Content: "from a"},
		{Source: "b.pdf", Page: intPtr(0), Content: "from b"},
	}

	refs := NewMapper(200).Map(passages)

	require.Len(t, refs, 2)
}

func TestMapNilPageStaysNil(t *testing.T) {
	passages := []retrieve.Passage{
		{Source: "notes.txt", Page: nil, Content: "plain text source"},
	}

	refs := NewMapper(200).Map(passages)

	require.Len(t, refs, 1)
	assert.Nil(t, refs[0].Page)
}

func TestMapUnpagedSourceNeverCollidesWithPagedOne(t *testing.T) {
	// A filename that happens to end in "|3" must stay distinct from a paged
	// entry for "notes" at page 3.
	passages := []retrieve.Passage{
		{Source: "notes|3", Page: nil, Content: "from the oddly named file"},
		{Source: "notes", Page: intPtr(3), Content: "from page four of notes"},
	}

	refs := NewMapper(200).Map(passages)

	require.Len(t, refs, 2)
	assert.Equal(t, "notes|3", refs[0].Source)
	assert.Nil(t, refs[0].Page)
	assert.Equal(t, "notes", refs[1].Source)
	assert.Equal(t, 4, *refs[1].Page)
}

func TestMapPreservesRetrievalOrder(t *testing.T) {
	passages := []retrieve.Passage{
		{Source: "c.pdf", Page: intPtr(9), Content: "best match"},
		{Source: "a.pdf", Page: intPtr(1), Content: "second"},
		{Source: "b.pdf", Page: intPtr(5), Content: "third"},
	}

	refs := NewMapper(200).Map(passages)

	require.Len(t, refs, 3)
	assert.Equal(t, "c.pdf", refs[0].Source)
	assert.Equal(t, "a.pdf", refs[1].Source)
	assert.Equal(t, "b.pdf", refs[2].Source)
}

func TestSnippetTruncation(t *testing.T) {
	long := strings.Repeat("word ", 100)
	passages := []retrieve.Passage{
		{Source: "a.txt", Content: long},
	}

	refs := NewMapper(50).Map(passages)

	require.Len(t, refs, 1)
	snippet := refs[0].ContentSnippet
	assert.LessOrEqual(t, len(snippet), 54)
	assert.True(t, strings.HasSuffix(snippet, "..."))
}

func TestMapEmptyInput(t *testing.T) {
	refs := NewMapper(200).Map(nil)
	assert.NotNil(t, refs)
	assert.Empty(t, refs)
}
