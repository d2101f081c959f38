package citation

import (
	"strings"
	"unicode"

	"docrag-be/pkg/rag/retrieve"
	"docrag-be/pkg/rag/stream"
)

// Mapper turns prompt passages into the source references surfaced to the
// client and persisted with the assistant turn.
type Mapper struct {
	snippetLength int
}

// sourceKey identifies a citation for dedup. A struct key keeps a paged
// source distinct from an unpaged one whatever characters the filename holds.
type sourceKey struct {
	source  string
	page    int
	hasPage bool
}

func NewMapper(snippetLength int) *Mapper {
	if snippetLength <= 0 {
		snippetLength = 200
	}
	return &Mapper{snippetLength: snippetLength}
}

// Map deduplicates passages by (source, page), preserving first-seen order.
// Pages shift from zero-based storage to one-based display here, at the
// boundary, and nowhere else.
func (m *Mapper) Map(passages []retrieve.Passage) []stream.SourceRef {
	refs := make([]stream.SourceRef, 0, len(passages))
	seen := make(map[sourceKey]struct{}, len(passages))

	for _, p := range passages {
		key := sourceKey{source: p.Source}
		if p.Page != nil {
			key.page = *p.Page
			key.hasPage = true
		}
		if _, dup := seen[key]; dup {
			continue
		}
		seen[key] = struct{}{}

		var displayPage *int
		if p.Page != nil {
			dp := *p.Page + 1
			displayPage = &dp
		}

		refs = append(refs, stream.SourceRef{
			Source:         p.Source,
			Page:           displayPage,
			ContentSnippet: m.snippet(p.Content),
		})
	}
	return refs
}

// snippet truncates on a rune boundary and trims trailing partial words.
func (m *Mapper) snippet(content string) string {
	runes := []rune(content)
	if len(runes) <= m.snippetLength {
		return content
	}

	cut := string(runes[:m.snippetLength])
	if idx := strings.LastIndexFunc(cut, unicode.IsSpace); idx > 0 {
		cut = cut[:idx]
	}
	return strings.TrimRightFunc(cut, unicode.IsSpace) + "..."
}
