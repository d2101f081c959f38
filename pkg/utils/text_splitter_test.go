package utils

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSplitTextShortInputReturnsSingleChunk(t *testing.T) {
	chunks := SplitText("short text", 100, 20)
	assert.Equal(t, []string{"short text"}, chunks)
}

func TestSplitTextOverlapsChunks(t *testing.T) {
	text := strings.Repeat("abcdefghij", 10) // 100 chars
	chunks := SplitText(text, 40, 10)

	assert.True(t, len(chunks) >= 3)
	for i := 1; i < len(chunks); i++ {
		prev := chunks[i-1]
		// Each chunk starts with the tail of the previous one.
		assert.Equal(t, prev[len(prev)-10:], chunks[i][:10])
	}
	assert.True(t, strings.HasSuffix(text, chunks[len(chunks)-1]))
}

func TestSplitTextOverlapLargerThanChunkFallsBack(t *testing.T) {
	text := strings.Repeat("x", 50)
	chunks := SplitText(text, 20, 30)

	assert.Equal(t, []string{strings.Repeat("x", 20), strings.Repeat("x", 20), strings.Repeat("x", 10)}, chunks)
}

func TestSplitTextHandlesMultibyteRunes(t *testing.T) {
	text := strings.Repeat("日本語テキスト分割", 10) // 80 runes
	chunks := SplitText(text, 30, 5)

	var total []rune
	for i, c := range chunks {
		runes := []rune(c)
		if i > 0 {
			runes = runes[5:] // drop the overlap
		}
		total = append(total, runes...)
	}
	assert.Equal(t, text, string(total))
}
