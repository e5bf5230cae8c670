package index

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestChunker_Split_WindowsAndOverlap(t *testing.T) {
	c := Chunker{Size: 10, Overlap: 4}
	text := strings.Repeat("abcdefghij", 3) // 30 runes

	chunks := c.Split("doc.txt", text)
	require.NotEmpty(t, chunks)

	// windows advance by size-overlap
	for i, ch := range chunks {
		assert.Equal(t, i*6, ch.Offset)
		assert.Equal(t, "doc.txt", ch.SourceID)
		assert.LessOrEqual(t, len([]rune(ch.Text)), 10)
	}

	// consecutive chunks share the overlap region
	for i := 1; i < len(chunks); i++ {
		prev := []rune(chunks[i-1].Text)
		cur := []rune(chunks[i].Text)
		overlapLen := 4
		if len(cur) < overlapLen {
			overlapLen = len(cur)
		}
		assert.Equal(t, string(prev[len(prev)-4:len(prev)-4+overlapLen]), string(cur[:overlapLen]))
	}

	// full coverage: last chunk ends at the text end
	last := chunks[len(chunks)-1]
	assert.Equal(t, len([]rune(text)), last.Offset+len([]rune(last.Text)))
}

func TestChunker_Split_ShortText(t *testing.T) {
	c := DefaultChunker()
	chunks := c.Split("doc.txt", "short")
	require.Len(t, chunks, 1)
	assert.Equal(t, "short", chunks[0].Text)
	assert.Equal(t, 0, chunks[0].Offset)
}

func TestChunker_Split_Empty(t *testing.T) {
	assert.Nil(t, DefaultChunker().Split("doc.txt", ""))
}

func TestChunker_Split_MultibyteRunes(t *testing.T) {
	c := Chunker{Size: 4, Overlap: 0}
	chunks := c.Split("doc.txt", "日本語のテキスト")
	require.Len(t, chunks, 2)
	assert.Equal(t, "日本語の", chunks[0].Text)
	assert.Equal(t, "テキスト", chunks[1].Text)
	assert.Equal(t, 4, chunks[1].Offset)
}

func TestValidUTF8(t *testing.T) {
	assert.True(t, ValidUTF8([]byte("hello 日本語")))
	assert.False(t, ValidUTF8([]byte{0xff, 0xfe, 0x00}))
}
