package index

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func buildTestIndex(t *testing.T) *Index {
	t.Helper()
	ix := New(Metadata{Model: "test-embed", Dim: 2})
	require.NoError(t, ix.Add([]float32{1, 0}, Chunk{Text: "east"}))
	require.NoError(t, ix.Add([]float32{0, 1}, Chunk{Text: "north"}))
	require.NoError(t, ix.Add([]float32{-1, 0}, Chunk{Text: "west"}))
	require.NoError(t, ix.Add([]float32{0.9, 0.1}, Chunk{Text: "mostly east"}))
	ix.Seal()
	return ix
}

func TestIndex_Search_OrderedByDistance(t *testing.T) {
	ix := buildTestIndex(t)

	hits := ix.Search([]float32{1, 0}, 4)
	require.Len(t, hits, 4)

	assert.Equal(t, "east", hits[0].Chunk.Text)
	assert.Equal(t, "west", hits[3].Chunk.Text)
	for i := 1; i < len(hits); i++ {
		assert.GreaterOrEqual(t, hits[i].Distance, hits[i-1].Distance)
	}
}

func TestIndex_Search_TruncatesToK(t *testing.T) {
	ix := buildTestIndex(t)
	assert.Len(t, ix.Search([]float32{1, 0}, 2), 2)
	assert.Len(t, ix.Search([]float32{1, 0}, 100), 4)
}

func TestIndex_Search_Degenerate(t *testing.T) {
	ix := buildTestIndex(t)
	assert.Nil(t, ix.Search([]float32{1, 0}, 0))
	assert.Nil(t, ix.Search([]float32{1, 0, 0}, 3), "wrong query dimension")

	empty := New(Metadata{Model: "test-embed", Dim: 2})
	empty.Seal()
	assert.Nil(t, empty.Search([]float32{1, 0}, 3))
}

func TestIndex_Add_Guards(t *testing.T) {
	ix := New(Metadata{Model: "test-embed", Dim: 2})
	assert.Error(t, ix.Add([]float32{1, 2, 3}, Chunk{}), "dimension mismatch")

	ix.Seal()
	assert.Error(t, ix.Add([]float32{1, 2}, Chunk{}), "sealed index")
}

func TestHolder_SwapAndLoad(t *testing.T) {
	var h Holder
	assert.Nil(t, h.Load())

	ix := buildTestIndex(t)
	h.Swap(ix)
	assert.Same(t, ix, h.Load())

	replacement := New(Metadata{Model: "test-embed", Dim: 2})
	replacement.Seal()
	h.Swap(replacement)
	assert.Same(t, replacement, h.Load())

	h.Swap(nil)
	assert.Nil(t, h.Load())
}
