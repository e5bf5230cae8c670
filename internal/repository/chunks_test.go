package repository

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/taxlens/taxdoc/internal/common"
	"github.com/taxlens/taxdoc/internal/index"
)

func newTestChunkStore(t *testing.T) *SQLiteChunkStore {
	t.Helper()
	db, err := OpenSQLite(filepath.Join(t.TempDir(), "guidelines.db"), nil)
	require.NoError(t, err)
	store, err := NewSQLiteChunkStore(db)
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close() })
	return store
}

func TestSQLiteChunkStore_RoundTrip(t *testing.T) {
	store := newTestChunkStore(t)
	ctx := context.Background()

	meta := index.Metadata{Model: "test-embed", Dim: 3}
	chunks := []StoredChunk{
		{Chunk: index.Chunk{Text: "rule one", SourceID: "a.txt", Offset: 0}, Vector: []float32{1, 0, 0}},
		{Chunk: index.Chunk{Text: "rule two", SourceID: "a.txt", Offset: 800}, Vector: []float32{0, 1, 0}},
	}
	require.NoError(t, store.ReplaceAll(ctx, meta, chunks))

	gotMeta, gotChunks, err := store.LoadAll(ctx)
	require.NoError(t, err)
	assert.Equal(t, meta, gotMeta)
	require.Len(t, gotChunks, 2)

	texts := []string{gotChunks[0].Chunk.Text, gotChunks[1].Chunk.Text}
	assert.ElementsMatch(t, []string{"rule one", "rule two"}, texts)
	for _, c := range gotChunks {
		assert.Len(t, c.Vector, 3)
		assert.NotEmpty(t, c.ID)
	}
}

func TestSQLiteChunkStore_ReplaceAllSwapsWholesale(t *testing.T) {
	store := newTestChunkStore(t)
	ctx := context.Background()

	first := index.Metadata{Model: "model-a", Dim: 2}
	require.NoError(t, store.ReplaceAll(ctx, first, []StoredChunk{
		{Chunk: index.Chunk{Text: "old"}, Vector: []float32{1, 0}},
	}))

	second := index.Metadata{Model: "model-b", Dim: 3}
	require.NoError(t, store.ReplaceAll(ctx, second, []StoredChunk{
		{Chunk: index.Chunk{Text: "new"}, Vector: []float32{1, 0, 0}},
	}))

	meta, chunks, err := store.LoadAll(ctx)
	require.NoError(t, err)
	assert.Equal(t, second, meta)
	require.Len(t, chunks, 1)
	assert.Equal(t, "new", chunks[0].Chunk.Text)
}

func TestSQLiteChunkStore_LoadAll_NotBuilt(t *testing.T) {
	store := newTestChunkStore(t)

	_, _, err := store.LoadAll(context.Background())
	require.Error(t, err)
	assert.ErrorIs(t, err, common.ErrNotFound)
}

func TestBuildIndex_FromStore(t *testing.T) {
	store := newTestChunkStore(t)
	ctx := context.Background()

	meta := index.Metadata{Model: "test-embed", Dim: 2}
	require.NoError(t, store.ReplaceAll(ctx, meta, []StoredChunk{
		{Chunk: index.Chunk{Text: "east"}, Vector: []float32{1, 0}},
		{Chunk: index.Chunk{Text: "north"}, Vector: []float32{0, 1}},
	}))

	ix, err := BuildIndex(ctx, store)
	require.NoError(t, err)
	assert.Equal(t, meta, ix.Metadata())
	assert.Equal(t, 2, ix.Len())

	hits := ix.Search([]float32{1, 0}, 1)
	require.Len(t, hits, 1)
	assert.Equal(t, "east", hits[0].Chunk.Text)
}
