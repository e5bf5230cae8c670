package index

import (
	"fmt"
	"math"
	"sort"
	"sync/atomic"
)

// Metadata identifies the embedding model an index was built with. An index
// must only ever be queried with the same model at the same dimensionality.
type Metadata struct {
	Model string
	Dim   int
}

// entry pairs a chunk with its embedding vector.
type entry struct {
	vec   []float32
	chunk Chunk
}

// Index is an exact nearest-neighbor index over (vector, chunk) pairs.
// Append-only while building, read-only while serving; concurrent readers
// need no locking under that discipline.
type Index struct {
	meta    Metadata
	entries []entry
	sealed  bool
}

// Hit is one search result; Distance is cosine distance (1 - cosine
// similarity), smaller is closer.
type Hit struct {
	Chunk    Chunk
	Distance float64
}

func New(meta Metadata) *Index {
	return &Index{meta: meta}
}

func (ix *Index) Metadata() Metadata { return ix.meta }
func (ix *Index) Len() int           { return len(ix.entries) }

// Add appends a (vector, chunk) pair. Fails on dimension mismatch or after
// Seal.
func (ix *Index) Add(vec []float32, chunk Chunk) error {
	if ix.sealed {
		return fmt.Errorf("index is sealed")
	}
	if len(vec) != ix.meta.Dim {
		return fmt.Errorf("vector dim %d does not match index dim %d", len(vec), ix.meta.Dim)
	}
	ix.entries = append(ix.entries, entry{vec: vec, chunk: chunk})
	return nil
}

// Seal marks the end of the build phase; the index is read-only afterwards.
func (ix *Index) Seal() { ix.sealed = true }

// Search returns up to k hits ordered by non-decreasing cosine distance.
func (ix *Index) Search(query []float32, k int) []Hit {
	if k <= 0 || len(query) != ix.meta.Dim || len(ix.entries) == 0 {
		return nil
	}
	hits := make([]Hit, 0, len(ix.entries))
	for _, e := range ix.entries {
		hits = append(hits, Hit{Chunk: e.chunk, Distance: cosineDistance(query, e.vec)})
	}
	sort.SliceStable(hits, func(i, j int) bool { return hits[i].Distance < hits[j].Distance })
	if len(hits) > k {
		hits = hits[:k]
	}
	return hits
}

func cosineDistance(a, b []float32) float64 {
	var dot, na, nb float64
	for i := range a {
		dot += float64(a[i]) * float64(b[i])
		na += float64(a[i]) * float64(a[i])
		nb += float64(b[i]) * float64(b[i])
	}
	if na == 0 || nb == 0 {
		return 1
	}
	return 1 - dot/(math.Sqrt(na)*math.Sqrt(nb))
}

// Holder publishes an Index to concurrent readers and allows a rebuilt index
// to replace it atomically, so a reader never observes a half-built index.
type Holder struct {
	ptr atomic.Pointer[Index]
}

// Swap installs ix (may be nil to mark the index unavailable).
func (h *Holder) Swap(ix *Index) {
	h.ptr.Store(ix)
}

// Load returns the current index, or nil when none is loaded.
func (h *Holder) Load() *Index {
	return h.ptr.Load()
}
