package retrieve

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/taxlens/taxdoc/internal/embed"
	"github.com/taxlens/taxdoc/internal/index"
)

// UnavailableSentinel is the single result returned when no index is loaded.
// Callers must treat it as "no context available" and proceed with a degraded
// prompt, never abort. It is distinguishable from an empty result set (index
// loaded but no chunks) and from zero-hit searches.
const UnavailableSentinel = "Error: guideline index not available. Process guideline documents and restart the retriever."

// Searcher is the nearest-neighbor backend: the in-memory index by default,
// or a pgvector store when serving straight from postgres.
type Searcher interface {
	Search(ctx context.Context, query []float32, k int) ([]index.Hit, error)
	Metadata(ctx context.Context) (index.Metadata, error)
}

// Retriever embeds a query and returns the nearest guideline chunk texts.
type Retriever struct {
	embedder embed.Embedder
	searcher Searcher
	logger   *slog.Logger
}

func New(embedder embed.Embedder, searcher Searcher, logger *slog.Logger) *Retriever {
	if logger == nil {
		logger = slog.Default()
	}
	return &Retriever{embedder: embedder, searcher: searcher, logger: logger}
}

// Available reports whether the index is loaded and bound to the retriever's
// embedding model.
func (r *Retriever) Available(ctx context.Context) bool {
	if r == nil || r.searcher == nil || r.embedder == nil {
		return false
	}
	meta, err := r.searcher.Metadata(ctx)
	if err != nil {
		return false
	}
	return meta.Model == r.embedder.Model()
}

// Search returns up to k chunk texts ranked nearest-first. It never returns
// an error for unavailability: the sentinel result carries that state.
func (r *Retriever) Search(ctx context.Context, queryText string, k int) []string {
	if r == nil {
		return []string{UnavailableSentinel}
	}
	if k <= 0 {
		k = 3
	}
	if !r.Available(ctx) {
		r.logger.Warn("retrieve.unavailable", "query_len", len(queryText))
		return []string{UnavailableSentinel}
	}

	start := time.Now()
	vecs, err := r.embedder.Embed(ctx, []string{queryText})
	if err != nil || len(vecs) == 0 {
		r.logger.Warn("retrieve.embed_failed", "error", err)
		return []string{UnavailableSentinel}
	}

	hits, err := r.searcher.Search(ctx, vecs[0], k)
	if err != nil {
		r.logger.Warn("retrieve.search_failed", "error", err)
		return []string{UnavailableSentinel}
	}

	texts := make([]string, 0, len(hits))
	for _, h := range hits {
		texts = append(texts, h.Chunk.Text)
	}
	r.logger.Info("retrieve.ok",
		"k", k,
		"hits", len(texts),
		"elapsed_ms", time.Since(start).Milliseconds(),
	)
	return texts
}

// BuildQuery templates the pinned category into a fixed natural-language
// question. Querying with the category rather than the raw document text caps
// topical drift when the category is noisy.
func BuildQuery(category string) string {
	if category == "" {
		category = "Other"
	}
	return fmt.Sprintf("Tax deduction rules and deductibility conditions for %s expenses", category)
}

// MemorySearcher adapts an index.Holder to the Searcher contract. A nil or
// unloaded holder reports unavailable.
type MemorySearcher struct {
	Holder *index.Holder
}

func (m MemorySearcher) Search(_ context.Context, query []float32, k int) ([]index.Hit, error) {
	ix := m.Holder.Load()
	if ix == nil {
		return nil, fmt.Errorf("index not loaded")
	}
	return ix.Search(query, k), nil
}

func (m MemorySearcher) Metadata(_ context.Context) (index.Metadata, error) {
	if m.Holder == nil {
		return index.Metadata{}, fmt.Errorf("no index holder")
	}
	ix := m.Holder.Load()
	if ix == nil {
		return index.Metadata{}, fmt.Errorf("index not loaded")
	}
	return ix.Metadata(), nil
}
