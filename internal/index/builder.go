package index

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/taxlens/taxdoc/internal/common"
	"github.com/taxlens/taxdoc/internal/embed"
)

// Source is one raw guideline document to index.
type Source struct {
	ID   string
	Data []byte
}

// Builder is the offline corpus indexer: chunk, embed, insert, persist.
// It never runs on the serving path.
type Builder struct {
	embedder embed.Embedder
	chunker  Chunker
	logger   *slog.Logger

	// embedding batch size per call
	batchSize int
}

func NewBuilder(embedder embed.Embedder, chunker Chunker, logger *slog.Logger) *Builder {
	if logger == nil {
		logger = slog.Default()
	}
	return &Builder{
		embedder:  embedder,
		chunker:   chunker,
		logger:    logger,
		batchSize: 64,
	}
}

// Build chunks and embeds all sources and returns a sealed in-memory index.
// An undecodable source aborts the build; an empty corpus yields a sealed
// empty index. The caller persists the result via its chunk store.
func (b *Builder) Build(ctx context.Context, sources []Source) (*Index, error) {
	start := time.Now()

	var chunks []Chunk
	for _, src := range sources {
		if !ValidUTF8(src.Data) {
			b.logger.Error("index.build.undecodable_source", "source_id", src.ID)
			return nil, common.NewAppError("SOURCE_DECODE",
				fmt.Sprintf("source %q is not valid text", src.ID), common.ErrDecodeFailure)
		}
		split := b.chunker.Split(src.ID, string(src.Data))
		b.logger.Info("index.build.source_chunked", "source_id", src.ID, "chunks", len(split))
		chunks = append(chunks, split...)
	}

	if len(chunks) == 0 {
		b.logger.Warn("index.build.empty_corpus")
		ix := New(Metadata{Model: b.embedder.Model(), Dim: 0})
		ix.Seal()
		return ix, nil
	}

	vectors := make([][]float32, 0, len(chunks))
	for i := 0; i < len(chunks); i += b.batchSize {
		end := min(i+b.batchSize, len(chunks))
		texts := make([]string, 0, end-i)
		for _, c := range chunks[i:end] {
			texts = append(texts, c.Text)
		}
		vecs, err := b.embedder.Embed(ctx, texts)
		if err != nil {
			return nil, fmt.Errorf("embed batch %d..%d: %w", i, end, err)
		}
		vectors = append(vectors, vecs...)
	}

	dim := len(vectors[0])
	ix := New(Metadata{Model: b.embedder.Model(), Dim: dim})
	for i, vec := range vectors {
		if err := ix.Add(vec, chunks[i]); err != nil {
			return nil, fmt.Errorf("add chunk %d: %w", i, err)
		}
	}
	ix.Seal()

	b.logger.Info("index.build.ok",
		"sources", len(sources),
		"chunks", ix.Len(),
		"dim", dim,
		"model", b.embedder.Model(),
		"elapsed_ms", time.Since(start).Milliseconds(),
	)
	return ix, nil
}

// Pairs exposes the built entries for persistence.
func (ix *Index) Pairs() (vectors [][]float32, chunks []Chunk) {
	vectors = make([][]float32, len(ix.entries))
	chunks = make([]Chunk, len(ix.entries))
	for i, e := range ix.entries {
		vectors[i] = e.vec
		chunks[i] = e.chunk
	}
	return vectors, chunks
}
