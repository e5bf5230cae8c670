package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/taxlens/taxdoc/internal/common"
	"github.com/taxlens/taxdoc/internal/embed"
	"github.com/taxlens/taxdoc/internal/index"
	"github.com/taxlens/taxdoc/internal/repository"
	"github.com/taxlens/taxdoc/internal/retrieve"
)

// guidelineExtensions are the plain-text formats the index builder ingests.
var guidelineExtensions = map[string]struct{}{
	".txt": {}, ".md": {}, ".text": {},
}

func newIndexCmd(logger *slog.Logger) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "index",
		Short: "Build and query the guideline vector index",
	}
	cmd.AddCommand(newIndexBuildCmd(logger), newIndexSearchCmd(logger))
	return cmd
}

func newIndexBuildCmd(logger *slog.Logger) *cobra.Command {
	return &cobra.Command{
		Use:   "build <guideline-dir>",
		Short: "Chunk, embed and persist every guideline document in a directory",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := common.LoadConfig()
			if err := cfg.Validate(); err != nil {
				return err
			}
			ctx := cmd.Context()

			sources, err := readGuidelineDir(args[0])
			if err != nil {
				return err
			}
			if len(sources) == 0 {
				return fmt.Errorf("no guideline documents (.txt/.md) in %s", args[0])
			}

			embedder := embed.NewClient(embed.Config{
				BaseURL: cfg.Embed.BaseURL,
				APIKey:  cfg.Embed.APIKey,
				Model:   cfg.Embed.Model,
				Timeout: cfg.Embed.Timeout,
			}, logger)
			chunker := index.Chunker{Size: cfg.Index.ChunkSize, Overlap: cfg.Index.ChunkOverlap}

			ix, err := index.NewBuilder(embedder, chunker, logger).Build(ctx, sources)
			if err != nil {
				return err
			}

			store, closeStore, err := openChunkStore(ctx, cfg, ix.Metadata().Dim, logger)
			if err != nil {
				return err
			}
			defer closeStore()

			vectors, chunks := ix.Pairs()
			stored := make([]repository.StoredChunk, len(chunks))
			for i := range chunks {
				stored[i] = repository.StoredChunk{
					ID:     uuid.New().String(),
					Chunk:  chunks[i],
					Vector: vectors[i],
				}
			}
			if err := store.ReplaceAll(ctx, ix.Metadata(), stored); err != nil {
				return err
			}

			fmt.Fprintf(cmd.OutOrStdout(), "indexed %d chunks from %d documents (model %s, dim %d)\n",
				len(chunks), len(sources), ix.Metadata().Model, ix.Metadata().Dim)
			return nil
		},
	}
}

func newIndexSearchCmd(logger *slog.Logger) *cobra.Command {
	var topK int
	cmd := &cobra.Command{
		Use:   "search <query>",
		Short: "Run a nearest-neighbor query against the persisted index",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := common.LoadConfig()
			if err := cfg.Validate(); err != nil {
				return err
			}
			ctx := cmd.Context()
			if topK <= 0 {
				topK = cfg.Index.TopK
			}

			embedder := embed.NewClient(embed.Config{
				BaseURL: cfg.Embed.BaseURL,
				APIKey:  cfg.Embed.APIKey,
				Model:   cfg.Embed.Model,
				Timeout: cfg.Embed.Timeout,
			}, logger)

			searcher, closeSearcher, err := openSearcher(ctx, cfg, logger)
			if err != nil {
				return err
			}
			defer closeSearcher()

			retriever := retrieve.New(embedder, searcher, logger)
			results := retriever.Search(ctx, strings.Join(args, " "), topK)
			for i, text := range results {
				fmt.Fprintf(cmd.OutOrStdout(), "--- %d ---\n%s\n", i+1, text)
			}
			return nil
		},
	}
	cmd.Flags().IntVarP(&topK, "top-k", "k", 0, "number of chunks to return")
	return cmd
}

func readGuidelineDir(dir string) ([]index.Source, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("read guideline dir: %w", err)
	}
	var sources []index.Source
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		if _, ok := guidelineExtensions[strings.ToLower(filepath.Ext(e.Name()))]; !ok {
			continue
		}
		data, err := os.ReadFile(filepath.Join(dir, e.Name()))
		if err != nil {
			return nil, fmt.Errorf("read %s: %w", e.Name(), err)
		}
		sources = append(sources, index.Source{ID: e.Name(), Data: data})
	}
	return sources, nil
}

func openChunkStore(ctx context.Context, cfg *common.Config, dim int, logger *slog.Logger) (repository.ChunkStore, func(), error) {
	if cfg.Index.Backend == "postgres" {
		pool, err := repository.NewPGPool(ctx, cfg.DB.PostgresURL, cfg.DB.DialTimeout, logger)
		if err != nil {
			return nil, nil, err
		}
		store, err := repository.NewPGChunkStore(ctx, pool, dim)
		if err != nil {
			pool.Close()
			return nil, nil, err
		}
		return store, func() { _ = store.Close() }, nil
	}

	if err := os.MkdirAll(cfg.Index.Dir, 0o755); err != nil {
		return nil, nil, err
	}
	db, err := repository.OpenSQLite(filepath.Join(cfg.Index.Dir, "guidelines.db"), logger)
	if err != nil {
		return nil, nil, err
	}
	store, err := repository.NewSQLiteChunkStore(db)
	if err != nil {
		_ = db.Close()
		return nil, nil, err
	}
	return store, func() { _ = store.Close() }, nil
}

func openSearcher(ctx context.Context, cfg *common.Config, logger *slog.Logger) (retrieve.Searcher, func(), error) {
	if cfg.Index.Backend == "postgres" {
		store, closeStore, err := openChunkStore(ctx, cfg, 0, logger)
		if err != nil {
			return nil, nil, err
		}
		pg, ok := store.(retrieve.Searcher)
		if !ok {
			closeStore()
			return nil, nil, errors.New("postgres chunk store does not support search")
		}
		return pg, closeStore, nil
	}

	store, closeStore, err := openChunkStore(ctx, cfg, 0, logger)
	if err != nil {
		return nil, nil, err
	}
	defer closeStore()

	ix, err := repository.BuildIndex(ctx, store)
	if err != nil {
		if errors.Is(err, common.ErrNotFound) {
			return nil, nil, errors.New("index not built; run: taxdocctl index build <dir>")
		}
		return nil, nil, err
	}
	holder := &index.Holder{}
	holder.Swap(ix)
	return retrieve.MemorySearcher{Holder: holder}, func() {}, nil
}
