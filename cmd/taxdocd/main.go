// taxdocd serves the document extraction pipeline over HTTP.
package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/joho/godotenv"

	"github.com/taxlens/taxdoc/internal/common"
	"github.com/taxlens/taxdoc/internal/embed"
	"github.com/taxlens/taxdoc/internal/export"
	"github.com/taxlens/taxdoc/internal/index"
	"github.com/taxlens/taxdoc/internal/llm/openai"
	"github.com/taxlens/taxdoc/internal/normalize"
	"github.com/taxlens/taxdoc/internal/ocr"
	"github.com/taxlens/taxdoc/internal/pipeline"
	"github.com/taxlens/taxdoc/internal/repository"
	"github.com/taxlens/taxdoc/internal/retrieve"
	"github.com/taxlens/taxdoc/internal/server"
)

func main() {
	_ = godotenv.Load()

	logger := slog.New(slog.NewJSONHandler(os.Stdout, nil))
	slog.SetDefault(logger)

	if err := run(logger); err != nil {
		logger.Error("taxdocd.fatal", "error", err)
		os.Exit(1)
	}
}

func run(logger *slog.Logger) error {
	cfg := common.LoadConfig()
	if err := cfg.Validate(); err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	chat := openai.NewClient(openai.Config{
		APIKey:      cfg.LLM.APIKey,
		BaseURL:     cfg.LLM.BaseURL,
		Model:       cfg.LLM.Model,
		VisionModel: cfg.LLM.VisionModel,
		Temperature: cfg.LLM.Temperature,
		Timeout:     cfg.LLM.Timeout,
	}, logger)

	embedder := embed.NewClient(embed.Config{
		BaseURL: cfg.Embed.BaseURL,
		APIKey:  cfg.Embed.APIKey,
		Model:   cfg.Embed.Model,
		Timeout: cfg.Embed.Timeout,
	}, logger)

	engine, err := buildEngine(cfg, chat, logger)
	if err != nil {
		return err
	}

	searcher, closeSearcher, err := buildSearcher(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer closeSearcher()
	retriever := retrieve.New(embedder, searcher, logger)
	if !retriever.Available(ctx) {
		logger.Warn("taxdocd.index_unavailable",
			"backend", cfg.Index.Backend,
			"hint", "build the guideline index with taxdocctl; serving degraded")
	}

	processor := pipeline.NewProcessor(
		engine, chat, retriever, chat,
		normalize.New(logger), cfg.Index.TopK, logger,
	)

	records, exporter, closeRecords := buildRecordStore(cfg, logger)
	defer closeRecords()

	srv := server.New(processor, retriever, records, exporter, cfg.Server.MaxUploadSize, logger)
	if err := srv.Run(ctx, cfg.Server.Addr); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

func buildEngine(cfg *common.Config, chat *openai.Client, logger *slog.Logger) (ocr.Engine, error) {
	if cfg.OCR.UseVision {
		return ocr.NewVisionEngine(chat, logger), nil
	}
	if cfg.OCR.EngineURL == "" {
		return nil, common.NewAppError("CONFIG_ERROR",
			"OCR_ENGINE_URL is required unless OCR_USE_VISION=true", common.ErrInvalidInput)
	}
	return ocr.NewHTTPEngine(cfg.OCR.EngineURL, cfg.OCR.Timeout, logger), nil
}

// buildSearcher picks the nearest-neighbor backend. A missing or empty index
// is not an error here: the retriever reports unavailable and the pipeline
// degrades.
func buildSearcher(ctx context.Context, cfg *common.Config, logger *slog.Logger) (retrieve.Searcher, func(), error) {
	if cfg.Index.Backend == "postgres" {
		pool, err := repository.NewPGPool(ctx, cfg.DB.PostgresURL, cfg.DB.DialTimeout, logger)
		if err != nil {
			return nil, nil, err
		}
		// dim 0 skips table creation: the serving path never builds the index
		store, err := repository.NewPGChunkStore(ctx, pool, 0)
		if err != nil {
			pool.Close()
			return nil, nil, err
		}
		return store, func() { _ = store.Close() }, nil
	}

	holder := &index.Holder{}
	noop := func() {}

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

	ix, err := repository.BuildIndex(ctx, store)
	if err != nil {
		if !errors.Is(err, common.ErrNotFound) {
			_ = store.Close()
			return nil, nil, err
		}
		logger.Warn("taxdocd.index_not_built", "dir", cfg.Index.Dir)
	} else {
		holder.Swap(ix)
		logger.Info("taxdocd.index_loaded",
			"chunks", ix.Len(),
			"model", ix.Metadata().Model,
		)
	}
	_ = store.Close() // the in-memory index is now the serving copy
	return retrieve.MemorySearcher{Holder: holder}, noop, nil
}

func buildRecordStore(cfg *common.Config, logger *slog.Logger) (repository.RecordStore, *export.Service, func()) {
	noop := func() {}
	if cfg.DB.RecordsPath == "" {
		logger.Warn("taxdocd.records_disabled")
		return nil, nil, noop
	}
	db, err := repository.OpenSQLite(cfg.DB.RecordsPath, logger)
	if err != nil {
		logger.Warn("taxdocd.records_open_failed", "error", err)
		return nil, nil, noop
	}
	store, err := repository.NewSQLiteRecordStore(db)
	if err != nil {
		logger.Warn("taxdocd.records_migrate_failed", "error", err)
		_ = db.Close()
		return nil, nil, noop
	}
	return store, export.NewService(store, logger), func() { _ = store.Close() }
}
