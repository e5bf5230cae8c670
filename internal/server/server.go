// Package server exposes the document pipeline over HTTP.
package server

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/taxlens/taxdoc/internal/export"
	"github.com/taxlens/taxdoc/internal/pipeline"
	"github.com/taxlens/taxdoc/internal/repository"
	"github.com/taxlens/taxdoc/internal/retrieve"
)

// defaultMaxUpload caps a single document upload when no limit is configured.
const defaultMaxUpload = 20 << 20

type Server struct {
	processor *pipeline.Processor
	retriever *retrieve.Retriever
	records   repository.RecordStore // may be nil; persistence is best-effort
	exporter  *export.Service        // may be nil when records are not persisted
	maxUpload int64
	logger    *slog.Logger
}

func New(
	processor *pipeline.Processor,
	retriever *retrieve.Retriever,
	records repository.RecordStore,
	exporter *export.Service,
	maxUpload int64,
	logger *slog.Logger,
) *Server {
	if maxUpload <= 0 {
		maxUpload = defaultMaxUpload
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Server{
		processor: processor,
		retriever: retriever,
		records:   records,
		exporter:  exporter,
		maxUpload: maxUpload,
		logger:    logger,
	}
}

// Router builds the gin engine with all routes attached.
func (s *Server) Router() *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery(), s.requestLog())
	r.MaxMultipartMemory = s.maxUpload

	r.GET("/healthz", s.handleHealth)

	v1 := r.Group("/v1")
	{
		v1.POST("/documents", s.handleDocument)
		v1.GET("/records/export", s.handleExport)
	}
	return r
}

// Run serves until ctx is cancelled, then drains with a short grace period.
func (s *Server) Run(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.Router(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("server.listen", "addr", addr)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		s.logger.Info("server.shutdown")
		return srv.Shutdown(shutdownCtx)
	}
}

func (s *Server) requestLog() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		s.logger.Info("http.request",
			"method", c.Request.Method,
			"path", c.Request.URL.Path,
			"status", c.Writer.Status(),
			"elapsed_ms", time.Since(start).Milliseconds(),
		)
	}
}
