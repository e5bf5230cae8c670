package ocr

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/google/uuid"
)

// Engine is the external OCR boundary. The result is the engine's own JSON
// structure; its shape is not guaranteed stable across versions, so callers
// consume it only through the adapter in this package.
type Engine interface {
	Recognize(ctx context.Context, image []byte, mediaType string) (json.RawMessage, error)
}

// HTTPEngine calls a PaddleOCR-style recognition service.
type HTTPEngine struct {
	url    string
	http   *http.Client
	logger *slog.Logger
}

func NewHTTPEngine(url string, timeout time.Duration, logger *slog.Logger) *HTTPEngine {
	if timeout <= 0 {
		timeout = 45 * time.Second
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &HTTPEngine{
		url:    url,
		http:   &http.Client{Timeout: timeout},
		logger: logger,
	}
}

func (e *HTTPEngine) Recognize(ctx context.Context, image []byte, mediaType string) (json.RawMessage, error) {
	rid := uuid.New().String()
	start := time.Now()

	body := map[string]any{
		"image": base64.StdEncoding.EncodeToString(image),
	}
	bs, err := json.Marshal(body)
	if err != nil {
		return nil, fmt.Errorf("encode ocr request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, e.url, bytes.NewReader(bs))
	if err != nil {
		return nil, fmt.Errorf("build ocr request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	e.logger.Info("ocr.request", "req_id", rid, "image_bytes", len(image), "media_type", mediaType)

	resp, err := e.http.Do(req)
	if err != nil {
		e.logger.Error("ocr.http_error", "req_id", rid, "error", err,
			"elapsed_ms", time.Since(start).Milliseconds())
		return nil, err
	}
	defer func(body io.ReadCloser) {
		if err := body.Close(); err != nil {
			e.logger.Warn("ocr.response_body_close_error", "req_id", rid, "error", err)
		}
	}(resp.Body)

	raw, _ := io.ReadAll(resp.Body)
	if resp.StatusCode/100 != 2 {
		e.logger.Error("ocr.status_error", "req_id", rid, "status", resp.StatusCode,
			"elapsed_ms", time.Since(start).Milliseconds())
		return nil, fmt.Errorf("ocr engine status %d", resp.StatusCode)
	}

	e.logger.Info("ocr.ok", "req_id", rid, "bytes", len(raw),
		"elapsed_ms", time.Since(start).Milliseconds())
	return raw, nil
}

// VisionCompleter is the slice of the chat client the vision engine needs:
// a system+user exchange with an embedded image payload.
type VisionCompleter interface {
	CompleteVision(ctx context.Context, system, user, imageDataURL string) (string, error)
}

// VisionEngine uses a vision language model as the text acquirer. Its reply is
// wrapped in the rec_texts shape so the adapter handles both engines uniformly.
type VisionEngine struct {
	completer VisionCompleter
	logger    *slog.Logger
}

func NewVisionEngine(completer VisionCompleter, logger *slog.Logger) *VisionEngine {
	if logger == nil {
		logger = slog.Default()
	}
	return &VisionEngine{completer: completer, logger: logger}
}

const visionSystemPrompt = "You are an OCR assistant specialized in extracting text from financial documents. " +
	"Return every visible line of text, one line per line of the document, top to bottom. No commentary."

const visionUserPrompt = "Extract all text from this document (receipt, invoice, payslip or similar). " +
	"Keep names, dates, amounts and reference numbers exactly as printed."

func (e *VisionEngine) Recognize(ctx context.Context, image []byte, mediaType string) (json.RawMessage, error) {
	dataURL := "data:" + mediaType + ";base64," + base64.StdEncoding.EncodeToString(image)
	reply, err := e.completer.CompleteVision(ctx, visionSystemPrompt, visionUserPrompt, dataURL)
	if err != nil {
		e.logger.Error("ocr.vision.error", "error", err)
		return nil, err
	}

	lines := splitNonEmptyLines(reply)
	wrapped, err := json.Marshal(map[string]any{"rec_texts": lines})
	if err != nil {
		return nil, err
	}
	e.logger.Info("ocr.vision.ok", "lines", len(lines))
	return wrapped, nil
}
