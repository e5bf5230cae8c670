// Package pipeline runs a document through text acquisition, classification,
// guideline retrieval, field extraction and normalization. Stage failures
// degrade the record instead of aborting: the only fatal conditions are an
// unsupported media type, undecodable bytes, and an unreachable OCR engine.
package pipeline

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/taxlens/taxdoc/constants"
	"github.com/taxlens/taxdoc/internal/common"
	"github.com/taxlens/taxdoc/internal/llm"
	"github.com/taxlens/taxdoc/internal/normalize"
	"github.com/taxlens/taxdoc/internal/ocr"
	"github.com/taxlens/taxdoc/internal/retrieve"
)

// Result is the outcome of one document run. Degraded lists the stages that
// fell back to defaults; an empty slice means a clean run.
type Result struct {
	Record   normalize.StructuredRecord
	OCRText  string
	Degraded []string
}

type Processor struct {
	engine     ocr.Engine
	classifier llm.Classifier
	retriever  *retrieve.Retriever
	extractor  llm.FieldExtractor
	normalizer *normalize.Normalizer
	topK       int
	logger     *slog.Logger
}

func NewProcessor(
	engine ocr.Engine,
	classifier llm.Classifier,
	retriever *retrieve.Retriever,
	extractor llm.FieldExtractor,
	normalizer *normalize.Normalizer,
	topK int,
	logger *slog.Logger,
) *Processor {
	if topK <= 0 {
		topK = 3
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Processor{
		engine:     engine,
		classifier: classifier,
		retriever:  retriever,
		extractor:  extractor,
		normalizer: normalizer,
		topK:       topK,
		logger:     logger,
	}
}

// Process runs the full pipeline over one document. The returned error is
// non-nil only for the fatal conditions; every other failure surfaces as a
// degraded entry in the Result.
func (p *Processor) Process(ctx context.Context, document []byte, filename string) (Result, error) {
	rid := uuid.New().String()
	ctx = common.WithRequestID(ctx, rid)
	start := time.Now()

	p.logger.Info("pipeline.start",
		"req_id", rid,
		"filename", filename,
		"bytes", len(document),
	)

	var res Result
	note := func(stage string) { res.Degraded = append(res.Degraded, stage) }

	// acquire
	text, err := p.acquire(ctx, document)
	if err != nil {
		p.logger.Error("pipeline.acquire_failed", "req_id", rid, "error", err)
		return Result{}, err
	}
	if text == "" {
		p.logger.Warn("pipeline.acquire_empty", "req_id", rid)
		note("acquire")
	}
	res.OCRText = text

	// classify
	cat := p.classify(ctx, text, filename)
	if cat.Degraded {
		note("classify")
	}

	// retrieve
	guidelines := p.retrieveGuidelines(ctx, cat.Value)
	if guidelines.Degraded {
		note("retrieve")
	}

	// extract
	reply := p.extract(ctx, llm.ExtractRequest{
		OCRText:          text,
		Category:         cat.Value,
		GuidelineContext: guidelines.Value,
		FilenameHint:     filename,
	})
	if reply.Degraded {
		note("extract")
	}

	// normalize is total: it always yields a complete record
	res.Record = p.normalizer.Normalize(reply.Value, cat.Value)
	res.Record.RawExtractedText = text

	p.logger.Info("pipeline.done",
		"req_id", rid,
		"category", res.Record.Category,
		"deductible", res.Record.IsDeductible,
		"degraded", res.Degraded,
		"elapsed_ms", time.Since(start).Milliseconds(),
	)
	return res, nil
}

// acquire sniffs the media type, calls the OCR engine and flattens the raw
// result to plain text. All three failure modes here are fatal.
func (p *Processor) acquire(ctx context.Context, document []byte) (string, error) {
	mediaType, supported := ocr.DetectFormat(document)
	if !supported {
		return "", common.NewAppError("DECODE_FAILURE",
			"document bytes do not decode as a supported format", common.ErrDecodeFailure)
	}

	raw, err := p.engine.Recognize(ctx, document, mediaType)
	if err != nil {
		return "", common.NewAppError("OCR_UNAVAILABLE",
			"text acquisition engine unreachable", errors.Join(common.ErrCollaboratorUnavailable, err))
	}

	// an unrecognized result shape yields no lines; the run continues with
	// empty text rather than aborting
	lines := ocr.ExtractLines(raw)
	return ocr.Normalize(ocr.JoinLines(lines)), nil
}

func (p *Processor) classify(ctx context.Context, text, filename string) StageResult[string] {
	label, err := p.classifier.Classify(ctx, text)
	if err != nil {
		p.logger.Warn("pipeline.classify_degraded", "error", err, "filename", filename)
		return degraded(string(constants.Other), "classifier call failed")
	}
	if label == "" {
		return degraded(string(constants.Other), "classifier returned empty label")
	}
	return ok(label)
}

func (p *Processor) retrieveGuidelines(ctx context.Context, category string) StageResult[[]string] {
	chunks := p.retriever.Search(ctx, retrieve.BuildQuery(category), p.topK)
	if len(chunks) == 1 && chunks[0] == retrieve.UnavailableSentinel {
		return degraded(chunks, "guideline index unavailable")
	}
	return ok(chunks)
}

func (p *Processor) extract(ctx context.Context, req llm.ExtractRequest) StageResult[string] {
	reply, err := p.extractor.ExtractFields(ctx, req)
	if err != nil {
		p.logger.Warn("pipeline.extract_degraded", "error", err)
		return degraded("", "field extractor call failed")
	}
	return ok(reply)
}
