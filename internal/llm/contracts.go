package llm

import "context"

// ExtractRequest carries everything the structured extractor prompt embeds.
type ExtractRequest struct {
	OCRText          string
	Category         string   // pinned upstream; the model must echo it verbatim
	GuidelineContext []string // retrieved chunk texts, verbatim
	FilenameHint     string
}

// Classifier pins an expense/income category before deeper extraction.
// Implementations return the sentinel "Other" on any failure; classification
// is never fatal.
type Classifier interface {
	Classify(ctx context.Context, text string) (string, error)
}

// FieldExtractor produces the candidate record JSON as the model's raw,
// unparsed textual reply. Parsing and repair belong to the normalizer.
type FieldExtractor interface {
	ExtractFields(ctx context.Context, req ExtractRequest) (string, error)
}
