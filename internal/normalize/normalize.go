// Package normalize turns an arbitrary model reply into a fully populated
// StructuredRecord. Normalize is total: it never returns an error, and every
// field of the result holds a usable value no matter what came in.
package normalize

import (
	"encoding/json"
	"log/slog"
	"strconv"
	"strings"

	"github.com/taxlens/taxdoc/constants"
	"github.com/taxlens/taxdoc/internal/llm"
)

type Normalizer struct {
	logger *slog.Logger
}

func New(logger *slog.Logger) *Normalizer {
	if logger == nil {
		logger = slog.Default()
	}
	return &Normalizer{logger: logger}
}

// Normalize decodes "raw" (possibly fenced, possibly malformed) and maps it
// field by field onto a StructuredRecord. pinnedCategory, when non-empty,
// overrides whatever category the reply carries: the classifier stage owns
// that decision.
func (n *Normalizer) Normalize(raw string, pinnedCategory string) StructuredRecord {
	rec := DefaultRecord(pinnedCategory)

	body := StripCodeFence(raw)
	var fields map[string]any
	if err := json.Unmarshal([]byte(body), &fields); err != nil {
		n.logger.Warn("normalize.decode_failed",
			"error", err,
			"reply_len", len(raw),
		)
		return rec
	}

	// schema check is informational: it tells a clean reply from one needing
	// field-level repair, it never fails the call
	if err := llm.ValidateJSONAgainstSchema(llm.BuildRecordJSONSchema(), []byte(body)); err != nil {
		n.logger.Info("normalize.repair", "reason", err)
	} else {
		n.logger.Debug("normalize.fastpath")
	}

	rec.Date = NormalizeDate(stringField(fields, "date"))
	rec.CounterpartyName = stringField(fields, "counterparty_name")
	rec.Amount = NormalizeAmount(fields["amount"])
	rec.IsDeductible = NormalizeBool(fields["is_deductible"])
	rec.DeductionType = deductionField(fields, "deduction_type")
	rec.DeductionDetails = deductionField(fields, "deduction_details")
	rec.Description = stringField(fields, "description")

	if pinnedCategory != "" {
		rec.Category = pinnedCategory
	} else if cat := stringField(fields, "category"); cat != "" {
		canonical, _ := constants.Canonicalize(cat)
		rec.Category = canonical
	}

	// a non-deductible record carries no deduction metadata
	if !rec.IsDeductible {
		rec.DeductionType = NotApplicable
		rec.DeductionDetails = NotApplicable
	}

	n.logger.Debug("normalize.ok",
		"category", rec.Category,
		"deductible", rec.IsDeductible,
		"amount", rec.Amount,
	)
	return rec
}

// stringField coerces scalar values so a numeric counterparty or description
// is not silently dropped.
func stringField(fields map[string]any, key string) string {
	switch v := fields[key].(type) {
	case string:
		return strings.TrimSpace(v)
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64)
	case bool:
		return strconv.FormatBool(v)
	default:
		return ""
	}
}

func deductionField(fields map[string]any, key string) string {
	s := stringField(fields, key)
	if s == "" {
		return NotApplicable
	}
	return s
}
