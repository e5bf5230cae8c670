package llm

import (
	"strings"
)

// BuildClassifierSystemPrompt instructs a single bare label as output, guided
// by example categories.
func BuildClassifierSystemPrompt(exampleCategories []string) string {
	parts := []string{
		"You are an expense classifier for financial documents.",
		"Reply with a single category label and NOTHING else: no quotes, no markdown, no explanation.",
	}
	if len(exampleCategories) > 0 {
		parts = append(parts,
			"Example categories: "+strings.Join(exampleCategories, ", ")+".",
			"Prefer one of the examples; emit a different short label only when none fits at all.")
	}
	parts = append(parts, "If the document gives no usable signal, reply: Other.")
	return strings.Join(parts, " ")
}

// BuildClassifierUserPrompt packages the acquired text. Long documents are
// truncated; category signal lives at the top of a receipt anyway.
func BuildClassifierUserPrompt(text string) string {
	var b strings.Builder
	b.WriteString("Text extracted from the document:\n---\n")
	if len(text) > 3000 {
		b.WriteString(text[:3000])
	} else {
		b.WriteString(text)
	}
	b.WriteString("\n---\n\nCategory label:")
	return b.String()
}

// BuildExtractorSystemPrompt fixes the output contract for the structured
// extraction call.
func BuildExtractorSystemPrompt() string {
	return strings.Join([]string{
		"You are an expert data extraction assistant for financial documents.",
		"Extract the requested fields from the provided text and return them ONLY as a single valid JSON object.",
		"Do NOT include any explanatory text or markdown before or after the JSON object.",
	}, " ")
}

// BuildExtractorUserPrompt embeds the pinned category, the retrieved guideline
// context verbatim, and the acquired text. The deductibility constraint is
// load-bearing: the model may only justify a deduction from the supplied
// guideline context, which bounds hallucinated tax claims to the evidence.
func BuildExtractorUserPrompt(req ExtractRequest) string {
	var b strings.Builder

	b.WriteString("Based on the text extracted from a financial document below, produce a JSON object with these exact keys:\n")
	b.WriteString(`- "date" (string, format YYYY-MM-DD if possible, otherwise as printed)` + "\n")
	b.WriteString(`- "counterparty_name" (string, the merchant, client, employer or payer)` + "\n")
	b.WriteString(`- "amount" (number, the final total amount)` + "\n")
	b.WriteString(`- "category" (string, MUST be exactly "` + req.Category + `" — this category is fixed, echo it verbatim)` + "\n")
	b.WriteString(`- "is_deductible" (boolean)` + "\n")
	b.WriteString(`- "deduction_type" (string, the guideline rule that applies, or "N/A")` + "\n")
	b.WriteString(`- "deduction_details" (string, a one-sentence justification, or "N/A")` + "\n")
	b.WriteString(`- "description" (string, brief description of the goods or services, or empty)` + "\n")

	b.WriteString("\nDeductibility rules:\n")
	b.WriteString("Decide is_deductible STRICTLY from the tax guidelines provided below. ")
	b.WriteString("If the guidelines do not cover this category of expense, you MUST answer ")
	b.WriteString(`is_deductible: false with deduction_details: "Not deductible / insufficient information". `)
	b.WriteString("Never rely on general knowledge about tax law.\n")

	b.WriteString("\nTax guidelines:\n--- Start Guidelines ---\n")
	if len(req.GuidelineContext) == 0 {
		b.WriteString("(no guidelines available)\n")
	} else {
		for _, chunk := range req.GuidelineContext {
			b.WriteString(chunk)
			b.WriteString("\n")
		}
	}
	b.WriteString("--- End Guidelines ---\n")

	if f := strings.TrimSpace(req.FilenameHint); f != "" {
		b.WriteString("\nFilename: " + f + "\n")
	}

	b.WriteString("\nExtracted text:\n---\n")
	b.WriteString(req.OCRText)
	b.WriteString("\n---\n\nJSON Output (valid JSON only, no text before or after the object):")
	return b.String()
}
