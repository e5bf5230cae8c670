package openai

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/taxlens/taxdoc/constants"
	"github.com/taxlens/taxdoc/internal/llm"
)

// Classify implements llm.Classifier with a single bare-label chat call.
func (c *Client) Classify(ctx context.Context, text string) (string, error) {
	rid := uuid.New().String()
	start := time.Now()

	c.logger.Info("llm.classify.start",
		"req_id", rid,
		"model", c.cfg.Model,
		"text_len", len(text),
	)

	messages := []map[string]any{
		{"role": "system", "content": llm.BuildClassifierSystemPrompt(constants.AsStringSlice())},
		{"role": "user", "content": llm.BuildClassifierUserPrompt(text)},
	}
	reply, err := c.complete(ctx, c.cfg.Model, messages)
	if err != nil {
		c.logger.Error("llm.classify.error", "req_id", rid, "error", err,
			"elapsed_ms", time.Since(start).Milliseconds())
		return string(constants.Other), err
	}

	label := StripLabelArtifacts(reply)
	if label == "" {
		c.logger.Warn("llm.classify.empty_reply", "req_id", rid)
		return string(constants.Other), nil
	}
	canonical, _ := constants.Canonicalize(label)

	c.logger.Info("llm.classify.ok",
		"req_id", rid,
		"label", canonical,
		"elapsed_ms", time.Since(start).Milliseconds(),
	)
	return canonical, nil
}

// ExtractFields implements llm.FieldExtractor. The reply is returned raw; the
// schema check here only tells a clean reply from one the normalizer will
// have to repair.
func (c *Client) ExtractFields(ctx context.Context, req llm.ExtractRequest) (string, error) {
	rid := uuid.New().String()
	start := time.Now()

	c.logger.Info("llm.extract.start",
		"req_id", rid,
		"model", c.cfg.Model,
		"temp", c.cfg.Temperature,
		"text_len", len(req.OCRText),
		"category", req.Category,
		"guideline_chunks", len(req.GuidelineContext),
	)

	messages := []map[string]any{
		{"role": "system", "content": llm.BuildExtractorSystemPrompt()},
		{"role": "user", "content": llm.BuildExtractorUserPrompt(req)},
	}
	reply, err := c.complete(ctx, c.cfg.Model, messages)
	if err != nil {
		c.logger.Error("llm.extract.error", "req_id", rid, "error", err,
			"elapsed_ms", time.Since(start).Milliseconds())
		return "", err
	}

	c.logger.Info("llm.extract.ok",
		"req_id", rid,
		"reply_len", len(reply),
		"elapsed_ms", time.Since(start).Milliseconds(),
	)
	return reply, nil
}

// CompleteVision implements ocr.VisionCompleter: one exchange with an
// embedded image payload, using the vision-capable model.
func (c *Client) CompleteVision(ctx context.Context, system, user, imageDataURL string) (string, error) {
	messages := []map[string]any{
		{"role": "system", "content": system},
		{"role": "user", "content": []map[string]any{
			{"type": "text", "text": user},
			{"type": "image_url", "image_url": map[string]any{"url": imageDataURL}},
		}},
	}
	return c.complete(ctx, c.cfg.VisionModel, messages)
}

func (c *Client) complete(ctx context.Context, model string, messages []map[string]any) (string, error) {
	body := map[string]any{
		"model":       model,
		"temperature": c.cfg.Temperature,
		"messages":    messages,
	}
	endpoint := strings.TrimRight(c.cfg.BaseURL, "/") + "/chat/completions"
	headers := map[string]string{"Authorization": "Bearer " + c.cfg.APIKey}

	raw, _, err := llm.SendJSON(ctx, c.http, endpoint, body, headers, c.logger)
	if err != nil {
		return "", err
	}

	var cc struct {
		Choices []struct {
			Message struct {
				Content string `json:"content"`
			} `json:"message"`
		} `json:"choices"`
	}
	if err := json.Unmarshal(raw, &cc); err != nil {
		return "", fmt.Errorf("decode chat response: %w", err)
	}
	if len(cc.Choices) == 0 {
		return "", fmt.Errorf("no choices in chat response")
	}
	return strings.TrimSpace(cc.Choices[0].Message.Content), nil
}

// StripLabelArtifacts removes quoting and markdown noise from a bare-label
// reply ("**Food**", `"Food"`, "Category: Food").
func StripLabelArtifacts(s string) string {
	s = strings.TrimSpace(s)
	// keep only the first line
	if i := strings.IndexByte(s, '\n'); i >= 0 {
		s = s[:i]
	}
	s = strings.Trim(s, "`*_\"' .")
	for _, prefix := range []string{"category:", "label:"} {
		if strings.HasPrefix(strings.ToLower(s), prefix) {
			s = strings.TrimSpace(s[len(prefix):])
			s = strings.Trim(s, "\"' ")
		}
	}
	return strings.TrimSpace(s)
}
