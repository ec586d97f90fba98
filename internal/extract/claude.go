package extract

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"github.com/sells-group/discrepancy-api/internal/config"
	"github.com/sells-group/discrepancy-api/internal/model"
	"github.com/sells-group/discrepancy-api/internal/ocr"
	"github.com/sells-group/discrepancy-api/internal/retry"
	"github.com/sells-group/discrepancy-api/pkg/anthropic"
)

const extractSystemText = "You are a financial data analyst extracting tabular facts from company report text. Return a single flat JSON object mapping field names to values. Values must be strings, numbers, or null. Keep field names exactly as they appear in the document, in document order. Do not invent fields."

const extractPrompt = `Extract every labeled field and its value from this company report.

Document text:
%s

Return a valid flat JSON object, field names in document order. Use null for fields whose value is blank or unreadable.`

// Claude extracts records by running OCR over the PDF and asking a Claude
// model to structure the resulting text.
type Claude struct {
	client    anthropic.Client
	text      ocr.TextExtractor
	model     string
	maxTokens int64
	limiter   *rate.Limiter
}

// NewClaude creates a Claude-backed extractor.
func NewClaude(client anthropic.Client, text ocr.TextExtractor, cfg config.AnthropicConfig) *Claude {
	rpm := cfg.RequestsPerMinute
	if rpm <= 0 {
		rpm = 30
	}
	maxTokens := int64(cfg.MaxTokens)
	if maxTokens <= 0 {
		maxTokens = 1024
	}
	return &Claude{
		client:    client,
		text:      text,
		model:     cfg.Model,
		maxTokens: maxTokens,
		limiter:   rate.NewLimiter(rate.Limit(float64(rpm)/60.0), 1),
	}
}

// Extract runs OCR on the document and structures the text into a record.
// Returns ErrDocumentNotFound when the path is not a readable file.
func (c *Claude) Extract(ctx context.Context, pdfPath string) (*model.Record, error) {
	if info, err := os.Stat(pdfPath); err != nil || info.IsDir() {
		return nil, eris.Wrapf(ErrDocumentNotFound, "extract: %s", pdfPath)
	}

	if err := c.limiter.Wait(ctx); err != nil {
		return nil, eris.Wrap(err, "extract: rate limit wait")
	}

	text, err := c.text.ExtractText(ctx, pdfPath)
	if err != nil {
		return nil, eris.Wrapf(err, "extract: ocr %s", pdfPath)
	}
	if strings.TrimSpace(text) == "" {
		return nil, eris.Errorf("extract: %s produced no text", pdfPath)
	}

	req := anthropic.MessageRequest{
		Model:     c.model,
		MaxTokens: c.maxTokens,
		System:    extractSystemText,
		Messages: []anthropic.Message{
			{Role: "user", Content: fmt.Sprintf(extractPrompt, text)},
		},
	}
	resp, err := retry.Do(ctx, retry.Config{}, "claude-extract", func(ctx context.Context) (*anthropic.MessageResponse, error) {
		return c.client.CreateMessage(ctx, req)
	})
	if err != nil {
		return nil, eris.Wrapf(err, "extract: structure %s", pdfPath)
	}
	resp.Usage.LogUsage(c.model, "extract")

	rec := model.NewRecord()
	if err := json.Unmarshal([]byte(cleanJSON(resp.Text())), rec); err != nil {
		zap.L().Warn("extract: model returned unparseable JSON",
			zap.String("document", pdfPath),
			zap.Error(err),
		)
		return nil, eris.Wrapf(err, "extract: parse response for %s", pdfPath)
	}

	return rec, nil
}

// cleanJSON strips markdown code fences and any prose around the outermost
// JSON object.
func cleanJSON(text string) string {
	text = strings.TrimSpace(text)

	if strings.HasPrefix(text, "```json") {
		text = strings.TrimPrefix(text, "```json")
		if idx := strings.LastIndex(text, "```"); idx >= 0 {
			text = text[:idx]
		}
	} else if strings.HasPrefix(text, "```") {
		text = strings.TrimPrefix(text, "```")
		if idx := strings.LastIndex(text, "```"); idx >= 0 {
			text = text[:idx]
		}
	}

	start := strings.Index(text, "{")
	end := strings.LastIndex(text, "}")
	if start >= 0 && end > start {
		text = text[start : end+1]
	}

	return strings.TrimSpace(text)
}
