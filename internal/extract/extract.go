// Package extract converts a PDF document into a structured record of
// field→value pairs, preserving the field order the document reports them
// in.
package extract

import (
	"context"

	"github.com/rotisserie/eris"

	"github.com/sells-group/discrepancy-api/internal/config"
	"github.com/sells-group/discrepancy-api/internal/model"
	"github.com/sells-group/discrepancy-api/internal/ocr"
	"github.com/sells-group/discrepancy-api/pkg/anthropic"
)

// ErrDocumentNotFound signals that the document reference does not resolve
// to a readable document.
var ErrDocumentNotFound = eris.New("extract: document not found")

// Extractor converts a document reference into a record.
type Extractor interface {
	Extract(ctx context.Context, pdfPath string) (*model.Record, error)
}

// NewExtractor creates an Extractor based on config.
func NewExtractor(cfg config.ExtractorConfig, anthropicCfg config.AnthropicConfig, ocrCfg config.OCRConfig) (Extractor, error) {
	switch cfg.Provider {
	case "anthropic", "":
		if anthropicCfg.Key == "" {
			return nil, eris.New("extract: anthropic provider requires anthropic.key")
		}
		text, err := ocr.NewTextExtractor(ocrCfg)
		if err != nil {
			return nil, err
		}
		return NewClaude(anthropic.NewClient(anthropicCfg.Key), text, anthropicCfg), nil
	case "fixture":
		return NewFixture(), nil
	default:
		return nil, eris.Errorf("extract: unknown provider %q", cfg.Provider)
	}
}
