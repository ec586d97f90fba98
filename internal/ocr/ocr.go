// Package ocr converts PDF documents into plain text for the extraction
// gateway, via a local pdftotext binary or the Mistral OCR API.
package ocr

import (
	"context"
	"os"

	"github.com/rotisserie/eris"

	"github.com/sells-group/discrepancy-api/internal/config"
)

// TextExtractor extracts text content from PDF files.
type TextExtractor interface {
	ExtractText(ctx context.Context, pdfPath string) (string, error)
}

// NewTextExtractor creates a TextExtractor based on config.
func NewTextExtractor(cfg config.OCRConfig) (TextExtractor, error) {
	switch cfg.Provider {
	case "local", "":
		return NewPdfToText(cfg.PdfToTextPath), nil
	case "mistral":
		if cfg.MistralKey == "" {
			return nil, eris.New("ocr: mistral provider requires mistral_api_key")
		}
		return NewMistralOCR(cfg.MistralKey, cfg.MistralModel), nil
	default:
		return nil, eris.Errorf("ocr: unknown provider %q", cfg.Provider)
	}
}

// checkReadable verifies the document exists and is a regular file before
// any provider is invoked, so an unreadable reference fails the same way
// for every provider.
func checkReadable(pdfPath string) error {
	info, err := os.Stat(pdfPath)
	if err != nil {
		return eris.Wrapf(err, "ocr: stat %s", pdfPath)
	}
	if info.IsDir() {
		return eris.Errorf("ocr: %s is a directory", pdfPath)
	}
	return nil
}
