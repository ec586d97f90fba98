package extract

import (
	"context"
	"encoding/json"
	"os"

	"github.com/rotisserie/eris"

	"github.com/sells-group/discrepancy-api/internal/model"
)

// Fixture reads the extracted record from a JSON sidecar file next to the
// PDF (<path>.json). Used for local development and tests where no
// extraction credentials are available.
type Fixture struct{}

// NewFixture creates a Fixture extractor.
func NewFixture() *Fixture {
	return &Fixture{}
}

// Extract loads <pdfPath>.json as an ordered record. Returns
// ErrDocumentNotFound when either the PDF or its sidecar is missing.
func (f *Fixture) Extract(ctx context.Context, pdfPath string) (*model.Record, error) {
	if err := ctx.Err(); err != nil {
		return nil, eris.Wrap(err, "extract: fixture cancelled")
	}

	if info, err := os.Stat(pdfPath); err != nil || info.IsDir() {
		return nil, eris.Wrapf(ErrDocumentNotFound, "extract: %s", pdfPath)
	}

	sidecar := pdfPath + ".json"
	data, err := os.ReadFile(sidecar)
	if err != nil {
		return nil, eris.Wrapf(ErrDocumentNotFound, "extract: sidecar %s", sidecar)
	}

	rec := model.NewRecord()
	if err := json.Unmarshal(data, rec); err != nil {
		return nil, eris.Wrapf(err, "extract: parse sidecar %s", sidecar)
	}
	return rec, nil
}
