package store

import (
	"context"
	"encoding/csv"
	"os"
	"path/filepath"

	"github.com/rotisserie/eris"
	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/transform"

	"github.com/sells-group/discrepancy-api/internal/model"
)

// CSVStore persists the table as a single CSV file with a header row.
type CSVStore struct {
	path string
}

// NewCSV creates a CSVStore for the given file path.
func NewCSV(path string) *CSVStore {
	return &CSVStore{path: path}
}

// LoadTable reads the whole CSV file into a table. The first row is the
// header; cells parse as number, string, or nil for empty. Exported files
// from spreadsheet tools often carry a UTF-8 BOM, so the reader strips one.
func (s *CSVStore) LoadTable(ctx context.Context) (*model.Table, error) {
	if err := ctx.Err(); err != nil {
		return nil, eris.Wrap(err, "csv: load cancelled")
	}

	f, err := os.Open(s.path)
	if err != nil {
		return nil, eris.Wrapf(err, "csv: open %s", s.path)
	}
	defer f.Close() //nolint:errcheck

	bomAware := unicode.UTF8BOM.NewDecoder()
	reader := csv.NewReader(transform.NewReader(f, bomAware))

	rows, err := reader.ReadAll()
	if err != nil {
		return nil, eris.Wrapf(err, "csv: read %s", s.path)
	}
	if len(rows) == 0 {
		return nil, eris.Errorf("csv: %s has no header row", s.path)
	}

	header := rows[0]
	table := model.NewTable()
	for _, row := range rows[1:] {
		rec := model.NewRecord()
		for i, col := range header {
			rec.Set(col, model.ParseValue(row[i]))
		}
		table.Append(rec)
	}

	return table, nil
}

// SaveTable overwrites the CSV file with the full table. The write goes to
// a temp file in the same directory and is renamed into place so a crashed
// save never truncates the table.
func (s *CSVStore) SaveTable(ctx context.Context, t *model.Table) error {
	if err := ctx.Err(); err != nil {
		return eris.Wrap(err, "csv: save cancelled")
	}

	cols := t.Columns()
	rows := make([][]string, 0, t.Len()+1)
	rows = append(rows, cols)
	for _, rec := range t.Records {
		row := make([]string, len(cols))
		for i, col := range cols {
			v, _ := rec.Get(col)
			row[i] = model.FormatValue(v)
		}
		rows = append(rows, row)
	}

	dir := filepath.Dir(s.path)
	tmp, err := os.CreateTemp(dir, filepath.Base(s.path)+".tmp-*")
	if err != nil {
		return eris.Wrapf(err, "csv: create temp file in %s", dir)
	}
	tmpName := tmp.Name()

	writer := csv.NewWriter(tmp)
	if err := writer.WriteAll(rows); err != nil {
		tmp.Close()         //nolint:errcheck
		os.Remove(tmpName)  //nolint:errcheck
		return eris.Wrapf(err, "csv: write %s", tmpName)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName) //nolint:errcheck
		return eris.Wrapf(err, "csv: close %s", tmpName)
	}

	if err := os.Rename(tmpName, s.path); err != nil {
		os.Remove(tmpName) //nolint:errcheck
		return eris.Wrapf(err, "csv: replace %s", s.path)
	}
	return nil
}

// Close is a no-op for the file-backed store.
func (s *CSVStore) Close() error {
	return nil
}
