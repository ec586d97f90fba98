package store

import (
	"context"

	"github.com/rotisserie/eris"
	"github.com/tealeg/xlsx/v2"

	"github.com/sells-group/discrepancy-api/internal/model"
)

const xlsxSheetName = "database"

// XLSXStore persists the table as the first sheet of an XLSX workbook,
// header row first, one record per row. Cells round-trip through the same
// string representation as the CSV backend.
type XLSXStore struct {
	path string
}

// NewXLSX creates an XLSXStore for the given file path.
func NewXLSX(path string) *XLSXStore {
	return &XLSXStore{path: path}
}

// LoadTable reads the first sheet wholesale into a table.
func (s *XLSXStore) LoadTable(ctx context.Context) (*model.Table, error) {
	if err := ctx.Err(); err != nil {
		return nil, eris.Wrap(err, "xlsx: load cancelled")
	}

	f, err := xlsx.OpenFile(s.path)
	if err != nil {
		return nil, eris.Wrapf(err, "xlsx: open %s", s.path)
	}
	if len(f.Sheets) == 0 {
		return nil, eris.Errorf("xlsx: %s has no sheets", s.path)
	}

	sheet := f.Sheets[0]
	if len(sheet.Rows) == 0 {
		return nil, eris.Errorf("xlsx: %s has no header row", s.path)
	}

	header := rowToStrings(sheet.Rows[0])
	table := model.NewTable()
	for _, row := range sheet.Rows[1:] {
		cells := rowToStrings(row)
		rec := model.NewRecord()
		for i, col := range header {
			raw := ""
			if i < len(cells) {
				raw = cells[i]
			}
			rec.Set(col, model.ParseValue(raw))
		}
		table.Append(rec)
	}

	return table, nil
}

// SaveTable overwrites the workbook with the full table.
func (s *XLSXStore) SaveTable(ctx context.Context, t *model.Table) error {
	if err := ctx.Err(); err != nil {
		return eris.Wrap(err, "xlsx: save cancelled")
	}

	f := xlsx.NewFile()
	sheet, err := f.AddSheet(xlsxSheetName)
	if err != nil {
		return eris.Wrap(err, "xlsx: add sheet")
	}

	cols := t.Columns()
	headerRow := sheet.AddRow()
	for _, col := range cols {
		headerRow.AddCell().SetString(col)
	}

	for _, rec := range t.Records {
		row := sheet.AddRow()
		for _, col := range cols {
			v, _ := rec.Get(col)
			row.AddCell().SetString(model.FormatValue(v))
		}
	}

	if err := f.Save(s.path); err != nil {
		return eris.Wrapf(err, "xlsx: save %s", s.path)
	}
	return nil
}

// Close is a no-op for the file-backed store.
func (s *XLSXStore) Close() error {
	return nil
}

func rowToStrings(row *xlsx.Row) []string {
	cells := make([]string, len(row.Cells))
	for i, cell := range row.Cells {
		cells[i] = cell.String()
	}
	return cells
}
