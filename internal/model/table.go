package model

import (
	"github.com/rotisserie/eris"
)

// ErrNoMatch signals that no record matched the requested key value.
var ErrNoMatch = eris.New("model: no record matches key")

// Table is an ordered collection of records sharing an ad hoc field set.
// Key uniqueness is assumed, not enforced: lookup takes the first match,
// updates apply to every match.
type Table struct {
	Records []*Record
}

// NewTable creates an empty Table.
func NewTable() *Table {
	return &Table{}
}

// Append adds a record at the end of the table.
func (t *Table) Append(r *Record) {
	t.Records = append(t.Records, r)
}

// Len returns the number of records.
func (t *Table) Len() int {
	return len(t.Records)
}

// FindByKey returns the first record whose keyField equals keyValue, or nil
// when none matches. Absent key fields are treated as nil.
func (t *Table) FindByKey(keyField string, keyValue Value) *Record {
	for _, rec := range t.Records {
		v, _ := rec.Get(keyField)
		if Equal(v, keyValue) {
			return rec
		}
	}
	return nil
}

// ApplyUpdate sets targetField to newValue on every record whose keyField
// equals keyValue. The field is created when a matching record does not
// carry it yet. Returns ErrNoMatch, leaving the table untouched, when
// nothing matches. The value is stored as supplied, without coercion
// against the field's prior type.
func (t *Table) ApplyUpdate(keyField string, keyValue Value, targetField string, newValue Value) error {
	var matched []*Record
	for _, rec := range t.Records {
		v, _ := rec.Get(keyField)
		if Equal(v, keyValue) {
			matched = append(matched, rec)
		}
	}
	if len(matched) == 0 {
		return eris.Wrapf(ErrNoMatch, "model: update %q=%v", keyField, keyValue)
	}
	for _, rec := range matched {
		rec.Set(targetField, newValue)
	}
	return nil
}

// Columns returns the union of all record fields in first-seen order:
// fields of earlier records first, new fields appended as they appear.
func (t *Table) Columns() []string {
	var cols []string
	seen := make(map[string]bool)
	for _, rec := range t.Records {
		for _, f := range rec.Fields() {
			if !seen[f] {
				seen[f] = true
				cols = append(cols, f)
			}
		}
	}
	return cols
}
