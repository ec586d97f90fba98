// Package reconcile merges a stored record and an extracted record into an
// ordered field-by-field comparison report.
package reconcile

import (
	"github.com/sells-group/discrepancy-api/internal/model"
)

// Reconcile compares the stored record against the extracted record and
// returns one entry per field in the union of both.
//
// Extracted fields come first, in extracted order; a field absent from the
// stored record compares against nil. Stored-only fields follow, in stored
// order, with a nil extracted value. A field matches when both values are
// equal by exact type and value, or both are nil.
//
// Pure function of its inputs; either record may be nil or empty.
func Reconcile(stored, extracted *model.Record) *Report {
	report := NewReport()

	if extracted != nil {
		for _, field := range extracted.Fields() {
			pdfVal, _ := extracted.Get(field)
			var dbVal model.Value
			if stored != nil {
				dbVal, _ = stored.Get(field)
			}
			report.add(field, Entry{
				Database: dbVal,
				PDF:      pdfVal,
				Match:    model.Equal(dbVal, pdfVal),
			})
		}
	}

	if stored != nil {
		for _, field := range stored.Fields() {
			if report.Has(field) {
				continue
			}
			dbVal, _ := stored.Get(field)
			report.add(field, Entry{
				Database: dbVal,
				PDF:      nil,
				Match:    dbVal == nil,
			})
		}
	}

	return report
}
