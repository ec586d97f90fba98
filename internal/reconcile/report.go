package reconcile

import (
	"bytes"
	"encoding/json"

	"github.com/rotisserie/eris"

	"github.com/sells-group/discrepancy-api/internal/model"
)

// Entry is the comparison result for a single field.
type Entry struct {
	Database model.Value `json:"database"`
	PDF      model.Value `json:"pdf"`
	Match    bool        `json:"match"`
}

// Report is an ordered field→Entry mapping. Entry order follows the
// reconciliation contract: extracted fields first, stored-only fields after.
type Report struct {
	fields  []string
	entries map[string]Entry
}

// NewReport creates an empty Report.
func NewReport() *Report {
	return &Report{entries: make(map[string]Entry)}
}

func (r *Report) add(field string, e Entry) {
	if _, ok := r.entries[field]; !ok {
		r.fields = append(r.fields, field)
	}
	r.entries[field] = e
}

// Get returns the entry for a field and whether it is present.
func (r *Report) Get(field string) (Entry, bool) {
	e, ok := r.entries[field]
	return e, ok
}

// Has reports whether the field is present.
func (r *Report) Has(field string) bool {
	_, ok := r.entries[field]
	return ok
}

// Fields returns the field names in report order.
func (r *Report) Fields() []string {
	out := make([]string, len(r.fields))
	copy(out, r.fields)
	return out
}

// Len returns the number of entries.
func (r *Report) Len() int {
	return len(r.fields)
}

// Mismatches returns the fields whose entries did not match, in report order.
func (r *Report) Mismatches() []string {
	var out []string
	for _, f := range r.fields {
		if !r.entries[f].Match {
			out = append(out, f)
		}
	}
	return out
}

// MarshalJSON encodes the report as a JSON object preserving entry order.
func (r *Report) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, f := range r.fields {
		if i > 0 {
			buf.WriteByte(',')
		}
		key, err := json.Marshal(f)
		if err != nil {
			return nil, eris.Wrap(err, "reconcile: marshal report field")
		}
		buf.Write(key)
		buf.WriteByte(':')
		entry, err := json.Marshal(r.entries[f])
		if err != nil {
			return nil, eris.Wrapf(err, "reconcile: marshal report entry for %q", f)
		}
		buf.Write(entry)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}
