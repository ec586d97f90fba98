package model

import (
	"bytes"
	"encoding/json"

	"github.com/rotisserie/eris"
)

// Record is an insertion-ordered field→value mapping describing one entity.
// Field order is an observable contract (reports preserve it), so Record is
// a parallel key slice + lookup map rather than a bare Go map.
type Record struct {
	fields []string
	values map[string]Value
}

// NewRecord creates an empty Record.
func NewRecord() *Record {
	return &Record{values: make(map[string]Value)}
}

// Set assigns a value to a field. A new field is appended at the end; an
// existing field keeps its position.
func (r *Record) Set(field string, v Value) {
	if r.values == nil {
		r.values = make(map[string]Value)
	}
	if _, ok := r.values[field]; !ok {
		r.fields = append(r.fields, field)
	}
	r.values[field] = v
}

// Get returns the value for a field and whether the field is present.
func (r *Record) Get(field string) (Value, bool) {
	v, ok := r.values[field]
	return v, ok
}

// Has reports whether the field is present.
func (r *Record) Has(field string) bool {
	_, ok := r.values[field]
	return ok
}

// Fields returns the field names in insertion order.
func (r *Record) Fields() []string {
	out := make([]string, len(r.fields))
	copy(out, r.fields)
	return out
}

// Len returns the number of fields.
func (r *Record) Len() int {
	return len(r.fields)
}

// Clone returns a deep copy of the record.
func (r *Record) Clone() *Record {
	out := NewRecord()
	for _, f := range r.fields {
		out.Set(f, r.values[f])
	}
	return out
}

// MarshalJSON encodes the record as a JSON object preserving field order.
func (r *Record) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, f := range r.fields {
		if i > 0 {
			buf.WriteByte(',')
		}
		key, err := json.Marshal(f)
		if err != nil {
			return nil, eris.Wrap(err, "model: marshal record field")
		}
		buf.Write(key)
		buf.WriteByte(':')
		val, err := json.Marshal(r.values[f])
		if err != nil {
			return nil, eris.Wrapf(err, "model: marshal record value for %q", f)
		}
		buf.Write(val)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// UnmarshalJSON decodes a JSON object into the record, preserving the key
// order of the document. encoding/json maps discard order, so this walks
// the token stream instead.
func (r *Record) UnmarshalJSON(data []byte) error {
	dec := json.NewDecoder(bytes.NewReader(data))

	tok, err := dec.Token()
	if err != nil {
		return eris.Wrap(err, "model: decode record")
	}
	if delim, ok := tok.(json.Delim); !ok || delim != '{' {
		return eris.New("model: record must be a JSON object")
	}

	r.fields = nil
	r.values = make(map[string]Value)

	for dec.More() {
		keyTok, err := dec.Token()
		if err != nil {
			return eris.Wrap(err, "model: decode record key")
		}
		key, ok := keyTok.(string)
		if !ok {
			return eris.New("model: record key is not a string")
		}

		var v Value
		if err := dec.Decode(&v); err != nil {
			return eris.Wrapf(err, "model: decode record value for %q", key)
		}
		r.Set(key, v)
	}

	if _, err := dec.Token(); err != nil {
		return eris.Wrap(err, "model: decode record close")
	}
	return nil
}
