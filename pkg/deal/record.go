package deal

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"maps"
	"slices"
	"strings"
	"time"
)

// Record is an immutable deal record: an identifier plus typed fields keyed
// by domain concept. The zero value is an empty record without an id.
type Record struct {
	id     string
	fields map[Field]any
}

// New validates values against the schema and returns a record. Unknown
// fields and values of the wrong Go type are rejected.
func New(id string, values map[Field]any) (Record, error) {
	if strings.TrimSpace(id) == "" {
		return Record{}, ErrInvalidID
	}
	fields := make(map[Field]any, len(values))
	var errs []error
	for f, v := range values {
		t, ok := schema[f]
		if !ok {
			errs = append(errs, fmt.Errorf("%w: %s", ErrUnknownField, f))
			continue
		}
		checked, err := checkValue(t, v)
		if err != nil {
			errs = append(errs, fmt.Errorf("%s: %w", f, err))
			continue
		}
		fields[f] = checked
	}
	if len(errs) > 0 {
		return Record{}, errors.Join(errs...)
	}
	return Record{id: id, fields: fields}, nil
}

// MustNew is like New but panics on invalid input. Intended for fixtures.
func MustNew(id string, values map[Field]any) Record {
	r, err := New(id, values)
	if err != nil {
		panic(err)
	}
	return r
}

// ID returns the record identifier.
func (r Record) ID() string { return r.id }

// Has reports whether f is set.
func (r Record) Has(f Field) bool {
	_, ok := r.fields[f]
	return ok
}

// Fields returns the set fields in sorted order.
func (r Record) Fields() []Field {
	return slices.Sorted(maps.Keys(r.fields))
}

// Text returns a string field. Empty strings count as missing.
func (r Record) Text(f Field) (string, bool) {
	s, ok := r.fields[f].(string)
	if !ok || strings.TrimSpace(s) == "" {
		return "", false
	}
	return s, true
}

// Date returns a date field.
func (r Record) Date(f Field) (time.Time, bool) {
	d, ok := r.fields[f].(time.Time)
	return d, ok
}

// Money returns a money field in cents.
func (r Record) Money(f Field) (Money, bool) {
	m, ok := r.fields[f].(Money)
	return m, ok
}

// Int returns an integer field.
func (r Record) Int(f Field) (int, bool) {
	n, ok := r.fields[f].(int)
	return n, ok
}

// Side returns the represented side. Records without one default to buyer.
func (r Record) Side() Party {
	if p, ok := r.fields[Side].(Party); ok {
		return p
	}
	return Buyer
}

// With returns a copy of r with f set to v.
func (r Record) With(f Field, v any) (Record, error) {
	values := maps.Clone(r.fields)
	if values == nil {
		values = map[Field]any{}
	}
	values[f] = v
	return New(r.id, values)
}

// Raw returns the wire form of the fields: dates as YYYY-MM-DD strings,
// money as integer cents, sides as strings.
func (r Record) Raw() map[string]any {
	raw := make(map[string]any, len(r.fields))
	for f, v := range r.fields {
		raw[string(f)] = encodeValue(schema[f], v)
	}
	return raw
}

// FromRaw builds a record from wire values.
func FromRaw(id string, raw map[string]any) (Record, error) {
	values := make(map[Field]any, len(raw))
	var errs []error
	for k, v := range raw {
		f := Field(k)
		t, ok := schema[f]
		if !ok {
			errs = append(errs, fmt.Errorf("%w: %s", ErrUnknownField, k))
			continue
		}
		if v == nil {
			continue
		}
		decoded, err := decodeValue(t, v)
		if err != nil {
			errs = append(errs, fmt.Errorf("%s: %w", k, err))
			continue
		}
		values[f] = decoded
	}
	if len(errs) > 0 {
		return Record{}, errors.Join(errs...)
	}
	return New(id, values)
}

type wireRecord struct {
	ID     string         `json:"id"`
	Fields map[string]any `json:"fields"`
}

// MarshalJSON encodes the record as {"id": ..., "fields": {...}}.
func (r Record) MarshalJSON() ([]byte, error) {
	return json.Marshal(wireRecord{ID: r.id, Fields: r.Raw()})
}

// UnmarshalJSON decodes and validates a record.
func (r *Record) UnmarshalJSON(data []byte) error {
	var w wireRecord
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()
	if err := dec.Decode(&w); err != nil {
		return errors.Join(ErrInvalidValue, err)
	}
	rec, err := FromRaw(w.ID, w.Fields)
	if err != nil {
		return err
	}
	*r = rec
	return nil
}
