package types

import (
	"bytes"
	"encoding/json"
	"fmt"
)

// Row is one record in a dataset: an ordered mapping from column name to an
// arbitrary value. Column order is insertion order; different rows in the same
// dataset may carry different columns.
type Row struct {
	cols []string
	vals map[string]interface{}
}

// NewRow creates an empty row.
func NewRow() *Row {
	return &Row{vals: make(map[string]interface{})}
}

// Set stores a value under a column, appending the column on first sight.
func (r *Row) Set(col string, v interface{}) *Row {
	if r.vals == nil {
		r.vals = make(map[string]interface{})
	}
	if _, ok := r.vals[col]; !ok {
		r.cols = append(r.cols, col)
	}
	r.vals[col] = v
	return r
}

// Get returns the value for a column and whether the column is present.
func (r *Row) Get(col string) (interface{}, bool) {
	if r == nil || r.vals == nil {
		return nil, false
	}
	v, ok := r.vals[col]
	return v, ok
}

// Has reports whether the column is present on this row.
func (r *Row) Has(col string) bool {
	_, ok := r.Get(col)
	return ok
}

// Columns returns the column names in insertion order.
func (r *Row) Columns() []string {
	if r == nil {
		return nil
	}
	return r.cols
}

// Len returns the number of columns on this row.
func (r *Row) Len() int {
	if r == nil {
		return 0
	}
	return len(r.cols)
}

// MarshalJSON encodes the row as a JSON object preserving column order.
func (r *Row) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, col := range r.cols {
		if i > 0 {
			buf.WriteByte(',')
		}
		key, err := json.Marshal(col)
		if err != nil {
			return nil, err
		}
		buf.Write(key)
		buf.WriteByte(':')
		val, err := json.Marshal(r.vals[col])
		if err != nil {
			return nil, err
		}
		buf.Write(val)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// UnmarshalJSON decodes a JSON object into the row, preserving the key order
// of the document. Numbers are kept as json.Number so numeric precision
// survives until key normalization.
func (r *Row) UnmarshalJSON(data []byte) error {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()

	tok, err := dec.Token()
	if err != nil {
		return err
	}
	if delim, ok := tok.(json.Delim); !ok || delim != '{' {
		return fmt.Errorf("row must be a JSON object, got %v", tok)
	}

	r.cols = nil
	r.vals = make(map[string]interface{})

	for dec.More() {
		keyTok, err := dec.Token()
		if err != nil {
			return err
		}
		key, ok := keyTok.(string)
		if !ok {
			return fmt.Errorf("invalid object key %v", keyTok)
		}
		var v interface{}
		if err := dec.Decode(&v); err != nil {
			return err
		}
		r.Set(key, v)
	}

	// Consume the closing brace.
	if _, err := dec.Token(); err != nil {
		return err
	}
	return nil
}
