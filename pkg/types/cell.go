package types

import (
	"bytes"
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"time"
)

// CellKind identifies the type carried by a CellValue.
type CellKind uint8

const (
	CellNull CellKind = iota
	CellBool
	CellNumber
	CellString
)

// CellValue is the tagged value type used in merged output.
// A cell is exactly one of null, boolean, number or string; richer source
// values are reduced to a string before they reach a cell.
type CellValue struct {
	Kind   CellKind
	Bool   bool
	Number float64
	Str    string
}

// NullCell returns the null cell.
func NullCell() CellValue {
	return CellValue{Kind: CellNull}
}

// BoolCell returns a boolean cell.
func BoolCell(b bool) CellValue {
	return CellValue{Kind: CellBool, Bool: b}
}

// NumberCell returns a numeric cell.
func NumberCell(f float64) CellValue {
	return CellValue{Kind: CellNumber, Number: f}
}

// StringCell returns a string cell.
func StringCell(s string) CellValue {
	return CellValue{Kind: CellString, Str: s}
}

// IsNull reports whether the cell is null.
func (c CellValue) IsNull() bool {
	return c.Kind == CellNull
}

// CellFromAny reduces an arbitrary value to a CellValue.
// Primitives pass through; non-finite floats and everything else become
// strings (JSON where possible, %v as the last resort).
func CellFromAny(v interface{}) CellValue {
	switch val := v.(type) {
	case nil:
		return NullCell()
	case CellValue:
		return val
	case bool:
		return BoolCell(val)
	case float64:
		if math.IsNaN(val) || math.IsInf(val, 0) {
			return StringCell(formatFloat(val))
		}
		return NumberCell(val)
	case float32:
		return CellFromAny(float64(val))
	case int:
		return NumberCell(float64(val))
	case int8:
		return NumberCell(float64(val))
	case int16:
		return NumberCell(float64(val))
	case int32:
		return NumberCell(float64(val))
	case int64:
		return NumberCell(float64(val))
	case uint:
		return NumberCell(float64(val))
	case uint8:
		return NumberCell(float64(val))
	case uint16:
		return NumberCell(float64(val))
	case uint32:
		return NumberCell(float64(val))
	case uint64:
		return NumberCell(float64(val))
	case json.Number:
		if f, err := val.Float64(); err == nil && !math.IsNaN(f) && !math.IsInf(f, 0) {
			return NumberCell(f)
		}
		return StringCell(val.String())
	case string:
		return StringCell(val)
	case time.Time:
		return StringCell(val.Format(time.RFC3339))
	case []byte:
		return StringCell(string(val))
	default:
		if b, err := json.Marshal(v); err == nil {
			return StringCell(string(b))
		}
		return StringCell(fmt.Sprintf("%v", v))
	}
}

// String renders the cell for text output. Null renders as "NULL".
func (c CellValue) String() string {
	switch c.Kind {
	case CellBool:
		return strconv.FormatBool(c.Bool)
	case CellNumber:
		return formatFloat(c.Number)
	case CellString:
		return c.Str
	default:
		return "NULL"
	}
}

// MarshalJSON encodes the cell as a bare JSON value.
func (c CellValue) MarshalJSON() ([]byte, error) {
	switch c.Kind {
	case CellBool:
		return json.Marshal(c.Bool)
	case CellNumber:
		return json.Marshal(c.Number)
	case CellString:
		return json.Marshal(c.Str)
	default:
		return []byte("null"), nil
	}
}

// UnmarshalJSON decodes a bare JSON value into the matching cell kind.
func (c *CellValue) UnmarshalJSON(data []byte) error {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()
	var v interface{}
	if err := dec.Decode(&v); err != nil {
		return err
	}
	*c = CellFromAny(v)
	return nil
}

func formatFloat(f float64) string {
	return strconv.FormatFloat(f, 'g', -1, 64)
}
