package merge

import (
	"encoding/json"
	"fmt"
	"math"
	"regexp"
	"strconv"
	"strings"
)

// numericLiteral matches plain decimal numbers: optional leading minus, one or
// more digits, optional fractional part. No thousands separators, no
// scientific notation.
var numericLiteral = regexp.MustCompile(`^-?[0-9]+(\.[0-9]+)?$`)

// NormalizeKey maps a raw value to its canonical comparison key. The second
// return is false when the value is unkeyable (null/absent): such rows can
// never participate in a match, including against each other.
//
// The scheme deliberately unifies numeric-looking strings with numbers, so
// "42", "42.0" and 42 all normalize to the same key.
func NormalizeKey(v interface{}) (string, bool) {
	switch val := v.(type) {
	case nil:
		return "", false
	case bool:
		return "bool:" + strconv.FormatBool(val), true
	case float64:
		return numberKey(val), true
	case float32:
		return numberKey(float64(val)), true
	case int:
		return numberKey(float64(val)), true
	case int8:
		return numberKey(float64(val)), true
	case int16:
		return numberKey(float64(val)), true
	case int32:
		return numberKey(float64(val)), true
	case int64:
		return numberKey(float64(val)), true
	case uint:
		return numberKey(float64(val)), true
	case uint8:
		return numberKey(float64(val)), true
	case uint16:
		return numberKey(float64(val)), true
	case uint32:
		return numberKey(float64(val)), true
	case uint64:
		return numberKey(float64(val)), true
	case json.Number:
		f, err := val.Float64()
		if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
			return "str:" + val.String(), true
		}
		return "num:" + formatNumber(f), true
	case string:
		return stringKey(val), true
	default:
		if b, err := json.Marshal(v); err == nil {
			return "json:" + string(b), true
		}
		return "str:" + fmt.Sprintf("%v", v), true
	}
}

// numberKey builds the key for a native number. Non-finite numbers are not
// numerically comparable and fall back to their string form.
func numberKey(f float64) string {
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return "str:" + formatNumber(f)
	}
	return "num:" + formatNumber(f)
}

// stringKey parses numeric-looking strings into numeric keys; anything else
// keys on the original, untrimmed, case-sensitive string.
func stringKey(s string) string {
	trimmed := strings.TrimSpace(s)
	if numericLiteral.MatchString(trimmed) {
		if f, err := strconv.ParseFloat(trimmed, 64); err == nil && !math.IsInf(f, 0) {
			return "num:" + formatNumber(f)
		}
	}
	return "str:" + s
}

func formatNumber(f float64) string {
	return strconv.FormatFloat(f, 'g', -1, 64)
}
