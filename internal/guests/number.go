package guests

import (
	"bytes"
	"encoding/json"
	"math"
	"strconv"
	"strings"
)

// Number is a leniently decoded JSON value. Numbers and numeric strings are kept;
// anything else (null, booleans, objects, garbage text) decodes as unset.
type Number struct {
	value float64
	set   bool
}

// NumberOf returns a Number holding v.
func NumberOf(v float64) Number {
	return Number{value: v, set: true}
}

// ParseNumber interprets s the way a JSON string field is interpreted.
func ParseNumber(s string) Number {
	s = strings.TrimSpace(s)
	if s == "" {
		return Number{}
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return Number{}
	}
	return NumberOf(v)
}

// UnmarshalJSON never fails.
func (n *Number) UnmarshalJSON(data []byte) error {
	*n = decodeNumber(data)
	return nil
}

// MarshalJSON writes the held value or null.
func (n Number) MarshalJSON() ([]byte, error) {
	if !n.set || math.IsNaN(n.value) || math.IsInf(n.value, 0) {
		return []byte("null"), nil
	}
	return json.Marshal(n.value)
}

// Int rounds the held value half away from zero, or returns def when the value is
// unset or not finite.
func (n Number) Int(def int) int {
	if !n.set || math.IsNaN(n.value) || math.IsInf(n.value, 0) {
		return def
	}
	v := math.Round(n.value)
	switch {
	case v > math.MaxInt32:
		return math.MaxInt32
	case v < math.MinInt32:
		return math.MinInt32
	}
	return int(v)
}

func decodeNumber(data []byte) Number {
	data = bytes.TrimSpace(data)
	if len(data) == 0 {
		return Number{}
	}

	switch data[0] {
	case '"':
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return Number{}
		}
		return ParseNumber(s)
	case '-', '0', '1', '2', '3', '4', '5', '6', '7', '8', '9':
		v, err := strconv.ParseFloat(string(data), 64)
		if err != nil {
			return Number{}
		}
		return NumberOf(v)
	default:
		return Number{}
	}
}

// decodeText returns data as a string when it is a JSON string and "" otherwise.
func decodeText(data json.RawMessage) string {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return ""
	}
	return strings.TrimSpace(s)
}
