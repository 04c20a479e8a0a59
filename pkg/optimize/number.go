package optimize

import (
	"bytes"
	"encoding/json"
	"math"
	"strconv"
	"strings"
)

// Number is a tableau cell or scalar that may be missing. Missing values, NaN and
// infinities are written as JSON null.
type Number struct {
	Value float64
	Valid bool
}

// N returns a present Number.
func N(v float64) Number { return Number{Value: v, Valid: true} }

// Ptr returns the value as a pointer, nil when missing.
func (n Number) Ptr() *float64 {
	if !n.Valid {
		return nil
	}
	v := n.Value
	return &v
}

func (n Number) MarshalJSON() ([]byte, error) {
	if !n.Valid || math.IsNaN(n.Value) || math.IsInf(n.Value, 0) {
		return []byte("null"), nil
	}
	return json.Marshal(n.Value)
}

// UnmarshalJSON accepts numbers, numeric strings, null and single-element arrays
// (the shape some solvers emit for unboxed scalars).
func (n *Number) UnmarshalJSON(data []byte) error {
	*n = Number{}
	data = unbox(data)
	if isNull(data) {
		return nil
	}
	if data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		v, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
		if err != nil {
			return nil
		}
		*n = N(v)
		return nil
	}
	var v float64
	if err := json.Unmarshal(data, &v); err != nil {
		return err
	}
	*n = N(v)
	return nil
}

func isNull(data []byte) bool {
	data = bytes.TrimSpace(data)
	return len(data) == 0 || bytes.Equal(data, []byte("null"))
}

// unbox strips a single-element array wrapper: [x] → x.
func unbox(data []byte) []byte {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || data[0] != '[' {
		return data
	}
	var elems []json.RawMessage
	if err := json.Unmarshal(data, &elems); err != nil || len(elems) != 1 {
		return data
	}
	return bytes.TrimSpace(elems[0])
}
