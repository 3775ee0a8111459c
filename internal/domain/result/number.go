package result

import (
	"bytes"
	"encoding/json"
	"math"
	"strconv"
	"strings"
)

// Number is an optional score read leniently from JSON. Numbers and numeric
// strings are accepted. null, booleans, objects, arrays, non-numeric strings
// and non-finite values all decode to an absent Number without error.
// Present records that the key carried a non-null value, numeric or not.
// INVARIANT: Valid implies Present and a finite Value.
type Number struct {
	Value   float64
	Valid   bool
	Present bool
}

// Num returns a present Number.
func Num(v float64) Number {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return Number{}
	}
	return Number{Value: v, Valid: true, Present: true}
}

// UnmarshalJSON implements json.Unmarshaler.
func (n *Number) UnmarshalJSON(b []byte) error {
	*n = Number{}
	b = bytes.TrimSpace(b)
	if len(b) == 0 || bytes.Equal(b, []byte("null")) {
		return nil
	}
	n.Present = true
	var s string
	switch b[0] {
	case '"':
		if err := json.Unmarshal(b, &s); err != nil {
			return nil
		}
		s = strings.TrimSpace(s)
	case '-', '0', '1', '2', '3', '4', '5', '6', '7', '8', '9':
		s = string(b)
	default:
		return nil
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return nil
	}
	*n = Num(v)
	return nil
}

// MarshalJSON writes null for an absent Number.
func (n Number) MarshalJSON() ([]byte, error) {
	if !n.Valid {
		return []byte("null"), nil
	}
	return strconv.AppendFloat(nil, n.Value, 'f', -1, 64), nil
}

// Or returns n if present, else other.
func (n Number) Or(other Number) Number {
	if n.Valid {
		return n
	}
	return other
}

// Coalesce returns n if its key carried any non-null value, else other.
// A present but non-numeric n stays absent rather than falling through.
func (n Number) Coalesce(other Number) Number {
	if n.Present {
		return n
	}
	return other
}

// OrZero returns the value, or 0 when absent.
func (n Number) OrZero() float64 {
	if n.Valid {
		return n.Value
	}
	return 0
}

// ID is a result identifier. The server sends integers; strings are accepted
// so the client never depends on the id's numeric type.
type ID string

// UnmarshalJSON implements json.Unmarshaler.
func (id *ID) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	switch {
	case len(b) == 0 || bytes.Equal(b, []byte("null")):
		*id = ""
	case b[0] == '"':
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return err
		}
		*id = ID(s)
	default:
		var num json.Number
		if err := json.Unmarshal(b, &num); err != nil {
			return err
		}
		*id = ID(num.String())
	}
	return nil
}

// String returns the id as text.
func (id ID) String() string {
	return string(id)
}
