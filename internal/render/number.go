package render

import (
	"math"
	"strconv"
	"strings"
)

// FormatFloat renders f the way the reference generator prints numbers:
// the shortest round-trip decimal, a trailing ".0" on integral values, and
// exponent notation outside [1e-4, 1e16).
func FormatFloat(f float64) string {
	switch {
	case math.IsNaN(f):
		return "nan"
	case math.IsInf(f, 1):
		return "inf"
	case math.IsInf(f, -1):
		return "-inf"
	}

	abs := math.Abs(f)
	if abs != 0 && (abs < 1e-4 || abs >= 1e16) {
		return strconv.FormatFloat(f, 'e', -1, 64)
	}

	s := strconv.FormatFloat(f, 'f', -1, 64)
	if !strings.ContainsRune(s, '.') {
		s += ".0"
	}
	return s
}

// Vector is a list of numbers written as one whitespace-separated text node.
type Vector []float64

// MarshalText implements encoding.TextMarshaler.
func (v Vector) MarshalText() ([]byte, error) {
	parts := make([]string, len(v))
	for i, f := range v {
		parts[i] = FormatFloat(f)
	}
	return []byte(strings.Join(parts, " ")), nil
}

// String returns the text form of v.
func (v Vector) String() string {
	b, _ := v.MarshalText()
	return string(b)
}

// UnmarshalText implements encoding.TextUnmarshaler. Surrounding and
// repeated whitespace is ignored.
func (v *Vector) UnmarshalText(b []byte) error {
	fields := strings.Fields(string(b))
	out := make(Vector, len(fields))
	for i, field := range fields {
		f, err := strconv.ParseFloat(field, 64)
		if err != nil {
			return err
		}
		out[i] = f
	}
	*v = out
	return nil
}
