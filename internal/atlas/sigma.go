package atlas

import (
	"fmt"
	"strings"

	"github.com/shaunharker/conley-morse-database/internal/model"
)

// Signature is a bit tuple, one '0' or '1' per source in declared order.
// The empty signature belongs to variables without sources.
type Signature string

// String renders the signature as comma-separated bits, e.g. "0,1".
func (s Signature) String() string {
	if s == "" {
		return ""
	}
	return strings.Join(strings.Split(string(s), ""), ",")
}

// Bits returns the signature as integers.
func (s Signature) Bits() []int {
	bits := make([]int, len(s))
	for i := 0; i < len(s); i++ {
		if s[i] == '1' {
			bits[i] = 1
		}
	}
	return bits
}

// signatureOf converts a pattern of 0/1 integers into a Signature.
func signatureOf(pattern []int) (Signature, error) {
	var b strings.Builder
	b.Grow(len(pattern))
	for i, bit := range pattern {
		switch bit {
		case 0:
			b.WriteByte('0')
		case 1:
			b.WriteByte('1')
		default:
			return "", fmt.Errorf("bit %d is %d, want 0 or 1", i, bit)
		}
	}
	return Signature(b.String()), nil
}

// Amplitude is the (lower, upper) amplitude pair of one map entry.
type Amplitude struct {
	Lower float64
	Upper float64
}

// InteractionMap maps every declared signature of a target to its amplitudes.
type InteractionMap map[Signature]Amplitude

// NewInteractionMap validates and indexes v.Map.
//
// Errors:
//   - InvalidModelError: empty map, pattern length != len(v.Sources),
//     non-binary bit, duplicate pattern, lower > upper
//   - InvalidBoundsError: non-finite amplitude
func NewInteractionMap(v model.Variable) (InteractionMap, error) {
	if len(v.Map) == 0 {
		return nil, &InvalidModelError{Variable: v.Name, Field: "map", Message: "at least one entry is required"}
	}

	m := make(InteractionMap, len(v.Map))
	for i, e := range v.Map {
		field := fmt.Sprintf("map[%d]", i)
		if len(e.Pattern) != len(v.Sources) {
			return nil, &InvalidModelError{
				Variable: v.Name,
				Field:    field,
				Message:  fmt.Sprintf("pattern has %d bits, want %d (one per source)", len(e.Pattern), len(v.Sources)),
			}
		}
		sig, err := signatureOf(e.Pattern)
		if err != nil {
			return nil, &InvalidModelError{Variable: v.Name, Field: field, Message: err.Error()}
		}
		if _, dup := m[sig]; dup {
			return nil, &InvalidModelError{Variable: v.Name, Field: field, Message: fmt.Sprintf("duplicate pattern (%s)", sig)}
		}
		if !isFinite(e.Lower) {
			return nil, &InvalidBoundsError{Variable: v.Name, Field: field + ".lower", Value: e.Lower, Reason: "must be finite"}
		}
		if !isFinite(e.Upper) {
			return nil, &InvalidBoundsError{Variable: v.Name, Field: field + ".upper", Value: e.Upper, Reason: "must be finite"}
		}
		if e.Lower > e.Upper {
			return nil, &InvalidModelError{Variable: v.Name, Field: field, Message: "lower amplitude exceeds upper amplitude"}
		}
		m[sig] = Amplitude{Lower: e.Lower, Upper: e.Upper}
	}
	return m, nil
}

// MaxEnumeratedSources bounds the 2^k walk of InteractionMap.Missing.
const MaxEnumeratedSources = 20

// Missing returns the signatures over k sources that m does not cover,
// in ascending binary order. Maps over more than MaxEnumeratedSources
// sources are not enumerated and yield nil.
func (m InteractionMap) Missing(k int) []Signature {
	if k > MaxEnumeratedSources {
		return nil
	}
	var out []Signature
	total := 1 << k
	bits := make([]byte, k)
	for code := 0; code < total; code++ {
		// most significant bit is the first source
		for i := 0; i < k; i++ {
			bits[i] = '0'
			if code&(1<<(k-1-i)) != 0 {
				bits[i] = '1'
			}
		}
		if _, ok := m[Signature(bits)]; !ok {
			out = append(out, Signature(bits))
		}
	}
	return out
}

// Resolver derives sigma intervals. It holds no mutable state and is safe
// for concurrent use.
type Resolver struct {
	in    *Interaction
	maps  []InteractionMap
	delta float64
}

// NewResolver builds a resolver over an interaction and one map per variable.
// delta widens every interval by ±delta/2.
func NewResolver(in *Interaction, maps []InteractionMap, delta float64) *Resolver {
	return &Resolver{in: in, maps: maps, delta: delta}
}

// Signature computes the signature of box for target: bit i is 1 iff the
// midpoint of source i exceeds its threshold on target.
func (r *Resolver) Signature(box Box, target int) Signature {
	sources := r.in.Sources[target]
	bits := make([]byte, len(sources))
	for k, i := range sources {
		bits[k] = '0'
		if box[i].Mid() > r.in.Thresholds.At(target, i) {
			bits[k] = '1'
		}
	}
	return Signature(bits)
}

// Resolve returns the sigma interval of every variable in region idx.
func (r *Resolver) Resolve(idx int, box Box) ([]Interval, error) {
	half := r.delta / 2
	sigma := make([]Interval, len(r.maps))
	for j := range r.maps {
		sig := r.Signature(box, j)
		amp, ok := r.maps[j][sig]
		if !ok {
			return nil, &UnresolvedSignatureError{Region: idx, Variable: r.in.Names[j], Signature: sig}
		}
		pr := r.in.Production[j]
		sigma[j] = Interval{Lo: amp.Lower + pr - half, Hi: amp.Upper + pr + half}
	}
	return sigma, nil
}
