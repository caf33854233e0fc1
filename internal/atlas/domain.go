package atlas

import (
	"errors"
	"fmt"
	"math"
	"strings"
)

// Ordering fixes how the Cartesian product of partitions is linearized.
type Ordering int

const (
	// FirstFastest varies the first variable's interval fastest.
	FirstFastest Ordering = iota

	// LastFastest is row-major: the last variable varies fastest.
	LastFastest
)

// String returns the flag spelling of the ordering.
func (o Ordering) String() string {
	switch o {
	case FirstFastest:
		return "first-fastest"
	case LastFastest:
		return "last-fastest"
	default:
		return fmt.Sprintf("Ordering(%d)", int(o))
	}
}

// ParseOrdering parses "first-fastest" or "last-fastest".
func ParseOrdering(s string) (Ordering, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "first-fastest":
		return FirstFastest, nil
	case "last-fastest":
		return LastFastest, nil
	default:
		return 0, fmt.Errorf("invalid ordering %q: must be first-fastest or last-fastest", s)
	}
}

// Box is one region: an interval per variable.
type Box []Interval

// Lower returns the lower corner of the box.
func (b Box) Lower() []float64 {
	out := make([]float64, len(b))
	for i, iv := range b {
		out[i] = iv.Lo
	}
	return out
}

// Upper returns the upper corner of the box.
func (b Box) Upper() []float64 {
	out := make([]float64, len(b))
	for i, iv := range b {
		out[i] = iv.Hi
	}
	return out
}

// Volume returns the product of the box widths.
func (b Box) Volume() float64 {
	v := 1.0
	for _, iv := range b {
		v *= iv.Width()
	}
	return v
}

// Domain is the product of one Partition per variable.
type Domain struct {
	Partitions []Partition
	ordering   Ordering
	count      int
}

// NewDomain builds the partition of every variable from column j of the
// threshold matrix (the thresholds at which targets react to variable j).
func NewDomain(m *ThresholdMatrix, names []string, upper []float64, ordering Ordering) (*Domain, error) {
	n := m.Dim()
	if len(upper) != n || len(names) != n {
		return nil, &InvalidModelError{Field: "dimension", Message: "names, bounds and matrix disagree on the variable count"}
	}

	d := &Domain{Partitions: make([]Partition, n), ordering: ordering, count: 1}
	for j := 0; j < n; j++ {
		p, err := NewPartition(m.Column(j), upper[j])
		if err != nil {
			var ibe *InvalidBoundsError
			if errors.As(err, &ibe) {
				ibe.Variable = names[j]
			}
			return nil, err
		}
		if d.count > math.MaxInt32/len(p) {
			return nil, &InvalidModelError{Field: "regions", Message: "region count overflows"}
		}
		d.Partitions[j] = p
		d.count *= len(p)
	}
	return d, nil
}

// Count returns the number of regions: the product of partition sizes.
func (d *Domain) Count() int {
	return d.count
}

// Ordering returns the linearization of the product.
func (d *Domain) Ordering() Ordering {
	return d.ordering
}

// Box decodes region idx into its intervals. Safe for concurrent use.
func (d *Domain) Box(idx int) Box {
	n := len(d.Partitions)
	box := make(Box, n)
	rest := idx
	for step := 0; step < n; step++ {
		axis := step
		if d.ordering == LastFastest {
			axis = n - 1 - step
		}
		p := d.Partitions[axis]
		box[axis] = p[rest%len(p)]
		rest /= len(p)
	}
	return box
}

// Boxes enumerates every region in product order.
func (d *Domain) Boxes() []Box {
	out := make([]Box, d.count)
	for i := range out {
		out[i] = d.Box(i)
	}
	return out
}

// MarshalText implements encoding.TextMarshaler.
func (o Ordering) MarshalText() ([]byte, error) {
	return []byte(o.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (o *Ordering) UnmarshalText(b []byte) error {
	parsed, err := ParseOrdering(string(b))
	if err != nil {
		return err
	}
	*o = parsed
	return nil
}
