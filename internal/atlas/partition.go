package atlas

import (
	"sort"
)

// Interval is the half-open interval [Lo, Hi).
type Interval struct {
	Lo float64 `json:"lo"`
	Hi float64 `json:"hi"`
}

// Mid returns the midpoint of the interval.
func (iv Interval) Mid() float64 {
	return 0.5 * (iv.Lo + iv.Hi)
}

// Width returns Hi - Lo.
func (iv Interval) Width() float64 {
	return iv.Hi - iv.Lo
}

// Partition is an ordered sequence of adjacent intervals covering [0, upper).
type Partition []Interval

// NewPartition builds the partition of [0, upper) induced by thresholds.
//
// Thresholds may be unsorted and may repeat; zero entries mean "no
// influence" and are skipped. Every remaining threshold must lie strictly
// inside (0, upper), so no interval is ever degenerate.
//
// Errors: InvalidBoundsError (Variable left empty for the caller to fill).
func NewPartition(thresholds []float64, upper float64) (Partition, error) {
	if !isFinite(upper) || upper <= 0 {
		return nil, &InvalidBoundsError{Field: "upper_bound", Value: upper, Reason: "must exceed lower bound 0"}
	}

	cuts := make([]float64, 0, len(thresholds))
	for _, th := range thresholds {
		if th == 0 {
			continue
		}
		if !isFinite(th) || th < 0 {
			return nil, &InvalidBoundsError{Field: "threshold", Value: th, Reason: "must be finite and strictly positive"}
		}
		if th >= upper {
			return nil, &InvalidBoundsError{Field: "threshold", Value: th, Reason: "must lie below the upper bound"}
		}
		cuts = append(cuts, th)
	}
	sort.Float64s(cuts)
	cuts = dedupSorted(cuts)

	// 0, cuts..., upper
	p := make(Partition, 0, len(cuts)+1)
	lo := 0.0
	for _, c := range cuts {
		p = append(p, Interval{Lo: lo, Hi: c})
		lo = c
	}
	p = append(p, Interval{Lo: lo, Hi: upper})
	return p, nil
}

// Thresholds returns the interior boundaries of the partition.
func (p Partition) Thresholds() []float64 {
	if len(p) == 0 {
		return nil
	}
	out := make([]float64, 0, len(p)-1)
	for _, iv := range p[1:] {
		out = append(out, iv.Lo)
	}
	return out
}

// Boundaries returns every boundary, 0 and the upper bound included.
func (p Partition) Boundaries() []float64 {
	if len(p) == 0 {
		return nil
	}
	out := make([]float64, 0, len(p)+1)
	for _, iv := range p {
		out = append(out, iv.Lo)
	}
	return append(out, p[len(p)-1].Hi)
}

func dedupSorted(xs []float64) []float64 {
	if len(xs) < 2 {
		return xs
	}
	out := xs[:1]
	for _, x := range xs[1:] {
		if x != out[len(out)-1] {
			out = append(out, x)
		}
	}
	return out
}
