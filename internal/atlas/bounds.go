package atlas

import (
	"math"

	"github.com/shaunharker/conley-morse-database/internal/model"
)

// UpperBounds returns the phase-space upper bound of every variable.
//
// An explicit UpperBound is used verbatim. Otherwise the bound is
//
//	safety × (max upper amplitude + production) / min(|decay.lower|, |decay.upper|)
//
// i.e. the largest steady state any box can push the variable towards,
// divided by the slowest admissible decay. Lower bounds are always 0.
func UpperBounds(spec *model.Spec) ([]float64, error) {
	safety := spec.EffectiveSafetyFactor()
	if !isFinite(safety) || safety <= 0 {
		return nil, &InvalidBoundsError{Field: "safety_factor", Value: safety, Reason: "must be finite and strictly positive"}
	}

	upper := make([]float64, len(spec.Variables))
	for j, v := range spec.Variables {
		if err := checkDecay(v); err != nil {
			return nil, err
		}

		if v.UpperBound != nil {
			ub := *v.UpperBound
			if !isFinite(ub) || ub <= 0 {
				return nil, &InvalidBoundsError{Variable: v.Name, Field: "upper_bound", Value: ub, Reason: "must exceed lower bound 0"}
			}
			upper[j] = ub
			continue
		}

		if len(v.Map) == 0 {
			return nil, &InvalidModelError{Variable: v.Name, Field: "map", Message: "at least one entry is required"}
		}
		maxAmp := math.Inf(-1)
		for _, e := range v.Map {
			if !isFinite(e.Upper) {
				return nil, &InvalidBoundsError{Variable: v.Name, Field: "map.upper", Value: e.Upper, Reason: "must be finite"}
			}
			maxAmp = math.Max(maxAmp, e.Upper)
		}

		rate := math.Min(math.Abs(v.Decay.Lower), math.Abs(v.Decay.Upper))
		ub := safety * (maxAmp + v.Production) / rate
		if !isFinite(ub) || ub <= 0 {
			return nil, &InvalidBoundsError{
				Variable: v.Name,
				Field:    "upper_bound",
				Value:    ub,
				Reason:   "derived bound must exceed lower bound 0",
			}
		}
		upper[j] = ub
	}
	return upper, nil
}

// checkDecay requires a finite, strictly negative decay interval.
func checkDecay(v model.Variable) error {
	d := v.Decay
	if !isFinite(d.Lower) || d.Lower >= 0 {
		return &InvalidBoundsError{Variable: v.Name, Field: "decay.lower", Value: d.Lower, Reason: "must be finite and strictly negative"}
	}
	if !isFinite(d.Upper) || d.Upper >= 0 {
		return &InvalidBoundsError{Variable: v.Name, Field: "decay.upper", Value: d.Upper, Reason: "must be finite and strictly negative"}
	}
	if d.Lower > d.Upper {
		return &InvalidBoundsError{Variable: v.Name, Field: "decay.lower", Value: d.Lower, Reason: "must not exceed decay.upper"}
	}
	return nil
}
