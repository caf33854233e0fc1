package compiler

import (
	"errors"
	"fmt"
	"math"
	"strings"

	"github.com/shaunharker/conley-morse-database/internal/atlas"
	"github.com/shaunharker/conley-morse-database/internal/model"
)

// Validation error codes (E200-E299)
const (
	// Model-wide errors (E200-E209)
	ErrNoVariables         = "E200" // at least one variable required
	ErrInvalidSafetyFactor = "E201" // safety factor must be positive and finite
	ErrInvalidDelta        = "E202" // delta must be non-negative and finite

	// Variable errors (E210-E219)
	ErrEmptyName         = "E210" // variable or source name is empty
	ErrDuplicateVariable = "E211" // duplicate variable name
	ErrInvalidDecay      = "E212" // decay interval not strictly negative
	ErrInvalidUpperBound = "E213" // explicit or derived upper bound not positive
	ErrInvalidProduction = "E214" // production rate not finite

	// Source errors (E220-E229)
	ErrUnknownSource       = "E220" // source names an undeclared variable
	ErrDuplicateSource     = "E221" // same source listed twice
	ErrInvalidThreshold    = "E222" // threshold not finite and positive
	ErrThresholdOutOfRange = "E223" // threshold at or above the source's upper bound

	// Interaction map errors (E230-E239)
	ErrEmptyMap         = "E230" // no map entries
	ErrPatternLength    = "E231" // pattern length != number of sources
	ErrPatternBits      = "E232" // pattern bit not 0 or 1
	ErrDuplicatePattern = "E233" // same pattern listed twice
	ErrAmplitudeOrder   = "E234" // lower amplitude exceeds upper
	ErrInvalidAmplitude = "E235" // amplitude not finite
	ErrMapIncomplete    = "E236" // some signatures have no entry
)

// ValidationError represents a model validation finding.
type ValidationError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
	Code    string `json:"code"`
}

// Error implements the error interface.
func (e ValidationError) Error() string {
	return fmt.Sprintf("[%s] %s: %s", e.Code, e.Field, e.Message)
}

// Validate checks a compiled model against the rules the atlas builder
// enforces, plus completeness of every interaction map.
// Returns all errors found (does not fail-fast).
func Validate(spec *model.Spec) []ValidationError {
	var errs []ValidationError
	add := func(code, field, format string, args ...any) {
		errs = append(errs, ValidationError{Field: field, Message: fmt.Sprintf(format, args...), Code: code})
	}

	// E200: at least one variable
	if len(spec.Variables) == 0 {
		add(ErrNoVariables, "variables", "at least one variable is required")
		return errs
	}

	if sf := spec.SafetyFactor; !finite(sf) || sf < 0 {
		add(ErrInvalidSafetyFactor, "safety_factor", "must be finite and strictly positive, got %v", sf)
	}
	if !finite(spec.Delta) || spec.Delta < 0 {
		add(ErrInvalidDelta, "delta", "must be finite and non-negative, got %v", spec.Delta)
	}

	declared := make(map[string]bool, len(spec.Variables))
	for i, v := range spec.Variables {
		field := fmt.Sprintf("variables[%d].name", i)
		if strings.TrimSpace(v.Name) == "" {
			add(ErrEmptyName, field, "variable name is required and must be non-empty")
			continue
		}
		if declared[v.Name] {
			add(ErrDuplicateVariable, field, "duplicate variable name: %q", v.Name)
		}
		declared[v.Name] = true
	}

	for i, v := range spec.Variables {
		errs = append(errs, validateVariable(i, v, declared)...)
	}

	// Thresholds can only be checked against bounds once the rest is sound.
	if len(errs) == 0 {
		errs = append(errs, validateRanges(spec)...)
	}
	return errs
}

func validateVariable(i int, v model.Variable, declared map[string]bool) []ValidationError {
	var errs []ValidationError
	prefix := fmt.Sprintf("variables[%d]", i)
	add := func(code, field, format string, args ...any) {
		errs = append(errs, ValidationError{Field: prefix + "." + field, Message: fmt.Sprintf(format, args...), Code: code})
	}

	if !finite(v.Production) {
		add(ErrInvalidProduction, "production", "must be finite, got %v", v.Production)
	}

	// E212: decay rates are strictly negative and ordered
	d := v.Decay
	switch {
	case !finite(d.Lower) || !finite(d.Upper) || d.Lower >= 0 || d.Upper >= 0:
		add(ErrInvalidDecay, "decay", "bounds must be finite and strictly negative, got [%v, %v]", d.Lower, d.Upper)
	case d.Lower > d.Upper:
		add(ErrInvalidDecay, "decay", "lower %v exceeds upper %v", d.Lower, d.Upper)
	}

	if v.UpperBound != nil {
		if ub := *v.UpperBound; !finite(ub) || ub <= 0 {
			add(ErrInvalidUpperBound, "upper_bound", "must be finite and strictly positive, got %v", ub)
		}
	}

	seen := make(map[string]bool, len(v.Sources))
	for k, src := range v.Sources {
		field := fmt.Sprintf("sources[%d]", k)
		switch {
		case src.Name == "":
			add(ErrEmptyName, field+".name", "source name is required")
		case !declared[src.Name]:
			add(ErrUnknownSource, field+".name", "variable %q depends on unknown variable %q", v.Name, src.Name)
		case seen[src.Name]:
			add(ErrDuplicateSource, field+".name", "source %q listed more than once", src.Name)
		}
		seen[src.Name] = true

		if !finite(src.Threshold) || src.Threshold <= 0 {
			add(ErrInvalidThreshold, field+".threshold", "must be finite and strictly positive, got %v", src.Threshold)
		}
	}

	errs = append(errs, validateMap(prefix, v)...)
	return errs
}

func validateMap(prefix string, v model.Variable) []ValidationError {
	var errs []ValidationError
	add := func(code, field, format string, args ...any) {
		errs = append(errs, ValidationError{Field: prefix + "." + field, Message: fmt.Sprintf(format, args...), Code: code})
	}

	if len(v.Map) == 0 {
		add(ErrEmptyMap, "map", "at least one entry is required")
		return errs
	}

	k := len(v.Sources)
	patterns := make(map[string]bool, len(v.Map))
	for i, e := range v.Map {
		field := fmt.Sprintf("map[%d]", i)
		if len(e.Pattern) != k {
			add(ErrPatternLength, field+".pattern", "has %d bits, want %d (one per source)", len(e.Pattern), k)
		}
		for _, bit := range e.Pattern {
			if bit != 0 && bit != 1 {
				add(ErrPatternBits, field+".pattern", "bit %d is not 0 or 1", bit)
				break
			}
		}
		key := fmt.Sprint(e.Pattern)
		if patterns[key] {
			add(ErrDuplicatePattern, field+".pattern", "duplicate pattern %v", e.Pattern)
		}
		patterns[key] = true

		switch {
		case !finite(e.Lower) || !finite(e.Upper):
			add(ErrInvalidAmplitude, field, "amplitudes must be finite, got [%v, %v]", e.Lower, e.Upper)
		case e.Lower > e.Upper:
			add(ErrAmplitudeOrder, field, "lower %v exceeds upper %v", e.Lower, e.Upper)
		}
	}
	if len(errs) > 0 {
		return errs
	}

	// E236: every signature over the sources needs an entry
	im, err := atlas.NewInteractionMap(v)
	if err != nil {
		add(ErrPatternLength, "map", "%v", err)
		return errs
	}
	if missing := im.Missing(k); len(missing) > 0 {
		labels := make([]string, len(missing))
		for i, sig := range missing {
			labels[i] = "(" + sig.String() + ")"
		}
		add(ErrMapIncomplete, "map", "no entry for signature(s) %s", strings.Join(labels, " "))
	}
	return errs
}

// validateRanges derives the phase-space bounds and checks every threshold
// lies strictly inside its source's range.
func validateRanges(spec *model.Spec) []ValidationError {
	var errs []ValidationError

	upper, err := atlas.UpperBounds(spec)
	if err != nil {
		field := "upper_bound"
		var ibe *atlas.InvalidBoundsError
		if errors.As(err, &ibe) && ibe.Variable != "" {
			if idx, ok := spec.Lookup(ibe.Variable); ok {
				field = fmt.Sprintf("variables[%d].upper_bound", idx)
			}
		}
		return append(errs, ValidationError{Field: field, Message: err.Error(), Code: ErrInvalidUpperBound})
	}

	for i, v := range spec.Variables {
		for k, src := range v.Sources {
			j, _ := spec.Lookup(src.Name)
			if src.Threshold >= upper[j] {
				errs = append(errs, ValidationError{
					Field:   fmt.Sprintf("variables[%d].sources[%d].threshold", i, k),
					Message: fmt.Sprintf("threshold %v on %q must lie below its upper bound %v", src.Threshold, src.Name, upper[j]),
					Code:    ErrThresholdOutOfRange,
				})
			}
		}
	}
	return errs
}

func finite(f float64) bool {
	return !math.IsNaN(f) && !math.IsInf(f, 0)
}
