package harness

import (
	"fmt"
	"math"
	"strings"

	"github.com/shaunharker/conley-morse-database/internal/atlas"
)

// tolerance is the relative tolerance for comparing expected numbers.
const tolerance = 1e-9

// ExpectationError describes a failed expectation.
type ExpectationError struct {
	Field    string // e.g. "regions", "boxes[3].sigma_lower"
	Expected string
	Actual   string
}

// Error implements the error interface.
func (e *ExpectationError) Error() string {
	var buf strings.Builder
	fmt.Fprintf(&buf, "expectation failed: %s\n", e.Field)
	fmt.Fprintf(&buf, "  expected: %s\n", e.Expected)
	fmt.Fprintf(&buf, "  actual: %s", e.Actual)
	return buf.String()
}

// checkError checks a failed build against the expectation.
func checkError(exp Expectation, result *Result) []string {
	if exp.Error == "" {
		return []string{(&ExpectationError{
			Field:    "build",
			Expected: "success",
			Actual:   result.BuildError.Error(),
		}).Error()}
	}
	if exp.Error != result.ErrorCode {
		return []string{(&ExpectationError{
			Field:    "error",
			Expected: exp.Error,
			Actual:   fmt.Sprintf("%s (%v)", codeOrNone(result.ErrorCode), result.BuildError),
		}).Error()}
	}
	return nil
}

// checkAtlas checks a successful build against the expectation.
// All failures are collected.
func checkAtlas(exp Expectation, a *atlas.Atlas) []string {
	var errs []string
	fail := func(field, expected, actual string) {
		errs = append(errs, (&ExpectationError{Field: field, Expected: expected, Actual: actual}).Error())
	}

	if exp.Error != "" {
		fail("error", exp.Error, "build succeeded")
		return errs
	}

	if exp.Dimension != 0 && exp.Dimension != a.Dimension() {
		fail("dimension", fmt.Sprint(exp.Dimension), fmt.Sprint(a.Dimension()))
	}
	if exp.Regions != 0 && exp.Regions != len(a.Regions) {
		fail("regions", fmt.Sprint(exp.Regions), fmt.Sprint(len(a.Regions)))
	}
	if len(exp.Upper) != 0 && !vectorsMatch(exp.Upper, a.Upper) {
		fail("upper", fmt.Sprint(exp.Upper), fmt.Sprint(a.Upper))
	}

	for i, box := range exp.Boxes {
		if box.Index >= len(a.Regions) {
			fail(fmt.Sprintf("boxes[%d].index", i), fmt.Sprintf("< %d", len(a.Regions)), fmt.Sprint(box.Index))
			continue
		}
		region := a.Regions[box.Index]
		sigmaLo, sigmaHi := split(region.Sigma)
		checks := []struct {
			name     string
			expected []float64
			actual   []float64
		}{
			{"lower", box.Lower, region.Bounds.Lower()},
			{"upper", box.Upper, region.Bounds.Upper()},
			{"sigma_lower", box.SigmaLower, sigmaLo},
			{"sigma_upper", box.SigmaUpper, sigmaHi},
		}
		for _, c := range checks {
			if len(c.expected) != 0 && !vectorsMatch(c.expected, c.actual) {
				fail(fmt.Sprintf("boxes[%d].%s (region %d)", i, c.name, box.Index),
					fmt.Sprint(c.expected), fmt.Sprint(c.actual))
			}
		}
	}

	return errs
}

func split(ivs []atlas.Interval) (lo, hi []float64) {
	lo = make([]float64, len(ivs))
	hi = make([]float64, len(ivs))
	for i, iv := range ivs {
		lo[i], hi[i] = iv.Lo, iv.Hi
	}
	return lo, hi
}

func vectorsMatch(expected, actual []float64) bool {
	if len(expected) != len(actual) {
		return false
	}
	for i := range expected {
		if !closeEnough(expected[i], actual[i]) {
			return false
		}
	}
	return true
}

func closeEnough(a, b float64) bool {
	if a == b {
		return true
	}
	scale := math.Max(1, math.Max(math.Abs(a), math.Abs(b)))
	return math.Abs(a-b) <= tolerance*scale
}

func codeOrNone(code string) string {
	if code == "" {
		return "no error code"
	}
	return code
}
