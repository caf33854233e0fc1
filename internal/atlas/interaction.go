package atlas

import (
	"math"

	"github.com/shaunharker/conley-morse-database/internal/model"
)

// ThresholdMatrix is an immutable N×N row-major matrix.
// Entry (target, source) is the threshold at which source switches its
// influence on target; 0 means no direct influence.
type ThresholdMatrix struct {
	n    int
	data []float64 // len == n*n, offset = target*n + source
}

func newThresholdMatrix(n int) *ThresholdMatrix {
	return &ThresholdMatrix{n: n, data: make([]float64, n*n)}
}

// Dim returns N.
func (m *ThresholdMatrix) Dim() int {
	return m.n
}

// At returns entry (target, source). Indices out of range panic.
func (m *ThresholdMatrix) At(target, source int) float64 {
	return m.data[target*m.n+source]
}

// Row returns a copy of the thresholds governing target.
func (m *ThresholdMatrix) Row(target int) []float64 {
	row := make([]float64, m.n)
	copy(row, m.data[target*m.n:(target+1)*m.n])
	return row
}

// Column returns a copy of the thresholds at which any target reacts to source.
func (m *ThresholdMatrix) Column(source int) []float64 {
	col := make([]float64, m.n)
	for i := 0; i < m.n; i++ {
		col[i] = m.data[i*m.n+source]
	}
	return col
}

// Interaction is the output of the interaction matrix builder.
type Interaction struct {
	Names      []string
	Thresholds *ThresholdMatrix

	// Sources[j] lists the source indices of target j in declared order.
	Sources [][]int

	Production []float64
}

// BuildInteraction converts per-variable source lists and thresholds into
// a ThresholdMatrix.
//
// Errors:
//   - InvalidModelError: empty model, duplicate variable name, a target
//     listing the same source twice
//   - UnknownVariableError: a source name that is not declared
//   - InvalidBoundsError: non-finite production rate, threshold not finite
//     and strictly positive
func BuildInteraction(spec *model.Spec) (*Interaction, error) {
	if spec == nil || len(spec.Variables) == 0 {
		return nil, &InvalidModelError{Field: "variables", Message: "at least one variable is required"}
	}

	n := len(spec.Variables)
	index := make(map[string]int, n)
	for i, v := range spec.Variables {
		if v.Name == "" {
			return nil, &InvalidModelError{Field: "name", Message: "variable name must be non-empty"}
		}
		if _, dup := index[v.Name]; dup {
			return nil, &InvalidModelError{Variable: v.Name, Field: "name", Message: "duplicate variable name"}
		}
		index[v.Name] = i
	}

	in := &Interaction{
		Names:      spec.Names(),
		Thresholds: newThresholdMatrix(n),
		Sources:    make([][]int, n),
		Production: make([]float64, n),
	}

	for j, v := range spec.Variables {
		if !isFinite(v.Production) {
			return nil, &InvalidBoundsError{Variable: v.Name, Field: "production", Value: v.Production, Reason: "must be finite"}
		}
		in.Production[j] = v.Production

		in.Sources[j] = make([]int, 0, len(v.Sources))
		for _, src := range v.Sources {
			i, ok := index[src.Name]
			if !ok {
				return nil, &UnknownVariableError{Target: v.Name, Source: src.Name}
			}
			if !isFinite(src.Threshold) || src.Threshold <= 0 {
				return nil, &InvalidBoundsError{
					Variable: v.Name,
					Field:    "threshold[" + src.Name + "]",
					Value:    src.Threshold,
					Reason:   "must be finite and strictly positive",
				}
			}
			if in.Thresholds.At(j, i) != 0 {
				return nil, &InvalidModelError{
					Variable: v.Name,
					Field:    "sources",
					Message:  "source " + src.Name + " listed more than once",
				}
			}
			in.Thresholds.data[j*n+i] = src.Threshold
			in.Sources[j] = append(in.Sources[j], i)
		}
	}

	return in, nil
}

func isFinite(f float64) bool {
	return !math.IsNaN(f) && !math.IsInf(f, 0)
}
