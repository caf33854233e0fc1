package compiler

import (
	"fmt"
	"strings"

	"cuelang.org/go/cue"
	"cuelang.org/go/cue/errors"
	"cuelang.org/go/cue/token"
	"golang.org/x/text/unicode/norm"

	"github.com/shaunharker/conley-morse-database/internal/model"
)

// CompileModel parses a CUE value into a model.Spec.
//
// The value is unified with the #Model schema first, so unknown fields and
// wrongly typed values are reported with their source position. Names are
// NFC-normalized. Semantic checks are left to Validate.
//
//	ctx := cuecontext.New()
//	v := ctx.CompileString(`model: { name: "toggle", variables: [...] }`)
//	spec, err := CompileModel(v.LookupPath(cue.ParsePath("model")))
func CompileModel(v cue.Value) (*model.Spec, error) {
	if err := v.Err(); err != nil {
		return nil, formatCUEError(err)
	}

	v = Schema(v.Context()).Unify(v)
	if err := v.Validate(cue.Concrete(true)); err != nil {
		return nil, formatCUEError(err)
	}

	spec := &model.Spec{}
	var err error
	if spec.Name, err = lookupName(v, "name"); err != nil {
		return nil, err
	}
	if spec.SafetyFactor, err = lookupFloat(v, "safety_factor"); err != nil {
		return nil, err
	}
	if spec.Delta, err = lookupFloat(v, "delta"); err != nil {
		return nil, err
	}

	iter, err := v.LookupPath(cue.ParsePath("variables")).List()
	if err != nil {
		return nil, formatCUEError(err)
	}
	for iter.Next() {
		variable, err := compileVariable(iter.Value())
		if err != nil {
			return nil, err
		}
		spec.Variables = append(spec.Variables, variable)
	}

	return spec, nil
}

func compileVariable(v cue.Value) (model.Variable, error) {
	var out model.Variable
	var err error

	if out.Name, err = lookupName(v, "name"); err != nil {
		return out, err
	}
	if out.Production, err = lookupFloat(v, "production"); err != nil {
		return out, err
	}
	if out.Decay.Lower, err = lookupFloat(v, "decay.lower"); err != nil {
		return out, err
	}
	if out.Decay.Upper, err = lookupFloat(v, "decay.upper"); err != nil {
		return out, err
	}

	if ub := v.LookupPath(cue.ParsePath("upper_bound")); ub.Exists() {
		f, err := ub.Float64()
		if err != nil {
			return out, formatCUEError(err)
		}
		out.UpperBound = model.Float(f)
	}

	if sv := v.LookupPath(cue.ParsePath("sources")); sv.Exists() {
		iter, err := sv.List()
		if err != nil {
			return out, formatCUEError(err)
		}
		for iter.Next() {
			src := iter.Value()
			name, err := lookupName(src, "name")
			if err != nil {
				return out, err
			}
			th, err := lookupFloat(src, "threshold")
			if err != nil {
				return out, err
			}
			out.Sources = append(out.Sources, model.Source{Name: name, Threshold: th})
		}
	}

	iter, err := v.LookupPath(cue.ParsePath("map")).List()
	if err != nil {
		return out, formatCUEError(err)
	}
	for iter.Next() {
		entry, err := compileMapEntry(iter.Value())
		if err != nil {
			return out, err
		}
		out.Map = append(out.Map, entry)
	}

	return out, nil
}

func compileMapEntry(v cue.Value) (model.MapEntry, error) {
	var out model.MapEntry

	iter, err := v.LookupPath(cue.ParsePath("pattern")).List()
	if err != nil {
		return out, formatCUEError(err)
	}
	out.Pattern = []int{}
	for iter.Next() {
		bit, err := iter.Value().Int64()
		if err != nil {
			return out, formatCUEError(err)
		}
		out.Pattern = append(out.Pattern, int(bit))
	}

	if out.Lower, err = lookupFloat(v, "lower"); err != nil {
		return out, err
	}
	if out.Upper, err = lookupFloat(v, "upper"); err != nil {
		return out, err
	}
	return out, nil
}

// lookupName returns the NFC-normalized string at path.
func lookupName(v cue.Value, path string) (string, error) {
	s, err := v.LookupPath(cue.ParsePath(path)).String()
	if err != nil {
		return "", formatCUEError(err)
	}
	return norm.NFC.String(s), nil
}

// lookupFloat returns the number at path, or 0 when the field is absent.
func lookupFloat(v cue.Value, path string) (float64, error) {
	fv := v.LookupPath(cue.ParsePath(path))
	if !fv.Exists() {
		return 0, nil
	}
	f, err := fv.Float64()
	if err != nil {
		return 0, formatCUEError(err)
	}
	return f, nil
}

// CompileError represents a compilation error with source position.
type CompileError struct {
	Field   string
	Message string
	Pos     token.Pos
}

func (e *CompileError) Error() string {
	if e.Pos.IsValid() {
		return fmt.Sprintf("%s:%d:%d: %s: %s",
			e.Pos.Filename(), e.Pos.Line(), e.Pos.Column(),
			e.Field, e.Message)
	}
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// formatCUEError extracts position info from CUE errors.
func formatCUEError(err error) error {
	if err == nil {
		return nil
	}

	errs := errors.Errors(err)
	if len(errs) == 0 {
		return err
	}

	first := errs[0]
	field := "cue"
	if path := first.Path(); len(path) > 0 {
		field = strings.Join(path, ".")
	}
	if positions := errors.Positions(first); len(positions) > 0 {
		return &CompileError{Field: field, Message: first.Error(), Pos: positions[0]}
	}
	return &CompileError{Field: field, Message: first.Error()}
}
