package compiler

import (
	"testing"

	"cuelang.org/go/cue"
	"cuelang.org/go/cue/cuecontext"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/shaunharker/conley-morse-database/internal/model"
)

const toggleCUE = `
model: {
	name: "toggle"
	safety_factor: 1.5
	variables: [
		{
			name: "u"
			production: 0.25
			decay: {lower: -1.5, upper: -0.5}
			sources: [{name: "v", threshold: 2}]
			map: [
				{pattern: [0], lower: 2, upper: 3},
				{pattern: [1], lower: 0, upper: 0.5},
			]
		},
		{
			name: "v"
			decay: {lower: -1, upper: -1}
			upper_bound: 8
			sources: [{name: "u", threshold: 2.5}]
			map: [
				{pattern: [0], lower: 2, upper: 3},
				{pattern: [1], lower: 0, upper: 0.5},
			]
		},
	]
}
`

func compileString(t *testing.T, src string) (*model.Spec, error) {
	t.Helper()
	ctx := cuecontext.New()
	v := ctx.CompileString(src, cue.Filename("model.cue"))
	require.NoError(t, v.Err())
	return CompileCUE(v)
}

func TestCompileModelBasic(t *testing.T) {
	spec, err := compileString(t, toggleCUE)
	require.NoError(t, err)

	assert.Equal(t, "toggle", spec.Name)
	assert.Equal(t, 1.5, spec.SafetyFactor)
	assert.Equal(t, 0.0, spec.Delta)
	require.Len(t, spec.Variables, 2)

	u := spec.Variables[0]
	assert.Equal(t, "u", u.Name)
	assert.Equal(t, 0.25, u.Production)
	assert.Equal(t, model.Range{Lower: -1.5, Upper: -0.5}, u.Decay)
	assert.Nil(t, u.UpperBound)
	assert.Equal(t, []model.Source{{Name: "v", Threshold: 2}}, u.Sources)
	assert.Equal(t, []model.MapEntry{
		{Pattern: []int{0}, Lower: 2, Upper: 3},
		{Pattern: []int{1}, Lower: 0, Upper: 0.5},
	}, u.Map)

	v := spec.Variables[1]
	require.NotNil(t, v.UpperBound)
	assert.Equal(t, 8.0, *v.UpperBound)
	assert.Equal(t, 2.5, v.Sources[0].Threshold)
}

func TestCompileModelNoSources(t *testing.T) {
	spec, err := compileString(t, `
		model: {
			name: "single"
			variables: [{
				name: "x"
				production: 2
				decay: {lower: -1, upper: -0.5}
				upper_bound: 5
				map: [{pattern: [], lower: 0, upper: 0}]
			}]
		}
	`)
	require.NoError(t, err)

	x := spec.Variables[0]
	assert.Empty(t, x.Sources)
	require.Len(t, x.Map, 1)
	assert.Equal(t, []int{}, x.Map[0].Pattern)
}

func TestCompileModelUnknownField(t *testing.T) {
	_, err := compileString(t, `
		model: {
			name: "bad"
			colour: "blue"
			variables: []
		}
	`)
	require.Error(t, err)

	var compileErr *CompileError
	require.ErrorAs(t, err, &compileErr)
	assert.Contains(t, err.Error(), "colour")
	assert.True(t, compileErr.Pos.IsValid(), "error should carry a source position")
}

func TestCompileModelWrongType(t *testing.T) {
	_, err := compileString(t, `
		model: {
			name: "bad"
			variables: [{
				name: "x"
				decay: {lower: "fast", upper: -0.5}
				map: []
			}]
		}
	`)
	require.Error(t, err)

	var compileErr *CompileError
	require.ErrorAs(t, err, &compileErr)
	assert.Contains(t, err.Error(), "decay")
}

func TestCompileModelMissingDecay(t *testing.T) {
	_, err := compileString(t, `
		model: {
			name: "bad"
			variables: [{name: "x", map: []}]
		}
	`)
	require.Error(t, err)
}

func TestCompileModelNonIntegerBit(t *testing.T) {
	_, err := compileString(t, `
		model: {
			name: "bad"
			variables: [{
				name: "x"
				decay: {lower: -1, upper: -1}
				map: [{pattern: [0.5], lower: 0, upper: 0}]
			}]
		}
	`)
	require.Error(t, err)
}

func TestCompileModelNormalizesNames(t *testing.T) {
	decomposed := "e\u0301"
	spec, err := compileString(t, `
		model: {
			name: "caf`+decomposed+`"
			variables: [{
				name: "`+decomposed+`"
				decay: {lower: -1, upper: -1}
				upper_bound: 1
				map: [{pattern: [], lower: 0, upper: 0}]
			}]
		}
	`)
	require.NoError(t, err)
	assert.Equal(t, "caf\u00e9", spec.Name)
	assert.Equal(t, "\u00e9", spec.Variables[0].Name)
}

func TestCompileCUEMissingModel(t *testing.T) {
	_, err := compileString(t, `other: 1`)
	require.Error(t, err)

	var compileErr *CompileError
	require.ErrorAs(t, err, &compileErr)
	assert.Equal(t, "model", compileErr.Field)
}

func TestCompileErrorFormat(t *testing.T) {
	err := &CompileError{Field: "variables.0.decay", Message: "conflicting values"}
	assert.Equal(t, "variables.0.decay: conflicting values", err.Error())
}
