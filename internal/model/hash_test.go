package model

import (
	"encoding/json"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sampleSpec() *Spec {
	return &Spec{
		Name: "self-loop",
		Variables: []Variable{
			{
				Name:       "x",
				Production: 1,
				Decay:      Range{Lower: -1.5, Upper: -0.5},
				Sources:    []Source{{Name: "x", Threshold: 5}},
				Map: []MapEntry{
					{Pattern: []int{0}, Lower: 0, Upper: 0},
					{Pattern: []int{1}, Lower: 2, Upper: 3},
				},
			},
		},
	}
}

func TestHashDeterminism(t *testing.T) {
	h1, err := Hash(sampleSpec())
	require.NoError(t, err)
	h2, err := Hash(sampleSpec())
	require.NoError(t, err)

	assert.Equal(t, h1, h2, "Hash must be deterministic")
	assert.Len(t, h1, 64, "SHA-256 hex is 64 characters")
}

func TestHashChangesWithThreshold(t *testing.T) {
	a := sampleSpec()
	b := sampleSpec()
	b.Variables[0].Sources[0].Threshold = 6

	assert.NotEqual(t, MustHash(a), MustHash(b))
}

func TestHashChangesWithUpperBound(t *testing.T) {
	a := sampleSpec()
	b := sampleSpec()
	b.Variables[0].UpperBound = Float(10)

	assert.NotEqual(t, MustHash(a), MustHash(b))
}

func TestHashDefaultSafetyFactor(t *testing.T) {
	a := sampleSpec()
	b := sampleSpec()
	b.SafetyFactor = DefaultSafetyFactor

	assert.Equal(t, MustHash(a), MustHash(b), "unset safety factor hashes as the default")
}

func TestHashRejectsNaN(t *testing.T) {
	s := sampleSpec()
	s.Variables[0].Production = math.NaN()

	_, err := Hash(s)
	assert.Error(t, err)
}

func TestSpecLookup(t *testing.T) {
	s := &Spec{Variables: []Variable{{Name: "a"}, {Name: "b"}}}

	idx, ok := s.Lookup("b")
	assert.True(t, ok)
	assert.Equal(t, 1, idx)

	_, ok = s.Lookup("c")
	assert.False(t, ok)
	assert.Equal(t, []string{"a", "b"}, s.Names())
	assert.Equal(t, 2, s.Dimension())
}

func TestCanonicalDecodesBack(t *testing.T) {
	spec := sampleSpec()
	spec.Variables[0].UpperBound = Float(12.5)

	data, err := Canonical(spec)
	require.NoError(t, err)

	var back Spec
	require.NoError(t, json.Unmarshal(data, &back))

	spec.SafetyFactor = DefaultSafetyFactor
	assert.Equal(t, spec, &back)
	assert.Equal(t, MustHash(spec), MustHash(&back))
}
