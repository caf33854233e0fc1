package atlas

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/shaunharker/conley-morse-database/internal/model"
	"github.com/shaunharker/conley-morse-database/internal/testutil"
)

func TestSignature(t *testing.T) {
	s := Signature("011")
	assert.Equal(t, "0,1,1", s.String())
	assert.Equal(t, []int{0, 1, 1}, s.Bits())
	assert.Equal(t, "", Signature("").String())
}

func TestNewInteractionMap(t *testing.T) {
	v := testutil.FourNode(3, 7).Variables[1]

	m, err := NewInteractionMap(v)
	require.NoError(t, err)
	assert.Len(t, m, 4)
	assert.Equal(t, Amplitude{Lower: 3, Upper: 3}, m["10"])
	assert.Equal(t, Amplitude{Lower: 10, Upper: 10}, m["11"])
	assert.Empty(t, m.Missing(2))
}

func TestNewInteractionMap_EmptyPattern(t *testing.T) {
	v := testutil.SingleVariable(1, 5).Variables[0]

	m, err := NewInteractionMap(v)
	require.NoError(t, err)
	assert.Contains(t, m, Signature(""))
	assert.Empty(t, m.Missing(0))
}

func TestNewInteractionMap_Errors(t *testing.T) {
	tests := []struct {
		name  string
		entry []model.MapEntry
		check func(error) bool
	}{
		{
			name:  "empty",
			entry: nil,
			check: IsInvalidModel,
		},
		{
			name:  "pattern too short",
			entry: []model.MapEntry{{Pattern: []int{}, Lower: 0, Upper: 1}},
			check: IsInvalidModel,
		},
		{
			name:  "non-binary bit",
			entry: []model.MapEntry{{Pattern: []int{2}, Lower: 0, Upper: 1}},
			check: IsInvalidModel,
		},
		{
			name: "duplicate pattern",
			entry: []model.MapEntry{
				{Pattern: []int{1}, Lower: 0, Upper: 1},
				{Pattern: []int{1}, Lower: 2, Upper: 3},
			},
			check: IsInvalidModel,
		},
		{
			name:  "inverted amplitude",
			entry: []model.MapEntry{{Pattern: []int{0}, Lower: 2, Upper: 1}},
			check: IsInvalidModel,
		},
		{
			name:  "infinite amplitude",
			entry: []model.MapEntry{{Pattern: []int{0}, Lower: math.Inf(-1), Upper: 1}},
			check: IsInvalidBounds,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			v := testutil.SelfLoopPair().Variables[0]
			v.Map = tt.entry

			_, err := NewInteractionMap(v)
			require.Error(t, err)
			assert.True(t, tt.check(err), "unexpected error kind: %v", err)
		})
	}
}

func TestInteractionMap_Missing(t *testing.T) {
	m := InteractionMap{
		"00": {},
		"11": {},
	}
	assert.Equal(t, []Signature{"01", "10"}, m.Missing(2))
	assert.Nil(t, m.Missing(MaxEnumeratedSources+1))
}

func newSelfLoopResolver(t *testing.T, delta float64) *Resolver {
	t.Helper()

	spec := testutil.SelfLoopPair()
	in, err := BuildInteraction(spec)
	require.NoError(t, err)

	maps := make([]InteractionMap, len(spec.Variables))
	for j, v := range spec.Variables {
		maps[j], err = NewInteractionMap(v)
		require.NoError(t, err)
	}
	return NewResolver(in, maps, delta)
}

func TestResolver_Signature(t *testing.T) {
	r := newSelfLoopResolver(t, 0)

	assert.Equal(t, Signature("0"), r.Signature(Box{{0, 5}, {0, 3}}, 0))
	assert.Equal(t, Signature("1"), r.Signature(Box{{5, 10}, {0, 3}}, 0))
	assert.Equal(t, Signature(""), r.Signature(Box{{5, 10}, {0, 3}}, 1))

	// a midpoint sitting exactly on the threshold is not above it
	assert.Equal(t, Signature("0"), r.Signature(Box{{4, 6}, {0, 3}}, 0))
}

func TestResolver_Resolve(t *testing.T) {
	r := newSelfLoopResolver(t, 0)

	sigma, err := r.Resolve(0, Box{{0, 5}, {0, 3}})
	require.NoError(t, err)
	assert.Equal(t, []Interval{{1.5, 2.5}, {0.25, 0.25}}, sigma)

	sigma, err = r.Resolve(1, Box{{5, 10}, {0, 3}})
	require.NoError(t, err)
	assert.Equal(t, []Interval{{3.5, 5.5}, {0.25, 0.25}}, sigma)
}

func TestResolver_Delta(t *testing.T) {
	r := newSelfLoopResolver(t, 0.5)

	sigma, err := r.Resolve(0, Box{{0, 5}, {0, 3}})
	require.NoError(t, err)
	assert.Equal(t, []Interval{{1.25, 2.75}, {0, 0.5}}, sigma)
}

func TestResolver_Unresolved(t *testing.T) {
	spec := testutil.SelfLoopPair()
	spec.Variables[0].Map = spec.Variables[0].Map[:1]

	in, err := BuildInteraction(spec)
	require.NoError(t, err)
	maps := make([]InteractionMap, 2)
	for j, v := range spec.Variables {
		maps[j], err = NewInteractionMap(v)
		require.NoError(t, err)
	}
	r := NewResolver(in, maps, 0)

	_, err = r.Resolve(7, Box{{5, 10}, {0, 3}})
	var use *UnresolvedSignatureError
	require.ErrorAs(t, err, &use)
	assert.Equal(t, 7, use.Region)
	assert.Equal(t, "A", use.Variable)
	assert.Equal(t, Signature("1"), use.Signature)
	assert.Equal(t, ErrCodeUnresolvedSignature, CodeOf(err))
}
