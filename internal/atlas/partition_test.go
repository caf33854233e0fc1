package atlas

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewPartition(t *testing.T) {
	p, err := NewPartition([]float64{5, 0, 4, 5}, 30)
	require.NoError(t, err)

	assert.Equal(t, Partition{{0, 4}, {4, 5}, {5, 30}}, p)
	assert.Equal(t, []float64{4, 5}, p.Thresholds())
	assert.Equal(t, []float64{0, 4, 5, 30}, p.Boundaries())
}

func TestNewPartition_NoThresholds(t *testing.T) {
	p, err := NewPartition([]float64{0, 0, 0}, 7)
	require.NoError(t, err)
	assert.Equal(t, Partition{{0, 7}}, p)
	assert.Empty(t, p.Thresholds())

	p, err = NewPartition(nil, 7)
	require.NoError(t, err)
	assert.Len(t, p, 1)
}

func TestNewPartition_Idempotent(t *testing.T) {
	p, err := NewPartition([]float64{8, 2, 6, 2, 4}, 10)
	require.NoError(t, err)

	again, err := NewPartition(p.Thresholds(), 10)
	require.NoError(t, err)
	assert.Equal(t, p, again)
}

func TestNewPartition_Adjacent(t *testing.T) {
	p, err := NewPartition([]float64{0.1, 0.7, 0.3}, 1)
	require.NoError(t, err)

	require.NotEmpty(t, p)
	assert.Equal(t, 0.0, p[0].Lo)
	assert.Equal(t, 1.0, p[len(p)-1].Hi)
	for i := 1; i < len(p); i++ {
		assert.Equal(t, p[i-1].Hi, p[i].Lo, "interval %d must start where %d ends", i, i-1)
		assert.Less(t, p[i].Lo, p[i].Hi)
	}
}

func TestNewPartition_Errors(t *testing.T) {
	tests := []struct {
		name       string
		thresholds []float64
		upper      float64
	}{
		{"threshold at upper bound", []float64{30}, 30},
		{"threshold above upper bound", []float64{4, 31}, 30},
		{"negative threshold", []float64{-1}, 30},
		{"NaN threshold", []float64{math.NaN()}, 30},
		{"zero upper bound", nil, 0},
		{"infinite upper bound", []float64{1}, math.Inf(1)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewPartition(tt.thresholds, tt.upper)
			require.Error(t, err)
			assert.True(t, IsInvalidBounds(err))
		})
	}
}

func TestInterval(t *testing.T) {
	iv := Interval{Lo: 4, Hi: 10}
	assert.Equal(t, 7.0, iv.Mid())
	assert.Equal(t, 6.0, iv.Width())
}
