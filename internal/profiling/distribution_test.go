package profiling

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"figstats/internal/errors"
)

func TestDescribe(t *testing.T) {
	shape, err := Describe([]float64{1, 2, 3, 4, 5, 6, 7, 8, 9, 100, math.NaN()})
	require.NoError(t, err)
	assert.Equal(t, 10, shape.N)
	assert.Equal(t, 1, shape.Missing)
	assert.InDelta(t, 14.5, shape.Mean, 1e-12)
	assert.Equal(t, 1.0, shape.Min)
	assert.Equal(t, 100.0, shape.Max)
	assert.InDelta(t, 5.5, shape.Median, 1e-12)
	assert.InDelta(t, 3.25, shape.Q25, 1e-12)
	assert.InDelta(t, 7.75, shape.Q75, 1e-12)
	assert.Equal(t, 1, shape.Outliers)
	assert.Greater(t, shape.Skewness, 2.5)
	assert.Greater(t, shape.Kurtosis, 5.0)
}

func TestDescribe_SymmetricSample(t *testing.T) {
	shape, err := Describe([]float64{-3, -2, -1, 0, 1, 2, 3})
	require.NoError(t, err)
	assert.InDelta(t, 0, shape.Skewness, 1e-12)
	// discrete uniform on seven points is platykurtic
	assert.Less(t, shape.Kurtosis, 0.0)
	assert.Zero(t, shape.Outliers)
}

func TestDescribe_Edges(t *testing.T) {
	shape, err := Describe([]float64{4, 4, 4})
	require.NoError(t, err)
	assert.True(t, math.IsNaN(shape.Skewness))
	assert.True(t, math.IsNaN(shape.Kurtosis))

	shape, err = Describe([]float64{1, 2})
	require.NoError(t, err)
	assert.True(t, math.IsNaN(shape.Skewness))

	_, err = Describe([]float64{1, math.NaN()})
	assert.True(t, errors.HasCode(err, errors.CodeInvalidInput))
}
