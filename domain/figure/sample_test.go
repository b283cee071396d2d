package figure

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"figstats/internal/errors"
)

func TestCleanDropsMissing(t *testing.T) {
	nan := math.NaN()
	out, err := Clean([]float64{3, nan, 1, nan, 2})
	require.NoError(t, err)
	assert.Equal(t, []float64{3, 1, 2}, out)

	sorted, err := CleanSorted([]float64{3, nan, 1, 2})
	require.NoError(t, err)
	assert.Equal(t, []float64{1, 2, 3}, sorted)
}

func TestCleanRejectsShortAndInfinite(t *testing.T) {
	_, err := Clean([]float64{math.NaN(), 4})
	assert.True(t, errors.HasCode(err, errors.CodeInvalidInput))

	_, err = Clean([]float64{1, math.Inf(1), 2})
	assert.True(t, errors.HasCode(err, errors.CodeInvalidInput))
}

func TestSummarize(t *testing.T) {
	s, err := Summarize([]float64{2, 4, 4, 4, 5, 5, 7, 9})
	require.NoError(t, err)
	assert.Equal(t, 8, s.N)
	assert.InDelta(t, 5.0, s.Mean, 1e-12)
	assert.InDelta(t, math.Sqrt(32.0/7.0), s.StdDev, 1e-12)
	assert.False(t, s.Degenerate())

	c, err := Summarize([]float64{0.1, 0.1, 0.1, 0.1, 0.1, 0.1, 0.1})
	require.NoError(t, err)
	assert.True(t, c.Degenerate())
}

func TestQuantile7MatchesR(t *testing.T) {
	x := []float64{1, 2, 3, 4, 5, 6, 7, 8, 9, 100}
	// quantile(x, c(.25, .5, .75)) in R
	assert.InDelta(t, 3.25, Quantile7(x, 0.25), 1e-12)
	assert.InDelta(t, 5.5, Quantile7(x, 0.5), 1e-12)
	assert.InDelta(t, 7.75, Quantile7(x, 0.75), 1e-12)
	assert.Equal(t, 1.0, Quantile7(x, 0))
	assert.Equal(t, 100.0, Quantile7(x, 1))
	assert.True(t, math.IsNaN(Quantile7(nil, 0.5)))
}

func TestParsers(t *testing.T) {
	f, err := ParsePowerFamily("Box-Cox")
	require.NoError(t, err)
	assert.Equal(t, FamilyBoxCox, f)
	f, err = ParsePowerFamily("yj")
	require.NoError(t, err)
	assert.Equal(t, FamilyYeoJohnson, f)
	_, err = ParsePowerFamily("log")
	assert.True(t, errors.HasCode(err, errors.CodeInvalidInput))

	m, err := ParseCombineMethod("Fisher")
	require.NoError(t, err)
	assert.Equal(t, CombineFisher, m)
	_, err = ParseCombineMethod("median")
	assert.Error(t, err)

	l, err := ParseLineMethod("")
	require.NoError(t, err)
	assert.Equal(t, LineQuartile, l)
	_, err = ParseLineMethod("ols")
	assert.Error(t, err)

	d, err := ParseDistributionFamily("normal")
	require.NoError(t, err)
	assert.Equal(t, DistNormal, d)
	d, err = ParseDistributionFamily("weibull")
	require.NoError(t, err)
	assert.Equal(t, DistWeibull, d)
	_, err = ParseDistributionFamily("cauchy")
	assert.Error(t, err)
}
