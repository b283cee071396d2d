package density

import (
	"math"
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/stat/distuv"

	"figstats/internal/errors"
)

func normalSample(n int, seed int64) []float64 {
	rng := rand.New(rand.NewSource(seed))
	out := make([]float64, n)
	for i := range out {
		out[i] = rng.NormFloat64()
	}
	return out
}

func TestEstimate_BandsContainCenter(t *testing.T) {
	x := normalSample(300, 1)
	rows, err := Estimate(x)
	require.NoError(t, err)
	require.Len(t, rows, DefaultGridSize)

	for i, r := range rows {
		if i > 0 {
			assert.GreaterOrEqual(t, r.EvalPoint, rows[i-1].EvalPoint)
		}
		assert.LessOrEqual(t, r.ObsLower, r.ObsDensity, "row %d", i)
		assert.LessOrEqual(t, r.ObsDensity, r.ObsUpper, "row %d", i)
		assert.LessOrEqual(t, r.NormalLower, r.NormalDensity, "row %d", i)
		assert.LessOrEqual(t, r.NormalDensity, r.NormalUpper, "row %d", i)
		assert.False(t, math.IsNaN(r.NormalUpper))
	}
}

func TestEstimate_DropsMissingValues(t *testing.T) {
	x := normalSample(50, 2)
	withMissing := append([]float64{math.NaN()}, x...)
	withMissing = append(withMissing, math.NaN())

	a, err := Estimate(x, WithGridSize(64))
	require.NoError(t, err)
	b, err := Estimate(withMissing, WithGridSize(64))
	require.NoError(t, err)
	assert.Equal(t, a, b)
}

func TestEstimate_GridSpansDataPlusCut(t *testing.T) {
	x := []float64{-1, 0, 0.5, 1, 2}
	h := 0.4
	rows, err := Estimate(x, WithBandwidth(h), WithGridSize(11), WithCut(3))
	require.NoError(t, err)
	require.Len(t, rows, 11)
	assert.InDelta(t, -1-3*h, rows[0].EvalPoint, 1e-12)
	assert.InDelta(t, 2+3*h, rows[10].EvalPoint, 1e-12)
}

func TestEstimate_NormalCurveMatchesInflatedVariance(t *testing.T) {
	x := []float64{1, 2, 3, 4, 5, 6, 7, 8}
	h := 0.5
	rows, err := Estimate(x, WithBandwidth(h), WithGridSize(5))
	require.NoError(t, err)

	sd := math.Sqrt(6) // sample sd of 1..8
	ref := distuv.Normal{Mu: 4.5, Sigma: math.Sqrt(sd*sd + h*h)}
	for _, r := range rows {
		assert.InDelta(t, ref.Prob(r.EvalPoint), r.NormalDensity, 1e-12)
	}
}

func TestEstimate_EmpiricalDensityIntegratesToOne(t *testing.T) {
	rows, err := Estimate(normalSample(200, 3))
	require.NoError(t, err)
	area := 0.0
	for i := 1; i < len(rows); i++ {
		dx := rows[i].EvalPoint - rows[i-1].EvalPoint
		area += dx * (rows[i].ObsDensity + rows[i-1].ObsDensity) / 2
	}
	assert.InDelta(t, 1.0, area, 0.01)
}

func TestEstimate_RejectsDegenerateInput(t *testing.T) {
	_, err := Estimate([]float64{3, 3, 3, 3})
	assert.True(t, errors.HasCode(err, errors.CodeDegenerateSample))

	_, err = Estimate([]float64{1, math.NaN()})
	assert.True(t, errors.HasCode(err, errors.CodeInvalidInput))

	_, err = Estimate([]float64{1, 2, 3}, WithGridSize(1))
	assert.True(t, errors.HasCode(err, errors.CodeInvalidInput))

	_, err = Estimate([]float64{1, 2, 3}, WithBandwidth(-1))
	assert.True(t, errors.HasCode(err, errors.CodeInvalidInput))
}

func TestSilvermanBandwidth(t *testing.T) {
	x := []float64{1, 2, 3, 4, 5, 6, 7, 8, 9, 100}
	// bw.nrd0(x) in R: 0.9 * min(sd, 4.5/1.34) * 10^-0.2
	want := 0.9 * (4.5 / 1.34) * math.Pow(10, -0.2)
	assert.InDelta(t, want, SilvermanBandwidth(x, 30.0), 1e-12)

	// zero IQR falls back to sd
	y := []float64{0, 5, 5, 5, 5, 5, 5, 10}
	assert.InDelta(t, 0.9*2*math.Pow(8, -0.2), SilvermanBandwidth(y, 2), 1e-12)
}
