package transform

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"figstats/domain/figure"
	"figstats/internal/errors"
)

func TestBoxCox(t *testing.T) {
	assert.InDelta(t, 3.0, BoxCox(4, 1), 1e-12)
	assert.InDelta(t, 2*(math.Sqrt(4)-1), BoxCox(4, 0.5), 1e-12)
	assert.InDelta(t, math.Log(4), BoxCox(4, 0), 1e-12)
	assert.InDelta(t, (1-1/16.0)/2, BoxCox(4, -2), 1e-12)
	// continuous through zero
	assert.InDelta(t, BoxCox(4, 0), BoxCox(4, 1e-5), 1e-4)
}

func TestYeoJohnson(t *testing.T) {
	for _, x := range []float64{-3, -0.5, 0, 0.5, 3} {
		assert.InDelta(t, x, YeoJohnson(x, 1), 1e-12, "identity at lambda 1, x=%g", x)
	}
	assert.InDelta(t, math.Log1p(2), YeoJohnson(2, 0), 1e-12)
	assert.InDelta(t, -math.Log1p(2), YeoJohnson(-2, 2), 1e-12)
	assert.InDelta(t, (math.Pow(3, 0.5)-1)/0.5, YeoJohnson(2, 0.5), 1e-12)
	assert.InDelta(t, -(math.Pow(3, 1.5)-1)/1.5, YeoJohnson(-2, 0.5), 1e-12)
	assert.InDelta(t, YeoJohnson(-2, 2), YeoJohnson(-2, 2+1e-5), 1e-4)
}

func TestYeoJohnson_Monotone(t *testing.T) {
	for _, lambda := range []float64{-2, -0.7, 0, 0.4, 1, 2, 3} {
		prev := math.Inf(-1)
		for x := -5.0; x <= 5; x += 0.25 {
			v := YeoJohnson(x, lambda)
			assert.Greater(t, v, prev, "lambda %g x %g", lambda, x)
			prev = v
		}
	}
}

func TestPositiveShift(t *testing.T) {
	assert.Zero(t, PositiveShift([]float64{0.1, 2, 3}, DefaultStart))
	assert.InDelta(t, 0.01, PositiveShift([]float64{0, 2, 3}, DefaultStart), 1e-12)
	assert.InDelta(t, 5.5, PositiveShift([]float64{-5, 2}, 0.5), 1e-12)
}

func TestApply(t *testing.T) {
	out, shift, err := Apply([]float64{-1, math.NaN(), 0, 1}, figure.FamilyBoxCox, 1, 1)
	require.NoError(t, err)
	assert.Equal(t, 2.0, shift)
	assert.InDeltaSlice(t, []float64{0, 1, 2}, out, 1e-12)

	out, shift, err = Apply([]float64{-1, 0, 1}, figure.FamilyYeoJohnson, 1, DefaultStart)
	require.NoError(t, err)
	assert.Zero(t, shift)
	assert.InDeltaSlice(t, []float64{-1, 0, 1}, out, 1e-12)
}

func TestApply_RejectsBadArguments(t *testing.T) {
	x := []float64{1, 2, 3}
	_, _, err := Apply(x, "sqrt", 1, DefaultStart)
	assert.True(t, errors.HasCode(err, errors.CodeInvalidInput))
	_, _, err = Apply(x, figure.FamilyBoxCox, math.Inf(1), DefaultStart)
	assert.True(t, errors.HasCode(err, errors.CodeInvalidInput))
	_, _, err = Apply(x, figure.FamilyBoxCox, 1, -1)
	assert.True(t, errors.HasCode(err, errors.CodeInvalidInput))
	_, _, err = Apply([]float64{1, math.NaN()}, figure.FamilyBoxCox, 1, DefaultStart)
	assert.True(t, errors.HasCode(err, errors.CodeInvalidInput))
}
