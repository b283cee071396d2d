package transform

import (
	"math"

	"figstats/domain/figure"
	"figstats/internal/errors"
)

// DefaultStart is added to -min(x) when shifting a sample onto the
// positive half-line for Box-Cox
const DefaultStart = 0.01

// lambdaEps is the distance from a singular lambda below which the
// logarithmic limit is used
const lambdaEps = 1e-6

// BoxCox returns (x^lambda - 1)/lambda, or log(x) as lambda goes to 0.
// x must be positive.
func BoxCox(x, lambda float64) float64 {
	if math.Abs(lambda) <= lambdaEps {
		return math.Log(x)
	}
	return (math.Pow(x, lambda) - 1) / lambda
}

// YeoJohnson extends Box-Cox to the whole real line by treating
// non-negative and negative values with mirrored exponents.
func YeoJohnson(x, lambda float64) float64 {
	if x >= 0 {
		if math.Abs(lambda) <= lambdaEps {
			return math.Log1p(x)
		}
		return (math.Pow(x+1, lambda) - 1) / lambda
	}
	if math.Abs(lambda-2) <= lambdaEps {
		return -math.Log1p(-x)
	}
	return -(math.Pow(1-x, 2-lambda) - 1) / (2 - lambda)
}

// PositiveShift returns the amount to add to every value so that Box-Cox
// can be applied: zero when all values are positive, otherwise
// -min + start.
func PositiveShift(data []float64, start float64) float64 {
	min := math.Inf(1)
	for _, x := range data {
		min = math.Min(min, x)
	}
	if min > 0 {
		return 0
	}
	return -min + start
}

// transformer returns the per-value function for a family
func transformer(family figure.PowerFamily) (func(x, lambda float64) float64, error) {
	switch family {
	case figure.FamilyBoxCox:
		return BoxCox, nil
	case figure.FamilyYeoJohnson:
		return YeoJohnson, nil
	}
	return nil, errors.Newf(errors.CodeInvalidInput, "unknown power family %q", family)
}

// Apply cleans the sample, shifts it onto the positive half-line when
// Box-Cox needs it, and returns the transformed values with the shift used.
func Apply(sample []float64, family figure.PowerFamily, lambda, start float64) ([]float64, float64, error) {
	fn, err := transformer(family)
	if err != nil {
		return nil, 0, err
	}
	if math.IsNaN(lambda) || math.IsInf(lambda, 0) {
		return nil, 0, errors.Newf(errors.CodeInvalidInput, "lambda must be finite, got %g", lambda)
	}
	if !(start > 0) {
		return nil, 0, errors.Newf(errors.CodeInvalidInput, "start must be positive, got %g", start)
	}
	data, err := figure.Clean(sample)
	if err != nil {
		return nil, 0, err
	}

	var shift float64
	if family == figure.FamilyBoxCox {
		shift = PositiveShift(data, start)
	}
	out := make([]float64, len(data))
	for i, x := range data {
		out[i] = fn(x+shift, lambda)
	}
	return out, shift, nil
}
