package transform

import (
	"math"

	"github.com/montanaflynn/stats"
	"gonum.org/v1/gonum/stat/distuv"

	"figstats/domain/figure"
	"figstats/internal/errors"
)

// PValueFloor keeps log and inverse-normal combinations finite
const PValueFloor = 1e-7

// ClampPValue raises p to PValueFloor and caps it at 1 - PValueFloor, so
// the inverse-normal score of a p-value of exactly 1 does not swamp the
// other tests.
func ClampPValue(p float64) float64 {
	return math.Min(math.Max(p, PValueFloor), 1-PValueFloor)
}

// Combine merges independent p-values into one. Inputs are clamped with
// ClampPValue first.
//
// Stouffer sums inverse-normal scores, Fisher compares -2*sum(log p) with
// a chi-square on 2k degrees of freedom, and Average is the plain mean,
// which has no reference distribution and is only a heuristic ranking.
func Combine(method figure.CombineMethod, pvalues []float64) (float64, error) {
	if len(pvalues) == 0 {
		return 0, errors.InvalidInput("no p-values to combine")
	}
	ps := make([]float64, len(pvalues))
	for i, p := range pvalues {
		if math.IsNaN(p) {
			return 0, errors.Newf(errors.CodeInvalidInput, "p-value %d is NaN", i)
		}
		ps[i] = ClampPValue(p)
	}
	k := float64(len(ps))

	switch method {
	case figure.CombineStouffer:
		var z float64
		for _, p := range ps {
			z += distuv.UnitNormal.Quantile(p)
		}
		return distuv.UnitNormal.CDF(z / math.Sqrt(k)), nil
	case figure.CombineFisher:
		var x2 float64
		for _, p := range ps {
			x2 += -2 * math.Log(p)
		}
		return distuv.ChiSquared{K: 2 * k}.Survival(x2), nil
	case figure.CombineAverage:
		mean, err := stats.Mean(ps)
		if err != nil {
			return 0, errors.Wrap(errors.InternalError(err.Error()), "average p-value failed")
		}
		return mean, nil
	}
	return 0, errors.Newf(errors.CodeInvalidInput, "unknown combine method %q", method)
}
