package quantile

import (
	"math"

	"github.com/montanaflynn/stats"
	gstat "gonum.org/v1/gonum/stat"

	"figstats/internal/errors"
)

const (
	huberK         = 1.345
	madConsistency = 0.6745
	robustTol      = 1e-4
	robustMaxIt    = 20
)

// HuberLine fits y = alpha + beta*x by iteratively reweighted least squares
// with Huber weights and a MAD residual scale re-estimated each iteration.
// It starts from ordinary least squares and stops once the residual vector
// changes by less than robustTol relative to its size, or after
// robustMaxIt iterations.
func HuberLine(x, y []float64) (alpha, beta float64, err error) {
	if len(x) != len(y) || len(x) < 2 {
		return 0, 0, errors.Newf(errors.CodeInvalidInput, "robust line needs two equal-length series of length >= 2, got %d and %d", len(x), len(y))
	}

	alpha, beta = gstat.LinearRegression(x, y, nil, false)
	resid := residuals(x, y, alpha, beta)
	weights := make([]float64, len(x))
	abs := make([]float64, len(x))

	for it := 0; it < robustMaxIt; it++ {
		for i, r := range resid {
			abs[i] = math.Abs(r)
		}
		med, merr := stats.Median(abs)
		if merr != nil {
			return 0, 0, errors.Wrap(errors.InternalError(merr.Error()), "robust line scale failed")
		}
		scale := med / madConsistency
		if scale == 0 {
			// Half or more of the points sit on the line already.
			return alpha, beta, nil
		}
		for i, r := range resid {
			u := math.Abs(r / scale)
			if u <= huberK {
				weights[i] = 1
			} else {
				weights[i] = huberK / u
			}
		}

		alpha, beta = gstat.LinearRegression(x, y, weights, false)
		next := residuals(x, y, alpha, beta)
		if converged(resid, next) {
			return alpha, beta, nil
		}
		resid = next
	}
	return alpha, beta, nil
}

func residuals(x, y []float64, alpha, beta float64) []float64 {
	dst := make([]float64, len(x))
	for i := range x {
		dst[i] = y[i] - (alpha + beta*x[i])
	}
	return dst
}

func converged(old, next []float64) bool {
	var num, den float64
	for i := range old {
		d := old[i] - next[i]
		num += d * d
		den += old[i] * old[i]
	}
	return math.Sqrt(num/math.Max(den, 1e-20)) < robustTol
}
