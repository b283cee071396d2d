package figure

import (
	"math"
	"sort"

	"github.com/montanaflynn/stats"

	"figstats/internal/errors"
)

// MinSampleSize is the smallest cleaned sample any pipeline accepts
const MinSampleSize = 2

// Clean drops missing values (NaN) and returns a fresh slice. Infinite
// values are not missing and are rejected.
func Clean(sample []float64) ([]float64, error) {
	out := make([]float64, 0, len(sample))
	for i, x := range sample {
		if math.IsNaN(x) {
			continue
		}
		if math.IsInf(x, 0) {
			return nil, errors.Newf(errors.CodeInvalidInput, "value at position %d is infinite", i)
		}
		out = append(out, x)
	}
	if len(out) < MinSampleSize {
		return nil, errors.Newf(errors.CodeInvalidInput,
			"need at least %d non-missing values, got %d", MinSampleSize, len(out))
	}
	return out, nil
}

// CleanSorted is Clean followed by an ascending sort
func CleanSorted(sample []float64) ([]float64, error) {
	out, err := Clean(sample)
	if err != nil {
		return nil, err
	}
	sort.Float64s(out)
	return out, nil
}

// Summary holds the moments the pipelines need
type Summary struct {
	N      int
	Mean   float64
	StdDev float64 // sample (n-1) standard deviation
}

// Summarize computes mean and sample standard deviation of a cleaned sample
func Summarize(data []float64) (Summary, error) {
	mean, err := stats.Mean(data)
	if err != nil {
		return Summary{}, errors.Wrap(errors.InvalidInput(err.Error()), "failed to compute mean")
	}
	sd, err := stats.StandardDeviationSample(data)
	if err != nil {
		return Summary{}, errors.Wrap(errors.InvalidInput(err.Error()), "failed to compute standard deviation")
	}
	return Summary{N: len(data), Mean: mean, StdDev: sd}, nil
}

// Degenerate reports whether the spread is zero relative to the location,
// which also catches rounding noise left by averaging identical values.
func (s Summary) Degenerate() bool {
	if math.IsNaN(s.StdDev) || math.IsInf(s.StdDev, 0) {
		return true
	}
	return s.StdDev <= 1e-12*math.Max(1, math.Abs(s.Mean))
}

// Quantile7 returns the p-th quantile of an ascending sample using
// Hyndman and Fan's type 7 rule (linear interpolation between order
// statistics at (n-1)p).
func Quantile7(sorted []float64, p float64) float64 {
	n := len(sorted)
	if n == 0 {
		return math.NaN()
	}
	h := float64(n-1) * p
	lo := math.Floor(h)
	i := int(lo)
	if i >= n-1 {
		return sorted[n-1]
	}
	if i < 0 {
		return sorted[0]
	}
	return sorted[i] + (h-lo)*(sorted[i+1]-sorted[i])
}
