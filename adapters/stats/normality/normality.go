// Package normality implements goodness-of-fit tests against the normal
// family. Each test estimates location and scale from the data, so callers
// may pass raw or standardized samples.
package normality

import (
	"math"
	"sort"

	"gonum.org/v1/gonum/stat"

	"figstats/internal/errors"
)

// Test is one normality test producing a p-value
type Test interface {
	Name() string
	Description() string
	PValue(data []float64) (float64, error)
}

// Result is the p-value a single test produced
type Result struct {
	Test   string
	PValue float64
}

// Suite runs a fixed list of tests over the same sample
type Suite struct {
	tests []Test
}

// NewSuite creates a suite from the given tests
func NewSuite(tests ...Test) *Suite {
	return &Suite{tests: tests}
}

// DefaultSuite returns the six tests used to score power transforms
func DefaultSuite() *Suite {
	return NewSuite(
		NewLilliefors(),
		NewShapiroFrancia(),
		NewAndersonDarling(),
		NewShapiroWilk(),
		NewRobustJarqueBera(),
		NewDAgostinoPearson(),
	)
}

// Tests returns the tests in evaluation order
func (s *Suite) Tests() []Test {
	return append([]Test(nil), s.tests...)
}

// Len returns the number of tests
func (s *Suite) Len() int {
	return len(s.tests)
}

// MinSampleSize is the smallest n every test in the suite accepts
func (s *Suite) MinSampleSize() int {
	min := 0
	for _, t := range s.tests {
		if b, ok := t.(bounded); ok {
			lo, _ := b.SampleRange()
			if lo > min {
				min = lo
			}
		}
	}
	return min
}

// MaxSampleSize is the largest n every test in the suite accepts, or 0 if
// no test imposes a limit
func (s *Suite) MaxSampleSize() int {
	max := 0
	for _, t := range s.tests {
		if b, ok := t.(bounded); ok {
			_, hi := b.SampleRange()
			if hi > 0 && (max == 0 || hi < max) {
				max = hi
			}
		}
	}
	return max
}

// Run evaluates every test in order and stops at the first error
func (s *Suite) Run(data []float64) ([]Result, error) {
	results := make([]Result, len(s.tests))
	for i, t := range s.tests {
		p, err := t.PValue(data)
		if err != nil {
			return nil, errors.Wrapf(err, "%s failed", t.Name())
		}
		results[i] = Result{Test: t.Name(), PValue: p}
	}
	return results, nil
}

// bounded is implemented by tests that only accept some sample sizes
type bounded interface {
	SampleRange() (min, max int)
}

func checkSize(name string, n, min, max int) error {
	if n < min || (max > 0 && n > max) {
		if max > 0 {
			return errors.Newf(errors.CodeInvalidInput, "%s needs between %d and %d observations, got %d", name, min, max, n)
		}
		return errors.Newf(errors.CodeInvalidInput, "%s needs at least %d observations, got %d", name, min, n)
	}
	return nil
}

// prepare returns a sorted copy of data with its mean and sample sd. It
// rejects non-finite values and a zero spread.
func prepare(name string, data []float64) (sorted []float64, mean, sd float64, err error) {
	for _, x := range data {
		if math.IsNaN(x) || math.IsInf(x, 0) {
			return nil, 0, 0, errors.Newf(errors.CodeInvalidInput, "%s requires finite values", name)
		}
	}
	sorted = append([]float64(nil), data...)
	sort.Float64s(sorted)
	mean, sd = stat.MeanStdDev(sorted, nil)
	if !(sd > 0) {
		return nil, 0, 0, errors.Newf(errors.CodeDegenerateSample, "%s requires a sample with non-zero variance", name)
	}
	return sorted, mean, sd, nil
}

// centralMoment returns the k-th central moment with divisor n
func centralMoment(data []float64, mean float64, k float64) float64 {
	var sum float64
	for _, x := range data {
		sum += math.Pow(x-mean, k)
	}
	return sum / float64(len(data))
}

func clampProb(p float64) float64 {
	switch {
	case math.IsNaN(p):
		return p
	case p < 0:
		return 0
	case p > 1:
		return 1
	}
	return p
}
