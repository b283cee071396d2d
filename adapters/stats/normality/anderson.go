package normality

import (
	"math"

	"gonum.org/v1/gonum/stat/distuv"
)

// AndersonDarling weights the squared distance between empirical and
// normal CDFs towards the tails. P-values use Stephens' (1986) piecewise
// approximation for the size-adjusted statistic.
type AndersonDarling struct{}

// NewAndersonDarling creates an Anderson-Darling test
func NewAndersonDarling() *AndersonDarling {
	return &AndersonDarling{}
}

// Name returns the test name
func (t *AndersonDarling) Name() string {
	return "anderson_darling"
}

// Description returns a human-readable description
func (t *AndersonDarling) Description() string {
	return "Tail-weighted quadratic distance to a normal with estimated parameters"
}

// SampleRange reports the supported sample sizes
func (t *AndersonDarling) SampleRange() (int, int) {
	return 8, 0
}

// Statistic returns A^2 before the small-sample adjustment
func (t *AndersonDarling) Statistic(data []float64) (float64, error) {
	if err := checkSize(t.Name(), len(data), 8, 0); err != nil {
		return 0, err
	}
	sorted, mean, sd, err := prepare(t.Name(), data)
	if err != nil {
		return 0, err
	}
	n := len(sorted)
	var h float64
	for i := 0; i < n; i++ {
		lower := logCDF((sorted[i] - mean) / sd)
		upper := logCDF(-(sorted[n-1-i] - mean) / sd)
		h += float64(2*i+1) * (lower + upper)
	}
	return -float64(n) - h/float64(n), nil
}

// PValue performs the test
func (t *AndersonDarling) PValue(data []float64) (float64, error) {
	a, err := t.Statistic(data)
	if err != nil {
		return 0, err
	}
	n := float64(len(data))
	aa := (1 + 0.75/n + 2.25/(n*n)) * a

	var p float64
	switch {
	case aa < 0.2:
		p = 1 - math.Exp(-13.436+101.14*aa-223.73*aa*aa)
	case aa < 0.34:
		p = 1 - math.Exp(-8.318+42.796*aa-59.938*aa*aa)
	case aa < 0.6:
		p = math.Exp(0.9177 - 4.279*aa - 1.38*aa*aa)
	case aa < 10:
		p = math.Exp(1.2937 - 5.709*aa + 0.0186*aa*aa)
	default:
		p = 3.7e-24
	}
	return clampProb(p), nil
}

// logCDF is log Phi(z). The CDF underflows far in the lower tail, so past
// -30 the leading term of the Mills ratio expansion is used instead.
func logCDF(z float64) float64 {
	if z > -30 {
		return math.Log(distuv.UnitNormal.CDF(z))
	}
	return -z*z/2 - math.Log(-z) - 0.5*math.Log(2*math.Pi)
}
