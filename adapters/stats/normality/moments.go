package normality

import (
	"math"

	"github.com/montanaflynn/stats"
	"gonum.org/v1/gonum/stat/distuv"

	"figstats/internal/errors"
)

// RobustJarqueBera is Gel and Gastwirth's (2008) Jarque-Bera variant that
// scales the third and fourth moments by the average absolute deviation
// from the median instead of the standard deviation.
type RobustJarqueBera struct{}

// NewRobustJarqueBera creates a robust Jarque-Bera test
func NewRobustJarqueBera() *RobustJarqueBera {
	return &RobustJarqueBera{}
}

// Name returns the test name
func (t *RobustJarqueBera) Name() string {
	return "robust_jarque_bera"
}

// Description returns a human-readable description
func (t *RobustJarqueBera) Description() string {
	return "Skewness and kurtosis scaled by a robust dispersion estimate"
}

// SampleRange reports the supported sample sizes
func (t *RobustJarqueBera) SampleRange() (int, int) {
	return 3, 0
}

// Statistic returns RJB, asymptotically chi-square with 2 df
func (t *RobustJarqueBera) Statistic(data []float64) (float64, error) {
	if err := checkSize(t.Name(), len(data), 3, 0); err != nil {
		return 0, err
	}
	sorted, mean, _, err := prepare(t.Name(), data)
	if err != nil {
		return 0, err
	}
	median, err := stats.Median(sorted)
	if err != nil {
		return 0, errors.Wrap(errors.InternalError(err.Error()), "median failed")
	}
	var absDev float64
	for _, x := range sorted {
		absDev += math.Abs(x - median)
	}
	j := math.Sqrt(math.Pi/2) * absDev / float64(len(sorted))
	if j == 0 {
		return 0, errors.Newf(errors.CodeDegenerateSample, "%s: more than half the sample equals the median", t.Name())
	}

	n := float64(len(sorted))
	m3 := centralMoment(sorted, mean, 3)
	m4 := centralMoment(sorted, mean, 4)
	skew := m3 / (j * j * j)
	kurt := m4/(j*j*j*j) - 3
	return n/6*skew*skew + n/64*kurt*kurt, nil
}

// PValue performs the test
func (t *RobustJarqueBera) PValue(data []float64) (float64, error) {
	rjb, err := t.Statistic(data)
	if err != nil {
		return 0, err
	}
	return clampProb(distuv.ChiSquared{K: 2}.Survival(rjb)), nil
}

// DAgostinoPearson is the omnibus K^2 test combining D'Agostino's
// normalizing transforms of sample skewness and of sample kurtosis
// (Anscombe-Glynn).
type DAgostinoPearson struct{}

// NewDAgostinoPearson creates a D'Agostino-Pearson omnibus test
func NewDAgostinoPearson() *DAgostinoPearson {
	return &DAgostinoPearson{}
}

// Name returns the test name
func (t *DAgostinoPearson) Name() string {
	return "dagostino_pearson"
}

// Description returns a human-readable description
func (t *DAgostinoPearson) Description() string {
	return "Omnibus K-squared from transformed skewness and kurtosis"
}

// SampleRange reports the supported sample sizes
func (t *DAgostinoPearson) SampleRange() (int, int) {
	return 8, 0
}

// Statistic returns K^2 = Z3^2 + Z4^2
func (t *DAgostinoPearson) Statistic(data []float64) (float64, error) {
	if err := checkSize(t.Name(), len(data), 8, 0); err != nil {
		return 0, err
	}
	sorted, mean, _, err := prepare(t.Name(), data)
	if err != nil {
		return 0, err
	}
	n := float64(len(sorted))
	m2 := centralMoment(sorted, mean, 2)
	b1 := centralMoment(sorted, mean, 3) / math.Pow(m2, 1.5)
	b2 := centralMoment(sorted, mean, 4) / (m2 * m2)

	// skewness
	sd3 := math.Sqrt(6 * (n - 2) / ((n + 1) * (n + 3)))
	u3 := b1 / sd3
	beta := 3 * (n*n + 27*n - 70) * (n + 1) * (n + 3) / ((n - 2) * (n + 5) * (n + 7) * (n + 9))
	w2 := math.Sqrt(2*(beta-1)) - 1
	delta := 1 / math.Sqrt(math.Log(math.Sqrt(w2)))
	alpha := math.Sqrt(2 / (w2 - 1))
	z3 := delta * math.Asinh(u3/alpha)

	// kurtosis
	sd4 := math.Sqrt(24 * (n - 2) * (n - 3) * n / ((n + 1) * (n + 1) * (n + 3) * (n + 5)))
	u4 := (b2 - 3 + 6/(n+1)) / sd4
	bb := 6 * (n*n - 5*n + 2) / ((n + 7) * (n + 9)) * math.Sqrt(6*(n+3)*(n+5)/(n*(n-2)*(n-3)))
	aa := 6 + 8/bb*(2/bb+math.Sqrt(1+4/(bb*bb)))
	jm := math.Sqrt(2 / (9 * aa))
	pos := math.Cbrt((1 - 2/aa) / (1 + u4*math.Sqrt(2/(aa-4))))
	z4 := (1 - 2/(9*aa) - pos) / jm

	return z3*z3 + z4*z4, nil
}

// PValue performs the test
func (t *DAgostinoPearson) PValue(data []float64) (float64, error) {
	k2, err := t.Statistic(data)
	if err != nil {
		return 0, err
	}
	return clampProb(distuv.ChiSquared{K: 2}.Survival(k2)), nil
}
