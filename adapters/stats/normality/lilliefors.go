package normality

import (
	"math"

	"gonum.org/v1/gonum/stat/distuv"
)

// Lilliefors is the Kolmogorov-Smirnov test with estimated mean and
// variance. P-values follow Dallal and Wilkinson's approximation, with
// Stephens' modified statistic for the upper range.
type Lilliefors struct{}

// NewLilliefors creates a Lilliefors test
func NewLilliefors() *Lilliefors {
	return &Lilliefors{}
}

// Name returns the test name
func (t *Lilliefors) Name() string {
	return "lilliefors"
}

// Description returns a human-readable description
func (t *Lilliefors) Description() string {
	return "Kolmogorov-Smirnov distance to a normal with estimated parameters"
}

// SampleRange reports the supported sample sizes
func (t *Lilliefors) SampleRange() (int, int) {
	return 5, 0
}

// Statistic returns the Kolmogorov-Smirnov distance D
func (t *Lilliefors) Statistic(data []float64) (float64, error) {
	if err := checkSize(t.Name(), len(data), 5, 0); err != nil {
		return 0, err
	}
	sorted, mean, sd, err := prepare(t.Name(), data)
	if err != nil {
		return 0, err
	}
	n := float64(len(sorted))
	var dPlus, dMinus float64
	for i, x := range sorted {
		p := distuv.UnitNormal.CDF((x - mean) / sd)
		dPlus = math.Max(dPlus, float64(i+1)/n-p)
		dMinus = math.Max(dMinus, p-float64(i)/n)
	}
	return math.Max(dPlus, dMinus), nil
}

// PValue performs the test
func (t *Lilliefors) PValue(data []float64) (float64, error) {
	k, err := t.Statistic(data)
	if err != nil {
		return 0, err
	}
	n := float64(len(data))

	kd, nd := k, n
	if n > 100 {
		kd = k * math.Pow(n/100, 0.49)
		nd = 100
	}
	p := math.Exp(-7.01256*kd*kd*(nd+2.78019) + 2.99587*kd*math.Sqrt(nd+2.78019) -
		0.122119 + 0.974598/math.Sqrt(nd) + 1.67997/nd)
	if p <= 0.1 {
		return p, nil
	}

	kk := (math.Sqrt(n) - 0.01 + 0.85/math.Sqrt(n)) * k
	switch {
	case kk <= 0.302:
		p = 1
	case kk <= 0.5:
		p = 2.76773 - 19.828315*kk + 80.709644*kk*kk - 138.55152*kk*kk*kk + 81.218052*kk*kk*kk*kk
	case kk <= 0.9:
		p = -4.901232 + 40.662806*kk - 97.490286*kk*kk + 94.029866*kk*kk*kk - 32.355711*kk*kk*kk*kk
	case kk <= 1.31:
		p = 6.198765 - 19.558097*kk + 23.186922*kk*kk - 12.024956*kk*kk*kk + 2.290775*kk*kk*kk*kk
	default:
		p = 0
	}
	return clampProb(p), nil
}
