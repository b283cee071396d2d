package normality

import (
	"math"

	"gonum.org/v1/gonum/stat"
	"gonum.org/v1/gonum/stat/distuv"
)

// Royston (1995) polynomial approximations, ascending powers.
var (
	swC1 = []float64{0, 0.221157, -0.147981, -2.07119, 4.434685, -2.706056}
	swC2 = []float64{0, 0.042981, -0.293762, -1.752461, 5.682633, -3.582633}
	swC3 = []float64{0.544, -0.39978, 0.025054, -6.714e-4}
	swC4 = []float64{1.3822, -0.77857, 0.062767, -0.0020322}
	swC5 = []float64{-1.5861, -0.31082, -0.083751, 0.0038915}
	swC6 = []float64{-0.4803, -0.082676, 0.0030302}
	swG  = []float64{-2.273, 0.459}
)

// ShapiroWilk is the Shapiro-Wilk W test using Royston's coefficient and
// p-value approximations (algorithm AS R94).
type ShapiroWilk struct{}

// NewShapiroWilk creates a Shapiro-Wilk test
func NewShapiroWilk() *ShapiroWilk {
	return &ShapiroWilk{}
}

// Name returns the test name
func (t *ShapiroWilk) Name() string {
	return "shapiro_wilk"
}

// Description returns a human-readable description
func (t *ShapiroWilk) Description() string {
	return "Correlation of order statistics with expected normal scores"
}

// SampleRange reports the supported sample sizes
func (t *ShapiroWilk) SampleRange() (int, int) {
	return 3, 5000
}

// Statistic returns W
func (t *ShapiroWilk) Statistic(data []float64) (float64, error) {
	if err := checkSize(t.Name(), len(data), 3, 5000); err != nil {
		return 0, err
	}
	sorted, mean, _, err := prepare(t.Name(), data)
	if err != nil {
		return 0, err
	}
	n := len(sorted)
	a := swCoefficients(n)

	var num float64
	for i, ai := range a {
		num += ai * (sorted[n-1-i] - sorted[i])
	}
	var den float64
	for _, x := range sorted {
		den += (x - mean) * (x - mean)
	}
	return math.Min(num*num/den, 1), nil
}

// PValue performs the test
func (t *ShapiroWilk) PValue(data []float64) (float64, error) {
	w, err := t.Statistic(data)
	if err != nil {
		return 0, err
	}
	n := float64(len(data))
	if len(data) == 3 {
		p := 6 / math.Pi * (math.Asin(math.Sqrt(w)) - math.Pi/3)
		return clampProb(p), nil
	}

	y := math.Log(1 - w)
	var m, s float64
	if len(data) <= 11 {
		gamma := poly(swG, n)
		if y >= gamma {
			return 1e-99, nil
		}
		y = -math.Log(gamma - y)
		m = poly(swC3, n)
		s = math.Exp(poly(swC4, n))
	} else {
		ln := math.Log(n)
		m = poly(swC5, ln)
		s = math.Exp(poly(swC6, ln))
	}
	return clampProb(distuv.Normal{Mu: m, Sigma: s}.Survival(y)), nil
}

// swCoefficients returns the first n/2 antisymmetric weights a_i
func swCoefficients(n int) []float64 {
	half := n / 2
	a := make([]float64, half)
	if n == 3 {
		a[0] = math.Sqrt(0.5)
		return a
	}

	m := make([]float64, half)
	var summ2 float64
	for i := range m {
		m[i] = distuv.UnitNormal.Quantile((float64(i+1) - 0.375) / (float64(n) + 0.25))
		summ2 += m[i] * m[i]
	}
	summ2 *= 2
	ssumm2 := math.Sqrt(summ2)
	rsn := 1 / math.Sqrt(float64(n))

	a1 := poly(swC1, rsn) - m[0]/ssumm2
	first := 1
	var fac float64
	if n > 5 {
		a2 := -m[1]/ssumm2 + poly(swC2, rsn)
		fac = math.Sqrt((summ2 - 2*m[0]*m[0] - 2*m[1]*m[1]) / (1 - 2*a1*a1 - 2*a2*a2))
		a[1] = a2
		first = 2
	} else {
		fac = math.Sqrt((summ2 - 2*m[0]*m[0]) / (1 - 2*a1*a1))
	}
	a[0] = a1
	for i := first; i < half; i++ {
		a[i] = -m[i] / fac
	}
	return a
}

// ShapiroFrancia replaces Shapiro-Wilk's weights by plain expected normal
// scores; the p-value uses Royston's (1993) log-normal approximation.
type ShapiroFrancia struct{}

// NewShapiroFrancia creates a Shapiro-Francia test
func NewShapiroFrancia() *ShapiroFrancia {
	return &ShapiroFrancia{}
}

// Name returns the test name
func (t *ShapiroFrancia) Name() string {
	return "shapiro_francia"
}

// Description returns a human-readable description
func (t *ShapiroFrancia) Description() string {
	return "Squared correlation of order statistics with Blom scores"
}

// SampleRange reports the supported sample sizes
func (t *ShapiroFrancia) SampleRange() (int, int) {
	return 5, 5000
}

// Statistic returns W'
func (t *ShapiroFrancia) Statistic(data []float64) (float64, error) {
	if err := checkSize(t.Name(), len(data), 5, 5000); err != nil {
		return 0, err
	}
	sorted, _, _, err := prepare(t.Name(), data)
	if err != nil {
		return 0, err
	}
	n := float64(len(sorted))
	scores := make([]float64, len(sorted))
	for i := range scores {
		scores[i] = distuv.UnitNormal.Quantile((float64(i+1) - 0.375) / (n + 0.25))
	}
	r := stat.Correlation(sorted, scores, nil)
	return r * r, nil
}

// PValue performs the test
func (t *ShapiroFrancia) PValue(data []float64) (float64, error) {
	w, err := t.Statistic(data)
	if err != nil {
		return 0, err
	}
	u := math.Log(float64(len(data)))
	v := math.Log(u)
	mu := -1.2725 + 1.0521*(v-u)
	sig := 1.0308 - 0.26758*(v+2/u)
	z := (math.Log(1-w) - mu) / sig
	return clampProb(distuv.UnitNormal.Survival(z)), nil
}

// poly evaluates c[0] + c[1]x + c[2]x^2 + ...
func poly(c []float64, x float64) float64 {
	var r float64
	for i := len(c) - 1; i >= 0; i-- {
		r = r*x + c[i]
	}
	return r
}
