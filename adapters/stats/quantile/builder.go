// Package quantile builds quantile-comparison (QQ) plot coordinates with a
// reference line and pointwise confidence envelope.
package quantile

import (
	"math"

	"gonum.org/v1/gonum/stat/distuv"

	"figstats/domain/figure"
	"figstats/internal/errors"
)

// DefaultConfidence is the envelope coverage used when none is given
const DefaultConfidence = 0.95

type options struct {
	family     figure.DistributionFamily
	params     []float64
	line       figure.LineMethod
	confidence float64
}

// Option configures Build
type Option func(*options)

// WithDistribution selects the reference family and its positional parameters
func WithDistribution(family figure.DistributionFamily, params ...float64) Option {
	return func(o *options) {
		o.family = family
		o.params = params
	}
}

// WithLine selects how the reference line is fitted
func WithLine(method figure.LineMethod) Option {
	return func(o *options) { o.line = method }
}

// WithConfidence sets the pointwise envelope coverage, in (0, 1)
func WithConfidence(c float64) Option {
	return func(o *options) { o.confidence = c }
}

// Build sorts the cleaned sample against quantiles of the reference
// distribution and returns one row per observation with the fitted line and
// its confidence envelope. Rows whose reference density is zero carry
// infinite bounds.
func Build(sample []float64, opts ...Option) (*figure.QuantileResult, error) {
	o := options{family: figure.DistNormal, line: figure.LineQuartile, confidence: DefaultConfidence}
	for _, opt := range opts {
		opt(&o)
	}
	line, err := figure.ParseLineMethod(string(o.line))
	if err != nil {
		return nil, err
	}
	if !(o.confidence > 0 && o.confidence < 1) {
		return nil, errors.Newf(errors.CodeInvalidInput, "confidence must be in (0, 1), got %g", o.confidence)
	}
	ref, err := Resolve(o.family, o.params...)
	if err != nil {
		return nil, err
	}

	ordered, err := figure.CleanSorted(sample)
	if err != nil {
		return nil, err
	}

	res := &figure.QuantileResult{
		Distribution: o.family,
		Line:         line,
		Confidence:   o.confidence,
	}
	res.Rows, res.Intercept, res.Slope, err = envelope(ordered, ref, line, o.confidence)
	if err != nil {
		return nil, err
	}
	return res, nil
}

func envelope(ordered []float64, ref Reference, line figure.LineMethod, confidence float64) ([]figure.QuantileRow, float64, float64, error) {
	n := len(ordered)
	probs := PlottingPositions(n)
	z := make([]float64, n)
	for i, p := range probs {
		z[i] = ref.Quantile(p)
	}

	var a, b float64
	if line == figure.LineRobust {
		var err error
		a, b, err = HuberLine(z, ordered)
		if err != nil {
			return nil, 0, 0, err
		}
	} else {
		a, b = QuartileLine(ordered, ref)
	}

	crit := distuv.UnitNormal.Quantile((1 + confidence) / 2)
	rows := make([]figure.QuantileRow, n)
	for i := range ordered {
		p := probs[i]
		// |b| keeps the envelope ordered when a robust slope comes out negative
		se := (math.Abs(b) / ref.Prob(z[i])) * math.Sqrt(p*(1-p)/float64(n))
		fit := a + b*z[i]
		rows[i] = figure.QuantileRow{
			Observed:    ordered[i],
			Theoretical: z[i],
			Fitted:      fit,
			Lower:       fit - crit*se,
			Upper:       fit + crit*se,
		}
	}
	return rows, a, b, nil
}

// PlottingPositions returns (i - a)/(n + 1 - 2a) for i = 1..n with
// a = 3/8 when n <= 10 and 1/2 otherwise.
func PlottingPositions(n int) []float64 {
	a := 0.5
	if n <= 10 {
		a = 3.0 / 8.0
	}
	out := make([]float64, n)
	for i := range out {
		out[i] = (float64(i+1) - a) / (float64(n) + 1 - 2*a)
	}
	return out
}

// QuartileLine returns the intercept and slope of the line through the
// sample and reference first and third quartiles.
func QuartileLine(sorted []float64, ref Reference) (intercept, slope float64) {
	x25, x75 := figure.Quantile7(sorted, 0.25), figure.Quantile7(sorted, 0.75)
	z25, z75 := ref.Quantile(0.25), ref.Quantile(0.75)
	slope = (x75 - x25) / (z75 - z25)
	intercept = x25 - slope*z25
	return intercept, slope
}
