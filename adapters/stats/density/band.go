// Package density computes kernel density curves with variability bands
// together with a moment-matched normal reference curve.
package density

import (
	"math"

	"github.com/aclements/go-moremath/stats"
	"gonum.org/v1/gonum/stat/distuv"

	"figstats/domain/figure"
	"figstats/internal/errors"
)

const (
	// DefaultGridSize matches the number of points R's density() returns
	DefaultGridSize = 512
	// DefaultCut is how many bandwidths the grid extends past the data
	DefaultCut = 3.0
	// bandWidth is the band half-width in standard errors
	bandWidth = 2.0
)

type options struct {
	bandwidth float64
	gridSize  int
	cut       float64
}

// Option configures Estimate
type Option func(*options)

// WithBandwidth fixes the kernel standard deviation instead of using
// Silverman's rule.
func WithBandwidth(h float64) Option {
	return func(o *options) { o.bandwidth = h }
}

// WithGridSize sets the number of evaluation points
func WithGridSize(n int) Option {
	return func(o *options) { o.gridSize = n }
}

// WithCut sets how far, in bandwidths, the grid extends beyond the data range
func WithCut(cut float64) Option {
	return func(o *options) { o.cut = cut }
}

// Estimate returns one row per evaluation grid point with the empirical
// density, its Bowman-Azzalini variability band, and a normal density with
// mean and variance matched to the smoothed sample plus its pointwise band.
// Missing values are dropped; a constant sample is rejected.
func Estimate(sample []float64, opts ...Option) ([]figure.DensityRow, error) {
	o := options{gridSize: DefaultGridSize, cut: DefaultCut}
	for _, opt := range opts {
		opt(&o)
	}
	if o.gridSize < 2 {
		return nil, errors.Newf(errors.CodeInvalidInput, "grid size must be at least 2, got %d", o.gridSize)
	}
	if o.cut < 0 || math.IsNaN(o.cut) {
		return nil, errors.Newf(errors.CodeInvalidInput, "cut must be non-negative, got %g", o.cut)
	}

	data, err := figure.CleanSorted(sample)
	if err != nil {
		return nil, err
	}
	summary, err := figure.Summarize(data)
	if err != nil {
		return nil, err
	}
	if summary.Degenerate() {
		return nil, errors.DegenerateSample("density band requires a sample with non-zero variance")
	}

	h := o.bandwidth
	if h == 0 {
		h = SilvermanBandwidth(data, summary.StdDev)
	}
	if !(h > 0) || math.IsInf(h, 0) {
		return nil, errors.Newf(errors.CodeInvalidInput, "bandwidth must be positive and finite, got %g", h)
	}

	grid := Grid(data[0], data[len(data)-1], h, o.cut, o.gridSize)
	kde := &stats.KDE{
		Sample:    stats.Sample{Xs: data},
		Kernel:    stats.GaussianKernel,
		Bandwidth: h,
	}

	n := float64(summary.N)
	// Variance-stabilised band: sqrt(f) has approximately constant variance
	// phi(0; 0, sqrt 2) / (4 n h) under a Gaussian kernel.
	sqrtSE := math.Sqrt(distuv.Normal{Mu: 0, Sigma: math.Sqrt2}.Prob(0) / (4 * n * h))

	s2, h2 := summary.StdDev*summary.StdDev, h*h
	smoothed := distuv.Normal{Mu: summary.Mean, Sigma: math.Sqrt(s2 + h2)}
	halfSmoothed := distuv.Normal{Mu: summary.Mean, Sigma: math.Sqrt(s2 + h2/2)}
	kernelSquared := distuv.Normal{Mu: 0, Sigma: math.Sqrt(2 * h2)}.Prob(0)

	rows := make([]figure.DensityRow, len(grid))
	for i, x := range grid {
		f := kde.PDF(x)
		root := math.Sqrt(f)
		lower := math.Max(root-bandWidth*sqrtSE, 0)
		upper := root + bandWidth*sqrtSE

		d := smoothed.Prob(x)
		v := (kernelSquared*halfSmoothed.Prob(x) - d*d) / n
		se := math.Sqrt(math.Max(v, 0))

		rows[i] = figure.DensityRow{
			EvalPoint:     x,
			ObsDensity:    f,
			ObsLower:      lower * lower,
			ObsUpper:      upper * upper,
			NormalDensity: d,
			NormalLower:   d - bandWidth*se,
			NormalUpper:   d + bandWidth*se,
		}
	}
	return rows, nil
}

// Grid returns size evenly spaced points over [min - cut*h, max + cut*h]
func Grid(min, max, h, cut float64, size int) []float64 {
	lo, hi := min-cut*h, max+cut*h
	grid := make([]float64, size)
	step := (hi - lo) / float64(size-1)
	for i := range grid {
		grid[i] = lo + float64(i)*step
	}
	grid[size-1] = hi
	return grid
}
