// Package transform searches Box-Cox and Yeo-Johnson power transforms for
// the parameter that makes a sample look most normal.
package transform

import (
	"context"
	"math"
	"runtime"

	"golang.org/x/sync/errgroup"

	"figstats/adapters/stats/normality"
	"figstats/domain/figure"
	"figstats/internal/errors"
)

// GridSize is the number of lambda values tried across the range
const GridSize = 50

type options struct {
	family  figure.PowerFamily
	lo, hi  float64
	combine figure.CombineMethod
	start   float64
	suite   *normality.Suite
	workers int
}

// Option configures Search
type Option func(*options)

// WithFamily selects Box-Cox or Yeo-Johnson
func WithFamily(f figure.PowerFamily) Option {
	return func(o *options) { o.family = f }
}

// WithLambdaRange sets the closed interval searched
func WithLambdaRange(lo, hi float64) Option {
	return func(o *options) { o.lo, o.hi = lo, hi }
}

// WithCombine selects the p-value combination rule
func WithCombine(m figure.CombineMethod) Option {
	return func(o *options) { o.combine = m }
}

// WithStart sets the offset used when shifting a sample for Box-Cox
func WithStart(start float64) Option {
	return func(o *options) { o.start = start }
}

// WithSuite replaces the six default normality tests
func WithSuite(s *normality.Suite) Option {
	return func(o *options) { o.suite = s }
}

// WithWorkers bounds how many candidates are scored at once; zero or less
// means GOMAXPROCS.
func WithWorkers(n int) Option {
	return func(o *options) { o.workers = n }
}

// Search transforms the sample at each of GridSize evenly spaced lambdas,
// drops transforms with no spread, scores the standardized survivors with
// the normality suite, and returns the lambda with the largest combined
// p-value. Ties go to the smallest lambda.
func Search(ctx context.Context, sample []float64, opts ...Option) (*figure.SearchResult, error) {
	o := options{
		family:  figure.FamilyBoxCox,
		lo:      -2,
		hi:      2,
		combine: figure.CombineStouffer,
		start:   DefaultStart,
	}
	for _, opt := range opts {
		opt(&o)
	}
	if o.suite == nil {
		o.suite = normality.DefaultSuite()
	}
	if o.workers <= 0 {
		o.workers = runtime.GOMAXPROCS(0)
	}

	fn, err := transformer(o.family)
	if err != nil {
		return nil, err
	}
	if err := o.combine.Validate(); err != nil {
		return nil, err
	}
	if math.IsNaN(o.lo) || math.IsNaN(o.hi) || math.IsInf(o.lo, 0) || math.IsInf(o.hi, 0) || o.lo > o.hi {
		return nil, errors.Newf(errors.CodeInvalidInput, "lambda range [%g, %g] is not a finite closed interval", o.lo, o.hi)
	}
	if !(o.start > 0) {
		return nil, errors.Newf(errors.CodeInvalidInput, "start must be positive, got %g", o.start)
	}
	if o.suite.Len() == 0 {
		return nil, errors.InvalidInput("normality suite has no tests")
	}

	data, err := figure.Clean(sample)
	if err != nil {
		return nil, err
	}
	if min, max := o.suite.MinSampleSize(), o.suite.MaxSampleSize(); len(data) < min {
		return nil, errors.Newf(errors.CodeInvalidInput,
			"normality tests need at least %d observations, got %d", min, len(data))
	} else if max > 0 && len(data) > max {
		return nil, errors.Newf(errors.CodeInvalidInput,
			"normality tests accept at most %d observations, got %d", max, len(data))
	}

	var shift float64
	if o.family == figure.FamilyBoxCox {
		shift = PositiveShift(data, o.start)
	}

	grid := Grid(o.lo, o.hi)
	slots := make([]*figure.Candidate, len(grid))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(o.workers)
	for i, lambda := range grid {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			c, err := score(data, shift, lambda, fn, o.suite, o.combine)
			if err != nil {
				return err
			}
			slots[i] = c
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	res := &figure.SearchResult{
		Family:  o.family,
		Combine: o.combine,
		Shift:   shift,
	}
	best := -1
	for _, c := range slots {
		if c == nil {
			res.Discarded++
			continue
		}
		res.Candidates = append(res.Candidates, *c)
		if best < 0 || c.Combined > res.Candidates[best].Combined {
			best = len(res.Candidates) - 1
		}
	}
	if best < 0 {
		return nil, errors.NoValidCandidate("every transform in the lambda grid has zero variance")
	}
	res.Lambda = res.Candidates[best].Lambda
	res.Combined = res.Candidates[best].Combined
	return res, nil
}

// score transforms and standardizes the sample for one lambda. A nil
// candidate with a nil error means the transform was degenerate.
func score(data []float64, shift, lambda float64, fn func(x, lambda float64) float64,
	suite *normality.Suite, method figure.CombineMethod) (*figure.Candidate, error) {
	y := make([]float64, len(data))
	for i, x := range data {
		v := fn(x+shift, lambda)
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return nil, nil
		}
		y[i] = v
	}
	summary, err := figure.Summarize(y)
	if err != nil {
		return nil, err
	}
	if summary.Degenerate() {
		return nil, nil
	}
	for i := range y {
		y[i] = (y[i] - summary.Mean) / summary.StdDev
	}

	results, err := suite.Run(y)
	if err != nil {
		if errors.HasCode(err, errors.CodeDegenerateSample) {
			return nil, nil
		}
		return nil, errors.Wrapf(err, "scoring lambda %g", lambda)
	}
	c := &figure.Candidate{Lambda: lambda, PValues: make([]figure.TestPValue, len(results))}
	ps := make([]float64, len(results))
	for i, r := range results {
		ps[i] = ClampPValue(r.PValue)
		c.PValues[i] = figure.TestPValue{Test: r.Test, PValue: ps[i]}
	}
	c.Combined, err = Combine(method, ps)
	if err != nil {
		return nil, err
	}
	return c, nil
}

// Grid returns GridSize evenly spaced values from lo to hi inclusive
func Grid(lo, hi float64) []float64 {
	grid := make([]float64, GridSize)
	step := (hi - lo) / float64(GridSize-1)
	for i := range grid {
		grid[i] = lo + float64(i)*step
	}
	grid[GridSize-1] = hi
	return grid
}
