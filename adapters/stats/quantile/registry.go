package quantile

import (
	"fmt"
	"math"
	"strings"

	"gonum.org/v1/gonum/stat/distuv"

	"figstats/domain/figure"
	"figstats/internal/errors"
)

// Reference is a theoretical distribution used to place sample quantiles.
// Every gonum distuv continuous distribution satisfies it.
type Reference interface {
	Quantile(p float64) float64
	Prob(x float64) float64
}

type familySpec struct {
	params   []string
	defaults []float64 // NaN marks a required parameter
	build    func(p []float64) (Reference, error)
}

var required = math.NaN()

var registry = map[figure.DistributionFamily]familySpec{
	figure.DistNormal: {
		params:   []string{"mean", "sd"},
		defaults: []float64{0, 1},
		build: func(p []float64) (Reference, error) {
			if err := positive("sd", p[1]); err != nil {
				return nil, err
			}
			return distuv.Normal{Mu: p[0], Sigma: p[1]}, nil
		},
	},
	figure.DistStudentsT: {
		params:   []string{"df"},
		defaults: []float64{required},
		build: func(p []float64) (Reference, error) {
			if err := positive("df", p[0]); err != nil {
				return nil, err
			}
			return distuv.StudentsT{Mu: 0, Sigma: 1, Nu: p[0]}, nil
		},
	},
	figure.DistExponential: {
		params:   []string{"rate"},
		defaults: []float64{1},
		build: func(p []float64) (Reference, error) {
			if err := positive("rate", p[0]); err != nil {
				return nil, err
			}
			return distuv.Exponential{Rate: p[0]}, nil
		},
	},
	figure.DistUniform: {
		params:   []string{"min", "max"},
		defaults: []float64{0, 1},
		build: func(p []float64) (Reference, error) {
			if !(p[1] > p[0]) {
				return nil, errors.Newf(errors.CodeInvalidInput, "unif needs min < max, got [%g, %g]", p[0], p[1])
			}
			return distuv.Uniform{Min: p[0], Max: p[1]}, nil
		},
	},
	figure.DistLogNormal: {
		params:   []string{"meanlog", "sdlog"},
		defaults: []float64{0, 1},
		build: func(p []float64) (Reference, error) {
			if err := positive("sdlog", p[1]); err != nil {
				return nil, err
			}
			return distuv.LogNormal{Mu: p[0], Sigma: p[1]}, nil
		},
	},
	figure.DistChiSquared: {
		params:   []string{"df"},
		defaults: []float64{required},
		build: func(p []float64) (Reference, error) {
			if err := positive("df", p[0]); err != nil {
				return nil, err
			}
			return distuv.ChiSquared{K: p[0]}, nil
		},
	},
	figure.DistGamma: {
		params:   []string{"shape", "rate"},
		defaults: []float64{required, 1},
		build: func(p []float64) (Reference, error) {
			if err := positive("shape", p[0]); err != nil {
				return nil, err
			}
			if err := positive("rate", p[1]); err != nil {
				return nil, err
			}
			return distuv.Gamma{Alpha: p[0], Beta: p[1]}, nil
		},
	},
	figure.DistWeibull: {
		params:   []string{"shape", "scale"},
		defaults: []float64{required, 1},
		build: func(p []float64) (Reference, error) {
			if err := positive("shape", p[0]); err != nil {
				return nil, err
			}
			if err := positive("scale", p[1]); err != nil {
				return nil, err
			}
			return distuv.Weibull{K: p[0], Lambda: p[1]}, nil
		},
	},
	figure.DistLaplace: {
		params:   []string{"location", "scale"},
		defaults: []float64{0, 1},
		build: func(p []float64) (Reference, error) {
			if err := positive("scale", p[1]); err != nil {
				return nil, err
			}
			return distuv.Laplace{Mu: p[0], Scale: p[1]}, nil
		},
	},
}

// Resolve builds the reference distribution for a family. Positional
// params override the family defaults in order; required parameters
// without a value are an error.
func Resolve(family figure.DistributionFamily, params ...float64) (Reference, error) {
	spec, ok := registry[family]
	if !ok {
		return nil, errors.Newf(errors.CodeInvalidInput, "unknown distribution %q", family)
	}
	if len(params) > len(spec.params) {
		return nil, errors.Newf(errors.CodeInvalidInput,
			"%s takes at most %d parameters (%s), got %d",
			family, len(spec.params), strings.Join(spec.params, ", "), len(params))
	}

	values := append([]float64(nil), spec.defaults...)
	copy(values, params)
	for i, v := range values {
		if math.IsNaN(v) {
			return nil, errors.Newf(errors.CodeInvalidInput, "%s requires parameter %q", family, spec.params[i])
		}
		if math.IsInf(v, 0) {
			return nil, errors.Newf(errors.CodeInvalidInput, "%s parameter %q must be finite", family, spec.params[i])
		}
	}
	return spec.build(values)
}

// Params lists the parameter names of a family in positional order
func Params(family figure.DistributionFamily) ([]string, error) {
	spec, ok := registry[family]
	if !ok {
		return nil, errors.Newf(errors.CodeInvalidInput, "unknown distribution %q", family)
	}
	return append([]string(nil), spec.params...), nil
}

func positive(name string, v float64) error {
	if v > 0 {
		return nil
	}
	return errors.InvalidInput(fmt.Sprintf("parameter %q must be positive, got %g", name, v))
}
