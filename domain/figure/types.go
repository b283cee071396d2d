package figure

import (
	"strings"

	"figstats/internal/errors"
)

// DensityRow is one evaluation point of a density band table
type DensityRow struct {
	EvalPoint     float64 `json:"eval_point"`
	ObsDensity    float64 `json:"obs_density"`
	ObsLower      float64 `json:"obs_lower"`
	ObsUpper      float64 `json:"obs_upper"`
	NormalDensity float64 `json:"normal_density"`
	NormalLower   float64 `json:"normal_lower"`
	NormalUpper   float64 `json:"normal_upper"`
}

// QuantileRow is one order statistic of a quantile comparison table.
// Lower and Upper may be +/-Inf when the reference density vanishes.
type QuantileRow struct {
	Observed    float64 `json:"observed"`
	Theoretical float64 `json:"theoretical"`
	Fitted      float64 `json:"fitted"`
	Lower       float64 `json:"lower"`
	Upper       float64 `json:"upper"`
}

// QuantileResult holds the quantile table plus the reference line
type QuantileResult struct {
	Rows         []QuantileRow      `json:"rows"`
	Intercept    float64            `json:"intercept"`
	Slope        float64            `json:"slope"`
	Distribution DistributionFamily `json:"distribution"`
	Line         LineMethod         `json:"line"`
	Confidence   float64            `json:"confidence"`
}

// TestPValue is the p-value one normality test produced for a candidate
type TestPValue struct {
	Test   string  `json:"test"`
	PValue float64 `json:"p_value"`
}

// Candidate is a surviving lambda of the transform grid
type Candidate struct {
	Lambda   float64      `json:"lambda"`
	PValues  []TestPValue `json:"p_values"`
	Combined float64      `json:"combined"`
}

// SearchResult is the outcome of a normalizing transform search
type SearchResult struct {
	Lambda     float64       `json:"lambda"`
	Combined   float64       `json:"combined"`
	Family     PowerFamily   `json:"family"`
	Combine    CombineMethod `json:"combine"`
	Shift      float64       `json:"shift"` // added to every value before a Box-Cox transform
	Candidates []Candidate   `json:"candidates"`
	Discarded  int           `json:"discarded"`
}

// PowerFamily names a power-transform family
type PowerFamily string

const (
	FamilyBoxCox     PowerFamily = "boxcox"
	FamilyYeoJohnson PowerFamily = "yeojohnson"
)

// CombineMethod names a p-value combination rule
type CombineMethod string

const (
	CombineStouffer CombineMethod = "stouffer"
	CombineFisher   CombineMethod = "fisher"
	// CombineAverage is the arithmetic mean of the p-values. It has no
	// sampling distribution behind it and is kept for compatibility only.
	CombineAverage CombineMethod = "average"
)

// LineMethod names how a quantile comparison reference line is fitted
type LineMethod string

const (
	LineQuartile LineMethod = "quartile"
	LineRobust   LineMethod = "robust"
	LineNone     LineMethod = "none"
)

// DistributionFamily names a theoretical reference distribution
type DistributionFamily string

const (
	DistNormal      DistributionFamily = "norm"
	DistStudentsT   DistributionFamily = "t"
	DistExponential DistributionFamily = "exp"
	DistUniform     DistributionFamily = "unif"
	DistLogNormal   DistributionFamily = "lnorm"
	DistChiSquared  DistributionFamily = "chisq"
	DistGamma       DistributionFamily = "gamma"
	DistWeibull     DistributionFamily = "weibull"
	DistLaplace     DistributionFamily = "laplace"
)

// ParsePowerFamily accepts the family names and the common short forms
func ParsePowerFamily(s string) (PowerFamily, error) {
	switch normalize(s) {
	case "boxcox", "bc":
		return FamilyBoxCox, nil
	case "yeojohnson", "yj":
		return FamilyYeoJohnson, nil
	}
	return "", errors.Newf(errors.CodeInvalidInput, "unknown power family %q (want boxcox or yeojohnson)", s)
}

// ParseCombineMethod validates a p-value combination rule name
func ParseCombineMethod(s string) (CombineMethod, error) {
	switch CombineMethod(normalize(s)) {
	case CombineStouffer:
		return CombineStouffer, nil
	case CombineFisher:
		return CombineFisher, nil
	case CombineAverage:
		return CombineAverage, nil
	}
	return "", errors.Newf(errors.CodeInvalidInput, "unknown combine method %q (want stouffer, fisher or average)", s)
}

// ParseLineMethod validates a reference line method name
func ParseLineMethod(s string) (LineMethod, error) {
	switch LineMethod(normalize(s)) {
	case LineQuartile, "":
		return LineQuartile, nil
	case LineRobust:
		return LineRobust, nil
	case LineNone:
		return LineNone, nil
	}
	return "", errors.Newf(errors.CodeInvalidInput, "unknown line method %q (want quartile, robust or none)", s)
}

// ParseDistributionFamily validates a reference distribution name.
// Whether the family is resolvable is decided by the quantile registry.
func ParseDistributionFamily(s string) (DistributionFamily, error) {
	f := DistributionFamily(normalize(s))
	if f == "" || f == "normal" {
		return DistNormal, nil
	}
	for _, known := range DistributionFamilies() {
		if f == known {
			return f, nil
		}
	}
	return "", errors.Newf(errors.CodeInvalidInput, "unknown distribution %q", s)
}

// DistributionFamilies lists every supported reference distribution
func DistributionFamilies() []DistributionFamily {
	return []DistributionFamily{
		DistNormal, DistStudentsT, DistExponential, DistUniform, DistLogNormal,
		DistChiSquared, DistGamma, DistWeibull, DistLaplace,
	}
}

func normalize(s string) string {
	s = strings.ToLower(strings.TrimSpace(s))
	s = strings.NewReplacer("-", "", "_", "", " ", "").Replace(s)
	return s
}

func (f PowerFamily) String() string        { return string(f) }
func (m CombineMethod) String() string      { return string(m) }
func (m LineMethod) String() string         { return string(m) }
func (d DistributionFamily) String() string { return string(d) }

// Validate rejects unknown power families
func (f PowerFamily) Validate() error {
	_, err := ParsePowerFamily(string(f))
	return err
}

// Validate rejects unknown combine methods
func (m CombineMethod) Validate() error {
	_, err := ParseCombineMethod(string(m))
	return err
}

// Shape summarizes the location, spread and shape of a cleaned sample
type Shape struct {
	N        int     `json:"n"`
	Missing  int     `json:"missing"`
	Mean     float64 `json:"mean"`
	StdDev   float64 `json:"sd"`
	Min      float64 `json:"min"`
	Q25      float64 `json:"q25"`
	Median   float64 `json:"median"`
	Q75      float64 `json:"q75"`
	Max      float64 `json:"max"`
	Skewness float64 `json:"skewness"`
	Kurtosis float64 `json:"excess_kurtosis"`
	Outliers int     `json:"outliers"` // beyond 1.5 IQR from the quartiles
}
