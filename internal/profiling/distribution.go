package profiling

import (
	"math"

	"github.com/montanaflynn/stats"

	"figstats/domain/figure"
	"figstats/internal/errors"
)

// Describe computes summary statistics and shape of a sample. Missing
// values are counted and dropped.
func Describe(sample []float64) (figure.Shape, error) {
	shape := figure.Shape{}

	data, err := figure.CleanSorted(sample)
	if err != nil {
		return shape, err
	}
	shape.N = len(data)
	shape.Missing = len(sample) - len(data)

	summary, err := figure.Summarize(data)
	if err != nil {
		return shape, err
	}
	median, err := stats.Median(data)
	if err != nil {
		return shape, errors.Wrap(errors.InvalidInput(err.Error()), "failed to compute median")
	}

	shape.Mean = summary.Mean
	shape.StdDev = summary.StdDev
	shape.Min = data[0]
	shape.Max = data[len(data)-1]
	shape.Median = median
	shape.Q25 = figure.Quantile7(data, 0.25)
	shape.Q75 = figure.Quantile7(data, 0.75)
	shape.Outliers = detectOutliers(data, shape.Q25, shape.Q75)

	if summary.Degenerate() {
		shape.Skewness = math.NaN()
		shape.Kurtosis = math.NaN()
		return shape, nil
	}
	shape.Skewness = calculateSkewness(data, summary.Mean)
	shape.Kurtosis = calculateKurtosis(data, summary.Mean)
	return shape, nil
}

// calculateSkewness computes the adjusted Fisher-Pearson coefficient G1
func calculateSkewness(data []float64, mean float64) float64 {
	n := float64(len(data))
	if n < 3 {
		return math.NaN()
	}
	m2, m3 := moment(data, mean, 2), moment(data, mean, 3)
	g1 := m3 / math.Pow(m2, 1.5)
	return g1 * math.Sqrt(n*(n-1)) / (n - 2)
}

// calculateKurtosis computes the bias-corrected sample excess kurtosis G2
func calculateKurtosis(data []float64, mean float64) float64 {
	n := float64(len(data))
	if n < 4 {
		return math.NaN()
	}
	m2, m4 := moment(data, mean, 2), moment(data, mean, 4)
	g2 := m4/(m2*m2) - 3
	return (n - 1) / ((n - 2) * (n - 3)) * ((n+1)*g2 + 6)
}

func moment(data []float64, mean float64, k float64) float64 {
	var sum float64
	for _, x := range data {
		sum += math.Pow(x-mean, k)
	}
	return sum / float64(len(data))
}

// detectOutliers counts values outside Tukey's fences
func detectOutliers(data []float64, q25, q75 float64) int {
	iqr := q75 - q25
	lowerBound := q25 - 1.5*iqr
	upperBound := q75 + 1.5*iqr

	outlierCount := 0
	for _, x := range data {
		if x < lowerBound || x > upperBound {
			outlierCount++
		}
	}
	return outlierCount
}
