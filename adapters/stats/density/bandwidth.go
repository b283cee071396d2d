package density

import (
	"math"

	"figstats/domain/figure"
)

// SilvermanBandwidth is the rule-of-thumb bandwidth
// 0.9 * min(sd, IQR/1.34) * n^(-1/5) for an ascending sample, falling back
// to sd, then |x[0]|, then 1 when the spread estimate is zero.
func SilvermanBandwidth(sorted []float64, sd float64) float64 {
	iqr := figure.Quantile7(sorted, 0.75) - figure.Quantile7(sorted, 0.25)
	lo := math.Min(sd, iqr/1.34)
	if !(lo > 0) {
		lo = sd
		if !(lo > 0) {
			lo = math.Abs(sorted[0])
			if !(lo > 0) {
				lo = 1
			}
		}
	}
	return 0.9 * lo * math.Pow(float64(len(sorted)), -0.2)
}
