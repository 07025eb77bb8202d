package pipeline

import (
	"math"
)

// MeanStdDev returns the arithmetic mean and population standard deviation
// (variance divided by N, not N-1) of the sample. The sample must contain at
// least one element; a single-element sample yields a standard deviation of 0.
func MeanStdDev(values []float64) (mean, stdDev float64) {
	sum := 0.0
	for _, v := range values {
		sum += v
	}
	mean = sum / float64(len(values))

	varianceSum := 0.0
	for _, v := range values {
		diff := v - mean
		varianceSum += diff * diff
	}
	variance := varianceSum / float64(len(values))
	stdDev = math.Sqrt(variance)

	return mean, stdDev
}
