package analyzer

import (
	"fmt"
	"math"
	"sort"

	"github.com/opscart/vm-rightsizer/pkg/models"
)

// Summarize computes P50, P80, P90, P95, P99, and max from samples
func Summarize(resourceID string, samples []MetricSample) (models.UtilizationPercentiles, error) {
	if len(samples) == 0 {
		return models.UtilizationPercentiles{}, fmt.Errorf("no samples provided for %s", resourceID)
	}

	// Extract just the values for calculation
	values := make([]float64, len(samples))
	for i, sample := range samples {
		values[i] = sample.Value
	}

	sort.Float64s(values)

	return models.UtilizationPercentiles{
		ResourceID: resourceID,
		P50:        calculatePercentile(values, 50),
		P80:        calculatePercentile(values, 80),
		P90:        calculatePercentile(values, 90),
		P95:        calculatePercentile(values, 95),
		P99:        calculatePercentile(values, 99),
		Max:        values[len(values)-1],
		Samples:    int64(len(values)),
	}, nil
}

// calculatePercentile computes the Nth percentile using linear interpolation
func calculatePercentile(sortedValues []float64, percentile float64) float64 {
	if len(sortedValues) == 0 {
		return 0
	}

	if len(sortedValues) == 1 {
		return sortedValues[0]
	}

	n := float64(len(sortedValues))
	rank := (percentile / 100.0) * (n - 1)

	lowerIndex := int(math.Floor(rank))
	upperIndex := int(math.Ceil(rank))

	if lowerIndex == upperIndex {
		return sortedValues[lowerIndex]
	}

	lowerValue := sortedValues[lowerIndex]
	upperValue := sortedValues[upperIndex]
	fraction := rank - float64(lowerIndex)

	return lowerValue + (upperValue-lowerValue)*fraction
}
