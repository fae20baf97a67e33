// Package stats - Aggregations over sequences of measured durations.
package stats

import (
	"math"
	"slices"
	"time"

	"github.com/pkg/errors"
)

// ErrInvalidInput is returned when a statistic is requested for an empty
// sample sequence or with an out of range argument.
var ErrInvalidInput = errors.New("invalid input")

// Percentile returns the nearest-rank percentile of the samples.
//
// The value is taken from the ascending sorted copy of samples at the zero
// based rank ceil(p/100 * (n-1)). The input slice is not modified.
//
// Arguments:
//   - samples: The measured durations. Must not be empty.
//   - p: The percentile in the range [0, 100].
//
// Returns:
//   - time.Duration: The sample at the computed rank.
//   - error: ErrInvalidInput if samples is empty or p is out of range.
func Percentile(samples []time.Duration, p float64) (time.Duration, error) {
	if len(samples) == 0 {
		return 0, errors.Wrap(ErrInvalidInput, "percentile of empty sample set")
	}
	if math.IsNaN(p) || p < 0 || p > 100 {
		return 0, errors.Wrapf(ErrInvalidInput, "percentile %v outside [0, 100]", p)
	}

	sorted := sortedCopy(samples)
	rank := int(math.Ceil(p * float64(len(sorted)-1) / 100))

	return sorted[rank], nil
}

// MedianByInterpolation returns the classic median: the middle value for odd
// counts and the mean of the two central values for even counts.
func MedianByInterpolation(samples []time.Duration) (time.Duration, error) {
	if len(samples) == 0 {
		return 0, errors.Wrap(ErrInvalidInput, "median of empty sample set")
	}

	sorted := sortedCopy(samples)
	mid := len(sorted) / 2
	if len(sorted)%2 == 0 {
		return sorted[mid-1] + (sorted[mid]-sorted[mid-1])/2, nil
	}

	return sorted[mid], nil
}

// Best returns the fastest observed sample.
func Best(samples []time.Duration) (time.Duration, error) {
	if len(samples) == 0 {
		return 0, errors.Wrap(ErrInvalidInput, "best of empty sample set")
	}

	return slices.Min(samples), nil
}

func sortedCopy(samples []time.Duration) []time.Duration {
	sorted := slices.Clone(samples)
	slices.Sort(sorted)
	return sorted
}
