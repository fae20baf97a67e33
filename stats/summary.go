package stats

import (
	"time"

	"github.com/pkg/errors"
	"gonum.org/v1/gonum/stat"
)

// Summary captures descriptive statistics of a sample sequence.
type Summary struct {
	Count  int           `json:"count"`
	Min    time.Duration `json:"min"`
	Max    time.Duration `json:"max"`
	Mean   time.Duration `json:"mean"`
	StdDev time.Duration `json:"std_dev"`
	Median time.Duration `json:"median"`
}

// Summarize computes count, extremes, mean, sample standard deviation and the
// interpolated median of samples.
func Summarize(samples []time.Duration) (Summary, error) {
	if len(samples) == 0 {
		return Summary{}, errors.Wrap(ErrInvalidInput, "summary of empty sample set")
	}

	values := make([]float64, len(samples))
	s := Summary{Count: len(samples), Min: samples[0], Max: samples[0]}
	for i, d := range samples {
		values[i] = float64(d)
		if d < s.Min {
			s.Min = d
		}
		if d > s.Max {
			s.Max = d
		}
	}

	mean, std := stat.MeanStdDev(values, nil)
	s.Mean = time.Duration(mean)
	if len(values) > 1 {
		s.StdDev = time.Duration(std)
	}

	median, err := MedianByInterpolation(samples)
	if err != nil {
		return Summary{}, err
	}
	s.Median = median

	return s, nil
}
