package stats

import (
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/pkg/errors"
)

// ErrInvalidPercentile is returned when a percentile reducer is configured
// outside [0, 100].
var ErrInvalidPercentile = errors.New("percentile outside [0, 100]")

// ErrUnknownReducer is returned by ParseReducer for unrecognised names.
var ErrUnknownReducer = errors.New("unknown aggregation")

// Reducer collapses a sample sequence into one representative duration.
type Reducer interface {
	Name() string
	Reduce(samples []time.Duration) (time.Duration, error)
}

// ReducerFunc adapts a plain function into a Reducer.
type ReducerFunc struct {
	Label string
	Fn    func([]time.Duration) (time.Duration, error)
}

// Name implements Reducer.
func (f ReducerFunc) Name() string { return f.Label }

// Reduce implements Reducer.
func (f ReducerFunc) Reduce(samples []time.Duration) (time.Duration, error) {
	return f.Fn(samples)
}

type percentileReducer struct {
	p float64
}

// PercentileReducer returns a reducer computing the nearest-rank percentile p.
func PercentileReducer(p float64) (Reducer, error) {
	if math.IsNaN(p) || p < 0 || p > 100 {
		return nil, errors.Wrapf(ErrInvalidPercentile, "p=%v", p)
	}
	return percentileReducer{p: p}, nil
}

func (r percentileReducer) Name() string {
	return "p" + strconv.FormatFloat(r.p, 'f', -1, 64)
}

func (r percentileReducer) Reduce(samples []time.Duration) (time.Duration, error) {
	return Percentile(samples, r.p)
}

// BestReducer returns a reducer yielding the fastest sample.
func BestReducer() Reducer {
	return ReducerFunc{Label: "best", Fn: Best}
}

// MedianReducer returns a reducer yielding the interpolated median.
func MedianReducer() Reducer {
	return ReducerFunc{Label: "median", Fn: MedianByInterpolation}
}

// DefaultReducer is the 50th percentile.
func DefaultReducer() Reducer {
	return percentileReducer{p: 50}
}

// ParseReducer resolves a reducer by name: "best", "median", or "pNN" with
// NN in [0, 100] (for example "p50", "p99.9").
func ParseReducer(name string) (Reducer, error) {
	n := strings.ToLower(strings.TrimSpace(name))
	switch {
	case n == "" || n == "default":
		return DefaultReducer(), nil
	case n == "best" || n == "min":
		return BestReducer(), nil
	case n == "median":
		return MedianReducer(), nil
	case strings.HasPrefix(n, "p"):
		p, err := strconv.ParseFloat(n[1:], 64)
		if err != nil {
			return nil, errors.Wrapf(ErrInvalidPercentile, "cannot parse %q", name)
		}
		return PercentileReducer(p)
	default:
		return nil, errors.Wrapf(ErrUnknownReducer, "%q", name)
	}
}
