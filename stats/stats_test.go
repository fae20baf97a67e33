package stats

import (
	"testing"
	"time"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func ms(values ...int) []time.Duration {
	out := make([]time.Duration, len(values))
	for i, v := range values {
		out[i] = time.Duration(v) * time.Millisecond
	}
	return out
}

func TestPercentileSingleElement(t *testing.T) {
	samples := ms(7)

	p0, err := Percentile(samples, 0)
	require.NoError(t, err)
	p100, err := Percentile(samples, 100)
	require.NoError(t, err)

	assert.Equal(t, 7*time.Millisecond, p0)
	assert.Equal(t, 7*time.Millisecond, p100)
}

func TestPercentileNearestRank(t *testing.T) {
	samples := ms(5, 3, 1, 4, 2)

	p50, err := Percentile(samples, 50)
	require.NoError(t, err)
	assert.Equal(t, 3*time.Millisecond, p50)

	// ceil(0.3 * 4) = 2
	p30, err := Percentile(samples, 30)
	require.NoError(t, err)
	assert.Equal(t, 3*time.Millisecond, p30)

	p100, err := Percentile(samples, 100)
	require.NoError(t, err)
	assert.Equal(t, 5*time.Millisecond, p100)

	assert.Equal(t, ms(5, 3, 1, 4, 2), samples, "input must not be reordered")
}

func TestPercentileIntegerRanksAreExact(t *testing.T) {
	samples := make([]time.Duration, 101)
	for i := range samples {
		samples[i] = time.Duration(i)
	}

	for _, p := range []float64{1, 7, 14, 28, 29, 55, 57, 58, 99} {
		got, err := Percentile(samples, p)
		require.NoError(t, err)
		assert.Equal(t, time.Duration(p), got, "p%v", p)
	}
}

func TestPercentileInvalidInput(t *testing.T) {
	_, err := Percentile(nil, 50)
	assert.True(t, errors.Is(err, ErrInvalidInput))

	_, err = Percentile(ms(1, 2), -1)
	assert.True(t, errors.Is(err, ErrInvalidInput))

	_, err = Percentile(ms(1, 2), 100.5)
	assert.True(t, errors.Is(err, ErrInvalidInput))
}

func TestMedianByInterpolation(t *testing.T) {
	even, err := MedianByInterpolation(ms(1, 2, 3, 4))
	require.NoError(t, err)
	assert.Equal(t, 2500*time.Microsecond, even)

	odd, err := MedianByInterpolation(ms(3, 1, 2))
	require.NoError(t, err)
	assert.Equal(t, 2*time.Millisecond, odd)

	_, err = MedianByInterpolation(nil)
	assert.True(t, errors.Is(err, ErrInvalidInput))
}

func TestBest(t *testing.T) {
	best, err := Best(ms(9, 4, 12, 4, 6))
	require.NoError(t, err)
	assert.Equal(t, 4*time.Millisecond, best)

	_, err = Best(nil)
	assert.True(t, errors.Is(err, ErrInvalidInput))
}

type sample struct {
	pure  time.Duration
	total time.Duration
}

func TestProjections(t *testing.T) {
	items := []sample{
		{pure: time.Millisecond, total: 10 * time.Millisecond},
		{pure: 3 * time.Millisecond, total: 12 * time.Millisecond},
		{pure: 2 * time.Millisecond, total: 11 * time.Millisecond},
	}
	pure := func(s sample) time.Duration { return s.pure }
	total := func(s sample) time.Duration { return s.total }

	assert.Equal(t, ms(1, 3, 2), Project(items, pure))

	med, err := MedianOf(items, total)
	require.NoError(t, err)
	assert.Equal(t, 11*time.Millisecond, med)

	best, err := BestOf(items, pure)
	require.NoError(t, err)
	assert.Equal(t, time.Millisecond, best)

	p100, err := PercentileOf(items, pure, 100)
	require.NoError(t, err)
	assert.Equal(t, 3*time.Millisecond, p100)

	reduced, err := ReduceOf(items, total, BestReducer())
	require.NoError(t, err)
	assert.Equal(t, 10*time.Millisecond, reduced)
}

func TestParseReducer(t *testing.T) {
	cases := map[string]string{
		"":       "p50",
		"p50":    "p50",
		"P90":    "p90",
		"p99.9":  "p99.9",
		"best":   "best",
		"median": "median",
	}
	for input, want := range cases {
		r, err := ParseReducer(input)
		require.NoError(t, err, input)
		assert.Equal(t, want, r.Name(), input)
	}

	_, err := ParseReducer("p101")
	assert.True(t, errors.Is(err, ErrInvalidPercentile))

	_, err = ParseReducer("pxx")
	assert.True(t, errors.Is(err, ErrInvalidPercentile))

	_, err = ParseReducer("mean")
	assert.True(t, errors.Is(err, ErrUnknownReducer))
}

func TestReducerFunc(t *testing.T) {
	worst := ReducerFunc{Label: "worst", Fn: func(s []time.Duration) (time.Duration, error) {
		return Percentile(s, 100)
	}}

	got, err := worst.Reduce(ms(2, 8, 5))
	require.NoError(t, err)
	assert.Equal(t, "worst", worst.Name())
	assert.Equal(t, 8*time.Millisecond, got)
}

func TestSummarize(t *testing.T) {
	s, err := Summarize(ms(2, 4, 4, 4, 5, 5, 7, 9))
	require.NoError(t, err)

	assert.Equal(t, 8, s.Count)
	assert.Equal(t, 2*time.Millisecond, s.Min)
	assert.Equal(t, 9*time.Millisecond, s.Max)
	assert.Equal(t, 5*time.Millisecond, s.Mean)
	assert.Equal(t, 4500*time.Microsecond, s.Median)
	// sample std dev of the classic {2,4,4,4,5,5,7,9} set is sqrt(32/7)
	assert.InDelta(t, 2.138e6, float64(s.StdDev), 1e3)

	single, err := Summarize(ms(3))
	require.NoError(t, err)
	assert.Zero(t, single.StdDev)

	_, err = Summarize(nil)
	assert.True(t, errors.Is(err, ErrInvalidInput))
}
