package benchmark

import (
	"testing"
	"time"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func samples(pure ...int) []MethodExecutionMetrics {
	out := make([]MethodExecutionMetrics, len(pure))
	for i, p := range pure {
		d := time.Duration(p) * time.Millisecond
		out[i] = MethodExecutionMetrics{PureTime: d, MeasureTime: d + time.Millisecond, MemoryUsed: int64(p * 10)}
	}
	return out
}

func sampleResults() *RunResults {
	return &RunResults{
		Config: DefaultConfig(),
		Results: []MethodExecutionResults{
			{Unit: Unit{Owner: "Strings", Operation: "Concat", Parameter: 10}, Metrics: samples(5, 1, 3)},
			{Unit: Unit{Owner: "Strings", Operation: "Concat", Parameter: 2}, Metrics: samples(2, 4)},
			{Unit: Unit{Owner: "Strings", Operation: "Builder", Parameter: 10}, Metrics: samples(1, 1, 1, 1)},
			{Unit: Unit{Owner: "Strings", Operation: "Builder", Parameter: 2}, Metrics: samples(9)},
			{Unit: Unit{Owner: "Maps", Operation: "Lookup"}, Metrics: samples(7, 6, 5, 4, 3, 2, 1)},
		},
	}
}

func TestResultGrouping(t *testing.T) {
	results := sampleResults()

	assert.Equal(t, []string{"Strings", "Maps"}, results.Owners())
	assert.Len(t, results.ByOwner("Strings"), 4)
	assert.Empty(t, results.ByOwner("Nobody"))

	groups := results.ByOperation("Strings")
	require.Len(t, groups, 2)
	assert.Equal(t, "Concat", groups[0].Operation)
	assert.Len(t, groups[0].Results, 2)
	assert.Equal(t, "Builder", groups[1].Operation)

	assert.Equal(t, []any{2, 10}, results.Parameters("Strings"))
	assert.Equal(t, []any{nil}, results.Parameters("Maps"))
}

func TestResultFind(t *testing.T) {
	results := sampleResults()

	res, err := results.Find("Strings", "Concat", 10)
	require.NoError(t, err)
	assert.Equal(t, []time.Duration{5 * time.Millisecond, time.Millisecond, 3 * time.Millisecond}, res.PureTimes())
	assert.Equal(t, 6*time.Millisecond, res.MeasureTimes()[0])

	_, err = results.Find("Strings", "Concat", 11)
	assert.True(t, errors.Is(err, ErrNotFound))

	_, err = results.Find("Strings", "Concat", int64(10))
	assert.True(t, errors.Is(err, ErrNotFound))

	results.Results = append(results.Results, results.Results[0])
	_, err = results.Find("Strings", "Concat", 10)
	assert.True(t, errors.Is(err, ErrAmbiguous))
}

func TestResultAggregate(t *testing.T) {
	results := sampleResults()

	median, err := results.Aggregate("Strings", "Concat", 10)
	require.NoError(t, err)
	assert.Equal(t, 3*time.Millisecond, median)

	results.Config.Aggregation = "best"
	best, err := results.Aggregate("Maps", "Lookup", nil)
	require.NoError(t, err)
	assert.Equal(t, time.Millisecond, best)

	_, err = results.Aggregate("Maps", "Missing", nil)
	assert.True(t, errors.Is(err, ErrNotFound))
}

func TestFlattenOrdering(t *testing.T) {
	results := &RunResults{Results: sampleResults().Results[:1]}

	times := func(rows []FlatResult) []time.Duration {
		out := make([]time.Duration, len(rows))
		for i, row := range rows {
			out[i] = row.Time
		}
		return out
	}

	assert.Equal(t, []time.Duration{5 * time.Millisecond, time.Millisecond, 3 * time.Millisecond}, times(results.Flatten(Unsorted)))
	assert.Equal(t, []time.Duration{time.Millisecond, 3 * time.Millisecond, 5 * time.Millisecond}, times(results.Flatten(Ascending)))

	descending := results.Flatten(Descending)
	assert.Equal(t, []time.Duration{5 * time.Millisecond, 3 * time.Millisecond, time.Millisecond}, times(descending))
	assert.Equal(t, int64(50), descending[0].MemoryUsed, "memory follows its sample")
	assert.Equal(t, "Strings", descending[0].ClassName)
	assert.Equal(t, "Concat", descending[0].MethodName)
	assert.Equal(t, 10, descending[0].Parameter)
}

func TestFlattenRoundTrip(t *testing.T) {
	results := sampleResults()

	counts := Regroup(results.Flatten(Ascending))
	require.Len(t, counts, len(results.Results))
	for _, res := range results.Results {
		assert.Equal(t, len(res.Metrics), counts[res.Unit], res.Unit.String())
	}
}

func TestLimitPerUnit(t *testing.T) {
	results := sampleResults()

	rows, err := LimitPerUnit(results.Flatten(Ascending), 2)
	require.NoError(t, err)

	counts := Regroup(rows)
	assert.Equal(t, 2, counts[Unit{Owner: "Strings", Operation: "Concat", Parameter: 10}])
	assert.Equal(t, 2, counts[Unit{Owner: "Strings", Operation: "Concat", Parameter: 2}])
	assert.Equal(t, 1, counts[Unit{Owner: "Strings", Operation: "Builder", Parameter: 2}])
	assert.Equal(t, 2, counts[Unit{Owner: "Maps", Operation: "Lookup"}])

	// First and last of the sorted Lookup samples survive.
	last := rows[len(rows)-2:]
	assert.Equal(t, time.Millisecond, last[0].Time)
	assert.Equal(t, 7*time.Millisecond, last[1].Time)

	_, err = LimitPerUnit(results.Flatten(Unsorted), 0)
	assert.Error(t, err)
}

func TestSortDirection(t *testing.T) {
	for _, name := range []string{"", "unsorted", "none"} {
		d, err := ParseSortDirection(name)
		require.NoError(t, err)
		assert.Equal(t, Unsorted, d)
	}

	d, err := ParseSortDirection("asc")
	require.NoError(t, err)
	assert.Equal(t, "Ascending", d.String())

	d, err = ParseSortDirection("descending")
	require.NoError(t, err)
	assert.Equal(t, []time.Duration{3, 2, 1}, d.Apply([]time.Duration{2, 3, 1}))

	_, err = ParseSortDirection("sideways")
	assert.True(t, errors.Is(err, ErrConfiguration))
}

func TestCompareParameters(t *testing.T) {
	assert.Equal(t, -1, CompareParameters(nil, 1))
	assert.Equal(t, 1, CompareParameters(1, nil))
	assert.Equal(t, 0, CompareParameters(nil, nil))
	assert.Equal(t, -1, CompareParameters(2, 10))
	assert.Equal(t, -1, CompareParameters(int64(2), 2.5))
	assert.Equal(t, 1, CompareParameters("b", "a"))
	assert.Equal(t, 0, CompareParameters(uint8(7), 7))
}

func TestPerCall(t *testing.T) {
	assert.Equal(t, 200.0, PerCall(time.Microsecond, 5))
	assert.Equal(t, 1000.0, PerCall(time.Microsecond, 0))
}

func TestMethodExecutionResultsSummary(t *testing.T) {
	res := MethodExecutionResults{Metrics: samples(1, 2, 3)}

	summary, err := res.Summary()
	require.NoError(t, err)
	assert.Equal(t, 3, summary.Count)
	assert.Equal(t, time.Millisecond, summary.Min)
	assert.Equal(t, 3*time.Millisecond, summary.Max)
	assert.Equal(t, 2*time.Millisecond, summary.Mean)

	_, err = MethodExecutionResults{}.Summary()
	assert.True(t, errors.Is(err, ErrInvalidInput))
}
