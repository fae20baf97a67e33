package benchmark

import (
	"fmt"
	"reflect"
	"slices"
	"sort"
	"time"

	"github.com/google/uuid"
	"github.com/pkg/errors"

	"github.com/nvr-ai/tinybench/profiler"
	"github.com/nvr-ai/tinybench/stats"
	"github.com/nvr-ai/tinybench/util"
)

// Overtime records a unit whose measurement ran past its share of the
// duration budget.
//
// A budgeted unit stops on the first sample that takes it past its share, so
// every unit that stops on time rather than on MaxIterations ends slightly
// over budget and is reported here. An entry is expected in normal budgeted
// runs. Compare Elapsed with Budget to judge a real overrun, typically caused
// by MinIterations forcing more samples than the share allows.
type Overtime struct {
	Unit    Unit          `json:"unit"`
	Elapsed time.Duration `json:"elapsed"`
	Budget  time.Duration `json:"budget"`
}

// RunResults is the immutable outcome of one Run.
type RunResults struct {
	ID        uuid.UUID                `json:"id"`
	Config    Config                   `json:"config"`
	StartedAt time.Time                `json:"started_at"`
	Elapsed   time.Duration            `json:"elapsed"`
	Results   []MethodExecutionResults `json:"results"`
	// Overtime holds, per owner, the unit that overran its budget the most.
	// Budgeted units that stop on time appear here too; see Overtime.
	Overtime map[string]Overtime    `json:"overtime,omitempty"`
	Timings  []profiler.TimeTracker `json:"timings,omitempty"`
	Memory   profiler.MemorySnapshot `json:"memory"`
}

// OperationGroup is the set of units of one operation within an owner.
type OperationGroup struct {
	Operation string
	Results   []MethodExecutionResults
}

// Reducer returns the comparison statistic configured for the run.
func (r *RunResults) Reducer() stats.Reducer {
	return r.Config.AggregateReducer()
}

// Units returns the unit identities in measurement order.
func (r *RunResults) Units() []Unit {
	out := make([]Unit, len(r.Results))
	for i, res := range r.Results {
		out[i] = res.Unit
	}
	return out
}

// Owners returns the distinct owners in measurement order.
func (r *RunResults) Owners() []string {
	out := make([]string, 0)
	seen := make(map[string]struct{})
	for _, res := range r.Results {
		if _, ok := seen[res.Unit.Owner]; ok {
			continue
		}
		seen[res.Unit.Owner] = struct{}{}
		out = append(out, res.Unit.Owner)
	}
	return out
}

// ByOwner returns the results of one owner in measurement order.
func (r *RunResults) ByOwner(owner string) []MethodExecutionResults {
	out := make([]MethodExecutionResults, 0)
	for _, res := range r.Results {
		if res.Unit.Owner == owner {
			out = append(out, res)
		}
	}
	return out
}

// ByOperation groups an owner's results by operation, in order of first
// appearance.
func (r *RunResults) ByOperation(owner string) []OperationGroup {
	groups := make([]OperationGroup, 0)
	index := make(map[string]int)
	for _, res := range r.ByOwner(owner) {
		i, ok := index[res.Unit.Operation]
		if !ok {
			i = len(groups)
			index[res.Unit.Operation] = i
			groups = append(groups, OperationGroup{Operation: res.Unit.Operation})
		}
		groups[i].Results = append(groups[i].Results, res)
	}
	return groups
}

// Parameters returns the distinct parameter values of an owner in ascending
// order. Numbers compare numerically, everything else by its printed form, and
// nil sorts first.
func (r *RunResults) Parameters(owner string) []any {
	out := make([]any, 0)
	for _, res := range r.ByOwner(owner) {
		if !slices.ContainsFunc(out, func(p any) bool { return sameParameter(p, res.Unit.Parameter) }) {
			out = append(out, res.Unit.Parameter)
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return CompareParameters(out[i], out[j]) < 0 })
	return out
}

// Find returns the results of the (owner, operation, parameter) unit.
func (r *RunResults) Find(owner, operation string, parameter any) (MethodExecutionResults, error) {
	var found []MethodExecutionResults
	for _, res := range r.Results {
		if res.Unit.Matches(owner, operation, parameter) {
			found = append(found, res)
		}
	}

	unit := Unit{Owner: owner, Operation: operation, Parameter: parameter}
	switch len(found) {
	case 0:
		return MethodExecutionResults{}, errors.Wrapf(ErrNotFound, "%s", unit)
	case 1:
		return found[0], nil
	default:
		return MethodExecutionResults{}, errors.Wrapf(ErrAmbiguous, "%s matches %d units", unit, len(found))
	}
}

// Aggregate reduces the pure times of one unit with the configured reducer.
func (r *RunResults) Aggregate(owner, operation string, parameter any) (time.Duration, error) {
	res, err := r.Find(owner, operation, parameter)
	if err != nil {
		return 0, err
	}
	return res.Aggregate(r.Reducer())
}

// SortDirection orders durations within a unit.
type SortDirection int

const (
	// Unsorted keeps measurement order.
	Unsorted SortDirection = iota
	// Ascending sorts fastest first.
	Ascending
	// Descending sorts slowest first.
	Descending
)

func (d SortDirection) String() string {
	switch d {
	case Ascending:
		return "Ascending"
	case Descending:
		return "Descending"
	default:
		return "Unsorted"
	}
}

// ParseSortDirection resolves "unsorted", "ascending"/"asc" or
// "descending"/"desc".
func ParseSortDirection(s string) (SortDirection, error) {
	switch s {
	case "", "unsorted", "Unsorted", "none":
		return Unsorted, nil
	case "ascending", "Ascending", "asc":
		return Ascending, nil
	case "descending", "Descending", "desc":
		return Descending, nil
	}
	return Unsorted, configErrorf("unknown sort direction %q", s)
}

// Apply returns a copy of durations ordered by the direction.
func (d SortDirection) Apply(durations []time.Duration) []time.Duration {
	out := slices.Clone(durations)
	switch d {
	case Ascending:
		slices.Sort(out)
	case Descending:
		slices.Sort(out)
		slices.Reverse(out)
	}
	return out
}

// FlatResult is one (owner, operation, parameter, duration) row.
type FlatResult struct {
	ClassName  string        `json:"class_name"`
	MethodName string        `json:"method_name"`
	Parameter  any           `json:"parameter"`
	Time       time.Duration `json:"time"`
	MemoryUsed int64         `json:"memory_used"`
}

// Unit returns the identity of the row.
func (f FlatResult) Unit() Unit {
	return Unit{Owner: f.ClassName, Operation: f.MethodName, Parameter: f.Parameter}
}

// Flatten produces one row per sample, units in measurement order and samples
// ordered within each unit by direction. Memory figures follow their samples.
func (r *RunResults) Flatten(direction SortDirection) []FlatResult {
	rows := make([]FlatResult, 0)
	for _, res := range r.Results {
		rows = append(rows, flattenUnit(res, direction)...)
	}
	return rows
}

func flattenUnit(res MethodExecutionResults, direction SortDirection) []FlatResult {
	metrics := slices.Clone(res.Metrics)
	switch direction {
	case Ascending:
		slices.SortStableFunc(metrics, func(a, b MethodExecutionMetrics) int { return compareDurations(a.PureTime, b.PureTime) })
	case Descending:
		slices.SortStableFunc(metrics, func(a, b MethodExecutionMetrics) int { return compareDurations(b.PureTime, a.PureTime) })
	}

	rows := make([]FlatResult, len(metrics))
	for i, m := range metrics {
		rows[i] = FlatResult{
			ClassName:  res.Unit.Owner,
			MethodName: res.Unit.Operation,
			Parameter:  res.Unit.Parameter,
			Time:       m.PureTime,
			MemoryUsed: m.MemoryUsed,
		}
	}
	return rows
}

// Regroup counts the flattened rows of each unit.
func Regroup(rows []FlatResult) map[Unit]int {
	counts := make(map[Unit]int)
	for _, row := range rows {
		counts[row.Unit()]++
	}
	return counts
}

// LimitPerUnit limits every unit's consecutive rows to at most limit rows using
// proportional thinning. Rows of one unit must be contiguous, as Flatten
// produces them.
func LimitPerUnit(rows []FlatResult, limit int) ([]FlatResult, error) {
	out := make([]FlatResult, 0, len(rows))
	for start := 0; start < len(rows); {
		end := start + 1
		for end < len(rows) && rows[end].Unit() == rows[start].Unit() {
			end++
		}
		thinned, err := util.LimitProportionally(rows[start:end], limit)
		if err != nil {
			return nil, err
		}
		out = append(out, thinned...)
		start = end
	}
	return out, nil
}

// CompareParameters orders parameter values: nil first, numbers numerically,
// anything else by its printed form.
func CompareParameters(a, b any) int {
	switch {
	case a == nil && b == nil:
		return 0
	case a == nil:
		return -1
	case b == nil:
		return 1
	}

	fa, okA := asFloat(a)
	fb, okB := asFloat(b)
	if okA && okB {
		switch {
		case fa < fb:
			return -1
		case fa > fb:
			return 1
		}
		return 0
	}

	sa, sb := fmt.Sprint(a), fmt.Sprint(b)
	switch {
	case sa < sb:
		return -1
	case sa > sb:
		return 1
	}
	return 0
}

func asFloat(v any) (float64, bool) {
	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return float64(rv.Int()), true
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64, reflect.Uintptr:
		return float64(rv.Uint()), true
	case reflect.Float32, reflect.Float64:
		return rv.Float(), true
	}
	return 0, false
}

func compareDurations(a, b time.Duration) int {
	switch {
	case a < b:
		return -1
	case a > b:
		return 1
	}
	return 0
}
