// Package benchmark - Functionality for registering, running and collecting
// micro-benchmarks.
package benchmark

import (
	"time"

	"github.com/nvr-ai/tinybench/stats"
)

// MethodExecutionMetrics is one measured sample.
type MethodExecutionMetrics struct {
	// PureTime covers the thunk call only.
	PureTime time.Duration `json:"pure_time"`
	// MeasureTime covers the whole sample including instrumentation.
	MeasureTime time.Duration `json:"measure_time"`
	// MemoryUsed is the allocation delta in bytes, never negative. Zero when
	// memory measurement is disabled.
	MemoryUsed int64 `json:"memory_used"`
}

// PureTimeOf projects a sample to its pure call duration.
func PureTimeOf(m MethodExecutionMetrics) time.Duration { return m.PureTime }

// MeasureTimeOf projects a sample to its full measurement duration.
func MeasureTimeOf(m MethodExecutionMetrics) time.Duration { return m.MeasureTime }

// MethodExecutionResults holds the samples collected for one unit in
// measurement order.
type MethodExecutionResults struct {
	Unit    Unit                     `json:"unit"`
	Metrics []MethodExecutionMetrics `json:"metrics"`
}

// PureTimes returns the pure call durations in measurement order.
func (r MethodExecutionResults) PureTimes() []time.Duration {
	return stats.Project(r.Metrics, PureTimeOf)
}

// MeasureTimes returns the measurement durations in measurement order.
func (r MethodExecutionResults) MeasureTimes() []time.Duration {
	return stats.Project(r.Metrics, MeasureTimeOf)
}

// MemoryUsed returns the allocation deltas in measurement order.
func (r MethodExecutionResults) MemoryUsed() []int64 {
	out := make([]int64, len(r.Metrics))
	for i, m := range r.Metrics {
		out[i] = m.MemoryUsed
	}
	return out
}

// Aggregate reduces the pure call durations with reducer.
func (r MethodExecutionResults) Aggregate(reducer stats.Reducer) (time.Duration, error) {
	return stats.ReduceOf(r.Metrics, PureTimeOf, reducer)
}

// Summary describes the pure call durations.
func (r MethodExecutionResults) Summary() (stats.Summary, error) {
	return stats.Summarize(r.PureTimes())
}

// PerCall converts a batched sample duration to nanoseconds per single call.
func PerCall(d time.Duration, batchSize int) float64 {
	if batchSize < 1 {
		batchSize = 1
	}
	return float64(d.Nanoseconds()) / float64(batchSize)
}
