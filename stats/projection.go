package stats

import "time"

// Projection selects the duration field of a richer sample type.
type Projection[T any] func(T) time.Duration

// Project maps every item through proj, preserving order.
func Project[T any](items []T, proj Projection[T]) []time.Duration {
	out := make([]time.Duration, len(items))
	for i, item := range items {
		out[i] = proj(item)
	}
	return out
}

// PercentileOf is Percentile applied to a projection of items.
func PercentileOf[T any](items []T, proj Projection[T], p float64) (time.Duration, error) {
	return Percentile(Project(items, proj), p)
}

// MedianOf is MedianByInterpolation applied to a projection of items.
func MedianOf[T any](items []T, proj Projection[T]) (time.Duration, error) {
	return MedianByInterpolation(Project(items, proj))
}

// BestOf is Best applied to a projection of items.
func BestOf[T any](items []T, proj Projection[T]) (time.Duration, error) {
	return Best(Project(items, proj))
}

// ReduceOf applies a reducer to a projection of items.
func ReduceOf[T any](items []T, proj Projection[T], r Reducer) (time.Duration, error) {
	return r.Reduce(Project(items, proj))
}
