// Package util - Sequence and filesystem helpers shared by the exporters.
package util

import (
	"github.com/pkg/errors"
)

// ErrInvalidLimit is returned when a row limit below one is requested.
var ErrInvalidLimit = errors.New("limit must be positive")

// LimitProportionally thins source down to at most limit elements while
// keeping the overall shape of the sequence.
//
// The walk uses a fractional stride of (count-1)/(limit-1) and accumulates the
// fractional remainder, advancing by whole elements whenever it reaches one.
// The result always holds exactly min(limit, count) elements, starts with the
// first element and ends with the last one. This differs from a plain
// count/limit walk, which never reaches the last element. When limit >= count
// a copy of source is returned unchanged.
//
// Arguments:
//   - source: The (usually sorted) sequence to thin.
//   - limit: The maximum number of elements to keep. Must be at least one.
//
// Returns:
//   - []T: The selected elements in their original order.
//   - error: ErrInvalidLimit when limit < 1.
func LimitProportionally[T any](source []T, limit int) ([]T, error) {
	if limit < 1 {
		return nil, errors.Wrapf(ErrInvalidLimit, "got %d", limit)
	}
	if limit >= len(source) {
		out := make([]T, len(source))
		copy(out, source)
		return out, nil
	}

	out := make([]T, 0, limit)
	if limit == 1 {
		return append(out, source[0]), nil
	}

	step := float64(len(source)-1) / float64(limit-1)
	accumulated := 0.0
	idx := 0
	for len(out) < limit {
		if idx > len(source)-1 {
			idx = len(source) - 1
		}
		out = append(out, source[idx])

		accumulated += step
		// Absorb float drift so that e.g. 2.9999999 still advances by three.
		whole := int(accumulated + 1e-9)
		accumulated -= float64(whole)
		idx += whole
	}

	return out, nil
}
