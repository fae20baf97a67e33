package benchmark

import (
	"github.com/pkg/errors"

	"github.com/nvr-ai/tinybench/stats"
)

var (
	// ErrConfiguration reports an invalid configuration or registration. It
	// is always raised before any measurement starts.
	ErrConfiguration = errors.New("configuration error")
	// ErrNotFound reports a lookup that matched no benchmark unit.
	ErrNotFound = errors.New("benchmark not found")
	// ErrAmbiguous reports a lookup that matched more than one unit.
	ErrAmbiguous = errors.New("ambiguous benchmark lookup")
	// ErrExecution reports a benchmarked operation that panicked.
	ErrExecution = errors.New("benchmark execution failed")
	// ErrInvalidInput is re-exported from stats for callers that only import
	// this package.
	ErrInvalidInput = stats.ErrInvalidInput
)

func configErrorf(format string, args ...interface{}) error {
	return errors.Wrapf(ErrConfiguration, format, args...)
}
