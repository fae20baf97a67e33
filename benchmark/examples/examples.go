// Package examples - Built-in benchmark suites comparing common alternative
// implementations. The CLI registers them so a run works out of the box.
package examples

import (
	"fmt"

	"github.com/nvr-ai/tinybench/benchmark"
)

// nameCount is the size of the shared name fixture.
const nameCount = 64

// names is the fixture every suite draws its inputs from.
var names = func() []string {
	out := make([]string, nameCount)
	for i := range out {
		out[i] = fmt.Sprintf("customer-%03d@example.org", i)
	}
	return out
}()

// Results of benchmarked calls are stored in package variables so the compiler
// cannot drop the calls.
var (
	sinkString string
	sinkBool   bool
	sinkInt    int
)

// Suites returns every built-in suite in registration order.
func Suites() []benchmark.Target {
	return []benchmark.Target{
		StringBuilding(),
		Contains(),
		Dispatch(),
		Identifiers(),
	}
}

// Register adds every built-in suite to reg.
func Register(reg *benchmark.Registry) error {
	return reg.Register(Suites()...)
}
