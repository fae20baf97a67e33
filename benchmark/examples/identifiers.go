package examples

import (
	"github.com/google/uuid"

	"github.com/nvr-ai/tinybench/benchmark"
)

// Identifiers measures random and name-based UUID generation. It declares no
// parameter source, so every operation is a single parameterless unit.
func Identifiers() benchmark.Target {
	return benchmark.NewSuite("Identifiers", func() struct{} { return struct{}{} }).
		Benchmark("Random", func(struct{}) {
			sinkString = uuid.NewString()
		}).
		Benchmark("NameBased", func(struct{}) {
			sinkString = uuid.NewSHA1(uuid.NameSpaceURL, []byte(names[0])).String()
		})
}
