package examples

import (
	"strings"

	"github.com/nvr-ai/tinybench/benchmark"
)

type stringBuilding struct {
	parts []string
}

// StringBuilding compares ways of joining the first n names.
func StringBuilding() benchmark.Target {
	return benchmark.NewSuite("StringBuilding", func() *stringBuilding {
		return &stringBuilding{parts: names[:32]}
	}).
		Parameters(benchmark.Range(1, 33, 1)).
		BenchmarkWithInt("Concatenation", func(s *stringBuilding, n int) {
			out := ""
			for i := 0; i < n; i++ {
				out += s.parts[i]
			}
			sinkString = out
		}).
		BenchmarkWithInt("Builder", func(s *stringBuilding, n int) {
			var sb strings.Builder
			for i := 0; i < n; i++ {
				sb.WriteString(s.parts[i])
			}
			sinkString = sb.String()
		}).
		BenchmarkWithInt("Join", func(s *stringBuilding, n int) {
			sinkString = strings.Join(s.parts[:n], "")
		})
}
