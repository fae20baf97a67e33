package examples

import (
	"slices"

	"github.com/nvr-ai/tinybench/benchmark"
)

type contains struct {
	lists [][]string
	sets  []map[string]struct{}
}

// Contains compares membership tests on slices and maps holding the first n
// names, looking up the first and the last name.
func Contains() benchmark.Target {
	return benchmark.NewSuite("Contains", newContains).
		Parameters(benchmark.Range(1, nameCount, 4)).
		BenchmarkWithInt("SliceFirst", func(c *contains, n int) {
			sinkBool = slices.Contains(c.lists[n], names[0])
		}).
		BenchmarkWithInt("MapFirst", func(c *contains, n int) {
			_, sinkBool = c.sets[n][names[0]]
		}).
		BenchmarkWithInt("SliceLast", func(c *contains, n int) {
			sinkBool = slices.Contains(c.lists[n], names[n-1])
		}).
		BenchmarkWithInt("MapLast", func(c *contains, n int) {
			_, sinkBool = c.sets[n][names[n-1]]
		})
}

func newContains() *contains {
	c := &contains{
		lists: make([][]string, nameCount+1),
		sets:  make([]map[string]struct{}, nameCount+1),
	}
	for n := 1; n <= nameCount; n++ {
		c.lists[n] = names[:n]
		c.sets[n] = make(map[string]struct{}, n)
		for _, name := range names[:n] {
			c.sets[n][name] = struct{}{}
		}
	}
	return c
}
