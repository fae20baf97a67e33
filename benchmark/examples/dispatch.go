package examples

import (
	"github.com/nvr-ai/tinybench/benchmark"
)

type shape interface {
	Area() int
}

type square struct{ side int }

func (s square) Area() int { return s.side * s.side }

type dispatch struct {
	concrete []square
	boxed    []shape
}

// Dispatch compares calling a method through an interface with calling it on
// the concrete type, for 1 to 5 calls per operation.
func Dispatch() benchmark.Target {
	return benchmark.NewSuite("Dispatch", func() *dispatch {
		d := &dispatch{}
		for i := 1; i <= 5; i++ {
			d.concrete = append(d.concrete, square{side: i})
			d.boxed = append(d.boxed, square{side: i})
		}
		return d
	}).
		Parameters(benchmark.Values(1, 2, 3, 4, 5)).
		BenchmarkWithInt("Concrete", func(d *dispatch, n int) {
			total := 0
			for _, s := range d.concrete[:n] {
				total += s.Area()
			}
			sinkInt = total
		}).
		BenchmarkWithInt("Interface", func(d *dispatch, n int) {
			total := 0
			for _, s := range d.boxed[:n] {
				total += s.Area()
			}
			sinkInt = total
		})
}
