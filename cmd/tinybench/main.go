package main

import (
	"fmt"
	"os"

	"github.com/nvr-ai/tinybench/benchmark"
	"github.com/nvr-ai/tinybench/benchmark/examples"
)

func main() {
	if err := examples.Register(benchmark.DefaultRegistry); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	if err := newRootCmd(benchmark.DefaultRegistry).Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
