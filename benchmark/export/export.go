// Package export - Writers turning benchmark run results into CSV files, text
// tables, graphs and JSON reports.
package export

import (
	"context"
	"path/filepath"

	"github.com/nvr-ai/tinybench/benchmark"
	"github.com/nvr-ai/tinybench/util"
)

const (
	// DefaultResultsDir is the root folder exported files are written to.
	DefaultResultsDir = "TinyBenchmark"
	// RawGraphsDir is the folder raw sample graphs are placed in.
	RawGraphsDir = "RawGraphs"
)

// Exporter writes a representation of run results and returns the paths of
// the files it created.
type Exporter interface {
	Export(ctx context.Context, results *benchmark.RunResults) ([]string, error)
}

// Options controls where exported files go.
type Options struct {
	// ResultsDir is the root folder; empty means DefaultResultsDir.
	ResultsDir string
	// Subfolders places every owner's files in a folder named after it.
	Subfolders bool
}

// DefaultOptions returns options writing to DefaultResultsDir with per-owner
// subfolders.
func DefaultOptions() Options {
	return Options{ResultsDir: DefaultResultsDir, Subfolders: true}
}

// OptionsFor derives export options from a run configuration.
func OptionsFor(cfg benchmark.Config) Options {
	return Options{ResultsDir: DefaultResultsDir, Subfolders: cfg.ResultSubfolders}
}

// Dir returns the folder the owner's files go to, creating it on first use.
func (o Options) Dir(owner string, sub ...string) (string, error) {
	root := o.ResultsDir
	if root == "" {
		root = DefaultResultsDir
	}

	parts := []string{root}
	if o.Subfolders && owner != "" {
		parts = append(parts, util.SanitizeFileName(owner))
	}
	parts = append(parts, sub...)

	dir := filepath.Join(parts...)
	if err := util.EnsureDir(dir); err != nil {
		return "", err
	}
	return dir, nil
}

// Path expands template for values and joins it to the owner's folder.
func (o Options) Path(template string, values util.TemplateValues, sub ...string) (string, error) {
	dir, err := o.Dir(values.ClassName, sub...)
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, util.ExpandTemplate(template, values)), nil
}

// All runs every exporter in order and collects the written paths. It stops at
// the first failure.
func All(ctx context.Context, results *benchmark.RunResults, exporters ...Exporter) ([]string, error) {
	written := make([]string, 0)
	for _, e := range exporters {
		if err := ctx.Err(); err != nil {
			return written, err
		}
		paths, err := e.Export(ctx, results)
		written = append(written, paths...)
		if err != nil {
			return written, err
		}
	}
	return written, nil
}
