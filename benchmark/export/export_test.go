package export

import (
	"context"
	"encoding/csv"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nvr-ai/tinybench/benchmark"
)

func metrics(ns ...int) []benchmark.MethodExecutionMetrics {
	out := make([]benchmark.MethodExecutionMetrics, len(ns))
	for i, n := range ns {
		d := time.Duration(n)
		out[i] = benchmark.MethodExecutionMetrics{PureTime: d, MeasureTime: d + 10, MemoryUsed: int64(n)}
	}
	return out
}

func testResults() *benchmark.RunResults {
	cfg := benchmark.DefaultConfig()
	cfg.BatchSize = 2

	return &benchmark.RunResults{
		ID:        uuid.MustParse("5f0c6a36-6a39-4d4e-9d0b-3a3e2a0c9b11"),
		Config:    cfg,
		StartedAt: time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC),
		Elapsed:   time.Second,
		Results: []benchmark.MethodExecutionResults{
			{Unit: benchmark.Unit{Owner: "Strings", Operation: "Concat", Parameter: 10}, Metrics: metrics(500, 100, 300, 200, 400)},
			{Unit: benchmark.Unit{Owner: "Strings", Operation: "Concat", Parameter: 100}, Metrics: metrics(900, 800)},
			{Unit: benchmark.Unit{Owner: "Strings", Operation: "Builder", Parameter: 10}, Metrics: metrics(50, 40, 60)},
			{Unit: benchmark.Unit{Owner: "Strings", Operation: "Builder", Parameter: 100}, Metrics: metrics(70)},
			{Unit: benchmark.Unit{Owner: "Maps", Operation: "Lookup"}, Metrics: metrics(30, 20, 10)},
		},
	}
}

func readCSV(t *testing.T, path string) [][]string {
	t.Helper()

	file, err := os.Open(path)
	require.NoError(t, err)
	defer file.Close()

	records, err := csv.NewReader(file).ReadAll()
	require.NoError(t, err)
	return records
}

func TestOptionsDir(t *testing.T) {
	root := t.TempDir()

	dir, err := Options{ResultsDir: root, Subfolders: true}.Dir("A/B", RawGraphsDir)
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(root, "A_B", RawGraphsDir), dir)
	assert.DirExists(t, dir)

	flat, err := Options{ResultsDir: root}.Dir("A")
	require.NoError(t, err)
	assert.Equal(t, root, flat)

	assert.Equal(t, Options{ResultsDir: DefaultResultsDir, Subfolders: true}, DefaultOptions())
	assert.False(t, OptionsFor(benchmark.Config{}).Subfolders)
}

func TestCSVExporter(t *testing.T) {
	root := t.TempDir()
	exporter := NewCSVExporter(Options{ResultsDir: root, Subfolders: true})

	paths, err := exporter.Export(context.Background(), testResults())
	require.NoError(t, err)
	require.Equal(t, []string{
		filepath.Join(root, "Strings", "RAW-Strings.csv"),
		filepath.Join(root, "Maps", "RAW-Maps.csv"),
	}, paths)

	records := readCSV(t, paths[0])
	assert.Equal(t, []string{"ClassName", "MethodName", "Parameter", "TimeNs"}, records[0])
	require.Len(t, records, 12)

	// Builder before Concat, durations ascending within an operation.
	assert.Equal(t, []string{"Strings", "Builder", "10", "40"}, records[1])
	assert.Equal(t, []string{"Strings", "Builder", "100", "70"}, records[4])
	assert.Equal(t, []string{"Strings", "Concat", "10", "100"}, records[5])
	assert.Equal(t, []string{"Strings", "Concat", "100", "900"}, records[11])

	maps := readCSV(t, paths[1])
	assert.Equal(t, []string{"Maps", "Lookup", "", "10"}, maps[1])
}

func TestCSVExporterLimitAndMemory(t *testing.T) {
	root := t.TempDir()
	results := testResults()
	results.Config.MeasureMemory = true

	exporter := NewCSVExporter(Options{ResultsDir: root})
	exporter.Limit = 2

	paths, err := exporter.Export(context.Background(), results)
	require.NoError(t, err)

	records := readCSV(t, filepath.Join(root, "RAW-Strings.csv"))
	assert.Equal(t, "MemoryBytes", records[0][4])
	// 2 + 2 + 2 + 1 rows after thinning.
	require.Len(t, records, 8)

	concat10 := make([]string, 0)
	for _, r := range records[1:] {
		if r[1] == "Concat" && r[2] == "10" {
			concat10 = append(concat10, r[3])
		}
	}
	assert.Equal(t, []string{"100", "500"}, concat10, "first and last sorted samples survive")
	assert.Len(t, paths, 2)

	exporter.Limit = -1
	_, err = exporter.Export(context.Background(), results)
	assert.True(t, errors.Is(err, benchmark.ErrConfiguration))
}

func TestTableExporter(t *testing.T) {
	root := t.TempDir()
	exporter := NewTableExporter(Options{ResultsDir: root, Subfolders: true})

	paths, err := exporter.Export(context.Background(), testResults())
	require.NoError(t, err)
	require.Len(t, paths, 2)
	assert.Equal(t, filepath.Join(root, "Strings", "Table-Strings.txt"), paths[0])

	data, err := os.ReadFile(paths[0])
	require.NoError(t, err)
	text := string(data)

	assert.True(t, strings.HasPrefix(text, "Strings - p50 of pure time, ns\n"))
	assert.Contains(t, text, "Function")
	assert.Contains(t, text, "Concat")
	assert.Contains(t, text, "Builder")
	// p50 of Concat(10) is 300ns, of Builder(10) 50ns.
	assert.Contains(t, text, " 300 ")
	assert.Contains(t, text, " 50 ")
	assert.Contains(t, text, "Strings.Concat(100)")

	maps, err := os.ReadFile(paths[1])
	require.NoError(t, err)
	assert.Contains(t, string(maps), noParameter)
}

func TestTableExporterPerCall(t *testing.T) {
	exporter := NewTableExporter(Options{ResultsDir: t.TempDir()})
	exporter.PerCall = true

	text, err := exporter.Render(testResults(), "Strings")
	require.NoError(t, err)
	assert.Contains(t, text, "per call")
	assert.Contains(t, text, " 150.0 ")
}

func TestGraphExporter(t *testing.T) {
	root := t.TempDir()
	exporter := NewGraphExporter(Options{ResultsDir: root, Subfolders: true})
	exporter.Width, exporter.Height = 320, 240
	exporter.Sort = benchmark.Ascending
	exporter.ErrorBars = true

	paths, err := exporter.Export(context.Background(), testResults())
	require.NoError(t, err)
	require.Len(t, paths, 7)

	assert.Equal(t, filepath.Join(root, "Strings", RawGraphsDir, "Raw-Strings-Concat-10-Ascending.png"), paths[0])
	assert.Equal(t, filepath.Join(root, "Maps", RawGraphsDir, "Raw-Maps-Lookup--Ascending.png"), paths[4])
	assert.Equal(t, filepath.Join(root, "Strings", "Compare-Strings.png"), paths[5])
	assert.Equal(t, filepath.Join(root, "Maps", "Compare-Maps.png"), paths[6])
	for _, p := range paths {
		info, err := os.Stat(p)
		require.NoError(t, err)
		assert.Positive(t, info.Size())
	}
}

func TestGraphExporterRawUnit(t *testing.T) {
	root := t.TempDir()
	exporter := NewGraphExporter(Options{ResultsDir: root})

	path, err := exporter.ExportRawUnit(testResults(), "Strings", "Builder", 100)
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(root, RawGraphsDir, "Raw-Strings-Builder-100-Unsorted.png"), path)
	assert.FileExists(t, path)

	_, err = exporter.ExportRawUnit(testResults(), "Strings", "Builder", 5)
	assert.True(t, errors.Is(err, benchmark.ErrNotFound))

	exporter.Width = 0
	_, err = exporter.ExportCompare(context.Background(), testResults())
	assert.True(t, errors.Is(err, benchmark.ErrConfiguration))
}

func TestGraphExporterKeepsWrittenPathsOnFailure(t *testing.T) {
	root := t.TempDir()
	// A file where the Maps folder should be makes its graphs fail.
	require.NoError(t, os.WriteFile(filepath.Join(root, "Maps"), nil, 0o644))

	opts := Options{ResultsDir: root, Subfolders: true}
	exporter := NewGraphExporter(opts)
	exporter.Width, exporter.Height = 160, 120
	exporter.Concurrency = 1

	paths, err := exporter.ExportRaw(context.Background(), testResults())
	require.Error(t, err)
	require.Len(t, paths, 4)
	for _, p := range paths {
		assert.FileExists(t, p)
	}

	written, err := All(context.Background(), testResults(), exporter)
	require.Error(t, err)
	assert.Equal(t, paths, written)
}

func TestJSONExporter(t *testing.T) {
	root := t.TempDir()
	exporter := NewJSONExporter(Options{ResultsDir: root})
	exporter.IncludeSamples = true

	paths, err := exporter.Export(context.Background(), testResults())
	require.NoError(t, err)
	require.Equal(t, []string{filepath.Join(root, "benchmark_results_2026-03-01_12-00-00_5f0c6a36-6a39-4d4e-9d0b-3a3e2a0c9b11.json")}, paths)

	data, err := os.ReadFile(paths[0])
	require.NoError(t, err)

	var doc struct {
		ID          string `json:"id"`
		Aggregation string `json:"aggregation"`
		Units       []struct {
			Samples   int     `json:"samples"`
			Aggregate int64   `json:"aggregate"`
			PerCallNs float64 `json:"per_call_ns"`
		} `json:"units"`
		Results []json.RawMessage `json:"results"`
	}
	require.NoError(t, json.Unmarshal(data, &doc))

	assert.Equal(t, "5f0c6a36-6a39-4d4e-9d0b-3a3e2a0c9b11", doc.ID)
	assert.Equal(t, "p50", doc.Aggregation)
	require.Len(t, doc.Units, 5)
	assert.Equal(t, 5, doc.Units[0].Samples)
	assert.Equal(t, int64(300), doc.Units[0].Aggregate)
	assert.Equal(t, 150.0, doc.Units[0].PerCallNs)
	assert.Len(t, doc.Results, 5)
}

func TestJSONExporterSameSecondRuns(t *testing.T) {
	root := t.TempDir()
	exporter := NewJSONExporter(Options{ResultsDir: root})

	first := testResults()
	second := testResults()
	second.ID = uuid.MustParse("0b7e1c52-4f0d-4c52-8a8e-6d1f2f6c3a44")

	a, err := exporter.Export(context.Background(), first)
	require.NoError(t, err)
	b, err := exporter.Export(context.Background(), second)
	require.NoError(t, err)

	assert.NotEqual(t, a, b)
	reports, err := filepath.Glob(filepath.Join(root, "benchmark_results_*.json"))
	require.NoError(t, err)
	assert.Len(t, reports, 2)
}

func TestAll(t *testing.T) {
	root := t.TempDir()
	opts := Options{ResultsDir: root}

	paths, err := All(context.Background(), testResults(), NewCSVExporter(opts), NewJSONExporter(opts))
	require.NoError(t, err)
	assert.Len(t, paths, 3)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err = All(ctx, testResults(), NewCSVExporter(opts))
	assert.True(t, errors.Is(err, context.Canceled))
}
