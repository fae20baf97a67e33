package export

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	"github.com/pkg/errors"

	"github.com/nvr-ai/tinybench/benchmark"
	"github.com/nvr-ai/tinybench/profiler"
	"github.com/nvr-ai/tinybench/stats"
	"github.com/nvr-ai/tinybench/util"
)

// Report is the JSON document describing a whole run.
type Report struct {
	ID          uuid.UUID                     `json:"id"`
	StartedAt   time.Time                     `json:"started_at"`
	Elapsed     time.Duration                 `json:"elapsed"`
	Config      benchmark.Config              `json:"config"`
	Aggregation string                        `json:"aggregation"`
	Units       []UnitReport                  `json:"units"`
	Overtime    map[string]benchmark.Overtime `json:"overtime,omitempty"`
	Timings     []profiler.TimeTracker        `json:"timings,omitempty"`
	Memory      profiler.MemorySnapshot       `json:"memory"`
}

// UnitReport summarises the samples of one unit.
type UnitReport struct {
	Unit      benchmark.Unit `json:"unit"`
	Samples   int            `json:"samples"`
	Aggregate time.Duration  `json:"aggregate"`
	PerCallNs float64        `json:"per_call_ns"`
	Summary   stats.Summary  `json:"summary"`
	// MemoryUsed is the mean allocation delta per sample in bytes.
	MemoryUsed uint64 `json:"memory_used,omitempty"`
}

// JSONExporter writes one report file per run, named after the start time and
// the run ID.
type JSONExporter struct {
	Options
	// IncludeSamples adds every unit's raw samples to the report.
	IncludeSamples bool
}

// NewJSONExporter creates a JSON exporter.
func NewJSONExporter(opts Options) *JSONExporter {
	return &JSONExporter{Options: opts}
}

// BuildReport summarises results.
func BuildReport(results *benchmark.RunResults) (Report, error) {
	reducer := results.Reducer()
	report := Report{
		ID:          results.ID,
		StartedAt:   results.StartedAt,
		Elapsed:     results.Elapsed,
		Config:      results.Config,
		Aggregation: reducer.Name(),
		Units:       make([]UnitReport, 0, len(results.Results)),
		Overtime:    results.Overtime,
		Timings:     results.Timings,
		Memory:      results.Memory,
	}

	for _, res := range results.Results {
		aggregate, err := res.Aggregate(reducer)
		if err != nil {
			return Report{}, errors.Wrapf(err, "aggregate of %s", res.Unit)
		}
		summary, err := res.Summary()
		if err != nil {
			return Report{}, errors.Wrapf(err, "summary of %s", res.Unit)
		}

		report.Units = append(report.Units, UnitReport{
			Unit:       res.Unit,
			Samples:    len(res.Metrics),
			Aggregate:  aggregate,
			PerCallNs:  benchmark.PerCall(aggregate, results.Config.BatchSize),
			Summary:    summary,
			MemoryUsed: meanBytes(res.MemoryUsed()),
		})
	}

	return report, nil
}

// Export implements Exporter.
func (e *JSONExporter) Export(ctx context.Context, results *benchmark.RunResults) ([]string, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	report, err := BuildReport(results)
	if err != nil {
		return nil, err
	}

	var doc any = report
	if e.IncludeSamples {
		doc = struct {
			Report
			Results []benchmark.MethodExecutionResults `json:"results"`
		}{report, results.Results}
	}

	data, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return nil, errors.Wrap(err, "failed to marshal results")
	}

	dir, err := e.Dir("")
	if err != nil {
		return nil, err
	}
	timestamp := results.StartedAt.Format("2006-01-02_15-04-05")
	filename := filepath.Join(dir, util.SanitizeFileName(fmt.Sprintf("benchmark_results_%s_%s.json", timestamp, results.ID)))

	if err := os.WriteFile(filename, data, 0o644); err != nil {
		return nil, errors.Wrap(err, "failed to write results file")
	}

	return []string{filename}, nil
}
