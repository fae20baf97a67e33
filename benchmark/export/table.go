package export

import (
	"context"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/pkg/errors"

	"github.com/nvr-ai/tinybench/benchmark"
	"github.com/nvr-ai/tinybench/profiler"
	"github.com/nvr-ai/tinybench/util"
)

// DefaultTableTemplate names the text table file of an owner.
const DefaultTableTemplate = "Table-{ClassName}.txt"

// noParameter heads the column of parameterless units.
const noParameter = "(none)"

var (
	nameCell   = lipgloss.NewStyle().Padding(0, 1)
	numberCell = lipgloss.NewStyle().Padding(0, 1).Align(lipgloss.Right)
)

// TableExporter writes one text file per owner comparing its operations: one
// row per operation, one column per parameter, each cell the configured
// aggregate of pure time in nanoseconds. A per-unit summary follows.
type TableExporter struct {
	Options
	Template string
	// PerCall divides every figure by the run's batch size.
	PerCall bool
}

// NewTableExporter creates a table exporter with the default template.
func NewTableExporter(opts Options) *TableExporter {
	return &TableExporter{Options: opts, Template: DefaultTableTemplate}
}

// Export implements Exporter.
func (e *TableExporter) Export(ctx context.Context, results *benchmark.RunResults) ([]string, error) {
	written := make([]string, 0)
	for _, owner := range results.Owners() {
		if err := ctx.Err(); err != nil {
			return written, err
		}

		text, err := e.Render(results, owner)
		if err != nil {
			return written, err
		}

		template := e.Template
		if template == "" {
			template = DefaultTableTemplate
		}
		filename, err := e.Path(template, util.TemplateValues{ClassName: owner})
		if err != nil {
			return written, err
		}
		if err := os.WriteFile(filename, []byte(text), 0o644); err != nil {
			return written, errors.Wrapf(err, "failed to write %s", filename)
		}
		written = append(written, filename)
	}
	return written, nil
}

// Render returns the comparison and summary tables of one owner.
func (e *TableExporter) Render(results *benchmark.RunResults, owner string) (string, error) {
	params := results.Parameters(owner)
	reducer := results.Reducer()

	headers := make([]string, 0, len(params)+1)
	headers = append(headers, "Function")
	for _, p := range params {
		if p == nil {
			headers = append(headers, noParameter)
			continue
		}
		headers = append(headers, util.FormatParameter(p))
	}

	rows := make([][]string, 0)
	for _, group := range results.ByOperation(owner) {
		row := make([]string, 0, len(headers))
		row = append(row, group.Operation)
		for _, p := range params {
			res, err := results.Find(owner, group.Operation, p)
			if errors.Is(err, benchmark.ErrNotFound) {
				row = append(row, "")
				continue
			}
			if err != nil {
				return "", err
			}
			aggregate, err := res.Aggregate(reducer)
			if err != nil {
				return "", errors.Wrapf(err, "aggregate of %s", res.Unit)
			}
			row = append(row, e.nanoseconds(aggregate.Nanoseconds(), results.Config.BatchSize))
		}
		rows = append(rows, row)
	}

	var b strings.Builder
	b.WriteString(owner)
	b.WriteString(" - ")
	b.WriteString(reducer.Name())
	b.WriteString(" of pure time, ns")
	if e.PerCall {
		b.WriteString(" per call")
	}
	b.WriteString("\n")
	b.WriteString(render(headers, rows))
	b.WriteString("\n\n")

	summary, err := e.summary(results, owner)
	if err != nil {
		return "", err
	}
	b.WriteString(summary)
	b.WriteString("\n")

	return b.String(), nil
}

func (e *TableExporter) summary(results *benchmark.RunResults, owner string) (string, error) {
	headers := []string{"Unit", "Samples", "Min", "Mean", "StdDev", "Max"}
	if results.Config.MeasureMemory {
		headers = append(headers, "Memory")
	}

	batch := results.Config.BatchSize
	rows := make([][]string, 0)
	for _, res := range results.ByOwner(owner) {
		s, err := res.Summary()
		if err != nil {
			return "", errors.Wrapf(err, "summary of %s", res.Unit)
		}
		row := []string{
			res.Unit.String(),
			strconv.Itoa(s.Count),
			e.nanoseconds(s.Min.Nanoseconds(), batch),
			e.nanoseconds(s.Mean.Nanoseconds(), batch),
			e.nanoseconds(s.StdDev.Nanoseconds(), batch),
			e.nanoseconds(s.Max.Nanoseconds(), batch),
		}
		if results.Config.MeasureMemory {
			row = append(row, profiler.FormatBytes(meanBytes(res.MemoryUsed())))
		}
		rows = append(rows, row)
	}

	return render(headers, rows), nil
}

func (e *TableExporter) nanoseconds(ns int64, batchSize int) string {
	if !e.PerCall || batchSize <= 1 {
		return strconv.FormatInt(ns, 10)
	}
	return strconv.FormatFloat(benchmark.PerCall(time.Duration(ns), batchSize), 'f', 1, 64)
}

func render(headers []string, rows [][]string) string {
	return table.New().
		Border(lipgloss.NormalBorder()).
		Headers(headers...).
		Rows(rows...).
		StyleFunc(func(row, col int) lipgloss.Style {
			if col == 0 {
				return nameCell
			}
			return numberCell
		}).
		String()
}

func meanBytes(values []int64) uint64 {
	if len(values) == 0 {
		return 0
	}
	var total int64
	for _, v := range values {
		total += v
	}
	return uint64(total / int64(len(values)))
}
