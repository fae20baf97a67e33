package export

import (
	"bufio"
	"context"
	"encoding/csv"
	"os"
	"slices"
	"strconv"
	"strings"

	"github.com/pkg/errors"

	"github.com/nvr-ai/tinybench/benchmark"
	"github.com/nvr-ai/tinybench/util"
)

// DefaultCSVTemplate names the raw CSV file of an owner.
const DefaultCSVTemplate = "RAW-{ClassName}.csv"

// CSVExporter writes one file per owner holding every sample as a row.
type CSVExporter struct {
	Options
	// Template is the file name template; {ClassName} is the owner.
	Template string
	// Limit thins every unit to at most Limit rows. Zero keeps every row.
	Limit int
}

// NewCSVExporter creates a CSV exporter with the default template.
func NewCSVExporter(opts Options) *CSVExporter {
	return &CSVExporter{Options: opts, Template: DefaultCSVTemplate}
}

// Export implements Exporter.
func (e *CSVExporter) Export(ctx context.Context, results *benchmark.RunResults) ([]string, error) {
	if e.Limit < 0 {
		return nil, errors.Wrapf(benchmark.ErrConfiguration, "csv row limit %d must not be negative", e.Limit)
	}

	written := make([]string, 0)
	for _, owner := range results.Owners() {
		if err := ctx.Err(); err != nil {
			return written, err
		}

		rows, err := e.rows(results, owner)
		if err != nil {
			return written, err
		}

		filename, err := e.Path(e.template(), util.TemplateValues{ClassName: owner})
		if err != nil {
			return written, err
		}
		if err := writeCSV(filename, rows, results.Config.MeasureMemory); err != nil {
			return written, err
		}
		written = append(written, filename)
	}
	return written, nil
}

// rows returns the owner's samples sorted by operation and then duration.
func (e *CSVExporter) rows(results *benchmark.RunResults, owner string) ([]benchmark.FlatResult, error) {
	owned := &benchmark.RunResults{Config: results.Config, Results: results.ByOwner(owner)}
	rows := owned.Flatten(benchmark.Ascending)

	if e.Limit > 0 {
		var err error
		if rows, err = benchmark.LimitPerUnit(rows, e.Limit); err != nil {
			return nil, err
		}
	}

	slices.SortStableFunc(rows, func(a, b benchmark.FlatResult) int {
		if c := strings.Compare(a.MethodName, b.MethodName); c != 0 {
			return c
		}
		switch {
		case a.Time < b.Time:
			return -1
		case a.Time > b.Time:
			return 1
		}
		return 0
	})
	return rows, nil
}

func (e *CSVExporter) template() string {
	if e.Template == "" {
		return DefaultCSVTemplate
	}
	return e.Template
}

func writeCSV(filename string, rows []benchmark.FlatResult, withMemory bool) error {
	file, err := os.Create(filename)
	if err != nil {
		return errors.Wrapf(err, "failed to create %s", filename)
	}
	defer file.Close()

	buffered := bufio.NewWriterSize(file, 1<<20)
	w := csv.NewWriter(buffered)

	header := []string{"ClassName", "MethodName", "Parameter", "TimeNs"}
	if withMemory {
		header = append(header, "MemoryBytes")
	}
	if err := w.Write(header); err != nil {
		return errors.Wrap(err, "failed to write csv header")
	}

	record := make([]string, len(header))
	for _, row := range rows {
		record[0] = row.ClassName
		record[1] = row.MethodName
		record[2] = util.FormatParameter(row.Parameter)
		record[3] = strconv.FormatInt(row.Time.Nanoseconds(), 10)
		if withMemory {
			record[4] = strconv.FormatInt(row.MemoryUsed, 10)
		}
		if err := w.Write(record); err != nil {
			return errors.Wrap(err, "failed to write csv row")
		}
	}

	w.Flush()
	if err := w.Error(); err != nil {
		return errors.Wrap(err, "failed to flush csv")
	}
	if err := buffered.Flush(); err != nil {
		return errors.Wrapf(err, "failed to write %s", filename)
	}
	return file.Close()
}
