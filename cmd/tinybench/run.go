package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/pkg/errors"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"github.com/nvr-ai/tinybench/benchmark"
	"github.com/nvr-ai/tinybench/benchmark/export"
	"github.com/nvr-ai/tinybench/profiler"
)

// runOptions holds the export and output flags of the run command.
type runOptions struct {
	configFile  string
	suites      []string
	resultsDir  string
	csv         bool
	csvLimit    int
	tables      bool
	perCall     bool
	graphs      bool
	errorBars   bool
	sort        string
	json        bool
	metricsFile string
	quiet       bool
}

// configFlags maps config keys to their command line flags.
var configFlags = map[string]string{
	"min_iterations":     "min-iterations",
	"max_iterations":     "max-iterations",
	"duration_budget":    "duration-budget",
	"warm_up_iterations": "warm-up-iterations",
	"batch_size":         "batch-size",
	"measure_memory":     "measure-memory",
	"result_subfolders":  "result-subfolders",
	"aggregation":        "aggregation",
}

func newRunCmd(reg *benchmark.Registry, logger *logrus.Logger) *cobra.Command {
	opts := &runOptions{}

	cmd := &cobra.Command{
		Use:   "run",
		Short: "Measure the registered suites and export the results",
		Long: `Run discovers the requested suites (all registered suites by default),
measures every unit sequentially and writes the selected exports below the
results directory.

Configuration is read from --config, overridden by TINYBENCH_* environment
variables and finally by explicit flags.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := loadRunConfig(opts.configFile, cmd.Flags())
			if err != nil {
				return err
			}
			if !opts.quiet {
				out := cmd.OutOrStdout()
				cfg.Logger = func(line string) { fmt.Fprintln(out, line) }
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			return run(ctx, cmd, reg, logger, cfg, opts)
		},
	}

	flags := cmd.Flags()
	defaults := benchmark.DefaultConfig()
	flags.StringVarP(&opts.configFile, "config", "c", "", "Configuration file (yaml, json or toml)")
	flags.StringSliceVarP(&opts.suites, "suite", "s", nil, "Suites to run (default all registered suites)")
	flags.Int("min-iterations", defaults.MinIterations, "Minimum samples per unit")
	flags.Int("max-iterations", defaults.MaxIterations, "Maximum samples per unit with a duration budget (0 for no cap)")
	flags.Duration("duration-budget", defaults.DurationBudget, "Total measuring time shared by all units (0 for none)")
	flags.Int("warm-up-iterations", defaults.WarmUpIterations, "Warm-up calls per unit used to split the duration budget")
	flags.Int("batch-size", defaults.BatchSize, "Operation calls per sample")
	flags.Bool("measure-memory", defaults.MeasureMemory, "Record the allocation delta of every sample")
	flags.Bool("result-subfolders", defaults.ResultSubfolders, "Write every suite's files to its own folder")
	flags.String("aggregation", defaults.Aggregation, "Comparison statistic: pNN, median or best")

	flags.StringVarP(&opts.resultsDir, "out", "o", export.DefaultResultsDir, "Results directory")
	flags.BoolVar(&opts.csv, "csv", true, "Write raw CSV files")
	flags.IntVar(&opts.csvLimit, "csv-limit", 0, "Thin every unit to at most this many CSV rows (0 keeps all)")
	flags.BoolVar(&opts.tables, "tables", true, "Write comparison tables")
	flags.BoolVar(&opts.perCall, "per-call", false, "Divide table figures by the batch size")
	flags.BoolVar(&opts.graphs, "graphs", false, "Write raw and comparison graphs")
	flags.BoolVar(&opts.errorBars, "error-bars", true, "Overlay the p30..p70 spread on comparison graphs")
	flags.StringVar(&opts.sort, "sort", "unsorted", "Order of samples in raw graphs: unsorted, ascending or descending")
	flags.BoolVar(&opts.json, "json", false, "Write a JSON report")
	flags.StringVar(&opts.metricsFile, "metrics-file", "", "Write engine metrics in Prometheus text format to this file")
	flags.BoolVarP(&opts.quiet, "quiet", "q", false, "Do not print progress lines")

	return cmd
}

// loadRunConfig layers defaults, the optional file, environment variables and
// explicitly set flags.
func loadRunConfig(filename string, flags *pflag.FlagSet) (benchmark.Config, error) {
	v := benchmark.NewViper()
	if err := bindConfigFlags(v, flags); err != nil {
		return benchmark.Config{}, err
	}

	if filename != "" {
		v.SetConfigFile(filename)
		if err := v.ReadInConfig(); err != nil {
			return benchmark.Config{}, errors.Wrapf(err, "failed to read config file %s", filename)
		}
	}

	return benchmark.DecodeConfig(v)
}

func bindConfigFlags(v *viper.Viper, flags *pflag.FlagSet) error {
	for key, name := range configFlags {
		if err := v.BindPFlag(key, flags.Lookup(name)); err != nil {
			return errors.Wrapf(err, "failed to bind flag %s", name)
		}
	}
	return nil
}

func run(ctx context.Context, cmd *cobra.Command, reg *benchmark.Registry, logger *logrus.Logger, cfg benchmark.Config, opts *runOptions) error {
	direction, err := benchmark.ParseSortDirection(opts.sort)
	if err != nil {
		return err
	}

	runnerOpts := []benchmark.RunnerOption{benchmark.WithLogger(logger)}
	metrics := prometheus.NewRegistry()
	if opts.metricsFile != "" {
		runnerOpts = append(runnerOpts, benchmark.WithInstruments(benchmark.NewInstruments(metrics)))
	}

	results, err := benchmark.RunSuites(ctx, cfg, reg, opts.suites, runnerOpts...)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "Run %s measured %d units in %s\n",
		results.ID, len(results.Results), profiler.FormatDuration(results.Elapsed))
	for _, o := range results.Overtime {
		fmt.Fprintf(out, "Overtime: %s took %s (budget %s)\n",
			o.Unit, profiler.FormatDuration(o.Elapsed), profiler.FormatDuration(o.Budget))
	}

	exportOpts := export.Options{ResultsDir: opts.resultsDir, Subfolders: cfg.ResultSubfolders}
	exporters := make([]export.Exporter, 0, 4)
	if opts.csv {
		csv := export.NewCSVExporter(exportOpts)
		csv.Limit = opts.csvLimit
		exporters = append(exporters, csv)
	}
	if opts.tables {
		tables := export.NewTableExporter(exportOpts)
		tables.PerCall = opts.perCall
		exporters = append(exporters, tables)
	}
	if opts.graphs {
		graphs := export.NewGraphExporter(exportOpts)
		graphs.Sort = direction
		graphs.ErrorBars = opts.errorBars
		exporters = append(exporters, graphs)
	}
	if opts.json {
		exporters = append(exporters, export.NewJSONExporter(exportOpts))
	}

	written, err := export.All(ctx, results, exporters...)
	for _, path := range written {
		fmt.Fprintf(out, "Wrote %s\n", path)
	}
	if err != nil {
		return err
	}

	if opts.metricsFile != "" {
		if err := prometheus.WriteToTextfile(opts.metricsFile, metrics); err != nil {
			return errors.Wrap(err, "failed to write metrics file")
		}
		fmt.Fprintf(out, "Wrote %s\n", opts.metricsFile)
	}

	return nil
}
