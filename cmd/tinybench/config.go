package main

import (
	"fmt"
	"os"

	"github.com/pkg/errors"
	"github.com/spf13/cobra"

	"github.com/nvr-ai/tinybench/benchmark"
)

func newConfigCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Manage run configuration files",
	}
	cmd.AddCommand(newConfigInitCmd(), newConfigShowCmd())
	return cmd
}

func newConfigInitCmd() *cobra.Command {
	var force bool

	cmd := &cobra.Command{
		Use:   "init [file]",
		Short: "Write the default configuration to a YAML file",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			filename := "tinybench.yaml"
			if len(args) == 1 {
				filename = args[0]
			}

			if _, err := os.Stat(filename); err == nil && !force {
				return errors.Errorf("%s already exists; use --force to overwrite", filename)
			}

			if err := benchmark.DefaultConfig().Save(filename); err != nil {
				return err
			}
			_, err := fmt.Fprintf(cmd.OutOrStdout(), "Configuration written to %s\n", filename)
			return err
		},
	}
	cmd.Flags().BoolVar(&force, "force", false, "Overwrite an existing file")

	return cmd
}

func newConfigShowCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "show [file]",
		Short: "Print the effective configuration after file and environment overrides",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			v := benchmark.NewViper()
			if len(args) == 1 {
				v.SetConfigFile(args[0])
				if err := v.ReadInConfig(); err != nil {
					return errors.Wrapf(err, "failed to read config file %s", args[0])
				}
			}

			cfg, err := benchmark.DecodeConfig(v)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "min_iterations: %d\n", cfg.MinIterations)
			fmt.Fprintf(out, "max_iterations: %d\n", cfg.MaxIterations)
			fmt.Fprintf(out, "duration_budget: %s\n", cfg.DurationBudget)
			fmt.Fprintf(out, "warm_up_iterations: %d\n", cfg.WarmUpIterations)
			fmt.Fprintf(out, "batch_size: %d\n", cfg.BatchSize)
			fmt.Fprintf(out, "measure_memory: %t\n", cfg.MeasureMemory)
			fmt.Fprintf(out, "result_subfolders: %t\n", cfg.ResultSubfolders)
			_, err = fmt.Fprintf(out, "aggregation: %s\n", cfg.AggregateReducer().Name())
			return err
		},
	}
}
