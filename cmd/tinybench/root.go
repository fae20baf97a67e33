package main

import (
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/nvr-ai/tinybench/benchmark"
)

// newRootCmd builds the command tree over the suites registered in reg.
func newRootCmd(reg *benchmark.Registry) *cobra.Command {
	var logLevel string

	root := &cobra.Command{
		Use:   "tinybench",
		Short: "Micro-benchmark alternative implementations of a function",
		Long: `tinybench measures registered benchmark suites under an iteration and
duration budget and exports the samples as CSV files, text tables, graphs
and JSON reports.`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.PersistentFlags().StringVar(&logLevel, "log-level", "info", "Log level (debug, info, warn, error)")

	logger := logrus.New()
	root.PersistentPreRunE = func(cmd *cobra.Command, _ []string) error {
		level, err := logrus.ParseLevel(logLevel)
		if err != nil {
			return err
		}
		logger.SetLevel(level)
		logger.SetOutput(cmd.ErrOrStderr())
		return nil
	}

	root.AddCommand(
		newRunCmd(reg, logger),
		newListCmd(reg),
		newConfigCmd(),
	)
	return root
}
