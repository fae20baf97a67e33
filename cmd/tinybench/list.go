package main

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/spf13/cobra"

	"github.com/nvr-ai/tinybench/benchmark"
)

func newListCmd(reg *benchmark.Registry) *cobra.Command {
	var batchSize int

	cmd := &cobra.Command{
		Use:   "list [suite...]",
		Short: "List the registered benchmark suites and their units",
		RunE: func(cmd *cobra.Command, args []string) error {
			targets, err := reg.Discover(args...)
			if err != nil {
				return err
			}

			rows := make([][]string, 0, len(targets))
			for _, t := range targets {
				cases, err := t.Cases(batchSize)
				if err != nil {
					return err
				}
				focus := ""
				if t.Focused() {
					focus = "yes"
				}
				rows = append(rows, []string{
					t.Owner(),
					strings.Join(t.Operations(), ", "),
					strconv.Itoa(len(cases)),
					focus,
				})
			}

			out := table.New().
				Border(lipgloss.NormalBorder()).
				Headers("Suite", "Operations", "Units", "Focused").
				Rows(rows...).
				String()
			_, err = fmt.Fprintln(cmd.OutOrStdout(), out)
			return err
		},
	}
	cmd.Flags().IntVar(&batchSize, "batch-size", 1, "Batch size used to expand the suites")

	return cmd
}
