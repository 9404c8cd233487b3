// -- cmd/sort.go --
package cmd

import (
	"fmt"
	"sort"

	"github.com/spf13/cobra"

	"github.com/xkilldash9x/crxflow-cli/internal/observability"
	"github.com/xkilldash9x/crxflow-cli/internal/report"
)

// newSortCmd creates the `sort` command, which orders a batch summary table
// by total danger count so the riskiest extensions surface first.
func newSortCmd() *cobra.Command {
	var inPlace bool

	sortCmd := &cobra.Command{
		Use:   "sort [summary-file]",
		Short: "Orders a batch summary table by total danger count, descending",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			logger := observability.GetLogger()

			rows, err := report.ReadSummary(args[0], logger)
			if err != nil {
				return fmt.Errorf("failed to read summary file: %w", err)
			}

			// Stable so equal danger counts keep their original relative order.
			sort.SliceStable(rows, func(i, j int) bool {
				return rows[i].TotalDangers > rows[j].TotalDangers
			})

			if inPlace {
				if err := report.WriteSummary(args[0], rows); err != nil {
					return fmt.Errorf("failed to rewrite summary file: %w", err)
				}
				return nil
			}

			out := cmd.OutOrStdout()
			for _, row := range rows {
				fmt.Fprintf(out, "%6d  %s\n", row.TotalDangers, row.Extension)
			}
			return nil
		},
	}

	sortCmd.Flags().BoolVar(&inPlace, "in-place", false, "rewrite the summary file in sorted order instead of printing")
	return sortCmd
}
