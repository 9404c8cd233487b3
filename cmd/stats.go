// -- cmd/stats.go --
package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/xkilldash9x/crxflow-cli/internal/observability"
	"github.com/xkilldash9x/crxflow-cli/internal/report"
)

// newStatsCmd creates the `stats` command, which aggregates a batch summary
// table and splits danger counts into exploitable vs total using the
// injection-pattern classifier.
func newStatsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "stats [summary-file]",
		Short: "Aggregates a batch summary table into exploitable vs total danger counts",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			logger := observability.GetLogger()

			rows, err := report.ReadSummary(args[0], logger)
			if err != nil {
				return fmt.Errorf("failed to read summary file: %w", err)
			}

			stats := report.Summarize(rows)
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Extensions analyzed:     %d\n", stats.Extensions)
			fmt.Fprintf(out, "Vulnerable extensions:   %d\n", stats.VulnerableExtensions)
			fmt.Fprintf(out, "Total dangers:           %d\n", stats.TotalDangers)
			fmt.Fprintf(out, "Exploitable dangers:     %d\n", stats.ExploitableDangers)
			fmt.Fprintf(out, "Total analysis seconds:  %.2f\n", stats.TotalSeconds)
			return nil
		},
	}
}
