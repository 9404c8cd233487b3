// -- cmd/analyze.go --
package cmd

import (
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	"github.com/xkilldash9x/crxflow-cli/internal/analyzer"
	"github.com/xkilldash9x/crxflow-cli/internal/config"
	"github.com/xkilldash9x/crxflow-cli/internal/observability"
	"github.com/xkilldash9x/crxflow-cli/internal/store"
)

// newAnalyzeCmd creates and configures the `analyze` command.
func newAnalyzeCmd() *cobra.Command {
	analyzeCmd := &cobra.Command{
		Use:   "analyze [extension-dirs...]",
		Short: "Analyzes unpacked extensions for cross-context data leaks",
		Args:  cobra.MinimumNArgs(1),
		PreRunE: func(cmd *cobra.Command, args []string) error {
			// Bind flags so CLI values override file and env config.
			if err := viper.BindPFlag("engine.worker_concurrency", cmd.Flags().Lookup("concurrency")); err != nil {
				return err
			}
			if err := viper.BindPFlag("analysis.strategy", cmd.Flags().Lookup("strategy")); err != nil {
				return err
			}
			if err := viper.BindPFlag("report.output_dir", cmd.Flags().Lookup("out")); err != nil {
				return err
			}
			if err := viper.BindPFlag("report.summary_file", cmd.Flags().Lookup("summary")); err != nil {
				return err
			}
			return nil
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			logger := observability.GetLogger()

			cfg := config.Get()
			if err := viper.Unmarshal(cfg); err != nil {
				return fmt.Errorf("failed to re-unmarshal config with flag overrides: %w", err)
			}

			a := analyzer.New(cfg.Analysis, logger)

			var st *store.Store
			if cfg.Database.Enabled && cfg.Database.URL != "" {
				pool, err := pgxpool.New(ctx, cfg.Database.URL)
				if err != nil {
					return fmt.Errorf("failed to open database pool: %w", err)
				}
				defer pool.Close()
				st, err = store.New(ctx, pool, logger)
				if err != nil {
					return fmt.Errorf("failed to initialize findings store: %w", err)
				}
			}

			logger.Info("Starting extension analysis",
				zap.Int("extensions", len(args)),
				zap.Int("concurrency", cfg.Engine.WorkerConcurrency),
				zap.String("strategy", cfg.Analysis.Strategy),
			)

			batch := analyzer.NewBatch(a, st, cfg, logger)
			if err := batch.Run(ctx, args); err != nil {
				return fmt.Errorf("analysis batch failed: %w", err)
			}
			return nil
		},
	}

	analyzeCmd.Flags().IntP("concurrency", "n", 4, "number of extensions analyzed in parallel")
	analyzeCmd.Flags().String("strategy", "leaves", "flow exploration strategy: 'leaves' or 'exhaustive'")
	analyzeCmd.Flags().StringP("out", "o", "results", "directory receiving per-extension finding files")
	analyzeCmd.Flags().String("summary", "summary.csv", "path of the batch summary table")

	return analyzeCmd
}
