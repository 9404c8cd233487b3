package analyzer

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/xkilldash9x/crxflow-cli/internal/config"
	"github.com/xkilldash9x/crxflow-cli/internal/report"
	"github.com/xkilldash9x/crxflow-cli/internal/store"
)

// Batch drives analyses across independent extensions. Extensions are
// embarrassingly parallel; each graph stays single-threaded and exclusively
// owned by its own analysis task. A failed extension is reported and
// skipped, never aborting the rest of the batch.
type Batch struct {
	analyzer *Analyzer
	store    *store.Store
	cfg      *config.Config
	logger   *zap.Logger
}

// NewBatch returns a batch driver. store may be nil.
func NewBatch(a *Analyzer, st *store.Store, cfg *config.Config, logger *zap.Logger) *Batch {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Batch{analyzer: a, store: st, cfg: cfg, logger: logger.Named("batch")}
}

// Run analyzes every extension directory, writing one finding file per
// extension plus a shared summary table. Cancellation is coarse-grained:
// a cancelled context abandons whole per-extension analyses.
func (b *Batch) Run(ctx context.Context, dirs []string) error {
	outDir := b.cfg.Report.OutputDir
	if err := os.MkdirAll(outDir, 0o755); err != nil {
		return fmt.Errorf("create output directory: %w", err)
	}
	summary := report.NewSummaryWriter(b.cfg.Report.SummaryFile)

	grp, ctx := errgroup.WithContext(ctx)
	concurrency := b.cfg.Engine.WorkerConcurrency
	if concurrency < 1 {
		concurrency = 1
	}
	grp.SetLimit(concurrency)

	for _, dir := range dirs {
		grp.Go(func() error {
			taskCtx := ctx
			if timeout := b.cfg.Engine.TaskTimeout; timeout > 0 {
				var cancel context.CancelFunc
				taskCtx, cancel = context.WithTimeout(ctx, timeout)
				defer cancel()
			}

			res, err := b.analyzer.AnalyzeExtension(taskCtx, dir)
			if err != nil {
				if ctx.Err() != nil {
					return ctx.Err()
				}
				b.logger.Warn("Extension analysis failed", zap.String("dir", dir), zap.Error(err))
				return nil
			}

			if err := b.persist(taskCtx, res, summary); err != nil {
				b.logger.Warn("Failed to persist results", zap.String("dir", dir), zap.Error(err))
			}
			return nil
		})
	}
	return grp.Wait()
}

func (b *Batch) persist(ctx context.Context, res *Result, summary *report.SummaryWriter) error {
	path := filepath.Join(b.cfg.Report.OutputDir, findingFileName(res.Findings.Extension))
	if err := report.WriteFindings(path, &res.Findings); err != nil {
		return err
	}

	total := len(res.Findings.ExfiltrationDangers) + len(res.Findings.InfiltrationDangers)
	row := report.SummaryRow{
		Extension:       res.Findings.Extension,
		InjectedInto:    res.Patterns,
		AnalysisSeconds: res.Duration.Seconds(),
		TotalDangers:    total,
	}
	if err := summary.Append(row); err != nil {
		return err
	}

	if b.store != nil {
		if err := b.store.SaveFindings(ctx, &res.Findings); err != nil {
			return err
		}
	}
	return nil
}

// findingFileName flattens an extension name into a safe file name.
func findingFileName(name string) string {
	clean := strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '-', r == '_':
			return r
		default:
			return '_'
		}
	}, name)
	if clean == "" {
		clean = "extension"
	}
	return clean + ".json"
}
