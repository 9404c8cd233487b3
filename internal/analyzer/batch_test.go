package analyzer

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
	"go.uber.org/zap/zaptest"

	"github.com/xkilldash9x/crxflow-cli/internal/config"
	"github.com/xkilldash9x/crxflow-cli/internal/report"
)

func testBatchConfig(t *testing.T) *config.Config {
	cfg := config.Defaults()
	cfg.Analysis = testAnalysisConfig()
	cfg.Engine.WorkerConcurrency = 2
	cfg.Engine.TaskTimeout = time.Minute
	cfg.Report.OutputDir = filepath.Join(t.TempDir(), "results")
	cfg.Report.SummaryFile = filepath.Join(t.TempDir(), "summary.csv")
	return cfg
}

func TestBatchRun(t *testing.T) {
	defer goleak.VerifyNone(t)

	leaky := writeExtension(t, leakyManifest, map[string]string{
		"content.js": "var data = e.data;\ndocument.body.innerHTML = data;\n",
	})
	clean := writeExtension(t, `{
		"name": "Clean Extension",
		"manifest_version": 2,
		"content_scripts": [{"matches": ["*://*/*"], "js": ["content.js"]}]
	}`, map[string]string{
		"content.js": "console.log('hello');\n",
	})

	cfg := testBatchConfig(t)
	logger := zaptest.NewLogger(t)
	b := NewBatch(New(cfg.Analysis, logger), nil, cfg, logger)

	require.NoError(t, b.Run(context.Background(), []string{leaky, clean}))

	// One finding file per extension.
	f, err := report.ReadFindings(filepath.Join(cfg.Report.OutputDir, "Leaky_Extension.json"))
	require.NoError(t, err)
	assert.True(t, f.Vulnerable())

	f, err = report.ReadFindings(filepath.Join(cfg.Report.OutputDir, "Clean_Extension.json"))
	require.NoError(t, err)
	assert.False(t, f.Vulnerable())

	// Both extensions land in the shared summary table.
	rows, err := report.ReadSummary(cfg.Report.SummaryFile, logger)
	require.NoError(t, err)
	require.Len(t, rows, 2)

	byName := map[string]report.SummaryRow{}
	for _, row := range rows {
		byName[row.Extension] = row
	}
	require.Contains(t, byName, "Leaky Extension")
	require.Contains(t, byName, "Clean Extension")
	assert.Positive(t, byName["Leaky Extension"].TotalDangers)
	assert.Zero(t, byName["Clean Extension"].TotalDangers)
	assert.Equal(t, []string{"*://*/*"}, byName["Leaky Extension"].InjectedInto)
}

func TestBatchRunSkipsBrokenExtensions(t *testing.T) {
	defer goleak.VerifyNone(t)

	broken := t.TempDir() // no manifest.json at all
	leaky := writeExtension(t, leakyManifest, map[string]string{
		"content.js": "var data = e.data;\ndocument.body.innerHTML = data;\n",
	})

	cfg := testBatchConfig(t)
	logger := zaptest.NewLogger(t)
	b := NewBatch(New(cfg.Analysis, logger), nil, cfg, logger)

	require.NoError(t, b.Run(context.Background(), []string{broken, leaky}))

	rows, err := report.ReadSummary(cfg.Report.SummaryFile, logger)
	require.NoError(t, err)
	assert.Len(t, rows, 1, "the broken extension is skipped, the good one still lands")
}

func TestBatchRunCancelled(t *testing.T) {
	defer goleak.VerifyNone(t)

	leaky := writeExtension(t, leakyManifest, map[string]string{
		"content.js": "var data = e.data;\ndocument.body.innerHTML = data;\n",
	})

	cfg := testBatchConfig(t)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	logger := zaptest.NewLogger(t)
	b := NewBatch(New(cfg.Analysis, logger), nil, cfg, logger)

	err := b.Run(ctx, []string{leaky})
	assert.ErrorIs(t, err, context.Canceled)
}

func TestFindingFileName(t *testing.T) {
	assert.Equal(t, "My_Extension_v2.json", findingFileName("My Extension/v2"))
	assert.Equal(t, "extension.json", findingFileName(""))

	// Distinct-enough names must not collide on disk.
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, findingFileName("a b")), nil, 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, findingFileName("c d")), nil, 0o644))
	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	assert.Len(t, entries, 2)
}
