package report

import (
	"encoding/csv"
	"fmt"
	"os"
	"strconv"
	"strings"
	"sync"

	"go.uber.org/zap"

	"github.com/xkilldash9x/crxflow-cli/internal/exploit"
)

// summaryHeader is the column layout of the batch summary table.
var summaryHeader = []string{"Extension", "CS injected into", "analysis time in seconds", "total dangers"}

// patternSeparator joins injection patterns inside one table cell.
const patternSeparator = "|"

// SummaryRow is one extension's line in the batch summary table.
type SummaryRow struct {
	Extension       string
	InjectedInto    []string
	AnalysisSeconds float64
	TotalDangers    int
}

// SummaryWriter appends rows to a summary table, writing the header when the
// file starts empty. Safe for concurrent Append calls.
type SummaryWriter struct {
	path string
	mu   sync.Mutex
}

// NewSummaryWriter returns a writer appending to path.
func NewSummaryWriter(path string) *SummaryWriter {
	return &SummaryWriter{path: path}
}

// Append adds one row, creating the file with a header row first if needed.
func (w *SummaryWriter) Append(row SummaryRow) error {
	w.mu.Lock()
	defer w.mu.Unlock()

	info, err := os.Stat(w.path)
	fresh := os.IsNotExist(err) || (err == nil && info.Size() == 0)

	f, err := os.OpenFile(w.path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return fmt.Errorf("open summary: %w", err)
	}
	defer f.Close()

	cw := csv.NewWriter(f)
	if fresh {
		if err := cw.Write(summaryHeader); err != nil {
			return fmt.Errorf("write summary header: %w", err)
		}
	}
	if err := cw.Write(encodeRow(row)); err != nil {
		return fmt.Errorf("write summary row: %w", err)
	}
	cw.Flush()
	return cw.Error()
}

// WriteSummary replaces the whole table at path with the given rows.
func WriteSummary(path string, rows []SummaryRow) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create summary: %w", err)
	}
	defer f.Close()

	cw := csv.NewWriter(f)
	if err := cw.Write(summaryHeader); err != nil {
		return fmt.Errorf("write summary header: %w", err)
	}
	for _, row := range rows {
		if err := cw.Write(encodeRow(row)); err != nil {
			return fmt.Errorf("write summary row: %w", err)
		}
	}
	cw.Flush()
	return cw.Error()
}

func encodeRow(row SummaryRow) []string {
	return []string{
		row.Extension,
		strings.Join(row.InjectedInto, patternSeparator),
		strconv.FormatFloat(row.AnalysisSeconds, 'f', 2, 64),
		strconv.Itoa(row.TotalDangers),
	}
}

// ReadSummary loads a summary table. Malformed rows are reported as warnings
// and skipped; the rest of the batch keeps processing.
func ReadSummary(path string, logger *zap.Logger) ([]SummaryRow, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open summary: %w", err)
	}
	defer f.Close()

	cr := csv.NewReader(f)
	cr.FieldsPerRecord = -1
	records, err := cr.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("read summary: %w", err)
	}

	var rows []SummaryRow
	for i, rec := range records {
		if i == 0 && len(rec) > 0 && rec[0] == summaryHeader[0] {
			continue
		}
		row, err := decodeRow(rec)
		if err != nil {
			logger.Warn("Skipping malformed summary row", zap.Int("line", i+1), zap.Error(err))
			continue
		}
		rows = append(rows, row)
	}
	return rows, nil
}

func decodeRow(rec []string) (SummaryRow, error) {
	if len(rec) < 4 {
		return SummaryRow{}, fmt.Errorf("expected at least 4 columns, got %d", len(rec))
	}
	seconds, err := strconv.ParseFloat(rec[2], 64)
	if err != nil {
		return SummaryRow{}, fmt.Errorf("bad analysis time %q: %w", rec[2], err)
	}
	dangers, err := strconv.Atoi(rec[3])
	if err != nil {
		return SummaryRow{}, fmt.Errorf("bad danger count %q: %w", rec[3], err)
	}
	var patterns []string
	if rec[1] != "" {
		patterns = strings.Split(rec[1], patternSeparator)
	}
	return SummaryRow{
		Extension:       rec[0],
		InjectedInto:    patterns,
		AnalysisSeconds: seconds,
		TotalDangers:    dangers,
	}, nil
}

// Stats aggregates a summary table, splitting danger counts into exploitable
// vs total by classifying each extension's injection patterns.
type Stats struct {
	Extensions           int
	VulnerableExtensions int
	TotalDangers         int
	ExploitableDangers   int
	TotalSeconds         float64
}

// Summarize computes aggregate statistics over summary rows. An extension's
// dangers count as exploitable when any of its injection patterns is
// classified as attacker-reachable.
func Summarize(rows []SummaryRow) Stats {
	var s Stats
	for _, row := range rows {
		s.Extensions++
		s.TotalDangers += row.TotalDangers
		s.TotalSeconds += row.AnalysisSeconds
		if row.TotalDangers > 0 {
			s.VulnerableExtensions++
			if exploit.AnyEverywhere(row.InjectedInto) {
				s.ExploitableDangers += row.TotalDangers
			}
		}
	}
	return s
}
