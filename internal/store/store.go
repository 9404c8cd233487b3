// Package store persists analyzer dangers to PostgreSQL. The store is
// optional; the analyzer runs fully in-process without it.
package store

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"go.uber.org/zap"

	"github.com/xkilldash9x/crxflow-cli/internal/report"
)

// DBPool abstracts pgxpool.Pool so tests can substitute a mock.
type DBPool interface {
	Ping(ctx context.Context) error
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// Store writes dangers to the dangers table.
type Store struct {
	pool DBPool
	log  *zap.Logger
}

// New verifies the connection and returns a Store.
func New(ctx context.Context, pool DBPool, logger *zap.Logger) (*Store, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	if err := pool.Ping(ctx); err != nil {
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}
	return &Store{pool: pool, log: logger.Named("store")}, nil
}

const sqlInsertDanger = `
	INSERT INTO dangers (id, extension, direction, source, sink, file, line, exploitable)
	VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	ON CONFLICT (id) DO NOTHING;
`

// SaveFindings inserts every danger of a finding file, keyed by danger ID.
func (s *Store) SaveFindings(ctx context.Context, f *report.Findings) error {
	if err := s.saveDangers(ctx, f.Extension, "exfiltration", f.ExfiltrationDangers); err != nil {
		return err
	}
	return s.saveDangers(ctx, f.Extension, "infiltration", f.InfiltrationDangers)
}

func (s *Store) saveDangers(ctx context.Context, extension, direction string, dangers []report.Danger) error {
	for _, d := range dangers {
		_, err := s.pool.Exec(ctx, sqlInsertDanger,
			d.ID, extension, direction, d.Source, d.Sink, d.File, d.Line, d.Exploitable)
		if err != nil {
			return fmt.Errorf("insert danger %s for %s: %w", d.ID, extension, err)
		}
	}
	s.log.Debug("Dangers persisted",
		zap.String("extension", extension),
		zap.String("direction", direction),
		zap.Int("count", len(dangers)))
	return nil
}

// CountDangers returns the number of persisted dangers for an extension.
func (s *Store) CountDangers(ctx context.Context, extension string) (int, error) {
	var count int
	err := s.pool.QueryRow(ctx,
		`SELECT COUNT(*) FROM dangers WHERE extension = $1;`, extension).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("count dangers for %s: %w", extension, err)
	}
	return count, nil
}
