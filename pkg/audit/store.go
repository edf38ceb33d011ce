package audit

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	_ "modernc.org/sqlite"

	"treblle-hq/relay/pkg/config"
	"treblle-hq/relay/pkg/dispatch"
	"treblle-hq/relay/pkg/telemetry/logging"
)

const schemaSQL = `
CREATE TABLE IF NOT EXISTS dispatches (
	id            TEXT PRIMARY KEY,
	endpoint      TEXT NOT NULL,
	status        INTEGER NOT NULL,
	error_kind    TEXT NOT NULL DEFAULT '',
	payload_bytes INTEGER NOT NULL,
	duration_ms   INTEGER NOT NULL,
	completed_at  TIMESTAMP NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_dispatches_completed_at ON dispatches(completed_at);
`

// Store writes dispatch outcomes to SQLite. It satisfies dispatch.Sink.
type Store struct {
	db     *sql.DB
	logger *logging.Logger
}

// NewStore opens (or creates) the audit database at cfg.Path and applies
// the schema. logger must not be nil; use logging.Discard() to silence it.
func NewStore(cfg *config.AuditConfig, logger *logging.Logger) (*Store, error) {
	db, err := sql.Open("sqlite", cfg.Path)
	if err != nil {
		return nil, fmt.Errorf("audit: open %s: %w", cfg.Path, err)
	}

	// One writer at a time keeps SQLite happy without a busy-retry loop.
	db.SetMaxOpenConns(1)

	if _, err := db.Exec("PRAGMA journal_mode=WAL;"); err != nil {
		db.Close()
		return nil, fmt.Errorf("audit: enable wal: %w", err)
	}
	if _, err := db.Exec(schemaSQL); err != nil {
		db.Close()
		return nil, fmt.Errorf("audit: apply schema: %w", err)
	}

	logger.Debug("audit store opened", "path", cfg.Path)

	return &Store{db: db, logger: logger}, nil
}

// RecordDispatch writes one delivery outcome. It is called on delivery
// goroutines, so failures are logged and absorbed rather than returned.
func (s *Store) RecordDispatch(rec dispatch.Record) {
	_, err := s.db.Exec(
		`INSERT INTO dispatches (id, endpoint, status, error_kind, payload_bytes, duration_ms, completed_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		rec.ID,
		rec.Endpoint,
		rec.Status,
		rec.ErrorKind,
		rec.PayloadBytes,
		rec.Duration.Milliseconds(),
		rec.CompletedAt,
	)
	if err != nil {
		s.logger.Warn("audit write failed", "delivery_id", rec.ID, "error", err)
	}
}

// PruneBefore deletes rows completed before the cutoff and returns how
// many were removed.
func (s *Store) PruneBefore(ctx context.Context, cutoff time.Time) (int64, error) {
	res, err := s.db.ExecContext(ctx,
		"DELETE FROM dispatches WHERE completed_at < ?", cutoff)
	if err != nil {
		return 0, fmt.Errorf("audit: prune: %w", err)
	}
	return res.RowsAffected()
}

// Count returns the number of stored dispatch rows.
func (s *Store) Count(ctx context.Context) (int64, error) {
	var n int64
	err := s.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM dispatches").Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("audit: count: %w", err)
	}
	return n, nil
}

// Close closes the underlying database.
func (s *Store) Close() error {
	return s.db.Close()
}
