package repository

import (
	"context"
	"database/sql"
	_ "embed"
	"encoding/json"
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/okian/crease/internal/domain/model"
	"github.com/okian/crease/pkg/logger"
	"github.com/okian/crease/pkg/metrics"

	_ "modernc.org/sqlite"
)

//go:embed schema.sql
var schemaSQL string

const (
	sqliteDriver = "sqlite"

	upsertMatch = `
INSERT INTO matches (id, status, version, snapshot, created_at, updated_at)
VALUES (?, ?, ?, ?, ?, ?)
ON CONFLICT(id) DO UPDATE SET
    status     = excluded.status,
    version    = excluded.version,
    snapshot   = excluded.snapshot,
    updated_at = excluded.updated_at
WHERE excluded.version >= matches.version`

	insertCommand = `
INSERT INTO commands (match_id, version, kind, payload, applied_at)
VALUES (?, ?, ?, ?, ?)
ON CONFLICT(match_id, version) DO NOTHING`
)

// SQLiteStore persists matches in a SQLite database.
type SQLiteStore struct {
	db     *sql.DB
	logger logger.Logger
}

// OpenSQLite opens or creates the database at path and applies the schema.
func OpenSQLite(ctx context.Context, path string, opts ...Option) (*SQLiteStore, error) {
	const op = "repository.open_sqlite"
	if strings.TrimSpace(path) == "" {
		return nil, fmt.Errorf("%s: %w", op, ErrInvalidPath)
	}
	o := newOptions(opts)

	db, err := sql.Open(sqliteDriver, filepath.Clean(path))
	if err != nil {
		return nil, fmt.Errorf("%s: open: %w", op, err)
	}
	// SQLite allows a single writer.
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)

	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("%s: ping: %w", op, err)
	}
	if err := applyPragmas(ctx, db, o.busyTimeout); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	if _, err := db.ExecContext(ctx, schemaSQL); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("%s: apply schema: %w", op, err)
	}

	s := &SQLiteStore{db: db, logger: o.logger.Named("sqlite")}
	s.logger.Info(ctx, "store opened", logger.String("path", path))
	return s, nil
}

func applyPragmas(ctx context.Context, db *sql.DB, busy time.Duration) error {
	pragmas := []string{
		"PRAGMA journal_mode = WAL",
		"PRAGMA synchronous = NORMAL",
		fmt.Sprintf("PRAGMA busy_timeout = %d", busy.Milliseconds()),
		"PRAGMA foreign_keys = ON",
	}
	for _, p := range pragmas {
		if _, err := db.ExecContext(ctx, p); err != nil {
			return fmt.Errorf("execute %q: %w", p, err)
		}
	}
	return nil
}

// Save implements Store. The snapshot and its log entry are written in one
// transaction.
func (s *SQLiteStore) Save(ctx context.Context, snap model.Snapshot, entry LogEntry) (err error) { //nolint:gocritic // hugeParam: snapshots are values by contract
	start := time.Now()
	defer func() {
		observe("save", start)
		if err != nil {
			metrics.RecordStoreError("save")
		}
	}()

	body, err := json.Marshal(snap)
	if err != nil {
		return fmt.Errorf("marshal snapshot %s: %w", snap.ID, err)
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	now := time.Now().UTC().UnixMilli()
	if _, err = tx.ExecContext(ctx, upsertMatch,
		snap.ID, string(snap.Status), int64(snap.Version), body, snap.CreatedAt.UTC().UnixMilli(), now); err != nil {
		return fmt.Errorf("upsert match %s: %w", snap.ID, err)
	}
	if entry.Kind != "" {
		appliedAt := entry.AppliedAt
		if appliedAt.IsZero() {
			appliedAt = time.Now()
		}
		if _, err = tx.ExecContext(ctx, insertCommand,
			snap.ID, int64(entry.Version), entry.Kind, entry.Payload, appliedAt.UTC().UnixMilli()); err != nil {
			return fmt.Errorf("append command %s@%d: %w", snap.ID, entry.Version, err)
		}
	}
	if err = tx.Commit(); err != nil {
		return fmt.Errorf("commit: %w", err)
	}
	return nil
}

// Load implements Store.
func (s *SQLiteStore) Load(ctx context.Context, matchID string) (model.Snapshot, error) {
	start := time.Now()
	defer observe("load", start)

	var body []byte
	err := s.db.QueryRowContext(ctx, `SELECT snapshot FROM matches WHERE id = ?`, matchID).Scan(&body)
	if errors.Is(err, sql.ErrNoRows) {
		return model.Snapshot{}, ErrNotFound
	}
	if err != nil {
		metrics.RecordStoreError("load")
		return model.Snapshot{}, fmt.Errorf("load match %s: %w", matchID, err)
	}
	return decodeSnapshot(body)
}

// List implements Store.
func (s *SQLiteStore) List(ctx context.Context) ([]model.Snapshot, error) {
	start := time.Now()
	defer observe("list", start)

	rows, err := s.db.QueryContext(ctx, `SELECT snapshot FROM matches ORDER BY created_at, id`)
	if err != nil {
		metrics.RecordStoreError("list")
		return nil, fmt.Errorf("list matches: %w", err)
	}
	defer rows.Close()

	out := []model.Snapshot{}
	for rows.Next() {
		var body []byte
		if err := rows.Scan(&body); err != nil {
			return nil, fmt.Errorf("scan match: %w", err)
		}
		snap, err := decodeSnapshot(body)
		if err != nil {
			return nil, err
		}
		out = append(out, snap)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate matches: %w", err)
	}
	// Ties on created_at are broken in Go so both stores agree.
	sortByCreation(out)
	return out, nil
}

// Log implements Store.
func (s *SQLiteStore) Log(ctx context.Context, matchID string) ([]LogEntry, error) {
	var exists int
	err := s.db.QueryRowContext(ctx, `SELECT 1 FROM matches WHERE id = ?`, matchID).Scan(&exists)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("check match %s: %w", matchID, err)
	}

	rows, err := s.db.QueryContext(ctx,
		`SELECT version, kind, payload, applied_at FROM commands WHERE match_id = ? ORDER BY version`, matchID)
	if err != nil {
		metrics.RecordStoreError("log")
		return nil, fmt.Errorf("read log %s: %w", matchID, err)
	}
	defer rows.Close()

	out := []LogEntry{}
	for rows.Next() {
		var (
			version   int64
			appliedAt int64
			e         = LogEntry{MatchID: matchID}
		)
		if err := rows.Scan(&version, &e.Kind, &e.Payload, &appliedAt); err != nil {
			return nil, fmt.Errorf("scan command: %w", err)
		}
		e.Version = uint64(version)
		e.AppliedAt = time.UnixMilli(appliedAt).UTC()
		out = append(out, e)
	}
	return out, rows.Err()
}

// Close implements Store.
func (s *SQLiteStore) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}

func decodeSnapshot(body []byte) (model.Snapshot, error) {
	var snap model.Snapshot
	if err := json.Unmarshal(body, &snap); err != nil {
		return model.Snapshot{}, fmt.Errorf("decode snapshot: %w", err)
	}
	return snap, nil
}
