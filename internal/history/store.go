// Package history records install and uninstall outcomes in a local sqlite
// database.
package history

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"

	"github.com/pavelsavara/xharness/internal/messages"
)

// Record is one finished run.
type Record struct {
	ID        string
	Family    string
	Operation string
	Package   string
	DeviceID  string
	Outcome   string
	// Diagnosis is the classifier cause, empty for successful runs.
	Diagnosis string
	StartedAt time.Time
	Duration  time.Duration
}

// Store is the history database.
type Store struct {
	db *sql.DB
}

// Open opens (creating if needed) the database at path and applies migrations.
func Open(ctx context.Context, path string) (*Store, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
		return nil, fmt.Errorf(messages.HistoryCreateDirFmt, err)
	}
	dsn := fmt.Sprintf("file:%s?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)", path)
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf(messages.HistoryOpenFmt, path, err)
	}
	db.SetMaxOpenConns(1)
	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf(messages.HistoryOpenFmt, path, err)
	}
	if err := migrate(ctx, db); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf(messages.HistoryMigrateFmt, err)
	}
	return &Store{db: db}, nil
}

// Close closes the database.
func (s *Store) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}

// Record stores r, assigning a fresh id when r.ID is empty, and returns the id.
func (s *Store) Record(ctx context.Context, r Record) (string, error) {
	if r.ID == "" {
		r.ID = uuid.NewString()
	}
	if r.StartedAt.IsZero() {
		r.StartedAt = time.Now()
	}
	_, err := s.db.ExecContext(ctx, `
INSERT INTO runs(run_id, family, operation, package, device_id, outcome, diagnosis, started_at, duration_ms)
VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		r.ID, r.Family, r.Operation, r.Package, r.DeviceID, r.Outcome, r.Diagnosis,
		ts(r.StartedAt), r.Duration.Milliseconds(),
	)
	if err != nil {
		return "", fmt.Errorf(messages.HistoryInsertFmt, r.ID, err)
	}
	return r.ID, nil
}

// Recent returns up to limit runs, newest first.
func (s *Store) Recent(ctx context.Context, limit int) ([]Record, error) {
	rows, err := s.db.QueryContext(ctx, `
SELECT run_id, family, operation, package, device_id, outcome, diagnosis, started_at, duration_ms
FROM runs
ORDER BY started_at DESC, rowid DESC
LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf(messages.HistoryQueryFmt, err)
	}
	defer func() {
		_ = rows.Close()
	}()

	var out []Record
	for rows.Next() {
		var (
			r          Record
			started    string
			durationMS int64
		)
		if err := rows.Scan(&r.ID, &r.Family, &r.Operation, &r.Package, &r.DeviceID, &r.Outcome, &r.Diagnosis, &started, &durationMS); err != nil {
			return nil, fmt.Errorf(messages.HistoryQueryFmt, err)
		}
		if r.StartedAt, err = parseTS(started); err != nil {
			return nil, fmt.Errorf(messages.HistoryQueryFmt, err)
		}
		r.Duration = time.Duration(durationMS) * time.Millisecond
		out = append(out, r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf(messages.HistoryQueryFmt, err)
	}
	return out, nil
}

// Get returns the run with id.
func (s *Store) Get(ctx context.Context, id string) (Record, error) {
	var (
		r          Record
		started    string
		durationMS int64
	)
	err := s.db.QueryRowContext(ctx, `
SELECT run_id, family, operation, package, device_id, outcome, diagnosis, started_at, duration_ms
FROM runs WHERE run_id = ?`, id).Scan(&r.ID, &r.Family, &r.Operation, &r.Package, &r.DeviceID, &r.Outcome, &r.Diagnosis, &started, &durationMS)
	if errors.Is(err, sql.ErrNoRows) {
		return Record{}, ErrNotFound
	}
	if err != nil {
		return Record{}, fmt.Errorf(messages.HistoryQueryFmt, err)
	}
	if r.StartedAt, err = parseTS(started); err != nil {
		return Record{}, fmt.Errorf(messages.HistoryQueryFmt, err)
	}
	r.Duration = time.Duration(durationMS) * time.Millisecond
	return r, nil
}

// ErrNotFound reports a run id with no record.
var ErrNotFound = errors.New("run not found")

func ts(t time.Time) string {
	return t.UTC().Format(time.RFC3339Nano)
}

func parseTS(s string) (time.Time, error) {
	return time.Parse(time.RFC3339Nano, s)
}
