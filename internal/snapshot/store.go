package snapshot

import (
	"context"
	"database/sql"
	_ "embed"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite"

	"curator/internal/syncer"
)

//go:embed schema.sql
var schemaSQL string

// schemaVersion is the current schema version. Bump this when the
// schema changes; a mismatched cache is simply discarded and rebuilt.
const schemaVersion = 1

// ErrSchemaMismatch indicates the cache database was written by a
// different curator version.
var ErrSchemaMismatch = errors.New("snapshot cache schema mismatch")

// Store manages the local snapshot cache backed by SQLite.
type Store struct {
	db   *sql.DB
	path string
}

// Open initializes or connects to the cache database at path.
func Open(path string) (*Store, error) {
	if dir := filepath.Dir(path); dir != "" && dir != "." {
		if err := os.MkdirAll(dir, 0o700); err != nil {
			return nil, fmt.Errorf("create cache directory: %w", err)
		}
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite db: %w", err)
	}

	pragmas := []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA busy_timeout = 5000",
	}
	for _, pragma := range pragmas {
		if _, execErr := db.Exec(pragma); execErr != nil {
			_ = db.Close()
			return nil, fmt.Errorf("apply pragma %q: %w", pragma, execErr)
		}
	}

	store := &Store{db: db, path: path}
	if err := store.initSchema(context.Background()); err != nil {
		_ = db.Close()
		return nil, err
	}
	return store, nil
}

// Close closes the underlying database connection.
func (s *Store) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}

func (s *Store) initSchema(ctx context.Context) error {
	var tableExists int
	err := s.db.QueryRowContext(ctx,
		"SELECT COUNT(1) FROM sqlite_master WHERE type='table' AND name='schema_version'",
	).Scan(&tableExists)
	if err != nil {
		return fmt.Errorf("check schema_version table: %w", err)
	}

	if tableExists == 0 {
		if _, err := s.db.ExecContext(ctx, schemaSQL); err != nil {
			return fmt.Errorf("create schema: %w", err)
		}
		return nil
	}

	var version int
	if err := s.db.QueryRowContext(ctx, "SELECT version FROM schema_version LIMIT 1").Scan(&version); err != nil {
		return fmt.Errorf("read schema version: %w", err)
	}
	if version != schemaVersion {
		return fmt.Errorf("%w: database has version %d, expected %d (delete %s)",
			ErrSchemaMismatch, version, schemaVersion, s.path)
	}
	return nil
}

// Replace overwrites every cached slot with the given snapshot in one
// transaction.
func (s *Store) Replace(ctx context.Context, snap syncer.Snapshot) error {
	slots := map[string]any{
		string(syncer.ResourceConfig):     snap.Config,
		string(syncer.ResourceSources):    snap.Sources,
		string(syncer.ResourceStats):      snap.Stats,
		string(syncer.ResourceLogs):       snap.Logs,
		string(syncer.ResourceCandidates): snap.Candidates,
		"identity":                        snap.Identity,
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin cache tx: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	savedAt := time.Now().UTC().Format(time.RFC3339Nano)
	for resource, value := range slots {
		payload, err := json.Marshal(value)
		if err != nil {
			return fmt.Errorf("encode %s slot: %w", resource, err)
		}
		_, err = tx.ExecContext(ctx,
			`INSERT INTO snapshot_slots (resource, payload, saved_at) VALUES (?, ?, ?)
             ON CONFLICT(resource) DO UPDATE SET payload = excluded.payload, saved_at = excluded.saved_at`,
			resource, string(payload), savedAt)
		if err != nil {
			return fmt.Errorf("replace %s slot: %w", resource, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit cache tx: %w", err)
	}
	return nil
}

// Load reads the cached snapshot. ok is false when the cache is empty.
// The returned time is the oldest slot write, i.e. how stale the view
// is at minimum.
func (s *Store) Load(ctx context.Context) (syncer.Snapshot, time.Time, bool, error) {
	rows, err := s.db.QueryContext(ctx, "SELECT resource, payload, saved_at FROM snapshot_slots")
	if err != nil {
		return syncer.Snapshot{}, time.Time{}, false, fmt.Errorf("query cache: %w", err)
	}
	defer rows.Close()

	var snap syncer.Snapshot
	var oldest time.Time
	found := false

	for rows.Next() {
		var resource, payload, savedAt string
		if err := rows.Scan(&resource, &payload, &savedAt); err != nil {
			return syncer.Snapshot{}, time.Time{}, false, fmt.Errorf("scan cache row: %w", err)
		}

		var target any
		switch resource {
		case string(syncer.ResourceConfig):
			target = &snap.Config
		case string(syncer.ResourceSources):
			target = &snap.Sources
		case string(syncer.ResourceStats):
			target = &snap.Stats
		case string(syncer.ResourceLogs):
			target = &snap.Logs
		case string(syncer.ResourceCandidates):
			target = &snap.Candidates
		case "identity":
			target = &snap.Identity
		default:
			continue
		}
		if err := json.Unmarshal([]byte(payload), target); err != nil {
			return syncer.Snapshot{}, time.Time{}, false, fmt.Errorf("decode %s slot: %w", resource, err)
		}

		if ts, err := time.Parse(time.RFC3339Nano, savedAt); err == nil {
			if !found || ts.Before(oldest) {
				oldest = ts
			}
		}
		found = true
	}
	if err := rows.Err(); err != nil {
		return syncer.Snapshot{}, time.Time{}, false, fmt.Errorf("iterate cache rows: %w", err)
	}

	snap.LoadedAt = oldest
	return snap, oldest, found, nil
}
