package storage

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	_ "github.com/glebarez/go-sqlite"

	"locshare/internal/registry"
)

// LatestSnapshotKey is the metadata row holding the last-known-good registry.
const LatestSnapshotKey = "registry:latest"

// SnapshotStore persists the last successfully decoded registry snapshot in SQLite
// so a restarted process can serve data before its first refresh completes.
// Only one row is kept; nothing here tracks positions over time.
type SnapshotStore struct {
	db *sql.DB
}

// NewSnapshotStore opens (or creates) the SQLite database at dbPath with WAL mode enabled.
func NewSnapshotStore(dbPath string) (*SnapshotStore, error) {
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open sqlite: %w", err)
	}
	// One writer; the poller is the only caller that writes.
	db.SetMaxOpenConns(1)

	pragmas := []string{
		"PRAGMA journal_mode=WAL;",
		"PRAGMA synchronous=NORMAL;",
		"PRAGMA busy_timeout=5000;",
	}

	for _, pragma := range pragmas {
		if _, err := db.Exec(pragma); err != nil {
			db.Close()
			return nil, fmt.Errorf("failed to set pragma %s: %w", pragma, err)
		}
	}

	_, err = db.Exec(`
		CREATE TABLE IF NOT EXISTS metadata (
			key TEXT PRIMARY KEY,
			value TEXT NOT NULL,
			updated_at INTEGER NOT NULL
		);
	`)
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to create metadata table: %w", err)
	}

	return &SnapshotStore{db: db}, nil
}

// SaveSnapshot overwrites the stored snapshot.
func (s *SnapshotStore) SaveSnapshot(ctx context.Context, snap registry.Snapshot) error {
	payload, err := json.Marshal(snap)
	if err != nil {
		return fmt.Errorf("failed to marshal snapshot: %w", err)
	}

	ts := snap.UpdatedAt
	if ts.IsZero() {
		ts = time.Now()
	}
	if err := s.UpsertMetadata(ctx, LatestSnapshotKey, string(payload), ts.UnixMicro()); err != nil {
		return fmt.Errorf("failed to save snapshot: %w", err)
	}
	return nil
}

// LoadSnapshot returns the stored snapshot, or nil if none was ever saved.
func (s *SnapshotStore) LoadSnapshot(ctx context.Context) (*registry.Snapshot, error) {
	val, err := s.GetMetadata(ctx, LatestSnapshotKey)
	if err != nil {
		return nil, fmt.Errorf("failed to load snapshot: %w", err)
	}
	if val == "" {
		return nil, nil
	}

	var snap registry.Snapshot
	if err := json.Unmarshal([]byte(val), &snap); err != nil {
		return nil, fmt.Errorf("failed to unmarshal snapshot: %w", err)
	}
	return &snap, nil
}

// UpsertMetadata saves a key-value pair to the metadata table.
func (s *SnapshotStore) UpsertMetadata(ctx context.Context, key, value string, ts int64) error {
	_, err := s.db.ExecContext(ctx,
		"INSERT INTO metadata (key, value, updated_at) VALUES (?, ?, ?) ON CONFLICT(key) DO UPDATE SET value=excluded.value, updated_at=excluded.updated_at",
		key, value, ts,
	)
	return err
}

// GetMetadata retrieves a value from the metadata table. A missing key yields "".
func (s *SnapshotStore) GetMetadata(ctx context.Context, key string) (string, error) {
	var value string
	err := s.db.QueryRowContext(ctx, "SELECT value FROM metadata WHERE key = ?", key).Scan(&value)
	if errors.Is(err, sql.ErrNoRows) {
		return "", nil
	}
	return value, err
}

// Ping checks the database is reachable (used by the health endpoint).
func (s *SnapshotStore) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

// Close closes the database connection.
func (s *SnapshotStore) Close() error {
	return s.db.Close()
}
