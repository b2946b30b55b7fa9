package storage

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"

	"locshare/internal/domain"
	"locshare/internal/registry"
)

func newTestStore(t *testing.T) *SnapshotStore {
	t.Helper()
	store, err := NewSnapshotStore(filepath.Join(t.TempDir(), "snapshot.db"))
	if err != nil {
		t.Fatalf("Failed to create store: %v", err)
	}
	t.Cleanup(func() { store.Close() })
	return store
}

func TestSnapshotStore_SaveAndLoad(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	ts := time.UnixMilli(1700000000000).Local()
	snap := registry.Snapshot{
		Self: &domain.SelfRecord{Position: domain.Position{
			Latitude: "37.4219999", Longitude: "-122.0840575", Timestamp: ts, Accuracy: "5",
		}},
		Shared: []domain.SharedRecord{{
			Position: domain.Position{Latitude: "51.5", Longitude: "-0.12", Timestamp: ts},
			ID:       "1001", FullName: "Ada Lovelace", NickName: "Ada",
			Charging: domain.ChargingFalse, Battery: domain.BatteryLevel(42),
		}},
		UpdatedAt: ts,
	}

	if err := store.SaveSnapshot(ctx, snap); err != nil {
		t.Fatalf("SaveSnapshot failed: %v", err)
	}

	loaded, err := store.LoadSnapshot(ctx)
	if err != nil {
		t.Fatalf("LoadSnapshot failed: %v", err)
	}
	if loaded == nil {
		t.Fatal("Expected snapshot, got nil")
	}
	if diff := cmp.Diff(snap, *loaded); diff != "" {
		t.Errorf("snapshot mismatch (-want +got):\n%s", diff)
	}
}

func TestSnapshotStore_KeepsOnlyLatest(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	for _, name := range []string{"first", "second"} {
		snap := registry.Snapshot{
			Shared:    []domain.SharedRecord{{FullName: name}},
			UpdatedAt: time.Now(),
		}
		if err := store.SaveSnapshot(ctx, snap); err != nil {
			t.Fatalf("SaveSnapshot failed: %v", err)
		}
	}

	loaded, err := store.LoadSnapshot(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if len(loaded.Shared) != 1 || loaded.Shared[0].FullName != "second" {
		t.Errorf("loaded = %+v, want only the second snapshot", loaded.Shared)
	}

	var rows int
	if err := store.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM metadata").Scan(&rows); err != nil {
		t.Fatal(err)
	}
	if rows != 1 {
		t.Errorf("metadata rows = %d, want 1", rows)
	}
}

func TestSnapshotStore_LoadEmpty(t *testing.T) {
	store := newTestStore(t)

	snap, err := store.LoadSnapshot(context.Background())
	if err != nil {
		t.Fatalf("LoadSnapshot failed: %v", err)
	}
	if snap != nil {
		t.Errorf("Expected nil snapshot, got %+v", snap)
	}
	if err := store.Ping(context.Background()); err != nil {
		t.Errorf("Ping failed: %v", err)
	}
}

func TestSnapshotStore_Metadata(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	if v, err := store.GetMetadata(ctx, "poll:last_error"); err != nil || v != "" {
		t.Fatalf("GetMetadata on missing key = %q, %v", v, err)
	}
	if err := store.UpsertMetadata(ctx, "poll:last_error", "session_expired", 1); err != nil {
		t.Fatal(err)
	}
	if err := store.UpsertMetadata(ctx, "poll:last_error", "too_short", 2); err != nil {
		t.Fatal(err)
	}
	if v, _ := store.GetMetadata(ctx, "poll:last_error"); v != "too_short" {
		t.Errorf("GetMetadata = %q, want too_short", v)
	}
}
