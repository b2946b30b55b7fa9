package app

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"testing"
	"time"

	"locshare/internal/domain"
	"locshare/internal/registry"
)

const testCookies = ".google.com\tTRUE\t/\tTRUE\t1893456000\t__Secure-1PSID\tone\n" +
	".google.com\tTRUE\t/\tTRUE\t1893456000\t__Secure-3PSID\tthree\n"

// writeFixture lays out a config and cookie file in a temp dir and returns the config path.
func writeFixture(t *testing.T, capture bool) string {
	t.Helper()
	dir := t.TempDir()

	cookies := filepath.Join(dir, "cookies.txt")
	if err := os.WriteFile(cookies, []byte(testCookies), 0600); err != nil {
		t.Fatal(err)
	}

	cfg := fmt.Sprintf(`
session:
  cookies_file: %q
poll:
  interval_sec: 30
  max_backoff_sec: 300
  capture: %t
  capture_keep: 5
storage:
  dir: %q
logging:
  level: error
`, cookies, capture, filepath.Join(dir, "data"))

	path := filepath.Join(dir, "config.yaml")
	if err := os.WriteFile(path, []byte(cfg), 0600); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestBootstrap_Initialize(t *testing.T) {
	b := NewBootstrap(writeFixture(t, false))
	if err := b.Initialize(); err != nil {
		t.Fatalf("Initialize failed: %v", err)
	}

	if b.Cookies.Len() != 2 {
		t.Errorf("cookies = %d, want 2", b.Cookies.Len())
	}
	if b.Client == nil {
		t.Fatal("client not built")
	}
	if b.Locator().Stateful() {
		t.Error("one-shot locator should be stateless")
	}
}

func TestBootstrap_MissingCookies(t *testing.T) {
	path := writeFixture(t, false)
	os.Remove(filepath.Join(filepath.Dir(path), "cookies.txt"))

	if err := NewBootstrap(path).Initialize(); err == nil {
		t.Fatal("expected error for missing cookie file")
	}
}

func TestBootstrap_InitServiceWarmStart(t *testing.T) {
	path := writeFixture(t, true)
	ctx := context.Background()

	first := NewBootstrap(path)
	if err := first.Initialize(); err != nil {
		t.Fatalf("Initialize failed: %v", err)
	}
	if _, err := first.InitService(ctx); err != nil {
		t.Fatalf("InitService failed: %v", err)
	}

	ts := time.UnixMilli(1700000000000).Local()
	snap := registry.Snapshot{
		Shared: []domain.SharedRecord{{
			Position: domain.Position{Latitude: "1", Longitude: "2", Timestamp: ts},
			NickName: "Ada",
		}},
		UpdatedAt: ts,
	}
	if err := first.Store.SaveSnapshot(ctx, snap); err != nil {
		t.Fatalf("SaveSnapshot failed: %v", err)
	}

	// A second instance on the same data dir is refused while the first runs.
	second := NewBootstrap(path)
	if err := second.Initialize(); err != nil {
		t.Fatalf("Initialize failed: %v", err)
	}
	if _, err := second.InitService(ctx); err == nil {
		t.Fatal("expected lock error for second instance")
	}

	first.Close()

	loc, err := second.InitService(ctx)
	if err != nil {
		t.Fatalf("InitService after release failed: %v", err)
	}
	defer second.Close()

	if !loc.Stateful() {
		t.Error("service locator should be stateful")
	}
	if got := second.Registry.CurrentShared(); len(got) != 1 || got[0].NickName != "Ada" {
		t.Errorf("registry not restored: %+v", got)
	}
	if !second.Registry.UpdatedAt().Equal(ts) {
		t.Errorf("UpdatedAt = %v, want %v", second.Registry.UpdatedAt(), ts)
	}
	if second.Captures == nil {
		t.Fatal("capture manager should be enabled")
	}

	p, err := second.NewPoller(loc, nil)
	if err != nil {
		t.Fatalf("NewPoller failed: %v", err)
	}
	if p.Failures() != 0 {
		t.Errorf("fresh poller failures = %d", p.Failures())
	}
}
