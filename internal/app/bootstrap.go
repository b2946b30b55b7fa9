package app

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"locshare/internal/event"
	"locshare/internal/infra"
	"locshare/internal/locator"
	"locshare/internal/observability"
	"locshare/internal/registry"
	"locshare/internal/storage"
)

// Bootstrap orchestrates the application startup sequence.
// Initialize is enough for one-shot lookups; InitService adds the
// persistent pieces a long-running poller needs.
type Bootstrap struct {
	ConfigPath string

	Config   *infra.Config
	Cookies  *infra.CookieJar
	Client   *infra.LocationClient
	DataDir  string
	Store    *storage.SnapshotStore
	Captures *storage.CaptureManager
	Registry *registry.Registry

	closers []func()
}

// NewBootstrap creates a new Bootstrap instance. An empty configPath is
// resolved with infra.ResolveConfigPath.
func NewBootstrap(configPath string) *Bootstrap {
	return &Bootstrap{ConfigPath: configPath}
}

// Initialize loads config, installs the logger and builds the HTTP client.
func (b *Bootstrap) Initialize() error {
	// 1. Load Config (Dynamic Path Resolution)
	path := b.ConfigPath
	if path == "" {
		path = infra.ResolveConfigPath()
	}
	cfg, err := infra.LoadConfig(path)
	if err != nil {
		return err
	}
	b.Config = cfg

	// 2. Setup Logger
	slog.SetDefault(infra.NewLogger(cfg))
	slog.Debug("Config loaded", slog.String("path", path))

	// 3. Session cookies
	jar, err := infra.LoadCookiesFile(cfg.Session.CookiesFile)
	if err != nil {
		return fmt.Errorf("failed to load cookies: %w", err)
	}
	if expired := jar.Expired(time.Now()); len(expired) > 0 {
		slog.Warn("⚠️ Some session cookies have expired",
			slog.String("cookies", strings.Join(expired, ",")))
	}
	b.Cookies = jar

	// 4. Location client with breaker metrics
	bcfg := cfg.BreakerConfig("location-sharing")
	bcfg.OnStateChange = func(name string, from, to infra.State) {
		observability.BreakerState.WithLabelValues(name).Set(float64(to))
		slog.Warn("Circuit breaker state changed",
			slog.String("name", name),
			slog.String("from", from.String()),
			slog.String("to", to.String()))
	}
	b.Client = infra.NewLocationClient(cfg, jar,
		infra.WithCircuitBreaker(infra.NewCircuitBreaker(bcfg)))
	observability.BreakerState.WithLabelValues(bcfg.Name).Set(float64(infra.StateClosed))

	slog.Info("✅ Location client ready", slog.Int("cookies", jar.Len()))
	return nil
}

// Locator returns a stateless locator that fetches on every call.
func (b *Bootstrap) Locator() *locator.Locator {
	return locator.NewStateless(b.Client)
}

// InitService prepares the data directory, snapshot store and capture
// directory, restores the last snapshot and returns a stateful locator.
func (b *Bootstrap) InitService(ctx context.Context) (*locator.Locator, error) {
	cfg := b.Config

	dataDir := infra.ResolveDataDir(cfg.Storage.Dir)
	if err := infra.EnsureDir(dataDir); err != nil {
		return nil, fmt.Errorf("failed to create data dir: %w", err)
	}
	b.DataDir = dataDir

	// Singleton instance lock; two pollers must not share one snapshot DB.
	unlock, err := infra.CreateLockFile(dataDir)
	if err != nil {
		return nil, err
	}
	b.closers = append(b.closers, unlock)

	dbPath := infra.SnapshotDBPath(dataDir)
	store, err := storage.NewSnapshotStore(dbPath)
	if err != nil {
		b.Close()
		return nil, err
	}
	b.Store = store
	b.closers = append(b.closers, func() { store.Close() })
	slog.Info("✅ SnapshotStore initialized (WAL-mode)", slog.String("path", dbPath))

	b.Registry = registry.New()
	snap, err := store.LoadSnapshot(ctx)
	if err != nil {
		slog.Warn("Failed to load last snapshot, starting empty", slog.Any("error", err))
	} else if snap != nil {
		b.Registry.Restore(*snap)
		slog.Info("🔥 Registry warm-started from snapshot",
			slog.Int("shared", len(snap.Shared)),
			slog.Time("updated_at", snap.UpdatedAt))
	}

	if cfg.Poll.Capture {
		b.Captures = storage.NewCaptureManager(infra.CaptureDir(dataDir))
		slog.Info("Payload capture enabled", slog.String("dir", b.Captures.Dir()))
	}

	return locator.NewStateful(b.Client, b.Registry), nil
}

// NewPoller builds the poller for a stateful locator from InitService.
func (b *Bootstrap) NewPoller(loc *locator.Locator, sink event.Sink) (*locator.Poller, error) {
	cfg := locator.PollerConfig{
		Interval:    b.Config.PollInterval(),
		MaxBackoff:  time.Duration(b.Config.Poll.MaxBackoffSec) * time.Second,
		Sink:        sink,
		CaptureKeep: b.Config.Poll.CaptureKeep,
	}
	if b.Store != nil {
		cfg.Store = b.Store
	}
	if b.Captures != nil {
		cfg.Capture = b.Captures
	}
	return locator.NewPoller(loc, cfg)
}

// Close releases everything InitService acquired, in reverse order.
func (b *Bootstrap) Close() {
	for i := len(b.closers) - 1; i >= 0; i-- {
		b.closers[i]()
	}
	b.closers = nil
}
