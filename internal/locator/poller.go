package locator

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"

	"locshare/internal/decode"
	"locshare/internal/event"
	"locshare/internal/infra"
	"locshare/internal/observability"
	"locshare/internal/registry"
	"locshare/internal/storage"
)

// lastErrorKey records the last failure kind next to the stored snapshot.
const lastErrorKey = "poll:last_error"

// SnapshotSaver persists the registry after each successful refresh.
// *storage.SnapshotStore implements it.
type SnapshotSaver interface {
	SaveSnapshot(ctx context.Context, snap registry.Snapshot) error
	UpsertMetadata(ctx context.Context, key, value string, ts int64) error
}

// PayloadCapturer keeps raw bodies for offline replay.
// *storage.CaptureManager implements it.
type PayloadCapturer interface {
	Save(body []byte, at time.Time) (storage.CaptureFile, error)
	Cleanup(keepCount int) error
}

// PollerConfig configures a Poller. Zero-valued collaborators are skipped.
type PollerConfig struct {
	Interval    time.Duration
	MaxBackoff  time.Duration
	Sink        event.Sink
	Store       SnapshotSaver
	Capture     PayloadCapturer
	CaptureKeep int
}

// Poller refreshes a stateful Locator periodically. After consecutive
// failures it backs off exponentially, starting at Interval and capped at MaxBackoff.
type Poller struct {
	loc         *Locator
	interval    time.Duration
	backoff     infra.Backoff
	sink        event.Sink
	store       SnapshotSaver
	capture     PayloadCapturer
	captureKeep int

	seq      uint64
	failures int
	newID    func() string

	cancel context.CancelFunc
	wg     sync.WaitGroup
}

// NewPoller creates a poller for loc, which must be stateful.
func NewPoller(loc *Locator, cfg PollerConfig) (*Poller, error) {
	if !loc.Stateful() {
		return nil, errors.New("poller requires a stateful locator")
	}
	if cfg.Interval <= 0 {
		return nil, errors.New("poll interval must be positive")
	}
	if cfg.MaxBackoff < cfg.Interval {
		cfg.MaxBackoff = cfg.Interval
	}
	return &Poller{
		loc:         loc,
		interval:    cfg.Interval,
		backoff:     infra.Backoff{Base: cfg.Interval, Max: cfg.MaxBackoff},
		sink:        cfg.Sink,
		store:       cfg.Store,
		capture:     cfg.Capture,
		captureKeep: cfg.CaptureKeep,
		newID:       uuid.NewString,
	}, nil
}

// Start runs the first cycle immediately, then keeps polling until ctx is
// cancelled or Stop is called.
func (p *Poller) Start(ctx context.Context) error {
	ctx, p.cancel = context.WithCancel(ctx)

	p.wg.Add(1)
	go func() {
		defer p.wg.Done()
		defer func() {
			if r := recover(); r != nil {
				slog.Error("Location polling panic recovered", slog.Any("panic", r))
			}
		}()

		timer := time.NewTimer(0)
		defer timer.Stop()

		for {
			select {
			case <-ctx.Done():
				slog.Info("Location polling stopped")
				return
			case <-timer.C:
				delay := p.interval
				if err := p.RunOnce(ctx); err != nil {
					if ctx.Err() != nil {
						continue
					}
					delay = p.backoff.Delay(p.failures - 1)
				}
				timer.Reset(delay)
			}
		}
	}()

	return nil
}

// Stop stops the polling and waits for the current cycle to finish.
func (p *Poller) Stop() {
	if p.cancel != nil {
		p.cancel()
		p.wg.Wait()
	}
}

// RunOnce performs one refresh cycle with its side effects: metrics,
// persistence, capture and event publication. Not safe for concurrent use
// with a running Start loop.
func (p *Poller) RunOnce(ctx context.Context) error {
	cycleID := p.newID()
	start := time.Now()

	res, body, err := p.loc.RefreshPayload(ctx)
	observability.FetchDuration.Observe(time.Since(start).Seconds())
	if body != nil {
		observability.PayloadBytes.Observe(float64(len(body)))
		p.captureBody(cycleID, body)
	}

	if err != nil {
		p.onFailure(ctx, cycleID, err)
		return err
	}

	p.failures = 0
	observability.RefreshTotal.WithLabelValues("ok").Inc()
	observability.SharedPeople.Set(float64(len(res.Shared)))
	if res.Self != nil {
		observability.SelfPresent.Set(1)
	} else {
		observability.SelfPresent.Set(0)
	}
	observability.LastSuccess.SetToCurrentTime()

	slog.Info("Location snapshot refreshed",
		slog.String("cycle", cycleID),
		slog.Bool("self", res.Self != nil),
		slog.Int("shared", len(res.Shared)),
		slog.Duration("elapsed", time.Since(start)))

	if p.store != nil {
		if err := p.store.SaveSnapshot(ctx, p.loc.Registry().Snapshot()); err != nil {
			slog.Warn("Snapshot persist failed", slog.String("cycle", cycleID), slog.Any("error", err))
		}
	}

	p.publish(event.SnapshotUpdated{
		BaseEvent:   event.NewBase(&p.seq),
		CycleID:     cycleID,
		SelfPresent: res.Self != nil,
		SharedCount: len(res.Shared),
	})
	return nil
}

// Failures returns the number of consecutive failed cycles.
func (p *Poller) Failures() int {
	return p.failures
}

func (p *Poller) onFailure(ctx context.Context, cycleID string, err error) {
	kind := ErrorKind(err)
	if kind == "canceled" && ctx.Err() != nil {
		return
	}

	p.failures++
	retryIn := p.backoff.Delay(p.failures - 1)
	observability.RefreshTotal.WithLabelValues(kind).Inc()

	attrs := []any{
		slog.String("cycle", cycleID),
		slog.String("kind", kind),
		slog.Int("failures", p.failures),
		slog.Duration("retry_in", retryIn),
		slog.Any("error", err),
	}
	if errors.Is(err, decode.ErrSessionExpired) || errors.Is(err, decode.ErrAuthFieldMissing) {
		slog.Error("Location session rejected, re-export cookies", attrs...)
	} else {
		slog.Warn("Location refresh failed, keeping last snapshot", attrs...)
	}

	if p.store != nil {
		if err := p.store.UpsertMetadata(ctx, lastErrorKey, kind, time.Now().UnixMicro()); err != nil {
			slog.Debug("Failed to record last error", slog.Any("error", err))
		}
	}

	p.publish(event.RefreshFailed{
		BaseEvent: event.NewBase(&p.seq),
		CycleID:   cycleID,
		Kind:      kind,
		Error:     err.Error(),
		Failures:  p.failures,
		RetryIn:   retryIn,
	})
}

func (p *Poller) captureBody(cycleID string, body []byte) {
	if p.capture == nil {
		return
	}
	cf, err := p.capture.Save(body, time.Now())
	if err != nil {
		slog.Warn("Payload capture failed", slog.String("cycle", cycleID), slog.Any("error", err))
		return
	}
	slog.Debug("Payload captured", slog.String("cycle", cycleID), slog.String("path", cf.Path))

	if p.captureKeep > 0 {
		if err := p.capture.Cleanup(p.captureKeep); err != nil {
			slog.Warn("Capture cleanup failed", slog.Any("error", err))
		}
	}
}

func (p *Poller) publish(ev event.Event) {
	if p.sink != nil {
		p.sink.Publish(ev)
	}
}
