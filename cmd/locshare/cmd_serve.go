package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"locshare/internal/app"
	"locshare/internal/event"
	"locshare/internal/infra"
	"locshare/internal/server"
)

// serveCmd runs the poller and the HTTP/WebSocket API
var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Poll in the background and serve positions over HTTP",
	Long: `Keep the registry fresh by polling on an interval and expose it at
/v1/people, /v1/self and /v1/ws. The last good snapshot is stored on disk so a
restart can answer before its first refresh completes.`,
	Args: cobra.NoArgs,
	RunE: runServe,
}

func runServe(cmd *cobra.Command, args []string) error {
	// 1. System Bootstrapping
	b, err := bootstrap()
	if err != nil {
		return err
	}

	// 2. Graceful Shutdown Context
	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	loc, err := b.InitService(ctx)
	if err != nil {
		return err
	}
	defer b.Close()

	infra.PrintBanner(cmd.ErrOrStderr(), b.Config, "serve")

	// 3. WebSocket hub (event sink)
	hub := server.NewHub()
	go hub.Run(ctx)

	sink := &event.Fanout{}
	sink.Add(hub)
	sink.Add(event.SinkFunc(func(ev event.Event) {
		slog.Debug("Event published",
			slog.String("type", ev.GetType().String()),
			slog.Uint64("seq", ev.GetSeq()))
	}))

	// 4. Poller
	poller, err := b.NewPoller(loc, sink)
	if err != nil {
		return err
	}
	if err := poller.Start(ctx); err != nil {
		return fmt.Errorf("failed to start poller: %w", err)
	}
	defer poller.Stop()
	slog.InfoContext(ctx, "✅ Poller started", slog.Duration("interval", b.Config.PollInterval()))

	// 5. HTTP API
	router := server.NewRouter(server.RouterConfig{
		People:    loc,
		Hub:       hub,
		Health:    healthCheck(b),
		UpdatedAt: b.Registry.UpdatedAt,
	})
	srv := server.New(b.Config.Server.Addr, router)

	slog.InfoContext(ctx, "✨ locshare fully operational. Press Ctrl+C to exit.",
		slog.String("addr", b.Config.Server.Addr))

	err = server.ListenAndServe(ctx, srv)
	slog.Info("👋 Shutting down gracefully...")
	return err
}

// healthCheck reports degraded while the store is unreachable or the
// upstream breaker is open.
func healthCheck(b *app.Bootstrap) server.HealthFunc {
	return func(ctx context.Context) error {
		if err := b.Store.Ping(ctx); err != nil {
			return fmt.Errorf("snapshot store: %w", err)
		}
		if b.Client.Breaker().GetState() == infra.StateOpen {
			return errors.New("upstream circuit breaker is open")
		}
		return nil
	}
}
