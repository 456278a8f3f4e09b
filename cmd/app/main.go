package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/YashMane007/Crypto-track-pappa/internal/app"
	"github.com/YashMane007/Crypto-track-pappa/internal/domain"
	"github.com/YashMane007/Crypto-track-pappa/internal/engine"
	"github.com/YashMane007/Crypto-track-pappa/internal/feed"
	"github.com/YashMane007/Crypto-track-pappa/internal/scheduler"
	"github.com/YashMane007/Crypto-track-pappa/internal/server"
)

func main() {
	bootstrap := app.NewBootstrap()
	if err := bootstrap.Initialize(); err != nil {
		slog.Error("❌ Bootstrapping failed", slog.Any("error", err))
		os.Exit(1)
	}
	defer bootstrap.Close()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfg := bootstrap.Config

	eng := engine.New(bootstrap.Gateway, cfg.Feed.InboxSize, func(t domain.Totals) {
		slog.Debug("Aggregate updated",
			slog.String("quote_sum", t.QuoteSum.String()),
			slog.String("secondary_sum", t.SecondarySum.String()))
	})

	if err := eng.Bootstrap(ctx); err != nil {
		slog.Error("❌ Registry bootstrap failed", slog.Any("error", err))
		os.Exit(1)
	}

	go eng.Run(ctx)
	slog.InfoContext(ctx, "✅ Valuation engine started")

	feedWorker := feed.NewWorker(feed.NewBinanceHandler(cfg.Feed.WSURL, eng.Inbox()))
	feedWorker.Start(ctx)
	defer feedWorker.Stop()
	slog.InfoContext(ctx, "✅ Price feed worker started", slog.String("url", cfg.Feed.WSURL))

	sched := scheduler.New(eng.Inbox())
	if err := sched.Start(cfg.Engine.RefreshIntervalSec); err != nil {
		slog.Error("❌ Scheduler failed", slog.Any("error", err))
		os.Exit(1)
	}
	defer sched.Stop()

	srv := server.New(eng, feedWorker, cfg.Logging.Level == "debug")
	go func() {
		if err := srv.Start(cfg.Server.Addr); err != nil {
			slog.Error("API server failed", slog.Any("error", err))
			stop()
		}
	}()

	slog.InfoContext(ctx, "✨ crypto-track fully operational. Press Ctrl+C to exit.")

	<-ctx.Done()

	slog.InfoContext(ctx, "👋 Shutting down gracefully...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		slog.Warn("API server shutdown error", slog.Any("error", err))
	}
}
