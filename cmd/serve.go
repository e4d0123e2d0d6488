package cmd

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/Artemis43/telegram-support-bot/internal/config"
	"github.com/Artemis43/telegram-support-bot/internal/relay"
	"github.com/Artemis43/telegram-support-bot/internal/server"
	"github.com/Artemis43/telegram-support-bot/internal/store"
	"github.com/Artemis43/telegram-support-bot/internal/store/pg"
	"github.com/Artemis43/telegram-support-bot/internal/store/sqlite"
	"github.com/Artemis43/telegram-support-bot/internal/telegram"
)

func runServe() {
	logLevel := slog.LevelInfo
	if verbose {
		logLevel = slog.LevelDebug
	}
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
		Level: logLevel,
	})))

	cfg, err := config.Load(resolveConfigPath())
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}
	if err := cfg.Validate(); err != nil {
		slog.Error("invalid config", "error", err)
		os.Exit(1)
	}

	directory, err := openDirectory(store.Config{
		SQLitePath:  cfg.Database.SQLitePath,
		PostgresDSN: cfg.Database.PostgresDSN,
	})
	if err != nil {
		slog.Error("failed to open directory store", "error", err)
		os.Exit(1)
	}
	defer directory.Close()

	client, err := telegram.NewClient(cfg.Telegram.Token, cfg.Telegram.Proxy)
	if err != nil {
		slog.Error("failed to create telegram client", "error", err)
		os.Exit(1)
	}

	router := relay.NewRouter(client, directory, relay.LogSink{}, relay.Config{
		GroupID:   cfg.Telegram.GroupID,
		Operators: cfg.Telegram.Operators,
	})
	channel := telegram.NewChannel(client, router, cfg.Telegram.GroupID)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	switch cfg.Telegram.Mode {
	case "polling":
		if err := channel.StartPolling(ctx); err != nil {
			slog.Error("failed to start polling", "error", err)
			os.Exit(1)
		}
	default: // webhook
		regCtx, cancel := context.WithTimeout(ctx, 30*time.Second)
		err := channel.RegisterWebhook(regCtx, cfg.Server.PublicURL, cfg.Server.WebhookSecret)
		cancel()
		if err != nil {
			slog.Error("failed to register webhook", "error", err)
			os.Exit(1)
		}
	}

	srv := server.New(cfg.Server.Host, cfg.Server.Port, cfg.Server.WebhookSecret, channel)
	errCh := make(chan error, 1)
	go func() { errCh <- srv.Start() }()

	select {
	case <-ctx.Done():
		slog.Info("shutdown signal received")
	case err := <-errCh:
		if err != nil {
			slog.Error("http server failed", "error", err)
			os.Exit(1)
		}
		return
	}

	channel.Stop()
	shutCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutCtx); err != nil {
		slog.Warn("http shutdown incomplete", "error", err)
	}
}

// openDirectory picks the storage backend: Postgres when a DSN is set,
// the local SQLite file otherwise. Both apply pending migrations on open.
func openDirectory(cfg store.Config) (store.Directory, error) {
	if cfg.Backend() == "postgres" {
		slog.Info("using postgres directory")
		return pg.NewPGDirectory(cfg.PostgresDSN)
	}
	slog.Info("using sqlite directory", "path", cfg.SQLitePath)
	return sqlite.Open(cfg.SQLitePath)
}
