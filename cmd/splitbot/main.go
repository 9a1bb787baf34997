package main

import (
	"context"
	"errors"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	"golang.org/x/sync/errgroup"

	"splitbot/internal/config"
	"splitbot/internal/dialog"
	"splitbot/internal/directory"
	"splitbot/internal/events"
	"splitbot/internal/groups"
	"splitbot/internal/ledger"
	applog "splitbot/internal/log"
	"splitbot/internal/report"
	"splitbot/internal/rowstore"
	gstore "splitbot/internal/rowstore/google"
	"splitbot/internal/rowstore/memory"
	"splitbot/internal/rowstore/sqlite"
	"splitbot/internal/transport/telegram"
)

func main() {
	// Load .env for local development; absent in production is fine.
	_ = godotenv.Load()

	logger := applog.New()

	cfg := config.Load()
	if err := cfg.Validate(); err != nil {
		logger.Error("Configuration validation failed", "error", err)
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	store, cleanup, err := buildRowStore(ctx, cfg, logger)
	if err != nil {
		logger.Error("Failed to initialize row store", "error", err, "backend", cfg.DataBackend)
		os.Exit(1)
	}
	if cleanup != nil {
		defer cleanup()
	}
	logger.Info("Row store initialized", "backend", cfg.DataBackend)

	groupRepo := directory.NewGroupRepo(store)
	userRepo := directory.NewUserRepo(store)
	linkRepo := directory.NewUserGroupRepo(store)

	var publisher ledger.EventPublisher
	var eventClient *events.Client
	if cfg.AMQPURL != "" {
		eventClient, err = events.NewClient(cfg.AMQPURL, cfg.AMQPExchange, cfg.AMQPQueue)
		if err != nil {
			logger.Warn("Failed to initialize AMQP client, continuing without events", "error", err)
		} else {
			defer eventClient.Close()
			publisher = eventClient
			logger.Info("AMQP event feed enabled", "exchange", cfg.AMQPExchange, "queue", cfg.AMQPQueue)
		}
	}

	writer := ledger.NewWriter(store, linkRepo, publisher, applog.WithComponent(logger, "ledger"))
	reports := report.NewService(store, linkRepo, groupRepo, userRepo, cfg.StrictPeriods,
		applog.WithComponent(logger, "report"))
	groupSvc := groups.NewService(groupRepo, linkRepo)
	machine := dialog.NewMachine(groupSvc, writer, reports, linkRepo, userRepo, cfg.Categories)

	bot, err := telegram.New(cfg.TelegramToken, machine, applog.WithComponent(logger, "telegram"))
	if err != nil {
		logger.Error("Failed to initialize Telegram bot", "error", err)
		os.Exit(1)
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return bot.Run(gctx)
	})

	if err := g.Wait(); err != nil && !errors.Is(err, context.Canceled) {
		logger.Error("Bot stopped with error", "error", err)
		os.Exit(1)
	}
	logger.Info("Bot stopped gracefully")
}

// buildRowStore selects the storage backend. The returned cleanup closes any
// held resources and may be nil.
func buildRowStore(ctx context.Context, cfg *config.Config, logger *slog.Logger) (rowstore.Store, func() error, error) {
	switch cfg.DataBackend {
	case "sheets":
		cli, err := gstore.NewFromEnv(ctx)
		if err != nil {
			return nil, nil, err
		}
		return cli, nil, nil
	case "sqlite":
		st, err := sqlite.New(cfg.SQLiteDBPath)
		if err != nil {
			return nil, nil, err
		}
		return st, st.Close, nil
	default:
		logger.Warn("Using in-memory row store, data will not survive restarts")
		return memory.New(), nil, nil
	}
}
