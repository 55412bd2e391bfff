package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"github.com/lysyi3m/pitki/internal/api"
	"github.com/lysyi3m/pitki/internal/bot"
	"github.com/lysyi3m/pitki/internal/cfg"
	"github.com/lysyi3m/pitki/internal/database"
	"github.com/lysyi3m/pitki/internal/metadata"
	"github.com/lysyi3m/pitki/internal/pending"
	"github.com/lysyi3m/pitki/internal/tasks"
)

const (
	shutdownTimeout = 30 * time.Second
	taskTimeout     = 2 * time.Minute
	pollTimeout     = 60
)

func main() {
	appCfg, err := cfg.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load configuration: %v\n", err)
		os.Exit(1)
	}
	if appCfg == nil {
		return
	}

	setupLogger(appCfg.LogLevel)

	slog.Info("Starting Pitki", "version", appCfg.Version)

	db, err := database.NewConnection(appCfg.DBPath)
	if err != nil {
		slog.Error("Failed to connect to database", "path", appCfg.DBPath, "error", err)
		os.Exit(1)
	}
	defer db.Close()

	version, dirty, err := database.RunMigrations(db)
	if err != nil {
		slog.Error("Failed to run migrations", "error", err)
		os.Exit(1)
	}
	slog.Info("Database ready", "path", appCfg.DBPath, "schema_version", version, "dirty", dirty)

	categoryRepo := database.NewCategoryRepository(db)
	articleRepo := database.NewArticleRepository(db)

	var (
		updates     tgbotapi.UpdatesChannel
		telegram    *tgbotapi.BotAPI
		coordinator *pending.Coordinator
		workers     *tasks.Scheduler
	)

	botCtx, stopBot := context.WithCancel(context.Background())
	defer stopBot()

	if appCfg.BotEnabled() {
		telegram, err = tgbotapi.NewBotAPI(appCfg.TelegramToken)
		if err != nil {
			slog.Error("Failed to connect to Telegram", "error", err)
			os.Exit(1)
		}
		telegram.Debug = appCfg.LogLevel == "debug"
		slog.Info("Authorized on Telegram", "account", telegram.Self.UserName)

		store, err := newPendingStore(appCfg)
		if err != nil {
			slog.Error("Failed to set up pending store", "error", err)
			os.Exit(1)
		}

		coordinator = pending.NewCoordinator(categoryRepo, articleRepo, bot.NewNotifier(telegram), pending.Options{
			Timeout:      appCfg.SelectionTimeout,
			FallbackName: appCfg.FallbackCategory,
			Store:        store,
		})

		workers = tasks.NewScheduler(appCfg.WorkerCount, appCfg.QueueSize, taskTimeout)
		workers.Start()

		fetcher := metadata.NewFetcher(&http.Client{}, appCfg.UserAgent, appCfg.FetchTimeout)
		pitkiBot := bot.New(telegram, categoryRepo, coordinator, fetcher, workers, bot.Options{
			DefaultCategories: appCfg.DefaultCategories,
			FallbackCategory:  appCfg.FallbackCategory,
			Timeout:           coordinator.Timeout(),
		})

		updateCfg := tgbotapi.NewUpdate(0)
		updateCfg.Timeout = pollTimeout
		updates = telegram.GetUpdatesChan(updateCfg)

		go pitkiBot.Run(botCtx, updates)
	} else {
		slog.Warn("Telegram bot disabled (TELEGRAM_BOT_TOKEN not set)")
	}

	apiHandler := api.NewHandler(categoryRepo, articleRepo, db, appCfg.Version)
	server := api.NewServer(apiHandler, appCfg.WebDir)

	httpServer := &http.Server{
		Addr:         ":" + appCfg.Port,
		Handler:      server,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	serverErrChan := make(chan error, 1)
	go func() {
		slog.Info("Starting HTTP server", "port", appCfg.Port)
		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			serverErrChan <- fmt.Errorf("HTTP server error: %w", err)
		}
	}()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	select {
	case sig := <-sigChan:
		slog.Info("Received signal", "signal", sig)
	case err := <-serverErrChan:
		slog.Error("Server error", "error", err)
	}

	slog.Info("Shutting down")

	if telegram != nil {
		telegram.StopReceivingUpdates()
		stopBot()
		workers.Stop()
		coordinator.Close()
		slog.Info("Telegram bot stopped")
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		slog.Error("HTTP server shutdown error", "error", err)
	} else {
		slog.Info("HTTP server stopped")
	}

	slog.Info("Pitki shutdown complete")
}

func newPendingStore(appCfg *cfg.Cfg) (pending.Store, error) {
	if appCfg.RedisAddr == "" {
		slog.Info("Using in-memory pending store")
		return pending.NewMemoryStore(), nil
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	client, err := pending.NewRedisClient(ctx, appCfg.RedisAddr, appCfg.RedisPassword, appCfg.RedisDB)
	if err != nil {
		return nil, err
	}

	slog.Info("Using Redis pending store", "addr", appCfg.RedisAddr, "db", appCfg.RedisDB)
	return pending.NewRedisStore(client, pending.RedisEntryTTL(appCfg.SelectionTimeout)), nil
}

func setupLogger(level string) {
	var lvl slog.Level
	if err := lvl.UnmarshalText([]byte(level)); err != nil {
		lvl = slog.LevelInfo
	}

	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: lvl}))
	slog.SetDefault(logger)
}
