package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gammazero/workerpool"
	"github.com/gorilla/mux"

	"alphatron/config"
	"alphatron/core"
	"alphatron/db"
	"alphatron/features"
	"alphatron/features/increment"
	"alphatron/features/ping"
	"alphatron/handlers"
	"alphatron/middleware"
	"alphatron/services/featurestates"
	"alphatron/services/settings"
	"alphatron/services/txmanager"
)

func main() {
	if err := run(); err != nil {
		log.Printf("❌ Fatal error: %v", err)
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.LoadConfig()
	if err != nil {
		return err
	}

	alertMiddleware := middleware.NewErrorAlertMiddleware(middleware.SlackAlertConfig{
		WebhookURL:  cfg.SlackConfig.AlertWebhookURL,
		Environment: cfg.Environment,
		AppName:     "alphatron",
		LogsURL:     cfg.ServerLogsURL,
	})

	dbConn, err := db.NewConnection(cfg.DatabaseURL)
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}
	defer dbConn.Close()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	if err := db.EnsureSchema(ctx, dbConn, cfg.DatabaseSchema); err != nil {
		return err
	}

	settingsRepo := db.NewPostgresSettingsRepository(dbConn, cfg.DatabaseSchema)
	featureStatesRepo := db.NewPostgresFeatureStatesRepository(dbConn, cfg.DatabaseSchema)

	txManager := txmanager.NewTransactionManager(dbConn)
	settingsService := settings.NewSettingsService(settingsRepo, cfg.SettingsDocID)
	featureStatesService := featurestates.NewFeatureStatesService(featureStatesRepo)

	// Without a verification token no request can be authenticated.
	if err := settingsService.Load(ctx); err != nil {
		if core.IsNotFoundError(err) {
			return fmt.Errorf("settings document %s does not exist, store a token with cmd/settoken first: %w", cfg.SettingsDocID, err)
		}
		return fmt.Errorf("failed to load settings: %w", err)
	}

	listener, err := db.NewSettingsListener(cfg.DatabaseURL)
	if err != nil {
		return err
	}
	defer listener.Close()

	watchSettings := alertMiddleware.WrapBackgroundTask("WatchSettings", func() error {
		settingsService.Watch(ctx, listener.Notify, cfg.SettingsRefresh)
		return nil
	})
	go func() {
		_ = watchSettings()
	}()

	pool := workerpool.New(cfg.FeatureWorkers)
	defer pool.StopWait()

	registry := features.NewRegistry(
		ping.NewFeature(),
		increment.NewFeature(featureStatesService, txManager, pool),
	)
	log.Printf("🧩 Loaded features: %v", registry.Names())

	slackHandler := handlers.NewSlackEventsHandler(
		cfg.SlackConfig.SigningSecret,
		settingsService,
		registry,
		cfg.FlushTimeout,
		alertMiddleware,
	)

	router := mux.NewRouter()
	slackHandler.SetupEndpoints(router)
	handlers.SetupHealthEndpoint(router)

	server := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           alertMiddleware.HTTPMiddleware(middleware.RequestIDMiddleware(router)),
		ReadHeaderTimeout: 30 * time.Second,
	}

	return handleGracefulShutdown(server, cfg.FlushTimeout)
}

func handleGracefulShutdown(server *http.Server, flushTimeout time.Duration) error {
	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)

	serverErr := make(chan error, 1)
	go func() {
		log.Printf("🚀 Server starting on %s", server.Addr)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErr <- err
		}
	}()

	select {
	case err := <-serverErr:
		return fmt.Errorf("server failed: %w", err)
	case <-stop:
		log.Printf("🛑 Shutdown signal received, cleaning up...")
	}

	// In-flight events get at least one full flush window.
	ctx, cancel := context.WithTimeout(context.Background(), flushTimeout+5*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		log.Printf("❌ Server shutdown error: %v", err)
		return err
	}

	log.Printf("✅ Server shutdown complete")
	return nil
}
