package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"aivisibility/internal/analysis"
	"aivisibility/internal/config"
	"aivisibility/internal/credentials"
	"aivisibility/internal/db"
	"aivisibility/internal/email"
	"aivisibility/internal/handlers"
	"aivisibility/internal/jobs"
	"aivisibility/internal/metrics"
	"aivisibility/internal/models"
	"aivisibility/internal/server"
	"aivisibility/internal/tokencrypt"
)

func main() {
	if err := run(); err != nil {
		slog.Error("server exited with error", "error", err)
		os.Exit(1)
	}
}

func run() error {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg := config.Load()
	if cfg.IsDev() {
		slog.SetLogLoggerLevel(slog.LevelDebug)
	}

	// Refuse to start without a usable token key.
	if err := cfg.Validate(); err != nil {
		return err
	}

	yamlCfg, err := config.LoadYAMLConfig()
	if err != nil {
		return err
	}

	cipher, err := tokencrypt.New(cfg.TokenEncryptionKey)
	if err != nil {
		return err
	}

	database, err := db.New(ctx, cfg.DatabaseURL)
	if err != nil {
		return err
	}
	defer database.Close()

	if err := database.RunMigrations(cfg.DatabaseURL); err != nil {
		return err
	}
	slog.Info("migrations completed")

	metrics.Init(database)

	credStore := credentials.NewStore(database, cipher)
	credStore.RegisterProvider(models.ProviderSearchConsole, handlers.SearchConsoleConfig(cfg))

	notifier := email.NewNotifier(cfg, database)

	engine := analysis.NewClient(cfg)
	if !engine.IsConfigured() {
		slog.Warn("analysis engine is not configured; phrase generation and AI queries are unavailable")
	}

	srv := server.New(cfg)
	if err := srv.RegisterRoutes(ctx, server.Dependencies{
		DB:          database,
		YAML:        yamlCfg,
		Engine:      engine,
		Credentials: credStore,
		Notifier:    notifier,
	}); err != nil {
		return err
	}

	checker := jobs.NewCredentialChecker(database, credStore, notifier, cfg.CredentialCheckInterval)
	go checker.Start(ctx)

	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.Start()
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	slog.Info("shutting down server")
	if err := srv.Shutdown(); err != nil {
		return err
	}
	slog.Info("server exited")
	return nil
}
