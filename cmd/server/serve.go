package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/UkralStul/blog-api/internal/auth"
	"github.com/UkralStul/blog-api/internal/config"
	"github.com/UkralStul/blog-api/internal/feed"
	"github.com/UkralStul/blog-api/internal/httpapi"
	"github.com/UkralStul/blog-api/internal/logging"
	"github.com/UkralStul/blog-api/internal/service"
	"github.com/UkralStul/blog-api/internal/storage"
	"github.com/UkralStul/blog-api/internal/storage/inmemory"
	"github.com/UkralStul/blog-api/internal/storage/postgres"
)

const shutdownTimeout = 10 * time.Second

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the HTTP server",
	RunE:  runServe,
}

func loadConfig() (config.Config, error) {
	cfg, err := config.Load(configPath)
	if err != nil {
		return config.Config{}, err
	}
	if flagStore != "" {
		cfg.Storage = flagStore
	}
	if flagPort != "" {
		cfg.Port = flagPort
	}
	if flagLevel != "" {
		cfg.LogLevel = flagLevel
	}
	if err := cfg.Validate(); err != nil {
		return config.Config{}, fmt.Errorf("invalid config: %w", err)
	}
	return cfg, nil
}

// openStorage возвращает хранилище и функцию его закрытия.
func openStorage(cfg config.Config, log zerolog.Logger) (storage.Storage, func() error, error) {
	if cfg.Storage == config.StoragePostgres {
		store, err := postgres.New(cfg.DatabaseURL, log)
		if err != nil {
			return nil, nil, fmt.Errorf("failed to connect to postgres: %w", err)
		}
		return store, store.Close, nil
	}
	return inmemory.New(), func() error { return nil }, nil
}

func runServe(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	logger, err := logging.New().FromPath(cfg.LogFile).WithLevel(cfg.LogLevel).Make()
	if err != nil {
		return err
	}
	defer logger.Close()
	log := logger.Logger

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	log.Info().Str("storage", cfg.Storage).Msg("starting server")
	store, closeStore, err := openStorage(cfg, log)
	if err != nil {
		return err
	}
	defer func() {
		if err := closeStore(); err != nil {
			log.Error().Err(err).Msg("close storage")
		}
	}()

	tokens := auth.NewTokens(cfg.JWTSecret, cfg.TokenTTL)
	hub := feed.NewHub(16)
	svc := service.New(store, auth.NewBcryptHasher(cfg.BcryptCost), tokens,
		service.WithLogger(log),
		service.WithCommentPublisher(hub),
	)

	if cfg.Admin.Password != "" {
		if _, err := svc.EnsureAdmin(ctx, cfg.Admin.Username, cfg.Admin.Email, cfg.Admin.Password); err != nil {
			return fmt.Errorf("bootstrap admin: %w", err)
		}
	}
	if cfg.Storage == config.StorageInMemory && cfg.SeedDemoData {
		if err := fillWithMockData(ctx, svc, log); err != nil {
			return fmt.Errorf("seed demo data: %w", err)
		}
	}

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           httpapi.New(svc, tokens, hub, log).Router(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Info().Str("addr", srv.Addr).Msgf("connect to http://localhost:%s/", cfg.Port)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("server failed: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	log.Info().Msg("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	return nil
}
