package main

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/heimdex/heimdex-turnover/internal/api"
	"github.com/heimdex/heimdex-turnover/internal/catalog"
	"github.com/heimdex/heimdex-turnover/internal/config"
	"github.com/heimdex/heimdex-turnover/internal/db"
	"github.com/heimdex/heimdex-turnover/internal/logging"
)

func main() {
	if err := run(); err != nil {
		log.Fatalf("fatal error: %v", err)
	}
}

func run() error {
	startTime := time.Now()

	cfg, err := config.New()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	if err := os.MkdirAll(cfg.DataDir(), 0755); err != nil {
		return fmt.Errorf("failed to create data dir: %w", err)
	}

	logger := logging.NewLogger(cfg.LogLevel())
	logger.Info("starting heimdex turnover agent",
		"version", config.Version,
		"commit", config.GitCommit,
		"data_dir", cfg.DataDir(),
		"config_file", cfg.ConfigFile(),
	)

	database, err := db.New(cfg.DBPath(), logger)
	if err != nil {
		return fmt.Errorf("failed to initialize database: %w", err)
	}
	defer database.Close()

	repo := catalog.NewRepository(database.Conn())

	deviceID, err := ensureConfigSecret(repo, "device_id", 16)
	if err != nil {
		return fmt.Errorf("failed to ensure device ID: %w", err)
	}

	authToken, err := ensureConfigSecret(repo, "auth_token", 32)
	if err != nil {
		return fmt.Errorf("failed to ensure auth token: %w", err)
	}

	if cfg.Headless() {
		logger.Info("running headless", "auth_token", logging.SanitizeToken(authToken))
	} else {
		printBanner(cfg.Port(), authToken, deviceID)
	}

	catalogSvc := catalog.NewService(repo, logging.WithComponent(logger, "catalog"))
	catalogSvc.SetDefaultFPS(cfg.DefaultFPS())
	if exts := cfg.ScanExtensions(); len(exts) > 0 {
		catalogSvc.SetScanExtensions(exts)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	runner := catalog.NewRunner(catalogSvc, repo, logging.WithComponent(logger, "runner"))
	go runner.Start(ctx)

	apiServer := api.NewServer(api.ServerConfig{
		Port:             cfg.Port(),
		CatalogService:   catalogSvc,
		Repository:       repo,
		Runner:           runner,
		Logger:           logging.WithComponent(logger, "api"),
		StartTime:        startTime,
		DeviceID:         deviceID,
		Version:          config.Version,
		DefaultProjectID: cfg.DefaultProjectID(),
	})

	errCh := make(chan error, 1)
	go func() {
		errCh <- apiServer.Start()
	}()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	select {
	case sig := <-sigCh:
		logger.Info("received shutdown signal", "signal", sig)
	case err := <-errCh:
		if err != nil {
			logger.Error("HTTP server error", "error", err)
			return err
		}
	}

	logger.Info("initiating graceful shutdown")
	cancel()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if err := apiServer.Shutdown(shutdownCtx); err != nil {
		logger.Error("failed to shutdown HTTP server", "error", err)
	}

	logger.Info("shutdown complete")
	return nil
}

func printBanner(port int, authToken, deviceID string) {
	fmt.Println()
	fmt.Println("╔═══════════════════════════════════════════════════════════╗")
	fmt.Printf("║  HEIMDEX TURNOVER %-39s ║\n", "v"+config.Version)
	fmt.Println("╠═══════════════════════════════════════════════════════════╣")
	fmt.Printf("║  API URL:    http://127.0.0.1:%-27d ║\n", port)
	fmt.Printf("║  Auth Token: %-44s ║\n", authToken[:16]+"...")
	fmt.Printf("║  Device ID:  %-44s ║\n", deviceID[:16]+"...")
	fmt.Println("╚═══════════════════════════════════════════════════════════╝")
	fmt.Println()
	fmt.Println("Full auth token: " + authToken)
	fmt.Println()
}

// ensureConfigSecret returns the stored value for key, generating and
// storing a random hex value of n bytes on first run.
func ensureConfigSecret(repo catalog.Repository, key string, n int) (string, error) {
	ctx := context.Background()

	existing, err := repo.GetConfig(ctx, key)
	if err == nil && existing != "" {
		return existing, nil
	}

	b := make([]byte, n)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	value := hex.EncodeToString(b)

	if err := repo.SetConfig(ctx, key, value); err != nil {
		return "", err
	}
	return value, nil
}
