// Shrike - Hybrid rule/model fraud scoring.
// Copyright (c) 2025 opensource.finance
// Licensed under the Apache License 2.0

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

	"github.com/opensource-finance/shrike/internal/api"
	"github.com/opensource-finance/shrike/internal/artifacts"
	"github.com/opensource-finance/shrike/internal/bus"
	"github.com/opensource-finance/shrike/internal/cache"
	"github.com/opensource-finance/shrike/internal/domain"
	"github.com/opensource-finance/shrike/internal/heuristics"
	"github.com/opensource-finance/shrike/internal/scoring"
	"github.com/opensource-finance/shrike/internal/worker"
)

// Version information (set via ldflags)
var (
	Version   = "dev"
	Commit    = "none"
	BuildDate = "unknown"
)

func main() {
	// Initialize structured logger
	logLevel := slog.LevelInfo
	if os.Getenv("SHRIKE_DEBUG") == "true" {
		logLevel = slog.LevelDebug
	}
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: logLevel,
	}))
	slog.SetDefault(logger)

	// Log startup
	slog.Info("starting shrike",
		"version", Version,
		"commit", Commit,
		"build_date", BuildDate,
	)

	// Load configuration
	cfg := domain.DefaultConfig()

	// Check for Pro tier via environment
	if os.Getenv("SHRIKE_TIER") == "pro" {
		cfg = domain.ProConfig()
		slog.Info("running in Pro tier mode")
	}

	if dir := os.Getenv("SHRIKE_MODEL_DIR"); dir != "" && cfg.Artifacts.Driver == "fs" {
		cfg.Artifacts.Dir = dir
	}

	slog.Info("configuration loaded",
		"tier", cfg.Tier,
		"artifacts", cfg.Artifacts.Driver,
		"cache", cfg.Cache.Type,
		"eventbus", cfg.EventBus.Type,
	)

	// Create context with cancellation
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Handle shutdown signals
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		sig := <-sigCh
		slog.Info("received shutdown signal", "signal", sig)
		cancel()
	}()

	// Initialize Artifact Store
	store, err := artifacts.New(cfg.Artifacts)
	if err != nil {
		slog.Error("failed to initialize artifact store", "error", err)
		os.Exit(1)
	}
	defer store.Close()
	slog.Info("artifact store initialized", "driver", cfg.Artifacts.Driver)

	// Load model registry. A missing artifact degrades the matching
	// capability instead of blocking startup.
	registry, err := artifacts.LoadRegistry(ctx, store, logger)
	if err != nil {
		slog.Error("failed to load model registry", "error", err)
		os.Exit(1)
	}
	slog.Info("model registry loaded",
		"artifacts", registry.Keys(),
		"primary_ready", registry.PrimaryReady(),
		"secondary_ready", registry.SecondaryReady(),
	)

	// Initialize Cache
	cacheImpl, err := cache.New(cfg.Cache)
	if err != nil {
		slog.Error("failed to initialize cache", "error", err)
		os.Exit(1)
	}
	defer cacheImpl.Close()
	slog.Info("cache initialized", "type", cfg.Cache.Type)

	// Initialize EventBus
	busImpl, err := bus.New(cfg.EventBus)
	if err != nil {
		slog.Error("failed to initialize event bus", "error", err)
		os.Exit(1)
	}
	defer busImpl.Close()
	slog.Info("event bus initialized", "type", cfg.EventBus.Type)

	// Initialize Heuristic Engine
	engine, err := heuristics.NewDefaultEngine()
	if err != nil {
		slog.Error("failed to initialize heuristic engine", "error", err)
		os.Exit(1)
	}
	slog.Info("heuristic engine initialized",
		"rule_table_version", engine.Version(),
		"rules_count", engine.RulesCount(),
	)

	// Initialize Scoring Service
	service := scoring.NewService(registry, engine, cacheImpl, busImpl, logger)
	slog.Info("scoring service initialized")

	// Initialize async Worker (Pro tier)
	var asyncWorker *worker.Worker
	if cfg.Tier == domain.TierPro || os.Getenv("SHRIKE_ASYNC_WORKER") == "true" {
		asyncWorker = worker.NewWorker(busImpl, service, logger)
		if err := asyncWorker.Start(); err != nil {
			slog.Error("failed to start async worker", "error", err)
		} else {
			slog.Info("async worker started")
		}
	}

	// Initialize Server
	srv := api.NewServer(cfg.Server, service, cacheImpl, busImpl, Version)

	// Start Server in goroutine
	go func() {
		if err := srv.Start(); err != nil && err != http.ErrServerClosed {
			slog.Error("server failed", "error", err)
			os.Exit(1)
		}
	}()

	slog.Info("shrike is ready",
		"host", cfg.Server.Host,
		"port", cfg.Server.Port,
	)

	printBanner(cfg, Version)

	// Wait for shutdown signal
	<-ctx.Done()
	slog.Info("shutting down...")

	// Stop async worker first
	if asyncWorker != nil {
		if err := asyncWorker.Stop(); err != nil {
			slog.Error("failed to stop async worker", "error", err)
		}
	}

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		slog.Error("server forced to shutdown", "error", err)
	}

	slog.Info("shrike shutdown complete")
}

func printBanner(cfg *domain.Config, version string) {
	fmt.Println()
	fmt.Println("  ╔═══════════════════════════════════════════╗")
	fmt.Println("  ║               🐦 SHRIKE                   ║")
	fmt.Println("  ║       Fraud Scoring Engine                ║")
	fmt.Println("  ║   Rules and models, one verdict.          ║")
	fmt.Println("  ╚═══════════════════════════════════════════╝")
	fmt.Println()
	fmt.Printf("  Version:  %s\n", version)
	fmt.Printf("  Tier:     %s\n", cfg.Tier)
	fmt.Printf("  Server:   http://%s:%d\n", cfg.Server.Host, cfg.Server.Port)
	fmt.Println()
	fmt.Println("  Endpoints:")
	fmt.Println("    POST /predict/primary   - Score a transfer transaction")
	fmt.Println("    POST /predict/secondary - Score a card transaction")
	fmt.Println("    POST /ingest            - Queue a transaction for async scoring")
	fmt.Println("    GET  /health            - Health check")
	fmt.Println("    GET  /ready             - Readiness check")
	fmt.Println()
}
