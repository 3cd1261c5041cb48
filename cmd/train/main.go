// Training tool for building Shrike's fraud models.
//
// Usage:
//   go run cmd/train/main.go -csv data/onlinefraud.csv -out ./models
//   go run cmd/train/main.go -target secondary -csv data/fraudTrain.csv
//
// The primary target runs the full transfer-fraud pipeline: sampling,
// feature engineering, oversampling, the tri-model fit, evaluation, and
// artifact persistence. The secondary target trains the card-domain
// random forest.
package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/opensource-finance/shrike/internal/artifacts"
	"github.com/opensource-finance/shrike/internal/domain"
	"github.com/opensource-finance/shrike/internal/trainer"
)

func main() {
	var (
		target   = flag.String("target", "primary", "training target: primary or secondary")
		csvPath  = flag.String("csv", "", "path to the labeled CSV (default per target)")
		sample   = flag.Float64("sample", 0.1, "fraction of legitimate rows to keep (primary)")
		full     = flag.Bool("full", false, "use the full dataset, overriding -sample (primary)")
		testFrac = flag.Float64("test", 0.2, "held-out test fraction (primary)")
		seed     = flag.Int64("seed", 42, "random seed")
		outDir   = flag.String("out", "./models", "artifact output directory")
		debug    = flag.Bool("debug", false, "enable debug logging")
	)
	flag.Parse()

	logLevel := slog.LevelInfo
	if *debug {
		logLevel = slog.LevelDebug
	}
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: logLevel,
	}))
	slog.SetDefault(logger)

	store, err := artifacts.New(domain.ArtifactStoreConfig{
		Driver: "fs",
		Dir:    *outDir,
	})
	if err != nil {
		logger.Error("failed to open artifact store", "error", err)
		os.Exit(1)
	}
	defer store.Close()

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	switch *target {
	case "primary":
		cfg := domain.TrainingConfig{
			DatasetPath:    *csvPath,
			SampleFraction: *sample,
			UseFullDataset: *full,
			TestFraction:   *testFrac,
			Seed:           *seed,
		}
		if cfg.DatasetPath == "" {
			cfg.DatasetPath = domain.DefaultTrainingConfig().DatasetPath
		}
		pipeline, err := trainer.NewPipeline(cfg, store, logger)
		if err != nil {
			logger.Error("invalid training configuration", "error", err)
			os.Exit(1)
		}
		if err := pipeline.Run(ctx); err != nil {
			logger.Error("training pipeline failed", "error", err)
			os.Exit(1)
		}

	case "secondary":
		cfg := trainer.DefaultSecondaryConfig()
		if *csvPath != "" {
			cfg.DatasetPath = *csvPath
		}
		cfg.Seed = *seed
		if err := trainer.RunSecondary(ctx, cfg, store, logger); err != nil {
			logger.Error("secondary training failed", "error", err)
			os.Exit(1)
		}

	default:
		fmt.Fprintf(os.Stderr, "unknown target %q (want primary or secondary)\n", *target)
		os.Exit(2)
	}

	logger.Info("training complete", "target", *target, "out", *outDir)
}
