package trainer

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/opensource-finance/shrike/internal/artifacts"
	"github.com/opensource-finance/shrike/internal/domain"
	"github.com/opensource-finance/shrike/internal/features"
	"github.com/opensource-finance/shrike/internal/ml"
)

// secondaryMaxRows bounds the card training set; the Sparkov dump is large
// and the model is stable well below the full row count.
const secondaryMaxRows = 100_000

// SecondaryConfig drives the card-domain training run.
type SecondaryConfig struct {
	DatasetPath string
	Seed        int64
}

// DefaultSecondaryConfig returns the card-domain defaults.
func DefaultSecondaryConfig() SecondaryConfig {
	return SecondaryConfig{
		DatasetPath: "data/fraudTrain.csv",
		Seed:        42,
	}
}

// RunSecondary trains the card-domain random forest and persists it. An
// isolation forest is also fit over the card features for the evaluation
// log, but only the supervised model is stored and served.
func RunSecondary(ctx context.Context, cfg SecondaryConfig, store domain.ArtifactStore, logger *slog.Logger) error {
	logger.Info("secondary pipeline: loading dataset", "dataset", cfg.DatasetPath)
	cards, err := LoadCardDataset(cfg.DatasetPath, secondaryMaxRows, cfg.Seed)
	if err != nil {
		return err
	}
	logger.Info("dataset loaded", "records", len(cards))

	data := &ml.Dataset{
		X: make([][]float64, 0, len(cards)),
		Y: make([]int, 0, len(cards)),
	}
	for _, c := range cards {
		data.X = append(data.X, features.ComputeCard(&c.Record).Values())
		y := 0
		if c.IsFraud {
			y = 1
		}
		data.Y = append(data.Y, y)
	}

	train, test, err := ml.StratifiedSplit(data, 0.2, cfg.Seed)
	if err != nil {
		return fmt.Errorf("train/test split: %w", err)
	}
	logger.Info("split", "train", train.Len(), "test", test.Len())

	grid := ml.DefaultRFGrid()
	grid.Seed = cfg.Seed
	logger.Info("training random forest challenger")
	forest, searchResult, err := ml.RandomizedSearchRF(train, grid)
	if err != nil {
		return fmt.Errorf("random forest search: %w", err)
	}
	logger.Info("randomized search complete", "params", searchResult.Params, "cv_auprc", searchResult.Score)

	report := ml.Evaluate("secondary_rf", forest, test)
	logger.Info("model evaluated", "report", report.String())

	isoCfg := ml.DefaultIsoForestConfig()
	isoCfg.Seed = cfg.Seed
	isoForest, err := ml.FitIsolationForest(data.X, isoCfg)
	if err != nil {
		return fmt.Errorf("isolation forest: %w", err)
	}
	isoProbs := make([]float64, test.Len())
	for i, x := range test.X {
		isoProbs[i] = float64(isoForest.Predict(x))
	}
	isoCM := ml.Confusion(isoProbs, test.Y)
	logger.Info("anomaly detector evaluated",
		"true_positives", isoCM.TruePositives,
		"false_positives", isoCM.FalsePositives,
		"false_negatives", isoCM.FalseNegatives,
		"true_negatives", isoCM.TrueNegatives,
	)

	artifact, err := artifacts.Encode(domain.ArtifactSecondaryRF, ml.KindRandomForest, forest)
	if err != nil {
		return err
	}
	if err := store.Put(ctx, artifact); err != nil {
		return fmt.Errorf("failed to store artifact %s: %w", domain.ArtifactSecondaryRF, err)
	}
	logger.Info("artifact saved", "key", domain.ArtifactSecondaryRF, "kind", ml.KindRandomForest)

	return nil
}
