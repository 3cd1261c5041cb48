// Package trainer implements the offline pipeline that produces every
// serving-time artifact: load, engineer, rebalance, train, evaluate,
// serialize.
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

// FraudCapableTypes are the only transaction categories that carry fraud in
// the primary dataset; training filters to these.
var FraudCapableTypes = []string{"CASH_OUT", "TRANSFER"}

// Pipeline runs the offline training flow and writes artifacts to a store.
type Pipeline struct {
	cfg    domain.TrainingConfig
	store  domain.ArtifactStore
	logger *slog.Logger
}

// NewPipeline validates the configuration and returns a ready pipeline.
func NewPipeline(cfg domain.TrainingConfig, store domain.ArtifactStore, logger *slog.Logger) (*Pipeline, error) {
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid training config: %w", err)
	}
	return &Pipeline{cfg: cfg, store: store, logger: logger}, nil
}

// Run executes the six training phases end to end. Any failure aborts the
// run before artifacts are written; a partially trained artifact set is
// never persisted.
func (p *Pipeline) Run(ctx context.Context) error {
	// Phase 1: data engineering
	p.logger.Info("phase 1: data engineering", "dataset", p.cfg.DatasetPath, "sample_fraction", p.cfg.SampleFraction)
	records, err := LoadPrimaryDataset(p.cfg.DatasetPath, p.cfg.SampleFraction, p.cfg.Seed)
	if err != nil {
		return err
	}
	fraudCount := 0
	for _, r := range records {
		if r.IsFraud {
			fraudCount++
		}
	}
	p.logger.Info("dataset loaded",
		"records", len(records),
		"fraud", fraudCount,
		"fraud_rate", float64(fraudCount)/float64(len(records)),
	)

	// Phase 2: feature engineering
	p.logger.Info("phase 2: feature engineering", "fraud_capable_types", FraudCapableTypes)
	data, enc := p.engineerFeatures(records)
	p.logger.Info("features built", "records", data.Len(), "classes", enc.Classes)

	train, test, err := ml.StratifiedSplit(data, p.cfg.TestFraction, p.cfg.Seed)
	if err != nil {
		return fmt.Errorf("train/test split: %w", err)
	}
	p.logger.Info("split", "train", train.Len(), "test", test.Len())

	// Phase 3: imbalance handling
	p.logger.Info("phase 3: imbalance handling", "pre_smote_fraud_rate", train.PositiveRate())
	balanced, err := ml.SMOTE(train, ml.SMOTEConfig{KNeighbors: 5, Seed: p.cfg.Seed})
	if err != nil {
		return fmt.Errorf("smote: %w", err)
	}
	p.logger.Info("oversampled", "train", balanced.Len(), "post_smote_fraud_rate", balanced.PositiveRate())

	// Phase 4: tri-model training
	p.logger.Info("phase 4: tri-model training")

	p.logger.Info("model 1: logistic regression baseline")
	logistic, err := ml.FitLogistic(balanced, ml.DefaultLogisticConfig())
	if err != nil {
		return fmt.Errorf("logistic baseline: %w", err)
	}

	neg, pos := balanced.Counts()
	grid := ml.DefaultGBTGrid()
	grid.PosWeight = float64(neg) / float64(pos)
	grid.Seed = p.cfg.Seed
	p.logger.Info("model 2: gradient boosting champion", "pos_weight", grid.PosWeight)
	champion, searchResult, err := ml.GridSearchGBT(balanced, grid)
	if err != nil {
		return fmt.Errorf("champion search: %w", err)
	}
	p.logger.Info("grid search complete", "params", searchResult.Params, "cv_auprc", searchResult.Score)

	legit := ml.FilterClass(balanced, 0)
	p.logger.Info("model 3: isolation forest", "legit_samples", legit.Len())
	isoCfg := ml.DefaultIsoForestConfig()
	isoCfg.Seed = p.cfg.Seed
	isoForest, err := ml.FitIsolationForest(legit.X, isoCfg)
	if err != nil {
		return fmt.Errorf("isolation forest: %w", err)
	}

	// Phase 5: evaluation on the untouched hold-out split
	p.logger.Info("phase 5: evaluation")
	championReport := ml.Evaluate("gradient_boosting", champion, test)
	for _, report := range []ml.Report{
		ml.Evaluate("logistic_regression", logistic, test),
		championReport,
	} {
		p.logger.Info("model evaluated", "report", report.String())
	}
	isoReport := p.evaluateIsoForest(isoForest, test)
	p.logger.Info("model evaluated", "report", isoReport.String())

	p.logger.Info("champion confusion matrix",
		"true_negatives", championReport.Confusion.TrueNegatives,
		"false_positives", championReport.Confusion.FalsePositives,
		"false_negatives", championReport.Confusion.FalseNegatives,
		"true_positives", championReport.Confusion.TruePositives,
	)

	// Phase 6: serialization
	p.logger.Info("phase 6: serialization")
	saves := []struct {
		key   string
		kind  string
		model any
	}{
		{domain.ArtifactPrimary, ml.KindGradientBoosting, champion},
		{domain.ArtifactLogistic, ml.KindLogistic, logistic},
		{domain.ArtifactIsolationForest, ml.KindIsolationForest, isoForest},
		{domain.ArtifactEncoder, ml.KindCategoryEncoder, enc},
	}
	for _, s := range saves {
		artifact, err := artifacts.Encode(s.key, s.kind, s.model)
		if err != nil {
			return err
		}
		if err := p.store.Put(ctx, artifact); err != nil {
			return fmt.Errorf("failed to store artifact %s: %w", s.key, err)
		}
		p.logger.Info("artifact saved", "key", s.key, "kind", s.kind)
	}

	p.logger.Info("pipeline complete")
	return nil
}

// engineerFeatures filters to fraud-capable types, fits the category
// encoding on the filtered labels and builds the training matrix.
func (p *Pipeline) engineerFeatures(records []domain.LabeledRecord) (*ml.Dataset, *domain.CategoryEncoding) {
	capable := make(map[string]bool, len(FraudCapableTypes))
	for _, t := range FraudCapableTypes {
		capable[t] = true
	}

	var kept []domain.LabeledRecord
	var labels []string
	for _, r := range records {
		if !capable[r.Record.Type] {
			continue
		}
		kept = append(kept, r)
		labels = append(labels, r.Record.Type)
	}

	enc := features.FitEncoding(labels)

	data := &ml.Dataset{
		X: make([][]float64, 0, len(kept)),
		Y: make([]int, 0, len(kept)),
	}
	for _, r := range kept {
		data.X = append(data.X, features.Compute(&r.Record, enc).Values())
		y := 0
		if r.IsFraud {
			y = 1
		}
		data.Y = append(data.Y, y)
	}
	return data, enc
}

// evaluateIsoForest scores the anomaly detector against labels. The mapping
// is report-only: the detector is unsupervised and is not consulted for
// online verdicts.
func (p *Pipeline) evaluateIsoForest(f *ml.IsolationForest, test *ml.Dataset) ml.Report {
	probs := make([]float64, test.Len())
	for i, x := range test.X {
		probs[i] = float64(f.Predict(x))
	}
	cm := ml.Confusion(probs, test.Y)
	return ml.Report{
		Name:      "isolation_forest",
		Confusion: cm,
		Precision: cm.Precision(),
		Recall:    cm.Recall(),
		F1:        cm.F1(),
		Accuracy:  cm.Accuracy(),
	}
}
