package ml

import (
	"math/rand"
	"testing"
)

// separable builds a 2D dataset with well-separated clusters: class 0
// around the origin, class 1 around (10, 10). Deterministic.
func separable(nNeg, nPos int) *Dataset {
	rng := rand.New(rand.NewSource(1))
	d := &Dataset{}
	for i := 0; i < nNeg; i++ {
		d.X = append(d.X, []float64{rng.Float64(), rng.Float64()})
		d.Y = append(d.Y, 0)
	}
	for i := 0; i < nPos; i++ {
		d.X = append(d.X, []float64{10 + rng.Float64(), 10 + rng.Float64()})
		d.Y = append(d.Y, 1)
	}
	return d
}

func TestFitLogistic(t *testing.T) {
	t.Run("SeparableData", func(t *testing.T) {
		data := separable(50, 50)
		m, err := FitLogistic(data, DefaultLogisticConfig())
		if err != nil {
			t.Fatalf("fit failed: %v", err)
		}
		if m.Predict([]float64{0.5, 0.5}) != 0 {
			t.Error("inlier near origin labeled fraud")
		}
		if m.Predict([]float64{10.5, 10.5}) != 1 {
			t.Error("positive-cluster sample labeled legitimate")
		}
	})

	t.Run("ProbabilityRange", func(t *testing.T) {
		data := separable(30, 30)
		m, err := FitLogistic(data, DefaultLogisticConfig())
		if err != nil {
			t.Fatalf("fit failed: %v", err)
		}
		for _, x := range data.X {
			p := m.PredictProba(x)
			if p < 0 || p > 1 {
				t.Fatalf("probability %v out of range", p)
			}
		}
	})

	t.Run("ImbalancedStillLearnsPositives", func(t *testing.T) {
		// Balanced class weights should keep the rare class visible.
		data := separable(95, 5)
		m, err := FitLogistic(data, DefaultLogisticConfig())
		if err != nil {
			t.Fatalf("fit failed: %v", err)
		}
		if m.Predict([]float64{10.5, 10.5}) != 1 {
			t.Error("rare positive cluster not learned")
		}
	})

	t.Run("EmptyAndSingleClass", func(t *testing.T) {
		if _, err := FitLogistic(&Dataset{}, DefaultLogisticConfig()); err == nil {
			t.Error("expected error for empty dataset")
		}
		if _, err := FitLogistic(separable(10, 0), DefaultLogisticConfig()); err == nil {
			t.Error("expected error for single-class dataset")
		}
	})
}

func TestFitGBT(t *testing.T) {
	params := GBTParams{MaxDepth: 2, LearningRate: 0.3, NEstimators: 25, PosWeight: 1}

	t.Run("SeparableData", func(t *testing.T) {
		data := separable(50, 50)
		m, err := FitGBT(data, params)
		if err != nil {
			t.Fatalf("fit failed: %v", err)
		}
		if m.Predict([]float64{0.5, 0.5}) != 0 {
			t.Error("inlier near origin labeled fraud")
		}
		if m.Predict([]float64{10.5, 10.5}) != 1 {
			t.Error("positive-cluster sample labeled legitimate")
		}
		if len(m.Trees) != params.NEstimators {
			t.Errorf("trained %d trees, want %d", len(m.Trees), params.NEstimators)
		}
	})

	t.Run("RanksTestSetPerfectly", func(t *testing.T) {
		data := separable(60, 60)
		train, test, err := StratifiedSplit(data, 0.25, 42)
		if err != nil {
			t.Fatalf("split failed: %v", err)
		}
		m, err := FitGBT(train, params)
		if err != nil {
			t.Fatalf("fit failed: %v", err)
		}
		report := Evaluate("gbt", m, test)
		if report.AveragePrecision < 0.99 {
			t.Errorf("auprc = %v on separable data, want ~1", report.AveragePrecision)
		}
	})

	t.Run("SingleClass", func(t *testing.T) {
		if _, err := FitGBT(separable(0, 10), params); err == nil {
			t.Error("expected error for single-class dataset")
		}
	})
}

func TestFitRandomForest(t *testing.T) {
	params := RFParams{NEstimators: 20, MaxDepth: 4}

	t.Run("SeparableData", func(t *testing.T) {
		data := separable(50, 50)
		m, err := FitRandomForest(data, params, 42)
		if err != nil {
			t.Fatalf("fit failed: %v", err)
		}
		if m.Predict([]float64{0.5, 0.5}) != 0 {
			t.Error("inlier near origin labeled fraud")
		}
		if m.Predict([]float64{10.5, 10.5}) != 1 {
			t.Error("positive-cluster sample labeled legitimate")
		}
	})

	t.Run("DeterministicUnderSeed", func(t *testing.T) {
		data := separable(40, 40)
		a, err := FitRandomForest(data, params, 7)
		if err != nil {
			t.Fatalf("fit failed: %v", err)
		}
		b, err := FitRandomForest(data, params, 7)
		if err != nil {
			t.Fatalf("fit failed: %v", err)
		}
		probe := []float64{5, 5}
		if a.PredictProba(probe) != b.PredictProba(probe) {
			t.Error("same seed produced different forests")
		}
	})

	t.Run("ProbabilityClamped", func(t *testing.T) {
		data := separable(30, 30)
		m, err := FitRandomForest(data, params, 42)
		if err != nil {
			t.Fatalf("fit failed: %v", err)
		}
		for _, x := range data.X {
			p := m.PredictProba(x)
			if p < 0 || p > 1 {
				t.Fatalf("probability %v out of range", p)
			}
		}
	})
}

func TestIsolationForest(t *testing.T) {
	// Legitimate traffic only: a tight cluster near the origin.
	rng := rand.New(rand.NewSource(3))
	var x [][]float64
	for i := 0; i < 400; i++ {
		x = append(x, []float64{rng.Float64(), rng.Float64()})
	}

	cfg := DefaultIsoForestConfig()
	m, err := FitIsolationForest(x, cfg)
	if err != nil {
		t.Fatalf("fit failed: %v", err)
	}

	t.Run("OutlierScoresHigher", func(t *testing.T) {
		inlier := m.Score([]float64{0.5, 0.5})
		outlier := m.Score([]float64{50, 50})
		if outlier <= inlier {
			t.Errorf("outlier score %v not above inlier score %v", outlier, inlier)
		}
	})

	t.Run("OutlierFlagged", func(t *testing.T) {
		if m.Predict([]float64{50, 50}) != 1 {
			t.Error("distant outlier not flagged as anomaly")
		}
	})

	t.Run("ContaminationBoundsFalseAlarms", func(t *testing.T) {
		flagged := 0
		for _, row := range x {
			flagged += m.Predict(row)
		}
		// The threshold sits at the contamination quantile of training
		// scores, so roughly 1% of training rows land at or above it.
		if flagged > len(x)/10 {
			t.Errorf("%d of %d training rows flagged, want around 1%%", flagged, len(x))
		}
	})

	t.Run("EmptyInput", func(t *testing.T) {
		if _, err := FitIsolationForest(nil, cfg); err == nil {
			t.Error("expected error for empty training set")
		}
	})
}
