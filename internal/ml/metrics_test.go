package ml

import (
	"math"
	"testing"
)

func almostEqual(a, b float64) bool {
	return math.Abs(a-b) < 1e-9
}

func TestConfusion(t *testing.T) {
	probs := []float64{0.9, 0.6, 0.4, 0.1, 0.5}
	labels := []int{1, 0, 1, 0, 1}

	cm := Confusion(probs, labels)
	if cm.TruePositives != 2 {
		t.Errorf("tp = %d, want 2", cm.TruePositives)
	}
	if cm.FalsePositives != 1 {
		t.Errorf("fp = %d, want 1", cm.FalsePositives)
	}
	if cm.FalseNegatives != 1 {
		t.Errorf("fn = %d, want 1", cm.FalseNegatives)
	}
	if cm.TrueNegatives != 1 {
		t.Errorf("tn = %d, want 1", cm.TrueNegatives)
	}
}

func TestConfusionDerivedMetrics(t *testing.T) {
	cm := ConfusionMatrix{TruePositives: 8, TrueNegatives: 80, FalsePositives: 2, FalseNegatives: 10}

	if got := cm.Precision(); !almostEqual(got, 0.8) {
		t.Errorf("precision = %v, want 0.8", got)
	}
	if got := cm.Recall(); !almostEqual(got, 8.0/18.0) {
		t.Errorf("recall = %v, want %v", got, 8.0/18.0)
	}
	wantF1 := 2 * 0.8 * (8.0 / 18.0) / (0.8 + 8.0/18.0)
	if got := cm.F1(); !almostEqual(got, wantF1) {
		t.Errorf("f1 = %v, want %v", got, wantF1)
	}
	if got := cm.Accuracy(); !almostEqual(got, 0.88) {
		t.Errorf("accuracy = %v, want 0.88", got)
	}

	t.Run("EmptyMatrix", func(t *testing.T) {
		var empty ConfusionMatrix
		if empty.Precision() != 0 || empty.Recall() != 0 || empty.F1() != 0 || empty.Accuracy() != 0 {
			t.Error("empty matrix should yield zero metrics, not NaN")
		}
	})
}

func TestAveragePrecision(t *testing.T) {
	t.Run("PerfectRanking", func(t *testing.T) {
		probs := []float64{0.9, 0.8, 0.2, 0.1}
		labels := []int{1, 1, 0, 0}
		if got := AveragePrecision(probs, labels); !almostEqual(got, 1.0) {
			t.Errorf("AP = %v, want 1.0", got)
		}
	})

	t.Run("InterleavedRanking", func(t *testing.T) {
		probs := []float64{0.9, 0.8, 0.7, 0.6}
		labels := []int{1, 0, 1, 0}
		// First positive at precision 1, second at precision 2/3.
		want := 0.5*1.0 + 0.5*(2.0/3.0)
		if got := AveragePrecision(probs, labels); !almostEqual(got, want) {
			t.Errorf("AP = %v, want %v", got, want)
		}
	})

	t.Run("NoPositives", func(t *testing.T) {
		if got := AveragePrecision([]float64{0.9, 0.1}, []int{0, 0}); got != 0 {
			t.Errorf("AP with no positives = %v, want 0", got)
		}
	})

	t.Run("Empty", func(t *testing.T) {
		if got := AveragePrecision(nil, nil); got != 0 {
			t.Errorf("AP on empty input = %v, want 0", got)
		}
	})
}

func TestEvaluate(t *testing.T) {
	// A classifier that echoes its first feature as the probability.
	c := probeClassifier{}
	test := &Dataset{
		X: [][]float64{{0.9}, {0.8}, {0.2}, {0.1}},
		Y: []int{1, 1, 0, 0},
	}
	report := Evaluate("probe", c, test)
	if report.Name != "probe" {
		t.Errorf("name = %q, want probe", report.Name)
	}
	if !almostEqual(report.AveragePrecision, 1.0) {
		t.Errorf("auprc = %v, want 1.0", report.AveragePrecision)
	}
	if !almostEqual(report.F1, 1.0) {
		t.Errorf("f1 = %v, want 1.0", report.F1)
	}
}

type probeClassifier struct{}

func (probeClassifier) PredictProba(x []float64) float64 { return x[0] }
