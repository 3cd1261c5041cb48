package ml

import (
	"fmt"
	"sort"
	"strings"
)

// ConfusionMatrix holds binary classification counts at a fixed threshold.
type ConfusionMatrix struct {
	TruePositives  int `json:"true_positives"`
	TrueNegatives  int `json:"true_negatives"`
	FalsePositives int `json:"false_positives"`
	FalseNegatives int `json:"false_negatives"`
}

// Confusion tallies predictions against labels at the 0.5 threshold.
func Confusion(probs []float64, labels []int) ConfusionMatrix {
	var cm ConfusionMatrix
	for i, p := range probs {
		pred := 0
		if p >= 0.5 {
			pred = 1
		}
		switch {
		case pred == 1 && labels[i] == 1:
			cm.TruePositives++
		case pred == 1 && labels[i] == 0:
			cm.FalsePositives++
		case pred == 0 && labels[i] == 1:
			cm.FalseNegatives++
		default:
			cm.TrueNegatives++
		}
	}
	return cm
}

// Precision is TP / (TP + FP); zero when no positives were predicted.
func (cm ConfusionMatrix) Precision() float64 {
	denom := cm.TruePositives + cm.FalsePositives
	if denom == 0 {
		return 0
	}
	return float64(cm.TruePositives) / float64(denom)
}

// Recall is TP / (TP + FN); zero when no positives exist.
func (cm ConfusionMatrix) Recall() float64 {
	denom := cm.TruePositives + cm.FalseNegatives
	if denom == 0 {
		return 0
	}
	return float64(cm.TruePositives) / float64(denom)
}

// F1 is the harmonic mean of precision and recall.
func (cm ConfusionMatrix) F1() float64 {
	p, r := cm.Precision(), cm.Recall()
	if p+r == 0 {
		return 0
	}
	return 2 * p * r / (p + r)
}

// Accuracy is the fraction of correct predictions.
func (cm ConfusionMatrix) Accuracy() float64 {
	total := cm.TruePositives + cm.TrueNegatives + cm.FalsePositives + cm.FalseNegatives
	if total == 0 {
		return 0
	}
	return float64(cm.TruePositives+cm.TrueNegatives) / float64(total)
}

// AveragePrecision computes the area under the precision-recall curve as
// the weighted mean of precisions at each recall step. This is the scoring
// metric for model selection: with fraud below 0.2% prevalence, ROC-AUC
// rewards trivial majority classifiers while AUPRC does not.
func AveragePrecision(probs []float64, labels []int) float64 {
	n := len(probs)
	if n == 0 || n != len(labels) {
		return 0
	}
	totalPos := 0
	for _, y := range labels {
		if y == 1 {
			totalPos++
		}
	}
	if totalPos == 0 {
		return 0
	}

	order := make([]int, n)
	for i := range order {
		order[i] = i
	}
	sort.Slice(order, func(a, b int) bool {
		if probs[order[a]] != probs[order[b]] {
			return probs[order[a]] > probs[order[b]]
		}
		return order[a] < order[b]
	})

	ap := 0.0
	tp, fp := 0, 0
	prevRecall := 0.0
	for _, i := range order {
		if labels[i] == 1 {
			tp++
		} else {
			fp++
		}
		recall := float64(tp) / float64(totalPos)
		precision := float64(tp) / float64(tp+fp)
		ap += (recall - prevRecall) * precision
		prevRecall = recall
	}
	return ap
}

// Report is the end-of-training evaluation summary for a classifier.
type Report struct {
	Name             string          `json:"name"`
	AveragePrecision float64         `json:"average_precision"`
	Confusion        ConfusionMatrix `json:"confusion"`
	Precision        float64         `json:"precision"`
	Recall           float64         `json:"recall"`
	F1               float64         `json:"f1"`
	Accuracy         float64         `json:"accuracy"`
}

// Evaluate scores a classifier on held-out data and fills a Report.
func Evaluate(name string, c Classifier, test *Dataset) Report {
	probs := make([]float64, test.Len())
	for i, x := range test.X {
		probs[i] = c.PredictProba(x)
	}
	cm := Confusion(probs, test.Y)
	return Report{
		Name:             name,
		AveragePrecision: AveragePrecision(probs, test.Y),
		Confusion:        cm,
		Precision:        cm.Precision(),
		Recall:           cm.Recall(),
		F1:               cm.F1(),
		Accuracy:         cm.Accuracy(),
	}
}

// String renders the report in a compact single-line form for logs.
func (r Report) String() string {
	var b strings.Builder
	fmt.Fprintf(&b, "%s: auprc=%.4f precision=%.4f recall=%.4f f1=%.4f accuracy=%.4f",
		r.Name, r.AveragePrecision, r.Precision, r.Recall, r.F1, r.Accuracy)
	fmt.Fprintf(&b, " tp=%d fp=%d fn=%d tn=%d",
		r.Confusion.TruePositives, r.Confusion.FalsePositives,
		r.Confusion.FalseNegatives, r.Confusion.TrueNegatives)
	return b.String()
}
