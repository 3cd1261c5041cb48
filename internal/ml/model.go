// Package ml implements the trained models behind the scoring service:
// a class-weighted logistic baseline, a gradient-boosted tree champion, an
// unsupervised isolation forest, and the alternate-domain random forest,
// together with the imbalance tooling (stratified splits, SMOTE) and the
// evaluation metrics appropriate to rare positives (AUPRC, F1).
//
// Everything is deterministic under a fixed seed; nothing here touches
// global random state.
package ml

// Classifier produces a positive-class probability for a feature vector.
type Classifier interface {
	// PredictProba returns the fraud probability in [0, 1].
	PredictProba(x []float64) float64
}

// Model kinds used for artifact encoding.
const (
	KindLogistic         = "logistic_regression"
	KindGradientBoosting = "gradient_boosting"
	KindIsolationForest  = "isolation_forest"
	KindRandomForest     = "random_forest"
	KindCategoryEncoder  = "category_encoder"
)

// Dataset is a dense feature matrix with binary labels.
// Rows of X are samples; Y[i] is 1 for fraud, 0 for legitimate.
type Dataset struct {
	X [][]float64
	Y []int
}

// Len returns the number of samples.
func (d *Dataset) Len() int { return len(d.X) }

// PositiveRate returns the fraction of positive labels.
func (d *Dataset) PositiveRate() float64 {
	if len(d.Y) == 0 {
		return 0
	}
	pos := 0
	for _, y := range d.Y {
		if y == 1 {
			pos++
		}
	}
	return float64(pos) / float64(len(d.Y))
}

// Counts returns the number of negative and positive samples.
func (d *Dataset) Counts() (neg, pos int) {
	for _, y := range d.Y {
		if y == 1 {
			pos++
		} else {
			neg++
		}
	}
	return neg, pos
}
