package ml

import (
	"fmt"
	"math"
	"math/rand"
)

// RFParams are the random forest hyperparameters searched for the
// alternate-domain challenger.
type RFParams struct {
	NEstimators int `json:"nEstimators"`
	MaxDepth    int `json:"maxDepth"`
}

// RandomForest is a bagged ensemble of trees with balanced class weights.
// The positive-class probability is the mean of leaf frequencies.
type RandomForest struct {
	Params RFParams    `json:"params"`
	Trees  []*TreeNode `json:"trees"`
}

// FitRandomForest trains a forest with bootstrap sampling and sqrt-feature
// splits. Deterministic under the given seed.
func FitRandomForest(data *Dataset, params RFParams, seed int64) (*RandomForest, error) {
	n := data.Len()
	if n == 0 {
		return nil, fmt.Errorf("random forest: empty training set")
	}
	neg, pos := data.Counts()
	if neg == 0 || pos == 0 {
		return nil, fmt.Errorf("random forest: training set needs both classes (neg=%d pos=%d)", neg, pos)
	}

	// Balanced class weights, as in the secondary pipeline.
	wNeg := float64(n) / (2 * float64(neg))
	wPos := float64(n) / (2 * float64(pos))

	weight := make([]float64, n)
	target := make([]float64, n)
	for i, y := range data.Y {
		if y == 1 {
			weight[i] = wPos
			target[i] = 1
		} else {
			weight[i] = wNeg
		}
	}

	dim := len(data.X[0])
	subset := int(math.Sqrt(float64(dim)))
	if subset < 1 {
		subset = 1
	}

	rng := rand.New(rand.NewSource(seed))
	m := &RandomForest{Params: params}

	for t := 0; t < params.NEstimators; t++ {
		idx := make([]int, n)
		for i := range idx {
			idx[i] = rng.Intn(n)
		}
		cfg := treeConfig{
			maxDepth:       params.MaxDepth,
			minSamplesLeaf: 1,
			featureSubset:  subset,
			rng:            rng,
		}
		m.Trees = append(m.Trees, buildTree(data.X, target, weight, idx, 0, cfg))
	}

	return m, nil
}

// PredictProba returns the mean positive frequency across trees.
func (m *RandomForest) PredictProba(x []float64) float64 {
	if len(m.Trees) == 0 {
		return 0
	}
	sum := 0.0
	for _, tree := range m.Trees {
		sum += tree.PredictValue(x)
	}
	p := sum / float64(len(m.Trees))
	// Leaf means are weighted frequencies; clamp against rounding drift.
	return math.Min(math.Max(p, 0), 1)
}

// Predict returns the binary label at the 0.5 threshold.
func (m *RandomForest) Predict(x []float64) int {
	if m.PredictProba(x) > 0.5 {
		return 1
	}
	return 0
}
