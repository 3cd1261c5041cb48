package ml

import (
	"fmt"
	"math"
)

// GBTParams are the tunable hyperparameters of the boosted-tree champion.
// PosWeight compensates residual class imbalance after oversampling; it is
// derived from the training class ratio and included in the search grid.
type GBTParams struct {
	MaxDepth     int     `json:"maxDepth"`
	LearningRate float64 `json:"learningRate"`
	NEstimators  int     `json:"nEstimators"`
	PosWeight    float64 `json:"posWeight"`
}

// GradientBoosting is a boosted ensemble of regression trees trained on the
// logistic loss. Each round fits a tree to the loss gradient and applies a
// Newton leaf update.
type GradientBoosting struct {
	Params    GBTParams   `json:"params"`
	BaseScore float64     `json:"baseScore"` // initial log-odds
	Trees     []*TreeNode `json:"trees"`
}

// FitGBT trains a gradient-boosted tree classifier.
func FitGBT(data *Dataset, params GBTParams) (*GradientBoosting, error) {
	n := data.Len()
	if n == 0 {
		return nil, fmt.Errorf("gbt: empty training set")
	}
	neg, pos := data.Counts()
	if neg == 0 || pos == 0 {
		return nil, fmt.Errorf("gbt: training set needs both classes (neg=%d pos=%d)", neg, pos)
	}
	if params.PosWeight <= 0 {
		params.PosWeight = 1
	}

	weight := make([]float64, n)
	target := make([]float64, n)
	for i, y := range data.Y {
		if y == 1 {
			weight[i] = params.PosWeight
			target[i] = 1
		} else {
			weight[i] = 1
		}
	}

	// Weighted prior log-odds.
	sumW, sumWT := 0.0, 0.0
	for i := range weight {
		sumW += weight[i]
		sumWT += weight[i] * target[i]
	}
	prior := sumWT / sumW
	prior = math.Min(math.Max(prior, 1e-6), 1-1e-6)

	m := &GradientBoosting{
		Params:    params,
		BaseScore: math.Log(prior / (1 - prior)),
	}

	idx := make([]int, n)
	for i := range idx {
		idx[i] = i
	}

	raw := make([]float64, n)
	for i := range raw {
		raw[i] = m.BaseScore
	}

	grad := make([]float64, n)
	hess := make([]float64, n)
	cfg := treeConfig{
		maxDepth:       params.MaxDepth,
		minSamplesLeaf: 1,
	}

	for round := 0; round < params.NEstimators; round++ {
		for i := range raw {
			p := sigmoid(raw[i])
			grad[i] = target[i] - p
			hess[i] = p * (1 - p)
		}

		tree := buildTree(data.X, grad, weight, idx, 0, cfg)
		newtonLeafValues(tree, data.X, grad, hess, weight, idx)
		m.Trees = append(m.Trees, tree)

		for i := range raw {
			raw[i] += params.LearningRate * tree.PredictValue(data.X[i])
		}
	}

	return m, nil
}

// newtonLeafValues replaces each leaf's gradient mean with the Newton step
// sum(w*g) / sum(w*h) over the samples routed to it.
func newtonLeafValues(root *TreeNode, x [][]float64, grad, hess, weight []float64, idx []int) {
	sumG := make(map[*TreeNode]float64)
	sumH := make(map[*TreeNode]float64)
	for _, i := range idx {
		leaf := root.leaf(x[i])
		sumG[leaf] += weight[i] * grad[i]
		sumH[leaf] += weight[i] * hess[i]
	}
	for leaf, g := range sumG {
		h := sumH[leaf]
		if h < 1e-12 {
			h = 1e-12
		}
		leaf.Value = g / h
	}
}

// PredictProba returns the positive-class probability.
func (m *GradientBoosting) PredictProba(x []float64) float64 {
	raw := m.BaseScore
	for _, tree := range m.Trees {
		raw += m.Params.LearningRate * tree.PredictValue(x)
	}
	return sigmoid(raw)
}

// Predict returns the binary label at the 0.5 threshold.
func (m *GradientBoosting) Predict(x []float64) int {
	if m.PredictProba(x) > 0.5 {
		return 1
	}
	return 0
}
