package ml

import (
	"math/rand"
	"sort"
)

// TreeNode is one node of a binary regression tree. Internal nodes route on
// Feature < Threshold; leaves carry the predicted value.
type TreeNode struct {
	Feature   int       `json:"feature"`
	Threshold float64   `json:"threshold"`
	Left      *TreeNode `json:"left,omitempty"`
	Right     *TreeNode `json:"right,omitempty"`
	Value     float64   `json:"value"`
	IsLeaf    bool      `json:"isLeaf"`
}

// treeConfig controls tree induction.
type treeConfig struct {
	maxDepth       int
	minSamplesLeaf int

	// featureSubset > 0 samples that many candidate features per split
	// (random forests); 0 considers every feature.
	featureSubset int
	rng           *rand.Rand
}

// buildTree grows a weighted least-squares regression tree over the samples
// in idx. On binary 0/1 targets the variance criterion coincides with Gini
// impurity, so the same induction serves classification forests.
func buildTree(x [][]float64, target, weight []float64, idx []int, depth int, cfg treeConfig) *TreeNode {
	sumW, sumWT := 0.0, 0.0
	for _, i := range idx {
		sumW += weight[i]
		sumWT += weight[i] * target[i]
	}
	mean := 0.0
	if sumW > 0 {
		mean = sumWT / sumW
	}

	node := &TreeNode{Value: mean, IsLeaf: true}
	if depth >= cfg.maxDepth || len(idx) < 2*cfg.minSamplesLeaf {
		return node
	}

	feature, threshold, ok := bestSplit(x, target, weight, idx, cfg)
	if !ok {
		return node
	}

	var left, right []int
	for _, i := range idx {
		if x[i][feature] < threshold {
			left = append(left, i)
		} else {
			right = append(right, i)
		}
	}
	if len(left) < cfg.minSamplesLeaf || len(right) < cfg.minSamplesLeaf {
		return node
	}

	node.IsLeaf = false
	node.Feature = feature
	node.Threshold = threshold
	node.Left = buildTree(x, target, weight, left, depth+1, cfg)
	node.Right = buildTree(x, target, weight, right, depth+1, cfg)
	return node
}

// bestSplit scans candidate features for the split minimizing weighted SSE.
func bestSplit(x [][]float64, target, weight []float64, idx []int, cfg treeConfig) (int, float64, bool) {
	dim := len(x[idx[0]])

	candidates := make([]int, 0, dim)
	if cfg.featureSubset > 0 && cfg.featureSubset < dim {
		perm := cfg.rng.Perm(dim)
		candidates = append(candidates, perm[:cfg.featureSubset]...)
		sort.Ints(candidates)
	} else {
		for f := 0; f < dim; f++ {
			candidates = append(candidates, f)
		}
	}

	totalW, totalWT, totalWT2 := 0.0, 0.0, 0.0
	for _, i := range idx {
		w, t := weight[i], target[i]
		totalW += w
		totalWT += w * t
		totalWT2 += w * t * t
	}

	bestFeature, bestThreshold := -1, 0.0
	bestScore := totalWT2 - totalWT*totalWT/totalW // SSE without a split

	ordered := make([]int, len(idx))
	for _, f := range candidates {
		copy(ordered, idx)
		sort.Slice(ordered, func(a, b int) bool {
			return x[ordered[a]][f] < x[ordered[b]][f]
		})

		leftW, leftWT, leftWT2 := 0.0, 0.0, 0.0
		for k := 0; k < len(ordered)-1; k++ {
			i := ordered[k]
			w, t := weight[i], target[i]
			leftW += w
			leftWT += w * t
			leftWT2 += w * t * t

			cur, next := x[i][f], x[ordered[k+1]][f]
			if cur == next {
				continue
			}
			if k+1 < cfg.minSamplesLeaf || len(ordered)-k-1 < cfg.minSamplesLeaf {
				continue
			}

			rightW := totalW - leftW
			rightWT := totalWT - leftWT
			rightWT2 := totalWT2 - leftWT2
			if leftW <= 0 || rightW <= 0 {
				continue
			}

			sse := (leftWT2 - leftWT*leftWT/leftW) + (rightWT2 - rightWT*rightWT/rightW)
			if sse < bestScore-1e-12 {
				bestScore = sse
				bestFeature = f
				bestThreshold = (cur + next) / 2
			}
		}
	}

	if bestFeature < 0 {
		return 0, 0, false
	}
	return bestFeature, bestThreshold, true
}

// leaf routes a sample to its terminal node.
func (n *TreeNode) leaf(x []float64) *TreeNode {
	node := n
	for !node.IsLeaf {
		if x[node.Feature] < node.Threshold {
			node = node.Left
		} else {
			node = node.Right
		}
	}
	return node
}

// PredictValue returns the regression output for a sample.
func (n *TreeNode) PredictValue(x []float64) float64 {
	return n.leaf(x).Value
}
