package ml

import (
	"fmt"
	"math"
	"math/rand"
	"sort"
)

// IsolationForest is the unsupervised "unknown unknown" detector. Trained
// exclusively on legitimate rows, it isolates outliers by random recursive
// partitioning: anomalies need fewer splits to isolate.
type IsolationForest struct {
	Trees      []*isoNode `json:"trees"`
	SampleSize int        `json:"sampleSize"`

	// ScoreThreshold is the anomaly-score cutoff derived from the
	// contamination rate on the training scores.
	ScoreThreshold float64 `json:"scoreThreshold"`
}

type isoNode struct {
	Feature   int      `json:"feature"`
	Threshold float64  `json:"threshold"`
	Left      *isoNode `json:"left,omitempty"`
	Right     *isoNode `json:"right,omitempty"`
	Size      int      `json:"size"` // samples at an external node
	External  bool     `json:"external"`
}

// IsoForestConfig holds isolation forest hyperparameters.
type IsoForestConfig struct {
	NEstimators   int
	MaxSamples    int
	Contamination float64
	Seed          int64
}

// DefaultIsoForestConfig mirrors the usual 100-tree, 256-sample setup with
// 1% expected contamination.
func DefaultIsoForestConfig() IsoForestConfig {
	return IsoForestConfig{
		NEstimators:   100,
		MaxSamples:    256,
		Contamination: 0.01,
		Seed:          42,
	}
}

// FitIsolationForest trains on the given samples without label access.
func FitIsolationForest(x [][]float64, cfg IsoForestConfig) (*IsolationForest, error) {
	if len(x) == 0 {
		return nil, fmt.Errorf("isolation forest: empty training set")
	}
	if cfg.NEstimators <= 0 {
		cfg.NEstimators = 100
	}
	if cfg.MaxSamples <= 0 || cfg.MaxSamples > len(x) {
		cfg.MaxSamples = min(256, len(x))
	}
	if cfg.Contamination <= 0 || cfg.Contamination >= 0.5 {
		cfg.Contamination = 0.01
	}

	rng := rand.New(rand.NewSource(cfg.Seed))
	heightLimit := int(math.Ceil(math.Log2(float64(cfg.MaxSamples))))

	m := &IsolationForest{SampleSize: cfg.MaxSamples}
	for t := 0; t < cfg.NEstimators; t++ {
		sample := make([][]float64, cfg.MaxSamples)
		for i := range sample {
			sample[i] = x[rng.Intn(len(x))]
		}
		m.Trees = append(m.Trees, buildIsoTree(sample, 0, heightLimit, rng))
	}

	// Threshold at the contamination quantile of training scores.
	scores := make([]float64, len(x))
	for i, row := range x {
		scores[i] = m.Score(row)
	}
	sort.Float64s(scores)
	cut := int(float64(len(scores)) * (1 - cfg.Contamination))
	if cut >= len(scores) {
		cut = len(scores) - 1
	}
	m.ScoreThreshold = scores[cut]

	return m, nil
}

func buildIsoTree(sample [][]float64, depth, limit int, rng *rand.Rand) *isoNode {
	if depth >= limit || len(sample) <= 1 {
		return &isoNode{External: true, Size: len(sample)}
	}

	dim := len(sample[0])
	feature := rng.Intn(dim)

	lo, hi := sample[0][feature], sample[0][feature]
	for _, row := range sample {
		v := row[feature]
		if v < lo {
			lo = v
		}
		if v > hi {
			hi = v
		}
	}
	if lo == hi {
		return &isoNode{External: true, Size: len(sample)}
	}

	threshold := lo + rng.Float64()*(hi-lo)
	var left, right [][]float64
	for _, row := range sample {
		if row[feature] < threshold {
			left = append(left, row)
		} else {
			right = append(right, row)
		}
	}

	return &isoNode{
		Feature:   feature,
		Threshold: threshold,
		Left:      buildIsoTree(left, depth+1, limit, rng),
		Right:     buildIsoTree(right, depth+1, limit, rng),
	}
}

// pathLength walks a sample down a tree, adjusting external nodes by the
// average unsuccessful-search depth c(size).
func pathLength(n *isoNode, x []float64, depth float64) float64 {
	if n.External {
		return depth + avgPathLength(n.Size)
	}
	if x[n.Feature] < n.Threshold {
		return pathLength(n.Left, x, depth+1)
	}
	return pathLength(n.Right, x, depth+1)
}

// avgPathLength is c(n): the average path length of unsuccessful BST search.
func avgPathLength(n int) float64 {
	if n <= 1 {
		return 0
	}
	h := math.Log(float64(n-1)) + 0.5772156649 // Euler-Mascheroni constant
	return 2*h - 2*float64(n-1)/float64(n)
}

// Score returns the anomaly score in (0, 1); higher is more anomalous.
func (m *IsolationForest) Score(x []float64) float64 {
	sum := 0.0
	for _, tree := range m.Trees {
		sum += pathLength(tree, x, 0)
	}
	avg := sum / float64(len(m.Trees))
	return math.Pow(2, -avg/avgPathLength(m.SampleSize))
}

// Predict maps the outlier verdict onto the fraud label space:
// 1 for anomaly, 0 for inlier. Used for offline evaluation only.
func (m *IsolationForest) Predict(x []float64) int {
	if m.Score(x) >= m.ScoreThreshold {
		return 1
	}
	return 0
}
