package ml

import (
	"fmt"
	"math/rand"
	"sort"
)

// SMOTEConfig controls synthetic minority oversampling.
type SMOTEConfig struct {
	// KNeighbors is the number of same-class nearest neighbors interpolation
	// candidates are drawn from.
	KNeighbors int
	Seed       int64
}

// DefaultSMOTEConfig matches the conventional k=5 setup.
func DefaultSMOTEConfig() SMOTEConfig {
	return SMOTEConfig{KNeighbors: 5, Seed: 42}
}

// SMOTE balances a binary training set by synthesizing minority examples:
// each synthetic sample interpolates between a minority sample and one of
// its k nearest same-class neighbors. Applied only to the training split;
// oversampling the test split would leak synthetic structure into
// evaluation.
func SMOTE(data *Dataset, cfg SMOTEConfig) (*Dataset, error) {
	neg, pos := data.Counts()
	if pos == 0 || neg == 0 {
		return nil, fmt.Errorf("smote: both classes required (neg=%d pos=%d)", neg, pos)
	}

	minorityLabel := 1
	minorityCount, majorityCount := pos, neg
	if neg < pos {
		minorityLabel = 0
		minorityCount, majorityCount = neg, pos
	}

	need := majorityCount - minorityCount
	if need == 0 {
		return data, nil
	}

	var minority [][]float64
	for i, y := range data.Y {
		if y == minorityLabel {
			minority = append(minority, data.X[i])
		}
	}

	k := cfg.KNeighbors
	if k <= 0 {
		k = 5
	}
	if k >= len(minority) {
		k = len(minority) - 1
	}
	if k < 1 {
		return nil, fmt.Errorf("smote: need at least 2 minority samples, got %d", len(minority))
	}

	neighbors := nearestNeighbors(minority, k)
	rng := rand.New(rand.NewSource(cfg.Seed))

	out := &Dataset{
		X: make([][]float64, 0, data.Len()+need),
		Y: make([]int, 0, data.Len()+need),
	}
	out.X = append(out.X, data.X...)
	out.Y = append(out.Y, data.Y...)

	for s := 0; s < need; s++ {
		i := s % len(minority)
		base := minority[i]
		nbr := minority[neighbors[i][rng.Intn(k)]]

		gap := rng.Float64()
		synth := make([]float64, len(base))
		for j := range base {
			synth[j] = base[j] + gap*(nbr[j]-base[j])
		}
		out.X = append(out.X, synth)
		out.Y = append(out.Y, minorityLabel)
	}

	return out, nil
}

// nearestNeighbors returns, for each sample, the indices of its k nearest
// neighbors by squared Euclidean distance (excluding itself).
func nearestNeighbors(x [][]float64, k int) [][]int {
	type distIdx struct {
		d   float64
		idx int
	}

	out := make([][]int, len(x))
	for i := range x {
		dists := make([]distIdx, 0, len(x)-1)
		for j := range x {
			if i == j {
				continue
			}
			d := 0.0
			for f := range x[i] {
				diff := x[i][f] - x[j][f]
				d += diff * diff
			}
			dists = append(dists, distIdx{d, j})
		}
		sort.Slice(dists, func(a, b int) bool {
			if dists[a].d != dists[b].d {
				return dists[a].d < dists[b].d
			}
			return dists[a].idx < dists[b].idx
		})

		nn := make([]int, k)
		for n := 0; n < k; n++ {
			nn[n] = dists[n].idx
		}
		out[i] = nn
	}
	return out
}
