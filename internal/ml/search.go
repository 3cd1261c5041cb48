package ml

import (
	"fmt"
	"math/rand"
	"runtime"
	"sync"
)

// SearchResult reports the winning hyperparameters and their cross-validated
// average precision.
type SearchResult struct {
	Params GBTParams `json:"params"`
	Score  float64   `json:"score"`
}

// GBTGrid is the hyperparameter grid for the champion model search.
type GBTGrid struct {
	MaxDepths     []int
	LearningRates []float64
	NEstimators   []int
	Folds         int
	PosWeight     float64
	Seed          int64
	Workers       int
}

// DefaultGBTGrid covers depth and shrinkage tradeoffs without exploding the
// candidate count.
func DefaultGBTGrid() GBTGrid {
	return GBTGrid{
		MaxDepths:     []int{4, 6},
		LearningRates: []float64{0.1, 0.3},
		NEstimators:   []int{100, 200},
		Folds:         3,
		Seed:          42,
		Workers:       runtime.NumCPU(),
	}
}

// GridSearchGBT trains a gradient boosting model for every grid cell,
// scoring each by mean average precision across stratified folds.
// Candidates train concurrently on a bounded worker pool; the winner is
// refit on the complete training set before returning.
func GridSearchGBT(data *Dataset, grid GBTGrid) (*GradientBoosting, SearchResult, error) {
	if data.Len() == 0 {
		return nil, SearchResult{}, fmt.Errorf("search: empty dataset")
	}
	folds := grid.Folds
	if folds < 2 {
		folds = 3
	}
	workers := grid.Workers
	if workers < 1 {
		workers = 1
	}

	foldSets, err := stratifiedFolds(data, folds, grid.Seed)
	if err != nil {
		return nil, SearchResult{}, err
	}

	var candidates []GBTParams
	for _, d := range grid.MaxDepths {
		for _, lr := range grid.LearningRates {
			for _, n := range grid.NEstimators {
				candidates = append(candidates, GBTParams{
					MaxDepth:     d,
					LearningRate: lr,
					NEstimators:  n,
					PosWeight:    grid.PosWeight,
				})
			}
		}
	}

	scores := make([]float64, len(candidates))
	work := make(chan int, len(candidates))
	var wg sync.WaitGroup

	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for ci := range work {
				scores[ci] = crossValidateGBT(candidates[ci], foldSets)
			}
		}()
	}
	for ci := range candidates {
		work <- ci
	}
	close(work)
	wg.Wait()

	best := 0
	for i := 1; i < len(candidates); i++ {
		if scores[i] > scores[best] {
			best = i
		}
	}

	result := SearchResult{Params: candidates[best], Score: scores[best]}
	model, err := FitGBT(data, candidates[best])
	if err != nil {
		return nil, SearchResult{}, fmt.Errorf("search: refit winner: %w", err)
	}
	return model, result, nil
}

// crossValidateGBT returns mean fold AUPRC; a candidate that fails to train
// scores zero and drops out of contention.
func crossValidateGBT(params GBTParams, folds []foldSplit) float64 {
	total := 0.0
	for _, f := range folds {
		model, err := FitGBT(f.train, params)
		if err != nil {
			return 0
		}
		probs := make([]float64, f.test.Len())
		for i, x := range f.test.X {
			probs[i] = model.PredictProba(x)
		}
		total += AveragePrecision(probs, f.test.Y)
	}
	return total / float64(len(folds))
}

type foldSplit struct {
	train *Dataset
	test  *Dataset
}

// stratifiedFolds assigns samples to k folds round-robin within each class,
// after a seeded shuffle, so every fold carries fraud examples.
func stratifiedFolds(data *Dataset, k int, seed int64) ([]foldSplit, error) {
	neg, pos := data.Counts()
	if pos < k || neg < k {
		return nil, fmt.Errorf("search: need at least %d samples per class (neg=%d pos=%d)", k, neg, pos)
	}

	rng := rand.New(rand.NewSource(seed))
	assign := make([]int, data.Len())
	for _, label := range []int{0, 1} {
		var idx []int
		for i, y := range data.Y {
			if y == label {
				idx = append(idx, i)
			}
		}
		rng.Shuffle(len(idx), func(a, b int) { idx[a], idx[b] = idx[b], idx[a] })
		for n, i := range idx {
			assign[i] = n % k
		}
	}

	folds := make([]foldSplit, k)
	for f := 0; f < k; f++ {
		train := &Dataset{}
		test := &Dataset{}
		for i := range data.Y {
			if assign[i] == f {
				test.X = append(test.X, data.X[i])
				test.Y = append(test.Y, data.Y[i])
			} else {
				train.X = append(train.X, data.X[i])
				train.Y = append(train.Y, data.Y[i])
			}
		}
		folds[f] = foldSplit{train: train, test: test}
	}
	return folds, nil
}

// RFGrid is the randomized search space for the secondary card model.
type RFGrid struct {
	MaxDepths   []int
	NEstimators []int
	Draws       int
	Folds       int
	Seed        int64
	Workers     int
}

// DefaultRFGrid samples a handful of configurations rather than exhausting
// the grid.
func DefaultRFGrid() RFGrid {
	return RFGrid{
		MaxDepths:   []int{5, 10},
		NEstimators: []int{50, 100},
		Draws:       3,
		Folds:       3,
		Seed:        42,
		Workers:     runtime.NumCPU(),
	}
}

// RFSearchResult reports the winning random forest configuration.
type RFSearchResult struct {
	Params RFParams `json:"params"`
	Score  float64  `json:"score"`
}

// RandomizedSearchRF draws random grid cells, cross-validates each by
// average precision, and refits the winner on the full training set.
func RandomizedSearchRF(data *Dataset, grid RFGrid) (*RandomForest, RFSearchResult, error) {
	if data.Len() == 0 {
		return nil, RFSearchResult{}, fmt.Errorf("search: empty dataset")
	}
	folds := grid.Folds
	if folds < 2 {
		folds = 3
	}
	draws := grid.Draws
	if draws < 1 {
		draws = 1
	}
	workers := grid.Workers
	if workers < 1 {
		workers = 1
	}

	foldSets, err := stratifiedFolds(data, folds, grid.Seed)
	if err != nil {
		return nil, RFSearchResult{}, err
	}

	rng := rand.New(rand.NewSource(grid.Seed))
	seen := make(map[RFParams]bool)
	var candidates []RFParams
	for len(candidates) < draws && len(seen) < len(grid.MaxDepths)*len(grid.NEstimators) {
		p := RFParams{
			MaxDepth:    grid.MaxDepths[rng.Intn(len(grid.MaxDepths))],
			NEstimators: grid.NEstimators[rng.Intn(len(grid.NEstimators))],
		}
		if seen[p] {
			continue
		}
		seen[p] = true
		candidates = append(candidates, p)
	}

	scores := make([]float64, len(candidates))
	work := make(chan int, len(candidates))
	var wg sync.WaitGroup

	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for ci := range work {
				scores[ci] = crossValidateRF(candidates[ci], foldSets, grid.Seed)
			}
		}()
	}
	for ci := range candidates {
		work <- ci
	}
	close(work)
	wg.Wait()

	best := 0
	for i := 1; i < len(candidates); i++ {
		if scores[i] > scores[best] {
			best = i
		}
	}

	result := RFSearchResult{Params: candidates[best], Score: scores[best]}
	model, err := FitRandomForest(data, candidates[best], grid.Seed)
	if err != nil {
		return nil, RFSearchResult{}, fmt.Errorf("search: refit winner: %w", err)
	}
	return model, result, nil
}

func crossValidateRF(params RFParams, folds []foldSplit, seed int64) float64 {
	total := 0.0
	for _, f := range folds {
		model, err := FitRandomForest(f.train, params, seed)
		if err != nil {
			return 0
		}
		probs := make([]float64, f.test.Len())
		for i, x := range f.test.X {
			probs[i] = model.PredictProba(x)
		}
		total += AveragePrecision(probs, f.test.Y)
	}
	return total / float64(len(folds))
}
