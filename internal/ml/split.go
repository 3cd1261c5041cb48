package ml

import (
	"fmt"
	"math/rand"
)

// StratifiedSplit partitions a binary dataset into train and test splits,
// preserving the class ratio in both. The shuffle is seeded so repeated
// runs produce identical partitions.
func StratifiedSplit(data *Dataset, testFraction float64, seed int64) (train, test *Dataset, err error) {
	if testFraction <= 0 || testFraction >= 1 {
		return nil, nil, fmt.Errorf("split: test fraction must be in (0,1), got %g", testFraction)
	}
	neg, pos := data.Counts()
	if neg == 0 || pos == 0 {
		return nil, nil, fmt.Errorf("split: both classes required (neg=%d pos=%d)", neg, pos)
	}

	rng := rand.New(rand.NewSource(seed))

	var negIdx, posIdx []int
	for i, y := range data.Y {
		if y == 1 {
			posIdx = append(posIdx, i)
		} else {
			negIdx = append(negIdx, i)
		}
	}
	rng.Shuffle(len(negIdx), func(a, b int) { negIdx[a], negIdx[b] = negIdx[b], negIdx[a] })
	rng.Shuffle(len(posIdx), func(a, b int) { posIdx[a], posIdx[b] = posIdx[b], posIdx[a] })

	train = &Dataset{}
	test = &Dataset{}
	for _, idx := range [][]int{negIdx, posIdx} {
		nTest := int(float64(len(idx)) * testFraction)
		if nTest < 1 {
			nTest = 1
		}
		for n, i := range idx {
			if n < nTest {
				test.X = append(test.X, data.X[i])
				test.Y = append(test.Y, data.Y[i])
			} else {
				train.X = append(train.X, data.X[i])
				train.Y = append(train.Y, data.Y[i])
			}
		}
	}
	if train.Len() == 0 {
		return nil, nil, fmt.Errorf("split: empty train set")
	}
	return train, test, nil
}

// FilterClass returns the subset of the dataset belonging to one class.
// Used to train the anomaly detector on legitimate traffic only.
func FilterClass(data *Dataset, label int) *Dataset {
	out := &Dataset{}
	for i, y := range data.Y {
		if y == label {
			out.X = append(out.X, data.X[i])
			out.Y = append(out.Y, y)
		}
	}
	return out
}
