package ml

import (
	"fmt"
	"math"
)

// LogisticRegression is the interpretable linear baseline. Features are
// standardized internally (the balance features span six orders of
// magnitude) and classes are weighted inversely to their frequency, the
// "balanced" scheme.
type LogisticRegression struct {
	Weights []float64 `json:"weights"`
	Bias    float64   `json:"bias"`

	// Standardization parameters captured at fit time.
	Mean  []float64 `json:"mean"`
	Scale []float64 `json:"scale"`
}

// LogisticConfig holds training hyperparameters.
type LogisticConfig struct {
	LearningRate float64
	Epochs       int
	L2           float64
}

// DefaultLogisticConfig mirrors a max_iter=1000 balanced linear fit.
func DefaultLogisticConfig() LogisticConfig {
	return LogisticConfig{
		LearningRate: 0.1,
		Epochs:       1000,
		L2:           1e-4,
	}
}

// FitLogistic trains a class-weighted logistic regression with full-batch
// gradient descent. Deterministic: no random state.
func FitLogistic(data *Dataset, cfg LogisticConfig) (*LogisticRegression, error) {
	n := data.Len()
	if n == 0 {
		return nil, fmt.Errorf("logistic: empty training set")
	}
	dim := len(data.X[0])

	mean, scale := standardizeParams(data.X)
	xs := make([][]float64, n)
	for i, row := range data.X {
		xs[i] = applyStandardize(row, mean, scale)
	}

	// Balanced class weights: n / (2 * count(class)).
	neg, pos := data.Counts()
	if neg == 0 || pos == 0 {
		return nil, fmt.Errorf("logistic: training set needs both classes (neg=%d pos=%d)", neg, pos)
	}
	wNeg := float64(n) / (2 * float64(neg))
	wPos := float64(n) / (2 * float64(pos))

	m := &LogisticRegression{
		Weights: make([]float64, dim),
		Mean:    mean,
		Scale:   scale,
	}

	grad := make([]float64, dim)
	for epoch := 0; epoch < cfg.Epochs; epoch++ {
		for j := range grad {
			grad[j] = 0
		}
		gradBias := 0.0
		totalWeight := 0.0

		for i, x := range xs {
			p := sigmoid(dot(m.Weights, x) + m.Bias)
			w := wNeg
			target := 0.0
			if data.Y[i] == 1 {
				w = wPos
				target = 1.0
			}
			err := (p - target) * w
			for j, xj := range x {
				grad[j] += err * xj
			}
			gradBias += err
			totalWeight += w
		}

		for j := range m.Weights {
			g := grad[j]/totalWeight + cfg.L2*m.Weights[j]
			m.Weights[j] -= cfg.LearningRate * g
		}
		m.Bias -= cfg.LearningRate * gradBias / totalWeight
	}

	return m, nil
}

// PredictProba returns the positive-class probability.
func (m *LogisticRegression) PredictProba(x []float64) float64 {
	z := applyStandardize(x, m.Mean, m.Scale)
	return sigmoid(dot(m.Weights, z) + m.Bias)
}

// Predict returns the binary label at the 0.5 threshold.
func (m *LogisticRegression) Predict(x []float64) int {
	if m.PredictProba(x) > 0.5 {
		return 1
	}
	return 0
}

func sigmoid(z float64) float64 {
	// Clamp to keep exp in range; beyond ±35 the result saturates anyway.
	if z > 35 {
		z = 35
	} else if z < -35 {
		z = -35
	}
	return 1 / (1 + math.Exp(-z))
}

func dot(a, b []float64) float64 {
	s := 0.0
	for i := range a {
		s += a[i] * b[i]
	}
	return s
}

func standardizeParams(x [][]float64) (mean, scale []float64) {
	n := len(x)
	dim := len(x[0])
	mean = make([]float64, dim)
	scale = make([]float64, dim)

	for _, row := range x {
		for j, v := range row {
			mean[j] += v
		}
	}
	for j := range mean {
		mean[j] /= float64(n)
	}
	for _, row := range x {
		for j, v := range row {
			d := v - mean[j]
			scale[j] += d * d
		}
	}
	for j := range scale {
		scale[j] = math.Sqrt(scale[j] / float64(n))
		if scale[j] == 0 {
			scale[j] = 1
		}
	}
	return mean, scale
}

func applyStandardize(x, mean, scale []float64) []float64 {
	z := make([]float64, len(x))
	for j, v := range x {
		z[j] = (v - mean[j]) / scale[j]
	}
	return z
}
