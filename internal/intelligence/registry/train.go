package registry

import (
	"fmt"
	"math"
	"math/rand/v2"

	"github.com/yungbote/neurobridge-intelligence/internal/platform/numeric"
)

// syntheticWeights mirror the fallback readiness weighting; synthetic labels
// follow them plus gaussian noise.
var syntheticWeights = []float64{0.25, 0.15, 0.15, 0.15, 0.15, 0.10, 0.05}

type Sample struct {
	X []float64 `json:"x"`
	Y float64   `json:"y"`
}

type TrainOptions struct {
	Epochs       int
	LearningRate float64
}

func DefaultTrainOptions() TrainOptions {
	return TrainOptions{Epochs: 5000, LearningRate: 0.1}
}

type TrainReport struct {
	Samples int     `json:"samples"`
	Epochs  int     `json:"epochs"`
	RMSE    float64 `json:"rmse"`
}

// SyntheticSamples draws n readiness samples. Features are N(0.5, 0.3²)
// clipped to [0,1]; labels are the weighted sum plus N(0, 0.1²), clipped.
func SyntheticSamples(n int, seed uint64) []Sample {
	if n <= 0 {
		return nil
	}
	rng := rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15))
	out := make([]Sample, 0, n)
	for i := 0; i < n; i++ {
		x := make([]float64, len(syntheticWeights))
		y := 0.0
		for j, w := range syntheticWeights {
			x[j] = numeric.Clamp01(rng.NormFloat64()*0.3 + 0.5)
			y += w * x[j]
		}
		y += rng.NormFloat64() * 0.1
		out = append(out, Sample{X: x, Y: numeric.Clamp01(y)})
	}
	return out
}

// Train fits a linear regressor by full-batch gradient descent on squared
// error. All samples must share one dimension.
func Train(samples []Sample, opts TrainOptions) (*LinearModel, TrainReport, error) {
	if len(samples) == 0 {
		return nil, TrainReport{}, fmt.Errorf("train: no samples")
	}
	dim := len(samples[0].X)
	if dim == 0 {
		return nil, TrainReport{}, fmt.Errorf("train: empty feature vector")
	}
	for i, s := range samples {
		if len(s.X) != dim {
			return nil, TrainReport{}, fmt.Errorf("train: sample %d has %d features, want %d", i, len(s.X), dim)
		}
	}
	if opts.Epochs <= 0 {
		opts.Epochs = DefaultTrainOptions().Epochs
	}
	if opts.LearningRate <= 0 {
		opts.LearningRate = DefaultTrainOptions().LearningRate
	}

	m := &LinearModel{Weights: make([]float64, dim)}
	n := float64(len(samples))
	grad := make([]float64, dim)
	for epoch := 0; epoch < opts.Epochs; epoch++ {
		clear(grad)
		gradBias := 0.0
		for _, s := range samples {
			pred := m.Bias
			for j, w := range m.Weights {
				pred += w * s.X[j]
			}
			diff := pred - s.Y
			gradBias += diff
			for j := range grad {
				grad[j] += diff * s.X[j]
			}
		}
		m.Bias -= opts.LearningRate * 2 * gradBias / n
		for j := range m.Weights {
			m.Weights[j] -= opts.LearningRate * 2 * grad[j] / n
		}
	}
	if err := m.Validate(); err != nil {
		return nil, TrainReport{}, fmt.Errorf("train: diverged: %w", err)
	}
	return m, TrainReport{Samples: len(samples), Epochs: opts.Epochs, RMSE: RMSE(m, samples)}, nil
}

// RMSE of m over samples; mismatched samples are skipped.
func RMSE(m *LinearModel, samples []Sample) float64 {
	var sum float64
	var n int
	for _, s := range samples {
		pred, err := m.Predict(s.X)
		if err != nil {
			continue
		}
		sum += (pred - s.Y) * (pred - s.Y)
		n++
	}
	if n == 0 {
		return 0
	}
	return math.Sqrt(sum / float64(n))
}
