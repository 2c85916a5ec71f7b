package registry

import (
	"fmt"
	"math"
)

const ModelTypeLinear = "linear_regression"

// ReadinessKey names the readiness regressor in the registry.
const ReadinessKey = "readiness_linear"

// ReadinessFeatures is the fixed feature order of the readiness regressor.
var ReadinessFeatures = []string{
	"avg_mastery",
	"stability_score",
	"consistency",
	"difficulty_progression",
	"mock_interview_score",
	"completion_rate",
	"days_prepared",
}

// LinearModel is the serialized regressor: y = bias + w·x.
type LinearModel struct {
	Weights []float64 `json:"weights"`
	Bias    float64   `json:"bias"`
}

func (m *LinearModel) Validate() error {
	if m == nil {
		return fmt.Errorf("linear model: nil")
	}
	if len(m.Weights) == 0 {
		return fmt.Errorf("linear model: no weights")
	}
	for i, w := range append([]float64{m.Bias}, m.Weights...) {
		if math.IsNaN(w) || math.IsInf(w, 0) {
			return fmt.Errorf("linear model: coefficient %d is not finite", i)
		}
	}
	return nil
}

// Predict returns the raw regression output. It fails when x does not match
// the model's dimension.
func (m *LinearModel) Predict(x []float64) (float64, error) {
	if err := m.Validate(); err != nil {
		return 0, err
	}
	if len(x) != len(m.Weights) {
		return 0, fmt.Errorf("linear model: want %d features got %d", len(m.Weights), len(x))
	}
	y := m.Bias
	for i, w := range m.Weights {
		y += w * x[i]
	}
	if math.IsNaN(y) || math.IsInf(y, 0) {
		return 0, fmt.Errorf("linear model: non-finite prediction")
	}
	return y, nil
}
