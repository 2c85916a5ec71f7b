package mastery

import (
	"math"
	"time"

	"github.com/yungbote/neurobridge-intelligence/internal/domain/intelligence"
	"github.com/yungbote/neurobridge-intelligence/internal/intelligence/config"
	"github.com/yungbote/neurobridge-intelligence/internal/platform/numeric"
)

// Attempt is one observed practice answer. Difficulty is on the 1-3 scale; an
// explicit DifficultyWeight takes precedence over it.
type Attempt struct {
	Correct          bool       `json:"correct"`
	Difficulty       int        `json:"difficulty,omitempty"`
	DifficultyWeight float64    `json:"difficulty_weight,omitempty"`
	HintsUsed        int        `json:"hints_used,omitempty"`
	TimeFactor       float64    `json:"time_factor,omitempty"`
	TimeTakenMS      int64      `json:"time_taken_ms,omitempty"`
	IsMockInterview  bool       `json:"is_mock_interview,omitempty"`
	OccurredAt       *time.Time `json:"occurred_at,omitempty"`
}

const (
	minWeight = 0.5
	maxWeight = 2.0
	// decay applied to the posterior after an incorrect answer
	incorrectDecay = 0.95
)

// Weight is the multiplier applied to the learning rate for this attempt.
func (a Attempt) Weight() float64 {
	w := 1.0
	switch {
	case a.DifficultyWeight > 0:
		w = a.DifficultyWeight
	case a.Difficulty > 0:
		w = 0.5 + float64(a.Difficulty)/3
	}
	return numeric.ClampRange(w, minWeight, maxWeight)
}

// Posterior conditions p on the observed answer. A zero denominator keeps p.
func Posterior(p float64, correct bool, params config.MasteryParams) float64 {
	var num, den float64
	if correct {
		num = p * (1 - params.PSlip)
		den = num + (1-p)*params.PGuess
	} else {
		num = p * params.PSlip
		den = num + (1-p)*(1-params.PGuess)
	}
	if den <= 0 {
		return p
	}
	return numeric.Clamp01(num / den)
}

// Transition applies the learning step that follows an observation.
func Transition(post float64, a Attempt, params config.MasteryParams) float64 {
	if !a.Correct {
		return numeric.Clamp01(post * incorrectDecay)
	}
	hintFactor := math.Max(0.5, 1-0.2*float64(max(0, a.HintsUsed)))
	learn := numeric.Clamp01(params.PLearn * a.Weight() * hintFactor)
	return numeric.Clamp01(post + (1-post)*learn)
}

// StepConfidence measures how far p sits from the undecided midpoint.
func StepConfidence(p float64) float64 {
	return numeric.Clamp01(1 - math.Exp(-2*math.Abs(p-0.5)))
}

type Step struct {
	Correct   bool    `json:"correct"`
	Weight    float64 `json:"weight"`
	Posterior float64 `json:"posterior"`
	Updated   float64 `json:"updated"`
}

// Run folds attempts into prior and returns the final probability, the batch
// confidence (0.5 when attempts is empty) and the per-attempt trace.
func Run(prior float64, attempts []Attempt, params config.MasteryParams) (float64, float64, []Step) {
	p := numeric.Clamp01(prior)
	steps := make([]Step, 0, len(attempts))
	confs := make([]float64, 0, len(attempts))
	for _, a := range attempts {
		post := Posterior(p, a.Correct, params)
		p = Transition(post, a, params)
		confs = append(confs, StepConfidence(p))
		steps = append(steps, Step{Correct: a.Correct, Weight: a.Weight(), Posterior: post, Updated: p})
	}
	conf := 0.5
	if len(confs) > 0 {
		conf = numeric.Mean(confs)
	}
	return p, numeric.Clamp01(conf), steps
}

// Trend compares the new estimate to the stored one. Without a stored record
// the comparison is against the prior with no dead band.
func Trend(posterior, prior float64, hadRecord bool, band float64) string {
	if !hadRecord {
		if posterior > prior {
			return intelligence.TrendImproving
		}
		return intelligence.TrendStable
	}
	switch {
	case posterior > prior+band:
		return intelligence.TrendImproving
	case posterior < prior-band:
		return intelligence.TrendDeclining
	default:
		return intelligence.TrendStable
	}
}

func RecommendedDifficulty(p float64) string {
	switch {
	case p < 0.4:
		return intelligence.DifficultyEasy
	case p < 0.7:
		return intelligence.DifficultyMedium
	default:
		return intelligence.DifficultyHard
	}
}
