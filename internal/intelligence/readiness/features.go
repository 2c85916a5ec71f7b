package readiness

import (
	"math"
	"time"

	"github.com/yungbote/neurobridge-intelligence/internal/domain/intelligence"
	"github.com/yungbote/neurobridge-intelligence/internal/intelligence/config"
	"github.com/yungbote/neurobridge-intelligence/internal/intelligence/mastery"
	"github.com/yungbote/neurobridge-intelligence/internal/intelligence/retention"
	"github.com/yungbote/neurobridge-intelligence/internal/intelligence/telemetry"
	"github.com/yungbote/neurobridge-intelligence/internal/platform/numeric"
)

const (
	stabilityScale     = 30.0
	maxDifficulty      = 3.0
	daysPreparedScale  = 60.0
	defaultDaysPrepped = 30.0
	neutralFeature     = 0.5
)

// Vector builds the seven readiness features in their fixed order.
func Vector(profile mastery.Profile, snap retention.Snapshot, feats telemetry.Features, params config.ReadinessParams, now time.Time) []float64 {
	total := len(profile.Topics)
	improving, completed := 0, 0
	for _, t := range profile.Topics {
		if t.Trend == intelligence.TrendImproving {
			improving++
		}
		if t.Mastery > params.GapThreshold {
			completed++
		}
	}
	denom := float64(max(total, 1))

	difficulty := neutralFeature
	mock := neutralFeature
	if feats.HasData() {
		difficulty = float64(feats.MaxDifficultyAttempted) / maxDifficulty
		mock = feats.ConsistencyScore
	}
	if feats.MockSuccessRate != nil {
		mock = *feats.MockSuccessRate
	}

	days := defaultDaysPrepped
	if profile.FirstTrackedAt != nil {
		days = math.Max(0, now.Sub(*profile.FirstTrackedAt).Hours()/24)
	}

	return []float64{
		numeric.Clamp01(profile.AverageMastery),
		numeric.Clamp01(snap.MeanStability() / stabilityScale),
		float64(improving) / denom,
		numeric.Clamp01(difficulty),
		numeric.Clamp01(mock),
		float64(completed) / denom,
		math.Min(days/daysPreparedScale, 1),
	}
}

// Fallback scores x with fixed weights through a logistic centered at 0.5.
// It returns a 0-100 score and a confidence in [0.3, 0.95].
func Fallback(x, weights []float64) (score, confidence float64) {
	dot := 0.0
	for i := range x {
		if i < len(weights) {
			dot += weights[i] * x[i]
		}
	}
	score = numeric.ClampScore(100 / (1 + math.Exp(-10*(dot-0.5))))
	confidence = numeric.ClampRange(1-0.5*numeric.Std(x), 0.3, 0.95)
	return score, confidence
}

// DaysToTarget assumes two points of improvement per day.
func DaysToTarget(score, target float64) int {
	return int(math.Floor(math.Max(0, target-score) / 2))
}

func PassingProbability(score float64, params config.ReadinessParams) float64 {
	return numeric.Logistic(score/100, params.PassSlope, params.PassCenter)
}

// Gaps returns up to params.MaxGaps topics below the gap threshold, in
// profile order.
func Gaps(profile mastery.Profile, params config.ReadinessParams) []string {
	out := []string{}
	for _, t := range profile.Topics {
		if len(out) >= params.MaxGaps {
			break
		}
		if t.Mastery < params.GapThreshold {
			out = append(out, t.Topic)
		}
	}
	return out
}
