package retention

import (
	"math"

	"github.com/yungbote/neurobridge-intelligence/internal/domain/intelligence"
	"github.com/yungbote/neurobridge-intelligence/internal/intelligence/config"
	"github.com/yungbote/neurobridge-intelligence/internal/platform/numeric"
)

const fallbackRevisionDays = 3.0

// Probability is R(t) = exp(-t/S) with t converted from hours to days. A
// non-positive stability is replaced by the configured default.
func Probability(elapsedHours, stabilityDays float64, params config.RetentionParams) float64 {
	if stabilityDays <= 0 {
		stabilityDays = params.DefaultStabilityDays
	}
	days := math.Max(0, elapsedHours) / 24
	return numeric.Clamp01(math.Exp(-days / stabilityDays))
}

// NextStability grows stability after a successful review, more so when the
// memory had decayed less, and halves it after a failed one.
func NextStability(stabilityDays float64, successful bool, retentionAtReview float64, params config.RetentionParams) float64 {
	if stabilityDays <= 0 {
		stabilityDays = params.DefaultStabilityDays
	}
	var next float64
	if successful {
		factor := params.SuccessMultiplier * (2 - (1 - numeric.Clamp01(retentionAtReview)))
		next = stabilityDays * factor
	} else {
		next = stabilityDays * params.FailureMultiplier
	}
	return numeric.ClampRange(next, params.MinStabilityDays, params.MaxStabilityDays)
}

// RevisionIntervalDays solves exp(-t/S) = target for t.
func RevisionIntervalDays(stabilityDays float64, params config.RetentionParams) float64 {
	target := params.TargetRetention
	if stabilityDays <= 0 || target >= 1 || target <= 0 {
		return fallbackRevisionDays
	}
	t := -stabilityDays * math.Log(target)
	return numeric.ClampRange(t, params.MinStabilityDays, params.MaxStabilityDays)
}

func Urgency(r float64) string {
	switch {
	case r < 0.3:
		return intelligence.UrgencyCritical
	case r < 0.5:
		return intelligence.UrgencyHigh
	case r < 0.75:
		return intelligence.UrgencyMedium
	default:
		return intelligence.UrgencyLow
	}
}
