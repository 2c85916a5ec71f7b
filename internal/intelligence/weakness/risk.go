package weakness

import (
	"fmt"
	"math"

	"github.com/yungbote/neurobridge-intelligence/internal/domain/intelligence"
	"github.com/yungbote/neurobridge-intelligence/internal/intelligence/config"
	"github.com/yungbote/neurobridge-intelligence/internal/platform/numeric"
)

const (
	masteryWeight     = 0.35
	retentionWeight   = 0.25
	difficultyWeight  = 0.25
	consistencyWeight = 0.15
	// gap a component must exceed to name the signal
	signalCutoff = 0.3
)

func MasteryGap(m float64, p config.WeaknessParams) float64 {
	if m >= p.MasteryThreshold {
		return 0
	}
	return numeric.Clamp01((p.MasteryThreshold - m) / p.MasteryThreshold)
}

func RetentionRisk(r float64, p config.WeaknessParams) float64 {
	if r >= p.RetentionThreshold {
		return 0
	}
	return numeric.Clamp01(1 - math.Exp(-3*(1-r)))
}

func DifficultyGap(successRate float64, p config.WeaknessParams) float64 {
	return numeric.Clamp01(math.Abs(successRate-p.DifficultyTarget) / p.DifficultyTarget)
}

func ConsistencyScore(trend string) float64 {
	switch trend {
	case intelligence.TrendImproving:
		return 0.8
	case intelligence.TrendStable:
		return 0.6
	case intelligence.TrendDeclining:
		return 0.3
	default:
		return 0.5
	}
}

// RiskScore is the weighted gap sum on a 0-100 scale, discounted by up to 30%
// for consistent learners.
func RiskScore(masteryGap, retentionRisk, difficultyGap, consistency float64) float64 {
	weighted := masteryGap*masteryWeight +
		retentionRisk*retentionWeight +
		difficultyGap*difficultyWeight +
		(1-consistency)*consistencyWeight
	return numeric.ClampScore(weighted * (1 - 0.3*consistency) * 100)
}

// SignalType names the dominant gap. Ties resolve in the order mastery,
// retention, difficulty.
func SignalType(masteryGap, retentionRisk, difficultyGap float64) string {
	top := math.Max(masteryGap, math.Max(retentionRisk, difficultyGap))
	switch {
	case top == masteryGap && masteryGap > signalCutoff:
		return intelligence.SignalMasteryGap
	case top == retentionRisk && retentionRisk > signalCutoff:
		return intelligence.SignalRetentionDecay
	case top == difficultyGap && difficultyGap > signalCutoff:
		return intelligence.SignalPerformanceVariance
	default:
		return intelligence.SignalGeneralWeakness
	}
}

func Recommendation(signal string, mastery, retention float64, p config.WeaknessParams) string {
	switch signal {
	case intelligence.SignalMasteryGap:
		return fmt.Sprintf("Increase practice: current %.0f%% vs target %.0f%%", mastery*100, p.MasteryThreshold*100)
	case intelligence.SignalRetentionDecay:
		return fmt.Sprintf("Urgent review needed: retention at %.0f%%", retention*100)
	case intelligence.SignalPerformanceVariance:
		return "Mixed performance, focus on fundamentals"
	default:
		return "Targeted practice recommended"
	}
}
