// Package simulator projects what-if preparation scenarios forward in time.
// It only reads learner state and never writes.
package simulator

import (
	"context"
	"slices"
	"strings"
	"time"

	"github.com/yungbote/neurobridge-intelligence/internal/intelligence/mastery"
	"github.com/yungbote/neurobridge-intelligence/internal/observability"
	"github.com/yungbote/neurobridge-intelligence/internal/platform/apierr"
	"github.com/yungbote/neurobridge-intelligence/internal/platform/logger"
	"github.com/yungbote/neurobridge-intelligence/internal/platform/numeric"
)

const (
	MaxHorizonDays     = 365
	DefaultHorizonDays = 30
	baselineHours      = 2.0
	focusedRate        = 0.02
	passiveRate        = 0.005
	completionScore    = 80.0
)

var consistencyFactors = map[string]float64{
	"high":   1.2,
	"medium": 1.0,
	"low":    0.7,
}

// ConsistencyFactor maps a consistency label to its multiplier; unknown
// labels count as medium.
func ConsistencyFactor(label string) float64 {
	if f, ok := consistencyFactors[strings.ToLower(strings.TrimSpace(label))]; ok {
		return f
	}
	return 1.0
}

type Scenario struct {
	DailyHours  float64  `json:"daily_hours"`
	FocusTopics []string `json:"focus_topics"`
	HorizonDays int      `json:"horizon_days"`
	Consistency string   `json:"consistency"`
}

type Result struct {
	LearnerID      string               `json:"learner_id"`
	Scenario       Scenario             `json:"scenario"`
	Trajectory     []float64            `json:"trajectory"`
	MasteryCurves  map[string][]float64 `json:"mastery_curves"`
	CompletionDate *time.Time           `json:"completion_date,omitempty"`
	ReachedTarget  bool                 `json:"reached_target"`
	Confidence     float64              `json:"confidence"`
}

type Service interface {
	Simulate(ctx context.Context, learnerID string, sc Scenario) (*Result, error)
}

type service struct {
	mastery mastery.ProfileReader
	log     *logger.Logger
	metrics *observability.Metrics
	now     func() time.Time
}

func NewService(masteryReader mastery.ProfileReader, log *logger.Logger, metrics *observability.Metrics) Service {
	return &service{
		mastery: masteryReader,
		log:     log.With("service", "ScenarioSimulator"),
		metrics: metrics,
		now:     func() time.Time { return time.Now().UTC() },
	}
}

func normalize(sc Scenario) (Scenario, error) {
	if sc.DailyHours < 0 || sc.DailyHours > 24 {
		return sc, apierr.Invalid("daily_hours must be within 0-24")
	}
	if sc.HorizonDays < 0 {
		return sc, apierr.Invalid("horizon_days must be non-negative")
	}
	if sc.HorizonDays == 0 {
		sc.HorizonDays = DefaultHorizonDays
	}
	sc.HorizonDays = min(sc.HorizonDays, MaxHorizonDays)
	if sc.Consistency == "" {
		sc.Consistency = "medium"
	}
	sc.FocusTopics = slices.Clone(sc.FocusTopics)
	return sc, nil
}

func (s *service) Simulate(ctx context.Context, learnerID string, sc Scenario) (out *Result, err error) {
	learnerID = strings.TrimSpace(learnerID)
	if learnerID == "" {
		return nil, apierr.Invalid("learner_id is required")
	}
	sc, err = normalize(sc)
	if err != nil {
		return nil, err
	}
	ctx, span := observability.StartSpan(ctx, "simulator.Simulate")
	start := time.Now()
	defer func() {
		s.metrics.ObserveOp("simulator", "simulate", time.Since(start), err)
		observability.EndSpan(span, err)
	}()

	profile, err := s.mastery.Profile(ctx, learnerID)
	if err != nil {
		return nil, err
	}
	out = Project(profile, sc, s.now())
	out.LearnerID = learnerID
	return out, nil
}

// Project runs the day-by-day projection. Mastery accumulates across days
// and is capped at 1.
func Project(profile mastery.Profile, sc Scenario, now time.Time) *Result {
	cons := ConsistencyFactor(sc.Consistency)
	study := sc.DailyHours / baselineHours
	focus := make(map[string]bool, len(sc.FocusTopics))
	for _, t := range sc.FocusTopics {
		focus[t] = true
	}

	current := make([]float64, len(profile.Topics))
	curves := make(map[string][]float64, len(profile.Topics))
	for i, t := range profile.Topics {
		current[i] = numeric.Clamp01(t.Mastery)
		curves[t.Topic] = make([]float64, 0, sc.HorizonDays)
	}

	out := &Result{
		Scenario:      sc,
		Trajectory:    make([]float64, 0, sc.HorizonDays),
		MasteryCurves: curves,
		Confidence:    min(0.95, 0.7+0.2*cons),
	}
	if len(profile.Topics) == 0 {
		return out
	}
	for day := 0; day < sc.HorizonDays; day++ {
		for i, t := range profile.Topics {
			gain := passiveRate * cons
			if focus[t.Topic] {
				gain = focusedRate * study * cons
			}
			current[i] = numeric.Clamp01(current[i] + gain)
			curves[t.Topic] = append(curves[t.Topic], current[i])
		}
		readiness := numeric.ClampScore(numeric.Mean(current) * 100)
		out.Trajectory = append(out.Trajectory, readiness)
		if !out.ReachedTarget && readiness >= completionScore {
			at := now.AddDate(0, 0, day)
			out.CompletionDate = &at
			out.ReachedTarget = true
		}
	}
	return out
}
