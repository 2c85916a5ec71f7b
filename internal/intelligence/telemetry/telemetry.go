// Package telemetry turns raw practice attempts into per-learner feature
// summaries consumed by the weakness and readiness estimators.
package telemetry

import (
	"context"
	"strings"
	"time"

	"github.com/yungbote/neurobridge-intelligence/internal/data/repos"
	types "github.com/yungbote/neurobridge-intelligence/internal/domain"
	"github.com/yungbote/neurobridge-intelligence/internal/observability"
	"github.com/yungbote/neurobridge-intelligence/internal/platform/apierr"
	"github.com/yungbote/neurobridge-intelligence/internal/platform/dbctx"
	"github.com/yungbote/neurobridge-intelligence/internal/platform/logger"
	"github.com/yungbote/neurobridge-intelligence/internal/platform/numeric"
)

const (
	recentWindow      = 10
	engagementCeiling = 100.0
)

// Features is the aggregate view of a learner's attempts. Defaults apply when
// a learner has no attempts at all.
type Features struct {
	AttemptCount           int                `json:"attempt_count"`
	SuccessRate            float64            `json:"success_rate"`
	AvgSolveTimeMS         float64            `json:"avg_solve_time_ms"`
	AvgHintsUsed           float64            `json:"avg_hints_used"`
	MaxDifficultyAttempted int                `json:"max_difficulty_attempted"`
	ConsistencyScore       float64            `json:"consistency_score"`
	Engagement             float64            `json:"engagement"`
	MockAttempts           int                `json:"mock_attempts"`
	MockSuccessRate        *float64           `json:"mock_success_rate,omitempty"`
	PerTopicSuccess        map[string]float64 `json:"per_topic_success"`
}

func DefaultFeatures() Features {
	return Features{
		SuccessRate:            0.5,
		ConsistencyScore:       0.5,
		MaxDifficultyAttempted: 1,
		PerTopicSuccess:        map[string]float64{},
	}
}

// HasData reports whether any attempt backs the features.
func (f Features) HasData() bool { return f.AttemptCount > 0 }

// Summarize aggregates attempts, which must be ordered oldest first.
func Summarize(attempts []*types.PracticeAttempt) Features {
	out := DefaultFeatures()
	rows := make([]*types.PracticeAttempt, 0, len(attempts))
	for _, a := range attempts {
		if a != nil {
			rows = append(rows, a)
		}
	}
	if len(rows) == 0 {
		return out
	}

	var correct, mockCorrect, hints int
	var solveMS float64
	maxDiff := 1
	topicTotal := map[string]int{}
	topicCorrect := map[string]int{}
	for _, a := range rows {
		if a.Correct {
			correct++
		}
		hints += max(0, a.HintsUsed)
		solveMS += float64(max(0, a.TimeTakenMS))
		if d := ClampDifficulty(a.Difficulty); d > maxDiff {
			maxDiff = d
		}
		if a.IsMockInterview {
			out.MockAttempts++
			if a.Correct {
				mockCorrect++
			}
		}
		topicTotal[a.Topic]++
		if a.Correct {
			topicCorrect[a.Topic]++
		}
	}

	n := float64(len(rows))
	out.AttemptCount = len(rows)
	out.SuccessRate = float64(correct) / n
	out.AvgSolveTimeMS = solveMS / n
	out.AvgHintsUsed = float64(hints) / n
	out.MaxDifficultyAttempted = maxDiff
	out.Engagement = numeric.Clamp01(n / engagementCeiling)

	recent := rows
	if len(recent) > recentWindow {
		recent = recent[len(recent)-recentWindow:]
	}
	recentCorrect := 0
	for _, a := range recent {
		if a.Correct {
			recentCorrect++
		}
	}
	out.ConsistencyScore = float64(recentCorrect) / float64(len(recent))

	if out.MockAttempts > 0 {
		rate := float64(mockCorrect) / float64(out.MockAttempts)
		out.MockSuccessRate = &rate
	}
	for topic, total := range topicTotal {
		out.PerTopicSuccess[topic] = float64(topicCorrect[topic]) / float64(total)
	}
	return out
}

// ClampDifficulty maps a raw difficulty onto the 1-3 scale; 0 means unknown
// and counts as 1.
func ClampDifficulty(d int) int {
	switch {
	case d < 1:
		return 1
	case d > 3:
		return 3
	default:
		return d
	}
}

type Service interface {
	Features(ctx context.Context, learnerID string) (Features, error)
	Record(ctx context.Context, attempts []*types.PracticeAttempt) error
}

type service struct {
	attempts repos.PracticeAttemptRepo
	log      *logger.Logger
	metrics  *observability.Metrics
}

func NewService(attempts repos.PracticeAttemptRepo, log *logger.Logger, metrics *observability.Metrics) Service {
	return &service{
		attempts: attempts,
		log:      log.With("service", "TelemetryAggregator"),
		metrics:  metrics,
	}
}

// Features never fails on storage errors; it logs and returns the defaults.
func (s *service) Features(ctx context.Context, learnerID string) (Features, error) {
	learnerID = strings.TrimSpace(learnerID)
	if learnerID == "" {
		return Features{}, apierr.Invalid("learner_id is required")
	}
	ctx, span := observability.StartSpan(ctx, "telemetry.Features")
	start := time.Now()
	defer func() { observability.EndSpan(span, nil) }()

	rows, err := s.attempts.ListByLearner(dbctx.Of(ctx), learnerID, 0)
	s.metrics.ObserveOp("telemetry", "features", time.Since(start), err)
	if err != nil {
		if ctx.Err() != nil {
			return Features{}, ctx.Err()
		}
		s.log.Warn("telemetry read failed, using defaults", "learner_id", learnerID, "error", err)
		return DefaultFeatures(), nil
	}
	return Summarize(rows), nil
}

func (s *service) Record(ctx context.Context, attempts []*types.PracticeAttempt) error {
	if len(attempts) == 0 {
		return nil
	}
	for i, a := range attempts {
		if a == nil {
			return apierr.Invalid("attempt %d is null", i)
		}
		a.LearnerID = strings.TrimSpace(a.LearnerID)
		a.Topic = strings.TrimSpace(a.Topic)
		if a.LearnerID == "" || a.Topic == "" {
			return apierr.Invalid("attempt %d: learner_id and topic are required", i)
		}
		if a.HintsUsed < 0 || a.TimeTakenMS < 0 {
			return apierr.Invalid("attempt %d: hints_used and time_taken_ms must be non-negative", i)
		}
		a.Difficulty = ClampDifficulty(a.Difficulty)
	}

	ctx, span := observability.StartSpan(ctx, "telemetry.Record")
	start := time.Now()
	_, err := s.attempts.Create(dbctx.Of(ctx), attempts)
	s.metrics.ObserveOp("telemetry", "record", time.Since(start), err)
	observability.EndSpan(span, err)
	if err != nil {
		return apierr.Unavailable("record attempts", err)
	}
	return nil
}
