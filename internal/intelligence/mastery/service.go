// Package mastery estimates per-topic skill mastery with Bayesian Knowledge
// Tracing and owns the topic_mastery table.
package mastery

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	"go.opentelemetry.io/otel/attribute"

	"github.com/yungbote/neurobridge-intelligence/internal/data/repos"
	types "github.com/yungbote/neurobridge-intelligence/internal/domain"
	"github.com/yungbote/neurobridge-intelligence/internal/intelligence/config"
	"github.com/yungbote/neurobridge-intelligence/internal/intelligence/keylock"
	"github.com/yungbote/neurobridge-intelligence/internal/observability"
	"github.com/yungbote/neurobridge-intelligence/internal/platform/apierr"
	"github.com/yungbote/neurobridge-intelligence/internal/platform/dbctx"
	"github.com/yungbote/neurobridge-intelligence/internal/platform/logger"
	"github.com/yungbote/neurobridge-intelligence/internal/platform/numeric"
)

type Explainability struct {
	Reason            string               `json:"reason"`
	Model             string               `json:"model"`
	PriorProbability  float64              `json:"prior_probability"`
	AttemptsProcessed int                  `json:"attempts_processed"`
	CorrectCount      int                  `json:"correct_count"`
	SuccessRate       float64              `json:"success_rate"`
	Steps             []Step               `json:"steps"`
	Parameters        config.MasteryParams `json:"parameters"`
}

type Metrics struct {
	LearnerID             string         `json:"learner_id"`
	Topic                 string         `json:"topic"`
	MasteryProbability    float64        `json:"mastery_probability"`
	Confidence            float64        `json:"confidence"`
	Trend                 string         `json:"improvement_trend"`
	AttemptsCount         int            `json:"attempts_count"`
	LastAttemptAt         *time.Time     `json:"last_attempt_at,omitempty"`
	RecommendedDifficulty string         `json:"recommended_difficulty"`
	Explainability        Explainability `json:"explainability"`
}

type TopicSummary struct {
	Topic      string    `json:"topic"`
	Mastery    float64   `json:"mastery"`
	Confidence float64   `json:"confidence"`
	Trend      string    `json:"trend"`
	Attempts   int       `json:"attempts"`
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`
}

type Profile struct {
	LearnerID      string         `json:"learner_id"`
	AverageMastery float64        `json:"average_mastery"`
	TopicsCount    int            `json:"topics_count"`
	StrongTopics   int            `json:"strong_topics"`
	WeakTopics     int            `json:"weak_topics"`
	FirstTrackedAt *time.Time     `json:"first_tracked_at,omitempty"`
	Topics         []TopicSummary `json:"topics"`
}

// Mastery returns the stored probability for topic, if the profile has one.
func (p Profile) Mastery(topic string) (float64, bool) {
	for _, t := range p.Topics {
		if t.Topic == topic {
			return t.Mastery, true
		}
	}
	return 0, false
}

// ProfileReader is the read side other estimators depend on.
type ProfileReader interface {
	Profile(ctx context.Context, learnerID string) (Profile, error)
}

// AttemptRecorder receives the raw attempts after a successful update.
type AttemptRecorder interface {
	Record(ctx context.Context, attempts []*types.PracticeAttempt) error
}

type Service interface {
	ProfileReader
	Update(ctx context.Context, learnerID, topic string, attempts []Attempt) (*Metrics, error)
	Get(ctx context.Context, learnerID, topic string) (*types.TopicMastery, error)
}

type service struct {
	repo     repos.TopicMasteryRepo
	locker   keylock.Locker
	recorder AttemptRecorder
	params   config.MasteryParams
	log      *logger.Logger
	metrics  *observability.Metrics
	now      func() time.Time
}

// NewService wires the estimator. recorder may be nil.
func NewService(
	repo repos.TopicMasteryRepo,
	locker keylock.Locker,
	recorder AttemptRecorder,
	params config.MasteryParams,
	log *logger.Logger,
	metrics *observability.Metrics,
) Service {
	return &service{
		repo:     repo,
		locker:   locker,
		recorder: recorder,
		params:   params,
		log:      log.With("service", "MasteryEstimator"),
		metrics:  metrics,
		now:      func() time.Time { return time.Now().UTC() },
	}
}

func validateAttempts(attempts []Attempt) error {
	if len(attempts) == 0 {
		return apierr.Invalid("attempts must not be empty")
	}
	for i, a := range attempts {
		if a.Difficulty < 0 || a.Difficulty > 3 {
			return apierr.Invalid("attempt %d: difficulty must be within 1-3", i)
		}
		if a.DifficultyWeight < 0 || a.HintsUsed < 0 || a.TimeTakenMS < 0 || a.TimeFactor < 0 {
			return apierr.Invalid("attempt %d: numeric fields must be non-negative", i)
		}
	}
	return nil
}

func (s *service) Update(ctx context.Context, learnerID, topic string, attempts []Attempt) (out *Metrics, err error) {
	learnerID, topic = strings.TrimSpace(learnerID), strings.TrimSpace(topic)
	if learnerID == "" || topic == "" {
		return nil, apierr.Invalid("learner_id and topic are required")
	}
	if err := validateAttempts(attempts); err != nil {
		return nil, err
	}

	ctx, span := observability.StartSpan(ctx, "mastery.Update", attribute.String("topic", topic), attribute.Int("attempts", len(attempts)))
	start := time.Now()
	defer func() {
		s.metrics.ObserveOp("mastery", "update", time.Since(start), err)
		observability.EndSpan(span, err)
	}()

	unlock, err := s.locker.Lock(ctx, keylock.Key("mastery", learnerID, topic))
	if err != nil {
		return nil, fmt.Errorf("lock mastery key: %w", err)
	}
	defer unlock()

	dbc := dbctx.Of(ctx)
	stored, err := s.repo.Get(dbc, learnerID, topic)
	if err != nil {
		return nil, apierr.Unavailable("load mastery", err)
	}

	prior := s.params.PInit
	prevAttempts := 0
	if stored != nil {
		prior = numeric.Clamp01(stored.MasteryProbability)
		prevAttempts = stored.AttemptsCount
	}

	posterior, confidence, steps := Run(prior, attempts, s.params)
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	trend := Trend(posterior, prior, stored != nil, s.params.TrendBand)
	difficulty := RecommendedDifficulty(posterior)

	now := s.now()
	lastAt := now
	for _, a := range attempts {
		if a.OccurredAt != nil && a.OccurredAt.After(lastAt) {
			lastAt = a.OccurredAt.UTC()
		}
	}

	row := &types.TopicMastery{
		LearnerID:             learnerID,
		Topic:                 topic,
		MasteryProbability:    posterior,
		Confidence:            confidence,
		Trend:                 trend,
		AttemptsCount:         prevAttempts + len(attempts),
		RecommendedDifficulty: difficulty,
		LastAttemptAt:         &lastAt,
	}
	if stored != nil {
		row.ID = stored.ID
		row.CreatedAt = stored.CreatedAt
	}
	if err := s.repo.Upsert(dbc, row); err != nil {
		return nil, apierr.Unavailable("save mastery", err)
	}

	correct := 0
	for _, a := range attempts {
		if a.Correct {
			correct++
		}
	}
	successRate := float64(correct) / float64(len(attempts))

	s.recordAttempts(ctx, learnerID, topic, attempts, now)

	s.log.Debug("mastery updated",
		"learner_id", learnerID,
		"topic", topic,
		"prior", prior,
		"posterior", posterior,
		"trend", trend,
	)

	return &Metrics{
		LearnerID:             learnerID,
		Topic:                 topic,
		MasteryProbability:    posterior,
		Confidence:            confidence,
		Trend:                 trend,
		AttemptsCount:         row.AttemptsCount,
		LastAttemptAt:         &lastAt,
		RecommendedDifficulty: difficulty,
		Explainability: Explainability{
			Reason: fmt.Sprintf("Mastery estimated at %.1f%% based on %d attempts (%d correct)",
				posterior*100, len(attempts), correct),
			Model:             "bayesian_knowledge_tracing",
			PriorProbability:  prior,
			AttemptsProcessed: len(attempts),
			CorrectCount:      correct,
			SuccessRate:       successRate,
			Steps:             steps,
			Parameters:        s.params,
		},
	}, nil
}

// recordAttempts feeds telemetry. The mastery row is already committed, so a
// failure here is logged and not returned.
func (s *service) recordAttempts(ctx context.Context, learnerID, topic string, attempts []Attempt, now time.Time) {
	if s.recorder == nil {
		return
	}
	rows := make([]*types.PracticeAttempt, 0, len(attempts))
	for i, a := range attempts {
		at := now.Add(time.Duration(i-len(attempts)+1) * time.Millisecond)
		if a.OccurredAt != nil {
			at = a.OccurredAt.UTC()
		}
		rows = append(rows, &types.PracticeAttempt{
			LearnerID:       learnerID,
			Topic:           topic,
			Correct:         a.Correct,
			Difficulty:      a.Difficulty,
			HintsUsed:       a.HintsUsed,
			TimeTakenMS:     a.TimeTakenMS,
			IsMockInterview: a.IsMockInterview,
			OccurredAt:      at,
		})
	}
	if err := s.recorder.Record(ctx, rows); err != nil {
		s.log.Warn("telemetry record failed", "learner_id", learnerID, "topic", topic, "error", err)
	}
}

func (s *service) Get(ctx context.Context, learnerID, topic string) (*types.TopicMastery, error) {
	learnerID, topic = strings.TrimSpace(learnerID), strings.TrimSpace(topic)
	if learnerID == "" || topic == "" {
		return nil, apierr.Invalid("learner_id and topic are required")
	}
	row, err := s.repo.Get(dbctx.Of(ctx), learnerID, topic)
	if err != nil {
		s.log.Warn("mastery read failed", "learner_id", learnerID, "topic", topic, "error", err)
		return nil, nil
	}
	return row, nil
}

// Profile degrades to an empty profile when the store is unreachable.
func (s *service) Profile(ctx context.Context, learnerID string) (Profile, error) {
	learnerID = strings.TrimSpace(learnerID)
	if learnerID == "" {
		return Profile{}, apierr.Invalid("learner_id is required")
	}
	out := Profile{LearnerID: learnerID, Topics: []TopicSummary{}}

	ctx, span := observability.StartSpan(ctx, "mastery.Profile")
	defer span.End()

	rows, err := s.repo.ListByLearner(dbctx.Of(ctx), learnerID)
	if err != nil {
		if ctx.Err() != nil {
			return Profile{}, ctx.Err()
		}
		s.log.Warn("mastery profile read failed", "learner_id", learnerID, "error", err)
		return out, nil
	}
	return BuildProfile(learnerID, rows, s.params), nil
}

// BuildProfile summarizes stored rows. Topics are sorted by name.
func BuildProfile(learnerID string, rows []*types.TopicMastery, params config.MasteryParams) Profile {
	out := Profile{LearnerID: learnerID, Topics: make([]TopicSummary, 0, len(rows))}
	vals := make([]float64, 0, len(rows))
	for _, r := range rows {
		if r == nil {
			continue
		}
		m := numeric.Clamp01(r.MasteryProbability)
		vals = append(vals, m)
		if m > params.StrongThreshold {
			out.StrongTopics++
		}
		if m < params.WeakThreshold {
			out.WeakTopics++
		}
		if out.FirstTrackedAt == nil || r.CreatedAt.Before(*out.FirstTrackedAt) {
			created := r.CreatedAt
			out.FirstTrackedAt = &created
		}
		out.Topics = append(out.Topics, TopicSummary{
			Topic:      r.Topic,
			Mastery:    m,
			Confidence: r.Confidence,
			Trend:      r.Trend,
			Attempts:   r.AttemptsCount,
			CreatedAt:  r.CreatedAt,
			UpdatedAt:  r.UpdatedAt,
		})
	}
	sort.SliceStable(out.Topics, func(i, j int) bool { return out.Topics[i].Topic < out.Topics[j].Topic })
	out.TopicsCount = len(out.Topics)
	out.AverageMastery = numeric.Mean(vals)
	return out
}
