// Package retention models memory decay with an exponential forgetting curve
// and schedules spaced revisions. It owns the retention_record table.
package retention

import (
	"context"
	"fmt"
	"math"
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

const defaultQueueLimit = 10

type Explainability struct {
	Reason            string  `json:"reason"`
	Model             string  `json:"model"`
	ElapsedHours      float64 `json:"elapsed_hours"`
	ElapsedSource     string  `json:"elapsed_source"`
	PreviousStability float64 `json:"previous_stability_days"`
	IntervalDays      float64 `json:"revision_interval_days"`
}

type Metrics struct {
	LearnerID            string         `json:"learner_id"`
	Topic                string         `json:"topic"`
	RetentionProbability float64        `json:"retention_probability"`
	StabilityDays        float64        `json:"stability_days"`
	NextRevisionAt       time.Time      `json:"next_revision_at"`
	DaysUntilRevision    int            `json:"days_until_revision"`
	Urgency              string         `json:"urgency_level"`
	RevisionCount        int            `json:"revision_count"`
	Explainability       Explainability `json:"explainability"`
}

type QueueItem struct {
	Topic          string    `json:"topic"`
	Retention      float64   `json:"retention"`
	StabilityDays  float64   `json:"stability_days"`
	NextRevisionAt time.Time `json:"next_revision_at"`
	DaysOverdue    int       `json:"days_overdue"`
}

type TopicRetention struct {
	Topic          string    `json:"topic"`
	Retention      float64   `json:"retention"`
	StabilityDays  float64   `json:"stability_days"`
	NextRevisionAt time.Time `json:"next_revision_at"`
	Overdue        bool      `json:"overdue"`
}

type Snapshot struct {
	LearnerID        string           `json:"learner_id"`
	AverageRetention float64          `json:"average_retention"`
	TopicsCount      int              `json:"topics_count"`
	OverdueRevisions int              `json:"overdue_revisions"`
	Topics           []TopicRetention `json:"topics"`
}

// Retention returns the stored probability for topic, if tracked.
func (s Snapshot) Retention(topic string) (float64, bool) {
	for _, t := range s.Topics {
		if t.Topic == topic {
			return t.Retention, true
		}
	}
	return 0, false
}

// MeanStability averages stability across tracked topics, 0 when none.
func (s Snapshot) MeanStability() float64 {
	vals := make([]float64, 0, len(s.Topics))
	for _, t := range s.Topics {
		vals = append(vals, t.StabilityDays)
	}
	return numeric.Mean(vals)
}

type SnapshotReader interface {
	Snapshot(ctx context.Context, learnerID string) (Snapshot, error)
}

type Service interface {
	SnapshotReader
	// Update records a revision. elapsedHours nil means "derive from the
	// stored last revision".
	Update(ctx context.Context, learnerID, topic string, successful bool, elapsedHours *float64) (*Metrics, error)
	RevisionQueue(ctx context.Context, learnerID string, limit int) ([]QueueItem, error)
}

type service struct {
	repo    repos.RetentionRecordRepo
	locker  keylock.Locker
	params  config.RetentionParams
	log     *logger.Logger
	metrics *observability.Metrics
	now     func() time.Time
}

func NewService(
	repo repos.RetentionRecordRepo,
	locker keylock.Locker,
	params config.RetentionParams,
	log *logger.Logger,
	metrics *observability.Metrics,
) Service {
	return &service{
		repo:    repo,
		locker:  locker,
		params:  params,
		log:     log.With("service", "RetentionEstimator"),
		metrics: metrics,
		now:     func() time.Time { return time.Now().UTC() },
	}
}

func (s *service) Update(ctx context.Context, learnerID, topic string, successful bool, elapsedHours *float64) (out *Metrics, err error) {
	learnerID, topic = strings.TrimSpace(learnerID), strings.TrimSpace(topic)
	if learnerID == "" || topic == "" {
		return nil, apierr.Invalid("learner_id and topic are required")
	}
	if elapsedHours != nil && (*elapsedHours < 0 || math.IsNaN(*elapsedHours) || math.IsInf(*elapsedHours, 0)) {
		return nil, apierr.Invalid("hours_since_last_exposure must be a non-negative number")
	}

	ctx, span := observability.StartSpan(ctx, "retention.Update", attribute.String("topic", topic), attribute.Bool("successful", successful))
	start := time.Now()
	defer func() {
		s.metrics.ObserveOp("retention", "update", time.Since(start), err)
		observability.EndSpan(span, err)
	}()

	unlock, err := s.locker.Lock(ctx, keylock.Key("retention", learnerID, topic))
	if err != nil {
		return nil, fmt.Errorf("lock retention key: %w", err)
	}
	defer unlock()

	dbc := dbctx.Of(ctx)
	stored, err := s.repo.Get(dbc, learnerID, topic)
	if err != nil {
		return nil, apierr.Unavailable("load retention", err)
	}

	now := s.now()
	stability := s.params.DefaultStabilityDays
	revisions := 0
	if stored != nil {
		if stored.StabilityDays > 0 {
			stability = stored.StabilityDays
		}
		revisions = stored.RevisionCount
	}

	hours, source := 0.0, "none"
	switch {
	case elapsedHours != nil:
		hours, source = *elapsedHours, "request"
	case stored != nil && stored.LastRevisionAt != nil:
		hours, source = math.Max(0, now.Sub(*stored.LastRevisionAt).Hours()), "last_revision"
	}

	r := Probability(hours, stability, s.params)
	nextStability := NextStability(stability, successful, r, s.params)
	intervalDays := RevisionIntervalDays(nextStability, s.params)
	nextAt := now.Add(time.Duration(intervalDays * float64(24*time.Hour)))
	urgency := Urgency(r)

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	row := &types.RetentionRecord{
		LearnerID:            learnerID,
		Topic:                topic,
		RetentionProbability: r,
		StabilityDays:        nextStability,
		NextRevisionAt:       nextAt,
		LastRevisionAt:       &now,
		RevisionCount:        revisions + 1,
		LastSuccessful:       successful,
	}
	if stored != nil {
		row.ID = stored.ID
		row.CreatedAt = stored.CreatedAt
	}
	if err := s.repo.Upsert(dbc, row); err != nil {
		return nil, apierr.Unavailable("save retention", err)
	}

	outcome := "unsuccessful"
	if successful {
		outcome = "successful"
	}
	s.log.Debug("retention updated",
		"learner_id", learnerID,
		"topic", topic,
		"retention", r,
		"stability_days", nextStability,
		"urgency", urgency,
	)

	return &Metrics{
		LearnerID:            learnerID,
		Topic:                topic,
		RetentionProbability: r,
		StabilityDays:        nextStability,
		NextRevisionAt:       nextAt,
		DaysUntilRevision:    int(math.Floor(intervalDays)),
		Urgency:              urgency,
		RevisionCount:        row.RevisionCount,
		Explainability: Explainability{
			Reason: fmt.Sprintf("Based on %s revision; retention %.1f%%, next review in %.1f days",
				outcome, r*100, intervalDays),
			Model:             "exponential_forgetting_curve",
			ElapsedHours:      hours,
			ElapsedSource:     source,
			PreviousStability: stability,
			IntervalDays:      intervalDays,
		},
	}, nil
}

// RevisionQueue lists due topics, most overdue first. Storage errors degrade
// to an empty queue.
func (s *service) RevisionQueue(ctx context.Context, learnerID string, limit int) ([]QueueItem, error) {
	learnerID = strings.TrimSpace(learnerID)
	if learnerID == "" {
		return nil, apierr.Invalid("learner_id is required")
	}
	if limit <= 0 {
		limit = defaultQueueLimit
	}
	now := s.now()
	rows, err := s.repo.ListDue(dbctx.Of(ctx), learnerID, now, limit)
	if err != nil {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		s.log.Warn("revision queue read failed", "learner_id", learnerID, "error", err)
		return []QueueItem{}, nil
	}
	out := make([]QueueItem, 0, len(rows))
	for _, r := range rows {
		out = append(out, QueueItem{
			Topic:          r.Topic,
			Retention:      r.RetentionProbability,
			StabilityDays:  r.StabilityDays,
			NextRevisionAt: r.NextRevisionAt,
			DaysOverdue:    int(now.Sub(r.NextRevisionAt).Hours() / 24),
		})
	}
	return out, nil
}

func (s *service) Snapshot(ctx context.Context, learnerID string) (Snapshot, error) {
	learnerID = strings.TrimSpace(learnerID)
	if learnerID == "" {
		return Snapshot{}, apierr.Invalid("learner_id is required")
	}
	out := Snapshot{LearnerID: learnerID, Topics: []TopicRetention{}}

	ctx, span := observability.StartSpan(ctx, "retention.Snapshot")
	defer span.End()

	rows, err := s.repo.ListByLearner(dbctx.Of(ctx), learnerID)
	if err != nil {
		if ctx.Err() != nil {
			return Snapshot{}, ctx.Err()
		}
		s.log.Warn("retention snapshot read failed", "learner_id", learnerID, "error", err)
		return out, nil
	}
	return BuildSnapshot(learnerID, rows, s.now()), nil
}

func BuildSnapshot(learnerID string, rows []*types.RetentionRecord, now time.Time) Snapshot {
	out := Snapshot{LearnerID: learnerID, Topics: make([]TopicRetention, 0, len(rows))}
	vals := make([]float64, 0, len(rows))
	for _, r := range rows {
		if r == nil {
			continue
		}
		overdue := !r.NextRevisionAt.After(now)
		if overdue {
			out.OverdueRevisions++
		}
		vals = append(vals, numeric.Clamp01(r.RetentionProbability))
		out.Topics = append(out.Topics, TopicRetention{
			Topic:          r.Topic,
			Retention:      numeric.Clamp01(r.RetentionProbability),
			StabilityDays:  r.StabilityDays,
			NextRevisionAt: r.NextRevisionAt,
			Overdue:        overdue,
		})
	}
	out.TopicsCount = len(out.Topics)
	out.AverageRetention = numeric.Mean(vals)
	return out
}
