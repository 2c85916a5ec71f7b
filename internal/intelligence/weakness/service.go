// Package weakness combines mastery, retention and telemetry into a per-topic
// risk score and owns the weak_signal table.
package weakness

import (
	"context"
	"sort"
	"strings"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/yungbote/neurobridge-intelligence/internal/data/repos"
	types "github.com/yungbote/neurobridge-intelligence/internal/domain"
	"github.com/yungbote/neurobridge-intelligence/internal/intelligence/config"
	"github.com/yungbote/neurobridge-intelligence/internal/intelligence/mastery"
	"github.com/yungbote/neurobridge-intelligence/internal/intelligence/retention"
	"github.com/yungbote/neurobridge-intelligence/internal/intelligence/telemetry"
	"github.com/yungbote/neurobridge-intelligence/internal/observability"
	"github.com/yungbote/neurobridge-intelligence/internal/platform/apierr"
	"github.com/yungbote/neurobridge-intelligence/internal/platform/dbctx"
	"github.com/yungbote/neurobridge-intelligence/internal/platform/logger"
	"github.com/yungbote/neurobridge-intelligence/internal/platform/numeric"
)

// defaultRetention stands in for topics without a retention record.
const defaultRetention = 0.5

type TopicRisk struct {
	Topic          string  `json:"topic"`
	RiskScore      float64 `json:"risk_score"`
	MasteryGap     float64 `json:"mastery_gap"`
	RetentionRisk  float64 `json:"retention_risk"`
	DifficultyGap  float64 `json:"difficulty_gap"`
	SignalType     string  `json:"signal_type"`
	Recommendation string  `json:"recommendation"`
}

type Explainability struct {
	AnalyzedAt      time.Time `json:"analyzed_at"`
	WeakTopicsCount int       `json:"weak_topics_count"`
	TopSignals      []string  `json:"top_signals"`
	AverageRisk     float64   `json:"average_risk"`
	MaxRisk         float64   `json:"max_risk"`
	TopicsAtRisk    int       `json:"topics_at_risk"`
	TopicsEvaluated int       `json:"topics_evaluated"`
}

type Analysis struct {
	LearnerID                 string         `json:"learner_id"`
	WeakTopics                []TopicRisk    `json:"weak_topics"`
	FocusAreas                []string       `json:"focus_areas"`
	InterventionPriorityScore float64        `json:"intervention_priority_score"`
	Explainability            Explainability `json:"explainability"`
}

// FocusReader is what the planner needs from this package.
type FocusReader interface {
	FocusAreas(ctx context.Context, learnerID string) ([]string, error)
}

// FeatureSource supplies telemetry features.
type FeatureSource interface {
	Features(ctx context.Context, learnerID string) (telemetry.Features, error)
}

type Service interface {
	FocusReader
	Analyze(ctx context.Context, learnerID string) (*Analysis, error)
	Signals(ctx context.Context, learnerID string) ([]*types.WeakSignal, error)
}

type service struct {
	repo      repos.WeakSignalRepo
	mastery   mastery.ProfileReader
	retention retention.SnapshotReader
	features  FeatureSource
	params    config.WeaknessParams
	log       *logger.Logger
	metrics   *observability.Metrics
	now       func() time.Time
}

func NewService(
	repo repos.WeakSignalRepo,
	masteryReader mastery.ProfileReader,
	retentionReader retention.SnapshotReader,
	features FeatureSource,
	params config.WeaknessParams,
	log *logger.Logger,
	metrics *observability.Metrics,
) Service {
	return &service{
		repo:      repo,
		mastery:   masteryReader,
		retention: retentionReader,
		features:  features,
		params:    params,
		log:       log.With("service", "WeaknessDetector"),
		metrics:   metrics,
		now:       func() time.Time { return time.Now().UTC() },
	}
}

type inputs struct {
	profile  mastery.Profile
	snapshot retention.Snapshot
	features telemetry.Features
}

func (s *service) load(ctx context.Context, learnerID string) (inputs, error) {
	var in inputs
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		p, err := s.mastery.Profile(gctx, learnerID)
		in.profile = p
		return err
	})
	g.Go(func() error {
		snap, err := s.retention.Snapshot(gctx, learnerID)
		in.snapshot = snap
		return err
	})
	g.Go(func() error {
		if s.features == nil {
			in.features = telemetry.DefaultFeatures()
			return nil
		}
		f, err := s.features.Features(gctx, learnerID)
		in.features = f
		return err
	})
	if err := g.Wait(); err != nil {
		return inputs{}, err
	}
	return in, nil
}

// Compute scores every tracked topic and keeps those above the floor,
// highest risk first.
func Compute(learnerID string, in inputs, params config.WeaknessParams, now time.Time) *Analysis {
	risks := make([]TopicRisk, 0, len(in.profile.Topics))
	for _, t := range in.profile.Topics {
		r, ok := in.snapshot.Retention(t.Topic)
		if !ok {
			r = defaultRetention
		}
		success, ok := in.features.PerTopicSuccess[t.Topic]
		if !ok {
			success = t.Mastery
		}
		mg := MasteryGap(t.Mastery, params)
		rr := RetentionRisk(r, params)
		dg := DifficultyGap(success, params)
		risk := RiskScore(mg, rr, dg, ConsistencyScore(t.Trend))
		if risk <= params.RiskFloor {
			continue
		}
		signal := SignalType(mg, rr, dg)
		risks = append(risks, TopicRisk{
			Topic:          t.Topic,
			RiskScore:      risk,
			MasteryGap:     mg,
			RetentionRisk:  rr,
			DifficultyGap:  dg,
			SignalType:     signal,
			Recommendation: Recommendation(signal, t.Mastery, r, params),
		})
	}
	sort.SliceStable(risks, func(i, j int) bool {
		if risks[i].RiskScore != risks[j].RiskScore {
			return risks[i].RiskScore > risks[j].RiskScore
		}
		return risks[i].Topic < risks[j].Topic
	})

	scores := make([]float64, 0, len(risks))
	atRisk := 0
	for _, r := range risks {
		scores = append(scores, r.RiskScore)
		if r.RiskScore > params.AtRiskThreshold {
			atRisk++
		}
	}
	focus := make([]string, 0, params.FocusAreas)
	signals := make([]string, 0, params.FocusAreas)
	for i := 0; i < len(risks) && i < params.FocusAreas; i++ {
		focus = append(focus, risks[i].Topic)
		signals = append(signals, risks[i].SignalType)
	}
	avg := numeric.Mean(scores)

	return &Analysis{
		LearnerID:                 learnerID,
		WeakTopics:                risks,
		FocusAreas:                focus,
		InterventionPriorityScore: numeric.ClampScore(avg),
		Explainability: Explainability{
			AnalyzedAt:      now,
			WeakTopicsCount: len(risks),
			TopSignals:      signals,
			AverageRisk:     avg,
			MaxRisk:         numeric.Max(scores),
			TopicsAtRisk:    atRisk,
			TopicsEvaluated: len(in.profile.Topics),
		},
	}
}

func (s *service) Analyze(ctx context.Context, learnerID string) (out *Analysis, err error) {
	learnerID = strings.TrimSpace(learnerID)
	if learnerID == "" {
		return nil, apierr.Invalid("learner_id is required")
	}
	ctx, span := observability.StartSpan(ctx, "weakness.Analyze")
	start := time.Now()
	defer func() {
		s.metrics.ObserveOp("weakness", "analyze", time.Since(start), err)
		observability.EndSpan(span, err)
	}()

	in, err := s.load(ctx, learnerID)
	if err != nil {
		return nil, err
	}
	now := s.now()
	out = Compute(learnerID, in, s.params, now)

	rows := make([]*types.WeakSignal, 0, len(out.WeakTopics))
	for _, r := range out.WeakTopics {
		rows = append(rows, &types.WeakSignal{
			LearnerID:      learnerID,
			Topic:          r.Topic,
			RiskScore:      r.RiskScore,
			MasteryGap:     r.MasteryGap,
			RetentionRisk:  r.RetentionRisk,
			DifficultyGap:  r.DifficultyGap,
			SignalType:     r.SignalType,
			Recommendation: r.Recommendation,
			DetectedAt:     now,
		})
	}
	if err := s.repo.ReplaceForLearner(dbctx.Of(ctx), learnerID, rows); err != nil {
		return nil, apierr.Unavailable("save weak signals", err)
	}

	s.log.Debug("weakness analyzed",
		"learner_id", learnerID,
		"weak_topics", len(out.WeakTopics),
		"priority", out.InterventionPriorityScore,
	)
	return out, nil
}

// FocusAreas runs the analysis without persisting it.
func (s *service) FocusAreas(ctx context.Context, learnerID string) ([]string, error) {
	learnerID = strings.TrimSpace(learnerID)
	if learnerID == "" {
		return nil, apierr.Invalid("learner_id is required")
	}
	in, err := s.load(ctx, learnerID)
	if err != nil {
		return nil, err
	}
	return Compute(learnerID, in, s.params, s.now()).FocusAreas, nil
}

func (s *service) Signals(ctx context.Context, learnerID string) ([]*types.WeakSignal, error) {
	learnerID = strings.TrimSpace(learnerID)
	if learnerID == "" {
		return nil, apierr.Invalid("learner_id is required")
	}
	rows, err := s.repo.ListByLearner(dbctx.Of(ctx), learnerID)
	if err != nil {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		s.log.Warn("weak signal read failed", "learner_id", learnerID, "error", err)
		return []*types.WeakSignal{}, nil
	}
	return rows, nil
}
