// Package readiness predicts interview readiness from mastery, retention and
// telemetry features, using a trained regressor when the registry holds one.
package readiness

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"golang.org/x/sync/errgroup"
	"gorm.io/datatypes"

	"github.com/yungbote/neurobridge-intelligence/internal/data/repos"
	types "github.com/yungbote/neurobridge-intelligence/internal/domain"
	"github.com/yungbote/neurobridge-intelligence/internal/domain/intelligence"
	"github.com/yungbote/neurobridge-intelligence/internal/intelligence/config"
	"github.com/yungbote/neurobridge-intelligence/internal/intelligence/mastery"
	"github.com/yungbote/neurobridge-intelligence/internal/intelligence/registry"
	"github.com/yungbote/neurobridge-intelligence/internal/intelligence/retention"
	"github.com/yungbote/neurobridge-intelligence/internal/intelligence/telemetry"
	"github.com/yungbote/neurobridge-intelligence/internal/observability"
	"github.com/yungbote/neurobridge-intelligence/internal/platform/apierr"
	"github.com/yungbote/neurobridge-intelligence/internal/platform/dbctx"
	"github.com/yungbote/neurobridge-intelligence/internal/platform/logger"
	"github.com/yungbote/neurobridge-intelligence/internal/platform/numeric"
)

type Request struct {
	LearnerID     string `json:"learner_id"`
	TargetContext string `json:"target_context,omitempty"`
}

type FeatureValue struct {
	Name  string  `json:"name"`
	Value float64 `json:"value"`
}

type Explainability struct {
	Model            string         `json:"model"`
	ModelVersion     int            `json:"model_version,omitempty"`
	Confidence       float64        `json:"confidence"`
	FeaturesUsed     []FeatureValue `json:"features_used"`
	Gaps             []string       `json:"gaps"`
	ImprovementAreas []string       `json:"improvement_areas"`
}

type Prediction struct {
	LearnerID              string          `json:"learner_id"`
	TargetContext          string          `json:"target_context"`
	ReadinessScore         float64         `json:"readiness_score"`
	Confidence             float64         `json:"confidence"`
	ProbabilityPassing     float64         `json:"probability_passing"`
	DaysToTarget           int             `json:"days_to_target"`
	ProjectedReadinessDate time.Time       `json:"projected_readiness_date"`
	PrimaryGaps            []string        `json:"primary_gaps"`
	ModelSource            string          `json:"model_source"`
	PredictedAt            time.Time       `json:"predicted_at"`
	Explainability         *Explainability `json:"explainability,omitempty"`
}

// ModelLoader is the slice of the registry the predictor needs.
type ModelLoader interface {
	Load(ctx context.Context, key string) (*registry.Artifact, error)
}

type FeatureSource interface {
	Features(ctx context.Context, learnerID string) (telemetry.Features, error)
}

type Service interface {
	Predict(ctx context.Context, req Request) (*Prediction, error)
	// Latest returns the stored prediction, or nil if none was made yet.
	Latest(ctx context.Context, learnerID, targetContext string) (*Prediction, error)
	ModelAvailable(ctx context.Context) bool
}

type service struct {
	repo      repos.ReadinessSnapshotRepo
	mastery   mastery.ProfileReader
	retention retention.SnapshotReader
	features  FeatureSource
	models    ModelLoader
	params    config.ReadinessParams
	log       *logger.Logger
	metrics   *observability.Metrics
	now       func() time.Time
}

// NewService wires the predictor. features and models may be nil; a nil
// loader always takes the fallback path.
func NewService(
	repo repos.ReadinessSnapshotRepo,
	masteryReader mastery.ProfileReader,
	retentionReader retention.SnapshotReader,
	features FeatureSource,
	models ModelLoader,
	params config.ReadinessParams,
	log *logger.Logger,
	metrics *observability.Metrics,
) Service {
	return &service{
		repo:      repo,
		mastery:   masteryReader,
		retention: retentionReader,
		features:  features,
		models:    models,
		params:    params,
		log:       log.With("service", "ReadinessPredictor"),
		metrics:   metrics,
		now:       func() time.Time { return time.Now().UTC() },
	}
}

func targetOrDefault(target string) string {
	target = strings.TrimSpace(target)
	if target == "" {
		return intelligence.DefaultTargetContext
	}
	return target
}

func (s *service) ModelAvailable(ctx context.Context) bool {
	return s.model(ctx) != nil
}

func (s *service) modelKey() string {
	if key := strings.TrimSpace(s.params.ModelKey); key != "" {
		return key
	}
	return registry.ReadinessKey
}

func (s *service) model(ctx context.Context) *registry.Artifact {
	if s.models == nil {
		return nil
	}
	a, err := s.models.Load(ctx, s.modelKey())
	if err != nil {
		s.log.Warn("readiness model load failed, using fallback", "key", s.modelKey(), "error", err)
		return nil
	}
	return a
}

func (s *service) Predict(ctx context.Context, req Request) (out *Prediction, err error) {
	learnerID := strings.TrimSpace(req.LearnerID)
	if learnerID == "" {
		return nil, apierr.Invalid("learner_id is required")
	}
	target := targetOrDefault(req.TargetContext)

	ctx, span := observability.StartSpan(ctx, "readiness.Predict")
	start := time.Now()
	defer func() {
		s.metrics.ObserveOp("readiness", "predict", time.Since(start), err)
		observability.EndSpan(span, err)
	}()

	var (
		profile mastery.Profile
		snap    retention.Snapshot
	)
	feats := telemetry.DefaultFeatures()
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() (err error) {
		profile, err = s.mastery.Profile(gctx, learnerID)
		return err
	})
	g.Go(func() (err error) {
		snap, err = s.retention.Snapshot(gctx, learnerID)
		return err
	})
	if s.features != nil {
		g.Go(func() (err error) {
			feats, err = s.features.Features(gctx, learnerID)
			return err
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	now := s.now()
	x := Vector(profile, snap, feats, s.params, now)

	source := intelligence.ModelSourceFallback
	modelName := "weighted logistic fallback"
	version := 0
	score, confidence := Fallback(x, s.params.FallbackWeights)
	if a := s.model(ctx); a != nil {
		if raw, perr := a.Model.Predict(x); perr != nil {
			s.log.Warn("readiness inference failed, using fallback", "version", a.Version, "error", perr)
		} else {
			score = numeric.Clamp01(raw) * 100
			confidence = s.params.TrainedConf
			source = intelligence.ModelSourceTrained
			modelName = "trained linear regressor"
			version = a.Version
		}
	}
	s.metrics.ObserveReadinessSource(source)

	days := DaysToTarget(score, s.params.TargetScore)
	gaps := Gaps(profile, s.params)
	out = &Prediction{
		LearnerID:              learnerID,
		TargetContext:          target,
		ReadinessScore:         score,
		Confidence:             confidence,
		ProbabilityPassing:     PassingProbability(score, s.params),
		DaysToTarget:           days,
		ProjectedReadinessDate: now.AddDate(0, 0, days),
		PrimaryGaps:            gaps,
		ModelSource:            source,
		PredictedAt:            now,
		Explainability: &Explainability{
			Model:            modelName,
			ModelVersion:     version,
			Confidence:       confidence,
			FeaturesUsed:     named(x),
			Gaps:             gaps,
			ImprovementAreas: improvementAreas(gaps),
		},
	}

	if err := s.store(ctx, out); err != nil {
		return nil, err
	}
	return out, nil
}

func (s *service) store(ctx context.Context, p *Prediction) error {
	gapsJSON, err := json.Marshal(p.PrimaryGaps)
	if err != nil {
		return fmt.Errorf("encode gaps: %w", err)
	}
	row := &types.ReadinessSnapshot{
		LearnerID:              p.LearnerID,
		TargetContext:          p.TargetContext,
		ReadinessScore:         p.ReadinessScore,
		Confidence:             p.Confidence,
		ProbabilityPassing:     p.ProbabilityPassing,
		DaysToTarget:           p.DaysToTarget,
		ProjectedReadinessDate: p.ProjectedReadinessDate,
		PrimaryGaps:            datatypes.JSON(gapsJSON),
		ModelSource:            p.ModelSource,
		PredictedAt:            p.PredictedAt,
	}
	if err := s.repo.Upsert(dbctx.Of(ctx), row); err != nil {
		return apierr.Unavailable("store readiness", err)
	}
	return nil
}

func (s *service) Latest(ctx context.Context, learnerID, targetContext string) (*Prediction, error) {
	learnerID = strings.TrimSpace(learnerID)
	if learnerID == "" {
		return nil, apierr.Invalid("learner_id is required")
	}
	row, err := s.repo.Get(dbctx.Of(ctx), learnerID, targetOrDefault(targetContext))
	if err != nil {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		s.log.Warn("readiness read failed", "learner_id", learnerID, "error", err)
		return nil, nil
	}
	if row == nil {
		return nil, nil
	}
	gaps := []string{}
	if len(row.PrimaryGaps) > 0 {
		if err := json.Unmarshal(row.PrimaryGaps, &gaps); err != nil {
			s.log.Warn("readiness gaps undecodable", "learner_id", learnerID, "error", err)
		}
	}
	return &Prediction{
		LearnerID:              row.LearnerID,
		TargetContext:          row.TargetContext,
		ReadinessScore:         row.ReadinessScore,
		Confidence:             row.Confidence,
		ProbabilityPassing:     row.ProbabilityPassing,
		DaysToTarget:           row.DaysToTarget,
		ProjectedReadinessDate: row.ProjectedReadinessDate,
		PrimaryGaps:            gaps,
		ModelSource:            row.ModelSource,
		PredictedAt:            row.PredictedAt,
	}, nil
}

func named(x []float64) []FeatureValue {
	out := make([]FeatureValue, 0, len(x))
	for i, v := range x {
		name := fmt.Sprintf("feature_%d", i)
		if i < len(registry.ReadinessFeatures) {
			name = registry.ReadinessFeatures[i]
		}
		out = append(out, FeatureValue{Name: name, Value: v})
	}
	return out
}

func improvementAreas(gaps []string) []string {
	if len(gaps) == 0 {
		return []string{"Maintain current progress"}
	}
	return []string{"Increase mastery in: " + strings.Join(gaps, ", ")}
}
