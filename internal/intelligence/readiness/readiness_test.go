package readiness

import (
	"context"
	"math"
	"testing"
	"time"

	"github.com/yungbote/neurobridge-intelligence/internal/data/repos"
	"github.com/yungbote/neurobridge-intelligence/internal/data/repos/testutil"
	"github.com/yungbote/neurobridge-intelligence/internal/intelligence/config"
	"github.com/yungbote/neurobridge-intelligence/internal/intelligence/mastery"
	"github.com/yungbote/neurobridge-intelligence/internal/intelligence/registry"
	"github.com/yungbote/neurobridge-intelligence/internal/intelligence/retention"
	"github.com/yungbote/neurobridge-intelligence/internal/intelligence/telemetry"
)

type stubProfile struct{ p mastery.Profile }

func (s stubProfile) Profile(context.Context, string) (mastery.Profile, error) { return s.p, nil }

type stubSnapshot struct{ s retention.Snapshot }

func (s stubSnapshot) Snapshot(context.Context, string) (retention.Snapshot, error) { return s.s, nil }

type stubLoader struct{ a *registry.Artifact }

func (s stubLoader) Load(context.Context, string) (*registry.Artifact, error) { return s.a, nil }

func near(a, b float64) bool { return math.Abs(a-b) < 1e-9 }

func TestFallbackMidpoint(t *testing.T) {
	x := []float64{0.5, 0.5, 0.5, 0.5, 0.5, 0.5, 0.5}
	score, conf := Fallback(x, config.Defaults().Readiness.FallbackWeights)
	if !near(score, 50) {
		t.Fatalf("score: want=50 got=%v", score)
	}
	if conf != 0.95 {
		t.Fatalf("confidence: want=0.95 got=%v", conf)
	}
	if _, conf := Fallback([]float64{0, 1, 0, 1, 0, 1, 0}, config.Defaults().Readiness.FallbackWeights); conf < 0.3 || conf > 0.95 {
		t.Fatalf("confidence band: got=%v", conf)
	}
}

func TestVectorDefaults(t *testing.T) {
	params := config.Defaults().Readiness
	got := Vector(mastery.Profile{}, retention.Snapshot{}, telemetry.DefaultFeatures(), params, time.Now())
	want := []float64{0, 0, 0, 0.5, 0.5, 0, 0.5}
	for i := range want {
		if !near(got[i], want[i]) {
			t.Fatalf("feature %d: want=%v got=%v", i, want[i], got[i])
		}
	}

	now := time.Date(2026, 3, 31, 0, 0, 0, 0, time.UTC)
	first := now.AddDate(0, 0, -90)
	mock := 0.8
	profile := mastery.Profile{
		AverageMastery: 0.55,
		FirstTrackedAt: &first,
		Topics: []mastery.TopicSummary{
			{Topic: "dp", Mastery: 0.3, Trend: "improving"},
			{Topic: "graphs", Mastery: 0.8, Trend: "stable"},
		},
	}
	snap := retention.Snapshot{Topics: []retention.TopicRetention{{Topic: "dp", StabilityDays: 6}, {Topic: "graphs", StabilityDays: 12}}}
	feats := telemetry.Features{AttemptCount: 5, MaxDifficultyAttempted: 2, ConsistencyScore: 0.6, MockSuccessRate: &mock}
	got = Vector(profile, snap, feats, params, now)
	want = []float64{0.55, 0.3, 0.5, 2.0 / 3.0, 0.8, 0.5, 1}
	for i := range want {
		if !near(got[i], want[i]) {
			t.Fatalf("feature %d: want=%v got=%v", i, want[i], got[i])
		}
	}
}

func TestDerivedOutputs(t *testing.T) {
	params := config.Defaults().Readiness
	for _, tc := range []struct {
		score float64
		days  int
	}{{50, 15}, {79, 0}, {80, 0}, {95, 0}, {0, 40}} {
		if got := DaysToTarget(tc.score, params.TargetScore); got != tc.days {
			t.Fatalf("DaysToTarget(%v): want=%d got=%d", tc.score, tc.days, got)
		}
	}
	if got := PassingProbability(70, params); !near(got, 0.5) {
		t.Fatalf("passing at center: want=0.5 got=%v", got)
	}
	if PassingProbability(90, params) <= PassingProbability(60, params) {
		t.Fatalf("passing: not increasing")
	}
	profile := mastery.Profile{Topics: []mastery.TopicSummary{
		{Topic: "a", Mastery: 0.1}, {Topic: "b", Mastery: 0.9}, {Topic: "c", Mastery: 0.5},
		{Topic: "d", Mastery: 0.2}, {Topic: "e", Mastery: 0.3},
	}}
	gaps := Gaps(profile, params)
	if len(gaps) != 3 || gaps[0] != "a" || gaps[1] != "c" || gaps[2] != "d" {
		t.Fatalf("gaps: got=%v", gaps)
	}
}

func newTestService(t *testing.T, loader ModelLoader, p mastery.Profile) Service {
	t.Helper()
	db := testutil.DB(t)
	return NewService(
		repos.NewReadinessSnapshotRepo(db, testutil.Logger(t)),
		stubProfile{p: p},
		stubSnapshot{},
		nil,
		loader,
		config.Defaults().Readiness,
		testutil.Logger(t),
		nil,
	)
}

func TestPredictFallbackAndLatest(t *testing.T) {
	profile := mastery.Profile{AverageMastery: 0.45, Topics: []mastery.TopicSummary{{Topic: "trees", Mastery: 0.45, Trend: "improving"}}}
	svc := newTestService(t, nil, profile)
	ctx := context.Background()

	if svc.ModelAvailable(ctx) {
		t.Fatalf("ModelAvailable: want false")
	}
	got, err := svc.Predict(ctx, Request{LearnerID: "u1"})
	if err != nil {
		t.Fatalf("Predict: %v", err)
	}
	if got.ModelSource != "fallback" || got.ReadinessScore <= 0 || got.ReadinessScore > 100 {
		t.Fatalf("Predict: got=%+v", got)
	}
	if got.TargetContext != "general" || len(got.PrimaryGaps) != 1 || got.PrimaryGaps[0] != "trees" {
		t.Fatalf("Predict: target/gaps got=%s/%v", got.TargetContext, got.PrimaryGaps)
	}

	latest, err := svc.Latest(ctx, "u1", "")
	if err != nil || latest == nil {
		t.Fatalf("Latest: got=%v err=%v", latest, err)
	}
	if !near(latest.ReadinessScore, got.ReadinessScore) || latest.PrimaryGaps[0] != "trees" {
		t.Fatalf("Latest: got=%+v", latest)
	}
	if missing, err := svc.Latest(ctx, "u1", "acme"); err != nil || missing != nil {
		t.Fatalf("Latest other context: want nil got=%v err=%v", missing, err)
	}
}

func TestPredictTrainedModel(t *testing.T) {
	model := &registry.LinearModel{Weights: make([]float64, 7), Bias: 0.9}
	svc := newTestService(t, stubLoader{a: &registry.Artifact{Key: registry.ReadinessKey, Version: 3, Model: model}}, mastery.Profile{})
	got, err := svc.Predict(context.Background(), Request{LearnerID: "u1", TargetContext: "acme"})
	if err != nil {
		t.Fatalf("Predict: %v", err)
	}
	if got.ModelSource != "trained" || !near(got.ReadinessScore, 90) || got.Confidence != 0.85 {
		t.Fatalf("trained: got source=%s score=%v conf=%v", got.ModelSource, got.ReadinessScore, got.Confidence)
	}
	if got.DaysToTarget != 0 || got.Explainability.ModelVersion != 3 {
		t.Fatalf("trained: days=%d version=%d", got.DaysToTarget, got.Explainability.ModelVersion)
	}
}

func TestPredictFallsBackOnBadModel(t *testing.T) {
	model := &registry.LinearModel{Weights: []float64{1, 2}}
	svc := newTestService(t, stubLoader{a: &registry.Artifact{Model: model}}, mastery.Profile{})
	got, err := svc.Predict(context.Background(), Request{LearnerID: "u1"})
	if err != nil {
		t.Fatalf("Predict: %v", err)
	}
	if got.ModelSource != "fallback" {
		t.Fatalf("source: want=fallback got=%s", got.ModelSource)
	}
}

type keyedLoader map[string]*registry.Artifact

func (k keyedLoader) Load(_ context.Context, key string) (*registry.Artifact, error) { return k[key], nil }

func TestPredictUsesConfiguredModelKey(t *testing.T) {
	model := &registry.LinearModel{Weights: make([]float64, 7), Bias: 0.7}
	loader := keyedLoader{"readiness_exp": {Key: "readiness_exp", Version: 2, Model: model}}
	params := config.Defaults().Readiness

	cases := []struct {
		key    string
		source string
		avail  bool
	}{
		{key: "", source: "fallback", avail: false},
		{key: "readiness_exp", source: "trained", avail: true},
	}
	for _, tc := range cases {
		params.ModelKey = tc.key
		db := testutil.DB(t)
		svc := NewService(
			repos.NewReadinessSnapshotRepo(db, testutil.Logger(t)),
			stubProfile{},
			stubSnapshot{},
			nil,
			loader,
			params,
			testutil.Logger(t),
			nil,
		)
		ctx := context.Background()
		if got := svc.ModelAvailable(ctx); got != tc.avail {
			t.Fatalf("key %q available: want=%v got=%v", tc.key, tc.avail, got)
		}
		got, err := svc.Predict(ctx, Request{LearnerID: "u1"})
		if err != nil {
			t.Fatalf("key %q Predict: %v", tc.key, err)
		}
		if got.ModelSource != tc.source {
			t.Fatalf("key %q source: want=%s got=%s", tc.key, tc.source, got.ModelSource)
		}
	}
}
