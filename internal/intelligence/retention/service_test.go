package retention

import (
	"context"
	"errors"
	"math"
	"testing"
	"time"

	"github.com/yungbote/neurobridge-intelligence/internal/data/repos"
	"github.com/yungbote/neurobridge-intelligence/internal/data/repos/testutil"
	"github.com/yungbote/neurobridge-intelligence/internal/intelligence/config"
	"github.com/yungbote/neurobridge-intelligence/internal/intelligence/keylock"
	"github.com/yungbote/neurobridge-intelligence/internal/platform/apierr"
)

func newTestService(t *testing.T) *service {
	t.Helper()
	db := testutil.DB(t)
	return NewService(
		repos.NewRetentionRecordRepo(db, testutil.Logger(t)),
		keylock.NewLocal(16),
		config.Defaults().Retention,
		testutil.Logger(t),
		nil,
	).(*service)
}

func hours(h float64) *float64 { return &h }

func TestUpdateAfterTwoDays(t *testing.T) {
	svc := newTestService(t)
	got, err := svc.Update(context.Background(), "u1", "trees", true, hours(48))
	if err != nil {
		t.Fatalf("Update: %v", err)
	}
	if got.RetentionProbability >= 1 || math.Abs(got.RetentionProbability-0.5134) > 1e-3 {
		t.Fatalf("retention: want~0.5134 got=%v", got.RetentionProbability)
	}
	if got.Urgency != Urgency(got.RetentionProbability) || got.Urgency != "medium" {
		t.Fatalf("urgency: want=medium got=%s", got.Urgency)
	}
	if got.StabilityDays <= 3 {
		t.Fatalf("stability after success: want > 3 got=%v", got.StabilityDays)
	}
	if got.RevisionCount != 1 || got.Explainability.ElapsedSource != "request" {
		t.Fatalf("count/source: got=%d/%s", got.RevisionCount, got.Explainability.ElapsedSource)
	}
}

func TestZeroElapsedSuccessIsNonDecreasing(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()

	prev := svc.params.DefaultStabilityDays
	for i := 0; i < 2; i++ {
		got, err := svc.Update(ctx, "u1", "graphs", true, hours(0))
		if err != nil {
			t.Fatalf("Update %d: %v", i, err)
		}
		if got.StabilityDays < prev {
			t.Fatalf("update %d: stability decreased %v -> %v", i, prev, got.StabilityDays)
		}
		prev = got.StabilityDays
	}
}

func TestUpdateDerivesElapsedFromStore(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()
	clock := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	svc.now = func() time.Time { return clock }

	if _, err := svc.Update(ctx, "u1", "heaps", true, nil); err != nil {
		t.Fatalf("first Update: %v", err)
	}
	clock = clock.Add(72 * time.Hour)
	got, err := svc.Update(ctx, "u1", "heaps", false, nil)
	if err != nil {
		t.Fatalf("second Update: %v", err)
	}
	if got.Explainability.ElapsedSource != "last_revision" || math.Abs(got.Explainability.ElapsedHours-72) > 1e-6 {
		t.Fatalf("elapsed: want=72h from last_revision got=%v from %s", got.Explainability.ElapsedHours, got.Explainability.ElapsedSource)
	}
	if got.RevisionCount != 2 {
		t.Fatalf("revision count: want=2 got=%d", got.RevisionCount)
	}
}

func TestUpdateRejectsNegativeHours(t *testing.T) {
	svc := newTestService(t)
	_, err := svc.Update(context.Background(), "u1", "trees", true, hours(-1))
	if !errors.Is(err, apierr.ErrInvalidArgument) {
		t.Fatalf("negative hours: want invalid argument got=%v", err)
	}
}

func TestRevisionQueueAndSnapshot(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()
	clock := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	svc.now = func() time.Time { return clock }

	for _, topic := range []string{"trees", "graphs"} {
		if _, err := svc.Update(ctx, "u1", topic, true, hours(0)); err != nil {
			t.Fatalf("Update %s: %v", topic, err)
		}
	}

	if q, err := svc.RevisionQueue(ctx, "u1", 5); err != nil || len(q) != 0 {
		t.Fatalf("queue before due: err=%v len=%d", err, len(q))
	}

	clock = clock.Add(10 * 24 * time.Hour)
	q, err := svc.RevisionQueue(ctx, "u1", 5)
	if err != nil || len(q) != 2 {
		t.Fatalf("queue when due: err=%v len=%d", err, len(q))
	}
	if q[0].DaysOverdue < 1 {
		t.Fatalf("days overdue: want >= 1 got=%d", q[0].DaysOverdue)
	}

	snap, err := svc.Snapshot(ctx, "u1")
	if err != nil {
		t.Fatalf("Snapshot: %v", err)
	}
	if snap.TopicsCount != 2 || snap.OverdueRevisions != 2 || snap.AverageRetention != 1 {
		t.Fatalf("snapshot: got=%+v", snap)
	}
	if r, ok := snap.Retention("trees"); !ok || r != 1 {
		t.Fatalf("Retention(trees): got=%v ok=%v", r, ok)
	}
	if snap.MeanStability() <= 3 {
		t.Fatalf("MeanStability: want > 3 got=%v", snap.MeanStability())
	}
}
