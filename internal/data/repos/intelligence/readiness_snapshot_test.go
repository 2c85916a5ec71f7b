package intelligence

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/yungbote/neurobridge-intelligence/internal/data/repos/testutil"
	types "github.com/yungbote/neurobridge-intelligence/internal/domain"
	"github.com/yungbote/neurobridge-intelligence/internal/platform/dbctx"
	"gorm.io/datatypes"
)

func TestReadinessSnapshotRepoUpsert(t *testing.T) {
	db := testutil.DB(t)
	dbc := dbctx.Context{Ctx: context.Background()}
	repo := NewReadinessSnapshotRepo(db, testutil.Logger(t))

	now := time.Now().UTC()
	snap := &types.ReadinessSnapshot{
		LearnerID:              "u1",
		TargetContext:          "general",
		ReadinessScore:         42,
		ProbabilityPassing:     0.2,
		DaysToTarget:           19,
		ProjectedReadinessDate: now.AddDate(0, 0, 19),
		PrimaryGaps:            datatypes.JSON([]byte(`["trees"]`)),
		ModelSource:            "fallback",
		PredictedAt:            now,
	}
	if err := repo.Upsert(dbc, snap); err != nil {
		t.Fatalf("Upsert: %v", err)
	}
	snap2 := *snap
	snap2.ID = uuid.Nil
	snap2.ReadinessScore = 70
	snap2.DaysToTarget = 5
	if err := repo.Upsert(dbc, &snap2); err != nil {
		t.Fatalf("Upsert again: %v", err)
	}

	got, err := repo.Get(dbc, "u1", "general")
	if err != nil || got == nil {
		t.Fatalf("Get: err=%v row=%v", err, got)
	}
	if got.ReadinessScore != 70 || got.DaysToTarget != 5 {
		t.Fatalf("Get after upsert: want=70/5 got=%v/%d", got.ReadinessScore, got.DaysToTarget)
	}
	if got, err := repo.Get(dbc, "u1", "faang"); err != nil || got != nil {
		t.Fatalf("Get other context: want=nil,nil got=%v,%v", got, err)
	}
}
