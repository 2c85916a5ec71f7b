package intelligence

import (
	"context"
	"testing"

	"github.com/yungbote/neurobridge-intelligence/internal/data/repos/testutil"
	types "github.com/yungbote/neurobridge-intelligence/internal/domain"
	"github.com/yungbote/neurobridge-intelligence/internal/platform/dbctx"
)

func TestWeakSignalRepoReplace(t *testing.T) {
	db := testutil.DB(t)
	dbc := dbctx.Context{Ctx: context.Background()}
	repo := NewWeakSignalRepo(db, testutil.Logger(t))

	first := []*types.WeakSignal{
		{Topic: "trees", RiskScore: 60, SignalType: "mastery_gap"},
		{Topic: "graphs", RiskScore: 35, SignalType: "retention_decay"},
	}
	if err := repo.ReplaceForLearner(dbc, "u1", first); err != nil {
		t.Fatalf("ReplaceForLearner: %v", err)
	}
	if err := repo.ReplaceForLearner(dbc, "u2", []*types.WeakSignal{{Topic: "trees", RiskScore: 90}}); err != nil {
		t.Fatalf("ReplaceForLearner u2: %v", err)
	}

	rows, err := repo.ListByLearner(dbc, "u1")
	if err != nil || len(rows) != 2 {
		t.Fatalf("ListByLearner: err=%v len=%d", err, len(rows))
	}
	if rows[0].Topic != "trees" {
		t.Fatalf("ListByLearner order: want=trees got=%s", rows[0].Topic)
	}

	if err := repo.ReplaceForLearner(dbc, "u1", []*types.WeakSignal{{Topic: "heaps", RiskScore: 25}}); err != nil {
		t.Fatalf("ReplaceForLearner second: %v", err)
	}
	rows, err = repo.ListByLearner(dbc, "u1")
	if err != nil || len(rows) != 1 || rows[0].Topic != "heaps" {
		t.Fatalf("after replace: err=%v rows=%d", err, len(rows))
	}

	if err := repo.ReplaceForLearner(dbc, "u1", nil); err != nil {
		t.Fatalf("ReplaceForLearner empty: %v", err)
	}
	if rows, _ := repo.ListByLearner(dbc, "u1"); len(rows) != 0 {
		t.Fatalf("after empty replace: want=0 got=%d", len(rows))
	}
	if rows, _ := repo.ListByLearner(dbc, "u2"); len(rows) != 1 {
		t.Fatalf("other learner touched: want=1 got=%d", len(rows))
	}
}
