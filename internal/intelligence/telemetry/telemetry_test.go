package telemetry

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/yungbote/neurobridge-intelligence/internal/data/repos"
	"github.com/yungbote/neurobridge-intelligence/internal/data/repos/testutil"
	types "github.com/yungbote/neurobridge-intelligence/internal/domain"
	"github.com/yungbote/neurobridge-intelligence/internal/platform/apierr"
)

func TestSummarizeDefaults(t *testing.T) {
	got := Summarize(nil)
	if got.SuccessRate != 0.5 || got.ConsistencyScore != 0.5 || got.MaxDifficultyAttempted != 1 || got.Engagement != 0 {
		t.Fatalf("defaults: got=%+v", got)
	}
	if got.HasData() {
		t.Fatalf("HasData: want=false")
	}
}

func TestSummarize(t *testing.T) {
	base := time.Now().UTC()
	var rows []*types.PracticeAttempt
	// 12 attempts: the first two incorrect, the rest correct
	for i := 0; i < 12; i++ {
		rows = append(rows, &types.PracticeAttempt{
			Topic:       "trees",
			Correct:     i >= 2,
			Difficulty:  1 + i%3,
			HintsUsed:   1,
			TimeTakenMS: 1000,
			OccurredAt:  base.Add(time.Duration(i) * time.Minute),
		})
	}
	rows = append(rows, &types.PracticeAttempt{Topic: "graphs", Correct: true, IsMockInterview: true, Difficulty: 9})
	rows = append(rows, &types.PracticeAttempt{Topic: "graphs", Correct: false, IsMockInterview: true})

	got := Summarize(rows)
	if got.AttemptCount != 14 {
		t.Fatalf("AttemptCount: want=14 got=%d", got.AttemptCount)
	}
	if want := 11.0 / 14.0; got.SuccessRate != want {
		t.Fatalf("SuccessRate: want=%v got=%v", want, got.SuccessRate)
	}
	// last 10: 8 correct trees attempts, then graphs correct + incorrect
	if want := 0.9; got.ConsistencyScore < want-1e-9 || got.ConsistencyScore > want+1e-9 {
		t.Fatalf("ConsistencyScore: want=%v got=%v", want, got.ConsistencyScore)
	}
	if got.MaxDifficultyAttempted != 3 {
		t.Fatalf("MaxDifficultyAttempted: want=3 got=%d", got.MaxDifficultyAttempted)
	}
	if got.MockSuccessRate == nil || *got.MockSuccessRate != 0.5 {
		t.Fatalf("MockSuccessRate: want=0.5 got=%v", got.MockSuccessRate)
	}
	if got.PerTopicSuccess["trees"] != 10.0/12.0 {
		t.Fatalf("PerTopicSuccess trees: want=%v got=%v", 10.0/12.0, got.PerTopicSuccess["trees"])
	}
	if got.Engagement != 0.14 {
		t.Fatalf("Engagement: want=0.14 got=%v", got.Engagement)
	}
}

func TestServiceRecordAndFeatures(t *testing.T) {
	db := testutil.DB(t)
	svc := NewService(repos.NewPracticeAttemptRepo(db, testutil.Logger(t)), testutil.Logger(t), nil)
	ctx := context.Background()

	err := svc.Record(ctx, []*types.PracticeAttempt{{LearnerID: "u1"}})
	if !errors.Is(err, apierr.ErrInvalidArgument) {
		t.Fatalf("Record missing topic: want invalid argument got=%v", err)
	}

	if err := svc.Record(ctx, []*types.PracticeAttempt{
		{LearnerID: "u1", Topic: "trees", Correct: true, Difficulty: 2},
		{LearnerID: "u1", Topic: "trees", Correct: false, Difficulty: 0},
	}); err != nil {
		t.Fatalf("Record: %v", err)
	}
	f, err := svc.Features(ctx, "u1")
	if err != nil {
		t.Fatalf("Features: %v", err)
	}
	if f.AttemptCount != 2 || f.SuccessRate != 0.5 || f.MaxDifficultyAttempted != 2 {
		t.Fatalf("Features: got=%+v", f)
	}
	if f, _ := svc.Features(ctx, "stranger"); f.HasData() {
		t.Fatalf("Features for unknown learner should be defaults")
	}
}
