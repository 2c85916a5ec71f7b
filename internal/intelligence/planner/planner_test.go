package planner

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/yungbote/neurobridge-intelligence/internal/data/repos"
	"github.com/yungbote/neurobridge-intelligence/internal/data/repos/testutil"
	"github.com/yungbote/neurobridge-intelligence/internal/intelligence/config"
	"github.com/yungbote/neurobridge-intelligence/internal/intelligence/mastery"
	"github.com/yungbote/neurobridge-intelligence/internal/intelligence/retention"
	"github.com/yungbote/neurobridge-intelligence/internal/platform/apierr"
	"github.com/yungbote/neurobridge-intelligence/internal/platform/dbctx"
)

type stubProfile struct{ p mastery.Profile }

func (s stubProfile) Profile(context.Context, string) (mastery.Profile, error) { return s.p, nil }

type stubSnapshot struct{ s retention.Snapshot }

func (s stubSnapshot) Snapshot(context.Context, string) (retention.Snapshot, error) { return s.s, nil }

type stubFocus struct {
	topics []string
	err    error
}

func (s stubFocus) FocusAreas(context.Context, string) ([]string, error) { return s.topics, s.err }

func profileOf(topics map[string]float64) mastery.Profile {
	var p mastery.Profile
	for topic, m := range topics {
		p.Topics = append(p.Topics, mastery.TopicSummary{Topic: topic, Mastery: m})
	}
	return p
}

func TestPackNeverExceedsBudget(t *testing.T) {
	params := config.Defaults().Planner
	cands := []Candidate{
		Score("a", 0.2, 0.5, true, params),
		Score("b", 0.5, 0.5, false, params),
		Score("c", 0.9, 0.9, false, params),
		Score("d", 0.1, 0.1, false, params),
	}
	for _, budget := range []int{0, 10, 20, 30, 45, 60, 90, 120, 240} {
		picked, used := Pack(cands, budget)
		sum := 0
		for _, c := range picked {
			sum += c.Minutes
		}
		if sum != used || used > budget {
			t.Fatalf("budget %d: used=%d sum=%d", budget, used, sum)
		}
	}
}

func TestPackTieBreaksByTopic(t *testing.T) {
	cands := []Candidate{
		{Topic: "b", Priority: 0.5, Minutes: 10},
		{Topic: "a", Priority: 0.5, Minutes: 10},
	}
	picked, _ := Pack(cands, 10)
	if len(picked) != 1 || picked[0].Topic != "a" {
		t.Fatalf("tie: want=a got=%+v", picked)
	}
}

func TestScore(t *testing.T) {
	params := config.Defaults().Planner
	tests := []struct {
		name      string
		m, r      float64
		focus     bool
		taskType  string
		minutes   int
		wantPrio  float64
		wantGain  float64
		wantUrgen float64
	}{
		{"weak focus", 0.2, 0.5, true, "study", 30, 0.8424, 0.48, 0.9},
		{"mid", 0.5, 0.5, false, "practice", 45, 0.30, 0.30, 0.3},
		{"strong fading", 0.9, 0.5, false, "revision", 20, 0.1632, 0.072, 0.3},
		{"strong fresh", 0.9, 0.9, false, "mock_interview", 120, 0.1632, 0.072, 0.3},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			c := Score("misc", tc.m, tc.r, tc.focus, params)
			if c.TaskType != tc.taskType || c.Minutes != tc.minutes {
				t.Fatalf("task: want=%s/%d got=%s/%d", tc.taskType, tc.minutes, c.TaskType, c.Minutes)
			}
			if diff := c.Priority - tc.wantPrio; diff > 1e-9 || diff < -1e-9 {
				t.Fatalf("priority: want=%v got=%v", tc.wantPrio, c.Priority)
			}
			if diff := c.LearningGain - tc.wantGain; diff > 1e-9 || diff < -1e-9 {
				t.Fatalf("gain: want=%v got=%v", tc.wantGain, c.LearningGain)
			}
			if c.Urgency != tc.wantUrgen {
				t.Fatalf("urgency: want=%v got=%v", tc.wantUrgen, c.Urgency)
			}
		})
	}
}

func TestGeneratePlan(t *testing.T) {
	db := testutil.DB(t)
	logRepo := repos.NewPlanTaskLogRepo(db, testutil.Logger(t))
	svc := NewService(
		logRepo,
		stubProfile{p: profileOf(map[string]float64{"dp": 0.2, "graphs": 0.5, "arrays": 0.9})},
		stubSnapshot{},
		stubFocus{topics: []string{"dp"}},
		config.Defaults().Planner,
		testutil.Logger(t),
		nil,
	)
	fixed := time.Date(2026, 3, 2, 9, 0, 0, 0, time.UTC)
	svc.(*service).now = func() time.Time { return fixed }

	plan, err := svc.GeneratePlan(context.Background(), Request{LearnerID: "u1", DailyMinutes: 60})
	if err != nil {
		t.Fatalf("GeneratePlan: %v", err)
	}
	if plan.PlanDate != "2026-03-02" {
		t.Fatalf("plan date: got=%s", plan.PlanDate)
	}
	if len(plan.TasksToday) != 2 || plan.TasksToday[0].Topic != "dp" || plan.TasksToday[1].Topic != "arrays" {
		t.Fatalf("tasks: got=%+v", plan.TasksToday)
	}
	if plan.TotalStudyMinutes != 50 || plan.TotalStudyMinutes > 60 {
		t.Fatalf("minutes: want=50 got=%d", plan.TotalStudyMinutes)
	}
	if plan.TasksToday[0].TaskID != "u1:dp:2026-03-02" {
		t.Fatalf("task id: got=%s", plan.TasksToday[0].TaskID)
	}
	if len(plan.WeeklyStructure) != 7 || plan.WeeklyStructure[0].FocusTopics[0] != "dp" {
		t.Fatalf("weekly: got=%+v", plan.WeeklyStructure)
	}
	if plan.Explainability.TotalTasksGenerated != 3 || plan.Explainability.PreparationDays != DefaultPreparationDays {
		t.Fatalf("explainability: got=%+v", plan.Explainability)
	}

	rows, err := logRepo.ListByLearnerDate(dbctx.Context{Ctx: context.Background()}, "u1", "2026-03-02")
	if err != nil || len(rows) != 2 {
		t.Fatalf("task log: err=%v rows=%d", err, len(rows))
	}
}

func TestGeneratePlanEmptyProfile(t *testing.T) {
	svc := NewService(nil, stubProfile{}, stubSnapshot{}, stubFocus{}, config.Defaults().Planner, testutil.Logger(t), nil)
	plan, err := svc.GeneratePlan(context.Background(), Request{LearnerID: "new"})
	if err != nil {
		t.Fatalf("GeneratePlan: %v", err)
	}
	if len(plan.TasksToday) != 0 || plan.TotalStudyMinutes != 0 {
		t.Fatalf("empty: got=%+v", plan)
	}
}

func TestGeneratePlanErrors(t *testing.T) {
	boom := errors.New("boom")
	svc := NewService(nil, stubProfile{}, stubSnapshot{}, stubFocus{err: boom}, config.Defaults().Planner, testutil.Logger(t), nil)
	if _, err := svc.GeneratePlan(context.Background(), Request{LearnerID: "u1"}); !errors.Is(err, boom) {
		t.Fatalf("focus error: want boom got=%v", err)
	}
	for _, req := range []Request{{}, {LearnerID: "u1", DailyMinutes: -5}, {LearnerID: "u1", PreparationDays: -1}} {
		if _, err := svc.GeneratePlan(context.Background(), req); !errors.Is(err, apierr.ErrInvalidArgument) {
			t.Fatalf("invalid %+v: got=%v", req, err)
		}
	}
}
