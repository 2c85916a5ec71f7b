// Package planner turns mastery, retention and weakness estimates into a
// time-boxed daily task list. It writes plan_task_log as an audit trail only.
package planner

import (
	"context"
	"fmt"
	"strings"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/yungbote/neurobridge-intelligence/internal/data/repos"
	types "github.com/yungbote/neurobridge-intelligence/internal/domain"
	"github.com/yungbote/neurobridge-intelligence/internal/domain/intelligence"
	"github.com/yungbote/neurobridge-intelligence/internal/intelligence/config"
	"github.com/yungbote/neurobridge-intelligence/internal/intelligence/mastery"
	"github.com/yungbote/neurobridge-intelligence/internal/intelligence/retention"
	"github.com/yungbote/neurobridge-intelligence/internal/intelligence/weakness"
	"github.com/yungbote/neurobridge-intelligence/internal/observability"
	"github.com/yungbote/neurobridge-intelligence/internal/platform/apierr"
	"github.com/yungbote/neurobridge-intelligence/internal/platform/dbctx"
	"github.com/yungbote/neurobridge-intelligence/internal/platform/logger"
)

const (
	DefaultDailyMinutes    = 120
	DefaultPreparationDays = 30
	maxDailyMinutes        = 24 * 60
	defaultRetention       = 0.5
	focusPerDay            = 2
)

var weekdays = []string{"Monday", "Tuesday", "Wednesday", "Thursday", "Friday", "Saturday", "Sunday"}

type Request struct {
	LearnerID       string `json:"learner_id"`
	DailyMinutes    int    `json:"daily_minutes"`
	TargetContext   string `json:"target_context,omitempty"`
	PreparationDays int    `json:"preparation_days"`
}

type Task struct {
	TaskID               string  `json:"task_id"`
	Topic                string  `json:"topic"`
	TaskType             string  `json:"task_type"`
	Difficulty           string  `json:"difficulty"`
	Priority             float64 `json:"priority"`
	EstimatedTimeMinutes int     `json:"estimated_time_minutes"`
	ExpectedLearningGain float64 `json:"expected_learning_gain"`
	Rationale            string  `json:"rationale"`
}

type DayPlan struct {
	Day            string   `json:"day"`
	FocusTopics    []string `json:"focus_topics"`
	StudyMinutes   int      `json:"study_minutes"`
	RecommendedMix []string `json:"recommended_mix"`
}

type Explainability struct {
	Strategy            string   `json:"strategy"`
	Optimization        string   `json:"optimization"`
	Constraints         []string `json:"constraints"`
	FocusTopics         []string `json:"focus_topics"`
	TotalTasksGenerated int      `json:"total_tasks_generated"`
	TasksScheduledToday int      `json:"tasks_scheduled_today"`
	BudgetUtilization   float64  `json:"budget_utilization"`
	TargetContext       string   `json:"target_context"`
	PreparationDays     int      `json:"preparation_days"`
}

type Plan struct {
	LearnerID         string         `json:"learner_id"`
	PlanDate          string         `json:"plan_date"`
	TotalStudyMinutes int            `json:"total_study_minutes"`
	TasksToday        []Task         `json:"tasks_today"`
	WeeklyFocus       []string       `json:"weekly_focus"`
	WeeklyStructure   []DayPlan      `json:"weekly_structure"`
	Explainability    Explainability `json:"explainability"`
}

type Service interface {
	GeneratePlan(ctx context.Context, req Request) (*Plan, error)
}

type service struct {
	logRepo   repos.PlanTaskLogRepo
	mastery   mastery.ProfileReader
	retention retention.SnapshotReader
	focus     weakness.FocusReader
	params    config.PlannerParams
	log       *logger.Logger
	metrics   *observability.Metrics
	now       func() time.Time
}

func NewService(
	logRepo repos.PlanTaskLogRepo,
	masteryReader mastery.ProfileReader,
	retentionReader retention.SnapshotReader,
	focus weakness.FocusReader,
	params config.PlannerParams,
	log *logger.Logger,
	metrics *observability.Metrics,
) Service {
	return &service{
		logRepo:   logRepo,
		mastery:   masteryReader,
		retention: retentionReader,
		focus:     focus,
		params:    params,
		log:       log.With("service", "AdaptivePlanner"),
		metrics:   metrics,
		now:       func() time.Time { return time.Now().UTC() },
	}
}

func normalize(req Request) (Request, error) {
	req.LearnerID = strings.TrimSpace(req.LearnerID)
	req.TargetContext = strings.TrimSpace(req.TargetContext)
	if req.LearnerID == "" {
		return req, apierr.Invalid("learner_id is required")
	}
	if req.DailyMinutes < 0 || req.DailyMinutes > maxDailyMinutes {
		return req, apierr.Invalid("daily_minutes must be within 0-%d", maxDailyMinutes)
	}
	if req.PreparationDays < 0 {
		return req, apierr.Invalid("preparation_days must be non-negative")
	}
	if req.DailyMinutes == 0 {
		req.DailyMinutes = DefaultDailyMinutes
	}
	if req.PreparationDays == 0 {
		req.PreparationDays = DefaultPreparationDays
	}
	if req.TargetContext == "" {
		req.TargetContext = intelligence.DefaultTargetContext
	}
	return req, nil
}

func (s *service) GeneratePlan(ctx context.Context, req Request) (out *Plan, err error) {
	req, err = normalize(req)
	if err != nil {
		return nil, err
	}
	ctx, span := observability.StartSpan(ctx, "planner.GeneratePlan")
	start := time.Now()
	defer func() {
		s.metrics.ObserveOp("planner", "generate", time.Since(start), err)
		observability.EndSpan(span, err)
	}()

	var (
		profile mastery.Profile
		snap    retention.Snapshot
		focus   []string
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() (err error) {
		profile, err = s.mastery.Profile(gctx, req.LearnerID)
		return err
	})
	g.Go(func() (err error) {
		snap, err = s.retention.Snapshot(gctx, req.LearnerID)
		return err
	})
	g.Go(func() (err error) {
		focus, err = s.focus.FocusAreas(gctx, req.LearnerID)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	inFocus := make(map[string]bool, len(focus))
	for _, f := range focus {
		inFocus[f] = true
	}
	cands := make([]Candidate, 0, len(profile.Topics))
	for _, t := range profile.Topics {
		r, ok := snap.Retention(t.Topic)
		if !ok {
			r = defaultRetention
		}
		cands = append(cands, Score(t.Topic, t.Mastery, r, inFocus[t.Topic], s.params))
	}
	picked, used := Pack(cands, req.DailyMinutes)

	now := s.now()
	planDate := now.Format(time.DateOnly)
	tasks := make([]Task, 0, len(picked))
	for _, c := range picked {
		tasks = append(tasks, Task{
			TaskID:               fmt.Sprintf("%s:%s:%s", req.LearnerID, c.Topic, planDate),
			Topic:                c.Topic,
			TaskType:             c.TaskType,
			Difficulty:           c.Difficulty,
			Priority:             c.Priority,
			EstimatedTimeMinutes: c.Minutes,
			ExpectedLearningGain: c.LearningGain,
			Rationale:            Rationale(c),
		})
	}
	utilization := float64(used) / float64(req.DailyMinutes)
	s.metrics.ObservePlanUtilization(utilization)

	out = &Plan{
		LearnerID:         req.LearnerID,
		PlanDate:          planDate,
		TotalStudyMinutes: used,
		TasksToday:        tasks,
		WeeklyFocus:       focus,
		WeeklyStructure:   WeeklyStructure(focus, req.DailyMinutes),
		Explainability: Explainability{
			Strategy:     "bayesian mastery with retention-aware task sequencing",
			Optimization: "greedy expected learning gain under a daily time budget",
			Constraints: []string{
				fmt.Sprintf("Daily study time: %d minutes", req.DailyMinutes),
				fmt.Sprintf("Preparation period: %d days", req.PreparationDays),
			},
			FocusTopics:         focus,
			TotalTasksGenerated: len(cands),
			TasksScheduledToday: len(tasks),
			BudgetUtilization:   utilization,
			TargetContext:       req.TargetContext,
			PreparationDays:     req.PreparationDays,
		},
	}

	s.logTasks(ctx, req.LearnerID, planDate, tasks)
	return out, nil
}

// logTasks writes the audit rows. The plan is returned even if this fails.
func (s *service) logTasks(ctx context.Context, learnerID, planDate string, tasks []Task) {
	if s.logRepo == nil || len(tasks) == 0 {
		return
	}
	rows := make([]*types.PlanTaskLog, 0, len(tasks))
	for _, t := range tasks {
		rows = append(rows, &types.PlanTaskLog{
			LearnerID:            learnerID,
			PlanDate:             planDate,
			TaskID:               t.TaskID,
			Topic:                t.Topic,
			TaskType:             t.TaskType,
			Difficulty:           t.Difficulty,
			Priority:             t.Priority,
			EstimatedTimeMinutes: t.EstimatedTimeMinutes,
			ExpectedLearningGain: t.ExpectedLearningGain,
			Rationale:            t.Rationale,
		})
	}
	if _, err := s.logRepo.Create(dbctx.Of(ctx), rows); err != nil {
		s.log.Warn("plan task log write failed", "learner_id", learnerID, "error", err)
	}
}

// WeeklyStructure rotates the focus topics across the week, two per day.
func WeeklyStructure(focus []string, dailyMinutes int) []DayPlan {
	out := make([]DayPlan, 0, len(weekdays))
	for i, day := range weekdays {
		topics := make([]string, 0, focusPerDay)
		for j := 0; j < focusPerDay && j < len(focus); j++ {
			topics = append(topics, focus[(i*focusPerDay+j)%len(focus)])
		}
		mix := []string{intelligence.TaskPractice, intelligence.TaskRevision}
		if i == len(weekdays)-1 {
			mix = append(mix, intelligence.TaskMockInterview)
		}
		out = append(out, DayPlan{
			Day:            day,
			FocusTopics:    topics,
			StudyMinutes:   dailyMinutes,
			RecommendedMix: mix,
		})
	}
	return out
}
