package planner

import (
	"fmt"
	"math"
	"slices"
	"sort"

	"github.com/yungbote/neurobridge-intelligence/internal/domain/intelligence"
	"github.com/yungbote/neurobridge-intelligence/internal/intelligence/config"
	"github.com/yungbote/neurobridge-intelligence/internal/platform/numeric"
)

// Candidate is a scored task before packing.
type Candidate struct {
	Topic           string
	TaskType        string
	Difficulty      string
	Mastery         float64
	Retention       float64
	Importance      float64
	Urgency         float64
	DifficultyMatch float64
	LearningGain    float64
	Priority        float64
	Minutes         int
	InFocus         bool
}

func urgency(inFocus bool, m, r float64) float64 {
	switch {
	case inFocus:
		return 0.9
	case m < 0.5:
		return 0.7
	case r < 0.5:
		return 0.6
	default:
		return 0.3
	}
}

// taskFor picks the task shape for a mastery level and returns how well its
// difficulty matches the learner.
func taskFor(m, r float64) (taskType, difficulty string, match float64) {
	switch {
	case m < 0.4:
		return intelligence.TaskStudy, intelligence.DifficultyEasy, (1 - m) / 2
	case m < 0.7:
		return intelligence.TaskPractice, intelligence.DifficultyMedium, 1 - math.Abs(m-0.7)/0.3
	default:
		taskType = intelligence.TaskMockInterview
		if r < 0.7 {
			taskType = intelligence.TaskRevision
		}
		return taskType, intelligence.DifficultyHard, 1 - (1-m)*0.5
	}
}

func LearningGain(m, importance, r, match float64) float64 {
	mult := 1.0
	switch {
	case r < 0.5:
		mult = 1.5
	case match > 0.7:
		mult = 1.2
	}
	return numeric.Clamp01((1 - m) * importance * mult)
}

func Priority(gain, urgency, m float64) float64 {
	p := 0.6*gain + 0.4*urgency
	if m < 0.4 {
		p *= 1.3
	}
	return numeric.Clamp01(p)
}

func Score(topic string, m, r float64, inFocus bool, params config.PlannerParams) Candidate {
	m, r = numeric.Clamp01(m), numeric.Clamp01(r)
	taskType, difficulty, match := taskFor(m, r)
	importance := params.Importance(topic)
	u := urgency(inFocus, m, r)
	gain := LearningGain(m, importance, r, match)
	return Candidate{
		Topic:           topic,
		TaskType:        taskType,
		Difficulty:      difficulty,
		Mastery:         m,
		Retention:       r,
		Importance:      importance,
		Urgency:         u,
		DifficultyMatch: match,
		LearningGain:    gain,
		Priority:        Priority(gain, u, m),
		Minutes:         params.Minutes(taskType),
		InFocus:         inFocus,
	}
}

// Pack orders candidates by priority (topic name breaks ties) and greedily
// takes every one that still fits the budget. The result never exceeds
// budgetMinutes.
func Pack(cands []Candidate, budgetMinutes int) ([]Candidate, int) {
	sorted := slices.Clone(cands)
	sort.SliceStable(sorted, func(i, j int) bool {
		if sorted[i].Priority != sorted[j].Priority {
			return sorted[i].Priority > sorted[j].Priority
		}
		return sorted[i].Topic < sorted[j].Topic
	})
	out := make([]Candidate, 0, len(sorted))
	used := 0
	for _, c := range sorted {
		if c.Minutes <= 0 || used+c.Minutes > budgetMinutes {
			continue
		}
		used += c.Minutes
		out = append(out, c)
	}
	return out, used
}

func Rationale(c Candidate) string {
	switch {
	case c.InFocus:
		return fmt.Sprintf("Priority weak area: %s at %.0f%% mastery", c.Topic, c.Mastery*100)
	case c.Mastery < 0.4:
		return fmt.Sprintf("Foundational learning: %s needs strengthening", c.Topic)
	case c.Mastery < 0.7:
		return fmt.Sprintf("Skill consolidation: practice %s to reach proficiency", c.Topic)
	default:
		return fmt.Sprintf("Maintenance: %s to sustain %s knowledge", c.TaskType, c.Topic)
	}
}
