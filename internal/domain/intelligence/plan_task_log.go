package intelligence

import (
	"time"

	"github.com/google/uuid"
)

// PlanTaskLog records a task that was handed to a learner. It is an audit
// trail, not an input to any estimator.
type PlanTaskLog struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	LearnerID string    `gorm:"column:learner_id;not null;index:idx_plan_task_day,priority:1" json:"learner_id"`
	PlanDate  string    `gorm:"column:plan_date;not null;index:idx_plan_task_day,priority:2" json:"plan_date"`

	TaskID               string  `gorm:"column:task_id;not null" json:"task_id"`
	Topic                string  `gorm:"column:topic;not null" json:"topic"`
	TaskType             string  `gorm:"column:task_type;not null" json:"task_type"`
	Difficulty           string  `gorm:"column:difficulty;not null" json:"difficulty"`
	Priority             float64 `gorm:"column:priority;not null" json:"priority"`
	EstimatedTimeMinutes int     `gorm:"column:estimated_time_minutes;not null" json:"estimated_time_minutes"`
	ExpectedLearningGain float64 `gorm:"column:expected_learning_gain;not null" json:"expected_learning_gain"`
	Rationale            string  `gorm:"column:rationale" json:"rationale"`

	CreatedAt time.Time `gorm:"not null" json:"created_at"`
}

func (PlanTaskLog) TableName() string { return "plan_task_log" }
