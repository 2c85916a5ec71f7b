package intelligence

import (
	"time"

	"github.com/google/uuid"
)

// PracticeAttempt is one raw telemetry row. Difficulty is on the 1-3 scale.
type PracticeAttempt struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	LearnerID string    `gorm:"column:learner_id;not null;index:idx_practice_attempt_learner,priority:1" json:"learner_id"`
	Topic     string    `gorm:"column:topic;not null;index" json:"topic"`

	Correct         bool      `gorm:"column:correct;not null" json:"correct"`
	Difficulty      int       `gorm:"column:difficulty;not null;default:1" json:"difficulty"`
	HintsUsed       int       `gorm:"column:hints_used;not null;default:0" json:"hints_used"`
	TimeTakenMS     int64     `gorm:"column:time_taken_ms;not null;default:0" json:"time_taken_ms"`
	IsMockInterview bool      `gorm:"column:is_mock_interview;not null;default:false" json:"is_mock_interview"`
	OccurredAt      time.Time `gorm:"column:occurred_at;not null;index:idx_practice_attempt_learner,priority:2" json:"occurred_at"`
}

func (PracticeAttempt) TableName() string { return "practice_attempt" }
