package intelligence

import (
	"time"

	"github.com/google/uuid"
)

type TopicMastery struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	LearnerID string    `gorm:"column:learner_id;not null;index:idx_topic_mastery_key,unique,priority:1" json:"learner_id"`
	Topic     string    `gorm:"column:topic;not null;index:idx_topic_mastery_key,unique,priority:2" json:"topic"`

	MasteryProbability    float64    `gorm:"column:mastery_probability;not null;default:0" json:"mastery_probability"`
	Confidence            float64    `gorm:"column:confidence;not null;default:0" json:"confidence"`
	Trend                 string     `gorm:"column:trend;not null;default:'stable'" json:"trend"`
	AttemptsCount         int        `gorm:"column:attempts_count;not null;default:0" json:"attempts_count"`
	RecommendedDifficulty string     `gorm:"column:recommended_difficulty" json:"recommended_difficulty"`
	LastAttemptAt         *time.Time `gorm:"column:last_attempt_at;index" json:"last_attempt_at,omitempty"`

	CreatedAt time.Time `gorm:"not null" json:"created_at"`
	UpdatedAt time.Time `gorm:"not null;index" json:"updated_at"`
}

func (TopicMastery) TableName() string { return "topic_mastery" }
