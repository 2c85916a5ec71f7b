package intelligence

import (
	"time"

	"github.com/google/uuid"
)

type WeakSignal struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	LearnerID string    `gorm:"column:learner_id;not null;index:idx_weak_signal_key,unique,priority:1" json:"learner_id"`
	Topic     string    `gorm:"column:topic;not null;index:idx_weak_signal_key,unique,priority:2" json:"topic"`

	RiskScore      float64   `gorm:"column:risk_score;not null;index" json:"risk_score"`
	MasteryGap     float64   `gorm:"column:mastery_gap;not null" json:"mastery_gap"`
	RetentionRisk  float64   `gorm:"column:retention_risk;not null" json:"retention_risk"`
	DifficultyGap  float64   `gorm:"column:difficulty_gap;not null" json:"difficulty_gap"`
	SignalType     string    `gorm:"column:signal_type;not null" json:"signal_type"`
	Recommendation string    `gorm:"column:recommendation" json:"recommendation"`
	DetectedAt     time.Time `gorm:"column:detected_at;not null" json:"detected_at"`
}

func (WeakSignal) TableName() string { return "weak_signal" }
