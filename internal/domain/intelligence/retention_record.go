package intelligence

import (
	"time"

	"github.com/google/uuid"
)

type RetentionRecord struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	LearnerID string    `gorm:"column:learner_id;not null;index:idx_retention_key,unique,priority:1;index:idx_retention_due,priority:1" json:"learner_id"`
	Topic     string    `gorm:"column:topic;not null;index:idx_retention_key,unique,priority:2" json:"topic"`

	RetentionProbability float64    `gorm:"column:retention_probability;not null;default:0" json:"retention_probability"`
	StabilityDays        float64    `gorm:"column:stability_days;not null;default:3" json:"stability_days"`
	NextRevisionAt       time.Time  `gorm:"column:next_revision_at;not null;index:idx_retention_due,priority:2" json:"next_revision_at"`
	LastRevisionAt       *time.Time `gorm:"column:last_revision_at" json:"last_revision_at,omitempty"`
	RevisionCount        int        `gorm:"column:revision_count;not null;default:0" json:"revision_count"`
	LastSuccessful       bool       `gorm:"column:last_successful;not null;default:false" json:"last_successful"`

	CreatedAt time.Time `gorm:"not null" json:"created_at"`
	UpdatedAt time.Time `gorm:"not null" json:"updated_at"`
}

func (RetentionRecord) TableName() string { return "retention_record" }
