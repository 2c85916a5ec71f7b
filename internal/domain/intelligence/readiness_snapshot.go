package intelligence

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
)

type ReadinessSnapshot struct {
	ID            uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	LearnerID     string    `gorm:"column:learner_id;not null;index:idx_readiness_key,unique,priority:1" json:"learner_id"`
	TargetContext string    `gorm:"column:target_context;not null;index:idx_readiness_key,unique,priority:2" json:"target_context"`

	ReadinessScore         float64        `gorm:"column:readiness_score;not null" json:"readiness_score"`
	Confidence             float64        `gorm:"column:confidence;not null" json:"confidence"`
	ProbabilityPassing     float64        `gorm:"column:probability_passing;not null" json:"probability_passing"`
	DaysToTarget           int            `gorm:"column:days_to_target;not null" json:"days_to_target"`
	ProjectedReadinessDate time.Time      `gorm:"column:projected_readiness_date;not null" json:"projected_readiness_date"`
	PrimaryGaps            datatypes.JSON `gorm:"column:primary_gaps" json:"primary_gaps"`
	ModelSource            string         `gorm:"column:model_source;not null" json:"model_source"`
	PredictedAt            time.Time      `gorm:"column:predicted_at;not null" json:"predicted_at"`
}

func (ReadinessSnapshot) TableName() string { return "readiness_snapshot" }
