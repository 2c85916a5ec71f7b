package intelligence

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
)

type ModelArtifact struct {
	ID uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`

	ModelKey string `gorm:"column:model_key;not null;index:idx_model_artifact,unique,priority:1" json:"model_key"`
	Version  int    `gorm:"column:version;not null;index:idx_model_artifact,unique,priority:2" json:"version"`
	Active   bool   `gorm:"column:active;not null;default:false;index" json:"active"`

	ArtifactJSON datatypes.JSON `gorm:"column:artifact_json" json:"artifact_json"`
	MetadataJSON datatypes.JSON `gorm:"column:metadata_json" json:"metadata_json"`

	CreatedAt time.Time `gorm:"not null;index" json:"created_at"`
	UpdatedAt time.Time `gorm:"not null" json:"updated_at"`
}

func (ModelArtifact) TableName() string { return "model_artifact" }
