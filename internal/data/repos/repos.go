package repos

import (
	"github.com/yungbote/neurobridge-intelligence/internal/data/repos/intelligence"
	"github.com/yungbote/neurobridge-intelligence/internal/platform/logger"
	"gorm.io/gorm"
)

type TopicMasteryRepo = intelligence.TopicMasteryRepo
type RetentionRecordRepo = intelligence.RetentionRecordRepo
type WeakSignalRepo = intelligence.WeakSignalRepo
type PlanTaskLogRepo = intelligence.PlanTaskLogRepo
type ReadinessSnapshotRepo = intelligence.ReadinessSnapshotRepo
type PracticeAttemptRepo = intelligence.PracticeAttemptRepo
type ModelArtifactRepo = intelligence.ModelArtifactRepo

func NewTopicMasteryRepo(db *gorm.DB, log *logger.Logger) TopicMasteryRepo {
	return intelligence.NewTopicMasteryRepo(db, log)
}
func NewRetentionRecordRepo(db *gorm.DB, log *logger.Logger) RetentionRecordRepo {
	return intelligence.NewRetentionRecordRepo(db, log)
}
func NewWeakSignalRepo(db *gorm.DB, log *logger.Logger) WeakSignalRepo {
	return intelligence.NewWeakSignalRepo(db, log)
}
func NewPlanTaskLogRepo(db *gorm.DB, log *logger.Logger) PlanTaskLogRepo {
	return intelligence.NewPlanTaskLogRepo(db, log)
}
func NewReadinessSnapshotRepo(db *gorm.DB, log *logger.Logger) ReadinessSnapshotRepo {
	return intelligence.NewReadinessSnapshotRepo(db, log)
}
func NewPracticeAttemptRepo(db *gorm.DB, log *logger.Logger) PracticeAttemptRepo {
	return intelligence.NewPracticeAttemptRepo(db, log)
}
func NewModelArtifactRepo(db *gorm.DB, log *logger.Logger) ModelArtifactRepo {
	return intelligence.NewModelArtifactRepo(db, log)
}
