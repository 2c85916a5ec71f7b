package app

import (
	"gorm.io/gorm"

	"github.com/yungbote/neurobridge-intelligence/internal/data/repos"
	"github.com/yungbote/neurobridge-intelligence/internal/platform/logger"
)

type Repos struct {
	TopicMastery      repos.TopicMasteryRepo
	RetentionRecord   repos.RetentionRecordRepo
	WeakSignal        repos.WeakSignalRepo
	PlanTaskLog       repos.PlanTaskLogRepo
	ReadinessSnapshot repos.ReadinessSnapshotRepo
	PracticeAttempt   repos.PracticeAttemptRepo
	ModelArtifact     repos.ModelArtifactRepo
}

func wireRepos(db *gorm.DB, log *logger.Logger) Repos {
	log.Info("Wiring repos...")
	return Repos{
		TopicMastery:      repos.NewTopicMasteryRepo(db, log),
		RetentionRecord:   repos.NewRetentionRecordRepo(db, log),
		WeakSignal:        repos.NewWeakSignalRepo(db, log),
		PlanTaskLog:       repos.NewPlanTaskLogRepo(db, log),
		ReadinessSnapshot: repos.NewReadinessSnapshotRepo(db, log),
		PracticeAttempt:   repos.NewPracticeAttemptRepo(db, log),
		ModelArtifact:     repos.NewModelArtifactRepo(db, log),
	}
}
