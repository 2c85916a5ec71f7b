package domain

import "github.com/yungbote/neurobridge-intelligence/internal/domain/intelligence"

type TopicMastery = intelligence.TopicMastery
type RetentionRecord = intelligence.RetentionRecord
type WeakSignal = intelligence.WeakSignal
type PlanTaskLog = intelligence.PlanTaskLog
type ReadinessSnapshot = intelligence.ReadinessSnapshot
type PracticeAttempt = intelligence.PracticeAttempt
type ModelArtifact = intelligence.ModelArtifact

// AllModels lists every table owned by the service, in migration order.
func AllModels() []any {
	return []any{
		&TopicMastery{},
		&RetentionRecord{},
		&WeakSignal{},
		&PlanTaskLog{},
		&ReadinessSnapshot{},
		&PracticeAttempt{},
		&ModelArtifact{},
	}
}
