package intelligence

const (
	TrendImproving = "improving"
	TrendStable    = "stable"
	TrendDeclining = "declining"
)

const (
	DifficultyEasy   = "easy"
	DifficultyMedium = "medium"
	DifficultyHard   = "hard"
)

const (
	UrgencyCritical = "critical"
	UrgencyHigh     = "high"
	UrgencyMedium   = "medium"
	UrgencyLow      = "low"
)

const (
	SignalMasteryGap          = "mastery_gap"
	SignalRetentionDecay      = "retention_decay"
	SignalPerformanceVariance = "performance_variance"
	SignalGeneralWeakness     = "general_weakness"
)

const (
	TaskStudy         = "study"
	TaskPractice      = "practice"
	TaskRevision      = "revision"
	TaskMockInterview = "mock_interview"
)

const (
	ModelSourceTrained  = "trained"
	ModelSourceFallback = "fallback"
)

// DefaultTargetContext is used when a readiness request names no target.
const DefaultTargetContext = "general"
