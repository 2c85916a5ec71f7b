package intelligence

import (
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	types "github.com/yungbote/neurobridge-intelligence/internal/domain"
	"github.com/yungbote/neurobridge-intelligence/internal/platform/dbctx"
	"github.com/yungbote/neurobridge-intelligence/internal/platform/logger"
)

type PracticeAttemptRepo interface {
	Create(dbc dbctx.Context, rows []*types.PracticeAttempt) ([]*types.PracticeAttempt, error)
	// ListByLearner returns attempts oldest first. limit <= 0 returns all of them.
	ListByLearner(dbc dbctx.Context, learnerID string, limit int) ([]*types.PracticeAttempt, error)
}

type practiceAttemptRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewPracticeAttemptRepo(db *gorm.DB, baseLog *logger.Logger) PracticeAttemptRepo {
	return &practiceAttemptRepo{db: db, log: baseLog.With("repo", "PracticeAttemptRepo")}
}

func (r *practiceAttemptRepo) Create(dbc dbctx.Context, rows []*types.PracticeAttempt) ([]*types.PracticeAttempt, error) {
	if len(rows) == 0 {
		return []*types.PracticeAttempt{}, nil
	}
	now := time.Now().UTC()
	for _, row := range rows {
		if row.ID == uuid.Nil {
			row.ID = uuid.New()
		}
		if row.OccurredAt.IsZero() {
			row.OccurredAt = now
		}
	}
	if err := dbc.DB(r.db).CreateInBatches(&rows, 200).Error; err != nil {
		return nil, err
	}
	return rows, nil
}

func (r *practiceAttemptRepo) ListByLearner(dbc dbctx.Context, learnerID string, limit int) ([]*types.PracticeAttempt, error) {
	out := []*types.PracticeAttempt{}
	learnerID = strings.TrimSpace(learnerID)
	if learnerID == "" {
		return out, nil
	}
	q := dbc.DB(r.db).
		Where("learner_id = ?", learnerID).
		Order("occurred_at ASC").
		Order("id ASC")
	if limit > 0 {
		q = q.Limit(limit)
	}
	if err := q.Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}
