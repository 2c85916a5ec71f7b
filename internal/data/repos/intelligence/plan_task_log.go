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

type PlanTaskLogRepo interface {
	Create(dbc dbctx.Context, rows []*types.PlanTaskLog) ([]*types.PlanTaskLog, error)
	ListByLearnerDate(dbc dbctx.Context, learnerID, planDate string) ([]*types.PlanTaskLog, error)
}

type planTaskLogRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewPlanTaskLogRepo(db *gorm.DB, baseLog *logger.Logger) PlanTaskLogRepo {
	return &planTaskLogRepo{db: db, log: baseLog.With("repo", "PlanTaskLogRepo")}
}

func (r *planTaskLogRepo) Create(dbc dbctx.Context, rows []*types.PlanTaskLog) ([]*types.PlanTaskLog, error) {
	if len(rows) == 0 {
		return []*types.PlanTaskLog{}, nil
	}
	now := time.Now().UTC()
	for _, row := range rows {
		if row.ID == uuid.Nil {
			row.ID = uuid.New()
		}
		if row.CreatedAt.IsZero() {
			row.CreatedAt = now
		}
	}
	if err := dbc.DB(r.db).Create(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}

func (r *planTaskLogRepo) ListByLearnerDate(dbc dbctx.Context, learnerID, planDate string) ([]*types.PlanTaskLog, error) {
	out := []*types.PlanTaskLog{}
	learnerID = strings.TrimSpace(learnerID)
	if learnerID == "" {
		return out, nil
	}
	q := dbc.DB(r.db).Where("learner_id = ?", learnerID)
	if planDate = strings.TrimSpace(planDate); planDate != "" {
		q = q.Where("plan_date = ?", planDate)
	}
	if err := q.Order("created_at ASC").Order("priority DESC").Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}
