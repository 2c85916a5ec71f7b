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

type WeakSignalRepo interface {
	ListByLearner(dbc dbctx.Context, learnerID string) ([]*types.WeakSignal, error)
	// ReplaceForLearner drops every stored signal for the learner and inserts rows
	// in the same transaction.
	ReplaceForLearner(dbc dbctx.Context, learnerID string, rows []*types.WeakSignal) error
}

type weakSignalRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewWeakSignalRepo(db *gorm.DB, baseLog *logger.Logger) WeakSignalRepo {
	return &weakSignalRepo{db: db, log: baseLog.With("repo", "WeakSignalRepo")}
}

func (r *weakSignalRepo) ListByLearner(dbc dbctx.Context, learnerID string) ([]*types.WeakSignal, error) {
	out := []*types.WeakSignal{}
	learnerID = strings.TrimSpace(learnerID)
	if learnerID == "" {
		return out, nil
	}
	if err := dbc.DB(r.db).
		Where("learner_id = ?", learnerID).
		Order("risk_score DESC").
		Order("topic ASC").
		Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}

func (r *weakSignalRepo) ReplaceForLearner(dbc dbctx.Context, learnerID string, rows []*types.WeakSignal) error {
	learnerID = strings.TrimSpace(learnerID)
	if learnerID == "" {
		return nil
	}
	now := time.Now().UTC()
	for _, row := range rows {
		if row == nil {
			continue
		}
		row.LearnerID = learnerID
		if row.ID == uuid.Nil {
			row.ID = uuid.New()
		}
		if row.DetectedAt.IsZero() {
			row.DetectedAt = now
		}
	}

	replace := func(tx *gorm.DB) error {
		if err := tx.Where("learner_id = ?", learnerID).Delete(&types.WeakSignal{}).Error; err != nil {
			return err
		}
		keep := make([]*types.WeakSignal, 0, len(rows))
		for _, row := range rows {
			if row != nil {
				keep = append(keep, row)
			}
		}
		if len(keep) == 0 {
			return nil
		}
		return tx.Create(&keep).Error
	}

	if dbc.Tx != nil {
		return replace(dbc.DB(r.db))
	}
	return dbc.DB(r.db).Transaction(replace)
}
