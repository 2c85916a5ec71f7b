package intelligence

import (
	"errors"
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	types "github.com/yungbote/neurobridge-intelligence/internal/domain"
	"github.com/yungbote/neurobridge-intelligence/internal/platform/dbctx"
	"github.com/yungbote/neurobridge-intelligence/internal/platform/logger"
)

type ReadinessSnapshotRepo interface {
	Get(dbc dbctx.Context, learnerID, targetContext string) (*types.ReadinessSnapshot, error)
	Upsert(dbc dbctx.Context, row *types.ReadinessSnapshot) error
}

type readinessSnapshotRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewReadinessSnapshotRepo(db *gorm.DB, baseLog *logger.Logger) ReadinessSnapshotRepo {
	return &readinessSnapshotRepo{db: db, log: baseLog.With("repo", "ReadinessSnapshotRepo")}
}

func (r *readinessSnapshotRepo) Get(dbc dbctx.Context, learnerID, targetContext string) (*types.ReadinessSnapshot, error) {
	learnerID, targetContext = strings.TrimSpace(learnerID), strings.TrimSpace(targetContext)
	if learnerID == "" || targetContext == "" {
		return nil, nil
	}
	var row types.ReadinessSnapshot
	err := dbc.DB(r.db).
		Where("learner_id = ? AND target_context = ?", learnerID, targetContext).
		Limit(1).
		Take(&row).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &row, nil
}

func (r *readinessSnapshotRepo) Upsert(dbc dbctx.Context, row *types.ReadinessSnapshot) error {
	if row == nil || strings.TrimSpace(row.LearnerID) == "" || strings.TrimSpace(row.TargetContext) == "" {
		return nil
	}
	if row.ID == uuid.Nil {
		row.ID = uuid.New()
	}

	return dbc.DB(r.db).
		Clauses(clause.OnConflict{
			Columns: []clause.Column{
				{Name: "learner_id"},
				{Name: "target_context"},
			},
			DoUpdates: clause.AssignmentColumns([]string{
				"readiness_score",
				"confidence",
				"probability_passing",
				"days_to_target",
				"projected_readiness_date",
				"primary_gaps",
				"model_source",
				"predicted_at",
			}),
		}).
		Create(row).Error
}
