package intelligence

import (
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	types "github.com/yungbote/neurobridge-intelligence/internal/domain"
	"github.com/yungbote/neurobridge-intelligence/internal/platform/dbctx"
	"github.com/yungbote/neurobridge-intelligence/internal/platform/logger"
)

type RetentionRecordRepo interface {
	Get(dbc dbctx.Context, learnerID, topic string) (*types.RetentionRecord, error)
	ListByLearner(dbc dbctx.Context, learnerID string) ([]*types.RetentionRecord, error)
	// ListDue returns records whose next revision is at or before asOf, oldest first.
	ListDue(dbc dbctx.Context, learnerID string, asOf time.Time, limit int) ([]*types.RetentionRecord, error)
	Upsert(dbc dbctx.Context, row *types.RetentionRecord) error
}

type retentionRecordRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewRetentionRecordRepo(db *gorm.DB, baseLog *logger.Logger) RetentionRecordRepo {
	return &retentionRecordRepo{db: db, log: baseLog.With("repo", "RetentionRecordRepo")}
}

func (r *retentionRecordRepo) Get(dbc dbctx.Context, learnerID, topic string) (*types.RetentionRecord, error) {
	learnerID, topic = strings.TrimSpace(learnerID), strings.TrimSpace(topic)
	if learnerID == "" || topic == "" {
		return nil, nil
	}
	var row types.RetentionRecord
	err := dbc.DB(r.db).
		Where("learner_id = ? AND topic = ?", learnerID, topic).
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

func (r *retentionRecordRepo) ListByLearner(dbc dbctx.Context, learnerID string) ([]*types.RetentionRecord, error) {
	out := []*types.RetentionRecord{}
	learnerID = strings.TrimSpace(learnerID)
	if learnerID == "" {
		return out, nil
	}
	if err := dbc.DB(r.db).
		Where("learner_id = ?", learnerID).
		Order("topic ASC").
		Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}

func (r *retentionRecordRepo) ListDue(dbc dbctx.Context, learnerID string, asOf time.Time, limit int) ([]*types.RetentionRecord, error) {
	out := []*types.RetentionRecord{}
	learnerID = strings.TrimSpace(learnerID)
	if learnerID == "" {
		return out, nil
	}
	if asOf.IsZero() {
		asOf = time.Now()
	}
	q := dbc.DB(r.db).
		Where("learner_id = ? AND next_revision_at <= ?", learnerID, asOf.UTC()).
		Order("next_revision_at ASC").
		Order("topic ASC")
	if limit > 0 {
		q = q.Limit(limit)
	}
	if err := q.Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}

func (r *retentionRecordRepo) Upsert(dbc dbctx.Context, row *types.RetentionRecord) error {
	if row == nil || strings.TrimSpace(row.LearnerID) == "" || strings.TrimSpace(row.Topic) == "" {
		return nil
	}
	if row.ID == uuid.Nil {
		row.ID = uuid.New()
	}
	now := time.Now().UTC()
	row.UpdatedAt = now
	if row.CreatedAt.IsZero() {
		row.CreatedAt = now
	}

	return dbc.DB(r.db).
		Clauses(clause.OnConflict{
			Columns: []clause.Column{
				{Name: "learner_id"},
				{Name: "topic"},
			},
			DoUpdates: clause.AssignmentColumns([]string{
				"retention_probability",
				"stability_days",
				"next_revision_at",
				"last_revision_at",
				"revision_count",
				"last_successful",
				"updated_at",
			}),
		}).
		Create(row).Error
}
