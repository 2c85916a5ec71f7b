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

type TopicMasteryRepo interface {
	Get(dbc dbctx.Context, learnerID, topic string) (*types.TopicMastery, error)
	ListByLearner(dbc dbctx.Context, learnerID string) ([]*types.TopicMastery, error)
	Upsert(dbc dbctx.Context, row *types.TopicMastery) error
}

type topicMasteryRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewTopicMasteryRepo(db *gorm.DB, baseLog *logger.Logger) TopicMasteryRepo {
	return &topicMasteryRepo{db: db, log: baseLog.With("repo", "TopicMasteryRepo")}
}

func (r *topicMasteryRepo) Get(dbc dbctx.Context, learnerID, topic string) (*types.TopicMastery, error) {
	learnerID, topic = strings.TrimSpace(learnerID), strings.TrimSpace(topic)
	if learnerID == "" || topic == "" {
		return nil, nil
	}
	var row types.TopicMastery
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

func (r *topicMasteryRepo) ListByLearner(dbc dbctx.Context, learnerID string) ([]*types.TopicMastery, error) {
	out := []*types.TopicMastery{}
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

func (r *topicMasteryRepo) Upsert(dbc dbctx.Context, row *types.TopicMastery) error {
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
				"mastery_probability",
				"confidence",
				"trend",
				"attempts_count",
				"recommended_difficulty",
				"last_attempt_at",
				"updated_at",
			}),
		}).
		Create(row).Error
}
