package intelligence

import (
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	types "github.com/yungbote/neurobridge-intelligence/internal/domain"
	"github.com/yungbote/neurobridge-intelligence/internal/platform/dbctx"
	"github.com/yungbote/neurobridge-intelligence/internal/platform/logger"
)

type ModelArtifactRepo interface {
	GetActive(dbc dbctx.Context, modelKey string) (*types.ModelArtifact, error)
	ListVersions(dbc dbctx.Context, modelKey string) ([]*types.ModelArtifact, error)
	// SaveVersion stores row as the next version of its key and makes it the only
	// active one.
	SaveVersion(dbc dbctx.Context, row *types.ModelArtifact) error
}

type modelArtifactRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewModelArtifactRepo(db *gorm.DB, baseLog *logger.Logger) ModelArtifactRepo {
	return &modelArtifactRepo{db: db, log: baseLog.With("repo", "ModelArtifactRepo")}
}

func (r *modelArtifactRepo) GetActive(dbc dbctx.Context, modelKey string) (*types.ModelArtifact, error) {
	modelKey = strings.TrimSpace(modelKey)
	if modelKey == "" {
		return nil, nil
	}
	var row types.ModelArtifact
	err := dbc.DB(r.db).
		Where("model_key = ? AND active = ?", modelKey, true).
		Order("version DESC").
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

func (r *modelArtifactRepo) ListVersions(dbc dbctx.Context, modelKey string) ([]*types.ModelArtifact, error) {
	out := []*types.ModelArtifact{}
	modelKey = strings.TrimSpace(modelKey)
	if modelKey == "" {
		return out, nil
	}
	if err := dbc.DB(r.db).
		Where("model_key = ?", modelKey).
		Order("version DESC").
		Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}

func (r *modelArtifactRepo) SaveVersion(dbc dbctx.Context, row *types.ModelArtifact) error {
	if row == nil {
		return nil
	}
	row.ModelKey = strings.TrimSpace(row.ModelKey)
	if row.ModelKey == "" {
		return errors.New("model artifact: empty model key")
	}

	save := func(tx *gorm.DB) error {
		var maxVersion int
		if err := tx.Model(&types.ModelArtifact{}).
			Where("model_key = ?", row.ModelKey).
			Select("COALESCE(MAX(version), 0)").
			Scan(&maxVersion).Error; err != nil {
			return err
		}
		if err := tx.Model(&types.ModelArtifact{}).
			Where("model_key = ? AND active = ?", row.ModelKey, true).
			Update("active", false).Error; err != nil {
			return err
		}
		now := time.Now().UTC()
		if row.ID == uuid.Nil {
			row.ID = uuid.New()
		}
		row.Version = maxVersion + 1
		row.Active = true
		row.CreatedAt = now
		row.UpdatedAt = now
		return tx.Create(row).Error
	}

	if dbc.Tx != nil {
		return save(dbc.DB(r.db))
	}
	return dbc.DB(r.db).Transaction(save)
}
