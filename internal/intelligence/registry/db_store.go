package registry

import (
	"context"
	"encoding/json"
	"fmt"

	"gorm.io/datatypes"

	"github.com/yungbote/neurobridge-intelligence/internal/data/repos"
	types "github.com/yungbote/neurobridge-intelligence/internal/domain"
	"github.com/yungbote/neurobridge-intelligence/internal/platform/dbctx"
)

// DBStore keeps every saved version in model_artifact; the newest is active.
type DBStore struct {
	repo repos.ModelArtifactRepo
}

func NewDBStore(repo repos.ModelArtifactRepo) *DBStore {
	return &DBStore{repo: repo}
}

func (s *DBStore) Kind() string { return StoreDB }

func (s *DBStore) Load(ctx context.Context, key string) (*Artifact, error) {
	row, err := s.repo.GetActive(dbctx.Of(ctx), key)
	if err != nil || row == nil {
		return nil, err
	}
	return decodeRow(row)
}

func (s *DBStore) Save(ctx context.Context, key string, model *LinearModel, meta Metadata) (*Artifact, error) {
	modelJSON, err := json.Marshal(model)
	if err != nil {
		return nil, fmt.Errorf("encode model: %w", err)
	}
	metaJSON, err := json.Marshal(meta)
	if err != nil {
		return nil, fmt.Errorf("encode metadata: %w", err)
	}
	row := &types.ModelArtifact{
		ModelKey:     key,
		ArtifactJSON: datatypes.JSON(modelJSON),
		MetadataJSON: datatypes.JSON(metaJSON),
	}
	if err := s.repo.SaveVersion(dbctx.Of(ctx), row); err != nil {
		return nil, err
	}
	return &Artifact{Key: key, Version: row.Version, Model: model, Metadata: meta}, nil
}

func decodeRow(row *types.ModelArtifact) (*Artifact, error) {
	out := &Artifact{Key: row.ModelKey, Version: row.Version, Model: &LinearModel{}}
	if err := json.Unmarshal(row.ArtifactJSON, out.Model); err != nil {
		return nil, fmt.Errorf("decode model %s v%d: %w", row.ModelKey, row.Version, err)
	}
	if len(row.MetadataJSON) > 0 {
		if err := json.Unmarshal(row.MetadataJSON, &out.Metadata); err != nil {
			return nil, fmt.Errorf("decode metadata %s v%d: %w", row.ModelKey, row.Version, err)
		}
	}
	return out, nil
}
