package registry

import (
	"context"
	"fmt"
	"regexp"
	"strings"
	"time"
)

const (
	StoreDB   = "db"
	StoreFile = "file"
)

var keyPattern = regexp.MustCompile(`^[a-z0-9][a-z0-9_.-]{0,127}$`)

// Metadata travels with every saved artifact.
type Metadata struct {
	SavedAt         time.Time `json:"saved_at"`
	Type            string    `json:"type"`
	Task            string    `json:"task,omitempty"`
	FeatureNames    []string  `json:"feature_names"`
	TrainingSamples int       `json:"training_samples"`
	RMSE            float64   `json:"rmse,omitempty"`
}

type Artifact struct {
	Key      string       `json:"key"`
	Version  int          `json:"version"`
	Model    *LinearModel `json:"model"`
	Metadata Metadata     `json:"metadata"`
}

// Store persists artifacts. Load returns (nil, nil) when the key has never
// been saved.
type Store interface {
	Load(ctx context.Context, key string) (*Artifact, error)
	Save(ctx context.Context, key string, model *LinearModel, meta Metadata) (*Artifact, error)
	Kind() string
}

func NormalizeKey(key string) (string, error) {
	key = strings.ToLower(strings.TrimSpace(key))
	if !keyPattern.MatchString(key) {
		return "", fmt.Errorf("model key %q is invalid", key)
	}
	return key, nil
}
