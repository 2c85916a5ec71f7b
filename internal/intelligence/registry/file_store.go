package registry

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sync"
)

// FileStore keeps one artifact per key at <dir>/<key>.json. Saving replaces
// the file atomically and bumps the version.
type FileStore struct {
	dir string
	mu  sync.Mutex
}

func NewFileStore(dir string) (*FileStore, error) {
	if dir == "" {
		dir = "./models"
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("model dir: %w", err)
	}
	return &FileStore{dir: dir}, nil
}

func (s *FileStore) Kind() string { return StoreFile }

func (s *FileStore) path(key string) string {
	return filepath.Join(s.dir, key+".json")
}

func (s *FileStore) Load(ctx context.Context, key string) (*Artifact, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	raw, err := os.ReadFile(s.path(key))
	if errors.Is(err, fs.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	var out Artifact
	if err := json.Unmarshal(raw, &out); err != nil {
		return nil, fmt.Errorf("decode %s: %w", s.path(key), err)
	}
	out.Key = key
	return &out, nil
}

func (s *FileStore) Save(ctx context.Context, key string, model *LinearModel, meta Metadata) (*Artifact, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	prev, err := s.Load(ctx, key)
	if err != nil {
		return nil, err
	}
	out := &Artifact{Key: key, Version: 1, Model: model, Metadata: meta}
	if prev != nil {
		out.Version = prev.Version + 1
	}
	raw, err := json.MarshalIndent(out, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("encode artifact: %w", err)
	}

	tmp, err := os.CreateTemp(s.dir, key+".*.tmp")
	if err != nil {
		return nil, err
	}
	defer os.Remove(tmp.Name())
	if _, err := tmp.Write(raw); err != nil {
		tmp.Close()
		return nil, err
	}
	if err := tmp.Close(); err != nil {
		return nil, err
	}
	if err := os.Rename(tmp.Name(), s.path(key)); err != nil {
		return nil, err
	}
	return out, nil
}
