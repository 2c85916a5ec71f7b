// Package registry stores and serves trained regression artifacts. Loaded
// artifacts are cached in-process; an absent artifact is a normal state.
package registry

import (
	"context"
	"fmt"
	"sync"
	"time"

	"golang.org/x/sync/singleflight"

	"github.com/yungbote/neurobridge-intelligence/internal/observability"
	"github.com/yungbote/neurobridge-intelligence/internal/platform/apierr"
	"github.com/yungbote/neurobridge-intelligence/internal/platform/logger"
)

type Info struct {
	Key      string    `json:"key"`
	Store    string    `json:"store"`
	Loaded   bool      `json:"loaded"`
	Version  int       `json:"version,omitempty"`
	Metadata *Metadata `json:"metadata,omitempty"`
}

const (
	DefaultTTL         = 5 * time.Minute
	DefaultNegativeTTL = 30 * time.Second
)

type Registry struct {
	store   Store
	log     *logger.Logger
	metrics *observability.Metrics

	// ttl bounds how long a loaded artifact is served before the store is
	// read again. A zero ttl never expires it.
	// negativeTTL bounds how long absence is remembered. Zero never caches it.
	ttl         time.Duration
	negativeTTL time.Duration
	now         func() time.Time

	mu    sync.RWMutex
	cache map[string]cacheEntry
	group singleflight.Group
}

// cacheEntry with a nil artifact records that the store had nothing.
type cacheEntry struct {
	artifact *Artifact
	loadedAt time.Time
}

type Option func(*Registry)

// WithTTL sets how long a loaded artifact is trusted before it is reloaded.
func WithTTL(d time.Duration) Option {
	return func(r *Registry) { r.ttl = d }
}

// WithNegativeTTL sets how long an absent artifact is remembered.
func WithNegativeTTL(d time.Duration) Option {
	return func(r *Registry) { r.negativeTTL = d }
}

func New(store Store, log *logger.Logger, metrics *observability.Metrics, opts ...Option) *Registry {
	r := &Registry{
		store:       store,
		log:         log.With("service", "ModelRegistry", "store", store.Kind()),
		metrics:     metrics,
		ttl:         DefaultTTL,
		negativeTTL: DefaultNegativeTTL,
		now:         time.Now,
		cache:       map[string]cacheEntry{},
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

func (r *Registry) Kind() string { return r.store.Kind() }

func (r *Registry) fresh(e cacheEntry) bool {
	age := r.now().Sub(e.loadedAt)
	if e.artifact == nil {
		return r.negativeTTL > 0 && age < r.negativeTTL
	}
	return r.ttl <= 0 || age < r.ttl
}

// Load returns the cached artifact while it is fresh, otherwise reads the
// store. Concurrent misses for one key share a single store read. When the
// store fails, a previously loaded artifact keeps being served.
func (r *Registry) Load(ctx context.Context, key string) (*Artifact, error) {
	return r.load(ctx, key, false)
}

// Refresh bypasses the cache and reloads from the store. A failed reload
// still serves the previously loaded artifact.
func (r *Registry) Refresh(ctx context.Context, key string) (*Artifact, error) {
	return r.load(ctx, key, true)
}

func (r *Registry) load(ctx context.Context, key string, force bool) (*Artifact, error) {
	key, err := NormalizeKey(key)
	if err != nil {
		return nil, apierr.Invalid("%v", err)
	}
	e, cached := r.entry(key)
	if cached && !force && r.fresh(e) {
		r.metrics.ObserveCacheLookup(true)
		return e.artifact, nil
	}
	r.metrics.ObserveCacheLookup(false)

	v, err, _ := r.group.Do(key, func() (any, error) {
		a, err := r.store.Load(ctx, key)
		if err != nil {
			return nil, err
		}
		if a != nil {
			if err := a.Model.Validate(); err != nil {
				return nil, fmt.Errorf("artifact %s v%d: %w", key, a.Version, err)
			}
		}
		r.put(key, a)
		switch {
		case a == nil:
		case e.artifact == nil:
			r.log.Info("model loaded", "key", key, "version", a.Version)
		case e.artifact.Version != a.Version:
			r.log.Info("model updated", "key", key, "from", e.artifact.Version, "to", a.Version)
		}
		return a, nil
	})
	if err != nil {
		if e.artifact != nil {
			r.log.Warn("model reload failed, serving cached version", "key", key, "version", e.artifact.Version, "error", err)
			return e.artifact, nil
		}
		return nil, err
	}
	return v.(*Artifact), nil
}

func (r *Registry) Save(ctx context.Context, key string, model *LinearModel, meta Metadata) (*Artifact, error) {
	key, err := NormalizeKey(key)
	if err != nil {
		return nil, apierr.Invalid("%v", err)
	}
	if err := model.Validate(); err != nil {
		return nil, apierr.Invalid("%v", err)
	}
	if meta.SavedAt.IsZero() {
		meta.SavedAt = time.Now().UTC()
	}
	if meta.Type == "" {
		meta.Type = ModelTypeLinear
	}
	a, err := r.store.Save(ctx, key, model, meta)
	if err != nil {
		return nil, apierr.Unavailable("save model", err)
	}
	r.put(a.Key, a)
	r.log.Info("model saved", "key", key, "version", a.Version)
	return a, nil
}

// Get returns the cached artifact, stale or not, without touching the store.
func (r *Registry) Get(key string) *Artifact {
	key, err := NormalizeKey(key)
	if err != nil {
		return nil
	}
	e, _ := r.entry(key)
	return e.artifact
}

func (r *Registry) entry(key string) (cacheEntry, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	e, ok := r.cache[key]
	return e, ok
}

func (r *Registry) Available(key string) bool {
	return r.Get(key) != nil
}

func (r *Registry) Info(key string) Info {
	out := Info{Key: key, Store: r.store.Kind()}
	a := r.Get(key)
	if a == nil {
		return out
	}
	meta := a.Metadata
	out.Key = a.Key
	out.Loaded = true
	out.Version = a.Version
	out.Metadata = &meta
	return out
}

func (r *Registry) put(key string, a *Artifact) {
	r.mu.Lock()
	r.cache[key] = cacheEntry{artifact: a, loadedAt: r.now()}
	r.mu.Unlock()
}
