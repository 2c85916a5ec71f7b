package app

import (
	"fmt"

	"github.com/yungbote/neurobridge-intelligence/internal/intelligence/config"
	"github.com/yungbote/neurobridge-intelligence/internal/intelligence/keylock"
	"github.com/yungbote/neurobridge-intelligence/internal/intelligence/mastery"
	"github.com/yungbote/neurobridge-intelligence/internal/intelligence/planner"
	"github.com/yungbote/neurobridge-intelligence/internal/intelligence/readiness"
	"github.com/yungbote/neurobridge-intelligence/internal/intelligence/registry"
	"github.com/yungbote/neurobridge-intelligence/internal/intelligence/retention"
	"github.com/yungbote/neurobridge-intelligence/internal/intelligence/simulator"
	"github.com/yungbote/neurobridge-intelligence/internal/intelligence/telemetry"
	"github.com/yungbote/neurobridge-intelligence/internal/intelligence/weakness"
	"github.com/yungbote/neurobridge-intelligence/internal/observability"
	"github.com/yungbote/neurobridge-intelligence/internal/platform/logger"
)

type Services struct {
	Telemetry telemetry.Service
	Mastery   mastery.Service
	Retention retention.Service
	Weakness  weakness.Service
	Planner   planner.Service
	Readiness readiness.Service
	Simulator simulator.Service
	Registry  *registry.Registry
}

func newModelStore(cfg Config, reposet Repos) (registry.Store, error) {
	switch cfg.ModelStore {
	case "", registry.StoreDB:
		return registry.NewDBStore(reposet.ModelArtifact), nil
	case registry.StoreFile:
		return registry.NewFileStore(cfg.ModelDir)
	default:
		return nil, fmt.Errorf("unknown MODEL_STORE %q", cfg.ModelStore)
	}
}

func wireServices(
	log *logger.Logger,
	cfg Config,
	tunables config.Tunables,
	reposet Repos,
	locker keylock.Locker,
	metrics *observability.Metrics,
) (Services, error) {
	log.Info("Wiring services...")

	store, err := newModelStore(cfg, reposet)
	if err != nil {
		return Services{}, err
	}
	reg := registry.New(store, log, metrics,
		registry.WithTTL(cfg.ModelTTL),
		registry.WithNegativeTTL(cfg.ModelNegativeTTL),
	)
	readinessParams := tunables.Readiness
	if cfg.ModelKey != "" {
		readinessParams.ModelKey = cfg.ModelKey
	}

	telemetrySvc := telemetry.NewService(reposet.PracticeAttempt, log, metrics)
	masterySvc := mastery.NewService(reposet.TopicMastery, locker, telemetrySvc, tunables.Mastery, log, metrics)
	retentionSvc := retention.NewService(reposet.RetentionRecord, locker, tunables.Retention, log, metrics)
	weaknessSvc := weakness.NewService(reposet.WeakSignal, masterySvc, retentionSvc, telemetrySvc, tunables.Weakness, log, metrics)

	return Services{
		Telemetry: telemetrySvc,
		Mastery:   masterySvc,
		Retention: retentionSvc,
		Weakness:  weaknessSvc,
		Planner:   planner.NewService(reposet.PlanTaskLog, masterySvc, retentionSvc, weaknessSvc, tunables.Planner, log, metrics),
		Readiness: readiness.NewService(reposet.ReadinessSnapshot, masterySvc, retentionSvc, telemetrySvc, reg, readinessParams, log, metrics),
		Simulator: simulator.NewService(masterySvc, log, metrics),
		Registry:  reg,
	}, nil
}
