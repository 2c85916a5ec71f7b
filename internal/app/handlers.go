package app

import (
	"context"

	"gorm.io/gorm"

	httpH "github.com/yungbote/neurobridge-intelligence/internal/http/handlers"
	httpMW "github.com/yungbote/neurobridge-intelligence/internal/http/middleware"
	"github.com/yungbote/neurobridge-intelligence/internal/intelligence/keylock"
	"github.com/yungbote/neurobridge-intelligence/internal/platform/logger"
)

type Middleware struct {
	Auth *httpMW.AuthMiddleware
}

type Handlers struct {
	Health    *httpH.HealthHandler
	Mastery   *httpH.MasteryHandler
	Retention *httpH.RetentionHandler
	Weakness  *httpH.WeaknessHandler
	Planner   *httpH.PlannerHandler
	Readiness *httpH.ReadinessHandler
	Simulator *httpH.SimulatorHandler
	Telemetry *httpH.TelemetryHandler
	Model     *httpH.ModelHandler
}

func wireMiddleware(log *logger.Logger, cfg Config) Middleware {
	log.Info("Wiring middleware...")
	auth := httpMW.NewAuthMiddleware(log, cfg.JWTSecretKey)
	if !auth.Enabled() {
		log.Warn("JWT_SECRET_KEY not set, API is unauthenticated")
	}
	return Middleware{Auth: auth}
}

func wireHandlers(log *logger.Logger, cfg Config, db *gorm.DB, services Services, locker keylock.Locker) Handlers {
	log.Info("Wiring handlers...")
	return Handlers{
		Health: httpH.NewHealthHandler(httpH.HealthDeps{
			Ping: func(ctx context.Context) error {
				sqlDB, err := db.DB()
				if err != nil {
					return err
				}
				return sqlDB.PingContext(ctx)
			},
			ModelAvailable: services.Readiness.ModelAvailable,
			LockMode:       locker.Mode(),
			ModelStore:     services.Registry.Kind(),
			Version:        cfg.Version,
		}),
		Mastery:   httpH.NewMasteryHandler(services.Mastery),
		Retention: httpH.NewRetentionHandler(services.Retention),
		Weakness:  httpH.NewWeaknessHandler(services.Weakness),
		Planner:   httpH.NewPlannerHandler(services.Planner),
		Readiness: httpH.NewReadinessHandler(services.Readiness),
		Simulator: httpH.NewSimulatorHandler(services.Simulator),
		Telemetry: httpH.NewTelemetryHandler(services.Telemetry),
		Model:     httpH.NewModelHandler(services.Registry),
	}
}
