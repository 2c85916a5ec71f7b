package app

import (
	"github.com/gin-gonic/gin"

	"github.com/yungbote/neurobridge-intelligence/internal/http"
	"github.com/yungbote/neurobridge-intelligence/internal/observability"
	"github.com/yungbote/neurobridge-intelligence/internal/platform/logger"
)

func wireRouter(log *logger.Logger, cfg Config, metrics *observability.Metrics, handlers Handlers, middleware Middleware) *gin.Engine {
	return http.NewRouter(http.RouterConfig{
		Log:              log,
		Metrics:          metrics,
		ServiceName:      serviceName,
		AllowedOrigins:   cfg.AllowedOrigins,
		AuthMiddleware:   middleware.Auth,
		HealthHandler:    handlers.Health,
		MasteryHandler:   handlers.Mastery,
		RetentionHandler: handlers.Retention,
		WeaknessHandler:  handlers.Weakness,
		PlannerHandler:   handlers.Planner,
		ReadinessHandler: handlers.Readiness,
		SimulatorHandler: handlers.Simulator,
		TelemetryHandler: handlers.Telemetry,
		ModelHandler:     handlers.Model,
	})
}
