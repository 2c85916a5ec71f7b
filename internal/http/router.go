package http

import (
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	httpH "github.com/yungbote/neurobridge-intelligence/internal/http/handlers"
	httpMW "github.com/yungbote/neurobridge-intelligence/internal/http/middleware"
	"github.com/yungbote/neurobridge-intelligence/internal/observability"
	"github.com/yungbote/neurobridge-intelligence/internal/platform/logger"
)

type RouterConfig struct {
	Log            *logger.Logger
	Metrics        *observability.Metrics
	ServiceName    string
	AllowedOrigins []string
	AuthMiddleware *httpMW.AuthMiddleware

	HealthHandler    *httpH.HealthHandler
	MasteryHandler   *httpH.MasteryHandler
	RetentionHandler *httpH.RetentionHandler
	WeaknessHandler  *httpH.WeaknessHandler
	PlannerHandler   *httpH.PlannerHandler
	ReadinessHandler *httpH.ReadinessHandler
	SimulatorHandler *httpH.SimulatorHandler
	TelemetryHandler *httpH.TelemetryHandler
	ModelHandler     *httpH.ModelHandler
}

func NewRouter(cfg RouterConfig) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	if cfg.ServiceName != "" {
		r.Use(httpMW.Tracing(cfg.ServiceName))
	}
	r.Use(httpMW.AttachTraceContext())
	r.Use(httpMW.Observe(cfg.Log, cfg.Metrics))
	r.Use(httpMW.CORS(cfg.AllowedOrigins...))

	// Health
	if cfg.HealthHandler != nil {
		r.GET("/healthcheck", cfg.HealthHandler.HealthCheck)
	}
	if cfg.Metrics != nil {
		r.GET("/metrics", gin.WrapH(promhttp.Handler()))
	}

	api := r.Group("/api/ml")
	if cfg.HealthHandler != nil {
		api.GET("/health", cfg.HealthHandler.Health)
	}

	protected := api.Group("/")
	{
		if cfg.AuthMiddleware != nil {
			protected.Use(cfg.AuthMiddleware.RequireAuth())
		}

		// Mastery
		if cfg.MasteryHandler != nil {
			protected.POST("/mastery/update", cfg.MasteryHandler.Update)
			protected.GET("/mastery/profile/:learner", cfg.MasteryHandler.Profile)
		}

		// Retention
		if cfg.RetentionHandler != nil {
			protected.POST("/retention/update", cfg.RetentionHandler.Update)
			protected.GET("/retention/queue/:learner", cfg.RetentionHandler.Queue)
			protected.GET("/retention/snapshot/:learner", cfg.RetentionHandler.Snapshot)
		}

		// Weakness
		if cfg.WeaknessHandler != nil {
			protected.POST("/weakness/analyze", cfg.WeaknessHandler.Analyze)
			protected.GET("/weakness/signals/:learner", cfg.WeaknessHandler.Signals)
		}

		if cfg.PlannerHandler != nil {
			protected.POST("/planner/generate", cfg.PlannerHandler.Generate)
		}

		// Readiness
		if cfg.ReadinessHandler != nil {
			protected.POST("/readiness/predict", cfg.ReadinessHandler.Predict)
			protected.GET("/readiness/:learner", cfg.ReadinessHandler.Latest)
		}

		if cfg.SimulatorHandler != nil {
			protected.POST("/simulator/run", cfg.SimulatorHandler.Run)
		}

		if cfg.TelemetryHandler != nil {
			protected.GET("/telemetry/features/:learner", cfg.TelemetryHandler.Features)
		}

		if cfg.ModelHandler != nil {
			protected.GET("/models/:key", cfg.ModelHandler.Info)
			protected.POST("/models/:key/refresh", cfg.ModelHandler.Refresh)
		}
	}

	return r
}
