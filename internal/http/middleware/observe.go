package middleware

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/yungbote/neurobridge-intelligence/internal/observability"
	"github.com/yungbote/neurobridge-intelligence/internal/platform/ctxutil"
	"github.com/yungbote/neurobridge-intelligence/internal/platform/logger"
)

// Health and metrics routes are only logged at debug level.
var quietRoutes = map[string]bool{
	"/healthcheck":   true,
	"/metrics":       true,
	"/api/ml/health": true,
}

// Observe logs every request and records it in metrics. Either may be nil.
func Observe(log *logger.Logger, m *observability.Metrics) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		elapsed := time.Since(start)

		status := c.Writer.Status()
		route := c.FullPath()
		if route == "" {
			route = "unmatched"
		}
		m.ObserveHTTP(c.Request.Method, route, status, elapsed)
		if log == nil {
			return
		}

		ctx := c.Request.Context()
		fields := []interface{}{
			"method", c.Request.Method,
			"route", route,
			"path", c.Request.URL.Path,
			"status", status,
			"duration_ms", elapsed.Milliseconds(),
		}
		if td := ctxutil.GetTraceData(ctx); td != nil {
			fields = append(fields, "trace_id", td.TraceID, "request_id", td.RequestID)
		}
		if learner := ctxutil.LearnerID(ctx); learner != "" {
			fields = append(fields, "learner_id", learner)
		}
		if last := c.Errors.Last(); last != nil {
			fields = append(fields, "error", last.Error())
		}

		switch {
		case status >= http.StatusInternalServerError:
			log.Error("HTTP request", fields...)
		case status >= http.StatusBadRequest:
			log.Warn("HTTP request", fields...)
		case quietRoutes[route]:
			log.Debug("HTTP request", fields...)
		default:
			log.Info("HTTP request", fields...)
		}
	}
}
