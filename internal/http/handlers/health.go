package handlers

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/yungbote/neurobridge-intelligence/internal/http/response"
)

type HealthDeps struct {
	Ping           func(ctx context.Context) error
	ModelAvailable func(ctx context.Context) bool
	LockMode       string
	ModelStore     string
	Version        string
}

type HealthHandler struct {
	deps HealthDeps
}

func NewHealthHandler(deps HealthDeps) *HealthHandler { return &HealthHandler{deps: deps} }

func (h *HealthHandler) HealthCheck(c *gin.Context) {
	c.String(http.StatusOK, "ok")
}

// GET /api/ml/health
func (h *HealthHandler) Health(c *gin.Context) {
	ctx := c.Request.Context()
	status := "healthy"
	store := "ok"
	if h.deps.Ping != nil {
		if err := h.deps.Ping(ctx); err != nil {
			status = "degraded"
			store = err.Error()
		}
	}
	modelAvailable := false
	if h.deps.ModelAvailable != nil {
		modelAvailable = h.deps.ModelAvailable(ctx)
	}
	response.RespondOK(c, gin.H{
		"status":          status,
		"store":           store,
		"model_available": modelAvailable,
		"model_store":     h.deps.ModelStore,
		"lock_mode":       h.deps.LockMode,
		"version":         h.deps.Version,
	})
}
