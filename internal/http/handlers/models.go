package handlers

import (
	"context"

	"github.com/gin-gonic/gin"

	"github.com/yungbote/neurobridge-intelligence/internal/http/response"
	"github.com/yungbote/neurobridge-intelligence/internal/intelligence/registry"
)

type ModelRegistry interface {
	Load(ctx context.Context, key string) (*registry.Artifact, error)
	Refresh(ctx context.Context, key string) (*registry.Artifact, error)
	Info(key string) registry.Info
}

type ModelHandler struct {
	registry ModelRegistry
}

func NewModelHandler(reg ModelRegistry) *ModelHandler {
	return &ModelHandler{registry: reg}
}

// GET /api/ml/models/:key
func (h *ModelHandler) Info(c *gin.Context) {
	key := c.Param("key")
	if _, err := h.registry.Load(c.Request.Context(), key); err != nil {
		response.RespondErr(c, err)
		return
	}
	response.RespondOK(c, h.registry.Info(key))
}

// POST /api/ml/models/:key/refresh
func (h *ModelHandler) Refresh(c *gin.Context) {
	key := c.Param("key")
	if _, err := h.registry.Refresh(c.Request.Context(), key); err != nil {
		response.RespondErr(c, err)
		return
	}
	response.RespondOK(c, h.registry.Info(key))
}
