package handlers

import (
	"fmt"

	"github.com/gin-gonic/gin"

	"github.com/yungbote/neurobridge-intelligence/internal/http/response"
	"github.com/yungbote/neurobridge-intelligence/internal/intelligence/readiness"
	"github.com/yungbote/neurobridge-intelligence/internal/platform/apierr"
)

type ReadinessHandler struct {
	readiness readiness.Service
}

func NewReadinessHandler(svc readiness.Service) *ReadinessHandler {
	return &ReadinessHandler{readiness: svc}
}

// POST /api/ml/readiness/predict
func (h *ReadinessHandler) Predict(c *gin.Context) {
	var req readiness.Request
	if err := bindJSON(c, &req); err != nil {
		response.RespondErr(c, err)
		return
	}
	learnerID, err := learnerFor(c, req.LearnerID)
	if err != nil {
		response.RespondErr(c, err)
		return
	}
	req.LearnerID = learnerID
	out, err := h.readiness.Predict(c.Request.Context(), req)
	if err != nil {
		response.RespondErr(c, err)
		return
	}
	response.RespondOK(c, out)
}

// GET /api/ml/readiness/:learner?target_context=X
func (h *ReadinessHandler) Latest(c *gin.Context) {
	learnerID, err := learnerFor(c, c.Param("learner"))
	if err != nil {
		response.RespondErr(c, err)
		return
	}
	out, err := h.readiness.Latest(c.Request.Context(), learnerID, c.Query("target_context"))
	if err != nil {
		response.RespondErr(c, err)
		return
	}
	if out == nil {
		response.RespondErr(c, fmt.Errorf("readiness for %s: %w", learnerID, apierr.ErrNotFound))
		return
	}
	response.RespondOK(c, out)
}
