package handlers

import (
	"github.com/gin-gonic/gin"

	"github.com/yungbote/neurobridge-intelligence/internal/http/response"
	"github.com/yungbote/neurobridge-intelligence/internal/intelligence/weakness"
)

type WeaknessHandler struct {
	weakness weakness.Service
}

func NewWeaknessHandler(svc weakness.Service) *WeaknessHandler {
	return &WeaknessHandler{weakness: svc}
}

type learnerRequest struct {
	LearnerID string `json:"learner_id"`
}

// POST /api/ml/weakness/analyze
func (h *WeaknessHandler) Analyze(c *gin.Context) {
	var req learnerRequest
	if err := bindJSON(c, &req); err != nil {
		response.RespondErr(c, err)
		return
	}
	learnerID, err := learnerFor(c, req.LearnerID)
	if err != nil {
		response.RespondErr(c, err)
		return
	}
	out, err := h.weakness.Analyze(c.Request.Context(), learnerID)
	if err != nil {
		response.RespondErr(c, err)
		return
	}
	response.RespondOK(c, out)
}

// GET /api/ml/weakness/signals/:learner
func (h *WeaknessHandler) Signals(c *gin.Context) {
	learnerID, err := learnerFor(c, c.Param("learner"))
	if err != nil {
		response.RespondErr(c, err)
		return
	}
	out, err := h.weakness.Signals(c.Request.Context(), learnerID)
	if err != nil {
		response.RespondErr(c, err)
		return
	}
	response.RespondOK(c, gin.H{"learner_id": learnerID, "signals": out})
}
