package handlers

import (
	"github.com/gin-gonic/gin"

	"github.com/yungbote/neurobridge-intelligence/internal/http/response"
	"github.com/yungbote/neurobridge-intelligence/internal/intelligence/planner"
)

type PlannerHandler struct {
	planner planner.Service
}

func NewPlannerHandler(svc planner.Service) *PlannerHandler {
	return &PlannerHandler{planner: svc}
}

// POST /api/ml/planner/generate
func (h *PlannerHandler) Generate(c *gin.Context) {
	var req planner.Request
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
	out, err := h.planner.GeneratePlan(c.Request.Context(), req)
	if err != nil {
		response.RespondErr(c, err)
		return
	}
	response.RespondOK(c, out)
}
