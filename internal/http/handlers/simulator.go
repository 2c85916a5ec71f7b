package handlers

import (
	"github.com/gin-gonic/gin"

	"github.com/yungbote/neurobridge-intelligence/internal/http/response"
	"github.com/yungbote/neurobridge-intelligence/internal/intelligence/simulator"
)

type SimulatorHandler struct {
	simulator simulator.Service
}

func NewSimulatorHandler(svc simulator.Service) *SimulatorHandler {
	return &SimulatorHandler{simulator: svc}
}

type simulateRequest struct {
	LearnerID string             `json:"learner_id"`
	Scenario  simulator.Scenario `json:"scenario"`
}

// POST /api/ml/simulator/run
func (h *SimulatorHandler) Run(c *gin.Context) {
	var req simulateRequest
	if err := bindJSON(c, &req); err != nil {
		response.RespondErr(c, err)
		return
	}
	learnerID, err := learnerFor(c, req.LearnerID)
	if err != nil {
		response.RespondErr(c, err)
		return
	}
	out, err := h.simulator.Simulate(c.Request.Context(), learnerID, req.Scenario)
	if err != nil {
		response.RespondErr(c, err)
		return
	}
	response.RespondOK(c, out)
}
