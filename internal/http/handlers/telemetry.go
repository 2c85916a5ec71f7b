package handlers

import (
	"github.com/gin-gonic/gin"

	"github.com/yungbote/neurobridge-intelligence/internal/http/response"
	"github.com/yungbote/neurobridge-intelligence/internal/intelligence/telemetry"
)

type TelemetryHandler struct {
	telemetry telemetry.Service
}

func NewTelemetryHandler(svc telemetry.Service) *TelemetryHandler {
	return &TelemetryHandler{telemetry: svc}
}

// GET /api/ml/telemetry/features/:learner
func (h *TelemetryHandler) Features(c *gin.Context) {
	learnerID, err := learnerFor(c, c.Param("learner"))
	if err != nil {
		response.RespondErr(c, err)
		return
	}
	out, err := h.telemetry.Features(c.Request.Context(), learnerID)
	if err != nil {
		response.RespondErr(c, err)
		return
	}
	response.RespondOK(c, out)
}
