package handlers

import (
	"github.com/gin-gonic/gin"

	"github.com/yungbote/neurobridge-intelligence/internal/http/response"
	"github.com/yungbote/neurobridge-intelligence/internal/intelligence/mastery"
	"github.com/yungbote/neurobridge-intelligence/internal/platform/apierr"
)

type MasteryHandler struct {
	mastery mastery.Service
}

func NewMasteryHandler(svc mastery.Service) *MasteryHandler {
	return &MasteryHandler{mastery: svc}
}

type masteryUpdateRequest struct {
	LearnerID string            `json:"learner_id"`
	Topic     string            `json:"topic"`
	Attempts  []mastery.Attempt `json:"attempts"`
}

// POST /api/ml/mastery/update
func (h *MasteryHandler) Update(c *gin.Context) {
	var req masteryUpdateRequest
	if err := bindJSON(c, &req); err != nil {
		response.RespondErr(c, err)
		return
	}
	learnerID, err := learnerFor(c, req.LearnerID)
	if err != nil {
		response.RespondErr(c, err)
		return
	}
	if len(req.Attempts) == 0 {
		response.RespondErr(c, apierr.Invalid("attempts must not be empty"))
		return
	}
	out, err := h.mastery.Update(c.Request.Context(), learnerID, req.Topic, req.Attempts)
	if err != nil {
		response.RespondErr(c, err)
		return
	}
	response.RespondOK(c, out)
}

// GET /api/ml/mastery/profile/:learner
func (h *MasteryHandler) Profile(c *gin.Context) {
	learnerID, err := learnerFor(c, c.Param("learner"))
	if err != nil {
		response.RespondErr(c, err)
		return
	}
	out, err := h.mastery.Profile(c.Request.Context(), learnerID)
	if err != nil {
		response.RespondErr(c, err)
		return
	}
	response.RespondOK(c, out)
}
