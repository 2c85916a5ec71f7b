package handlers

import (
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/yungbote/neurobridge-intelligence/internal/http/response"
	"github.com/yungbote/neurobridge-intelligence/internal/intelligence/retention"
	"github.com/yungbote/neurobridge-intelligence/internal/platform/apierr"
)

type RetentionHandler struct {
	retention retention.Service
}

func NewRetentionHandler(svc retention.Service) *RetentionHandler {
	return &RetentionHandler{retention: svc}
}

type retentionUpdateRequest struct {
	LearnerID    string   `json:"learner_id"`
	Topic        string   `json:"topic"`
	IsSuccessful *bool    `json:"is_successful"`
	ElapsedHours *float64 `json:"hours_since_last_exposure"`
}

// POST /api/ml/retention/update
func (h *RetentionHandler) Update(c *gin.Context) {
	var req retentionUpdateRequest
	if err := bindJSON(c, &req); err != nil {
		response.RespondErr(c, err)
		return
	}
	learnerID, err := learnerFor(c, req.LearnerID)
	if err != nil {
		response.RespondErr(c, err)
		return
	}
	if req.IsSuccessful == nil {
		response.RespondErr(c, apierr.Invalid("is_successful is required"))
		return
	}
	out, err := h.retention.Update(c.Request.Context(), learnerID, req.Topic, *req.IsSuccessful, req.ElapsedHours)
	if err != nil {
		response.RespondErr(c, err)
		return
	}
	response.RespondOK(c, out)
}

// GET /api/ml/retention/queue/:learner?limit=N
func (h *RetentionHandler) Queue(c *gin.Context) {
	learnerID, err := learnerFor(c, c.Param("learner"))
	if err != nil {
		response.RespondErr(c, err)
		return
	}
	limit := 0
	if raw := c.Query("limit"); raw != "" {
		limit, err = strconv.Atoi(raw)
		if err != nil || limit < 0 {
			response.RespondErr(c, apierr.Invalid("limit must be a non-negative integer"))
			return
		}
	}
	out, err := h.retention.RevisionQueue(c.Request.Context(), learnerID, limit)
	if err != nil {
		response.RespondErr(c, err)
		return
	}
	response.RespondOK(c, gin.H{"learner_id": learnerID, "queue": out, "count": len(out)})
}

// GET /api/ml/retention/snapshot/:learner
func (h *RetentionHandler) Snapshot(c *gin.Context) {
	learnerID, err := learnerFor(c, c.Param("learner"))
	if err != nil {
		response.RespondErr(c, err)
		return
	}
	out, err := h.retention.Snapshot(c.Request.Context(), learnerID)
	if err != nil {
		response.RespondErr(c, err)
		return
	}
	response.RespondOK(c, out)
}
