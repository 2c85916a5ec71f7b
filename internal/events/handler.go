// Package events consumes learner activity from NATS and feeds it to the
// mastery and retention update paths.
package events

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/yungbote/neurobridge-intelligence/internal/intelligence/mastery"
	"github.com/yungbote/neurobridge-intelligence/internal/intelligence/retention"
)

// ErrMalformed marks a payload that can never be processed. Such messages are
// dropped rather than retried.
var ErrMalformed = errors.New("malformed event")

type AttemptEvent struct {
	LearnerID string            `json:"learner_id"`
	Topic     string            `json:"topic"`
	Attempts  []mastery.Attempt `json:"attempts"`
}

type RevisionEvent struct {
	LearnerID    string   `json:"learner_id"`
	Topic        string   `json:"topic"`
	IsSuccessful *bool    `json:"is_successful"`
	ElapsedHours *float64 `json:"hours_since_last_exposure,omitempty"`
}

type Handler struct {
	mastery   mastery.Service
	retention retention.Service
}

func NewHandler(masterySvc mastery.Service, retentionSvc retention.Service) *Handler {
	return &Handler{mastery: masterySvc, retention: retentionSvc}
}

func (h *Handler) HandleAttempts(ctx context.Context, data []byte) error {
	var ev AttemptEvent
	if err := json.Unmarshal(data, &ev); err != nil {
		return fmt.Errorf("%w: %v", ErrMalformed, err)
	}
	if strings.TrimSpace(ev.LearnerID) == "" || strings.TrimSpace(ev.Topic) == "" || len(ev.Attempts) == 0 {
		return fmt.Errorf("%w: learner_id, topic and attempts are required", ErrMalformed)
	}
	_, err := h.mastery.Update(ctx, ev.LearnerID, ev.Topic, ev.Attempts)
	return err
}

func (h *Handler) HandleRevision(ctx context.Context, data []byte) error {
	var ev RevisionEvent
	if err := json.Unmarshal(data, &ev); err != nil {
		return fmt.Errorf("%w: %v", ErrMalformed, err)
	}
	if strings.TrimSpace(ev.LearnerID) == "" || strings.TrimSpace(ev.Topic) == "" || ev.IsSuccessful == nil {
		return fmt.Errorf("%w: learner_id, topic and is_successful are required", ErrMalformed)
	}
	_, err := h.retention.Update(ctx, ev.LearnerID, ev.Topic, *ev.IsSuccessful, ev.ElapsedHours)
	return err
}
