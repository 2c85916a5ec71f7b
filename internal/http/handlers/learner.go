package handlers

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/yungbote/neurobridge-intelligence/internal/platform/apierr"
	"github.com/yungbote/neurobridge-intelligence/internal/platform/ctxutil"
)

var errOtherLearner = apierr.New(http.StatusForbidden, "forbidden", errors.New("token does not grant access to this learner"))

// learnerFor resolves the learner a request acts on. When the request is
// authenticated the token subject wins and must match any explicit id.
func learnerFor(c *gin.Context, requested string) (string, error) {
	requested = strings.TrimSpace(requested)
	subject := ctxutil.LearnerID(c.Request.Context())
	if subject == "" {
		if requested == "" {
			return "", apierr.Invalid("learner_id is required")
		}
		return requested, nil
	}
	if requested != "" && requested != subject {
		return "", errOtherLearner
	}
	return subject, nil
}

func bindJSON(c *gin.Context, dst any) error {
	if err := c.ShouldBindJSON(dst); err != nil {
		return apierr.Invalid("invalid request body: %v", err)
	}
	return nil
}
