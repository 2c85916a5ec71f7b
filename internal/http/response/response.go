package response

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/yungbote/neurobridge-intelligence/internal/platform/apierr"
)

var errInternal = errors.New("internal error")

type APIError struct {
	Message string `json:"message"`
	Code    string `json:"code,omitempty"`
}

type ErrorEnvelope struct {
	Error APIError `json:"error"`
}

type DataEnvelope struct {
	Success bool `json:"success"`
	Data    any  `json:"data"`
}

func RespondError(c *gin.Context, status int, code string, err error) {
	msg := "unknown error"
	if err != nil {
		msg = err.Error()
	}
	c.JSON(status, ErrorEnvelope{
		Error: APIError{
			Message: msg,
			Code:    code,
		},
	})
}

// RespondErr picks the status and code from the error chain. Internal errors
// are not echoed to the client.
func RespondErr(c *gin.Context, err error) {
	status, code := apierr.StatusOf(err)
	_ = c.Error(err)
	if status >= http.StatusInternalServerError && status != http.StatusServiceUnavailable {
		RespondError(c, status, code, errInternal)
		return
	}
	RespondError(c, status, code, err)
}

func RespondOK(c *gin.Context, payload any) {
	c.JSON(http.StatusOK, DataEnvelope{Success: true, Data: payload})
}
