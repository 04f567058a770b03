package httpapi

import (
	"net/http"

	"github.com/gin-gonic/gin"

	apperr "github.com/KirkDiggler/profile-onboarding/internal/errors"
)

// APIResponse is the envelope of every JSON reply
type APIResponse struct {
	Success bool   `json:"success"`
	Data    any    `json:"data,omitempty"`
	Error   string `json:"error,omitempty"`
	Code    string `json:"code,omitempty"`
}

// StatusFor maps an application error code to an HTTP status
func StatusFor(err error) int {
	switch apperr.GetCode(err) {
	case apperr.CodeInvalidArgument:
		return http.StatusBadRequest
	case apperr.CodeValidation:
		return http.StatusUnprocessableEntity
	case apperr.CodeUnauthenticated:
		return http.StatusUnauthorized
	case apperr.CodePermissionDenied:
		return http.StatusForbidden
	case apperr.CodeNotFound:
		return http.StatusNotFound
	case apperr.CodeAlreadyExists, apperr.CodeFailedPrecondition, apperr.CodeInvalidStepMutation:
		return http.StatusConflict
	case apperr.CodeUnavailable:
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

func respondOK(c *gin.Context, status int, data any) {
	c.JSON(status, APIResponse{Success: true, Data: data})
}

// respondError writes err and records it on the context for the request log.
// Internal errors are not described to the caller.
func respondError(c *gin.Context, err error) {
	_ = c.Error(err)

	status := StatusFor(err)
	message := apperr.RootMessage(err)
	code := string(apperr.GetCode(err))
	if status == http.StatusInternalServerError {
		message = "internal error"
		code = string(apperr.CodeInternal)
	}

	c.AbortWithStatusJSON(status, APIResponse{
		Success: false,
		Error:   message,
		Code:    code,
	})
}

func bindJSON(c *gin.Context, req any) bool {
	if err := c.ShouldBindJSON(req); err != nil {
		respondError(c, apperr.InvalidArgumentf("invalid request body: %v", err))
		return false
	}
	return true
}
