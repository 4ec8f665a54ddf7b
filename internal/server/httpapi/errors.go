package httpapi

import (
	"errors"
	"net/http"

	"github.com/dmitrijs2005/storykeeper/internal/common"
	"github.com/gin-gonic/gin"
)

// statusFor maps service errors onto HTTP statuses and the message shown to
// the client. Unknown errors are 500 with a fixed message.
func statusFor(err error) (int, string) {
	switch {
	case errors.Is(err, common.ErrorValidation):
		return http.StatusBadRequest, err.Error()
	case errors.Is(err, common.ErrConflict):
		return http.StatusConflict, common.ErrConflict.Error()
	case errors.Is(err, common.ErrMissingCredentials):
		return http.StatusUnauthorized, common.ErrMissingCredentials.Error()
	case errors.Is(err, common.ErrInvalidCredentials):
		return http.StatusUnauthorized, common.ErrInvalidCredentials.Error()
	case errors.Is(err, common.ErrAccountNotFound):
		return http.StatusNotFound, common.ErrAccountNotFound.Error()
	case errors.Is(err, common.ErrorNotFound):
		return http.StatusNotFound, common.ErrorNotFound.Error()
	case errors.Is(err, common.ErrForbidden):
		return http.StatusForbidden, common.ErrForbidden.Error()
	case errors.Is(err, common.ErrShuttingDown):
		return http.StatusServiceUnavailable, common.ErrShuttingDown.Error()
	default:
		return http.StatusInternalServerError, common.ErrorInternal.Error()
	}
}

func (s *HTTPServer) respondError(c *gin.Context, err error) {
	code, msg := statusFor(err)
	if code == http.StatusInternalServerError {
		s.logger.Error(c.Request.Context(), "request failed", "path", c.FullPath(), "error", err.Error())
	}
	c.AbortWithStatusJSON(code, gin.H{"error": msg})
}

func badRequest(c *gin.Context, err error) {
	c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": err.Error()})
}
