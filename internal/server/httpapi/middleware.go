package httpapi

import (
	"net/http"
	"strings"
	"time"

	"github.com/dmitrijs2005/storykeeper/internal/common"
	"github.com/dmitrijs2005/storykeeper/internal/server/models"
	"github.com/gin-gonic/gin"
)

const userKey = "storykeeper.user"

// ExtractCredential returns the bearer token carried by r, or "" when the
// Authorization header is absent, empty or uses another scheme.
func ExtractCredential(r *http.Request) string {
	header := strings.TrimSpace(r.Header.Get(common.AuthorizationHeaderName))
	scheme, token, ok := strings.Cut(header, " ")
	if !ok || !strings.EqualFold(scheme, common.BearerScheme) {
		return ""
	}
	return strings.TrimSpace(token)
}

// requireUser resolves the bearer token and stores the account in the gin
// context; the request is aborted when resolution fails.
func (s *HTTPServer) requireUser(c *gin.Context) {
	user, err := s.users.Resolve(c.Request.Context(), ExtractCredential(c.Request))
	if err != nil {
		if code, _ := statusFor(err); code == http.StatusUnauthorized {
			c.Header("WWW-Authenticate", common.BearerScheme)
		}
		s.respondError(c, err)
		return
	}
	c.Set(userKey, user)
	c.Next()
}

func currentUser(c *gin.Context) *models.User {
	return c.MustGet(userKey).(*models.User)
}

// requestLogger logs one line per request. The query string and headers are
// left out since they may carry credentials.
func (s *HTTPServer) requestLogger() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		s.logger.Info(c.Request.Context(), "request",
			"method", c.Request.Method,
			"path", c.Request.URL.Path,
			"status", c.Writer.Status(),
			"duration", time.Since(start).String(),
		)
	}
}
