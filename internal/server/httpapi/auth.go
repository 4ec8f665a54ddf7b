package httpapi

import (
	"net/http"

	"github.com/dmitrijs2005/storykeeper/internal/server/services"
	"github.com/gin-gonic/gin"
)

// CredentialRequest is the body of register and login.
type CredentialRequest struct {
	Username string `json:"username" binding:"required"`
	Password string `json:"password" binding:"required"`
}

// RefreshRequest is the body of the refresh endpoint.
type RefreshRequest struct {
	RefreshToken string `json:"refresh_token" binding:"required"`
}

// TokenResponse is returned by login and refresh. Expiries are in seconds.
type TokenResponse struct {
	AccessToken         string `json:"access_token"`
	AccessTokenExpires  int64  `json:"access_token_expires"`
	RefreshToken        string `json:"refresh_token"`
	RefreshTokenExpires int64  `json:"refresh_token_expires"`
}

func newTokenResponse(p *services.TokenPair) TokenResponse {
	return TokenResponse{
		AccessToken:         p.AccessToken,
		AccessTokenExpires:  int64(p.AccessTokenExpires.Seconds()),
		RefreshToken:        p.RefreshToken,
		RefreshTokenExpires: int64(p.RefreshTokenExpires.Seconds()),
	}
}

func (s *HTTPServer) register(c *gin.Context) {
	var req CredentialRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}

	user, err := s.users.Register(c.Request.Context(), req.Username, req.Password)
	if err != nil {
		s.respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, user.View())
}

func (s *HTTPServer) login(c *gin.Context) {
	var req CredentialRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}

	pair, err := s.users.Login(c.Request.Context(), req.Username, req.Password)
	if err != nil {
		s.respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, newTokenResponse(pair))
}

func (s *HTTPServer) refresh(c *gin.Context) {
	var req RefreshRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}

	pair, err := s.users.Refresh(c.Request.Context(), req.RefreshToken)
	if err != nil {
		s.respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, newTokenResponse(pair))
}

func (s *HTTPServer) me(c *gin.Context) {
	c.JSON(http.StatusOK, s.users.WhoAmI(currentUser(c)))
}
