// Package httpapi exposes the story service over HTTP/JSON using gin.
package httpapi

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/dmitrijs2005/storykeeper/internal/logging"
	"github.com/dmitrijs2005/storykeeper/internal/server/models"
	"github.com/dmitrijs2005/storykeeper/internal/server/services"
	"github.com/gin-gonic/gin"
)

// UserService is the part of services.UserService the handlers use.
type UserService interface {
	Register(ctx context.Context, username, password string) (*models.User, error)
	Login(ctx context.Context, username, password string) (*services.TokenPair, error)
	Refresh(ctx context.Context, refreshToken string) (*services.TokenPair, error)
	Resolve(ctx context.Context, token string) (*models.User, error)
	WhoAmI(user *models.User) models.UserView
}

// StoryService is the part of services.StoryService the handlers use.
type StoryService interface {
	List(ctx context.Context, author string) ([]*models.Story, error)
	Get(ctx context.Context, id string) (*models.Story, error)
	Create(ctx context.Context, author string, in models.StoryInput) (*models.Story, error)
	Update(ctx context.Context, user *models.User, id string, patch models.StoryPatch) (*models.Story, error)
	Delete(ctx context.Context, user *models.User, id string) error
	StartCountryBackfill(ctx context.Context, country string) error
}

// HTTPServer owns the router and the listening http.Server.
type HTTPServer struct {
	address         string
	logger          logging.Logger
	users           UserService
	stories         StoryService
	defaultCountry  string
	shutdownTimeout time.Duration
}

// NewHTTPServer builds a server. defaultCountry is used by the backfill
// endpoint when the request names none.
func NewHTTPServer(address string, l logging.Logger, us UserService, ss StoryService,
	defaultCountry string, shutdownTimeout time.Duration) *HTTPServer {
	return &HTTPServer{
		address:         address,
		logger:          l.With("module", "http_server"),
		users:           us,
		stories:         ss,
		defaultCountry:  defaultCountry,
		shutdownTimeout: shutdownTimeout,
	}
}

// Router returns the gin engine with every route registered.
func (s *HTTPServer) Router() *gin.Engine {
	router := gin.New()
	router.Use(gin.Recovery(), s.requestLogger())

	router.GET("/health", s.health)

	v1 := router.Group("/api/v1")

	authGroup := v1.Group("/auth")
	{
		authGroup.POST("/register", s.register)
		authGroup.POST("/login", s.login)
		authGroup.POST("/refresh", s.refresh)
		authGroup.GET("/me", s.requireUser, s.me)
	}

	storyGroup := v1.Group("/stories", s.requireUser)
	{
		storyGroup.GET("", s.listStories)
		storyGroup.POST("", s.createStory)
		storyGroup.POST("/update_country", s.updateCountry)
		storyGroup.GET("/:id", s.getStory)
		storyGroup.PUT("/:id", s.updateStory)
		storyGroup.PATCH("/:id", s.updateStory)
		storyGroup.DELETE("/:id", s.deleteStory)
	}

	return router
}

// Run serves until ctx is cancelled, then shuts down gracefully, giving
// in-flight requests up to the configured timeout.
func (s *HTTPServer) Run(ctx context.Context) error {
	srv := &http.Server{
		Addr:              s.address,
		Handler:           s.Router(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	serveErr := make(chan error, 1)
	go func() {
		s.logger.Info(ctx, "Starting HTTP server", "address", s.address)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serveErr <- err
		}
		close(serveErr)
	}()

	select {
	case err := <-serveErr:
		return err
	case <-ctx.Done():
	}

	s.logger.Info(ctx, "Stopping HTTP server...")

	shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), s.shutdownTimeout)
	defer cancel()

	return srv.Shutdown(shutdownCtx)
}

func (s *HTTPServer) health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "healthy"})
}
