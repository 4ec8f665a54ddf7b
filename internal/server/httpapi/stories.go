package httpapi

import (
	"errors"
	"io"
	"net/http"

	"github.com/dmitrijs2005/storykeeper/internal/server/models"
	"github.com/gin-gonic/gin"
)

// BackfillRequest optionally names the country the sweep writes.
type BackfillRequest struct {
	Country string `json:"country"`
}

func (s *HTTPServer) listStories(c *gin.Context) {
	list, err := s.stories.List(c.Request.Context(), c.Query("author"))
	if err != nil {
		s.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, list)
}

func (s *HTTPServer) getStory(c *gin.Context) {
	story, err := s.stories.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		s.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, story)
}

func (s *HTTPServer) createStory(c *gin.Context) {
	var in models.StoryInput
	if err := c.ShouldBindJSON(&in); err != nil {
		badRequest(c, err)
		return
	}

	story, err := s.stories.Create(c.Request.Context(), currentUser(c).UserName, in)
	if err != nil {
		s.respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, story)
}

func (s *HTTPServer) updateStory(c *gin.Context) {
	var patch models.StoryPatch
	if err := c.ShouldBindJSON(&patch); err != nil {
		badRequest(c, err)
		return
	}

	story, err := s.stories.Update(c.Request.Context(), currentUser(c), c.Param("id"), patch)
	if err != nil {
		s.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, story)
}

func (s *HTTPServer) deleteStory(c *gin.Context) {
	if err := s.stories.Delete(c.Request.Context(), currentUser(c), c.Param("id")); err != nil {
		s.respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// updateCountry starts the backfill and answers before it finishes.
func (s *HTTPServer) updateCountry(c *gin.Context) {
	var req BackfillRequest
	if err := c.ShouldBindJSON(&req); err != nil && !errors.Is(err, io.EOF) {
		badRequest(c, err)
		return
	}

	country := req.Country
	if country == "" {
		country = s.defaultCountry
	}

	if err := s.stories.StartCountryBackfill(c.Request.Context(), country); err != nil {
		s.respondError(c, err)
		return
	}
	c.JSON(http.StatusAccepted, gin.H{"status": "backfill started", "country": country})
}
