package services

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/dmitrijs2005/storykeeper/internal/common"
	"github.com/dmitrijs2005/storykeeper/internal/dbx"
	"github.com/dmitrijs2005/storykeeper/internal/logging"
	"github.com/dmitrijs2005/storykeeper/internal/server/models"
	"github.com/dmitrijs2005/storykeeper/internal/server/repositories/repomanager"
)

// StoryService implements story CRUD on behalf of resolved users and the
// country backfill sweep.
type StoryService struct {
	db          *sql.DB
	repomanager repomanager.RepositoryManager
	log         logging.Logger

	mu      sync.Mutex
	closing bool
	sweeps  sync.WaitGroup
}

// NewStoryService constructs a StoryService.
func NewStoryService(db *sql.DB, m repomanager.RepositoryManager, log logging.Logger) *StoryService {
	return &StoryService{
		db:          db,
		repomanager: m,
		log:         log.With("module", "stories"),
	}
}

// List returns all stories, or only those of author when it is non-empty.
func (s *StoryService) List(ctx context.Context, author string) ([]*models.Story, error) {
	list, err := s.repomanager.Stories(s.db).List(ctx, author)
	if err != nil {
		return nil, fmt.Errorf("%w: list stories: %w", common.ErrorInternal, err)
	}
	return list, nil
}

// Get returns one story or common.ErrorNotFound.
func (s *StoryService) Get(ctx context.Context, id string) (*models.Story, error) {
	return wrapStoryErr(s.repomanager.Stories(s.db).Get(ctx, id))
}

// Create stores a new story written by author.
func (s *StoryService) Create(ctx context.Context, author string, in models.StoryInput) (*models.Story, error) {
	if strings.TrimSpace(in.Title) == "" || strings.TrimSpace(in.Content) == "" {
		return nil, fmt.Errorf("%w: title and content are required", common.ErrorValidation)
	}

	story, err := s.repomanager.Stories(s.db).Create(ctx, &models.Story{
		Title:   in.Title,
		Content: in.Content,
		Country: in.Country,
		Author:  author,
	})
	if err != nil {
		return nil, fmt.Errorf("%w: create story: %w", common.ErrorInternal, err)
	}

	s.log.Info(ctx, "story created", "id", story.ID, "author", author)
	return story, nil
}

// Update applies patch to the story if user wrote it. The read and the write
// happen in one transaction with the row locked.
func (s *StoryService) Update(ctx context.Context, user *models.User, id string, patch models.StoryPatch) (*models.Story, error) {
	if patch.Empty() {
		return nil, fmt.Errorf("%w: nothing to update", common.ErrorValidation)
	}
	if (patch.Title != nil && strings.TrimSpace(*patch.Title) == "") ||
		(patch.Content != nil && strings.TrimSpace(*patch.Content) == "") {
		return nil, fmt.Errorf("%w: title and content cannot be empty", common.ErrorValidation)
	}

	var updated *models.Story
	err := dbx.WithTx(ctx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		repo := s.repomanager.Stories(tx)

		story, err := repo.GetForUpdate(ctx, id)
		if err != nil {
			return err
		}
		if story.Author != user.UserName {
			return common.ErrForbidden
		}

		patch.Apply(story)
		if err := repo.Update(ctx, story); err != nil {
			return err
		}
		updated = story
		return nil
	})
	if err != nil {
		return wrapStoryErr(nil, err)
	}

	s.log.Info(ctx, "story updated", "id", id, "author", user.UserName)
	return updated, nil
}

// Delete removes the story if user wrote it.
func (s *StoryService) Delete(ctx context.Context, user *models.User, id string) error {
	err := dbx.WithTx(ctx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		repo := s.repomanager.Stories(tx)

		story, err := repo.GetForUpdate(ctx, id)
		if err != nil {
			return err
		}
		if story.Author != user.UserName {
			return common.ErrForbidden
		}
		return repo.Delete(ctx, id)
	})
	if err != nil {
		_, err = wrapStoryErr(nil, err)
		return err
	}

	s.log.Info(ctx, "story deleted", "id", id, "author", user.UserName)
	return nil
}

// BackfillCountry sets country on every story that has none and returns the
// number of stories changed. Running it again changes nothing.
func (s *StoryService) BackfillCountry(ctx context.Context, country string) (int, error) {
	if strings.TrimSpace(country) == "" {
		return 0, fmt.Errorf("%w: country is required", common.ErrorValidation)
	}

	n, err := s.repomanager.Stories(s.db).FillMissingCountry(ctx, country)
	if err != nil {
		return 0, fmt.Errorf("%w: backfill country: %w", common.ErrorInternal, err)
	}

	s.log.Info(ctx, "country backfill finished", "country", country, "updated", n)
	return int(n), nil
}

// StartCountryBackfill runs BackfillCountry in the background. The sweep
// keeps ctx's values but not its cancellation, so it outlives the request
// that triggered it. Once Wait has been called no new sweep starts and
// common.ErrShuttingDown is returned.
func (s *StoryService) StartCountryBackfill(ctx context.Context, country string) error {
	bg := context.WithoutCancel(ctx)

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closing {
		return common.ErrShuttingDown
	}

	s.sweeps.Add(1)
	go func() {
		defer s.sweeps.Done()
		if _, err := s.BackfillCountry(bg, country); err != nil {
			s.log.Error(bg, "country backfill failed", "error", err)
		}
	}()
	return nil
}

// Wait refuses new sweeps and blocks until every running one has returned.
func (s *StoryService) Wait() {
	s.mu.Lock()
	s.closing = true
	s.mu.Unlock()

	s.sweeps.Wait()
}

// wrapStoryErr passes caller-facing sentinels through and marks everything
// else as internal.
func wrapStoryErr(story *models.Story, err error) (*models.Story, error) {
	if err == nil {
		return story, nil
	}
	for _, known := range []error{common.ErrorNotFound, common.ErrForbidden, common.ErrorValidation} {
		if errors.Is(err, known) {
			return nil, err
		}
	}
	return nil, fmt.Errorf("%w: %w", common.ErrorInternal, err)
}
