package services

import (
	"bytes"
	"context"
	"database/sql"
	"io"
	"sort"
	"sync"
	"testing"
	"time"

	"github.com/dmitrijs2005/storykeeper/internal/common"
	"github.com/dmitrijs2005/storykeeper/internal/dbx"
	"github.com/dmitrijs2005/storykeeper/internal/logging"
	"github.com/dmitrijs2005/storykeeper/internal/server/auth"
	"github.com/dmitrijs2005/storykeeper/internal/server/models"
	"github.com/dmitrijs2005/storykeeper/internal/server/repositories/stories"
	"github.com/dmitrijs2005/storykeeper/internal/server/repositories/users"
	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

const testSecret = "test-secret"

// memUsers is an in-memory users.Repository with a unique username index.
type memUsers struct {
	mu      sync.Mutex
	byName  map[string]*models.User
	getErr  error
	creates int
}

func newMemUsers() *memUsers { return &memUsers{byName: map[string]*models.User{}} }

func (r *memUsers) Create(ctx context.Context, u *models.User) (*models.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.byName[u.UserName]; ok {
		return nil, common.ErrConflict
	}
	id, created, err := models.NewUserID()
	if err != nil {
		return nil, err
	}
	cp := *u
	cp.ID, cp.CreatedAt = id, created
	r.byName[u.UserName] = &cp
	r.creates++
	return &cp, nil
}

func (r *memUsers) GetUserByLogin(ctx context.Context, login string) (*models.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.getErr != nil {
		return nil, r.getErr
	}
	u, ok := r.byName[login]
	if !ok {
		return nil, common.ErrorNotFound
	}
	cp := *u
	return &cp, nil
}

func (r *memUsers) delete(login string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.byName, login)
}

// memStories is an in-memory stories.Repository.
type memStories struct {
	mu   sync.Mutex
	byID map[string]*models.Story
	seq  time.Time
	err  error
}

func newMemStories() *memStories {
	return &memStories{byID: map[string]*models.Story{}, seq: time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)}
}

func (r *memStories) List(ctx context.Context, author string) ([]*models.Story, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.err != nil {
		return nil, r.err
	}
	out := make([]*models.Story, 0, len(r.byID))
	for _, s := range r.byID {
		if author == "" || s.Author == author {
			cp := *s
			out = append(out, &cp)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.Before(out[j].CreatedAt) })
	return out, nil
}

func (r *memStories) Get(ctx context.Context, id string) (*models.Story, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.err != nil {
		return nil, r.err
	}
	s, ok := r.byID[id]
	if !ok {
		return nil, common.ErrorNotFound
	}
	cp := *s
	return &cp, nil
}

func (r *memStories) GetForUpdate(ctx context.Context, id string) (*models.Story, error) {
	return r.Get(ctx, id)
}

func (r *memStories) Create(ctx context.Context, s *models.Story) (*models.Story, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.err != nil {
		return nil, r.err
	}
	cp := *s
	if cp.ID == "" {
		cp.ID = uuid.NewString()
	}
	r.seq = r.seq.Add(time.Second)
	cp.CreatedAt, cp.UpdatedAt = r.seq, r.seq
	r.byID[cp.ID] = &cp
	out := cp
	return &out, nil
}

func (r *memStories) Update(ctx context.Context, s *models.Story) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.byID[s.ID]; !ok {
		return common.ErrorNotFound
	}
	r.seq = r.seq.Add(time.Second)
	s.UpdatedAt = r.seq
	cp := *s
	r.byID[s.ID] = &cp
	return nil
}

func (r *memStories) Delete(ctx context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.byID[id]; !ok {
		return common.ErrorNotFound
	}
	delete(r.byID, id)
	return nil
}

func (r *memStories) FillMissingCountry(ctx context.Context, country string) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.err != nil {
		return 0, r.err
	}
	var n int64
	for _, s := range r.byID {
		if s.Country == nil {
			c := country
			s.Country = &c
			n++
		}
	}
	return n, nil
}

type fakeRepoManager struct {
	users   *memUsers
	stories *memStories
}

func newFakeRepoManager() *fakeRepoManager {
	return &fakeRepoManager{users: newMemUsers(), stories: newMemStories()}
}

func (m *fakeRepoManager) RunMigrations(context.Context, *sql.DB) error { return nil }
func (m *fakeRepoManager) Users(db dbx.DBTX) users.Repository          { return m.users }
func (m *fakeRepoManager) Stories(db dbx.DBTX) stories.Repository      { return m.stories }

func discardLogger() logging.Logger {
	return logging.NewJSONLogger(io.Discard, "error")
}

func newCodec(t *testing.T) *auth.TokenCodec {
	t.Helper()
	codec, err := auth.NewTokenCodec(testSecret, time.Hour, 30*24*time.Hour)
	require.NoError(t, err)
	return codec
}

func newTestUserService(t *testing.T, rm *fakeRepoManager, logOut *bytes.Buffer) *UserService {
	t.Helper()
	var log logging.Logger = discardLogger()
	if logOut != nil {
		log = logging.NewJSONLogger(logOut, "debug")
	}
	s, err := NewUserService(nil, rm, auth.NewPasswordHasher(bcrypt.MinCost), newCodec(t), log)
	require.NoError(t, err)
	return s
}
