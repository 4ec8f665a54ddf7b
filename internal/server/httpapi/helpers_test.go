package httpapi

import (
	"bytes"
	"context"
	"database/sql"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
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
	"github.com/dmitrijs2005/storykeeper/internal/server/services"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

func init() {
	gin.SetMode(gin.TestMode)
}

const testSecret = "http-test-secret"

type memUsers struct {
	mu     sync.Mutex
	byName map[string]*models.User
}

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
	r.byName[cp.UserName] = &cp
	return &cp, nil
}

func (r *memUsers) GetUserByLogin(ctx context.Context, login string) (*models.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	u, ok := r.byName[login]
	if !ok {
		return nil, common.ErrorNotFound
	}
	cp := *u
	return &cp, nil
}

type memRepoManager struct {
	users *memUsers
}

func (m *memRepoManager) RunMigrations(context.Context, *sql.DB) error { return nil }
func (m *memRepoManager) Users(dbx.DBTX) users.Repository              { return m.users }
func (m *memRepoManager) Stories(dbx.DBTX) stories.Repository          { return nil }

// fakeStories records calls and returns canned results.
type fakeStories struct {
	mu       sync.Mutex
	byID     map[string]*models.Story
	err      error
	backfill []string
	closing  bool
}

func newFakeStories() *fakeStories { return &fakeStories{byID: map[string]*models.Story{}} }

func (f *fakeStories) List(ctx context.Context, author string) ([]*models.Story, error) {
	if f.err != nil {
		return nil, f.err
	}
	out := []*models.Story{}
	for _, s := range f.byID {
		if author == "" || s.Author == author {
			out = append(out, s)
		}
	}
	return out, nil
}

func (f *fakeStories) Get(ctx context.Context, id string) (*models.Story, error) {
	if f.err != nil {
		return nil, f.err
	}
	s, ok := f.byID[id]
	if !ok {
		return nil, common.ErrorNotFound
	}
	return s, nil
}

func (f *fakeStories) Create(ctx context.Context, author string, in models.StoryInput) (*models.Story, error) {
	if f.err != nil {
		return nil, f.err
	}
	s := &models.Story{ID: "s-1", Title: in.Title, Content: in.Content, Country: in.Country, Author: author}
	f.byID[s.ID] = s
	return s, nil
}

func (f *fakeStories) Update(ctx context.Context, user *models.User, id string, patch models.StoryPatch) (*models.Story, error) {
	s, err := f.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if s.Author != user.UserName {
		return nil, common.ErrForbidden
	}
	patch.Apply(s)
	return s, nil
}

func (f *fakeStories) Delete(ctx context.Context, user *models.User, id string) error {
	s, err := f.Get(ctx, id)
	if err != nil {
		return err
	}
	if s.Author != user.UserName {
		return common.ErrForbidden
	}
	delete(f.byID, id)
	return nil
}

func (f *fakeStories) StartCountryBackfill(ctx context.Context, country string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.closing {
		return common.ErrShuttingDown
	}
	f.backfill = append(f.backfill, country)
	return nil
}

type testEnv struct {
	router  *gin.Engine
	users   *memUsers
	stories *fakeStories
	codec   *auth.TokenCodec
	logs    *bytes.Buffer
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	logs := &bytes.Buffer{}
	log := logging.NewJSONLogger(logs, "debug")

	codec, err := auth.NewTokenCodec(testSecret, time.Hour, 30*24*time.Hour)
	require.NoError(t, err)

	mu := &memUsers{byName: map[string]*models.User{}}
	us, err := services.NewUserService(nil, &memRepoManager{users: mu}, auth.NewPasswordHasher(bcrypt.MinCost), codec, log)
	require.NoError(t, err)

	fs := newFakeStories()
	srv := NewHTTPServer("127.0.0.1:0", log, us, fs, "Malaysia", time.Second)

	return &testEnv{router: srv.Router(), users: mu, stories: fs, codec: codec, logs: logs}
}

func (e *testEnv) do(t *testing.T, method, path, token string, body any) *httptest.ResponseRecorder {
	t.Helper()

	var rd io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		require.NoError(t, err)
		rd = bytes.NewReader(b)
	}

	req := httptest.NewRequest(method, path, rd)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	w := httptest.NewRecorder()
	e.router.ServeHTTP(w, req)
	return w
}

// registerAndLogin returns an access token for a fresh account.
func (e *testEnv) registerAndLogin(t *testing.T, username, password string) TokenResponse {
	t.Helper()
	w := e.do(t, http.MethodPost, "/api/v1/auth/register", "", CredentialRequest{Username: username, Password: password})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	w = e.do(t, http.MethodPost, "/api/v1/auth/login", "", CredentialRequest{Username: username, Password: password})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	var tr TokenResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &tr))
	return tr
}

func decodeBody[T any](t *testing.T, w *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &v), w.Body.String())
	return v
}
