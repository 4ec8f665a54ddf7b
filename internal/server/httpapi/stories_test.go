package httpapi

import (
	"context"
	"errors"
	"io"
	"net/http"
	"testing"
	"time"

	"github.com/dmitrijs2005/storykeeper/internal/common"
	"github.com/dmitrijs2005/storykeeper/internal/logging"
	"github.com/dmitrijs2005/storykeeper/internal/server/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStories_RequireBearer(t *testing.T) {
	env := newTestEnv(t)

	for _, tc := range []struct{ method, path string }{
		{http.MethodGet, "/api/v1/stories"},
		{http.MethodPost, "/api/v1/stories"},
		{http.MethodGet, "/api/v1/stories/s-1"},
		{http.MethodPut, "/api/v1/stories/s-1"},
		{http.MethodDelete, "/api/v1/stories/s-1"},
		{http.MethodPost, "/api/v1/stories/update_country"},
	} {
		w := env.do(t, tc.method, tc.path, "", nil)
		assert.Equal(t, http.StatusUnauthorized, w.Code, "%s %s", tc.method, tc.path)
	}
	assert.Empty(t, env.stories.backfill)
}

func TestStories_CRUD(t *testing.T) {
	env := newTestEnv(t)
	alice := env.registerAndLogin(t, "alice", "pw").AccessToken
	bob := env.registerAndLogin(t, "bob", "pw").AccessToken

	w := env.do(t, http.MethodPost, "/api/v1/stories", alice, models.StoryInput{Title: "t", Content: "c"})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	created := decodeBody[models.Story](t, w)
	assert.Equal(t, "alice", created.Author)

	w = env.do(t, http.MethodPost, "/api/v1/stories", alice, map[string]string{"title": "no content"})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = env.do(t, http.MethodGet, "/api/v1/stories?author=alice", bob, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Len(t, decodeBody[[]models.Story](t, w), 1)

	w = env.do(t, http.MethodGet, "/api/v1/stories/"+created.ID, bob, nil)
	require.Equal(t, http.StatusOK, w.Code)

	w = env.do(t, http.MethodGet, "/api/v1/stories/nope", bob, nil)
	assert.Equal(t, http.StatusNotFound, w.Code)

	title := "changed"
	w = env.do(t, http.MethodPut, "/api/v1/stories/"+created.ID, bob, models.StoryPatch{Title: &title})
	assert.Equal(t, http.StatusForbidden, w.Code)

	w = env.do(t, http.MethodPut, "/api/v1/stories/"+created.ID, alice, models.StoryPatch{Title: &title})
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "changed", decodeBody[models.Story](t, w).Title)

	w = env.do(t, http.MethodDelete, "/api/v1/stories/"+created.ID, bob, nil)
	assert.Equal(t, http.StatusForbidden, w.Code)

	w = env.do(t, http.MethodDelete, "/api/v1/stories/"+created.ID, alice, nil)
	assert.Equal(t, http.StatusNoContent, w.Code)

	w = env.do(t, http.MethodGet, "/api/v1/stories/"+created.ID, alice, nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestStories_PatchNullClearsCountry(t *testing.T) {
	env := newTestEnv(t)
	alice := env.registerAndLogin(t, "alice", "pw").AccessToken
	country := "Latvia"

	w := env.do(t, http.MethodPost, "/api/v1/stories", alice, models.StoryInput{Title: "t", Content: "c", Country: &country})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	created := decodeBody[models.Story](t, w)

	w = env.do(t, http.MethodPatch, "/api/v1/stories/"+created.ID, alice, map[string]any{"title": "kept country"})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	require.NotNil(t, decodeBody[models.Story](t, w).Country)

	w = env.do(t, http.MethodPatch, "/api/v1/stories/"+created.ID, alice, map[string]any{"country": nil})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	got := decodeBody[models.Story](t, w)
	assert.Nil(t, got.Country)
	assert.Equal(t, "kept country", got.Title)
}

func TestStories_InternalErrorIsOpaque(t *testing.T) {
	env := newTestEnv(t)
	token := env.registerAndLogin(t, "alice", "pw").AccessToken
	env.stories.err = errors.New("pq: connection to 10.0.0.7 refused")

	w := env.do(t, http.MethodGet, "/api/v1/stories", token, nil)
	require.Equal(t, http.StatusInternalServerError, w.Code)
	assert.Equal(t, "internal error", decodeBody[map[string]string](t, w)["error"])
	assert.Contains(t, env.logs.String(), "10.0.0.7")
}

func TestUpdateCountry(t *testing.T) {
	env := newTestEnv(t)
	token := env.registerAndLogin(t, "alice", "pw").AccessToken

	w := env.do(t, http.MethodPost, "/api/v1/stories/update_country", token, nil)
	require.Equal(t, http.StatusAccepted, w.Code, w.Body.String())
	assert.Equal(t, "Malaysia", decodeBody[map[string]string](t, w)["country"])

	w = env.do(t, http.MethodPost, "/api/v1/stories/update_country", token, BackfillRequest{Country: "Latvia"})
	require.Equal(t, http.StatusAccepted, w.Code)

	assert.Equal(t, []string{"Malaysia", "Latvia"}, env.stories.backfill)
}

func TestUpdateCountry_RefusedDuringShutdown(t *testing.T) {
	env := newTestEnv(t)
	token := env.registerAndLogin(t, "alice", "pw").AccessToken
	env.stories.closing = true

	w := env.do(t, http.MethodPost, "/api/v1/stories/update_country", token, nil)
	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
	assert.Empty(t, env.stories.backfill)
}

func TestStatusFor(t *testing.T) {
	tests := []struct {
		err  error
		code int
	}{
		{common.ErrorValidation, http.StatusBadRequest},
		{common.ErrConflict, http.StatusConflict},
		{common.ErrMissingCredentials, http.StatusUnauthorized},
		{common.ErrInvalidCredentials, http.StatusUnauthorized},
		{common.ErrAccountNotFound, http.StatusNotFound},
		{common.ErrorNotFound, http.StatusNotFound},
		{common.ErrForbidden, http.StatusForbidden},
		{common.ErrShuttingDown, http.StatusServiceUnavailable},
		{common.ErrorInternal, http.StatusInternalServerError},
		{errors.New("anything else"), http.StatusInternalServerError},
	}
	for _, tt := range tests {
		code, _ := statusFor(tt.err)
		assert.Equal(t, tt.code, code, tt.err.Error())
	}
}

func TestRun_StopsOnCancel(t *testing.T) {
	srv := NewHTTPServer("127.0.0.1:0", logging.NewJSONLogger(io.Discard, "error"), nil, nil, "Malaysia", time.Second)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- srv.Run(ctx) }()

	time.Sleep(50 * time.Millisecond)
	cancel()

	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("Run did not return after cancel")
	}
}

func TestRun_ListenError(t *testing.T) {
	srv := NewHTTPServer("256.0.0.1:bad", logging.NewJSONLogger(io.Discard, "error"), nil, nil, "Malaysia", time.Second)

	err := srv.Run(context.Background())
	assert.Error(t, err)
}
