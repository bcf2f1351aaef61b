package http

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/quadratic01/portfolio-api/internal/projects/domain"
	"github.com/quadratic01/portfolio-api/internal/projects/github"
	"github.com/quadratic01/portfolio-api/internal/projects/service"
	"github.com/quadratic01/portfolio-api/internal/storage/memory"
)

type failingSource struct{}

func (failingSource) ListRepositories(context.Context, string) ([]github.Repository, error) {
	return nil, &github.UnavailableError{StatusCode: http.StatusInternalServerError, Status: "Internal Server Error"}
}

type staticSource struct {
	repos []github.Repository
	calls int
}

func (s *staticSource) ListRepositories(context.Context, string) ([]github.Repository, error) {
	s.calls++
	return s.repos, nil
}

type fakeProfiles struct {
	profile *github.Profile
	err     error
}

func (f fakeProfiles) GetUser(context.Context, string) (*github.Profile, error) {
	return f.profile, f.err
}

func newRouter(h *Handler) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	h.Register(r.Group("/api"))
	return r
}

func newSyncer(store *memory.Store, src service.RepositorySource) *service.SyncService {
	return service.NewSyncService(store, src, service.SyncOptions{Account: "someone", Logger: zerolog.Nop()})
}

func get(t *testing.T, r *gin.Engine, path string) *httptest.ResponseRecorder {
	t.Helper()
	req, err := http.NewRequest(http.MethodGet, path, nil)
	require.NoError(t, err)
	rr := httptest.NewRecorder()
	r.ServeHTTP(rr, req)
	return rr
}

func TestListProjects_TotalFailureReturnsSeed(t *testing.T) {
	h := New(newSyncer(memory.New(), failingSource{}), fakeProfiles{}, true, zerolog.Nop())
	r := newRouter(h)

	rr := get(t, r, "/api/projects")

	require.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, "seed", rr.Header().Get("X-Projects-Source"))

	var projects []domain.Project
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &projects))
	assert.Len(t, projects, 4)
}

func TestListProjects_Live(t *testing.T) {
	now := time.Date(2025, 2, 1, 0, 0, 0, 0, time.UTC)
	src := &staticSource{repos: []github.Repository{
		{Name: "portfolio-template", HTMLURL: "https://github.com/someone/portfolio-template", UpdatedAt: now},
		{Name: "blog", HTMLURL: "https://github.com/someone/blog", UpdatedAt: now},
	}}
	h := New(newSyncer(memory.New(), src), fakeProfiles{}, true, zerolog.Nop())
	r := newRouter(h)

	rr := get(t, r, "/api/projects")
	require.Equal(t, http.StatusOK, rr.Code)

	var raw []map[string]any
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &raw))
	require.Len(t, raw, 1)
	assert.Equal(t, "blog", raw[0]["name"])
	assert.Equal(t, float64(1), raw[0]["id"])
	assert.Nil(t, raw[0]["description"])
	assert.Equal(t, []any{}, raw[0]["topics"])
	assert.Equal(t, "2025-02-01T00:00:00Z", raw[0]["updated_at"])
}

func TestListProjects_EmptyIsArray(t *testing.T) {
	h := New(newSyncer(memory.New(), &staticSource{}), fakeProfiles{}, true, zerolog.Nop())
	r := newRouter(h)

	rr := get(t, r, "/api/projects")

	require.Equal(t, http.StatusOK, rr.Code)
	assert.JSONEq(t, `[]`, rr.Body.String())
}

func TestListProjects_CachedMode(t *testing.T) {
	src := &staticSource{repos: []github.Repository{{Name: "blog", UpdatedAt: time.Now()}}}
	h := New(newSyncer(memory.New(), src), fakeProfiles{}, false, zerolog.Nop())
	r := newRouter(h)

	first := get(t, r, "/api/projects")
	require.Equal(t, http.StatusOK, first.Code)
	assert.Equal(t, "live", first.Header().Get("X-Projects-Source"))

	second := get(t, r, "/api/projects")
	require.Equal(t, http.StatusOK, second.Code)
	assert.Equal(t, "cache", second.Header().Get("X-Projects-Source"))
	assert.Equal(t, 1, src.calls, "cached mode only syncs when the cache is empty")
}

func TestProfile(t *testing.T) {
	t.Run("ok", func(t *testing.T) {
		h := New(newSyncer(memory.New(), &staticSource{}), fakeProfiles{profile: &github.Profile{Login: "someone"}}, true, zerolog.Nop())
		rr := get(t, newRouter(h), "/api/profile")

		require.Equal(t, http.StatusOK, rr.Code)
		assert.Contains(t, rr.Body.String(), `"login":"someone"`)
	})

	t.Run("upstream failure", func(t *testing.T) {
		h := New(newSyncer(memory.New(), &staticSource{}), fakeProfiles{err: errors.New("boom")}, true, zerolog.Nop())
		rr := get(t, newRouter(h), "/api/profile")

		require.Equal(t, http.StatusBadGateway, rr.Code)
		assert.JSONEq(t, `{"success":false,"message":"Failed to fetch profile"}`, rr.Body.String())
	})
}
