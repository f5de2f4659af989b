// internal/api/handler_test.go
package api

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"portfolio-backend/internal/contact"
	apperrors "portfolio-backend/internal/errors"
	"portfolio-backend/internal/fingerprint"
	"portfolio-backend/internal/model"
	"portfolio-backend/internal/syncer"
)

// --- Mocks ---

type MockProjectService struct {
	mock.Mock
}

func (m *MockProjectService) Projects(ctx context.Context, opts syncer.ListOptions) ([]model.PublicProject, error) {
	args := m.Called(ctx, opts)
	projects, _ := args.Get(0).([]model.PublicProject)
	return projects, args.Error(1)
}

func (m *MockProjectService) Commits(ctx context.Context, repoName string, perPage int) ([]model.CommitItem, error) {
	args := m.Called(ctx, repoName, perPage)
	commits, _ := args.Get(0).([]model.CommitItem)
	return commits, args.Error(1)
}

func (m *MockProjectService) ClearCache(ctx context.Context) (int64, error) {
	args := m.Called(ctx)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockProjectService) Refresh(ctx context.Context) error {
	return m.Called(ctx).Error(0)
}

type MockContactService struct {
	mock.Mock
}

func (m *MockContactService) Submit(ctx context.Context, in contact.Input, fp fingerprint.Fingerprint) error {
	return m.Called(ctx, in, fp).Error(0)
}

type MockSettingsStore struct {
	mock.Mock
}

func (m *MockSettingsStore) Profile(ctx context.Context) (model.ProfileSettings, error) {
	args := m.Called(ctx)
	return args.Get(0).(model.ProfileSettings), args.Error(1)
}

func (m *MockSettingsStore) SetProfile(ctx context.Context, p model.ProfileSettings) error {
	return m.Called(ctx, p).Error(0)
}

func (m *MockSettingsStore) Skills(ctx context.Context) ([]string, error) {
	args := m.Called(ctx)
	skills, _ := args.Get(0).([]string)
	return skills, args.Error(1)
}

func (m *MockSettingsStore) SetSkills(ctx context.Context, skills []string) error {
	return m.Called(ctx, skills).Error(0)
}

func (m *MockSettingsStore) SocialLinks(ctx context.Context) (map[string]string, error) {
	args := m.Called(ctx)
	links, _ := args.Get(0).(map[string]string)
	return links, args.Error(1)
}

func (m *MockSettingsStore) SetSocialLinks(ctx context.Context, links map[string]string) error {
	return m.Called(ctx, links).Error(0)
}

type MockOverrideStore struct {
	mock.Mock
}

func (m *MockOverrideStore) List(ctx context.Context) ([]model.ProjectOverride, error) {
	args := m.Called(ctx)
	overrides, _ := args.Get(0).([]model.ProjectOverride)
	return overrides, args.Error(1)
}

func (m *MockOverrideStore) Upsert(ctx context.Context, ov model.ProjectOverride) error {
	return m.Called(ctx, ov).Error(0)
}

func (m *MockOverrideStore) Delete(ctx context.Context, repoFullName string) error {
	return m.Called(ctx, repoFullName).Error(0)
}

func (m *MockOverrideStore) SaveOrder(ctx context.Context, fullNames []string) error {
	return m.Called(ctx, fullNames).Error(0)
}

type MockPostStore struct {
	mock.Mock
}

func (m *MockPostStore) ListPublished(ctx context.Context) ([]model.BlogPostSummary, error) {
	args := m.Called(ctx)
	posts, _ := args.Get(0).([]model.BlogPostSummary)
	return posts, args.Error(1)
}

func (m *MockPostStore) GetPublished(ctx context.Context, slug string) (*model.BlogPost, error) {
	args := m.Called(ctx, slug)
	post, _ := args.Get(0).(*model.BlogPost)
	return post, args.Error(1)
}

func (m *MockPostStore) ListAll(ctx context.Context) ([]model.BlogPost, error) {
	args := m.Called(ctx)
	posts, _ := args.Get(0).([]model.BlogPost)
	return posts, args.Error(1)
}

func (m *MockPostStore) Upsert(ctx context.Context, p model.BlogPost) error {
	return m.Called(ctx, p).Error(0)
}

func (m *MockPostStore) Delete(ctx context.Context, slug string) error {
	return m.Called(ctx, slug).Error(0)
}

type MockMessageStore struct {
	mock.Mock
}

func (m *MockMessageStore) List(ctx context.Context, limit int) ([]model.ContactMessage, error) {
	args := m.Called(ctx, limit)
	messages, _ := args.Get(0).([]model.ContactMessage)
	return messages, args.Error(1)
}

func (m *MockMessageStore) Delete(ctx context.Context, id uuid.UUID) error {
	return m.Called(ctx, id).Error(0)
}

type MockAnalyticsStore struct {
	mock.Mock
}

func (m *MockAnalyticsStore) Record(ctx context.Context, ev *model.AnalyticsEvent) error {
	return m.Called(ctx, ev).Error(0)
}

func (m *MockAnalyticsStore) Summary(ctx context.Context) (model.AnalyticsSummary, error) {
	args := m.Called(ctx)
	return args.Get(0).(model.AnalyticsSummary), args.Error(1)
}

// --- Helpers ---

type testDeps struct {
	sync      *MockProjectService
	contact   *MockContactService
	settings  *MockSettingsStore
	overrides *MockOverrideStore
	posts     *MockPostStore
	messages  *MockMessageStore
	analytics *MockAnalyticsStore
}

func setupRouter(t *testing.T) (http.Handler, *testDeps) {
	t.Helper()
	d := &testDeps{
		sync:      new(MockProjectService),
		contact:   new(MockContactService),
		settings:  new(MockSettingsStore),
		overrides: new(MockOverrideStore),
		posts:     new(MockPostStore),
		messages:  new(MockMessageStore),
		analytics: new(MockAnalyticsStore),
	}
	router := NewRouter(Deps{
		Sync:            d.sync,
		Contact:         d.contact,
		Settings:        d.settings,
		Overrides:       d.overrides,
		Posts:           d.posts,
		Messages:        d.messages,
		Analytics:       d.analytics,
		FallbackProfile: model.PublicProfile{Name: "Fallback Name", Socials: map[string]string{"GitHub": "https://github.com/octocat"}},
		AdminUsername:   "admin",
		AdminPassword:   "secret",
		Logger:          slog.New(slog.NewTextHandler(io.Discard, nil)),
	})
	return router, d
}

func doRequest(t *testing.T, router http.Handler, method, target string, body string) *httptest.ResponseRecorder {
	t.Helper()
	var r io.Reader
	if body != "" {
		r = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, target, r)
	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, req)
	return rr
}

func doAdminRequest(t *testing.T, router http.Handler, method, target string, body string) *httptest.ResponseRecorder {
	t.Helper()
	var r io.Reader
	if body != "" {
		r = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, target, r)
	req.SetBasicAuth("admin", "secret")
	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, req)
	return rr
}

// --- Tests ---

func TestHealthCheck(t *testing.T) {
	router, _ := setupRouter(t)
	rr := doRequest(t, router, "GET", "/health", "")
	assert.Equal(t, http.StatusOK, rr.Code)
	assert.JSONEq(t, `{"status": "ok"}`, rr.Body.String())
}

func TestGetProjects(t *testing.T) {
	t.Run("serves the public list", func(t *testing.T) {
		router, d := setupRouter(t)
		d.sync.On("Projects", mock.Anything, syncer.ListOptions{}).
			Return([]model.PublicProject{{Slug: "alpha", Name: "alpha", Visible: true, Tags: []string{}}}, nil)

		rr := doRequest(t, router, "GET", "/v1/projects", "")

		assert.Equal(t, http.StatusOK, rr.Code)
		var got []model.PublicProject
		require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &got))
		require.Len(t, got, 1)
		assert.Equal(t, "alpha", got[0].Slug)
	})

	t.Run("maps upstream timeout to 504", func(t *testing.T) {
		router, d := setupRouter(t)
		d.sync.On("Projects", mock.Anything, mock.Anything).
			Return(nil, &apperrors.ErrNetworkTimeout{Path: "/users/x/repos"})

		rr := doRequest(t, router, "GET", "/v1/projects", "")
		assert.Equal(t, http.StatusGatewayTimeout, rr.Code)
	})

	t.Run("maps upstream failure to 502", func(t *testing.T) {
		router, d := setupRouter(t)
		d.sync.On("Projects", mock.Anything, mock.Anything).
			Return(nil, &apperrors.ErrUpstream{StatusCode: 403, Body: "rate limited"})

		rr := doRequest(t, router, "GET", "/v1/projects", "")
		assert.Equal(t, http.StatusBadGateway, rr.Code)
	})
}

func TestGetCommits(t *testing.T) {
	t.Run("passes repo and per_page through", func(t *testing.T) {
		router, d := setupRouter(t)
		d.sync.On("Commits", mock.Anything, "alpha", 5).
			Return([]model.CommitItem{{SHA: "c1"}}, nil)

		rr := doRequest(t, router, "GET", "/v1/projects/alpha/commits?per_page=5", "")

		assert.Equal(t, http.StatusOK, rr.Code)
		d.sync.AssertExpectations(t)
	})

	t.Run("rejects out-of-range per_page", func(t *testing.T) {
		router, d := setupRouter(t)
		for _, v := range []string{"0", "101", "-1", "abc"} {
			rr := doRequest(t, router, "GET", "/v1/projects/alpha/commits?per_page="+v, "")
			assert.Equal(t, http.StatusBadRequest, rr.Code, "per_page=%s", v)
		}
		d.sync.AssertNotCalled(t, "Commits", mock.Anything, mock.Anything, mock.Anything)
	})
}

func TestGetProfile(t *testing.T) {
	t.Run("stored settings win over fallbacks", func(t *testing.T) {
		router, d := setupRouter(t)
		d.settings.On("Profile", mock.Anything).Return(model.ProfileSettings{Name: "Stored Name"}, nil)
		d.settings.On("Skills", mock.Anything).Return([]string{"Go"}, nil)
		d.settings.On("SocialLinks", mock.Anything).Return(map[string]string{
			"Mastodon": "https://m.example/@me",
			"GitHub":   "https://github.com/me",
		}, nil)

		rr := doRequest(t, router, "GET", "/v1/profile", "")

		assert.Equal(t, http.StatusOK, rr.Code)
		var got struct {
			Name        string             `json:"name"`
			Skills      []string           `json:"skills"`
			SocialLinks []model.SocialLink `json:"socialLinks"`
		}
		require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &got))
		assert.Equal(t, "Stored Name", got.Name)
		assert.Equal(t, []string{"Go"}, got.Skills)
		require.Len(t, got.SocialLinks, 2)
		assert.Equal(t, "GitHub", got.SocialLinks[0].Label, "known networks sort first")
		assert.Equal(t, "Mastodon", got.SocialLinks[1].Label)
	})

	t.Run("falls back when nothing is stored", func(t *testing.T) {
		router, d := setupRouter(t)
		d.settings.On("Profile", mock.Anything).Return(model.ProfileSettings{}, nil)
		d.settings.On("Skills", mock.Anything).Return(nil, nil)
		d.settings.On("SocialLinks", mock.Anything).Return(nil, nil)

		rr := doRequest(t, router, "GET", "/v1/profile", "")

		assert.Equal(t, http.StatusOK, rr.Code)
		var got map[string]any
		require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &got))
		assert.Equal(t, "Fallback Name", got["name"])
		assert.Equal(t, []any{}, got["skills"], "empty array, not null")
	})
}

func TestGetPosts(t *testing.T) {
	t.Run("serves published summaries", func(t *testing.T) {
		router, d := setupRouter(t)
		summary := "How this site caches GitHub data."
		d.posts.On("ListPublished", mock.Anything).Return([]model.BlogPostSummary{
			{Slug: "caching-github", Title: "Caching GitHub", Summary: &summary, Tags: []string{"go"}},
		}, nil)

		rr := doRequest(t, router, "GET", "/v1/posts", "")

		assert.Equal(t, http.StatusOK, rr.Code)
		var got []model.BlogPostSummary
		require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &got))
		require.Len(t, got, 1)
		assert.Equal(t, "caching-github", got[0].Slug)
	})

	t.Run("answers an empty array for no posts", func(t *testing.T) {
		router, d := setupRouter(t)
		d.posts.On("ListPublished", mock.Anything).Return(nil, nil)

		rr := doRequest(t, router, "GET", "/v1/posts", "")
		assert.Equal(t, http.StatusOK, rr.Code)
		assert.JSONEq(t, `[]`, rr.Body.String())
	})
}

func TestGetPost(t *testing.T) {
	t.Run("serves one published post", func(t *testing.T) {
		router, d := setupRouter(t)
		d.posts.On("GetPublished", mock.Anything, "caching-github").
			Return(&model.BlogPost{Slug: "caching-github", Title: "Caching GitHub", Content: "Body.", Published: true}, nil)

		rr := doRequest(t, router, "GET", "/v1/posts/caching-github", "")

		assert.Equal(t, http.StatusOK, rr.Code)
		var got model.BlogPost
		require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &got))
		assert.Equal(t, "Body.", got.Content)
	})

	t.Run("answers 404 for drafts and unknown slugs", func(t *testing.T) {
		router, d := setupRouter(t)
		d.posts.On("GetPublished", mock.Anything, "nope").Return(nil, nil)

		rr := doRequest(t, router, "GET", "/v1/posts/nope", "")
		assert.Equal(t, http.StatusNotFound, rr.Code)
	})
}

func TestAdminPosts(t *testing.T) {
	t.Run("lists drafts too", func(t *testing.T) {
		router, d := setupRouter(t)
		d.posts.On("ListAll", mock.Anything).Return([]model.BlogPost{
			{Slug: "draft-post", Title: "Draft", Content: "x", Published: false},
		}, nil)

		rr := doAdminRequest(t, router, "GET", "/admin/posts", "")

		assert.Equal(t, http.StatusOK, rr.Code)
		var got []model.BlogPost
		require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &got))
		require.Len(t, got, 1)
		assert.False(t, got[0].Published)
	})

	t.Run("upsert takes the slug from the path", func(t *testing.T) {
		router, d := setupRouter(t)
		var saved model.BlogPost
		d.posts.On("Upsert", mock.Anything, mock.Anything).
			Run(func(args mock.Arguments) { saved = args.Get(1).(model.BlogPost) }).
			Return(nil)

		rr := doAdminRequest(t, router, "PUT", "/admin/posts/caching-github",
			`{"title": "Caching GitHub", "content": "Body.", "tags": ["go"], "published": true}`)

		assert.Equal(t, http.StatusOK, rr.Code)
		assert.Equal(t, "caching-github", saved.Slug)
		assert.True(t, saved.Published)
	})

	t.Run("upsert maps validation failure to 400", func(t *testing.T) {
		router, d := setupRouter(t)
		d.posts.On("Upsert", mock.Anything, mock.Anything).
			Return(&apperrors.ErrValidation{Field: "content", Reason: "must not be empty"})

		rr := doAdminRequest(t, router, "PUT", "/admin/posts/caching-github", `{"title": "T"}`)
		assert.Equal(t, http.StatusBadRequest, rr.Code)
	})

	t.Run("delete removes by slug", func(t *testing.T) {
		router, d := setupRouter(t)
		d.posts.On("Delete", mock.Anything, "caching-github").Return(nil)

		rr := doAdminRequest(t, router, "DELETE", "/admin/posts/caching-github", "")
		assert.Equal(t, http.StatusOK, rr.Code)
		d.posts.AssertExpectations(t)
	})

	t.Run("requires authentication", func(t *testing.T) {
		router, _ := setupRouter(t)
		rr := doRequest(t, router, "GET", "/admin/posts", "")
		assert.Equal(t, http.StatusUnauthorized, rr.Code)
	})
}

func TestPostContact(t *testing.T) {
	body := `{"name": "Ada Lovelace", "email": "ada@example.com", "message": "Hello from the contact form."}`

	cases := []struct {
		name   string
		err    error
		status int
	}{
		{"accepted", nil, http.StatusCreated},
		{"validation failure", &apperrors.ErrValidation{Field: "name", Reason: "too short"}, http.StatusBadRequest},
		{"cross-origin", apperrors.ErrRejectedRequest, http.StatusForbidden},
		{"rate limited", apperrors.ErrRateLimited, http.StatusTooManyRequests},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			router, d := setupRouter(t)
			d.contact.On("Submit", mock.Anything, mock.Anything, mock.Anything).Return(tc.err)

			rr := doRequest(t, router, "POST", "/v1/contact", body)
			assert.Equal(t, tc.status, rr.Code)
		})
	}

	t.Run("rejects malformed json", func(t *testing.T) {
		router, d := setupRouter(t)
		rr := doRequest(t, router, "POST", "/v1/contact", `{not json`)
		assert.Equal(t, http.StatusBadRequest, rr.Code)
		d.contact.AssertNotCalled(t, "Submit", mock.Anything, mock.Anything, mock.Anything)
	})
}

func TestPostAnalytics(t *testing.T) {
	t.Run("records a valid event with visitor metadata", func(t *testing.T) {
		router, d := setupRouter(t)
		var recorded *model.AnalyticsEvent
		d.analytics.On("Record", mock.Anything, mock.Anything).
			Run(func(args mock.Arguments) { recorded = args.Get(1).(*model.AnalyticsEvent) }).
			Return(nil)

		req := httptest.NewRequest("POST", "/v1/analytics",
			bytes.NewReader([]byte(`{"type": "PAGE_VIEW", "path": "/projects"}`)))
		req.Header.Set("User-Agent", "curl/8.0")
		rr := httptest.NewRecorder()
		router.ServeHTTP(rr, req)

		assert.Equal(t, http.StatusOK, rr.Code)
		assert.JSONEq(t, `{"ok": true}`, rr.Body.String())
		require.NotNil(t, recorded)
		assert.Equal(t, model.EventPageView, recorded.Type)
		assert.NotEmpty(t, recorded.Meta["visitorId"])
		assert.Equal(t, "curl/8.0", recorded.Meta["ua"])
	})

	t.Run("rejects unknown event types", func(t *testing.T) {
		router, d := setupRouter(t)
		rr := doRequest(t, router, "POST", "/v1/analytics", `{"type": "EVIL", "path": "/x"}`)
		assert.Equal(t, http.StatusBadRequest, rr.Code)
		d.analytics.AssertNotCalled(t, "Record", mock.Anything, mock.Anything)
	})

	t.Run("counts path length in characters, not bytes", func(t *testing.T) {
		router, d := setupRouter(t)
		d.analytics.On("Record", mock.Anything, mock.Anything).Return(nil)

		// 500 two-byte characters: over the limit in bytes, at it in runes.
		path := "/" + strings.Repeat("é", 499)
		body, err := json.Marshal(map[string]string{"type": "PAGE_VIEW", "path": path})
		require.NoError(t, err)

		rr := doRequest(t, router, "POST", "/v1/analytics", string(body))
		assert.Equal(t, http.StatusOK, rr.Code)

		rr = doRequest(t, router, "POST", "/v1/analytics",
			`{"type": "PAGE_VIEW", "path": "/`+strings.Repeat("a", 500)+`"}`)
		assert.Equal(t, http.StatusBadRequest, rr.Code, "501 characters is out of bounds")
	})

	t.Run("rejects empty path", func(t *testing.T) {
		router, _ := setupRouter(t)
		rr := doRequest(t, router, "POST", "/v1/analytics", `{"type": "CLICK", "path": ""}`)
		assert.Equal(t, http.StatusBadRequest, rr.Code)
	})

	t.Run("answers ok false when the store is unconfigured", func(t *testing.T) {
		router, d := setupRouter(t)
		d.analytics.On("Record", mock.Anything, mock.Anything).Return(apperrors.ErrNotConfigured)

		rr := doRequest(t, router, "POST", "/v1/analytics", `{"type": "CLICK", "path": "/x"}`)
		assert.Equal(t, http.StatusOK, rr.Code)
		assert.JSONEq(t, `{"ok": false}`, rr.Body.String())
	})
}

func TestAdminAuth(t *testing.T) {
	router, _ := setupRouter(t)

	t.Run("rejects unauthenticated requests", func(t *testing.T) {
		rr := doRequest(t, router, "GET", "/admin/projects", "")
		assert.Equal(t, http.StatusUnauthorized, rr.Code)
	})

	t.Run("rejects wrong credentials", func(t *testing.T) {
		req := httptest.NewRequest("GET", "/admin/projects", nil)
		req.SetBasicAuth("admin", "wrong")
		rr := httptest.NewRecorder()
		router.ServeHTTP(rr, req)
		assert.Equal(t, http.StatusUnauthorized, rr.Code)
	})
}

func TestAdminProjects(t *testing.T) {
	router, d := setupRouter(t)
	overrides := []model.ProjectOverride{{RepoFullName: "octocat/secret", Visible: false}}
	d.overrides.On("List", mock.Anything).Return(overrides, nil)
	d.sync.On("Projects", mock.Anything, syncer.ListOptions{
		IncludeHidden:   true,
		IncludeForks:    true,
		IncludeArchived: true,
		Overrides:       overrides,
	}).Return([]model.PublicProject{{Slug: "secret"}}, nil)

	rr := doAdminRequest(t, router, "GET", "/admin/projects", "")

	assert.Equal(t, http.StatusOK, rr.Code)
	d.sync.AssertExpectations(t)
}

func TestPutOverride(t *testing.T) {
	t.Run("defaults visible to true and builds the full name", func(t *testing.T) {
		router, d := setupRouter(t)
		var saved model.ProjectOverride
		d.overrides.On("Upsert", mock.Anything, mock.Anything).
			Run(func(args mock.Arguments) { saved = args.Get(1).(model.ProjectOverride) }).
			Return(nil)

		rr := doAdminRequest(t, router, "PUT", "/admin/projects/octocat/alpha",
			`{"featured": true, "tags": ["go"]}`)

		assert.Equal(t, http.StatusOK, rr.Code)
		assert.Equal(t, "octocat/alpha", saved.RepoFullName)
		assert.True(t, saved.Visible)
		assert.True(t, saved.Featured)
	})

	t.Run("maps validation failure to 400", func(t *testing.T) {
		router, d := setupRouter(t)
		d.overrides.On("Upsert", mock.Anything, mock.Anything).
			Return(&apperrors.ErrValidation{Field: "demoUrl", Reason: "must be an absolute URL"})

		rr := doAdminRequest(t, router, "PUT", "/admin/projects/octocat/alpha", `{"demoUrl": "nope"}`)
		assert.Equal(t, http.StatusBadRequest, rr.Code)
	})
}

func TestPostOrder(t *testing.T) {
	t.Run("saves the given order", func(t *testing.T) {
		router, d := setupRouter(t)
		d.overrides.On("SaveOrder", mock.Anything, []string{"o/a", "o/b"}).Return(nil)

		rr := doAdminRequest(t, router, "POST", "/admin/projects/order", `{"order": ["o/a", "o/b"]}`)

		assert.Equal(t, http.StatusOK, rr.Code)
		d.overrides.AssertExpectations(t)
	})

	t.Run("rejects an empty order", func(t *testing.T) {
		router, d := setupRouter(t)
		rr := doAdminRequest(t, router, "POST", "/admin/projects/order", `{"order": []}`)
		assert.Equal(t, http.StatusBadRequest, rr.Code)
		d.overrides.AssertNotCalled(t, "SaveOrder", mock.Anything, mock.Anything)
	})
}

func TestPostResync(t *testing.T) {
	router, d := setupRouter(t)
	d.sync.On("ClearCache", mock.Anything).Return(int64(3), nil)
	d.sync.On("Refresh", mock.Anything).Return(nil)

	rr := doAdminRequest(t, router, "POST", "/admin/github/resync", "")

	assert.Equal(t, http.StatusOK, rr.Code)
	assert.JSONEq(t, `{"cleared": 3}`, rr.Body.String())
	d.sync.AssertExpectations(t)
}

func TestSettingsEndpoints(t *testing.T) {
	t.Run("put profile", func(t *testing.T) {
		router, d := setupRouter(t)
		d.settings.On("SetProfile", mock.Anything, model.ProfileSettings{Name: "New Name"}).Return(nil)

		rr := doAdminRequest(t, router, "PUT", "/admin/settings/profile", `{"name": "New Name"}`)
		assert.Equal(t, http.StatusOK, rr.Code)
		d.settings.AssertExpectations(t)
	})

	t.Run("put skills maps unconfigured store to 503", func(t *testing.T) {
		router, d := setupRouter(t)
		d.settings.On("SetSkills", mock.Anything, mock.Anything).Return(apperrors.ErrNotConfigured)

		rr := doAdminRequest(t, router, "PUT", "/admin/settings/skills", `["Go", "SQL"]`)
		assert.Equal(t, http.StatusServiceUnavailable, rr.Code)
	})

	t.Run("get socials answers an empty object for no rows", func(t *testing.T) {
		router, d := setupRouter(t)
		d.settings.On("SocialLinks", mock.Anything).Return(nil, nil)

		rr := doAdminRequest(t, router, "GET", "/admin/settings/socials", "")
		assert.Equal(t, http.StatusOK, rr.Code)
		assert.JSONEq(t, `{}`, rr.Body.String())
	})
}

func TestMessagesEndpoints(t *testing.T) {
	t.Run("lists with the default limit", func(t *testing.T) {
		router, d := setupRouter(t)
		d.messages.On("List", mock.Anything, 100).Return([]model.ContactMessage{}, nil)

		rr := doAdminRequest(t, router, "GET", "/admin/messages", "")
		assert.Equal(t, http.StatusOK, rr.Code)
		d.messages.AssertExpectations(t)
	})

	t.Run("rejects an out-of-range limit", func(t *testing.T) {
		router, d := setupRouter(t)
		rr := doAdminRequest(t, router, "GET", "/admin/messages?limit=1001", "")
		assert.Equal(t, http.StatusBadRequest, rr.Code)
		d.messages.AssertNotCalled(t, "List", mock.Anything, mock.Anything)
	})

	t.Run("deletes by id", func(t *testing.T) {
		router, d := setupRouter(t)
		id := uuid.New()
		d.messages.On("Delete", mock.Anything, id).Return(nil)

		rr := doAdminRequest(t, router, "DELETE", "/admin/messages/"+id.String(), "")
		assert.Equal(t, http.StatusOK, rr.Code)
		d.messages.AssertExpectations(t)
	})

	t.Run("rejects a malformed id", func(t *testing.T) {
		router, d := setupRouter(t)
		rr := doAdminRequest(t, router, "DELETE", "/admin/messages/not-a-uuid", "")
		assert.Equal(t, http.StatusBadRequest, rr.Code)
		d.messages.AssertNotCalled(t, "Delete", mock.Anything, mock.Anything)
	})
}

func TestGetAnalyticsSummary(t *testing.T) {
	router, d := setupRouter(t)
	d.analytics.On("Summary", mock.Anything).Return(model.AnalyticsSummary{
		Totals:   map[string]int64{"PAGE_VIEW": 12},
		TopPaths: []model.PathCount{{Path: "/projects", Count: 8}},
	}, nil)

	rr := doAdminRequest(t, router, "GET", "/admin/analytics/summary", "")

	assert.Equal(t, http.StatusOK, rr.Code)
	var got model.AnalyticsSummary
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &got))
	assert.Equal(t, int64(12), got.Totals["PAGE_VIEW"])
}

func TestSortedSocialLinks(t *testing.T) {
	links := SortedSocialLinks(map[string]string{
		"Website":  "https://site.example",
		"X":        "https://x.com/me",
		"GitHub":   "https://github.com/me",
		"LinkedIn": "https://linkedin.com/in/me",
		"Blog":     "",
	})

	labels := make([]string, len(links))
	for i, l := range links {
		labels[i] = l.Label
	}
	assert.Equal(t, []string{"GitHub", "LinkedIn", "X", "Website"}, labels, "empty hrefs are dropped")
}
