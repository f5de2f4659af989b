//go:build integration

// cmd/service/integration_test.go
package main

import (
	"context"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"sync/atomic"
	"testing"
	"time"

	"github.com/golang-migrate/migrate/v4"
	_ "github.com/golang-migrate/migrate/v4/database/postgres"
	_ "github.com/golang-migrate/migrate/v4/source/file"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"

	"portfolio-backend/internal/cache"
	"portfolio-backend/internal/contact"
	"portfolio-backend/internal/fingerprint"
	"portfolio-backend/internal/github"
	"portfolio-backend/internal/model"
	"portfolio-backend/internal/ratelimit"
	"portfolio-backend/internal/store"
	"portfolio-backend/internal/syncer"
)

func setupTestDatabase(ctx context.Context, t *testing.T) (*pgxpool.Pool, func()) {
	// Start a postgres container
	pgContainer, err := postgres.RunContainer(ctx,
		testcontainers.WithImage("postgres:16-alpine"),
		postgres.WithDatabase("test-db"),
		postgres.WithUsername("user"),
		postgres.WithPassword("password"),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(5*time.Second),
		),
	)
	require.NoError(t, err)

	// Get the connection string
	connStr, err := pgContainer.ConnectionString(ctx, "sslmode=disable")
	require.NoError(t, err)

	// Run migrations
	m, err := migrate.New("file://../../migrations", connStr)
	require.NoError(t, err)
	err = m.Up()
	require.NoError(t, err)

	// Create a connection pool
	dbpool, err := pgxpool.New(ctx, connStr)
	require.NoError(t, err)

	// Teardown function to be called by the test
	teardown := func() {
		dbpool.Close()
		err := pgContainer.Terminate(ctx)
		require.NoError(t, err)
	}

	return dbpool, teardown
}

func TestSync_Integration(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}

	ctx := context.Background()
	dbpool, teardown := setupTestDatabase(ctx, t)
	defer teardown()

	// Setup a mock GitHub API server
	var repoListHits int32
	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/users/test-owner/repos":
			atomic.AddInt32(&repoListHits, 1)
			w.Header().Set("ETag", `"repos-v1"`)
			w.WriteHeader(http.StatusOK)
			w.Write([]byte(`[
				{"id": 1, "name": "alpha", "full_name": "test-owner/alpha", "html_url": "https://github.com/test-owner/alpha", "pushed_at": "2024-01-02T12:00:00Z", "stargazers_count": 3},
				{"id": 2, "name": "beta", "full_name": "test-owner/beta", "html_url": "https://github.com/test-owner/beta", "pushed_at": "2024-01-03T12:00:00Z", "stargazers_count": 1}
			]`))
		case "/repos/test-owner/alpha/commits":
			w.WriteHeader(http.StatusOK)
			w.Write([]byte(`[
				{"sha": "def", "commit": {"author": {"date": "2024-01-02T12:00:00Z"}, "message": "fix: a bug"}, "html_url": "url2"},
				{"sha": "abc", "commit": {"author": {"date": "2024-01-01T12:00:00Z"}, "message": "feat: new feature"}, "html_url": "url1"}
			]`))
		default:
			w.WriteHeader(http.StatusNotFound)
		}
	})
	server := httptest.NewServer(handler)
	defer server.Close()

	// Create a github client pointing to the mock server
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelDebug}))
	ghClient := github.NewClient("test-token", logger).WithBaseURL(server.URL)

	cacheStore := cache.NewStore(dbpool)
	overrides := store.NewOverrides(dbpool)
	svc := syncer.New("test-owner", "test-token", ghClient, cacheStore,
		syncer.OverrideLoader(overrides.List), 20*time.Minute, 10*time.Minute, logger)

	// --- First read fetches upstream and fills the cache ---
	projects, err := svc.Projects(ctx, syncer.ListOptions{})
	require.NoError(t, err)
	require.Len(t, projects, 2)
	assert.Equal(t, "beta", projects[0].Name, "most recently pushed first")
	assert.Equal(t, int32(1), atomic.LoadInt32(&repoListHits))

	var cachedRows int
	err = dbpool.QueryRow(ctx,
		`SELECT count(*) FROM github_api_cache WHERE owner = 'test-owner' AND kind = 'repos'`).Scan(&cachedRows)
	require.NoError(t, err)
	assert.Equal(t, 1, cachedRows)

	// --- Second read is served from the fresh cache ---
	projects, err = svc.Projects(ctx, syncer.ListOptions{})
	require.NoError(t, err)
	require.Len(t, projects, 2)
	assert.Equal(t, int32(1), atomic.LoadInt32(&repoListHits), "fresh cache must not refetch")

	// --- Overrides flow into the merged list ---
	title := "Alpha, Featured"
	err = overrides.Upsert(ctx, model.ProjectOverride{
		RepoFullName: "test-owner/alpha",
		Visible:      true,
		Featured:     true,
		CustomTitle:  &title,
		Tags:         []string{"go"},
	})
	require.NoError(t, err)

	projects, err = svc.Projects(ctx, syncer.ListOptions{})
	require.NoError(t, err)
	require.Len(t, projects, 2)
	assert.Equal(t, "Alpha, Featured", projects[0].Name, "featured entry sorts first")
	assert.True(t, projects[0].Featured)

	// --- Commit feed reads and caches per repo ---
	commits, err := svc.Commits(ctx, "alpha", 30)
	require.NoError(t, err)
	require.Len(t, commits, 2)
	assert.Equal(t, "def", commits[0].SHA, "upstream order is preserved")

	// --- Resync clears every cached row for the owner ---
	cleared, err := svc.ClearCache(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(2), cleared)

	_, err = svc.Projects(ctx, syncer.ListOptions{})
	require.NoError(t, err)
	assert.Equal(t, int32(2), atomic.LoadInt32(&repoListHits), "cleared cache forces a refetch")
}

func TestPosts_Integration(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}

	ctx := context.Background()
	dbpool, teardown := setupTestDatabase(ctx, t)
	defer teardown()

	posts := store.NewPosts(dbpool)

	summary := "Notes on the caching design."
	err := posts.Upsert(ctx, model.BlogPost{
		Slug:      "caching-github",
		Title:     "Caching GitHub",
		Summary:   &summary,
		Content:   "Full article body.",
		Tags:      []string{" go ", "go", "caching"},
		Published: true,
	})
	require.NoError(t, err)

	err = posts.Upsert(ctx, model.BlogPost{
		Slug:    "unfinished-draft",
		Title:   "Unfinished Draft",
		Content: "Work in progress.",
	})
	require.NoError(t, err)

	// Public reads see published posts only.
	published, err := posts.ListPublished(ctx)
	require.NoError(t, err)
	require.Len(t, published, 1)
	assert.Equal(t, "caching-github", published[0].Slug)
	assert.Equal(t, []string{"go", "caching"}, published[0].Tags, "tags are normalized")
	require.NotNil(t, published[0].PublishedAt)

	draft, err := posts.GetPublished(ctx, "unfinished-draft")
	require.NoError(t, err)
	assert.Nil(t, draft, "drafts read as absent")

	full, err := posts.GetPublished(ctx, "caching-github")
	require.NoError(t, err)
	require.NotNil(t, full)
	assert.Equal(t, "Full article body.", full.Content)

	// Admin sees drafts; unpublishing clears the publish date.
	all, err := posts.ListAll(ctx)
	require.NoError(t, err)
	assert.Len(t, all, 2)

	err = posts.Upsert(ctx, model.BlogPost{
		Slug:    "caching-github",
		Title:   "Caching GitHub",
		Content: "Full article body.",
	})
	require.NoError(t, err)

	gone, err := posts.GetPublished(ctx, "caching-github")
	require.NoError(t, err)
	assert.Nil(t, gone)

	all, err = posts.ListAll(ctx)
	require.NoError(t, err)
	for _, p := range all {
		if p.Slug == "caching-github" {
			assert.False(t, p.Published)
			assert.Nil(t, p.PublishedAt)
		}
	}

	require.NoError(t, posts.Delete(ctx, "unfinished-draft"))
	all, err = posts.ListAll(ctx)
	require.NoError(t, err)
	assert.Len(t, all, 1)
}

func TestContact_Integration(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}

	ctx := context.Background()
	dbpool, teardown := setupTestDatabase(ctx, t)
	defer teardown()

	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelDebug}))
	messages := store.NewMessages(dbpool)
	limiter := ratelimit.New(nil, 10, time.Minute, logger) // no redis; fails open
	svc := contact.NewService(messages, limiter, logger)

	err := svc.Submit(ctx, contact.Input{
		Name:    "Ada Lovelace",
		Email:   "ada@example.com",
		Message: "I would like to talk about your projects.",
	}, fingerprint.Fingerprint{
		IPHash:    "deadbeef",
		UserAgent: "curl/8.0",
	})
	require.NoError(t, err)

	stored, err := messages.List(ctx, 10)
	require.NoError(t, err)
	require.Len(t, stored, 1)
	assert.Equal(t, "ada@example.com", stored[0].Email)
	assert.Equal(t, "deadbeef", stored[0].IPHash)
	assert.False(t, stored[0].CreatedAt.IsZero())

	err = messages.Delete(ctx, stored[0].ID)
	require.NoError(t, err)

	stored, err = messages.List(ctx, 10)
	require.NoError(t, err)
	assert.Empty(t, stored)
}
