// internal/syncer/syncer.go
package syncer

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"strings"
	"time"

	gh "github.com/google/go-github/v62/github"
	"golang.org/x/sync/errgroup"

	"portfolio-backend/internal/cache"
	"portfolio-backend/internal/github"
	"portfolio-backend/internal/model"
)

const (
	defaultCommitsPerPage = 30

	// Number of commit feeds to warm in parallel during a refresh.
	refreshConcurrency = 5
)

// Fetcher performs conditional upstream requests; satisfied by
// *github.Client.
type Fetcher interface {
	FetchJSON(ctx context.Context, path string, opts github.FetchOptions) (github.Result, error)
}

// CacheStore persists upstream responses; satisfied by *cache.Store.
type CacheStore interface {
	Get(ctx context.Context, key cache.Key) (*model.CacheEntry, error)
	Set(ctx context.Context, key cache.Key, etag *string, body []byte, expiresAt time.Time) error
	DeleteOwner(ctx context.Context, owner string, kinds ...string) (int64, error)
}

// OverrideResult is the outcome of an override-table read. Overrides are
// supplementary content, so a failed read degrades to "no overrides" instead
// of failing the whole sync; Err makes that policy visible to the caller
// rather than hiding it behind a swallowed error.
type OverrideResult struct {
	Overrides []model.ProjectOverride
	Err       error
}

// OverrideSource loads the override table; satisfied via OverrideLoader.
type OverrideSource interface {
	Load(ctx context.Context) OverrideResult
}

// OverrideLoader adapts a plain list function to an OverrideSource.
type OverrideLoader func(ctx context.Context) ([]model.ProjectOverride, error)

func (f OverrideLoader) Load(ctx context.Context) OverrideResult {
	overrides, err := f(ctx)
	if err != nil {
		return OverrideResult{Err: err}
	}
	return OverrideResult{Overrides: overrides}
}

// ListOptions control filtering of the derived project list.
type ListOptions struct {
	IncludeHidden   bool
	IncludeForks    bool
	IncludeArchived bool
	// Overrides, when non-nil, is used instead of reading the override
	// table, for call sites that already hold the set.
	Overrides []model.ProjectOverride
}

// Service orchestrates the cache-backed synchronization of repository and
// commit data and derives the public project list.
type Service struct {
	owner      string
	configured bool
	fetcher    Fetcher
	cache      CacheStore
	overrides  OverrideSource
	reposTTL   time.Duration
	commitsTTL time.Duration
	logger     *slog.Logger
}

// New creates a Service. An empty owner or token marks the service as
// unconfigured: all read operations then return empty results instead of
// failing, so the application can run without upstream credentials.
func New(owner, token string, fetcher Fetcher, cacheStore CacheStore, overrides OverrideSource,
	reposTTL, commitsTTL time.Duration, logger *slog.Logger) *Service {
	return &Service{
		owner:      owner,
		configured: owner != "" && token != "",
		fetcher:    fetcher,
		cache:      cacheStore,
		overrides:  overrides,
		reposTTL:   reposTTL,
		commitsTTL: commitsTTL,
		logger:     logger,
	}
}

// Projects returns the ordered, filtered public project list: the upstream
// repository list (cache-backed, conditionally fetched) merged with admin
// overrides.
func (s *Service) Projects(ctx context.Context, opts ListOptions) ([]model.PublicProject, error) {
	if !s.configured {
		s.logger.Debug("github credentials not configured; returning empty project list")
		return []model.PublicProject{}, nil
	}

	// Single bucket per account: the upstream call always requests the
	// maximum single-page size in descending last-pushed order, so the key
	// is independent of pagination.
	key := cache.Key{
		Owner:    s.owner,
		Repo:     cache.RepoListBucket,
		Kind:     cache.KindRepos,
		ArgsHash: cache.ArgsHash(map[string]any{"type": "user_repos", "owner": s.owner}),
	}
	path := fmt.Sprintf("/users/%s/repos?per_page=100&sort=pushed&direction=desc", s.owner)

	body, err := s.loadCached(ctx, key, path, s.reposTTL)
	if err != nil {
		return nil, err
	}

	repos, err := github.RepoRecords(body)
	if err != nil {
		return nil, err
	}

	return s.mergeProjects(ctx, repos, opts), nil
}

// Commits returns the commit feed for one repository of the configured
// account, in upstream order (most recent first, as provided by the API).
func (s *Service) Commits(ctx context.Context, repoName string, perPage int) ([]model.CommitItem, error) {
	if !s.configured {
		s.logger.Debug("github credentials not configured; returning empty commit list")
		return []model.CommitItem{}, nil
	}
	if perPage <= 0 {
		perPage = defaultCommitsPerPage
	}

	key := cache.Key{
		Owner:    s.owner,
		Repo:     repoName,
		Kind:     cache.KindCommits,
		ArgsHash: cache.ArgsHash(map[string]any{"perPage": perPage}),
	}
	path := fmt.Sprintf("/repos/%s/%s/commits?per_page=%d", s.owner, repoName, perPage)

	body, err := s.loadCached(ctx, key, path, s.commitsTTL)
	if err != nil {
		return nil, err
	}

	records, err := github.CommitRecords(body)
	if err != nil {
		return nil, err
	}

	items := make([]model.CommitItem, 0, len(records))
	for _, c := range records {
		items = append(items, toCommitItem(c))
	}
	return items, nil
}

// ClearCache removes all cache rows for the configured owner across the
// repository-list and commit kinds.
func (s *Service) ClearCache(ctx context.Context) (int64, error) {
	if !s.configured {
		return 0, nil
	}
	n, err := s.cache.DeleteOwner(ctx, s.owner, cache.KindRepos, cache.KindCommits)
	if err != nil {
		return 0, err
	}
	s.logger.Info("cleared github cache", "owner", s.owner, "rows", n)
	return n, nil
}

// Refresh re-reads the repository list and warms the commit feeds of all
// listed projects concurrently. Individual feed failures are logged and do
// not abort the rest of the warm.
func (s *Service) Refresh(ctx context.Context) error {
	if !s.configured {
		return nil
	}
	projects, err := s.Projects(ctx, ListOptions{IncludeHidden: true, IncludeForks: true, IncludeArchived: true})
	if err != nil {
		return err
	}

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(refreshConcurrency)
	for _, p := range projects {
		g.Go(func() error {
			if gctx.Err() != nil {
				return nil
			}
			repoName := repoNameOf(p.FullName)
			if _, err := s.Commits(gctx, repoName, defaultCommitsPerPage); err != nil {
				s.logger.Error("failed to warm commit feed", "repo", repoName, "error", err)
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return err
	}
	s.logger.Info("github cache refreshed", "projects", len(projects))
	return nil
}

// loadCached implements the cache protocol: serve fresh entries without a
// network call; otherwise fetch conditionally with the stored ETag. A
// not-modified response re-stores the existing body with the new expiry and
// ETag so the last known-good payload is never lost; a fresh response
// replaces it. Upstream failures propagate uncaught.
func (s *Service) loadCached(ctx context.Context, key cache.Key, path string, ttl time.Duration) ([]byte, error) {
	entry, err := s.cache.Get(ctx, key)
	if err != nil {
		return nil, err
	}
	if entry != nil && cache.IsFresh(entry.ExpiresAt) {
		return entry.Body, nil
	}

	var etag *string
	if entry != nil {
		etag = entry.ETag
	}

	result, err := s.fetcher.FetchJSON(ctx, path, github.FetchOptions{ETag: etag, TTL: ttl})
	if err != nil {
		return nil, err
	}

	switch result.Status {
	case github.StatusNotModified:
		if entry == nil {
			// Only reachable if the upstream answers 304 to an
			// unconditional request.
			return nil, fmt.Errorf("upstream returned not-modified with no cached body for %s", path)
		}
		newTag := result.ETag
		if newTag == nil {
			newTag = entry.ETag
		}
		if err := s.cache.Set(ctx, key, newTag, entry.Body, result.ExpiresAt); err != nil {
			return nil, err
		}
		return entry.Body, nil
	case github.StatusFresh:
		if err := s.cache.Set(ctx, key, result.ETag, result.Body, result.ExpiresAt); err != nil {
			return nil, err
		}
		return result.Body, nil
	default:
		return nil, fmt.Errorf("unexpected fetch status %d for %s", result.Status, path)
	}
}

func (s *Service) mergeProjects(ctx context.Context, repos []*gh.Repository, opts ListOptions) []model.PublicProject {
	overrides := opts.Overrides
	if overrides == nil {
		result := s.overrides.Load(ctx)
		if result.Err != nil {
			// Overrides are optional enrichment, not primary content:
			// keep serving, but log distinctly from "no overrides yet".
			s.logger.Warn("override load failed; serving unpersonalized content", "error", result.Err)
		}
		overrides = result.Overrides
	}
	byName := make(map[string]model.ProjectOverride, len(overrides))
	for _, o := range overrides {
		byName[o.RepoFullName] = o
	}

	projects := make([]model.PublicProject, 0, len(repos))
	for _, r := range repos {
		if r.GetDisabled() {
			continue
		}
		if r.GetFork() && !opts.IncludeForks {
			continue
		}
		if r.GetArchived() && !opts.IncludeArchived {
			continue
		}

		p := baseProject(r)
		if o, ok := byName[r.GetFullName()]; ok {
			applyOverride(&p, o)
		}
		if !p.Visible && !opts.IncludeHidden {
			continue
		}
		projects = append(projects, p)
	}

	sortProjects(projects)
	return projects
}

func baseProject(r *gh.Repository) model.PublicProject {
	name := r.GetName()
	return model.PublicProject{
		Slug:        strings.ToLower(name),
		Name:        name,
		FullName:    r.GetFullName(),
		Description: r.Description,
		Language:    r.Language,
		Stars:       r.GetStargazersCount(),
		UpdatedAt:   r.GetPushedAt().Time.UTC().Format(time.RFC3339),
		RepoURL:     r.GetHTMLURL(),
		DemoURL:     nonEmpty(r.Homepage),
		Featured:    false,
		Visible:     true,
		Tags:        []string{},
		IsFork:      r.GetFork(),
		Archived:    r.GetArchived(),
	}
}

func applyOverride(p *model.PublicProject, o model.ProjectOverride) {
	if o.CustomTitle != nil {
		p.Name = *o.CustomTitle
	}
	if o.CustomSummary != nil {
		p.Description = o.CustomSummary
	}
	if o.DemoURL != nil {
		p.DemoURL = o.DemoURL
	}
	p.Featured = o.Featured
	p.Visible = o.Visible
	if len(o.Tags) > 0 {
		p.Tags = o.Tags
	}
	p.SortOrder = o.SortOrder
}

// sortProjects orders entries with an explicit sort order first, ascending;
// among the rest, featured entries precede non-featured and ties break by
// most recent push. UpdatedAt is fixed-width RFC3339, so string comparison
// matches chronological order.
func sortProjects(projects []model.PublicProject) {
	sort.SliceStable(projects, func(i, j int) bool {
		a, b := projects[i], projects[j]
		switch {
		case a.SortOrder != nil && b.SortOrder != nil:
			if *a.SortOrder != *b.SortOrder {
				return *a.SortOrder < *b.SortOrder
			}
		case a.SortOrder != nil:
			return true
		case b.SortOrder != nil:
			return false
		}
		if a.Featured != b.Featured {
			return a.Featured
		}
		return a.UpdatedAt > b.UpdatedAt
	})
}

func toCommitItem(c *gh.RepositoryCommit) model.CommitItem {
	date := c.GetCommit().GetAuthor().GetDate()
	if date.Time.IsZero() {
		date = c.GetCommit().GetCommitter().GetDate()
	}
	var when string
	if !date.Time.IsZero() {
		when = date.Time.UTC().Format(time.RFC3339)
	} else {
		when = time.Now().UTC().Format(time.RFC3339)
	}
	return model.CommitItem{
		SHA:     c.GetSHA(),
		Message: c.GetCommit().GetMessage(),
		Date:    when,
		URL:     c.GetHTMLURL(),
	}
}

func repoNameOf(fullName string) string {
	if _, name, ok := strings.Cut(fullName, "/"); ok {
		return name
	}
	return fullName
}

func nonEmpty(s *string) *string {
	if s == nil || *s == "" {
		return nil
	}
	return s
}
