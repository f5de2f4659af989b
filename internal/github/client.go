// internal/github/client.go
package github

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net"
	"net/http"
	"time"

	"github.com/google/go-github/v62/github"
	"golang.org/x/oauth2"

	apperrors "portfolio-backend/internal/errors"
)

const (
	apiBaseURL     = "https://api.github.com"
	apiVersion     = "2022-11-28"
	acceptHeader   = "application/vnd.github+json"
	userAgent      = "portfolio-backend"
	requestTimeout = 10 * time.Second

	// Upstream error bodies are truncated to keep error messages bounded.
	maxErrorBody = 4 << 10
)

// Status of a conditional fetch.
type Status int

const (
	// StatusFresh means the upstream returned a new payload.
	StatusFresh Status = iota
	// StatusNotModified means the upstream confirmed the cached payload is
	// still current (HTTP 304). The result carries no body.
	StatusNotModified
)

// FetchOptions control a single conditional request.
type FetchOptions struct {
	// ETag is the validator from the previous response, if any. When set,
	// the request carries If-None-Match.
	ETag *string
	// TTL is the freshness window used to compute the result's ExpiresAt.
	TTL time.Duration
}

// Result is the outcome of a successful FetchJSON call.
type Result struct {
	Status    Status
	Body      json.RawMessage // nil when Status is StatusNotModified
	ETag      *string
	ExpiresAt time.Time
}

// Client performs authenticated conditional GET requests against the GitHub
// REST API. It never reads or writes the cache store; that responsibility
// belongs to callers.
type Client struct {
	http    *http.Client
	baseURL string
	logger  *slog.Logger
}

// NewClient creates and configures a new Client instance.
// The provided token is used to create an authenticated http.Client.
func NewClient(token string, logger *slog.Logger) *Client {
	ts := oauth2.StaticTokenSource(
		&oauth2.Token{AccessToken: token},
	)
	hc := oauth2.NewClient(context.Background(), ts)
	hc.Timeout = requestTimeout

	return &Client{
		http:    hc,
		baseURL: apiBaseURL,
		logger:  logger,
	}
}

// WithBaseURL points the client at an alternate API root (GitHub Enterprise,
// test servers). It returns the client for chaining.
func (c *Client) WithBaseURL(url string) *Client {
	c.baseURL = url
	return c
}

// FetchJSON performs a single authenticated GET for path (which must start
// with "/"). On 304 it returns a StatusNotModified result with no body; on
// 2xx it returns the raw JSON payload. Non-2xx, non-304 responses fail with
// *apperrors.ErrUpstream, and exceeding the request timeout fails with
// *apperrors.ErrNetworkTimeout. No retries.
func (c *Client) FetchJSON(ctx context.Context, path string, opts FetchOptions) (Result, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path, nil)
	if err != nil {
		return Result{}, fmt.Errorf("building request for %s: %w", path, err)
	}
	req.Header.Set("Accept", acceptHeader)
	req.Header.Set("X-GitHub-Api-Version", apiVersion)
	req.Header.Set("User-Agent", userAgent)
	if opts.ETag != nil && *opts.ETag != "" {
		req.Header.Set("If-None-Match", *opts.ETag)
	}

	c.logger.Debug("GitHub request", "path", path, "conditional", opts.ETag != nil)

	resp, err := c.http.Do(req)
	if err != nil {
		if isTimeout(err) {
			return Result{}, &apperrors.ErrNetworkTimeout{Path: path}
		}
		return Result{}, fmt.Errorf("requesting %s: %w", path, err)
	}
	defer resp.Body.Close()

	etag := headerPtr(resp.Header.Get("ETag"))
	expiresAt := time.Now().Add(opts.TTL)

	if resp.StatusCode == http.StatusNotModified {
		return Result{Status: StatusNotModified, ETag: etag, ExpiresAt: expiresAt}, nil
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		text, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		return Result{}, &apperrors.ErrUpstream{StatusCode: resp.StatusCode, Body: string(text)}
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		if isTimeout(err) {
			return Result{}, &apperrors.ErrNetworkTimeout{Path: path}
		}
		return Result{}, fmt.Errorf("reading response for %s: %w", path, err)
	}
	if !json.Valid(body) {
		return Result{}, fmt.Errorf("upstream returned invalid JSON for %s", path)
	}

	return Result{Status: StatusFresh, Body: body, ETag: etag, ExpiresAt: expiresAt}, nil
}

// RepoRecords decodes a repository-list payload (fresh or cached).
func RepoRecords(body []byte) ([]*github.Repository, error) {
	var repos []*github.Repository
	if err := json.Unmarshal(body, &repos); err != nil {
		return nil, fmt.Errorf("decoding repository list: %w", err)
	}
	return repos, nil
}

// CommitRecords decodes a commit-list payload (fresh or cached).
func CommitRecords(body []byte) ([]*github.RepositoryCommit, error) {
	var commits []*github.RepositoryCommit
	if err := json.Unmarshal(body, &commits); err != nil {
		return nil, fmt.Errorf("decoding commit list: %w", err)
	}
	return commits, nil
}

func isTimeout(err error) bool {
	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}
	var ne net.Error
	return errors.As(err, &ne) && ne.Timeout()
}

func headerPtr(v string) *string {
	if v == "" {
		return nil
	}
	return &v
}
