// internal/model/models.go
package model

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

// PublicProject is the merge of one upstream repository record with its
// optional admin override. It is derived on read and never persisted.
type PublicProject struct {
	Slug        string   `json:"slug"`
	Name        string   `json:"name"`
	FullName    string   `json:"fullName"`
	Description *string  `json:"description"`
	Language    *string  `json:"language"`
	Stars       int      `json:"stars"`
	UpdatedAt   string   `json:"updatedAt"` // RFC3339, fixed width, safe to compare lexicographically
	RepoURL     string   `json:"repoUrl"`
	DemoURL     *string  `json:"demoUrl"`
	Featured    bool     `json:"featured"`
	Visible     bool     `json:"visible"`
	Tags        []string `json:"tags"`
	SortOrder   *int     `json:"sortOrder"`
	IsFork      bool     `json:"isFork"`
	Archived    bool     `json:"archived"`
}

// CommitItem is one entry of a repository commit feed, in upstream order.
type CommitItem struct {
	SHA     string `json:"sha"`
	Message string `json:"message"`
	Date    string `json:"date"`
	URL     string `json:"url"`
}

// ProjectOverride is an admin-authored per-repository customization keyed by
// the repository full name (owner/name). Absence of a row is equivalent to
// all-default values.
type ProjectOverride struct {
	RepoFullName  string    `json:"repoFullName"`
	Visible       bool      `json:"visible"`
	Featured      bool      `json:"featured"`
	DemoURL       *string   `json:"demoUrl"`
	CustomTitle   *string   `json:"customTitle"`
	CustomSummary *string   `json:"customSummary"`
	Tags          []string  `json:"tags"`
	SortOrder     *int      `json:"sortOrder"`
	UpdatedAt     time.Time `json:"updatedAt"`
}

// CacheEntry is one cached upstream API response. Body always holds the most
// recent successfully retrieved payload; a not-modified revalidation re-stores
// the existing body with a refreshed expiry.
type CacheEntry struct {
	Owner     string
	Repo      string
	Kind      string
	ArgsHash  string
	ETag      *string
	Body      json.RawMessage
	FetchedAt time.Time
	ExpiresAt time.Time
}

// ContactMessage is a validated, persisted inbound contact submission.
// IPHash is a SHA-256 of the client IP; the raw IP is never stored.
type ContactMessage struct {
	ID        uuid.UUID `json:"id"`
	Name      string    `json:"name"`
	Email     string    `json:"email"`
	Message   string    `json:"message"`
	IPHash    string    `json:"ipHash"`
	UserAgent string    `json:"userAgent"`
	CreatedAt time.Time `json:"createdAt"`
}

// Analytics event types accepted by the intake endpoint.
const (
	EventPageView        = "PAGE_VIEW"
	EventClick           = "CLICK"
	EventProjectInterest = "PROJECT_INTEREST"
)

type AnalyticsEvent struct {
	ID        uuid.UUID      `json:"id"`
	Type      string         `json:"type"`
	Path      string         `json:"path"`
	Referrer  *string        `json:"referrer"`
	Meta      map[string]any `json:"meta"`
	CreatedAt time.Time      `json:"createdAt"`
}

type PathCount struct {
	Path  string `json:"path"`
	Count int64  `json:"count"`
}

type AnalyticsSummary struct {
	Totals   map[string]int64 `json:"totals"`
	TopPaths []PathCount      `json:"topPaths"`
}

// BlogPost is one admin-authored article. PublishedAt is set when the post is
// published and cleared when it is unpublished; drafts have no publish date.
type BlogPost struct {
	ID          uuid.UUID  `json:"id"`
	Slug        string     `json:"slug"`
	Title       string     `json:"title"`
	Summary     *string    `json:"summary"`
	Content     string     `json:"content"`
	Tags        []string   `json:"tags"`
	Published   bool       `json:"published"`
	PublishedAt *time.Time `json:"publishedAt"`
	CreatedAt   time.Time  `json:"createdAt"`
	UpdatedAt   time.Time  `json:"updatedAt"`
}

// BlogPostSummary is the listing shape of a post: everything but the content.
type BlogPostSummary struct {
	Slug        string     `json:"slug"`
	Title       string     `json:"title"`
	Summary     *string    `json:"summary"`
	Tags        []string   `json:"tags"`
	PublishedAt *time.Time `json:"publishedAt"`
}

// ProfileSettings are the admin-editable profile fields stored in the
// settings table. Zero values mean "not set"; the public profile falls back
// to configuration.
type ProfileSettings struct {
	Name     string `json:"name"`
	Title    string `json:"title"`
	Bio      string `json:"bio"`
	Location string `json:"location"`
	Email    string `json:"email"`
	ImageURL string `json:"imageUrl"`
}

// PublicProfile is the composed profile served on the public API.
type PublicProfile struct {
	Name     string            `json:"name"`
	Title    string            `json:"title"`
	Bio      string            `json:"bio"`
	Location string            `json:"location"`
	Email    string            `json:"email"`
	ImageURL string            `json:"imageUrl"`
	Skills   []string          `json:"skills"`
	Socials  map[string]string `json:"socials"`
}

type SocialLink struct {
	Label string `json:"label"`
	Href  string `json:"href"`
}
