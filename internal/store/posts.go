// internal/store/posts.go
package store

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	apperrors "portfolio-backend/internal/errors"
	"portfolio-backend/internal/model"
)

const (
	minSlugLen    = 2
	maxSlugLen    = 200
	minTitleLen   = 2
	maxTitleLen   = 200
	maxSummaryLen = 500
)

var slugPattern = regexp.MustCompile(`^[a-z0-9]+(?:-[a-z0-9]+)*$`)

// Posts is the persistence layer for blog articles.
type Posts struct {
	pool *pgxpool.Pool
}

func NewPosts(pool *pgxpool.Pool) *Posts {
	return &Posts{pool: pool}
}

func validatePost(p model.BlogPost) error {
	if n := utf8.RuneCountInString(p.Slug); n < minSlugLen || n > maxSlugLen {
		return &apperrors.ErrValidation{Field: "slug", Reason: fmt.Sprintf("must be %d-%d characters", minSlugLen, maxSlugLen)}
	}
	if !slugPattern.MatchString(p.Slug) {
		return &apperrors.ErrValidation{Field: "slug", Reason: "must be lowercase letters, digits and hyphens"}
	}
	if n := utf8.RuneCountInString(p.Title); n < minTitleLen || n > maxTitleLen {
		return &apperrors.ErrValidation{Field: "title", Reason: fmt.Sprintf("must be %d-%d characters", minTitleLen, maxTitleLen)}
	}
	if p.Summary != nil && utf8.RuneCountInString(*p.Summary) > maxSummaryLen {
		return &apperrors.ErrValidation{Field: "summary", Reason: fmt.Sprintf("must be at most %d characters", maxSummaryLen)}
	}
	if p.Content == "" {
		return &apperrors.ErrValidation{Field: "content", Reason: "must not be empty"}
	}
	return nil
}

// ListPublished returns summaries of all published posts, most recently
// published first.
func (s *Posts) ListPublished(ctx context.Context) ([]model.BlogPostSummary, error) {
	if s.pool == nil {
		return nil, apperrors.ErrNotConfigured
	}
	const q = `
		SELECT slug, title, summary, tags, published_at
		FROM blog_posts
		WHERE published
		ORDER BY published_at DESC, created_at DESC`

	rows, err := s.pool.Query(ctx, q)
	if err != nil {
		return nil, fmt.Errorf("listing published posts: %w", err)
	}
	defer rows.Close()

	var out []model.BlogPostSummary
	for rows.Next() {
		var p model.BlogPostSummary
		if err := rows.Scan(&p.Slug, &p.Title, &p.Summary, &p.Tags, &p.PublishedAt); err != nil {
			return nil, fmt.Errorf("scanning post summary: %w", err)
		}
		out = append(out, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("listing published posts: %w", err)
	}
	return out, nil
}

// GetPublished returns the full published post with the given slug, or nil
// when there is none. Drafts read as absent.
func (s *Posts) GetPublished(ctx context.Context, slug string) (*model.BlogPost, error) {
	if s.pool == nil {
		return nil, apperrors.ErrNotConfigured
	}
	const q = `
		SELECT id, slug, title, summary, content, tags, published, published_at, created_at, updated_at
		FROM blog_posts
		WHERE slug = $1 AND published`

	var p model.BlogPost
	err := s.pool.QueryRow(ctx, q, slug).Scan(&p.ID, &p.Slug, &p.Title, &p.Summary,
		&p.Content, &p.Tags, &p.Published, &p.PublishedAt, &p.CreatedAt, &p.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("reading post %s: %w", slug, err)
	}
	return &p, nil
}

// ListAll returns every post, drafts included, for the admin surface.
func (s *Posts) ListAll(ctx context.Context) ([]model.BlogPost, error) {
	if s.pool == nil {
		return nil, apperrors.ErrNotConfigured
	}
	const q = `
		SELECT id, slug, title, summary, content, tags, published, published_at, created_at, updated_at
		FROM blog_posts
		ORDER BY created_at DESC`

	rows, err := s.pool.Query(ctx, q)
	if err != nil {
		return nil, fmt.Errorf("listing posts: %w", err)
	}
	defer rows.Close()

	var out []model.BlogPost
	for rows.Next() {
		var p model.BlogPost
		if err := rows.Scan(&p.ID, &p.Slug, &p.Title, &p.Summary, &p.Content,
			&p.Tags, &p.Published, &p.PublishedAt, &p.CreatedAt, &p.UpdatedAt); err != nil {
			return nil, fmt.Errorf("scanning post row: %w", err)
		}
		out = append(out, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("listing posts: %w", err)
	}
	return out, nil
}

// Upsert validates and writes a full post record keyed by slug. Publishing
// stamps PublishedAt with the write time; unpublishing clears it.
func (s *Posts) Upsert(ctx context.Context, p model.BlogPost) error {
	if s.pool == nil {
		return apperrors.ErrNotConfigured
	}
	if err := validatePost(p); err != nil {
		return err
	}
	p.Tags = NormalizeTags(p.Tags)

	var publishedAt *time.Time
	if p.Published {
		now := time.Now().UTC()
		publishedAt = &now
	}

	const q = `
		INSERT INTO blog_posts (id, slug, title, summary, content, tags, published, published_at, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, now(), now())
		ON CONFLICT (slug) DO UPDATE
		SET title = EXCLUDED.title,
		    summary = EXCLUDED.summary,
		    content = EXCLUDED.content,
		    tags = EXCLUDED.tags,
		    published = EXCLUDED.published,
		    published_at = EXCLUDED.published_at,
		    updated_at = now()`

	id := p.ID
	if id == uuid.Nil {
		id = uuid.New()
	}
	_, err := s.pool.Exec(ctx, q, id, p.Slug, p.Title, p.Summary, p.Content,
		p.Tags, p.Published, publishedAt)
	if err != nil {
		return fmt.Errorf("upserting post %s: %w", p.Slug, err)
	}
	return nil
}

// Delete removes the post with the given slug.
func (s *Posts) Delete(ctx context.Context, slug string) error {
	if s.pool == nil {
		return apperrors.ErrNotConfigured
	}
	const q = `DELETE FROM blog_posts WHERE slug = $1`
	if _, err := s.pool.Exec(ctx, q, slug); err != nil {
		return fmt.Errorf("deleting post %s: %w", slug, err)
	}
	return nil
}
