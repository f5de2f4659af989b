// internal/store/overrides.go
package store

import (
	"context"
	"fmt"
	"net/url"
	"strings"
	"unicode/utf8"

	"github.com/jackc/pgx/v5/pgxpool"

	apperrors "portfolio-backend/internal/errors"
	"portfolio-backend/internal/model"
)

const (
	maxTags             = 20
	maxCustomTitleLen   = 120
	maxCustomSummaryLen = 500
)

// Overrides is the CRUD layer for per-repository admin overrides.
type Overrides struct {
	pool *pgxpool.Pool
}

func NewOverrides(pool *pgxpool.Pool) *Overrides {
	return &Overrides{pool: pool}
}

// NormalizeTags trims each tag, collapses inner whitespace runs to a single
// space, drops empties, de-duplicates exact repeats (case-sensitive) and caps
// the list at 20 entries, preserving first-seen order.
func NormalizeTags(tags []string) []string {
	out := make([]string, 0, len(tags))
	seen := make(map[string]struct{}, len(tags))
	for _, t := range tags {
		t = strings.Join(strings.Fields(t), " ")
		if t == "" {
			continue
		}
		if _, ok := seen[t]; ok {
			continue
		}
		seen[t] = struct{}{}
		out = append(out, t)
		if len(out) == maxTags {
			break
		}
	}
	return out
}

func validateOverride(o model.ProjectOverride) error {
	if utf8.RuneCountInString(o.RepoFullName) < 3 || !strings.Contains(o.RepoFullName, "/") {
		return &apperrors.ErrValidation{Field: "repoFullName", Reason: "must be in 'owner/name' form"}
	}
	if o.CustomTitle != nil {
		if n := utf8.RuneCountInString(*o.CustomTitle); n < 1 || n > maxCustomTitleLen {
			return &apperrors.ErrValidation{Field: "customTitle", Reason: fmt.Sprintf("must be 1-%d characters", maxCustomTitleLen)}
		}
	}
	if o.CustomSummary != nil {
		if n := utf8.RuneCountInString(*o.CustomSummary); n < 1 || n > maxCustomSummaryLen {
			return &apperrors.ErrValidation{Field: "customSummary", Reason: fmt.Sprintf("must be 1-%d characters", maxCustomSummaryLen)}
		}
	}
	if o.DemoURL != nil {
		u, err := url.Parse(*o.DemoURL)
		if err != nil || u.Scheme == "" || u.Host == "" {
			return &apperrors.ErrValidation{Field: "demoUrl", Reason: "must be an absolute URL"}
		}
	}
	return nil
}

// List returns all override rows.
func (o *Overrides) List(ctx context.Context) ([]model.ProjectOverride, error) {
	if o.pool == nil {
		return nil, apperrors.ErrNotConfigured
	}
	const q = `
		SELECT repo_full_name, visible, featured, demo_url, custom_title, custom_summary, tags, sort_order, updated_at
		FROM project_overrides`

	rows, err := o.pool.Query(ctx, q)
	if err != nil {
		return nil, fmt.Errorf("listing overrides: %w", err)
	}
	defer rows.Close()

	var out []model.ProjectOverride
	for rows.Next() {
		var ov model.ProjectOverride
		if err := rows.Scan(&ov.RepoFullName, &ov.Visible, &ov.Featured, &ov.DemoURL,
			&ov.CustomTitle, &ov.CustomSummary, &ov.Tags, &ov.SortOrder, &ov.UpdatedAt); err != nil {
			return nil, fmt.Errorf("scanning override row: %w", err)
		}
		out = append(out, ov)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("listing overrides: %w", err)
	}
	return out, nil
}

// Upsert validates and writes a full override record for its repository.
func (o *Overrides) Upsert(ctx context.Context, ov model.ProjectOverride) error {
	if o.pool == nil {
		return apperrors.ErrNotConfigured
	}
	if err := validateOverride(ov); err != nil {
		return err
	}
	ov.Tags = NormalizeTags(ov.Tags)

	const q = `
		INSERT INTO project_overrides
			(repo_full_name, visible, featured, demo_url, custom_title, custom_summary, tags, sort_order, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, now())
		ON CONFLICT (repo_full_name) DO UPDATE
		SET visible = EXCLUDED.visible,
		    featured = EXCLUDED.featured,
		    demo_url = EXCLUDED.demo_url,
		    custom_title = EXCLUDED.custom_title,
		    custom_summary = EXCLUDED.custom_summary,
		    tags = EXCLUDED.tags,
		    sort_order = EXCLUDED.sort_order,
		    updated_at = now()`

	_, err := o.pool.Exec(ctx, q, ov.RepoFullName, ov.Visible, ov.Featured, ov.DemoURL,
		ov.CustomTitle, ov.CustomSummary, ov.Tags, ov.SortOrder)
	if err != nil {
		return fmt.Errorf("upserting override for %s: %w", ov.RepoFullName, err)
	}
	return nil
}

// Delete removes the override row, reverting the repository to all-default
// values.
func (o *Overrides) Delete(ctx context.Context, repoFullName string) error {
	if o.pool == nil {
		return apperrors.ErrNotConfigured
	}
	const q = `DELETE FROM project_overrides WHERE repo_full_name = $1`
	if _, err := o.pool.Exec(ctx, q, repoFullName); err != nil {
		return fmt.Errorf("deleting override for %s: %w", repoFullName, err)
	}
	return nil
}

// SaveOrder upserts sort_order for a full ordered set of repository names in
// one transaction, so a partial failure cannot leave a partially reordered
// list.
func (o *Overrides) SaveOrder(ctx context.Context, fullNames []string) error {
	if o.pool == nil {
		return apperrors.ErrNotConfigured
	}
	for _, name := range fullNames {
		if utf8.RuneCountInString(name) < 3 || !strings.Contains(name, "/") {
			return &apperrors.ErrValidation{Field: "order", Reason: fmt.Sprintf("%q is not in 'owner/name' form", name)}
		}
	}

	tx, err := o.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("beginning save-order transaction: %w", err)
	}
	defer tx.Rollback(ctx) // Rollback is a no-op if the transaction is already committed.

	const q = `
		INSERT INTO project_overrides (repo_full_name, sort_order, updated_at)
		VALUES ($1, $2, now())
		ON CONFLICT (repo_full_name) DO UPDATE
		SET sort_order = EXCLUDED.sort_order, updated_at = now()`

	for i, name := range fullNames {
		if _, err := tx.Exec(ctx, q, name, i); err != nil {
			return fmt.Errorf("saving order for %s: %w", name, err)
		}
	}

	return tx.Commit(ctx)
}
