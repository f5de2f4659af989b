// internal/store/analytics.go
package store

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"

	apperrors "portfolio-backend/internal/errors"
	"portfolio-backend/internal/model"
)

const topPathsLimit = 10

// Analytics persists lightweight page analytics events.
type Analytics struct {
	pool *pgxpool.Pool
}

func NewAnalytics(pool *pgxpool.Pool) *Analytics {
	return &Analytics{pool: pool}
}

// Record inserts one event and fills in its ID.
func (a *Analytics) Record(ctx context.Context, ev *model.AnalyticsEvent) error {
	if a.pool == nil {
		return apperrors.ErrNotConfigured
	}
	if ev.ID == uuid.Nil {
		ev.ID = uuid.New()
	}
	if ev.Meta == nil {
		ev.Meta = map[string]any{}
	}
	const q = `
		INSERT INTO analytics_events (id, type, path, referrer, meta)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING created_at`
	err := a.pool.QueryRow(ctx, q, ev.ID, ev.Type, ev.Path, ev.Referrer, ev.Meta).
		Scan(&ev.CreatedAt)
	if err != nil {
		return fmt.Errorf("inserting analytics event: %w", err)
	}
	return nil
}

// Summary returns event totals per type and the most viewed paths.
func (a *Analytics) Summary(ctx context.Context) (model.AnalyticsSummary, error) {
	summary := model.AnalyticsSummary{
		Totals:   map[string]int64{},
		TopPaths: []model.PathCount{},
	}
	if a.pool == nil {
		return summary, apperrors.ErrNotConfigured
	}

	rows, err := a.pool.Query(ctx, `SELECT type, count(*) FROM analytics_events GROUP BY type`)
	if err != nil {
		return summary, fmt.Errorf("summarizing analytics events: %w", err)
	}
	defer rows.Close()
	for rows.Next() {
		var typ string
		var n int64
		if err := rows.Scan(&typ, &n); err != nil {
			return summary, fmt.Errorf("scanning analytics totals: %w", err)
		}
		summary.Totals[typ] = n
	}
	if err := rows.Err(); err != nil {
		return summary, fmt.Errorf("summarizing analytics events: %w", err)
	}

	const topQ = `
		SELECT path, count(*) AS n
		FROM analytics_events
		WHERE type = $1
		GROUP BY path
		ORDER BY n DESC, path
		LIMIT $2`
	pathRows, err := a.pool.Query(ctx, topQ, model.EventPageView, topPathsLimit)
	if err != nil {
		return summary, fmt.Errorf("summarizing page views: %w", err)
	}
	defer pathRows.Close()
	for pathRows.Next() {
		var pc model.PathCount
		if err := pathRows.Scan(&pc.Path, &pc.Count); err != nil {
			return summary, fmt.Errorf("scanning page view counts: %w", err)
		}
		summary.TopPaths = append(summary.TopPaths, pc)
	}
	if err := pathRows.Err(); err != nil {
		return summary, fmt.Errorf("summarizing page views: %w", err)
	}

	return summary, nil
}
