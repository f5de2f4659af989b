// internal/store/messages.go
package store

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"

	apperrors "portfolio-backend/internal/errors"
	"portfolio-backend/internal/model"
)

// Messages persists inbound contact submissions.
type Messages struct {
	pool *pgxpool.Pool
}

func NewMessages(pool *pgxpool.Pool) *Messages {
	return &Messages{pool: pool}
}

// Create inserts the message and fills in its ID and CreatedAt.
func (m *Messages) Create(ctx context.Context, msg *model.ContactMessage) error {
	if m.pool == nil {
		return apperrors.ErrNotConfigured
	}
	if msg.ID == uuid.Nil {
		msg.ID = uuid.New()
	}
	const q = `
		INSERT INTO contact_messages (id, name, email, message, ip_hash, user_agent)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING created_at`
	err := m.pool.QueryRow(ctx, q, msg.ID, msg.Name, msg.Email, msg.Message, msg.IPHash, msg.UserAgent).
		Scan(&msg.CreatedAt)
	if err != nil {
		return fmt.Errorf("inserting contact message: %w", err)
	}
	return nil
}

// List returns up to limit messages, newest first.
func (m *Messages) List(ctx context.Context, limit int) ([]model.ContactMessage, error) {
	if m.pool == nil {
		return nil, apperrors.ErrNotConfigured
	}
	const q = `
		SELECT id, name, email, message, ip_hash, user_agent, created_at
		FROM contact_messages
		ORDER BY created_at DESC
		LIMIT $1`

	rows, err := m.pool.Query(ctx, q, limit)
	if err != nil {
		return nil, fmt.Errorf("listing contact messages: %w", err)
	}
	defer rows.Close()

	var out []model.ContactMessage
	for rows.Next() {
		var msg model.ContactMessage
		if err := rows.Scan(&msg.ID, &msg.Name, &msg.Email, &msg.Message,
			&msg.IPHash, &msg.UserAgent, &msg.CreatedAt); err != nil {
			return nil, fmt.Errorf("scanning contact message: %w", err)
		}
		out = append(out, msg)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("listing contact messages: %w", err)
	}
	return out, nil
}

// Delete removes one message by id.
func (m *Messages) Delete(ctx context.Context, id uuid.UUID) error {
	if m.pool == nil {
		return apperrors.ErrNotConfigured
	}
	const q = `DELETE FROM contact_messages WHERE id = $1`
	if _, err := m.pool.Exec(ctx, q, id); err != nil {
		return fmt.Errorf("deleting contact message %s: %w", id, err)
	}
	return nil
}
