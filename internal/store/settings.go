// internal/store/settings.go
package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	apperrors "portfolio-backend/internal/errors"
	"portfolio-backend/internal/model"
)

// Setting keys. The underlying table is a generic key -> JSON store; the
// typed accessors below keep the application-facing API strongly typed.
const (
	keyProfileName     = "profile.name"
	keyProfileTitle    = "profile.title"
	keyProfileBio      = "profile.bio"
	keyProfileLocation = "profile.location"
	keyProfileEmail    = "profile.email"
	keyProfileImageURL = "profile.imageUrl"
	keyProfileSkills   = "profile.skills"
	keySocialLinks     = "social.links"
)

// envelope wraps every stored value so that scalars, arrays and objects all
// round-trip through the same jsonb column.
type envelope struct {
	Value json.RawMessage `json:"value"`
}

// Settings is the key/value persistence layer for admin-editable
// configuration.
type Settings struct {
	pool *pgxpool.Pool
}

func NewSettings(pool *pgxpool.Pool) *Settings {
	return &Settings{pool: pool}
}

func (s *Settings) getRaw(ctx context.Context, key string) (json.RawMessage, error) {
	if s.pool == nil {
		return nil, nil
	}
	const q = `SELECT value FROM settings WHERE key = $1`
	var env envelope
	err := s.pool.QueryRow(ctx, q, key).Scan(&env)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("reading setting %s: %w", key, err)
	}
	return env.Value, nil
}

func (s *Settings) setRaw(ctx context.Context, key string, value any) error {
	if s.pool == nil {
		return apperrors.ErrNotConfigured
	}
	raw, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("encoding setting %s: %w", key, err)
	}
	const q = `
		INSERT INTO settings (key, value, updated_at)
		VALUES ($1, $2, now())
		ON CONFLICT (key) DO UPDATE SET value = EXCLUDED.value, updated_at = now()`
	if _, err := s.pool.Exec(ctx, q, key, envelope{Value: raw}); err != nil {
		return fmt.Errorf("writing setting %s: %w", key, err)
	}
	return nil
}

// getString validates the stored shape on read; a missing key or a value of
// the wrong shape reads as "".
func (s *Settings) getString(ctx context.Context, key string) (string, error) {
	raw, err := s.getRaw(ctx, key)
	if err != nil || raw == nil {
		return "", err
	}
	var v string
	if err := json.Unmarshal(raw, &v); err != nil {
		return "", &apperrors.ErrValidation{Field: key, Reason: "stored value is not a string"}
	}
	return v, nil
}

// Profile reads all profile fields. Unset fields are zero values.
func (s *Settings) Profile(ctx context.Context) (model.ProfileSettings, error) {
	var p model.ProfileSettings
	var err error
	if p.Name, err = s.getString(ctx, keyProfileName); err != nil {
		return p, err
	}
	if p.Title, err = s.getString(ctx, keyProfileTitle); err != nil {
		return p, err
	}
	if p.Bio, err = s.getString(ctx, keyProfileBio); err != nil {
		return p, err
	}
	if p.Location, err = s.getString(ctx, keyProfileLocation); err != nil {
		return p, err
	}
	if p.Email, err = s.getString(ctx, keyProfileEmail); err != nil {
		return p, err
	}
	p.ImageURL, err = s.getString(ctx, keyProfileImageURL)
	return p, err
}

// SetProfile writes all profile fields.
func (s *Settings) SetProfile(ctx context.Context, p model.ProfileSettings) error {
	fields := map[string]string{
		keyProfileName:     p.Name,
		keyProfileTitle:    p.Title,
		keyProfileBio:      p.Bio,
		keyProfileLocation: p.Location,
		keyProfileEmail:    p.Email,
		keyProfileImageURL: p.ImageURL,
	}
	for key, value := range fields {
		if err := s.setRaw(ctx, key, value); err != nil {
			return err
		}
	}
	return nil
}

// Skills reads the ordered skills list; a missing or malformed value reads
// as nil.
func (s *Settings) Skills(ctx context.Context) ([]string, error) {
	raw, err := s.getRaw(ctx, keyProfileSkills)
	if err != nil || raw == nil {
		return nil, err
	}
	var v []string
	if err := json.Unmarshal(raw, &v); err != nil {
		return nil, &apperrors.ErrValidation{Field: keyProfileSkills, Reason: "stored value is not a string array"}
	}
	return v, nil
}

func (s *Settings) SetSkills(ctx context.Context, skills []string) error {
	if skills == nil {
		skills = []string{}
	}
	return s.setRaw(ctx, keyProfileSkills, skills)
}

// SocialLinks reads the label -> URL map of social links.
func (s *Settings) SocialLinks(ctx context.Context) (map[string]string, error) {
	raw, err := s.getRaw(ctx, keySocialLinks)
	if err != nil || raw == nil {
		return nil, err
	}
	var v map[string]string
	if err := json.Unmarshal(raw, &v); err != nil {
		return nil, &apperrors.ErrValidation{Field: keySocialLinks, Reason: "stored value is not a string map"}
	}
	return v, nil
}

func (s *Settings) SetSocialLinks(ctx context.Context, links map[string]string) error {
	if links == nil {
		links = map[string]string{}
	}
	return s.setRaw(ctx, keySocialLinks, links)
}
