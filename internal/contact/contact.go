// internal/contact/contact.go
package contact

import (
	"context"
	"fmt"
	"log/slog"
	"net/mail"
	"net/url"
	"unicode/utf8"

	apperrors "portfolio-backend/internal/errors"
	"portfolio-backend/internal/fingerprint"
	"portfolio-backend/internal/model"
	"portfolio-backend/internal/ratelimit"
)

// Validation bounds for contact submissions.
const (
	minNameLen    = 2
	maxNameLen    = 100
	maxEmailLen   = 200
	minMessageLen = 10
	maxMessageLen = 5000
)

// Limiter is the rate-limit dependency; satisfied by *ratelimit.Limiter.
type Limiter interface {
	Check(ctx context.Context, key string) (ratelimit.Result, error)
}

// MessageStore persists accepted submissions; satisfied by *store.Messages.
type MessageStore interface {
	Create(ctx context.Context, msg *model.ContactMessage) error
}

// Input is one inbound contact form submission.
type Input struct {
	Name    string `json:"name"`
	Email   string `json:"email"`
	Message string `json:"message"`
}

// Service validates and persists contact submissions, gated by a same-origin
// check and a double rate limit (hashed IP and submitted email).
type Service struct {
	messages MessageStore
	limiter  Limiter
	logger   *slog.Logger
}

func NewService(messages MessageStore, limiter Limiter, logger *slog.Logger) *Service {
	return &Service{messages: messages, limiter: limiter, logger: logger}
}

// Submit runs the full intake pipeline. On success the message is persisted
// with the hashed IP, never the raw one.
func (s *Service) Submit(ctx context.Context, in Input, fp fingerprint.Fingerprint) error {
	if err := validate(in); err != nil {
		return err
	}
	if err := checkSameOrigin(fp.Origin, fp.Host); err != nil {
		return err
	}

	byIP, err := s.limiter.Check(ctx, "contact:ip:"+fp.IPHash)
	if err != nil {
		return fmt.Errorf("checking ip rate limit: %w", err)
	}
	byEmail, err := s.limiter.Check(ctx, "contact:email:"+in.Email)
	if err != nil {
		return fmt.Errorf("checking email rate limit: %w", err)
	}
	if !byIP.Allowed || !byEmail.Allowed {
		s.logger.Info("contact submission rate limited", "ipHash", fp.IPHash)
		return apperrors.ErrRateLimited
	}

	msg := model.ContactMessage{
		Name:      in.Name,
		Email:     in.Email,
		Message:   in.Message,
		IPHash:    fp.IPHash,
		UserAgent: fp.UserAgent,
	}
	if err := s.messages.Create(ctx, &msg); err != nil {
		return fmt.Errorf("persisting contact message: %w", err)
	}

	s.logger.Info("contact message received", "id", msg.ID)
	return nil
}

func validate(in Input) error {
	if n := utf8.RuneCountInString(in.Name); n < minNameLen || n > maxNameLen {
		return &apperrors.ErrValidation{Field: "name", Reason: fmt.Sprintf("must be %d-%d characters", minNameLen, maxNameLen)}
	}
	if utf8.RuneCountInString(in.Email) > maxEmailLen {
		return &apperrors.ErrValidation{Field: "email", Reason: fmt.Sprintf("must be at most %d characters", maxEmailLen)}
	}
	if addr, err := mail.ParseAddress(in.Email); err != nil || addr.Address != in.Email {
		return &apperrors.ErrValidation{Field: "email", Reason: "must be a well-formed address"}
	}
	if n := utf8.RuneCountInString(in.Message); n < minMessageLen || n > maxMessageLen {
		return &apperrors.ErrValidation{Field: "message", Reason: fmt.Sprintf("must be %d-%d characters", minMessageLen, maxMessageLen)}
	}
	return nil
}

// checkSameOrigin rejects submissions whose Origin host does not match the
// Host header. Requests without an Origin header pass; not every client
// sends one.
func checkSameOrigin(origin, host string) error {
	if origin == "" || host == "" {
		return nil
	}
	u, err := url.Parse(origin)
	if err != nil || u.Host == "" || u.Host != host {
		return apperrors.ErrRejectedRequest
	}
	return nil
}
