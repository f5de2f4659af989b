// internal/api/handler.go
package api

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"sort"
	"strconv"
	"time"
	"unicode/utf8"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/google/uuid"

	"portfolio-backend/internal/contact"
	apperrors "portfolio-backend/internal/errors"
	"portfolio-backend/internal/fingerprint"
	"portfolio-backend/internal/model"
	"portfolio-backend/internal/syncer"
)

const (
	defaultMessagesLimit = 100
	maxPathLen           = 500
	maxReferrerLen       = 500
)

// ProjectService is the sync core surface the handlers need; satisfied by
// *syncer.Service.
type ProjectService interface {
	Projects(ctx context.Context, opts syncer.ListOptions) ([]model.PublicProject, error)
	Commits(ctx context.Context, repoName string, perPage int) ([]model.CommitItem, error)
	ClearCache(ctx context.Context) (int64, error)
	Refresh(ctx context.Context) error
}

// ContactService is satisfied by *contact.Service.
type ContactService interface {
	Submit(ctx context.Context, in contact.Input, fp fingerprint.Fingerprint) error
}

// SettingsStore is satisfied by *store.Settings.
type SettingsStore interface {
	Profile(ctx context.Context) (model.ProfileSettings, error)
	SetProfile(ctx context.Context, p model.ProfileSettings) error
	Skills(ctx context.Context) ([]string, error)
	SetSkills(ctx context.Context, skills []string) error
	SocialLinks(ctx context.Context) (map[string]string, error)
	SetSocialLinks(ctx context.Context, links map[string]string) error
}

// OverrideStore is satisfied by *store.Overrides.
type OverrideStore interface {
	List(ctx context.Context) ([]model.ProjectOverride, error)
	Upsert(ctx context.Context, ov model.ProjectOverride) error
	Delete(ctx context.Context, repoFullName string) error
	SaveOrder(ctx context.Context, fullNames []string) error
}

// PostStore is satisfied by *store.Posts.
type PostStore interface {
	ListPublished(ctx context.Context) ([]model.BlogPostSummary, error)
	GetPublished(ctx context.Context, slug string) (*model.BlogPost, error)
	ListAll(ctx context.Context) ([]model.BlogPost, error)
	Upsert(ctx context.Context, p model.BlogPost) error
	Delete(ctx context.Context, slug string) error
}

// MessageStore is satisfied by *store.Messages.
type MessageStore interface {
	List(ctx context.Context, limit int) ([]model.ContactMessage, error)
	Delete(ctx context.Context, id uuid.UUID) error
}

// AnalyticsStore is satisfied by *store.Analytics.
type AnalyticsStore interface {
	Record(ctx context.Context, ev *model.AnalyticsEvent) error
	Summary(ctx context.Context) (model.AnalyticsSummary, error)
}

// Deps carries everything the router needs.
type Deps struct {
	Sync      ProjectService
	Contact   ContactService
	Settings  SettingsStore
	Overrides OverrideStore
	Posts     PostStore
	Messages  MessageStore
	Analytics AnalyticsStore

	// FallbackProfile fills public profile fields with no stored value.
	FallbackProfile model.PublicProfile

	AdminUsername string
	AdminPassword string

	Logger *slog.Logger
}

// Handler is the container for API dependencies.
type Handler struct {
	deps Deps
}

// NewRouter creates and configures a new chi router with all API routes.
func NewRouter(deps Deps) http.Handler {
	h := &Handler{deps: deps}

	r := chi.NewRouter()

	// Middleware stack
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(60 * time.Second))

	r.Get("/health", h.healthCheck)

	r.Route("/v1", func(r chi.Router) {
		r.Get("/projects", h.getProjects)
		r.Get("/projects/{repo}/commits", h.getCommits)
		r.Get("/profile", h.getProfile)
		r.Get("/posts", h.getPosts)
		r.Get("/posts/{slug}", h.getPost)
		r.Post("/contact", h.postContact)
		r.Post("/analytics", h.postAnalytics)
	})

	r.Route("/admin", func(r chi.Router) {
		r.Use(middleware.BasicAuth("admin", map[string]string{deps.AdminUsername: deps.AdminPassword}))
		r.Get("/projects", h.adminProjects)
		r.Put("/projects/{owner}/{name}", h.putOverride)
		r.Delete("/projects/{owner}/{name}", h.deleteOverride)
		r.Post("/projects/order", h.postOrder)
		r.Post("/github/resync", h.postResync)
		r.Get("/posts", h.adminPosts)
		r.Put("/posts/{slug}", h.putPost)
		r.Delete("/posts/{slug}", h.deletePost)
		r.Get("/settings/profile", h.getSettingsProfile)
		r.Put("/settings/profile", h.putSettingsProfile)
		r.Get("/settings/skills", h.getSettingsSkills)
		r.Put("/settings/skills", h.putSettingsSkills)
		r.Get("/settings/socials", h.getSettingsSocials)
		r.Put("/settings/socials", h.putSettingsSocials)
		r.Get("/messages", h.getMessages)
		r.Delete("/messages/{id}", h.deleteMessage)
		r.Get("/analytics/summary", h.getAnalyticsSummary)
	})

	return r
}

func (h *Handler) healthCheck(w http.ResponseWriter, r *http.Request) {
	respondWithJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// GET /v1/projects
func (h *Handler) getProjects(w http.ResponseWriter, r *http.Request) {
	projects, err := h.deps.Sync.Projects(r.Context(), syncer.ListOptions{})
	if err != nil {
		h.respondSyncError(w, err)
		return
	}
	respondWithJSON(w, http.StatusOK, projects)
}

// GET /v1/projects/{repo}/commits?per_page=N
func (h *Handler) getCommits(w http.ResponseWriter, r *http.Request) {
	repo := chi.URLParam(r, "repo")

	perPage := 0
	if v := r.URL.Query().Get("per_page"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n <= 0 || n > 100 {
			respondWithError(w, http.StatusBadRequest, "Invalid 'per_page' parameter. Must be an integer between 1 and 100.")
			return
		}
		perPage = n
	}

	commits, err := h.deps.Sync.Commits(r.Context(), repo, perPage)
	if err != nil {
		h.respondSyncError(w, err)
		return
	}
	respondWithJSON(w, http.StatusOK, commits)
}

// GET /v1/profile
func (h *Handler) getProfile(w http.ResponseWriter, r *http.Request) {
	profile, err := h.publicProfile(r.Context())
	if err != nil {
		h.deps.Logger.Error("Failed to compose public profile", "error", err)
		respondWithError(w, http.StatusInternalServerError, "Internal server error")
		return
	}
	respondWithJSON(w, http.StatusOK, struct {
		model.PublicProfile
		SocialLinks []model.SocialLink `json:"socialLinks"`
	}{profile, SortedSocialLinks(profile.Socials)})
}

// GET /v1/posts
func (h *Handler) getPosts(w http.ResponseWriter, r *http.Request) {
	posts, err := h.deps.Posts.ListPublished(r.Context())
	if err != nil {
		h.deps.Logger.Error("Failed to list posts", "error", err)
		respondWithError(w, http.StatusInternalServerError, "Internal server error")
		return
	}
	if posts == nil {
		posts = []model.BlogPostSummary{}
	}
	respondWithJSON(w, http.StatusOK, posts)
}

// GET /v1/posts/{slug}
func (h *Handler) getPost(w http.ResponseWriter, r *http.Request) {
	slug := chi.URLParam(r, "slug")
	post, err := h.deps.Posts.GetPublished(r.Context(), slug)
	if err != nil {
		h.deps.Logger.Error("Failed to read post", "slug", slug, "error", err)
		respondWithError(w, http.StatusInternalServerError, "Internal server error")
		return
	}
	if post == nil {
		respondWithError(w, http.StatusNotFound, "Post not found")
		return
	}
	respondWithJSON(w, http.StatusOK, post)
}

// POST /v1/contact
func (h *Handler) postContact(w http.ResponseWriter, r *http.Request) {
	var in contact.Input
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid JSON body")
		return
	}

	fp := fingerprint.From(r)
	err := h.deps.Contact.Submit(r.Context(), in, fp)
	switch {
	case err == nil:
		respondWithJSON(w, http.StatusCreated, map[string]string{"status": "received"})
	case isValidationError(err):
		respondWithError(w, http.StatusBadRequest, "Invalid form input. Please check your entries.")
	case errors.Is(err, apperrors.ErrRejectedRequest):
		respondWithError(w, http.StatusForbidden, "Request rejected.")
	case errors.Is(err, apperrors.ErrRateLimited):
		respondWithError(w, http.StatusTooManyRequests, "Too many requests. Please try again later.")
	default:
		h.deps.Logger.Error("Failed to submit contact message", "error", err)
		respondWithError(w, http.StatusInternalServerError, "Internal server error")
	}
}

type analyticsInput struct {
	Type     string         `json:"type"`
	Path     string         `json:"path"`
	Referrer *string        `json:"referrer"`
	Meta     map[string]any `json:"meta"`
}

// POST /v1/analytics
func (h *Handler) postAnalytics(w http.ResponseWriter, r *http.Request) {
	var in analyticsInput
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		respondWithJSON(w, http.StatusBadRequest, map[string]bool{"ok": false})
		return
	}
	if !validEventType(in.Type) || in.Path == "" || utf8.RuneCountInString(in.Path) > maxPathLen ||
		(in.Referrer != nil && utf8.RuneCountInString(*in.Referrer) > maxReferrerLen) {
		respondWithJSON(w, http.StatusBadRequest, map[string]bool{"ok": false})
		return
	}

	fp := fingerprint.From(r)
	meta := map[string]any{}
	for k, v := range in.Meta {
		meta[k] = v
	}
	meta["visitorId"] = fp.VisitorID
	meta["ua"] = fp.UserAgent

	ev := model.AnalyticsEvent{Type: in.Type, Path: in.Path, Referrer: in.Referrer, Meta: meta}
	if err := h.deps.Analytics.Record(r.Context(), &ev); err != nil {
		if errors.Is(err, apperrors.ErrNotConfigured) {
			// Analytics is best-effort: an unconfigured store answers
			// ok:false without surfacing a failure to the beacon.
			respondWithJSON(w, http.StatusOK, map[string]bool{"ok": false})
			return
		}
		h.deps.Logger.Error("Failed to record analytics event", "error", err)
		respondWithError(w, http.StatusInternalServerError, "Internal server error")
		return
	}
	respondWithJSON(w, http.StatusOK, map[string]bool{"ok": true})
}

// GET /admin/projects
func (h *Handler) adminProjects(w http.ResponseWriter, r *http.Request) {
	overrides, err := h.deps.Overrides.List(r.Context())
	if err != nil {
		// Same degrade policy as the public path: overrides are optional.
		h.deps.Logger.Warn("override load failed; serving unpersonalized content", "error", err)
		overrides = []model.ProjectOverride{}
	}
	projects, err := h.deps.Sync.Projects(r.Context(), syncer.ListOptions{
		IncludeHidden:   true,
		IncludeForks:    true,
		IncludeArchived: true,
		Overrides:       overrides,
	})
	if err != nil {
		h.respondSyncError(w, err)
		return
	}
	respondWithJSON(w, http.StatusOK, projects)
}

type overrideInput struct {
	Visible       *bool    `json:"visible"`
	Featured      bool     `json:"featured"`
	DemoURL       *string  `json:"demoUrl"`
	CustomTitle   *string  `json:"customTitle"`
	CustomSummary *string  `json:"customSummary"`
	Tags          []string `json:"tags"`
	SortOrder     *int     `json:"sortOrder"`
}

// PUT /admin/projects/{owner}/{name}
func (h *Handler) putOverride(w http.ResponseWriter, r *http.Request) {
	var in overrideInput
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid JSON body")
		return
	}

	visible := true
	if in.Visible != nil {
		visible = *in.Visible
	}
	ov := model.ProjectOverride{
		RepoFullName:  chi.URLParam(r, "owner") + "/" + chi.URLParam(r, "name"),
		Visible:       visible,
		Featured:      in.Featured,
		DemoURL:       in.DemoURL,
		CustomTitle:   in.CustomTitle,
		CustomSummary: in.CustomSummary,
		Tags:          in.Tags,
		SortOrder:     in.SortOrder,
	}

	if err := h.deps.Overrides.Upsert(r.Context(), ov); err != nil {
		if isValidationError(err) {
			respondWithError(w, http.StatusBadRequest, err.Error())
			return
		}
		h.deps.Logger.Error("Failed to upsert override", "repo", ov.RepoFullName, "error", err)
		respondWithError(w, http.StatusInternalServerError, "Internal server error")
		return
	}
	respondWithJSON(w, http.StatusOK, map[string]string{"status": "saved"})
}

// DELETE /admin/projects/{owner}/{name}
func (h *Handler) deleteOverride(w http.ResponseWriter, r *http.Request) {
	fullName := chi.URLParam(r, "owner") + "/" + chi.URLParam(r, "name")
	if err := h.deps.Overrides.Delete(r.Context(), fullName); err != nil {
		h.deps.Logger.Error("Failed to delete override", "repo", fullName, "error", err)
		respondWithError(w, http.StatusInternalServerError, "Internal server error")
		return
	}
	respondWithJSON(w, http.StatusOK, map[string]string{"status": "reset"})
}

type orderInput struct {
	Order []string `json:"order"`
}

// POST /admin/projects/order
func (h *Handler) postOrder(w http.ResponseWriter, r *http.Request) {
	var in orderInput
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil || len(in.Order) == 0 {
		respondWithError(w, http.StatusBadRequest, "Body must contain a non-empty 'order' array of repo full names")
		return
	}
	if err := h.deps.Overrides.SaveOrder(r.Context(), in.Order); err != nil {
		if isValidationError(err) {
			respondWithError(w, http.StatusBadRequest, err.Error())
			return
		}
		h.deps.Logger.Error("Failed to save project order", "error", err)
		respondWithError(w, http.StatusInternalServerError, "Internal server error")
		return
	}
	respondWithJSON(w, http.StatusOK, map[string]string{"status": "saved"})
}

// POST /admin/github/resync
func (h *Handler) postResync(w http.ResponseWriter, r *http.Request) {
	cleared, err := h.deps.Sync.ClearCache(r.Context())
	if err != nil {
		h.deps.Logger.Error("Failed to clear github cache", "error", err)
		respondWithError(w, http.StatusInternalServerError, "Internal server error")
		return
	}
	if err := h.deps.Sync.Refresh(r.Context()); err != nil {
		h.respondSyncError(w, err)
		return
	}
	respondWithJSON(w, http.StatusOK, map[string]int64{"cleared": cleared})
}

// GET /admin/posts
func (h *Handler) adminPosts(w http.ResponseWriter, r *http.Request) {
	posts, err := h.deps.Posts.ListAll(r.Context())
	if err != nil {
		h.deps.Logger.Error("Failed to list posts", "error", err)
		respondWithError(w, http.StatusInternalServerError, "Internal server error")
		return
	}
	if posts == nil {
		posts = []model.BlogPost{}
	}
	respondWithJSON(w, http.StatusOK, posts)
}

type postInput struct {
	Title     string   `json:"title"`
	Summary   *string  `json:"summary"`
	Content   string   `json:"content"`
	Tags      []string `json:"tags"`
	Published bool     `json:"published"`
}

// PUT /admin/posts/{slug}
func (h *Handler) putPost(w http.ResponseWriter, r *http.Request) {
	var in postInput
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid JSON body")
		return
	}

	post := model.BlogPost{
		Slug:      chi.URLParam(r, "slug"),
		Title:     in.Title,
		Summary:   in.Summary,
		Content:   in.Content,
		Tags:      in.Tags,
		Published: in.Published,
	}
	if err := h.deps.Posts.Upsert(r.Context(), post); err != nil {
		if isValidationError(err) {
			respondWithError(w, http.StatusBadRequest, err.Error())
			return
		}
		h.deps.Logger.Error("Failed to upsert post", "slug", post.Slug, "error", err)
		respondWithError(w, http.StatusInternalServerError, "Internal server error")
		return
	}
	respondWithJSON(w, http.StatusOK, map[string]string{"status": "saved"})
}

// DELETE /admin/posts/{slug}
func (h *Handler) deletePost(w http.ResponseWriter, r *http.Request) {
	slug := chi.URLParam(r, "slug")
	if err := h.deps.Posts.Delete(r.Context(), slug); err != nil {
		h.deps.Logger.Error("Failed to delete post", "slug", slug, "error", err)
		respondWithError(w, http.StatusInternalServerError, "Internal server error")
		return
	}
	respondWithJSON(w, http.StatusOK, map[string]string{"status": "deleted"})
}

// GET /admin/settings/profile
func (h *Handler) getSettingsProfile(w http.ResponseWriter, r *http.Request) {
	p, err := h.deps.Settings.Profile(r.Context())
	if err != nil {
		h.deps.Logger.Error("Failed to read profile settings", "error", err)
		respondWithError(w, http.StatusInternalServerError, "Internal server error")
		return
	}
	respondWithJSON(w, http.StatusOK, p)
}

// PUT /admin/settings/profile
func (h *Handler) putSettingsProfile(w http.ResponseWriter, r *http.Request) {
	var p model.ProfileSettings
	if err := json.NewDecoder(r.Body).Decode(&p); err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid JSON body")
		return
	}
	if err := h.deps.Settings.SetProfile(r.Context(), p); err != nil {
		h.respondSettingsError(w, err)
		return
	}
	respondWithJSON(w, http.StatusOK, map[string]string{"status": "saved"})
}

// GET /admin/settings/skills
func (h *Handler) getSettingsSkills(w http.ResponseWriter, r *http.Request) {
	skills, err := h.deps.Settings.Skills(r.Context())
	if err != nil {
		h.deps.Logger.Error("Failed to read skills", "error", err)
		respondWithError(w, http.StatusInternalServerError, "Internal server error")
		return
	}
	if skills == nil {
		skills = []string{}
	}
	respondWithJSON(w, http.StatusOK, skills)
}

// PUT /admin/settings/skills
func (h *Handler) putSettingsSkills(w http.ResponseWriter, r *http.Request) {
	var skills []string
	if err := json.NewDecoder(r.Body).Decode(&skills); err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid JSON body")
		return
	}
	if err := h.deps.Settings.SetSkills(r.Context(), skills); err != nil {
		h.respondSettingsError(w, err)
		return
	}
	respondWithJSON(w, http.StatusOK, map[string]string{"status": "saved"})
}

// GET /admin/settings/socials
func (h *Handler) getSettingsSocials(w http.ResponseWriter, r *http.Request) {
	links, err := h.deps.Settings.SocialLinks(r.Context())
	if err != nil {
		h.deps.Logger.Error("Failed to read social links", "error", err)
		respondWithError(w, http.StatusInternalServerError, "Internal server error")
		return
	}
	if links == nil {
		links = map[string]string{}
	}
	respondWithJSON(w, http.StatusOK, links)
}

// PUT /admin/settings/socials
func (h *Handler) putSettingsSocials(w http.ResponseWriter, r *http.Request) {
	var links map[string]string
	if err := json.NewDecoder(r.Body).Decode(&links); err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid JSON body")
		return
	}
	if err := h.deps.Settings.SetSocialLinks(r.Context(), links); err != nil {
		h.respondSettingsError(w, err)
		return
	}
	respondWithJSON(w, http.StatusOK, map[string]string{"status": "saved"})
}

// GET /admin/messages?limit=N
func (h *Handler) getMessages(w http.ResponseWriter, r *http.Request) {
	limit := defaultMessagesLimit
	if v := r.URL.Query().Get("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n <= 0 || n > 1000 {
			respondWithError(w, http.StatusBadRequest, "Invalid 'limit' parameter. Must be an integer between 1 and 1000.")
			return
		}
		limit = n
	}

	messages, err := h.deps.Messages.List(r.Context(), limit)
	if err != nil {
		h.deps.Logger.Error("Failed to list messages", "error", err)
		respondWithError(w, http.StatusInternalServerError, "Internal server error")
		return
	}
	if messages == nil {
		messages = []model.ContactMessage{}
	}
	respondWithJSON(w, http.StatusOK, messages)
}

// DELETE /admin/messages/{id}
func (h *Handler) deleteMessage(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid message id")
		return
	}
	if err := h.deps.Messages.Delete(r.Context(), id); err != nil {
		h.deps.Logger.Error("Failed to delete message", "id", id, "error", err)
		respondWithError(w, http.StatusInternalServerError, "Internal server error")
		return
	}
	respondWithJSON(w, http.StatusOK, map[string]string{"status": "deleted"})
}

// GET /admin/analytics/summary
func (h *Handler) getAnalyticsSummary(w http.ResponseWriter, r *http.Request) {
	summary, err := h.deps.Analytics.Summary(r.Context())
	if err != nil {
		h.deps.Logger.Error("Failed to summarize analytics", "error", err)
		respondWithError(w, http.StatusInternalServerError, "Internal server error")
		return
	}
	respondWithJSON(w, http.StatusOK, summary)
}

// publicProfile composes stored settings with configured fallbacks.
func (h *Handler) publicProfile(ctx context.Context) (model.PublicProfile, error) {
	fb := h.deps.FallbackProfile

	stored, err := h.deps.Settings.Profile(ctx)
	if err != nil {
		return model.PublicProfile{}, err
	}
	skills, err := h.deps.Settings.Skills(ctx)
	if err != nil {
		return model.PublicProfile{}, err
	}
	socials, err := h.deps.Settings.SocialLinks(ctx)
	if err != nil {
		return model.PublicProfile{}, err
	}

	p := model.PublicProfile{
		Name:     firstNonEmpty(stored.Name, fb.Name),
		Title:    firstNonEmpty(stored.Title, fb.Title),
		Bio:      firstNonEmpty(stored.Bio, fb.Bio),
		Location: firstNonEmpty(stored.Location, fb.Location),
		Email:    firstNonEmpty(stored.Email, fb.Email),
		ImageURL: stored.ImageURL,
		Skills:   skills,
		Socials:  socials,
	}
	if len(p.Skills) == 0 {
		p.Skills = []string{}
	}
	if len(p.Socials) == 0 {
		p.Socials = fb.Socials
	}
	if p.Socials == nil {
		p.Socials = map[string]string{}
	}
	return p, nil
}

// SortedSocialLinks flattens a socials map into a stable list with the
// common networks first.
func SortedSocialLinks(socials map[string]string) []model.SocialLink {
	order := map[string]int{"GitHub": 0, "LinkedIn": 1, "X": 2}
	out := make([]model.SocialLink, 0, len(socials))
	for label, href := range socials {
		if href != "" {
			out = append(out, model.SocialLink{Label: label, Href: href})
		}
	}
	sort.Slice(out, func(i, j int) bool {
		ai, aok := order[out[i].Label]
		bi, bok := order[out[j].Label]
		switch {
		case aok && bok:
			return ai < bi
		case aok:
			return true
		case bok:
			return false
		}
		return out[i].Label < out[j].Label
	})
	return out
}

func (h *Handler) respondSyncError(w http.ResponseWriter, err error) {
	var timeout *apperrors.ErrNetworkTimeout
	var upstream *apperrors.ErrUpstream
	switch {
	case errors.As(err, &timeout):
		h.deps.Logger.Error("Upstream request timed out", "error", err)
		respondWithError(w, http.StatusGatewayTimeout, "Upstream timed out")
	case errors.As(err, &upstream):
		h.deps.Logger.Error("Upstream request failed", "status", upstream.StatusCode, "error", err)
		respondWithError(w, http.StatusBadGateway, "Upstream request failed")
	default:
		h.deps.Logger.Error("Sync operation failed", "error", err)
		respondWithError(w, http.StatusInternalServerError, "Internal server error")
	}
}

func (h *Handler) respondSettingsError(w http.ResponseWriter, err error) {
	if errors.Is(err, apperrors.ErrNotConfigured) {
		respondWithError(w, http.StatusServiceUnavailable, "Database not configured")
		return
	}
	h.deps.Logger.Error("Failed to write settings", "error", err)
	respondWithError(w, http.StatusInternalServerError, "Internal server error")
}

func isValidationError(err error) bool {
	var ve *apperrors.ErrValidation
	return errors.As(err, &ve)
}

func validEventType(t string) bool {
	switch t {
	case model.EventPageView, model.EventClick, model.EventProjectInterest:
		return true
	}
	return false
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
