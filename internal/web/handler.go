package web

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/vilaca/gh-lookup/internal/domain"
	"github.com/vilaca/gh-lookup/internal/service"
	"github.com/vilaca/gh-lookup/internal/theme"
)

// DefaultCookieName is the session cookie used when none is configured.
const DefaultCookieName = "gh_lookup_session"

// LookupService runs a lookup and reports its steps to a presenter.
type LookupService interface {
	Lookup(ctx context.Context, raw string, p service.Presenter) domain.LookupResult
}

// ThemePreferences resolves and toggles the theme of a session.
type ThemePreferences interface {
	State(ctx context.Context, session string) *theme.State
	Toggle(ctx context.Context, session string) (theme.Theme, error)
}

// Recorder receives UI events for metrics. Optional.
type Recorder interface {
	RecordThemeToggle()
}

// Handler handles HTTP requests for the lookup page and its JSON API.
type Handler struct {
	renderer       Renderer
	logger         *slog.Logger
	lookupService  LookupService
	preferences    ThemePreferences
	sessions       *Sessions
	recorder       Recorder
	metricsHandler http.Handler
	cookieName     string
	secureCookie   bool
}

// HandlerConfig holds configuration for creating a new Handler.
type HandlerConfig struct {
	Renderer       Renderer
	Logger         *slog.Logger
	LookupService  LookupService
	Preferences    ThemePreferences
	Sessions       *Sessions
	Recorder       Recorder
	MetricsHandler http.Handler // served at /metrics when set
	CookieName     string
	SecureCookie   bool
}

// NewHandler creates a new Handler with injected dependencies.
func NewHandler(cfg HandlerConfig) *Handler {
	h := &Handler{
		renderer:       cfg.Renderer,
		logger:         cfg.Logger,
		lookupService:  cfg.LookupService,
		preferences:    cfg.Preferences,
		sessions:       cfg.Sessions,
		recorder:       cfg.Recorder,
		metricsHandler: cfg.MetricsHandler,
		cookieName:     cfg.CookieName,
		secureCookie:   cfg.SecureCookie,
	}
	if h.logger == nil {
		h.logger = slog.Default()
	}
	if h.preferences == nil {
		h.preferences = theme.NewPreferences(nil, h.logger)
	}
	if h.sessions == nil {
		h.sessions = NewSessions(DefaultIdleTimeout)
	}
	if h.cookieName == "" {
		h.cookieName = DefaultCookieName
	}
	return h
}

// RegisterRoutes registers all HTTP routes.
func (h *Handler) RegisterRoutes(e *echo.Echo) {
	e.GET("/", h.handleIndex)
	e.GET("/api/lookup", h.handleLookup)
	e.GET("/api/theme", h.handleTheme)
	e.POST("/api/theme/toggle", h.handleThemeToggle)
	e.GET("/health", h.handleHealth)
	e.StaticFS("/static", echo.MustSubFS(staticFS, "static"))
	if h.metricsHandler != nil {
		e.GET("/metrics", echo.WrapHandler(h.metricsHandler))
	}
}

// handleIndex serves the page. With ?username= the lookup runs before rendering,
// so a plain form submission (button or Enter) works without the page script.
func (h *Handler) handleIndex(c echo.Context) error {
	ctx := c.Request().Context()
	session := h.session(c)
	username := c.QueryParam("username")

	data := PageData{
		Theme:        h.preferences.State(ctx, session).Get(),
		Username:     strings.TrimSpace(username),
		Profile:      HiddenRegion,
		Repositories: HiddenRegion,
	}

	if c.QueryParams().Has("username") {
		presenter, _ := h.lookup(ctx, session, username)
		if presenter.err != nil {
			return fmt.Errorf("failed to render lookup: %w", presenter.err)
		}
		data.Generation = presenter.generation
		data.Profile = presenter.profile
		data.Repositories = presenter.repositories
	}

	c.Response().Header().Set(echo.HeaderContentType, echo.MIMETextHTMLCharsetUTF8)
	c.Response().WriteHeader(http.StatusOK)
	return h.renderer.RenderPage(c.Response(), data)
}

type regionResponse struct {
	HTML   string `json:"html"`
	Hidden bool   `json:"hidden"`
	State  string `json:"state,omitempty"`
}

type errorResponse struct {
	Kind    domain.ErrorKind `json:"kind"`
	Message string           `json:"message"`
}

type lookupResponse struct {
	Generation   uint64         `json:"generation"`
	Stale        bool           `json:"stale"`
	Profile      regionResponse `json:"profile"`
	Repositories regionResponse `json:"repositories"`
	Error        *errorResponse `json:"error,omitempty"`
}

// handleLookup runs a lookup for the page script and returns both regions.
// Classified failures are reported in the body with status 200.
func (h *Handler) handleLookup(c echo.Context) error {
	ctx := c.Request().Context()
	session := h.session(c)

	presenter, result := h.lookup(ctx, session, c.QueryParam("username"))
	if presenter.err != nil {
		return fmt.Errorf("failed to render lookup: %w", presenter.err)
	}

	resp := lookupResponse{
		Generation: presenter.generation,
		Stale:      presenter.stale(),
		Profile: regionResponse{
			HTML:   string(presenter.profile.HTML),
			Hidden: presenter.profile.Hidden,
		},
		Repositories: regionResponse{
			HTML:   string(presenter.repositories.HTML),
			Hidden: presenter.repositories.Hidden,
			State:  presenter.repoState,
		},
	}
	if result.Err != nil {
		resp.Error = &errorResponse{
			Kind:    result.Err.Kind,
			Message: result.Err.UserMessage(),
		}
	}

	if resp.Stale {
		h.logger.DebugContext(ctx, "discarding stale lookup",
			slog.Uint64("generation", presenter.generation),
			slog.String("username", result.Username),
		)
	}

	return c.JSON(http.StatusOK, resp)
}

func (h *Handler) lookup(ctx context.Context, session, raw string) (*displayPresenter, domain.LookupResult) {
	presenter := newDisplayPresenter(h.sessions.Display(session), h.renderer)
	result := h.lookupService.Lookup(ctx, raw, presenter)
	return presenter, result
}

type themeResponse struct {
	Theme theme.Theme `json:"theme"`
	Label string      `json:"label"`
}

func (h *Handler) handleTheme(c echo.Context) error {
	t := h.preferences.State(c.Request().Context(), h.session(c)).Get()
	return c.JSON(http.StatusOK, themeResponse{Theme: t, Label: themeLabel(t)})
}

// handleThemeToggle flips the session theme. Script requests get JSON;
// a plain form post is redirected back to the page.
func (h *Handler) handleThemeToggle(c echo.Context) error {
	ctx := c.Request().Context()
	t, err := h.preferences.Toggle(ctx, h.session(c))
	if err != nil {
		h.logger.WarnContext(ctx, "theme preference not saved", slog.Any("error", err))
	}
	if h.recorder != nil {
		h.recorder.RecordThemeToggle()
	}

	if strings.Contains(c.Request().Header.Get(echo.HeaderAccept), echo.MIMEApplicationJSON) {
		return c.JSON(http.StatusOK, themeResponse{Theme: t, Label: themeLabel(t)})
	}
	return c.Redirect(http.StatusSeeOther, backTo(c.Request()))
}

// handleHealth serves the health check endpoint.
func (h *Handler) handleHealth(c echo.Context) error {
	return c.JSON(http.StatusOK, map[string]string{"status": "ok"})
}

// session returns the caller's session id, issuing a cookie when missing or malformed.
func (h *Handler) session(c echo.Context) string {
	if cookie, err := c.Cookie(h.cookieName); err == nil && ValidSessionID(cookie.Value) {
		return cookie.Value
	}

	id := NewSessionID()
	c.SetCookie(&http.Cookie{
		Name:     h.cookieName,
		Value:    id,
		Path:     "/",
		HttpOnly: true,
		Secure:   h.secureCookie,
		SameSite: http.SameSiteLaxMode,
		Expires:  time.Now().Add(365 * 24 * time.Hour),
	})
	// Later reads within this request see the new session.
	c.Request().AddCookie(&http.Cookie{Name: h.cookieName, Value: id})
	return id
}

// backTo returns the same-origin page the request came from, or "/".
func backTo(r *http.Request) string {
	ref, err := url.Parse(r.Referer())
	if err != nil || ref.Host != r.Host || ref.Path == "" {
		return "/"
	}
	return ref.RequestURI()
}
