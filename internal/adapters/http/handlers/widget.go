package handlers

import (
	"embed"
	"errors"
	"html/template"
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/jsamuelsen/quote-generator/internal/adapters/http/dto"
	"github.com/jsamuelsen/quote-generator/internal/app"
	"github.com/jsamuelsen/quote-generator/internal/domain"
	"github.com/jsamuelsen/quote-generator/internal/platform/logging"
)

//go:embed templates/*.tmpl
var templateFS embed.FS

const (
	pageTemplate  = "widget.html.tmpl"
	errorTemplate = "error.html.tmpl"

	// pageRefreshSeconds is how often the page polls while a quote loads.
	pageRefreshSeconds = 1
)

var (
	errSessionNotFound = domain.NewNotFoundError("widget session", "")
	errQuoteLoading    = domain.NewConflictError("widget", "a quote is already loading")
)

// Templates parses the embedded page templates.
func Templates() (*template.Template, error) {
	return template.ParseFS(templateFS, "templates/*.tmpl")
}

// WidgetHandlerConfig configures a WidgetHandler.
type WidgetHandlerConfig struct {
	Registry *app.WidgetRegistry

	// CookieName names the session cookie.
	CookieName string

	// Title is the page heading.
	Title string

	// SessionTTL sets the cookie Max-Age.
	SessionTTL time.Duration

	// SecureCookie marks the cookie Secure.
	SecureCookie bool
}

// WidgetHandler serves the quote widget as an HTML page and as JSON. Each
// browser owns one widget session, keyed by a cookie.
type WidgetHandler struct {
	cfg       WidgetHandlerConfig
	templates *template.Template
}

// NewWidgetHandler creates a widget handler.
func NewWidgetHandler(cfg WidgetHandlerConfig) (*WidgetHandler, error) {
	if cfg.Registry == nil {
		return nil, errors.New("widget registry is required")
	}

	if cfg.CookieName == "" {
		return nil, errors.New("cookie name is required")
	}

	tmpl, err := Templates()
	if err != nil {
		return nil, err
	}

	return &WidgetHandler{cfg: cfg, templates: tmpl}, nil
}

type pageData struct {
	Title          string
	View           app.View
	RefreshSeconds int
}

type errorPageData struct {
	Title   string
	Message string
	TraceID string
}

// Page handles GET /. It mounts a widget for new or expired sessions.
func (h *WidgetHandler) Page(c *gin.Context) {
	_, widget, err := h.session(c, true)
	if err != nil {
		h.renderError(c, err)
		return
	}

	c.Header("Cache-Control", "no-store")
	c.HTML(http.StatusOK, pageTemplate, pageData{
		Title:          h.cfg.Title,
		View:           widget.View(),
		RefreshSeconds: pageRefreshSeconds,
	})
}

// NextQuoteForm handles POST /quote, the button's form action. It always
// redirects back to the page; a click while loading is dropped.
func (h *WidgetHandler) NextQuoteForm(c *gin.Context) {
	_, widget, err := h.session(c, true)
	if err != nil {
		h.renderError(c, err)
		return
	}

	widget.NewQuote()

	c.Redirect(http.StatusSeeOther, "/")
}

// Get handles GET /api/v1/widget.
func (h *WidgetHandler) Get(c *gin.Context) {
	id, widget, err := h.session(c, true)
	if err != nil {
		dto.HandleError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.NewWidgetResponse(id, widget.View()))
}

// Next handles POST /api/v1/widget/next. It answers 202 once a reselect is
// scheduled and 409 while a quote is loading.
func (h *WidgetHandler) Next(c *gin.Context) {
	id, widget, err := h.session(c, false)
	if err != nil {
		dto.HandleError(c, err)
		return
	}

	if !widget.NewQuote() {
		dto.HandleError(c, errQuoteLoading)
		return
	}

	c.JSON(http.StatusAccepted, dto.NewWidgetResponse(id, widget.View()))
}

// Delete handles DELETE /api/v1/widget. It unmounts the session and clears
// the cookie; deleting an absent session is not an error.
func (h *WidgetHandler) Delete(c *gin.Context) {
	if id, err := c.Cookie(h.cfg.CookieName); err == nil && id != "" {
		if h.cfg.Registry.Remove(id) {
			logging.FromContext(c.Request.Context()).Debug("widget session removed",
				slog.String("session_id", id),
			)
		}
	}

	h.setCookie(c, "", -1)
	c.Status(http.StatusNoContent)
}

// RegisterPageRoutes installs the templates on engine and registers the
// HTML routes on rg.
func (h *WidgetHandler) RegisterPageRoutes(engine *gin.Engine, rg *gin.RouterGroup) {
	engine.SetHTMLTemplate(h.templates)
	rg.GET("/", h.Page)
	rg.POST("/quote", h.NextQuoteForm)
}

// RegisterAPIRoutes registers the JSON routes under rg.
func (h *WidgetHandler) RegisterAPIRoutes(rg *gin.RouterGroup) {
	widget := rg.Group("/widget")
	widget.GET("", h.Get)
	widget.POST("/next", h.Next)
	widget.DELETE("", h.Delete)
}

// session resolves the caller's widget from the cookie. With create set, a
// missing or unknown session is replaced by a freshly mounted one. The cookie
// is reissued on every hit so its lifetime slides with the registry's TTL.
func (h *WidgetHandler) session(c *gin.Context, create bool) (string, *app.Widget, error) {
	if id, err := c.Cookie(h.cfg.CookieName); err == nil && id != "" {
		if widget, ok := h.cfg.Registry.Get(id); ok {
			h.attachSession(c, id)
			h.setCookie(c, id, int(h.cfg.SessionTTL/time.Second))

			return id, widget, nil
		}
	}

	if !create {
		return "", nil, errSessionNotFound
	}

	id, widget, err := h.cfg.Registry.Create(c.Request.Context())
	if err != nil {
		return "", nil, err
	}

	h.attachSession(c, id)
	h.setCookie(c, id, int(h.cfg.SessionTTL/time.Second))

	return id, widget, nil
}

func (h *WidgetHandler) attachSession(c *gin.Context, id string) {
	c.Request = c.Request.WithContext(logging.WithSessionID(c.Request.Context(), id))
}

func (h *WidgetHandler) setCookie(c *gin.Context, value string, maxAge int) {
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(h.cfg.CookieName, value, maxAge, "/", "", h.cfg.SecureCookie, true)
}

func (h *WidgetHandler) renderError(c *gin.Context, err error) {
	status, resp := dto.MapDomainError(err)
	traceID := dto.GetTraceID(c)

	if status == http.StatusInternalServerError {
		logging.FromContext(c.Request.Context()).Error("internal error",
			slog.String("error", err.Error()),
			slog.String("trace_id", traceID),
		)
	}

	c.HTML(status, errorTemplate, errorPageData{
		Title:   h.cfg.Title,
		Message: resp.Error.Message,
		TraceID: traceID,
	})
}
