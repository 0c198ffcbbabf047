// Package web implements the HTML GUI driving adapter using templ components.
package web

import (
	"bytes"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gorilla/sessions"

	"github.com/ericfisherdev/ytsentiment/internal/adapter/driving/web/templates"
	"github.com/ericfisherdev/ytsentiment/internal/adapter/driving/web/templates/pages"
	vm "github.com/ericfisherdev/ytsentiment/internal/adapter/driving/web/viewmodel"
	"github.com/ericfisherdev/ytsentiment/internal/application"
	"github.com/ericfisherdev/ytsentiment/internal/logging"
)

const (
	// CookieSessionName is the name of the gorilla session cookie.
	CookieSessionName = "ytsentiment"

	pageTitle = "YouTube Comment Sentiment"

	sessionIDKey = "sid"
	videoKey     = "video"
	flashError   = "error"
	flashInfo    = "info"
)

// Handler is the web GUI driving adapter that serves HTML via templ components.
type Handler struct {
	analysis           *application.AnalysisService
	cookies            sessions.Store
	defaultMaxComments int
	logger             *slog.Logger
}

// NewHandler creates a Handler with all required dependencies.
func NewHandler(
	analysis *application.AnalysisService,
	cookies sessions.Store,
	defaultMaxComments int,
	logger *slog.Logger,
) *Handler {
	return &Handler{
		analysis:           analysis,
		cookies:            cookies,
		defaultMaxComments: defaultMaxComments,
		logger:             logger,
	}
}

// Dashboard renders the main dashboard page with the full HTML layout.
func (h *Handler) Dashboard(w http.ResponseWriter, r *http.Request) {
	cs := h.cookieSession(r)

	d := vm.DashboardViewModel{
		CSRFToken:          csrfToken(w, r),
		DefaultMaxComments: h.defaultMaxComments,
	}
	if v, ok := cs.Values[videoKey].(string); ok {
		d.Video = v
	}
	d.Notices = append(d.Notices, flashNotices(cs, flashError, errorNotice)...)
	d.Notices = append(d.Notices, flashNotices(cs, flashInfo, infoNotice)...)

	if sid := sessionID(cs); sid != "" {
		report, err := h.analysis.ActiveReport(r.Context(), sid)
		switch {
		case errors.Is(err, application.ErrSessionNotFound):
			delete(cs.Values, sessionIDKey)
			d.Notices = append(d.Notices, infoNotice("Your previous analysis has expired. Run it again to continue."))
		case err != nil:
			logging.WithSession(h.logger, sid).Error("failed to build report", "error", err)
			d.Notices = append(d.Notices, errorNotice("The report could not be built. Try again."))
		default:
			d = toDashboardViewModel(d, report, time.Now())
		}
	}
	if !d.HasSession && len(d.Notices) == 0 {
		d.Notices = append(d.Notices, infoNotice(welcomeText))
	}

	// Flashes were consumed; persist before the body is written.
	h.saveCookieSession(w, r, cs)

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	layout := templates.Layout(pageTitle, pages.Dashboard(d))
	if err := layout.Render(r.Context(), w); err != nil {
		h.logger.Error("failed to render dashboard", "error", err)
		http.Error(w, "internal server error", http.StatusInternalServerError)
	}
}

// Analyze runs the pipeline for the submitted video and replaces the browser's
// session on success.
func (h *Handler) Analyze(w http.ResponseWriter, r *http.Request) {
	if !validateCSRF(r) {
		http.Error(w, "invalid CSRF token", http.StatusForbidden)
		return
	}

	cs := h.cookieSession(r)
	video := strings.TrimSpace(r.FormValue("video"))
	cs.Values[videoKey] = video

	maxComments, err := formInt(r, "max_comments", h.defaultMaxComments)
	if err != nil {
		h.redirectWithError(w, r, cs, "**Max comments** must be a whole number of zero or more.")
		return
	}
	maxPages, err := formInt(r, "max_pages", 0)
	if err != nil {
		h.redirectWithError(w, r, cs, "**Max pages** must be a whole number of zero or more.")
		return
	}

	session, err := h.analysis.Analyze(r.Context(), application.AnalyzeRequest{
		Video:       video,
		MaxComments: maxComments,
		MaxPages:    maxPages,
		Replaces:    sessionID(cs),
	})
	if err != nil {
		h.logger.Warn("analysis failed", "video", video, "error", err)
		h.redirectWithError(w, r, cs, fetchErrorMessage(err))
		return
	}

	cs.Values[sessionIDKey] = session.ID
	cs.AddFlash(fmt.Sprintf("Analyzed **%d** comments of video `%s`.", len(session.Comments), session.VideoID), flashInfo)
	h.saveCookieSession(w, r, cs)
	http.Redirect(w, r, "/", http.StatusSeeOther)
}

// Filter replaces the active filter of the browser's session.
func (h *Handler) Filter(w http.ResponseWriter, r *http.Request) {
	if !validateCSRF(r) {
		http.Error(w, "invalid CSRF token", http.StatusForbidden)
		return
	}

	cs := h.cookieSession(r)
	sid := sessionID(cs)
	if sid == "" {
		h.redirectWithError(w, r, cs, "Run an analysis before filtering.")
		return
	}

	filter, err := application.ParseFilter(r.FormValue("language"), r.FormValue("from"), r.FormValue("to"))
	if err != nil {
		h.redirectWithError(w, r, cs, "**Invalid filter.** Dates use the YYYY-MM-DD format and *From* must not be after *To*.")
		return
	}

	if _, err := h.analysis.Report(r.Context(), sid, filter); err != nil {
		if errors.Is(err, application.ErrSessionNotFound) {
			delete(cs.Values, sessionIDKey)
			h.redirectWithError(w, r, cs, "Your previous analysis has expired. Run it again to continue.")
			return
		}
		logging.WithSession(h.logger, sid).Error("failed to apply filter", "error", err)
		h.redirectWithError(w, r, cs, "The filter could not be applied. Try again.")
		return
	}

	http.Redirect(w, r, "/", http.StatusSeeOther)
}

// Reset discards the browser's session.
func (h *Handler) Reset(w http.ResponseWriter, r *http.Request) {
	if !validateCSRF(r) {
		http.Error(w, "invalid CSRF token", http.StatusForbidden)
		return
	}

	cs := h.cookieSession(r)
	if sid := sessionID(cs); sid != "" {
		if err := h.analysis.Discard(r.Context(), sid); err != nil {
			logging.WithSession(h.logger, sid).Error("failed to discard session", "error", err)
		}
	}
	delete(cs.Values, sessionIDKey)
	delete(cs.Values, videoKey)
	h.saveCookieSession(w, r, cs)
	http.Redirect(w, r, "/", http.StatusSeeOther)
}

// Charts renders the chart page embedded by the dashboard.
func (h *Handler) Charts(w http.ResponseWriter, r *http.Request) {
	sid := sessionID(h.cookieSession(r))
	report, err := h.analysis.ActiveReport(r.Context(), sid)
	if err != nil {
		h.writeSessionError(w, sid, err)
		return
	}

	var buf bytes.Buffer
	if err := buildChartPage(report).Render(&buf); err != nil {
		logging.WithSession(h.logger, sid).Error("failed to render charts", "error", err)
		http.Error(w, "internal server error", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	_, _ = w.Write(buf.Bytes())
}

// ExportCSV downloads the filtered comments of the browser's session.
func (h *Handler) ExportCSV(w http.ResponseWriter, r *http.Request) {
	sid := sessionID(h.cookieSession(r))

	var buf bytes.Buffer
	if _, err := h.analysis.Export(r.Context(), sid, &buf); err != nil {
		h.writeSessionError(w, sid, err)
		return
	}

	w.Header().Set("Content-Type", "text/csv; charset=utf-8")
	w.Header().Set("Content-Disposition", `attachment; filename="comments.csv"`)
	_, _ = w.Write(buf.Bytes())
}

// cookieSession returns the browser's cookie session. A cookie that fails to
// decode, for example after the signing key changed, yields a fresh session.
func (h *Handler) cookieSession(r *http.Request) *sessions.Session {
	cs, err := h.cookies.Get(r, CookieSessionName)
	if err != nil {
		h.logger.Debug("discarding undecodable session cookie", "error", err)
	}
	return cs
}

func (h *Handler) saveCookieSession(w http.ResponseWriter, r *http.Request, cs *sessions.Session) {
	if err := cs.Save(r, w); err != nil {
		h.logger.Error("failed to save session cookie", "error", err)
	}
}

func (h *Handler) redirectWithError(w http.ResponseWriter, r *http.Request, cs *sessions.Session, md string) {
	cs.AddFlash(md, flashError)
	h.saveCookieSession(w, r, cs)
	http.Redirect(w, r, "/", http.StatusSeeOther)
}

func (h *Handler) writeSessionError(w http.ResponseWriter, sid string, err error) {
	if errors.Is(err, application.ErrSessionNotFound) {
		http.Error(w, "no active analysis", http.StatusNotFound)
		return
	}
	logging.WithSession(h.logger, sid).Error("session request failed", "error", err)
	http.Error(w, "internal server error", http.StatusInternalServerError)
}

func sessionID(cs *sessions.Session) string {
	sid, _ := cs.Values[sessionIDKey].(string)
	return sid
}

func flashNotices(cs *sessions.Session, key string, notice func(string) vm.NoticeViewModel) []vm.NoticeViewModel {
	var out []vm.NoticeViewModel
	for _, f := range cs.Flashes(key) {
		if md, ok := f.(string); ok {
			out = append(out, notice(md))
		}
	}
	return out
}

// formInt parses a non-negative integer form field, returning def when the
// field is empty.
func formInt(r *http.Request, field string, def int) (int, error) {
	raw := strings.TrimSpace(r.FormValue(field))
	if raw == "" {
		return def, nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		return 0, fmt.Errorf("parsing %s: %w", field, err)
	}
	if n < 0 {
		return 0, fmt.Errorf("%s must not be negative", field)
	}
	return n, nil
}
