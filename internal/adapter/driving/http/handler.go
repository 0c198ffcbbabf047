// Package httphandler is the JSON API driving adapter.
package httphandler

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/ericfisherdev/ytsentiment/internal/application"
	"github.com/ericfisherdev/ytsentiment/internal/logging"
)

// maxRequestBody bounds the create analysis request body.
const maxRequestBody = 1 << 16

// Handler is the HTTP driving adapter that serves the REST API.
type Handler struct {
	analysis           *application.AnalysisService
	defaultMaxComments int
	logger             *slog.Logger
}

// NewHandler creates a Handler with all required dependencies.
func NewHandler(
	analysis *application.AnalysisService,
	defaultMaxComments int,
	logger *slog.Logger,
) *Handler {
	return &Handler{
		analysis:           analysis,
		defaultMaxComments: defaultMaxComments,
		logger:             logger,
	}
}

// RegisterAPIRoutes registers all JSON API routes on the provided mux.
func RegisterAPIRoutes(mux *http.ServeMux, h *Handler) {
	mux.HandleFunc("POST /api/v1/analyses", h.CreateAnalysis)
	mux.HandleFunc("GET /api/v1/sessions/{id}/report", h.GetReport)
	mux.HandleFunc("GET /api/v1/sessions/{id}/export.csv", h.ExportCSV)
	mux.HandleFunc("DELETE /api/v1/sessions/{id}", h.DeleteSession)
	mux.HandleFunc("GET /api/v1/health", h.Health)
}

// CreateAnalysis fetches, tags and stores the comments of one video.
func (h *Handler) CreateAnalysis(w http.ResponseWriter, r *http.Request) {
	var req AnalyzeRequest
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxRequestBody)).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}

	maxComments := h.defaultMaxComments
	if req.MaxComments != nil {
		maxComments = *req.MaxComments
	}
	if maxComments < 0 || req.MaxPages < 0 {
		writeError(w, http.StatusBadRequest, "max_comments and max_pages must not be negative")
		return
	}

	session, err := h.analysis.Analyze(r.Context(), application.AnalyzeRequest{
		Video:       req.Video,
		MaxComments: maxComments,
		MaxPages:    req.MaxPages,
	})
	if err != nil {
		status, msg := application.DescribeFetchError(err)
		h.logger.Warn("analysis failed", "video", req.Video, "status", status, "error", err)
		writeError(w, status, msg)
		return
	}

	logging.WithSession(h.logger, session.ID).Info("analysis created",
		"video_id", session.VideoID,
		"comments", len(session.Comments),
	)
	writeJSON(w, http.StatusCreated, toAnalysisResponse(session))
}

// GetReport returns the aggregated report of a session. When any of the
// language, from or to query parameters is present the filter is replaced;
// otherwise the session's active filter is used.
func (h *Handler) GetReport(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	q := r.URL.Query()

	var (
		report *application.Report
		err    error
	)
	if q.Has("language") || q.Has("from") || q.Has("to") {
		filter, ferr := application.ParseFilter(q.Get("language"), q.Get("from"), q.Get("to"))
		if ferr != nil {
			writeError(w, http.StatusBadRequest, ferr.Error())
			return
		}
		report, err = h.analysis.Report(r.Context(), id, filter)
	} else {
		report, err = h.analysis.ActiveReport(r.Context(), id)
	}

	if err != nil {
		h.writeSessionError(w, id, err)
		return
	}

	writeJSON(w, http.StatusOK, toReportResponse(report))
}

// ExportCSV downloads the session's active filtered subset as CSV.
func (h *Handler) ExportCSV(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")

	var buf bytes.Buffer
	if _, err := h.analysis.Export(r.Context(), id, &buf); err != nil {
		h.writeSessionError(w, id, err)
		return
	}

	w.Header().Set("Content-Type", "text/csv; charset=utf-8")
	w.Header().Set("Content-Disposition", fmt.Sprintf(`attachment; filename="comments_%s.csv"`, id))
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(buf.Bytes())
}

// DeleteSession ends a session immediately.
func (h *Handler) DeleteSession(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")

	if err := h.analysis.Discard(r.Context(), id); err != nil {
		logging.WithSession(h.logger, id).Error("failed to discard session", "error", err)
		writeError(w, http.StatusInternalServerError, "internal server error")
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// Health reports liveness and the number of live sessions.
func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	n, err := h.analysis.SessionCount(r.Context())
	if err != nil {
		h.logger.Error("health check failed", "error", err)
		writeError(w, http.StatusServiceUnavailable, "session store unavailable")
		return
	}

	writeJSON(w, http.StatusOK, HealthResponse{
		Status:   "ok",
		Time:     time.Now().UTC().Format(time.RFC3339),
		Sessions: n,
	})
}

func (h *Handler) writeSessionError(w http.ResponseWriter, id string, err error) {
	if errors.Is(err, application.ErrSessionNotFound) {
		writeError(w, http.StatusNotFound, "session not found")
		return
	}
	logging.WithSession(h.logger, id).Error("session request failed", "error", err)
	writeError(w, http.StatusInternalServerError, "internal server error")
}
