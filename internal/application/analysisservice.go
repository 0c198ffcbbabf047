// Package application contains use-case orchestration services.
package application

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/jonboulle/clockwork"

	"github.com/ericfisherdev/ytsentiment/internal/domain/model"
	"github.com/ericfisherdev/ytsentiment/internal/domain/port/driven"
	"github.com/ericfisherdev/ytsentiment/internal/metrics"
)

// ErrSessionNotFound is returned when a session id does not refer to a live session.
var ErrSessionNotFound = errors.New("session not found")

// AnalyzeRequest describes one pipeline run.
type AnalyzeRequest struct {
	Video       string // Video URL or bare id.
	MaxComments int
	MaxPages    int    // Zero uses the service default.
	Replaces    string // Session discarded after a successful run, if any.
}

// Report is everything the dashboard renders for one session and filter.
type Report struct {
	SessionID        string
	VideoID          string
	Filter           model.FilterSpec
	Aggregate        Aggregate
	Summary          []LabelShare
	KPI              KPI
	Trend            []TrendPoint
	PositiveKeywords []Keyword
	NegativeKeywords []Keyword
	TopNegative      []model.ScoredComment
	Languages        []string
	Diagnostics      Diagnostics
	MinDay           *time.Time
	MaxDay           *time.Time
}

// AnalysisService runs the fetch, tag, aggregate and present pipeline and
// keeps per-session state in a SessionStore.
type AnalysisService struct {
	source   driven.CommentSource
	tagger   *Tagger
	store    driven.SessionStore
	clock    clockwork.Clock
	maxPages int
}

// NewAnalysisService creates a new AnalysisService with all required dependencies.
func NewAnalysisService(
	source driven.CommentSource,
	tagger *Tagger,
	store driven.SessionStore,
	clock clockwork.Clock,
	maxPages int,
) *AnalysisService {
	return &AnalysisService{
		source:   source,
		tagger:   tagger,
		store:    store,
		clock:    clock,
		maxPages: maxPages,
	}
}

// Analyze fetches and tags the comments of one video and stores them in a new
// session. When fetching fails no session is created and req.Replaces is left intact.
func (s *AnalysisService) Analyze(ctx context.Context, req AnalyzeRequest) (*model.Session, error) {
	videoID, err := ParseVideoID(req.Video)
	if err != nil {
		return nil, err
	}

	maxPages := req.MaxPages
	if maxPages <= 0 {
		maxPages = s.maxPages
	}

	start := s.clock.Now()
	comments, err := s.source.FetchComments(ctx, driven.FetchRequest{
		VideoID:     videoID,
		MaxComments: req.MaxComments,
		MaxPages:    maxPages,
	})
	metrics.AnalysisDuration.WithLabelValues("fetch").Observe(s.clock.Since(start).Seconds())
	if err != nil {
		slog.Warn("comment fetch failed",
			"video_id", videoID,
			"partial_comments", len(comments),
			"error", err,
		)
		return nil, fmt.Errorf("fetching comments for %s: %w", videoID, err)
	}

	tagStart := s.clock.Now()
	scored := s.tagger.TagAll(comments)
	metrics.AnalysisDuration.WithLabelValues("tag").Observe(s.clock.Since(tagStart).Seconds())

	now := s.clock.Now()
	session := model.Session{
		ID:         uuid.NewString(),
		VideoID:    videoID,
		Comments:   scored,
		CreatedAt:  now,
		LastSeenAt: now,
	}
	if err := s.store.Create(ctx, session); err != nil {
		return nil, fmt.Errorf("storing session for %s: %w", videoID, err)
	}

	if req.Replaces != "" {
		if err := s.store.Delete(ctx, req.Replaces); err != nil {
			slog.Error("discarding previous session failed", "session_id", req.Replaces, "error", err)
		}
	}
	s.updateSessionGauge(ctx)

	slog.Info("analysis complete",
		"session_id", session.ID,
		"video_id", videoID,
		"fetched", len(comments),
		"tagged", len(scored),
		"duration", s.clock.Since(start).Round(time.Millisecond),
	)

	return &session, nil
}

// Report records filter as the session's active filter and builds the report for it.
func (s *AnalysisService) Report(ctx context.Context, sessionID string, filter model.FilterSpec) (*Report, error) {
	session, err := s.load(ctx, sessionID)
	if err != nil {
		return nil, err
	}

	if err := s.store.SetFilter(ctx, sessionID, filter, s.clock.Now()); err != nil {
		return nil, fmt.Errorf("recording filter for session %s: %w", sessionID, err)
	}
	session.Filter = filter

	return s.buildReport(session), nil
}

// ActiveReport builds the report for the session's currently active filter.
func (s *AnalysisService) ActiveReport(ctx context.Context, sessionID string) (*Report, error) {
	session, err := s.load(ctx, sessionID)
	if err != nil {
		return nil, err
	}

	if err := s.store.Touch(ctx, sessionID, s.clock.Now()); err != nil {
		return nil, fmt.Errorf("touching session %s: %w", sessionID, err)
	}

	return s.buildReport(session), nil
}

// Export writes the session's active filtered subset as CSV and returns the
// number of rows written.
func (s *AnalysisService) Export(ctx context.Context, sessionID string, w io.Writer) (int, error) {
	session, err := s.load(ctx, sessionID)
	if err != nil {
		return 0, err
	}

	if err := s.store.Touch(ctx, sessionID, s.clock.Now()); err != nil {
		return 0, fmt.Errorf("touching session %s: %w", sessionID, err)
	}

	agg := Apply(session.Comments, session.Filter)
	if err := WriteCSV(w, agg.Comments); err != nil {
		return 0, fmt.Errorf("exporting session %s: %w", sessionID, err)
	}
	return len(agg.Comments), nil
}

// Discard ends a session immediately.
func (s *AnalysisService) Discard(ctx context.Context, sessionID string) error {
	if err := s.store.Delete(ctx, sessionID); err != nil {
		return fmt.Errorf("discarding session %s: %w", sessionID, err)
	}
	s.updateSessionGauge(ctx)
	return nil
}

// SessionCount returns the number of live sessions.
func (s *AnalysisService) SessionCount(ctx context.Context) (int, error) {
	return s.store.Count(ctx)
}

func (s *AnalysisService) load(ctx context.Context, sessionID string) (*model.Session, error) {
	if sessionID == "" {
		return nil, ErrSessionNotFound
	}

	session, err := s.store.Get(ctx, sessionID)
	if err != nil {
		return nil, fmt.Errorf("loading session %s: %w", sessionID, err)
	}
	if session == nil {
		return nil, fmt.Errorf("%w: %s", ErrSessionNotFound, sessionID)
	}
	return session, nil
}

func (s *AnalysisService) buildReport(session *model.Session) *Report {
	start := s.clock.Now()
	agg := Apply(session.Comments, session.Filter)

	r := &Report{
		SessionID:        session.ID,
		VideoID:          session.VideoID,
		Filter:           session.Filter,
		Aggregate:        agg,
		Summary:          Summary(agg),
		KPI:              KPIs(agg),
		Trend:            Trend(agg),
		PositiveKeywords: Keywords(agg, model.LabelPositive, MaxKeywords),
		NegativeKeywords: Keywords(agg, model.LabelNegative, MaxKeywords),
		TopNegative:      TopNegative(agg, TopNegativeLimit),
		Languages:        Languages(session.Comments),
		Diagnostics:      Diagnose(session.Comments),
	}
	if minDay, maxDay, ok := DateBounds(session.Comments); ok {
		r.MinDay, r.MaxDay = &minDay, &maxDay
	}

	metrics.AnalysisDuration.WithLabelValues("report").Observe(s.clock.Since(start).Seconds())
	return r
}

func (s *AnalysisService) updateSessionGauge(ctx context.Context) {
	n, err := s.store.Count(ctx)
	if err != nil {
		slog.Warn("counting sessions failed", "error", err)
		return
	}
	metrics.SessionsActive.Set(float64(n))
}

// DescribeFetchError maps a pipeline error to an HTTP status and a message
// suitable for showing to the user.
func DescribeFetchError(err error) (int, string) {
	switch {
	case errors.Is(err, ErrInvalidVideo):
		return http.StatusBadRequest, "Could not find a video id. Paste a YouTube video URL or the 11-character video id."
	case errors.Is(err, driven.ErrCommentsDisabled):
		return http.StatusNotFound, "Comments are disabled for this video."
	case errors.Is(err, driven.ErrNotFound):
		return http.StatusNotFound, "The video was not found. Check the URL or id."
	case errors.Is(err, driven.ErrQuotaExceeded):
		return http.StatusTooManyRequests, "The YouTube API quota is exhausted. Try again later."
	case errors.Is(err, driven.ErrAuth):
		return http.StatusUnauthorized, "The YouTube API rejected the configured key."
	case errors.Is(err, ErrSessionNotFound):
		return http.StatusNotFound, "The analysis session has expired. Run the analysis again."
	case errors.Is(err, context.DeadlineExceeded):
		return http.StatusGatewayTimeout, "Fetching comments timed out."
	}
	return http.StatusBadGateway, "Fetching comments failed: " + err.Error()
}
