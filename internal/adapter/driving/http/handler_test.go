package httphandler_test

import (
	"bytes"
	"context"
	"encoding/csv"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	httphandler "github.com/ericfisherdev/ytsentiment/internal/adapter/driving/http"
	"github.com/ericfisherdev/ytsentiment/internal/application"
	"github.com/ericfisherdev/ytsentiment/internal/domain/model"
	"github.com/ericfisherdev/ytsentiment/internal/domain/port/driven"
)

const testVideoID = "dQw4w9WgXcQ"

// --- Mock implementations ---

type mockSource struct {
	comments []model.Comment
	err      error
	requests []driven.FetchRequest
}

func (m *mockSource) FetchComments(_ context.Context, req driven.FetchRequest) ([]model.Comment, error) {
	m.requests = append(m.requests, req)
	out := m.comments
	if req.MaxComments <= 0 {
		out = []model.Comment{}
	} else if len(out) > req.MaxComments {
		out = out[:req.MaxComments]
	}
	return out, m.err
}

// wordScorer scores "love" as positive and "hate" as negative.
type wordScorer struct{}

func (wordScorer) Compound(text string) float64 {
	switch {
	case strings.Contains(text, "love"):
		return 0.7
	case strings.Contains(text, "hate"):
		return -0.7
	}
	return 0
}

type fixedDetector struct{}

func (fixedDetector) Detect(_ string) string { return "en" }

type memStore struct {
	mu       sync.Mutex
	sessions map[string]model.Session
	countErr error
}

func newMemStore() *memStore {
	return &memStore{sessions: make(map[string]model.Session)}
}

func (m *memStore) Create(_ context.Context, s model.Session) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.sessions[s.ID] = s
	return nil
}

func (m *memStore) Get(_ context.Context, id string) (*model.Session, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	s, ok := m.sessions[id]
	if !ok {
		return nil, nil
	}
	return &s, nil
}

func (m *memStore) SetFilter(_ context.Context, id string, f model.FilterSpec, seenAt time.Time) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if s, ok := m.sessions[id]; ok {
		s.Filter = f
		s.LastSeenAt = seenAt
		m.sessions[id] = s
	}
	return nil
}

func (m *memStore) Touch(_ context.Context, id string, seenAt time.Time) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if s, ok := m.sessions[id]; ok {
		s.LastSeenAt = seenAt
		m.sessions[id] = s
	}
	return nil
}

func (m *memStore) Delete(_ context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.sessions, id)
	return nil
}

func (m *memStore) DeleteIdleSince(_ context.Context, _ time.Time) (int, error) {
	return 0, nil
}

func (m *memStore) Count(_ context.Context) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.sessions), m.countErr
}

// --- Helpers ---

func testComments() []model.Comment {
	base := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	return []model.Comment{
		{ID: "a", VideoID: testVideoID, Author: "ann", Text: "I love this song", PublishedAt: base, LikeCount: 3},
		{ID: "b", VideoID: testVideoID, Author: "bob", Text: "I hate the remix", PublishedAt: base.Add(24 * time.Hour), LikeCount: 9},
		{ID: "c", VideoID: testVideoID, Author: "cat", Text: "first", PublishedAt: base.Add(48 * time.Hour)},
	}
}

type fixture struct {
	source *mockSource
	store  *memStore
	mux    http.Handler
	logs   *bytes.Buffer
}

func setupMux(source *mockSource) *fixture {
	store := newMemStore()
	tagger := application.NewTagger(wordScorer{}, fixedDetector{}, model.DefaultThresholds)
	clock := clockwork.NewFakeClockAt(time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC))
	svc := application.NewAnalysisService(source, tagger, store, clock, 0)
	logs := &bytes.Buffer{}
	h := httphandler.NewHandler(svc, 100, slog.New(slog.NewTextHandler(logs, nil)))

	mux := http.NewServeMux()
	httphandler.RegisterAPIRoutes(mux, h)
	return &fixture{source: source, store: store, mux: mux, logs: logs}
}

func decodeJSON(t *testing.T, rec *httptest.ResponseRecorder, v any) {
	t.Helper()
	require.NoError(t, json.NewDecoder(rec.Body).Decode(v))
}

func createSession(t *testing.T, f *fixture) string {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, "/api/v1/analyses",
		strings.NewReader(`{"video":"https://www.youtube.com/watch?v=`+testVideoID+`"}`))
	rec := httptest.NewRecorder()
	f.mux.ServeHTTP(rec, req)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	var resp httphandler.AnalysisResponse
	decodeJSON(t, rec, &resp)
	return resp.SessionID
}

// --- Tests ---

func TestCreateAnalysis(t *testing.T) {
	f := setupMux(&mockSource{comments: testComments()})

	req := httptest.NewRequest(http.MethodPost, "/api/v1/analyses",
		strings.NewReader(`{"video":"`+testVideoID+`","max_comments":2}`))
	rec := httptest.NewRecorder()
	f.mux.ServeHTTP(rec, req)

	require.Equal(t, http.StatusCreated, rec.Code)
	assert.Equal(t, "application/json; charset=utf-8", rec.Header().Get("Content-Type"))

	var resp httphandler.AnalysisResponse
	decodeJSON(t, rec, &resp)
	assert.NotEmpty(t, resp.SessionID)
	assert.Equal(t, testVideoID, resp.VideoID)
	assert.Equal(t, 2, resp.Comments)
	assert.Equal(t, 1, resp.Counts.Positive)
	assert.Equal(t, 1, resp.Counts.Negative)
	assert.Equal(t, 2, resp.Counts.Total)

	require.Len(t, f.source.requests, 1)
	assert.Equal(t, 2, f.source.requests[0].MaxComments)
}

func TestCreateAnalysis_LogsSessionID(t *testing.T) {
	f := setupMux(&mockSource{comments: testComments()})
	id := createSession(t, f)

	out := f.logs.String()
	assert.Contains(t, out, "analysis created")
	assert.Contains(t, out, "session_id="+id)
	assert.Contains(t, out, "video_id="+testVideoID)
}

func TestCreateAnalysis_DefaultLimit(t *testing.T) {
	f := setupMux(&mockSource{comments: testComments()})
	createSession(t, f)

	require.Len(t, f.source.requests, 1)
	assert.Equal(t, 100, f.source.requests[0].MaxComments)
	assert.Equal(t, testVideoID, f.source.requests[0].VideoID)
}

func TestCreateAnalysis_ZeroLimitCreatesEmptySession(t *testing.T) {
	f := setupMux(&mockSource{comments: testComments()})

	req := httptest.NewRequest(http.MethodPost, "/api/v1/analyses",
		strings.NewReader(`{"video":"`+testVideoID+`","max_comments":0}`))
	rec := httptest.NewRecorder()
	f.mux.ServeHTTP(rec, req)

	require.Equal(t, http.StatusCreated, rec.Code)
	var resp httphandler.AnalysisResponse
	decodeJSON(t, rec, &resp)
	assert.Equal(t, 0, resp.Comments)
}

func TestCreateAnalysis_Errors(t *testing.T) {
	tests := []struct {
		name       string
		body       string
		fetchErr   error
		wantStatus int
	}{
		{name: "malformed json", body: `{`, wantStatus: http.StatusBadRequest},
		{name: "negative limit", body: `{"video":"` + testVideoID + `","max_comments":-1}`, wantStatus: http.StatusBadRequest},
		{name: "negative pages", body: `{"video":"` + testVideoID + `","max_pages":-2}`, wantStatus: http.StatusBadRequest},
		{name: "invalid video", body: `{"video":"not a video"}`, wantStatus: http.StatusBadRequest},
		{name: "comments disabled", body: `{"video":"` + testVideoID + `"}`, fetchErr: driven.ErrCommentsDisabled, wantStatus: http.StatusNotFound},
		{name: "quota", body: `{"video":"` + testVideoID + `"}`, fetchErr: driven.ErrQuotaExceeded, wantStatus: http.StatusTooManyRequests},
		{name: "auth", body: `{"video":"` + testVideoID + `"}`, fetchErr: driven.ErrAuth, wantStatus: http.StatusUnauthorized},
		{name: "upstream", body: `{"video":"` + testVideoID + `"}`, fetchErr: errors.New("boom"), wantStatus: http.StatusBadGateway},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := setupMux(&mockSource{comments: testComments(), err: tt.fetchErr})

			req := httptest.NewRequest(http.MethodPost, "/api/v1/analyses", strings.NewReader(tt.body))
			rec := httptest.NewRecorder()
			f.mux.ServeHTTP(rec, req)

			assert.Equal(t, tt.wantStatus, rec.Code)
			var resp map[string]string
			decodeJSON(t, rec, &resp)
			assert.NotEmpty(t, resp["error"])
			assert.Empty(t, f.store.sessions, "failed runs must not create a session")
		})
	}
}

func TestGetReport(t *testing.T) {
	f := setupMux(&mockSource{comments: testComments()})
	id := createSession(t, f)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/sessions/"+id+"/report", nil)
	rec := httptest.NewRecorder()
	f.mux.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)

	var resp httphandler.ReportResponse
	decodeJSON(t, rec, &resp)
	assert.Equal(t, id, resp.SessionID)
	assert.Equal(t, 3, resp.KPI.Total)
	require.Len(t, resp.Summary, 3)
	assert.Equal(t, "Positive", resp.Summary[0].Label)
	assert.Len(t, resp.Trend, 3)
	assert.Equal(t, "2024-05-01", resp.Trend[0].Day)
	assert.Equal(t, []string{"en"}, resp.Languages)
	require.NotNil(t, resp.DateRange)
	assert.Equal(t, "2024-05-01", resp.DateRange.Min)
	assert.Equal(t, "2024-05-03", resp.DateRange.Max)
	require.Len(t, resp.TopNegative, 1)
	assert.Equal(t, "b", resp.TopNegative[0].ID)
	assert.Equal(t, 3, resp.Diagnostics.Rows)
}

func TestGetReport_FilterIsRemembered(t *testing.T) {
	f := setupMux(&mockSource{comments: testComments()})
	id := createSession(t, f)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/sessions/"+id+"/report?from=2024-05-02&to=2024-05-02", nil)
	rec := httptest.NewRecorder()
	f.mux.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	var filtered httphandler.ReportResponse
	decodeJSON(t, rec, &filtered)
	assert.Equal(t, 1, filtered.KPI.Total)
	assert.Equal(t, 3, filtered.Diagnostics.Rows, "diagnostics ignore the filter")
	assert.Equal(t, "2024-05-02", filtered.Filter.From)

	// A later request without parameters keeps the active filter.
	req = httptest.NewRequest(http.MethodGet, "/api/v1/sessions/"+id+"/report", nil)
	rec = httptest.NewRecorder()
	f.mux.ServeHTTP(rec, req)

	var active httphandler.ReportResponse
	decodeJSON(t, rec, &active)
	assert.Equal(t, 1, active.KPI.Total)
}

func TestGetReport_EmptyFilterResultHasEmptyArrays(t *testing.T) {
	f := setupMux(&mockSource{comments: testComments()})
	id := createSession(t, f)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/sessions/"+id+"/report?language=fr", nil)
	rec := httptest.NewRecorder()
	f.mux.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	body := rec.Body.String()
	assert.Contains(t, body, `"trend":[]`)
	assert.Contains(t, body, `"top_negative":[]`)
	assert.NotContains(t, body, "null")
}

func TestGetReport_Errors(t *testing.T) {
	f := setupMux(&mockSource{comments: testComments()})
	id := createSession(t, f)

	tests := []struct {
		name       string
		path       string
		wantStatus int
	}{
		{name: "unknown session", path: "/api/v1/sessions/missing/report", wantStatus: http.StatusNotFound},
		{name: "bad date", path: "/api/v1/sessions/" + id + "/report?from=yesterday", wantStatus: http.StatusBadRequest},
		{name: "inverted range", path: "/api/v1/sessions/" + id + "/report?from=2024-05-03&to=2024-05-01", wantStatus: http.StatusBadRequest},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, tt.path, nil)
			rec := httptest.NewRecorder()
			f.mux.ServeHTTP(rec, req)
			assert.Equal(t, tt.wantStatus, rec.Code)
		})
	}
}

func TestExportCSV(t *testing.T) {
	f := setupMux(&mockSource{comments: testComments()})
	id := createSession(t, f)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/sessions/"+id+"/export.csv", nil)
	rec := httptest.NewRecorder()
	f.mux.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "text/csv; charset=utf-8", rec.Header().Get("Content-Type"))
	assert.Contains(t, rec.Header().Get("Content-Disposition"), "comments_"+id+".csv")

	records, err := csv.NewReader(rec.Body).ReadAll()
	require.NoError(t, err)
	require.Len(t, records, 4)
	assert.Equal(t, application.CSVHeader, records[0])
	assert.Equal(t, "a", records[1][0])
	assert.Equal(t, "Positive", records[1][7])
}

func TestExportCSV_MissingSession(t *testing.T) {
	f := setupMux(&mockSource{})

	req := httptest.NewRequest(http.MethodGet, "/api/v1/sessions/nope/export.csv", nil)
	rec := httptest.NewRecorder()
	f.mux.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, "application/json; charset=utf-8", rec.Header().Get("Content-Type"))
}

func TestDeleteSession(t *testing.T) {
	f := setupMux(&mockSource{comments: testComments()})
	id := createSession(t, f)

	req := httptest.NewRequest(http.MethodDelete, "/api/v1/sessions/"+id, nil)
	rec := httptest.NewRecorder()
	f.mux.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusNoContent, rec.Code)
	assert.Empty(t, f.store.sessions)

	req = httptest.NewRequest(http.MethodGet, "/api/v1/sessions/"+id+"/report", nil)
	rec = httptest.NewRecorder()
	f.mux.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestHealth(t *testing.T) {
	f := setupMux(&mockSource{comments: testComments()})
	createSession(t, f)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/health", nil)
	rec := httptest.NewRecorder()
	f.mux.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	var resp httphandler.HealthResponse
	decodeJSON(t, rec, &resp)
	assert.Equal(t, "ok", resp.Status)
	assert.Equal(t, 1, resp.Sessions)
	_, err := time.Parse(time.RFC3339, resp.Time)
	assert.NoError(t, err)
}

func TestHealth_StoreFailure(t *testing.T) {
	f := setupMux(&mockSource{})
	f.store.countErr = errors.New("db gone")

	req := httptest.NewRequest(http.MethodGet, "/api/v1/health", nil)
	rec := httptest.NewRecorder()
	f.mux.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
}

func TestApplyMiddleware_RecoversPanics(t *testing.T) {
	panicky := http.HandlerFunc(func(http.ResponseWriter, *http.Request) { panic("kaboom") })
	h := httphandler.ApplyMiddleware(panicky, slog.New(slog.NewTextHandler(io.Discard, nil)), nil)

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
}
