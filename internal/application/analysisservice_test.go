package application_test

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"testing"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ericfisherdev/ytsentiment/internal/application"
	"github.com/ericfisherdev/ytsentiment/internal/domain/model"
	"github.com/ericfisherdev/ytsentiment/internal/domain/port/driven"
)

var testStart = time.Date(2024, 3, 10, 12, 0, 0, 0, time.UTC)

func sourceComments() []model.Comment {
	return []model.Comment{
		{ID: "c1", VideoID: "dQw4w9WgXcQ", Author: "alice", Text: "I love this", PublishedAt: day(2024, 3, 1), LikeCount: 5},
		{ID: "c2", VideoID: "dQw4w9WgXcQ", Author: "bob", Text: "I hate this", PublishedAt: day(2024, 3, 2), LikeCount: 9},
		{ID: "c3", VideoID: "dQw4w9WgXcQ", Author: "carol", Text: "first", PublishedAt: day(2024, 3, 3)},
		{ID: "c1", VideoID: "dQw4w9WgXcQ", Author: "alice", Text: "I love this", PublishedAt: day(2024, 3, 1)},
	}
}

type serviceFixture struct {
	svc    *application.AnalysisService
	source *mockSource
	store  *memStore
	clock  *clockwork.FakeClock
}

func newServiceFixture(t *testing.T, comments []model.Comment, fetchErr error) serviceFixture {
	t.Helper()

	source := &mockSource{comments: comments, err: fetchErr}
	store := newMemStore()
	clock := clockwork.NewFakeClockAt(testStart)
	scorer := &keywordScorer{scores: map[string]float64{"love": 0.6, "hate": -0.6}}
	tagger := application.NewTagger(scorer, &fixedDetector{lang: "en"}, model.DefaultThresholds)

	return serviceFixture{
		svc:    application.NewAnalysisService(source, tagger, store, clock, 3),
		source: source,
		store:  store,
		clock:  clock,
	}
}

func TestAnalyze_CreatesSession(t *testing.T) {
	f := newServiceFixture(t, sourceComments(), nil)

	session, err := f.svc.Analyze(context.Background(), application.AnalyzeRequest{
		Video:       "https://youtu.be/dQw4w9WgXcQ",
		MaxComments: 100,
	})

	require.NoError(t, err)
	require.NotNil(t, session)
	assert.NotEmpty(t, session.ID)
	assert.Equal(t, "dQw4w9WgXcQ", session.VideoID)
	assert.Equal(t, testStart, session.CreatedAt)
	assert.True(t, session.Filter.IsEmpty())
	require.Len(t, session.Comments, 3, "duplicate ids are dropped")
	assert.Equal(t, model.LabelPositive, session.Comments[0].Label)
	assert.Equal(t, model.LabelNegative, session.Comments[1].Label)
	assert.Equal(t, model.LabelNeutral, session.Comments[2].Label)

	require.Len(t, f.source.requests, 1)
	assert.Equal(t, driven.FetchRequest{VideoID: "dQw4w9WgXcQ", MaxComments: 100, MaxPages: 3}, f.source.requests[0])

	stored, err := f.store.Get(context.Background(), session.ID)
	require.NoError(t, err)
	require.NotNil(t, stored)
	assert.Len(t, stored.Comments, 3)
}

func TestAnalyze_RequestMaxPagesOverridesDefault(t *testing.T) {
	f := newServiceFixture(t, sourceComments(), nil)

	_, err := f.svc.Analyze(context.Background(), application.AnalyzeRequest{Video: "dQw4w9WgXcQ", MaxComments: 10, MaxPages: 7})

	require.NoError(t, err)
	assert.Equal(t, 7, f.source.requests[0].MaxPages)
}

func TestAnalyze_ZeroMaxComments(t *testing.T) {
	f := newServiceFixture(t, sourceComments(), nil)
	ctx := context.Background()

	session, err := f.svc.Analyze(ctx, application.AnalyzeRequest{Video: "dQw4w9WgXcQ", MaxComments: 0})
	require.NoError(t, err)
	assert.Empty(t, session.Comments)

	report, err := f.svc.ActiveReport(ctx, session.ID)
	require.NoError(t, err)
	assert.Zero(t, report.KPI.Total)
	assert.Zero(t, report.Aggregate.Counts.Total())
	assert.Empty(t, report.Trend)
	assert.Nil(t, report.MinDay)

	var buf bytes.Buffer
	n, err := f.svc.Export(ctx, session.ID, &buf)
	require.NoError(t, err)
	assert.Zero(t, n)
	assert.Equal(t, strings.Join(application.CSVHeader, ",")+"\n", buf.String())
}

func TestAnalyze_InvalidVideoSkipsFetch(t *testing.T) {
	f := newServiceFixture(t, sourceComments(), nil)

	_, err := f.svc.Analyze(context.Background(), application.AnalyzeRequest{Video: "nope", MaxComments: 10})

	assert.ErrorIs(t, err, application.ErrInvalidVideo)
	assert.Empty(t, f.source.requests)
}

func TestAnalyze_FetchErrorKeepsPreviousSession(t *testing.T) {
	f := newServiceFixture(t, sourceComments(), nil)
	ctx := context.Background()

	previous, err := f.svc.Analyze(ctx, application.AnalyzeRequest{Video: "dQw4w9WgXcQ", MaxComments: 10})
	require.NoError(t, err)

	f.source.err = fmt.Errorf("page 2: %w", driven.ErrQuotaExceeded)
	session, err := f.svc.Analyze(ctx, application.AnalyzeRequest{
		Video:       "dQw4w9WgXcQ",
		MaxComments: 10,
		Replaces:    previous.ID,
	})

	assert.Nil(t, session)
	assert.ErrorIs(t, err, driven.ErrQuotaExceeded)

	count, err := f.store.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, count, "partial results must not create a session")

	stored, err := f.store.Get(ctx, previous.ID)
	require.NoError(t, err)
	assert.NotNil(t, stored)
}

func TestAnalyze_ReplacesPreviousSession(t *testing.T) {
	f := newServiceFixture(t, sourceComments(), nil)
	ctx := context.Background()

	first, err := f.svc.Analyze(ctx, application.AnalyzeRequest{Video: "dQw4w9WgXcQ", MaxComments: 10})
	require.NoError(t, err)

	second, err := f.svc.Analyze(ctx, application.AnalyzeRequest{Video: "dQw4w9WgXcQ", MaxComments: 10, Replaces: first.ID})
	require.NoError(t, err)
	assert.NotEqual(t, first.ID, second.ID)

	_, err = f.svc.ActiveReport(ctx, first.ID)
	assert.ErrorIs(t, err, application.ErrSessionNotFound)

	count, err := f.svc.SessionCount(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, count)
}

func TestReport_RecordsActiveFilter(t *testing.T) {
	f := newServiceFixture(t, sourceComments(), nil)
	ctx := context.Background()

	session, err := f.svc.Analyze(ctx, application.AnalyzeRequest{Video: "dQw4w9WgXcQ", MaxComments: 10})
	require.NoError(t, err)

	f.clock.Advance(time.Minute)
	from := day(2024, 3, 2)
	report, err := f.svc.Report(ctx, session.ID, model.FilterSpec{From: &from})
	require.NoError(t, err)

	assert.Equal(t, session.ID, report.SessionID)
	assert.Equal(t, 2, report.KPI.Total)
	assert.Equal(t, []string{"c2", "c3"}, ids(report.Aggregate.Comments))
	assert.Equal(t, []string{"en"}, report.Languages)
	assert.Equal(t, 3, report.Diagnostics.Rows, "diagnostics describe the whole loaded dataset")
	assert.Equal(t, 3, report.Diagnostics.WithPublished)
	require.NotNil(t, report.MinDay)
	assert.Equal(t, day(2024, 3, 1), *report.MinDay, "date bounds span the whole session")
	require.Len(t, report.TopNegative, 1)
	assert.Equal(t, "c2", report.TopNegative[0].ID)
	assert.Equal(t, []application.Keyword{{Term: "hate", Weight: 1}}, report.NegativeKeywords)

	stored, err := f.store.Get(ctx, session.ID)
	require.NoError(t, err)
	assert.Equal(t, from, *stored.Filter.From)
	assert.Equal(t, testStart.Add(time.Minute), stored.LastSeenAt)

	active, err := f.svc.ActiveReport(ctx, session.ID)
	require.NoError(t, err)
	assert.Equal(t, report.KPI, active.KPI)
}

func TestReport_UnknownSession(t *testing.T) {
	f := newServiceFixture(t, nil, nil)
	ctx := context.Background()

	_, err := f.svc.Report(ctx, "missing", model.FilterSpec{})
	assert.ErrorIs(t, err, application.ErrSessionNotFound)

	_, err = f.svc.ActiveReport(ctx, "")
	assert.ErrorIs(t, err, application.ErrSessionNotFound)

	_, err = f.svc.Export(ctx, "missing", &bytes.Buffer{})
	assert.ErrorIs(t, err, application.ErrSessionNotFound)
}

func TestExport_UsesActiveFilter(t *testing.T) {
	f := newServiceFixture(t, sourceComments(), nil)
	ctx := context.Background()

	session, err := f.svc.Analyze(ctx, application.AnalyzeRequest{Video: "dQw4w9WgXcQ", MaxComments: 10})
	require.NoError(t, err)

	to := day(2024, 3, 1)
	_, err = f.svc.Report(ctx, session.ID, model.FilterSpec{To: &to})
	require.NoError(t, err)

	var buf bytes.Buffer
	n, err := f.svc.Export(ctx, session.ID, &buf)
	require.NoError(t, err)
	assert.Equal(t, 1, n)

	rows, err := application.ReadCSV(&buf)
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, "c1", rows[0].ID)
	assert.Equal(t, model.LabelPositive, rows[0].Label)
}

func TestDiscard(t *testing.T) {
	f := newServiceFixture(t, sourceComments(), nil)
	ctx := context.Background()

	session, err := f.svc.Analyze(ctx, application.AnalyzeRequest{Video: "dQw4w9WgXcQ", MaxComments: 10})
	require.NoError(t, err)

	require.NoError(t, f.svc.Discard(ctx, session.ID))
	_, err = f.svc.ActiveReport(ctx, session.ID)
	assert.ErrorIs(t, err, application.ErrSessionNotFound)
}

func TestDescribeFetchError(t *testing.T) {
	tests := []struct {
		name   string
		err    error
		status int
	}{
		{"invalid video", fmt.Errorf("%w: x", application.ErrInvalidVideo), http.StatusBadRequest},
		{"comments disabled", fmt.Errorf("wrap: %w", driven.ErrCommentsDisabled), http.StatusNotFound},
		{"not found", driven.ErrNotFound, http.StatusNotFound},
		{"quota", driven.ErrQuotaExceeded, http.StatusTooManyRequests},
		{"auth", driven.ErrAuth, http.StatusUnauthorized},
		{"session", application.ErrSessionNotFound, http.StatusNotFound},
		{"timeout", context.DeadlineExceeded, http.StatusGatewayTimeout},
		{"other", errors.New("boom"), http.StatusBadGateway},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			status, msg := application.DescribeFetchError(tt.err)
			assert.Equal(t, tt.status, status)
			assert.NotEmpty(t, msg)
		})
	}

	_, msg := application.DescribeFetchError(driven.ErrCommentsDisabled)
	assert.Contains(t, msg, "disabled")
}
