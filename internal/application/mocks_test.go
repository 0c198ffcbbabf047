package application_test

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/ericfisherdev/ytsentiment/internal/domain/model"
	"github.com/ericfisherdev/ytsentiment/internal/domain/port/driven"
)

// --- Mock implementations ---

// keywordScorer returns the score of the first configured word found in the text.
type keywordScorer struct {
	scores map[string]float64
	calls  []string
}

func (m *keywordScorer) Compound(text string) float64 {
	m.calls = append(m.calls, text)
	for word, score := range m.scores {
		if strings.Contains(strings.ToLower(text), word) {
			return score
		}
	}
	return 0
}

type fixedDetector struct {
	lang string
}

func (m *fixedDetector) Detect(_ string) string {
	return m.lang
}

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

// memStore is an in-memory SessionStore.
type memStore struct {
	mu       sync.Mutex
	sessions map[string]model.Session
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

func (m *memStore) DeleteIdleSince(_ context.Context, cutoff time.Time) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var n int
	for id, s := range m.sessions {
		if s.IdleSince(cutoff) {
			delete(m.sessions, id)
			n++
		}
	}
	return n, nil
}

func (m *memStore) Count(_ context.Context) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.sessions), nil
}

// --- Fixtures ---

func day(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func scored(id string, label model.Label, score float64, lang string, published time.Time) model.ScoredComment {
	return model.ScoredComment{
		Comment: model.Comment{
			ID:          id,
			VideoID:     "vid",
			Author:      "author-" + id,
			Text:        "text " + id,
			CleanText:   "text " + id,
			PublishedAt: published,
			Language:    lang,
		},
		CompoundScore: score,
		Label:         label,
	}
}

// fixtureComments spans three days, two languages and all three labels.
func fixtureComments() []model.ScoredComment {
	return []model.ScoredComment{
		scored("c1", model.LabelPositive, 0.8, "en", day(2024, 3, 1).Add(10*time.Hour)),
		scored("c2", model.LabelNegative, -0.6, "en", day(2024, 3, 1).Add(23*time.Hour)),
		scored("c3", model.LabelNeutral, 0.0, "es", day(2024, 3, 2).Add(time.Hour)),
		scored("c4", model.LabelPositive, 0.4, "es", day(2024, 3, 3)),
		scored("c5", model.LabelNegative, -0.2, model.UnknownLanguage, time.Time{}),
	}
}
