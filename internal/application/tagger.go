package application

import (
	"html"
	"regexp"
	"strings"

	"github.com/ericfisherdev/ytsentiment/internal/domain/model"
	"github.com/ericfisherdev/ytsentiment/internal/domain/port/driven"
	"github.com/ericfisherdev/ytsentiment/internal/metrics"
)

var urlRE = regexp.MustCompile(`(?i)(?:https?://|www\.)\S+`)

// CleanText decodes HTML entities, removes URLs, and collapses whitespace.
// Comments are fetched as plain text, so angle brackets are ordinary
// characters and are kept.
func CleanText(raw string) string {
	if raw == "" {
		return ""
	}
	s := html.UnescapeString(raw)
	s = urlRE.ReplaceAllString(s, " ")
	return strings.Join(strings.Fields(s), " ")
}

// Tagger attaches a language, a compound score and a label to comments.
type Tagger struct {
	scorer     driven.SentimentScorer
	detector   driven.LanguageDetector
	thresholds model.Thresholds
}

// NewTagger creates a Tagger. Thresholds are assumed to be validated.
func NewTagger(scorer driven.SentimentScorer, detector driven.LanguageDetector, thresholds model.Thresholds) *Tagger {
	return &Tagger{
		scorer:     scorer,
		detector:   detector,
		thresholds: thresholds,
	}
}

// Thresholds returns the cut-offs used for labelling.
func (t *Tagger) Thresholds() model.Thresholds {
	return t.thresholds
}

// Tag scores a single comment. Comments whose cleaned text is empty score 0,
// are Neutral, and have an unknown language. A language already set on c is kept.
func (t *Tagger) Tag(c model.Comment) model.ScoredComment {
	c.CleanText = CleanText(c.Text)
	if c.CleanText == "" {
		c.Language = model.UnknownLanguage
		return model.NewScoredComment(c, 0, t.thresholds)
	}

	if c.Language == "" {
		c.Language = t.detector.Detect(c.CleanText)
	}
	return model.NewScoredComment(c, t.scorer.Compound(c.CleanText), t.thresholds)
}

// TagAll scores comments in order, dropping repeated ids after their first occurrence.
// The result is never nil.
func (t *Tagger) TagAll(comments []model.Comment) []model.ScoredComment {
	out := make([]model.ScoredComment, 0, len(comments))
	seen := make(map[string]bool, len(comments))

	for _, c := range comments {
		if c.ID != "" {
			if seen[c.ID] {
				continue
			}
			seen[c.ID] = true
		}

		sc := t.Tag(c)
		metrics.CommentsTagged.WithLabelValues(string(sc.Label)).Inc()
		out = append(out, sc)
	}
	return out
}
