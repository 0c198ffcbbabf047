// Package vader implements the SentimentScorer port with the VADER
// lexicon and rule-based sentiment model.
package vader

import (
	"github.com/jonreiter/govader"

	"github.com/ericfisherdev/ytsentiment/internal/domain/port/driven"
)

// Compile-time interface satisfaction check.
var _ driven.SentimentScorer = (*Analyzer)(nil)

// Analyzer scores text with a single shared VADER analyzer. PolarityScores
// only reads the lexicon, so one Analyzer may be used from many goroutines.
type Analyzer struct {
	sia *govader.SentimentIntensityAnalyzer
}

// NewAnalyzer loads the embedded VADER lexicon.
func NewAnalyzer() *Analyzer {
	return &Analyzer{sia: govader.NewSentimentIntensityAnalyzer()}
}

// Compound returns the normalized compound score in [-1, 1].
func (a *Analyzer) Compound(text string) float64 {
	if text == "" {
		return 0
	}
	return a.sia.PolarityScores(text).Compound
}
