// Package langdetect implements the LanguageDetector port using trigram
// based detection.
package langdetect

import (
	"strings"

	"github.com/RadhiFadlillah/whatlanggo"

	"github.com/ericfisherdev/ytsentiment/internal/domain/model"
	"github.com/ericfisherdev/ytsentiment/internal/domain/port/driven"
)

// Compile-time interface satisfaction check.
var _ driven.LanguageDetector = (*Detector)(nil)

// Detector returns ISO 639-1 codes, falling back to ISO 639-3 for languages
// without a two-letter code.
type Detector struct{}

// NewDetector creates a Detector.
func NewDetector() *Detector {
	return &Detector{}
}

// Detect returns the language code of text, or model.UnknownLanguage when
// text carries no detectable script.
func (d *Detector) Detect(text string) string {
	if strings.TrimSpace(text) == "" {
		return model.UnknownLanguage
	}

	info := whatlanggo.Detect(text)
	if info.Script == nil || info.Lang < 0 {
		return model.UnknownLanguage
	}
	code := info.Lang.Iso6391()
	if code == "" {
		code = info.Lang.Iso6393()
	}
	if code == "" {
		return model.UnknownLanguage
	}
	return code
}
