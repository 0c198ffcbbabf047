package driven

// SentimentScorer computes a lexicon-based compound polarity score in [-1, 1].
// Implementations must be deterministic and safe for concurrent use.
type SentimentScorer interface {
	Compound(text string) float64
}

// LanguageDetector returns an ISO 639-1 language code for text, or
// model.UnknownLanguage when no language can be determined.
type LanguageDetector interface {
	Detect(text string) string
}
