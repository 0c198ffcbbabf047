package application

import (
	"sort"
	"time"

	"github.com/ericfisherdev/ytsentiment/internal/domain/model"
)

// Aggregate is a filtered subset of a session's comments with its label counts.
type Aggregate struct {
	Comments []model.ScoredComment
	Counts   model.LabelCounts
}

// Apply filters comments with f, preserving input order. An empty filter
// keeps every comment. The returned slice is never nil and never aliases the input.
func Apply(comments []model.ScoredComment, f model.FilterSpec) Aggregate {
	agg := Aggregate{Comments: make([]model.ScoredComment, 0, len(comments))}
	for _, c := range comments {
		if !f.Matches(c) {
			continue
		}
		agg.Comments = append(agg.Comments, c)
		agg.Counts.Add(c.Label)
	}
	return agg
}

// Languages returns the distinct detected languages in comments, sorted,
// excluding model.UnknownLanguage.
func Languages(comments []model.ScoredComment) []string {
	set := make(map[string]struct{})
	for _, c := range comments {
		if c.Language == "" || c.Language == model.UnknownLanguage {
			continue
		}
		set[c.Language] = struct{}{}
	}

	out := make([]string, 0, len(set))
	for lang := range set {
		out = append(out, lang)
	}
	sort.Strings(out)
	return out
}

// DateBounds returns the earliest and latest UTC publish days among comments.
// ok is false when no comment carries a timestamp.
func DateBounds(comments []model.ScoredComment) (minDay, maxDay time.Time, ok bool) {
	for _, c := range comments {
		if !c.HasPublishedAt() {
			continue
		}
		day := model.TruncateDay(c.PublishedAt)
		if !ok || day.Before(minDay) {
			minDay = day
		}
		if !ok || day.After(maxDay) {
			maxDay = day
		}
		ok = true
	}
	return minDay, maxDay, ok
}

// Diagnostics summarizes data quality of a comment set.
type Diagnostics struct {
	Rows            int
	WithPublished   int
	UniqueLanguages int
}

// Diagnose computes Diagnostics for comments. Unknown language counts as a language.
func Diagnose(comments []model.ScoredComment) Diagnostics {
	langs := make(map[string]struct{})
	d := Diagnostics{Rows: len(comments)}
	for _, c := range comments {
		if c.HasPublishedAt() {
			d.WithPublished++
		}
		langs[c.Language] = struct{}{}
	}
	d.UniqueLanguages = len(langs)
	return d
}
