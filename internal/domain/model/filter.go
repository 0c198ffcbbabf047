package model

import "time"

// FilterSpec is the user-selected predicate over a session's comments.
// Zero-valued fields place no restriction; set fields are combined with AND.
type FilterSpec struct {
	Language string     // Exact language match; empty means any language.
	From     *time.Time // Inclusive start day (UTC calendar day).
	To       *time.Time // Inclusive end day (UTC calendar day).
}

// IsEmpty reports whether the filter places no restriction.
func (f FilterSpec) IsEmpty() bool {
	return f.Language == "" && f.From == nil && f.To == nil
}

// HasDateRange reports whether either date bound is set.
func (f FilterSpec) HasDateRange() bool {
	return f.From != nil || f.To != nil
}

// Matches reports whether c satisfies every constraint in f.
// Comments without a publish timestamp never match an active date constraint.
func (f FilterSpec) Matches(c ScoredComment) bool {
	if f.Language != "" && c.Language != f.Language {
		return false
	}
	if !f.HasDateRange() {
		return true
	}
	if !c.HasPublishedAt() {
		return false
	}

	day := TruncateDay(c.PublishedAt)
	if f.From != nil && day.Before(TruncateDay(*f.From)) {
		return false
	}
	if f.To != nil && day.After(TruncateDay(*f.To)) {
		return false
	}
	return true
}

// TruncateDay returns the UTC midnight of t's UTC calendar day.
func TruncateDay(t time.Time) time.Time {
	u := t.UTC()
	return time.Date(u.Year(), u.Month(), u.Day(), 0, 0, 0, 0, time.UTC)
}
