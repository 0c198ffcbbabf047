package model

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func day(y int, m time.Month, d int) *time.Time {
	t := time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
	return &t
}

func TestFilterSpec_Matches(t *testing.T) {
	c := ScoredComment{Comment: Comment{
		ID:          "c1",
		Language:    "en",
		PublishedAt: time.Date(2026, 3, 10, 23, 30, 0, 0, time.UTC),
	}}

	assert.True(t, FilterSpec{}.Matches(c))
	assert.True(t, FilterSpec{Language: "en"}.Matches(c))
	assert.False(t, FilterSpec{Language: "de"}.Matches(c))

	// Bounds are inclusive calendar days.
	assert.True(t, FilterSpec{From: day(2026, 3, 10), To: day(2026, 3, 10)}.Matches(c))
	assert.False(t, FilterSpec{From: day(2026, 3, 11)}.Matches(c))
	assert.False(t, FilterSpec{To: day(2026, 3, 9)}.Matches(c))
	assert.False(t, FilterSpec{Language: "de", From: day(2026, 3, 1)}.Matches(c))
}

func TestFilterSpec_MissingTimestampExcludedByDateRange(t *testing.T) {
	c := ScoredComment{Comment: Comment{ID: "c1", Language: "en"}}

	assert.True(t, FilterSpec{Language: "en"}.Matches(c))
	assert.False(t, FilterSpec{From: day(2020, 1, 1)}.Matches(c))
}

func TestFilterSpec_IsEmpty(t *testing.T) {
	assert.True(t, FilterSpec{}.IsEmpty())
	assert.False(t, FilterSpec{Language: "en"}.IsEmpty())
	assert.False(t, FilterSpec{To: day(2026, 1, 1)}.IsEmpty())
}
