package model

import "fmt"

// Label is the discretized sentiment category derived from a compound score.
type Label string

const (
	LabelPositive Label = "Positive"
	LabelNeutral  Label = "Neutral"
	LabelNegative Label = "Negative"
)

// Labels lists every label in display order.
var Labels = []Label{LabelPositive, LabelNeutral, LabelNegative}

// ParseLabel converts a string to a Label. It is case-sensitive.
func ParseLabel(s string) (Label, error) {
	switch Label(s) {
	case LabelPositive, LabelNeutral, LabelNegative:
		return Label(s), nil
	}
	return "", fmt.Errorf("unknown sentiment label %q", s)
}

// Thresholds are the compound-score cut-offs used to label a comment.
type Thresholds struct {
	Positive float64
	Negative float64
}

// DefaultThresholds are the conventional VADER cut-offs.
var DefaultThresholds = Thresholds{Positive: 0.05, Negative: -0.05}

// Validate returns an error when the thresholds overlap or leave [-1, 1].
func (t Thresholds) Validate() error {
	if t.Positive < -1 || t.Positive > 1 || t.Negative < -1 || t.Negative > 1 {
		return fmt.Errorf("thresholds must be within [-1, 1], got positive=%v negative=%v", t.Positive, t.Negative)
	}
	if t.Negative >= t.Positive {
		return fmt.Errorf("negative threshold %v must be below positive threshold %v", t.Negative, t.Positive)
	}
	return nil
}

// LabelFor maps a compound score to a label.
func (t Thresholds) LabelFor(score float64) Label {
	switch {
	case score >= t.Positive:
		return LabelPositive
	case score <= t.Negative:
		return LabelNegative
	default:
		return LabelNeutral
	}
}

// ScoredComment is a Comment with its compound score and the label derived from it.
type ScoredComment struct {
	Comment
	CompoundScore float64
	Label         Label
}

// NewScoredComment attaches a score to c and derives its label from t.
// Scores outside [-1, 1] are clamped.
func NewScoredComment(c Comment, score float64, t Thresholds) ScoredComment {
	if score > 1 {
		score = 1
	} else if score < -1 {
		score = -1
	}
	return ScoredComment{
		Comment:       c,
		CompoundScore: score,
		Label:         t.LabelFor(score),
	}
}

// LabelCounts holds the number of comments per label.
type LabelCounts struct {
	Positive int
	Neutral  int
	Negative int
}

// Add increments the counter for l.
func (lc *LabelCounts) Add(l Label) {
	switch l {
	case LabelPositive:
		lc.Positive++
	case LabelNeutral:
		lc.Neutral++
	case LabelNegative:
		lc.Negative++
	}
}

// Get returns the count for l.
func (lc LabelCounts) Get(l Label) int {
	switch l {
	case LabelPositive:
		return lc.Positive
	case LabelNeutral:
		return lc.Neutral
	case LabelNegative:
		return lc.Negative
	}
	return 0
}

// Total returns the sum of all label counts.
func (lc LabelCounts) Total() int {
	return lc.Positive + lc.Neutral + lc.Negative
}

// Percent returns the share of l in [0, 100]. Zero totals yield zero.
func (lc LabelCounts) Percent(l Label) float64 {
	total := lc.Total()
	if total == 0 {
		return 0
	}
	return float64(lc.Get(l)) * 100 / float64(total)
}
