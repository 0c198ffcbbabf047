package model

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestThresholds_LabelFor(t *testing.T) {
	th := DefaultThresholds

	tests := []struct {
		score float64
		want  Label
	}{
		{0.05, LabelPositive},
		{0.9, LabelPositive},
		{0.0499, LabelNeutral},
		{0, LabelNeutral},
		{-0.0499, LabelNeutral},
		{-0.05, LabelNegative},
		{-1, LabelNegative},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, th.LabelFor(tt.score), "score %v", tt.score)
	}
}

func TestThresholds_Validate(t *testing.T) {
	require.NoError(t, DefaultThresholds.Validate())
	assert.Error(t, Thresholds{Positive: -0.1, Negative: 0.1}.Validate())
	assert.Error(t, Thresholds{Positive: 1.5, Negative: -0.05}.Validate())
}

func TestNewScoredComment_ClampsAndLabels(t *testing.T) {
	sc := NewScoredComment(Comment{ID: "c1"}, 1.7, DefaultThresholds)
	assert.Equal(t, 1.0, sc.CompoundScore)
	assert.Equal(t, LabelPositive, sc.Label)

	sc = NewScoredComment(Comment{ID: "c2"}, -3, DefaultThresholds)
	assert.Equal(t, -1.0, sc.CompoundScore)
	assert.Equal(t, LabelNegative, sc.Label)
}

func TestLabelCounts(t *testing.T) {
	var lc LabelCounts
	for _, l := range []Label{LabelPositive, LabelPositive, LabelNegative, LabelNeutral} {
		lc.Add(l)
	}

	assert.Equal(t, 4, lc.Total())
	assert.Equal(t, 2, lc.Get(LabelPositive))
	assert.InDelta(t, 50.0, lc.Percent(LabelPositive), 1e-9)
	assert.Zero(t, LabelCounts{}.Percent(LabelNegative))
}

func TestParseLabel(t *testing.T) {
	l, err := ParseLabel("Negative")
	require.NoError(t, err)
	assert.Equal(t, LabelNegative, l)

	_, err = ParseLabel("negative")
	assert.Error(t, err)
}
