package application

import (
	"sort"
	"strings"
	"time"
	"unicode"
	"unicode/utf8"

	"github.com/forPelevin/gomoji"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/ericfisherdev/ytsentiment/internal/domain/model"
)

const (
	// MaxKeywords caps the number of terms in a word cloud.
	MaxKeywords = 200
	// TopNegativeLimit is the number of rows in the most-liked negative comments table.
	TopNegativeLimit = 50
)

// LabelShare is one bar/pie slice: a label with its count and percentage.
type LabelShare struct {
	Label   model.Label
	Count   int
	Percent float64
}

// Summary returns one LabelShare per label in Positive, Neutral, Negative order.
func Summary(agg Aggregate) []LabelShare {
	out := make([]LabelShare, 0, len(model.Labels))
	for _, l := range model.Labels {
		out = append(out, LabelShare{
			Label:   l,
			Count:   agg.Counts.Get(l),
			Percent: agg.Counts.Percent(l),
		})
	}
	return out
}

// KPI holds the headline numbers of an aggregate.
type KPI struct {
	Total       int
	PctPositive float64
	PctNeutral  float64
	PctNegative float64
	AvgCompound float64
}

// KPIs computes the headline numbers. All values are zero for an empty aggregate.
func KPIs(agg Aggregate) KPI {
	k := KPI{
		Total:       agg.Counts.Total(),
		PctPositive: agg.Counts.Percent(model.LabelPositive),
		PctNeutral:  agg.Counts.Percent(model.LabelNeutral),
		PctNegative: agg.Counts.Percent(model.LabelNegative),
	}
	if len(agg.Comments) == 0 {
		return k
	}

	var sum float64
	for _, c := range agg.Comments {
		sum += c.CompoundScore
	}
	k.AvgCompound = sum / float64(len(agg.Comments))
	return k
}

// TrendPoint is the label breakdown of one UTC calendar day.
type TrendPoint struct {
	Day          time.Time
	Counts       model.LabelCounts
	MeanCompound float64
}

// Proportion returns the share of l on this day in [0, 1].
func (p TrendPoint) Proportion(l model.Label) float64 {
	return p.Counts.Percent(l) / 100
}

// Trend buckets comments by UTC publish day in ascending order. Comments
// without a timestamp are skipped and days without comments are omitted.
func Trend(agg Aggregate) []TrendPoint {
	type bucket struct {
		counts model.LabelCounts
		sum    float64
	}

	buckets := make(map[time.Time]*bucket)
	for _, c := range agg.Comments {
		if !c.HasPublishedAt() {
			continue
		}
		day := model.TruncateDay(c.PublishedAt)
		b, ok := buckets[day]
		if !ok {
			b = &bucket{}
			buckets[day] = b
		}
		b.counts.Add(c.Label)
		b.sum += c.CompoundScore
	}

	out := make([]TrendPoint, 0, len(buckets))
	for day, b := range buckets {
		out = append(out, TrendPoint{
			Day:          day,
			Counts:       b.counts,
			MeanCompound: b.sum / float64(b.counts.Total()),
		})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Day.Before(out[j].Day) })
	return out
}

// Keyword is a word cloud term weighted by its frequency.
type Keyword struct {
	Term   string
	Weight int
}

// Keywords returns the most frequent terms among comments labelled l, ordered
// by weight descending then term ascending, capped at limit (MaxKeywords when
// limit <= 0).
func Keywords(agg Aggregate, l model.Label, limit int) []Keyword {
	if limit <= 0 {
		limit = MaxKeywords
	}

	caser := cases.Lower(language.Und)
	freq := make(map[string]int)
	for _, c := range agg.Comments {
		if c.Label != l {
			continue
		}
		text := c.CleanText
		if text == "" {
			text = c.Text
		}
		for _, tok := range tokenize(caser.String(text)) {
			freq[tok]++
		}
	}

	out := make([]Keyword, 0, len(freq))
	for term, n := range freq {
		out = append(out, Keyword{Term: term, Weight: n})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Weight != out[j].Weight {
			return out[i].Weight > out[j].Weight
		}
		return out[i].Term < out[j].Term
	})

	if len(out) > limit {
		out = out[:limit]
	}
	return out
}

// tokenize splits lowercased text into word cloud terms.
func tokenize(text string) []string {
	text = gomoji.RemoveEmojis(text)
	fields := strings.FieldsFunc(text, func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	})

	out := fields[:0]
	for _, f := range fields {
		if utf8.RuneCountInString(f) <= 1 || isNumeric(f) {
			continue
		}
		if _, stop := stopwords[f]; stop {
			continue
		}
		out = append(out, f)
	}
	return out
}

func isNumeric(s string) bool {
	for _, r := range s {
		if !unicode.IsDigit(r) {
			return false
		}
	}
	return true
}

// TopNegative returns up to n Negative comments ordered by like count
// descending. Ties keep their aggregate order.
func TopNegative(agg Aggregate, n int) []model.ScoredComment {
	neg := make([]model.ScoredComment, 0, agg.Counts.Negative)
	for _, c := range agg.Comments {
		if c.Label == model.LabelNegative {
			neg = append(neg, c)
		}
	}

	sort.SliceStable(neg, func(i, j int) bool { return neg[i].LikeCount > neg[j].LikeCount })

	if n >= 0 && len(neg) > n {
		neg = neg[:n]
	}
	return neg
}
