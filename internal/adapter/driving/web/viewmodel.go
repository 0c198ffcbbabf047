package web

import (
	"fmt"
	"time"

	"github.com/dustin/go-humanize"

	vm "github.com/ericfisherdev/ytsentiment/internal/adapter/driving/web/viewmodel"
	"github.com/ericfisherdev/ytsentiment/internal/application"
	"github.com/ericfisherdev/ytsentiment/internal/domain/model"
)

// labelColors maps each label to its chart and badge color.
var labelColors = map[model.Label]string{
	model.LabelPositive: "#2e7d32",
	model.LabelNeutral:  "#9e9e9e",
	model.LabelNegative: "#c62828",
}

// formatPercent renders a [0, 100] share with one decimal.
func formatPercent(p float64) string {
	return humanize.CommafWithDigits(p, 1) + "%"
}

// formatScore renders a compound score with a fixed sign and three decimals.
func formatScore(s float64) string {
	return fmt.Sprintf("%+.3f", s)
}

// toDashboardViewModel fills the session part of the dashboard from a report.
// now is the reference time for relative publish dates.
func toDashboardViewModel(base vm.DashboardViewModel, r *application.Report, now time.Time) vm.DashboardViewModel {
	d := base
	d.HasSession = true
	d.VideoID = r.VideoID
	d.VideoURL = "https://www.youtube.com/watch?v=" + r.VideoID
	d.ChartsURL = "/charts"
	d.ExportURL = "/export.csv"

	d.KPI = vm.KPIViewModel{
		Total:       humanize.Comma(int64(r.KPI.Total)),
		PctPositive: formatPercent(r.KPI.PctPositive),
		PctNeutral:  formatPercent(r.KPI.PctNeutral),
		PctNegative: formatPercent(r.KPI.PctNegative),
		AvgCompound: formatScore(r.KPI.AvgCompound),
	}

	d.Shares = make([]vm.ShareViewModel, 0, len(r.Summary))
	for _, s := range r.Summary {
		d.Shares = append(d.Shares, vm.ShareViewModel{
			Label:   string(s.Label),
			Count:   humanize.Comma(int64(s.Count)),
			Percent: formatPercent(s.Percent),
			Color:   labelColors[s.Label],
		})
	}

	d.Filter = toFilterViewModel(r)
	d.Diagnostic = vm.DiagnosticsViewModel{
		Rows:            humanize.Comma(int64(r.Diagnostics.Rows)),
		WithPublished:   humanize.Comma(int64(r.Diagnostics.WithPublished)),
		UniqueLanguages: humanize.Comma(int64(r.Diagnostics.UniqueLanguages)),
	}

	d.TopNegative = make([]vm.CommentRowViewModel, 0, len(r.TopNegative))
	for _, c := range r.TopNegative {
		d.TopNegative = append(d.TopNegative, toCommentRow(c, now))
	}
	return d
}

func toFilterViewModel(r *application.Report) vm.FilterViewModel {
	f := vm.FilterViewModel{
		Language:  r.Filter.Language,
		Languages: r.Languages,
	}
	if f.Languages == nil {
		f.Languages = []string{}
	}
	if r.Filter.From != nil {
		f.From = r.Filter.From.Format(application.DateLayout)
	}
	if r.Filter.To != nil {
		f.To = r.Filter.To.Format(application.DateLayout)
	}
	if r.MinDay != nil && r.MaxDay != nil {
		f.MinDay = r.MinDay.Format(application.DateLayout)
		f.MaxDay = r.MaxDay.Format(application.DateLayout)
	}
	return f
}

func toCommentRow(c model.ScoredComment, now time.Time) vm.CommentRowViewModel {
	row := vm.CommentRowViewModel{
		Author:    c.Author,
		Text:      c.Text,
		Published: "unknown",
		Likes:     humanize.Comma(c.LikeCount),
		Language:  c.Language,
		Score:     formatScore(c.CompoundScore),
	}
	if c.HasPublishedAt() {
		row.Published = humanize.RelTime(c.PublishedAt, now, "ago", "from now")
	}
	return row
}
