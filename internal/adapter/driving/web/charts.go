package web

import (
	"github.com/go-echarts/go-echarts/v2/charts"
	"github.com/go-echarts/go-echarts/v2/components"
	"github.com/go-echarts/go-echarts/v2/opts"

	"github.com/ericfisherdev/ytsentiment/internal/application"
	"github.com/ericfisherdev/ytsentiment/internal/domain/model"
)

const (
	chartWidth  = "900px"
	chartHeight = "420px"
)

// buildChartPage lays out every chart of a report on one go-echarts page.
// Empty reports still produce all charts, each without data.
func buildChartPage(r *application.Report) *components.Page {
	page := components.NewPage()
	page.PageTitle = "Sentiment charts"
	page.SetLayout(components.PageFlexLayout)
	page.AddCharts(
		labelBar(r.Summary),
		labelPie(r.Summary),
		trendLine(r.Trend),
		wordCloud("positive-words", "Positive keywords", r.PositiveKeywords),
		wordCloud("negative-words", "Negative keywords", r.NegativeKeywords),
	)
	return page
}

func chartInit(id string) charts.GlobalOpts {
	return charts.WithInitializationOpts(opts.Initialization{
		ChartID: id,
		Width:   chartWidth,
		Height:  chartHeight,
	})
}

func labelBar(shares []application.LabelShare) *charts.Bar {
	bar := charts.NewBar()
	bar.SetGlobalOptions(
		chartInit("label-counts"),
		charts.WithTitleOpts(opts.Title{Title: "Comments per label"}),
	)

	names := make([]string, 0, len(shares))
	data := make([]opts.BarData, 0, len(shares))
	for _, s := range shares {
		names = append(names, string(s.Label))
		data = append(data, opts.BarData{
			Name:      string(s.Label),
			Value:     s.Count,
			ItemStyle: &opts.ItemStyle{Color: labelColors[s.Label]},
		})
	}
	bar.SetXAxis(names).AddSeries("Comments", data)
	return bar
}

func labelPie(shares []application.LabelShare) *charts.Pie {
	pie := charts.NewPie()
	pie.SetGlobalOptions(
		chartInit("label-share"),
		charts.WithTitleOpts(opts.Title{Title: "Label share"}),
	)

	data := make([]opts.PieData, 0, len(shares))
	for _, s := range shares {
		if s.Count == 0 {
			continue
		}
		data = append(data, opts.PieData{
			Name:      string(s.Label),
			Value:     s.Count,
			ItemStyle: &opts.ItemStyle{Color: labelColors[s.Label]},
		})
	}
	pie.AddSeries("Share", data)
	return pie
}

// trendLine plots the daily label proportions in percent plus the mean
// compound score of each day.
func trendLine(points []application.TrendPoint) *charts.Line {
	line := charts.NewLine()
	line.SetGlobalOptions(
		chartInit("daily-trend"),
		charts.WithTitleOpts(opts.Title{Title: "Daily sentiment", Subtitle: "share of comments per UTC day (%)"}),
		charts.WithColorsOpts(opts.Colors{
			labelColors[model.LabelPositive],
			labelColors[model.LabelNeutral],
			labelColors[model.LabelNegative],
			"#1565c0",
		}),
	)

	days := make([]string, 0, len(points))
	for _, p := range points {
		days = append(days, p.Day.Format(application.DateLayout))
	}
	line.SetXAxis(days)

	for _, l := range model.Labels {
		data := make([]opts.LineData, 0, len(points))
		for _, p := range points {
			data = append(data, opts.LineData{Value: p.Proportion(l) * 100})
		}
		line.AddSeries(string(l), data)
	}

	mean := make([]opts.LineData, 0, len(points))
	for _, p := range points {
		mean = append(mean, opts.LineData{Value: p.MeanCompound * 100})
	}
	line.AddSeries("Mean compound x100", mean)
	return line
}

func wordCloud(id, title string, keywords []application.Keyword) *charts.WordCloud {
	wc := charts.NewWordCloud()
	wc.SetGlobalOptions(
		chartInit(id),
		charts.WithTitleOpts(opts.Title{Title: title}),
	)

	data := make([]opts.WordCloudData, 0, len(keywords))
	for _, k := range keywords {
		data = append(data, opts.WordCloudData{Name: k.Term, Value: k.Weight})
	}
	wc.AddSeries("Keywords", data)
	return wc
}
