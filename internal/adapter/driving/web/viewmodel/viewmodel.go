// Package viewmodel defines presentation-ready structs for templ components.
// View models decouple template rendering from domain model types.
package viewmodel

// DashboardViewModel holds everything the dashboard page renders.
type DashboardViewModel struct {
	CSRFToken          string
	DefaultMaxComments int
	Video              string
	Notices            []NoticeViewModel

	// HasSession is false until the first successful analysis.
	HasSession bool
	VideoID    string
	VideoURL   string
	KPI        KPIViewModel
	Shares     []ShareViewModel
	Filter     FilterViewModel
	Diagnostic DiagnosticsViewModel
	// TopNegative is the most liked negative comments of the filtered set.
	TopNegative []CommentRowViewModel
	ChartsURL   string
	ExportURL   string
}

// NoticeViewModel is a sanitized HTML message shown above the dashboard.
type NoticeViewModel struct {
	Level string // "info" or "error"
	HTML  string
}

// KPIViewModel holds the formatted headline numbers.
type KPIViewModel struct {
	Total       string
	PctPositive string
	PctNeutral  string
	PctNegative string
	AvgCompound string
}

// ShareViewModel is one label count with its display color.
type ShareViewModel struct {
	Label   string
	Count   string
	Percent string
	Color   string
}

// FilterViewModel holds the active filter plus the available choices.
type FilterViewModel struct {
	Language  string
	From      string
	To        string
	MinDay    string
	MaxDay    string
	Languages []string
}

// DiagnosticsViewModel describes data quality of the whole session dataset.
type DiagnosticsViewModel struct {
	Rows            string
	WithPublished   string
	UniqueLanguages string
}

// CommentRowViewModel is one row of the top negative comments table.
type CommentRowViewModel struct {
	Author    string
	Text      string
	Published string
	Likes     string
	Language  string
	Score     string
}
