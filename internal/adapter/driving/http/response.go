package httphandler

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/ericfisherdev/ytsentiment/internal/application"
	"github.com/ericfisherdev/ytsentiment/internal/domain/model"
)

// writeJSON marshals v to JSON and writes it to the response with the given
// status code. If marshaling fails, a 500 error is written instead.
func writeJSON(w http.ResponseWriter, status int, v any) {
	data, err := json.Marshal(v)
	if err != nil {
		w.Header().Set("Content-Type", "application/json; charset=utf-8")
		w.WriteHeader(http.StatusInternalServerError)
		_, _ = w.Write([]byte(`{"error":"internal server error"}`))
		return
	}

	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_, _ = w.Write(data)
}

// writeError writes a JSON error response with the given status code and message.
func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, errorResponse{Error: message})
}

// errorResponse is the standard error response body.
type errorResponse struct {
	Error string `json:"error"`
}

// AnalyzeRequest is the JSON body for the create analysis endpoint.
// MaxComments defaults to the configured limit when omitted.
type AnalyzeRequest struct {
	Video       string `json:"video"`
	MaxComments *int   `json:"max_comments,omitempty"`
	MaxPages    int    `json:"max_pages,omitempty"`
}

// CountsResponse is the per-label comment count.
type CountsResponse struct {
	Positive int `json:"positive"`
	Neutral  int `json:"neutral"`
	Negative int `json:"negative"`
	Total    int `json:"total"`
}

// AnalysisResponse is returned after a successful analysis run.
type AnalysisResponse struct {
	SessionID string         `json:"session_id"`
	VideoID   string         `json:"video_id"`
	Comments  int            `json:"comments"`
	Counts    CountsResponse `json:"counts"`
	CreatedAt string         `json:"created_at"`
}

// FilterResponse is the JSON representation of the active filter.
type FilterResponse struct {
	Language string `json:"language,omitempty"`
	From     string `json:"from,omitempty"`
	To       string `json:"to,omitempty"`
}

// KPIResponse holds the headline numbers.
type KPIResponse struct {
	Total       int     `json:"total"`
	PctPositive float64 `json:"pct_positive"`
	PctNeutral  float64 `json:"pct_neutral"`
	PctNegative float64 `json:"pct_negative"`
	AvgCompound float64 `json:"avg_compound"`
}

// ShareResponse is one bar/pie slice.
type ShareResponse struct {
	Label   string  `json:"label"`
	Count   int     `json:"count"`
	Percent float64 `json:"percent"`
}

// TrendPointResponse is the breakdown of a single UTC day.
type TrendPointResponse struct {
	Day          string             `json:"day"`
	Counts       CountsResponse     `json:"counts"`
	Proportions  map[string]float64 `json:"proportions"`
	MeanCompound float64            `json:"mean_compound"`
}

// KeywordResponse is a weighted word cloud term.
type KeywordResponse struct {
	Term   string `json:"term"`
	Weight int    `json:"weight"`
}

// KeywordsResponse holds the word cloud terms of both polar labels.
type KeywordsResponse struct {
	Positive []KeywordResponse `json:"positive"`
	Negative []KeywordResponse `json:"negative"`
}

// CommentResponse is the JSON representation of a scored comment.
type CommentResponse struct {
	ID            string  `json:"id"`
	ParentID      string  `json:"parent_id,omitempty"`
	Author        string  `json:"author"`
	Text          string  `json:"text"`
	PublishedAt   string  `json:"published_at,omitempty"`
	LikeCount     int64   `json:"like_count"`
	Language      string  `json:"language"`
	CompoundScore float64 `json:"compound_score"`
	Label         string  `json:"label"`
}

// DiagnosticsResponse describes data quality of the whole session dataset.
type DiagnosticsResponse struct {
	Rows            int `json:"rows"`
	WithPublished   int `json:"with_published"`
	UniqueLanguages int `json:"unique_languages"`
}

// DateRangeResponse is the span of publish days in the whole session.
type DateRangeResponse struct {
	Min string `json:"min"`
	Max string `json:"max"`
}

// ReportResponse is the JSON representation of a session report.
type ReportResponse struct {
	SessionID   string               `json:"session_id"`
	VideoID     string               `json:"video_id"`
	Filter      FilterResponse       `json:"filter"`
	KPI         KPIResponse          `json:"kpi"`
	Summary     []ShareResponse      `json:"summary"`
	Trend       []TrendPointResponse `json:"trend"`
	Keywords    KeywordsResponse     `json:"keywords"`
	TopNegative []CommentResponse    `json:"top_negative"`
	Languages   []string             `json:"languages"`
	Diagnostics DiagnosticsResponse  `json:"diagnostics"`
	DateRange   *DateRangeResponse   `json:"date_range,omitempty"`
}

// HealthResponse is the JSON representation of the health check endpoint.
type HealthResponse struct {
	Status   string `json:"status"`
	Time     string `json:"time"`
	Sessions int    `json:"sessions"`
}

func toCountsResponse(c model.LabelCounts) CountsResponse {
	return CountsResponse{
		Positive: c.Positive,
		Neutral:  c.Neutral,
		Negative: c.Negative,
		Total:    c.Total(),
	}
}

// toAnalysisResponse converts a newly created session to its JSON representation.
func toAnalysisResponse(s *model.Session) AnalysisResponse {
	var counts model.LabelCounts
	for _, c := range s.Comments {
		counts.Add(c.Label)
	}

	return AnalysisResponse{
		SessionID: s.ID,
		VideoID:   s.VideoID,
		Comments:  len(s.Comments),
		Counts:    toCountsResponse(counts),
		CreatedAt: s.CreatedAt.UTC().Format(time.RFC3339),
	}
}

func toFilterResponse(f model.FilterSpec) FilterResponse {
	resp := FilterResponse{Language: f.Language}
	if f.From != nil {
		resp.From = f.From.Format(application.DateLayout)
	}
	if f.To != nil {
		resp.To = f.To.Format(application.DateLayout)
	}
	return resp
}

func toKeywordResponses(kws []application.Keyword) []KeywordResponse {
	out := make([]KeywordResponse, 0, len(kws))
	for _, k := range kws {
		out = append(out, KeywordResponse{Term: k.Term, Weight: k.Weight})
	}
	return out
}

// toCommentResponse converts a domain ScoredComment to its JSON representation.
func toCommentResponse(c model.ScoredComment) CommentResponse {
	resp := CommentResponse{
		ID:            c.ID,
		ParentID:      c.ParentID,
		Author:        c.Author,
		Text:          c.Text,
		LikeCount:     c.LikeCount,
		Language:      c.Language,
		CompoundScore: c.CompoundScore,
		Label:         string(c.Label),
	}
	if c.HasPublishedAt() {
		resp.PublishedAt = c.PublishedAt.UTC().Format(time.RFC3339)
	}
	return resp
}

// toReportResponse converts an application Report to its JSON representation.
// Slices are always non-nil so clients see [] rather than null.
func toReportResponse(r *application.Report) ReportResponse {
	summary := make([]ShareResponse, 0, len(r.Summary))
	for _, s := range r.Summary {
		summary = append(summary, ShareResponse{Label: string(s.Label), Count: s.Count, Percent: s.Percent})
	}

	trend := make([]TrendPointResponse, 0, len(r.Trend))
	for _, p := range r.Trend {
		proportions := make(map[string]float64, len(model.Labels))
		for _, l := range model.Labels {
			proportions[string(l)] = p.Proportion(l)
		}
		trend = append(trend, TrendPointResponse{
			Day:          p.Day.Format(application.DateLayout),
			Counts:       toCountsResponse(p.Counts),
			Proportions:  proportions,
			MeanCompound: p.MeanCompound,
		})
	}

	topNegative := make([]CommentResponse, 0, len(r.TopNegative))
	for _, c := range r.TopNegative {
		topNegative = append(topNegative, toCommentResponse(c))
	}

	languages := r.Languages
	if languages == nil {
		languages = []string{}
	}

	resp := ReportResponse{
		SessionID: r.SessionID,
		VideoID:   r.VideoID,
		Filter:    toFilterResponse(r.Filter),
		KPI: KPIResponse{
			Total:       r.KPI.Total,
			PctPositive: r.KPI.PctPositive,
			PctNeutral:  r.KPI.PctNeutral,
			PctNegative: r.KPI.PctNegative,
			AvgCompound: r.KPI.AvgCompound,
		},
		Summary: summary,
		Trend:   trend,
		Keywords: KeywordsResponse{
			Positive: toKeywordResponses(r.PositiveKeywords),
			Negative: toKeywordResponses(r.NegativeKeywords),
		},
		TopNegative: topNegative,
		Languages:   languages,
		Diagnostics: DiagnosticsResponse{
			Rows:            r.Diagnostics.Rows,
			WithPublished:   r.Diagnostics.WithPublished,
			UniqueLanguages: r.Diagnostics.UniqueLanguages,
		},
	}
	if r.MinDay != nil && r.MaxDay != nil {
		resp.DateRange = &DateRangeResponse{
			Min: r.MinDay.Format(application.DateLayout),
			Max: r.MaxDay.Format(application.DateLayout),
		}
	}
	return resp
}
