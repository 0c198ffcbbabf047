// Package youtube implements the CommentSource port using the YouTube Data API v3.
package youtube

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/gregjones/httpcache"
	"golang.org/x/time/rate"
	"google.golang.org/api/googleapi"
	"google.golang.org/api/googleapi/transport"
	"google.golang.org/api/option"
	yt "google.golang.org/api/youtube/v3"

	"github.com/ericfisherdev/ytsentiment/internal/domain/model"
	"github.com/ericfisherdev/ytsentiment/internal/domain/port/driven"
	"github.com/ericfisherdev/ytsentiment/internal/metrics"
)

// Compile-time interface satisfaction check.
var _ driven.CommentSource = (*Client)(nil)

const (
	// pageSize is the largest maxResults commentThreads.list accepts.
	pageSize = 100
	// pageInterval paces consecutive page requests.
	pageInterval = 100 * time.Millisecond
)

// Client implements driven.CommentSource on top of the generated YouTube client.
type Client struct {
	svc     *yt.Service
	limiter *rate.Limiter
}

// NewClient creates a YouTube API client with the following transport stack:
//  1. googleapi APIKey transport (adds the key query parameter)
//  2. httpcache (ETag-based conditional request caching)
//  3. http.DefaultTransport
func NewClient(ctx context.Context, apiKey string) (*Client, error) {
	cacheTransport := httpcache.NewMemoryCacheTransport()
	httpClient := &http.Client{
		Transport: &transport.APIKey{Key: apiKey, Transport: cacheTransport},
		Timeout:   30 * time.Second,
	}

	svc, err := yt.NewService(ctx, option.WithHTTPClient(httpClient))
	if err != nil {
		return nil, fmt.Errorf("creating youtube service: %w", err)
	}

	return &Client{
		svc:     svc,
		limiter: rate.NewLimiter(rate.Every(pageInterval), 1),
	}, nil
}

// NewClientWithHTTPClient creates a Client with a custom http.Client and base URL
// and no page pacing. This constructor is intended for testing, allowing
// injection of an httptest server.
func NewClientWithHTTPClient(ctx context.Context, httpClient *http.Client, baseURL string) (*Client, error) {
	svc, err := yt.NewService(ctx, option.WithHTTPClient(httpClient), option.WithEndpoint(baseURL))
	if err != nil {
		return nil, fmt.Errorf("creating youtube service: %w", err)
	}

	return &Client{
		svc:     svc,
		limiter: rate.NewLimiter(rate.Inf, 1),
	}, nil
}

// FetchComments retrieves top-level comments and their embedded replies for a video.
// Replies follow their top-level comment in the returned slice.
func (c *Client) FetchComments(ctx context.Context, req driven.FetchRequest) ([]model.Comment, error) {
	comments := []model.Comment{}
	if req.MaxComments <= 0 {
		return comments, nil
	}

	pageToken := ""
	for page := 1; ; page++ {
		if err := c.limiter.Wait(ctx); err != nil {
			return truncate(comments, req.MaxComments), fmt.Errorf("waiting to fetch page %d for %s: %w", page, req.VideoID, err)
		}

		call := c.svc.CommentThreads.List([]string{"snippet", "replies"}).
			VideoId(req.VideoID).
			MaxResults(pageSize).
			TextFormat("plainText").
			Context(ctx)
		if pageToken != "" {
			call = call.PageToken(pageToken)
		}

		resp, err := call.Do()
		if err != nil {
			classified := classifyError(err)
			metrics.YouTubeErrorsTotal.WithLabelValues(errorKind(classified)).Inc()
			return truncate(comments, req.MaxComments), fmt.Errorf("listing comment threads for %s (page %d): %w", req.VideoID, page, classified)
		}
		metrics.YouTubePagesTotal.Inc()

		for _, thread := range resp.Items {
			comments = append(comments, mapThread(thread, req.VideoID)...)
		}

		slog.Debug("youtube api call",
			"video_id", req.VideoID,
			"page", page,
			"threads", len(resp.Items),
			"total", len(comments),
		)

		if len(comments) >= req.MaxComments {
			slog.Info("comment limit reached", "video_id", req.VideoID, "limit", req.MaxComments)
			break
		}
		if resp.NextPageToken == "" {
			break
		}
		if req.MaxPages > 0 && page >= req.MaxPages {
			slog.Info("page limit reached", "video_id", req.VideoID, "pages", page)
			break
		}
		pageToken = resp.NextPageToken
	}

	comments = truncate(comments, req.MaxComments)
	metrics.YouTubeCommentsFetched.Add(float64(len(comments)))
	return comments, nil
}

// mapThread flattens a comment thread into its top-level comment followed by
// the replies embedded in the response.
func mapThread(thread *yt.CommentThread, videoID string) []model.Comment {
	if thread == nil || thread.Snippet == nil || thread.Snippet.TopLevelComment == nil {
		return nil
	}

	top := mapComment(thread.Snippet.TopLevelComment, videoID, "")
	if top.ID == "" {
		top.ID = thread.Id
	}

	out := []model.Comment{top}
	if thread.Replies == nil {
		return out
	}
	for _, r := range thread.Replies.Comments {
		if r == nil {
			continue
		}
		out = append(out, mapComment(r, videoID, top.ID))
	}
	return out
}

// mapComment converts a YouTube Comment resource into a domain Comment.
// Unparseable timestamps become the zero time.
func mapComment(c *yt.Comment, videoID, parentID string) model.Comment {
	comment := model.Comment{
		ID:       c.Id,
		ParentID: parentID,
		VideoID:  videoID,
	}

	s := c.Snippet
	if s == nil {
		return comment
	}

	comment.Author = s.AuthorDisplayName
	comment.Text = s.TextDisplay
	if comment.Text == "" {
		comment.Text = s.TextOriginal
	}
	if s.LikeCount > 0 {
		comment.LikeCount = s.LikeCount
	}
	if s.PublishedAt != "" {
		if t, err := time.Parse(time.RFC3339, s.PublishedAt); err == nil {
			comment.PublishedAt = t.UTC()
		}
	}
	return comment
}

// classifyError maps a googleapi error to the port's sentinel errors while
// keeping the original error in the chain.
func classifyError(err error) error {
	var apiErr *googleapi.Error
	if !errors.As(err, &apiErr) {
		return err
	}

	reasons := make(map[string]bool, len(apiErr.Errors))
	for _, item := range apiErr.Errors {
		reasons[item.Reason] = true
	}

	switch {
	case reasons["commentsDisabled"]:
		return fmt.Errorf("%w: %w", driven.ErrCommentsDisabled, err)
	case reasons["quotaExceeded"], reasons["rateLimitExceeded"], reasons["dailyLimitExceeded"],
		reasons["userRateLimitExceeded"], apiErr.Code == http.StatusTooManyRequests:
		return fmt.Errorf("%w: %w", driven.ErrQuotaExceeded, err)
	case reasons["keyInvalid"], reasons["keyExpired"], reasons["forbidden"], reasons["accessNotConfigured"],
		reasons["ipRefererBlocked"], apiErr.Code == http.StatusUnauthorized:
		return fmt.Errorf("%w: %w", driven.ErrAuth, err)
	case reasons["videoNotFound"], apiErr.Code == http.StatusNotFound:
		return fmt.Errorf("%w: %w", driven.ErrNotFound, err)
	}
	return err
}

// errorKind returns the metrics label for a classified fetch error.
func errorKind(err error) string {
	switch {
	case errors.Is(err, driven.ErrCommentsDisabled):
		return "comments_disabled"
	case errors.Is(err, driven.ErrNotFound):
		return "not_found"
	case errors.Is(err, driven.ErrQuotaExceeded):
		return "quota"
	case errors.Is(err, driven.ErrAuth):
		return "auth"
	}
	return "other"
}

func truncate(comments []model.Comment, limit int) []model.Comment {
	if limit >= 0 && len(comments) > limit {
		return comments[:limit]
	}
	return comments
}
