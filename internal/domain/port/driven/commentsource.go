package driven

import (
	"context"
	"errors"
	"fmt"

	"github.com/ericfisherdev/ytsentiment/internal/domain/model"
)

// Errors returned by CommentSource implementations. Callers match them with errors.Is.
var (
	// ErrAuth means the API credential was rejected.
	ErrAuth = errors.New("youtube api rejected the credential")
	// ErrQuotaExceeded means the API reported a rate or quota limit.
	ErrQuotaExceeded = errors.New("youtube api quota exceeded")
	// ErrNotFound means the video does not exist or exposes no comments.
	ErrNotFound = errors.New("video not found")
	// ErrCommentsDisabled is a more specific ErrNotFound: the video exists but comments are turned off.
	ErrCommentsDisabled = fmt.Errorf("comments are disabled for this video: %w", ErrNotFound)
)

// FetchRequest describes one comment retrieval for a single video.
type FetchRequest struct {
	VideoID     string
	MaxComments int // Upper bound on returned comments, replies included. <= 0 fetches nothing.
	MaxPages    int // Upper bound on API pages; 0 means no page limit.
}

// CommentSource defines the driven port for retrieving public comments of a video.
type CommentSource interface {
	// FetchComments pages through the video's comment threads until MaxComments
	// is reached, the API reports no further pages, MaxPages pages were read, or
	// a call fails. On failure it returns the comments collected so far together
	// with the error.
	FetchComments(ctx context.Context, req FetchRequest) ([]model.Comment, error)
}
