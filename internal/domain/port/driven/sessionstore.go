package driven

import (
	"context"
	"time"

	"github.com/ericfisherdev/ytsentiment/internal/domain/model"
)

// SessionStore defines the driven port for per-session analysis state.
// Implementations keep data in memory only.
type SessionStore interface {
	// Create stores a new session including all of its scored comments.
	Create(ctx context.Context, session model.Session) error

	// Get loads a session with its comments. Returns (nil, nil) if no session
	// exists for id.
	Get(ctx context.Context, id string) (*model.Session, error)

	// SetFilter replaces the active filter of a session and refreshes its last-seen time.
	SetFilter(ctx context.Context, id string, filter model.FilterSpec, seenAt time.Time) error

	// Touch refreshes the last-seen time of a session.
	Touch(ctx context.Context, id string, seenAt time.Time) error

	// Delete removes a session and its comments. Deleting a missing session is not an error.
	Delete(ctx context.Context, id string) error

	// DeleteIdleSince removes every session last seen before cutoff and returns how many were removed.
	DeleteIdleSince(ctx context.Context, cutoff time.Time) (int, error)

	// Count returns the number of live sessions.
	Count(ctx context.Context) (int, error)
}
