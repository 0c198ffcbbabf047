package model

import "time"

// Session is the per-browser-session analysis state: the fetched and scored
// comments of one video plus the currently active filter. Sessions live in
// memory only and are discarded when they go idle.
type Session struct {
	ID         string
	VideoID    string
	Comments   []ScoredComment
	Filter     FilterSpec
	CreatedAt  time.Time
	LastSeenAt time.Time
}

// IdleSince reports whether the session has not been used since cutoff.
func (s Session) IdleSince(cutoff time.Time) bool {
	return s.LastSeenAt.Before(cutoff)
}
