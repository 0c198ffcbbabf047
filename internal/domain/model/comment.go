package model

import "time"

// UnknownLanguage is the language tag for comments whose language could not be detected.
const UnknownLanguage = "unknown"

// Comment is a single public YouTube comment or reply as fetched from the API.
type Comment struct {
	ID          string
	ParentID    string // Top-level comment ID for replies; empty for top-level comments.
	VideoID     string
	Author      string
	Text        string // Raw text as returned by the API.
	CleanText   string // Set by the tagger; used for language detection, scoring, and keywords.
	PublishedAt time.Time
	LikeCount   int64
	Language    string
}

// IsReply reports whether the comment is a reply inside a thread.
func (c Comment) IsReply() bool {
	return c.ParentID != ""
}

// HasPublishedAt reports whether the comment carries a usable publish timestamp.
func (c Comment) HasPublishedAt() bool {
	return !c.PublishedAt.IsZero()
}
