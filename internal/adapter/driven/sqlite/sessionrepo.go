package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/ericfisherdev/ytsentiment/internal/domain/model"
	"github.com/ericfisherdev/ytsentiment/internal/domain/port/driven"
)

// Compile-time interface satisfaction check.
var _ driven.SessionStore = (*SessionRepo)(nil)

const dateLayout = "2006-01-02"

// SessionRepo is the SQLite implementation of the SessionStore port interface.
type SessionRepo struct {
	db *DB
}

// NewSessionRepo creates a new SessionRepo backed by the given DB.
func NewSessionRepo(db *DB) *SessionRepo {
	return &SessionRepo{db: db}
}

// Create inserts the session row and all of its scored comments in one
// transaction. Comment order is preserved through the position column.
func (r *SessionRepo) Create(ctx context.Context, s model.Session) error {
	tx, err := r.db.Writer.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin create session %s: %w", s.ID, err)
	}
	defer tx.Rollback() //nolint:errcheck // rollback after commit is a no-op

	const sessionQuery = `
		INSERT INTO sessions (id, video_id, filter_language, filter_from, filter_to, created_at, last_seen_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`
	from, to := filterDates(s.Filter)
	if _, err := tx.ExecContext(ctx, sessionQuery,
		s.ID, s.VideoID, s.Filter.Language, from, to,
		s.CreatedAt.UnixNano(), s.LastSeenAt.UnixNano(),
	); err != nil {
		return fmt.Errorf("insert session %s: %w", s.ID, err)
	}

	const commentQuery = `
		INSERT INTO scored_comments (
			session_id, position, id, parent_id, video_id, author, text, clean_text,
			published_at, like_count, language, compound_score, label
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`
	stmt, err := tx.PrepareContext(ctx, commentQuery)
	if err != nil {
		return fmt.Errorf("prepare comment insert: %w", err)
	}
	defer stmt.Close()

	for i, c := range s.Comments {
		var published sql.NullString
		if c.HasPublishedAt() {
			published = sql.NullString{String: c.PublishedAt.UTC().Format(time.RFC3339Nano), Valid: true}
		}
		if _, err := stmt.ExecContext(ctx,
			s.ID, i, c.ID, c.ParentID, c.VideoID, c.Author, c.Text, c.CleanText,
			published, c.LikeCount, c.Language, c.CompoundScore, string(c.Label),
		); err != nil {
			return fmt.Errorf("insert comment %s for session %s: %w", c.ID, s.ID, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit session %s: %w", s.ID, err)
	}
	return nil
}

// Get loads a session and its comments in insertion order. Returns (nil, nil)
// if no session exists for id.
func (r *SessionRepo) Get(ctx context.Context, id string) (*model.Session, error) {
	const sessionQuery = `
		SELECT id, video_id, filter_language, filter_from, filter_to, created_at, last_seen_at
		FROM sessions
		WHERE id = ?
	`

	var (
		s                 model.Session
		from, to          sql.NullString
		createdAt, seenAt int64
	)
	err := r.db.Reader.QueryRowContext(ctx, sessionQuery, id).Scan(
		&s.ID, &s.VideoID, &s.Filter.Language, &from, &to, &createdAt, &seenAt,
	)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get session %s: %w", id, err)
	}

	s.CreatedAt = time.Unix(0, createdAt).UTC()
	s.LastSeenAt = time.Unix(0, seenAt).UTC()
	if s.Filter.From, err = parseDate(from); err != nil {
		return nil, fmt.Errorf("parse filter_from for session %s: %w", id, err)
	}
	if s.Filter.To, err = parseDate(to); err != nil {
		return nil, fmt.Errorf("parse filter_to for session %s: %w", id, err)
	}

	comments, err := r.listComments(ctx, id)
	if err != nil {
		return nil, err
	}
	s.Comments = comments

	return &s, nil
}

func (r *SessionRepo) listComments(ctx context.Context, sessionID string) ([]model.ScoredComment, error) {
	const query = `
		SELECT id, parent_id, video_id, author, text, clean_text,
		       published_at, like_count, language, compound_score, label
		FROM scored_comments
		WHERE session_id = ?
		ORDER BY position
	`

	rows, err := r.db.Reader.QueryContext(ctx, query, sessionID)
	if err != nil {
		return nil, fmt.Errorf("list comments for session %s: %w", sessionID, err)
	}
	defer rows.Close()

	comments := []model.ScoredComment{}
	for rows.Next() {
		var (
			c         model.ScoredComment
			published sql.NullString
			label     string
		)
		if err := rows.Scan(
			&c.ID, &c.ParentID, &c.VideoID, &c.Author, &c.Text, &c.CleanText,
			&published, &c.LikeCount, &c.Language, &c.CompoundScore, &label,
		); err != nil {
			return nil, fmt.Errorf("scan comment for session %s: %w", sessionID, err)
		}

		if published.Valid {
			t, err := parseTime(published.String)
			if err != nil {
				return nil, fmt.Errorf("parse published_at for comment %s: %w", c.ID, err)
			}
			c.PublishedAt = t.UTC()
		}

		if c.Label, err = model.ParseLabel(label); err != nil {
			return nil, fmt.Errorf("comment %s: %w", c.ID, err)
		}

		comments = append(comments, c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate comments for session %s: %w", sessionID, err)
	}

	return comments, nil
}

// SetFilter replaces the active filter and refreshes last_seen_at. Updating a
// missing session is a no-op.
func (r *SessionRepo) SetFilter(ctx context.Context, id string, filter model.FilterSpec, seenAt time.Time) error {
	const query = `
		UPDATE sessions
		SET filter_language = ?, filter_from = ?, filter_to = ?, last_seen_at = ?
		WHERE id = ?
	`

	from, to := filterDates(filter)
	if _, err := r.db.Writer.ExecContext(ctx, query, filter.Language, from, to, seenAt.UnixNano(), id); err != nil {
		return fmt.Errorf("set filter for session %s: %w", id, err)
	}
	return nil
}

// Touch refreshes last_seen_at for a session.
func (r *SessionRepo) Touch(ctx context.Context, id string, seenAt time.Time) error {
	const query = `UPDATE sessions SET last_seen_at = ? WHERE id = ?`

	if _, err := r.db.Writer.ExecContext(ctx, query, seenAt.UnixNano(), id); err != nil {
		return fmt.Errorf("touch session %s: %w", id, err)
	}
	return nil
}

// Delete removes a session. Comments are removed by ON DELETE CASCADE.
func (r *SessionRepo) Delete(ctx context.Context, id string) error {
	const query = `DELETE FROM sessions WHERE id = ?`

	if _, err := r.db.Writer.ExecContext(ctx, query, id); err != nil {
		return fmt.Errorf("delete session %s: %w", id, err)
	}
	return nil
}

// DeleteIdleSince removes all sessions last seen strictly before cutoff.
func (r *SessionRepo) DeleteIdleSince(ctx context.Context, cutoff time.Time) (int, error) {
	const query = `DELETE FROM sessions WHERE last_seen_at < ?`

	res, err := r.db.Writer.ExecContext(ctx, query, cutoff.UnixNano())
	if err != nil {
		return 0, fmt.Errorf("delete sessions idle since %s: %w", cutoff.Format(time.RFC3339), err)
	}

	n, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("count deleted sessions: %w", err)
	}
	return int(n), nil
}

// Count returns the number of sessions currently stored.
func (r *SessionRepo) Count(ctx context.Context) (int, error) {
	var n int
	if err := r.db.Reader.QueryRowContext(ctx, `SELECT COUNT(*) FROM sessions`).Scan(&n); err != nil {
		return 0, fmt.Errorf("count sessions: %w", err)
	}
	return n, nil
}

func filterDates(f model.FilterSpec) (from, to sql.NullString) {
	if f.From != nil {
		from = sql.NullString{String: f.From.UTC().Format(dateLayout), Valid: true}
	}
	if f.To != nil {
		to = sql.NullString{String: f.To.UTC().Format(dateLayout), Valid: true}
	}
	return from, to
}

func parseDate(s sql.NullString) (*time.Time, error) {
	if !s.Valid {
		return nil, nil
	}
	t, err := time.Parse(dateLayout, s.String)
	if err != nil {
		return nil, err
	}
	return &t, nil
}

// parseTime attempts to parse a time string in multiple common formats.
func parseTime(s string) (time.Time, error) {
	formats := []string{
		time.RFC3339Nano,
		time.RFC3339,
		"2006-01-02T15:04:05Z",
		"2006-01-02 15:04:05",
		"2006-01-02T15:04:05",
	}

	for _, format := range formats {
		if t, err := time.Parse(format, s); err == nil {
			return t, nil
		}
	}

	return time.Time{}, fmt.Errorf("unrecognized time format: %s", s)
}
