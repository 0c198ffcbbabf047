package sqlite

import (
	"database/sql"
	"fmt"
	"net/url"

	_ "modernc.org/sqlite"
)

// DB provides dual reader/writer connections to a named in-memory database.
// The writer connection is limited to a single connection so writes are serialized.
// The reader connection pool allows up to 4 concurrent readers.
// The database exists only while at least one connection is open.
type DB struct {
	Writer *sql.DB
	Reader *sql.DB
	name   string
}

// memoryDSN builds a shared-cache in-memory DSN. Readers use read_uncommitted
// so they do not take shared-cache table locks that would block the writer.
func memoryDSN(name string) string {
	return fmt.Sprintf(
		"file:%s?mode=memory&cache=shared&_pragma=busy_timeout(5000)&_pragma=foreign_keys(ON)&_pragma=read_uncommitted(1)&_pragma=cache_size(-64000)",
		url.PathEscape(name),
	)
}

// NewDB opens a named shared in-memory database. Every DB opened with the
// same name in one process sees the same data.
func NewDB(name string) (*DB, error) {
	dsn := memoryDSN(name)

	writer, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open writer: %w", err)
	}
	writer.SetMaxOpenConns(1)
	writer.SetMaxIdleConns(1)
	writer.SetConnMaxLifetime(0)

	if err := writer.Ping(); err != nil {
		writer.Close()
		return nil, fmt.Errorf("ping writer: %w", err)
	}

	reader, err := sql.Open("sqlite", dsn)
	if err != nil {
		writer.Close()
		return nil, fmt.Errorf("open reader: %w", err)
	}
	reader.SetMaxOpenConns(4)

	if err := reader.Ping(); err != nil {
		reader.Close()
		writer.Close()
		return nil, fmt.Errorf("ping reader: %w", err)
	}

	return &DB{
		Writer: writer,
		Reader: reader,
		name:   name,
	}, nil
}

// Name returns the in-memory database name.
func (db *DB) Name() string {
	return db.name
}

// Close closes both reader and writer connections. Returns the first error encountered.
// Closing the last connection discards the database.
func (db *DB) Close() error {
	var firstErr error

	if err := db.Reader.Close(); err != nil {
		firstErr = fmt.Errorf("close reader: %w", err)
	}

	if err := db.Writer.Close(); err != nil && firstErr == nil {
		firstErr = fmt.Errorf("close writer: %w", err)
	}

	return firstErr
}
