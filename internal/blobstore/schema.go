// Package blobstore provides SQLite-backed storage for attachment documents.
package blobstore

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"
	_ "github.com/mattn/go-sqlite3"
)

const schemaSQL = `
CREATE TABLE IF NOT EXISTS attachments (
	id          TEXT PRIMARY KEY,
	name        TEXT NOT NULL DEFAULT '',
	filename    TEXT NOT NULL DEFAULT '',
	mime        TEXT NOT NULL DEFAULT '',
	size        INTEGER NOT NULL DEFAULT 0,
	uploaded_at INTEGER NOT NULL DEFAULT 0,
	content     BLOB NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_attachments_uploaded ON attachments(uploaded_at);
`

// DB wraps a sql.DB with attachment operations.
type DB struct {
	conn  *sql.DB
	locks *idLocks
	now   func() time.Time
	newID func() string
}

// Open opens (or creates) the SQLite database and applies the schema.
func Open(dsn string) (*DB, error) {
	if dsn == "" {
		return nil, fmt.Errorf("blobstore: empty dsn")
	}
	conn, err := sql.Open("sqlite3", dsn+"?_journal_mode=WAL&_busy_timeout=5000")
	if err != nil {
		return nil, fmt.Errorf("blobstore: open db: %w", err)
	}
	if err := conn.Ping(); err != nil {
		conn.Close()
		return nil, fmt.Errorf("blobstore: ping: %w", err)
	}
	if _, err := conn.Exec(schemaSQL); err != nil {
		conn.Close()
		return nil, fmt.Errorf("blobstore: apply schema: %w", err)
	}
	return &DB{
		conn:  conn,
		locks: newIDLocks(),
		now:   time.Now,
		newID: uuid.NewString,
	}, nil
}

// Close closes the underlying database connection.
func (db *DB) Close() error {
	return db.conn.Close()
}
