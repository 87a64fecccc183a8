// Package catalog records rendered charts in SQLite so that unchanged inputs
// can be skipped and results can be browsed.
package catalog

import (
	"database/sql"
	"fmt"

	_ "github.com/mattn/go-sqlite3"
)

const schemaSQL = `
CREATE TABLE IF NOT EXISTS charts (
	source      TEXT PRIMARY KEY,
	profile     TEXT NOT NULL DEFAULT '',
	output      TEXT NOT NULL DEFAULT '',
	checksum    TEXT NOT NULL DEFAULT '',
	row_count   INTEGER NOT NULL DEFAULT 0,
	dropped     INTEGER NOT NULL DEFAULT 0,
	status      TEXT NOT NULL DEFAULT '',
	error       TEXT NOT NULL DEFAULT '',
	rendered_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
);

CREATE TABLE IF NOT EXISTS warnings (
	source  TEXT NOT NULL,
	seq     INTEGER NOT NULL,
	message TEXT NOT NULL,
	UNIQUE(source, seq)
);

CREATE INDEX IF NOT EXISTS idx_charts_profile ON charts(profile);
CREATE INDEX IF NOT EXISTS idx_warnings_source ON warnings(source);
`

// DB wraps a sql.DB with catalog operations.
type DB struct {
	conn *sql.DB
}

// Open opens (or creates) the SQLite database and applies the schema.
func Open(dsn string) (*DB, error) {
	conn, err := sql.Open("sqlite3", dsn+"?_journal_mode=WAL&_busy_timeout=5000&_foreign_keys=on")
	if err != nil {
		return nil, fmt.Errorf("catalog: open db: %w", err)
	}
	if err := conn.Ping(); err != nil {
		conn.Close()
		return nil, fmt.Errorf("catalog: ping: %w", err)
	}
	if _, err := conn.Exec(schemaSQL); err != nil {
		conn.Close()
		return nil, fmt.Errorf("catalog: apply schema: %w", err)
	}
	return &DB{conn: conn}, nil
}

// Close closes the underlying database connection.
func (db *DB) Close() error {
	return db.conn.Close()
}
