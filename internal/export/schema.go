// Package export writes run snapshots to a SQLite file for offline inspection.
// Nothing in cardlinks reads these files back into a registry.
package export

import (
	"database/sql"
	"fmt"

	_ "github.com/mattn/go-sqlite3"
)

const schemaSQL = `
CREATE TABLE IF NOT EXISTS runs (
	name        TEXT PRIMARY KEY,
	failures    INTEGER NOT NULL DEFAULT 0,
	exported_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
);

CREATE TABLE IF NOT EXISTS cards (
	run      TEXT NOT NULL REFERENCES runs(name) ON DELETE CASCADE,
	id       TEXT NOT NULL,
	number   TEXT NOT NULL,
	issuer   TEXT NOT NULL,
	state    TEXT NOT NULL DEFAULT '',
	occupied INTEGER NOT NULL DEFAULT 0,
	PRIMARY KEY (run, id)
);

CREATE TABLE IF NOT EXISTS card_links (
	run             TEXT NOT NULL REFERENCES runs(name) ON DELETE CASCADE,
	group_id        TEXT NOT NULL,
	position        INTEGER NOT NULL,
	primary_card_id TEXT NOT NULL,
	linked_card_id  TEXT NOT NULL,
	reason          TEXT NOT NULL DEFAULT '',
	PRIMARY KEY (run, group_id, position)
);

CREATE INDEX IF NOT EXISTS idx_card_links_primary ON card_links(run, primary_card_id);
`

// DB wraps a sql.DB with export operations.
type DB struct {
	conn *sql.DB
}

// Open opens (or creates) the export database and applies the schema.
func Open(dsn string) (*DB, error) {
	conn, err := sql.Open("sqlite3", dsn+"?_journal_mode=WAL&_busy_timeout=5000&_foreign_keys=on")
	if err != nil {
		return nil, fmt.Errorf("export: open db: %w", err)
	}
	if err := conn.Ping(); err != nil {
		conn.Close()
		return nil, fmt.Errorf("export: ping: %w", err)
	}
	if _, err := conn.Exec(schemaSQL); err != nil {
		conn.Close()
		return nil, fmt.Errorf("export: apply schema: %w", err)
	}
	return &DB{conn: conn}, nil
}

// Close closes the underlying database connection.
func (db *DB) Close() error {
	return db.conn.Close()
}
