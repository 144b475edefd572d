package database

import (
	"database/sql"
	"fmt"
)

const schema = `
CREATE TABLE IF NOT EXISTS users (
	id            TEXT PRIMARY KEY,
	username      TEXT NOT NULL UNIQUE,
	email         TEXT NOT NULL UNIQUE,
	password_hash TEXT NOT NULL,
	created_at    TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP
);

CREATE TABLE IF NOT EXISTS game_stats (
	user_id     TEXT NOT NULL REFERENCES users(id) ON DELETE CASCADE,
	game_type   TEXT NOT NULL,
	played      INTEGER NOT NULL DEFAULT 0,
	won         INTEGER NOT NULL DEFAULT 0,
	PRIMARY KEY (user_id, game_type)
);

CREATE TABLE IF NOT EXISTS search_cache (
	cache_key  TEXT PRIMARY KEY,
	payload    TEXT NOT NULL,
	expires_at TIMESTAMP NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_search_cache_expires ON search_cache(expires_at);
`

func Migrate(db *sql.DB) error {
	if _, err := db.Exec(schema); err != nil {
		return fmt.Errorf("apply schema: %w", err)
	}
	return nil
}
