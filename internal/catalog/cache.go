package catalog

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"
)

// Cache is a small sqlite-backed TTL cache for autocomplete payloads.
// Jikan rate-limits hard, and autocomplete queries repeat constantly, so
// caching them survives process restarts on purpose (game sessions do not).
type Cache struct {
	DB  *sql.DB
	TTL time.Duration
}

func NewCache(db *sql.DB) *Cache {
	return &Cache{DB: db, TTL: 5 * time.Minute}
}

// GetSearch returns a cached autocomplete payload, if fresh.
func (c *Cache) GetSearch(ctx context.Context, key string) ([]SearchResult, bool) {
	if c == nil || c.DB == nil {
		return nil, false
	}

	var payload string
	err := c.DB.QueryRowContext(ctx, `
		SELECT payload FROM search_cache
		WHERE cache_key = ? AND expires_at > ?
	`, key, time.Now().UTC()).Scan(&payload)
	if err != nil {
		return nil, false
	}

	var results []SearchResult
	if err := json.Unmarshal([]byte(payload), &results); err != nil {
		return nil, false
	}
	return results, true
}

// PutSearch stores an autocomplete payload and drops expired rows.
func (c *Cache) PutSearch(ctx context.Context, key string, results []SearchResult) error {
	if c == nil || c.DB == nil {
		return nil
	}

	payload, err := json.Marshal(results)
	if err != nil {
		return fmt.Errorf("cache: marshal: %w", err)
	}

	now := time.Now().UTC()
	_, err = c.DB.ExecContext(ctx, `
		INSERT INTO search_cache (cache_key, payload, expires_at)
		VALUES (?, ?, ?)
		ON CONFLICT(cache_key) DO UPDATE SET payload = excluded.payload, expires_at = excluded.expires_at
	`, key, string(payload), now.Add(c.TTL))
	if err != nil {
		return fmt.Errorf("cache: put: %w", err)
	}

	_, _ = c.DB.ExecContext(ctx, `DELETE FROM search_cache WHERE expires_at <= ?`, now)
	return nil
}
