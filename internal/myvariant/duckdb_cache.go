package myvariant

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	_ "github.com/marcboeker/go-duckdb"
)

// DuckDBCache persists MyVariant responses across runs in a DuckDB file,
// keyed by HGVS query string.
type DuckDBCache struct {
	db *sql.DB
}

// OpenDuckDBCache opens or creates the response cache at the given path.
// Use an empty string for an in-memory cache.
func OpenDuckDBCache(path string) (*DuckDBCache, error) {
	if path != "" {
		if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
			return nil, fmt.Errorf("create cache directory: %w", err)
		}
	}

	db, err := sql.Open("duckdb", path)
	if err != nil {
		return nil, fmt.Errorf("open cache: %w", err)
	}

	_, err = db.Exec(`CREATE TABLE IF NOT EXISTS myvariant_cache (
		key VARCHAR PRIMARY KEY,
		payload VARCHAR
	)`)
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("ensure cache schema: %w", err)
	}

	return &DuckDBCache{db: db}, nil
}

// Close closes the cache database.
func (c *DuckDBCache) Close() error {
	return c.db.Close()
}

func (c *DuckDBCache) Get(key string) (json.RawMessage, bool, error) {
	var payload string
	err := c.db.QueryRow(`SELECT payload FROM myvariant_cache WHERE key = ?`, key).Scan(&payload)
	if err == sql.ErrNoRows {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("query cache: %w", err)
	}
	return json.RawMessage(payload), true, nil
}

func (c *DuckDBCache) Put(key string, payload json.RawMessage) error {
	_, err := c.db.Exec(
		`INSERT OR REPLACE INTO myvariant_cache VALUES (?, ?)`,
		key, string(payload),
	)
	if err != nil {
		return fmt.Errorf("store cache entry: %w", err)
	}
	return nil
}
