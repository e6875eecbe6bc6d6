// Package cache stores raw GitHub API responses keyed by request URL so that
// repeated runs can revalidate with ETags instead of burning rate limit.
// It never holds domain state; deleting it only costs extra requests.
package cache

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "github.com/mattn/go-sqlite3"
)

type Cache struct {
	conn *sql.DB
	path string
}

// Entry is one cached response. NextURL preserves the pagination Link target
// so a 304 revalidation can keep walking pages.
type Entry struct {
	URL       string
	ETag      string
	NextURL   string
	Body      []byte
	FetchedAt time.Time
}

func Open(path string) (*Cache, error) {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("creating cache directory: %w", err)
	}

	conn, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("opening cache: %w", err)
	}

	c := &Cache{
		conn: conn,
		path: path,
	}

	if err := initSchema(c); err != nil {
		conn.Close()
		return nil, fmt.Errorf("initializing cache schema: %w", err)
	}

	return c, nil
}

func (c *Cache) Close() error {
	return c.conn.Close()
}

func (c *Cache) Path() string {
	return c.path
}

// Get returns the cached entry for a URL, or nil on a miss.
func (c *Cache) Get(url string) (*Entry, error) {
	row := c.conn.QueryRow(`
		SELECT url, etag, next_url, body, fetched_at
		FROM responses WHERE url = ?`, url)

	var e Entry
	var fetchedAt string

	err := row.Scan(&e.URL, &e.ETag, &e.NextURL, &e.Body, &fetchedAt)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("scanning cached response: %w", err)
	}

	e.FetchedAt, err = time.Parse(time.RFC3339, fetchedAt)
	if err != nil {
		return nil, fmt.Errorf("parsing fetched_at for %s: %w", e.URL, err)
	}
	return &e, nil
}

func (c *Cache) Put(e *Entry) error {
	_, err := c.conn.Exec(`
		INSERT INTO responses (url, etag, next_url, body, fetched_at)
		VALUES (?, ?, ?, ?, ?)
		ON CONFLICT(url) DO UPDATE SET
		    etag = excluded.etag,
		    next_url = excluded.next_url,
		    body = excluded.body,
		    fetched_at = excluded.fetched_at`,
		e.URL, e.ETag, e.NextURL, e.Body, e.FetchedAt.Format(time.RFC3339))
	if err != nil {
		return fmt.Errorf("storing cached response: %w", err)
	}
	return nil
}

// Stats reports the number of cached responses and the oldest fetch time.
func (c *Cache) Stats() (int, time.Time, error) {
	row := c.conn.QueryRow(`SELECT COUNT(*), COALESCE(MIN(fetched_at), '') FROM responses`)

	var count int
	var oldest string
	if err := row.Scan(&count, &oldest); err != nil {
		return 0, time.Time{}, fmt.Errorf("reading cache stats: %w", err)
	}

	var oldestAt time.Time
	if oldest != "" {
		t, err := time.Parse(time.RFC3339, oldest)
		if err != nil {
			return 0, time.Time{}, fmt.Errorf("parsing oldest fetched_at: %w", err)
		}
		oldestAt = t
	}
	return count, oldestAt, nil
}
