package cache

const schema = `
CREATE TABLE IF NOT EXISTS responses (
    url TEXT PRIMARY KEY,
    etag TEXT NOT NULL,
    next_url TEXT NOT NULL,
    body BLOB NOT NULL,
    fetched_at TEXT NOT NULL
);
`

func initSchema(c *Cache) error {
	_, err := c.conn.Exec(schema)
	return err
}
