package cache

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func openTestCache(t *testing.T) *Cache {
	t.Helper()
	c, err := Open(filepath.Join(t.TempDir(), "cache.db"))
	require.NoError(t, err)
	t.Cleanup(func() { c.Close() })
	return c
}

func TestCache_MissReturnsNil(t *testing.T) {
	c := openTestCache(t)

	got, err := c.Get("https://api.github.com/repos/o/r/pulls")
	require.NoError(t, err)
	assert.Nil(t, got)
}

func TestCache_PutGetRoundTrip(t *testing.T) {
	c := openTestCache(t)

	fetched := time.Now().UTC().Truncate(time.Second)
	entry := &Entry{
		URL:       "https://api.github.com/repos/o/r/pulls?page=1",
		ETag:      `"abc123"`,
		NextURL:   "https://api.github.com/repos/o/r/pulls?page=2",
		Body:      []byte(`[{"number":1}]`),
		FetchedAt: fetched,
	}
	require.NoError(t, c.Put(entry))

	got, err := c.Get(entry.URL)
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, entry.ETag, got.ETag)
	assert.Equal(t, entry.NextURL, got.NextURL)
	assert.Equal(t, entry.Body, got.Body)
	assert.True(t, got.FetchedAt.Equal(fetched))
}

func TestCache_PutReplacesExisting(t *testing.T) {
	c := openTestCache(t)

	url := "https://api.github.com/repos/o/r/issues"
	require.NoError(t, c.Put(&Entry{URL: url, ETag: `"old"`, Body: []byte("old"), FetchedAt: time.Now()}))
	require.NoError(t, c.Put(&Entry{URL: url, ETag: `"new"`, Body: []byte("new"), FetchedAt: time.Now()}))

	got, err := c.Get(url)
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, `"new"`, got.ETag)
	assert.Equal(t, []byte("new"), got.Body)

	count, _, err := c.Stats()
	require.NoError(t, err)
	assert.Equal(t, 1, count)
}

func TestCache_CorruptedTimestampIsAnError(t *testing.T) {
	c := openTestCache(t)

	_, err := c.conn.Exec(`
		INSERT INTO responses (url, etag, next_url, body, fetched_at)
		VALUES ('u', '"e"', '', X'00', 'not-a-timestamp')`)
	require.NoError(t, err)

	_, err = c.Get("u")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "fetched_at")

	_, _, err = c.Stats()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "fetched_at")
}

func TestCache_Stats(t *testing.T) {
	c := openTestCache(t)

	count, oldest, err := c.Stats()
	require.NoError(t, err)
	assert.Equal(t, 0, count)
	assert.True(t, oldest.IsZero())

	older := time.Now().UTC().Add(-time.Hour).Truncate(time.Second)
	require.NoError(t, c.Put(&Entry{URL: "a", Body: []byte("a"), FetchedAt: older}))
	require.NoError(t, c.Put(&Entry{URL: "b", Body: []byte("b"), FetchedAt: time.Now()}))

	count, oldest, err = c.Stats()
	require.NoError(t, err)
	assert.Equal(t, 2, count)
	assert.True(t, oldest.Equal(older))
}
