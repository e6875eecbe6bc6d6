package github

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/dolthub/release-notes-generator/internal/cache"
)

const defaultBaseURL = "https://api.github.com"

// Client talks to the GitHub REST API. All calls are sequential and
// blocking; any response other than a 2xx (or a cache-served 304) is fatal
// to the caller.
type Client struct {
	http      *http.Client
	baseURL   string
	token     string
	userAgent string
	responses *cache.Cache
}

// New creates a GitHub client. The response cache may be nil, in which case
// every request goes to the network.
func New(token string, responses *cache.Cache) *Client {
	return &Client{
		http: &http.Client{
			Timeout: 30 * time.Second,
		},
		baseURL:   defaultBaseURL,
		token:     token,
		userAgent: "release-notes-generator",
		responses: responses,
	}
}

// get fetches a URL and returns the body plus the rel="next" pagination
// target ("" on the last page). Cached entries are revalidated with
// If-None-Match; a 304 serves the cached body and next link.
func (c *Client) get(ctx context.Context, url string) ([]byte, string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, "", fmt.Errorf("creating request: %w", err)
	}

	req.Header.Set("Accept", "application/vnd.github+json")
	req.Header.Set("User-Agent", c.userAgent)
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	var cached *cache.Entry
	if c.responses != nil {
		cached, err = c.responses.Get(url)
		if err != nil {
			return nil, "", err
		}
		if cached != nil && cached.ETag != "" {
			req.Header.Set("If-None-Match", cached.ETag)
		}
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, "", fmt.Errorf("GET %s: %w", url, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotModified && cached != nil {
		slog.Debug("cache hit", "url", url)
		return cached.Body, cached.NextURL, nil
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, "", fmt.Errorf("reading response for %s: %w", url, err)
	}

	if resp.StatusCode != http.StatusOK {
		return nil, "", fmt.Errorf("github api error for %s: %d %s", url, resp.StatusCode, strings.TrimSpace(string(body)))
	}

	next := parseNextLink(resp.Header.Get("Link"))

	if c.responses != nil {
		entry := &cache.Entry{
			URL:       url,
			ETag:      resp.Header.Get("ETag"),
			NextURL:   next,
			Body:      body,
			FetchedAt: time.Now(),
		}
		if err := c.responses.Put(entry); err != nil {
			return nil, "", err
		}
	}

	return body, next, nil
}

// Releases returns every non-draft release of a repo in the API's order,
// newest creation time first.
func (c *Client) Releases(ctx context.Context, repo string) ([]Release, error) {
	url := fmt.Sprintf("%s/repos/%s/releases?per_page=100", c.baseURL, repo)

	var releases []Release
	for url != "" {
		body, next, err := c.get(ctx, url)
		if err != nil {
			return nil, err
		}

		var page []Release
		if err := json.Unmarshal(body, &page); err != nil {
			return nil, fmt.Errorf("decoding releases for %s: %w", repo, err)
		}

		for _, r := range page {
			if r.Draft {
				continue
			}
			releases = append(releases, r)
		}

		url = next
	}

	return releases, nil
}

// parseNextLink extracts the rel="next" target from a Link header, for
// example: <https://api.github.com/...&page=2>; rel="next", <...>; rel="last".
func parseNextLink(header string) string {
	for _, part := range strings.Split(header, ",") {
		section := strings.Split(part, ";")
		if len(section) < 2 {
			continue
		}
		if strings.TrimSpace(section[1]) != `rel="next"` {
			continue
		}
		url := strings.TrimSpace(section[0])
		return strings.Trim(url, "<>")
	}
	return ""
}
