package github

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var base = time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)

func at(offset time.Duration) time.Time {
	return base.Add(offset)
}

func atp(offset time.Duration) *time.Time {
	t := at(offset)
	return &t
}

// pageServer serves fixture pages for a collection endpoint, wiring Link
// headers between consecutive pages and counting requests per page.
type pageServer struct {
	srv      *httptest.Server
	pages    []any
	requests map[int]int
}

func newPageServer(t *testing.T, path string, pages ...any) *pageServer {
	t.Helper()

	ps := &pageServer{
		pages:    pages,
		requests: map[int]int{},
	}

	mux := http.NewServeMux()
	mux.HandleFunc(path, func(w http.ResponseWriter, r *http.Request) {
		page := 1
		if p := r.URL.Query().Get("page"); p != "" {
			fmt.Sscanf(p, "%d", &page)
		}
		if page > len(ps.pages) {
			t.Errorf("request for page %d beyond fixture", page)
			http.NotFound(w, r)
			return
		}
		ps.requests[page]++

		if page < len(ps.pages) {
			next := fmt.Sprintf("%s%s?page=%d", ps.srv.URL, path, page+1)
			w.Header().Set("Link", fmt.Sprintf(`<%s>; rel="next"`, next))
		}

		if err := json.NewEncoder(w).Encode(ps.pages[page-1]); err != nil {
			t.Errorf("encoding page %d: %v", page, err)
		}
	})

	ps.srv = httptest.NewServer(mux)
	t.Cleanup(ps.srv.Close)
	return ps
}

func (ps *pageServer) client() *Client {
	c := New("", nil)
	c.baseURL = ps.srv.URL
	return c
}

func prNumbers(prs []PullRequest) []int {
	var nums []int
	for _, pr := range prs {
		nums = append(nums, pr.Number)
	}
	return nums
}

func issueNumbers(issues []Issue) []int {
	var nums []int
	for _, issue := range issues {
		nums = append(nums, issue.Number)
	}
	return nums
}

func TestMergedPullRequests_StopsAtLowerBound(t *testing.T) {
	ps := newPageServer(t, "/repos/o/r/pulls",
		[]PullRequest{
			{Number: 5, Title: "Five", CreatedAt: at(4 * time.Hour), MergedAt: atp(5 * time.Hour)},
			{Number: 4, Title: "Four", CreatedAt: at(3 * time.Hour), MergedAt: atp(3*time.Hour + 30*time.Minute)},
		},
		[]PullRequest{
			{Number: 2, Title: "Two", CreatedAt: at(time.Hour), MergedAt: atp(90 * time.Minute)},
			{Number: 1, Title: "One", CreatedAt: at(-time.Hour), MergedAt: atp(2 * time.Hour)},
		},
		[]PullRequest{
			{Number: 0, Title: "Never fetched", CreatedAt: at(-2 * time.Hour), MergedAt: atp(-time.Hour)},
		},
	)

	prs, err := ps.client().MergedPullRequests(context.Background(), "o/r", base, time.Time{})
	require.NoError(t, err)

	// PR 1 was created before the lower bound: the walk stops there even
	// though its merge time is inside the window, and page 3 is never
	// requested.
	assert.Equal(t, []int{5, 4, 2}, prNumbers(prs))
	assert.Equal(t, 0, ps.requests[3])
}

func TestMergedPullRequests_UpperBound(t *testing.T) {
	ps := newPageServer(t, "/repos/o/r/pulls",
		[]PullRequest{
			{Number: 3, Title: "Merged late", CreatedAt: at(2 * time.Hour), MergedAt: atp(10 * time.Hour)},
			{Number: 2, Title: "In window", CreatedAt: at(time.Hour), MergedAt: atp(2 * time.Hour)},
		},
	)

	prs, err := ps.client().MergedPullRequests(context.Background(), "o/r", base, at(5*time.Hour))
	require.NoError(t, err)
	assert.Equal(t, []int{2}, prNumbers(prs))
}

func TestMergedPullRequests_BoundsAreInclusive(t *testing.T) {
	upper := at(6 * time.Hour)
	ps := newPageServer(t, "/repos/o/r/pulls",
		[]PullRequest{
			{Number: 3, Title: "Merged at upper bound", CreatedAt: at(2 * time.Hour), MergedAt: &upper},
			{Number: 2, Title: "Merged at lower bound", CreatedAt: at(time.Hour), MergedAt: atp(0)},
		},
	)

	prs, err := ps.client().MergedPullRequests(context.Background(), "o/r", base, upper)
	require.NoError(t, err)

	// The window is closed on both ends: merges landing exactly on a
	// release timestamp belong to that release's notes.
	assert.Equal(t, []int{3, 2}, prNumbers(prs))
}

func TestMergedPullRequests_SkipsUnmergedAndExcluded(t *testing.T) {
	ps := newPageServer(t, "/repos/o/r/pulls",
		[]PullRequest{
			{Number: 4, Title: "Good", CreatedAt: at(3 * time.Hour), MergedAt: atp(4 * time.Hour)},
			{Number: 3, Title: "[no-release-notes] Bump deps", CreatedAt: at(2 * time.Hour), MergedAt: atp(3 * time.Hour)},
			{Number: 2, Title: "Closed unmerged", CreatedAt: at(time.Hour), MergedAt: nil},
		},
	)

	prs, err := ps.client().MergedPullRequests(context.Background(), "o/r", base, time.Time{})
	require.NoError(t, err)
	assert.Equal(t, []int{4}, prNumbers(prs))
}

func TestMergedPullRequests_PreservesInputOrder(t *testing.T) {
	ps := newPageServer(t, "/repos/o/r/pulls",
		[]PullRequest{
			{Number: 9, CreatedAt: at(5 * time.Hour), MergedAt: atp(5 * time.Hour)},
			{Number: 7, CreatedAt: at(4 * time.Hour), MergedAt: atp(6 * time.Hour)},
		},
		[]PullRequest{
			{Number: 6, CreatedAt: at(3 * time.Hour), MergedAt: atp(3 * time.Hour)},
			{Number: 5, CreatedAt: at(2 * time.Hour), MergedAt: atp(2 * time.Hour)},
		},
	)

	prs, err := ps.client().MergedPullRequests(context.Background(), "o/r", base, time.Time{})
	require.NoError(t, err)
	assert.Equal(t, []int{9, 7, 6, 5}, prNumbers(prs))
}

func TestMergedPullRequests_EmptyPageEndsWalk(t *testing.T) {
	ps := newPageServer(t, "/repos/o/r/pulls",
		[]PullRequest{},
		[]PullRequest{
			{Number: 1, CreatedAt: at(time.Hour), MergedAt: atp(time.Hour)},
		},
	)

	prs, err := ps.client().MergedPullRequests(context.Background(), "o/r", base, time.Time{})
	require.NoError(t, err)
	assert.Empty(t, prs)
	assert.Equal(t, 0, ps.requests[2])
}

func TestClosedIssues_ExcludesCrossListedPullRequests(t *testing.T) {
	ps := newPageServer(t, "/repos/o/r/issues",
		[]Issue{
			{Number: 12, Title: "Real issue", HTMLURL: "https://github.com/o/r/issues/12",
				CreatedAt: at(3 * time.Hour), ClosedAt: atp(4 * time.Hour)},
			{Number: 11, Title: "Actually a PR", HTMLURL: "https://github.com/o/r/pull/11",
				CreatedAt: at(2 * time.Hour), ClosedAt: atp(3 * time.Hour)},
			{Number: 10, Title: "Another issue", HTMLURL: "https://github.com/o/r/issues/10",
				CreatedAt: at(time.Hour), ClosedAt: atp(2 * time.Hour)},
		},
	)

	issues, err := ps.client().ClosedIssues(context.Background(), "o/r", base, time.Time{})
	require.NoError(t, err)
	assert.Equal(t, []int{12, 10}, issueNumbers(issues))
}

func TestClosedIssues_WindowAndMarker(t *testing.T) {
	ps := newPageServer(t, "/repos/o/r/issues",
		[]Issue{
			{Number: 5, Title: "[no-release-notes] internal", HTMLURL: "https://github.com/o/r/issues/5",
				CreatedAt: at(4 * time.Hour), ClosedAt: atp(5 * time.Hour)},
			{Number: 4, Title: "Closed too late", HTMLURL: "https://github.com/o/r/issues/4",
				CreatedAt: at(3 * time.Hour), ClosedAt: atp(20 * time.Hour)},
			{Number: 3, Title: "Still open", HTMLURL: "https://github.com/o/r/issues/3",
				CreatedAt: at(2 * time.Hour), ClosedAt: nil},
			{Number: 2, Title: "Kept", HTMLURL: "https://github.com/o/r/issues/2",
				CreatedAt: at(time.Hour), ClosedAt: atp(2 * time.Hour)},
		},
	)

	issues, err := ps.client().ClosedIssues(context.Background(), "o/r", base, at(10*time.Hour))
	require.NoError(t, err)
	assert.Equal(t, []int{2}, issueNumbers(issues))
}
