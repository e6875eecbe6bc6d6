package github

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"
)

// inWindow reports whether ts falls in [from, to]. A zero "to" leaves the
// window unbounded above.
func inWindow(ts, from, to time.Time) bool {
	if ts.Before(from) {
		return false
	}
	if !to.IsZero() && ts.After(to) {
		return false
	}
	return true
}

// MergedPullRequests returns every PR merged in [from, to], in the API's
// descending-creation order. Pages are walked until an item was created
// before the lower bound; since the listing is sorted by creation time
// descending, nothing older can still qualify, so the walk stops there.
func (c *Client) MergedPullRequests(ctx context.Context, repo string, from, to time.Time) ([]PullRequest, error) {
	url := fmt.Sprintf("%s/repos/%s/pulls?state=closed&sort=created&direction=desc&per_page=100", c.baseURL, repo)

	var prs []PullRequest
	for url != "" {
		body, next, err := c.get(ctx, url)
		if err != nil {
			return nil, err
		}

		var page []PullRequest
		if err := json.Unmarshal(body, &page); err != nil {
			return nil, fmt.Errorf("decoding pull requests for %s: %w", repo, err)
		}
		if len(page) == 0 {
			break
		}

		slog.Debug("fetched pull request page", "repo", repo, "count", len(page))

		for _, pr := range page {
			if pr.CreatedAt.Before(from) {
				return prs, nil
			}
			if pr.MergedAt == nil || !inWindow(*pr.MergedAt, from, to) {
				continue
			}
			if Excluded(pr.Title) {
				continue
			}
			prs = append(prs, pr)
		}

		url = next
	}

	return prs, nil
}

// ClosedIssues returns every issue closed in [from, to], in the API's
// descending-creation order. Pull requests cross-listed by the issues
// endpoint are excluded. The pagination stop rule matches
// MergedPullRequests.
func (c *Client) ClosedIssues(ctx context.Context, repo string, from, to time.Time) ([]Issue, error) {
	url := fmt.Sprintf("%s/repos/%s/issues?state=closed&sort=created&direction=desc&per_page=100", c.baseURL, repo)

	var issues []Issue
	for url != "" {
		body, next, err := c.get(ctx, url)
		if err != nil {
			return nil, err
		}

		var page []Issue
		if err := json.Unmarshal(body, &page); err != nil {
			return nil, fmt.Errorf("decoding issues for %s: %w", repo, err)
		}
		if len(page) == 0 {
			break
		}

		slog.Debug("fetched issue page", "repo", repo, "count", len(page))

		for _, issue := range page {
			if issue.CreatedAt.Before(from) {
				return issues, nil
			}
			if issue.IsPullRequest() {
				continue
			}
			if issue.ClosedAt == nil || !inWindow(*issue.ClosedAt, from, to) {
				continue
			}
			if Excluded(issue.Title) {
				continue
			}
			issues = append(issues, issue)
		}

		url = next
	}

	return issues, nil
}
