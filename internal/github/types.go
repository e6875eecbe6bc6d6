package github

import (
	"strings"
	"time"
)

// Release is a published release as returned by the releases endpoint,
// ordered newest-first by creation time.
type Release struct {
	TagName   string    `json:"tag_name"`
	Name      string    `json:"name"`
	Draft     bool      `json:"draft"`
	HTMLURL   string    `json:"html_url"`
	CreatedAt time.Time `json:"created_at"`
}

// PullRequest is a snapshot of a closed pull request. MergedAt is nil for
// PRs that were closed without merging.
type PullRequest struct {
	Number    int        `json:"number"`
	HTMLURL   string     `json:"html_url"`
	Title     string     `json:"title"`
	Body      string     `json:"body"`
	CreatedAt time.Time  `json:"created_at"`
	MergedAt  *time.Time `json:"merged_at"`
}

// Issue is a snapshot of a closed issue. The issues endpoint cross-lists
// pull requests; IsPullRequest distinguishes them.
type Issue struct {
	Number    int        `json:"number"`
	HTMLURL   string     `json:"html_url"`
	Title     string     `json:"title"`
	Body      string     `json:"body"`
	CreatedAt time.Time  `json:"created_at"`
	ClosedAt  *time.Time `json:"closed_at"`
}

// IsPullRequest reports whether the issue is actually a pull request
// cross-listed by the issues endpoint.
func (i Issue) IsPullRequest() bool {
	return strings.Contains(i.HTMLURL, "/pull/")
}

// ExclusionMarker in a PR or issue title keeps the item out of release notes.
const ExclusionMarker = "[no-release-notes]"

// Excluded reports whether a title carries the exclusion marker.
func Excluded(title string) bool {
	return strings.Contains(title, ExclusionMarker)
}
