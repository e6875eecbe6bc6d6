// Package notes aggregates the merged pull requests and closed issues that
// land between two releases, including those of pinned dependencies whose
// version moved across the same window.
package notes

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/dolthub/release-notes-generator/internal/git"
	"github.com/dolthub/release-notes-generator/internal/github"
)

var ErrNoReleases = errors.New("repository has no releases")
var ErrReleaseNotFound = errors.New("release not found")
var ErrOldestRelease = errors.New("release is the oldest; no earlier release to diff against")

// Fetcher is the slice of the GitHub client the generator needs.
type Fetcher interface {
	Releases(ctx context.Context, repo string) ([]github.Release, error)
	MergedPullRequests(ctx context.Context, repo string, from, to time.Time) ([]github.PullRequest, error)
	ClosedIssues(ctx context.Context, repo string, from, to time.Time) ([]github.Issue, error)
}

// Repository is the slice of a local clone the generator needs.
type Repository interface {
	ResolveCommit(ref string) (string, error)
	CommitTime(commit string) (time.Time, error)
	FileAtCommit(commit, path string) ([]byte, error)
}

// Cloner materializes a local clone of github.com/<name> under the
// workspace directory.
type Cloner func(workspace, name string) (Repository, error)

// CloneRepo is the production Cloner backed by the git binary.
func CloneRepo(workspace, name string) (Repository, error) {
	repo, err := git.CloneIfAbsent(workspace, name)
	if err != nil {
		return nil, err
	}
	return repo, nil
}

type Generator struct {
	Fetcher      Fetcher
	Clone        Cloner
	Workspace    string
	Dependencies []string
}

// window bounds one repo's stretch of history.
type window struct {
	fromCommit string
	toCommit   string
	fromTime   time.Time
	toTime     time.Time // zero means unbounded (HEAD window)
}

type RepoPullRequests struct {
	Repo  string
	Items []github.PullRequest
}

type RepoIssues struct {
	Repo  string
	Items []github.Issue
}

// Report holds everything the renderer needs, main repo first, then
// changed dependencies in configured order.
type Report struct {
	Repo         string
	Tag          string
	PullRequests []RepoPullRequests
	Issues       []RepoIssues
}

// Generate builds the release-notes report for a repo. With a tag, the
// window runs from the previous release to that release; without one, from
// the latest release to HEAD.
func (g *Generator) Generate(ctx context.Context, repo, tag string) (*Report, error) {
	clone, err := g.Clone(g.Workspace, repo)
	if err != nil {
		return nil, err
	}

	win, err := g.locateWindow(ctx, clone, repo, tag)
	if err != nil {
		return nil, err
	}

	slog.Info("release window located",
		"repo", repo,
		"from", win.fromTime.Format(time.RFC3339),
		"to", formatUpper(win.toTime))

	report := &Report{Repo: repo, Tag: tag}

	prs, err := g.Fetcher.MergedPullRequests(ctx, repo, win.fromTime, win.toTime)
	if err != nil {
		return nil, err
	}
	report.PullRequests = append(report.PullRequests, RepoPullRequests{Repo: repo, Items: prs})

	issues, err := g.Fetcher.ClosedIssues(ctx, repo, win.fromTime, win.toTime)
	if err != nil {
		return nil, err
	}
	report.Issues = append(report.Issues, RepoIssues{Repo: repo, Items: issues})

	for _, dep := range g.Dependencies {
		depWin, err := g.dependencyWindow(clone, win, dep)
		if err != nil {
			return nil, err
		}
		if depWin == nil {
			slog.Info("dependency unchanged", "dependency", dep)
			continue
		}

		slog.Info("dependency changed",
			"dependency", dep,
			"from", depWin.fromCommit,
			"to", depWin.toCommit)

		depPRs, err := g.Fetcher.MergedPullRequests(ctx, dep, depWin.fromTime, depWin.toTime)
		if err != nil {
			return nil, err
		}
		report.PullRequests = append(report.PullRequests, RepoPullRequests{Repo: dep, Items: depPRs})

		depIssues, err := g.Fetcher.ClosedIssues(ctx, dep, depWin.fromTime, depWin.toTime)
		if err != nil {
			return nil, err
		}
		report.Issues = append(report.Issues, RepoIssues{Repo: dep, Items: depIssues})
	}

	return report, nil
}

// locateWindow finds the two releases (or release and HEAD) bounding the
// stretch of history the notes cover.
func (g *Generator) locateWindow(ctx context.Context, clone Repository, repo, tag string) (window, error) {
	releases, err := g.Fetcher.Releases(ctx, repo)
	if err != nil {
		return window{}, err
	}
	if len(releases) == 0 {
		return window{}, fmt.Errorf("%w: %s", ErrNoReleases, repo)
	}

	if tag == "" {
		latest := releases[0]
		fromCommit, err := clone.ResolveCommit(latest.TagName)
		if err != nil {
			return window{}, err
		}
		toCommit, err := clone.ResolveCommit("HEAD")
		if err != nil {
			return window{}, err
		}
		return window{
			fromCommit: fromCommit,
			toCommit:   toCommit,
			fromTime:   latest.CreatedAt,
		}, nil
	}

	for i, rel := range releases {
		if rel.TagName != tag {
			continue
		}
		if i == len(releases)-1 {
			return window{}, fmt.Errorf("%w: %s", ErrOldestRelease, tag)
		}
		prev := releases[i+1]

		fromCommit, err := clone.ResolveCommit(prev.TagName)
		if err != nil {
			return window{}, err
		}
		toCommit, err := clone.ResolveCommit(rel.TagName)
		if err != nil {
			return window{}, err
		}
		return window{
			fromCommit: fromCommit,
			toCommit:   toCommit,
			fromTime:   prev.CreatedAt,
			toTime:     rel.CreatedAt,
		}, nil
	}

	return window{}, fmt.Errorf("%w: %s in %s", ErrReleaseNotFound, tag, repo)
}

func formatUpper(t time.Time) string {
	if t.IsZero() {
		return "now"
	}
	return t.Format(time.RFC3339)
}
