// Package git shells out to the git binary for the handful of local
// repository operations the generator needs: keeping a clone fresh,
// resolving refs to commits, and reading files at a commit.
package git

import (
	"errors"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"time"
)

var ErrUnknownRevision = errors.New("unknown revision")

// Repo is a local clone of a GitHub repository.
type Repo struct {
	Path string
}

// CloneIfAbsent ensures a clone of github.com/<name> exists under the
// workspace directory and returns it. Existing clones are refreshed with a
// tag-following fetch so new releases resolve.
func CloneIfAbsent(workspace, name string) (Repo, error) {
	path := filepath.Join(workspace, filepath.FromSlash(name))

	if _, err := os.Stat(filepath.Join(path, ".git")); err == nil {
		repo := Repo{Path: path}
		if err := repo.fetch(); err != nil {
			return Repo{}, err
		}
		return repo, nil
	}

	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return Repo{}, fmt.Errorf("creating workspace: %w", err)
	}

	url := "https://github.com/" + name + ".git"
	cmd := exec.Command("git", "clone", "--quiet", url, path)
	if out, err := cmd.CombinedOutput(); err != nil {
		return Repo{}, fmt.Errorf("cloning %s: %s", name, strings.TrimSpace(string(out)))
	}

	return Repo{Path: path}, nil
}

func (r Repo) fetch() error {
	cmd := exec.Command("git", "-C", r.Path, "fetch", "--quiet", "--tags", "origin")
	if out, err := cmd.CombinedOutput(); err != nil {
		return fmt.Errorf("fetching %s: %s", r.Path, strings.TrimSpace(string(out)))
	}
	return nil
}

// ResolveCommit maps a ref (tag, branch, HEAD, abbreviated hash) to a full
// commit hash.
func (r Repo) ResolveCommit(ref string) (string, error) {
	cmd := exec.Command("git", "-C", r.Path, "rev-parse", "--verify", ref+"^{commit}")
	out, err := cmd.Output()
	if err != nil {
		return "", fmt.Errorf("%w: %s in %s", ErrUnknownRevision, ref, r.Path)
	}
	return strings.TrimSpace(string(out)), nil
}

// CommitTime returns the committer timestamp of a commit.
func (r Repo) CommitTime(commit string) (time.Time, error) {
	cmd := exec.Command("git", "-C", r.Path, "show", "-s", "--format=%cI", commit)
	out, err := cmd.Output()
	if err != nil {
		return time.Time{}, fmt.Errorf("reading commit time of %s: %w", commit, err)
	}

	ts, err := time.Parse(time.RFC3339, strings.TrimSpace(string(out)))
	if err != nil {
		return time.Time{}, fmt.Errorf("parsing commit time of %s: %w", commit, err)
	}
	return ts, nil
}

// FileAtCommit returns the contents of a file as of a commit.
func (r Repo) FileAtCommit(commit, path string) ([]byte, error) {
	cmd := exec.Command("git", "-C", r.Path, "show", commit+":"+path)
	out, err := cmd.Output()
	if err != nil {
		return nil, fmt.Errorf("reading %s at %s: %w", path, commit, err)
	}
	return out, nil
}
