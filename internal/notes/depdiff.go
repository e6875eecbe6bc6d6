package notes

import (
	"errors"
	"fmt"
	"strings"

	"golang.org/x/mod/modfile"
	"golang.org/x/mod/module"
)

var ErrDependencyNotPinned = errors.New("dependency not found in go.mod")

// dependencyWindow compares a dependency's pinned version at the two ends
// of the main repo's window. It returns nil when the pin did not move;
// identical pins are detected on the raw version strings, before any clone
// or network traffic happens.
func (g *Generator) dependencyWindow(clone Repository, win window, dep string) (*window, error) {
	fromPin, err := pinnedVersion(clone, win.fromCommit, dep)
	if err != nil {
		return nil, err
	}
	toPin, err := pinnedVersion(clone, win.toCommit, dep)
	if err != nil {
		return nil, err
	}

	if fromPin == toPin {
		return nil, nil
	}

	depClone, err := g.Clone(g.Workspace, dep)
	if err != nil {
		return nil, err
	}

	fromCommit, err := resolvePin(depClone, fromPin)
	if err != nil {
		return nil, err
	}
	toCommit, err := resolvePin(depClone, toPin)
	if err != nil {
		return nil, err
	}

	// Distinct version strings can still name the same commit, e.g. a
	// pseudo-version later replaced by the tag cut on that commit.
	if fromCommit == toCommit {
		return nil, nil
	}

	fromTime, err := depClone.CommitTime(fromCommit)
	if err != nil {
		return nil, err
	}
	toTime, err := depClone.CommitTime(toCommit)
	if err != nil {
		return nil, err
	}

	return &window{
		fromCommit: fromCommit,
		toCommit:   toCommit,
		fromTime:   fromTime,
		toTime:     toTime,
	}, nil
}

// pinnedVersion reads the main repo's go.mod at a commit and returns the
// version recorded for a dependency named as "owner/repo".
func pinnedVersion(clone Repository, commit, dep string) (string, error) {
	data, err := clone.FileAtCommit(commit, "go.mod")
	if err != nil {
		return "", err
	}

	f, err := modfile.Parse("go.mod", data, nil)
	if err != nil {
		return "", fmt.Errorf("parsing go.mod at %s: %w", commit, err)
	}

	modPath := "github.com/" + dep
	for _, req := range f.Require {
		if req.Mod.Path == modPath || strings.HasPrefix(req.Mod.Path, modPath+"/") {
			return req.Mod.Version, nil
		}
	}

	return "", fmt.Errorf("%w: %s at %s", ErrDependencyNotPinned, dep, commit)
}

// resolvePin maps a module version to a full commit hash in the dependency
// clone. Pseudo-versions embed an abbreviated hash; plain versions resolve
// through the matching git tag.
func resolvePin(depClone Repository, pin string) (string, error) {
	ref := pin
	if module.IsPseudoVersion(pin) {
		rev, err := module.PseudoVersionRev(pin)
		if err != nil {
			return "", fmt.Errorf("parsing pseudo-version %s: %w", pin, err)
		}
		ref = rev
	}
	return depClone.ResolveCommit(ref)
}
