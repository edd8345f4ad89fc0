// Package gitdiff computes changed-file sets with go-git.
package gitdiff

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing"
	"github.com/go-git/go-git/v5/plumbing/object"
	"github.com/go-git/go-git/v5/utils/merkletrie"

	"github.com/openkraft/spackstyle/internal/domain"
)

// Detector implements domain.ChangeDetector using go-git.
type Detector struct{}

func New() *Detector {
	return &Detector{}
}

// ChangedFiles returns the root-relative paths that differ from query.Base,
// or every tracked path when query.AllFiles is set. Untracked, non-ignored
// files are added when query.Untracked is set. Paths under the external
// subtree and paths that no longer exist are dropped.
func (d *Detector) ChangedFiles(paths domain.Paths, query domain.ChangeQuery) (domain.ChangeSet, error) {
	repo, err := open(paths.Prefix)
	if err != nil {
		return nil, fmt.Errorf("opening git repo: %w", err)
	}

	wt, err := repo.Worktree()
	if err != nil {
		return nil, fmt.Errorf("getting worktree: %w", err)
	}
	wtRoot := wt.Filesystem.Root()

	var names []string
	if query.AllFiles {
		names, err = trackedFiles(repo)
	} else {
		names, err = committedChanges(repo, query.Base)
	}
	if err != nil {
		return nil, err
	}

	status, err := wt.Status()
	if err != nil {
		return nil, fmt.Errorf("getting worktree status: %w", err)
	}
	names = append(names, statusFiles(status, query)...)

	return reRoot(paths, wtRoot, names), nil
}

// open finds the repository enclosing dir. Linked worktrees keep their
// branch refs in the common dir.
func open(dir string) (*git.Repository, error) {
	return git.PlainOpenWithOptions(dir, &git.PlainOpenOptions{
		DetectDotGit:          true,
		EnableDotGitCommonDir: true,
	})
}

// committedChanges lists paths added or modified between the merge base of
// base and HEAD, and HEAD.
func committedChanges(repo *git.Repository, base string) ([]string, error) {
	baseHash, err := repo.ResolveRevision(plumbing.Revision(base))
	if err != nil {
		return nil, domain.NewMissingBaseError(base)
	}

	head, err := repo.Head()
	if err != nil {
		return nil, &domain.ConfigurationError{Msg: "repository has no HEAD commit", Err: err}
	}

	baseCommit, err := repo.CommitObject(*baseHash)
	if err != nil {
		return nil, domain.NewMissingBaseError(base)
	}
	headCommit, err := repo.CommitObject(head.Hash())
	if err != nil {
		return nil, fmt.Errorf("reading HEAD commit: %w", err)
	}

	from := baseCommit
	bases, err := baseCommit.MergeBase(headCommit)
	if err != nil {
		return nil, fmt.Errorf("computing merge base with %s: %w", base, err)
	}
	if len(bases) > 0 {
		from = bases[0]
	}

	fromTree, err := from.Tree()
	if err != nil {
		return nil, fmt.Errorf("reading tree of %s: %w", from.Hash, err)
	}
	headTree, err := headCommit.Tree()
	if err != nil {
		return nil, fmt.Errorf("reading HEAD tree: %w", err)
	}

	changes, err := object.DiffTree(fromTree, headTree)
	if err != nil {
		return nil, fmt.Errorf("diffing %s...HEAD: %w", base, err)
	}

	var names []string
	for _, ch := range changes {
		action, err := ch.Action()
		if err != nil {
			return nil, fmt.Errorf("classifying change: %w", err)
		}
		if action == merkletrie.Delete {
			continue
		}
		names = append(names, ch.To.Name)
	}
	return names, nil
}

func trackedFiles(repo *git.Repository) ([]string, error) {
	idx, err := repo.Storer.Index()
	if err != nil {
		return nil, fmt.Errorf("reading index: %w", err)
	}
	names := make([]string, 0, len(idx.Entries))
	for _, e := range idx.Entries {
		names = append(names, e.Name)
	}
	return names, nil
}

// statusFiles lists worktree and staged modifications, and untracked files
// when requested.
func statusFiles(status git.Status, query domain.ChangeQuery) []string {
	var names []string
	for name, fs := range status {
		switch {
		case fs.Worktree == git.Untracked:
			if query.Untracked {
				names = append(names, name)
			}
		case fs.Worktree == git.Deleted || fs.Staging == git.Deleted:
			continue
		case query.AllFiles:
			// already listed from the index
		case fs.Worktree != git.Unmodified || fs.Staging != git.Unmodified:
			names = append(names, name)
		}
	}
	return names
}

// reRoot converts worktree-relative names to prefix-relative paths, then
// drops external, missing and duplicate paths.
func reRoot(paths domain.Paths, wtRoot string, names []string) domain.ChangeSet {
	seen := make(map[string]bool, len(names))
	out := make(domain.ChangeSet, 0, len(names))
	for _, name := range names {
		abs := filepath.Join(wtRoot, filepath.FromSlash(name))
		rel := paths.Rel(abs)
		if filepath.IsAbs(rel) || strings.HasPrefix(rel, "../") {
			continue
		}
		if seen[rel] || paths.IsExternal(rel) {
			continue
		}
		if _, err := os.Lstat(abs); errors.Is(err, os.ErrNotExist) {
			continue
		}
		seen[rel] = true
		out = append(out, rel)
	}
	sort.Strings(out)
	return out
}
