package git

import (
	stderrors "errors"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing/object"

	derrors "git.home.luguber.info/inful/docnav/internal/foundation/errors"
)

// Repository is an opened documentation repository.
type Repository struct {
	repo *git.Repository
	root string
}

// Open finds the repository containing path, searching parent directories.
// A path outside any repository yields a git error of warning severity.
func Open(path string) (*Repository, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, derrors.WrapError(err, derrors.CategoryFileSystem, "resolve repository path").Build()
	}
	repo, err := git.PlainOpenWithOptions(abs, &git.PlainOpenOptions{DetectDotGit: true})
	if err != nil {
		b := derrors.WrapError(err, derrors.CategoryGit, "open repository").WithContext("path", abs)
		if stderrors.Is(err, git.ErrRepositoryNotExists) {
			b = b.Warning()
		}
		return nil, b.Build()
	}
	wt, err := repo.Worktree()
	if err != nil {
		return nil, derrors.WrapError(err, derrors.CategoryGit, "repository has no worktree").
			WithContext("path", abs).
			Warning().
			Build()
	}
	return &Repository{repo: repo, root: wt.Filesystem.Root()}, nil
}

// Root returns the worktree root.
func (r *Repository) Root() string { return r.root }

// Head returns the commit hash HEAD points at.
func (r *Repository) Head() (string, error) {
	ref, err := r.repo.Head()
	if err != nil {
		return "", derrors.WrapError(err, derrors.CategoryGit, "resolve HEAD").Warning().Build()
	}
	return ref.Hash().String(), nil
}

// LastCommitTime returns the committer time of the newest commit touching file.
// file may be absolute or relative to the worktree root. ok is false when the
// file was never committed.
func (r *Repository) LastCommitTime(file string) (when time.Time, ok bool, err error) {
	rel, err := r.relative(file)
	if err != nil {
		return time.Time{}, false, err
	}
	iter, err := r.repo.Log(&git.LogOptions{FileName: &rel, Order: git.LogOrderCommitterTime})
	if err != nil {
		return time.Time{}, false, fmt.Errorf("log %s: %w", rel, err)
	}
	defer iter.Close()

	c, err := iter.Next()
	if err != nil {
		// io.EOF and an unborn HEAD both mean no history for this file.
		return time.Time{}, false, nil
	}
	return commitTime(c), true, nil
}

func (r *Repository) relative(file string) (string, error) {
	p := file
	if !filepath.IsAbs(p) {
		p = filepath.Join(r.root, p)
	}
	rel, err := filepath.Rel(r.root, p)
	if err != nil || rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
		return "", derrors.ValidationError("file is outside the repository").
			WithContext("path", file).
			Build()
	}
	return filepath.ToSlash(rel), nil
}

func commitTime(c *object.Commit) time.Time {
	return c.Committer.When.UTC()
}

// LastUpdated maps each of files (absolute, or relative to repoPath) to the
// time of the last commit touching it. Files never committed are omitted.
func LastUpdated(repoPath string, files []string) (map[string]time.Time, error) {
	repo, err := Open(repoPath)
	if err != nil {
		return nil, err
	}
	base, err := filepath.Abs(repoPath)
	if err != nil {
		return nil, err
	}
	out := make(map[string]time.Time, len(files))
	for _, f := range files {
		p := f
		if !filepath.IsAbs(p) {
			p = filepath.Join(base, p)
		}
		when, ok, err := repo.LastCommitTime(p)
		if err != nil {
			return nil, err
		}
		if ok {
			out[f] = when
		}
	}
	return out, nil
}
