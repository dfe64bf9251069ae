// Package content maps sidebar page references onto the Markdown tree and
// reads what the navigation needs from each page: title, header outline and
// a content fingerprint.
package content

import (
	"errors"
	"os"
	"path"
	"path/filepath"
	"strings"

	derrors "git.home.luguber.info/inful/docnav/internal/foundation/errors"
	"git.home.luguber.info/inful/docnav/internal/navigation"
)

// ErrPageNotFound is the cause of every not_found error returned by Resolve.
var ErrPageNotFound = errors.New("page not found")

// Resolver finds the source file of a page reference below Root.
type Resolver struct {
	Root string
}

// NewResolver returns a resolver rooted at root.
func NewResolver(root string) *Resolver {
	return &Resolver{Root: root}
}

// Candidates lists the root-relative files that may back ref, in lookup order.
// A ref ending in "/" is a section index (README.md, then index.md); ".html"
// refs map to their ".md" source; ".md" refs are taken literally; anything
// else gets ".md" appended.
func Candidates(ref navigation.PageRef) []string {
	p := string(ref)
	if i := strings.IndexAny(p, "?#"); i >= 0 {
		p = p[:i]
	}
	if p == "" {
		return nil
	}
	if !strings.HasPrefix(p, "/") {
		p = "/" + p
	}
	if strings.HasSuffix(p, "/") {
		dir := path.Clean(p)
		return []string{
			strings.TrimPrefix(path.Join(dir, "README.md"), "/"),
			strings.TrimPrefix(path.Join(dir, "index.md"), "/"),
		}
	}
	switch {
	case strings.HasSuffix(p, ".md"):
	case strings.HasSuffix(p, ".html"):
		p = strings.TrimSuffix(p, ".html") + ".md"
	default:
		p += ".md"
	}
	return []string{strings.TrimPrefix(path.Clean(p), "/")}
}

// Resolve returns the path of the file backing ref. Refs are cleaned as rooted
// paths, so ".." never leaves Root. A ref with no backing file returns a
// not_found error wrapping ErrPageNotFound.
func (r *Resolver) Resolve(ref navigation.PageRef) (string, error) {
	candidates := Candidates(ref)
	if len(candidates) == 0 {
		return "", derrors.ValidationError("empty page reference").Build()
	}
	for _, rel := range candidates {
		full := filepath.Join(r.Root, filepath.FromSlash(rel))
		info, err := os.Stat(full)
		if err == nil && !info.IsDir() {
			return full, nil
		}
		if err != nil && !os.IsNotExist(err) {
			return "", derrors.WrapError(err, derrors.CategoryFileSystem, "stat page source").
				WithContext("path", full).
				Build()
		}
	}
	return "", derrors.WrapError(ErrPageNotFound, derrors.CategoryNotFound, "page not found").
		WithContext("page", string(ref)).
		WithContext("candidates", candidates).
		Build()
}

// Exists reports whether ref resolves to a file.
func (r *Resolver) Exists(ref navigation.PageRef) bool {
	_, err := r.Resolve(ref)
	return err == nil
}
