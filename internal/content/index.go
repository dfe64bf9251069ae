package content

import (
	"context"
	stderrors "errors"
	"log/slog"

	derrors "git.home.luguber.info/inful/docnav/internal/foundation/errors"
	"git.home.luguber.info/inful/docnav/internal/logfields"
	"git.home.luguber.info/inful/docnav/internal/navigation"
)

// Problem records a page reference that could not be loaded.
type Problem struct {
	Prefix string
	Ref    navigation.PageRef
	Err    error
}

// Missing reports whether the page has no source file.
func (p Problem) Missing() bool { return stderrors.Is(p.Err, ErrPageNotFound) }

// Index holds every page referenced by a sidebar.
type Index struct {
	pages    map[navigation.PageRef]*Page
	order    []navigation.PageRef
	Problems []Problem
}

// Page returns the loaded page for ref.
func (ix *Index) Page(ref navigation.PageRef) (*Page, bool) {
	p, ok := ix.pages[ref]
	return p, ok
}

// Pages returns the loaded pages in first-reference order.
func (ix *Index) Pages() []*Page {
	out := make([]*Page, 0, len(ix.order))
	for _, ref := range ix.order {
		out = append(out, ix.pages[ref])
	}
	return out
}

// Len returns the number of loaded pages.
func (ix *Index) Len() int { return len(ix.pages) }

// MissingCount returns the number of problems caused by absent files.
func (ix *Index) MissingCount() int {
	n := 0
	for _, p := range ix.Problems {
		if p.Missing() {
			n++
		}
	}
	return n
}

// Index loads every page the sidebar references, each once. Pages that fail
// to load are recorded as problems and do not stop the walk; only context
// cancellation does.
func (r *Resolver) Index(ctx context.Context, sidebar *navigation.Sidebar, depth int) (*Index, error) {
	ix := &Index{pages: map[navigation.PageRef]*Page{}}
	failed := map[navigation.PageRef]bool{}

	for _, prefix := range sidebar.Prefixes() {
		items, _ := sidebar.Get(prefix)
		for _, ref := range navigation.PageRefs(items) {
			if err := ctx.Err(); err != nil {
				return ix, derrors.WrapError(err, derrors.CategoryRuntime, "content indexing canceled").Build()
			}
			if _, done := ix.pages[ref]; done || failed[ref] {
				continue
			}
			page, err := r.Load(ref, depth)
			if err != nil {
				failed[ref] = true
				ix.Problems = append(ix.Problems, Problem{Prefix: prefix, Ref: ref, Err: err})
				slog.Debug("Page not indexed", logfields.Prefix(prefix), logfields.Page(string(ref)), logfields.Error(err))
				continue
			}
			ix.pages[ref] = page
			ix.order = append(ix.order, ref)
		}
	}
	return ix, nil
}
