package navigation

import "strings"

type sidebarEntry struct {
	prefix string
	items  []SidebarItem
}

// Sidebar maps URL path prefixes to the navigation tree shown for pages under
// that prefix. Declaration order is kept for iteration and encoding.
type Sidebar struct {
	entries []sidebarEntry
}

// NewSidebar returns an empty sidebar map.
func NewSidebar() *Sidebar { return &Sidebar{} }

// Set declares the items for prefix. Redeclaring a prefix replaces its items in place.
func (s *Sidebar) Set(prefix string, items ...SidebarItem) *Sidebar {
	for i := range s.entries {
		if s.entries[i].prefix == prefix {
			s.entries[i].items = items
			return s
		}
	}
	s.entries = append(s.entries, sidebarEntry{prefix: prefix, items: items})
	return s
}

// Get returns the items declared for exactly prefix.
func (s *Sidebar) Get(prefix string) ([]SidebarItem, bool) {
	if s == nil {
		return nil, false
	}
	for _, e := range s.entries {
		if e.prefix == prefix {
			return e.items, true
		}
	}
	return nil, false
}

// Prefixes returns the declared prefixes in declaration order.
func (s *Sidebar) Prefixes() []string {
	if s == nil {
		return nil
	}
	out := make([]string, 0, len(s.entries))
	for _, e := range s.entries {
		out = append(out, e.prefix)
	}
	return out
}

// Len returns the number of declared prefixes.
func (s *Sidebar) Len() int {
	if s == nil {
		return 0
	}
	return len(s.entries)
}

// Lookup resolves the sidebar for a page path. The path is compared with a
// trailing slash appended, so "/api" resolves to "/api/". The longest matching
// prefix wins and declaration order breaks ties.
func (s *Sidebar) Lookup(pagePath string) (string, []SidebarItem, bool) {
	if s == nil || pagePath == "" {
		return "", nil, false
	}
	p := ensureEndingSlash(pagePath)
	best := -1
	for i, e := range s.entries {
		if !strings.HasPrefix(p, e.prefix) {
			continue
		}
		if best < 0 || len(e.prefix) > len(s.entries[best].prefix) {
			best = i
		}
	}
	if best < 0 {
		return "", nil, false
	}
	return s.entries[best].prefix, s.entries[best].items, true
}

func ensureEndingSlash(p string) string {
	if i := strings.IndexAny(p, "?#"); i >= 0 {
		p = p[:i]
	}
	if strings.HasSuffix(p, "/") {
		return p
	}
	// "/guide/list.html" and "/guide/list" both live under "/guide/".
	return p + "/"
}

// WalkFunc is called for every sidebar item. Parent is nil at the top level.
// Returning false skips the children of a group.
type WalkFunc func(item SidebarItem, parent *SectionGroup, depth int) bool

// Walk visits items depth-first in order.
func Walk(items []SidebarItem, fn WalkFunc) {
	walk(items, nil, 0, fn)
}

func walk(items []SidebarItem, parent *SectionGroup, depth int, fn WalkFunc) {
	for _, it := range items {
		descend := fn(it, parent, depth)
		if g, ok := it.Group(); ok && descend {
			walk(g.Children, g, depth+1, fn)
		}
	}
}

// PageRefs flattens items into their page references in visit order.
func PageRefs(items []SidebarItem) []PageRef {
	var refs []PageRef
	Walk(items, func(item SidebarItem, _ *SectionGroup, _ int) bool {
		if ref, ok := item.PageRef(); ok {
			refs = append(refs, ref)
		}
		return true
	})
	return refs
}

// AllPageRefs returns the distinct page references of every prefix, in first-seen order.
func (s *Sidebar) AllPageRefs() []PageRef {
	if s == nil {
		return nil
	}
	seen := make(map[PageRef]struct{})
	var out []PageRef
	for _, e := range s.entries {
		for _, ref := range PageRefs(e.items) {
			if _, ok := seen[ref]; ok {
				continue
			}
			seen[ref] = struct{}{}
			out = append(out, ref)
		}
	}
	return out
}
