package lint

import (
	"fmt"

	"git.home.luguber.info/inful/docnav/internal/navigation"
)

// siblingList is one ordered list of sidebar items: a prefix's top level or
// a group's children.
type siblingList struct {
	prefix   string
	location string
	items    []navigation.SidebarItem
}

func (l siblingList) itemLocation(i int) string {
	return fmt.Sprintf("%s[%d]", l.location, i)
}

// siblingLists returns every sibling list of the sidebar, depth first in
// declaration order.
func siblingLists(sidebar *navigation.Sidebar) []siblingList {
	var out []siblingList
	var visit func(prefix, loc string, items []navigation.SidebarItem)
	visit = func(prefix, loc string, items []navigation.SidebarItem) {
		out = append(out, siblingList{prefix: prefix, location: loc, items: items})
		for i, it := range items {
			if g, ok := it.Group(); ok {
				visit(prefix, fmt.Sprintf("%s[%d].children", loc, i), g.Children)
			}
		}
	}
	for _, prefix := range sidebar.Prefixes() {
		items, _ := sidebar.Get(prefix)
		visit(prefix, fmt.Sprintf("sidebar[%s]", prefix), items)
	}
	return out
}

func sidebarLocation(prefix string) string {
	return fmt.Sprintf("sidebar[%s]", prefix)
}
