package hugo

import (
	"path"
	"strconv"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"git.home.luguber.info/inful/docnav/internal/markdown"
	"git.home.luguber.info/inful/docnav/internal/navigation"
	"git.home.luguber.info/inful/docnav/internal/util/sets"
)

const weightStep = 10

var titleCaser = cases.Title(language.Spanish)

// identifiers hands out unique menu identifiers.
type identifiers struct {
	used sets.Set[string]
}

func newIdentifiers() *identifiers { return &identifiers{used: sets.New[string]()} }

func (ids *identifiers) next(parts ...string) string {
	var slugs []string
	for _, p := range parts {
		if s := markdown.Slugify(p); s != "" {
			slugs = append(slugs, s)
		}
	}
	base := strings.Join(slugs, "-")
	if base == "" {
		base = "entry"
	}
	id := base
	for n := 2; ids.used.Has(id); n++ {
		id = base + "-" + strconv.Itoa(n)
	}
	ids.used.Add(id)
	return id
}

// menus returns menu.main built from the navbar plus one sidebar_<section>
// menu per sidebar prefix.
func (g *Generator) menus() map[string]any {
	menus := map[string]any{
		"main": g.navMenu(g.site.Nav(), "", newIdentifiers()),
	}
	sb := g.site.Sidebar()
	for _, prefix := range sb.Prefixes() {
		items, _ := sb.Get(prefix)
		section := SectionName(prefix)
		menus["sidebar_"+section] = g.sidebarMenu(items, section, "", newIdentifiers())
	}
	return menus
}

func (g *Generator) navMenu(items []navigation.NavItem, parent string, ids *identifiers) []map[string]any {
	var out []map[string]any
	for i, it := range items {
		id := ids.next(parent, it.Text)
		entry := map[string]any{
			"identifier": id,
			"name":       it.Text,
			"weight":     (i + 1) * weightStep,
		}
		if parent != "" {
			entry["parent"] = parent
		}
		if it.Link != "" {
			setLink(entry, it.Link)
		}
		if it.AriaLabel != "" {
			entry["params"] = map[string]any{"ariaLabel": it.AriaLabel}
		}
		out = append(out, entry)
		out = append(out, g.navMenu(it.Items, id, ids)...)
	}
	return out
}

func (g *Generator) sidebarMenu(items []navigation.SidebarItem, section, parent string, ids *identifiers) []map[string]any {
	var out []map[string]any
	for i, it := range items {
		entry := map[string]any{"weight": (i + 1) * weightStep}
		if parent != "" {
			entry["parent"] = parent
		}

		if grp, ok := it.Group(); ok {
			id := ids.next(section, grp.Title)
			entry["identifier"] = id
			entry["name"] = grp.Title
			if grp.Collapsable != nil {
				entry["params"] = map[string]any{"collapsable": *grp.Collapsable}
			}
			out = append(out, entry)
			out = append(out, g.sidebarMenu(grp.Children, section, id, ids)...)
			continue
		}

		ref, _ := it.PageRef()
		id := ids.next(section, string(ref))
		entry["identifier"] = id
		entry["name"] = g.pageTitle(ref)
		entry["pageRef"] = HugoPageRef(ref)
		out = append(out, entry)
		out = append(out, g.headerMenu(ref, section, id, ids)...)
	}
	return out
}

// headerMenu links the page headers below their page entry. Deeper headers
// hang off the nearest shallower one, as the VuePress sidebar nests them.
func (g *Generator) headerMenu(ref navigation.PageRef, section, pageID string, ids *identifiers) []map[string]any {
	headers := g.opts.Headers[ref]
	if len(headers) == 0 {
		return nil
	}
	base := HugoPageRef(ref)
	if !strings.HasSuffix(base, "/") {
		base += "/"
	}
	type open struct {
		level int
		id    string
	}
	var stack []open
	out := make([]map[string]any, 0, len(headers))
	for i, h := range headers {
		for len(stack) > 0 && stack[len(stack)-1].level >= h.Level {
			stack = stack[:len(stack)-1]
		}
		parent := pageID
		if len(stack) > 0 {
			parent = stack[len(stack)-1].id
		}
		id := ids.next(section, string(ref), h.Slug)
		out = append(out, map[string]any{
			"identifier": id,
			"name":       h.Text,
			"parent":     parent,
			"url":        base + "#" + h.Slug,
			"weight":     (i + 1) * weightStep,
		})
		stack = append(stack, open{level: h.Level, id: id})
	}
	return out
}

func (g *Generator) pageTitle(ref navigation.PageRef) string {
	if t := g.opts.Titles[ref]; t != "" {
		return t
	}
	return FallbackTitle(ref)
}

// setLink stores an internal link as pageRef so Hugo resolves it against
// the content tree. External links and links with fragments stay urls.
func setLink(entry map[string]any, link string) {
	if strings.HasPrefix(link, "/") && !strings.Contains(link, "#") {
		entry["pageRef"] = HugoPageRef(navigation.PageRef(link))
		return
	}
	entry["url"] = link
}

// SectionName turns a sidebar prefix into a menu name suffix: "/guide/" is
// "guide", "/guide/migration/" is "guide_migration".
func SectionName(prefix string) string {
	s := strings.Trim(prefix, "/")
	if s == "" {
		return "root"
	}
	return strings.ReplaceAll(s, "/", "_")
}

// HugoPageRef maps a page reference to the Hugo pageRef of its content
// file: extensions are dropped and section indexes keep their slash.
func HugoPageRef(ref navigation.PageRef) string {
	p := string(ref)
	p = strings.TrimSuffix(p, ".md")
	p = strings.TrimSuffix(p, ".html")
	if p == "" {
		return "/"
	}
	return p
}

// FallbackTitle derives a menu title from the last path segment of ref.
func FallbackTitle(ref navigation.PageRef) string {
	p := strings.TrimSuffix(HugoPageRef(ref), "/")
	base := path.Base(p)
	if base == "." || base == "/" || base == "" {
		return "Inicio"
	}
	return titleCaser.String(strings.ReplaceAll(base, "-", " "))
}
