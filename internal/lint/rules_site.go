package lint

import (
	"fmt"
	"strings"

	"git.home.luguber.info/inful/docnav/internal/navigation"
)

// NavEntryRule requires navbar entries to have text and a link or items.
type NavEntryRule struct{}

func (r *NavEntryRule) Name() string { return "nav-entry" }

func (r *NavEntryRule) Check(site *navigation.SiteConfig) []Issue {
	var issues []Issue
	var visit func(items []navigation.NavItem, loc string)
	visit = func(items []navigation.NavItem, loc string) {
		for i, it := range items {
			itemLoc := fmt.Sprintf("%s[%d]", loc, i)
			if strings.TrimSpace(it.Text) == "" {
				issues = append(issues, Issue{
					Location: itemLoc,
					Severity: SeverityError,
					Rule:     r.Name(),
					Message:  "Navbar entry has no text",
					Fix:      "Set the entry text",
				})
			}
			if it.Link == "" && len(it.Items) == 0 {
				issues = append(issues, Issue{
					Location:    itemLoc,
					Severity:    SeverityError,
					Rule:        r.Name(),
					Message:     fmt.Sprintf("Navbar entry %q has neither a link nor items", it.Text),
					Explanation: "The entry renders as a dead label.",
					Fix:         "Add a link, add dropdown items, or remove the entry",
				})
			}
			visit(it.Items, itemLoc+".items")
		}
	}
	visit(site.Nav(), "nav")
	return issues
}

var knownHeadTags = map[string]bool{
	"link": true, "meta": true, "script": true, "style": true, "base": true, "noscript": true,
}

// HeadTagRule checks head tags for names and the attributes their tag requires.
type HeadTagRule struct{}

func (r *HeadTagRule) Name() string { return "head-tag" }

func (r *HeadTagRule) Check(site *navigation.SiteConfig) []Issue {
	var issues []Issue
	add := func(i int, msg, fix string) {
		issues = append(issues, Issue{
			Location: fmt.Sprintf("head[%d]", i),
			Severity: SeverityError,
			Rule:     r.Name(),
			Message:  msg,
			Fix:      fix,
		})
	}
	for i, h := range site.Head {
		switch {
		case h.Tag == "":
			add(i, "Head tag has no name", "Set the tag name, e.g. \"meta\"")
			continue
		case !knownHeadTags[h.Tag]:
			add(i, fmt.Sprintf("Unknown head tag %q", h.Tag), "Use one of link, meta, script, style, base, noscript")
			continue
		}
		if h.Tag == "link" {
			if _, ok := h.Attr("href"); !ok {
				add(i, "link tag without href", "Add an href attribute")
			}
		}
		if h.Tag == "script" {
			if _, ok := h.Attr("src"); !ok {
				add(i, "script tag without src", "Add a src attribute")
			}
		}
	}
	return issues
}
