package lint

import (
	"fmt"
	"slices"
	"strings"

	"git.home.luguber.info/inful/docnav/internal/navigation"
)

// SidebarNonEmptyRule requires every sidebar prefix to declare at least one item.
type SidebarNonEmptyRule struct{}

func (r *SidebarNonEmptyRule) Name() string { return "sidebar-nonempty" }

func (r *SidebarNonEmptyRule) Check(site *navigation.SiteConfig) []Issue {
	var issues []Issue
	for _, prefix := range site.Sidebar().Prefixes() {
		items, _ := site.Sidebar().Get(prefix)
		if len(items) > 0 {
			continue
		}
		issues = append(issues, Issue{
			Location: sidebarLocation(prefix),
			Severity: SeverityError,
			Rule:     r.Name(),
			Message:  fmt.Sprintf("Sidebar for %s has no sections", prefix),
			Explanation: "Pages under this prefix would render with an empty sidebar.\n" +
				"Declare at least one page or section group, or remove the prefix.",
			Fix: "Add items to the prefix or delete it",
		})
	}
	return issues
}

// RefLeadingSlashRule requires page references to be site-absolute.
type RefLeadingSlashRule struct{}

func (r *RefLeadingSlashRule) Name() string { return "ref-leading-slash" }

func (r *RefLeadingSlashRule) Check(site *navigation.SiteConfig) []Issue {
	var issues []Issue
	for _, list := range siblingLists(site.Sidebar()) {
		for i, it := range list.items {
			ref, ok := it.PageRef()
			if !ok || strings.HasPrefix(string(ref), "/") {
				continue
			}
			issues = append(issues, Issue{
				Location:    list.itemLocation(i),
				Severity:    SeverityError,
				Rule:        r.Name(),
				Message:     fmt.Sprintf("Page reference %q is not site-absolute", ref),
				Explanation: "Relative references resolve against the current page and break when the sidebar is shown elsewhere.",
				Fix:         fmt.Sprintf("Use %q", "/"+string(ref)),
			})
		}
	}
	return issues
}

// RefTrailingSlashRule flags page references ending in "/" among siblings
// that do not. A reference equal to its sidebar prefix is the section index
// and is always allowed.
type RefTrailingSlashRule struct{}

func (r *RefTrailingSlashRule) Name() string { return "ref-trailing-slash" }

func (r *RefTrailingSlashRule) Check(site *navigation.SiteConfig) []Issue {
	var issues []Issue
	for _, list := range siblingLists(site.Sidebar()) {
		var slashed []int
		plain := 0
		for i, it := range list.items {
			ref, ok := it.PageRef()
			if !ok || string(ref) == list.prefix {
				continue
			}
			if strings.HasSuffix(string(ref), "/") {
				slashed = append(slashed, i)
			} else {
				plain++
			}
		}
		if plain == 0 {
			continue
		}
		for _, i := range slashed {
			ref, _ := list.items[i].PageRef()
			issues = append(issues, Issue{
				Location:    list.itemLocation(i),
				Severity:    SeverityWarning,
				Rule:        r.Name(),
				Message:     fmt.Sprintf("Page reference %q ends with '/' unlike its siblings", ref),
				Explanation: "A trailing slash points at a directory index (README.md), while siblings point at single files.",
				Fix:         fmt.Sprintf("Use %q unless a section index is intended", strings.TrimSuffix(string(ref), "/")),
			})
		}
	}
	return issues
}

// RefExtensionRule reports explicit ".md" or ".html" suffixes among
// extensionless siblings. The host accepts both forms.
type RefExtensionRule struct{}

func (r *RefExtensionRule) Name() string { return "ref-extension" }

func (r *RefExtensionRule) Check(site *navigation.SiteConfig) []Issue {
	var issues []Issue
	for _, list := range siblingLists(site.Sidebar()) {
		for i, it := range list.items {
			ref, ok := it.PageRef()
			if !ok {
				continue
			}
			s := string(ref)
			ext := ""
			switch {
			case strings.HasSuffix(s, ".md"):
				ext = ".md"
			case strings.HasSuffix(s, ".html"):
				ext = ".html"
			default:
				continue
			}
			issues = append(issues, Issue{
				Location: list.itemLocation(i),
				Severity: SeverityInfo,
				Rule:     r.Name(),
				Message:  fmt.Sprintf("Page reference %q carries an explicit %s suffix", ref, ext),
				Fix:      fmt.Sprintf("Use %q for consistency", strings.TrimSuffix(s, ext)),
			})
		}
	}
	return issues
}

// SidebarPrefixSetRule requires the sidebar keys to be exactly the expected set.
type SidebarPrefixSetRule struct {
	Expected []string
}

func (r *SidebarPrefixSetRule) Name() string { return "sidebar-prefix-set" }

func (r *SidebarPrefixSetRule) Check(site *navigation.SiteConfig) []Issue {
	expected := r.Expected
	if len(expected) == 0 {
		expected = navigation.DeclaredPrefixes()
	}
	actual := site.Sidebar().Prefixes()

	var issues []Issue
	for _, p := range expected {
		if slices.Contains(actual, p) {
			continue
		}
		issues = append(issues, Issue{
			Location: "sidebar",
			Severity: SeverityError,
			Rule:     r.Name(),
			Message:  fmt.Sprintf("Sidebar prefix %s is missing", p),
			Fix:      "Declare the prefix or drop it from build.expected_prefixes",
		})
	}
	for _, p := range actual {
		if slices.Contains(expected, p) {
			continue
		}
		issues = append(issues, Issue{
			Location:    sidebarLocation(p),
			Severity:    SeverityError,
			Rule:        r.Name(),
			Message:     fmt.Sprintf("Sidebar prefix %s is not expected", p),
			Explanation: "Expected prefixes: " + strings.Join(expected, ", "),
			Fix:         "Remove the prefix or add it to build.expected_prefixes",
		})
	}
	return issues
}

// RefDuplicateRule flags a page referenced twice within one prefix.
type RefDuplicateRule struct{}

func (r *RefDuplicateRule) Name() string { return "ref-duplicate" }

func (r *RefDuplicateRule) Check(site *navigation.SiteConfig) []Issue {
	var issues []Issue
	first := map[string]map[navigation.PageRef]string{}
	for _, list := range siblingLists(site.Sidebar()) {
		seen := first[list.prefix]
		if seen == nil {
			seen = map[navigation.PageRef]string{}
			first[list.prefix] = seen
		}
		for i, it := range list.items {
			ref, ok := it.PageRef()
			if !ok {
				continue
			}
			loc := list.itemLocation(i)
			prev, dup := seen[ref]
			if !dup {
				seen[ref] = loc
				continue
			}
			issues = append(issues, Issue{
				Location:    loc,
				Severity:    SeverityWarning,
				Rule:        r.Name(),
				Message:     fmt.Sprintf("Page %s is listed twice under %s", ref, list.prefix),
				Explanation: "First listed at " + prev + ". The host highlights only one entry as active.",
				Fix:         "Remove one of the entries",
			})
		}
	}
	return issues
}

// GroupTitleRule requires section groups to have a title and children.
type GroupTitleRule struct{}

func (r *GroupTitleRule) Name() string { return "group-title" }

func (r *GroupTitleRule) Check(site *navigation.SiteConfig) []Issue {
	var issues []Issue
	for _, list := range siblingLists(site.Sidebar()) {
		for i, it := range list.items {
			g, ok := it.Group()
			if !ok {
				continue
			}
			if strings.TrimSpace(g.Title) == "" {
				issues = append(issues, Issue{
					Location: list.itemLocation(i),
					Severity: SeverityError,
					Rule:     r.Name(),
					Message:  "Section group has no title",
					Fix:      "Give the group a title",
				})
			}
			if len(g.Children) == 0 {
				issues = append(issues, Issue{
					Location: list.itemLocation(i),
					Severity: SeverityError,
					Rule:     r.Name(),
					Message:  fmt.Sprintf("Section group %q has no children", g.Title),
					Fix:      "Add pages to the group or remove it",
				})
			}
		}
	}
	return issues
}
