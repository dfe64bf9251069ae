package navigation

import "strings"

// NavLink is a navbar link together with the texts of the dropdowns containing it.
type NavLink struct {
	Text    string
	Link    string
	Parents []string
}

// External reports whether the link leaves the site.
func (l NavLink) External() bool {
	return strings.HasPrefix(l.Link, "http://") || strings.HasPrefix(l.Link, "https://")
}

// Breadcrumb joins the parent texts and the link text with " > ".
func (l NavLink) Breadcrumb() string {
	return strings.Join(append(append([]string{}, l.Parents...), l.Text), " > ")
}

// NavLinks flattens every navbar entry that carries a link.
func (c *SiteConfig) NavLinks() []NavLink {
	var out []NavLink
	var visit func(items []NavItem, parents []string)
	visit = func(items []NavItem, parents []string) {
		for _, it := range items {
			if it.Link != "" {
				out = append(out, NavLink{Text: it.Text, Link: it.Link, Parents: append([]string(nil), parents...)})
			}
			if len(it.Items) > 0 {
				visit(it.Items, append(parents, it.Text))
			}
		}
	}
	visit(c.ThemeConfig.Nav, nil)
	return out
}
