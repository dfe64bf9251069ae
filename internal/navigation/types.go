package navigation

// PageRef identifies one content page by its site path (e.g. "/guide/introduction").
// It is not validated here; unresolvable references are reported by lint and
// linkverify, or by the host generator at render time.
type PageRef string

// String returns the reference as a plain string.
func (r PageRef) String() string { return string(r) }

// SectionGroup is a titled, ordered collection of pages and nested groups.
type SectionGroup struct {
	Title string
	// Collapsable is nil when the group leaves the collapse state to the host default.
	Collapsable *bool
	Children    []SidebarItem
}

// SidebarItem is either a page reference or a nested section group, never both.
type SidebarItem struct {
	page  PageRef
	group *SectionGroup
}

// Page returns a sidebar item pointing at a single page.
func Page(ref PageRef) SidebarItem { return SidebarItem{page: ref} }

// Group returns a sidebar item holding a nested section group.
func Group(title string, collapsable *bool, children ...SidebarItem) SidebarItem {
	return SidebarItem{group: &SectionGroup{Title: title, Collapsable: collapsable, Children: children}}
}

// IsGroup reports whether the item is a section group.
func (i SidebarItem) IsGroup() bool { return i.group != nil }

// PageRef returns the page reference and true for page items.
func (i SidebarItem) PageRef() (PageRef, bool) {
	if i.group != nil {
		return "", false
	}
	return i.page, true
}

// Group returns the section group and true for group items.
func (i SidebarItem) Group() (*SectionGroup, bool) {
	return i.group, i.group != nil
}

// Attr is a single head tag attribute. Attribute order is preserved on output.
type Attr struct {
	Key   string
	Value string
}

// HeadTag is an element injected into the <head> of every generated page.
type HeadTag struct {
	Tag   string
	Attrs []Attr
}

// Attr returns the value of the named attribute.
func (h HeadTag) Attr(key string) (string, bool) {
	for _, a := range h.Attrs {
		if a.Key == key {
			return a.Value, true
		}
	}
	return "", false
}

// NavItem is a navbar entry. Entries with Items render as dropdowns; Link may
// be set on a dropdown as well.
type NavItem struct {
	Text      string    `json:"text" yaml:"text"`
	Link      string    `json:"link,omitempty" yaml:"link,omitempty"`
	AriaLabel string    `json:"ariaLabel,omitempty" yaml:"ariaLabel,omitempty"`
	Items     []NavItem `json:"items,omitempty" yaml:"items,omitempty"`
}

// Algolia holds the DocSearch settings handed to the theme.
type Algolia struct {
	IndexName string `json:"indexName" yaml:"indexName"`
	APIKey    string `json:"apiKey" yaml:"apiKey"`
}

// ThemeConfig carries the default theme options.
type ThemeConfig struct {
	Logo         string    `json:"logo" yaml:"logo"`
	Nav          []NavItem `json:"nav" yaml:"nav"`
	Repo         string    `json:"repo" yaml:"repo"`
	EditLinks    bool      `json:"editLinks" yaml:"editLinks"`
	EditLinkText string    `json:"editLinkText" yaml:"editLinkText"`
	LastUpdated  string    `json:"lastUpdated" yaml:"lastUpdated"`
	DocsDir      string    `json:"docsDir" yaml:"docsDir"`
	SidebarDepth int       `json:"sidebarDepth" yaml:"sidebarDepth"`
	Sidebar      *Sidebar  `json:"sidebar" yaml:"sidebar"`
	SmoothScroll bool      `json:"smoothScroll" yaml:"smoothScroll"`
	Algolia      Algolia   `json:"algolia" yaml:"algolia"`
}

// Plugin is a host generator plugin with its options.
type Plugin struct {
	Name    string
	Options any
}

// UpdatePopup is the per-locale text of the PWA "new content" popup.
type UpdatePopup struct {
	Message    string `json:"message" yaml:"message"`
	ButtonText string `json:"buttonText" yaml:"buttonText"`
}

// PWAOptions configures the service worker plugin.
type PWAOptions struct {
	ServiceWorker bool                   `json:"serviceWorker" yaml:"serviceWorker"`
	UpdatePopup   map[string]UpdatePopup `json:"updatePopup" yaml:"updatePopup"`
}

// ContainerOptions configures a custom Markdown container block (e.g. "::: info").
// Before is a fragment where "{{info}}" is replaced by the block title.
type ContainerOptions struct {
	Type   string `json:"type" yaml:"type"`
	Before string `json:"before" yaml:"before"`
	After  string `json:"after" yaml:"after"`
}

// MarkdownConfig augments the host Markdown pipeline.
type MarkdownConfig struct {
	LineNumbers bool `json:"lineNumbers" yaml:"lineNumbers"`
	// HighlightHook names the wrapper the host installs around its syntax highlighter.
	HighlightHook string `json:"highlightHook,omitempty" yaml:"highlightHook,omitempty"`
}

// SiteConfig is the complete configuration record handed to the host generator.
type SiteConfig struct {
	Title       string         `json:"title" yaml:"title"`
	Description string         `json:"description" yaml:"description"`
	Head        []HeadTag      `json:"head" yaml:"head"`
	ThemeConfig ThemeConfig    `json:"themeConfig" yaml:"themeConfig"`
	Plugins     []Plugin       `json:"plugins" yaml:"plugins"`
	Markdown    MarkdownConfig `json:"markdown" yaml:"markdown"`
}

// Sidebar returns the sidebar map of the theme configuration.
func (c *SiteConfig) Sidebar() *Sidebar { return c.ThemeConfig.Sidebar }

// Nav returns the navbar entries.
func (c *SiteConfig) Nav() []NavItem { return c.ThemeConfig.Nav }

// Containers returns the options of every container plugin, in declaration order.
func (c *SiteConfig) Containers() []ContainerOptions {
	var out []ContainerOptions
	for _, p := range c.Plugins {
		if opts, ok := p.Options.(ContainerOptions); ok {
			out = append(out, opts)
		}
	}
	return out
}
