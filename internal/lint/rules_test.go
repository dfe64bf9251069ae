package lint

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"git.home.luguber.info/inful/docnav/internal/navigation"
)

func siteWith(sidebar *navigation.Sidebar) *navigation.SiteConfig {
	site := navigation.Build()
	site.ThemeConfig.Sidebar = sidebar
	return site
}

func TestBuiltSiteHasNoErrorsOrWarnings(t *testing.T) {
	result := NewLinter(nil).Lint(navigation.Build())

	assert.Zero(t, result.ErrorCount(), "%+v", result.Issues)
	assert.Zero(t, result.WarningCount(), "%+v", result.Issues)
	assert.Equal(t, 5, result.PrefixesTotal)

	// The explicit .md suffix on built-in-components is reported as info only.
	ext := result.ByRule("ref-extension")
	require.Len(t, ext, 1)
	assert.Equal(t, "sidebar[/api/][8]", ext[0].Location)
}

func TestSidebarNonEmptyRule(t *testing.T) {
	site := siteWith(navigation.NewSidebar().Set("/guide/", navigation.Page("/guide/a")).Set("/api/"))
	issues := (&SidebarNonEmptyRule{}).Check(site)
	require.Len(t, issues, 1)
	assert.Equal(t, "sidebar[/api/]", issues[0].Location)
	assert.Equal(t, SeverityError, issues[0].Severity)
}

func TestRefLeadingSlashRule(t *testing.T) {
	site := siteWith(navigation.NewSidebar().Set("/api/",
		navigation.Page("/api/a"),
		navigation.Group("Opciones", nil, navigation.Page("api/options-data")),
	))
	issues := (&RefLeadingSlashRule{}).Check(site)
	require.Len(t, issues, 1)
	assert.Equal(t, "sidebar[/api/][1].children[0]", issues[0].Location)
	assert.Contains(t, issues[0].Fix, `"/api/options-data"`)
}

func TestRefTrailingSlashRule(t *testing.T) {
	tests := []struct {
		name  string
		items []navigation.SidebarItem
		want  []string
	}{
		{
			name:  "section index allowed",
			items: []navigation.SidebarItem{navigation.Page("/cookbook/"), navigation.Page("/cookbook/icons")},
		},
		{
			name:  "mixed siblings",
			items: []navigation.SidebarItem{navigation.Page("/cookbook/a/"), navigation.Page("/cookbook/b")},
			want:  []string{"sidebar[/cookbook/][0]"},
		},
		{
			name:  "all slashed is consistent",
			items: []navigation.SidebarItem{navigation.Page("/cookbook/a/"), navigation.Page("/cookbook/b/")},
		},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			site := siteWith(navigation.NewSidebar().Set("/cookbook/", tc.items...))
			var got []string
			for _, is := range (&RefTrailingSlashRule{}).Check(site) {
				got = append(got, is.Location)
				assert.Equal(t, SeverityWarning, is.Severity)
			}
			assert.Equal(t, tc.want, got)
		})
	}
}

func TestSidebarPrefixSetRule(t *testing.T) {
	site := siteWith(navigation.NewSidebar().
		Set("/guide/", navigation.Page("/guide/a")).
		Set("/style-guide/", navigation.Page("/style-guide/")))

	issues := (&SidebarPrefixSetRule{Expected: []string{"/guide/", "/api/"}}).Check(site)
	require.Len(t, issues, 2)
	assert.Contains(t, issues[0].Message, "/api/ is missing")
	assert.Equal(t, "sidebar[/style-guide/]", issues[1].Location)

	assert.Empty(t, (&SidebarPrefixSetRule{}).Check(navigation.Build()))
}

func TestRefDuplicateRule(t *testing.T) {
	site := siteWith(navigation.NewSidebar().
		Set("/guide/",
			navigation.Group("A", nil, navigation.Page("/guide/a")),
			navigation.Group("B", nil, navigation.Page("/guide/a"))).
		Set("/community/", navigation.Page("/guide/a")))

	issues := (&RefDuplicateRule{}).Check(site)
	require.Len(t, issues, 1)
	assert.Equal(t, "sidebar[/guide/][1].children[0]", issues[0].Location)
	assert.Contains(t, issues[0].Explanation, "sidebar[/guide/][0].children[0]")
}

func TestGroupTitleRule(t *testing.T) {
	site := siteWith(navigation.NewSidebar().Set("/guide/",
		navigation.Group("", nil, navigation.Page("/guide/a")),
		navigation.Group("Vacío", nil),
	))
	issues := (&GroupTitleRule{}).Check(site)
	require.Len(t, issues, 2)
	assert.Equal(t, "sidebar[/guide/][0]", issues[0].Location)
	assert.Contains(t, issues[1].Message, "Vacío")
}

func TestNavEntryRule(t *testing.T) {
	site := navigation.Build()
	assert.Empty(t, (&NavEntryRule{}).Check(site))

	site.ThemeConfig.Nav = append(site.ThemeConfig.Nav,
		navigation.NavItem{Text: "Vacío"},
		navigation.NavItem{Link: "/x"},
		navigation.NavItem{Text: "Menú", Items: []navigation.NavItem{{Text: "Hoja"}}},
	)
	var locs []string
	for _, is := range (&NavEntryRule{}).Check(site) {
		locs = append(locs, is.Location)
	}
	assert.Equal(t, []string{"nav[4]", "nav[5]", "nav[6].items[0]"}, locs)
}

func TestHeadTagRule(t *testing.T) {
	site := navigation.Build()
	assert.Empty(t, (&HeadTagRule{}).Check(site))

	site.Head = []navigation.HeadTag{
		{Tag: ""},
		{Tag: "iframe"},
		{Tag: "link", Attrs: []navigation.Attr{{Key: "rel", Value: "icon"}}},
		{Tag: "script"},
		{Tag: "meta", Attrs: []navigation.Attr{{Key: "name", Value: "x"}}},
	}
	var locs []string
	for _, is := range (&HeadTagRule{}).Check(site) {
		locs = append(locs, is.Location)
	}
	assert.Equal(t, []string{"head[0]", "head[1]", "head[2]", "head[3]"}, locs)
}

func TestLinter_Quiet(t *testing.T) {
	site := siteWith(navigation.NewSidebar().Set("/guide/", navigation.Page("/guide/a/"), navigation.Page("/guide/b")))
	loud := NewLinter(&Config{ExpectedPrefixes: []string{"/guide/"}}).Lint(site)
	assert.Equal(t, 1, loud.WarningCount())

	quiet := NewLinter(&Config{Quiet: true, ExpectedPrefixes: []string{"/guide/"}}).Lint(site)
	assert.Empty(t, quiet.Issues)
	assert.False(t, quiet.HasErrors())
}
