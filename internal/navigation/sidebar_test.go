package navigation

import (
	"encoding/json"
	"strings"
	"testing"

	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"
)

func TestSidebarLookup(t *testing.T) {
	sb := Build().Sidebar()

	tests := []struct {
		path   string
		prefix string
		ok     bool
	}{
		{"/api/options-data", "/api/", true},
		{"/api/", "/api/", true},
		{"/api", "/api/", true},
		{"/guide/migration/v-model.html", "/guide/", true},
		{"/community/team/", "/community/", true},
		{"/cookbook/#intro", "/cookbook/", true},
		{"/examples/svg?x=1", "/examples/", true},
		{"/style-guide/", "", false},
		{"/", "", false},
		{"", "", false},
		{"/apiextra", "", false},
	}
	for _, tc := range tests {
		t.Run(tc.path, func(t *testing.T) {
			prefix, items, ok := sb.Lookup(tc.path)
			assert.Equal(t, tc.ok, ok)
			assert.Equal(t, tc.prefix, prefix)
			if tc.ok {
				assert.NotEmpty(t, items)
			}
		})
	}
}

func TestSidebarLookup_LongestPrefixWins(t *testing.T) {
	sb := NewSidebar().
		Set("/guide/", Page("/guide/a")).
		Set("/guide/migration/", Page("/guide/migration/b"))

	prefix, items, ok := sb.Lookup("/guide/migration/v-model")
	require.True(t, ok)
	assert.Equal(t, "/guide/migration/", prefix)
	assert.Equal(t, []PageRef{"/guide/migration/b"}, PageRefs(items))

	prefix, _, ok = sb.Lookup("/guide/list")
	require.True(t, ok)
	assert.Equal(t, "/guide/", prefix)
}

func TestSidebarSet_ReplacesInPlace(t *testing.T) {
	sb := NewSidebar().Set("/a/", Page("/a/1")).Set("/b/", Page("/b/1")).Set("/a/", Page("/a/2"))
	assert.Equal(t, []string{"/a/", "/b/"}, sb.Prefixes())
	items, _ := sb.Get("/a/")
	assert.Equal(t, []PageRef{"/a/2"}, PageRefs(items))
}

func TestNilSidebar(t *testing.T) {
	var sb *Sidebar
	assert.Equal(t, 0, sb.Len())
	assert.Nil(t, sb.Prefixes())
	_, _, ok := sb.Lookup("/api/")
	assert.False(t, ok)
	_, ok = sb.Get("/api/")
	assert.False(t, ok)
}

func TestWalk_SkipChildren(t *testing.T) {
	items := []SidebarItem{
		Group("A", nil, Page("/a/1"), Group("B", nil, Page("/a/b/1"))),
		Page("/a/2"),
	}

	var visited []string
	Walk(items, func(item SidebarItem, parent *SectionGroup, depth int) bool {
		if g, ok := item.Group(); ok {
			visited = append(visited, strings.Repeat(" ", depth)+g.Title)
			return g.Title != "B"
		}
		ref, _ := item.PageRef()
		visited = append(visited, strings.Repeat(" ", depth)+string(ref))
		return true
	})
	assert.Equal(t, []string{"A", " /a/1", " B", "/a/2"}, visited)
}

func TestAllPageRefs_Distinct(t *testing.T) {
	refs := Build().Sidebar().AllPageRefs()
	seen := map[PageRef]bool{}
	for _, r := range refs {
		assert.False(t, seen[r], "duplicate %s", r)
		seen[r] = true
	}
	assert.True(t, seen["/api/built-in-components.md"])
	assert.True(t, seen["/cookbook/"])
}

func TestEncodeJSON_VuePressShape(t *testing.T) {
	data, err := json.Marshal(Build())
	require.NoError(t, err)

	var decoded map[string]any
	require.NoError(t, json.Unmarshal(data, &decoded))

	head := decoded["head"].([]any)
	first := head[0].([]any)
	assert.Equal(t, "link", first[0])
	assert.Equal(t, "stylesheet", first[1].(map[string]any)["rel"])

	theme := decoded["themeConfig"].(map[string]any)
	sidebar := theme["sidebar"].(map[string]any)
	api := sidebar["/api/"].([]any)
	assert.Equal(t, "/api/application-config", api[0])
	opts := api[3].(map[string]any)
	assert.Equal(t, "Opciones", opts["title"])
	assert.Equal(t, false, opts["collapsable"])

	plugins := decoded["plugins"].([]any)
	pwa := plugins[0].([]any)
	assert.Equal(t, "@vuepress/pwa", pwa[0])

	// Sidebar keys keep declaration order in the raw document.
	raw := string(data)
	last := -1
	for _, p := range DeclaredPrefixes() {
		idx := strings.Index(raw, `"`+p+`":`)
		require.Greater(t, idx, last, p)
		last = idx
	}
}

func TestEncodeJSON_GroupWithoutCollapseFlag(t *testing.T) {
	data, err := json.Marshal(Group("Reactividad", nil, Page("/guide/reactivity")))
	require.NoError(t, err)
	assert.JSONEq(t, `{"title":"Reactividad","children":["/guide/reactivity"]}`, string(data))
}

func TestEncodeYAML_VuePressShape(t *testing.T) {
	data, err := yaml.Marshal(Build())
	require.NoError(t, err)

	var decoded struct {
		Head        [][]any `yaml:"head"`
		ThemeConfig struct {
			Sidebar map[string][]any `yaml:"sidebar"`
		} `yaml:"themeConfig"`
	}
	require.NoError(t, yaml.Unmarshal(data, &decoded))

	require.Len(t, decoded.Head, 12)
	assert.Equal(t, "meta", decoded.Head[4][0])
	require.Len(t, decoded.ThemeConfig.Sidebar, 5)
	assert.Equal(t, "/api/application-config", decoded.ThemeConfig.Sidebar["/api/"][0])
}

func TestSidebarLookup_Properties(t *testing.T) {
	sb := Build().Sidebar()
	properties := gopter.NewProperties(nil)

	properties.Property("pages under a prefix resolve to that prefix", prop.ForAll(
		func(idx int, slug string) bool {
			prefixes := sb.Prefixes()
			want := prefixes[idx%len(prefixes)]
			got, _, ok := sb.Lookup(want + slug)
			return ok && got == want
		},
		gen.IntRange(0, 100),
		gen.RegexMatch(`^[a-z0-9-]{0,20}$`),
	))

	properties.Property("lookup ignores fragments and queries", prop.ForAll(
		func(slug, frag string) bool {
			a, _, okA := sb.Lookup("/api/" + slug)
			b, _, okB := sb.Lookup("/api/" + slug + "#" + frag)
			return okA == okB && a == b
		},
		gen.RegexMatch(`^[a-z-]{1,12}$`),
		gen.AlphaString(),
	))

	properties.Property("build is deterministic", prop.ForAll(
		func(_ int) bool {
			a, errA := json.Marshal(Build())
			b, errB := json.Marshal(Build())
			return errA == nil && errB == nil && string(a) == string(b)
		},
		gen.Int(),
	))

	properties.TestingRun(t)
}
