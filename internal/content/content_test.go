package content

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	derrors "git.home.luguber.info/inful/docnav/internal/foundation/errors"
	"git.home.luguber.info/inful/docnav/internal/navigation"
)

func writeTree(t *testing.T, files map[string]string) string {
	t.Helper()
	root := t.TempDir()
	for name, body := range files {
		full := filepath.Join(root, filepath.FromSlash(name))
		require.NoError(t, os.MkdirAll(filepath.Dir(full), 0o755))
		require.NoError(t, os.WriteFile(full, []byte(body), 0o600))
	}
	return root
}

func TestCandidates(t *testing.T) {
	tests := []struct {
		ref  navigation.PageRef
		want []string
	}{
		{"/guide/introduction", []string{"guide/introduction.md"}},
		{"/api/built-in-components.md", []string{"api/built-in-components.md"}},
		{"/guide/migration/v-model.html", []string{"guide/migration/v-model.md"}},
		{"/cookbook/", []string{"cookbook/README.md", "cookbook/index.md"}},
		{"/support-vuejs/#one-time-donations", []string{"support-vuejs/README.md", "support-vuejs/index.md"}},
		{"/", []string{"README.md", "index.md"}},
		{"/../../etc/passwd", []string{"etc/passwd.md"}},
		{"", nil},
	}
	for _, tc := range tests {
		assert.Equal(t, tc.want, Candidates(tc.ref), string(tc.ref))
	}
}

func TestResolve(t *testing.T) {
	root := writeTree(t, map[string]string{
		"guide/introduction.md":    "# Introducción\n",
		"cookbook/index.md":        "# Recetas\n",
		"community/team/README.md": "# Equipo\n",
	})
	r := NewResolver(root)

	p, err := r.Resolve("/guide/introduction")
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(root, "guide", "introduction.md"), p)

	p, err = r.Resolve("/cookbook/")
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(root, "cookbook", "index.md"), p)

	assert.True(t, r.Exists("/community/team/"))

	_, err = r.Resolve("/guide/list")
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrPageNotFound)
	assert.True(t, derrors.HasCategory(err, derrors.CategoryNotFound))

	_, err = r.Resolve("")
	assert.True(t, derrors.HasCategory(err, derrors.CategoryValidation))
}

func TestLoad(t *testing.T) {
	root := writeTree(t, map[string]string{
		"guide/list.md":  "---\ntitle: Renderizado de <code>Listas</code> & más\n---\n# Ignorado\n\n## Mapeando\n\n### Detalle\n\n#### Profundo\n",
		"guide/plain.md": "Intro\n\n# Sintaxis de Plantillas\n\n## Interpolaciones\n",
		"guide/deep.md":  "---\nsidebarDepth: 0\n---\n# Profundo\n\n## Oculto\n",
	})
	r := NewResolver(root)

	page, err := r.Load("/guide/list", 2)
	require.NoError(t, err)
	assert.Equal(t, "guide/list.md", page.Path)
	assert.Equal(t, "Renderizado de Listas & más", page.Title)
	require.Len(t, page.Headers, 2)
	assert.Equal(t, "mapeando", page.Headers[0].Slug)
	assert.Equal(t, 3, page.Headers[1].Level)
	assert.NotEmpty(t, page.Fingerprint)
	assert.False(t, page.FingerprintStale)

	page, err = r.Load("/guide/plain", 1)
	require.NoError(t, err)
	assert.Equal(t, "Sintaxis de Plantillas", page.Title)
	require.Len(t, page.Headers, 1)

	page, err = r.Load("/guide/deep", 2)
	require.NoError(t, err)
	assert.Empty(t, page.Headers)
}

func TestLoad_FingerprintStableAndStale(t *testing.T) {
	root := writeTree(t, map[string]string{
		"a.md": "---\ntitle: A\n---\nbody\n",
		"b.md": "---\ntitle: A\nfingerprint: stale\n---\nbody\n",
	})
	r := NewResolver(root)

	a, err := r.Load("/a", 0)
	require.NoError(t, err)
	b, err := r.Load("/b", 0)
	require.NoError(t, err)

	assert.Equal(t, a.Fingerprint, b.Fingerprint)
	assert.True(t, b.FingerprintStale)
}

func TestLoad_InvalidFrontmatter(t *testing.T) {
	root := writeTree(t, map[string]string{"bad.md": "---\ntitle: x\n"})
	_, err := NewResolver(root).Load("/bad", 2)
	require.Error(t, err)
	assert.True(t, derrors.HasCategory(err, derrors.CategoryContent))
}

func TestIndex(t *testing.T) {
	root := writeTree(t, map[string]string{
		"guide/a.md":         "# A\n",
		"guide/b.md":         "# B\n",
		"cookbook/README.md": "# Recetas\n",
	})
	sidebar := navigation.NewSidebar().
		Set("/guide/", navigation.Group("G", nil, navigation.Page("/guide/a"), navigation.Page("/guide/b"), navigation.Page("/guide/missing"))).
		Set("/community/", navigation.Page("/guide/a"), navigation.Page("/guide/missing")).
		Set("/cookbook/", navigation.Page("/cookbook/"))

	ix, err := NewResolver(root).Index(context.Background(), sidebar, 2)
	require.NoError(t, err)

	assert.Equal(t, 3, ix.Len())
	require.Len(t, ix.Problems, 1)
	assert.Equal(t, "/guide/", ix.Problems[0].Prefix)
	assert.True(t, ix.Problems[0].Missing())
	assert.Equal(t, 1, ix.MissingCount())

	titles := []string{}
	for _, p := range ix.Pages() {
		titles = append(titles, p.Title)
	}
	assert.Equal(t, []string{"A", "B", "Recetas"}, titles)

	page, ok := ix.Page("/cookbook/")
	require.True(t, ok)
	assert.Equal(t, "cookbook/README.md", page.Path)
}

func TestIndex_Canceled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := NewResolver(t.TempDir()).Index(ctx, navigation.Build().Sidebar(), 2)
	require.Error(t, err)
	assert.ErrorIs(t, err, context.Canceled)
}
