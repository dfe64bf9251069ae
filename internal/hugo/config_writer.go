package hugo

import (
	"bytes"
	"fmt"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	th "git.home.luguber.info/inful/docnav/internal/hugo/theme"
	"git.home.luguber.info/inful/docnav/internal/navigation"
)

// renderConfig builds hugo.yaml in phases: core settings, generated params,
// theme params, user overrides, module block, menus, theme customization.
func (g *Generator) renderConfig(features th.Features) ([]byte, error) {
	site := g.site
	tc := site.ThemeConfig

	params := map[string]any{
		"sidebars":     tc.Sidebar,
		"sidebarDepth": tc.SidebarDepth,
		"editLinks":    tc.EditLinks,
		"editLinkText": tc.EditLinkText,
		"lastUpdated":  tc.LastUpdated,
		"logo":         tc.Logo,
		"repo":         tc.Repo,
		"docsDir":      tc.DocsDir,
		"smoothScroll": tc.SmoothScroll,
	}
	if tc.Algolia.IndexName != "" {
		params["algolia"] = map[string]any{
			"indexName": tc.Algolia.IndexName,
			"apiKey":    tc.Algolia.APIKey,
		}
	}
	if len(g.opts.LastUpdated) > 0 {
		params["lastmod"] = lastmodParams(g.opts.LastUpdated)
	}

	root := map[string]any{
		"title":         site.Title,
		"description":   site.Description,
		"baseURL":       g.opts.BaseURL,
		"languageCode":  "es",
		"enableGitInfo": true,
		"markup": map[string]any{
			"goldmark": map[string]any{"renderer": map[string]any{"unsafe": true}},
			"highlight": map[string]any{
				"style":     "github",
				"lineNos":   site.Markdown.LineNumbers,
				"tabWidth":  2,
				"noClasses": false,
			},
		},
		"params": params,
	}

	theme := g.activeTheme()
	theme.ApplyParams(g, params)
	mergeParams(params, g.opts.Params)

	if features.UsesModules && features.ModulePath != "" {
		root["module"] = map[string]any{"imports": []map[string]any{{"path": features.ModulePath}}}
	} else {
		root["theme"] = g.opts.Theme
	}
	if features.EnableMathPassthrough {
		enableMathPassthrough(root)
	}
	if features.SearchJSON {
		root["outputs"] = map[string]any{"home": []string{"HTML", "RSS", "JSON"}}
	}

	root["menu"] = g.menus()
	theme.CustomizeRoot(g, root)

	var buf bytes.Buffer
	enc := yaml.NewEncoder(&buf)
	enc.SetIndent(2)
	if err := enc.Encode(root); err != nil {
		return nil, fmt.Errorf("failed to marshal Hugo config: %w", err)
	}
	if err := enc.Close(); err != nil {
		return nil, fmt.Errorf("failed to marshal Hugo config: %w", err)
	}
	return buf.Bytes(), nil
}

func enableMathPassthrough(root map[string]any) {
	markup, _ := root["markup"].(map[string]any)
	goldmark, _ := markup["goldmark"].(map[string]any)
	goldmark["extensions"] = map[string]any{
		"passthrough": map[string]any{
			"enable": true,
			"delimiters": map[string]any{
				"block":  [][]string{{`\[`, `\]`}, {"$$", "$$"}},
				"inline": [][]string{{`\(`, `\)`}},
			},
		},
	}
}

// lastmodParams maps content paths to RFC 3339 dates, keyed without the
// leading slash so templates can index them with .File.Path.
func lastmodParams(updated map[navigation.PageRef]time.Time) map[string]string {
	out := make(map[string]string, len(updated))
	for ref, t := range updated {
		out[strings.TrimPrefix(string(ref), "/")] = t.UTC().Format(time.RFC3339)
	}
	return out
}

// mergeParams deep-merges src into dst. Nested maps merge key by key; any
// other value replaces the destination.
func mergeParams(dst, src map[string]any) {
	for k, v := range src {
		if mv, ok := v.(map[string]any); ok {
			if existing, ok := dst[k].(map[string]any); ok {
				mergeParams(existing, mv)
				continue
			}
			cp := map[string]any{}
			mergeParams(cp, mv)
			dst[k] = cp
			continue
		}
		dst[k] = v
	}
}
