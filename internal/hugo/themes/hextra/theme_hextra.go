// Package hextra configures the Hextra Hugo theme.
package hextra

import (
	th "git.home.luguber.info/inful/docnav/internal/hugo/theme"
)

type Theme struct{}

func (Theme) Name() string { return th.Hextra }

func (Theme) Features() th.Features {
	return th.Features{
		Name:                  th.Hextra,
		UsesModules:           true,
		ModulePath:            "github.com/imfing/hextra",
		ModuleVersion:         "v0.11.0",
		HeadPartial:           "custom/head-end.html",
		EnableMathPassthrough: true,
	}
}

func (Theme) ApplyParams(ctx th.ParamContext, params map[string]any) {
	site := ctx.Site()

	th.SetDefault(params, "search", map[string]any{
		"enable":     site.ThemeConfig.Algolia.IndexName == "",
		"type":       "flexsearch",
		"flexsearch": map[string]any{"index": "content", "tokenize": "forward"},
	})
	th.SetDefault(params, "theme", map[string]any{"default": "system", "displayToggle": true})
	th.SetDefault(params, "navbar", map[string]any{
		"displayTitle": true,
		"displayLogo":  site.ThemeConfig.Logo != "",
		"logo":         map[string]any{"path": site.ThemeConfig.Logo},
		"width":        "normal",
	})
	th.SetDefault(params, "page", map[string]any{"width": "normal"})
	th.SetDefault(params, "displayUpdatedDate", site.ThemeConfig.LastUpdated != "")
	th.SetDefault(params, "dateFormat", "2 January 2006")
	th.SetDefault(params, "editURL", map[string]any{"enable": site.ThemeConfig.EditLinks})
}

// CustomizeRoot adds the navbar extras Hextra renders from menu.main.
func (Theme) CustomizeRoot(ctx th.ParamContext, root map[string]any) {
	menu, _ := root["menu"].(map[string]any)
	if menu == nil {
		return
	}
	main, _ := menu["main"].([]map[string]any)
	main = append(main,
		map[string]any{"name": "Search", "weight": 900, "params": map[string]any{"type": "search"}},
		map[string]any{"name": "Theme", "weight": 990, "params": map[string]any{"type": "theme-toggle", "label": false}},
	)
	if repo := ctx.Site().ThemeConfig.Repo; repo != "" {
		main = append(main, map[string]any{
			"name":   "GitHub",
			"weight": 999,
			"url":    "https://github.com/" + repo,
			"params": map[string]any{"icon": "github"},
		})
	}
	menu["main"] = main
}

func init() { th.RegisterTheme(Theme{}) }
