// Package docsy configures the Docsy Hugo theme.
package docsy

import (
	th "git.home.luguber.info/inful/docnav/internal/hugo/theme"
)

type Theme struct{}

func (Theme) Name() string { return th.Docsy }

func (Theme) Features() th.Features {
	return th.Features{
		Name:        th.Docsy,
		UsesModules: true,
		ModulePath:  "github.com/google/docsy",
		HeadPartial: "hooks/head-end.html",
		SearchJSON:  true,
	}
}

func (Theme) ApplyParams(ctx th.ParamContext, params map[string]any) {
	site := ctx.Site()

	th.SetDefault(params, "version", "main")
	if repo := site.ThemeConfig.Repo; repo != "" {
		th.SetDefault(params, "github_repo", "https://github.com/"+repo)
		th.SetDefault(params, "github_subdir", site.ThemeConfig.DocsDir)
	}
	th.SetDefault(params, "edit_page", site.ThemeConfig.EditLinks)
	th.SetDefault(params, "offlineSearch", site.ThemeConfig.Algolia.IndexName == "")
	th.SetDefault(params, "offlineSearchSummaryLength", 200)
	th.SetDefault(params, "offlineSearchMaxResults", 25)
	th.SetDefault(params, "ui", map[string]any{
		"sidebar_menu_compact":   false,
		"sidebar_menu_foldable":  true,
		"breadcrumb_disable":     false,
		"navbar_logo":            site.ThemeConfig.Logo != "",
		"sidebar_search_disable": false,
	})

	var links []map[string]any
	for _, l := range site.NavLinks() {
		if l.External() {
			links = append(links, map[string]any{"name": l.Text, "url": l.Link, "icon": "fas fa-link", "desc": l.Breadcrumb()})
		}
	}
	th.SetDefault(params, "links", map[string]any{"user": links, "developer": []map[string]any{}})
}

func (Theme) CustomizeRoot(_ th.ParamContext, root map[string]any) {
	// Docsy translates the site through its i18n bundle; Spanish is "es".
	root["defaultContentLanguage"] = "es"
}

func init() { th.RegisterTheme(Theme{}) }
