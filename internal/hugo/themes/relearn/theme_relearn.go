// Package relearn configures the Relearn Hugo theme.
package relearn

import (
	th "git.home.luguber.info/inful/docnav/internal/hugo/theme"
)

type Theme struct{}

func (Theme) Name() string { return th.Relearn }

func (Theme) Features() th.Features {
	return th.Features{
		Name:                  th.Relearn,
		UsesModules:           true,
		ModulePath:            "github.com/McShelby/hugo-theme-relearn",
		HeadPartial:           "custom-header.html",
		EnableMathPassthrough: true,
		SearchJSON:            true,
	}
}

func (Theme) ApplyParams(ctx th.ParamContext, params map[string]any) {
	site := ctx.Site()

	th.SetDefault(params, "themeVariant", "auto")
	th.SetDefault(params, "disableGeneratorVersion", false)
	th.SetDefault(params, "disableBreadcrumb", false)
	th.SetDefault(params, "showVisitedLinks", true)
	th.SetDefault(params, "collapsibleMenu", true)
	th.SetDefault(params, "alwaysopen", false)
	th.SetDefault(params, "disableLandingPageButton", true)
	th.SetDefault(params, "disableShortcutsTitle", false)
	// Relearn shows the edit link only when editURL is set.
	if site.ThemeConfig.EditLinks && site.ThemeConfig.Repo != "" {
		th.SetDefault(params, "editURL",
			"https://github.com/"+site.ThemeConfig.Repo+"/edit/master/"+site.ThemeConfig.DocsDir+"/${FilePath}")
	}
	th.SetDefault(params, "disableLastUpdated", site.ThemeConfig.LastUpdated == "")
}

// CustomizeRoot exposes the section sidebars as Relearn shortcut menus.
func (Theme) CustomizeRoot(_ th.ParamContext, root map[string]any) {
	menu, _ := root["menu"].(map[string]any)
	if menu == nil {
		return
	}
	if main, ok := menu["main"]; ok {
		menu["shortcuts"] = main
	}
}

func init() { th.RegisterTheme(Theme{}) }
