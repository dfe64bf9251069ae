// Package theme holds the Hugo theme abstraction and registry. Built-in themes
// live under internal/hugo/themes and register themselves from init.
package theme

import (
	"slices"
	"sync"

	"git.home.luguber.info/inful/docnav/internal/navigation"
)

// Names of the built-in themes.
const (
	Hextra  = "hextra"
	Relearn = "relearn"
	Docsy   = "docsy"
)

// DefaultHeadPartial is used when a theme declares no head hook.
const DefaultHeadPartial = "custom-header.html"

// Features describes capability flags and module path for a theme.
type Features struct {
	Name          string
	UsesModules   bool
	ModulePath    string
	ModuleVersion string
	// HeadPartial is the partial, relative to layouts/partials, the theme
	// includes at the end of <head>.
	HeadPartial           string
	EnableMathPassthrough bool
	SearchJSON            bool
}

// ParamContext is what a theme may read from the generator.
type ParamContext interface {
	Site() *navigation.SiteConfig
	BaseURL() string
}

// Theme provides hooks for configuring Hugo.
type Theme interface {
	Name() string
	Features() Features
	ApplyParams(ctx ParamContext, params map[string]any)
	CustomizeRoot(ctx ParamContext, root map[string]any)
}

var (
	regMu sync.RWMutex
	reg   = map[string]Theme{}
)

// RegisterTheme registers t. Duplicate names are ignored.
func RegisterTheme(t Theme) {
	if t == nil {
		return
	}
	regMu.Lock()
	defer regMu.Unlock()
	if _, ok := reg[t.Name()]; !ok {
		reg[t.Name()] = t
	}
}

// Get returns the registered theme or nil.
func Get(name string) Theme {
	regMu.RLock()
	defer regMu.RUnlock()
	return reg[name]
}

// Names lists the registered themes in sorted order.
func Names() []string {
	regMu.RLock()
	defer regMu.RUnlock()
	names := make([]string, 0, len(reg))
	for n := range reg {
		names = append(names, n)
	}
	slices.Sort(names)
	return names
}

// NullTheme is used for unknown themes. It leaves params untouched and has
// the Hugo `theme:` key point at the configured name.
type NullTheme struct{ ThemeName string }

func (n NullTheme) Name() string { return n.ThemeName }
func (n NullTheme) Features() Features {
	return Features{Name: n.ThemeName, HeadPartial: DefaultHeadPartial}
}
func (NullTheme) ApplyParams(ParamContext, map[string]any)   {}
func (NullTheme) CustomizeRoot(ParamContext, map[string]any) {}

// SetDefault assigns value to params[key] unless the key is present.
func SetDefault(params map[string]any, key string, value any) {
	if _, ok := params[key]; !ok {
		params[key] = value
	}
}
