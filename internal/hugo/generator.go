// Package hugo translates the navigation registry into a Hugo site
// configuration: hugo.yaml with menus and params, the head partial carrying
// the site head tags, and one shortcode per custom container.
//
// Themes plug in through internal/hugo/theme; the built-in ones register from
// the init functions of the internal/hugo/themes packages, which the generator
// imports for their side effect.
package hugo

import (
	"log/slog"
	"path/filepath"
	"time"

	derrors "git.home.luguber.info/inful/docnav/internal/foundation/errors"
	"git.home.luguber.info/inful/docnav/internal/fsutil"
	th "git.home.luguber.info/inful/docnav/internal/hugo/theme"
	"git.home.luguber.info/inful/docnav/internal/logfields"
	"git.home.luguber.info/inful/docnav/internal/markdown"
	"git.home.luguber.info/inful/docnav/internal/navigation"

	_ "git.home.luguber.info/inful/docnav/internal/hugo/themes/docsy"
	_ "git.home.luguber.info/inful/docnav/internal/hugo/themes/hextra"
	_ "git.home.luguber.info/inful/docnav/internal/hugo/themes/relearn"
)

// ConfigFile is the name of the generated Hugo configuration.
const ConfigFile = "hugo.yaml"

// Options tunes the generated site.
type Options struct {
	Theme   string
	BaseURL string
	// Params are merged over the generated params, nested maps deeply.
	Params map[string]any
	// Titles names sidebar menu entries; refs without a title get one
	// derived from their path.
	Titles map[navigation.PageRef]string
	// Headers become child entries of their page in the sidebar menus.
	Headers map[navigation.PageRef][]markdown.Heading
	// LastUpdated feeds params.lastmod so themes without git info can show dates.
	LastUpdated map[navigation.PageRef]time.Time
}

// Generator writes a Hugo site configuration for one SiteConfig.
type Generator struct {
	site *navigation.SiteConfig
	opts Options
}

// NewGenerator returns a generator for site.
func NewGenerator(site *navigation.SiteConfig, opts Options) *Generator {
	if opts.Theme == "" {
		opts.Theme = th.Hextra
	}
	if opts.BaseURL == "" {
		opts.BaseURL = "/"
	}
	return &Generator{site: site, opts: opts}
}

// Site implements theme.ParamContext.
func (g *Generator) Site() *navigation.SiteConfig { return g.site }

// BaseURL implements theme.ParamContext.
func (g *Generator) BaseURL() string { return g.opts.BaseURL }

func (g *Generator) activeTheme() th.Theme {
	if t := th.Get(g.opts.Theme); t != nil {
		return t
	}
	return th.NullTheme{ThemeName: g.opts.Theme}
}

// Generate writes the site configuration below dir and returns the written
// paths. Output is deterministic for equal inputs.
func (g *Generator) Generate(dir string) ([]string, error) {
	if g.site == nil {
		return nil, derrors.ValidationError("no site configuration to generate").Build()
	}
	if th.Get(g.opts.Theme) == nil {
		slog.Warn("Unknown Hugo theme, writing plain theme reference",
			slog.String("theme", g.opts.Theme),
			slog.Any("known", th.Names()))
	}

	files, err := g.files()
	if err != nil {
		return nil, err
	}

	written := make([]string, 0, len(files))
	for _, f := range files {
		full := filepath.Join(dir, filepath.FromSlash(f.name))
		if err := fsutil.WriteFileAtomic(full, f.data, 0o644); err != nil {
			return written, derrors.WrapError(err, derrors.CategoryFileSystem, "failed to write Hugo file").
				WithContext("path", full).
				Build()
		}
		written = append(written, full)
	}
	slog.Info("Generated Hugo configuration",
		logfields.Path(filepath.Join(dir, ConfigFile)),
		slog.String("theme", g.opts.Theme),
		slog.Int("files", len(written)))
	return written, nil
}

type siteFile struct {
	name string // slash separated, relative to the site root
	data []byte
}

func (g *Generator) files() ([]siteFile, error) {
	features := g.activeTheme().Features()

	config, err := g.renderConfig(features)
	if err != nil {
		return nil, err
	}
	files := []siteFile{{name: ConfigFile, data: config}}

	if features.UsesModules && features.ModulePath != "" {
		files = append(files, siteFile{name: "go.mod", data: goMod(features)})
	}

	head, err := renderHead(g.site.Head)
	if err != nil {
		return nil, err
	}
	partial := features.HeadPartial
	if partial == "" {
		partial = th.DefaultHeadPartial
	}
	files = append(files, siteFile{name: "layouts/partials/" + partial, data: head})

	shortcodes, err := renderShortcodes(g.site.Containers())
	if err != nil {
		return nil, err
	}
	return append(files, shortcodes...), nil
}

func goMod(features th.Features) []byte {
	out := "module docnav.local/site\n\ngo 1.21\n"
	if features.ModuleVersion != "" {
		out += "\nrequire " + features.ModulePath + " " + features.ModuleVersion + "\n"
	}
	return []byte(out)
}
