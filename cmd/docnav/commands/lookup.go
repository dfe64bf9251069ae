package commands

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"gopkg.in/yaml.v3"

	derrors "git.home.luguber.info/inful/docnav/internal/foundation/errors"
	"git.home.luguber.info/inful/docnav/internal/navigation"
)

// LookupCmd implements the 'lookup' command.
type LookupCmd struct {
	Path   string `arg:"" help:"Page path, e.g. /guide/introduction"`
	Format string `short:"f" default:"text" help:"Output format (text, json or yaml)" enum:"text,json,yaml"`
}

type lookupResult struct {
	Path   string                   `json:"path" yaml:"path"`
	Prefix string                   `json:"prefix" yaml:"prefix"`
	Items  []navigation.SidebarItem `json:"items" yaml:"items"`
}

func (l *LookupCmd) Run(g *Global, root *CLI) error {
	if _, err := root.loadConfig(); err != nil {
		return err
	}
	return l.lookup(g.out(), navigation.Build())
}

func (l *LookupCmd) lookup(w io.Writer, site *navigation.SiteConfig) error {
	prefix, items, ok := site.Sidebar().Lookup(l.Path)
	if !ok {
		return derrors.NotFoundError("no sidebar applies to path").
			WithContext("path", l.Path).
			WithContext("prefixes", site.Sidebar().Prefixes()).
			Build()
	}
	res := lookupResult{Path: l.Path, Prefix: prefix, Items: items}

	switch l.Format {
	case "json":
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(res)
	case "yaml":
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(res); err != nil {
			return err
		}
		return enc.Close()
	}

	_, _ = fmt.Fprintf(w, "%s -> %s\n", l.Path, prefix)
	navigation.Walk(items, func(item navigation.SidebarItem, _ *navigation.SectionGroup, depth int) bool {
		indent := strings.Repeat("  ", depth+1)
		if g, ok := item.Group(); ok {
			_, _ = fmt.Fprintf(w, "%s%s/\n", indent, g.Title)
			return true
		}
		ref, _ := item.PageRef()
		_, _ = fmt.Fprintf(w, "%s%s\n", indent, ref)
		return true
	})
	return nil
}
