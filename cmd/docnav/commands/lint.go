package commands

import (
	"git.home.luguber.info/inful/docnav/internal/config"
	derrors "git.home.luguber.info/inful/docnav/internal/foundation/errors"
	"git.home.luguber.info/inful/docnav/internal/lint"
	"git.home.luguber.info/inful/docnav/internal/navigation"
)

// LintCmd implements the 'lint' command.
type LintCmd struct {
	Format         string   `short:"f" default:"text" help:"Output format (text or json)" enum:"text,json"`
	Quiet          bool     `short:"q" help:"Quiet mode: only show errors, suppress warnings"`
	ExpectedPrefix []string `name:"expected-prefix" help:"Exact set of sidebar prefixes; repeatable, overrides build.expected_prefixes"`
}

func (l *LintCmd) Run(g *Global, root *CLI) error {
	cfg, err := root.loadConfig()
	if err != nil {
		return err
	}
	return l.lint(g, cfg, navigation.Build())
}

func (l *LintCmd) lint(g *Global, cfg *config.Config, site *navigation.SiteConfig) error {
	expected := cfg.Build.ExpectedPrefixes
	if len(l.ExpectedPrefix) > 0 {
		expected = l.ExpectedPrefix
	}
	linter := lint.NewLinter(&lint.Config{Quiet: l.Quiet, Format: l.Format, ExpectedPrefixes: expected})
	result := linter.Lint(site)

	if err := lint.NewFormatter(l.Format).Format(g.out(), result); err != nil {
		return derrors.WrapError(err, derrors.CategoryInternal, "failed to write lint report").Build()
	}
	if result.HasErrors() {
		return derrors.LintError("navigation registry has lint errors").
			WithContext("errors", result.ErrorCount()).
			WithContext("warnings", result.WarningCount()).
			UserAction().
			Build()
	}
	return nil
}
