package lint

import (
	"log/slog"

	"git.home.luguber.info/inful/docnav/internal/logfields"
	"git.home.luguber.info/inful/docnav/internal/navigation"
)

// Linter runs the structural rules over a site configuration.
type Linter struct {
	cfg   *Config
	rules []Rule
}

// NewLinter creates a linter with the default rule set.
func NewLinter(cfg *Config) *Linter {
	if cfg == nil {
		cfg = &Config{Format: "text"}
	}
	return &Linter{
		cfg: cfg,
		rules: []Rule{
			&SidebarPrefixSetRule{Expected: cfg.ExpectedPrefixes},
			&SidebarNonEmptyRule{},
			&RefLeadingSlashRule{},
			&RefTrailingSlashRule{},
			&RefExtensionRule{},
			&RefDuplicateRule{},
			&GroupTitleRule{},
			&NavEntryRule{},
			&HeadTagRule{},
		},
	}
}

// Rules returns the rules in evaluation order.
func (l *Linter) Rules() []Rule { return l.rules }

// Lint applies every rule. In quiet mode only errors are kept.
func (l *Linter) Lint(site *navigation.SiteConfig) *Result {
	result := &Result{Issues: []Issue{}}
	if site == nil {
		return result
	}
	result.PrefixesTotal = site.Sidebar().Len()
	result.PagesTotal = len(site.Sidebar().AllPageRefs())

	for _, rule := range l.rules {
		for _, issue := range rule.Check(site) {
			if l.cfg.Quiet && issue.Severity != SeverityError {
				continue
			}
			slog.Debug("Lint issue", logfields.Rule(issue.Rule), slog.String("location", issue.Location), slog.String("severity", issue.Severity.String()))
			result.Issues = append(result.Issues, issue)
		}
	}
	return result
}
