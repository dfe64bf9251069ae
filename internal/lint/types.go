package lint

import "git.home.luguber.info/inful/docnav/internal/navigation"

// Severity indicates the importance level of a linting issue.
type Severity int

const (
	// SeverityInfo marks authored forms that are accepted but worth knowing about.
	SeverityInfo Severity = iota
	// SeverityWarning marks issues that should be fixed but don't block builds.
	SeverityWarning
	// SeverityError marks configurations the host generator cannot render correctly.
	SeverityError
)

// String returns the human-readable severity name.
func (s Severity) String() string {
	switch s {
	case SeverityInfo:
		return "INFO"
	case SeverityWarning:
		return "WARNING"
	case SeverityError:
		return "ERROR"
	default:
		return "UNKNOWN"
	}
}

// Issue represents a single problem found in the site configuration.
type Issue struct {
	Location    string   // Path into the configuration, e.g. "sidebar[/api/][3].children[0]"
	Severity    Severity // Issue severity level
	Rule        string   // Rule identifier (e.g., "ref-leading-slash")
	Message     string   // Brief description of the issue
	Explanation string   // Detailed explanation with context
	Fix         string   // Suggested fix
}

// Result contains all issues found during linting.
type Result struct {
	Issues        []Issue
	PrefixesTotal int
	PagesTotal    int
}

// HasErrors returns true if any error-level issues exist.
func (r *Result) HasErrors() bool { return r.ErrorCount() > 0 }

// HasWarnings returns true if any warning-level issues exist.
func (r *Result) HasWarnings() bool { return r.WarningCount() > 0 }

// ErrorCount returns the number of error-level issues.
func (r *Result) ErrorCount() int { return r.count(SeverityError) }

// WarningCount returns the number of warning-level issues.
func (r *Result) WarningCount() int { return r.count(SeverityWarning) }

// InfoCount returns the number of info-level issues.
func (r *Result) InfoCount() int { return r.count(SeverityInfo) }

func (r *Result) count(s Severity) int {
	n := 0
	for _, issue := range r.Issues {
		if issue.Severity == s {
			n++
		}
	}
	return n
}

// ByRule returns the issues reported by the named rule.
func (r *Result) ByRule(name string) []Issue {
	var out []Issue
	for _, issue := range r.Issues {
		if issue.Rule == name {
			out = append(out, issue)
		}
	}
	return out
}

// Rule defines a check over the built site configuration.
type Rule interface {
	// Name returns the unique identifier for this rule.
	Name() string

	// Check inspects the configuration and returns any issues found.
	Check(site *navigation.SiteConfig) []Issue
}

// Config contains configuration for the linter.
type Config struct {
	// Quiet suppresses warnings and info, only showing errors.
	Quiet bool

	// Format specifies output format (text, json).
	Format string

	// ExpectedPrefixes is the exact sidebar key set. Empty means the declared prefixes.
	ExpectedPrefixes []string
}
