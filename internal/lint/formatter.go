package lint

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"
)

// Formatter formats linting results for output.
type Formatter interface {
	Format(w io.Writer, result *Result) error
}

// TextFormatter formats results as human-readable text, grouped by location.
type TextFormatter struct{}

// NewTextFormatter creates a text formatter.
func NewTextFormatter() *TextFormatter {
	return &TextFormatter{}
}

// Format outputs results in human-readable text format.
func (f *TextFormatter) Format(w io.Writer, result *Result) error {
	p := &printer{w: w}
	p.line("Linting site navigation")
	p.line(strings.Repeat("━", 60))
	p.line("")

	// Group issues by location, keeping first-seen order.
	var order []string
	byLocation := make(map[string][]Issue)
	for _, issue := range result.Issues {
		if _, ok := byLocation[issue.Location]; !ok {
			order = append(order, issue.Location)
		}
		byLocation[issue.Location] = append(byLocation[issue.Location], issue)
	}
	for _, loc := range order {
		for _, issue := range byLocation[loc] {
			f.formatIssue(p, issue)
			p.line("")
		}
	}

	p.line(strings.Repeat("━", 60))
	p.line("Results:")
	p.printf("  %d prefixes, %d pages checked\n", result.PrefixesTotal, result.PagesTotal)
	if n := result.ErrorCount(); n > 0 {
		p.printf("  %d error%s (blocks build)\n", n, pluralize(n))
	}
	if n := result.WarningCount(); n > 0 {
		p.printf("  %d warning%s (should fix)\n", n, pluralize(n))
	}
	if n := result.InfoCount(); n > 0 {
		p.printf("  %d info\n", n)
	}
	p.line("")

	switch {
	case result.HasErrors():
		p.line("❌ Navigation has errors that will break the generated site.")
	case result.HasWarnings():
		p.line("⚠️  Navigation has warnings. Consider fixing before commit.")
	case len(result.Issues) > 0:
		p.line("ℹ️  All issues are informational.")
	default:
		p.line("✨ Navigation passes linting!")
	}
	return p.err
}

func (f *TextFormatter) formatIssue(p *printer, issue Issue) {
	var icon string
	switch issue.Severity {
	case SeverityError:
		icon = "✗"
	case SeverityWarning:
		icon = "⚠"
	case SeverityInfo:
		icon = "ℹ"
	}
	p.printf("%s %s [%s]\n", icon, issue.Location, issue.Rule)
	p.printf("  %s: %s\n", issue.Severity, issue.Message)
	if issue.Explanation != "" {
		for line := range strings.SplitSeq(strings.TrimSpace(issue.Explanation), "\n") {
			p.printf("  %s\n", line)
		}
	}
	if issue.Fix != "" {
		p.printf("  Fix: %s\n", issue.Fix)
	}
}

// printer remembers the first write error so formatting code stays linear.
type printer struct {
	w   io.Writer
	err error
}

func (p *printer) printf(format string, args ...any) {
	if p.err != nil {
		return
	}
	_, p.err = fmt.Fprintf(p.w, format, args...)
}

func (p *printer) line(s string) { p.printf("%s\n", s) }

// JSONFormatter formats results as JSON.
type JSONFormatter struct{}

// NewJSONFormatter creates a JSON formatter.
func NewJSONFormatter() *JSONFormatter {
	return &JSONFormatter{}
}

// JSONOutput represents the JSON output structure.
type JSONOutput struct {
	PrefixesTotal int         `json:"prefixes_total"`
	PagesTotal    int         `json:"pages_total"`
	ErrorCount    int         `json:"error_count"`
	WarningCount  int         `json:"warning_count"`
	InfoCount     int         `json:"info_count"`
	Issues        []JSONIssue `json:"issues"`
}

// JSONIssue represents a single issue in JSON format.
type JSONIssue struct {
	Location    string `json:"location"`
	Severity    string `json:"severity"`
	Rule        string `json:"rule"`
	Message     string `json:"message"`
	Explanation string `json:"explanation,omitempty"`
	Fix         string `json:"fix,omitempty"`
}

// Format outputs results in JSON format.
func (f *JSONFormatter) Format(w io.Writer, result *Result) error {
	output := JSONOutput{
		PrefixesTotal: result.PrefixesTotal,
		PagesTotal:    result.PagesTotal,
		ErrorCount:    result.ErrorCount(),
		WarningCount:  result.WarningCount(),
		InfoCount:     result.InfoCount(),
		Issues:        make([]JSONIssue, 0, len(result.Issues)),
	}
	for _, issue := range result.Issues {
		output.Issues = append(output.Issues, JSONIssue{
			Location:    issue.Location,
			Severity:    issue.Severity.String(),
			Rule:        issue.Rule,
			Message:     issue.Message,
			Explanation: issue.Explanation,
			Fix:         issue.Fix,
		})
	}

	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	return encoder.Encode(output)
}

// NewFormatter creates the appropriate formatter based on format string.
func NewFormatter(format string) Formatter {
	switch format {
	case "json":
		return NewJSONFormatter()
	default:
		return NewTextFormatter()
	}
}

// pluralize returns "s" if count != 1, otherwise empty string.
func pluralize(count int) string {
	if count == 1 {
		return ""
	}
	return "s"
}
