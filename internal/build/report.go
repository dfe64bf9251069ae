package build

import (
	"time"

	"git.home.luguber.info/inful/docnav/internal/linkverify"
	"git.home.luguber.info/inful/docnav/internal/lint"
	"git.home.luguber.info/inful/docnav/internal/markdown"
	"git.home.luguber.info/inful/docnav/internal/metrics"
	"git.home.luguber.info/inful/docnav/internal/navigation"
)

// Outcome is the overall result of a build.
type Outcome string

const (
	OutcomeSuccess  Outcome = "success"
	OutcomeWarning  Outcome = "warning"
	OutcomeFailed   Outcome = "failed"
	OutcomeCanceled Outcome = "canceled"
)

// Stage names, in execution order.
const (
	StageConstruct = "construct"
	StageEnrich    = "enrich"
	StageLint      = "lint"
	StageVerify    = "verify"
	StageEmit      = "emit"
	StageRecord    = "record"
)

// StageResult is the timing and result of one stage.
type StageResult struct {
	Name     string
	Result   metrics.ResultLabel
	Duration time.Duration
	Err      error
}

// Report contains the outcome of a build run.
type Report struct {
	BuildID   string
	Trigger   string
	StartTime time.Time
	EndTime   time.Time
	Duration  time.Duration
	Outcome   Outcome
	Commit    string

	// Site is the constructed configuration; nil when construct failed.
	Site *navigation.SiteConfig

	Pages   int
	Missing []navigation.PageRef
	// Headers are the sidebar headers of each indexed page.
	Headers map[navigation.PageRef][]markdown.Heading
	// StaleFingerprints lists pages whose frontmatter fingerprint no longer
	// matches their content.
	StaleFingerprints []navigation.PageRef

	Lint   *lint.Result
	Verify *linkverify.Report

	Outputs []string
	// Fingerprint is the sha256 of the VuePress JSON encoding.
	Fingerprint string

	Stages []StageResult
}

// LintErrors returns the number of lint errors, zero before the lint stage.
func (r *Report) LintErrors() int {
	if r.Lint == nil {
		return 0
	}
	return r.Lint.ErrorCount()
}

// LintWarnings returns the number of lint warnings.
func (r *Report) LintWarnings() int {
	if r.Lint == nil {
		return 0
	}
	return r.Lint.WarningCount()
}

// BrokenLinks returns the number of verification findings.
func (r *Report) BrokenLinks() int {
	if r.Verify == nil {
		return 0
	}
	return len(r.Verify.Findings)
}

// Stage returns the result of the named stage.
func (r *Report) Stage(name string) (StageResult, bool) {
	for _, s := range r.Stages {
		if s.Name == name {
			return s, true
		}
	}
	return StageResult{}, false
}

func (r *Report) hasWarnings() bool {
	if len(r.Missing) > 0 || len(r.StaleFingerprints) > 0 || r.LintWarnings() > 0 || r.BrokenLinks() > 0 {
		return true
	}
	if r.LintErrors() > 0 {
		return true // tolerated via allow-lint-errors
	}
	for _, s := range r.Stages {
		if s.Result == metrics.ResultWarning {
			return true
		}
	}
	return false
}
