package build

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"log/slog"
	"net/http"
	"path/filepath"
	"time"

	"github.com/google/uuid"

	"git.home.luguber.info/inful/docnav/internal/config"
	"git.home.luguber.info/inful/docnav/internal/content"
	"git.home.luguber.info/inful/docnav/internal/emit"
	"git.home.luguber.info/inful/docnav/internal/events"
	"git.home.luguber.info/inful/docnav/internal/eventstore"
	derrors "git.home.luguber.info/inful/docnav/internal/foundation/errors"
	"git.home.luguber.info/inful/docnav/internal/git"
	"git.home.luguber.info/inful/docnav/internal/hugo"
	"git.home.luguber.info/inful/docnav/internal/linkverify"
	"git.home.luguber.info/inful/docnav/internal/lint"
	"git.home.luguber.info/inful/docnav/internal/logfields"
	"git.home.luguber.info/inful/docnav/internal/markdown"
	"git.home.luguber.info/inful/docnav/internal/metrics"
	"git.home.luguber.info/inful/docnav/internal/navigation"
	"git.home.luguber.info/inful/docnav/internal/observability"
	"git.home.luguber.info/inful/docnav/internal/workspace"
)

// Options configures the build pipeline.
type Options struct {
	ContentRoot string
	// GitRoot is searched upwards for the repository; defaults to ContentRoot.
	GitRoot string
	// SidebarDepth overrides themeConfig.sidebarDepth for header extraction when > 0.
	SidebarDepth int

	OutputDir string
	Formats   []config.OutputFormat
	// Clean stages the output and replaces OutputDir once the build succeeded.
	Clean bool

	AllowLintErrors  bool
	ExpectedPrefixes []string
	LastUpdated      bool

	Verify        bool
	VerifyOptions linkverify.Options

	Hugo hugo.Options

	// Site constructs the configuration; defaults to navigation.Build.
	Site func() *navigation.SiteConfig
}

// OptionsFromConfig maps a loaded tool configuration onto build options.
func OptionsFromConfig(cfg *config.Config) Options {
	return Options{
		ContentRoot:      cfg.Content.Root,
		GitRoot:          cfg.Content.GitRoot,
		SidebarDepth:     cfg.Build.SidebarDepth,
		OutputDir:        cfg.Output.Directory,
		Formats:          cfg.Output.Formats,
		Clean:            cfg.Output.Clean,
		AllowLintErrors:  cfg.Build.AllowLintErrors,
		ExpectedPrefixes: cfg.Build.ExpectedPrefixes,
		LastUpdated:      cfg.Build.LastUpdated,
		Verify:           cfg.Verify.Enabled,
		VerifyOptions: linkverify.Options{
			External:         cfg.Verify.External,
			Timeout:          cfg.VerifyTimeout(),
			MaxConcurrent:    cfg.Verify.MaxConcurrent,
			FollowRedirects:  cfg.Verify.FollowRedirects,
			CacheTTL:         cfg.CacheTTL(),
			CacheTTLFailures: cfg.CacheTTLFailures(),
			Retry:            cfg.RetryPolicy(),
		},
		Hugo: hugo.Options{
			Theme:   cfg.Hugo.Theme,
			BaseURL: cfg.Hugo.BaseURL,
			Params:  cfg.Hugo.Params,
		},
	}
}

// Request carries per-run inputs.
type Request struct {
	// Trigger names what started the build: cli, watch, schedule.
	Trigger string
	// DryRun runs every stage except emit.
	DryRun bool
}

// Service runs builds. It is safe to reuse across runs but runs must not overlap.
type Service struct {
	opts       Options
	resolver   *content.Resolver
	recorder   metrics.Recorder
	publisher  events.Publisher
	cache      linkverify.Cache
	store      eventstore.Store
	httpClient *http.Client
}

// NewService creates a service with a noop recorder and publisher.
func NewService(opts Options) *Service {
	if opts.Site == nil {
		opts.Site = navigation.Build
	}
	if opts.GitRoot == "" {
		opts.GitRoot = opts.ContentRoot
	}
	if len(opts.Formats) == 0 {
		opts.Formats = []config.OutputFormat{config.FormatVuePress}
	}
	return &Service{
		opts:      opts,
		resolver:  content.NewResolver(opts.ContentRoot),
		recorder:  metrics.NoopRecorder{},
		publisher: events.NoopPublisher{},
	}
}

// WithRecorder sets the metrics recorder.
func (s *Service) WithRecorder(r metrics.Recorder) *Service {
	if r != nil {
		s.recorder = r
	}
	return s
}

// WithPublisher sets the event publisher for build summaries and broken links.
func (s *Service) WithPublisher(p events.Publisher) *Service {
	if p != nil {
		s.publisher = p
	}
	return s
}

// WithLinkCache sets the link cache used by the verify stage.
func (s *Service) WithLinkCache(c linkverify.Cache) *Service {
	s.cache = c
	return s
}

// WithStore sets the build history store. Without one nothing is recorded.
func (s *Service) WithStore(st eventstore.Store) *Service {
	s.store = st
	return s
}

// WithHTTPClient replaces the client used for external link checks.
func (s *Service) WithHTTPClient(c *http.Client) *Service {
	s.httpClient = c
	return s
}

// Options returns the effective options.
func (s *Service) Options() Options { return s.opts }

// run holds the state handed from stage to stage.
type run struct {
	req    Request
	report *Report
	depth  int
	hugo   hugo.Options
}

// Run executes the build pipeline. The report is returned even when the
// build failed; err is nil for successful and warning outcomes.
func (s *Service) Run(ctx context.Context, req Request) (*Report, error) {
	if req.Trigger == "" {
		req.Trigger = "cli"
	}
	report := &Report{
		BuildID:   uuid.NewString(),
		Trigger:   req.Trigger,
		StartTime: time.Now(),
	}
	ctx = observability.WithBuildID(ctx, report.BuildID)
	ctx = observability.WithTrigger(ctx, req.Trigger)

	report.Commit = s.commit(ctx)
	started, evErr := eventstore.NewBuildStarted(report.BuildID, eventstore.BuildStartedMeta{
		Trigger:     req.Trigger,
		ContentRoot: s.opts.ContentRoot,
		Formats:     formatNames(s.opts.Formats),
		Commit:      report.Commit,
	})
	s.appendEvent(ctx, started, evErr)
	observability.InfoContext(ctx, "Build started",
		logfields.Path(s.opts.ContentRoot),
		slog.Any("formats", formatNames(s.opts.Formats)))

	r := &run{req: req, report: report, hugo: s.opts.Hugo}
	err := s.pipeline(ctx, r)
	return s.finish(ctx, report, err)
}

func (s *Service) pipeline(ctx context.Context, r *run) error {
	if err := s.runStage(ctx, r.report, StageConstruct, func(ctx context.Context) error { return s.construct(ctx, r) }); err != nil {
		return err
	}
	if err := s.runStage(ctx, r.report, StageEnrich, func(ctx context.Context) error { return s.enrich(ctx, r) }); err != nil {
		return err
	}
	if err := s.runStage(ctx, r.report, StageLint, func(ctx context.Context) error { return s.lint(ctx, r) }); err != nil {
		return err
	}
	if s.opts.Verify {
		if err := s.runStage(ctx, r.report, StageVerify, func(ctx context.Context) error { return s.verify(ctx, r) }); err != nil {
			return err
		}
	} else {
		s.skipStage(ctx, r.report, StageVerify)
	}
	if r.req.DryRun {
		s.skipStage(ctx, r.report, StageEmit)
		return nil
	}
	return s.runStage(ctx, r.report, StageEmit, func(ctx context.Context) error { return s.emit(ctx, r) })
}

// runStage times fn and records its result. Warning-severity errors are
// recorded and swallowed so the pipeline continues.
func (s *Service) runStage(ctx context.Context, report *Report, name string, fn func(context.Context) error) error {
	ctx = observability.WithStage(ctx, name)
	start := time.Now()

	var err error
	if ctxErr := ctx.Err(); ctxErr != nil {
		err = canceled(ctxErr)
	} else {
		err = fn(ctx)
	}
	d := time.Since(start)
	result := stageResult(err)

	s.recorder.ObserveStageDuration(name, d)
	s.recorder.IncStageResult(name, result)
	report.Stages = append(report.Stages, StageResult{Name: name, Result: result, Duration: d, Err: err})

	meta := eventstore.StageCompletedMeta{Stage: name, Result: string(result), DurationMS: d.Milliseconds()}
	if err != nil {
		meta.Error = err.Error()
	}
	ev, evErr := eventstore.NewStageCompleted(report.BuildID, meta)
	s.appendEvent(ctx, ev, evErr)

	switch result {
	case metrics.ResultSuccess:
		observability.DebugContext(ctx, "Stage completed", logfields.DurationMS(float64(d.Microseconds())/1000))
	case metrics.ResultWarning:
		observability.WarnContext(ctx, "Stage completed with warnings", logfields.Error(err))
		return nil
	case metrics.ResultCanceled:
		observability.WarnContext(ctx, "Stage canceled")
	default:
		observability.ErrorContext(ctx, "Stage failed", logfields.Error(err))
	}
	return err
}

func (s *Service) skipStage(ctx context.Context, report *Report, name string) {
	s.recorder.IncStageResult(name, metrics.ResultSkipped)
	report.Stages = append(report.Stages, StageResult{Name: name, Result: metrics.ResultSkipped})
	ev, err := eventstore.NewStageCompleted(report.BuildID, eventstore.StageCompletedMeta{Stage: name, Result: string(metrics.ResultSkipped)})
	s.appendEvent(ctx, ev, err)
}

func stageResult(err error) metrics.ResultLabel {
	switch {
	case err == nil:
		return metrics.ResultSuccess
	case isCanceled(err):
		return metrics.ResultCanceled
	case derrors.GetSeverity(err) == derrors.SeverityWarning:
		return metrics.ResultWarning
	default:
		return metrics.ResultFatal
	}
}

func isCanceled(err error) bool {
	return errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded)
}

func canceled(err error) error {
	return derrors.WrapError(err, derrors.CategoryRuntime, "build canceled").Build()
}

func (s *Service) construct(ctx context.Context, r *run) error {
	site := s.opts.Site()
	if site == nil || site.Sidebar().Len() == 0 {
		return derrors.BuildError("navigation registry is empty").Build()
	}
	r.report.Site = site

	r.depth = site.ThemeConfig.SidebarDepth
	if s.opts.SidebarDepth > 0 {
		r.depth = s.opts.SidebarDepth
	}

	data, err := emit.EncodeVuePress(site)
	if err != nil {
		return derrors.WrapError(err, derrors.CategoryBuild, "failed to encode configuration").Build()
	}
	sum := sha256.Sum256(data)
	r.report.Fingerprint = hex.EncodeToString(sum[:])

	observability.DebugContext(ctx, "Configuration constructed",
		slog.Int("prefixes", site.Sidebar().Len()),
		slog.Int("depth", r.depth),
		slog.String("fingerprint", r.report.Fingerprint))
	return nil
}

func (s *Service) enrich(ctx context.Context, r *run) error {
	ix, err := s.resolver.Index(ctx, r.report.Site.Sidebar(), r.depth)
	if err != nil {
		return err
	}
	r.report.Pages = ix.Len()
	s.recorder.SetPagesIndexed(ix.Len())

	for _, p := range ix.Problems {
		if p.Missing() {
			r.report.Missing = append(r.report.Missing, p.Ref)
			observability.WarnContext(ctx, "Sidebar page has no source file",
				logfields.Prefix(p.Prefix), logfields.Page(string(p.Ref)))
			continue
		}
		observability.WarnContext(ctx, "Sidebar page could not be read",
			logfields.Prefix(p.Prefix), logfields.Page(string(p.Ref)), logfields.Error(p.Err))
	}

	titles := make(map[navigation.PageRef]string, ix.Len())
	headers := make(map[navigation.PageRef][]markdown.Heading, ix.Len())
	for _, p := range ix.Pages() {
		if p.Title != "" {
			titles[p.Ref] = p.Title
		}
		if len(p.Headers) > 0 {
			headers[p.Ref] = p.Headers
		}
		if p.FingerprintStale {
			r.report.StaleFingerprints = append(r.report.StaleFingerprints, p.Ref)
			observability.WarnContext(ctx, "Page fingerprint is stale",
				logfields.Page(string(p.Ref)), logfields.Path(p.Path))
		}
	}
	r.hugo.Titles = titles
	r.hugo.Headers = headers
	r.report.Headers = headers

	observability.InfoContext(ctx, "Content indexed",
		slog.Int("pages", ix.Len()),
		slog.Int("missing", len(r.report.Missing)))

	var stale error
	if n := len(r.report.StaleFingerprints); n > 0 {
		stale = derrors.ContentError("pages carry stale fingerprints").
			WithContext("pages", n).
			Warning().
			Build()
	}

	if !s.opts.LastUpdated {
		return stale
	}
	updated, err := s.lastUpdated(ix)
	if err != nil {
		return derrors.WrapError(err, derrors.CategoryGit, "last updated dates unavailable").
			WithContext("git_root", s.opts.GitRoot).
			Warning().
			Build()
	}
	r.hugo.LastUpdated = updated
	return stale
}

func (s *Service) lastUpdated(ix *content.Index) (map[navigation.PageRef]time.Time, error) {
	// Page paths are relative to the content root, which may itself be
	// relative to the working directory and differ from the git root.
	root, err := filepath.Abs(s.opts.ContentRoot)
	if err != nil {
		return nil, err
	}
	pages := ix.Pages()
	files := make([]string, 0, len(pages))
	refs := make(map[string]navigation.PageRef, len(pages))
	for _, p := range pages {
		full := filepath.Join(root, filepath.FromSlash(p.Path))
		files = append(files, full)
		refs[full] = p.Ref
	}
	times, err := git.LastUpdated(s.opts.GitRoot, files)
	if err != nil {
		return nil, err
	}
	out := make(map[navigation.PageRef]time.Time, len(times))
	for file, when := range times {
		out[refs[file]] = when
	}
	return out, nil
}

func (s *Service) lint(ctx context.Context, r *run) error {
	result := lint.NewLinter(&lint.Config{ExpectedPrefixes: s.opts.ExpectedPrefixes}).Lint(r.report.Site)
	r.report.Lint = result

	s.recorder.AddLintIssues("error", result.ErrorCount())
	s.recorder.AddLintIssues("warning", result.WarningCount())
	s.recorder.AddLintIssues("info", result.InfoCount())

	for _, is := range result.Issues {
		if is.Severity == lint.SeverityInfo {
			continue
		}
		observability.DebugContext(ctx, is.Message,
			logfields.Rule(is.Rule),
			slog.String("location", is.Location),
			slog.String("severity", is.Severity.String()))
	}

	if !result.HasErrors() {
		return nil
	}
	b := derrors.LintError("configuration has lint errors").
		WithContext("errors", result.ErrorCount()).
		WithContext("warnings", result.WarningCount())
	if s.opts.AllowLintErrors {
		return b.Warning().Build()
	}
	return b.UserAction().Build()
}

func (s *Service) verify(ctx context.Context, r *run) error {
	svc := linkverify.NewService(s.resolver, s.opts.VerifyOptions).
		WithRecorder(s.recorder).
		WithPublisher(s.publisher)
	if s.cache != nil {
		svc = svc.WithCache(s.cache)
	}
	if s.httpClient != nil {
		svc = svc.WithHTTPClient(s.httpClient)
	}

	vr, err := svc.Verify(ctx, r.report.Site, r.report.BuildID)
	r.report.Verify = vr
	if err != nil {
		return err
	}
	observability.InfoContext(ctx, "References verified",
		slog.Int("checked", vr.Checked),
		slog.Int("broken", len(vr.Findings)))
	if len(vr.Findings) > 0 {
		return derrors.ContentError("broken references").
			WithContext("internal", len(vr.Broken(linkverify.KindInternal))).
			WithContext("external", len(vr.Broken(linkverify.KindExternal))).
			Warning().
			Build()
	}
	return nil
}

func (s *Service) emit(ctx context.Context, r *run) error {
	target := s.opts.OutputDir
	var ws *workspace.Manager
	if s.opts.Clean {
		ws = workspace.NewManager(workspace.StagingBase(s.opts.OutputDir))
		if err := ws.Create(); err != nil {
			return derrors.WrapError(err, derrors.CategoryFileSystem, "failed to create staging directory").Build()
		}
		defer func() {
			if err := ws.Cleanup(); err != nil {
				observability.WarnContext(ctx, "Failed to clean up staging directory", logfields.Error(err))
			}
		}()
		target = ws.GetPath()
	}

	paths, err := emit.Write(ctx, r.report.Site, target, s.opts.Formats, r.hugo)
	if err != nil {
		return err
	}

	if ws != nil {
		if err := ws.Promote(s.opts.OutputDir); err != nil {
			return derrors.WrapError(err, derrors.CategoryFileSystem, "failed to replace output directory").
				WithContext("path", s.opts.OutputDir).
				Build()
		}
		for i, p := range paths {
			if rel, err := filepath.Rel(target, p); err == nil {
				paths[i] = filepath.Join(s.opts.OutputDir, rel)
			}
		}
	}
	r.report.Outputs = paths

	observability.InfoContext(ctx, "Configuration written",
		logfields.Path(s.opts.OutputDir),
		slog.Int("files", len(paths)))
	return nil
}

// finish settles the outcome, runs the record stage and reports metrics.
func (s *Service) finish(ctx context.Context, report *Report, err error) (*Report, error) {
	report.EndTime = time.Now()
	report.Duration = report.EndTime.Sub(report.StartTime)
	switch {
	case err != nil && isCanceled(err):
		report.Outcome = OutcomeCanceled
	case err != nil:
		report.Outcome = OutcomeFailed
	case report.hasWarnings():
		report.Outcome = OutcomeWarning
	default:
		report.Outcome = OutcomeSuccess
	}

	// Canceled builds are still recorded.
	recordCtx := context.WithoutCancel(ctx)
	_ = s.runStage(recordCtx, report, StageRecord, func(ctx context.Context) error { return s.record(ctx, report, err) })

	s.recorder.IncBuildOutcome(string(report.Outcome))
	s.recorder.ObserveBuildDuration(report.Duration)

	attrs := []slog.Attr{
		logfields.Outcome(string(report.Outcome)),
		logfields.DurationMS(float64(report.Duration.Microseconds()) / 1000),
		slog.Int("pages", report.Pages),
		slog.Int("missing", len(report.Missing)),
		slog.Int("lint_errors", report.LintErrors()),
		slog.Int("broken_links", report.BrokenLinks()),
	}
	if err != nil {
		observability.ErrorContext(ctx, "Build failed", append(attrs, logfields.Error(err))...)
		return report, err
	}
	observability.InfoContext(ctx, "Build completed", attrs...)
	return report, nil
}

func (s *Service) record(ctx context.Context, report *Report, buildErr error) error {
	meta := eventstore.BuildCompletedMeta{
		Outcome:      string(report.Outcome),
		DurationMS:   report.Duration.Milliseconds(),
		Pages:        report.Pages,
		Missing:      len(report.Missing),
		LintErrors:   report.LintErrors(),
		LintWarnings: report.LintWarnings(),
		BrokenLinks:  report.BrokenLinks(),
		Fingerprint:  report.Fingerprint,
		Outputs:      report.Outputs,
	}
	if buildErr != nil {
		meta.Error = buildErr.Error()
	}

	var errs []error
	if s.store != nil {
		ev, err := eventstore.NewBuildCompleted(report.BuildID, meta)
		if err == nil {
			err = s.store.Append(ctx, ev)
		}
		if err != nil {
			errs = append(errs, err)
		}
	}
	if err := s.publisher.PublishBuild(ctx, summary(report)); err != nil {
		errs = append(errs, err)
	}
	if len(errs) > 0 {
		return derrors.WrapError(errors.Join(errs...), derrors.CategoryEvents, "build record incomplete").
			Warning().
			Build()
	}
	return nil
}

func summary(report *Report) *events.BuildSummary {
	return &events.BuildSummary{
		BuildID:      report.BuildID,
		Outcome:      string(report.Outcome),
		StartedAt:    report.StartTime,
		Duration:     report.Duration,
		Pages:        report.Pages,
		Missing:      len(report.Missing),
		LintErrors:   report.LintErrors(),
		LintWarnings: report.LintWarnings(),
		BrokenLinks:  report.BrokenLinks(),
		Fingerprint:  report.Fingerprint,
		Outputs:      report.Outputs,
		Commit:       report.Commit,
	}
}

// appendEvent stores ev when a store is configured. History is best effort:
// failures are logged and never fail the build.
func (s *Service) appendEvent(ctx context.Context, ev eventstore.Event, err error) {
	if s.store == nil {
		return
	}
	if err == nil {
		err = s.store.Append(context.WithoutCancel(ctx), ev)
	}
	if err != nil {
		observability.WarnContext(ctx, "Failed to record build event", logfields.Error(err))
	}
}

func (s *Service) commit(ctx context.Context) string {
	repo, err := git.Open(s.opts.GitRoot)
	if err != nil {
		observability.DebugContext(ctx, "Content is not in a git repository", logfields.Error(err))
		return ""
	}
	head, err := repo.Head()
	if err != nil {
		observability.DebugContext(ctx, "Repository has no HEAD", logfields.Error(err))
		return ""
	}
	return head
}

func formatNames(formats []config.OutputFormat) []string {
	out := make([]string, len(formats))
	for i, f := range formats {
		out[i] = string(f)
	}
	return out
}
