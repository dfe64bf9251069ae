package build

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing/object"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"

	"git.home.luguber.info/inful/docnav/internal/config"
	"git.home.luguber.info/inful/docnav/internal/emit"
	"git.home.luguber.info/inful/docnav/internal/events"
	"git.home.luguber.info/inful/docnav/internal/eventstore"
	derrors "git.home.luguber.info/inful/docnav/internal/foundation/errors"
	"git.home.luguber.info/inful/docnav/internal/hugo"
	"git.home.luguber.info/inful/docnav/internal/linkverify"
	"git.home.luguber.info/inful/docnav/internal/metrics"
	"git.home.luguber.info/inful/docnav/internal/navigation"
)

var testPrefixes = []string{"/guide/", "/api/"}

func testSite() *navigation.SiteConfig {
	site := navigation.Build()
	site.ThemeConfig.Sidebar = navigation.NewSidebar().
		Set("/guide/",
			navigation.Page("/guide/"),
			navigation.Page("/guide/introduction"),
			navigation.Group("Esenciales", nil, navigation.Page("/guide/instance")),
		).
		Set("/api/", navigation.Page("/api/"))
	return site
}

var testContent = map[string]string{
	"guide/README.md":       "# Guía\n",
	"guide/introduction.md": "---\ntitle: Introducción\n---\n# Intro\n\n## ¿Qué es Vue.js?\n",
	"guide/instance.md":     "# La Instancia\n",
	"api/README.md":         "# API\n",
}

func writeTree(t *testing.T, root string, files map[string]string) {
	t.Helper()
	for name, body := range files {
		full := filepath.Join(root, filepath.FromSlash(name))
		require.NoError(t, os.MkdirAll(filepath.Dir(full), 0o750))
		require.NoError(t, os.WriteFile(full, []byte(body), 0o600))
	}
}

func testOptions(t *testing.T, files map[string]string) Options {
	t.Helper()
	root := t.TempDir()
	writeTree(t, root, files)
	return Options{
		ContentRoot:      root,
		OutputDir:        filepath.Join(t.TempDir(), "dist"),
		Formats:          []config.OutputFormat{config.FormatVuePress},
		ExpectedPrefixes: testPrefixes,
		Site:             testSite,
	}
}

type recordingRecorder struct {
	metrics.NoopRecorder
	mu       sync.Mutex
	stages   map[string]metrics.ResultLabel
	outcomes []string
	pages    int
}

func newRecorder() *recordingRecorder {
	return &recordingRecorder{stages: map[string]metrics.ResultLabel{}}
}

func (r *recordingRecorder) IncStageResult(stage string, result metrics.ResultLabel) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.stages[stage] = result
}

func (r *recordingRecorder) IncBuildOutcome(outcome string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.outcomes = append(r.outcomes, outcome)
}

func (r *recordingRecorder) SetPagesIndexed(n int) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.pages = n
}

type recordingPublisher struct {
	mu     sync.Mutex
	builds []*events.BuildSummary
	broken []*linkverify.BrokenLinkEvent
}

func (p *recordingPublisher) PublishBuild(_ context.Context, s *events.BuildSummary) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.builds = append(p.builds, s)
	return nil
}

func (p *recordingPublisher) PublishBrokenLink(_ context.Context, e *linkverify.BrokenLinkEvent) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.broken = append(p.broken, e)
	return nil
}

func (p *recordingPublisher) Close() error { return nil }

func newStore(t *testing.T) *eventstore.SQLiteStore {
	t.Helper()
	store, err := eventstore.NewSQLiteStore(filepath.Join(t.TempDir(), "history.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close() })
	return store
}

func stageResults(report *Report) map[string]metrics.ResultLabel {
	out := map[string]metrics.ResultLabel{}
	for _, s := range report.Stages {
		out[s.Name] = s.Result
	}
	return out
}

func TestRun_Success(t *testing.T) {
	opts := testOptions(t, testContent)
	opts.Formats = []config.OutputFormat{config.FormatVuePress, config.FormatYAML, config.FormatHugo}
	rec := newRecorder()
	pub := &recordingPublisher{}
	store := newStore(t)

	report, err := NewService(opts).WithRecorder(rec).WithPublisher(pub).WithStore(store).
		Run(context.Background(), Request{})
	require.NoError(t, err)

	assert.Equal(t, OutcomeSuccess, report.Outcome)
	assert.Equal(t, "cli", report.Trigger)
	assert.Len(t, report.BuildID, 36)
	assert.Equal(t, 4, report.Pages)
	assert.Empty(t, report.Missing)
	assert.Zero(t, report.LintErrors())
	assert.Len(t, report.Fingerprint, 64)
	assert.False(t, report.EndTime.Before(report.StartTime))
	assert.Empty(t, report.Commit, "content is not in a repository")

	assert.Equal(t, map[string]metrics.ResultLabel{
		StageConstruct: metrics.ResultSuccess,
		StageEnrich:    metrics.ResultSuccess,
		StageLint:      metrics.ResultSuccess,
		StageVerify:    metrics.ResultSkipped,
		StageEmit:      metrics.ResultSuccess,
		StageRecord:    metrics.ResultSuccess,
	}, stageResults(report))
	assert.Equal(t, stageResults(report), rec.stages)
	assert.Equal(t, []string{"success"}, rec.outcomes)
	assert.Equal(t, 4, rec.pages)

	assert.Contains(t, report.Outputs, filepath.Join(opts.OutputDir, emit.VuePressFile))
	assert.Contains(t, report.Outputs, filepath.Join(opts.OutputDir, emit.YAMLFile))
	assert.FileExists(t, filepath.Join(opts.OutputDir, emit.HugoDir, hugo.ConfigFile))

	data, err := os.ReadFile(filepath.Join(opts.OutputDir, emit.HugoDir, hugo.ConfigFile))
	require.NoError(t, err)
	assert.Contains(t, string(data), "name: Introducción", "page titles name the sidebar menu")

	require.Len(t, pub.builds, 1)
	assert.Equal(t, report.BuildID, pub.builds[0].BuildID)
	assert.Equal(t, "success", pub.builds[0].Outcome)
	assert.Equal(t, report.Fingerprint, pub.builds[0].Fingerprint)

	rec2, err := eventstore.Get(context.Background(), store, report.BuildID)
	require.NoError(t, err)
	require.NotNil(t, rec2)
	assert.Equal(t, "success", rec2.Outcome)
	assert.Equal(t, "cli", rec2.Trigger)
	assert.Equal(t, 4, rec2.Pages)
	assert.Len(t, rec2.Stages, 6)
}

func TestRun_FingerprintIsStable(t *testing.T) {
	opts := testOptions(t, testContent)
	svc := NewService(opts)

	a, err := svc.Run(context.Background(), Request{})
	require.NoError(t, err)
	b, err := svc.Run(context.Background(), Request{})
	require.NoError(t, err)

	assert.Equal(t, a.Fingerprint, b.Fingerprint)
	assert.NotEqual(t, a.BuildID, b.BuildID)
}

func TestRun_MissingPagesAreWarnings(t *testing.T) {
	files := map[string]string{}
	for k, v := range testContent {
		if k != "guide/instance.md" {
			files[k] = v
		}
	}
	report, err := NewService(testOptions(t, files)).Run(context.Background(), Request{})
	require.NoError(t, err)

	assert.Equal(t, OutcomeWarning, report.Outcome)
	assert.Equal(t, []navigation.PageRef{"/guide/instance"}, report.Missing)
	assert.Equal(t, 3, report.Pages)
	assert.NotEmpty(t, report.Outputs)
}

func TestRun_LintErrorsFailBuild(t *testing.T) {
	opts := testOptions(t, testContent)
	opts.ExpectedPrefixes = []string{"/guide/"}
	store := newStore(t)

	report, err := NewService(opts).WithStore(store).Run(context.Background(), Request{})
	require.Error(t, err)
	assert.True(t, derrors.HasCategory(err, derrors.CategoryLint))

	assert.Equal(t, OutcomeFailed, report.Outcome)
	assert.Equal(t, 1, report.LintErrors())
	lintStage, ok := report.Stage(StageLint)
	require.True(t, ok)
	assert.Equal(t, metrics.ResultFatal, lintStage.Result)
	_, emitted := report.Stage(StageEmit)
	assert.False(t, emitted)
	_, recorded := report.Stage(StageRecord)
	assert.True(t, recorded)
	assert.NoFileExists(t, filepath.Join(opts.OutputDir, emit.VuePressFile))

	history, err := eventstore.History(context.Background(), store, 10)
	require.NoError(t, err)
	require.Len(t, history, 1)
	assert.Equal(t, "failed", history[0].Outcome)
	assert.Contains(t, history[0].Error, "lint errors")
	assert.Equal(t, 1, history[0].LintErrors)
}

func TestRun_AllowLintErrors(t *testing.T) {
	opts := testOptions(t, testContent)
	opts.ExpectedPrefixes = []string{"/guide/"}
	opts.AllowLintErrors = true

	report, err := NewService(opts).Run(context.Background(), Request{})
	require.NoError(t, err)
	assert.Equal(t, OutcomeWarning, report.Outcome)
	lintStage, _ := report.Stage(StageLint)
	assert.Equal(t, metrics.ResultWarning, lintStage.Result)
	assert.FileExists(t, filepath.Join(opts.OutputDir, emit.VuePressFile))
}

func TestRun_Canceled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	pub := &recordingPublisher{}

	report, err := NewService(testOptions(t, testContent)).WithPublisher(pub).Run(ctx, Request{Trigger: "watch"})
	require.Error(t, err)
	assert.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, OutcomeCanceled, report.Outcome)

	construct, _ := report.Stage(StageConstruct)
	assert.Equal(t, metrics.ResultCanceled, construct.Result)
	require.Len(t, pub.builds, 1, "canceled builds are still recorded")
	assert.Equal(t, "canceled", pub.builds[0].Outcome)
}

func TestRun_DryRun(t *testing.T) {
	opts := testOptions(t, testContent)
	report, err := NewService(opts).Run(context.Background(), Request{DryRun: true})
	require.NoError(t, err)

	emitStage, _ := report.Stage(StageEmit)
	assert.Equal(t, metrics.ResultSkipped, emitStage.Result)
	assert.Empty(t, report.Outputs)
	assert.NotEmpty(t, report.Fingerprint)
	assert.NoDirExists(t, opts.OutputDir)
}

func TestRun_VerifyReportsBrokenReferences(t *testing.T) {
	opts := testOptions(t, testContent)
	opts.Verify = true
	pub := &recordingPublisher{}

	report, err := NewService(opts).WithPublisher(pub).Run(context.Background(), Request{})
	require.NoError(t, err)

	require.NotNil(t, report.Verify)
	assert.Equal(t, OutcomeWarning, report.Outcome)
	verifyStage, _ := report.Stage(StageVerify)
	assert.Equal(t, metrics.ResultWarning, verifyStage.Result)

	// Sidebar refs all resolve; the navbar points at pages the tree lacks.
	for _, f := range report.Verify.Findings {
		assert.Equal(t, linkverify.KindInternal, f.Kind)
		assert.True(t, strings.HasPrefix(f.Source, "nav: "), f.Source)
	}
	assert.Positive(t, report.BrokenLinks())
	assert.Len(t, pub.broken, report.BrokenLinks())
	assert.Equal(t, report.BrokenLinks(), pub.builds[0].BrokenLinks)
}

func TestRun_CleanReplacesOutput(t *testing.T) {
	opts := testOptions(t, testContent)
	opts.Clean = true
	writeTree(t, opts.OutputDir, map[string]string{"stale.json": "{}"})

	report, err := NewService(opts).Run(context.Background(), Request{})
	require.NoError(t, err)

	assert.NoFileExists(t, filepath.Join(opts.OutputDir, "stale.json"))
	assert.FileExists(t, filepath.Join(opts.OutputDir, emit.VuePressFile))
	assert.Equal(t, []string{filepath.Join(opts.OutputDir, emit.VuePressFile)}, report.Outputs)

	entries, err := os.ReadDir(filepath.Dir(opts.OutputDir))
	require.NoError(t, err)
	for _, e := range entries {
		assert.False(t, strings.HasPrefix(e.Name(), ".docnav-"), "staging directory left behind: %s", e.Name())
	}
}

func TestRun_LastUpdatedFromGit(t *testing.T) {
	repoRoot := t.TempDir()
	repo, err := git.PlainInit(repoRoot, false)
	require.NoError(t, err)
	writeTree(t, filepath.Join(repoRoot, "src"), testContent)

	w, err := repo.Worktree()
	require.NoError(t, err)
	_, err = w.Add("src")
	require.NoError(t, err)
	when := time.Date(2021, 5, 4, 12, 0, 0, 0, time.UTC)
	sig := &object.Signature{Name: "Test User", Email: "test@example.com", When: when}
	head, err := w.Commit("docs", &git.CommitOptions{Author: sig, Committer: sig})
	require.NoError(t, err)

	opts := Options{
		ContentRoot:      filepath.Join(repoRoot, "src"),
		OutputDir:        filepath.Join(t.TempDir(), "dist"),
		Formats:          []config.OutputFormat{config.FormatHugo},
		ExpectedPrefixes: testPrefixes,
		LastUpdated:      true,
		Site:             testSite,
	}
	report, err := NewService(opts).Run(context.Background(), Request{})
	require.NoError(t, err)
	assert.Equal(t, OutcomeSuccess, report.Outcome)
	assert.Equal(t, head.String(), report.Commit)

	data, err := os.ReadFile(filepath.Join(opts.OutputDir, emit.HugoDir, hugo.ConfigFile))
	require.NoError(t, err)
	var root map[string]any
	require.NoError(t, yaml.Unmarshal(data, &root))
	lastmod := root["params"].(map[string]any)["lastmod"].(map[string]any)
	assert.Equal(t, "2021-05-04T12:00:00Z", lastmod["guide/introduction"])
	assert.Len(t, lastmod, 4)
}

func TestRun_LastUpdatedWithRelativeContentRoot(t *testing.T) {
	repoRoot := t.TempDir()
	repo, err := git.PlainInit(repoRoot, false)
	require.NoError(t, err)
	writeTree(t, filepath.Join(repoRoot, "src"), testContent)

	w, err := repo.Worktree()
	require.NoError(t, err)
	_, err = w.Add("src")
	require.NoError(t, err)
	when := time.Date(2020, 9, 1, 10, 0, 0, 0, time.UTC)
	sig := &object.Signature{Name: "Test User", Email: "test@example.com", When: when}
	_, err = w.Commit("docs", &git.CommitOptions{Author: sig, Committer: sig})
	require.NoError(t, err)

	t.Chdir(repoRoot)
	cfg, err := config.Default()
	require.NoError(t, err)
	require.Equal(t, "src", cfg.Content.Root)
	cfg.Build.LastUpdated = true
	cfg.Build.ExpectedPrefixes = testPrefixes
	cfg.Output.Formats = []config.OutputFormat{config.FormatHugo}

	opts := OptionsFromConfig(cfg)
	opts.Site = testSite
	report, err := NewService(opts).Run(context.Background(), Request{})
	require.NoError(t, err)
	assert.Equal(t, OutcomeSuccess, report.Outcome)

	data, err := os.ReadFile(filepath.Join(cfg.Output.Directory, emit.HugoDir, hugo.ConfigFile))
	require.NoError(t, err)
	var root map[string]any
	require.NoError(t, yaml.Unmarshal(data, &root))
	params := root["params"].(map[string]any)
	require.Contains(t, params, "lastmod")
	lastmod := params["lastmod"].(map[string]any)
	assert.Equal(t, "2020-09-01T10:00:00Z", lastmod["guide/introduction"])
	assert.Len(t, lastmod, 4)
}

func TestRun_HeadersAndStaleFingerprints(t *testing.T) {
	files := map[string]string{}
	for k, v := range testContent {
		files[k] = v
	}
	files["guide/instance.md"] = "---\nfingerprint: outdated\n---\n# La Instancia\n"
	opts := testOptions(t, files)
	opts.Formats = []config.OutputFormat{config.FormatHugo}

	report, err := NewService(opts).Run(context.Background(), Request{})
	require.NoError(t, err)
	assert.Equal(t, OutcomeWarning, report.Outcome)
	assert.Equal(t, []navigation.PageRef{"/guide/instance"}, report.StaleFingerprints)
	enrich, _ := report.Stage(StageEnrich)
	assert.Equal(t, metrics.ResultWarning, enrich.Result)
	assert.True(t, derrors.HasCategory(enrich.Err, derrors.CategoryContent))

	hs := report.Headers["/guide/introduction"]
	require.Len(t, hs, 1)
	assert.Equal(t, "¿Qué es Vue.js?", hs[0].Text)

	data, err := os.ReadFile(filepath.Join(opts.OutputDir, emit.HugoDir, hugo.ConfigFile))
	require.NoError(t, err)
	assert.Contains(t, string(data), "/guide/introduction/#"+hs[0].Slug)
}

func TestRun_LastUpdatedOutsideRepositoryWarns(t *testing.T) {
	opts := testOptions(t, testContent)
	opts.LastUpdated = true

	report, err := NewService(opts).Run(context.Background(), Request{})
	require.NoError(t, err)
	enrich, _ := report.Stage(StageEnrich)
	assert.Equal(t, metrics.ResultWarning, enrich.Result)
	assert.True(t, derrors.HasCategory(enrich.Err, derrors.CategoryGit))
	assert.Equal(t, OutcomeWarning, report.Outcome)
	assert.FileExists(t, filepath.Join(opts.OutputDir, emit.VuePressFile))
}

func TestRun_EmptyRegistryFails(t *testing.T) {
	opts := testOptions(t, testContent)
	opts.Site = func() *navigation.SiteConfig { return &navigation.SiteConfig{} }

	report, err := NewService(opts).Run(context.Background(), Request{})
	require.Error(t, err)
	assert.True(t, derrors.HasCategory(err, derrors.CategoryBuild))
	assert.Equal(t, OutcomeFailed, report.Outcome)
	assert.Nil(t, report.Site)
}

func TestOptionsFromConfig(t *testing.T) {
	cfg, err := config.Default()
	require.NoError(t, err)
	cfg.Build.AllowLintErrors = true
	cfg.Hugo.Theme = "relearn"

	opts := OptionsFromConfig(cfg)
	assert.Equal(t, cfg.Content.Root, opts.ContentRoot)
	assert.Equal(t, cfg.Output.Directory, opts.OutputDir)
	assert.Equal(t, cfg.Output.Formats, opts.Formats)
	assert.True(t, opts.AllowLintErrors)
	assert.Equal(t, "relearn", opts.Hugo.Theme)
	assert.Equal(t, cfg.VerifyTimeout(), opts.VerifyOptions.Timeout)
	assert.Equal(t, cfg.CacheTTL(), opts.VerifyOptions.CacheTTL)

	svc := NewService(Options{ContentRoot: "docs"})
	assert.Equal(t, "docs", svc.Options().GitRoot)
	assert.Equal(t, []config.OutputFormat{config.FormatVuePress}, svc.Options().Formats)
}
