package commands

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/alecthomas/kong"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"git.home.luguber.info/inful/docnav/internal/emit"
	"git.home.luguber.info/inful/docnav/internal/eventstore"
	derrors "git.home.luguber.info/inful/docnav/internal/foundation/errors"
	"git.home.luguber.info/inful/docnav/internal/lint"
)

// run parses args like main does and returns the command output.
func run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var cli CLI
	parser, err := kong.New(&cli,
		kong.Name("docnav"),
		kong.Exit(func(int) {}),
		kong.Vars{"version": "test"},
	)
	require.NoError(t, err)
	kctx, err := parser.Parse(args)
	require.NoError(t, err)

	var out bytes.Buffer
	err = kctx.Run(&Global{Out: &out}, &cli)
	return out.String(), err
}

// project writes a configuration and a small content tree into a temp dir
// and changes into it.
func project(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	t.Chdir(dir)

	require.NoError(t, os.MkdirAll(filepath.Join(dir, "src", "guide"), 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "src", "guide", "introduction.md"), []byte("# Introducción\n"), 0o600))

	cfg := strings.Join([]string{
		"content:",
		"  root: src",
		"output:",
		"  directory: dist",
		"  formats: [vuepress, yaml]",
		"storage:",
		"  history_db: state/history.db",
		"",
	}, "\n")
	require.NoError(t, os.WriteFile(filepath.Join(dir, "docnav.yaml"), []byte(cfg), 0o600))
	return dir
}

func TestInit(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "docnav.yaml")

	out, err := run(t, "-c", path, "init")
	require.NoError(t, err)
	assert.Contains(t, out, "initialized successfully")
	_, err = os.Stat(path)
	require.NoError(t, err)

	_, err = run(t, "-c", path, "init")
	require.Error(t, err)
	assert.True(t, derrors.HasCategory(err, derrors.CategoryValidation))

	_, err = run(t, "-c", path, "init", "--force")
	require.NoError(t, err)
}

func TestBuild_WritesOutputsAndHistory(t *testing.T) {
	dir := project(t)

	out, err := run(t, "build")
	require.NoError(t, err)
	assert.Contains(t, out, "warning", "most registry pages are missing from the fixture")
	assert.Contains(t, out, "missing /guide/instance")
	assert.Contains(t, out, "wrote "+filepath.Join("dist", emit.VuePressFile))

	for _, name := range []string{emit.VuePressFile, emit.YAMLFile} {
		_, err := os.Stat(filepath.Join(dir, "dist", name))
		require.NoError(t, err, name)
	}

	out, err = run(t, "history", "--json")
	require.NoError(t, err)
	var records []eventstore.BuildRecord
	require.NoError(t, json.Unmarshal([]byte(out), &records))
	require.Len(t, records, 1)
	assert.Equal(t, "warning", records[0].Outcome)
	assert.Equal(t, "cli", records[0].Trigger)
	assert.Len(t, records[0].Outputs, 2)

	out, err = run(t, "history", records[0].BuildID)
	require.NoError(t, err)
	assert.Contains(t, out, "construct")
	assert.Contains(t, out, "skipped", "verify is disabled")

	out, err = run(t, "history")
	require.NoError(t, err)
	assert.Contains(t, out, "BUILD")
	assert.Contains(t, out, records[0].BuildID)
}

func TestBuild_FlagsOverrideConfig(t *testing.T) {
	dir := project(t)

	_, err := run(t, "build", "-o", "other", "-f", "yml", "--clean")
	require.NoError(t, err)
	_, err = os.Stat(filepath.Join(dir, "other", emit.YAMLFile))
	require.NoError(t, err)
	_, err = os.Stat(filepath.Join(dir, "other", emit.VuePressFile))
	assert.True(t, os.IsNotExist(err))

	_, err = run(t, "build", "-f", "pdf")
	require.Error(t, err)
	assert.True(t, derrors.HasCategory(err, derrors.CategoryValidation))
}

func TestBuild_DryRunWritesNothing(t *testing.T) {
	dir := project(t)

	out, err := run(t, "build", "--dry-run")
	require.NoError(t, err)
	assert.NotContains(t, out, "wrote")
	_, err = os.Stat(filepath.Join(dir, "dist"))
	assert.True(t, os.IsNotExist(err))
}

func TestLint(t *testing.T) {
	project(t)

	out, err := run(t, "lint", "-f", "json")
	require.NoError(t, err)
	var report lint.JSONOutput
	require.NoError(t, json.Unmarshal([]byte(out), &report))
	assert.Equal(t, 5, report.PrefixesTotal)
	assert.Zero(t, report.ErrorCount)

	_, err = run(t, "lint", "--expected-prefix", "/guide/")
	require.Error(t, err)
	assert.True(t, derrors.HasCategory(err, derrors.CategoryLint))
	assert.Equal(t, 3, derrors.NewCLIErrorAdapter(false, nil).ExitCodeFor(err))
}

func TestLookup(t *testing.T) {
	project(t)

	out, err := run(t, "lookup", "/guide/introduction")
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(out, "/guide/introduction -> /guide/\n"))
	assert.Contains(t, out, "    /guide/introduction\n", "pages are indented under their group")

	out, err = run(t, "lookup", "-f", "json", "/api/application-config")
	require.NoError(t, err)
	var res struct {
		Prefix string            `json:"prefix"`
		Items  []json.RawMessage `json:"items"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &res))
	assert.Equal(t, "/api/", res.Prefix)
	assert.NotEmpty(t, res.Items)

	out, err = run(t, "lookup", "-f", "yaml", "/cookbook/")
	require.NoError(t, err)
	assert.Contains(t, out, "prefix: /cookbook/")

	_, err = run(t, "lookup", "/nowhere")
	require.Error(t, err)
	assert.True(t, derrors.HasCategory(err, derrors.CategoryNotFound))
}

func TestVerify_ReportsMissingSources(t *testing.T) {
	project(t)

	out, err := run(t, "verify")
	require.Error(t, err)
	assert.True(t, derrors.HasCategory(err, derrors.CategoryContent))
	assert.Contains(t, out, "internal /guide/instance")
	assert.NotContains(t, out, "internal /guide/introduction ")
	assert.Contains(t, out, "broken")
}

func TestHistory_WithoutDatabase(t *testing.T) {
	project(t)

	_, err := run(t, "history")
	require.Error(t, err)
	assert.True(t, derrors.HasCategory(err, derrors.CategoryNotFound))
}

func TestLoadConfig_MissingFileUsesDefaults(t *testing.T) {
	t.Chdir(t.TempDir())
	cli := &CLI{Config: "absent.yaml"}
	cfg, err := cli.loadConfig()
	require.NoError(t, err)
	assert.Equal(t, "src", cfg.Content.Root)
}
