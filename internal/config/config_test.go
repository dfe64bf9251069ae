package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	derrors "git.home.luguber.info/inful/docnav/internal/foundation/errors"
	"git.home.luguber.info/inful/docnav/internal/navigation"
	"git.home.luguber.info/inful/docnav/internal/retry"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "docnav.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func TestLoad_AppliesDefaults(t *testing.T) {
	cfg, err := Load(writeConfig(t, "version: \"1\"\n"))
	require.NoError(t, err)

	assert.Equal(t, "src", cfg.Content.Root)
	assert.Equal(t, "src", cfg.Content.GitRoot)
	assert.Equal(t, "./dist", cfg.Output.Directory)
	assert.Equal(t, []OutputFormat{FormatVuePress}, cfg.Output.Formats)
	assert.Equal(t, navigation.DeclaredPrefixes(), cfg.Build.ExpectedPrefixes)
	assert.Equal(t, "hextra", cfg.Hugo.Theme)
	assert.Equal(t, 10*time.Second, cfg.VerifyTimeout())
	assert.Equal(t, 10, cfg.Verify.MaxConcurrent)
	assert.Equal(t, "docnav-link-cache", cfg.Events.KVBucket)
	assert.Equal(t, ":8080", cfg.Serve.Addr)
	assert.Equal(t, 500*time.Millisecond, cfg.Debounce())
	assert.Equal(t, LogLevelInfo, cfg.Logging.Level)
	assert.Equal(t, LogFormatText, cfg.Logging.Format)
}

func TestLoad_NormalizesAndExpandsEnv(t *testing.T) {
	t.Setenv("DOCNAV_TEST_OUT", "/tmp/site")
	cfg, err := Load(writeConfig(t, `
output:
  directory: ${DOCNAV_TEST_OUT}
  formats: [JSON, yml, hugo, vuepress]
hugo:
  theme: " Relearn "
logging:
  level: DEBUG
  format: Json
`))
	require.NoError(t, err)

	assert.Equal(t, "/tmp/site", cfg.Output.Directory)
	assert.Equal(t, []OutputFormat{FormatVuePress, FormatYAML, FormatHugo}, cfg.Output.Formats)
	assert.Equal(t, "relearn", cfg.Hugo.Theme)
	assert.Equal(t, LogLevelDebug, cfg.Logging.Level)
	assert.Equal(t, LogFormatJSON, cfg.Logging.Format)
}

func TestLoad_Errors(t *testing.T) {
	tests := []struct {
		name     string
		content  string
		category derrors.ErrorCategory
	}{
		{"unknown format", "output:\n  formats: [pdf]\n", derrors.CategoryValidation},
		{"bad version", "version: \"9\"\n", derrors.CategoryConfig},
		{"bad duration", "verify:\n  timeout: soon\n", derrors.CategoryValidation},
		{"bad prefix", "build:\n  expected_prefixes: [api]\n", derrors.CategoryValidation},
		{"duplicate prefix", "build:\n  expected_prefixes: [/api/, /api/]\n", derrors.CategoryValidation},
		{"bad retry backoff", "verify:\n  retry_backoff: random\n", derrors.CategoryValidation},
		{"too many retries", "verify:\n  retries: 50\n", derrors.CategoryValidation},
		{"bad nats url", "events:\n  nats_url: http://localhost\n", derrors.CategoryValidation},
		{"bad yaml", "output: [\n", derrors.CategoryConfig},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			_, err := Load(writeConfig(t, tc.content))
			require.Error(t, err)
			assert.True(t, derrors.HasCategory(err, tc.category), "got %v", err)
		})
	}
}

func TestRetryPolicy(t *testing.T) {
	cfg, err := Load(writeConfig(t, "verify:\n  retries: 3\n  retry_backoff: exponential\n  retry_delay: 200ms\n"))
	require.NoError(t, err)
	p := cfg.RetryPolicy()
	assert.Equal(t, retry.ModeExponential, p.Mode)
	assert.Equal(t, 3, p.MaxRetries)
	assert.Equal(t, 200*time.Millisecond, p.Initial)
	assert.Equal(t, 2*time.Second, p.Max)

	cfg, err = Default()
	require.NoError(t, err)
	assert.Zero(t, cfg.RetryPolicy().MaxRetries, "retries are opt-in")
}

func TestLoad_MissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "absent.yaml"))
	require.Error(t, err)
	assert.True(t, derrors.HasCategory(err, derrors.CategoryNotFound))

	cfg, err := LoadOrDefault(filepath.Join(t.TempDir(), "absent.yaml"))
	require.NoError(t, err)
	assert.Equal(t, CurrentVersion, cfg.Version)
}

func TestInit_WritesLoadableExample(t *testing.T) {
	path := filepath.Join(t.TempDir(), "docnav.yaml")
	require.NoError(t, Init(path, false))

	err := Init(path, false)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "already exists")
	require.NoError(t, Init(path, true))

	t.Setenv("DOCNAV_NATS_URL", "nats://localhost:4222")
	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, []OutputFormat{FormatVuePress, FormatYAML, FormatHugo}, cfg.Output.Formats)
	assert.Equal(t, "nats://localhost:4222", cfg.Events.NATSURL)
	assert.True(t, cfg.Verify.Enabled)
}

func TestLogLevel_SlogLevel(t *testing.T) {
	assert.Equal(t, LogLevelWarn, NormalizeLogLevel("Warning"))
	assert.Equal(t, LogLevelInfo, NormalizeLogLevel("verbose"))
	assert.Equal(t, "DEBUG", LogLevelDebug.SlogLevel().String())
	assert.Equal(t, "ERROR", LogLevelError.SlogLevel().String())
}
