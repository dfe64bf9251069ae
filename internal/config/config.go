// Package config loads the docnav tool configuration.
//
// Loading runs in four passes: .env files, ${VAR} expansion and YAML decoding,
// normalization of enumerations, defaults, then validation. A configuration
// that passed Load is safe to hand to the build without further checks.
package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	derrors "git.home.luguber.info/inful/docnav/internal/foundation/errors"
)

// CurrentVersion is the configuration format version written by Init.
const CurrentVersion = "1"

// Config is the complete tool configuration.
type Config struct {
	Version string        `yaml:"version"`
	Content ContentConfig `yaml:"content"`
	Output  OutputConfig  `yaml:"output"`
	Build   BuildConfig   `yaml:"build"`
	Hugo    HugoConfig    `yaml:"hugo"`
	Verify  VerifyConfig  `yaml:"verify"`
	Events  EventsConfig  `yaml:"events"`
	Storage StorageConfig `yaml:"storage"`
	Serve   ServeConfig   `yaml:"serve"`
	Logging LoggingConfig `yaml:"logging"`
}

// ContentConfig locates the Markdown tree the sidebar points into.
type ContentConfig struct {
	Root    string `yaml:"root"`
	GitRoot string `yaml:"git_root,omitempty"` // defaults to Root; the repository is searched upwards
}

// OutputConfig controls where and in which formats the configuration is written.
type OutputConfig struct {
	Directory string         `yaml:"directory"`
	Formats   []OutputFormat `yaml:"formats"`
	Clean     bool           `yaml:"clean"`
}

// BuildConfig tunes a build run.
type BuildConfig struct {
	// SidebarDepth overrides themeConfig.sidebarDepth for header extraction when > 0.
	SidebarDepth     int      `yaml:"sidebar_depth,omitempty"`
	AllowLintErrors  bool     `yaml:"allow_lint_errors"`
	ExpectedPrefixes []string `yaml:"expected_prefixes,omitempty"`
	LastUpdated      bool     `yaml:"last_updated"`
}

// HugoConfig configures the Hugo output format.
type HugoConfig struct {
	Theme   string         `yaml:"theme"`
	BaseURL string         `yaml:"base_url"`
	Params  map[string]any `yaml:"params,omitempty"`
}

// VerifyConfig configures page reference and navbar link verification.
type VerifyConfig struct {
	Enabled          bool   `yaml:"enabled"`
	External         bool   `yaml:"external"`
	Timeout          string `yaml:"timeout"`
	MaxConcurrent    int    `yaml:"max_concurrent"`
	FollowRedirects  bool   `yaml:"follow_redirects"`
	CacheTTL         string `yaml:"cache_ttl"`
	CacheTTLFailures string `yaml:"cache_ttl_failures"`
	// Retries of external checks that failed with a network error or a 5xx.
	Retries      int    `yaml:"retries"`
	RetryBackoff string `yaml:"retry_backoff"`
	RetryDelay   string `yaml:"retry_delay"`
}

// EventsConfig enables NATS publication. An empty URL disables it.
type EventsConfig struct {
	NATSURL      string `yaml:"nats_url,omitempty"`
	Subject      string `yaml:"subject"`
	BuildSubject string `yaml:"build_subject"`
	KVBucket     string `yaml:"kv_bucket"`
}

// StorageConfig locates persisted state.
type StorageConfig struct {
	HistoryDB string `yaml:"history_db"`
}

// ServeConfig configures the serve daemon.
type ServeConfig struct {
	Addr            string `yaml:"addr"`
	RefreshInterval string `yaml:"refresh_interval"`
	Debounce        string `yaml:"debounce"`
	Watch           bool   `yaml:"watch"`
}

// LoggingConfig selects the slog handler.
type LoggingConfig struct {
	Level  LogLevel  `yaml:"level"`
	Format LogFormat `yaml:"format"`
}

// Load reads, normalizes, defaults and validates the configuration at configPath.
func Load(configPath string) (*Config, error) {
	loadEnvFiles()

	data, err := os.ReadFile(configPath)
	if os.IsNotExist(err) {
		return nil, derrors.NotFoundError("configuration file not found").
			WithContext("path", configPath).
			Build()
	}
	if err != nil {
		return nil, derrors.WrapError(err, derrors.CategoryConfig, "failed to read config file").
			WithContext("path", configPath).
			Build()
	}
	return Parse(data)
}

// LoadOrDefault behaves like Load but returns the defaults when configPath does not exist.
func LoadOrDefault(configPath string) (*Config, error) {
	if _, err := os.Stat(configPath); os.IsNotExist(err) {
		loadEnvFiles()
		return Default()
	}
	return Load(configPath)
}

// Parse decodes YAML after ${VAR} expansion and runs the normalize/default/validate passes.
func Parse(data []byte) (*Config, error) {
	expanded := os.ExpandEnv(string(data))

	var cfg Config
	if err := yaml.Unmarshal([]byte(expanded), &cfg); err != nil {
		return nil, derrors.WrapError(err, derrors.CategoryConfig, "failed to unmarshal config").Build()
	}
	return finalize(&cfg)
}

// Default returns a configuration with every default applied.
func Default() (*Config, error) {
	return finalize(&Config{})
}

func finalize(cfg *Config) (*Config, error) {
	if cfg.Version == "" {
		cfg.Version = CurrentVersion
	}
	if cfg.Version != CurrentVersion {
		return nil, derrors.ConfigError(fmt.Sprintf("unsupported configuration version: %s (expected %s)", cfg.Version, CurrentVersion)).Build()
	}
	if err := normalize(cfg); err != nil {
		return nil, derrors.WrapError(err, derrors.CategoryValidation, "normalize").Build()
	}
	if err := applyDefaults(cfg); err != nil {
		return nil, derrors.WrapError(err, derrors.CategoryConfig, "failed to apply defaults").Build()
	}
	if err := ValidateConfig(cfg); err != nil {
		return nil, derrors.WrapError(err, derrors.CategoryValidation, "configuration validation failed").Build()
	}
	return cfg, nil
}

// Init writes an example configuration file.
func Init(configPath string, force bool) error {
	if _, err := os.Stat(configPath); err == nil && !force {
		return derrors.ValidationError(fmt.Sprintf("configuration file already exists: %s (use --force to overwrite)", configPath)).Build()
	}

	example, err := Default()
	if err != nil {
		return err
	}
	example.Output.Formats = []OutputFormat{FormatVuePress, FormatYAML, FormatHugo}
	example.Hugo.BaseURL = "https://docs.example.com/"
	example.Verify.Enabled = true
	example.Verify.Retries = 2
	example.Events.NATSURL = "${DOCNAV_NATS_URL}"

	data, err := yaml.Marshal(example)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}
	header := []byte("# docnav configuration. ${VAR} references are expanded from the environment and .env files.\n")
	if err := os.WriteFile(configPath, append(header, data...), 0o644); err != nil {
		return derrors.WrapError(err, derrors.CategoryFileSystem, "failed to write config file").
			WithContext("path", configPath).
			Build()
	}
	return nil
}
