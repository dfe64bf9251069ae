package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"git.home.luguber.info/inful/docnav/internal/retry"
)

// ValidateConfig checks a configuration after defaults have been applied.
func ValidateConfig(cfg *Config) error {
	if cfg.Content.Root == "" {
		return errors.New("content.root cannot be empty")
	}
	if cfg.Output.Directory == "" {
		return errors.New("output.directory cannot be empty")
	}
	if len(cfg.Output.Formats) == 0 {
		return errors.New("output.formats must name at least one format")
	}
	if err := validatePrefixes(cfg.Build.ExpectedPrefixes); err != nil {
		return err
	}
	if cfg.Verify.MaxConcurrent > 100 {
		return fmt.Errorf("verify.max_concurrent must be at most 100, got %d", cfg.Verify.MaxConcurrent)
	}
	if cfg.Verify.Retries < 0 || cfg.Verify.Retries > 10 {
		return fmt.Errorf("verify.retries must be between 0 and 10, got %d", cfg.Verify.Retries)
	}
	if _, err := retry.ParseMode(cfg.Verify.RetryBackoff); err != nil {
		return fmt.Errorf("invalid verify.retry_backoff: %w", err)
	}
	durations := []struct{ field, value string }{
		{"verify.timeout", cfg.Verify.Timeout},
		{"verify.cache_ttl", cfg.Verify.CacheTTL},
		{"verify.cache_ttl_failures", cfg.Verify.CacheTTLFailures},
		{"verify.retry_delay", cfg.Verify.RetryDelay},
		{"serve.refresh_interval", cfg.Serve.RefreshInterval},
		{"serve.debounce", cfg.Serve.Debounce},
	}
	for _, d := range durations {
		v, err := time.ParseDuration(d.value)
		if err != nil {
			return fmt.Errorf("invalid %s: %w", d.field, err)
		}
		if v <= 0 {
			return fmt.Errorf("%s must be positive, got %s", d.field, d.value)
		}
	}
	if cfg.Events.NATSURL != "" && !strings.HasPrefix(cfg.Events.NATSURL, "nats://") && !strings.HasPrefix(cfg.Events.NATSURL, "tls://") {
		return fmt.Errorf("events.nats_url must use nats:// or tls://, got %q", cfg.Events.NATSURL)
	}
	return nil
}

func validatePrefixes(prefixes []string) error {
	seen := make(map[string]bool, len(prefixes))
	for _, p := range prefixes {
		if !strings.HasPrefix(p, "/") || !strings.HasSuffix(p, "/") {
			return fmt.Errorf("build.expected_prefixes: %q must start and end with '/'", p)
		}
		if seen[p] {
			return fmt.Errorf("build.expected_prefixes: duplicate prefix %q", p)
		}
		seen[p] = true
	}
	return nil
}

// Durations below are validated by ValidateConfig; parse failures fall back to zero.

// VerifyTimeout returns verify.timeout.
func (c *Config) VerifyTimeout() time.Duration { return mustDuration(c.Verify.Timeout) }

// CacheTTL returns verify.cache_ttl.
func (c *Config) CacheTTL() time.Duration { return mustDuration(c.Verify.CacheTTL) }

// CacheTTLFailures returns verify.cache_ttl_failures.
func (c *Config) CacheTTLFailures() time.Duration { return mustDuration(c.Verify.CacheTTLFailures) }

// RetryPolicy returns the backoff for external link checks. The delay is
// capped at ten times verify.retry_delay.
func (c *Config) RetryPolicy() retry.Policy {
	mode, _ := retry.ParseMode(c.Verify.RetryBackoff)
	delay := mustDuration(c.Verify.RetryDelay)
	return retry.NewPolicy(mode, delay, 10*delay, c.Verify.Retries)
}

// RefreshInterval returns serve.refresh_interval.
func (c *Config) RefreshInterval() time.Duration { return mustDuration(c.Serve.RefreshInterval) }

// Debounce returns serve.debounce.
func (c *Config) Debounce() time.Duration { return mustDuration(c.Serve.Debounce) }

func mustDuration(s string) time.Duration {
	d, _ := time.ParseDuration(s)
	return d
}
