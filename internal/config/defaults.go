package config

import (
	"git.home.luguber.info/inful/docnav/internal/navigation"
	"git.home.luguber.info/inful/docnav/internal/retry"
)

// DefaultApplier applies defaults for a specific configuration domain.
type DefaultApplier interface {
	ApplyDefaults(cfg *Config) error
	Domain() string
}

func defaultAppliers() []DefaultApplier {
	return []DefaultApplier{
		&contentDefaults{},
		&outputDefaults{},
		&buildDefaults{},
		&hugoDefaults{},
		&verifyDefaults{},
		&eventsDefaults{},
		&storageDefaults{},
		&serveDefaults{},
	}
}

func applyDefaults(cfg *Config) error {
	for _, a := range defaultAppliers() {
		if err := a.ApplyDefaults(cfg); err != nil {
			return err
		}
	}
	return nil
}

type contentDefaults struct{}

func (contentDefaults) Domain() string { return "content" }

func (contentDefaults) ApplyDefaults(cfg *Config) error {
	if cfg.Content.Root == "" {
		cfg.Content.Root = "src"
	}
	if cfg.Content.GitRoot == "" {
		cfg.Content.GitRoot = cfg.Content.Root
	}
	return nil
}

type outputDefaults struct{}

func (outputDefaults) Domain() string { return "output" }

func (outputDefaults) ApplyDefaults(cfg *Config) error {
	if cfg.Output.Directory == "" {
		cfg.Output.Directory = "./dist"
	}
	if len(cfg.Output.Formats) == 0 {
		cfg.Output.Formats = []OutputFormat{FormatVuePress}
	}
	return nil
}

type buildDefaults struct{}

func (buildDefaults) Domain() string { return "build" }

func (buildDefaults) ApplyDefaults(cfg *Config) error {
	if cfg.Build.SidebarDepth < 0 {
		cfg.Build.SidebarDepth = 0
	}
	if len(cfg.Build.ExpectedPrefixes) == 0 {
		cfg.Build.ExpectedPrefixes = navigation.DeclaredPrefixes()
	}
	return nil
}

type hugoDefaults struct{}

func (hugoDefaults) Domain() string { return "hugo" }

func (hugoDefaults) ApplyDefaults(cfg *Config) error {
	if cfg.Hugo.Theme == "" {
		cfg.Hugo.Theme = "hextra"
	}
	if cfg.Hugo.BaseURL == "" {
		cfg.Hugo.BaseURL = "/"
	}
	return nil
}

type verifyDefaults struct{}

func (verifyDefaults) Domain() string { return "verify" }

func (verifyDefaults) ApplyDefaults(cfg *Config) error {
	v := &cfg.Verify
	if v.Timeout == "" {
		v.Timeout = "10s"
	}
	if v.MaxConcurrent <= 0 {
		v.MaxConcurrent = 10
	}
	if v.CacheTTL == "" {
		v.CacheTTL = "24h"
	}
	if v.CacheTTLFailures == "" {
		v.CacheTTLFailures = "1h"
	}
	if v.RetryBackoff == "" {
		v.RetryBackoff = string(retry.ModeLinear)
	}
	if v.RetryDelay == "" {
		v.RetryDelay = "500ms"
	}
	return nil
}

type eventsDefaults struct{}

func (eventsDefaults) Domain() string { return "events" }

func (eventsDefaults) ApplyDefaults(cfg *Config) error {
	if cfg.Events.Subject == "" {
		cfg.Events.Subject = "docnav.links.broken"
	}
	if cfg.Events.BuildSubject == "" {
		cfg.Events.BuildSubject = "docnav.builds"
	}
	if cfg.Events.KVBucket == "" {
		cfg.Events.KVBucket = "docnav-link-cache"
	}
	return nil
}

type storageDefaults struct{}

func (storageDefaults) Domain() string { return "storage" }

func (storageDefaults) ApplyDefaults(cfg *Config) error {
	if cfg.Storage.HistoryDB == "" {
		cfg.Storage.HistoryDB = ".docnav/history.db"
	}
	return nil
}

type serveDefaults struct{}

func (serveDefaults) Domain() string { return "serve" }

func (serveDefaults) ApplyDefaults(cfg *Config) error {
	if cfg.Serve.Addr == "" {
		cfg.Serve.Addr = ":8080"
	}
	if cfg.Serve.RefreshInterval == "" {
		cfg.Serve.RefreshInterval = "1h"
	}
	if cfg.Serve.Debounce == "" {
		cfg.Serve.Debounce = "500ms"
	}
	return nil
}
