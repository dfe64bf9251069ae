// Package commands implements the docnav subcommands.
package commands

import (
	"context"
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/alecthomas/kong"
	prom "github.com/prometheus/client_golang/prometheus"

	"git.home.luguber.info/inful/docnav/internal/build"
	"git.home.luguber.info/inful/docnav/internal/config"
	"git.home.luguber.info/inful/docnav/internal/events"
	"git.home.luguber.info/inful/docnav/internal/eventstore"
	"git.home.luguber.info/inful/docnav/internal/linkverify"
	"git.home.luguber.info/inful/docnav/internal/logfields"
	"git.home.luguber.info/inful/docnav/internal/metrics"
)

// Global is passed to every subcommand.
type Global struct {
	Logger *slog.Logger
	// Out receives command output; nil means stdout.
	Out io.Writer
}

func (g *Global) out() io.Writer {
	if g == nil || g.Out == nil {
		return os.Stdout
	}
	return g.Out
}

// CLI definition & global flags.
type CLI struct {
	Config  string           `short:"c" help:"Configuration file path" default:"docnav.yaml" env:"DOCNAV_CONFIG"`
	Verbose bool             `short:"v" help:"Enable verbose logging"`
	Version kong.VersionFlag `name:"version" help:"Show version and exit"`

	Build   BuildCmd   `cmd:"" help:"Build the navigation configuration and write the configured outputs"`
	Lint    LintCmd    `cmd:"" help:"Lint the navigation registry"`
	Lookup  LookupCmd  `cmd:"" help:"Print the sidebar that applies to a page path"`
	Verify  VerifyCmd  `cmd:"" help:"Verify that sidebar references resolve and navbar links answer"`
	Serve   ServeCmd   `cmd:"" help:"Serve the configuration over HTTP and rebuild on changes"`
	History HistoryCmd `cmd:"" help:"List recorded builds"`
	Init    InitCmd    `cmd:"" help:"Initialize a new configuration file"`

	// levelOverride is set when -v or DOCNAV_LOG_LEVEL chose the level.
	levelOverride bool
}

// AfterApply runs after flag parsing; setup logging once.
// nolint:unparam // AfterApply currently never returns an error.
func (c *CLI) AfterApply() error {
	level := slog.LevelInfo
	if env := os.Getenv("DOCNAV_LOG_LEVEL"); env != "" {
		level = config.NormalizeLogLevel(env).SlogLevel()
		c.levelOverride = true
	}
	if c.Verbose {
		level = slog.LevelDebug
		c.levelOverride = true
	}
	installLogger(level, config.NormalizeLogFormat(os.Getenv("DOCNAV_LOG_FORMAT")))
	return nil
}

func installLogger(level slog.Level, format config.LogFormat) {
	opts := &slog.HandlerOptions{Level: level}
	var handler slog.Handler = slog.NewTextHandler(os.Stderr, opts)
	if format == config.LogFormatJSON {
		handler = slog.NewJSONHandler(os.Stderr, opts)
	}
	slog.SetDefault(slog.New(handler))
}

// loadConfig reads the configuration, falling back to defaults when the file
// does not exist, and applies its logging section unless the command line
// already chose a level.
func (c *CLI) loadConfig() (*config.Config, error) {
	cfg, err := config.LoadOrDefault(c.Config)
	if err != nil {
		return nil, err
	}
	if !c.levelOverride && (cfg.Logging.Level != "" || cfg.Logging.Format != "") {
		format := cfg.Logging.Format
		if env := os.Getenv("DOCNAV_LOG_FORMAT"); env != "" {
			format = config.NormalizeLogFormat(env)
		}
		installLogger(config.NormalizeLogLevel(string(cfg.Logging.Level)).SlogLevel(), format)
	}
	return cfg, nil
}

// runtime holds the collaborators shared by build, verify and serve.
type runtime struct {
	registry  *prom.Registry
	recorder  metrics.Recorder
	publisher events.Publisher
	cache     linkverify.Cache
	store     eventstore.Store
}

// openRuntime connects the optional NATS client and opens the history
// database. Neither is required: failures are logged and the build runs
// without them.
func openRuntime(ctx context.Context, cfg *config.Config) *runtime {
	reg := prom.NewRegistry()
	rt := &runtime{
		registry:  reg,
		recorder:  metrics.NewPrometheusRecorder(reg),
		publisher: events.NoopPublisher{},
	}

	publisher, cache, err := events.Open(ctx, cfg.Events)
	if err != nil {
		slog.Warn("Events disabled", logfields.URL(cfg.Events.NATSURL), logfields.Error(err))
	} else {
		rt.publisher, rt.cache = publisher, cache
	}

	if cfg.Storage.HistoryDB != "" && !strings.EqualFold(cfg.Storage.HistoryDB, "off") {
		store, err := eventstore.NewSQLiteStore(cfg.Storage.HistoryDB)
		if err != nil {
			slog.Warn("Build history disabled", logfields.Path(cfg.Storage.HistoryDB), logfields.Error(err))
		} else {
			rt.store = store
		}
	}
	return rt
}

// builder returns a build service for cfg wired to the shared collaborators.
func (rt *runtime) builder(cfg *config.Config) *build.Service {
	svc := build.NewService(build.OptionsFromConfig(cfg)).
		WithRecorder(rt.recorder).
		WithPublisher(rt.publisher)
	if rt.cache != nil {
		svc = svc.WithLinkCache(rt.cache)
	}
	if rt.store != nil {
		svc = svc.WithStore(rt.store)
	}
	return svc
}

func (rt *runtime) Close() {
	if err := rt.publisher.Close(); err != nil {
		slog.Warn("Failed to close events client", logfields.Error(err))
	}
	if rt.store != nil {
		if err := rt.store.Close(); err != nil {
			slog.Warn("Failed to close history database", logfields.Error(err))
		}
	}
}
