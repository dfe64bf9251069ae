// Package daemon implements serve mode: it keeps the last built navigation
// configuration in memory, serves it over HTTP, and rebuilds when the content
// tree or the configuration file changes and on a fixed refresh interval.
//
// Rebuild requests from the watcher, the scheduler and the API are coalesced:
// at most one build runs and at most one follow-up is queued behind it.
package daemon

import (
	"context"
	"errors"
	"log/slog"
	"net"
	"net/http"
	"path/filepath"
	"sync"
	"sync/atomic"
	"time"

	prom "github.com/prometheus/client_golang/prometheus"
	promcollect "github.com/prometheus/client_golang/prometheus/collectors"

	"git.home.luguber.info/inful/docnav/internal/build"
	"git.home.luguber.info/inful/docnav/internal/config"
	derrors "git.home.luguber.info/inful/docnav/internal/foundation/errors"
	"git.home.luguber.info/inful/docnav/internal/logfields"
	"git.home.luguber.info/inful/docnav/internal/metrics"
)

// Build triggers.
const (
	TriggerStartup  = "startup"
	TriggerWatch    = "watch"
	TriggerConfig   = "config"
	TriggerSchedule = "schedule"
	TriggerAPI      = "api"
)

const shutdownTimeout = 5 * time.Second

// Builder runs one build.
type Builder interface {
	Run(ctx context.Context, req build.Request) (*build.Report, error)
}

// Options wires the daemon.
type Options struct {
	// ConfigPath is watched for changes; empty disables config reloads.
	ConfigPath string
	// NewBuilder creates the builder for a reloaded configuration. Without it
	// config changes only trigger a rebuild with the current builder.
	NewBuilder func(*config.Config) (Builder, error)
	// Registry serves /metrics; the daemon adds Go and process collectors.
	Registry *prom.Registry
	Recorder metrics.Recorder
}

// Daemon serves the navigation configuration of the last good build.
type Daemon struct {
	opts         Options
	recorder     metrics.Recorder
	registry     *prom.Registry
	errorAdapter *derrors.HTTPErrorAdapter
	startTime    time.Time

	mu          sync.RWMutex
	cfg         *config.Config
	builder     Builder
	last        *build.Report // last build with a usable site
	lastAttempt *build.Report
	lastErr     error

	buildMu     sync.Mutex
	requests    chan string
	configDirty atomic.Bool
	building    atomic.Bool
	builds      atomic.Int64
}

// New creates a daemon for cfg using builder.
func New(cfg *config.Config, builder Builder, opts Options) (*Daemon, error) {
	if cfg == nil {
		return nil, derrors.ConfigError("configuration required").Build()
	}
	if builder == nil {
		return nil, derrors.ValidationError("builder required").Build()
	}
	if opts.Recorder == nil {
		opts.Recorder = metrics.NoopRecorder{}
	}
	if opts.Registry == nil {
		opts.Registry = prom.NewRegistry()
	}
	d := &Daemon{
		opts:         opts,
		recorder:     opts.Recorder,
		registry:     opts.Registry,
		errorAdapter: derrors.NewHTTPErrorAdapter(slog.Default()),
		startTime:    time.Now(),
		cfg:          cfg,
		builder:      builder,
		requests:     make(chan string, 1),
	}
	d.registerCollectors()
	return d, nil
}

func (d *Daemon) registerCollectors() {
	collectors := []prom.Collector{
		promcollect.NewGoCollector(),
		promcollect.NewProcessCollector(promcollect.ProcessCollectorOpts{}),
		prom.NewCounterFunc(prom.CounterOpts{
			Namespace: "docnav",
			Name:      "daemon_builds_total",
			Help:      "Builds run by the serve daemon",
		}, func() float64 { return float64(d.builds.Load()) }),
		prom.NewGaugeFunc(prom.GaugeOpts{
			Namespace: "docnav",
			Name:      "daemon_build_running",
			Help:      "1 while a build is running",
		}, func() float64 {
			if d.building.Load() {
				return 1
			}
			return 0
		}),
	}
	for _, c := range collectors {
		if err := d.registry.Register(c); err != nil {
			var are prom.AlreadyRegisteredError
			if !errors.As(err, &are) {
				slog.Warn("Failed to register daemon collector", logfields.Error(err))
			}
		}
	}
}

// Config returns the active configuration.
func (d *Daemon) Config() *config.Config {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return d.cfg
}

// LastReport returns the last build that produced a site, nil before one did.
func (d *Daemon) LastReport() *build.Report {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return d.last
}

// Request queues a rebuild. Requests arriving while one is queued are merged.
func (d *Daemon) Request(trigger string) {
	if trigger == TriggerConfig {
		d.configDirty.Store(true)
	}
	select {
	case d.requests <- trigger:
	default:
		slog.Debug("Rebuild already queued", logfields.Trigger(trigger))
	}
}

// Rebuild runs one build now and updates the served state. Builds never
// overlap; a concurrent call waits for the running one.
func (d *Daemon) Rebuild(ctx context.Context, trigger string) (*build.Report, error) {
	d.buildMu.Lock()
	defer d.buildMu.Unlock()

	if d.configDirty.Swap(false) {
		d.reloadConfig()
	}

	d.mu.RLock()
	builder := d.builder
	d.mu.RUnlock()

	d.building.Store(true)
	defer d.building.Store(false)
	d.builds.Add(1)
	d.recorder.IncRebuild(trigger)

	report, err := builder.Run(ctx, build.Request{Trigger: trigger})

	d.mu.Lock()
	defer d.mu.Unlock()
	d.lastAttempt = report
	d.lastErr = err
	if report != nil && report.Site != nil && (report.Outcome == build.OutcomeSuccess || report.Outcome == build.OutcomeWarning) {
		d.last = report
	}
	return report, err
}

func (d *Daemon) reloadConfig() {
	if d.opts.ConfigPath == "" {
		return
	}
	cfg, err := config.Load(d.opts.ConfigPath)
	if err != nil {
		slog.Error("Configuration reload failed, keeping the previous one",
			logfields.Path(d.opts.ConfigPath), logfields.Error(err))
		return
	}
	var builder Builder
	if d.opts.NewBuilder != nil {
		builder, err = d.opts.NewBuilder(cfg)
		if err != nil {
			slog.Error("Builder for reloaded configuration failed", logfields.Error(err))
			return
		}
	}

	d.mu.Lock()
	d.cfg = cfg
	if builder != nil {
		d.builder = builder
	}
	d.mu.Unlock()
	slog.Info("Configuration reloaded", logfields.Path(d.opts.ConfigPath))
}

// Run builds once, then serves until ctx is done. Startup build failures are
// logged; the API answers 503 until a build succeeds.
func (d *Daemon) Run(ctx context.Context) error {
	cfg := d.Config()

	scheduler, err := NewScheduler()
	if err != nil {
		return err
	}
	if interval := cfg.RefreshInterval(); interval > 0 {
		if _, err := scheduler.SchedulePeriodicRebuild(interval, func() { d.Request(TriggerSchedule) }); err != nil {
			_ = scheduler.Stop()
			return err
		}
	}

	ln, err := net.Listen("tcp", cfg.Serve.Addr)
	if err != nil {
		_ = scheduler.Stop()
		return derrors.WrapError(err, derrors.CategoryDaemon, "failed to bind HTTP address").
			WithContext("addr", cfg.Serve.Addr).
			Build()
	}
	server := &http.Server{
		Handler:           d.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}
	serveErr := make(chan error, 1)
	go func() {
		if err := server.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serveErr <- err
		}
		close(serveErr)
	}()
	slog.Info("Serving navigation configuration", slog.String("addr", ln.Addr().String()))

	var watcher *Watcher
	defer func() {
		if err := scheduler.Stop(); err != nil {
			slog.Warn("Scheduler shutdown failed", logfields.Error(err))
		}
		if watcher != nil {
			if err := watcher.Close(); err != nil {
				slog.Warn("Watcher shutdown failed", logfields.Error(err))
			}
		}
		shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), shutdownTimeout)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			slog.Warn("HTTP shutdown failed", logfields.Error(err))
		}
		slog.Info("Serve daemon stopped")
	}()

	if _, err := d.Rebuild(ctx, TriggerStartup); err != nil {
		slog.Error("Startup build failed", logfields.Error(err))
	}

	if cfg.Serve.Watch {
		watcher = d.syncWatcher(ctx, nil)
	}

	scheduler.Start()

	for {
		select {
		case <-ctx.Done():
			return nil
		case err, ok := <-serveErr:
			if ok && err != nil {
				return derrors.WrapError(err, derrors.CategoryDaemon, "HTTP server failed").Build()
			}
			return nil
		case trigger := <-d.requests:
			if _, err := d.Rebuild(ctx, trigger); err != nil {
				if ctx.Err() != nil {
					return nil
				}
				slog.Warn("Rebuild failed, serving the previous configuration",
					logfields.Trigger(trigger), logfields.Error(err))
			}
			if cfg.Serve.Watch {
				watcher = d.syncWatcher(ctx, watcher)
			}
		}
	}
}

// syncWatcher returns a watcher over the content root of the active
// configuration. w is kept while the root is unchanged and replaced after a
// reload moved it. A nil result means watching failed and is retried on the
// next rebuild.
func (d *Daemon) syncWatcher(ctx context.Context, w *Watcher) *Watcher {
	cfg := d.Config()
	root, err := filepath.Abs(cfg.Content.Root)
	if err != nil {
		slog.Error("Cannot resolve content root", logfields.Path(cfg.Content.Root), logfields.Error(err))
		return w
	}
	if w != nil && w.contentRoot == root {
		return w
	}
	if w != nil {
		if err := w.Close(); err != nil {
			slog.Warn("Watcher shutdown failed", logfields.Error(err))
		}
		slog.Info("Content root changed, restarting watcher", logfields.Path(root))
	}
	nw, err := NewWatcher(cfg.Content.Root, d.opts.ConfigPath, cfg.Debounce(), d.Request)
	if err != nil {
		slog.Error("File watching disabled", logfields.Error(err))
		return nil
	}
	go nw.Run(ctx)
	return nw
}
