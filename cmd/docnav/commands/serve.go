package commands

import (
	"context"
	"log/slog"
	"os/signal"
	"syscall"

	"git.home.luguber.info/inful/docnav/internal/config"
	"git.home.luguber.info/inful/docnav/internal/daemon"
	derrors "git.home.luguber.info/inful/docnav/internal/foundation/errors"
	"git.home.luguber.info/inful/docnav/internal/logfields"
)

// ServeCmd implements the 'serve' command.
type ServeCmd struct {
	Addr    string `short:"a" help:"Listen address (overrides serve.addr)"`
	Watch   bool   `short:"w" help:"Rebuild when content or configuration changes"`
	Refresh string `help:"Periodic rebuild interval (overrides serve.refresh_interval)"`
}

func (s *ServeCmd) Run(_ *Global, root *CLI) error {
	cfg, err := root.loadConfig()
	if err != nil {
		return err
	}
	s.apply(cfg)
	if err := config.ValidateConfig(cfg); err != nil {
		return derrors.WrapError(err, derrors.CategoryValidation, "invalid serve options").Build()
	}

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	rt := openRuntime(ctx, cfg)
	defer rt.Close()

	d, err := daemon.New(cfg, rt.builder(cfg), daemon.Options{
		ConfigPath: root.Config,
		NewBuilder: func(next *config.Config) (daemon.Builder, error) {
			s.apply(next)
			return rt.builder(next), nil
		},
		Registry: rt.registry,
		Recorder: rt.recorder,
	})
	if err != nil {
		return err
	}
	slog.Info("Starting serve mode", logfields.Path(cfg.Content.Root), slog.String("addr", cfg.Serve.Addr))
	return d.Run(ctx)
}

// apply folds the flags into cfg; reloaded configurations keep them.
func (s *ServeCmd) apply(cfg *config.Config) {
	if s.Addr != "" {
		cfg.Serve.Addr = s.Addr
	}
	if s.Watch {
		cfg.Serve.Watch = true
	}
	if s.Refresh != "" {
		cfg.Serve.RefreshInterval = s.Refresh
	}
}
