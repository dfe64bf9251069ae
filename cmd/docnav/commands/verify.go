package commands

import (
	"context"
	"fmt"
	"io"
	"os/signal"
	"syscall"

	"github.com/google/uuid"

	"git.home.luguber.info/inful/docnav/internal/content"
	derrors "git.home.luguber.info/inful/docnav/internal/foundation/errors"
	"git.home.luguber.info/inful/docnav/internal/linkverify"
	"git.home.luguber.info/inful/docnav/internal/navigation"
)

// VerifyCmd implements the 'verify' command.
type VerifyCmd struct {
	External bool `help:"Also check navbar URLs over HTTP (overrides verify.external)"`
}

func (v *VerifyCmd) Run(g *Global, root *CLI) error {
	cfg, err := root.loadConfig()
	if err != nil {
		return err
	}
	opts := linkverify.Options{
		External:         cfg.Verify.External || v.External,
		Timeout:          cfg.VerifyTimeout(),
		MaxConcurrent:    cfg.Verify.MaxConcurrent,
		FollowRedirects:  cfg.Verify.FollowRedirects,
		CacheTTL:         cfg.CacheTTL(),
		CacheTTLFailures: cfg.CacheTTLFailures(),
		Retry:            cfg.RetryPolicy(),
	}

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	rt := openRuntime(ctx, cfg)
	defer rt.Close()

	svc := linkverify.NewService(content.NewResolver(cfg.Content.Root), opts).
		WithPublisher(rt.publisher).
		WithRecorder(rt.recorder)
	if rt.cache != nil {
		svc = svc.WithCache(rt.cache)
	}

	report, err := svc.Verify(ctx, navigation.Build(), uuid.NewString())
	if err != nil {
		return err
	}
	return printFindings(g.out(), report)
}

func printFindings(w io.Writer, report *linkverify.Report) error {
	for _, f := range report.Findings {
		status := ""
		if f.Status > 0 {
			status = fmt.Sprintf(" [%d]", f.Status)
		}
		_, _ = fmt.Fprintf(w, "✗ %s %s%s (%s)\n", f.Kind, f.Ref, status, f.Source)
		if msg := f.Message(); msg != "" {
			_, _ = fmt.Fprintf(w, "  %s\n", msg)
		}
	}
	_, _ = fmt.Fprintf(w, "%d references checked, %d broken\n", report.Checked, len(report.Findings))
	if len(report.Findings) > 0 {
		return derrors.ContentError("broken references").
			WithContext("internal", len(report.Broken(linkverify.KindInternal))).
			WithContext("external", len(report.Broken(linkverify.KindExternal))).
			Build()
	}
	return nil
}
