package commands

import (
	"context"
	"fmt"
	"io"
	"os/signal"
	"syscall"
	"time"

	"git.home.luguber.info/inful/docnav/internal/build"
	"git.home.luguber.info/inful/docnav/internal/config"
	derrors "git.home.luguber.info/inful/docnav/internal/foundation/errors"
)

// BuildCmd implements the 'build' command.
type BuildCmd struct {
	Output          string   `short:"o" help:"Output directory (overrides output.directory)"`
	Format          []string `short:"f" help:"Output formats (vuepress, yaml, hugo); repeatable, overrides output.formats"`
	Clean           bool     `help:"Replace the output directory instead of writing into it"`
	AllowLintErrors bool     `name:"allow-lint-errors" help:"Report lint errors as warnings instead of failing the build"`
	Verify          bool     `help:"Verify sidebar references and navbar links"`
	DryRun          bool     `name:"dry-run" help:"Run every stage except writing outputs"`
}

func (b *BuildCmd) Run(g *Global, root *CLI) error {
	cfg, err := root.loadConfig()
	if err != nil {
		return err
	}
	if err := b.apply(cfg); err != nil {
		return err
	}

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	rt := openRuntime(ctx, cfg)
	defer rt.Close()

	report, err := rt.builder(cfg).Run(ctx, build.Request{Trigger: "cli", DryRun: b.DryRun})
	if report != nil {
		printReport(g.out(), report)
	}
	return err
}

// apply folds the flags into cfg.
func (b *BuildCmd) apply(cfg *config.Config) error {
	if b.Output != "" {
		cfg.Output.Directory = b.Output
	}
	if len(b.Format) > 0 {
		formats := make([]config.OutputFormat, 0, len(b.Format))
		for _, raw := range b.Format {
			f, err := config.ParseOutputFormat(raw)
			if err != nil {
				return derrors.WrapError(err, derrors.CategoryValidation, "invalid --format").
					WithContext("valid", config.OutputFormats()).
					Build()
			}
			formats = append(formats, f)
		}
		cfg.Output.Formats = formats
	}
	if b.Clean {
		cfg.Output.Clean = true
	}
	if b.AllowLintErrors {
		cfg.Build.AllowLintErrors = true
	}
	if b.Verify {
		cfg.Verify.Enabled = true
	}
	return nil
}

func printReport(w io.Writer, r *build.Report) {
	_, _ = fmt.Fprintf(w, "Build %s %s in %s\n", r.BuildID, r.Outcome, r.Duration.Round(time.Millisecond))
	_, _ = fmt.Fprintf(w, "  pages: %d indexed, %d missing\n", r.Pages, len(r.Missing))
	for _, ref := range r.Missing {
		_, _ = fmt.Fprintf(w, "    missing %s\n", ref)
	}
	for _, ref := range r.StaleFingerprints {
		_, _ = fmt.Fprintf(w, "    stale fingerprint %s\n", ref)
	}
	_, _ = fmt.Fprintf(w, "  lint: %d errors, %d warnings\n", r.LintErrors(), r.LintWarnings())
	if r.Verify != nil {
		_, _ = fmt.Fprintf(w, "  verify: %d checked, %d broken\n", r.Verify.Checked, r.BrokenLinks())
	}
	if r.Fingerprint != "" {
		_, _ = fmt.Fprintf(w, "  fingerprint: %s\n", r.Fingerprint)
	}
	for _, out := range r.Outputs {
		_, _ = fmt.Fprintf(w, "  wrote %s\n", out)
	}
}
