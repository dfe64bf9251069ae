package commands

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"text/tabwriter"
	"time"

	"git.home.luguber.info/inful/docnav/internal/eventstore"
	derrors "git.home.luguber.info/inful/docnav/internal/foundation/errors"
)

// HistoryCmd implements the 'history' command.
type HistoryCmd struct {
	BuildID string        `arg:"" optional:"" help:"Show the stages of one build"`
	Limit   int           `short:"n" default:"10" help:"Number of builds to list"`
	Since   time.Duration `help:"Only list builds started within this window, e.g. 24h"`
	JSON    bool          `help:"Print JSON instead of a table"`
}

func (h *HistoryCmd) Run(g *Global, root *CLI) error {
	cfg, err := root.loadConfig()
	if err != nil {
		return err
	}
	if _, err := os.Stat(cfg.Storage.HistoryDB); os.IsNotExist(err) {
		return derrors.NotFoundError("no build history recorded yet").
			WithContext("path", cfg.Storage.HistoryDB).
			Build()
	}
	store, err := eventstore.NewSQLiteStore(cfg.Storage.HistoryDB)
	if err != nil {
		return err
	}
	defer func() { _ = store.Close() }()

	return h.show(context.Background(), g.out(), store)
}

func (h *HistoryCmd) show(ctx context.Context, w io.Writer, store eventstore.Store) error {
	if h.BuildID != "" {
		record, err := eventstore.Get(ctx, store, h.BuildID)
		if err != nil {
			return err
		}
		if record == nil {
			return derrors.NotFoundError("build not found").WithContext("build_id", h.BuildID).Build()
		}
		if h.JSON {
			return writeJSON(w, record)
		}
		printRecord(w, record)
		return nil
	}

	records, err := h.records(ctx, store)
	if err != nil {
		return err
	}
	if h.JSON {
		return writeJSON(w, records)
	}
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	_, _ = fmt.Fprintln(tw, "BUILD\tSTARTED\tTRIGGER\tOUTCOME\tDURATION\tPAGES\tMISSING\tLINT\tBROKEN")
	for _, r := range records {
		_, _ = fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\t%d\t%d\t%d/%d\t%d\n",
			r.BuildID, r.StartedAt.Local().Format(time.DateTime), r.Trigger, r.Outcome,
			r.Duration.Round(time.Millisecond), r.Pages, r.Missing, r.LintErrors, r.LintWarnings, r.BrokenLinks)
	}
	return tw.Flush()
}

// records returns the newest builds, restricted to the --since window.
func (h *HistoryCmd) records(ctx context.Context, store eventstore.Store) ([]*eventstore.BuildRecord, error) {
	if h.Since <= 0 {
		return eventstore.History(ctx, store, h.Limit)
	}
	now := time.Now()
	events, err := store.GetRange(ctx, now.Add(-h.Since), now)
	if err != nil {
		return nil, err
	}
	byBuild := make(map[string][]eventstore.Event)
	var order []string
	for _, e := range events {
		if _, ok := byBuild[e.BuildID()]; !ok {
			order = append(order, e.BuildID())
		}
		byBuild[e.BuildID()] = append(byBuild[e.BuildID()], e)
	}
	records := make([]*eventstore.BuildRecord, 0, len(order))
	for i := len(order) - 1; i >= 0 && len(records) < h.Limit; i-- {
		records = append(records, eventstore.Fold(order[i], byBuild[order[i]]))
	}
	return records, nil
}

func printRecord(w io.Writer, r *eventstore.BuildRecord) {
	_, _ = fmt.Fprintf(w, "Build %s (%s) %s\n", r.BuildID, r.Trigger, r.Outcome)
	_, _ = fmt.Fprintf(w, "  started: %s\n", r.StartedAt.Local().Format(time.DateTime))
	if r.Commit != "" {
		_, _ = fmt.Fprintf(w, "  commit: %s\n", r.Commit)
	}
	for _, s := range r.Stages {
		line := fmt.Sprintf("  %-10s %-9s %s", s.Name, s.Result, s.Duration.Round(time.Millisecond))
		if s.Error != "" {
			line += "  " + s.Error
		}
		_, _ = fmt.Fprintln(w, line)
	}
	if r.Error != "" {
		_, _ = fmt.Fprintf(w, "  error: %s\n", r.Error)
	}
}

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
