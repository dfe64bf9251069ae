// Package eventstore records the history of docnav builds in SQLite and folds
// the stored events back into per-build summaries.
package eventstore

import (
	"context"
	"encoding/json"
	"time"
)

// StageRecord is one completed stage of a build.
type StageRecord struct {
	Name     string        `json:"name"`
	Result   string        `json:"result"`
	Duration time.Duration `json:"duration"`
	Error    string        `json:"error,omitempty"`
}

// BuildRecord is the read model of one build.
type BuildRecord struct {
	BuildID     string        `json:"build_id"`
	Trigger     string        `json:"trigger,omitempty"`
	Commit      string        `json:"commit,omitempty"`
	Outcome     string        `json:"outcome"` // "running" until BuildCompleted arrives
	StartedAt   time.Time     `json:"started_at"`
	CompletedAt *time.Time    `json:"completed_at,omitempty"`
	Duration    time.Duration `json:"duration,omitempty"`
	Stages      []StageRecord `json:"stages,omitempty"`

	Pages        int      `json:"pages"`
	Missing      int      `json:"missing"`
	LintErrors   int      `json:"lint_errors"`
	LintWarnings int      `json:"lint_warnings"`
	BrokenLinks  int      `json:"broken_links"`
	Fingerprint  string   `json:"fingerprint,omitempty"`
	Outputs      []string `json:"outputs,omitempty"`
	Error        string   `json:"error,omitempty"`
}

// OutcomeRunning marks a build with no BuildCompleted event.
const OutcomeRunning = "running"

// Fold applies the events of a single build in order. Payloads that fail to
// decode are skipped.
func Fold(buildID string, events []Event) *BuildRecord {
	rec := &BuildRecord{BuildID: buildID, Outcome: OutcomeRunning}
	for _, e := range events {
		if e.BuildID() != buildID {
			continue
		}
		if rec.StartedAt.IsZero() {
			rec.StartedAt = e.Timestamp()
		}
		switch e.Type() {
		case TypeBuildStarted:
			var meta BuildStartedMeta
			if json.Unmarshal(e.Payload(), &meta) == nil {
				rec.Trigger = meta.Trigger
				rec.Commit = meta.Commit
			}
			rec.StartedAt = e.Timestamp()

		case TypeStageCompleted:
			var meta StageCompletedMeta
			if json.Unmarshal(e.Payload(), &meta) == nil {
				rec.Stages = append(rec.Stages, StageRecord{
					Name:     meta.Stage,
					Result:   meta.Result,
					Duration: time.Duration(meta.DurationMS) * time.Millisecond,
					Error:    meta.Error,
				})
			}

		case TypeBuildCompleted:
			var meta BuildCompletedMeta
			if json.Unmarshal(e.Payload(), &meta) != nil {
				continue
			}
			done := e.Timestamp()
			rec.CompletedAt = &done
			rec.Duration = time.Duration(meta.DurationMS) * time.Millisecond
			rec.Outcome = meta.Outcome
			rec.Pages = meta.Pages
			rec.Missing = meta.Missing
			rec.LintErrors = meta.LintErrors
			rec.LintWarnings = meta.LintWarnings
			rec.BrokenLinks = meta.BrokenLinks
			rec.Fingerprint = meta.Fingerprint
			rec.Outputs = meta.Outputs
			rec.Error = meta.Error
		}
	}
	return rec
}

// History returns the newest builds in store, newest first.
func History(ctx context.Context, store Store, limit int) ([]*BuildRecord, error) {
	ids, err := store.Recent(ctx, limit)
	if err != nil {
		return nil, err
	}
	records := make([]*BuildRecord, 0, len(ids))
	for _, id := range ids {
		events, err := store.GetByBuildID(ctx, id)
		if err != nil {
			return nil, err
		}
		records = append(records, Fold(id, events))
	}
	return records, nil
}

// Get returns the record of one build, or nil when the store has no events for it.
func Get(ctx context.Context, store Store, buildID string) (*BuildRecord, error) {
	events, err := store.GetByBuildID(ctx, buildID)
	if err != nil {
		return nil, err
	}
	if len(events) == 0 {
		return nil, nil
	}
	return Fold(buildID, events), nil
}
