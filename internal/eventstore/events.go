package eventstore

import (
	"encoding/json"
	"time"

	derrors "git.home.luguber.info/inful/docnav/internal/foundation/errors"
)

// Event type names.
const (
	TypeBuildStarted   = "BuildStarted"
	TypeStageCompleted = "StageCompleted"
	TypeBuildCompleted = "BuildCompleted"
)

// BuildStartedMeta describes what triggered a build and what it reads.
type BuildStartedMeta struct {
	Trigger     string   `json:"trigger"` // cli, watch, schedule
	ContentRoot string   `json:"content_root"`
	Formats     []string `json:"formats"`
	Commit      string   `json:"commit,omitempty"`
}

// StageCompletedMeta is the result of one build stage.
type StageCompletedMeta struct {
	Stage      string `json:"stage"`
	Result     string `json:"result"`
	DurationMS int64  `json:"duration_ms"`
	Error      string `json:"error,omitempty"`
}

// BuildCompletedMeta is the final build report.
type BuildCompletedMeta struct {
	Outcome      string   `json:"outcome"`
	DurationMS   int64    `json:"duration_ms"`
	Pages        int      `json:"pages"`
	Missing      int      `json:"missing"`
	LintErrors   int      `json:"lint_errors"`
	LintWarnings int      `json:"lint_warnings"`
	BrokenLinks  int      `json:"broken_links"`
	Fingerprint  string   `json:"fingerprint,omitempty"`
	Outputs      []string `json:"outputs,omitempty"`
	Error        string   `json:"error,omitempty"`
}

// NewBuildStarted returns the first event of a build.
func NewBuildStarted(buildID string, meta BuildStartedMeta) (Event, error) {
	return newEvent(buildID, TypeBuildStarted, meta, map[string]string{"trigger": meta.Trigger})
}

// NewStageCompleted records the result of one stage.
func NewStageCompleted(buildID string, meta StageCompletedMeta) (Event, error) {
	return newEvent(buildID, TypeStageCompleted, meta, map[string]string{"stage": meta.Stage})
}

// NewBuildCompleted returns the last event of a build, successful or not.
func NewBuildCompleted(buildID string, meta BuildCompletedMeta) (Event, error) {
	return newEvent(buildID, TypeBuildCompleted, meta, map[string]string{"outcome": meta.Outcome})
}

func newEvent(buildID, eventType string, payload any, metadata map[string]string) (Event, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return nil, derrors.WrapError(err, derrors.CategoryEventStore, "failed to marshal "+eventType+" payload").
			WithContext("build_id", buildID).
			Build()
	}
	return &BaseEvent{
		EventBuildID:   buildID,
		EventType:      eventType,
		EventTimestamp: time.Now(),
		EventPayload:   data,
		EventMetadata:  metadata,
	}, nil
}
