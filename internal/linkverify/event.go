package linkverify

import (
	"context"
	"time"
)

// BrokenLinkEvent is published for every broken reference or navbar link.
type BrokenLinkEvent struct {
	Kind   Kind   `json:"kind"`
	URL    string `json:"url"`    // page ref for internal links, absolute URL otherwise
	Source string `json:"source"` // sidebar location or navbar breadcrumb
	Status int    `json:"status"` // HTTP status code (0 for non-HTTP errors)
	Error  string `json:"error"`

	Timestamp     time.Time `json:"timestamp"`
	LastChecked   time.Time `json:"last_checked,omitzero"`
	FailureCount  int       `json:"failure_count"`
	FirstFailedAt time.Time `json:"first_failed_at,omitzero"`

	BuildID string `json:"build_id,omitempty"`
}

// Publisher delivers broken link events to downstream consumers.
type Publisher interface {
	PublishBrokenLink(ctx context.Context, event *BrokenLinkEvent) error
}
