// Package events publishes build summaries and broken link events to NATS
// JetStream and keeps the external link cache in a JetStream KV bucket.
package events

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/nats-io/nats.go"
	"github.com/nats-io/nats.go/jetstream"

	"git.home.luguber.info/inful/docnav/internal/config"
	derrors "git.home.luguber.info/inful/docnav/internal/foundation/errors"
	"git.home.luguber.info/inful/docnav/internal/linkverify"
	"git.home.luguber.info/inful/docnav/internal/logfields"
)

// StreamName is the JetStream stream carrying docnav events.
const StreamName = "DOCNAV"

// BuildSummary is published once per finished build.
type BuildSummary struct {
	BuildID      string        `json:"build_id"`
	Outcome      string        `json:"outcome"`
	StartedAt    time.Time     `json:"started_at"`
	Duration     time.Duration `json:"duration_ns"`
	Pages        int           `json:"pages"`
	Missing      int           `json:"missing"`
	LintErrors   int           `json:"lint_errors"`
	LintWarnings int           `json:"lint_warnings"`
	BrokenLinks  int           `json:"broken_links"`
	Fingerprint  string        `json:"fingerprint,omitempty"`
	Outputs      []string      `json:"outputs,omitempty"`
	Commit       string        `json:"commit,omitempty"`
}

// Publisher delivers build and broken link events.
type Publisher interface {
	linkverify.Publisher
	PublishBuild(ctx context.Context, summary *BuildSummary) error
	Close() error
}

// NoopPublisher drops every event. It is used when no NATS URL is configured.
type NoopPublisher struct{}

func (NoopPublisher) PublishBuild(context.Context, *BuildSummary) error { return nil }
func (NoopPublisher) PublishBrokenLink(context.Context, *linkverify.BrokenLinkEvent) error {
	return nil
}
func (NoopPublisher) Close() error { return nil }

var (
	_ Publisher        = (*Client)(nil)
	_ linkverify.Cache = (*Client)(nil)
	_ Publisher        = NoopPublisher{}
)

// Client is the NATS implementation of Publisher and linkverify.Cache.
type Client struct {
	conn         *nats.Conn
	js           jetstream.JetStream
	kv           jetstream.KeyValue
	subject      string
	buildSubject string
}

// Connect dials cfg.NATSURL, ensures the stream and the KV bucket exist and
// returns a ready client.
func Connect(ctx context.Context, cfg config.EventsConfig) (*Client, error) {
	if cfg.NATSURL == "" {
		return nil, derrors.ConfigError("events.nats_url is not configured").Build()
	}

	conn, err := nats.Connect(cfg.NATSURL,
		nats.Name("docnav"),
		nats.Timeout(5*time.Second),
		nats.MaxReconnects(5),
	)
	if err != nil {
		return nil, derrors.WrapError(err, derrors.CategoryEvents, "failed to connect to NATS").
			WithContext("url", cfg.NATSURL).
			Retryable().
			Build()
	}

	js, err := jetstream.New(conn)
	if err != nil {
		conn.Close()
		return nil, derrors.WrapError(err, derrors.CategoryEvents, "failed to create JetStream context").Build()
	}

	c := &Client{conn: conn, js: js, subject: cfg.Subject, buildSubject: cfg.BuildSubject}

	initCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()
	if err := c.initStream(initCtx); err != nil {
		conn.Close()
		return nil, err
	}
	if err := c.initKVBucket(initCtx, cfg.KVBucket); err != nil {
		conn.Close()
		return nil, err
	}

	slog.Info("NATS client initialized",
		logfields.URL(cfg.NATSURL),
		slog.String("subject", cfg.Subject),
		slog.String("build_subject", cfg.BuildSubject),
		slog.String("kv_bucket", cfg.KVBucket))
	return c, nil
}

func (c *Client) initStream(ctx context.Context) error {
	_, err := c.js.CreateOrUpdateStream(ctx, jetstream.StreamConfig{
		Name:        StreamName,
		Description: "docnav build and broken link events",
		Subjects:    []string{c.subject, c.buildSubject},
		MaxAge:      30 * 24 * time.Hour,
	})
	if err != nil {
		return derrors.WrapError(err, derrors.CategoryEvents, "failed to ensure event stream").
			WithContext("stream", StreamName).
			Build()
	}
	return nil
}

func (c *Client) initKVBucket(ctx context.Context, bucket string) error {
	kv, err := c.js.KeyValue(ctx, bucket)
	if err == nil {
		c.kv = kv
		return nil
	}

	kv, err = c.js.CreateKeyValue(ctx, jetstream.KeyValueConfig{
		Bucket:      bucket,
		Description: "docnav external link cache",
		MaxBytes:    100 * 1024 * 1024,
		History:     1,
	})
	if err != nil {
		return derrors.WrapError(err, derrors.CategoryEvents, "failed to create KV bucket").
			WithContext("bucket", bucket).
			Build()
	}
	c.kv = kv
	slog.Info("Created KV bucket for link cache", slog.String("bucket", bucket))
	return nil
}

// PublishBuild publishes summary on the build subject.
func (c *Client) PublishBuild(ctx context.Context, summary *BuildSummary) error {
	return c.publish(ctx, c.buildSubject, summary)
}

// PublishBrokenLink publishes event on the broken link subject.
func (c *Client) PublishBrokenLink(ctx context.Context, event *linkverify.BrokenLinkEvent) error {
	if event.Timestamp.IsZero() {
		event.Timestamp = time.Now()
	}
	return c.publish(ctx, c.subject, event)
}

func (c *Client) publish(ctx context.Context, subject string, v any) error {
	data, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("failed to marshal event: %w", err)
	}
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if _, err := c.js.Publish(ctx, subject, data); err != nil {
		return derrors.WrapError(err, derrors.CategoryEvents, "failed to publish event").
			WithContext("subject", subject).
			Retryable().
			Build()
	}
	slog.Debug("Published event", slog.String("subject", subject))
	return nil
}

// Get returns the cached entry for url, or nil when the URL was never checked.
func (c *Client) Get(ctx context.Context, url string) (*linkverify.CacheEntry, error) {
	ctx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()

	kve, err := c.kv.Get(ctx, CacheKey(url))
	if errors.Is(err, jetstream.ErrKeyNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get cache entry: %w", err)
	}
	return DecodeCacheEntry(kve.Value())
}

// Set stores entry under the hashed key of its URL.
func (c *Client) Set(ctx context.Context, entry *linkverify.CacheEntry) error {
	data, err := json.Marshal(entry)
	if err != nil {
		return fmt.Errorf("failed to marshal cache entry: %w", err)
	}
	ctx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()
	if _, err := c.kv.Put(ctx, CacheKey(entry.URL), data); err != nil {
		return fmt.Errorf("failed to put cache entry: %w", err)
	}
	return nil
}

// Close drains the connection.
func (c *Client) Close() error {
	if c.conn == nil {
		return nil
	}
	return c.conn.Drain()
}

// CacheKey maps a URL to a valid KV key. URLs contain characters such as ':'
// and '?' that JetStream rejects in keys.
func CacheKey(url string) string {
	sum := sha256.Sum256([]byte(url))
	return "link." + hex.EncodeToString(sum[:])
}

// DecodeCacheEntry parses a stored cache entry.
func DecodeCacheEntry(data []byte) (*linkverify.CacheEntry, error) {
	var entry linkverify.CacheEntry
	if err := json.Unmarshal(data, &entry); err != nil {
		return nil, fmt.Errorf("failed to unmarshal cache entry: %w", err)
	}
	return &entry, nil
}

// Open returns a connected client when cfg names a NATS server and a
// NoopPublisher otherwise. The returned cache is nil when events are disabled.
func Open(ctx context.Context, cfg config.EventsConfig) (Publisher, linkverify.Cache, error) {
	if cfg.NATSURL == "" {
		return NoopPublisher{}, nil, nil
	}
	c, err := Connect(ctx, cfg)
	if err != nil {
		return nil, nil, err
	}
	return c, c, nil
}
