// Package linkverify checks that every sidebar page reference resolves to a
// Markdown source and that navbar links answer.
package linkverify

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"sync"
	"time"

	"git.home.luguber.info/inful/docnav/internal/content"
	derrors "git.home.luguber.info/inful/docnav/internal/foundation/errors"
	"git.home.luguber.info/inful/docnav/internal/logfields"
	"git.home.luguber.info/inful/docnav/internal/metrics"
	"git.home.luguber.info/inful/docnav/internal/navigation"
	"git.home.luguber.info/inful/docnav/internal/retry"
	"git.home.luguber.info/inful/docnav/internal/util/sets"
)

const userAgent = "docnav-linkverify/1.0"

// Kind separates site-internal references from external URLs.
type Kind string

const (
	KindInternal Kind = "internal"
	KindExternal Kind = "external"
)

// Finding is one broken reference.
type Finding struct {
	Kind   Kind
	Ref    string
	Source string
	Status int
	Err    error
}

// Message returns the error text of the finding.
func (f Finding) Message() string {
	if f.Err == nil {
		return ""
	}
	return f.Err.Error()
}

// Report summarizes one verification pass.
type Report struct {
	BuildID  string
	Checked  int
	Findings []Finding
}

// Broken returns the findings of the given kind.
func (r *Report) Broken(kind Kind) []Finding {
	var out []Finding
	for _, f := range r.Findings {
		if f.Kind == kind {
			out = append(out, f)
		}
	}
	return out
}

// Options tunes verification.
type Options struct {
	External         bool
	Timeout          time.Duration
	MaxConcurrent    int
	FollowRedirects  bool
	MaxRedirects     int
	CacheTTL         time.Duration
	CacheTTLFailures time.Duration
	// Retry applies to external checks that failed with a network error or
	// a 5xx status. The zero policy checks once.
	Retry retry.Policy
}

// Service verifies the references of a site configuration.
type Service struct {
	resolver   *content.Resolver
	opts       Options
	httpClient *http.Client
	cache      Cache
	publisher  Publisher
	recorder   metrics.Recorder
	now        func() time.Time
}

// NewService returns a service resolving internal references with resolver.
func NewService(resolver *content.Resolver, opts Options) *Service {
	if opts.MaxConcurrent <= 0 {
		opts.MaxConcurrent = 10
	}
	if opts.Timeout <= 0 {
		opts.Timeout = 10 * time.Second
	}
	if opts.MaxRedirects <= 0 {
		opts.MaxRedirects = 10
	}
	if opts.CacheTTL <= 0 {
		opts.CacheTTL = 24 * time.Hour
	}
	if opts.CacheTTLFailures <= 0 {
		opts.CacheTTLFailures = time.Hour
	}

	// Respects HTTP_PROXY, HTTPS_PROXY and NO_PROXY.
	transport := http.DefaultTransport.(*http.Transport).Clone()
	client := &http.Client{
		Timeout:   opts.Timeout,
		Transport: transport,
		CheckRedirect: func(req *http.Request, via []*http.Request) error {
			if !opts.FollowRedirects {
				return http.ErrUseLastResponse
			}
			if len(via) >= opts.MaxRedirects {
				return fmt.Errorf("stopped after %d redirects", opts.MaxRedirects)
			}
			return nil
		},
	}

	return &Service{
		resolver:   resolver,
		opts:       opts,
		httpClient: client,
		cache:      NewMemoryCache(),
		recorder:   metrics.NoopRecorder{},
		now:        time.Now,
	}
}

// WithCache replaces the in-memory cache.
func (s *Service) WithCache(c Cache) *Service {
	if c != nil {
		s.cache = c
	}
	return s
}

// WithPublisher publishes broken links through p.
func (s *Service) WithPublisher(p Publisher) *Service {
	s.publisher = p
	return s
}

// WithRecorder sets the metrics recorder.
func (s *Service) WithRecorder(r metrics.Recorder) *Service {
	if r != nil {
		s.recorder = r
	}
	return s
}

// WithHTTPClient replaces the HTTP client used for external links.
func (s *Service) WithHTTPClient(c *http.Client) *Service {
	if c != nil {
		s.httpClient = c
	}
	return s
}

type target struct {
	ref    string
	source string
}

// Verify checks every sidebar reference and navbar link of site.
func (s *Service) Verify(ctx context.Context, site *navigation.SiteConfig, buildID string) (*Report, error) {
	report := &Report{BuildID: buildID}

	internal, external := s.collect(site)
	report.Checked = len(internal) + len(external)

	resolved := make(map[string]error, len(internal))
	for _, t := range internal {
		if err := ctx.Err(); err != nil {
			return report, canceled(err)
		}
		err, seen := resolved[t.ref]
		if !seen {
			start := s.now()
			_, err = s.resolver.Resolve(navigation.PageRef(t.ref))
			s.recorder.ObserveLinkCheck(string(KindInternal), s.now().Sub(start), err != nil)
			resolved[t.ref] = err
		}
		if err != nil {
			f := Finding{Kind: KindInternal, Ref: t.ref, Source: t.source, Err: err}
			report.Findings = append(report.Findings, f)
			s.handleBroken(ctx, f, buildID, nil)
		}
	}

	if !s.opts.External || len(external) == 0 {
		return report, nil
	}

	var (
		mu  sync.Mutex
		wg  sync.WaitGroup
		sem = make(chan struct{}, s.opts.MaxConcurrent)
	)
	for _, t := range external {
		select {
		case <-ctx.Done():
			wg.Wait()
			return report, canceled(ctx.Err())
		case sem <- struct{}{}:
		}
		wg.Add(1)
		go func(t target) {
			defer wg.Done()
			defer func() { <-sem }()
			if f, broken := s.verifyExternal(ctx, t, buildID); broken {
				mu.Lock()
				report.Findings = append(report.Findings, f)
				mu.Unlock()
			}
		}(t)
	}
	wg.Wait()
	if err := ctx.Err(); err != nil {
		return report, canceled(err)
	}
	return report, nil
}

// collect lists the internal and external targets of site. External URLs are
// deduplicated; internal refs keep every source so each broken location is reported.
func (s *Service) collect(site *navigation.SiteConfig) (internal, external []target) {
	sb := site.Sidebar()
	for _, prefix := range sb.Prefixes() {
		items, _ := sb.Get(prefix)
		for _, ref := range navigation.PageRefs(items) {
			internal = append(internal, target{ref: string(ref), source: "sidebar[" + prefix + "]"})
		}
	}

	seen := sets.New[string]()
	for _, l := range site.NavLinks() {
		source := "nav: " + l.Breadcrumb()
		switch {
		case l.External():
			u := stripFragment(l.Link)
			if !seen.AddNew(u) {
				continue
			}
			external = append(external, target{ref: u, source: source})
		case strings.HasPrefix(l.Link, "/"):
			internal = append(internal, target{ref: stripFragment(l.Link), source: source})
		}
	}
	return internal, external
}

func (s *Service) verifyExternal(ctx context.Context, t target, buildID string) (Finding, bool) {
	cached, err := s.cache.Get(ctx, t.ref)
	if err != nil {
		slog.Debug("Cache lookup error", logfields.URL(t.ref), logfields.Error(err))
	}
	now := s.now()
	if Fresh(cached, s.opts.CacheTTL, s.opts.CacheTTLFailures, now) {
		if cached.IsValid {
			return Finding{}, false
		}
		f := Finding{Kind: KindExternal, Ref: t.ref, Source: t.source, Status: cached.Status, Err: errors.New(cached.Error)}
		s.handleBroken(ctx, f, buildID, cached)
		return f, true
	}

	var status int
	checkErr := s.opts.Retry.Do(ctx, func(attempt int) (bool, error) {
		if attempt > 0 {
			slog.Debug("Retrying link check", logfields.URL(t.ref), slog.Int("attempt", attempt))
		}
		start := s.now()
		var err error
		status, err = s.checkExternalLink(ctx, t.ref)
		s.recorder.ObserveLinkCheck(string(KindExternal), s.now().Sub(start), err != nil)
		return err != nil && ctx.Err() == nil && transient(status), err
	})

	entry := &CacheEntry{
		URL:         t.ref,
		Status:      status,
		IsValid:     checkErr == nil,
		LastChecked: now,
	}
	if checkErr != nil {
		entry.Error = checkErr.Error()
		recordFailure(entry, cached, now)
	}
	// A canceled request says nothing about the link.
	if ctx.Err() == nil {
		if err := s.cache.Set(ctx, entry); err != nil {
			slog.Warn("Failed to update link cache", logfields.URL(t.ref), logfields.Error(err))
		}
	}
	if checkErr == nil || ctx.Err() != nil {
		return Finding{}, false
	}

	f := Finding{Kind: KindExternal, Ref: t.ref, Source: t.source, Status: status, Err: checkErr}
	s.handleBroken(ctx, f, buildID, entry)
	return f, true
}

// checkExternalLink requests linkURL with HEAD and falls back to GET for
// servers that reject or do not route HEAD.
func (s *Service) checkExternalLink(ctx context.Context, linkURL string) (int, error) {
	linkURL = stripFragment(linkURL)
	status, err := s.request(ctx, http.MethodHead, linkURL)
	if err == nil && (status == http.StatusNotFound || status == http.StatusMethodNotAllowed) {
		status, err = s.request(ctx, http.MethodGet, linkURL)
	}
	if err != nil {
		return 0, err
	}
	if isReachable(status) {
		return status, nil
	}
	if status >= 400 {
		return status, fmt.Errorf("HTTP %d: %s", status, http.StatusText(status))
	}
	return status, nil
}

func (s *Service) request(ctx context.Context, method, linkURL string) (int, error) {
	req, err := http.NewRequestWithContext(ctx, method, linkURL, nil)
	if err != nil {
		return 0, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("User-Agent", userAgent)

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return 0, fmt.Errorf("request failed: %w", err)
	}
	defer func() {
		_ = resp.Body.Close()
	}()
	_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, 64<<10))
	return resp.StatusCode, nil
}

// isReachable returns true for statuses that prove the URL exists even
// though the request was refused.
func isReachable(status int) bool {
	switch status {
	case http.StatusUnauthorized, http.StatusForbidden, http.StatusMethodNotAllowed, http.StatusTooManyRequests:
		return true
	}
	return false
}

// transient reports failures worth another attempt: no response at all, or a
// server-side error.
func transient(status int) bool {
	return status == 0 || status >= http.StatusInternalServerError
}

func (s *Service) handleBroken(ctx context.Context, f Finding, buildID string, entry *CacheEntry) {
	slog.Warn("Broken link detected",
		slog.String("kind", string(f.Kind)),
		logfields.URL(f.Ref),
		slog.String("source", f.Source),
		logfields.Status(f.Status),
		slog.String(logfields.KeyError, f.Message()))

	if s.publisher == nil {
		return
	}
	event := &BrokenLinkEvent{
		Kind:      f.Kind,
		URL:       f.Ref,
		Source:    f.Source,
		Status:    f.Status,
		Error:     f.Message(),
		Timestamp: s.now(),
		BuildID:   buildID,
	}
	if entry != nil {
		event.LastChecked = entry.LastChecked
		event.FailureCount = entry.FailureCount
		event.FirstFailedAt = entry.FirstFailedAt
	}
	if err := s.publisher.PublishBrokenLink(ctx, event); err != nil {
		slog.Error("Failed to publish broken link event", logfields.URL(f.Ref), logfields.Error(err))
	}
}

func stripFragment(u string) string {
	if i := strings.IndexByte(u, '#'); i >= 0 {
		return u[:i]
	}
	return u
}

func canceled(err error) error {
	return derrors.WrapError(err, derrors.CategoryRuntime, "link verification canceled").Build()
}
