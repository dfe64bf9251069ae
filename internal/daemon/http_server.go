package daemon

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	"git.home.luguber.info/inful/docnav/internal/build"
	"git.home.luguber.info/inful/docnav/internal/emit"
	derrors "git.home.luguber.info/inful/docnav/internal/foundation/errors"
	"git.home.luguber.info/inful/docnav/internal/logfields"
	"git.home.luguber.info/inful/docnav/internal/markdown"
	"git.home.luguber.info/inful/docnav/internal/metrics"
	"git.home.luguber.info/inful/docnav/internal/navigation"
	"git.home.luguber.info/inful/docnav/internal/version"
)

// Handler returns the HTTP API:
//
//	GET  /config.json          VuePress JSON of the last good build
//	GET  /config.yaml          the same as YAML
//	GET  /sidebar?path=/api/x  sidebar prefix and items for a page path
//	GET  /healthz              build health
//	GET  /metrics              Prometheus metrics
//	POST /build                queue a rebuild
func (d *Daemon) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /config.json", d.handleConfig(emit.EncodeVuePress, "application/json"))
	mux.HandleFunc("GET /config.yaml", d.handleConfig(emit.EncodeYAML, "application/yaml"))
	mux.HandleFunc("GET /sidebar", d.handleSidebar)
	mux.HandleFunc("GET /healthz", d.handleHealth)
	mux.Handle("GET /metrics", metrics.HTTPHandler(d.registry))
	mux.HandleFunc("POST /build", d.handleBuild)
	return chain(slog.Default(), d.errorAdapter, mux)
}

// site returns the last good report, or a daemon error before the first one.
func (d *Daemon) site() (*build.Report, error) {
	report := d.LastReport()
	if report == nil {
		return nil, derrors.DaemonError("no successful build yet").Retryable().Build()
	}
	return report, nil
}

func (d *Daemon) handleConfig(encode func(*navigation.SiteConfig) ([]byte, error), contentType string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		report, err := d.site()
		if err != nil {
			d.errorAdapter.WriteErrorResponse(w, r, err)
			return
		}
		etag := `"` + report.Fingerprint + `"`
		if report.Fingerprint != "" && r.Header.Get("If-None-Match") == etag {
			w.WriteHeader(http.StatusNotModified)
			return
		}
		data, err := encode(report.Site)
		if err != nil {
			d.errorAdapter.WriteErrorResponse(w, r,
				derrors.WrapError(err, derrors.CategoryInternal, "failed to encode configuration").Build())
			return
		}
		w.Header().Set("Content-Type", contentType)
		if report.Fingerprint != "" {
			w.Header().Set("ETag", etag)
		}
		w.Header().Set("X-Docnav-Build", report.BuildID)
		_, _ = w.Write(data)
	}
}

// SidebarResponse is the body of GET /sidebar.
type SidebarResponse struct {
	Path   string                   `json:"path"`
	Prefix string                   `json:"prefix"`
	Items  []navigation.SidebarItem `json:"items"`
	// Headers holds the sidebar headers of the pages in Items.
	Headers map[navigation.PageRef][]markdown.Heading `json:"headers,omitempty"`
}

func (d *Daemon) handleSidebar(w http.ResponseWriter, r *http.Request) {
	path := r.URL.Query().Get("path")
	if path == "" {
		d.errorAdapter.WriteErrorResponse(w, r, derrors.ValidationError("query parameter path is required").Build())
		return
	}
	report, err := d.site()
	if err != nil {
		d.errorAdapter.WriteErrorResponse(w, r, err)
		return
	}
	prefix, items, ok := report.Site.Sidebar().Lookup(path)
	if !ok {
		d.errorAdapter.WriteErrorResponse(w, r,
			derrors.NotFoundError("no sidebar for path").WithContext("path", path).Build())
		return
	}
	resp := SidebarResponse{Path: path, Prefix: prefix, Items: items}
	for _, ref := range navigation.PageRefs(items) {
		if hs := report.Headers[ref]; len(hs) > 0 {
			if resp.Headers == nil {
				resp.Headers = map[navigation.PageRef][]markdown.Heading{}
			}
			resp.Headers[ref] = hs
		}
	}
	writeJSON(w, http.StatusOK, resp)
}

// HealthStatus represents the overall health of the daemon.
type HealthStatus string

const (
	HealthStatusHealthy   HealthStatus = "healthy"
	HealthStatusDegraded  HealthStatus = "degraded"
	HealthStatusUnhealthy HealthStatus = "unhealthy"
)

// BuildInfo summarizes a build for the health response.
type BuildInfo struct {
	BuildID     string    `json:"build_id"`
	Trigger     string    `json:"trigger"`
	Outcome     string    `json:"outcome"`
	FinishedAt  time.Time `json:"finished_at"`
	Pages       int       `json:"pages"`
	Missing     int       `json:"missing"`
	BrokenLinks int       `json:"broken_links"`
	Fingerprint string    `json:"fingerprint,omitempty"`
	Error       string    `json:"error,omitempty"`
}

// HealthResponse is the body of GET /healthz.
type HealthResponse struct {
	Status      HealthStatus `json:"status"`
	Timestamp   time.Time    `json:"timestamp"`
	Uptime      string       `json:"uptime"`
	Version     string       `json:"version"`
	Building    bool         `json:"building"`
	Serving     *BuildInfo   `json:"serving,omitempty"`
	LastAttempt *BuildInfo   `json:"last_attempt,omitempty"`
}

// Health reports unhealthy before the first good build, degraded when the
// served build has warnings or the latest attempt failed.
func (d *Daemon) Health() *HealthResponse {
	d.mu.RLock()
	last, attempt, lastErr := d.last, d.lastAttempt, d.lastErr
	d.mu.RUnlock()

	resp := &HealthResponse{
		Status:    HealthStatusHealthy,
		Timestamp: time.Now(),
		Uptime:    time.Since(d.startTime).Round(time.Second).String(),
		Version:   version.Version,
		Building:  d.building.Load(),
	}
	if last != nil {
		resp.Serving = buildInfo(last, nil)
	}
	if attempt != nil {
		resp.LastAttempt = buildInfo(attempt, lastErr)
	}
	switch {
	case last == nil:
		resp.Status = HealthStatusUnhealthy
	case last.Outcome != build.OutcomeSuccess, attempt != nil && attempt != last:
		resp.Status = HealthStatusDegraded
	}
	return resp
}

func buildInfo(r *build.Report, err error) *BuildInfo {
	info := &BuildInfo{
		BuildID:     r.BuildID,
		Trigger:     r.Trigger,
		Outcome:     string(r.Outcome),
		FinishedAt:  r.EndTime,
		Pages:       r.Pages,
		Missing:     len(r.Missing),
		BrokenLinks: r.BrokenLinks(),
		Fingerprint: r.Fingerprint,
	}
	if err != nil {
		info.Error = err.Error()
	}
	return info
}

func (d *Daemon) handleHealth(w http.ResponseWriter, _ *http.Request) {
	resp := d.Health()
	status := http.StatusOK
	if resp.Status == HealthStatusUnhealthy {
		status = http.StatusServiceUnavailable
	}
	writeJSON(w, status, resp)
}

func (d *Daemon) handleBuild(w http.ResponseWriter, _ *http.Request) {
	d.Request(TriggerAPI)
	writeJSON(w, http.StatusAccepted, map[string]string{"status": "queued"})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Warn("Failed to write JSON response", logfields.Error(err))
	}
}
