package metrics

import (
	"time"

	prom "github.com/prometheus/client_golang/prometheus"
)

const namespace = "docnav"

// PrometheusRecorder implements Recorder using Prometheus metrics.
type PrometheusRecorder struct {
	stageDuration *prom.HistogramVec
	buildDuration prom.Histogram
	stageResults  *prom.CounterVec
	buildOutcome  *prom.CounterVec
	lintIssues    *prom.CounterVec
	pagesIndexed  prom.Gauge
	linkDuration  *prom.HistogramVec
	linkResults   *prom.CounterVec
	rebuilds      *prom.CounterVec
}

// NewPrometheusRecorder constructs the metrics and registers them with reg.
// A nil reg gets a fresh registry.
func NewPrometheusRecorder(reg *prom.Registry) *PrometheusRecorder {
	if reg == nil {
		reg = prom.NewRegistry()
	}
	pr := &PrometheusRecorder{
		stageDuration: prom.NewHistogramVec(prom.HistogramOpts{
			Namespace: namespace,
			Name:      "stage_duration_seconds",
			Help:      "Duration of individual build stages",
			Buckets:   prom.DefBuckets,
		}, []string{"stage"}),
		buildDuration: prom.NewHistogram(prom.HistogramOpts{
			Namespace: namespace,
			Name:      "build_duration_seconds",
			Help:      "Total build duration",
			Buckets:   prom.DefBuckets,
		}),
		stageResults: prom.NewCounterVec(prom.CounterOpts{
			Namespace: namespace,
			Name:      "stage_results_total",
			Help:      "Stage result counts by outcome",
		}, []string{"stage", "result"}),
		buildOutcome: prom.NewCounterVec(prom.CounterOpts{
			Namespace: namespace,
			Name:      "build_outcomes_total",
			Help:      "Build outcomes by final status",
		}, []string{"outcome"}),
		lintIssues: prom.NewCounterVec(prom.CounterOpts{
			Namespace: namespace,
			Name:      "lint_issues_total",
			Help:      "Lint issues reported, by severity",
		}, []string{"severity"}),
		pagesIndexed: prom.NewGauge(prom.GaugeOpts{
			Namespace: namespace,
			Name:      "pages_indexed",
			Help:      "Pages loaded from the content tree by the last build",
		}),
		linkDuration: prom.NewHistogramVec(prom.HistogramOpts{
			Namespace: namespace,
			Name:      "link_check_duration_seconds",
			Help:      "Duration of single link checks",
			Buckets:   prom.DefBuckets,
		}, []string{"kind"}),
		linkResults: prom.NewCounterVec(prom.CounterOpts{
			Namespace: namespace,
			Name:      "link_checks_total",
			Help:      "Link checks by kind and result",
		}, []string{"kind", "result"}),
		rebuilds: prom.NewCounterVec(prom.CounterOpts{
			Namespace: namespace,
			Name:      "rebuilds_total",
			Help:      "Daemon rebuilds by trigger",
		}, []string{"trigger"}),
	}
	reg.MustRegister(pr.stageDuration, pr.buildDuration, pr.stageResults, pr.buildOutcome,
		pr.lintIssues, pr.pagesIndexed, pr.linkDuration, pr.linkResults, pr.rebuilds)
	return pr
}

func (p *PrometheusRecorder) ObserveStageDuration(stage string, d time.Duration) {
	if p == nil {
		return
	}
	p.stageDuration.WithLabelValues(stage).Observe(d.Seconds())
}

func (p *PrometheusRecorder) ObserveBuildDuration(d time.Duration) {
	if p == nil {
		return
	}
	p.buildDuration.Observe(d.Seconds())
}

func (p *PrometheusRecorder) IncStageResult(stage string, result ResultLabel) {
	if p == nil {
		return
	}
	p.stageResults.WithLabelValues(stage, string(result)).Inc()
}

func (p *PrometheusRecorder) IncBuildOutcome(outcome string) {
	if p == nil {
		return
	}
	p.buildOutcome.WithLabelValues(outcome).Inc()
}

func (p *PrometheusRecorder) AddLintIssues(severity string, n int) {
	if p == nil || n <= 0 {
		return
	}
	p.lintIssues.WithLabelValues(severity).Add(float64(n))
}

func (p *PrometheusRecorder) SetPagesIndexed(n int) {
	if p == nil {
		return
	}
	p.pagesIndexed.Set(float64(n))
}

func (p *PrometheusRecorder) ObserveLinkCheck(kind string, d time.Duration, broken bool) {
	if p == nil {
		return
	}
	res := "ok"
	if broken {
		res = "broken"
	}
	p.linkDuration.WithLabelValues(kind).Observe(d.Seconds())
	p.linkResults.WithLabelValues(kind, res).Inc()
}

func (p *PrometheusRecorder) IncRebuild(trigger string) {
	if p == nil {
		return
	}
	p.rebuilds.WithLabelValues(trigger).Inc()
}
