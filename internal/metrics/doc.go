// Package metrics records build observability through a Recorder.
//
// Components receive a Recorder by injection and default to NoopRecorder, so
// no call site needs a nil check:
//
//	svc := build.NewService(cfg).WithRecorder(metrics.NewPrometheusRecorder(reg))
//
// The serve daemon installs a PrometheusRecorder and exposes its registry
// through HTTPHandler.
package metrics
