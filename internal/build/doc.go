// Package build runs one docnav build.
//
// A build moves through fixed stages: construct the navigation registry,
// enrich it from the Markdown tree and git history, lint it, optionally
// verify its references, emit it in the configured formats, and record the
// result in the build history and on the event bus. Every execution path
// (CLI, serve daemon, tests) goes through Service.Run.
package build
