// Package workspace manages the staging directory of a clean build.
//
// A clean build writes every output into a fresh timestamped directory next
// to the output directory (e.g. .docnav-20251214-122336-123) and swaps it in
// with Promote once the build succeeded, so a failed build never leaves a
// half-written output behind. Cleanup removes a staging directory that was
// not promoted.
package workspace
