package logfields

import "log/slog"

// Canonical log field name constants to avoid drift across packages.
const (
	KeyBuildID    = "build_id"
	KeyStage      = "stage"
	KeyPrefix     = "prefix"
	KeyPage       = "page"
	KeyPath       = "path"
	KeyURL        = "url"
	KeyRule       = "rule"
	KeyFormat     = "format"
	KeyStatus     = "status"
	KeyOutcome    = "outcome"
	KeyDurationMS = "duration_ms"
	KeyError      = "error"
	KeyTrigger    = "trigger"
	KeyMethod     = "method"
	KeyRemoteAddr = "remote_addr"
)

// Simple helpers returning slog.Attr. Keeping each granular means callers can compose.
func BuildID(id string) slog.Attr     { return slog.String(KeyBuildID, id) }
func Stage(name string) slog.Attr     { return slog.String(KeyStage, name) }
func Prefix(p string) slog.Attr       { return slog.String(KeyPrefix, p) }
func Page(ref string) slog.Attr       { return slog.String(KeyPage, ref) }
func Path(p string) slog.Attr         { return slog.String(KeyPath, p) }
func URL(u string) slog.Attr          { return slog.String(KeyURL, u) }
func Rule(name string) slog.Attr      { return slog.String(KeyRule, name) }
func Format(f string) slog.Attr       { return slog.String(KeyFormat, f) }
func Status(code int) slog.Attr       { return slog.Int(KeyStatus, code) }
func Outcome(o string) slog.Attr      { return slog.String(KeyOutcome, o) }
func DurationMS(ms float64) slog.Attr { return slog.Float64(KeyDurationMS, ms) }
func Trigger(t string) slog.Attr      { return slog.String(KeyTrigger, t) }
func Method(m string) slog.Attr       { return slog.String(KeyMethod, m) }
func RemoteAddr(a string) slog.Attr   { return slog.String(KeyRemoteAddr, a) }
func Error(err error) slog.Attr {
	if err == nil {
		return slog.String(KeyError, "")
	}
	return slog.String(KeyError, err.Error())
}
