package logfields

import "log/slog"

// Canonical log field name constants to avoid drift across packages.
const (
	KeyRunID      = "run_id"
	KeyFile       = "file"
	KeyPath       = "path"
	KeyDest       = "dest"
	KeyNamespace  = "namespace"
	KeyVersion    = "version"
	KeyToolchain  = "toolchain"
	KeyVisitor    = "visitor"
	KeyStage      = "stage"
	KeyScheme     = "scheme"
	KeyDurationMS = "duration_ms"
	KeyError      = "error"
)

// Simple helpers returning slog.Attr. Keeping each granular means callers can compose.
func RunID(id string) slog.Attr       { return slog.String(KeyRunID, id) }
func File(f string) slog.Attr         { return slog.String(KeyFile, f) }
func Path(p string) slog.Attr         { return slog.String(KeyPath, p) }
func Dest(d string) slog.Attr         { return slog.String(KeyDest, d) }
func Namespace(ns string) slog.Attr   { return slog.String(KeyNamespace, ns) }
func Version(v string) slog.Attr      { return slog.String(KeyVersion, v) }
func Toolchain(v string) slog.Attr    { return slog.String(KeyToolchain, v) }
func Visitor(v string) slog.Attr      { return slog.String(KeyVisitor, v) }
func Stage(name string) slog.Attr     { return slog.String(KeyStage, name) }
func Scheme(s string) slog.Attr       { return slog.String(KeyScheme, s) }
func DurationMS(ms float64) slog.Attr { return slog.Float64(KeyDurationMS, ms) }
func Error(err error) slog.Attr {
	if err == nil {
		return slog.String(KeyError, "")
	}
	return slog.String(KeyError, err.Error())
}
