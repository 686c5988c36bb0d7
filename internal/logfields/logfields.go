package logfields

import "log/slog"

// Canonical log field name constants to avoid drift across packages.
const (
	KeyRepo       = "repository"
	KeyURL        = "url"
	KeyPath       = "path"
	KeyBuildID    = "build_id"
	KeyCommit     = "commit"
	KeyQuery      = "query"
	KeyMatches    = "matches"
	KeyStage      = "stage"
	KeyDurationMS = "duration_ms"
	KeyError      = "error"
)

// Simple helpers returning slog.Attr. Keeping each granular means callers can compose.
func Repository(name string) slog.Attr { return slog.String(KeyRepo, name) }
func URL(u string) slog.Attr           { return slog.String(KeyURL, u) }
func Path(p string) slog.Attr          { return slog.String(KeyPath, p) }
func BuildID(id string) slog.Attr      { return slog.String(KeyBuildID, id) }
func Commit(hash string) slog.Attr     { return slog.String(KeyCommit, hash) }
func Query(q string) slog.Attr         { return slog.String(KeyQuery, q) }
func Matches(n int) slog.Attr          { return slog.Int(KeyMatches, n) }
func Stage(name string) slog.Attr      { return slog.String(KeyStage, name) }
func DurationMS(ms float64) slog.Attr  { return slog.Float64(KeyDurationMS, ms) }

func Error(err error) slog.Attr {
	if err == nil {
		return slog.String(KeyError, "")
	}
	return slog.String(KeyError, err.Error())
}
