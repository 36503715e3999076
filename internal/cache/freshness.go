package cache

import (
	"os"
	"time"
)

// DefaultMaxAge is how long a downloaded reference file is trusted.
const DefaultMaxAge = 30 * 24 * time.Hour

// Freshness decides whether a local file warrants a refresh.
type Freshness struct {
	MaxAge time.Duration
	Now    func() time.Time
}

// NewFreshness returns a policy with the given threshold on the wall clock.
func NewFreshness(maxAge time.Duration) Freshness {
	return Freshness{MaxAge: maxAge, Now: time.Now}
}

// IsStale reports true when path is missing or older than MaxAge.
func (f Freshness) IsStale(path string) bool {
	info, err := os.Stat(path)
	if err != nil {
		return true
	}
	now := time.Now
	if f.Now != nil {
		now = f.Now
	}
	return now().Sub(info.ModTime()) > f.MaxAge
}

// Reason explains why a refresh would be attempted.
type Reason string

const (
	ReasonNone    Reason = ""
	ReasonMissing Reason = "missing"
	ReasonStale   Reason = "stale"
	ReasonForced  Reason = "forced"
)

// NeedsRefresh is the pure download policy: forced, missing or stale files
// are refreshed. Whether the refresh actually happens is up to the user.
func (f Freshness) NeedsRefresh(path string, force bool) Reason {
	switch {
	case force:
		return ReasonForced
	case !Exists(path):
		return ReasonMissing
	case f.IsStale(path):
		return ReasonStale
	default:
		return ReasonNone
	}
}

// IsStale reports whether path is missing or older than maxAge.
func IsStale(path string, maxAge time.Duration) bool {
	return NewFreshness(maxAge).IsStale(path)
}

// Exists reports whether path names an existing file.
func Exists(path string) bool {
	info, err := os.Stat(path)
	return err == nil && !info.IsDir()
}

// ModTime returns the modification time of path.
func ModTime(path string) (time.Time, bool) {
	info, err := os.Stat(path)
	if err != nil {
		return time.Time{}, false
	}
	return info.ModTime(), true
}
