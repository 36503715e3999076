// Package airport keeps the airports reference file on disk and its parsed
// rows in memory.
package airport

import (
	"context"
	"os"
	"path/filepath"
	"time"

	"airdata/internal/cache"
	"airdata/internal/confirm"
	"airdata/internal/core/logger"
	"airdata/internal/core/types"
	"airdata/internal/download"
)

const (
	// FileName is the local name of the airports file inside the data directory.
	FileName = "airports.csv"

	DefaultURL = "https://ourairports.com/data/airports.csv"
)

type Option func(*Cache)

func WithURL(url string) Option {
	return func(c *Cache) {
		c.url = url
	}
}

func WithMaxAge(maxAge time.Duration) Option {
	return func(c *Cache) {
		c.freshness.MaxAge = maxAge
	}
}

// WithClock replaces the wall clock used for staleness checks.
func WithClock(now func() time.Time) Option {
	return func(c *Cache) {
		c.freshness.Now = now
	}
}

func WithConfirmer(confirmer confirm.Confirmer) Option {
	return func(c *Cache) {
		c.confirmer = confirmer
	}
}

func WithProgress(progress download.ProgressFunc) Option {
	return func(c *Cache) {
		c.progress = progress
	}
}

func WithLogger(log *logger.Logger) Option {
	return func(c *Cache) {
		c.logger = log
	}
}

// Cache serves the airports file. It is not safe for concurrent use.
type Cache struct {
	dataset   *cache.Dataset[types.Airport]
	url       string
	freshness cache.Freshness
	fetcher   download.Fetcher
	confirmer confirm.Confirmer
	progress  download.ProgressFunc
	logger    *logger.Logger
	parses    int
}

// New creates the airports cache for dataDir. Downloads go through fetcher
// and are only started after the confirmer agrees.
func New(dataDir string, fetcher download.Fetcher, opts ...Option) *Cache {
	c := &Cache{
		dataset:   cache.NewDataset[types.Airport]("airports", filepath.Join(dataDir, FileName)),
		url:       DefaultURL,
		freshness: cache.NewFreshness(cache.DefaultMaxAge),
		fetcher:   fetcher,
		confirmer: confirm.Always(false),
	}
	for _, opt := range opts {
		opt(c)
	}
	if c.logger == nil {
		c.logger = logger.NewLogger(logger.WithName("airport"))
	}
	return c
}

// Path returns the local airports file.
func (c *Cache) Path() string {
	return c.dataset.Path()
}

// ParseCount returns how often the airports file was parsed.
func (c *Cache) ParseCount() int {
	return c.parses
}

// Get returns all airports. A parsed snapshot is reused while the file is
// unchanged. A missing, stale or forced file is downloaded first if the
// user agrees; otherwise whatever is on disk is used. Without a local file
// the result is empty.
func (c *Cache) Get(ctx context.Context, forceDownload bool) []types.Airport {
	if !forceDownload {
		if snapshot, ok := c.dataset.Fresh(); ok {
			return snapshot
		}
	}

	path := c.dataset.Path()
	reason := c.freshness.NeedsRefresh(path, forceDownload)
	if reason != cache.ReasonNone {
		if c.confirmer.Confirm("Allow download", prompt(forceDownload)) {
			if err := c.fetcher.Download(ctx, path, c.url, c.progress); err != nil {
				c.logger.Warn("airports download failed, using local data", "reason", reason, "error", err)
			}
		} else {
			c.logger.Info("airports download declined", "reason", reason)
		}
	}

	if !cache.Exists(path) {
		return []types.Airport{}
	}
	return c.load(path)
}

func (c *Cache) load(path string) []types.Airport {
	modTime, ok := cache.ModTime(path)
	if !ok {
		return []types.Airport{}
	}

	file, err := os.Open(path)
	if err != nil {
		c.logger.Error("failed to open airports file", "path", path, "error", err)
		return []types.Airport{}
	}
	defer file.Close()

	c.parses++
	result, err := Parse(file)
	if err != nil {
		c.logger.Error("failed to parse airports file", "path", path, "error", err)
	}
	if result.Skipped > 0 {
		c.logger.Info("some airports were ignored because of an incompatible format", "path", path, "skipped", result.Skipped)
	}
	c.logger.Debug("parsed airports", "path", path, "count", len(result.Airports))

	c.dataset.Store(result.Airports, modTime)
	return result.Airports
}

func prompt(forced bool) string {
	if forced {
		return "You selected airports to be downloaded (~10 MB).\nIs now a good time?"
	}
	return "You selected airports to be drawn.\n" +
		"The airports file first needs to be downloaded or updated (~10 MB).\n" +
		"Is now a good time?"
}
