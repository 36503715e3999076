// Package airspace keeps per-country airspace files on disk and the parsed
// airspaces of the requested countries in memory.
package airspace

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"airdata/internal/cache"
	"airdata/internal/confirm"
	"airdata/internal/core/logger"
	"airdata/internal/core/types"
	"airdata/internal/download"
)

const DefaultDownloadURL = "https://storage.googleapis.com/storage/v1/b/29f98e10-a489-4c82-ae5e-489dbcd4912f/o/%s_asp.xml?alt=media"

// FileName returns the local file name for a country, e.g. "de_asp.xml".
func FileName(country string) string {
	return country + "_asp.xml"
}

type Option func(*Cache)

// WithDownloadURL sets the download template; %s is the country code.
func WithDownloadURL(template string) Option {
	return func(c *Cache) {
		c.downloadURL = template
	}
}

func WithMaxAge(maxAge time.Duration) Option {
	return func(c *Cache) {
		c.freshness.MaxAge = maxAge
	}
}

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

// Cache serves airspaces by country. It is not safe for concurrent use.
type Cache struct {
	dataDir     string
	downloadURL string
	directory   Directory
	freshness   cache.Freshness
	fetcher     download.Fetcher
	confirmer   confirm.Confirmer
	progress    download.ProgressFunc
	logger      *logger.Logger
	airspaces   *cache.Collection[types.Airspace]
	parses      int
}

// New creates the airspace cache for dataDir. The directory supplies the
// published files and their sizes; downloads go through fetcher.
func New(dataDir string, directory Directory, fetcher download.Fetcher, opts ...Option) *Cache {
	c := &Cache{
		dataDir:     dataDir,
		downloadURL: DefaultDownloadURL,
		directory:   directory,
		freshness:   cache.NewFreshness(cache.DefaultMaxAge),
		fetcher:     fetcher,
		confirmer:   confirm.Always(false),
		airspaces:   cache.NewCollection[types.Airspace](),
	}
	for _, opt := range opts {
		opt(c)
	}
	if c.logger == nil {
		c.logger = logger.NewLogger(logger.WithName("airspace"))
	}
	return c
}

// Path returns the local file for country.
func (c *Cache) Path(country string) string {
	return filepath.Join(c.dataDir, FileName(country))
}

// ParseCount returns how many airspace files were parsed so far.
func (c *Cache) ParseCount() int {
	return c.parses
}

// Available lists the airspace files published upstream.
func (c *Cache) Available(ctx context.Context) []types.DirectoryEntry {
	return c.directory.ListAvailable(ctx)
}

// Update downloads the files of countries that are missing, stale or
// forced, each only after the user agreed. Declined or failed downloads
// leave existing files untouched.
func (c *Cache) Update(ctx context.Context, countries []string, forceDownload bool) {
	countries = unique(countries)
	var entries []types.DirectoryEntry
	listed := false

	for _, country := range countries {
		path := c.Path(country)
		reason := c.freshness.NeedsRefresh(path, forceDownload)
		if reason == cache.ReasonNone {
			continue
		}

		if !listed {
			entries = c.directory.ListAvailable(ctx)
			listed = true
		}
		entry, ok := Lookup(entries, country)
		if !ok {
			c.logger.Warn("no airspace file published for country", "country", country)
			continue
		}

		message := fmt.Sprintf("The selected %s airspace needs to be downloaded (%s)\nIs now a good time?", country, entry.Size)
		if !c.confirmer.Confirm("Allow download", message) {
			c.logger.Info("airspace download declined", "country", country, "reason", reason)
			continue
		}

		url := fmt.Sprintf(c.downloadURL, country)
		if err := c.fetcher.Download(ctx, path, url, c.progress); err != nil {
			c.logger.Warn("airspace download failed, using local data", "country", country, "error", err)
		}
	}
}

// Get returns the airspaces of every requested country that has a local
// file, refreshing files first. The parsed result is reused while the set
// of files and their modification times stay the same.
func (c *Cache) Get(ctx context.Context, countries []string) []types.Airspace {
	countries = unique(countries)
	c.Update(ctx, countries, false)

	paths := make([]string, 0, len(countries))
	for _, country := range countries {
		path := c.Path(country)
		if cache.Exists(path) {
			paths = append(paths, path)
		}
	}

	if !c.airspaces.NeedsReload(paths) {
		return c.airspaces.Items()
	}

	c.airspaces.Reset()
	for _, path := range paths {
		modTime, ok := cache.ModTime(path)
		if !ok {
			continue
		}
		c.airspaces.Add(path, modTime, c.load(path))
	}
	return c.airspaces.Items()
}

func (c *Cache) load(path string) []types.Airspace {
	file, err := os.Open(path)
	if err != nil {
		c.logger.Error("failed to open airspace file", "path", path, "error", err)
		return nil
	}
	defer file.Close()

	c.parses++
	result, err := Parse(file)
	if err != nil {
		c.logger.Error("failed to parse airspace file", "path", path, "error", err)
	}
	for _, skip := range result.Skipped {
		c.logger.Debug("problem in airspace file", "path", path, "record", skip.Index, "error", skip.Err)
	}
	if len(result.Skipped) > 0 {
		c.logger.Info("some airspaces were ignored because of an incompatible format", "path", path, "skipped", len(result.Skipped))
	}
	return result.Airspaces
}

// unique drops repeated countries, keeping the first occurrence.
func unique(countries []string) []string {
	seen := make(map[string]struct{}, len(countries))
	out := make([]string, 0, len(countries))
	for _, country := range countries {
		if _, ok := seen[country]; ok {
			continue
		}
		seen[country] = struct{}{}
		out = append(out, country)
	}
	return out
}
