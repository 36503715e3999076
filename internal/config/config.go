package config

import (
	"errors"
	"os"
	"path/filepath"
	"time"

	"airdata/internal/airport"
	"airdata/internal/airspace"
	"airdata/internal/cache"
	"airdata/internal/core/types"
)

var ErrNoDataDir = errors.New("no data directory configured")

const (
	DefaultAirportsURL = airport.DefaultURL
	DefaultListingURL  = airspace.DefaultListingURL
	DefaultDownloadURL = airspace.DefaultDownloadURL

	DefaultMaxAge   = cache.DefaultMaxAge
	DefaultSchedule = "0 0 4 * * *"
)

// Config is the top-level configuration structure
type Config struct {
	DataDir   string          `yaml:"data_dir"`
	MaxAge    string          `yaml:"max_age"`
	Download  DownloadConfig  `yaml:"download"`
	Airports  AirportsConfig  `yaml:"airports"`
	Airspaces AirspacesConfig `yaml:"airspaces"`
	Confirm   ConfirmConfig   `yaml:"confirm"`
	Log       LogConfig       `yaml:"log"`
	Watch     WatchConfig     `yaml:"watch"`
}

// DownloadConfig holds settings shared by every download.
type DownloadConfig struct {
	Timeout   string      `yaml:"timeout"`    // connect and read timeout
	ChunkSize types.Bytes `yaml:"chunk_size"` // progress is reported per chunk
	RateLimit types.Bytes `yaml:"rate_limit"` // bytes per second, 0 = unlimited
}

type AirportsConfig struct {
	URL string `yaml:"url"`
}

type AirspacesConfig struct {
	ListingURL  string          `yaml:"listing_url"`
	DownloadURL string          `yaml:"download_url"` // %s is replaced by the country code
	Countries   []string        `yaml:"countries"`
	Directory   DirectoryConfig `yaml:"directory"`
}

// DirectoryConfig selects where the list of published airspace files comes
// from: the public bucket listing, or an S3-compatible mirror.
type DirectoryConfig struct {
	Kind     string `yaml:"kind"` // "listing" or "s3"
	Bucket   string `yaml:"bucket"`
	Endpoint string `yaml:"endpoint"`
	Region   string `yaml:"region"`
	Profile  string `yaml:"profile"`
}

// ConfirmConfig sets the answer used when no terminal is attached.
type ConfirmConfig struct {
	Assume *bool `yaml:"assume"`
}

type LogConfig struct {
	Level     string `yaml:"level"`
	File      string `yaml:"file"`
	MaxSizeMB int    `yaml:"max_size_mb"`
}

type WatchConfig struct {
	Schedule string `yaml:"schedule"` // cron spec with seconds
}

// MaxAgeDuration returns the staleness threshold.
func (c *Config) MaxAgeDuration() time.Duration {
	return ParseDuration(c.MaxAge, DefaultMaxAge)
}

// DownloadTimeout returns the connect and read timeout for transfers.
func (c *Config) DownloadTimeout() time.Duration {
	return ParseDuration(c.Download.Timeout, 5*time.Second)
}

// AssumeYes reports the answer for non-interactive confirmations.
func (c *Config) AssumeYes() bool {
	return c.Confirm.Assume != nil && *c.Confirm.Assume
}

// ParseDuration parses a duration string with fallback to default
func ParseDuration(durationStr string, defaultDuration time.Duration) time.Duration {
	if durationStr == "" {
		return defaultDuration
	}
	if dur, err := time.ParseDuration(durationStr); err == nil {
		return dur
	}
	return defaultDuration
}

// DefaultConfig returns the reference policy.
func DefaultConfig() Config {
	return Config{
		DataDir: defaultDataDir(),
		MaxAge:  "720h",
		Download: DownloadConfig{
			Timeout:   "5s",
			ChunkSize: types.Bytes(1024 * 1024),
		},
		Airports: AirportsConfig{URL: DefaultAirportsURL},
		Airspaces: AirspacesConfig{
			ListingURL:  DefaultListingURL,
			DownloadURL: DefaultDownloadURL,
			Countries:   []string{"de"},
			Directory:   DirectoryConfig{Kind: "listing"},
		},
		Log:   LogConfig{Level: "info", MaxSizeMB: 10},
		Watch: WatchConfig{Schedule: DefaultSchedule},
	}
}

// defaultDataDir follows the user config directory, e.g. ~/.config/airdata.
func defaultDataDir() string {
	dir, err := os.UserConfigDir()
	if err != nil {
		return ""
	}
	return filepath.Join(dir, "airdata")
}
