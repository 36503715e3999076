package config

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/goccy/go-yaml"
	"github.com/joho/godotenv"
)

// LoadConfig loads configuration from a YAML file and applies defaults.
// A .env file next to the working directory is loaded first so ${VAR}
// references in paths and URLs can point at it. A missing config file is
// not an error.
func LoadConfig(configFile string) (*Config, error) {
	_ = godotenv.Load()

	loaded := &Config{}
	if configFile != "" && fileExists(configFile) {
		data, err := os.ReadFile(configFile)
		if err != nil {
			return nil, fmt.Errorf("failed to read config file %s: %w", configFile, err)
		}
		if err := yaml.Unmarshal(data, loaded); err != nil {
			return nil, fmt.Errorf("failed to parse config file %s: %w", configFile, err)
		}
	}

	cfg := merge(loaded, DefaultConfig())
	expandEnv(cfg)
	if cfg.DataDir == "" {
		return nil, ErrNoDataDir
	}
	return cfg, nil
}

// merge fills unset values of loaded from defaults.
func merge(loaded *Config, defaults Config) *Config {
	countries := loaded.Airspaces.Countries
	if len(countries) == 0 {
		countries = defaults.Airspaces.Countries
	}
	assume := loaded.Confirm.Assume
	if assume == nil {
		assume = defaults.Confirm.Assume
	}
	return &Config{
		DataDir: coalesce(loaded.DataDir, defaults.DataDir),
		MaxAge:  coalesce(loaded.MaxAge, defaults.MaxAge),
		Download: DownloadConfig{
			Timeout:   coalesce(loaded.Download.Timeout, defaults.Download.Timeout),
			ChunkSize: coalesce(loaded.Download.ChunkSize, defaults.Download.ChunkSize),
			RateLimit: coalesce(loaded.Download.RateLimit, defaults.Download.RateLimit),
		},
		Airports: AirportsConfig{
			URL: coalesce(loaded.Airports.URL, defaults.Airports.URL),
		},
		Airspaces: AirspacesConfig{
			ListingURL:  coalesce(loaded.Airspaces.ListingURL, defaults.Airspaces.ListingURL),
			DownloadURL: coalesce(loaded.Airspaces.DownloadURL, defaults.Airspaces.DownloadURL),
			Countries:   countries,
			Directory: DirectoryConfig{
				Kind:     coalesce(loaded.Airspaces.Directory.Kind, defaults.Airspaces.Directory.Kind),
				Bucket:   loaded.Airspaces.Directory.Bucket,
				Endpoint: loaded.Airspaces.Directory.Endpoint,
				Region:   loaded.Airspaces.Directory.Region,
				Profile:  loaded.Airspaces.Directory.Profile,
			},
		},
		Confirm: ConfirmConfig{Assume: assume},
		Log: LogConfig{
			Level:     coalesce(loaded.Log.Level, defaults.Log.Level),
			File:      loaded.Log.File,
			MaxSizeMB: coalesce(loaded.Log.MaxSizeMB, defaults.Log.MaxSizeMB),
		},
		Watch: WatchConfig{
			Schedule: coalesce(loaded.Watch.Schedule, defaults.Watch.Schedule),
		},
	}
}

func coalesce[T comparable](loaded, defaultVal T) T {
	var zero T
	if loaded != zero {
		return loaded
	}
	return defaultVal
}

func expandEnv(cfg *Config) {
	cfg.DataDir = os.ExpandEnv(cfg.DataDir)
	cfg.Airports.URL = os.ExpandEnv(cfg.Airports.URL)
	cfg.Airspaces.ListingURL = os.ExpandEnv(cfg.Airspaces.ListingURL)
	cfg.Airspaces.DownloadURL = os.ExpandEnv(cfg.Airspaces.DownloadURL)
	cfg.Airspaces.Directory.Bucket = os.ExpandEnv(cfg.Airspaces.Directory.Bucket)
	cfg.Airspaces.Directory.Endpoint = os.ExpandEnv(cfg.Airspaces.Directory.Endpoint)
	cfg.Log.File = os.ExpandEnv(cfg.Log.File)
}

// fileExists checks if a file exists
func fileExists(filename string) bool {
	info, err := os.Stat(filename)
	if os.IsNotExist(err) {
		return false
	}
	return err == nil && !info.IsDir()
}

// ResolveConfigPath resolves a config file path, checking common locations
func ResolveConfigPath(configFile string) string {
	if configFile != "" {
		if filepath.IsAbs(configFile) || fileExists(configFile) {
			return configFile
		}
	}

	commonPaths := []string{
		"airdata.yaml",
		"airdata.yml",
	}
	if dir, err := os.UserConfigDir(); err == nil {
		commonPaths = append(commonPaths, filepath.Join(dir, "airdata", "config.yaml"))
	}

	for _, path := range commonPaths {
		if fileExists(path) {
			return path
		}
	}

	return configFile
}
