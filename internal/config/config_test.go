package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"airdata/internal/core/types"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "airdata.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
	return path
}

func TestLoadConfigMissingFileUsesDefaults(t *testing.T) {
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())
	cfg, err := LoadConfig(filepath.Join(t.TempDir(), "absent.yaml"))
	require.NoError(t, err)

	assert.Equal(t, DefaultAirportsURL, cfg.Airports.URL)
	assert.Equal(t, DefaultListingURL, cfg.Airspaces.ListingURL)
	assert.Equal(t, DefaultDownloadURL, cfg.Airspaces.DownloadURL)
	assert.Equal(t, []string{"de"}, cfg.Airspaces.Countries)
	assert.Equal(t, "listing", cfg.Airspaces.Directory.Kind)
	assert.Equal(t, 30*24*time.Hour, cfg.MaxAgeDuration())
	assert.Equal(t, 5*time.Second, cfg.DownloadTimeout())
	assert.Equal(t, types.Bytes(1024*1024), cfg.Download.ChunkSize)
	assert.False(t, cfg.AssumeYes())
	assert.NotEmpty(t, cfg.DataDir)
}

func TestLoadConfigOverridesAndExpandsEnv(t *testing.T) {
	dataDir := t.TempDir()
	t.Setenv("AIRDATA_TEST_DIR", dataDir)

	path := writeConfig(t, `
data_dir: ${AIRDATA_TEST_DIR}/cache
max_age: 48h
download:
  timeout: 2s
  rate_limit: 500kB
airspaces:
  countries: [de, fr]
  directory:
    kind: s3
    bucket: openaip-mirror
confirm:
  assume: true
log:
  level: debug
`)

	cfg, err := LoadConfig(path)
	require.NoError(t, err)

	assert.Equal(t, filepath.Join(dataDir, "cache"), cfg.DataDir)
	assert.Equal(t, 48*time.Hour, cfg.MaxAgeDuration())
	assert.Equal(t, 2*time.Second, cfg.DownloadTimeout())
	assert.Equal(t, types.Bytes(500_000), cfg.Download.RateLimit)
	assert.Equal(t, types.Bytes(1024*1024), cfg.Download.ChunkSize)
	assert.Equal(t, []string{"de", "fr"}, cfg.Airspaces.Countries)
	assert.Equal(t, "s3", cfg.Airspaces.Directory.Kind)
	assert.Equal(t, "openaip-mirror", cfg.Airspaces.Directory.Bucket)
	assert.True(t, cfg.AssumeYes())
	assert.Equal(t, "debug", cfg.Log.Level)
	assert.Equal(t, DefaultAirportsURL, cfg.Airports.URL)
}

func TestLoadConfigRejectsBadYAML(t *testing.T) {
	path := writeConfig(t, "data_dir: [unterminated\n")
	_, err := LoadConfig(path)
	assert.Error(t, err)
}

func TestParseDurationFallback(t *testing.T) {
	assert.Equal(t, time.Minute, ParseDuration("", time.Minute))
	assert.Equal(t, time.Minute, ParseDuration("soon", time.Minute))
	assert.Equal(t, 3*time.Second, ParseDuration("3s", time.Minute))
}

func TestResolveConfigPathKeepsExplicitPath(t *testing.T) {
	path := writeConfig(t, "max_age: 1h\n")
	assert.Equal(t, path, ResolveConfigPath(path))
	assert.Equal(t, "/etc/airdata.yaml", ResolveConfigPath("/etc/airdata.yaml"))
}
