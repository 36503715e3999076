package main

import (
	"fmt"
	"io"
	"os"

	"airdata/internal/airport"
	"airdata/internal/airspace"
	"airdata/internal/config"
	"airdata/internal/confirm"
	"airdata/internal/core/logger"
	"airdata/internal/core/progress"
	"airdata/internal/download"
	"airdata/internal/transport"

	"github.com/mattn/go-isatty"
)

var openLogFile = logger.RotatingFile

// app holds the caches built from the configuration.
type app struct {
	cfg       *config.Config
	log       *logger.Logger
	bars      *progress.Progress
	airports  *airport.Cache
	airspaces *airspace.Cache
	closers   []io.Closer
}

func newApp(globals *Globals) (*app, error) {
	cfg, err := config.LoadConfig(config.ResolveConfigPath(globals.Config))
	if err != nil {
		return nil, err
	}

	a := &app{cfg: cfg}

	level := logger.ParseLevel(cfg.Log.Level)
	if globals.Debug {
		level = logger.LevelDebug
	}
	logger.SetDefaultLevel(level)
	output := io.Writer(os.Stderr)
	if cfg.Log.File != "" {
		file := openLogFile(cfg.Log.File, cfg.Log.MaxSizeMB)
		a.closers = append(a.closers, file)
		output = file
	}
	a.log = logger.NewLogger(logger.WithOutput(output), logger.WithLevel(level))

	ht := transport.NewHTTPTransfer(transport.HTTPWithTimeout(cfg.DownloadTimeout()))

	downloadOpts := []download.Option{
		download.WithLogger(a.log.Named("download")),
		download.WithTransfer(ht),
		download.WithChunkSize(cfg.Download.ChunkSize),
		download.WithRateLimit(cfg.Download.RateLimit),
	}
	var onProgress download.ProgressFunc
	if isatty.IsTerminal(os.Stderr.Fd()) {
		a.bars = progress.NewProgress()
		downloadOpts = append(downloadOpts, download.WithBars(a.bars))
		onProgress = func(kb float64) {
			a.log.Debug("download progress", "kb", int64(kb))
		}
	}
	downloader := download.NewDownloader(downloadOpts...)

	var confirmer confirm.Confirmer = confirm.NewPrompt(cfg.AssumeYes())
	if globals.Yes {
		confirmer = confirm.Always(true)
	}

	directory, err := newDirectory(cfg, ht, a.log.Named("directory"))
	if err != nil {
		a.Close()
		return nil, err
	}

	maxAge := cfg.MaxAgeDuration()
	a.airports = airport.New(cfg.DataDir, downloader,
		airport.WithURL(cfg.Airports.URL),
		airport.WithMaxAge(maxAge),
		airport.WithConfirmer(confirmer),
		airport.WithProgress(onProgress),
		airport.WithLogger(a.log.Named("airport")),
	)
	a.airspaces = airspace.New(cfg.DataDir, directory, downloader,
		airspace.WithDownloadURL(cfg.Airspaces.DownloadURL),
		airspace.WithMaxAge(maxAge),
		airspace.WithConfirmer(confirmer),
		airspace.WithProgress(onProgress),
		airspace.WithLogger(a.log.Named("airspace")),
	)
	return a, nil
}

func newDirectory(cfg *config.Config, ht *transport.HTTPTransfer, log *logger.Logger) (airspace.Directory, error) {
	dir := cfg.Airspaces.Directory
	switch dir.Kind {
	case "", "listing":
		return airspace.NewListingDirectory(
			airspace.ListingWithURL(cfg.Airspaces.ListingURL),
			airspace.ListingWithTransfer(ht),
			airspace.ListingWithLogger(log),
		), nil
	case "s3":
		return airspace.NewS3Directory(airspace.S3Config{
			Bucket:   dir.Bucket,
			Endpoint: dir.Endpoint,
			Region:   dir.Region,
			Profile:  dir.Profile,
		}, transport.DefaultHTTPClient(cfg.DownloadTimeout()), log)
	default:
		return nil, fmt.Errorf("unknown airspace directory kind %q", dir.Kind)
	}
}

// countries returns the requested countries or the configured ones.
func (a *app) countries(requested []string) []string {
	if len(requested) > 0 {
		return requested
	}
	return a.cfg.Airspaces.Countries
}

func (a *app) Close() {
	if a.bars != nil {
		a.bars.Close()
	}
	for _, c := range a.closers {
		_ = c.Close()
	}
}
