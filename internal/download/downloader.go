// Package download streams remote reference files to disk.
package download

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"time"

	"airdata/internal/core/logger"
	"airdata/internal/core/tracker"
	"airdata/internal/core/types"
	"airdata/internal/transfer"
	"airdata/internal/transport"

	"golang.org/x/time/rate"
)

// ErrUnreachable marks a download that failed in transit. The caller keeps
// using whatever data is already on disk.
var ErrUnreachable = errors.New("source unreachable")

// UnreachableError reports the URL that failed and the transport cause.
type UnreachableError struct {
	URL string
	Err error
}

func (e *UnreachableError) Error() string {
	return fmt.Sprintf("%s was unreachable, please try again later: %v", e.URL, e.Err)
}

func (e *UnreachableError) Unwrap() []error {
	return []error{ErrUnreachable, e.Err}
}

// ProgressFunc receives the number of kilobytes downloaded so far.
type ProgressFunc func(kb float64)

// Bars shows per-file progress, e.g. on a terminal.
type Bars interface {
	Add(name string, total int64)
	Advance(name string, n int64, elapsed time.Duration)
	Done(name string, ok bool)
}

type Option func(*Downloader)

func WithLogger(log *logger.Logger) Option {
	return func(d *Downloader) {
		d.logger = log
	}
}

// WithTransfer replaces the HTTP transfer, e.g. to change the timeout.
func WithTransfer(ht *transport.HTTPTransfer) Option {
	return func(d *Downloader) {
		d.transfer = ht
	}
}

func WithChunkSize(size types.Bytes) Option {
	return func(d *Downloader) {
		if size > 0 {
			d.chunkSize = int(size)
		}
	}
}

// WithRateLimit caps the download speed in bytes per second.
func WithRateLimit(limit types.Bytes) Option {
	return func(d *Downloader) {
		d.rateLimit = limit
	}
}

func WithBars(bars Bars) Option {
	return func(d *Downloader) {
		d.bars = bars
	}
}

// Downloader fetches one URL into one local file. A failed download never
// leaves a partial file behind and never replaces an existing copy.
type Downloader struct {
	logger    *logger.Logger
	transfer  *transport.HTTPTransfer
	chunkSize int
	rateLimit types.Bytes
	limiter   *rate.Limiter
	bars      Bars
}

func NewDownloader(opts ...Option) *Downloader {
	d := &Downloader{
		chunkSize: transfer.DefaultChunkSize,
	}
	for _, opt := range opts {
		opt(d)
	}
	if d.logger == nil {
		d.logger = logger.NewLogger(logger.WithName("download"))
	}
	if d.transfer == nil {
		d.transfer = transport.NewHTTPTransfer()
	}
	if d.rateLimit > 0 {
		d.limiter = transfer.NewRateLimiter(d.rateLimit, d.chunkSize)
	}
	return d
}

// LogProgress returns the default progress report, one log line per chunk.
func (d *Downloader) LogProgress() ProgressFunc {
	return func(kb float64) {
		d.logger.Info(fmt.Sprintf("%dKB downloaded", int64(kb)))
	}
}

// Download fetches sourceURL into targetPath. Progress is reported after
// every chunk when the response declares its length; otherwise the body is
// written in one go without reports. Transport failures are returned as
// *UnreachableError; a cancelled ctx returns its error unwrapped.
func (d *Downloader) Download(ctx context.Context, targetPath, sourceURL string, onProgress ProgressFunc) error {
	if onProgress == nil {
		onProgress = d.LogProgress()
	}

	if err := os.MkdirAll(filepath.Dir(targetPath), 0o755); err != nil {
		return fmt.Errorf("failed to create directory for %s: %w", targetPath, err)
	}

	partPath := targetPath + ".part"
	file, err := createExclusive(partPath)
	if err != nil {
		return err
	}

	name := filepath.Base(targetPath)
	tr := tracker.NewTracker(name)
	tr.Start()
	d.logger.Info("downloading, this might take a while", "url", sourceURL, "path", targetPath)

	err = d.transfer.Get(ctx, sourceURL, func(resp *http.Response) error {
		return d.write(ctx, file, resp, name, tr, onProgress)
	})
	if closeErr := file.Close(); err == nil && closeErr != nil {
		err = closeErr
	}
	tr.Update(err)

	if err != nil {
		if rmErr := os.Remove(partPath); rmErr != nil && !os.IsNotExist(rmErr) {
			d.logger.Warn("failed to remove partial download", "path", partPath, "error", rmErr)
		}
		if tr.IsCanceled() {
			d.logger.Info("download canceled", "url", sourceURL, "received", tr.CurrentBytes())
			return err
		}
		d.logger.Warn("download failed", "url", sourceURL, "status", tr.Status(), "error", err)
		return &UnreachableError{URL: sourceURL, Err: err}
	}

	if err := os.Rename(partPath, targetPath); err != nil {
		os.Remove(partPath)
		return fmt.Errorf("failed to move download into place: %w", err)
	}

	d.logger.Info("download finished",
		"path", targetPath,
		"size", tr.CurrentBytes(),
		"duration", tr.DurationString(),
		"speed", tr.SpeedBytes(),
	)
	return nil
}

func (d *Downloader) write(
	ctx context.Context,
	file *os.File,
	resp *http.Response,
	name string,
	tr *tracker.Tracker,
	onProgress ProgressFunc,
) error {
	if resp.ContentLength < 0 {
		n, err := io.Copy(file, resp.Body)
		tr.IncCurrent(n)
		return err
	}

	tr.SetTotal(resp.ContentLength)
	if d.bars != nil {
		d.bars.Add(name, resp.ContentLength)
	}

	opts := []transfer.RWOption{
		transfer.RWWithIOReader(resp.Body),
		transfer.RWWithIOWriter(file),
		transfer.RWWithChunkSize(d.chunkSize),
		transfer.RWWithCallback(func(n, total int64, elapsed time.Duration) {
			tr.IncCurrent(n)
			d.logger.Debug("chunk written", "file", tr.Name(), "progress", tr.PercentString())
			if d.bars != nil {
				d.bars.Advance(name, n, elapsed)
			}
			onProgress(types.Bytes(total).KB())
		}),
	}
	if d.limiter != nil {
		opts = append(opts, transfer.RWWithLimiter(d.limiter))
	}

	_, err := transfer.NewReaderWriter(opts...).Transfer(ctx)
	if d.bars != nil {
		d.bars.Done(name, err == nil)
	}
	return err
}

// createExclusive opens path for exclusive write. A leftover from an
// interrupted run is removed first.
func createExclusive(path string) (*os.File, error) {
	file, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o644)
	if errors.Is(err, os.ErrExist) {
		if err := os.Remove(path); err != nil {
			return nil, fmt.Errorf("failed to remove stale partial file %s: %w", path, err)
		}
		file, err = os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o644)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to create %s: %w", path, err)
	}
	return file, nil
}
