package download

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strconv"
	"sync"
	"testing"
	"time"

	"airdata/internal/core/logger"
	"airdata/internal/transport"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestDownloader(opts ...Option) *Downloader {
	opts = append([]Option{
		WithLogger(logger.Discard()),
		WithTransfer(transport.NewHTTPTransfer(transport.HTTPWithTimeout(time.Second))),
	}, opts...)
	return NewDownloader(opts...)
}

func serveBody(body string, declareLength bool) *httptest.Server {
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if declareLength {
			w.Header().Set("Content-Length", strconv.Itoa(len(body)))
			_, _ = io.WriteString(w, body)
			return
		}
		// Flushing before the body forces a chunked response without a length.
		w.(http.Flusher).Flush()
		_, _ = io.WriteString(w, body)
	}))
}

type recordingBars struct {
	mu     sync.Mutex
	added  map[string]int64
	bytes  map[string]int64
	result map[string]bool
}

func newRecordingBars() *recordingBars {
	return &recordingBars{added: map[string]int64{}, bytes: map[string]int64{}, result: map[string]bool{}}
}

func (b *recordingBars) Add(name string, total int64) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.added[name] = total
}

func (b *recordingBars) Advance(name string, n int64, _ time.Duration) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.bytes[name] += n
}

func (b *recordingBars) Done(name string, ok bool) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.result[name] = ok
}

func TestDownloadReportsProgressPerChunk(t *testing.T) {
	body := "0123456789"
	srv := serveBody(body, true)
	defer srv.Close()

	bars := newRecordingBars()
	d := newTestDownloader(WithChunkSize(4), WithBars(bars))
	target := filepath.Join(t.TempDir(), "airports.csv")

	var reports []float64
	err := d.Download(context.Background(), target, srv.URL, func(kb float64) {
		reports = append(reports, kb)
	})
	require.NoError(t, err)

	data, err := os.ReadFile(target)
	require.NoError(t, err)
	assert.Equal(t, body, string(data))
	assert.Equal(t, []float64{4.0 / 1024, 8.0 / 1024, 10.0 / 1024}, reports)

	assert.Equal(t, int64(10), bars.added["airports.csv"])
	assert.Equal(t, int64(10), bars.bytes["airports.csv"])
	assert.True(t, bars.result["airports.csv"])
	assert.NoFileExists(t, target+".part")
}

func TestDownloadWithoutLengthWritesInOneShot(t *testing.T) {
	body := "ident,name\nEDDF,Frankfurt am Main\n"
	srv := serveBody(body, false)
	defer srv.Close()

	d := newTestDownloader(WithChunkSize(4))
	target := filepath.Join(t.TempDir(), "airports.csv")

	calls := 0
	err := d.Download(context.Background(), target, srv.URL, func(float64) { calls++ })
	require.NoError(t, err)

	data, err := os.ReadFile(target)
	require.NoError(t, err)
	assert.Equal(t, body, string(data))
	assert.Zero(t, calls)
}

func TestDownloadFailureLeavesNoFile(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Length", "4096")
		_, _ = io.WriteString(w, "<OPENAIP><AIRSPACES>")
	}))
	defer srv.Close()

	d := newTestDownloader(WithChunkSize(8))
	target := filepath.Join(t.TempDir(), "de_asp.xml")

	err := d.Download(context.Background(), target, srv.URL, func(float64) {})
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrUnreachable))
	assert.Contains(t, err.Error(), "was unreachable, please try again later")
	assert.NoFileExists(t, target)
	assert.NoFileExists(t, target+".part")
}

func TestDownloadCanceledIsNotUnreachable(t *testing.T) {
	srv := serveBody("never read", true)
	defer srv.Close()

	target := filepath.Join(t.TempDir(), "airports.csv")
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := newTestDownloader().Download(ctx, target, srv.URL, func(float64) {})
	require.ErrorIs(t, err, context.Canceled)
	assert.False(t, errors.Is(err, ErrUnreachable))
	assert.NoFileExists(t, target)
	assert.NoFileExists(t, target+".part")
}

func TestDownloadUnreachableHost(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	url := srv.URL
	srv.Close()

	target := filepath.Join(t.TempDir(), "airports.csv")
	err := newTestDownloader().Download(context.Background(), target, url, nil)

	var unreachable *UnreachableError
	require.True(t, errors.As(err, &unreachable))
	assert.Equal(t, url, unreachable.URL)
	assert.NoFileExists(t, target)
}

func TestDownloadErrorStatusKeepsExistingFile(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	defer srv.Close()

	target := filepath.Join(t.TempDir(), "de_asp.xml")
	require.NoError(t, os.WriteFile(target, []byte("previous"), 0o644))

	err := newTestDownloader().Download(context.Background(), target, srv.URL, nil)
	require.ErrorIs(t, err, ErrUnreachable)

	var statusErr *transport.StatusError
	assert.True(t, errors.As(err, &statusErr))

	data, err := os.ReadFile(target)
	require.NoError(t, err)
	assert.Equal(t, "previous", string(data))
}

func TestDownloadReplacesStalePartialFile(t *testing.T) {
	srv := serveBody("fresh", true)
	defer srv.Close()

	target := filepath.Join(t.TempDir(), "airports.csv")
	require.NoError(t, os.WriteFile(target+".part", []byte("leftover from a crash"), 0o644))

	require.NoError(t, newTestDownloader().Download(context.Background(), target, srv.URL, func(float64) {}))

	data, err := os.ReadFile(target)
	require.NoError(t, err)
	assert.Equal(t, "fresh", string(data))
	assert.NoFileExists(t, target+".part")
}

func TestDownloadHonoursRateLimit(t *testing.T) {
	srv := serveBody("rate limited body", true)
	defer srv.Close()

	d := newTestDownloader(WithRateLimit(1024*1024), WithChunkSize(4))
	target := filepath.Join(t.TempDir(), "airports.csv")
	require.NoError(t, d.Download(context.Background(), target, srv.URL, func(float64) {}))

	data, err := os.ReadFile(target)
	require.NoError(t, err)
	assert.Equal(t, "rate limited body", string(data))
}
