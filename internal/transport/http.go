package transport

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"sync"
	"time"

	"golang.org/x/net/http2"
)

// DefaultTimeout bounds connecting, waiting for response headers and every
// gap between body reads.
const DefaultTimeout = 5 * time.Second

// DefaultHTTPClient returns a client that dials, handshakes and waits for
// headers within timeout. HTTP/2 is negotiated over TLS when offered.
func DefaultHTTPClient(timeout time.Duration) *http.Client {
	dialer := &net.Dialer{Timeout: timeout, KeepAlive: 30 * time.Second}
	tr := &http.Transport{
		Proxy:                 http.ProxyFromEnvironment,
		DialContext:           dialer.DialContext,
		TLSHandshakeTimeout:   timeout,
		ResponseHeaderTimeout: timeout,
		IdleConnTimeout:       90 * time.Second,
		MaxIdleConns:          10,
	}
	// Only fails when the transport already has TLSNextProto entries.
	_ = http2.ConfigureTransport(tr)
	return &http.Client{Transport: tr}
}

type HTTPTransferOption func(*HTTPTransfer)

func HTTPWithClient(c *http.Client) HTTPTransferOption {
	return func(t *HTTPTransfer) {
		t.client = c
	}
}

// HTTPWithTimeout sets the connect and read timeout.
func HTTPWithTimeout(timeout time.Duration) HTTPTransferOption {
	return func(t *HTTPTransfer) {
		t.timeout = timeout
	}
}

type HTTPTransfer struct {
	client  *http.Client
	timeout time.Duration
}

func NewHTTPTransfer(opts ...HTTPTransferOption) *HTTPTransfer {
	ht := &HTTPTransfer{timeout: DefaultTimeout}
	for _, opt := range opts {
		opt(ht)
	}
	if ht.client == nil {
		ht.client = DefaultHTTPClient(ht.timeout)
	}
	return ht
}

type HTTPRequestOption func(*http.Request)

func HTTPRequestHeaders(h map[string]string) HTTPRequestOption {
	return func(req *http.Request) {
		for k, v := range h {
			req.Header.Set(k, v)
		}
	}
}

// HTTPResponseCallback consumes the response. The body is closed by the
// transfer after the callback returns.
type HTTPResponseCallback func(*http.Response) error

// StatusError is returned for responses outside the 2xx range.
type StatusError struct {
	URL    string
	Code   int
	Status string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("unexpected status from %s: %s", e.URL, e.Status)
}

// Do issues the request and hands a successful response to respCb. Reads
// from the body fail once no data arrived for the transfer timeout.
func (ht *HTTPTransfer) Do(
	ctx context.Context,
	method, url string,
	respCb HTTPResponseCallback,
	reqOpts ...HTTPRequestOption,
) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, method, url, nil)
	if err != nil {
		return err
	}
	for _, opt := range reqOpts {
		opt(req)
	}

	resp, err := ht.client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, 4096))
		return &StatusError{URL: url, Code: resp.StatusCode, Status: resp.Status}
	}

	if ht.timeout > 0 {
		resp.Body = newIdleTimeoutBody(resp.Body, ht.timeout, cancel)
	}
	return respCb(resp)
}

func (ht *HTTPTransfer) Get(ctx context.Context, url string, respCb HTTPResponseCallback, reqOpts ...HTTPRequestOption) error {
	return ht.Do(ctx, http.MethodGet, url, respCb, reqOpts...)
}

// ErrIdleTimeout is returned when a body read stalls for the transfer
// timeout. It does not match context.Canceled.
var ErrIdleTimeout = errors.New("read timed out")

// idleTimeoutBody cancels the request when a single read blocks for longer
// than timeout. Time spent between reads is not counted.
type idleTimeoutBody struct {
	io.ReadCloser
	timeout time.Duration
	mu      sync.Mutex
	timer   *time.Timer
	expired bool
}

func newIdleTimeoutBody(body io.ReadCloser, timeout time.Duration, cancel context.CancelFunc) *idleTimeoutBody {
	b := &idleTimeoutBody{ReadCloser: body, timeout: timeout}
	b.timer = time.AfterFunc(timeout, func() {
		b.mu.Lock()
		b.expired = true
		b.mu.Unlock()
		cancel()
	})
	b.timer.Stop()
	return b
}

func (b *idleTimeoutBody) Read(p []byte) (int, error) {
	b.timer.Reset(b.timeout)
	n, err := b.ReadCloser.Read(p)
	b.timer.Stop()
	b.mu.Lock()
	expired := b.expired
	b.mu.Unlock()
	if expired && err != nil {
		return n, fmt.Errorf("%w: no data received for %s", ErrIdleTimeout, b.timeout)
	}
	return n, err
}

func (b *idleTimeoutBody) Close() error {
	b.timer.Stop()
	return b.ReadCloser.Close()
}
