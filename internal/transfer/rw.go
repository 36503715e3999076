package transfer

import (
	"context"
	"errors"
	"io"
	"time"

	"golang.org/x/time/rate"
)

// RWCallback is called after every chunk with the chunk length, the total
// transferred so far and the time spent reading the chunk.
type RWCallback func(n, total int64, elapsed time.Duration)

type RWOption func(*ReaderWriter)

func RWWithLimiter(limiter *rate.Limiter) RWOption {
	return func(r *ReaderWriter) {
		r.limiter = limiter
	}
}

func RWWithIOReader(reader io.Reader) RWOption {
	return func(r *ReaderWriter) {
		r.reader = reader
	}
}

func RWWithIOWriter(writer io.Writer) RWOption {
	return func(r *ReaderWriter) {
		r.writer = writer
	}
}

func RWWithChunkSize(size int) RWOption {
	return func(r *ReaderWriter) {
		if size > 0 {
			r.chunkSize = size
		}
	}
}

func RWWithCallback(callback RWCallback) RWOption {
	return func(r *ReaderWriter) {
		r.callback = callback
	}
}

// ReaderWriter copies a reader into a writer in fixed-size chunks, with
// context cancellation, optional rate limiting and a per-chunk callback.
//
// NOTE: The callback runs on the copy path, don't block in it.
type ReaderWriter struct {
	reader    io.Reader
	writer    io.Writer
	limiter   *rate.Limiter
	chunkSize int
	callback  RWCallback
}

// NewReaderWriter creates a new ReaderWriter.
func NewReaderWriter(opts ...RWOption) *ReaderWriter {
	r := &ReaderWriter{chunkSize: DefaultChunkSize}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Transfer copies until the reader is exhausted. Every chunk but the last
// is exactly chunkSize bytes long.
func (r *ReaderWriter) Transfer(ctx context.Context) (int64, error) {
	buf := make([]byte, r.chunkSize)
	var total int64
	for {
		if err := ctx.Err(); err != nil {
			return total, err
		}

		start := time.Now()
		n, readErr := fill(r.reader, buf)
		if n > 0 {
			if r.limiter != nil {
				if err := r.limiter.WaitN(ctx, n); err != nil {
					return total, err
				}
			}
			if _, err := r.writer.Write(buf[:n]); err != nil {
				return total, err
			}
			total += int64(n)
			if r.callback != nil {
				r.callback(int64(n), total, time.Since(start))
			}
		}

		switch {
		case readErr == nil:
		case errors.Is(readErr, io.EOF):
			return total, nil
		default:
			return total, readErr
		}
	}
}

// fill reads until buf is full or the reader fails. Unlike io.ReadFull it
// keeps a truncated body (io.ErrUnexpectedEOF from the reader) apart from a
// clean end of input.
func fill(r io.Reader, buf []byte) (int, error) {
	n := 0
	for n < len(buf) {
		m, err := r.Read(buf[n:])
		n += m
		if err != nil {
			return n, err
		}
	}
	return n, nil
}
