package transfer

import (
	"bytes"
	"context"
	"errors"
	"io"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTransferReportsFixedChunks(t *testing.T) {
	src := bytes.Repeat([]byte("a"), 10)
	var dst bytes.Buffer
	var chunks []int64
	var totals []int64

	rw := NewReaderWriter(
		RWWithIOReader(iotestOneByteReader{bytes.NewReader(src)}),
		RWWithIOWriter(&dst),
		RWWithChunkSize(4),
		RWWithCallback(func(n, total int64, _ time.Duration) {
			chunks = append(chunks, n)
			totals = append(totals, total)
		}),
	)

	n, err := rw.Transfer(context.Background())
	require.NoError(t, err)
	assert.Equal(t, int64(10), n)
	assert.Equal(t, src, dst.Bytes())
	assert.Equal(t, []int64{4, 4, 2}, chunks)
	assert.Equal(t, []int64{4, 8, 10}, totals)
}

func TestTransferPropagatesReadErrors(t *testing.T) {
	boom := errors.New("connection reset by peer")
	rw := NewReaderWriter(
		RWWithIOReader(io.MultiReader(strings.NewReader("abc"), errReader{boom})),
		RWWithIOWriter(io.Discard),
		RWWithChunkSize(2),
	)

	n, err := rw.Transfer(context.Background())
	assert.ErrorIs(t, err, boom)
	assert.Equal(t, int64(3), n)
}

func TestTransferStopsOnCanceledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	rw := NewReaderWriter(
		RWWithIOReader(strings.NewReader("abc")),
		RWWithIOWriter(io.Discard),
	)
	_, err := rw.Transfer(ctx)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestTransferWithLimiter(t *testing.T) {
	var dst bytes.Buffer
	rw := NewReaderWriter(
		RWWithIOReader(strings.NewReader("limited")),
		RWWithIOWriter(&dst),
		RWWithChunkSize(4),
		RWWithLimiter(NewRateLimiter(1024*1024, 4)),
	)
	_, err := rw.Transfer(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "limited", dst.String())
}

func TestNewRateLimiterUnlimited(t *testing.T) {
	limiter := NewRateLimiter(0, DefaultChunkSize)
	assert.NoError(t, limiter.WaitN(context.Background(), DefaultChunkSize*4))
}

type iotestOneByteReader struct{ r io.Reader }

func (o iotestOneByteReader) Read(p []byte) (int, error) {
	if len(p) == 0 {
		return 0, nil
	}
	return o.r.Read(p[:1])
}

type errReader struct{ err error }

func (e errReader) Read([]byte) (int, error) { return 0, e.err }

func TestTransferKeepsTruncatedBodyAnError(t *testing.T) {
	rw := NewReaderWriter(
		RWWithIOReader(io.MultiReader(strings.NewReader("abc"), errReader{io.ErrUnexpectedEOF})),
		RWWithIOWriter(io.Discard),
		RWWithChunkSize(8),
	)
	_, err := rw.Transfer(context.Background())
	assert.ErrorIs(t, err, io.ErrUnexpectedEOF)
}
