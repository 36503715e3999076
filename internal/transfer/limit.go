package transfer

import (
	"airdata/internal/core/types"

	"golang.org/x/time/rate"
)

// DefaultChunkSize is the unit downloads are read, limited and reported in.
const DefaultChunkSize = 1024 * 1024

// NewRateLimiter returns a limiter allowing rateLimit bytes per second with
// room for one chunk per wait. A zero rate means unlimited.
func NewRateLimiter(rateLimit types.Bytes, chunkSize int) *rate.Limiter {
	if rateLimit == 0 {
		return rate.NewLimiter(rate.Inf, 0)
	}
	return rate.NewLimiter(rate.Limit(rateLimit), max(chunkSize, 1))
}
