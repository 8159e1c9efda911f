package ratelimiter

import (
	"sync"
	"time"

	"golang.org/x/time/rate"
)

var timeNow = time.Now

// ClientLimiters holds one token bucket per client key (remote IP).
// Each limiter enforces a steady-state rate (e.g. 50 submissions/sec).
// Burst is the larger of the rate and the largest single request, so a
// maximal batch is always admissible once the bucket has refilled.
type ClientLimiters struct {
	mu       sync.Mutex
	limiters map[string]*rate.Limiter
	r        rate.Limit
	burst    int
	maxKeys  int
}

// New creates ClientLimiters granting ratePerSec tokens per second per client.
// maxRequest is the largest n a caller will pass to AllowN; the bucket is
// sized to hold at least that many tokens.
// Once maxKeys clients are tracked the table is reset, which only ever
// grants clients a fresh bucket.
func New(ratePerSec, maxRequest, maxKeys int) *ClientLimiters {
	return &ClientLimiters{
		limiters: make(map[string]*rate.Limiter),
		r:        rate.Limit(ratePerSec),
		burst:    max(ratePerSec, maxRequest),
		maxKeys:  maxKeys,
	}
}

// AllowN reports whether client may submit n messages now, consuming the
// tokens if so.
func (cl *ClientLimiters) AllowN(client string, n int) bool {
	return cl.limiter(client).AllowN(timeNow(), n)
}

func (cl *ClientLimiters) limiter(client string) *rate.Limiter {
	cl.mu.Lock()
	defer cl.mu.Unlock()
	l, ok := cl.limiters[client]
	if !ok {
		if cl.maxKeys > 0 && len(cl.limiters) >= cl.maxKeys {
			cl.limiters = make(map[string]*rate.Limiter)
		}
		l = rate.NewLimiter(cl.r, cl.burst)
		cl.limiters[client] = l
	}
	return l
}
