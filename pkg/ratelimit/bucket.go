// Package ratelimit implements the token bucket that paces outbound calls
// to the Torn market API. One bucket instance is shared by reference across
// every request of a fetch batch; Torn enforces a per-minute call budget per
// API key, so the bucket capacity equals the configured per-minute rate and
// a full minute's budget may burst immediately.
package ratelimit

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/rs/zerolog"
)

// Prometheus metrics for rate limit pacing.
var (
	tokensAvailable = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "market_ratelimit_tokens",
		Help: "Tokens currently available in the market rate limit bucket",
	})

	waitSeconds = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "market_ratelimit_wait_seconds",
		Help:    "Time spent waiting for rate limit tokens",
		Buckets: []float64{0.01, 0.1, 0.5, 1, 2, 5, 10, 30, 60},
	})

	takesTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "market_ratelimit_takes_total",
		Help: "Total tokens debited from the market rate limit bucket",
	})
)

// pollInterval is how long a blocked caller sleeps between bucket checks.
// Callers yield between polls instead of spinning on the mutex.
const pollInterval = 25 * time.Millisecond

// Bucket is a continuously refilling token bucket. The zero value is not
// usable; create instances with NewBucket.
//
// All state is guarded by a single mutex: refill and debit happen inside one
// critical section so the token count can never go negative under concurrent
// callers.
type Bucket struct {
	mu           sync.Mutex
	capacity     float64
	refillPerSec float64
	tokens       float64
	last         time.Time

	logger zerolog.Logger

	// now is swappable for tests.
	now func() time.Time
}

// NewBucket creates a bucket sized for perMinute calls. The bucket starts
// full, so up to perMinute calls may proceed without waiting before refill
// pacing takes over.
func NewBucket(perMinute int, logger zerolog.Logger) *Bucket {
	if perMinute <= 0 {
		perMinute = 1
	}
	b := &Bucket{
		capacity:     float64(perMinute),
		refillPerSec: float64(perMinute) / 60.0,
		tokens:       float64(perMinute),
		logger:       logger,
		now:          time.Now,
	}
	b.last = b.now()
	return b
}

// Take blocks until n tokens are available, then debits them. It returns an
// error only when ctx is cancelled while waiting. n must not exceed the
// bucket capacity, otherwise Take could never be satisfied.
func (b *Bucket) Take(ctx context.Context, n int) error {
	if float64(n) > b.capacity {
		return fmt.Errorf("requested %d tokens exceeds bucket capacity %.0f", n, b.capacity)
	}

	start := time.Now()
	waited := false
	for {
		if b.tryTake(float64(n)) {
			if waited {
				wait := time.Since(start)
				waitSeconds.Observe(wait.Seconds())
				b.logger.Debug().
					Int("tokens", n).
					Dur("waited", wait).
					Msg("Rate limit tokens acquired after wait")
			}
			takesTotal.Add(float64(n))
			return nil
		}

		waited = true
		select {
		case <-ctx.Done():
			b.logger.Warn().
				Int("tokens", n).
				Dur("waited", time.Since(start)).
				Msg("Context cancelled while waiting for rate limit tokens")
			return fmt.Errorf("rate limit wait: %w", ctx.Err())
		case <-time.After(pollInterval):
		}
	}
}

// Tokens reports the currently available token count after applying any
// pending refill.
func (b *Bucket) Tokens() float64 {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.refillLocked()
	return b.tokens
}

// Capacity reports the bucket's maximum token count.
func (b *Bucket) Capacity() float64 {
	return b.capacity
}

// tryTake refills lazily and debits n tokens if available. Refill and debit
// share one critical section.
func (b *Bucket) tryTake(n float64) bool {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.refillLocked()
	if b.tokens < n {
		return false
	}
	b.tokens -= n
	tokensAvailable.Set(b.tokens)
	return true
}

// refillLocked credits tokens for the time elapsed since the last refill.
// Caller must hold b.mu.
func (b *Bucket) refillLocked() {
	now := b.now()
	elapsed := now.Sub(b.last).Seconds()
	if elapsed > 0 {
		b.tokens += elapsed * b.refillPerSec
		if b.tokens > b.capacity {
			b.tokens = b.capacity
		}
	}
	b.last = now
}
