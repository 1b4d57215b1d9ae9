package llm

import (
	"context"
	"sync"
	"time"
)

// Limiter gates outbound calls.
type Limiter interface {
	Acquire(ctx context.Context) error
}

// rpsLimiter is a lightweight token-bucket limiter that throttles to at most
// R requests per second with an optional burst capacity.
type rpsLimiter struct {
	tokens   chan struct{}
	stopCh   chan struct{}
	stopOnce sync.Once
}

// newRPSLimiter creates a limiter that allows up to rps events per second
// with a burst capacity of 'burst'. If rps <= 0, the limiter is disabled
// (nil, and Acquire becomes a no-op).
func newRPSLimiter(rps float64, burst int) *rpsLimiter {
	if rps <= 0 {
		return nil
	}
	if burst <= 0 {
		burst = 1
	}

	l := &rpsLimiter{
		tokens: make(chan struct{}, burst),
		stopCh: make(chan struct{}),
	}

	// Pre-fill bucket to allow an initial burst.
	for i := 0; i < burst; i++ {
		l.tokens <- struct{}{}
	}

	period := time.Duration(float64(time.Second) / rps)
	if period <= 0 {
		period = time.Millisecond
	}
	ticker := time.NewTicker(period)
	go func() {
		defer ticker.Stop()
		for {
			select {
			case <-ticker.C:
				select {
				case l.tokens <- struct{}{}:
				default:
					// bucket full
				}
			case <-l.stopCh:
				return
			}
		}
	}()

	return l
}

// Acquire blocks until a token is available or the context is canceled.
func (l *rpsLimiter) Acquire(ctx context.Context) error {
	if l == nil {
		return nil
	}
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-l.stopCh:
		return context.Canceled
	case <-l.tokens:
		return nil
	}
}

// TryAcquire takes a token without blocking.
func (l *rpsLimiter) TryAcquire() bool {
	if l == nil {
		return true
	}
	select {
	case <-l.tokens:
		return true
	default:
		return false
	}
}

// Stop terminates the limiter's refill goroutine. Safe to call on nil and
// more than once.
func (l *rpsLimiter) Stop() {
	if l == nil {
		return
	}
	l.stopOnce.Do(func() { close(l.stopCh) })
}

// TokenBucket is the exported form of the limiter, used outside this package
// for per-client throttling.
type TokenBucket struct {
	l *rpsLimiter
}

// NewTokenBucket returns a bucket refilling at rps with the given burst.
// A non-positive rps yields a bucket that never throttles.
func NewTokenBucket(rps float64, burst int) *TokenBucket {
	return &TokenBucket{l: newRPSLimiter(rps, burst)}
}

func (b *TokenBucket) Acquire(ctx context.Context) error { return b.l.Acquire(ctx) }
func (b *TokenBucket) Allow() bool                       { return b.l.TryAcquire() }
func (b *TokenBucket) Stop()                             { b.l.Stop() }
