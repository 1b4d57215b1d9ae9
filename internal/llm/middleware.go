package llm

import (
	"context"
	"time"

	"go.uber.org/zap"

	llmclient "supportdesk/internal/llm/client"
	"supportdesk/internal/logging"
	"supportdesk/internal/metrics"
)

// Middleware decorates an LLMClient to inject cross-cutting concerns
// (rate limiting, retries, logging, metrics).
type Middleware func(llmclient.LLMClient) llmclient.LLMClient

// Wrap applies middlewares in left-to-right order.
// Example: Wrap(inner, A, B) => A(B(inner))
func Wrap(inner llmclient.LLMClient, mws ...Middleware) llmclient.LLMClient {
	out := inner
	for i := len(mws) - 1; i >= 0; i-- {
		out = mws[i](out)
	}
	return out
}

// -------- Rate Limiting --------

// RateLimit limits request rate with a token bucket.
// If rps <= 0, the limiter is disabled.
func RateLimit(rps float64, burst int) Middleware {
	return func(next llmclient.LLMClient) llmclient.LLMClient {
		return &rateLimited{next: next, rl: newRPSLimiter(rps, burst)}
	}
}

type rateLimited struct {
	next llmclient.LLMClient
	rl   *rpsLimiter
}

func (c *rateLimited) Name() string { return c.next.Name() }
func (c *rateLimited) Close() error {
	c.rl.Stop()
	return c.next.Close()
}
func (c *rateLimited) Generate(ctx context.Context, prompt string) (string, error) {
	if err := c.rl.Acquire(ctx); err != nil {
		return "", err
	}
	return c.next.Generate(ctx, prompt)
}

// -------- Retry with exponential backoff --------

// Retry retries Generate up to maxAttempts with exponential backoff starting
// at baseDelay. Permanent errors and context cancellation stop immediately.
func Retry(maxAttempts int, baseDelay time.Duration) Middleware {
	if maxAttempts < 1 {
		maxAttempts = 1
	}
	if baseDelay <= 0 {
		baseDelay = 300 * time.Millisecond
	}
	return func(next llmclient.LLMClient) llmclient.LLMClient {
		return &retrying{next: next, max: maxAttempts, base: baseDelay}
	}
}

type retrying struct {
	next llmclient.LLMClient
	max  int
	base time.Duration
}

func (r *retrying) Name() string { return r.next.Name() }
func (r *retrying) Close() error { return r.next.Close() }

func (r *retrying) Generate(ctx context.Context, prompt string) (string, error) {
	var last error
	for i := 0; i < r.max; i++ {
		out, err := r.next.Generate(ctx, prompt)
		if err == nil {
			return out, nil
		}
		if llmclient.IsPermanent(err) {
			return "", err
		}
		last = err
		if i == r.max-1 {
			break
		}
		t := time.NewTimer(r.base * time.Duration(1<<i))
		select {
		case <-ctx.Done():
			t.Stop()
			return "", ctx.Err()
		case <-t.C:
		}
	}
	return "", last
}

// -------- Logging --------

// WithLogging logs request size, latency and errors. A nil logger disables output.
func WithLogging(logger *zap.Logger) Middleware {
	if logger == nil {
		logger = zap.NewNop()
	}
	return func(next llmclient.LLMClient) llmclient.LLMClient {
		return &logged{next: next, log: logger}
	}
}

type logged struct {
	next llmclient.LLMClient
	log  *zap.Logger
}

func (l *logged) Name() string { return l.next.Name() }
func (l *logged) Close() error { return l.next.Close() }

func (l *logged) Generate(ctx context.Context, prompt string) (string, error) {
	log := logging.With(ctx, l.log).With(zap.String("model", l.next.Name()), zap.String("stage", StageFrom(ctx)))
	log.Debug("llm request", zap.Int("prompt_bytes", len(prompt)))
	start := time.Now()
	out, err := l.next.Generate(ctx, prompt)
	if err != nil {
		log.Warn("llm error", zap.Duration("elapsed", time.Since(start)), zap.Error(err))
		return out, err
	}
	log.Debug("llm response", zap.Duration("elapsed", time.Since(start)), zap.Int("completion_bytes", len(out)))
	return out, nil
}

// -------- Metrics --------

// WithMetrics records request counts and latency per model.
func WithMetrics() Middleware {
	return func(next llmclient.LLMClient) llmclient.LLMClient {
		return &measured{next: next}
	}
}

type measured struct {
	next llmclient.LLMClient
}

func (m *measured) Name() string { return m.next.Name() }
func (m *measured) Close() error { return m.next.Close() }

func (m *measured) Generate(ctx context.Context, prompt string) (string, error) {
	start := time.Now()
	out, err := m.next.Generate(ctx, prompt)
	status := "ok"
	switch {
	case ctx.Err() != nil:
		status = "canceled"
	case err != nil:
		status = "error"
	}
	metrics.LLMRequestsTotal.WithLabelValues(m.next.Name(), StageFrom(ctx), status).Inc()
	metrics.LLMRequestDuration.WithLabelValues(m.next.Name()).Observe(time.Since(start).Seconds())
	return out, err
}
