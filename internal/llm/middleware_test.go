package llm

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"

	llmclient "supportdesk/internal/llm/client"
	"supportdesk/internal/logging"
)

// countingClient fails the first failN calls with err, then echoes the prompt.
type countingClient struct {
	calls int32
	failN int32
	err   error
}

func (c *countingClient) Name() string { return "counting" }
func (c *countingClient) Close() error { return nil }
func (c *countingClient) Generate(ctx context.Context, prompt string) (string, error) {
	n := atomic.AddInt32(&c.calls, 1)
	if n <= c.failN {
		return "", c.err
	}
	return "echo:" + prompt, nil
}

func TestWrap_Order(t *testing.T) {
	var order []string
	tag := func(name string) Middleware {
		return func(next llmclient.LLMClient) llmclient.LLMClient {
			order = append(order, name)
			return next
		}
	}
	Wrap(&countingClient{}, tag("A"), tag("B"))
	// B wraps the inner client first, A wraps B.
	assert.Equal(t, []string{"B", "A"}, order)
}

func TestRetry_RecoversFromTransientErrors(t *testing.T) {
	inner := &countingClient{failN: 2, err: errors.New("503")}
	cli := Wrap(inner, Retry(3, time.Millisecond))

	out, err := cli.Generate(context.Background(), "p")
	require.NoError(t, err)
	assert.Equal(t, "echo:p", out)
	assert.Equal(t, int32(3), inner.calls)
}

func TestRetry_GivesUpAfterMaxAttempts(t *testing.T) {
	inner := &countingClient{failN: 10, err: errors.New("503")}
	cli := Wrap(inner, Retry(2, time.Millisecond))

	_, err := cli.Generate(context.Background(), "p")
	require.EqualError(t, err, "503")
	assert.Equal(t, int32(2), inner.calls)
}

func TestRetry_StopsOnPermanentError(t *testing.T) {
	inner := &countingClient{failN: 10, err: llmclient.NewPermanentError(errors.New("401"))}
	cli := Wrap(inner, Retry(5, time.Millisecond))

	_, err := cli.Generate(context.Background(), "p")
	require.Error(t, err)
	assert.True(t, llmclient.IsPermanent(err))
	assert.Equal(t, int32(1), inner.calls)
}

func TestRetry_StopsWhenContextCanceled(t *testing.T) {
	inner := &countingClient{failN: 10, err: errors.New("503")}
	cli := Wrap(inner, Retry(5, time.Hour))
	ctx, cancel := context.WithCancel(context.Background())
	go func() {
		time.Sleep(20 * time.Millisecond)
		cancel()
	}()

	_, err := cli.Generate(ctx, "p")
	require.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, int32(1), inner.calls)
}

func TestRateLimit_SpacesCalls(t *testing.T) {
	cli := Wrap(&countingClient{}, RateLimit(20, 1))
	t.Cleanup(func() { _ = cli.Close() })

	start := time.Now()
	for i := 0; i < 3; i++ {
		_, err := cli.Generate(context.Background(), "p")
		require.NoError(t, err)
	}
	// First call uses the burst token, the next two wait ~50ms each.
	assert.GreaterOrEqual(t, time.Since(start), 80*time.Millisecond)
}

func TestRateLimit_DisabledWhenRPSZero(t *testing.T) {
	cli := Wrap(&countingClient{}, RateLimit(0, 0))
	start := time.Now()
	for i := 0; i < 20; i++ {
		_, err := cli.Generate(context.Background(), "p")
		require.NoError(t, err)
	}
	assert.Less(t, time.Since(start), 50*time.Millisecond)
}

func TestRateLimit_HonorsContext(t *testing.T) {
	cli := Wrap(&countingClient{}, RateLimit(0.001, 1))
	t.Cleanup(func() { _ = cli.Close() })
	_, err := cli.Generate(context.Background(), "p")
	require.NoError(t, err)

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	_, err = cli.Generate(ctx, "p")
	require.ErrorIs(t, err, context.DeadlineExceeded)
}

func TestWithLogging_TagsStageAndRequest(t *testing.T) {
	core, logs := observer.New(zap.DebugLevel)
	inner := &countingClient{failN: 1, err: errors.New("boom")}
	cli := Wrap(inner, WithLogging(zap.New(core)))

	ctx := WithStage(logging.WithRequestID(context.Background(), "r1"), "classify")
	_, err := cli.Generate(ctx, "prompt")
	require.Error(t, err)

	warn := logs.FilterMessage("llm error").All()
	require.Len(t, warn, 1)
	fields := warn[0].ContextMap()
	assert.Equal(t, "classify", fields["stage"])
	assert.Equal(t, "r1", fields["request_id"])
	assert.Equal(t, "counting", fields["model"])
}

func TestWithMetrics_PassesThrough(t *testing.T) {
	cli := Wrap(&countingClient{}, WithMetrics())
	out, err := cli.Generate(WithStage(context.Background(), "synthesize"), "x")
	require.NoError(t, err)
	assert.Equal(t, "echo:x", out)
	assert.Equal(t, "counting", cli.Name())
}

func TestStageFrom_Default(t *testing.T) {
	assert.Equal(t, "unknown", StageFrom(context.Background()))
	assert.Equal(t, "classify", StageFrom(WithStage(context.Background(), "classify")))
}

func TestTokenBucket_Allow(t *testing.T) {
	b := NewTokenBucket(0.001, 2)
	t.Cleanup(b.Stop)
	assert.True(t, b.Allow())
	assert.True(t, b.Allow())
	assert.False(t, b.Allow())

	unlimited := NewTokenBucket(0, 0)
	for i := 0; i < 10; i++ {
		assert.True(t, unlimited.Allow())
	}
}
