package llm

import (
	"context"
	"sync"
)

// FakeClient returns deterministic completions for offline runs and tests.
// Scripted completions are served first, in order; after that it answers
// per stage with a minimal valid payload.
type FakeClient struct {
	mu      sync.Mutex
	script  []FakeReply
	prompts []string
}

// FakeReply is one scripted answer.
type FakeReply struct {
	Text string
	Err  error
}

func NewFakeClient(script ...FakeReply) *FakeClient {
	return &FakeClient{script: script}
}

func (f *FakeClient) Name() string { return "FakeLLM" }
func (f *FakeClient) Close() error { return nil }

func (f *FakeClient) Generate(ctx context.Context, prompt string) (string, error) {
	f.mu.Lock()
	f.prompts = append(f.prompts, prompt)
	if len(f.script) > 0 {
		r := f.script[0]
		f.script = f.script[1:]
		f.mu.Unlock()
		return r.Text, r.Err
	}
	f.mu.Unlock()

	if err := ctx.Err(); err != nil {
		return "", err
	}
	switch StageFrom(ctx) {
	case "classify":
		return `{"issueLabel":"Slow system performance","category":"Performance"}`, nil
	case "synthesize":
		return `{"category":"Performance","usedFallback":true,"steps":["Restart the computer","Close programs you are not using","Contact IT support if it is still slow"]}`, nil
	default:
		return "{}", nil
	}
}

// Prompts returns the prompts received so far.
func (f *FakeClient) Prompts() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.prompts...)
}
