package llm

import (
	"context"
	"fmt"

	llmclient "supportdesk/internal/llm/client"
)

// NewClient builds the raw provider client named by cfg.Provider.
func NewClient(ctx context.Context, cfg llmclient.Config) (llmclient.LLMClient, error) {
	switch llmclient.NormalizeProvider(cfg.Provider) {
	case llmclient.ProviderGemini:
		return llmclient.NewGeminiClient(ctx, cfg)
	case llmclient.ProviderOpenAI:
		return llmclient.NewOpenAIClient(cfg)
	case llmclient.ProviderFake:
		return NewFakeClient(), nil
	default:
		return nil, fmt.Errorf("llm: unknown provider %q", cfg.Provider)
	}
}
