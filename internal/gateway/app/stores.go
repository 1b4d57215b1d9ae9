package app

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"supportdesk/internal/gateway/config"
	"supportdesk/internal/knowledge"
	"supportdesk/internal/llm"
	llmclient "supportdesk/internal/llm/client"
	"supportdesk/internal/metrics"
)

const knowledgeLoadTimeout = 30 * time.Second

func initKnowledge(ctx context.Context, cfg *config.Config, log *zap.Logger) (*knowledge.Base, error) {
	ctx, cancel := context.WithTimeout(ctx, knowledgeLoadTimeout)
	defer cancel()

	kb, from, err := knowledge.Load(ctx, cfg.Knowledge)
	if err != nil {
		return nil, fmt.Errorf("failed to load knowledge base from %s: %w", from, err)
	}
	metrics.KnowledgeEntries.Set(float64(kb.Len()))
	log.Info("knowledge base loaded", zap.String("source", from), zap.Int("entries", kb.Len()))
	return kb, nil
}

func initLLM(ctx context.Context, cfg *config.Config, log *zap.Logger) (llmclient.LLMClient, error) {
	raw, err := llm.NewClient(ctx, cfg.LLM.Client)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize %s client: %w", cfg.LLM.Client.Provider, err)
	}
	log.Info("llm client ready",
		zap.String("provider", cfg.LLM.Client.Provider),
		zap.String("model", cfg.LLM.Client.ModelOrDefault()),
	)
	return llm.Wrap(raw,
		llm.WithLogging(log),
		llm.WithMetrics(),
		llm.Retry(cfg.LLM.Retries, 500*time.Millisecond),
		llm.RateLimit(cfg.LLM.RPS, cfg.LLM.Burst),
	), nil
}
