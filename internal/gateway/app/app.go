package app

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"supportdesk/internal/gateway/config"
	"supportdesk/internal/gateway/handler"
	"supportdesk/internal/gateway/middleware"
	"supportdesk/internal/gateway/server"
	llmclient "supportdesk/internal/llm/client"
	"supportdesk/internal/logging"
	"supportdesk/internal/support"
)

type App struct {
	server  *server.Server
	llm     llmclient.LLMClient
	limiter *middleware.ClientLimiter
	log     *zap.Logger
}

func New() (*App, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	return NewWithConfig(context.Background(), cfg)
}

func NewWithConfig(ctx context.Context, cfg *config.Config) (*App, error) {
	log, err := logging.New(cfg.Log)
	if err != nil {
		return nil, fmt.Errorf("failed to init logger: %w", err)
	}
	log = log.With(zap.String("env", cfg.Env))

	// Dependencies
	kb, err := initKnowledge(ctx, cfg, log)
	if err != nil {
		return nil, err
	}
	client, err := initLLM(ctx, cfg, log)
	if err != nil {
		return nil, err
	}
	pipeline := support.NewPipeline(client, kb, support.Options{
		Policy: support.CallPolicy{
			Timeout:       cfg.Pipeline.GenerationTimeout,
			FormatRetries: cfg.Pipeline.FormatRetries,
		},
		StrictSteps: cfg.Pipeline.StrictSteps,
		Logger:      log,
	})
	limiter, err := middleware.NewClientLimiter(cfg.HTTP.ClientRPS, cfg.HTTP.ClientBurst, cfg.HTTP.ClientCacheSize, cfg.HTTP.TrustedProxies)
	if err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("failed to init client limiter: %w", err)
	}

	// Routing & Server
	mux := server.NewMux(server.Handlers{
		Chat:    handler.NewChatHandler(pipeline, log),
		WS:      handler.NewWSHandler(pipeline, log, cfg.HTTP.CORSOrigins),
		Health:  handler.NewHealthHandler(client.Name(), kb.Len()),
		Limiter: limiter,
		Origins: cfg.HTTP.CORSOrigins,
		Log:     log,
	})

	return &App{
		server:  server.New(cfg.Port, mux, log),
		llm:     client,
		limiter: limiter,
		log:     log,
	}, nil
}

func (a *App) Start() error {
	return a.server.Start()
}

func (a *App) Shutdown(ctx context.Context) error {
	err := a.server.Shutdown(ctx)
	a.limiter.Close()
	if cerr := a.llm.Close(); cerr != nil && err == nil {
		err = cerr
	}
	_ = a.log.Sync()
	return err
}

// Logger returns the process logger.
func (a *App) Logger() *zap.Logger { return a.log }
