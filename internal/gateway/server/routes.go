package server

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"supportdesk/internal/gateway/handler"
	"supportdesk/internal/gateway/middleware"
)

type Handlers struct {
	Chat    *handler.ChatHandler
	WS      *handler.WSHandler
	Health  *handler.HealthHandler
	Limiter *middleware.ClientLimiter
	Origins []string
	Log     *zap.Logger
}

func NewMux(h Handlers) http.Handler {
	mux := http.NewServeMux()

	// Chat
	mux.Handle("/chat", middleware.Instrument("/chat", h.Log, h.Limiter.Middleware(http.HandlerFunc(h.Chat.HandleChat))))
	mux.Handle("/ws", middleware.Instrument("/ws", h.Log, h.Limiter.Middleware(http.HandlerFunc(h.WS.HandleWS))))

	// Operations
	mux.Handle("/healthz", middleware.Instrument("/healthz", h.Log, http.HandlerFunc(h.Health.HandleHealth)))
	mux.Handle("/metrics", middleware.Instrument("/metrics", h.Log, promhttp.Handler()))

	// Middleware
	return middleware.RequestID(middleware.CORS(h.Origins)(mux))
}
