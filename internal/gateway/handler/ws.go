package handler

import (
	"context"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"supportdesk/internal/logging"
)

const (
	chatWSWriteWait = 10 * time.Second
	chatWSPongWait  = 60 * time.Second
	chatWSPingEvery = (chatWSPongWait * 9) / 10
	chatWSMaxFrame  = maxChatBody
)

type chatWSInbound struct {
	Type  string `json:"type"`
	ID    string `json:"id,omitempty"`
	Query string `json:"query"`
}

type chatWSOutbound struct {
	Type string `json:"type"`
	ID   string `json:"id,omitempty"`
	*chatResponse
	*errorResponse
}

// WSHandler serves the chat over a websocket. Each "ask" frame is answered
// with one "answer" or "error" frame carrying the same id; asks on one
// connection run concurrently.
type WSHandler struct {
	pipeline Runner
	log      *zap.Logger
	upgrader websocket.Upgrader
}

// NewWSHandler accepts upgrades from the given origins; an empty list or a
// "*" entry accepts any origin.
func NewWSHandler(pipeline Runner, log *zap.Logger, origins []string) *WSHandler {
	if log == nil {
		log = zap.NewNop()
	}
	allowed := map[string]bool{}
	allowAll := len(origins) == 0
	for _, o := range origins {
		o = strings.TrimRight(strings.TrimSpace(o), "/")
		if o == "*" {
			allowAll = true
		}
		allowed[o] = true
	}
	return &WSHandler{
		pipeline: pipeline,
		log:      log,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin: func(r *http.Request) bool {
				origin := r.Header.Get("Origin")
				return allowAll || origin == "" || allowed[origin]
			},
		},
	}
}

func (h *WSHandler) HandleWS(w http.ResponseWriter, r *http.Request) {
	log := logging.With(r.Context(), h.log)
	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Debug("chat ws upgrade failed", zap.Error(err))
		return
	}
	defer conn.Close()
	conn.SetReadLimit(chatWSMaxFrame)

	ctx, cancel := context.WithCancel(r.Context())
	defer cancel()

	if err := conn.SetReadDeadline(time.Now().Add(chatWSPongWait)); err != nil {
		log.Warn("chat ws set read deadline failed", zap.Error(err))
		return
	}
	conn.SetPongHandler(func(string) error {
		return conn.SetReadDeadline(time.Now().Add(chatWSPongWait))
	})

	writeCh := make(chan chatWSOutbound, 32)
	writerDone := make(chan struct{})
	go func() {
		defer close(writerDone)
		ticker := time.NewTicker(chatWSPingEvery)
		defer ticker.Stop()

		for {
			select {
			case <-ctx.Done():
				return
			case out := <-writeCh:
				if err := conn.SetWriteDeadline(time.Now().Add(chatWSWriteWait)); err != nil {
					return
				}
				if err := conn.WriteJSON(out); err != nil {
					return
				}
			case <-ticker.C:
				if err := conn.SetWriteDeadline(time.Now().Add(chatWSWriteWait)); err != nil {
					return
				}
				if err := conn.WriteMessage(websocket.PingMessage, nil); err != nil {
					return
				}
			}
		}
	}()

	var inflight sync.WaitGroup
	defer func() {
		cancel()
		inflight.Wait()
		<-writerDone
	}()

	for {
		var in chatWSInbound
		if err := conn.ReadJSON(&in); err != nil {
			return
		}
		switch strings.ToLower(strings.TrimSpace(in.Type)) {
		case "ping":
			pushChatWS(ctx, writeCh, chatWSOutbound{Type: "pong", ID: in.ID})
		case "", "ask":
			inflight.Add(1)
			go func(in chatWSInbound) {
				defer inflight.Done()
				ans, err := h.pipeline.Run(ctx, in.Query)
				if err != nil {
					e := toError(err)
					pushChatWS(ctx, writeCh, chatWSOutbound{Type: "error", ID: in.ID, errorResponse: &e})
					return
				}
				resp := toResponse(ans)
				pushChatWS(ctx, writeCh, chatWSOutbound{Type: "answer", ID: in.ID, chatResponse: &resp})
			}(in)
		default:
			pushChatWS(ctx, writeCh, chatWSOutbound{
				Type:          "error",
				ID:            in.ID,
				errorResponse: &errorResponse{Error: "unsupported type: " + in.Type, Kind: "invalid_request"},
			})
		}
	}
}

// pushChatWS queues out for the writer unless the connection is closing.
func pushChatWS(ctx context.Context, writeCh chan<- chatWSOutbound, out chatWSOutbound) {
	select {
	case writeCh <- out:
	case <-ctx.Done():
	}
}
