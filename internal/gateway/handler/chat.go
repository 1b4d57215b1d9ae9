package handler

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"go.uber.org/zap"

	"supportdesk/internal/logging"
)

const maxChatBody = 64 << 10

type ChatHandler struct {
	pipeline Runner
	log      *zap.Logger
}

func NewChatHandler(pipeline Runner, log *zap.Logger) *ChatHandler {
	if log == nil {
		log = zap.NewNop()
	}
	return &ChatHandler{pipeline: pipeline, log: log}
}

// HandleChat answers POST /chat {"query": "..."}.
func (h *ChatHandler) HandleChat(w http.ResponseWriter, r *http.Request) {
	log := logging.With(r.Context(), h.log)
	if r.Method != http.MethodPost {
		w.Header().Set("Allow", http.MethodPost)
		writeJSON(w, log, http.StatusMethodNotAllowed, errorResponse{Error: "method not allowed", Kind: "invalid_request"})
		return
	}

	var in chatRequest
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxChatBody)).Decode(&in); err != nil && !errors.Is(err, io.EOF) {
		writeJSON(w, log, http.StatusBadRequest, errorResponse{Error: "invalid json body", Kind: "invalid_request"})
		return
	}

	ans, err := h.pipeline.Run(r.Context(), in.Query)
	if err != nil {
		writeJSON(w, log, statusFor(err), toError(err))
		return
	}
	writeJSON(w, log, http.StatusOK, toResponse(ans))
}
