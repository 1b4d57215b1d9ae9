package handler

import (
	"net/http"

	"go.uber.org/zap"
)

type HealthHandler struct {
	provider string
	entries  int
}

func NewHealthHandler(provider string, entries int) *HealthHandler {
	return &HealthHandler{provider: provider, entries: entries}
}

func (h *HealthHandler) HandleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, zap.NewNop(), http.StatusOK, map[string]any{
		"status":           "ok",
		"provider":         h.provider,
		"knowledgeEntries": h.entries,
	})
}
