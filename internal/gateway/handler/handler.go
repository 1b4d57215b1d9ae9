package handler

import (
	"context"
	"errors"
	"net/http"

	"go.uber.org/zap"

	"supportdesk/internal/support"
	"supportdesk/internal/util/jsonutil"
)

// Runner is the pipeline entry point the handlers depend on.
type Runner interface {
	Run(ctx context.Context, issue string) (support.Answer, error)
}

// chatRequest is the inbound body of POST /chat and of websocket frames.
type chatRequest struct {
	Query string `json:"query"`
}

type chatResponse struct {
	Response     string   `json:"response"`
	Category     string   `json:"category"`
	IssueLabel   string   `json:"issueLabel"`
	UsedFallback bool     `json:"usedFallback"`
	Steps        []string `json:"steps"`
}

type errorResponse struct {
	Error string `json:"error"`
	Kind  string `json:"kind"`
	Cause string `json:"cause,omitempty"`
}

func toResponse(ans support.Answer) chatResponse {
	return chatResponse{
		Response:     ans.Text,
		Category:     ans.Category,
		IssueLabel:   ans.Classification.IssueLabel,
		UsedFallback: ans.Solution.UsedFallback,
		Steps:        ans.Solution.Steps,
	}
}

func toError(err error) errorResponse {
	out := errorResponse{Error: err.Error(), Kind: string(support.KindOf(err))}
	if c := support.Cause(err); c != nil && string(c.Kind) != out.Kind {
		out.Cause = string(c.Kind)
	}
	return out
}

// statusFor maps a pipeline failure onto an HTTP status code.
func statusFor(err error) int {
	switch {
	case errors.Is(err, support.ErrEmptyInput):
		return http.StatusBadRequest
	case errors.Is(err, support.ErrServiceTimeout):
		return http.StatusGatewayTimeout
	case errors.Is(err, support.ErrGenerationUnavailable):
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

func writeJSON(w http.ResponseWriter, log *zap.Logger, status int, v any) {
	body, err := jsonutil.MarshalNoEscape(v)
	if err != nil {
		log.Error("encode response", zap.Error(err))
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_, _ = w.Write(body)
}
