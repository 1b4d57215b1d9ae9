package server

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"supportdesk/internal/gateway/handler"
	"supportdesk/internal/gateway/middleware"
	"supportdesk/internal/llm"
	"supportdesk/internal/support"
)

func testMux(t *testing.T) http.Handler {
	t.Helper()
	pipeline := support.NewPipeline(llm.NewFakeClient(), nil, support.Options{})
	limiter, err := middleware.NewClientLimiter(0, 0, 16, nil)
	require.NoError(t, err)
	t.Cleanup(limiter.Close)
	return NewMux(Handlers{
		Chat:    handler.NewChatHandler(pipeline, nil),
		WS:      handler.NewWSHandler(pipeline, nil, nil),
		Health:  handler.NewHealthHandler("FakeLLM", 0),
		Limiter: limiter,
		Origins: []string{"https://localhost:5173"},
	})
}

func TestMux_ChatRoute(t *testing.T) {
	srv := httptest.NewServer(testMux(t))
	defer srv.Close()

	req, err := http.NewRequest(http.MethodPost, srv.URL+"/chat", strings.NewReader(`{"query":"laptop is slow"}`))
	require.NoError(t, err)
	req.Header.Set("Origin", "https://localhost:5173")
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.NotEmpty(t, resp.Header.Get(middleware.RequestIDHeader))
	assert.Equal(t, "https://localhost:5173", resp.Header.Get("Access-Control-Allow-Origin"))
}

func TestMux_OperationalRoutes(t *testing.T) {
	mux := testMux(t)

	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/healthz", nil))
	assert.Equal(t, http.StatusOK, rec.Code)

	// Make sure at least one pipeline metric has been emitted.
	mux.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodPost, "/chat", strings.NewReader(`{"query":"slow"}`)))
	rec = httptest.NewRecorder()
	mux.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "supportdesk_pipeline_runs_total")
	assert.Contains(t, rec.Body.String(), "supportdesk_http_requests_total")
	assert.Contains(t, rec.Body.String(), `supportdesk_http_requests_total{code="200",route="/healthz"}`)

	// The first scrape is counted once it completes.
	rec = httptest.NewRecorder()
	mux.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	assert.Contains(t, rec.Body.String(), `supportdesk_http_requests_total{code="200",route="/metrics"}`)
}
