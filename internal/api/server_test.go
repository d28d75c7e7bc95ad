package api

import (
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/siftlabs/sift/internal/extract"
	"github.com/siftlabs/sift/internal/ingest"
)

func testServer() *Server {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	loader := ingest.NewLoader(ingest.Options{}, logger)
	orch := extract.NewOrchestrator(extract.Config{}, 2, logger)
	return NewServer(0, nil, loader, orch, extract.Config{})
}

func get(t *testing.T, srv *Server, path string) (*httptest.ResponseRecorder, map[string]any) {
	t.Helper()
	req := httptest.NewRequest(http.MethodGet, path, nil)
	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, req)

	var body map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	return rec, body
}

func TestHealth(t *testing.T) {
	rec, body := get(t, testServer(), "/health")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "ok", body["status"])
}

func TestStatusListsExtractors(t *testing.T) {
	rec, body := get(t, testServer(), "/api/v1/status")
	assert.Equal(t, http.StatusOK, rec.Code)

	features, ok := body["features"].([]any)
	require.True(t, ok)
	assert.Contains(t, features, "message_count")
	assert.Contains(t, features, "initial_5_latency")

	targets, ok := body["targets"].([]any)
	require.True(t, ok)
	assert.Contains(t, targets, "deal_made")
}

func TestGetRunWithoutStore(t *testing.T) {
	rec, _ := get(t, testServer(), "/api/v1/runs/7b0fdf2e-10fa-4497-9387-5a6f0cfa6b3e")
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
}

func TestExtract(t *testing.T) {
	payload := `[
		{"conversation_id":"c1","conversation":[
			{"role":"User","content":"I agree to the deal","timestamp_ms":0},
			{"role":"Assistant","content":"Great, payment confirmed","timestamp_ms":5000}]},
		{"dialog":["how much?","fifty dollars"]}
	]`

	req := httptest.NewRequest(http.MethodPost, "/api/v1/extract", strings.NewReader(payload))
	rec := httptest.NewRecorder()
	testServer().Handler().ServeHTTP(rec, req)
	require.Equal(t, http.StatusOK, rec.Code)

	var body struct {
		Features map[string]map[string]any `json:"features"`
		Targets  map[string]map[string]any `json:"targets"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))

	require.Len(t, body.Features, 2)
	assert.Contains(t, body.Features, "c1")
	assert.Contains(t, body.Features, "conversation_1")

	counts, ok := body.Features["c1"]["message_count"].(map[string]any)
	require.True(t, ok)
	assert.EqualValues(t, 2, counts["total"])

	deal, ok := body.Targets["c1"]["deal_made"].(map[string]any)
	require.True(t, ok)
	assert.EqualValues(t, 1, deal["value"])
}

func TestExtractRejectsNonArrayBody(t *testing.T) {
	req := httptest.NewRequest(http.MethodPost, "/api/v1/extract", strings.NewReader(`{"not":"an array"}`))
	rec := httptest.NewRecorder()
	testServer().Handler().ServeHTTP(rec, req)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}
