package server

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Nagakninja/Compliance-Guardian/internal/pipeline"
	"github.com/Nagakninja/Compliance-Guardian/internal/types"
)

// scriptedRunner returns a canned final state and records the options it ran with.
type scriptedRunner struct {
	state    *types.AuditState
	lastOpts pipeline.RunOptions
	calls    int
}

func (r *scriptedRunner) Run(_ context.Context, opts pipeline.RunOptions) *types.AuditState {
	r.calls++
	r.lastOpts = opts
	if opts.OnProgress != nil {
		opts.OnProgress(pipeline.ProgressEvent{State: pipeline.StateExtracting, Message: "extracting content", RunID: r.state.VideoID})
		opts.OnProgress(pipeline.ProgressEvent{State: pipeline.StateAuditing, Message: "auditing content", RunID: r.state.VideoID})
	}
	return r.state
}

type scriptedSearcher struct {
	snippets []types.RuleSnippet
	err      error

	lastQuery string
	lastTopK  int
}

func (s *scriptedSearcher) Search(_ context.Context, query string, topK int) ([]types.RuleSnippet, error) {
	s.lastQuery = query
	s.lastTopK = topK
	return s.snippets, s.err
}

func passState(videoID string) *types.AuditState {
	state := types.NewAuditState("https://example.com/v.mp4", videoID)
	state.SetTranscript("all clean here")
	state.FinalStatus = types.StatusPass
	state.FinalReport = "# Compliance Audit Report"
	return state
}

func newTestServer(runner Runner, retriever Retriever) *Server {
	return &Server{runner: runner, retriever: retriever}
}

func TestHandleRunAudit_Success(t *testing.T) {
	runner := &scriptedRunner{state: passState("vid-42")}
	server := newTestServer(runner, nil)
	server.databaseURL = "postgres://test"

	body := bytes.NewBufferString(`{"video_url": "https://example.com/v.mp4", "video_id": "vid-42"}`)
	req := httptest.NewRequest(http.MethodPost, "/audits", body)
	w := httptest.NewRecorder()

	server.handleRunAudit(w, req)

	require.Equal(t, http.StatusOK, w.Code)

	var result types.AuditResult
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &result))
	assert.Equal(t, "vid-42", result.VideoID)
	assert.Equal(t, types.StatusPass, result.FinalStatus)
	assert.Empty(t, result.ComplianceResults)

	assert.Equal(t, 1, runner.calls)
	assert.Equal(t, "https://example.com/v.mp4", runner.lastOpts.VideoURL)
	assert.Equal(t, "vid-42", runner.lastOpts.VideoID)
	assert.Equal(t, "postgres://test", runner.lastOpts.DatabaseURL)
}

func TestHandleRunAudit_InvalidBody(t *testing.T) {
	runner := &scriptedRunner{state: passState("vid-42")}
	server := newTestServer(runner, nil)

	req := httptest.NewRequest(http.MethodPost, "/audits", strings.NewReader("not json"))
	w := httptest.NewRecorder()

	server.handleRunAudit(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, 0, runner.calls)
}

func TestHandleRunAudit_MissingVideoURL(t *testing.T) {
	runner := &scriptedRunner{state: passState("vid-42")}
	server := newTestServer(runner, nil)

	req := httptest.NewRequest(http.MethodPost, "/audits", strings.NewReader(`{"video_id": "vid-42"}`))
	w := httptest.NewRecorder()

	server.handleRunAudit(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), "VideoURL")
	assert.Equal(t, 0, runner.calls)
}

func TestHandleRunAuditStream_EmitsProgressAndResult(t *testing.T) {
	runner := &scriptedRunner{state: passState("vid-stream")}
	server := newTestServer(runner, nil)

	body := bytes.NewBufferString(`{"video_url": "https://example.com/v.mp4", "video_id": "vid-stream"}`)
	req := httptest.NewRequest(http.MethodPost, "/audits/stream", body)
	w := httptest.NewRecorder()

	server.handleRunAuditStream(w, req)

	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "text/event-stream", w.Header().Get("Content-Type"))

	output := w.Body.String()
	assert.Contains(t, output, "event: progress")
	assert.Contains(t, output, "extracting content")
	assert.Contains(t, output, "auditing content")
	assert.Contains(t, output, "event: result")
	assert.Contains(t, output, `"final_status":"PASS"`)
	assert.Contains(t, output, "event: complete")

	// Progress must precede the final result.
	assert.Less(t, strings.Index(output, "event: progress"), strings.Index(output, "event: result"))
}

func TestHandleSearchRules_Success(t *testing.T) {
	searcher := &scriptedSearcher{snippets: []types.RuleSnippet{
		{RuleID: "rule-abc", Source: "https://rules.example.com/ftc", Text: "Disclose paid promotions.", Score: 0.91},
	}}
	server := newTestServer(nil, searcher)

	req := httptest.NewRequest(http.MethodGet, "/rules/search?q=sponsored+content&k=3", nil)
	w := httptest.NewRecorder()

	server.handleSearchRules(w, req)

	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "sponsored content", searcher.lastQuery)
	assert.Equal(t, 3, searcher.lastTopK)

	var resp struct {
		Snippets []types.RuleSnippet `json:"snippets"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	require.Len(t, resp.Snippets, 1)
	assert.Equal(t, "rule-abc", resp.Snippets[0].RuleID)
}

func TestHandleSearchRules_MissingQuery(t *testing.T) {
	server := newTestServer(nil, &scriptedSearcher{})

	req := httptest.NewRequest(http.MethodGet, "/rules/search", nil)
	w := httptest.NewRecorder()

	server.handleSearchRules(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestHandleSearchRules_InvalidTopK(t *testing.T) {
	server := newTestServer(nil, &scriptedSearcher{})

	req := httptest.NewRequest(http.MethodGet, "/rules/search?q=claims&k=zero", nil)
	w := httptest.NewRecorder()

	server.handleSearchRules(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestHandleSearchRules_NotConfigured(t *testing.T) {
	server := newTestServer(nil, nil)

	req := httptest.NewRequest(http.MethodGet, "/rules/search?q=claims", nil)
	w := httptest.NewRecorder()

	server.handleSearchRules(w, req)

	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
}

func TestHandleGetAudit_InvalidRunID(t *testing.T) {
	server := newTestServer(nil, nil)

	req := httptest.NewRequest(http.MethodGet, "/audits/not-a-uuid", nil)
	req.SetPathValue("id", "not-a-uuid")
	w := httptest.NewRecorder()

	server.handleGetAudit(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), "Invalid run ID format")
}

func TestRequireAuth(t *testing.T) {
	server := newTestServer(nil, nil)
	server.jwtService = setupTestJWTService(t, 24)

	nextCalled := false
	handler := server.requireAuth(func(w http.ResponseWriter, _ *http.Request) {
		nextCalled = true
		w.WriteHeader(http.StatusOK)
	})

	t.Run("missing header", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/audits", nil)
		w := httptest.NewRecorder()
		handler(w, req)
		assert.Equal(t, http.StatusUnauthorized, w.Code)
		assert.False(t, nextCalled)
	})

	t.Run("garbage token", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/audits", nil)
		req.Header.Set("Authorization", "Bearer not.a.token")
		w := httptest.NewRecorder()
		handler(w, req)
		assert.Equal(t, http.StatusUnauthorized, w.Code)
		assert.False(t, nextCalled)
	})

	t.Run("valid token", func(t *testing.T) {
		token, err := server.jwtService.GenerateToken("test-client")
		require.NoError(t, err)

		req := httptest.NewRequest(http.MethodGet, "/audits", nil)
		req.Header.Set("Authorization", "Bearer "+token)
		w := httptest.NewRecorder()
		handler(w, req)
		assert.Equal(t, http.StatusOK, w.Code)
		assert.True(t, nextCalled)
	})
}
