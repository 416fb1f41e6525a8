package api

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/hazyhaar/lexicheck/pkg/judge"
	"github.com/hazyhaar/lexicheck/pkg/usage"
	"github.com/hazyhaar/lexicheck/pkg/validate"
	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
)

func newMCP(t *testing.T, d Deps) *server.MCPServer {
	t.Helper()
	srv := server.NewMCPServer("lexicheck", "test", server.WithToolCapabilities(false))
	RegisterMCPTools(srv, d)
	return srv
}

func callTool(t *testing.T, srv *server.MCPServer, name string, args map[string]any, header http.Header) *mcp.CallToolResult {
	t.Helper()
	tool := srv.GetTool(name)
	if tool == nil {
		t.Fatalf("tool %q not registered", name)
	}
	var req mcp.CallToolRequest
	req.Params.Name = name
	req.Params.Arguments = args
	req.Header = header
	res, err := tool.Handler(context.Background(), req)
	if err != nil {
		t.Fatalf("%s: %v", name, err)
	}
	return res
}

func toolJSON(t *testing.T, res *mcp.CallToolResult, v any) {
	t.Helper()
	if res.IsError || len(res.Content) == 0 {
		t.Fatalf("tool error: %+v", res)
	}
	tc, ok := mcp.AsTextContent(res.Content[0])
	if !ok {
		t.Fatalf("content is %T, want text", res.Content[0])
	}
	if err := json.Unmarshal([]byte(tc.Text), v); err != nil {
		t.Fatalf("decode %q: %v", tc.Text, err)
	}
}

func TestMCP_ToolsRegistered(t *testing.T) {
	srv := newMCP(t, Deps{Logger: quiet})
	for _, name := range []string{"validate_answer", "local_match", "normalize_answer", "list_languages"} {
		if srv.GetTool(name) == nil {
			t.Errorf("tool %q missing", name)
		}
	}
}

func TestMCP_ValidateAnswer(t *testing.T) {
	j := &fakeJudge{verdict: judge.Verdict{Accepted: true, Explanation: "Synonym"}}
	store := tempUsage(t)
	srv := newMCP(t, Deps{Judge: j, Usage: store, MonthlyLimit: 3, Logger: quiet})

	var res validate.Result
	toolJSON(t, callTool(t, srv, "validate_answer", map[string]any{
		"user_answer":     "pretty",
		"correct_answer":  "beautiful",
		"target_word":     "piękny",
		"target_language": "pl",
		"native_language": "en",
	}, http.Header{"X-User-Id": []string{"mcp-user"}}), &res)

	if !res.Accepted || res.Explanation != "Synonym" {
		t.Errorf("result = %+v", res)
	}
	if used, _, _ := store.Used(context.Background(), "mcp-user", usage.TypeAnswerValidation); used != 1 {
		t.Errorf("usage for mcp-user = %d, want 1", used)
	}
}

func TestMCP_ValidateAnswer_MissingArgs(t *testing.T) {
	srv := newMCP(t, Deps{Logger: quiet})
	res := callTool(t, srv, "validate_answer", map[string]any{"user_answer": "cat"}, nil)
	if !res.IsError {
		t.Error("missing correct_answer should be a tool error")
	}
}

func TestMCP_LocalMatch(t *testing.T) {
	srv := newMCP(t, Deps{Logger: quiet})
	var got matchResponse
	toolJSON(t, callTool(t, srv, "local_match", map[string]any{
		"user_answer":     "laver",
		"correct_answer":  "se laver",
		"direction":       "native_to_target",
		"target_language": "fr",
		"native_language": "en",
	}, nil), &got)
	if !got.Accepted || got.Stage != "verb_prefix" {
		t.Errorf("got %+v", got)
	}
}

func TestMCP_NormalizeAndLanguages(t *testing.T) {
	srv := newMCP(t, Deps{Logger: quiet})

	var norm normalizeResponse
	toolJSON(t, callTool(t, srv, "normalize_answer", map[string]any{"text": "  Crème Brûlée! "}, nil), &norm)
	if norm.Normalized != "creme brulee" {
		t.Errorf("normalized = %q", norm.Normalized)
	}

	var langs languagesResponse
	toolJSON(t, callTool(t, srv, "list_languages", nil, nil), &langs)
	if len(langs.Languages) != 18 {
		t.Errorf("languages = %d, want 18", len(langs.Languages))
	}
}

func TestMCP_ValidateAnswerSchema(t *testing.T) {
	tool := newMCP(t, Deps{Logger: quiet}).GetTool("validate_answer")
	if tool == nil {
		t.Fatal("validate_answer not registered")
	}
	props := tool.Tool.InputSchema.Properties
	for _, arg := range []string{"user_answer", "correct_answer", "target_word", "word_type", "direction", "target_language", "native_language"} {
		if _, ok := props[arg]; !ok {
			t.Errorf("argument %q not declared", arg)
		}
	}
	required := map[string]bool{}
	for _, r := range tool.Tool.InputSchema.Required {
		required[r] = true
	}
	if !required["user_answer"] || !required["correct_answer"] || required["target_word"] {
		t.Errorf("required = %v", tool.Tool.InputSchema.Required)
	}
}

func TestRouter_MCPEventStream(t *testing.T) {
	h := NewRouter(Deps{Logger: quiet, MCP: newMCP(t, Deps{Logger: quiet})})

	// Already cancelled: the stream opens, flushes its headers and returns.
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	req := httptest.NewRequest(http.MethodGet, "/mcp", nil).WithContext(ctx)
	req.Header.Set("Accept", "text/event-stream")
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, req)

	if rr.Code != http.StatusOK {
		t.Fatalf("status = %d, body %q, want 200", rr.Code, rr.Body.String())
	}
	if ct := rr.Header().Get("Content-Type"); ct != "text/event-stream" {
		t.Errorf("Content-Type = %q, want text/event-stream", ct)
	}
	if !rr.Flushed {
		t.Error("stream headers were not flushed")
	}
}
