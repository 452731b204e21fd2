package main

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/use-agent/lpaudit/cleaner"
	"github.com/use-agent/lpaudit/engine"
)

func newToolRequest(name string, args map[string]any) mcp.CallToolRequest {
	var req mcp.CallToolRequest
	req.Params.Name = name
	req.Params.Arguments = args
	return req
}

func resultText(t *testing.T, res *mcp.CallToolResult) string {
	t.Helper()
	if res == nil || len(res.Content) == 0 {
		t.Fatal("empty tool result")
	}
	tc, ok := res.Content[0].(mcp.TextContent)
	if !ok {
		t.Fatalf("content is %T, want mcp.TextContent", res.Content[0])
	}
	return tc.Text
}

func TestNewMCPServer(t *testing.T) {
	t.Parallel()

	if s := newMCPServer(&mcpTools{auditor: &fakeAuditor{}}); s == nil {
		t.Fatal("newMCPServer() returned nil")
	}
}

func TestHandleAnalyze(t *testing.T) {
	t.Parallel()

	au := &fakeAuditor{report: sampleReport()}
	tools := &mcpTools{auditor: au}

	res, err := tools.handleAnalyze(context.Background(), newToolRequest("analyze_landing", map[string]any{
		"url":        "https://example.com/landing",
		"timeout_ms": float64(45000),
		"stealth":    true,
	}))
	if err != nil {
		t.Fatalf("handleAnalyze() error = %v", err)
	}
	if res.IsError {
		t.Fatalf("unexpected tool error: %s", resultText(t, res))
	}

	var decoded map[string]any
	if err := json.Unmarshal([]byte(resultText(t, res)), &decoded); err != nil {
		t.Fatalf("default format is not JSON: %v", err)
	}
	if _, ok := decoded["grades"]; !ok {
		t.Error("expected grades in report")
	}
	if au.gotOpts.Timeout.Milliseconds() != 45000 || !au.gotOpts.Stealth {
		t.Errorf("options not passed through: %+v", au.gotOpts)
	}
}

func TestHandleAnalyze_TextFormat(t *testing.T) {
	t.Parallel()

	tools := &mcpTools{auditor: &fakeAuditor{report: sampleReport()}}
	res, err := tools.handleAnalyze(context.Background(), newToolRequest("analyze_landing", map[string]any{
		"url":    "https://example.com/landing",
		"format": "text",
	}))
	if err != nil {
		t.Fatalf("handleAnalyze() error = %v", err)
	}
	if !strings.HasPrefix(resultText(t, res), "Landing Page Quality Analysis\n") {
		t.Errorf("unexpected text report:\n%s", resultText(t, res))
	}
}

func TestHandleAnalyze_MissingURL(t *testing.T) {
	t.Parallel()

	tools := &mcpTools{auditor: &fakeAuditor{}}
	res, err := tools.handleAnalyze(context.Background(), newToolRequest("analyze_landing", map[string]any{}))
	if err != nil {
		t.Fatalf("handleAnalyze() error = %v", err)
	}
	if !res.IsError {
		t.Error("expected tool error for missing url")
	}
}

func TestHandleFetch(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(landingHTML))
	}))
	defer srv.Close()

	tools := &mcpTools{fetcher: engine.NewFetcher(""), converter: cleaner.NewCleaner()}
	res, err := tools.handleFetch(context.Background(), newToolRequest("fetch_page", map[string]any{
		"url":          srv.URL,
		"css_selector": "main",
	}))
	if err != nil {
		t.Fatalf("handleFetch() error = %v", err)
	}
	if res.IsError {
		t.Fatalf("unexpected tool error: %s", resultText(t, res))
	}

	text := resultText(t, res)
	if !strings.HasPrefix(text, "URL: "+srv.URL) {
		t.Errorf("missing URL header:\n%s", text)
	}
	if !strings.Contains(text, "Status: 200\n") {
		t.Errorf("missing status:\n%s", text)
	}
	if !strings.Contains(text, "<h1>Spring Sale</h1>") || strings.Contains(text, "<title>") {
		t.Errorf("content not narrowed to <main>:\n%s", text)
	}
}

func TestHandleFetch_Error(t *testing.T) {
	t.Parallel()

	tools := &mcpTools{
		fetcher:   failingFetcher{msg: "Request timed out after 30 seconds"},
		converter: cleaner.NewCleaner(),
	}
	res, err := tools.handleFetch(context.Background(), newToolRequest("fetch_page", map[string]any{
		"url": "https://slow.example.com",
	}))
	if err != nil {
		t.Fatalf("handleFetch() error = %v", err)
	}
	if !res.IsError {
		t.Fatal("expected tool error")
	}
	if got := resultText(t, res); got != "Request timed out after 30 seconds" {
		t.Errorf("error text = %q", got)
	}
}

func TestHandleScreenshot(t *testing.T) {
	t.Parallel()

	au := &fakeAuditor{}
	tools := &mcpTools{auditor: au, outputDir: t.TempDir()}

	res, err := tools.handleScreenshot(context.Background(), newToolRequest("capture_screenshot", map[string]any{
		"url":      "https://example.com",
		"viewport": "mobile",
	}))
	if err != nil {
		t.Fatalf("handleScreenshot() error = %v", err)
	}
	if res.IsError {
		t.Fatalf("unexpected tool error: %s", resultText(t, res))
	}
	if !strings.Contains(resultText(t, res), "example_com_mobile.png") {
		t.Errorf("unexpected result: %s", resultText(t, res))
	}
	if len(au.captured) != 1 {
		t.Errorf("captured %d, want 1", len(au.captured))
	}
}

func TestHandleScreenshot_InvalidViewport(t *testing.T) {
	t.Parallel()

	au := &fakeAuditor{}
	tools := &mcpTools{auditor: au, outputDir: t.TempDir()}

	res, err := tools.handleScreenshot(context.Background(), newToolRequest("capture_screenshot", map[string]any{
		"url":      "https://example.com",
		"viewport": "watch",
	}))
	if err != nil {
		t.Fatalf("handleScreenshot() error = %v", err)
	}
	if !res.IsError {
		t.Fatal("expected tool error")
	}
	want := "Invalid viewport: watch. Choose from: [desktop tablet mobile]"
	if got := resultText(t, res); got != want {
		t.Errorf("error text = %q, want %q", got, want)
	}
	if len(au.captured) != 0 {
		t.Error("browser used for an invalid viewport")
	}
}
