package main

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/use-agent/lpaudit/models"
	"github.com/use-agent/lpaudit/scraper"
	"github.com/use-agent/lpaudit/webhook"
)

// fakeAuditor returns canned results and records what it was asked.
type fakeAuditor struct {
	mu       sync.Mutex
	report   *models.Report
	err      error
	gotOpts  scraper.Options
	failing  map[string]string // viewport -> error
	captured []string
	gotFull  bool
}

func (f *fakeAuditor) Analyze(_ context.Context, target string, opts scraper.Options) (*models.Report, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.gotOpts = opts
	r := f.report
	if r == nil {
		r = models.NewReport(target)
	}
	if f.err != nil {
		r.Fail(f.err.Error())
	}
	return r, f.err
}

func (f *fakeAuditor) CaptureToFile(_ context.Context, target, viewport, path string, opts scraper.ScreenshotOptions) *models.ScreenshotResult {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.captured = append(f.captured, path)
	f.gotFull = opts.FullPage

	result := &models.ScreenshotResult{URL: target, Output: path, Viewport: viewport}
	if msg, ok := f.failing[viewport]; ok {
		result.Error = &msg
		return result
	}
	result.Success = true
	return result
}

func strPtr(s string) *string { return &s }
func intPtr(v int) *int       { return &v }

func sampleReport() *models.Report {
	r := models.NewReport("https://example.com/landing")
	r.FinalURL = "https://example.com/landing"
	r.Performance.LCPMs = intPtr(1800)
	r.Performance.TTFBMs = intPtr(120)
	r.Content.Title = strPtr("Example Landing")
	r.Content.H1 = strPtr("Grow faster")
	r.Content.WordCount = 420
	r.Conversion.CTAAboveFold = true
	r.Mobile.ViewportMeta = true
	r.Schema.TypesFound = []string{"Organization"}
	return r
}

func TestRunAnalyze_Text(t *testing.T) {
	t.Parallel()

	au := &fakeAuditor{report: sampleReport()}
	var out bytes.Buffer

	opts := analyzeOptions{Timeout: 45 * time.Second, Stealth: true}
	if err := runAnalyze(context.Background(), &out, au, "https://example.com/landing", opts); err != nil {
		t.Fatalf("runAnalyze() error = %v", err)
	}

	if au.gotOpts.Timeout != 45*time.Second || !au.gotOpts.Stealth {
		t.Errorf("options not passed through: %+v", au.gotOpts)
	}

	output := out.String()
	for _, want := range []string{
		"Landing Page Quality Analysis",
		"URL: https://example.com/landing",
		"LCP: 1800ms (GOOD)",
		"H1: Grow faster",
		"Schema: Organization",
		"Audit Grades:",
	} {
		if !strings.Contains(output, want) {
			t.Errorf("output missing %q:\n%s", want, output)
		}
	}
	if strings.Contains(output, "Score:") {
		t.Error("scorecard printed without --scorecard")
	}
}

func TestRunAnalyze_Scorecard(t *testing.T) {
	t.Parallel()

	var out bytes.Buffer
	opts := analyzeOptions{Timeout: time.Second, Scorecard: true}
	if err := runAnalyze(context.Background(), &out, &fakeAuditor{report: sampleReport()}, "https://example.com/landing", opts); err != nil {
		t.Fatalf("runAnalyze() error = %v", err)
	}
	if !strings.Contains(out.String(), "Score: ") {
		t.Errorf("expected score line, got:\n%s", out.String())
	}
}

func TestRunAnalyze_FailedAuditIsNotAnError(t *testing.T) {
	t.Parallel()

	au := &fakeAuditor{
		err: models.NewAuditError(models.ErrCodeTimeout, "Page load timed out after 30000ms", context.DeadlineExceeded),
	}
	var out bytes.Buffer

	err := runAnalyze(context.Background(), &out, au, "https://slow.example.com", analyzeOptions{Timeout: 30 * time.Second})
	if err != nil {
		t.Fatalf("runAnalyze() error = %v, want nil", err)
	}
	if !strings.Contains(out.String(), "\nError: ") {
		t.Errorf("expected error line in report, got:\n%s", out.String())
	}
}

func TestRunAnalyze_JSON(t *testing.T) {
	t.Parallel()

	var out bytes.Buffer
	opts := analyzeOptions{Timeout: time.Second, JSONReport: true}
	if err := runAnalyze(context.Background(), &out, &fakeAuditor{report: sampleReport()}, "https://example.com/landing", opts); err != nil {
		t.Fatalf("runAnalyze() error = %v", err)
	}

	var decoded map[string]any
	if err := json.Unmarshal(out.Bytes(), &decoded); err != nil {
		t.Fatalf("output is not JSON: %v\n%s", err, out.String())
	}
	if decoded["url"] != "https://example.com/landing" {
		t.Errorf("url = %v", decoded["url"])
	}
	grades, ok := decoded["grades"].(map[string]any)
	if !ok || len(grades) == 0 {
		t.Errorf("expected grades object, got %v", decoded["grades"])
	}
	if decoded["error"] != nil {
		t.Errorf("error = %v, want null", decoded["error"])
	}
}

func TestRunAnalyze_MarkdownToFile(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "reports", "landing.md")
	var out bytes.Buffer
	opts := analyzeOptions{Timeout: time.Second, MarkdownReport: true, ReportFile: path}

	if err := runAnalyze(context.Background(), &out, &fakeAuditor{report: sampleReport()}, "https://example.com/landing", opts); err != nil {
		t.Fatalf("runAnalyze() error = %v", err)
	}
	if out.Len() != 0 {
		t.Errorf("expected nothing on stdout, got %q", out.String())
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("report file not written: %v", err)
	}
	if !strings.Contains(string(data), "# Landing Page Quality Analysis") {
		t.Errorf("unexpected markdown:\n%s", data)
	}
}

func TestRunAnalyze_Webhook(t *testing.T) {
	t.Parallel()

	type delivery struct {
		body      []byte
		signature string
	}
	got := make(chan delivery, 1)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, _ := io.ReadAll(r.Body)
		got <- delivery{body: body, signature: r.Header.Get(webhook.SignatureHeader)}
		w.WriteHeader(http.StatusNoContent)
	}))
	defer srv.Close()

	opts := analyzeOptions{
		Timeout:       time.Second,
		WebhookURL:    srv.URL,
		WebhookSecret: "s3cret",
	}
	if err := runAnalyze(context.Background(), io.Discard, &fakeAuditor{report: sampleReport()}, "https://example.com/landing", opts); err != nil {
		t.Fatalf("runAnalyze() error = %v", err)
	}

	select {
	case d := <-got:
		if d.signature != webhook.Sign("s3cret", d.body) {
			t.Errorf("signature = %q, want %q", d.signature, webhook.Sign("s3cret", d.body))
		}
		var event webhook.Event
		if err := json.Unmarshal(d.body, &event); err != nil {
			t.Fatalf("bad event body: %v", err)
		}
		if event.Type != webhook.EventAuditCompleted || event.URL != "https://example.com/landing" {
			t.Errorf("unexpected event: %+v", event)
		}
	default:
		t.Fatal("webhook was not delivered before runAnalyze returned")
	}
}

func TestRunAnalyze_WebhookFailureDoesNotFailCommand(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	var out bytes.Buffer
	opts := analyzeOptions{Timeout: time.Second, WebhookURL: srv.URL}
	if err := runAnalyze(context.Background(), &out, &fakeAuditor{report: sampleReport()}, "https://example.com/landing", opts); err != nil {
		t.Fatalf("runAnalyze() error = %v", err)
	}
	if out.Len() == 0 {
		t.Error("expected report output")
	}
}

func TestUnavailableAuditor(t *testing.T) {
	t.Parallel()

	au := unavailableAuditor{msg: "failed to launch browser: exec: not found"}

	r, err := au.Analyze(context.Background(), "https://example.com", scraper.Options{})
	if err == nil {
		t.Error("expected error")
	}
	if r == nil || r.Error == nil || *r.Error != au.msg {
		t.Errorf("report error = %v, want %q", r.Error, au.msg)
	}
	if r.URL != "https://example.com" {
		t.Errorf("URL = %q", r.URL)
	}

	shot := au.CaptureToFile(context.Background(), "https://example.com", "mobile", "out.png", scraper.ScreenshotOptions{})
	if shot.Success || shot.Error == nil || *shot.Error != au.msg {
		t.Errorf("unexpected screenshot result: %+v", shot)
	}
}

func TestLaunchMessage(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		err  error
		want string
	}{
		{
			name: "audit error with cause",
			err:  models.NewAuditError(models.ErrCodeBrowserCrash, "failed to launch browser", io.ErrUnexpectedEOF),
			want: "failed to launch browser: unexpected EOF",
		},
		{
			name: "audit error without cause",
			err:  models.NewAuditError(models.ErrCodeBrowserCrash, "failed to connect to browser", nil),
			want: "failed to connect to browser",
		},
		{
			name: "plain error",
			err:  io.EOF,
			want: "EOF",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			if got := launchMessage(tt.err); got != tt.want {
				t.Errorf("launchMessage() = %q, want %q", got, tt.want)
			}
		})
	}
}
