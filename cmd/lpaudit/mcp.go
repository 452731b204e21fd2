package main

import (
	"bytes"
	"context"
	"fmt"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
	"github.com/spf13/cobra"
	"github.com/use-agent/lpaudit/api/handler"
	"github.com/use-agent/lpaudit/cleaner"
	"github.com/use-agent/lpaudit/engine"
	"github.com/use-agent/lpaudit/grading"
	"github.com/use-agent/lpaudit/report"
	"github.com/use-agent/lpaudit/scraper"
)

// NewMCPCmd creates the mcp command.
func NewMCPCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "mcp",
		Short: "Serve the audit tools over MCP on stdio",
		Long: `Serve analyze_landing, fetch_page and capture_screenshot as Model
Context Protocol tools on stdin/stdout. Logs go to stderr.`,
		Args: cobra.NoArgs,
		RunE: runMCPCmd,
	}

	cmd.Flags().StringP("output", "o", "screenshots",
		"Directory for capture_screenshot files")

	return cmd
}

// runMCPCmd executes the mcp command.
func runMCPCmd(cmd *cobra.Command, _ []string) error {
	cfg, err := loadConfig(cmd, os.Stderr)
	if err != nil {
		return err
	}
	rules, err := loadRules(cmd)
	if err != nil {
		return err
	}
	outputDir, err := cmd.Flags().GetString("output")
	if err != nil {
		return err
	}

	au, sc := startScraper(cfg, rules)
	if sc != nil {
		defer sc.Close()
	}

	tools := &mcpTools{
		auditor:   au,
		fetcher:   engine.NewFetcher(cfg.Browser.DefaultProxy),
		converter: cleaner.NewCleaner(),
		outputDir: outputDir,
	}

	if err := server.ServeStdio(newMCPServer(tools)); err != nil {
		return fmt.Errorf("server error: %w", err)
	}
	return nil
}

// mcpTools holds the services behind the MCP tools.
type mcpTools struct {
	auditor   auditor
	fetcher   handler.Fetcher
	converter handler.Converter
	outputDir string
}

// newMCPServer registers the audit tools on a new MCP server.
func newMCPServer(t *mcpTools) *server.MCPServer {
	s := server.NewMCPServer(
		"lpaudit",
		getVersion(),
		server.WithToolCapabilities(false),
	)

	analyzeTool := mcp.NewTool("analyze_landing",
		mcp.WithDescription("Audit an ad landing page in a headless browser. Returns load performance, content, conversion, trust, mobile and schema facts plus PASS/FAIL grades. A failed page load still returns a report with its error field set."),
		mcp.WithString("url",
			mcp.Required(),
			mcp.Description("The landing page URL to audit"),
		),
		mcp.WithNumber("timeout_ms",
			mcp.Description("Page load timeout per pass in milliseconds (default: 30000)"),
		),
		mcp.WithBoolean("stealth",
			mcp.Description("Apply anti-bot-detection evasions (default: false)"),
		),
		mcp.WithString("format",
			mcp.Description("Report format: 'json' (default), 'text' or 'markdown'"),
			mcp.Enum(report.FormatJSON, report.FormatText, report.FormatMarkdown),
		),
	)
	s.AddTool(analyzeTool, t.handleAnalyze)

	fetchTool := mcp.NewTool("fetch_page",
		mcp.WithDescription("Fetch a landing page over plain HTTP without a browser. Returns the final URL, status, redirect chain and the content."),
		mcp.WithString("url",
			mcp.Required(),
			mcp.Description("The URL to fetch; https is assumed when no scheme is given"),
		),
		mcp.WithNumber("timeout",
			mcp.Description("Request timeout in seconds (default: 30)"),
		),
		mcp.WithBoolean("follow_redirects",
			mcp.Description("Follow redirects (default: true)"),
		),
		mcp.WithString("format",
			mcp.Description("Content format: 'html' (default), 'markdown' or 'text'"),
			mcp.Enum(cleaner.FormatHTML, cleaner.FormatMarkdown, cleaner.FormatText),
		),
		mcp.WithString("css_selector",
			mcp.Description("CSS selector narrowing the content before conversion"),
		),
	)
	s.AddTool(fetchTool, t.handleFetch)

	screenshotTool := mcp.NewTool("capture_screenshot",
		mcp.WithDescription("Capture a PNG screenshot of a landing page at a preset viewport and save it to disk. Returns the file path."),
		mcp.WithString("url",
			mcp.Required(),
			mcp.Description("The landing page URL to capture"),
		),
		mcp.WithString("viewport",
			mcp.Description("Viewport: 'desktop' (default, 1920x1080), 'tablet' (768x1024) or 'mobile' (375x812)"),
			mcp.Enum(scraper.ViewportNames()...),
		),
		mcp.WithBoolean("full_page",
			mcp.Description("Capture the full scrollable page (default: false)"),
		),
		mcp.WithNumber("timeout_ms",
			mcp.Description("Page load timeout in milliseconds (default: 30000)"),
		),
	)
	s.AddTool(screenshotTool, t.handleScreenshot)

	return s
}

func (t *mcpTools) handleAnalyze(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	url, err := request.RequireString("url")
	if err != nil {
		return mcp.NewToolResultError("url is required"), nil
	}

	timeout := time.Duration(request.GetFloat("timeout_ms", 30000)) * time.Millisecond
	r, err := t.auditor.Analyze(ctx, url, scraper.Options{
		Timeout: timeout,
		Stealth: request.GetBool("stealth", false),
	})
	if err != nil {
		slog.Warn("audit incomplete", "url", url, "error", err)
	}

	var buf bytes.Buffer
	format := request.GetString("format", report.FormatJSON)
	if _, err := report.New(format, &buf).Write(grading.NewAudit(r)); err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("failed to render report: %v", err)), nil
	}
	return mcp.NewToolResultText(buf.String()), nil
}

func (t *mcpTools) handleFetch(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	url, err := request.RequireString("url")
	if err != nil {
		return mcp.NewToolResultError("url is required"), nil
	}

	result, err := t.fetcher.Fetch(ctx, url, engine.Options{
		Timeout:         time.Duration(request.GetFloat("timeout", 30)) * time.Second,
		FollowRedirects: request.GetBool("follow_redirects", true),
		MaxRedirects:    5,
	})
	if err != nil {
		msg := err.Error()
		if result != nil && result.Error != nil {
			msg = *result.Error
		}
		return mcp.NewToolResultError(msg), nil
	}

	format := request.GetString("format", cleaner.FormatHTML)
	content, err := t.converter.Convert(result.Content, result.URL, format, request.GetString("css_selector", ""))
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	// Metadata header, then the content
	var sb strings.Builder
	fmt.Fprintf(&sb, "URL: %s\nStatus: %d\n", result.URL, result.StatusCode)
	if len(result.RedirectChain) > 0 {
		fmt.Fprintf(&sb, "Redirects: %s\n", strings.Join(result.RedirectChain, " -> "))
	}
	if result.NeedsBrowser {
		sb.WriteString("Note: page looks script-rendered; analyze_landing will see more\n")
	}
	sb.WriteString("\n")
	sb.WriteString(content)

	return mcp.NewToolResultText(sb.String()), nil
}

func (t *mcpTools) handleScreenshot(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	url, err := request.RequireString("url")
	if err != nil {
		return mcp.NewToolResultError("url is required"), nil
	}

	viewport := request.GetString("viewport", "desktop")
	if _, err := scraper.LookupViewport(viewport); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	if err := os.MkdirAll(t.outputDir, 0o750); err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("failed to create output directory: %v", err)), nil
	}

	path := scraper.ScreenshotPath(t.outputDir, url, viewport)
	result := t.auditor.CaptureToFile(ctx, url, viewport, path, scraper.ScreenshotOptions{
		FullPage: request.GetBool("full_page", false),
		Timeout:  time.Duration(request.GetFloat("timeout_ms", 30000)) * time.Millisecond,
	})
	if !result.Success {
		msg := "screenshot failed"
		if result.Error != nil {
			msg = *result.Error
		}
		return mcp.NewToolResultError(msg), nil
	}

	return mcp.NewToolResultText(fmt.Sprintf("Saved %s screenshot to %s", viewport, path)), nil
}
