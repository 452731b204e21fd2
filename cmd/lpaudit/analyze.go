package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"github.com/use-agent/lpaudit/config"
	"github.com/use-agent/lpaudit/grading"
	"github.com/use-agent/lpaudit/models"
	"github.com/use-agent/lpaudit/report"
	"github.com/use-agent/lpaudit/scraper"
	"github.com/use-agent/lpaudit/webhook"
)

// analyzeOptions are the analyze command's flags.
type analyzeOptions struct {
	Timeout        time.Duration
	JSONReport     bool
	MarkdownReport bool
	ReportFile     string
	Stealth        bool
	Scorecard      bool
	WebhookURL     string
	WebhookSecret  string
}

// NewAnalyzeCmd creates the analyze command.
func NewAnalyzeCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "analyze <url>",
		Short: "Audit a landing page",
		Long: `Audit a landing page for ad quality.

The page is loaded twice in fresh browser contexts: once at 1920x1080 for
navigation timing, layout shift, title, call-to-action placement and DOM
facts, and once at 375x812 for largest contentful paint and mobile
friendliness. The extracted facts are then graded.

The report is printed even when a pass fails; the error is included in it
and the exit code stays 0.`,
		Example: `  # Human-readable summary
  lpaudit analyze https://example.com/landing

  # JSON report with grades
  lpaudit analyze https://example.com/landing --json

  # Markdown report written to a file
  lpaudit analyze https://example.com/landing -m -o reports/landing.md`,
		Args: cobra.ExactArgs(1),
		RunE: runAnalyzeCmd,
	}

	cmd.Flags().DurationP("timeout", "t", 30*time.Second,
		"Page load timeout for each pass")
	cmd.Flags().BoolP("json", "j", false,
		"Output the report as JSON")
	cmd.Flags().BoolP("markdown", "m", false,
		"Output the report as Markdown")
	cmd.Flags().StringP("output", "o", "",
		"Write the report to a file instead of stdout")
	cmd.Flags().Bool("stealth", false,
		"Apply anti-bot-detection evasions")
	cmd.Flags().BoolP("scorecard", "s", false,
		"Append the weighted score and recommendations to the text summary")
	cmd.Flags().String("webhook-url", "",
		"POST the finished audit to this URL")
	cmd.Flags().String("webhook-secret", "",
		"Sign webhook deliveries with this HMAC secret")

	return cmd
}

// runAnalyzeCmd executes the analyze command.
func runAnalyzeCmd(cmd *cobra.Command, args []string) error {
	opts, err := buildAnalyzeOptions(cmd)
	if err != nil {
		return err
	}

	cfg, err := loadConfig(cmd, os.Stderr)
	if err != nil {
		return err
	}
	rules, err := loadRules(cmd)
	if err != nil {
		return err
	}

	// --timeout is not bound by the API cap.
	if opts.Timeout > cfg.Audit.MaxTimeout {
		cfg.Audit.MaxTimeout = opts.Timeout
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	au, sc := startScraper(cfg, rules)
	if sc != nil {
		defer sc.Close()
	}

	return runAnalyze(ctx, cmd.OutOrStdout(), au, args[0], opts)
}

// buildAnalyzeOptions reads and validates the analyze flags.
func buildAnalyzeOptions(cmd *cobra.Command) (analyzeOptions, error) {
	var (
		opts analyzeOptions
		err  error
	)

	if opts.Timeout, err = cmd.Flags().GetDuration("timeout"); err != nil {
		return opts, err
	}
	if opts.Timeout <= 0 {
		return opts, config.ErrInvalidTimeout
	}
	if opts.JSONReport, err = cmd.Flags().GetBool("json"); err != nil {
		return opts, err
	}
	if opts.MarkdownReport, err = cmd.Flags().GetBool("markdown"); err != nil {
		return opts, err
	}
	if opts.JSONReport && opts.MarkdownReport {
		return opts, config.ErrConflictingReportFormats
	}
	if opts.ReportFile, err = cmd.Flags().GetString("output"); err != nil {
		return opts, err
	}
	if opts.Stealth, err = cmd.Flags().GetBool("stealth"); err != nil {
		return opts, err
	}
	if opts.Scorecard, err = cmd.Flags().GetBool("scorecard"); err != nil {
		return opts, err
	}
	if opts.WebhookURL, err = cmd.Flags().GetString("webhook-url"); err != nil {
		return opts, err
	}
	if opts.WebhookSecret, err = cmd.Flags().GetString("webhook-secret"); err != nil {
		return opts, err
	}
	return opts, nil
}

// runAnalyze audits target, delivers the webhook and writes the report.
// A failed audit is not an error: the report carries it.
func runAnalyze(ctx context.Context, stdout io.Writer, au auditor, target string, opts analyzeOptions) error {
	slog.Info("starting audit", "url", target, "timeout", opts.Timeout, "stealth", opts.Stealth)

	r, err := au.Analyze(ctx, target, scraper.Options{
		Timeout: opts.Timeout,
		Stealth: opts.Stealth,
	})
	if err != nil {
		slog.Warn("audit incomplete", "url", target, "error", err)
	}
	audit := grading.NewAudit(r)

	if opts.WebhookURL != "" {
		event := webhook.NewEvent(webhook.EventAuditCompleted, target, audit)
		if err := webhook.Deliver(ctx, opts.WebhookURL, opts.WebhookSecret, event); err != nil {
			slog.Warn("webhook delivery failed", "url", opts.WebhookURL, "error", err)
		} else {
			slog.Info("webhook delivered", "url", opts.WebhookURL)
		}
	}

	return outputAudit(stdout, opts, audit)
}

// outputAudit writes the audit to the report file or stdout in the
// selected format.
func outputAudit(stdout io.Writer, opts analyzeOptions, audit *models.Audit) error {
	output := stdout
	if opts.ReportFile != "" {
		f, err := openOutput(opts.ReportFile)
		if err != nil {
			return err
		}
		defer f.Close()
		output = f
	}

	var w report.Writer
	switch {
	case opts.JSONReport:
		w = report.NewJSONWriter(output, report.WithPrettyPrint())
	case opts.MarkdownReport:
		w = report.NewMarkdownWriter(output)
	default:
		w = report.NewTextWriter(output, report.WithScorecard(opts.Scorecard))
	}

	if _, err := w.Write(audit); err != nil {
		return fmt.Errorf("failed to write report: %w", err)
	}
	if opts.ReportFile != "" {
		slog.Info("report written", "path", opts.ReportFile)
	}
	return nil
}
