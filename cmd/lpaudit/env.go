package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"
	"github.com/use-agent/lpaudit/config"
	"github.com/use-agent/lpaudit/models"
	"github.com/use-agent/lpaudit/scraper"
)

// auditor is the browser side of the commands. *scraper.Scraper
// implements it.
type auditor interface {
	Analyze(ctx context.Context, target string, opts scraper.Options) (*models.Report, error)
	CaptureToFile(ctx context.Context, target, viewport, path string, opts scraper.ScreenshotOptions) *models.ScreenshotResult
}

// unavailableAuditor stands in for the scraper when the browser could not
// be launched, so every command still produces a well-formed result.
type unavailableAuditor struct {
	msg string
}

func (u unavailableAuditor) Analyze(_ context.Context, target string, _ scraper.Options) (*models.Report, error) {
	r := models.NewReport(target)
	r.Fail(u.msg)
	return r, models.NewAuditError(models.ErrCodeBrowserCrash, u.msg, nil)
}

func (u unavailableAuditor) CaptureToFile(_ context.Context, target, viewport, path string, _ scraper.ScreenshotOptions) *models.ScreenshotResult {
	msg := u.msg
	return &models.ScreenshotResult{
		URL:      target,
		Output:   path,
		Viewport: viewport,
		Error:    &msg,
	}
}

// startScraper launches the browser. When that fails the returned
// auditor reports the launch error on every call and the *scraper.Scraper
// is nil.
func startScraper(cfg *config.Config, rules *config.Rules) (auditor, *scraper.Scraper) {
	sc, err := scraper.NewScraper(cfg.Browser, cfg.Audit, rules)
	if err != nil {
		slog.Error("browser unavailable", "error", err)
		return unavailableAuditor{msg: launchMessage(err)}, nil
	}
	return sc, sc
}

func launchMessage(err error) string {
	var auditErr *models.AuditError
	if !errors.As(err, &auditErr) {
		return err.Error()
	}
	if auditErr.Err != nil {
		return auditErr.Message + ": " + auditErr.Err.Error()
	}
	return auditErr.Message
}

// loadConfig reads the environment configuration, applies the persistent
// flags and installs the default logger writing to w.
func loadConfig(cmd *cobra.Command, w io.Writer) (*config.Config, error) {
	cfg := config.Load()

	if format := getStringFlag(cmd, "log-format"); format != "" {
		cfg.Log.Format = format
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("configuration error: %w", err)
	}

	slog.SetDefault(setupLogger(w, cfg.Log, getVerboseFlag(cmd)))
	return cfg, nil
}

// loadRules resolves the detection rules from --rules or the default
// locations.
func loadRules(cmd *cobra.Command) (*config.Rules, error) {
	rules, path, err := config.ResolveRules(getStringFlag(cmd, "rules"))
	if err != nil {
		return nil, err
	}
	if path != "" {
		slog.Debug("using rules file", "path", path)
	}
	return rules, nil
}

// setupLogger creates a structured logger. verbose forces debug level.
func setupLogger(w io.Writer, cfg config.LogConfig, verbose bool) *slog.Logger {
	level := parseLevel(cfg.Level)
	if verbose {
		level = slog.LevelDebug
	}

	opts := &slog.HandlerOptions{Level: level}

	var handler slog.Handler
	if cfg.Format == "json" {
		handler = slog.NewJSONHandler(w, opts)
	} else {
		handler = slog.NewTextHandler(w, opts)
	}
	return slog.New(handler)
}

func parseLevel(s string) slog.Level {
	switch strings.ToLower(s) {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// getVerboseFlag retrieves the verbose flag from the command or its parent.
func getVerboseFlag(cmd *cobra.Command) bool {
	verbose, err := cmd.Flags().GetBool("verbose")
	if err != nil {
		verbose, err = cmd.Root().PersistentFlags().GetBool("verbose")
		if err != nil {
			return false
		}
	}
	return verbose
}

// getStringFlag retrieves a string flag from the command or its parent.
func getStringFlag(cmd *cobra.Command, name string) string {
	v, err := cmd.Flags().GetString(name)
	if err != nil {
		v, err = cmd.Root().PersistentFlags().GetString(name)
		if err != nil {
			return ""
		}
	}
	return v
}

// openOutput creates path (and its directory) for writing.
func openOutput(path string) (*os.File, error) {
	if err := ensureDir(path); err != nil {
		return nil, err
	}
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0o644) //nolint:gosec // reports are meant to be shared
	if err != nil {
		return nil, fmt.Errorf("failed to create output file: %w", err)
	}
	return f, nil
}

func ensureDir(path string) error {
	dir := filepath.Dir(path)
	if dir == "." {
		return nil
	}
	if err := os.MkdirAll(dir, 0o750); err != nil {
		return fmt.Errorf("failed to create output directory: %w", err)
	}
	return nil
}
