package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"github.com/use-agent/lpaudit/config"
	"github.com/use-agent/lpaudit/scraper"
)

// screenshotOptions are the screenshot command's flags.
type screenshotOptions struct {
	OutputDir string
	Viewports []string
	FullPage  bool
	Timeout   time.Duration
}

// NewScreenshotCmd creates the screenshot command.
func NewScreenshotCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "screenshot <url>",
		Short: "Capture landing page screenshots",
		Long: `Capture PNG screenshots of a landing page.

Viewports: desktop (1920x1080), tablet (768x1024) and mobile (375x812 at
device scale factor 2). Each capture waits for network idle plus one
second. Files are named <host>_<viewport>.png with dots in the host
replaced by underscores.`,
		Example: `  lpaudit screenshot https://example.com/landing
  lpaudit screenshot https://example.com/landing --viewport mobile --full
  lpaudit screenshot https://example.com/landing --all -o shots`,
		Args: cobra.ExactArgs(1),
		RunE: runScreenshotCmd,
	}

	cmd.Flags().StringP("output", "o", "screenshots",
		"Output directory")
	cmd.Flags().String("viewport", "desktop",
		"Viewport: desktop, tablet or mobile")
	cmd.Flags().BoolP("all", "a", false,
		"Capture all viewports")
	cmd.Flags().BoolP("full", "f", false,
		"Capture the full scrollable page")
	cmd.Flags().DurationP("timeout", "t", 30*time.Second,
		"Page load timeout")

	return cmd
}

// runScreenshotCmd executes the screenshot command.
func runScreenshotCmd(cmd *cobra.Command, args []string) error {
	opts, err := buildScreenshotOptions(cmd)
	if err != nil {
		return err
	}

	cfg, err := loadConfig(cmd, os.Stderr)
	if err != nil {
		return err
	}
	if opts.Timeout > cfg.Audit.MaxTimeout {
		cfg.Audit.MaxTimeout = opts.Timeout
	}

	if err := os.MkdirAll(opts.OutputDir, 0o750); err != nil {
		return fmt.Errorf("failed to create output directory: %w", err)
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	au, sc := startScraper(cfg, nil)
	if sc != nil {
		defer sc.Close()
	}

	return runScreenshots(ctx, cmd.OutOrStdout(), au, args[0], opts)
}

// buildScreenshotOptions reads and validates the screenshot flags. An
// unknown viewport is rejected before any browser is launched.
func buildScreenshotOptions(cmd *cobra.Command) (screenshotOptions, error) {
	var (
		opts screenshotOptions
		err  error
	)

	if opts.OutputDir, err = cmd.Flags().GetString("output"); err != nil {
		return opts, err
	}
	if opts.FullPage, err = cmd.Flags().GetBool("full"); err != nil {
		return opts, err
	}
	if opts.Timeout, err = cmd.Flags().GetDuration("timeout"); err != nil {
		return opts, err
	}
	if opts.Timeout <= 0 {
		return opts, config.ErrInvalidTimeout
	}

	all, err := cmd.Flags().GetBool("all")
	if err != nil {
		return opts, err
	}
	if all {
		opts.Viewports = scraper.ViewportNames()
		return opts, nil
	}

	viewport, err := cmd.Flags().GetString("viewport")
	if err != nil {
		return opts, err
	}
	if _, err := scraper.LookupViewport(viewport); err != nil {
		return opts, err
	}
	opts.Viewports = []string{viewport}
	return opts, nil
}

// runScreenshots captures target once per viewport, reporting progress
// on stdout.
func runScreenshots(ctx context.Context, stdout io.Writer, au auditor, target string, opts screenshotOptions) error {
	failed := 0
	for _, viewport := range opts.Viewports {
		path := scraper.ScreenshotPath(opts.OutputDir, target, viewport)

		fmt.Fprintf(stdout, "Capturing %s screenshot...\n", viewport)
		result := au.CaptureToFile(ctx, target, viewport, path, scraper.ScreenshotOptions{
			FullPage: opts.FullPage,
			Timeout:  opts.Timeout,
		})

		if result.Success {
			fmt.Fprintf(stdout, "  Saved to %s\n", path)
			continue
		}
		failed++
		msg := "unknown error"
		if result.Error != nil {
			msg = *result.Error
		}
		fmt.Fprintf(stdout, "  Failed: %s\n", msg)
	}

	if failed > 0 {
		return errCaptureFailed
	}
	return nil
}
