package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"github.com/use-agent/lpaudit/api/handler"
	"github.com/use-agent/lpaudit/cleaner"
	"github.com/use-agent/lpaudit/config"
	"github.com/use-agent/lpaudit/engine"
)

// fetchOptions are the fetch command's flags.
type fetchOptions struct {
	Timeout         time.Duration
	OutputFile      string
	FollowRedirects bool
	MaxRedirects    int
	Format          string
	Selector        string
}

// NewFetchCmd creates the fetch command.
func NewFetchCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "fetch <url>",
		Short: "Fetch a landing page over plain HTTP",
		Long: `Fetch a landing page without a browser.

The request presents a Chrome TLS fingerprint and browser headers. The body
is printed to stdout (or saved with --output); the final URL, status code
and redirect chain are printed to stderr. A URL without a scheme is fetched
over https.`,
		Example: `  lpaudit fetch example.com/landing
  lpaudit fetch https://example.com/landing --format markdown
  lpaudit fetch https://example.com/landing --selector main -o page.html`,
		Args: cobra.ExactArgs(1),
		RunE: runFetchCmd,
	}

	cmd.Flags().DurationP("timeout", "t", 30*time.Second,
		"Request timeout")
	cmd.Flags().StringP("output", "o", "",
		"Save the content to a file")
	cmd.Flags().Bool("no-redirects", false,
		"Don't follow redirects")
	cmd.Flags().Int("max-redirects", 5,
		"Maximum number of redirects to follow")
	cmd.Flags().String("format", cleaner.FormatHTML,
		"Content format: html, markdown or text")
	cmd.Flags().String("selector", "",
		"CSS selector narrowing the content")

	return cmd
}

// runFetchCmd executes the fetch command.
func runFetchCmd(cmd *cobra.Command, args []string) error {
	opts, err := buildFetchOptions(cmd)
	if err != nil {
		return err
	}

	cfg, err := loadConfig(cmd, os.Stderr)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	return runFetch(ctx, cmd.OutOrStdout(), cmd.ErrOrStderr(),
		engine.NewFetcher(cfg.Browser.DefaultProxy), cleaner.NewCleaner(), args[0], opts)
}

// buildFetchOptions reads and validates the fetch flags.
func buildFetchOptions(cmd *cobra.Command) (fetchOptions, error) {
	var (
		opts fetchOptions
		err  error
	)

	if opts.Timeout, err = cmd.Flags().GetDuration("timeout"); err != nil {
		return opts, err
	}
	if opts.Timeout <= 0 {
		return opts, config.ErrInvalidTimeout
	}
	if opts.OutputFile, err = cmd.Flags().GetString("output"); err != nil {
		return opts, err
	}
	noRedirects, err := cmd.Flags().GetBool("no-redirects")
	if err != nil {
		return opts, err
	}
	opts.FollowRedirects = !noRedirects
	if opts.MaxRedirects, err = cmd.Flags().GetInt("max-redirects"); err != nil {
		return opts, err
	}
	if opts.MaxRedirects < 0 {
		return opts, config.ErrInvalidMaxRedirects
	}
	if opts.Format, err = cmd.Flags().GetString("format"); err != nil {
		return opts, err
	}
	switch opts.Format {
	case cleaner.FormatHTML, cleaner.FormatMarkdown, cleaner.FormatText:
	default:
		return opts, fmt.Errorf("%w: %q", config.ErrInvalidFormat, opts.Format)
	}
	if opts.Selector, err = cmd.Flags().GetString("selector"); err != nil {
		return opts, err
	}
	return opts, nil
}

// runFetch fetches target and writes its content to stdout or the output
// file. Metadata goes to stderr. A failed fetch prints "Error: <message>"
// and returns a non-nil error.
func runFetch(ctx context.Context, stdout, stderr io.Writer, f handler.Fetcher, conv handler.Converter, target string, opts fetchOptions) error {
	result, err := f.Fetch(ctx, target, engine.Options{
		Timeout:         opts.Timeout,
		FollowRedirects: opts.FollowRedirects,
		MaxRedirects:    opts.MaxRedirects,
	})
	if err != nil {
		msg := err.Error()
		if result != nil && result.Error != nil {
			msg = *result.Error
		}
		fmt.Fprintf(stderr, "Error: %s\n", msg)
		return errFetchFailed
	}

	content, err := conv.Convert(result.Content, result.URL, opts.Format, opts.Selector)
	if err != nil {
		fmt.Fprintf(stderr, "Error: %s\n", err)
		return errFetchFailed
	}

	if opts.OutputFile != "" {
		out, err := openOutput(opts.OutputFile)
		if err != nil {
			return err
		}
		if _, err := io.WriteString(out, content); err != nil {
			out.Close()
			return fmt.Errorf("failed to write content: %w", err)
		}
		if err := out.Close(); err != nil {
			return fmt.Errorf("failed to write content: %w", err)
		}
		fmt.Fprintf(stdout, "Saved to %s\n", opts.OutputFile)
	} else {
		fmt.Fprintln(stdout, content)
	}

	fmt.Fprintf(stderr, "\nURL: %s\n", result.URL)
	fmt.Fprintf(stderr, "Status: %d\n", result.StatusCode)
	if len(result.RedirectChain) > 0 {
		fmt.Fprintf(stderr, "Redirects: %s\n", strings.Join(result.RedirectChain, " -> "))
	}
	if result.NeedsBrowser {
		fmt.Fprintln(stderr, "Note: page looks script-rendered; try `lpaudit analyze` or `lpaudit screenshot`")
	}
	return nil
}
