package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

// NewRootCmd creates the root command for lpaudit.
func NewRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "lpaudit",
		Short: "Landing page quality auditor for paid traffic",
		Long: `lpaudit audits the landing pages behind paid ads.

It loads a page in headless Chromium at desktop and mobile sizes, measures
load performance, detects conversion and trust elements, reads structured
data and grades the page against a fixed set of ad quality checks.

Configuration comes from LPAUDIT_* environment variables. Detection lists
can be tuned with a rules file (--rules, ./.lpaudit.yaml or
$XDG_CONFIG_HOME/lpaudit/rules.yaml).`,
		Version:       getVersion(),
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	// Global flags that apply to all commands
	cmd.PersistentFlags().BoolP("verbose", "v", false, "Enable verbose logging")
	cmd.PersistentFlags().String("log-format", "", "Log format: text or json (default from LPAUDIT_LOG_FORMAT)")
	cmd.PersistentFlags().String("rules", "", "Path to a detection rules file")

	// Add subcommands
	cmd.AddCommand(NewAnalyzeCmd())
	cmd.AddCommand(NewFetchCmd())
	cmd.AddCommand(NewScreenshotCmd())
	cmd.AddCommand(NewServeCmd())
	cmd.AddCommand(NewMCPCmd())
	cmd.AddCommand(NewVersionCmd())

	return cmd
}

// Execute runs the root command.
func Execute() {
	if err := NewRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
