package main

import (
	"bytes"
	"context"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/use-agent/lpaudit/config"
)

func TestParseLevel(t *testing.T) {
	t.Parallel()

	tests := []struct {
		in   string
		want slog.Level
	}{
		{"debug", slog.LevelDebug},
		{"DEBUG", slog.LevelDebug},
		{"warn", slog.LevelWarn},
		{"error", slog.LevelError},
		{"info", slog.LevelInfo},
		{"", slog.LevelInfo},
		{"verbose", slog.LevelInfo},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			t.Parallel()
			if got := parseLevel(tt.in); got != tt.want {
				t.Errorf("parseLevel(%q) = %v, want %v", tt.in, got, tt.want)
			}
		})
	}
}

func TestSetupLogger(t *testing.T) {
	t.Parallel()

	t.Run("json handler", func(t *testing.T) {
		t.Parallel()
		var buf bytes.Buffer
		logger := setupLogger(&buf, config.LogConfig{Level: "info", Format: "json"}, false)
		logger.Info("hello", "k", "v")
		if !strings.HasPrefix(buf.String(), "{") {
			t.Errorf("expected JSON line, got %q", buf.String())
		}
	})

	t.Run("text handler respects level", func(t *testing.T) {
		t.Parallel()
		var buf bytes.Buffer
		logger := setupLogger(&buf, config.LogConfig{Level: "warn", Format: "text"}, false)
		logger.Info("hidden")
		logger.Warn("shown")
		if strings.Contains(buf.String(), "hidden") || !strings.Contains(buf.String(), "shown") {
			t.Errorf("unexpected output %q", buf.String())
		}
	})

	t.Run("verbose forces debug", func(t *testing.T) {
		t.Parallel()
		var buf bytes.Buffer
		logger := setupLogger(&buf, config.LogConfig{Level: "error", Format: "text"}, true)
		if !logger.Enabled(context.Background(), slog.LevelDebug) {
			t.Error("expected debug level enabled")
		}
	})
}

func TestGetFlags(t *testing.T) {
	t.Parallel()

	root := NewRootCmd()
	if err := root.PersistentFlags().Set("verbose", "true"); err != nil {
		t.Fatal(err)
	}
	if err := root.PersistentFlags().Set("rules", "custom.yaml"); err != nil {
		t.Fatal(err)
	}

	analyze, _, err := root.Find([]string{"analyze"})
	if err != nil {
		t.Fatal(err)
	}

	if !getVerboseFlag(analyze) {
		t.Error("expected verbose from root")
	}
	if got := getStringFlag(analyze, "rules"); got != "custom.yaml" {
		t.Errorf("rules = %q, want custom.yaml", got)
	}
	if got := getStringFlag(analyze, "nonexistent"); got != "" {
		t.Errorf("unknown flag = %q, want empty", got)
	}
}

func TestOpenOutput(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "a", "b", "report.txt")
	f, err := openOutput(path)
	if err != nil {
		t.Fatalf("openOutput() error = %v", err)
	}
	if _, err := f.WriteString("ok"); err != nil {
		t.Fatal(err)
	}
	if err := f.Close(); err != nil {
		t.Fatal(err)
	}

	data, err := os.ReadFile(path)
	if err != nil || string(data) != "ok" {
		t.Errorf("read back %q, %v", data, err)
	}
}
