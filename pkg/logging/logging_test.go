package logging_test

import (
	"log/slog"
	"testing"

	"github.com/signet-dev/signet/pkg/logging"
)

func TestLevelToSlogLevel(t *testing.T) {
	tests := []struct {
		level    logging.Level
		expected slog.Level
	}{
		{logging.LevelDebug, slog.LevelDebug},
		{logging.LevelInfo, slog.LevelInfo},
		{logging.LevelWarn, slog.LevelWarn},
		{logging.LevelError, slog.LevelError},
		{logging.Level("bogus"), slog.LevelInfo},
	}

	for _, tt := range tests {
		t.Run(string(tt.level), func(t *testing.T) {
			if got := tt.level.ToSlogLevel(); got != tt.expected {
				t.Errorf("expected %v, got %v", tt.expected, got)
			}
		})
	}
}

func TestConfigFinalize(t *testing.T) {
	t.Run("defaults", func(t *testing.T) {
		cfg := logging.Config{}
		if err := cfg.Finalize(); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if cfg.Level != logging.LevelInfo {
			t.Errorf("expected level %q, got %q", logging.LevelInfo, cfg.Level)
		}
		if cfg.Format != logging.FormatText {
			t.Errorf("expected format %q, got %q", logging.FormatText, cfg.Format)
		}
	})

	t.Run("invalid level", func(t *testing.T) {
		cfg := logging.Config{Level: "verbose"}
		if err := cfg.Finalize(); err == nil {
			t.Fatal("expected error for invalid level")
		}
	})

	t.Run("invalid format", func(t *testing.T) {
		cfg := logging.Config{Format: "xml"}
		if err := cfg.Finalize(); err == nil {
			t.Fatal("expected error for invalid format")
		}
	})
}

func TestConfigMerge(t *testing.T) {
	cfg := logging.Config{Level: logging.LevelInfo, Format: logging.FormatText}
	cfg.Merge(&logging.Config{Level: logging.LevelDebug})

	if cfg.Level != logging.LevelDebug {
		t.Errorf("expected merged level %q, got %q", logging.LevelDebug, cfg.Level)
	}
	if cfg.Format != logging.FormatText {
		t.Errorf("expected format %q to survive merge, got %q", logging.FormatText, cfg.Format)
	}
}
