package logging

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"csi-monitor/internal/config"
)

func TestNewWritesToFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "monitor.log")

	logger, closer, err := New(config.LoggingConfig{Level: "debug", File: path})
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}
	logger.Debug().Int("samples", 3).Msg("window updated")
	if err := closer.Close(); err != nil {
		t.Fatalf("Close failed: %v", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	out := string(data)
	if !strings.Contains(out, "window updated") || !strings.Contains(out, "samples=3") {
		t.Errorf("Expected debug entry in log file, got %q", out)
	}
	if strings.Contains(out, "\x1b[") {
		t.Errorf("Expected no color codes in file output, got %q", out)
	}
}

func TestNewFiltersByLevel(t *testing.T) {
	path := filepath.Join(t.TempDir(), "monitor.log")

	logger, closer, err := New(config.LoggingConfig{Level: "warn", File: path})
	if err != nil {
		t.Fatal(err)
	}
	logger.Info().Msg("hidden")
	logger.Warn().Msg("shown")
	closer.Close()

	data, _ := os.ReadFile(path)
	if strings.Contains(string(data), "hidden") {
		t.Error("Expected info entry to be filtered at warn level")
	}
	if !strings.Contains(string(data), "shown") {
		t.Error("Expected warn entry to be written")
	}
}

func TestNewDisabled(t *testing.T) {
	logger, closer, err := New(config.LoggingConfig{Level: "info"})
	if err != nil {
		t.Fatal(err)
	}
	defer closer.Close()
	if logger.Info().Enabled() {
		t.Error("Expected a disabled logger when no file is configured")
	}
}

func TestNewInvalidLevel(t *testing.T) {
	if _, _, err := New(config.LoggingConfig{Level: "chatty", File: "-"}); err == nil {
		t.Error("Expected error for an unknown level")
	}
}
