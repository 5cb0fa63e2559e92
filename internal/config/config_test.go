package config

import (
	"strings"
	"testing"
	"time"
)

func TestDefaultConfigIsValid(t *testing.T) {
	cfg := DefaultConfig()
	if err := cfg.Validate(); err != nil {
		t.Fatalf("Expected default configuration to validate, got: %v", err)
	}
	if cfg.CSI.Marker != "CSI_DATA" {
		t.Errorf("Expected default marker CSI_DATA, got %q", cfg.CSI.Marker)
	}
	if cfg.Serial.BaudRate != 115200 {
		t.Errorf("Expected default baud rate 115200, got %d", cfg.Serial.BaudRate)
	}
}

func TestValidateRejectsBadValues(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
		want   string
	}{
		{"empty port", func(c *Config) { c.Serial.Port = "" }, "serial port"},
		{"zero baud", func(c *Config) { c.Serial.BaudRate = 0 }, "baud rate"},
		{"zero timeout", func(c *Config) { c.Serial.ReadTimeout = 0 }, "read timeout"},
		{"negative index", func(c *Config) { c.CSI.SubcarrierIndex = -1 }, "subcarrier index"},
		{"empty marker", func(c *Config) { c.CSI.Marker = "" }, "marker"},
		{"zero history", func(c *Config) { c.Plot.HistoryLength = 0 }, "history length"},
		{"inverted range", func(c *Config) { c.Plot.AmplitudeMin, c.Plot.AmplitudeMax = 10, 10 }, "amplitude range"},
		{"zero ticks", func(c *Config) { c.Plot.YTicks = 0 }, "tick counts"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.mutate(cfg)
			err := cfg.Validate()
			if err == nil {
				t.Fatalf("Expected validation error mentioning %q, got nil", tt.want)
			}
			if !strings.Contains(err.Error(), tt.want) {
				t.Errorf("Expected error mentioning %q, got %v", tt.want, err)
			}
		})
	}
}

func TestValidateReportsEveryProblem(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Serial.BaudRate = -1
	cfg.Plot.HistoryLength = 0
	cfg.Serial.ReadTimeout = -time.Second

	msg := cfg.Validate().Error()
	for _, want := range []string{"baud rate", "history length", "read timeout"} {
		if !strings.Contains(msg, want) {
			t.Errorf("Expected joined error to mention %q, got %q", want, msg)
		}
	}
}

func TestTitle(t *testing.T) {
	cfg := DefaultConfig()
	cfg.CSI.SubcarrierIndex = 7
	if got := cfg.Title(); got != "Real-Time CSI Amplitude (Subcarrier 7)" {
		t.Errorf("Expected derived title, got %q", got)
	}

	cfg.Plot.Title = "Lab bench"
	if got := cfg.Title(); got != "Lab bench" {
		t.Errorf("Expected configured title, got %q", got)
	}
}
