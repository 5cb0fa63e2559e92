// Package config provides configuration structures and defaults for CSI Monitor
package config

import (
	"errors"
	"fmt"
	"time"
)

// Config represents the complete application configuration
type Config struct {
	Serial  SerialConfig  `mapstructure:"serial" yaml:"serial"`   // Serial link settings
	CSI     CSIConfig     `mapstructure:"csi" yaml:"csi"`         // CSI protocol settings
	Plot    PlotConfig    `mapstructure:"plot" yaml:"plot"`       // Live plot settings
	Logging LoggingConfig `mapstructure:"logging" yaml:"logging"` // Logging configuration
}

// SerialConfig contains serial link configuration parameters
type SerialConfig struct {
	Port          string        `mapstructure:"port" yaml:"port"`                       // Serial device path
	BaudRate      int           `mapstructure:"baud_rate" yaml:"baud_rate"`             // Serial communication baud rate
	ReadTimeout   time.Duration `mapstructure:"read_timeout" yaml:"read_timeout"`       // Poll timeout for a single read
	ResetInput    bool          `mapstructure:"reset_input" yaml:"reset_input"`         // Discard bytes buffered before open
	MaxLineLength int           `mapstructure:"max_line_length" yaml:"max_line_length"` // Longest line kept, in bytes
}

// CSIConfig contains CSI frame selection parameters
type CSIConfig struct {
	Marker          string `mapstructure:"marker" yaml:"marker"`                     // Token identifying CSI lines
	SubcarrierIndex int    `mapstructure:"subcarrier_index" yaml:"subcarrier_index"` // Subcarrier pair to plot
}

// PlotConfig contains live plot parameters
type PlotConfig struct {
	HistoryLength int     `mapstructure:"history_length" yaml:"history_length"` // Samples kept on screen
	AmplitudeMin  float64 `mapstructure:"amplitude_min" yaml:"amplitude_min"`   // Bottom of the vertical axis
	AmplitudeMax  float64 `mapstructure:"amplitude_max" yaml:"amplitude_max"`   // Top of the vertical axis
	Title         string  `mapstructure:"title" yaml:"title"`                   // Plot title (derived when empty)
	XLabel        string  `mapstructure:"x_label" yaml:"x_label"`               // Horizontal axis label
	YLabel        string  `mapstructure:"y_label" yaml:"y_label"`               // Vertical axis label
	Grid          bool    `mapstructure:"grid" yaml:"grid"`                     // Draw dotted gridlines
	XTicks        int     `mapstructure:"x_ticks" yaml:"x_ticks"`               // Horizontal axis divisions
	YTicks        int     `mapstructure:"y_ticks" yaml:"y_ticks"`               // Vertical axis divisions
}

// LoggingConfig contains logging configuration parameters
type LoggingConfig struct {
	Level string `mapstructure:"level" yaml:"level"` // Log level (debug, info, warn, error)
	File  string `mapstructure:"file" yaml:"file"`   // Log file path, "-" for stderr, empty to disable
}

// DefaultConfig returns a configuration with sensible default values
func DefaultConfig() *Config {
	return &Config{
		Serial: SerialConfig{
			Port:          "/dev/ttyUSB0",         // Common USB-UART bridge path
			BaudRate:      115200,                 // ESP32 console default
			ReadTimeout:   100 * time.Millisecond, // Keeps shutdown responsive on a silent link
			ResetInput:    true,                   // Drop stale data queued before we connected
			MaxLineLength: 8192,                   // A full 64-subcarrier frame is well under 1 KiB
		},
		CSI: CSIConfig{
			Marker:          "CSI_DATA",
			SubcarrierIndex: 44,
		},
		Plot: PlotConfig{
			HistoryLength: 200,
			AmplitudeMin:  0,
			AmplitudeMax:  80,
			XLabel:        "Time (Packets)",
			YLabel:        "Signal Amplitude",
			Grid:          true,
			XTicks:        4,
			YTicks:        4,
		},
		Logging: LoggingConfig{
			Level: "info",
			File:  "csi-monitor.log",
		},
	}
}

// Title returns the configured plot title, or one naming the selected subcarrier
func (c *Config) Title() string {
	if c.Plot.Title != "" {
		return c.Plot.Title
	}
	return fmt.Sprintf("Real-Time CSI Amplitude (Subcarrier %d)", c.CSI.SubcarrierIndex)
}

// Validate checks that the configuration can drive a monitor session
func (c *Config) Validate() error {
	var errs []error

	if c.Serial.Port == "" {
		errs = append(errs, errors.New("serial port not specified"))
	}
	if c.Serial.BaudRate <= 0 {
		errs = append(errs, fmt.Errorf("invalid baud rate: %d (must be positive)", c.Serial.BaudRate))
	}
	if c.Serial.ReadTimeout <= 0 {
		errs = append(errs, fmt.Errorf("invalid read timeout: %v (must be positive)", c.Serial.ReadTimeout))
	}
	if c.Serial.MaxLineLength <= 0 {
		errs = append(errs, fmt.Errorf("invalid max line length: %d (must be positive)", c.Serial.MaxLineLength))
	}
	if c.CSI.Marker == "" {
		errs = append(errs, errors.New("CSI marker not specified"))
	}
	if c.CSI.SubcarrierIndex < 0 {
		errs = append(errs, fmt.Errorf("invalid subcarrier index: %d (must be >= 0)", c.CSI.SubcarrierIndex))
	}
	if c.Plot.HistoryLength < 1 {
		errs = append(errs, fmt.Errorf("invalid history length: %d (must be >= 1)", c.Plot.HistoryLength))
	}
	if c.Plot.AmplitudeMax <= c.Plot.AmplitudeMin {
		errs = append(errs, fmt.Errorf("invalid amplitude range: [%g, %g] (max must exceed min)",
			c.Plot.AmplitudeMin, c.Plot.AmplitudeMax))
	}
	if c.Plot.XTicks < 1 || c.Plot.YTicks < 1 {
		errs = append(errs, fmt.Errorf("invalid tick counts: x=%d y=%d (must be >= 1)", c.Plot.XTicks, c.Plot.YTicks))
	}

	return errors.Join(errs...)
}
