// Package monitor wires the serial link, sample window, pump and live plot
// into one session and owns their lifecycle.
package monitor

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"csi-monitor/internal/canvas"
	"csi-monitor/internal/config"
	"csi-monitor/internal/pump"
	"csi-monitor/internal/render"
	"csi-monitor/internal/serialport"
	"csi-monitor/internal/window"

	"github.com/rs/zerolog"
)

// ErrNotInitialized is returned by Run before a successful Initialize
var ErrNotInitialized = errors.New("monitor not initialized")

// Source is a closable line source, normally a serial port
type Source interface {
	pump.LineSource
	Close() error
}

// SourceOpener opens the line source for a session
type SourceOpener func(cfg config.SerialConfig) (Source, error)

// CanvasOpener opens the drawing surface for a session
type CanvasOpener func(style canvas.Style) (render.Canvas, error)

// keyWatcher is implemented by canvases that can report an operator stop
type keyWatcher interface {
	WatchKeys(onStop func())
}

// Option customizes a Monitor
type Option func(*Monitor)

// WithSourceOpener replaces the serial port opener
func WithSourceOpener(open SourceOpener) Option {
	return func(m *Monitor) { m.openSource = open }
}

// WithCanvasOpener replaces the terminal opener
func WithCanvasOpener(open CanvasOpener) Option {
	return func(m *Monitor) { m.openCanvas = open }
}

// Monitor is one live-plot session
type Monitor struct {
	config *config.Config
	logger zerolog.Logger

	openSource SourceOpener
	openCanvas CanvasOpener

	source    Source
	window    *window.Window
	canvas    render.Canvas
	scheduler *render.Scheduler
	pump      *pump.Pump

	closeOnce sync.Once
	closeErr  error
}

func openSerial(cfg config.SerialConfig) (Source, error) {
	port, err := serialport.Open(cfg)
	if err != nil {
		return nil, err
	}
	return port, nil
}

func openTerminal(style canvas.Style) (render.Canvas, error) {
	term, err := canvas.OpenTerminal(style)
	if err != nil {
		return nil, err
	}
	return term, nil
}

// NewMonitor creates a monitor for cfg; call Initialize before Run
func NewMonitor(cfg *config.Config, logger zerolog.Logger, opts ...Option) *Monitor {
	m := &Monitor{
		config:     cfg,
		logger:     logger,
		openSource: openSerial,
		openCanvas: openTerminal,
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// Scene returns the static plot layout for the configuration
func Scene(cfg *config.Config) canvas.Scene {
	return canvas.Scene{
		Title:  cfg.Title(),
		XLabel: cfg.Plot.XLabel,
		YLabel: cfg.Plot.YLabel,
		X:      canvas.Range{Min: 0, Max: float64(cfg.Plot.HistoryLength - 1)},
		Y:      canvas.Range{Min: cfg.Plot.AmplitudeMin, Max: cfg.Plot.AmplitudeMax},
		XTicks: cfg.Plot.XTicks,
		YTicks: cfg.Plot.YTicks,
		Grid:   cfg.Plot.Grid,
	}
}

// Initialize opens the source, then the canvas, and draws the empty plot.
// The source goes first so an open failure is reported on a normal terminal.
// On error, Close releases whatever was opened.
func (m *Monitor) Initialize() error {
	var err error

	m.source, err = m.openSource(m.config.Serial)
	if err != nil {
		return err
	}
	m.logger.Info().
		Str("port", m.config.Serial.Port).
		Int("baud", m.config.Serial.BaudRate).
		Dur("read_timeout", m.config.Serial.ReadTimeout).
		Msg("serial port opened")

	m.window, err = window.New(m.config.Plot.HistoryLength)
	if err != nil {
		return fmt.Errorf("failed to create sample window: %w", err)
	}

	m.canvas, err = m.openCanvas(canvas.DefaultStyle())
	if err != nil {
		return err
	}

	m.scheduler = render.NewScheduler(m.canvas)
	if err := m.scheduler.Setup(Scene(m.config)); err != nil {
		return fmt.Errorf("failed to set up plot: %w", err)
	}

	m.pump = pump.New(m.source, m.config.CSI.Marker, m.config.CSI.SubcarrierIndex, m.window, m.scheduler, m.logger)
	return nil
}

// Run plots samples until ctx is cancelled or the operator stops it, then
// closes the session. It returns nil on a requested stop.
func (m *Monitor) Run(ctx context.Context) (err error) {
	defer func() {
		if cerr := m.Close(); cerr != nil {
			err = errors.Join(err, cerr)
		}
	}()

	if m.pump == nil {
		return ErrNotInitialized
	}

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	if w, ok := m.canvas.(keyWatcher); ok {
		w.WatchKeys(func() {
			m.logger.Info().Msg("stop requested from keyboard")
			cancel()
		})
	}

	m.logger.Info().
		Int("subcarrier", m.config.CSI.SubcarrierIndex).
		Int("history", m.config.Plot.HistoryLength).
		Msg("monitoring started")

	err = m.pump.Run(ctx)

	stats := m.pump.Stats()
	m.logger.Info().
		Uint64("lines", stats.Lines).
		Uint64("samples", stats.Samples).
		Uint64("dropped", stats.Dropped()).
		Uint64("timeouts", stats.Timeouts).
		Msg("monitoring stopped")
	return err
}

// Stats returns the pump counters; zero before Initialize
func (m *Monitor) Stats() pump.Stats {
	if m.pump == nil {
		return pump.Stats{}
	}
	return m.pump.Stats()
}

// Close releases the source and the canvas. It is safe to call more than once.
func (m *Monitor) Close() error {
	m.closeOnce.Do(func() {
		var errs []error

		if m.source != nil {
			if err := m.source.Close(); err != nil {
				errs = append(errs, fmt.Errorf("serial close error: %w", err))
			}
		}

		if m.scheduler != nil {
			if err := m.scheduler.Teardown(); err != nil {
				errs = append(errs, err)
			}
		}

		m.closeErr = errors.Join(errs...)
	})
	return m.closeErr
}
