// Package render keeps a live plot of the sample window on a Canvas.
//
// The static scene is drawn once and its plot area cached. Each update
// restores that cached background, draws the new curve over it and presents,
// so per-frame work is proportional to the window, not the whole scene.
package render

import (
	"errors"
	"fmt"
	"image"

	"csi-monitor/internal/canvas"
)

// Canvas is the drawing surface the scheduler paints on
type Canvas interface {
	DrawScene(scene canvas.Scene) (image.Rectangle, error)
	CaptureRegion(bounds image.Rectangle) *canvas.Snapshot
	RestoreRegion(snapshot *canvas.Snapshot)
	DrawCurve(points []image.Point)
	Present() error
	Close() error
}

// State is the scheduler lifecycle state
type State int

const (
	StateUninitialized State = iota
	StateReady
	StateClosed
)

func (s State) String() string {
	switch s {
	case StateUninitialized:
		return "uninitialized"
	case StateReady:
		return "ready"
	case StateClosed:
		return "closed"
	default:
		return fmt.Sprintf("State(%d)", int(s))
	}
}

var (
	// ErrNotReady is returned by Update before Setup or after Teardown
	ErrNotReady = errors.New("renderer not ready")
	// ErrAlreadySetup is returned when Setup is called twice
	ErrAlreadySetup = errors.New("renderer already set up")
)

// Scheduler owns the render state: the cached background and curve buffer.
// It is not safe for concurrent use.
type Scheduler struct {
	canvas     Canvas
	scene      canvas.Scene
	plot       image.Rectangle
	background *canvas.Snapshot
	points     []image.Point
	state      State
	frames     uint64
}

// NewScheduler creates a scheduler drawing on c
func NewScheduler(c Canvas) *Scheduler {
	return &Scheduler{canvas: c}
}

// State returns the current lifecycle state
func (s *Scheduler) State() State {
	return s.state
}

// Frames returns the number of curve frames presented
func (s *Scheduler) Frames() uint64 {
	return s.frames
}

// Setup draws the full scene, caches its plot area and presents it
func (s *Scheduler) Setup(scene canvas.Scene) error {
	if s.state != StateUninitialized {
		return fmt.Errorf("%w (state %s)", ErrAlreadySetup, s.state)
	}

	plot, err := s.canvas.DrawScene(scene)
	if err != nil {
		return fmt.Errorf("failed to draw scene: %w", err)
	}
	s.scene = scene
	s.plot = plot
	s.background = s.canvas.CaptureRegion(plot)

	if err := s.canvas.Present(); err != nil {
		return fmt.Errorf("failed to present scene: %w", err)
	}
	s.state = StateReady
	return nil
}

// Update redraws the curve for samples, ordered oldest first
func (s *Scheduler) Update(samples []float64) error {
	if s.state != StateReady {
		return fmt.Errorf("%w (state %s)", ErrNotReady, s.state)
	}

	s.canvas.RestoreRegion(s.background)

	s.points = s.points[:0]
	for i, v := range samples {
		s.points = append(s.points, canvas.Project(s.plot, s.scene, float64(i), v))
	}
	s.canvas.DrawCurve(s.points)

	if err := s.canvas.Present(); err != nil {
		return fmt.Errorf("failed to present frame: %w", err)
	}
	s.frames++
	return nil
}

// Teardown releases the canvas. It is safe to call more than once.
func (s *Scheduler) Teardown() error {
	if s.state == StateClosed {
		return nil
	}
	s.state = StateClosed
	s.background = nil
	if err := s.canvas.Close(); err != nil {
		return fmt.Errorf("failed to close canvas: %w", err)
	}
	return nil
}
