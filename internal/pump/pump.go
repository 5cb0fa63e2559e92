// Package pump drives the ingestion loop: line -> frame -> sample -> window -> render
package pump

import (
	"context"
	"errors"
	"fmt"

	"csi-monitor/internal/csi"
	"csi-monitor/internal/serialport"
	"csi-monitor/internal/window"

	"github.com/rs/zerolog"
	"golang.org/x/text/transform"
)

// LineSource delivers raw lines; it returns serialport.ErrTimeout when no
// line arrived within its read timeout.
type LineSource interface {
	ReadLine() ([]byte, error)
}

// Renderer presents the window contents, oldest sample first
type Renderer interface {
	Update(samples []float64) error
}

// Stats counts what happened to the lines the pump has seen
type Stats struct {
	Lines      uint64 // lines read from the source
	Timeouts   uint64 // polls that returned no line
	NotFrame   uint64 // lines without the marker token
	Malformed  uint64 // frames with a non-integer token
	OutOfRange uint64 // frames too short for the subcarrier
	Samples    uint64 // samples appended and rendered
}

// Dropped returns the number of lines that produced no sample
func (s Stats) Dropped() uint64 {
	return s.NotFrame + s.Malformed + s.OutOfRange
}

// Pump runs every stage on the calling goroutine, one line at a time.
// The window has a single writer and the renderer reads it only after each
// append, so no locking is needed.
type Pump struct {
	source   LineSource
	parser   *csi.Parser
	index    int
	window   *window.Window
	renderer Renderer
	logger   zerolog.Logger
	decoder  transform.Transformer
	snapshot []float64
	stats    Stats
}

// New creates a pump extracting subcarrier index from frames marked by marker
func New(source LineSource, marker string, index int, w *window.Window, r Renderer, logger zerolog.Logger) *Pump {
	return &Pump{
		source:   source,
		parser:   csi.NewParser(marker),
		index:    index,
		window:   w,
		renderer: r,
		logger:   logger,
		decoder:  newDecoder(),
		snapshot: make([]float64, w.Len()),
	}
}

// Stats returns the counters accumulated so far
func (p *Pump) Stats() Stats {
	return p.stats
}

// Run pumps lines until ctx is cancelled, which returns nil. Any other return
// is a fatal source or render error; per-line failures never end the loop.
func (p *Pump) Run(ctx context.Context) error {
	for {
		select {
		case <-ctx.Done():
			return nil
		default:
		}

		raw, err := p.source.ReadLine()
		if err != nil {
			if errors.Is(err, serialport.ErrTimeout) {
				p.stats.Timeouts++
				continue
			}
			return fmt.Errorf("failed to read line: %w", err)
		}

		if _, err := p.Process(raw); err != nil {
			return err
		}
	}
}

// Process runs one raw line through the pipeline. It reports whether a sample
// was appended; the error is non-nil only if rendering failed.
func (p *Pump) Process(raw []byte) (bool, error) {
	p.stats.Lines++
	line := decode(p.decoder, raw)

	frame, err := p.parser.Parse(line)
	switch {
	case errors.Is(err, csi.ErrNotAFrame):
		p.stats.NotFrame++
		return false, nil
	case err != nil:
		p.stats.Malformed++
		p.logger.Debug().Err(err).Str("line", line).Msg("dropped malformed frame")
		return false, nil
	}

	amplitude, err := csi.Extract(frame, p.index)
	if err != nil {
		p.stats.OutOfRange++
		p.logger.Debug().Err(err).Int("pairs", frame.Pairs()).Msg("dropped short frame")
		return false, nil
	}

	p.window.Append(amplitude)
	p.snapshot = p.window.Snapshot(p.snapshot)
	if err := p.renderer.Update(p.snapshot); err != nil {
		return true, fmt.Errorf("failed to render sample: %w", err)
	}
	p.stats.Samples++
	return true, nil
}
