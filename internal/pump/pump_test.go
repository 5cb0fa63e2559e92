package pump

import (
	"context"
	"errors"
	"testing"

	"csi-monitor/internal/serialport"
	"csi-monitor/internal/window"

	"github.com/rs/zerolog"
)

type read struct {
	line string
	err  error
}

// fakeSource replays reads and cancels the run once they are exhausted
type fakeSource struct {
	reads  []read
	cancel context.CancelFunc
}

func (f *fakeSource) ReadLine() ([]byte, error) {
	if len(f.reads) == 0 {
		if f.cancel != nil {
			f.cancel()
		}
		return nil, serialport.ErrTimeout
	}
	r := f.reads[0]
	f.reads = f.reads[1:]
	if r.err != nil {
		return nil, r.err
	}
	return []byte(r.line), nil
}

type fakeRenderer struct {
	frames [][]float64
	err    error
}

func (f *fakeRenderer) Update(samples []float64) error {
	if f.err != nil {
		return f.err
	}
	f.frames = append(f.frames, append([]float64(nil), samples...))
	return nil
}

func (f *fakeRenderer) last() []float64 {
	if len(f.frames) == 0 {
		return nil
	}
	return f.frames[len(f.frames)-1]
}

func newTestPump(t *testing.T, src LineSource, index, history int) (*Pump, *fakeRenderer) {
	t.Helper()
	w, err := window.New(history)
	if err != nil {
		t.Fatalf("Failed to create window: %v", err)
	}
	r := &fakeRenderer{}
	return New(src, "", index, w, r, zerolog.Nop()), r
}

func equal(a, b []float64) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

func TestProcessSingleFrame(t *testing.T) {
	p, r := newTestPump(t, nil, 0, 4)

	ok, err := p.Process([]byte("CSI_DATA,STA,aa:bb:cc:dd:ee:ff,-42,[3 4]\r"))
	if err != nil {
		t.Fatalf("Process failed: %v", err)
	}
	if !ok {
		t.Fatal("Expected the frame to produce a sample")
	}
	if want := []float64{0, 0, 0, 5}; !equal(r.last(), want) {
		t.Errorf("Expected %v, got %v", want, r.last())
	}
}

func TestProcessSkipsNonFrames(t *testing.T) {
	p, r := newTestPump(t, nil, 0, 3)

	if _, err := p.Process([]byte("CSI_DATA,STA,[3 4]")); err != nil {
		t.Fatal(err)
	}
	before := p.window.Snapshot(nil)

	for _, line := range []string{"", "I (123) wifi: connected", "boot: ESP-IDF v5.1"} {
		ok, err := p.Process([]byte(line))
		if ok || err != nil {
			t.Errorf("Expected %q to be skipped, got ok=%v err=%v", line, ok, err)
		}
	}

	if after := p.window.Snapshot(nil); !equal(before, after) {
		t.Errorf("Expected window unchanged by non-frames, got %v, want %v", after, before)
	}
	if len(r.frames) != 1 {
		t.Errorf("Expected only the frame to render, got %d renders", len(r.frames))
	}
	if s := p.Stats(); s.NotFrame != 3 || s.Lines != 4 {
		t.Errorf("Expected 3 non-frame lines out of 4, got %+v", s)
	}
}

func TestProcessDropsBadFrames(t *testing.T) {
	p, r := newTestPump(t, nil, 2, 3)

	lines := []string{
		"CSI_DATA,STA,[1 2 x 4 5 6]", // malformed
		"CSI_DATA,STA,[1 2 3 4]",     // too short for index 2
		"CSI_DATA,STA,[0 0 0 0 6 8]", // good
	}
	for _, line := range lines {
		if _, err := p.Process([]byte(line)); err != nil {
			t.Fatalf("Process(%q) failed: %v", line, err)
		}
	}

	if want := []float64{0, 0, 10}; !equal(r.last(), want) {
		t.Errorf("Expected %v, got %v", want, r.last())
	}
	s := p.Stats()
	if s.Malformed != 1 || s.OutOfRange != 1 || s.Samples != 1 {
		t.Errorf("Unexpected stats: %+v", s)
	}
	if s.Dropped() != 2 {
		t.Errorf("Expected 2 dropped lines, got %d", s.Dropped())
	}
}

func TestProcessStripsUndecodableBytes(t *testing.T) {
	p, r := newTestPump(t, nil, 0, 2)

	if _, err := p.Process([]byte("\x00\xffCSI_DATA,STA,[3 \xfe4]\r")); err != nil {
		t.Fatal(err)
	}
	if want := []float64{0, 5}; !equal(r.last(), want) {
		t.Errorf("Expected %v, got %v", want, r.last())
	}
}

func TestProcessControlByteInsideToken(t *testing.T) {
	p, r := newTestPump(t, nil, 0, 2)

	ok, err := p.Process([]byte("CSI_DATA,STA,[3\x014 0]"))
	if ok || err != nil {
		t.Fatalf("Expected the line to be dropped, got ok=%v err=%v", ok, err)
	}
	if len(r.frames) != 0 {
		t.Errorf("Expected no renders, got %v", r.frames)
	}
	if s := p.Stats(); s.Malformed != 1 || s.Samples != 0 {
		t.Errorf("Expected one malformed line, got %+v", s)
	}
}

func TestProcessRenderError(t *testing.T) {
	p, r := newTestPump(t, nil, 0, 2)
	r.err = errors.New("terminal gone")

	ok, err := p.Process([]byte("CSI_DATA,[3 4]"))
	if !ok {
		t.Error("Expected the sample to be appended before rendering")
	}
	if !errors.Is(err, r.err) {
		t.Errorf("Expected render error, got %v", err)
	}
}

func TestRunSlidesWindow(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	src := &fakeSource{cancel: cancel, reads: []read{
		{line: "CSI_DATA,[3 4]"},
		{err: serialport.ErrTimeout},
		{line: "noise"},
		{line: "CSI_DATA,[6 8]"},
		{line: "CSI_DATA,[0 1]"},
	}}
	p, r := newTestPump(t, src, 0, 2)

	if err := p.Run(ctx); err != nil {
		t.Fatalf("Expected clean stop, got %v", err)
	}

	want := [][]float64{{0, 5}, {5, 10}, {10, 1}}
	if len(r.frames) != len(want) {
		t.Fatalf("Expected %d renders, got %d", len(want), len(r.frames))
	}
	for i := range want {
		if !equal(r.frames[i], want[i]) {
			t.Errorf("Render %d: expected %v, got %v", i, want[i], r.frames[i])
		}
	}
	if s := p.Stats(); s.Timeouts < 1 || s.Lines != 4 {
		t.Errorf("Unexpected stats: %+v", s)
	}
}

func TestRunStopsOnCancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	src := &fakeSource{reads: []read{{line: "CSI_DATA,[3 4]"}}}
	p, r := newTestPump(t, src, 0, 2)

	if err := p.Run(ctx); err != nil {
		t.Fatalf("Expected nil on cancel, got %v", err)
	}
	if len(r.frames) != 0 {
		t.Errorf("Expected no renders after cancel, got %d", len(r.frames))
	}
}

func TestRunReturnsReadError(t *testing.T) {
	boom := errors.New("device unplugged")
	src := &fakeSource{reads: []read{{line: "CSI_DATA,[3 4]"}, {err: boom}}}
	p, r := newTestPump(t, src, 0, 2)

	err := p.Run(context.Background())
	if !errors.Is(err, boom) {
		t.Fatalf("Expected device error, got %v", err)
	}
	if len(r.frames) != 1 {
		t.Errorf("Expected 1 render before the error, got %d", len(r.frames))
	}
}
