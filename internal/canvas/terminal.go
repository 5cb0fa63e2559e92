package canvas

import (
	"fmt"
	"sync"

	"github.com/nsf/termbox-go"
)

// Terminal is a Grid presented through termbox. The grid is sized to the
// terminal when opened; later resizes do not change the layout.
type Terminal struct {
	*Grid

	mu       sync.Mutex
	watching bool
	done     chan struct{}
}

// OpenTerminal takes over the terminal and returns a surface covering it
func OpenTerminal(style Style) (*Terminal, error) {
	if err := termbox.Init(); err != nil {
		return nil, fmt.Errorf("failed to initialize terminal: %w", err)
	}
	termbox.SetInputMode(termbox.InputEsc)
	termbox.HideCursor()

	width, height := termbox.Size()
	return &Terminal{Grid: NewGrid(width, height, style)}, nil
}

// Present copies the dirty region into termbox's back buffer and flushes it.
// termbox only writes cells that differ from the screen.
func (t *Terminal) Present() error {
	if t.closed {
		return ErrClosed
	}
	width, _ := termbox.Size()
	t.flush(termbox.CellBuffer(), width)
	if err := termbox.Flush(); err != nil {
		return fmt.Errorf("failed to flush terminal: %w", err)
	}
	return nil
}

// WatchKeys calls onStop whenever the operator presses Esc, q or Ctrl-C.
// The raw-mode terminal swallows Ctrl-C, so this is how an interrupt arrives.
func (t *Terminal) WatchKeys(onStop func()) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.watching || t.closed {
		return
	}
	t.watching = true
	t.done = make(chan struct{})

	go func() {
		defer close(t.done)
		for {
			ev := termbox.PollEvent()
			switch ev.Type {
			case termbox.EventInterrupt:
				return
			case termbox.EventKey:
				if ev.Key == termbox.KeyEsc || ev.Key == termbox.KeyCtrlC || ev.Ch == 'q' {
					onStop()
				}
			}
		}
	}()
}

// Close stops the key watcher and restores the terminal
func (t *Terminal) Close() error {
	t.mu.Lock()
	if t.closed {
		t.mu.Unlock()
		return nil
	}
	t.Grid.Close()
	watching := t.watching
	t.mu.Unlock()

	// The watcher only exits on interrupt, so it is still polling here
	if watching {
		termbox.Interrupt()
		<-t.done
	}
	termbox.Close()
	return nil
}
