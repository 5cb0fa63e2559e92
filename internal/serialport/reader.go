package serialport

import (
	"bytes"
	"errors"
	"io"
)

// ErrTimeout is returned by ReadLine when the read timeout elapsed before a
// complete line arrived. Bytes of a partial line are kept for the next call.
var ErrTimeout = errors.New("read timeout")

const readChunk = 512

// LineReader splits a byte stream into '\n'-terminated lines.
//
// A Read returning (0, nil) is treated as a timeout, which is how
// go.bug.st/serial reports an elapsed read timeout. Lines longer than the
// configured maximum are dropped up to the next terminator.
type LineReader struct {
	r          io.Reader
	buf        []byte
	off        int // start of unconsumed data in buf
	maxLine    int
	discarding bool // inside an overlong line
	chunk      [readChunk]byte
}

// NewLineReader creates a line reader over r; maxLine <= 0 means no limit
func NewLineReader(r io.Reader, maxLine int) *LineReader {
	return &LineReader{r: r, maxLine: maxLine}
}

// ReadLine returns the next line without its terminator. The slice is only
// valid until the next call.
func (l *LineReader) ReadLine() ([]byte, error) {
	for {
		if line, ok := l.nextLine(); ok {
			return line, nil
		}

		l.compact()
		n, err := l.r.Read(l.chunk[:])
		if n > 0 {
			l.buf = append(l.buf, l.chunk[:n]...)
			l.trim()
		}
		if err != nil {
			if errors.Is(err, io.EOF) && l.off < len(l.buf) && !l.discarding {
				// Final unterminated line
				line := l.buf[l.off:]
				l.off = len(l.buf)
				return line, nil
			}
			return nil, err
		}
		if n == 0 {
			return nil, ErrTimeout
		}
	}
}

// nextLine pops a complete line from the buffer, skipping the tail of a
// discarded overlong line.
func (l *LineReader) nextLine() ([]byte, bool) {
	for {
		i := bytes.IndexByte(l.buf[l.off:], '\n')
		if i < 0 {
			return nil, false
		}
		line := l.buf[l.off : l.off+i]
		l.off += i + 1
		if l.discarding {
			l.discarding = false
			continue
		}
		if l.maxLine > 0 && len(line) > l.maxLine {
			continue
		}
		return line, true
	}
}

// compact moves unconsumed bytes to the front of the buffer
func (l *LineReader) compact() {
	if l.off == 0 {
		return
	}
	n := copy(l.buf, l.buf[l.off:])
	l.buf = l.buf[:n]
	l.off = 0
}

// trim drops a pending partial line once it exceeds the maximum length
func (l *LineReader) trim() {
	if l.maxLine <= 0 {
		return
	}
	pending := l.buf[l.off:]
	if bytes.IndexByte(pending, '\n') >= 0 || len(pending) <= l.maxLine {
		return
	}
	l.buf = l.buf[:l.off]
	l.discarding = true
}
