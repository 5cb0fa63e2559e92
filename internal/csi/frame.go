// Package csi parses channel state information lines emitted by ESP32 CSI
// firmware and derives per-subcarrier amplitudes from them.
//
// A relevant line carries the marker token and ends with a bracketed list of
// interleaved (real, imaginary) integers, one pair per subcarrier:
//
//	CSI_DATA,STA,aa:bb:cc:dd:ee:ff,-45,11,...,128,[3 4 -12 7 ...]
package csi

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
)

// Marker is the token that identifies CSI lines on the console stream
const Marker = "CSI_DATA"

var (
	// ErrNotAFrame is returned for lines without the marker token (banners, logs)
	ErrNotAFrame = errors.New("not a CSI frame")
	// ErrMalformedNumeric is returned when a payload token is not an integer
	ErrMalformedNumeric = errors.New("malformed numeric token")
)

// Frame is one parsed CSI line
type Frame struct {
	Values []int // Interleaved real/imaginary components in wire order
}

// Pairs returns the number of complete (real, imaginary) pairs in the frame
func (f Frame) Pairs() int {
	return len(f.Values) / 2
}

// Parser recognises CSI lines by their marker token
type Parser struct {
	marker string
}

// NewParser creates a parser for the given marker; an empty marker selects Marker
func NewParser(marker string) *Parser {
	if marker == "" {
		marker = Marker
	}
	return &Parser{marker: marker}
}

// Parse parses a line using the default marker
func Parse(line string) (Frame, error) {
	return NewParser(Marker).Parse(line)
}

// Parse turns one text line into a Frame.
//
// The payload is the last comma-separated field with its brackets removed.
// Frame length is not checked: truncated frames are normal under packet loss.
func (p *Parser) Parse(line string) (Frame, error) {
	if !strings.Contains(line, p.marker) {
		return Frame{}, ErrNotAFrame
	}

	payload := line
	if i := strings.LastIndexByte(line, ','); i >= 0 {
		payload = line[i+1:]
	}
	payload = strings.TrimSpace(payload)
	payload = strings.TrimPrefix(payload, "[")
	payload = strings.TrimSuffix(payload, "]")

	tokens := strings.Fields(payload)
	values := make([]int, len(tokens))
	for i, tok := range tokens {
		v, err := strconv.Atoi(tok)
		if err != nil {
			return Frame{}, fmt.Errorf("%w: token %d %q", ErrMalformedNumeric, i, tok)
		}
		values[i] = v
	}

	return Frame{Values: values}, nil
}
