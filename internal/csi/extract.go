package csi

import (
	"errors"
	"fmt"
	"math"
)

// ErrIndexOutOfRange is returned when a frame is too short for the requested subcarrier
var ErrIndexOutOfRange = errors.New("subcarrier index out of range")

// Extract returns the amplitude sqrt(real^2 + imag^2) of the subcarrier at index.
// Components are widened to float64 before squaring.
func Extract(frame Frame, index int) (float64, error) {
	if index < 0 || index >= len(frame.Values)/2 {
		return 0, fmt.Errorf("%w: index %d, frame has %d values", ErrIndexOutOfRange, index, len(frame.Values))
	}

	re := float64(frame.Values[2*index])
	im := float64(frame.Values[2*index+1])
	return math.Hypot(re, im), nil
}
