// Package window provides envelopes applied to analysis and synthesis
// frames.
package window

import (
	"fmt"

	"github.com/mjibson/go-dsp/window"
)

// Hann returns a periodic Hann window of length n:
//
//	w[i] = 0.5 - 0.5*cos(2*pi*i/n)
//
// Periodic window is a symmetric window of length n+1 without the last
// point. Squared periodic Hann sums to a constant 1.5 when overlapped with
// hop n/4, which is required for exact overlap-add reconstruction.
func Hann(n int) []float64 {
	if n < 1 {
		panic(fmt.Sprintf("window: invalid length %d", n))
	}
	return window.Hann(n + 1)[:n]
}

// Squared returns a new slice with squared values of w.
func Squared(w []float64) []float64 {
	sq := make([]float64, len(w))
	for i, v := range w {
		sq[i] = v * v
	}
	return sq
}

// Apply multiplies dst by w element-wise. Lengths must match.
func Apply(dst, w []float64) {
	if len(dst) != len(w) {
		panic(fmt.Sprintf("window: buffer length %d doesn't match window length %d", len(dst), len(w)))
	}
	for i := range dst {
		dst[i] *= w[i]
	}
}
