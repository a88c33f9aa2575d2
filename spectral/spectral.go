// Package spectral converts enveloped windows into spectral frames and
// back.
package spectral

import (
	"fmt"

	"github.com/mjibson/go-dsp/fft"

	"pipelined.dev/vocoder/frame"
)

// Frame is a spectrum of a single window. Bins has window length complex
// values per channel.
type Frame struct {
	// Seq is a zero-based sequence number. Frames are resynthesized in
	// sequence order.
	Seq uint64
	// ElapsedMs is input time of the window in milliseconds.
	ElapsedMs uint64
	// Final and InputLength are carried from the last window of a bounded
	// stream.
	Final       bool
	InputLength int
	Bins        [][]complex128
}

// Analyzer transforms windows into frames.
type Analyzer struct {
	windowLen  int
	sampleRate int
	seq        uint64
}

// NewAnalyzer returns analyzer for windows of provided length.
func NewAnalyzer(windowLen, sampleRate int) *Analyzer {
	return &Analyzer{
		windowLen:  windowLen,
		sampleRate: sampleRate,
	}
}

// Analyze returns the spectrum of the window and assigns the next sequence
// number. It panics if window has unexpected length.
func (a *Analyzer) Analyze(w frame.Window) Frame {
	bins := make([][]complex128, len(w.Channels))
	for c := range w.Channels {
		if len(w.Channels[c]) != a.windowLen {
			panic(fmt.Sprintf("spectral: window length %d, want %d", len(w.Channels[c]), a.windowLen))
		}
		bins[c] = fft.FFTReal(w.Channels[c])
	}
	f := Frame{
		Seq:         a.seq,
		ElapsedMs:   ElapsedMs(w.Start, a.sampleRate),
		Final:       w.Final,
		InputLength: w.InputLength,
		Bins:        bins,
	}
	a.seq++
	return f
}

// ElapsedMs returns time of the sample in milliseconds. Samples before the
// beginning of the stream have zero time.
func ElapsedMs(sample, sampleRate int) uint64 {
	if sample <= 0 || sampleRate <= 0 {
		return 0
	}
	return uint64(sample) * 1000 / uint64(sampleRate)
}

// Synthesize writes the real part of inverse transform of bins into dst.
func Synthesize(bins []complex128, dst []float64) {
	if len(bins) != len(dst) {
		panic(fmt.Sprintf("spectral: %d bins for %d samples", len(bins), len(dst)))
	}
	for i, v := range fft.IFFT(bins) {
		dst[i] = real(v)
	}
}
