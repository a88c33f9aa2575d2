// Package frame turns a continuous sample stream into a sequence of
// overlapping Hann-enveloped windows.
package frame

import (
	"fmt"

	"pipelined.dev/vocoder/signal"
	"pipelined.dev/vocoder/window"
)

// Window is a fixed-length enveloped slice of the input stream. It's owned
// by a single stage at a time and never modified after it's produced.
type Window struct {
	// Start is the index of the first input sample covered by the window.
	// Windows that start in the lead-in padding have negative start.
	Start int
	// Final is set for the last window of a bounded stream.
	Final bool
	// InputLength is the total number of input samples per channel. It's
	// only valid when Final is set.
	InputLength int
	Channels    signal.Float64
}

// Framer accumulates input samples and cuts them into windows of length
// n advancing by hop samples. The stream is preceded with n-hop zeros, so
// every input sample is covered by the same number of windows, and the
// tail is padded with zeros when the stream ends.
type Framer struct {
	n        int
	hop      int
	lead     int
	envelope []float64

	buf   signal.Float64
	start int // input index of buf[c][0]
	read  int // total input samples received
	done  bool
}

// NewFramer returns framer for a signal with provided number of channels.
func NewFramer(numChannels, n, hop int) *Framer {
	if hop < 1 || hop >= n {
		panic(fmt.Sprintf("frame: invalid hop %d for window %d", hop, n))
	}
	lead := n - hop
	buf := signal.EmptyFloat64(numChannels, lead)
	return &Framer{
		n:        n,
		hop:      hop,
		lead:     lead,
		envelope: window.Hann(n),
		buf:      buf,
		start:    -lead,
	}
}

// Lead returns the number of zero samples preceding the stream.
func (f *Framer) Lead() int {
	return f.lead
}

// Push appends input samples and returns all windows that are complete.
func (f *Framer) Push(in signal.Float64) []Window {
	if f.done {
		panic("frame: push after flush")
	}
	if in.NumChannels() != f.buf.NumChannels() {
		panic(fmt.Sprintf("frame: got %d channels, want %d", in.NumChannels(), f.buf.NumChannels()))
	}
	size := in.Size()
	if size == 0 {
		return nil
	}
	f.buf = f.buf.Append(in)
	f.read += size

	var windows []Window
	for f.buf.Size() >= f.n {
		windows = append(windows, f.cut())
	}
	return windows
}

// Flush ends the stream and returns remaining windows, padding the tail
// with zeros. The last window is marked as final. Flush returns nothing
// if no samples were pushed.
func (f *Framer) Flush() []Window {
	if f.done {
		return nil
	}
	f.done = true
	if f.read == 0 {
		return nil
	}
	var windows []Window
	for f.start < f.read {
		if pad := f.n - f.buf.Size(); pad > 0 {
			f.buf = f.buf.Append(signal.EmptyFloat64(f.buf.NumChannels(), pad))
		}
		windows = append(windows, f.cut())
	}
	last := &windows[len(windows)-1]
	last.Final = true
	last.InputLength = f.read
	return windows
}

// cut returns the window at the head of the buffer and advances it by hop.
func (f *Framer) cut() Window {
	channels := make(signal.Float64, f.buf.NumChannels())
	for c := range channels {
		channels[c] = make([]float64, f.n)
		copy(channels[c], f.buf[c][:f.n])
		window.Apply(channels[c], f.envelope)
	}
	w := Window{
		Start:    f.start,
		Channels: channels,
	}
	for c := range f.buf {
		f.buf[c] = append(f.buf[c][:0], f.buf[c][f.hop:]...)
	}
	f.start += f.hop
	return w
}
