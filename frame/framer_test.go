package frame_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"pipelined.dev/vocoder/frame"
	"pipelined.dev/vocoder/signal"
	"pipelined.dev/vocoder/window"
)

func ramp(channels, size int) signal.Float64 {
	floats := signal.EmptyFloat64(channels, size)
	for c := range floats {
		for i := range floats[c] {
			floats[c][i] = float64(c*1000 + i + 1)
		}
	}
	return floats
}

func collect(f *frame.Framer, in signal.Float64, block int) []frame.Window {
	var windows []frame.Window
	for i := 0; i < in.Size(); i += block {
		windows = append(windows, f.Push(in.Slice(i, block))...)
	}
	return append(windows, f.Flush()...)
}

func TestFramer(t *testing.T) {
	const (
		n   = 16
		hop = 4
	)
	tests := []struct {
		length int
		block  int
	}{
		{length: 16, block: 16},
		{length: 17, block: 3},
		{length: 100, block: 7},
		{length: 3, block: 1},
	}
	envelope := window.Hann(n)
	for _, test := range tests {
		in := ramp(2, test.length)
		f := frame.NewFramer(2, n, hop)
		assert.Equal(t, n-hop, f.Lead())
		windows := collect(f, in, test.block)

		// windows start at k*hop-lead while start < length
		expected := (test.length + f.Lead() + hop - 1) / hop
		require.Len(t, windows, expected, "length %d", test.length)
		for k, w := range windows {
			assert.Equal(t, k*hop-f.Lead(), w.Start)
			assert.Equal(t, k == len(windows)-1, w.Final)
			for c := range w.Channels {
				require.Len(t, w.Channels[c], n)
				for i := range w.Channels[c] {
					pos := w.Start + i
					var sample float64
					if pos >= 0 && pos < test.length {
						sample = in[c][pos]
					}
					assert.InDelta(t, sample*envelope[i], w.Channels[c][i], 1e-12)
				}
			}
		}
		assert.Equal(t, test.length, windows[len(windows)-1].InputLength)
	}
}

func TestFramerEmpty(t *testing.T) {
	f := frame.NewFramer(1, 16, 4)
	assert.Empty(t, f.Push(signal.EmptyFloat64(1, 0)))
	assert.Empty(t, f.Flush())
	assert.Empty(t, f.Flush())
	assert.Panics(t, func() { f.Push(ramp(1, 1)) })
}

func TestFramerChannelMismatch(t *testing.T) {
	f := frame.NewFramer(2, 16, 4)
	assert.Panics(t, func() { f.Push(ramp(1, 4)) })
	assert.Panics(t, func() { frame.NewFramer(1, 16, 17) })
}
