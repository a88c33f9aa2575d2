package window_test

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"

	"pipelined.dev/vocoder/window"
)

func TestHann(t *testing.T) {
	n := 16
	w := window.Hann(n)
	assert.Len(t, w, n)
	for i := range w {
		expected := 0.5 - 0.5*math.Cos(2*math.Pi*float64(i)/float64(n))
		assert.InDelta(t, expected, w[i], 1e-12)
	}
	assert.InDelta(t, 0, w[0], 1e-12)
	assert.InDelta(t, 1, w[n/2], 1e-12)
}

func TestSquaredOverlapAdd(t *testing.T) {
	for _, n := range []int{16, 64, 1024} {
		sq := window.Squared(window.Hann(n))
		hop := n / 4
		for i := 0; i < hop; i++ {
			var sum float64
			for k := 0; k < 4; k++ {
				sum += sq[i+k*hop]
			}
			assert.InDelta(t, 1.5, sum, 1e-12, "window %d offset %d", n, i)
		}
	}
}

func TestApply(t *testing.T) {
	buf := []float64{1, 2, 3}
	window.Apply(buf, []float64{0, 0.5, 1})
	assert.Equal(t, []float64{0, 1, 3}, buf)
	assert.Panics(t, func() { window.Apply(buf, []float64{1}) })
	assert.Panics(t, func() { window.Hann(0) })
}
