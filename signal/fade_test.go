package signal_test

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"

	"pipelined.dev/vocoder/signal"
)

func ones(channels, size int) signal.Float64 {
	floats := signal.EmptyFloat64(channels, size)
	for i := range floats {
		for j := range floats[i] {
			floats[i][j] = 1
		}
	}
	return floats
}

func TestFader(t *testing.T) {
	t.Run("in and out", func(t *testing.T) {
		f := signal.NewFader(4, 4, 12)
		// split into uneven blocks to cross fade boundaries
		a, b, c := ones(2, 5), ones(2, 3), ones(2, 4)
		f.Apply(a)
		f.Apply(b)
		f.Apply(c)
		assert.Equal(t, 0.0, a[0][0])
		assert.InDelta(t, math.Sqrt(0.25), a[1][1], 1e-12)
		assert.InDelta(t, math.Sqrt(0.75), a[0][3], 1e-12)
		assert.Equal(t, 1.0, a[0][4])
		assert.Equal(t, signal.Float64{{1, 1, 1}, {1, 1, 1}}, b)
		assert.Equal(t, 1.0, c[0][0])
		assert.InDelta(t, math.Sqrt(0.25), c[1][3], 1e-12)
	})
	t.Run("unknown total", func(t *testing.T) {
		f := signal.NewFader(2, 100, -1)
		a := ones(1, 300)
		f.Apply(a)
		assert.Equal(t, 0.0, a[0][0])
		assert.Equal(t, 1.0, a[0][299])
	})
	t.Run("short signal", func(t *testing.T) {
		f := signal.NewFader(10, 10, 4)
		a := ones(1, 4)
		f.Apply(a)
		assert.Equal(t, 0.0, a[0][0])
		assert.InDelta(t, math.Sqrt(0.5), a[0][1], 1e-12)
		assert.InDelta(t, 1.0, a[0][2], 1e-12)
		assert.InDelta(t, math.Sqrt(0.5), a[0][3], 1e-12)
	})
	t.Run("disabled", func(t *testing.T) {
		f := signal.NewFader(0, 0, 3)
		a := ones(1, 3)
		f.Apply(a)
		assert.Equal(t, signal.Float64{{1, 1, 1}}, a)
	})
}
