package spectral_test

import (
	"math"
	"math/cmplx"
	"testing"

	"github.com/stretchr/testify/assert"

	"pipelined.dev/vocoder/frame"
	"pipelined.dev/vocoder/signal"
	"pipelined.dev/vocoder/spectral"
)

func TestAnalyze(t *testing.T) {
	const (
		n          = 64
		sampleRate = 1000
	)
	// cosine at bin 4
	in := signal.EmptyFloat64(2, n)
	for i := 0; i < n; i++ {
		in[0][i] = math.Cos(2 * math.Pi * 4 * float64(i) / n)
	}
	a := spectral.NewAnalyzer(n, sampleRate)

	f := a.Analyze(frame.Window{Start: -10, Channels: in})
	assert.Equal(t, uint64(0), f.Seq)
	assert.Equal(t, uint64(0), f.ElapsedMs)
	assert.Len(t, f.Bins, 2)
	assert.InDelta(t, n/2, cmplx.Abs(f.Bins[0][4]), 1e-9)
	assert.InDelta(t, n/2, cmplx.Abs(f.Bins[0][n-4]), 1e-9)
	assert.InDelta(t, 0, cmplx.Abs(f.Bins[0][5]), 1e-9)
	assert.InDelta(t, 0, cmplx.Abs(f.Bins[1][4]), 1e-9)

	f = a.Analyze(frame.Window{Start: 1500, Final: true, InputLength: 1600, Channels: in})
	assert.Equal(t, uint64(1), f.Seq)
	assert.Equal(t, uint64(1500), f.ElapsedMs)
	assert.True(t, f.Final)
	assert.Equal(t, 1600, f.InputLength)

	assert.Panics(t, func() {
		a.Analyze(frame.Window{Channels: signal.EmptyFloat64(1, n-1)})
	})
}

func TestSynthesizeInverse(t *testing.T) {
	const n = 32
	in := signal.EmptyFloat64(1, n)
	for i := range in[0] {
		in[0][i] = math.Sin(float64(i)) * 0.5
	}
	f := spectral.NewAnalyzer(n, 44100).Analyze(frame.Window{Channels: in})
	out := make([]float64, n)
	spectral.Synthesize(f.Bins[0], out)
	assert.InDeltaSlice(t, in[0], out, 1e-12)
	assert.Panics(t, func() { spectral.Synthesize(f.Bins[0], out[1:]) })
}

func TestElapsedMs(t *testing.T) {
	assert.Equal(t, uint64(0), spectral.ElapsedMs(-100, 44100))
	assert.Equal(t, uint64(1000), spectral.ElapsedMs(44100, 44100))
	assert.Equal(t, uint64(22), spectral.ElapsedMs(1000, 44100))
}
