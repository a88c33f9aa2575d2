// Package resynth reconstructs a continuous stream from spectral frames
// with overlap-add. Decoupled analysis and synthesis hops stretch the
// stream in time, resampling afterwards shifts its pitch.
package resynth

import (
	"fmt"
	"math"
	"math/cmplx"
	"math/rand/v2"

	"pipelined.dev/vocoder/signal"
	"pipelined.dev/vocoder/spectral"
	"pipelined.dev/vocoder/window"
)

// Kernel transforms frames before resynthesis.
type Kernel interface {
	Apply(*spectral.Frame) error
}

// Config describes resynthesizer.
type Config struct {
	WindowLen int
	Channels  int
	Hops      Hops
	// RandomPhase replaces phase of every bin with a random one. It
	// smears transients, which is desired for extreme stretching.
	RandomPhase bool
	Seed        uint64
}

// Resynthesizer overlap-adds frames into a stream. Frames must be
// processed in sequence order, starting from zero. It is not safe for
// concurrent use.
type Resynthesizer struct {
	hops     Hops
	kernel   Kernel
	envelope []float64
	weights  []float64
	scratch  []float64
	random   *rand.Rand

	accumulators []*Accumulator
	resamplers   []*Resampler

	lead int // stretched samples produced by lead-in padding
	end  int // end of stretched stream, -1 if unknown
	next uint64
	done bool
}

// New returns resynthesizer. Nil kernel leaves frames untouched.
func New(cfg Config, kernel Kernel) *Resynthesizer {
	envelope := window.Hann(cfg.WindowLen)
	r := Resynthesizer{
		hops:         cfg.Hops,
		kernel:       kernel,
		envelope:     envelope,
		weights:      window.Squared(envelope),
		scratch:      make([]float64, cfg.WindowLen),
		accumulators: make([]*Accumulator, cfg.Channels),
		resamplers:   make([]*Resampler, cfg.Channels),
		lead:         cfg.Hops.scale(cfg.WindowLen - cfg.Hops.Analysis),
		end:          -1,
	}
	for c := 0; c < cfg.Channels; c++ {
		r.accumulators[c] = NewAccumulator(2 * cfg.WindowLen)
		r.resamplers[c] = NewResampler(cfg.Hops.Pitch)
	}
	if cfg.RandomPhase {
		r.random = rand.New(rand.NewPCG(cfg.Seed, cfg.Seed^0x9e3779b97f4a7c15))
	}
	return &r
}

// Process applies kernel to the frame, overlap-adds it and returns the
// part of output stream that can't be changed by further frames. Returned
// buffer may be empty. Kernel errors are returned as is, the frame is
// dropped in that case.
func (r *Resynthesizer) Process(f *spectral.Frame) (signal.Float64, error) {
	if r.done {
		panic("resynth: process after flush")
	}
	if f.Seq != r.next {
		panic(fmt.Sprintf("resynth: frame %d out of order, want %d", f.Seq, r.next))
	}
	if len(f.Bins) != len(r.accumulators) {
		panic(fmt.Sprintf("resynth: frame with %d channels, want %d", len(f.Bins), len(r.accumulators)))
	}
	r.next++
	if r.kernel != nil {
		if err := r.kernel.Apply(f); err != nil {
			return nil, err
		}
	}

	pos := int(f.Seq) * r.hops.Synthesis
	for c, bins := range f.Bins {
		if r.random != nil {
			randomizePhase(bins, r.random)
		}
		spectral.Synthesize(bins, r.scratch)
		window.Apply(r.scratch, r.envelope)
		r.accumulators[c].Add(pos, r.scratch, r.weights)
	}

	// next frame starts at the next synthesis hop
	upTo := pos + r.hops.Synthesis
	if f.Final {
		r.end = r.lead + r.hops.StretchedLength(f.InputLength)
		upTo = r.end
	}
	return r.emit(upTo), nil
}

// Flush finalizes everything that is accumulated and returns the rest of
// output stream.
func (r *Resynthesizer) Flush() signal.Float64 {
	if r.done {
		return nil
	}
	r.done = true
	upTo := r.end
	if upTo < 0 && len(r.accumulators) > 0 {
		upTo = r.accumulators[0].End()
	}
	out := r.emit(upTo)
	for c := range out {
		out[c] = append(out[c], r.resamplers[c].Flush()...)
	}
	return out
}

// emit finalizes accumulated stream up to provided position, drops the
// lead-in and resamples the result.
func (r *Resynthesizer) emit(upTo int) signal.Float64 {
	if r.end >= 0 && upTo > r.end {
		upTo = r.end
	}
	out := make(signal.Float64, len(r.accumulators))
	for c, acc := range r.accumulators {
		origin := acc.Origin()
		samples := acc.Finalize(upTo)
		if drop := r.lead - origin; drop > 0 {
			samples = samples[min(drop, len(samples)):]
		}
		out[c] = r.resamplers[c].Process(samples)
	}
	return out
}

func randomizePhase(bins []complex128, random *rand.Rand) {
	for i, v := range bins {
		bins[i] = cmplx.Rect(cmplx.Abs(v), random.Float64()*2*math.Pi)
	}
}
