package signal

import "math"

// Fader applies fade-in at the beginning of the signal and fade-out at
// the end of it. Gain follows a square-root curve, so the perceived
// loudness ramps evenly. Fade-out is only applied when the total length
// of the signal is known.
type Fader struct {
	in    int
	out   int
	total int
	pos   int
}

// NewFader returns fader for fade-in and fade-out lengths in samples.
// Negative total means the length of the signal is unknown.
func NewFader(in, out, total int) *Fader {
	if total >= 0 {
		// fades can't overlap
		if in > total/2 {
			in = total / 2
		}
		if out > total-in {
			out = total - in
		}
	}
	return &Fader{
		in:    in,
		out:   out,
		total: total,
	}
}

// Apply shapes the buffer and advances the fader position.
func (f *Fader) Apply(floats Float64) {
	size := floats.Size()
	if size == 0 {
		return
	}
	outStart := math.MaxInt
	if f.total >= 0 {
		outStart = f.total - f.out
	}
	if f.pos >= f.in && f.pos+size <= outStart {
		f.pos += size
		return
	}
	for i := 0; i < size; i++ {
		g := f.gain(f.pos+i, outStart)
		if g == 1 {
			continue
		}
		for c := range floats {
			floats[c][i] *= g
		}
	}
	f.pos += size
}

func (f *Fader) gain(pos, outStart int) float64 {
	switch {
	case pos < f.in:
		return math.Sqrt(float64(pos) / float64(f.in))
	case pos >= outStart:
		if pos >= f.total {
			return 0
		}
		return math.Sqrt(float64(f.total-pos) / float64(f.out))
	}
	return 1
}
