package resynth

// Resampler applies pitch multiple to the overlap-added stream. Positive
// multiple p keeps every p-th sample, negative multiple inserts |p|-1
// linearly interpolated samples after every sample. Multiples 1 and -1
// pass samples through.
type Resampler struct {
	pitch  int
	phase  int
	prev   float64
	primed bool
}

// NewResampler returns resampler for the pitch multiple.
func NewResampler(pitch int) *Resampler {
	return &Resampler{pitch: pitch}
}

// Process resamples next block of the stream.
func (r *Resampler) Process(in []float64) []float64 {
	switch {
	case r.pitch > 1:
		out := make([]float64, 0, len(in)/r.pitch+1)
		for _, v := range in {
			if r.phase == 0 {
				out = append(out, v)
			}
			r.phase = (r.phase + 1) % r.pitch
		}
		return out
	case r.pitch < -1:
		q := -r.pitch
		out := make([]float64, 0, len(in)*q)
		for _, v := range in {
			if r.primed {
				out = r.interpolate(out, v)
			}
			r.prev, r.primed = v, true
		}
		return out
	}
	out := make([]float64, len(in))
	copy(out, in)
	return out
}

// Flush returns samples held back by interpolation.
func (r *Resampler) Flush() []float64 {
	if r.pitch >= -1 || !r.primed {
		return nil
	}
	r.primed = false
	return r.interpolate(nil, r.prev)
}

func (r *Resampler) interpolate(out []float64, next float64) []float64 {
	q := -r.pitch
	for j := 0; j < q; j++ {
		out = append(out, r.prev+(next-r.prev)*float64(j)/float64(q))
	}
	return out
}
