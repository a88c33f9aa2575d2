package resynth

import (
	"errors"
	"fmt"
	"math"
)

// Overlap is the number of windows covering every sample when stretch
// ratio is 1.
const Overlap = 4

// ErrInvalidHops is returned when hop pair can't be derived from the
// parameters.
var ErrInvalidHops = errors.New("invalid hop parameters")

// Hops is a pair of analysis and synthesis hops together with the pitch
// multiple applied after overlap-add.
//
// Stretch ratio Synthesis/Analysis equals factor*p for harmonic shift and
// factor/|p| for subharmonic one. The overlap-added stream is then
// resampled by p, so the duration is scaled by factor and the pitch by p
// (or 1/|p|).
type Hops struct {
	Analysis  int
	Synthesis int
	Pitch     int
}

// NewHops derives hops for the window length, stretch factor and pitch
// multiple. The larger of two hops is always windowLen/Overlap, so the
// stretch ratio is limited to [Overlap/windowLen, windowLen/Overlap].
func NewHops(windowLen int, factor float64, pitch int) (Hops, error) {
	base := windowLen / Overlap
	switch {
	case base < 1:
		return Hops{}, fmt.Errorf("%w: window length %d", ErrInvalidHops, windowLen)
	case pitch == 0:
		return Hops{}, fmt.Errorf("%w: zero pitch multiple", ErrInvalidHops)
	case !(factor > 0) || math.IsInf(factor, 0):
		return Hops{}, fmt.Errorf("%w: stretch factor %v", ErrInvalidHops, factor)
	}

	ratio := factor * float64(pitch)
	if pitch < 0 {
		ratio = factor / float64(-pitch)
	}
	// the smaller hop can't go below one sample
	if lo, hi := 1/float64(base), float64(base); ratio < lo || ratio > hi {
		return Hops{}, fmt.Errorf("%w: stretch ratio %v is out of supported range [%v, %v] for window length %d",
			ErrInvalidHops, ratio, lo, hi, windowLen)
	}
	h := Hops{
		Analysis:  base,
		Synthesis: base,
		Pitch:     pitch,
	}
	if ratio >= 1 {
		h.Analysis = int(math.Round(float64(base) / ratio))
	} else {
		h.Synthesis = int(math.Round(float64(base) * ratio))
	}
	return h, nil
}

// Ratio returns realized stretch ratio of overlap-add.
func (h Hops) Ratio() float64 {
	return float64(h.Synthesis) / float64(h.Analysis)
}

// scale converts the number of input samples into number of stretched
// samples.
func (h Hops) scale(samples int) int {
	return int(math.Round(float64(samples) * h.Ratio()))
}

// StretchedLength returns the number of overlap-added samples for the
// input of provided length.
func (h Hops) StretchedLength(input int) int {
	return h.scale(input)
}

// OutputLength returns the number of output samples for the input of
// provided length. Negative input means unknown length and is returned
// as is.
func (h Hops) OutputLength(input int) int {
	if input < 0 {
		return input
	}
	stretched := h.StretchedLength(input)
	switch {
	case h.Pitch > 1:
		return (stretched + h.Pitch - 1) / h.Pitch
	case h.Pitch < -1:
		return stretched * -h.Pitch
	}
	return stretched
}
