package resynth

import "fmt"

// weightFloor is the smallest accumulated weight that is normalized.
// Samples with lower weight are not covered by any window and are
// emitted as silence.
const weightFloor = 1e-9

// Accumulator is an overlap-add buffer. It keeps sums of samples and
// envelope weights for the positions that are not finalized yet. Positions
// are absolute indices of the stretched stream.
type Accumulator struct {
	origin int
	sum    []float64
	weight []float64
}

// NewAccumulator returns accumulator with preallocated capacity.
func NewAccumulator(capacity int) *Accumulator {
	return &Accumulator{
		sum:    make([]float64, 0, capacity),
		weight: make([]float64, 0, capacity),
	}
}

// Origin returns the first position that is not finalized.
func (a *Accumulator) Origin() int {
	return a.origin
}

// End returns the position after the last one that received
// contributions.
func (a *Accumulator) End() int {
	return a.origin + len(a.sum)
}

// Add sums samples and weights into positions starting at pos. It panics
// if any of positions is already finalized.
func (a *Accumulator) Add(pos int, samples, weights []float64) {
	if len(samples) != len(weights) {
		panic(fmt.Sprintf("resynth: %d samples with %d weights", len(samples), len(weights)))
	}
	if pos < a.origin {
		panic(fmt.Sprintf("resynth: accumulator underflow: add at %d, finalized up to %d", pos, a.origin))
	}
	offset := pos - a.origin
	if end := offset + len(samples); end > len(a.sum) {
		a.sum = grow(a.sum, end)
		a.weight = grow(a.weight, end)
	}
	for i := range samples {
		a.sum[offset+i] += samples[i]
		a.weight[offset+i] += weights[i]
	}
}

// Finalize returns normalized samples for positions [Origin(), upTo) and
// evicts them. Positions without contributions are returned as zeros.
func (a *Accumulator) Finalize(upTo int) []float64 {
	n := upTo - a.origin
	if n <= 0 {
		return nil
	}
	out := make([]float64, n)
	for i := 0; i < n && i < len(a.sum); i++ {
		if a.weight[i] > weightFloor {
			out[i] = a.sum[i] / a.weight[i]
		}
	}
	a.sum = evict(a.sum, n)
	a.weight = evict(a.weight, n)
	a.origin = upTo
	return out
}

func grow(s []float64, size int) []float64 {
	for len(s) < size {
		s = append(s, 0)
	}
	return s
}

func evict(s []float64, n int) []float64 {
	if n >= len(s) {
		return s[:0]
	}
	copied := copy(s, s[n:])
	return s[:copied]
}
