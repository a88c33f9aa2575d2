package resynth_test

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"

	"pipelined.dev/vocoder/resynth"
)

func TestNewHops(t *testing.T) {
	tests := []struct {
		windowLen int
		factor    float64
		pitch     int
		expected  resynth.Hops
		err       bool
	}{
		{windowLen: 1024, factor: 1, pitch: 1, expected: resynth.Hops{Analysis: 256, Synthesis: 256, Pitch: 1}},
		{windowLen: 1024, factor: 2, pitch: 1, expected: resynth.Hops{Analysis: 128, Synthesis: 256, Pitch: 1}},
		{windowLen: 1024, factor: 0.5, pitch: 1, expected: resynth.Hops{Analysis: 256, Synthesis: 128, Pitch: 1}},
		{windowLen: 1024, factor: 1, pitch: 2, expected: resynth.Hops{Analysis: 128, Synthesis: 256, Pitch: 2}},
		{windowLen: 1024, factor: 1, pitch: -4, expected: resynth.Hops{Analysis: 256, Synthesis: 64, Pitch: -4}},
		{windowLen: 1024, factor: 4, pitch: -4, expected: resynth.Hops{Analysis: 256, Synthesis: 256, Pitch: -4}},
		{windowLen: 16, factor: 4, pitch: 1, expected: resynth.Hops{Analysis: 1, Synthesis: 4, Pitch: 1}},
		{windowLen: 16, factor: 0.25, pitch: 1, expected: resynth.Hops{Analysis: 4, Synthesis: 1, Pitch: 1}},
		{windowLen: 16, factor: 1, pitch: -4, expected: resynth.Hops{Analysis: 4, Synthesis: 1, Pitch: -4}},
		// the smaller hop would be rounded to zero or capped
		{windowLen: 16, factor: 1000, pitch: 1, err: true},
		{windowLen: 16, factor: 0.001, pitch: 1, err: true},
		{windowLen: 1024, factor: 500, pitch: 1, err: true},
		{windowLen: 1024, factor: 0.001, pitch: 1, err: true},
		{windowLen: 16384, factor: 10000, pitch: 1, err: true},
		{windowLen: 1024, factor: 200, pitch: 2, err: true},
		{windowLen: 1024, factor: 1, pitch: 0, err: true},
		{windowLen: 1024, factor: 0, pitch: 1, err: true},
		{windowLen: 1024, factor: -1, pitch: 1, err: true},
		{windowLen: 1024, factor: math.NaN(), pitch: 1, err: true},
		{windowLen: 1024, factor: math.Inf(1), pitch: 1, err: true},
		{windowLen: 2, factor: 1, pitch: 1, err: true},
	}
	for _, test := range tests {
		hops, err := resynth.NewHops(test.windowLen, test.factor, test.pitch)
		if test.err {
			assert.ErrorIs(t, err, resynth.ErrInvalidHops)
			continue
		}
		assert.NoError(t, err)
		assert.Equal(t, test.expected, hops)
	}
}

func TestOutputLength(t *testing.T) {
	tests := []struct {
		hops     resynth.Hops
		input    int
		expected int
	}{
		{hops: resynth.Hops{Analysis: 256, Synthesis: 256, Pitch: 1}, input: 1000, expected: 1000},
		{hops: resynth.Hops{Analysis: 128, Synthesis: 256, Pitch: 1}, input: 1000, expected: 2000},
		{hops: resynth.Hops{Analysis: 128, Synthesis: 256, Pitch: 2}, input: 1001, expected: 1001},
		{hops: resynth.Hops{Analysis: 256, Synthesis: 128, Pitch: -2}, input: 1001, expected: 1002},
		{hops: resynth.Hops{Analysis: 256, Synthesis: 256, Pitch: 1}, input: -1, expected: -1},
	}
	for _, test := range tests {
		assert.Equal(t, test.expected, test.hops.OutputLength(test.input))
	}
	assert.Equal(t, 2.0, resynth.Hops{Analysis: 128, Synthesis: 256}.Ratio())
}
