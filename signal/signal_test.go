package signal_test

import (
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"pipelined.dev/vocoder/signal"
)

func TestInterIntsAsFloat64(t *testing.T) {
	tests := []struct {
		ints        []int
		numChannels int
		bitDepth    signal.BitDepth
		expected    signal.Float64
	}{
		{
			ints:        []int{1, 2, 1, 2, 1, 2, 1, 2},
			numChannels: 2,
			expected: signal.Float64{
				{1, 1, 1, 1},
				{2, 2, 2, 2},
			},
		},
		{
			ints:        []int{1, 2, 1, 2, 1},
			numChannels: 2,
			expected: signal.Float64{
				{1, 1, 1},
				{2, 2, 0},
			},
		},
		{
			ints:        []int{math.MaxInt16, -math.MaxInt16},
			numChannels: 2,
			bitDepth:    signal.BitDepth16,
			expected: signal.Float64{
				{1},
				{-1},
			},
		},
		{
			ints:        []int{1<<23 - 1},
			numChannels: 1,
			bitDepth:    signal.BitDepth24,
			expected:    signal.Float64{{1}},
		},
		{
			ints:     nil,
			expected: nil,
		},
		{
			ints:     []int{1, 2, 3},
			expected: nil,
		},
	}

	for _, test := range tests {
		result := signal.InterInt{
			Data:        test.ints,
			NumChannels: test.numChannels,
			BitDepth:    test.bitDepth,
		}.AsFloat64()
		assert.Equal(t, test.expected, result)
	}
}

func TestFloat64AsInterInt(t *testing.T) {
	tests := []struct {
		floats   signal.Float64
		bitDepth signal.BitDepth
		expected []int
	}{
		{
			floats:   signal.Float64{{1, 0.5}, {-1, 0}},
			bitDepth: signal.BitDepth16,
			expected: []int{math.MaxInt16, -math.MaxInt16, math.MaxInt16 / 2, 0},
		},
		{
			floats:   signal.Float64{{2, -3}},
			bitDepth: signal.BitDepth8,
			expected: []int{math.MaxInt8, -math.MaxInt8},
		},
		{
			floats:   nil,
			expected: nil,
		},
	}
	for _, test := range tests {
		assert.Equal(t, test.expected, test.floats.AsInterInt(test.bitDepth))
	}
}

func TestInterFloat32(t *testing.T) {
	floats := signal.Float64{{1, 2, 3}, {-1, -2, -3}}
	inter := make([]float32, 6)
	assert.Equal(t, 3, floats.AsInterFloat32(inter))
	assert.Equal(t, []float32{1, -1, 2, -2, 3, -3}, inter)

	back := signal.EmptyFloat64(2, 4)
	assert.Equal(t, 3, back.ReadInterFloat32(inter))
	assert.Equal(t, signal.Float64{{1, 2, 3, 0}, {-1, -2, -3, 0}}, back)
}

func TestSliceAppend(t *testing.T) {
	floats := signal.Float64{{1, 2, 3, 4}, {5, 6, 7, 8}}
	assert.Equal(t, signal.Float64{{2, 3}, {6, 7}}, floats.Slice(1, 2))
	assert.Equal(t, signal.Float64{{3, 4}, {7, 8}}, floats.Slice(2, 10))
	assert.Nil(t, floats.Slice(4, 1))
	assert.Nil(t, floats.Slice(-1, 1))

	var appended signal.Float64
	appended = appended.Append(floats.Slice(0, 2))
	appended = appended.Append(floats.Slice(2, 2))
	assert.Equal(t, floats, appended)
}

func TestDuration(t *testing.T) {
	assert.Equal(t, time.Second, signal.DurationOf(44100, 44100))
	assert.Equal(t, 22050, signal.SamplesOf(44100, 500*time.Millisecond))
	assert.Equal(t, 0, signal.SamplesOf(44100, 0))
}

func TestScale(t *testing.T) {
	floats := signal.Float64{{1, -0.5}}
	floats.Scale(2)
	assert.Equal(t, signal.Float64{{2, -1}}, floats)
}
