// Package signal provides an API to manipulate digital signals. It allows to:
//   - convert interleaved data to non-interleaved
//   - convert bit depth for int signals
//   - shape the amplitude of a signal with gain and fades
package signal

import (
	"math"
	"time"
)

// Float64 is a non-interleaved float64 signal.
type Float64 [][]float64

const (
	// BitDepth8 is 8 bit depth.
	BitDepth8 = BitDepth(8)
	// BitDepth16 is 16 bit depth.
	BitDepth16 = BitDepth(16)
	// BitDepth24 is 24 bit depth.
	BitDepth24 = BitDepth(24)
	// BitDepth32 is 32 bit depth.
	BitDepth32 = BitDepth(32)
)

// InterInt is an interleaved int signal.
type InterInt struct {
	Data        []int
	NumChannels int
	BitDepth
}

// BitDepth contains values required for int-to-float and backward conversion.
type BitDepth int

// divider is used when int to float conversion is done.
func (bitDepth BitDepth) divider() int {
	switch bitDepth {
	case BitDepth8:
		return math.MaxInt8
	case BitDepth16:
		return math.MaxInt16
	case BitDepth24:
		return 1<<23 - 1
	case BitDepth32:
		return math.MaxInt32
	default:
		return 1
	}
}

// multiplier is used when float to int conversion is done.
func (bitDepth BitDepth) multiplier() int {
	return bitDepth.divider()
}

// Supported returns true if bit depth can be used for int conversions.
func (bitDepth BitDepth) Supported() bool {
	switch bitDepth {
	case BitDepth8, BitDepth16, BitDepth24, BitDepth32:
		return true
	}
	return false
}

// DurationOf returns time duration of passed samples for this sample rate.
func DurationOf(sampleRate int, samples int64) time.Duration {
	return time.Duration(float64(samples) / float64(sampleRate) * float64(time.Second))
}

// SamplesOf returns number of samples for the duration at this sample
// rate, rounded to the nearest sample.
func SamplesOf(sampleRate int, d time.Duration) int {
	return int(math.Round(d.Seconds() * float64(sampleRate)))
}

// AsFloat64 converts interleaved int signal to float64.
func (ints InterInt) AsFloat64() Float64 {
	if ints.Data == nil || ints.NumChannels == 0 {
		return nil
	}
	floats := make([][]float64, ints.NumChannels)
	bufSize := int(math.Ceil(float64(len(ints.Data)) / float64(ints.NumChannels)))

	divider := float64(ints.BitDepth.divider())
	for i := range floats {
		floats[i] = make([]float64, bufSize)
		pos := 0
		for j := i; j < len(ints.Data); j = j + ints.NumChannels {
			floats[i][pos] = float64(ints.Data[j]) / divider
			pos++
		}
	}
	return floats
}

// AsInterInt converts float64 signal to interleaved int. Samples outside
// of [-1, 1] are clipped.
func (floats Float64) AsInterInt(bitDepth BitDepth) []int {
	var numChannels int
	if numChannels = len(floats); numChannels == 0 {
		return nil
	}

	multiplier := float64(bitDepth.multiplier())
	ints := make([]int, len(floats[0])*numChannels)
	for j := range floats {
		for i := range floats[j] {
			ints[i*numChannels+j] = int(clip(floats[j][i]) * multiplier)
		}
	}
	return ints
}

// AsInterFloat32 writes float64 signal into interleaved float32 buffer.
// Buffer must fit Size()*NumChannels() samples. Number of written samples
// per channel is returned.
func (floats Float64) AsInterFloat32(dst []float32) int {
	numChannels := floats.NumChannels()
	if numChannels == 0 {
		return 0
	}
	size := floats.Size()
	for j := range floats {
		for i := 0; i < size; i++ {
			dst[i*numChannels+j] = float32(floats[j][i])
		}
	}
	return size
}

// ReadInterFloat32 reads interleaved float32 samples into non-interleaved
// float64 buffer. Number of read samples per channel is returned.
func (floats Float64) ReadInterFloat32(src []float32) int {
	numChannels := floats.NumChannels()
	if numChannels == 0 {
		return 0
	}
	size := len(src) / numChannels
	if size > floats.Size() {
		size = floats.Size()
	}
	for j := range floats {
		for i := 0; i < size; i++ {
			floats[j][i] = float64(src[i*numChannels+j])
		}
	}
	return size
}

// EmptyFloat64 returns an empty buffer of specified dimentions.
func EmptyFloat64(numChannels int, bufferSize int) Float64 {
	result := make([][]float64, numChannels)
	for i := range result {
		result[i] = make([]float64, bufferSize)
	}
	return result
}

// NumChannels returns number of channels in this sample slice
func (floats Float64) NumChannels() int {
	return len(floats)
}

// Size returns number of samples in single block in this sample slice
func (floats Float64) Size() int {
	if floats.NumChannels() == 0 {
		return 0
	}
	return len(floats[0])
}

// Append buffers set to existing one one
// new buffer is returned if b is nil
func (floats Float64) Append(source Float64) Float64 {
	if floats == nil {
		floats = make([][]float64, source.NumChannels())
		for i := range floats {
			floats[i] = make([]float64, 0, source.Size())
		}
	}
	for i := range source {
		floats[i] = append(floats[i], source[i]...)
	}
	return floats
}

// Slice creates a new copy of buffer from start position with defined legth
// if buffer doesn't have enough samples - shorten block is returned
//
// if start >= buffer size, nil is returned
// if start + len >= buffer size, len is decreased till the end of slice
// if start < 0, nil is returned
func (floats Float64) Slice(start int, len int) Float64 {
	if floats == nil || start >= floats.Size() || start < 0 {
		return nil
	}
	end := start + len
	if end > floats.Size() {
		end = floats.Size()
	}
	result := make([][]float64, floats.NumChannels())
	for i := range floats {
		result[i] = append(result[i], floats[i][start:end]...)
	}
	return result
}

// Scale multiplies every sample by gain.
func (floats Float64) Scale(gain float64) {
	if gain == 1 {
		return
	}
	for i := range floats {
		for j := range floats[i] {
			floats[i][j] *= gain
		}
	}
}

func clip(v float64) float64 {
	switch {
	case v > 1:
		return 1
	case v < -1:
		return -1
	}
	return v
}
