// Package portaudio captures and plays back signal with default audio
// devices.
package portaudio

import (
	"context"
	"errors"

	"github.com/gordonklaus/portaudio"

	"pipelined.dev/vocoder"
	"pipelined.dev/vocoder/signal"
)

const (
	inputDevice  = "default input"
	outputDevice = "default output"
)

// Capture records signal from default input device until the pipe is
// stopped.
func Capture(sampleRate, channels int) vocoder.SourceAllocatorFunc {
	return func(bufferSize int) (vocoder.Source, error) {
		if err := portaudio.Initialize(); err != nil {
			return vocoder.Source{}, &vocoder.DeviceError{Device: inputDevice, Err: err}
		}
		buf := make([]float32, bufferSize*channels)
		stream, err := portaudio.OpenDefaultStream(channels, 0, float64(sampleRate), bufferSize, &buf)
		if err != nil {
			return vocoder.Source{}, &vocoder.DeviceError{
				Device: inputDevice,
				Err:    errors.Join(err, portaudio.Terminate()),
			}
		}
		return vocoder.Source{
			SourceFunc: func(out signal.Float64) (int, error) {
				if err := stream.Read(); err != nil {
					return 0, &vocoder.DeviceError{Device: inputDevice, Err: err}
				}
				return out.ReadInterFloat32(buf), nil
			},
			StartFunc: func(context.Context) error {
				return stream.Start()
			},
			FlushFunc: func(context.Context) error {
				return closeStream(stream)
			},
			SignalProperties: vocoder.SignalProperties{
				SampleRate: sampleRate,
				Channels:   channels,
				Length:     -1,
			},
		}, nil
	}
}

// Playback plays signal with default output device.
func Playback() vocoder.SinkAllocatorFunc {
	return func(bufferSize int, props vocoder.SignalProperties) (vocoder.Sink, error) {
		if err := portaudio.Initialize(); err != nil {
			return vocoder.Sink{}, &vocoder.DeviceError{Device: outputDevice, Err: err}
		}
		c := newChunker(props.Channels, bufferSize)
		stream, err := portaudio.OpenDefaultStream(0, props.Channels, float64(props.SampleRate), bufferSize, &c.out)
		if err != nil {
			return vocoder.Sink{}, &vocoder.DeviceError{
				Device: outputDevice,
				Err:    errors.Join(err, portaudio.Terminate()),
			}
		}
		return vocoder.Sink{
			SinkFunc: func(in signal.Float64) error {
				return c.write(in, stream.Write)
			},
			StartFunc: func(context.Context) error {
				return stream.Start()
			},
			FlushFunc: func(context.Context) error {
				return errors.Join(c.flush(stream.Write), closeStream(stream))
			},
		}, nil
	}
}

func closeStream(stream *portaudio.Stream) error {
	return errors.Join(stream.Stop(), stream.Close(), portaudio.Terminate())
}

// chunker cuts signal into interleaved blocks of fixed size, because
// device stream is opened with fixed buffer.
type chunker struct {
	channels int
	out      []float32
	pos      int // samples per channel in out
}

func newChunker(channels, size int) *chunker {
	return &chunker{
		channels: channels,
		out:      make([]float32, size*channels),
	}
}

func (c *chunker) size() int {
	return len(c.out) / c.channels
}

// write fills the buffer and calls fn every time it's full.
func (c *chunker) write(in signal.Float64, fn func() error) error {
	for i := 0; i < in.Size(); {
		n := min(c.size()-c.pos, in.Size()-i)
		for ch := range in {
			for j := 0; j < n; j++ {
				c.out[(c.pos+j)*c.channels+ch] = float32(in[ch][i+j])
			}
		}
		c.pos += n
		i += n
		if c.pos == c.size() {
			if err := fn(); err != nil {
				return err
			}
			c.pos = 0
		}
	}
	return nil
}

// flush pads the buffer with silence and calls fn if there's anything
// to write.
func (c *chunker) flush(fn func() error) error {
	if c.pos == 0 {
		return nil
	}
	clear(c.out[c.pos*c.channels:])
	c.pos = 0
	return fn()
}
