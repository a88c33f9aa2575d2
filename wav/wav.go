// Package wav reads and writes wav files.
package wav

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/go-audio/audio"
	"github.com/go-audio/wav"

	"pipelined.dev/vocoder"
	"pipelined.dev/vocoder/signal"
)

// Stdin is the path that makes source read from standard input.
const Stdin = "-"

// pcm is the wav audio format of integer samples.
const pcm = 1

var (
	// ErrInvalidWav is returned when file isn't a valid wav.
	ErrInvalidWav = errors.New("invalid wav file")
	// ErrUnsupportedBitDepth is returned when unsupported bit depth is used.
	ErrUnsupportedBitDepth = errors.New("only 16, 24 and 32 bit depths are supported")
)

// Source reads wav file. Stdin path reads the whole standard input
// before decoding, because decoder needs to seek.
func Source(path string) vocoder.SourceAllocatorFunc {
	return func(bufferSize int) (vocoder.Source, error) {
		var (
			rs     io.ReadSeeker
			closer = func() error { return nil }
		)
		if path == Stdin {
			data, err := io.ReadAll(os.Stdin)
			if err != nil {
				return vocoder.Source{}, fmt.Errorf("read stdin: %w", err)
			}
			rs = bytes.NewReader(data)
		} else {
			f, err := os.Open(path)
			if err != nil {
				return vocoder.Source{}, err
			}
			rs, closer = f, f.Close
		}
		source, err := decode(path, rs, bufferSize)
		if err != nil {
			return vocoder.Source{}, errors.Join(err, closer())
		}
		source.FlushFunc = func(context.Context) error {
			return closer()
		}
		return source, nil
	}
}

func decode(path string, rs io.ReadSeeker, bufferSize int) (vocoder.Source, error) {
	decoder := wav.NewDecoder(rs)
	if !decoder.IsValidFile() {
		return vocoder.Source{}, &vocoder.SourceFormatError{Path: path, Err: ErrInvalidWav}
	}
	bitDepth := signal.BitDepth(decoder.BitDepth)
	if !supported(bitDepth) {
		return vocoder.Source{}, &vocoder.SourceFormatError{Path: path, Err: fmt.Errorf("%w: %d", ErrUnsupportedBitDepth, bitDepth)}
	}
	if err := decoder.FwdToPCM(); err != nil {
		return vocoder.Source{}, &vocoder.SourceFormatError{Path: path, Err: err}
	}
	channels := int(decoder.NumChans)
	length := int(decoder.PCMLen()) / (channels * int(bitDepth) / 8)

	ib := &audio.IntBuffer{
		Format:         decoder.Format(),
		Data:           make([]int, bufferSize*channels),
		SourceBitDepth: int(bitDepth),
	}
	return vocoder.Source{
		SourceFunc: func(out signal.Float64) (int, error) {
			read, err := decoder.PCMBuffer(ib)
			if err != nil {
				return 0, err
			}
			if read == 0 {
				return 0, io.EOF
			}
			floats := signal.InterInt{
				Data:        ib.Data[:read],
				NumChannels: channels,
				BitDepth:    bitDepth,
			}.AsFloat64()
			for c := range out {
				copy(out[c], floats[c])
			}
			return floats.Size(), nil
		},
		SignalProperties: vocoder.SignalProperties{
			SampleRate: int(decoder.SampleRate),
			Channels:   channels,
			Length:     length,
		},
	}, nil
}

// Sink writes wav file with provided bit depth.
func Sink(path string, bitDepth signal.BitDepth) vocoder.SinkAllocatorFunc {
	return func(bufferSize int, props vocoder.SignalProperties) (vocoder.Sink, error) {
		if !supported(bitDepth) {
			return vocoder.Sink{}, fmt.Errorf("%w: %d", ErrUnsupportedBitDepth, bitDepth)
		}
		f, err := os.Create(path)
		if err != nil {
			return vocoder.Sink{}, err
		}
		e := wav.NewEncoder(f, props.SampleRate, int(bitDepth), props.Channels, pcm)
		ib := &audio.IntBuffer{
			Format: &audio.Format{
				NumChannels: props.Channels,
				SampleRate:  props.SampleRate,
			},
			SourceBitDepth: int(bitDepth),
		}
		return vocoder.Sink{
			SinkFunc: func(in signal.Float64) error {
				ib.Data = in.AsInterInt(bitDepth)
				return e.Write(ib)
			},
			FlushFunc: func(context.Context) error {
				return errors.Join(e.Close(), f.Close())
			},
		}, nil
	}
}

func supported(bitDepth signal.BitDepth) bool {
	switch bitDepth {
	case signal.BitDepth16, signal.BitDepth24, signal.BitDepth32:
		return true
	}
	return false
}
