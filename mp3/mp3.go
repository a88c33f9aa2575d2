// Package mp3 reads and writes mp3 files.
package mp3

import (
	"bytes"
	"context"
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/hajimehoshi/go-mp3"
	"github.com/viert/lame"

	"pipelined.dev/vocoder"
	"pipelined.dev/vocoder/signal"
)

const (
	// decoder always provides stereo 16 bit samples.
	channels       = 2
	bytesPerSample = 2
	frameSize      = channels * bytesPerSample
)

// Source reads mp3 file.
func Source(path string) vocoder.SourceAllocatorFunc {
	return func(bufferSize int) (vocoder.Source, error) {
		f, err := os.Open(path)
		if err != nil {
			return vocoder.Source{}, err
		}
		d, err := mp3.NewDecoder(f)
		if err != nil {
			return vocoder.Source{}, errors.Join(&vocoder.SourceFormatError{Path: path, Err: err}, f.Close())
		}

		buf := make([]byte, bufferSize*frameSize)
		ints := make([]int, bufferSize*channels)
		done := false
		return vocoder.Source{
			SourceFunc: func(out signal.Float64) (int, error) {
				if done {
					return 0, io.EOF
				}
				n, err := io.ReadFull(d, buf)
				switch err {
				case nil:
				case io.EOF, io.ErrUnexpectedEOF:
					done = true
				default:
					return 0, err
				}
				// drop incomplete frame
				n -= n % frameSize
				read := n / bytesPerSample
				for i := 0; i < read; i++ {
					ints[i] = int(int16(binary.LittleEndian.Uint16(buf[i*bytesPerSample:])))
				}
				floats := signal.InterInt{
					Data:        ints[:read],
					NumChannels: channels,
					BitDepth:    signal.BitDepth16,
				}.AsFloat64()
				for c := range out {
					copy(out[c], floats[c])
				}
				if done {
					return floats.Size(), io.EOF
				}
				return floats.Size(), nil
			},
			FlushFunc: func(context.Context) error {
				return f.Close()
			},
			SignalProperties: vocoder.SignalProperties{
				SampleRate: d.SampleRate(),
				Channels:   channels,
				Length:     int(d.Length() / frameSize),
			},
		}, nil
	}
}

// Sink writes mp3 file with variable bit rate. Quality ranges from 0,
// the best, to 9, the worst.
func Sink(path string, bitRate, quality int) vocoder.SinkAllocatorFunc {
	return func(bufferSize int, props vocoder.SignalProperties) (vocoder.Sink, error) {
		if props.Channels > channels {
			return vocoder.Sink{}, fmt.Errorf("mp3 supports at most %d channels, got %d", channels, props.Channels)
		}
		f, err := os.Create(path)
		if err != nil {
			return vocoder.Sink{}, err
		}
		wr := lame.NewWriter(f)
		wr.Encoder.SetBitrate(bitRate)
		wr.Encoder.SetQuality(quality)
		wr.Encoder.SetNumChannels(props.Channels)
		wr.Encoder.SetInSamplerate(props.SampleRate)
		if props.Channels == 1 {
			wr.Encoder.SetMode(lame.MONO)
		} else {
			wr.Encoder.SetMode(lame.JOINT_STEREO)
		}
		wr.Encoder.SetVBR(lame.VBR_RH)
		wr.Encoder.InitParams()

		var buf bytes.Buffer
		return vocoder.Sink{
			SinkFunc: func(in signal.Float64) error {
				buf.Reset()
				for _, v := range in.AsInterInt(signal.BitDepth16) {
					if err := binary.Write(&buf, binary.LittleEndian, int16(v)); err != nil {
						return err
					}
				}
				_, err := wr.Write(buf.Bytes())
				return err
			},
			FlushFunc: func(context.Context) error {
				return errors.Join(wr.Close(), f.Close())
			},
		}, nil
	}
}
