package vocoder

import (
	"context"

	"pipelined.dev/vocoder/signal"
)

type (
	// SourceAllocatorFunc returns source for provided buffer size. It is
	// responsible for pre-allocation of all necessary buffers and
	// structures.
	SourceAllocatorFunc func(bufferSize int) (Source, error)

	// SinkAllocatorFunc returns sink for provided buffer size and
	// properties of the output signal.
	SinkAllocatorFunc func(bufferSize int, output SignalProperties) (Sink, error)

	// SignalProperties contains information about input/output signal.
	SignalProperties struct {
		SampleRate int
		Channels   int
		// Length is the number of samples per channel, negative if
		// unknown.
		Length int
	}

	// Source is a source of signal.
	Source struct {
		SourceFunc
		StartFunc
		FlushFunc
		SignalProperties
	}

	// Sink is a destination of signal.
	Sink struct {
		SinkFunc
		StartFunc
		FlushFunc
	}

	// SourceFunc reads samples into the buffer and returns the number of
	// samples read per channel. When input is done, io.EOF is returned,
	// possibly together with the last samples.
	SourceFunc func(out signal.Float64) (int, error)

	// SinkFunc writes samples.
	SinkFunc func(in signal.Float64) error

	// StartFunc is a closure that triggers component start hook.
	StartFunc func(ctx context.Context) error

	// FlushFunc is a closure that triggers component flush hook. It
	// releases resources acquired by the allocator and is called once:
	// after successful start, even if the run failed, or without start
	// when the pipe fails before its stages are started.
	FlushFunc func(ctx context.Context) error
)

// Known returns true if signal length is known.
func (p SignalProperties) Known() bool {
	return p.Length >= 0
}
