package runtime

import (
	"context"
	"io"

	"pipelined.dev/vocoder/frame"
	"pipelined.dev/vocoder/internal/fitting"
	"pipelined.dev/vocoder/metric"
	"pipelined.dev/vocoder/resynth"
	"pipelined.dev/vocoder/signal"
	"pipelined.dev/vocoder/spectral"
)

type (
	// SourceFunc reads samples into the buffer and returns the number of
	// read samples per channel. io.EOF is returned when source is done,
	// read samples are still processed in that case.
	SourceFunc func(signal.Float64) (int, error)

	// SinkFunc writes samples.
	SinkFunc func(signal.Float64) error

	// Source is the executor for the frame source stage. It reads the
	// input and cuts it into windows.
	Source struct {
		SourceFunc
		StartFunc
		FlushFunc
		Framer *frame.Framer
		Buffer signal.Float64
		// Stop is closed to end the input gracefully: windows of
		// already read samples are still sent.
		Stop    <-chan struct{}
		Out     fitting.Sender[frame.Window]
		Measure metric.MeasureFunc
	}

	// Analyzer is the executor for the analysis stage.
	Analyzer struct {
		Analyzer *spectral.Analyzer
		In       fitting.Receiver[frame.Window]
		Out      fitting.Sender[spectral.Frame]
		Measure  metric.MeasureFunc
	}

	// Resynth is the executor for the resynthesis stage. It applies the
	// kernel, overlap-adds frames and shapes the output.
	Resynth struct {
		Resynthesizer *resynth.Resynthesizer
		Shape         func(signal.Float64)
		In            fitting.Receiver[spectral.Frame]
		Out           fitting.Sender[signal.Float64]
		Measure       metric.MeasureFunc
	}

	// Sink is the executor for the sink stage.
	Sink struct {
		SinkFunc
		StartFunc
		FlushFunc
		In      fitting.Receiver[signal.Float64]
		Measure metric.MeasureFunc
	}
)

// Execute does a single iteration of source stage. io.EOF is returned
// when the input is done or stopped.
func (e *Source) Execute(ctx context.Context) error {
	select {
	case <-e.Stop:
		return e.finish(ctx)
	default:
	}

	read, err := e.SourceFunc(e.Buffer)
	if err != nil && err != io.EOF {
		e.Out.Close()
		return err
	}
	if read > 0 {
		block := make(signal.Float64, len(e.Buffer))
		for c := range e.Buffer {
			block[c] = e.Buffer[c][:read]
		}
		e.Measure.Measure(read)
		if !e.send(ctx, e.Framer.Push(block)) {
			e.Out.Close()
			return io.EOF
		}
	}
	if err == io.EOF {
		return e.finish(ctx)
	}
	return nil
}

// finish sends the tail of the stream and closes the output.
func (e *Source) finish(ctx context.Context) error {
	e.send(ctx, e.Framer.Flush())
	e.Out.Close()
	return io.EOF
}

func (e *Source) send(ctx context.Context, windows []frame.Window) bool {
	for _, w := range windows {
		if !e.Out.Send(ctx, w) {
			return false
		}
	}
	return true
}

// Start implements Executor.
func (e *Analyzer) Start(context.Context) error {
	return nil
}

// Flush implements Executor.
func (e *Analyzer) Flush(context.Context) error {
	return nil
}

// Execute does a single iteration of analyzer stage. io.EOF is returned
// when the input is closed or context is done.
func (e *Analyzer) Execute(ctx context.Context) error {
	w, ok := e.In.Receive(ctx)
	if !ok {
		e.Out.Close()
		return io.EOF
	}
	f := e.Analyzer.Analyze(w)
	e.Measure.Measure(0)
	if !e.Out.Send(ctx, f) {
		e.Out.Close()
		return io.EOF
	}
	return nil
}

// Start implements Executor.
func (e *Resynth) Start(context.Context) error {
	return nil
}

// Flush implements Executor.
func (e *Resynth) Flush(context.Context) error {
	return nil
}

// Execute does a single iteration of resynthesis stage. When the input
// is closed, accumulated stream is flushed downstream. If context is
// done, nothing is flushed.
func (e *Resynth) Execute(ctx context.Context) error {
	f, ok := e.In.Receive(ctx)
	if !ok {
		if ctx.Err() == nil {
			e.send(ctx, e.Resynthesizer.Flush())
		}
		e.Out.Close()
		return io.EOF
	}
	out, err := e.Resynthesizer.Process(&f)
	if err != nil {
		e.Out.Close()
		return err
	}
	if !e.send(ctx, out) {
		e.Out.Close()
		return io.EOF
	}
	return nil
}

func (e *Resynth) send(ctx context.Context, out signal.Float64) bool {
	if out.Size() == 0 {
		return true
	}
	if e.Shape != nil {
		e.Shape(out)
	}
	e.Measure.Measure(out.Size())
	return e.Out.Send(ctx, out)
}

// Execute does a single iteration of sink stage. io.EOF is returned when
// the input is closed or context is done.
func (e *Sink) Execute(ctx context.Context) error {
	in, ok := e.In.Receive(ctx)
	if !ok {
		return io.EOF
	}
	e.Measure.Measure(in.Size())
	return e.SinkFunc(in)
}
