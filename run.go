package vocoder

import (
	"context"
	"errors"
	"fmt"
	"math/rand/v2"

	"golang.org/x/sync/errgroup"

	"pipelined.dev/vocoder/frame"
	"pipelined.dev/vocoder/internal/fitting"
	"pipelined.dev/vocoder/internal/runtime"
	"pipelined.dev/vocoder/resynth"
	"pipelined.dev/vocoder/signal"
	"pipelined.dev/vocoder/spectral"
)

// Runner is a running pipe.
type Runner struct {
	abort context.CancelFunc
	done  chan struct{}
	err   error
}

// Run starts the pipe. Cancelling ctx stops the input gracefully: every
// sample read before cancellation is processed and written to the sink.
// Use Runner.Abort to stop without draining.
func (p *Pipe) Run(ctx context.Context) *Runner {
	r := Runner{done: make(chan struct{})}
	if !p.used.CompareAndSwap(false, true) {
		r.abort = func() {}
		r.err = ErrSingleUse
		close(r.done)
		return &r
	}
	runCtx, abort := context.WithCancel(context.WithoutCancel(ctx))
	r.abort = abort
	go func() {
		defer close(r.done)
		defer abort()
		r.err = p.run(runCtx, ctx.Done())
	}()
	return &r
}

// Wait blocks until the pipe is done and returns the first error.
func (r *Runner) Wait() error {
	<-r.done
	return r.err
}

// Done is closed when the pipe is done.
func (r *Runner) Done() <-chan struct{} {
	return r.done
}

// Abort stops the pipe without draining buffered signal.
func (r *Runner) Abort() {
	r.abort()
}

func (p *Pipe) run(ctx context.Context, stop <-chan struct{}) error {
	if p.kernel != nil {
		if err := p.kernel.Init(ctx); err != nil {
			return errors.Join(
				fmt.Errorf("kernel: %w", err),
				flush(p.source.FlushFunc),
				flush(p.sink.FlushFunc),
			)
		}
	}

	var (
		sampleRate = p.input.SampleRate
		channels   = p.input.Channels
		capacity   = p.linkCapacity()
		windows    = fitting.New[frame.Window](capacity)
		frames     = fitting.New[spectral.Frame](capacity)
		blocks     = fitting.New[signal.Float64](capacity)
	)
	var k resynth.Kernel
	if p.kernel != nil {
		k = p.kernel
	}
	var seed uint64
	if p.cfg.RandomPhase {
		seed = rand.Uint64()
	}
	executors := []runtime.Executor{
		&runtime.Source{
			SourceFunc: runtime.SourceFunc(p.source.SourceFunc),
			StartFunc:  runtime.StartFunc(p.source.StartFunc),
			FlushFunc:  runtime.FlushFunc(p.source.FlushFunc),
			Framer:     frame.NewFramer(channels, p.cfg.WindowLen, p.hops.Analysis),
			Buffer:     signal.EmptyFloat64(channels, p.bufferSize),
			Stop:       stop,
			Out:        windows,
			Measure:    p.metric.Meter("source", sampleRate),
		},
		&runtime.Analyzer{
			Analyzer: spectral.NewAnalyzer(p.cfg.WindowLen, sampleRate),
			In:       windows,
			Out:      frames,
			Measure:  p.metric.Meter("analyzer", sampleRate),
		},
		&runtime.Resynth{
			Resynthesizer: resynth.New(resynth.Config{
				WindowLen:   p.cfg.WindowLen,
				Channels:    channels,
				Hops:        p.hops,
				RandomPhase: p.cfg.RandomPhase,
				Seed:        seed,
			}, k),
			Shape:   p.shape(),
			In:      frames,
			Out:     blocks,
			Measure: p.metric.Meter("resynth", sampleRate),
		},
		&runtime.Sink{
			SinkFunc:  runtime.SinkFunc(p.sink.SinkFunc),
			StartFunc: runtime.StartFunc(p.sink.StartFunc),
			FlushFunc: runtime.FlushFunc(p.sink.FlushFunc),
			In:        blocks,
			Measure:   p.metric.Meter("sink", sampleRate),
		},
	}

	p.log.WithField("capacity", capacity).Debug("pipe started")
	g, gctx := errgroup.WithContext(ctx)
	for _, e := range executors {
		g.Go(func() error {
			return runtime.Run(gctx, e)
		})
	}

	// kernel watch lives as long as the stages
	watchCtx, stopWatch := context.WithCancel(gctx)
	watched := make(chan struct{})
	go func() {
		defer close(watched)
		if p.kernel != nil {
			p.kernel.Watch(watchCtx)
		}
	}()

	err := g.Wait()
	stopWatch()
	<-watched
	if p.kernel != nil {
		if errClose := p.kernel.Close(); errClose != nil {
			p.log.WithError(errClose).Warn("kernel host close failed")
		}
	}
	if err != nil {
		p.log.WithError(err).Debug("pipe failed")
		return err
	}
	p.log.Debug("pipe done")
	return nil
}

// shape returns closure that applies amplitude and fades to the output.
func (p *Pipe) shape() func(signal.Float64) {
	fade := signal.SamplesOf(p.output.SampleRate, p.cfg.Fade)
	fader := signal.NewFader(fade, fade, p.output.Length)
	return func(out signal.Float64) {
		out.Scale(p.cfg.Amplitude)
		fader.Apply(out)
	}
}
