package vocoder

import (
	"context"
	"errors"
	"fmt"
	"math"
	"sync/atomic"

	"github.com/sirupsen/logrus"

	"pipelined.dev/vocoder/kernel"
	"pipelined.dev/vocoder/log"
	"pipelined.dev/vocoder/metric"
	"pipelined.dev/vocoder/resynth"
)

// Pipe is a bound phase vocoder pipeline: source, analyzer, resynthesizer
// and sink. A pipe can be run only once.
type Pipe struct {
	cfg        Config
	hops       resynth.Hops
	bufferSize int
	source     Source
	sink       Sink
	input      SignalProperties
	output     SignalProperties

	kernel *kernel.Host
	log    logrus.FieldLogger
	metric *metric.Metric
	used   atomic.Bool
}

// Option provides a way to set functional parameters to pipe.
type Option func(*Pipe)

// WithLogger sets logger to pipe. If this option is not provided, silent
// logger is used.
func WithLogger(l logrus.FieldLogger) Option {
	return func(p *Pipe) {
		p.log = l
	}
}

// WithKernel sets the kernel host that transforms every frame. Pipe
// initializes the host when it's run, watches the kernel source during
// the run and closes the host afterwards.
func WithKernel(h *kernel.Host) Option {
	return func(p *Pipe) {
		p.kernel = h
	}
}

// WithMetric adds metrics for all stages.
func WithMetric(m *metric.Metric) Option {
	return func(p *Pipe) {
		p.metric = m
	}
}

// New validates configuration and allocates source and sink. Sink gets
// the properties of output signal.
func New(cfg Config, source SourceAllocatorFunc, sink SinkAllocatorFunc, options ...Option) (*Pipe, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	hops, err := resynth.NewHops(cfg.WindowLen, cfg.Factor, cfg.PitchMultiple)
	if err != nil {
		return nil, &ConfigurationError{Field: "hops", Reason: err.Error()}
	}
	p := Pipe{
		cfg:        cfg,
		hops:       hops,
		bufferSize: cfg.WindowLen / resynth.Overlap,
		log:        log.Discard(),
	}
	for _, option := range options {
		option(&p)
	}

	if p.source, err = source(p.bufferSize); err != nil {
		return nil, fmt.Errorf("source: %w", err)
	}
	p.input = p.source.SignalProperties
	if p.input.SampleRate <= 0 || p.input.Channels <= 0 {
		return nil, errors.Join(
			fmt.Errorf("source: invalid signal properties %+v", p.input),
			flush(p.source.FlushFunc),
		)
	}
	p.output = SignalProperties{
		SampleRate: p.input.SampleRate,
		Channels:   p.input.Channels,
		Length:     hops.OutputLength(p.input.Length),
	}
	if p.sink, err = sink(p.bufferSize, p.output); err != nil {
		return nil, errors.Join(fmt.Errorf("sink: %w", err), flush(p.source.FlushFunc))
	}
	p.log.WithFields(logrus.Fields{
		"sample_rate":    p.input.SampleRate,
		"channels":       p.input.Channels,
		"analysis_hop":   hops.Analysis,
		"synthesis_hop":  hops.Synthesis,
		"pitch_multiple": hops.Pitch,
	}).Debug("pipe created")
	return &p, nil
}

// Input returns properties of the input signal.
func (p *Pipe) Input() SignalProperties {
	return p.input
}

// Output returns properties of the output signal.
func (p *Pipe) Output() SignalProperties {
	return p.output
}

// Hops returns analysis and synthesis hops of the pipe.
func (p *Pipe) Hops() resynth.Hops {
	return p.hops
}

// linkCapacity translates buffered duration into the number of items.
func (p *Pipe) linkCapacity() int {
	samples := p.cfg.Buffer.Seconds() * float64(p.input.SampleRate)
	return max(1, int(math.Ceil(samples/float64(p.hops.Analysis))))
}

func flush(fn FlushFunc) error {
	if fn == nil {
		return nil
	}
	return fn(context.Background())
}
