// Package mock provides mocks for pipeline components and allows to
// execute integration tests.
package mock

import (
	"context"
	"io"
	"sync"
	"time"

	"pipelined.dev/vocoder"
	"pipelined.dev/vocoder/signal"
)

const (
	defaultSampleRate = 44100
	defaultChannels   = 1
)

// Source mocks a signal source. It either reads Data or produces Limit
// samples of Value.
type Source struct {
	counter
	Data       signal.Float64
	Value      float64
	Limit      int
	Channels   int
	SampleRate int
	// Unknown hides the length of the signal.
	Unknown  bool
	Interval time.Duration
	// OnRead is called before every read with the number of the block.
	OnRead      func(block int)
	ErrorOnCall error
	Hooks
}

// Source returns allocator of the mock source.
func (m *Source) Source() vocoder.SourceAllocatorFunc {
	return func(bufferSize int) (vocoder.Source, error) {
		channels, limit := m.Channels, m.Limit
		if m.Data != nil {
			channels, limit = m.Data.NumChannels(), m.Data.Size()
		}
		if channels == 0 {
			channels = defaultChannels
		}
		sampleRate := m.SampleRate
		if sampleRate == 0 {
			sampleRate = defaultSampleRate
		}
		length := limit
		if m.Unknown {
			length = -1
		}
		return vocoder.Source{
			SourceFunc: func(out signal.Float64) (int, error) {
				if m.OnRead != nil {
					m.OnRead(m.messages)
				}
				if m.ErrorOnCall != nil {
					return 0, m.ErrorOnCall
				}
				if m.samples >= limit {
					return 0, io.EOF
				}
				time.Sleep(m.Interval)

				n := min(out.Size(), limit-m.samples)
				for c := range out {
					if m.Data != nil {
						copy(out[c][:n], m.Data[c][m.samples:])
						continue
					}
					for i := 0; i < n; i++ {
						out[c][i] = m.Value
					}
				}
				m.advance(n)
				return n, nil
			},
			StartFunc: m.start,
			FlushFunc: m.flush,
			SignalProperties: vocoder.SignalProperties{
				SampleRate: sampleRate,
				Channels:   channels,
				Length:     length,
			},
		}, nil
	}
}

// Sink mocks a signal sink. Gate, if set, holds every write until a
// value is received from it.
type Sink struct {
	counter
	mu          sync.Mutex
	buffer      signal.Float64
	Discard     bool
	Gate        <-chan struct{}
	ErrorOnCall error
	Hooks

	props vocoder.SignalProperties
}

// Sink returns allocator of the mock sink.
func (m *Sink) Sink() vocoder.SinkAllocatorFunc {
	return func(bufferSize int, props vocoder.SignalProperties) (vocoder.Sink, error) {
		m.props = props
		return vocoder.Sink{
			SinkFunc: func(in signal.Float64) error {
				if m.Gate != nil {
					<-m.Gate
				}
				if m.ErrorOnCall != nil {
					return m.ErrorOnCall
				}
				m.mu.Lock()
				defer m.mu.Unlock()
				if !m.Discard {
					m.buffer = m.buffer.Append(in)
				}
				m.advance(in.Size())
				return nil
			},
			StartFunc: m.start,
			FlushFunc: m.flush,
		}, nil
	}
}

// Buffer returns sink's buffer.
func (m *Sink) Buffer() signal.Float64 {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.buffer
}

// Properties returns properties of the signal the sink was allocated for.
func (m *Sink) Properties() vocoder.SignalProperties {
	return m.props
}

// Hooks allows to mock components hooks.
type Hooks struct {
	Started bool
	Flushed bool

	ErrorOnStart error
	ErrorOnFlush error
}

func (h *Hooks) start(context.Context) error {
	h.Started = true
	return h.ErrorOnStart
}

func (h *Hooks) flush(context.Context) error {
	h.Flushed = true
	return h.ErrorOnFlush
}

type counter struct {
	messages int
	samples  int
}

// Count returns the number of processed messages and samples.
func (c *counter) Count() (int, int) {
	return c.messages, c.samples
}

func (c *counter) advance(size int) {
	c.messages++
	c.samples += size
}
