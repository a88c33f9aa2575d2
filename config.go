package vocoder

import (
	"fmt"
	"math"
	"time"
)

// Config defines how the signal is stretched, shifted and shaped.
type Config struct {
	// Factor scales the duration: 2 is twice slower, 0.5 is twice faster.
	Factor float64
	// PitchMultiple shifts the pitch along harmonic series if positive
	// and along subharmonic series if negative.
	PitchMultiple int
	// WindowLen is the number of samples in the analysis window. It must
	// be a multiple of four.
	WindowLen int
	// Buffer is the maximum duration of signal buffered between stages.
	Buffer time.Duration
	// Amplitude multiplies the output.
	Amplitude float64
	// Fade is the duration of fade-in and fade-out of the output.
	Fade        time.Duration
	RandomPhase bool
}

// DefaultConfig returns configuration that keeps the signal unchanged,
// apart from the fades.
func DefaultConfig() Config {
	return Config{
		Factor:        1,
		PitchMultiple: 1,
		WindowLen:     16384,
		Buffer:        time.Second,
		Amplitude:     1,
		Fade:          time.Second,
	}
}

// Validate returns *ConfigurationError if any parameter is out of range.
func (c Config) Validate() error {
	switch {
	case !(c.Factor > 0) || math.IsInf(c.Factor, 0):
		return &ConfigurationError{Field: "factor", Reason: fmt.Sprintf("must be positive and finite, got %v", c.Factor)}
	case c.PitchMultiple == 0:
		return &ConfigurationError{Field: "pitch_multiple", Reason: "must be nonzero"}
	case c.WindowLen < 16:
		return &ConfigurationError{Field: "window_len", Reason: fmt.Sprintf("must be at least 16, got %d", c.WindowLen)}
	case c.WindowLen%4 != 0:
		return &ConfigurationError{Field: "window_len", Reason: fmt.Sprintf("must be a multiple of 4, got %d", c.WindowLen)}
	case c.Buffer <= 0:
		return &ConfigurationError{Field: "buffer", Reason: fmt.Sprintf("must be positive, got %v", c.Buffer)}
	case math.IsNaN(c.Amplitude) || math.IsInf(c.Amplitude, 0):
		return &ConfigurationError{Field: "amplitude", Reason: fmt.Sprintf("must be finite, got %v", c.Amplitude)}
	case c.Fade < 0:
		return &ConfigurationError{Field: "fade", Reason: fmt.Sprintf("must not be negative, got %v", c.Fade)}
	}
	return nil
}
