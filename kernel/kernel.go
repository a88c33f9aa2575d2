// Package kernel hosts frequency kernels: user transforms of spectral
// frames that are compiled from source, loaded into the running process
// and swapped in when the source changes.
//
// A kernel source is either a Go file built as a plugin, which must
// export
//
//	func Apply(elapsedMs uint64, bins [][2]float32) [][2]float32
//
// or a C file built as a shared library, which must export
//
//	void apply(uint64_t elapsed_ms, const float *in, float *out, uint64_t n)
//
// where in and out hold n interleaved real and imaginary pairs. Kernels
// run as trusted native code.
package kernel

import (
	"errors"
	"fmt"
)

// Func is a frequency kernel. It returns bins of the same length as
// input. Input slice is only valid during the call.
type Func func(elapsedMs uint64, bins [][2]float32) [][2]float32

// ErrFrameLength is returned when kernel returns a frame of unexpected
// length.
var ErrFrameLength = errors.New("kernel frame length mismatch")

// ErrUnsupportedSource is returned when no toolchain can build the source.
var ErrUnsupportedSource = errors.New("unsupported kernel source")

// BuildError is returned when kernel source fails to compile.
type BuildError struct {
	Source string
	// Output holds compiler diagnostics.
	Output string
	Err    error
}

func (e *BuildError) Error() string {
	if e.Output == "" {
		return fmt.Sprintf("build kernel %s: %v", e.Source, e.Err)
	}
	return fmt.Sprintf("build kernel %s: %v\n%s", e.Source, e.Err, e.Output)
}

func (e *BuildError) Unwrap() error {
	return e.Err
}

// LoadError is returned when compiled module can't be loaded or doesn't
// export the kernel.
type LoadError struct {
	Artifact string
	Err      error
}

func (e *LoadError) Error() string {
	return fmt.Sprintf("load kernel %s: %v", e.Artifact, e.Err)
}

func (e *LoadError) Unwrap() error {
	return e.Err
}

// State of the kernel host.
type State int32

const (
	// Uncompiled means no kernel was requested, identity is active.
	Uncompiled State = iota
	// Active means the last built kernel is in effect. If no build
	// succeeded yet, identity is in effect.
	Active
	// Rebuilding means the source changed and a new kernel is being
	// built. The previous kernel is still in effect.
	Rebuilding
)

func (s State) String() string {
	switch s {
	case Uncompiled:
		return "uncompiled"
	case Active:
		return "active"
	case Rebuilding:
		return "rebuilding"
	}
	return fmt.Sprintf("State(%d)", int32(s))
}

// EventKind is a kind of kernel host event.
type EventKind int

// Kernel host events.
const (
	BuildSucceeded EventKind = iota
	BuildFailed
	LoadFailed
	Swapped
	Released
)

func (k EventKind) String() string {
	switch k {
	case BuildSucceeded:
		return "build succeeded"
	case BuildFailed:
		return "build failed"
	case LoadFailed:
		return "load failed"
	case Swapped:
		return "swapped"
	case Released:
		return "released"
	}
	return fmt.Sprintf("EventKind(%d)", int(k))
}

// Event reports kernel host activity.
type Event struct {
	Kind    EventKind
	Version int
	Err     error
}
