package vocoder

import (
	"errors"
	"fmt"

	"pipelined.dev/vocoder/internal/runtime"
)

// ErrSingleUse is returned when pipe is run more than once.
var ErrSingleUse = errors.New("pipe can only be run once")

// ErrorRun is returned if stage was successfully started, but execution
// and/or flush failed.
type ErrorRun = runtime.ErrorRun

// ConfigurationError is returned when pipe can't be created with provided
// parameters.
type ConfigurationError struct {
	Field  string
	Reason string
}

func (e *ConfigurationError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Reason)
}

// SourceFormatError is returned when input is malformed or its encoding
// isn't supported.
type SourceFormatError struct {
	Path string
	Err  error
}

func (e *SourceFormatError) Error() string {
	return fmt.Sprintf("unsupported source %s: %v", e.Path, e.Err)
}

func (e *SourceFormatError) Unwrap() error {
	return e.Err
}

// DeviceError is returned when audio device can't be used.
type DeviceError struct {
	Device string
	Err    error
}

func (e *DeviceError) Error() string {
	return fmt.Sprintf("device %s: %v", e.Device, e.Err)
}

func (e *DeviceError) Unwrap() error {
	return e.Err
}
