// Package runtime contains executors of the pipeline stages. Every stage
// runs in its own goroutine and is connected to its neighbours with
// bounded links.
package runtime

import (
	"context"
	"errors"
	"fmt"
	"io"
)

type (
	// Executor executes a single stage of the pipeline.
	Executor interface {
		Start(context.Context) error
		Execute(context.Context) error
		Flush(context.Context) error
	}

	// StartFunc is a closure that triggers component start hook.
	StartFunc func(ctx context.Context) error
	// FlushFunc is a closure that triggers component flush hook.
	FlushFunc func(ctx context.Context) error
)

// Start calls the start hook.
func (fn StartFunc) Start(ctx context.Context) error {
	return callHook(ctx, fn)
}

// Flush calls the flush hook.
func (fn FlushFunc) Flush(ctx context.Context) error {
	return callHook(ctx, fn)
}

func callHook(ctx context.Context, hook func(context.Context) error) error {
	if hook == nil {
		return nil
	}
	return hook(ctx)
}

// ErrorRun is returned if executor was successfully started, but execution
// and/or flush failed.
type ErrorRun struct {
	ErrExec  error
	ErrFlush error
}

func (e *ErrorRun) Error() string {
	switch {
	case e.ErrExec != nil && e.ErrFlush != nil:
		return fmt.Sprintf("flush error: %v after execute error: %v", e.ErrFlush, e.ErrExec)
	case e.ErrExec != nil:
		return fmt.Sprintf("execute error: %v", e.ErrExec)
	case e.ErrFlush != nil:
		return fmt.Sprintf("flush error: %v", e.ErrFlush)
	}
	return ""
}

// Is checks if any of errors match provided sentinel error.
func (e *ErrorRun) Is(err error) bool {
	if e.ErrExec != nil && errors.Is(e.ErrExec, err) {
		return true
	}
	if e.ErrFlush != nil && errors.Is(e.ErrFlush, err) {
		return true
	}
	return false
}

// As finds the first error that matches target.
func (e *ErrorRun) As(target any) bool {
	if e.ErrExec != nil && errors.As(e.ErrExec, target) {
		return true
	}
	return e.ErrFlush != nil && errors.As(e.ErrFlush, target)
}

// Run starts the executor and executes it until io.EOF or error is
// returned. Flush hook is called after successful start even if execution
// failed. Flush isn't bound to ctx cancellation, so resources are
// released after abort too.
func Run(ctx context.Context, e Executor) error {
	if err := e.Start(ctx); err != nil {
		return fmt.Errorf("error starting component: %w", err)
	}

	var errExec error
	for errExec == nil {
		errExec = e.Execute(ctx)
	}
	if errExec == io.EOF {
		errExec = nil
	}
	errFlush := e.Flush(context.WithoutCancel(ctx))
	if errExec == nil && errFlush == nil {
		return nil
	}
	return &ErrorRun{
		ErrExec:  errExec,
		ErrFlush: errFlush,
	}
}
