// Package fitting provides bounded links that connect pipeline stages
// executed in different goroutines.
package fitting

import "context"

type (
	// Sender sends values downstream.
	Sender[T any] interface {
		Send(context.Context, T) bool
		Close()
	}

	// Receiver receives values from upstream.
	Receiver[T any] interface {
		Receive(context.Context) (T, bool)
	}

	// Link is a FIFO queue of fixed capacity. Send blocks while the queue
	// is full, Receive blocks while it's empty. Both return false when
	// context is done. Link is closed by the sender after the last value.
	Link[T any] struct {
		values chan T
	}
)

// New returns link that holds up to capacity values. Capacity less than
// one is treated as one.
func New[T any](capacity int) *Link[T] {
	return &Link[T]{
		values: make(chan T, max(1, capacity)),
	}
}

// Send puts value into the link. It returns false if context is done
// before the value is queued.
func (l *Link[T]) Send(ctx context.Context, v T) bool {
	select {
	case <-ctx.Done():
		return false
	default:
	}
	select {
	case <-ctx.Done():
		return false
	case l.values <- v:
		return true
	}
}

// Receive takes the next value. It returns false if link is closed and
// drained or context is done.
func (l *Link[T]) Receive(ctx context.Context) (T, bool) {
	var (
		v  T
		ok bool
	)
	select {
	case <-ctx.Done():
	case v, ok = <-l.values:
	}
	return v, ok
}

// Close marks the end of values. Queued values can still be received.
func (l *Link[T]) Close() {
	close(l.values)
}

// Len returns number of queued values.
func (l *Link[T]) Len() int {
	return len(l.values)
}

// Cap returns capacity of the link.
func (l *Link[T]) Cap() int {
	return cap(l.values)
}
