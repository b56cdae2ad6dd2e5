package controller

import (
	"context"
	"sync/atomic"

	"github.com/goncalo-oliveira/kubernetes-operator-sdk/stream"
)

// session owns one live watch stream. It consumes events and dispatches
// them sequentially until the stream ends or the context is cancelled,
// whichever comes first. Cancellation is observed between events only:
// an in-flight dispatch always runs to completion.
//
// The session releases the transport handle when it ends, regardless of
// how it ends.
type session[T any] struct {
	handle stream.Handle[T]
	active atomic.Bool
	done   chan struct{}
}

// newSession wires the stream to the dispatch function and starts
// consuming. The returned session is active: a handle that was granted
// without error is a confirmed subscription.
func newSession[T any](ctx context.Context, h stream.Handle[T], dispatch func(context.Context, stream.Event[T])) *session[T] {
	s := &session[T]{
		handle: h,
		done:   make(chan struct{}),
	}
	s.active.Store(true)

	go func() {
		defer close(s.done)
		defer s.active.Store(false)
		defer h.Stop()

		for {
			select {
			case ev, ok := <-h.Events():
				if !ok {
					return
				}
				dispatch(ctx, ev)
			case <-ctx.Done():
				return
			}
		}
	}()

	return s
}

// Active reports whether the stream is still delivering events.
func (s *session[T]) Active() bool {
	return s.active.Load()
}

// Done is closed once the session has ended and the handle is released.
func (s *session[T]) Done() <-chan struct{} {
	return s.done
}

// Stop releases the transport handle, ending the session. Safe to call
// more than once.
func (s *session[T]) Stop() {
	s.handle.Stop()
}
