package controller

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/chainguard-dev/clog"

	"github.com/goncalo-oliveira/kubernetes-operator-sdk/descriptor"
	"github.com/goncalo-oliveira/kubernetes-operator-sdk/stream"
)

// defaultBackoff is the fixed delay before retrying a failed list/watch
// request. Retries are unbounded: a transport failure is never fatal.
const defaultBackoff = 3 * time.Second

// ErrAlreadyStarted is returned by Start when the controller is running.
var ErrAlreadyStarted = errors.New("controller already started")

// State is the phase of the reconciliation loop.
type State int32

const (
	StateInitializing State = iota
	StateWatching
	StateRecovering
	StateStopped
)

func (s State) String() string {
	switch s {
	case StateInitializing:
		return "Initializing"
	case StateWatching:
		return "Watching"
	case StateRecovering:
		return "Recovering"
	case StateStopped:
		return "Stopped"
	}
	return fmt.Sprintf("State(%d)", int32(s))
}

// Options configures a Controller. The watch scope is fixed at
// construction and immutable thereafter.
type Options struct {
	// Namespace limits the controller to a specific namespace.
	// If empty, the controller watches cluster-wide.
	Namespace string

	// LabelSelector filters the watched resources.
	// If empty, all resources of the type are watched.
	LabelSelector string

	// Backoff is the fixed delay before retrying a failed list/watch
	// request. Defaults to 3 seconds if not set.
	Backoff time.Duration
}

// Controller runs the reconciliation loop for resources of type T: it
// resolves the type's descriptor, opens a watch stream scoped by the
// options, dispatches each change notification to the reconciler, and
// re-establishes the stream after every termination until the context
// is cancelled. A clean stream end is retried immediately; a transport
// failure is retried after a fixed back-off.
type Controller[T any] struct {
	client        stream.Client[T]
	reconciler    Reconciler[T]
	namespace     string
	labelSelector string
	backoff       time.Duration

	state atomic.Int32
	kind  string

	mu     sync.Mutex
	cancel context.CancelFunc
	done   chan struct{}
	runErr error
}

// New creates a Controller with the given stream client, reconciler, and
// options.
func New[T any](client stream.Client[T], reconciler Reconciler[T], opts *Options) *Controller[T] {
	if opts == nil {
		opts = &Options{}
	}
	if opts.Backoff <= 0 {
		opts.Backoff = defaultBackoff
	}

	return &Controller[T]{
		client:        client,
		reconciler:    reconciler,
		namespace:     opts.Namespace,
		labelSelector: opts.LabelSelector,
		backoff:       opts.Backoff,
	}
}

// State returns the current phase of the loop.
func (c *Controller[T]) State() State {
	return State(c.state.Load())
}

func (c *Controller[T]) setState(s State) {
	c.state.Store(int32(s))
}

// Run executes the reconciliation loop and blocks until the context is
// cancelled. It returns a non-nil error only for the two fatal
// conditions: a failed startup hook or an unresolvable descriptor.
func (c *Controller[T]) Run(ctx context.Context) error {
	c.setState(StateInitializing)
	defer c.setState(StateStopped)

	if init, ok := c.reconciler.(Initializer); ok {
		if err := init.Initialize(ctx); err != nil {
			clog.ErrorContext(ctx, "reconciler initialization failed", "error", err)
			return fmt.Errorf("initializing reconciler: %w", err)
		}
	}

	desc, err := descriptor.Resolve[T]()
	if err != nil {
		clog.ErrorContext(ctx, "failed to resolve resource descriptor", "error", err)
		return err
	}
	c.kind = desc.Kind

	scope := stream.Scope{
		Namespace:     c.namespace,
		LabelSelector: c.labelSelector,
	}
	target := c.namespace
	if target == "" {
		target = "cluster-wide"
	}

	for {
		if ctx.Err() != nil {
			clog.InfoContext(ctx, "controller stopped", "kind", c.kind)
			return nil
		}

		c.setState(StateWatching)
		clog.InfoContext(ctx, "watching resources",
			"resource", desc.Plural,
			"apiVersion", desc.APIVersion,
			"scope", target)

		handle, err := c.client.ListAndWatch(ctx, desc, scope)
		if err != nil {
			if ctx.Err() != nil {
				continue
			}
			c.recover(ctx, err)
			continue
		}

		sess := newSession(ctx, handle, c.dispatch)
		select {
		case <-sess.Done():
			if ctx.Err() == nil {
				clog.InfoContext(ctx, "watch stream ended, re-establishing", "kind", c.kind)
			}
		case <-ctx.Done():
			sess.Stop()
			<-sess.Done()
		}
	}
}

// recover logs a failed list/watch request and sleeps for the fixed
// back-off, waking early on cancellation.
func (c *Controller[T]) recover(ctx context.Context, err error) {
	c.setState(StateRecovering)

	var terr *stream.TransportError
	if errors.As(err, &terr) {
		clog.ErrorContext(ctx, "list/watch request failed",
			"kind", c.kind,
			"code", terr.Code,
			"response", terr.Body,
			"backoff", c.backoff)
	} else {
		clog.ErrorContext(ctx, "list/watch request failed",
			"kind", c.kind,
			"error", err,
			"backoff", c.backoff)
	}

	t := time.NewTimer(c.backoff)
	defer t.Stop()
	select {
	case <-t.C:
	case <-ctx.Done():
	}
}

// dispatch routes one change notification to the reconciler. Hook errors
// are isolated per event: logged, never allowed to end the session.
func (c *Controller[T]) dispatch(ctx context.Context, ev stream.Event[T]) {
	switch ev.Kind {
	case stream.Added, stream.Modified:
		if err := c.reconciler.ReconcileKind(ctx, ev.Object); err != nil {
			clog.ErrorContext(ctx, "reconcile failed", "kind", c.kind, "error", err)
		}
	case stream.Deleted:
		if err := c.reconciler.DeleteKind(ctx, ev.Object); err != nil {
			clog.ErrorContext(ctx, "delete failed", "kind", c.kind, "error", err)
		}
	case stream.Error:
		clog.WarnContext(ctx, "error event received from watch stream", "kind", c.kind)
	default:
		clog.DebugContext(ctx, "ignoring watch event", "kind", c.kind, "type", ev.Kind)
	}
}

// Start launches the loop in the background for hosts that drive the
// controller through explicit lifecycle calls. The loop runs until Stop
// is called or the parent context is cancelled.
func (c *Controller[T]) Start(ctx context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.cancel != nil {
		return ErrAlreadyStarted
	}

	clog.InfoContext(ctx, "starting controller")

	rctx, cancel := context.WithCancel(ctx)
	c.cancel = cancel
	c.done = make(chan struct{})

	go func() {
		defer close(c.done)
		c.runErr = c.Run(rctx)
	}()
	return nil
}

// Stop signals cancellation, waits for the loop to reach Stopped, and
// returns the loop's error, if any. Calling Stop on a controller that
// was never started is a no-op.
func (c *Controller[T]) Stop() error {
	c.mu.Lock()
	cancel, done := c.cancel, c.done
	c.cancel = nil
	c.mu.Unlock()

	if cancel == nil {
		return nil
	}

	clog.InfoContext(context.Background(), "stopping controller")
	cancel()
	<-done
	return c.runErr
}
