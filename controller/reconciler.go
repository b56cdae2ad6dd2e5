package controller

import (
	"context"
)

// Reconciler is the pair of hooks a controller invokes for resources of
// type T. ReconcileKind fires for added and modified resources,
// DeleteKind for deleted ones. Invocations for one controller are
// strictly sequential: the next notification is not dispatched until
// the current hook returns.
//
// Hook errors do not end the watch: they are logged and the stream
// continues with the next notification.
type Reconciler[T any] interface {
	ReconcileKind(ctx context.Context, obj T) error
	DeleteKind(ctx context.Context, obj T) error
}

// Initializer is optionally implemented by reconcilers that need one-time
// setup before watching begins. An Initialize error is fatal: the
// controller logs it and returns it to the host without ever watching.
type Initializer interface {
	Initialize(ctx context.Context) error
}

// ReconcilerFuncs is an adapter to allow ordinary functions to be used as
// a Reconciler. A nil func is a no-op for its event kind.
type ReconcilerFuncs[T any] struct {
	ReconcileFunc func(ctx context.Context, obj T) error
	DeleteFunc    func(ctx context.Context, obj T) error
}

// ReconcileKind calls ReconcileFunc if set.
func (f ReconcilerFuncs[T]) ReconcileKind(ctx context.Context, obj T) error {
	if f.ReconcileFunc == nil {
		return nil
	}
	return f.ReconcileFunc(ctx, obj)
}

// DeleteKind calls DeleteFunc if set.
func (f ReconcilerFuncs[T]) DeleteKind(ctx context.Context, obj T) error {
	if f.DeleteFunc == nil {
		return nil
	}
	return f.DeleteFunc(ctx, obj)
}
