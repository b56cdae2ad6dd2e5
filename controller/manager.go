package controller

import (
	"context"

	"golang.org/x/sync/errgroup"
)

// Runnable is anything that blocks in Run until its context is
// cancelled. Controller satisfies it for any resource type.
type Runnable interface {
	Run(ctx context.Context) error
}

// RunnableFunc is an adapter to allow ordinary functions to be used as
// Runnables.
type RunnableFunc func(ctx context.Context) error

// Run calls f(ctx).
func (f RunnableFunc) Run(ctx context.Context) error {
	return f(ctx)
}

// Manager runs a set of independent reconciliation loops, one per
// resource type. The loops share no state; the manager only ties their
// lifetimes together: the first loop to fail cancels the rest.
type Manager struct {
	runnables []Runnable
}

// NewManager creates a Manager with the given runnables.
func NewManager(runnables ...Runnable) *Manager {
	return &Manager{runnables: runnables}
}

// Add registers another runnable. Must not be called after Run.
func (m *Manager) Add(r Runnable) {
	m.runnables = append(m.runnables, r)
}

// Run starts every runnable and blocks until they have all returned.
// It returns the first error, if any.
func (m *Manager) Run(ctx context.Context) error {
	g, gctx := errgroup.WithContext(ctx)
	for _, r := range m.runnables {
		g.Go(func() error {
			return r.Run(gctx)
		})
	}
	return g.Wait()
}
