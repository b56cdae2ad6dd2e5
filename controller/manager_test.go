package controller

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"
)

func TestManagerRunsAllRunnables(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())

	var started atomic.Int32
	wait := RunnableFunc(func(ctx context.Context) error {
		started.Add(1)
		<-ctx.Done()
		return nil
	})

	m := NewManager(wait)
	m.Add(wait)

	runDone := make(chan error, 1)
	go func() { runDone <- m.Run(ctx) }()

	waitFor(t, "both runnables to start", func() bool { return started.Load() == 2 })
	cancel()

	if err := <-runDone; err != nil {
		t.Fatalf("Run returned error: %v", err)
	}
}

func TestManagerFirstErrorCancelsRest(t *testing.T) {
	boom := errors.New("loop failed")

	var peerCancelled atomic.Bool
	m := NewManager(
		RunnableFunc(func(ctx context.Context) error {
			return boom
		}),
		RunnableFunc(func(ctx context.Context) error {
			<-ctx.Done()
			peerCancelled.Store(true)
			return nil
		}),
	)

	err := m.Run(context.Background())
	if !errors.Is(err, boom) {
		t.Fatalf("expected loop error, got %v", err)
	}
	if !peerCancelled.Load() {
		t.Error("expected the surviving loop to be cancelled")
	}
}

func TestManagerRunsControllers(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())

	client := newFakeClient()
	ctrl := New[*testResource](client, &recordingReconciler{}, nil)

	m := NewManager(ctrl, RunnableFunc(func(ctx context.Context) error {
		<-ctx.Done()
		return nil
	}))

	runDone := make(chan error, 1)
	go func() { runDone <- m.Run(ctx) }()

	nextHandle(t, client)
	cancel()

	select {
	case err := <-runDone:
		if err != nil {
			t.Fatalf("Run returned error: %v", err)
		}
	case <-time.After(3 * time.Second):
		t.Fatal("timed out waiting for manager shutdown")
	}
}
