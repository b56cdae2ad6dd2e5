package stream

import (
	"context"
	"encoding/json"
	"sync"

	metav1 "k8s.io/apimachinery/pkg/apis/meta/v1"
	"k8s.io/apimachinery/pkg/apis/meta/v1/unstructured"
	"k8s.io/apimachinery/pkg/runtime"
	apiwatch "k8s.io/apimachinery/pkg/watch"
	"k8s.io/client-go/dynamic"

	"github.com/goncalo-oliveira/kubernetes-operator-sdk/descriptor"
)

// NewDynamicClient returns a Client backed by a dynamic Kubernetes client.
// Streamed objects are decoded into T by a JSON round-trip, so T must be a
// pointer to a struct with standard Kubernetes JSON tags.
func NewDynamicClient[T any](dyn dynamic.Interface) Client[T] {
	return &dynamicClient[T]{dyn: dyn}
}

type dynamicClient[T any] struct {
	dyn dynamic.Interface
}

func (c *dynamicClient[T]) ListAndWatch(ctx context.Context, d descriptor.Descriptor, scope Scope) (Handle[T], error) {
	opts := metav1.ListOptions{}
	if scope.LabelSelector != "" {
		opts.LabelSelector = scope.LabelSelector
	}

	w, err := c.dyn.Resource(d.GroupVersionResource()).Namespace(scope.Namespace).Watch(ctx, opts)
	if err != nil {
		return nil, asTransportError(err)
	}

	h := &watchHandle[T]{
		w:      w,
		events: make(chan Event[T]),
		stop:   make(chan struct{}),
	}
	go h.pump()
	return h, nil
}

// watchHandle adapts a watch.Interface into a Handle.
type watchHandle[T any] struct {
	w      apiwatch.Interface
	events chan Event[T]
	stop   chan struct{}
	once   sync.Once
}

func (h *watchHandle[T]) Events() <-chan Event[T] {
	return h.events
}

func (h *watchHandle[T]) Stop() {
	h.once.Do(func() {
		close(h.stop)
		h.w.Stop()
	})
}

func (h *watchHandle[T]) pump() {
	defer close(h.events)

	for ev := range h.w.ResultChan() {
		out := Event[T]{Kind: ChangeKind(ev.Type)}

		switch ev.Type {
		case apiwatch.Added, apiwatch.Modified, apiwatch.Deleted:
			obj, err := decode[T](ev.Object)
			if err != nil {
				// Undecodable objects are surfaced as error
				// notifications; the dispatcher swallows them.
				out = Event[T]{Kind: Error}
			} else {
				out.Object = obj
			}
		}

		select {
		case h.events <- out:
		case <-h.stop:
			return
		}
	}
}

// decode converts a streamed object into T via JSON round-trip.
func decode[T any](obj runtime.Object) (T, error) {
	var out T

	var payload any = obj
	if u, ok := obj.(*unstructured.Unstructured); ok {
		payload = u.Object
	}

	data, err := json.Marshal(payload)
	if err != nil {
		return out, err
	}
	if err := json.Unmarshal(data, &out); err != nil {
		return out, err
	}
	return out, nil
}
