// Package stream defines the narrow transport contract the reconciliation
// loop consumes: a client that opens a server-streamed listing of change
// events for a resource collection, and the handle representing one such
// stream. A dynamic-client-backed implementation is provided; the loop
// itself only depends on the interfaces.
package stream

import (
	"context"

	"github.com/goncalo-oliveira/kubernetes-operator-sdk/descriptor"
)

// ChangeKind tags a single change notification from the stream.
type ChangeKind string

const (
	Added    ChangeKind = "ADDED"
	Modified ChangeKind = "MODIFIED"
	Deleted  ChangeKind = "DELETED"
	Bookmark ChangeKind = "BOOKMARK"
	Error    ChangeKind = "ERROR"
)

// Event is one change notification. Object is the zero value for Error
// and Bookmark events, which carry no decodable resource.
type Event[T any] struct {
	Kind   ChangeKind
	Object T
}

// Scope narrows a watch to a namespace and/or label selector. An empty
// Namespace watches cluster-wide; an empty LabelSelector matches all.
type Scope struct {
	Namespace     string
	LabelSelector string
}

// Handle is one live server-streamed subscription. The events channel is
// closed when the stream ends, whether by the peer or by Stop.
type Handle[T any] interface {
	// Events returns the channel of change notifications.
	Events() <-chan Event[T]

	// Stop releases the underlying transport. Safe to call more than
	// once, and safe to call after the stream has already ended.
	Stop()
}

// Client opens watch streams for a resource collection. Implementations
// return a *TransportError for failures at the network/API layer.
type Client[T any] interface {
	ListAndWatch(ctx context.Context, d descriptor.Descriptor, scope Scope) (Handle[T], error)
}
