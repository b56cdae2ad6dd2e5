// Package descriptor derives the group/version/kind/plural metadata that
// identifies a resource type to the API server.
//
// Go has no runtime attribute inspection, so resource types declare their
// metadata explicitly: either by calling Register at init time, or by
// implementing the Provider interface. Resolve looks the metadata up and
// derives an immutable Descriptor from it.
package descriptor

import (
	"errors"
	"fmt"
	"reflect"
	"strings"
	"sync"

	"k8s.io/apimachinery/pkg/runtime/schema"
)

// ErrMissingDescriptor is returned by Resolve when a resource type has no
// registered metadata and does not implement Provider. A controller cannot
// watch a type without a descriptor; this error is fatal for its loop.
var ErrMissingDescriptor = errors.New("resource type has no descriptor metadata")

// Metadata is the raw resource metadata a type declares about itself.
type Metadata struct {
	// Group is the API group. Empty for the core group.
	Group string

	// Version is the API version, e.g. "v1". Required.
	Version string

	// Kind is the resource kind, e.g. "ConfigMap". Required.
	Kind string

	// Plural is the plural resource name. If empty, a naive plural is
	// derived by lower-casing Kind and appending "s". Types whose plural
	// is irregular must set it explicitly.
	Plural string
}

// Provider is implemented by resource types that statically declare their
// own metadata instead of registering it.
type Provider interface {
	ResourceMetadata() Metadata
}

// Descriptor is the derived, immutable identity of a resource type.
type Descriptor struct {
	// Group is the API group, possibly empty.
	Group string

	// Version is the bare API version, e.g. "v1".
	Version string

	// APIVersion is "group/version", or just "version" for the core group.
	APIVersion string

	// Kind is the lower-cased display kind, qualified with the group when
	// one is set, e.g. "thing.example.io".
	Kind string

	// Plural is the lower-cased plural resource name.
	Plural string
}

// GroupVersionResource returns the descriptor as a GVR suitable for a
// dynamic client.
func (d Descriptor) GroupVersionResource() schema.GroupVersionResource {
	return schema.GroupVersionResource{
		Group:    d.Group,
		Version:  d.Version,
		Resource: d.Plural,
	}
}

var (
	mu       sync.RWMutex
	registry = map[reflect.Type]Metadata{}
)

// Register records the metadata for resource type T. Later registrations
// for the same type replace earlier ones. Typically called from an init
// function alongside the type definition.
func Register[T any](m Metadata) {
	mu.Lock()
	defer mu.Unlock()
	registry[typeOf[T]()] = m
}

// Resolve derives the Descriptor for resource type T. Registered metadata
// takes precedence over the Provider interface. Resolution is a pure
// function of the metadata: resolving the same type twice yields identical
// descriptors.
func Resolve[T any]() (Descriptor, error) {
	typ := typeOf[T]()

	mu.RLock()
	m, ok := registry[typ]
	mu.RUnlock()

	if !ok {
		m, ok = providedMetadata(typ)
	}
	if !ok {
		var zero T
		return Descriptor{}, fmt.Errorf("%w: %T", ErrMissingDescriptor, zero)
	}
	return derive(m)
}

// typeOf returns the reflect.Type for T without needing an instance.
func typeOf[T any]() reflect.Type {
	return reflect.TypeOf((*T)(nil)).Elem()
}

// providedMetadata instantiates typ and asks it for metadata, if it
// implements Provider. Pointer types are instantiated as pointers to a
// fresh zero value so that methods may safely touch fields.
func providedMetadata(typ reflect.Type) (Metadata, bool) {
	var instance any
	if typ.Kind() == reflect.Ptr {
		instance = reflect.New(typ.Elem()).Interface()
	} else {
		instance = reflect.New(typ).Elem().Interface()
	}
	p, ok := instance.(Provider)
	if !ok {
		return Metadata{}, false
	}
	return p.ResourceMetadata(), true
}

func derive(m Metadata) (Descriptor, error) {
	if m.Kind == "" || m.Version == "" {
		return Descriptor{}, fmt.Errorf("%w: kind and version are required", ErrMissingDescriptor)
	}

	d := Descriptor{
		Group:      m.Group,
		Version:    m.Version,
		APIVersion: m.Version,
		Kind:       strings.ToLower(m.Kind),
		Plural:     strings.ToLower(m.Kind) + "s",
	}
	if m.Group != "" {
		d.APIVersion = m.Group + "/" + m.Version
		d.Kind = strings.ToLower(m.Kind + "." + m.Group)
	}
	if m.Plural != "" {
		d.Plural = strings.ToLower(m.Plural)
	}
	return d, nil
}
