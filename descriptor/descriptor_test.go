package descriptor

import (
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"
	"k8s.io/apimachinery/pkg/runtime/schema"
)

type thing struct{}

func (*thing) ResourceMetadata() Metadata {
	return Metadata{Group: "example.io", Version: "v1", Kind: "Thing"}
}

type widget struct{}

func (*widget) ResourceMetadata() Metadata {
	return Metadata{Version: "v1", Kind: "Widget"}
}

type wombat struct{}

func (*wombat) ResourceMetadata() Metadata {
	return Metadata{Group: "example.io", Version: "v2", Kind: "WombatColony", Plural: "Wombats"}
}

type unregistered struct{}

func TestResolveGrouped(t *testing.T) {
	got, err := Resolve[*thing]()
	if err != nil {
		t.Fatalf("Resolve failed: %v", err)
	}

	want := Descriptor{
		Group:      "example.io",
		Version:    "v1",
		APIVersion: "example.io/v1",
		Kind:       "thing.example.io",
		Plural:     "things",
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("descriptor mismatch (-want +got):\n%s", diff)
	}
}

func TestResolveCoreGroup(t *testing.T) {
	got, err := Resolve[*widget]()
	if err != nil {
		t.Fatalf("Resolve failed: %v", err)
	}

	want := Descriptor{
		Version:    "v1",
		APIVersion: "v1",
		Kind:       "widget",
		Plural:     "widgets",
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("descriptor mismatch (-want +got):\n%s", diff)
	}
}

func TestResolveExplicitPlural(t *testing.T) {
	got, err := Resolve[*wombat]()
	if err != nil {
		t.Fatalf("Resolve failed: %v", err)
	}
	if got.Plural != "wombats" {
		t.Errorf("expected plural wombats, got %q", got.Plural)
	}
}

func TestResolveMissing(t *testing.T) {
	_, err := Resolve[*unregistered]()
	if !errors.Is(err, ErrMissingDescriptor) {
		t.Fatalf("expected ErrMissingDescriptor, got %v", err)
	}
}

func TestResolveIncompleteMetadata(t *testing.T) {
	type halfBaked struct{}
	Register[*halfBaked](Metadata{Group: "example.io"})

	_, err := Resolve[*halfBaked]()
	if !errors.Is(err, ErrMissingDescriptor) {
		t.Fatalf("expected ErrMissingDescriptor, got %v", err)
	}
}

func TestRegisterOverridesProvider(t *testing.T) {
	type registered struct{}
	Register[*registered](Metadata{Group: "apps.example.io", Version: "v1beta1", Kind: "Deployment"})

	got, err := Resolve[*registered]()
	if err != nil {
		t.Fatalf("Resolve failed: %v", err)
	}
	if got.APIVersion != "apps.example.io/v1beta1" {
		t.Errorf("expected apiVersion apps.example.io/v1beta1, got %q", got.APIVersion)
	}
	if got.Kind != "deployment.apps.example.io" {
		t.Errorf("expected kind deployment.apps.example.io, got %q", got.Kind)
	}
}

func TestResolveIdempotent(t *testing.T) {
	first, err := Resolve[*thing]()
	if err != nil {
		t.Fatalf("Resolve failed: %v", err)
	}
	second, err := Resolve[*thing]()
	if err != nil {
		t.Fatalf("Resolve failed: %v", err)
	}
	if diff := cmp.Diff(first, second); diff != "" {
		t.Errorf("descriptors differ between resolutions (-first +second):\n%s", diff)
	}
}

func TestGroupVersionResource(t *testing.T) {
	d, err := Resolve[*thing]()
	if err != nil {
		t.Fatalf("Resolve failed: %v", err)
	}

	want := schema.GroupVersionResource{Group: "example.io", Version: "v1", Resource: "things"}
	if got := d.GroupVersionResource(); got != want {
		t.Errorf("expected GVR %v, got %v", want, got)
	}
}
