package dynamic

import (
	"errors"
	"testing"
)

func TestFunctionRegistryRegisterAndCall(t *testing.T) {
	registry := NewFunctionRegistry()
	if err := registry.Register("double", func(args ...any) (any, error) {
		return args[0].(int) * 2, nil
	}); err != nil {
		t.Fatalf("register: %v", err)
	}

	if err := registry.Register("double", func(args ...any) (any, error) {
		return nil, nil
	}); err == nil {
		t.Fatal("expected duplicate registration to fail")
	}
	if err := registry.Register("", func(args ...any) (any, error) { return nil, nil }); err == nil {
		t.Fatal("expected empty name to be rejected")
	}
	if err := registry.Register("nilfn", nil); err == nil {
		t.Fatal("expected nil function to be rejected")
	}

	// Lookup is case-insensitive.
	result, err := registry.Call("DOUBLE", 21)
	if err != nil {
		t.Fatalf("call: %v", err)
	}
	if result != 42 {
		t.Fatalf("expected 42, got %v", result)
	}

	if _, err := registry.Call("missing"); err == nil {
		t.Fatal("expected unregistered call to fail")
	}
}

func TestFunctionRegistryAsView(t *testing.T) {
	registry := NewFunctionRegistry()
	if err := registry.Register("greet", func(args ...any) (any, error) {
		return "hello " + args[0].(string), nil
	}); err != nil {
		t.Fatalf("register: %v", err)
	}
	view := registry.AsView("helpers")

	if view.DisplayName() != "helpers" {
		t.Fatalf("expected display name helpers, got %q", view.DisplayName())
	}
	if !view.HasMethod("greet", "world") {
		t.Fatalf("expected greet to be invocable")
	}
	result, err := view.InvokeMethod("greet", "world")
	if err != nil {
		t.Fatalf("invoke greet: %v", err)
	}
	if result != "hello world" {
		t.Fatalf("expected hello world, got %v", result)
	}

	if err := view.SetProperty("greet", 1); !errors.Is(err, ErrUnknownProperty) {
		t.Fatalf("expected writes to be rejected, got %v", err)
	}
	if _, err := view.InvokeMethod("missing"); !errors.Is(err, ErrUnknownMethod) {
		t.Fatalf("expected ErrUnknownMethod, got %v", err)
	}
}

func TestFunctionRegistryViewInResolverChain(t *testing.T) {
	registry := NewFunctionRegistry()
	if err := registry.Register("version", func(...any) (any, error) {
		return "1.2.3", nil
	}); err != nil {
		t.Fatalf("register: %v", err)
	}

	r := NewResolver(nil, WithDisplayName("project ':app'"))
	r.AddOverride(AfterConvention, registry.AsView("helpers"))

	result, err := r.InvokeMethod("version")
	if err != nil {
		t.Fatalf("invoke version: %v", err)
	}
	if result != "1.2.3" {
		t.Fatalf("expected 1.2.3, got %v", result)
	}

	// The registry owns the name, so writes to it are rejected rather
	// than falling through to the bag.
	if err := r.SetProperty("version", "9.9.9"); !errors.Is(err, ErrUnknownProperty) {
		t.Fatalf("expected registry-owned name to reject the write, got %v", err)
	}

	// Names the registry does not own still land in the bag.
	if err := r.SetProperty("release", true); err != nil {
		t.Fatalf("set release: %v", err)
	}
	if !r.Bag().Has("release") {
		t.Fatal("expected write to land in the extension bag")
	}
}
