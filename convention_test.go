package dynamic

import (
	"errors"
	"testing"
)

func TestConventionFirstMatchWins(t *testing.T) {
	convention := NewConvention("convention")
	if err := convention.Add("base", viewWith("base", map[string]any{
		"lang":   "groovy",
		"shared": "base",
	})); err != nil {
		t.Fatalf("register base: %v", err)
	}
	if err := convention.Add("extra", viewWith("extra", map[string]any{
		"shared": "extra",
		"port":   8080,
	})); err != nil {
		t.Fatalf("register extra: %v", err)
	}

	flat := convention.AsView()

	value, err := flat.Property("shared")
	if err != nil {
		t.Fatalf("get shared: %v", err)
	}
	if value != "base" {
		t.Fatalf("expected first registration to win, got %v", value)
	}
	if value, _ = flat.Property("port"); value != 8080 {
		t.Fatalf("expected later member contribution, got %v", value)
	}

	props := flat.Properties()
	if props["shared"] != "base" || props["lang"] != "groovy" || props["port"] != 8080 {
		t.Fatalf("unexpected union: %v", props)
	}
}

func TestConventionIsNotACatchAll(t *testing.T) {
	memberBag := NewExtensionBag(WithBagOwner("base"))
	if err := memberBag.Add("lang", "groovy"); err != nil {
		t.Fatalf("seed member: %v", err)
	}
	convention := NewConvention("convention")
	if err := convention.Add("base", BagView("base", memberBag)); err != nil {
		t.Fatalf("register base: %v", err)
	}

	flat := convention.AsView()

	if err := flat.SetProperty("lang", "java"); err != nil {
		t.Fatalf("set owned name: %v", err)
	}
	if got, _ := memberBag.Get("lang"); got != "java" {
		t.Fatalf("expected member update, got %v", got)
	}

	err := flat.SetProperty("unknown", 1)
	if !errors.Is(err, ErrUnknownProperty) {
		t.Fatalf("expected ErrUnknownProperty, got %v", err)
	}
}

func TestConventionLastRegistrationWins(t *testing.T) {
	convention := NewConvention("convention")
	if err := convention.Add("member", viewWith("v1", map[string]any{"flag": "v1"})); err != nil {
		t.Fatalf("register v1: %v", err)
	}
	if err := convention.Add("member", viewWith("v2", map[string]any{"flag": "v2"})); err != nil {
		t.Fatalf("register v2: %v", err)
	}

	if names := convention.Names(); len(names) != 1 || names[0] != "member" {
		t.Fatalf("expected single member entry, got %v", names)
	}
	value, err := convention.AsView().Property("flag")
	if err != nil {
		t.Fatalf("get flag: %v", err)
	}
	if value != "v2" {
		t.Fatalf("expected replacement member, got %v", value)
	}
}

func TestConventionValidatesRegistrations(t *testing.T) {
	convention := NewConvention("convention")
	if err := convention.Add("", viewWith("x", nil)); err == nil {
		t.Fatalf("expected empty name to be rejected")
	}
	if err := convention.Add("member", nil); err == nil {
		t.Fatalf("expected nil member to be rejected")
	}
}

func TestConventionMethodDispatch(t *testing.T) {
	bag := NewExtensionBag()
	if err := bag.Add("version", Function(func(_ ...any) (any, error) {
		return "1.0.0", nil
	})); err != nil {
		t.Fatalf("seed member: %v", err)
	}
	convention := NewConvention("convention")
	if err := convention.Add("base", BagView("base", bag)); err != nil {
		t.Fatalf("register base: %v", err)
	}

	flat := convention.AsView()
	if !flat.HasMethod("version") {
		t.Fatalf("expected member method to resolve")
	}
	result, err := flat.InvokeMethod("version")
	if err != nil {
		t.Fatalf("invoke: %v", err)
	}
	if result != "1.0.0" {
		t.Fatalf("unexpected result %v", result)
	}

	if _, err := flat.InvokeMethod("absent"); !errors.Is(err, ErrUnknownMethod) {
		t.Fatalf("expected ErrUnknownMethod, got %v", err)
	}
}
