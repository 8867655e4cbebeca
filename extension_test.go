package dynamic

import (
	"errors"
	"testing"

	"github.com/goliatone/go-dynamic/pkg/activity"
)

func TestExtensionBagAddAndOverwrite(t *testing.T) {
	bag := NewExtensionBag()

	if err := bag.Add("", 1); err == nil {
		t.Fatalf("expected empty name to be rejected")
	}

	if err := bag.Add("timeout", 100); err != nil {
		t.Fatalf("add: %v", err)
	}
	if err := bag.Add("retries", 3); err != nil {
		t.Fatalf("add: %v", err)
	}
	if err := bag.Add("timeout", 250); err != nil {
		t.Fatalf("overwrite: %v", err)
	}

	if value, ok := bag.Get("timeout"); !ok || value != 250 {
		t.Fatalf("expected overwrite to win, got %v", value)
	}
	if bag.Len() != 2 {
		t.Fatalf("expected 2 names, got %d", bag.Len())
	}
	names := bag.Names()
	if len(names) != 2 || names[0] != "timeout" || names[1] != "retries" {
		t.Fatalf("expected insertion order preserved, got %v", names)
	}
}

func TestExtensionBagEmitsEvents(t *testing.T) {
	capture := &activity.CaptureHook{}
	emitter := activity.NewEmitter(activity.Hooks{capture}, activity.Config{Enabled: true})
	bag := NewExtensionBag(WithBagOwner("project 'root'"), WithBagEmitter(emitter))

	if err := bag.Add("flag", true); err != nil {
		t.Fatalf("add: %v", err)
	}
	if err := bag.Add("flag", false); err != nil {
		t.Fatalf("overwrite: %v", err)
	}

	verbs := capture.Verbs()
	if len(verbs) != 2 || verbs[0] != "property.added" || verbs[1] != "property.updated" {
		t.Fatalf("unexpected verbs: %v", verbs)
	}
	if capture.Events[0].ID == "" {
		t.Fatalf("expected event IDs to be assigned")
	}
	if capture.Events[1].Metadata["old_value"] != true {
		t.Fatalf("expected previous value in metadata, got %v", capture.Events[1].Metadata)
	}
}

func TestBagViewAlwaysAcceptsWrites(t *testing.T) {
	bag := NewExtensionBag()
	view := BagView("task ':compile' extensions", bag)

	if view.HasProperty("anything") {
		t.Fatalf("expected empty bag to recognise nothing")
	}
	if _, err := view.Property("anything"); !errors.Is(err, ErrUnknownProperty) {
		t.Fatalf("expected ErrUnknownProperty, got %v", err)
	}

	if err := view.SetProperty("anything", "value"); err != nil {
		t.Fatalf("expected write to succeed: %v", err)
	}
	value, err := view.Property("anything")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if value != "value" {
		t.Fatalf("expected round trip, got %v", value)
	}
}

func TestBagViewInvokesStoredCallables(t *testing.T) {
	bag := NewExtensionBag()
	view := BagView("extensions", bag)

	if err := bag.Add("double", func(n int) int { return n * 2 }); err != nil {
		t.Fatalf("add func: %v", err)
	}
	if err := bag.Add("plain", 42); err != nil {
		t.Fatalf("add value: %v", err)
	}

	if !view.HasMethod("double", 21) {
		t.Fatalf("expected stored func to be invocable")
	}
	result, err := view.InvokeMethod("double", 21)
	if err != nil {
		t.Fatalf("invoke: %v", err)
	}
	if result != 42 {
		t.Fatalf("expected 42, got %v", result)
	}

	if view.HasMethod("plain") {
		t.Fatalf("expected non-callable value to report no method")
	}
	if _, err := view.InvokeMethod("plain"); !errors.Is(err, ErrUnknownMethod) {
		t.Fatalf("expected ErrUnknownMethod, got %v", err)
	}
}

func TestCallArgumentHandling(t *testing.T) {
	sum := func(values ...int) int {
		total := 0
		for _, v := range values {
			total += v
		}
		return total
	}
	result, err := call(sum, 1, 2, 3)
	if err != nil {
		t.Fatalf("variadic call: %v", err)
	}
	if result != 6 {
		t.Fatalf("expected 6, got %v", result)
	}

	fail := func() (string, error) { return "", errors.New("boom") }
	if _, err := call(fail); err == nil || err.Error() != "boom" {
		t.Fatalf("expected error passthrough, got %v", err)
	}

	if _, err := call(func(int) {}, "not-an-int"); err == nil {
		t.Fatalf("expected argument type mismatch error")
	}
	if _, err := call(func(int) {}); err == nil {
		t.Fatalf("expected arity error")
	}
}
