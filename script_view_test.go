package dynamic

import (
	"errors"
	"sync"
	"testing"
)

type countingCache struct {
	mu       sync.Mutex
	programs map[string]any
	hits     int
	misses   int
}

func newCountingCache() *countingCache {
	return &countingCache{programs: make(map[string]any)}
}

func (c *countingCache) Get(expression string) (any, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	program, ok := c.programs[expression]
	if ok {
		c.hits++
	} else {
		c.misses++
	}
	return program, ok
}

func (c *countingCache) Set(expression string, program any) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.programs[expression] = program
}

func TestScriptViewEvaluatesDefinedMembers(t *testing.T) {
	view := NewScriptView("computed", nil, WithScriptSource(func() map[string]any {
		return map[string]any{"timeout": 100, "retries": 3}
	}))

	if err := view.Define("budget", "timeout * retries"); err != nil {
		t.Fatalf("define budget: %v", err)
	}

	if !view.HasProperty("budget") {
		t.Fatalf("expected budget to be defined")
	}
	value, err := view.Property("budget")
	if err != nil {
		t.Fatalf("get budget: %v", err)
	}
	if value != 300 {
		t.Fatalf("expected 300, got %v", value)
	}
}

func TestScriptViewTracksLiveSource(t *testing.T) {
	timeout := 100
	view := NewScriptView("computed", nil, WithScriptSource(func() map[string]any {
		return map[string]any{"timeout": timeout}
	}))
	if err := view.Define("doubled", "timeout * 2"); err != nil {
		t.Fatalf("define doubled: %v", err)
	}

	value, err := view.Property("doubled")
	if err != nil {
		t.Fatalf("first read: %v", err)
	}
	if value != 200 {
		t.Fatalf("expected 200, got %v", value)
	}

	timeout = 500
	value, err = view.Property("doubled")
	if err != nil {
		t.Fatalf("second read: %v", err)
	}
	if value != 1000 {
		t.Fatalf("expected 1000 after source change, got %v", value)
	}
}

func TestScriptViewUnknownProperty(t *testing.T) {
	view := NewScriptView("computed", nil)

	_, err := view.Property("missing")
	if !errors.Is(err, ErrUnknownProperty) {
		t.Fatalf("expected ErrUnknownProperty, got %v", err)
	}
	var propErr *PropertyError
	if !errors.As(err, &propErr) {
		t.Fatalf("expected *PropertyError, got %T", err)
	}
	if propErr.Owner != "computed" {
		t.Fatalf("expected owner %q, got %q", "computed", propErr.Owner)
	}
}

func TestScriptViewDefineValidation(t *testing.T) {
	view := NewScriptView("computed", nil)

	if err := view.Define("", "1 + 1"); err == nil {
		t.Fatal("expected empty name to be rejected")
	}
	if err := view.Define("blank", ""); err == nil {
		t.Fatal("expected empty expression to be rejected")
	}
	if err := view.Define("broken", "timeout +* 2"); err == nil {
		t.Fatal("expected malformed expression to fail compilation")
	}
}

func TestScriptViewSetPropertySemantics(t *testing.T) {
	view := NewScriptView("computed", nil, WithScriptSource(func() map[string]any {
		return map[string]any{"timeout": 100}
	}))
	if err := view.Define("limit", "timeout"); err != nil {
		t.Fatalf("define limit: %v", err)
	}

	// Undefined names are rejected, the view is not a catch-all sink.
	err := view.SetProperty("other", 1)
	if !errors.Is(err, ErrUnknownProperty) {
		t.Fatalf("expected ErrUnknownProperty for undefined name, got %v", err)
	}

	// A string redefines the expression.
	if err := view.SetProperty("limit", "timeout * 10"); err != nil {
		t.Fatalf("redefine limit: %v", err)
	}
	value, err := view.Property("limit")
	if err != nil {
		t.Fatalf("read redefined limit: %v", err)
	}
	if value != 1000 {
		t.Fatalf("expected 1000, got %v", value)
	}

	// Anything else pins the member to a constant.
	if err := view.SetProperty("limit", 42); err != nil {
		t.Fatalf("pin limit: %v", err)
	}
	value, err = view.Property("limit")
	if err != nil {
		t.Fatalf("read pinned limit: %v", err)
	}
	if value != 42 {
		t.Fatalf("expected constant 42, got %v", value)
	}
}

func TestScriptViewPropertiesSkipsFailingMembers(t *testing.T) {
	view := NewScriptView("computed", nil, WithScriptSource(func() map[string]any {
		return map[string]any{"timeout": 100}
	}))
	if err := view.Define("ok", "timeout + 1"); err != nil {
		t.Fatalf("define ok: %v", err)
	}
	// Compiles because undefined variables are allowed, fails at run time.
	if err := view.Define("bad", "missing.field"); err != nil {
		t.Fatalf("define bad: %v", err)
	}

	all := view.Properties()
	if all["ok"] != 101 {
		t.Fatalf("expected ok=101, got %v", all["ok"])
	}
	if _, present := all["bad"]; present {
		t.Fatalf("expected failing member to be skipped, got %v", all["bad"])
	}
}

func TestScriptViewInvokeBindsArguments(t *testing.T) {
	view := NewScriptView("computed", nil)
	if err := view.Define("first", "args.arguments[0]"); err != nil {
		t.Fatalf("define first: %v", err)
	}

	if !view.HasMethod("first", "x") {
		t.Fatalf("expected defined member to be invocable")
	}
	result, err := view.InvokeMethod("first", "hello", "world")
	if err != nil {
		t.Fatalf("invoke first: %v", err)
	}
	if result != "hello" {
		t.Fatalf("expected %q, got %v", "hello", result)
	}
}

func TestScriptViewInvokeConstantCallable(t *testing.T) {
	view := NewScriptView("computed", nil)
	if err := view.Define("greet", "0"); err != nil {
		t.Fatalf("define greet: %v", err)
	}
	if err := view.SetProperty("greet", func(name string) string {
		return "hello " + name
	}); err != nil {
		t.Fatalf("pin greet: %v", err)
	}

	result, err := view.InvokeMethod("greet", "world")
	if err != nil {
		t.Fatalf("invoke greet: %v", err)
	}
	if result != "hello world" {
		t.Fatalf("expected %q, got %v", "hello world", result)
	}

	if err := view.SetProperty("greet", 7); err != nil {
		t.Fatalf("pin greet to non-callable: %v", err)
	}
	if view.HasMethod("greet") {
		t.Fatalf("constant 7 must not be invocable")
	}
	if _, err := view.InvokeMethod("greet"); !errors.Is(err, ErrUnknownMethod) {
		t.Fatalf("expected ErrUnknownMethod, got %v", err)
	}
}

func TestScriptViewLogsEvaluations(t *testing.T) {
	var events []EvaluatorLogEvent
	view := NewScriptView("computed", nil,
		WithScriptLogger(EvaluatorLoggerFunc(func(event EvaluatorLogEvent) {
			events = append(events, event)
		})),
	)
	if err := view.Define("answer", "40 + 2"); err != nil {
		t.Fatalf("define answer: %v", err)
	}

	if _, err := view.Property("answer"); err != nil {
		t.Fatalf("read answer: %v", err)
	}
	if len(events) != 1 {
		t.Fatalf("expected 1 log event, got %d", len(events))
	}
	event := events[0]
	if event.Engine != "expr" {
		t.Fatalf("expected engine %q, got %q", "expr", event.Engine)
	}
	if event.Expr != "40 + 2" {
		t.Fatalf("expected expr %q, got %q", "40 + 2", event.Expr)
	}
	if event.Owner != "computed" {
		t.Fatalf("expected owner %q, got %q", "computed", event.Owner)
	}
	if event.Err != nil {
		t.Fatalf("expected nil error in event, got %v", event.Err)
	}
}

func TestScriptViewProgramCacheReuse(t *testing.T) {
	cache := newCountingCache()
	evaluator := NewExprEvaluator(ExprWithProgramCache(cache))
	view := NewScriptView("computed", evaluator, WithScriptSource(func() map[string]any {
		return map[string]any{"timeout": 100}
	}))

	if err := view.Define("limit", "timeout + 1"); err != nil {
		t.Fatalf("define limit: %v", err)
	}
	for i := 0; i < 3; i++ {
		if _, err := view.Property("limit"); err != nil {
			t.Fatalf("read %d: %v", i, err)
		}
	}
	if len(cache.programs) != 1 {
		t.Fatalf("expected one cached program, got %d", len(cache.programs))
	}
}

func TestScriptViewAsConventionMember(t *testing.T) {
	r := NewResolver(nil, WithDisplayName("task ':report'"))
	scripted := NewScriptView("computed", nil, WithScriptSource(r.Properties))
	if err := scripted.Define("summary", `"timeout is " + string(timeout)`); err != nil {
		t.Fatalf("define summary: %v", err)
	}

	convention := NewConvention("conventions")
	if err := convention.Add("computed", scripted); err != nil {
		t.Fatalf("add convention member: %v", err)
	}
	r.SetConvention(convention)

	if err := r.SetProperty("timeout", 100); err != nil {
		t.Fatalf("seed timeout: %v", err)
	}

	value, err := r.Property("summary")
	if err != nil {
		t.Fatalf("resolve summary: %v", err)
	}
	if value != "timeout is 100" {
		t.Fatalf("expected %q, got %v", "timeout is 100", value)
	}
}

func TestScriptViewWithCELEvaluator(t *testing.T) {
	r := NewResolver(nil, WithDisplayName("task ':report'"))
	scripted := NewScriptView("computed", NewCELEvaluator(), WithScriptSource(r.Properties))
	if err := scripted.Define("budget", "timeout * retries"); err != nil {
		t.Fatalf("define budget: %v", err)
	}

	convention := NewConvention("conventions")
	if err := convention.Add("computed", scripted); err != nil {
		t.Fatalf("add convention member: %v", err)
	}
	r.SetConvention(convention)

	if err := r.SetProperty("timeout", 100); err != nil {
		t.Fatalf("seed timeout: %v", err)
	}
	if err := r.SetProperty("retries", 3); err != nil {
		t.Fatalf("seed retries: %v", err)
	}

	value, err := r.Property("budget")
	if err != nil {
		t.Fatalf("resolve budget: %v", err)
	}
	if value != int64(300) {
		t.Fatalf("expected int64 300, got %v (%T)", value, value)
	}

	if err := r.SetProperty("retries", 5); err != nil {
		t.Fatalf("raise retries: %v", err)
	}
	value, err = r.Property("budget")
	if err != nil {
		t.Fatalf("re-resolve budget: %v", err)
	}
	if value != int64(500) {
		t.Fatalf("expected int64 500 after source change, got %v", value)
	}
}

func TestCELEvaluatorFunctionRegistryCall(t *testing.T) {
	registry := NewFunctionRegistry()
	if err := registry.Register("double", func(args ...any) (any, error) {
		n, ok := args[0].(int64)
		if !ok {
			return nil, errors.New("want int64 argument")
		}
		return n * 2, nil
	}); err != nil {
		t.Fatalf("register double: %v", err)
	}

	view := NewScriptView("computed", NewCELEvaluator(CELWithFunctionRegistry(registry)),
		WithScriptSource(func() map[string]any {
			return map[string]any{"timeout": 21}
		}),
	)
	if err := view.Define("doubled", `call("double", timeout)`); err != nil {
		t.Fatalf("define doubled: %v", err)
	}

	value, err := view.Property("doubled")
	if err != nil {
		t.Fatalf("resolve doubled: %v", err)
	}
	if value != int64(42) {
		t.Fatalf("expected int64 42, got %v (%T)", value, value)
	}

	if err := view.Define("broken", `call("missing")`); err != nil {
		t.Fatalf("define broken: %v", err)
	}
	_, err = view.Property("broken")
	if err == nil {
		t.Fatal("expected unregistered call to fail")
	}
	var evalErr *EvaluationError
	if !errors.As(err, &evalErr) {
		t.Fatalf("expected EvaluationError, got %T", err)
	}
	if evalErr.Engine != "cel" {
		t.Fatalf("expected engine cel, got %q", evalErr.Engine)
	}
}

func TestCELEvaluatorProgramCacheReuse(t *testing.T) {
	cache := newCountingCache()
	view := NewScriptView("computed", NewCELEvaluator(CELWithProgramCache(cache)),
		WithScriptSource(func() map[string]any {
			return map[string]any{"timeout": 100}
		}),
	)
	if err := view.Define("limit", "timeout + 1"); err != nil {
		t.Fatalf("define limit: %v", err)
	}
	for i := 0; i < 3; i++ {
		value, err := view.Property("limit")
		if err != nil {
			t.Fatalf("read %d: %v", i, err)
		}
		if value != int64(101) {
			t.Fatalf("expected int64 101, got %v", value)
		}
	}
	if len(cache.programs) != 1 {
		t.Fatalf("expected one cached program, got %d", len(cache.programs))
	}
}

func TestScriptViewSnapshotReentrancy(t *testing.T) {
	r := NewResolver(nil, WithDisplayName("task ':report'"))
	scripted := NewScriptView("computed", nil, WithScriptSource(r.Properties))
	if err := scripted.Define("label", `"ready"`); err != nil {
		t.Fatalf("define label: %v", err)
	}
	r.AddOverride(AfterConvention, scripted)

	if err := r.SetProperty("timeout", 100); err != nil {
		t.Fatalf("seed timeout: %v", err)
	}

	// Enumerating the resolver reaches back into the script view, whose own
	// snapshot walks the resolver again. The walk must terminate.
	all := r.Properties()
	if all["label"] != "ready" {
		t.Fatalf("expected label=ready, got %v", all["label"])
	}
	if all["timeout"] != 100 {
		t.Fatalf("expected timeout=100, got %v", all["timeout"])
	}
}
