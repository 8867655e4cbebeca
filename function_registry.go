package dynamic

import (
	"fmt"
	"sort"
	"strings"
	"sync"
)

// Function represents a callable registered against evaluators.
type Function func(args ...any) (any, error)

// FunctionRegistry stores custom functions keyed by name.
type FunctionRegistry struct {
	mu        sync.RWMutex
	functions map[string]Function
}

// NewFunctionRegistry constructs an empty registry.
func NewFunctionRegistry() *FunctionRegistry {
	return &FunctionRegistry{
		functions: make(map[string]Function),
	}
}

// Register stores fn under name guarding against duplicates.
func (r *FunctionRegistry) Register(name string, fn Function) error {
	if fn == nil {
		return fmt.Errorf("dynamic: function %q is nil", name)
	}
	if name == "" {
		return fmt.Errorf("dynamic: function name must not be empty")
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.functions == nil {
		r.functions = make(map[string]Function)
	}
	key := strings.ToLower(name)
	if _, exists := r.functions[key]; exists {
		return fmt.Errorf("dynamic: function %q already registered", name)
	}
	r.functions[key] = fn
	return nil
}

// Clone returns a shallow copy of the registry.
func (r *FunctionRegistry) Clone() *FunctionRegistry {
	if r == nil {
		return nil
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	clone := &FunctionRegistry{
		functions: make(map[string]Function, len(r.functions)),
	}
	for name, fn := range r.functions {
		clone.functions[name] = fn
	}
	return clone
}

// Call executes the function registered for name.
func (r *FunctionRegistry) Call(name string, args ...any) (any, error) {
	if r == nil {
		return nil, fmt.Errorf("dynamic: function registry is nil")
	}
	r.mu.RLock()
	fn := r.functions[strings.ToLower(name)]
	r.mu.RUnlock()
	if fn == nil {
		return nil, fmt.Errorf("dynamic: function %q not registered", name)
	}
	return fn(args...)
}

// Names returns registered function names sorted alphabetically.
func (r *FunctionRegistry) Names() []string {
	if r == nil {
		return nil
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	names := make([]string, 0, len(r.functions))
	for name := range r.functions {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// AsView exposes the registry's functions as invocable members of a dynamic
// surface. The returned view has no settable properties; enumeration lists
// each function under its registered name.
func (r *FunctionRegistry) AsView(owner string) View {
	if owner == "" {
		owner = "functions"
	}
	return &registryView{owner: owner, registry: r}
}

type registryView struct {
	owner    string
	registry *FunctionRegistry
}

func (v *registryView) DisplayName() string { return v.owner }

func (v *registryView) HasProperty(name string) bool {
	return v.lookup(name) != nil
}

func (v *registryView) Property(name string) (any, error) {
	fn := v.lookup(name)
	if fn == nil {
		return nil, newUnknownProperty(name, v.owner)
	}
	return fn, nil
}

func (v *registryView) SetProperty(name string, _ any) error {
	return newUnknownProperty(name, v.owner)
}

func (v *registryView) Properties() map[string]any {
	if v.registry == nil {
		return map[string]any{}
	}
	out := make(map[string]any)
	for _, name := range v.registry.Names() {
		out[name] = v.lookup(name)
	}
	return out
}

func (v *registryView) HasMethod(name string, _ ...any) bool {
	return v.lookup(name) != nil
}

func (v *registryView) InvokeMethod(name string, args ...any) (any, error) {
	if v.lookup(name) == nil {
		return nil, newUnknownMethod(name, v.owner)
	}
	return v.registry.Call(name, args...)
}

func (v *registryView) lookup(name string) Function {
	if v.registry == nil {
		return nil
	}
	v.registry.mu.RLock()
	defer v.registry.mu.RUnlock()
	return v.registry.functions[strings.ToLower(name)]
}
