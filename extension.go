package dynamic

import (
	"context"
	"fmt"

	"github.com/goliatone/go-dynamic/pkg/activity"
)

// ExtensionBag is a mutable named bag of arbitrary values, the universal
// fallback store that can absorb any write. Names are never removed once
// added; re-adding a name overwrites its value. Enumeration follows
// insertion order so repeated walks stay deterministic.
type ExtensionBag struct {
	names   []string
	values  map[string]any
	emitter *activity.Emitter
	owner   string
}

// BagOption configures an ExtensionBag on construction.
type BagOption func(*ExtensionBag)

// WithBagOwner sets the display identity reported in activity events.
func WithBagOwner(owner string) BagOption {
	return func(b *ExtensionBag) {
		b.owner = owner
	}
}

// WithBagEmitter attaches an activity emitter notified on every add or
// overwrite.
func WithBagEmitter(emitter *activity.Emitter) BagOption {
	return func(b *ExtensionBag) {
		b.emitter = emitter
	}
}

// NewExtensionBag constructs an empty bag.
func NewExtensionBag(opts ...BagOption) *ExtensionBag {
	bag := &ExtensionBag{
		values: make(map[string]any),
		owner:  "extensions",
	}
	for _, opt := range opts {
		if opt != nil {
			opt(bag)
		}
	}
	return bag
}

// Add inserts or overwrites value under name.
func (b *ExtensionBag) Add(name string, value any) error {
	if name == "" {
		return fmt.Errorf("dynamic: extension name must not be empty")
	}
	old, existed := b.values[name]
	if !existed {
		b.names = append(b.names, name)
	}
	b.values[name] = value
	b.emit(name, old, value, existed)
	return nil
}

// Get returns the value stored under name.
func (b *ExtensionBag) Get(name string) (any, bool) {
	if b == nil {
		return nil, false
	}
	value, ok := b.values[name]
	return value, ok
}

// Has reports whether name has been added.
func (b *ExtensionBag) Has(name string) bool {
	if b == nil {
		return false
	}
	_, ok := b.values[name]
	return ok
}

// Names returns the stored names in insertion order.
func (b *ExtensionBag) Names() []string {
	if b == nil || len(b.names) == 0 {
		return nil
	}
	return append([]string(nil), b.names...)
}

// Properties returns a copy of the stored name/value pairs.
func (b *ExtensionBag) Properties() map[string]any {
	out := make(map[string]any, len(b.values))
	for name, value := range b.values {
		out[name] = value
	}
	return out
}

// Len returns the number of stored names.
func (b *ExtensionBag) Len() int {
	if b == nil {
		return 0
	}
	return len(b.names)
}

func (b *ExtensionBag) emit(name string, old, value any, existed bool) {
	if b.emitter == nil || !b.emitter.Enabled() {
		return
	}
	input := activity.PropertyEventInput{
		Owner:    b.owner,
		Name:     name,
		OldValue: old,
		NewValue: value,
	}
	event := activity.BuildPropertyAddedEvent(input)
	if existed {
		event = activity.BuildPropertyUpdatedEvent(input)
	}
	_ = b.emitter.Emit(context.Background(), event)
}

// bagView adapts an ExtensionBag to the View contract. Its SetProperty
// always succeeds by delegating to Add, which is what makes it a valid
// terminal write delegate. Stored values that are callable are exposed as
// methods.
type bagView struct {
	owner string
	bag   *ExtensionBag
}

// BagView wraps bag as a View reporting owner as its display identity.
func BagView(owner string, bag *ExtensionBag) View {
	return &bagView{owner: owner, bag: bag}
}

func (v *bagView) DisplayName() string { return v.owner }

func (v *bagView) HasProperty(name string) bool {
	return v.bag.Has(name)
}

func (v *bagView) Property(name string) (any, error) {
	value, ok := v.bag.Get(name)
	if !ok {
		return nil, newUnknownProperty(name, v.owner)
	}
	return value, nil
}

func (v *bagView) SetProperty(name string, value any) error {
	return v.bag.Add(name, value)
}

func (v *bagView) Properties() map[string]any {
	return v.bag.Properties()
}

func (v *bagView) HasMethod(name string, _ ...any) bool {
	value, ok := v.bag.Get(name)
	return ok && callable(value)
}

func (v *bagView) InvokeMethod(name string, args ...any) (any, error) {
	value, ok := v.bag.Get(name)
	if !ok || !callable(value) {
		return nil, newUnknownMethod(name, v.owner)
	}
	return call(value, args...)
}
