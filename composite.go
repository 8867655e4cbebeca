package dynamic

import (
	"github.com/goliatone/go-dynamic/pkg/activity"
)

// Location identifies where a caller-supplied override sits relative to the
// convention view in the read chain.
type Location int

const (
	// BeforeConvention positions an override ahead of convention members.
	BeforeConvention Location = iota
	// AfterConvention positions an override behind convention members.
	AfterConvention
)

// Resolver composes an ordered read chain and a separately ordered write
// chain of View delegates into one dynamic surface for a host object.
//
// Reads prefer the most specific source: declared fields first, then ad hoc
// extensions, then before-convention overrides, convention members,
// after-convention overrides, and the parent scope last. Writes drop the
// parent and re-append the extension bag adapter terminally, so a write of a
// previously-unknown name always lands in the bag. Every property name is
// therefore writable; only reads can fail.
//
// A Resolver is not safe for concurrent use. Chain rebuilds replace the
// chain slices wholesale while walks iterate the slice captured at entry, so
// callers needing cross-goroutine access must serialise externally.
type Resolver struct {
	host             View
	bag              *ExtensionBag
	bagAdapter       View
	parent           View
	convention       *Convention
	beforeConvention View
	afterConvention  View

	readChain  []View
	writeChain []View
}

// ResolverOption configures a Resolver on construction.
type ResolverOption func(*resolverConfig)

type resolverConfig struct {
	hostView    View
	displayName string
	convention  *Convention
	hooks       activity.Hooks
}

// WithHostView supplies a pre-built view over the host's declared members
// instead of the reflective default.
func WithHostView(view View) ResolverOption {
	return func(cfg *resolverConfig) {
		cfg.hostView = view
	}
}

// WithDisplayName overrides the identity reported in failure messages.
func WithDisplayName(name string) ResolverOption {
	return func(cfg *resolverConfig) {
		cfg.displayName = name
	}
}

// WithConvention supplies the convention registry consulted between the
// caller overrides.
func WithConvention(convention *Convention) ResolverOption {
	return func(cfg *resolverConfig) {
		cfg.convention = convention
	}
}

// WithActivityHooks attaches hooks notified whenever an extension property
// is added or overwritten. Nil entries are dropped.
func WithActivityHooks(hooks activity.Hooks) ResolverOption {
	return func(cfg *resolverConfig) {
		for _, hook := range hooks {
			if hook != nil {
				cfg.hooks = append(cfg.hooks, hook)
			}
		}
	}
}

// NewResolver constructs a Resolver for host. The host's declared members
// are exposed through AsView unless WithHostView overrides them. The
// resolver owns the extension bag and its adapter; convention, overrides and
// parent are referenced, never copied.
func NewResolver(host any, opts ...ResolverOption) *Resolver {
	cfg := resolverConfig{}
	for _, opt := range opts {
		if opt != nil {
			opt(&cfg)
		}
	}

	hostView := cfg.hostView
	if hostView == nil {
		if host == nil {
			hostView = emptyView{name: "object"}
		} else {
			hostView = AsView(host)
		}
	}
	if cfg.displayName != "" {
		hostView = renamedView{View: hostView, name: cfg.displayName}
	}

	owner := hostView.DisplayName()
	bagOpts := []BagOption{WithBagOwner(owner)}
	if len(cfg.hooks) > 0 {
		emitter := activity.NewEmitter(cfg.hooks, activity.Config{Enabled: true})
		bagOpts = append(bagOpts, WithBagEmitter(emitter))
	}
	bag := NewExtensionBag(bagOpts...)

	r := &Resolver{
		host:       hostView,
		bag:        bag,
		bagAdapter: BagView(owner, bag),
		convention: cfg.convention,
	}
	r.rebuild()
	return r
}

// rebuild materialises both chains from the current delegate set. Read and
// write orderings are kept as two independent slices rather than one list
// with conditional skipping.
func (r *Resolver) rebuild() {
	read := make([]View, 0, 6)
	read = append(read, r.host, r.bagAdapter)
	if r.beforeConvention != nil {
		read = append(read, r.beforeConvention)
	}
	if r.convention != nil {
		read = append(read, r.convention.AsView())
	}
	if r.afterConvention != nil {
		read = append(read, r.afterConvention)
	}
	write := append([]View(nil), read...)
	if r.parent != nil {
		read = append(read, r.parent)
	}
	// The bag adapter appears twice on the write side: once at its read
	// priority and once terminally as the catch-all sink.
	write = append(write, r.bagAdapter)

	r.readChain = read
	r.writeChain = write
}

// DisplayName returns the host view's identity.
func (r *Resolver) DisplayName() string {
	return r.host.DisplayName()
}

// Bag returns the extension bag owned by this resolver.
func (r *Resolver) Bag() *ExtensionBag {
	return r.bag
}

// Convention returns the convention registry, if any.
func (r *Resolver) Convention() *Convention {
	return r.convention
}

// Parent returns the parent view, if any.
func (r *Resolver) Parent() View {
	return r.parent
}

// SetParent installs view as the lowest-priority read delegate. The parent
// never participates in writes.
func (r *Resolver) SetParent(view View) {
	r.parent = view
	r.rebuild()
}

// SetConvention installs convention between the caller overrides.
func (r *Resolver) SetConvention(convention *Convention) {
	r.convention = convention
	r.rebuild()
}

// AddOverride installs view at location. Only one override per location is
// retained; a later call replaces the prior one.
func (r *Resolver) AddOverride(location Location, view View) {
	switch location {
	case BeforeConvention:
		r.beforeConvention = view
	case AfterConvention:
		r.afterConvention = view
	}
	r.rebuild()
}

// AddProperties bulk-adds entries to the extension bag.
func (r *Resolver) AddProperties(properties map[string]any) {
	for name, value := range properties {
		_ = r.bag.Add(name, value)
	}
}

// HasProperty reports whether any delegate in the read chain recognises
// name.
func (r *Resolver) HasProperty(name string) bool {
	for _, view := range r.readChain {
		if view.HasProperty(name) {
			return true
		}
	}
	return false
}

// Property walks the read chain and returns the value from the first
// delegate recognising name.
func (r *Resolver) Property(name string) (any, error) {
	for _, view := range r.readChain {
		if view.HasProperty(name) {
			return view.Property(name)
		}
	}
	return nil, newUnknownProperty(name, r.DisplayName())
}

// SetProperty walks the write chain and delegates to the first delegate
// already owning name, falling back to the terminal bag adapter for names
// never seen before. Writes cannot fail with an unknown-property error.
func (r *Resolver) SetProperty(name string, value any) error {
	for _, view := range r.writeChain {
		if view.HasProperty(name) {
			return view.SetProperty(name, value)
		}
	}
	return r.writeChain[len(r.writeChain)-1].SetProperty(name, value)
}

// Properties returns the union of all delegates' enumerations; earlier
// delegates in the read chain win for names present in several stores.
func (r *Resolver) Properties() map[string]any {
	out := make(map[string]any)
	for _, view := range r.readChain {
		for name, value := range view.Properties() {
			if _, ok := out[name]; ok {
				continue
			}
			out[name] = value
		}
	}
	return out
}

// HasMethod reports whether any read-chain delegate can invoke name with
// args.
func (r *Resolver) HasMethod(name string, args ...any) bool {
	for _, view := range r.readChain {
		if view.HasMethod(name, args...) {
			return true
		}
	}
	return false
}

// InvokeMethod walks the read chain and invokes name on the first delegate
// claiming it.
func (r *Resolver) InvokeMethod(name string, args ...any) (any, error) {
	for _, view := range r.readChain {
		if view.HasMethod(name, args...) {
			return view.InvokeMethod(name, args...)
		}
	}
	return nil, newUnknownMethod(name, r.DisplayName())
}

// Inheritable returns the surface exposed to descendant scopes: ad hoc
// extensions, convention members and the before-convention override
// propagate; the host's declared fields and the after-convention override do
// not. Backing stores are shared live, so extensions added after the call
// remain visible. All writes through the returned view are denied.
func (r *Resolver) Inheritable() View {
	return inheritedView{owner: r}
}

// snapshotInheritable rebuilds the restricted resolver on every access
// since the shared stores are live mutable references.
func (r *Resolver) snapshotInheritable() *Resolver {
	snapshot := &Resolver{
		host:             emptyView{name: r.DisplayName()},
		bag:              r.bag,
		bagAdapter:       r.bagAdapter,
		parent:           r.parent,
		convention:       r.convention,
		beforeConvention: r.beforeConvention,
	}
	snapshot.rebuild()
	return snapshot
}

type inheritedView struct {
	owner *Resolver
}

func (v inheritedView) DisplayName() string {
	return v.owner.DisplayName()
}

func (v inheritedView) HasProperty(name string) bool {
	return v.owner.snapshotInheritable().HasProperty(name)
}

func (v inheritedView) Property(name string) (any, error) {
	return v.owner.snapshotInheritable().Property(name)
}

func (v inheritedView) SetProperty(name string, _ any) error {
	return newInheritedWrite(name, v.owner.DisplayName())
}

func (v inheritedView) Properties() map[string]any {
	return v.owner.snapshotInheritable().Properties()
}

func (v inheritedView) HasMethod(name string, args ...any) bool {
	return v.owner.snapshotInheritable().HasMethod(name, args...)
}

func (v inheritedView) InvokeMethod(name string, args ...any) (any, error) {
	return v.owner.snapshotInheritable().InvokeMethod(name, args...)
}

// renamedView overrides only the display identity of the wrapped view.
type renamedView struct {
	View
	name string
}

func (v renamedView) DisplayName() string { return v.name }
