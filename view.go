package dynamic

// View is the capability contract shared by every backing store and by the
// composite resolver itself: existence checks, get/set of named properties,
// enumeration, and invocation of named callable members. Implementations
// decide what counts as a property or a method; the resolver never inspects
// concrete types, it only walks ordered sequences of this interface.
type View interface {
	// DisplayName returns a human-readable identity used verbatim in
	// failure messages.
	DisplayName() string

	// HasProperty reports whether the view recognises name.
	HasProperty(name string) bool

	// Property returns the value stored under name, or a PropertyError
	// wrapping ErrUnknownProperty when the view does not recognise it.
	Property(name string) (any, error)

	// SetProperty updates name. Views that do not own the name fail with a
	// PropertyError; only the extension bag adapter accepts every write.
	SetProperty(name string, value any) error

	// Properties enumerates every name the view recognises alongside its
	// current value.
	Properties() map[string]any

	// HasMethod reports whether name is invocable with args.
	HasMethod(name string, args ...any) bool

	// InvokeMethod calls the member stored under name, or fails with a
	// MethodError wrapping ErrUnknownMethod.
	InvokeMethod(name string, args ...any) (any, error)
}

// ViewAware marks host objects that supply their own dynamic surface.
type ViewAware interface {
	AsView() View
}

// AsView coerces an arbitrary value into a View: Views pass through,
// ViewAware hosts delegate, and anything else is wrapped in a FieldView over
// its exported fields and methods.
func AsView(value any) View {
	switch v := value.(type) {
	case View:
		return v
	case ViewAware:
		return v.AsView()
	default:
		return NewFieldView(value)
	}
}

// emptyView recognises nothing. The inheritable snapshot uses it as the
// synthetic host so descendant scopes never see the owner's declared fields.
type emptyView struct {
	name string
}

func (v emptyView) DisplayName() string { return v.name }

func (v emptyView) HasProperty(string) bool { return false }

func (v emptyView) Property(name string) (any, error) {
	return nil, newUnknownProperty(name, v.name)
}

func (v emptyView) SetProperty(name string, _ any) error {
	return newUnknownProperty(name, v.name)
}

func (v emptyView) Properties() map[string]any { return map[string]any{} }

func (v emptyView) HasMethod(string, ...any) bool { return false }

func (v emptyView) InvokeMethod(name string, _ ...any) (any, error) {
	return nil, newUnknownMethod(name, v.name)
}
