package dynamic

import "fmt"

// Convention is an ordered registry of named sub-extensions, each exposed as
// a View. Its flattened view consults members in registration order, first
// match winning, analogous to a nested composite. The registry is not a
// catch-all: writes for names no member owns fail.
type Convention struct {
	owner   string
	names   []string
	members map[string]View
}

// NewConvention constructs an empty registry whose flattened view reports
// owner as its display identity.
func NewConvention(owner string) *Convention {
	if owner == "" {
		owner = "convention"
	}
	return &Convention{
		owner:   owner,
		members: make(map[string]View),
	}
}

// Add registers member under name. The member is coerced through AsView.
// Registering an existing name replaces the member but keeps its original
// position in the consultation order.
func (c *Convention) Add(name string, member any) error {
	if name == "" {
		return fmt.Errorf("dynamic: convention member name must not be empty")
	}
	if member == nil {
		return fmt.Errorf("dynamic: convention member %q is nil", name)
	}
	if _, ok := c.members[name]; !ok {
		c.names = append(c.names, name)
	}
	c.members[name] = AsView(member)
	return nil
}

// Member returns the view registered under name.
func (c *Convention) Member(name string) (View, bool) {
	if c == nil {
		return nil, false
	}
	member, ok := c.members[name]
	return member, ok
}

// Names returns member names in registration order.
func (c *Convention) Names() []string {
	if c == nil || len(c.names) == 0 {
		return nil
	}
	return append([]string(nil), c.names...)
}

// AsView flattens the registry into a single View.
func (c *Convention) AsView() View {
	return &conventionView{registry: c}
}

type conventionView struct {
	registry *Convention
}

func (v *conventionView) DisplayName() string { return v.registry.owner }

func (v *conventionView) each(fn func(member View) bool) {
	for _, name := range v.registry.names {
		if fn(v.registry.members[name]) {
			return
		}
	}
}

func (v *conventionView) HasProperty(name string) bool {
	found := false
	v.each(func(member View) bool {
		found = member.HasProperty(name)
		return found
	})
	return found
}

func (v *conventionView) Property(name string) (any, error) {
	var (
		value any
		err   error
		found bool
	)
	v.each(func(member View) bool {
		if !member.HasProperty(name) {
			return false
		}
		found = true
		value, err = member.Property(name)
		return true
	})
	if !found {
		return nil, newUnknownProperty(name, v.registry.owner)
	}
	return value, err
}

func (v *conventionView) SetProperty(name string, value any) error {
	var (
		err   error
		found bool
	)
	v.each(func(member View) bool {
		if !member.HasProperty(name) {
			return false
		}
		found = true
		err = member.SetProperty(name, value)
		return true
	})
	if !found {
		return newUnknownProperty(name, v.registry.owner)
	}
	return err
}

func (v *conventionView) Properties() map[string]any {
	out := make(map[string]any)
	for _, name := range v.registry.names {
		for key, value := range v.registry.members[name].Properties() {
			if _, ok := out[key]; ok {
				continue
			}
			out[key] = value
		}
	}
	return out
}

func (v *conventionView) HasMethod(name string, args ...any) bool {
	found := false
	v.each(func(member View) bool {
		found = member.HasMethod(name, args...)
		return found
	})
	return found
}

func (v *conventionView) InvokeMethod(name string, args ...any) (any, error) {
	var (
		result any
		err    error
		found  bool
	)
	v.each(func(member View) bool {
		if !member.HasMethod(name, args...) {
			return false
		}
		found = true
		result, err = member.InvokeMethod(name, args...)
		return true
	})
	if !found {
		return nil, newUnknownMethod(name, v.registry.owner)
	}
	return result, err
}
