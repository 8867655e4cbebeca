package dynamic

import (
	"fmt"
	"reflect"
	"strings"
	"unicode"
	"unicode/utf8"
)

// FieldView exposes a host struct's exported fields and methods through the
// View contract. Property names use the lowerCamel form of the field name
// ("timeout" for Timeout); the exported spelling is accepted as an alias.
// Pointer hosts are writable, value hosts reject writes.
type FieldView struct {
	name   string
	host   reflect.Value
	fields map[string]int
	order  []string
}

// FieldViewOption configures a FieldView.
type FieldViewOption func(*FieldView)

// WithFieldViewName sets the display identity. The default is the host's
// type name.
func WithFieldViewName(name string) FieldViewOption {
	return func(v *FieldView) {
		v.name = name
	}
}

// NewFieldView constructs a FieldView over host. Non-struct hosts yield a
// view with no properties, only methods.
func NewFieldView(host any, opts ...FieldViewOption) *FieldView {
	view := &FieldView{
		name:   fmt.Sprintf("%T", host),
		host:   reflect.ValueOf(host),
		fields: make(map[string]int),
	}
	for _, opt := range opts {
		if opt != nil {
			opt(view)
		}
	}
	view.index()
	return view
}

func (v *FieldView) index() {
	elem := v.host
	for elem.IsValid() && elem.Kind() == reflect.Pointer {
		if elem.IsNil() {
			return
		}
		elem = elem.Elem()
	}
	if !elem.IsValid() || elem.Kind() != reflect.Struct {
		return
	}
	t := elem.Type()
	for i := 0; i < t.NumField(); i++ {
		field := t.Field(i)
		if !field.IsExported() || field.Anonymous {
			continue
		}
		name := lowerCamel(field.Name)
		v.fields[name] = i
		if name != field.Name {
			v.fields[field.Name] = i
		}
		v.order = append(v.order, name)
	}
}

func (v *FieldView) structValue() reflect.Value {
	elem := v.host
	for elem.IsValid() && elem.Kind() == reflect.Pointer && !elem.IsNil() {
		elem = elem.Elem()
	}
	return elem
}

// DisplayName returns the configured identity.
func (v *FieldView) DisplayName() string { return v.name }

// HasProperty reports whether name maps to an exported field.
func (v *FieldView) HasProperty(name string) bool {
	_, ok := v.fields[name]
	return ok
}

// Property returns the current field value for name.
func (v *FieldView) Property(name string) (any, error) {
	index, ok := v.fields[name]
	if !ok {
		return nil, newUnknownProperty(name, v.name)
	}
	return v.structValue().Field(index).Interface(), nil
}

// SetProperty assigns value to the field mapped by name. The host must be
// addressable (constructed from a pointer).
func (v *FieldView) SetProperty(name string, value any) error {
	index, ok := v.fields[name]
	if !ok {
		return newUnknownProperty(name, v.name)
	}
	field := v.structValue().Field(index)
	if !field.CanSet() {
		return fmt.Errorf("dynamic: property %q on %s is read-only, construct the view from a pointer host", name, v.name)
	}
	coerced, err := coerceTo(value, field.Type())
	if err != nil {
		return fmt.Errorf("dynamic: cannot assign property %q on %s: %w", name, v.name, err)
	}
	field.Set(coerced)
	return nil
}

// Properties enumerates every exported field under its lowerCamel name, in
// declaration order.
func (v *FieldView) Properties() map[string]any {
	out := make(map[string]any, len(v.order))
	elem := v.structValue()
	for _, name := range v.order {
		out[name] = elem.Field(v.fields[name]).Interface()
	}
	return out
}

// HasMethod reports whether name maps to an exported method accepting
// len(args) arguments.
func (v *FieldView) HasMethod(name string, args ...any) bool {
	method, ok := v.method(name)
	if !ok {
		return false
	}
	t := method.Type()
	if t.IsVariadic() {
		return len(args) >= t.NumIn()-1
	}
	return len(args) == t.NumIn()
}

// InvokeMethod calls the method mapped by name.
func (v *FieldView) InvokeMethod(name string, args ...any) (any, error) {
	method, ok := v.method(name)
	if !ok {
		return nil, newUnknownMethod(name, v.name)
	}
	in, err := bindArguments(method.Type(), args)
	if err != nil {
		return nil, err
	}
	return collectResults(method.Call(in))
}

func (v *FieldView) method(name string) (reflect.Value, bool) {
	if !v.host.IsValid() {
		return reflect.Value{}, false
	}
	for _, candidate := range []string{upperCamel(name), name} {
		method := v.host.MethodByName(candidate)
		if method.IsValid() {
			return method, true
		}
	}
	return reflect.Value{}, false
}

// lowerCamel converts an exported field name to its property spelling,
// folding leading initialisms: Timeout -> timeout, SessionID -> sessionID,
// JMX -> jmx, JMXPort -> jmxPort.
func lowerCamel(name string) string {
	runes := []rune(name)
	upper := 0
	for upper < len(runes) && unicode.IsUpper(runes[upper]) {
		upper++
	}
	switch {
	case upper == 0:
		return name
	case upper == len(runes):
		return strings.ToLower(name)
	case upper == 1:
		runes[0] = unicode.ToLower(runes[0])
	default:
		for i := 0; i < upper-1; i++ {
			runes[i] = unicode.ToLower(runes[i])
		}
	}
	return string(runes)
}

func upperCamel(name string) string {
	r, size := utf8.DecodeRuneInString(name)
	if r == utf8.RuneError {
		return name
	}
	return string(unicode.ToUpper(r)) + name[size:]
}
