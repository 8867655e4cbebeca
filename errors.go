package dynamic

import (
	"errors"
	"fmt"
)

var (
	// ErrUnknownProperty indicates a read of a name no delegate recognises.
	ErrUnknownProperty = errors.New("dynamic: unknown property")
	// ErrUnknownMethod indicates invocation of a name no delegate can call.
	ErrUnknownMethod = errors.New("dynamic: unknown method")
	// ErrInheritedWrite indicates a write attempted through an inheritable
	// view, which exposes ancestor state read-only.
	ErrInheritedWrite = errors.New("dynamic: inherited properties are read-only")
)

// PropertyError reports a failed property access alongside the display
// identity of the view that rejected it.
type PropertyError struct {
	Name  string
	Owner string
	Err   error
}

func (e *PropertyError) Error() string {
	if e == nil {
		return "<nil>"
	}
	if errors.Is(e.Err, ErrInheritedWrite) {
		return fmt.Sprintf("dynamic: could not find property %q inherited from %s", e.Name, e.Owner)
	}
	return fmt.Sprintf("dynamic: could not find property %q on %s", e.Name, e.Owner)
}

func (e *PropertyError) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Err
}

// MethodError reports a failed method invocation alongside the display
// identity of the view that rejected it.
type MethodError struct {
	Name  string
	Owner string
	Err   error
}

func (e *MethodError) Error() string {
	if e == nil {
		return "<nil>"
	}
	return fmt.Sprintf("dynamic: could not find method %q on %s", e.Name, e.Owner)
}

func (e *MethodError) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Err
}

func newUnknownProperty(name, owner string) error {
	return &PropertyError{Name: name, Owner: owner, Err: ErrUnknownProperty}
}

func newUnknownMethod(name, owner string) error {
	return &MethodError{Name: name, Owner: owner, Err: ErrUnknownMethod}
}

func newInheritedWrite(name, owner string) error {
	return &PropertyError{Name: name, Owner: owner, Err: ErrInheritedWrite}
}
