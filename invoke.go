package dynamic

import (
	"fmt"
	"reflect"
)

var errType = reflect.TypeOf((*error)(nil)).Elem()

// callable reports whether value can be invoked as a method: either a
// registered Function or any Go func.
func callable(value any) bool {
	if value == nil {
		return false
	}
	if _, ok := value.(Function); ok {
		return true
	}
	return reflect.TypeOf(value).Kind() == reflect.Func
}

// call invokes value with args. Funcs may return (T), (T, error), (error)
// or nothing; anything else fails.
func call(value any, args ...any) (any, error) {
	if fn, ok := value.(Function); ok {
		return fn(args...)
	}

	fn := reflect.ValueOf(value)
	if !fn.IsValid() || fn.Kind() != reflect.Func {
		return nil, fmt.Errorf("dynamic: value of type %T is not callable", value)
	}
	in, err := bindArguments(fn.Type(), args)
	if err != nil {
		return nil, err
	}
	return collectResults(fn.Call(in))
}

func bindArguments(fnType reflect.Type, args []any) ([]reflect.Value, error) {
	numIn := fnType.NumIn()
	if fnType.IsVariadic() {
		if len(args) < numIn-1 {
			return nil, fmt.Errorf("dynamic: call expects at least %d argument(s), got %d", numIn-1, len(args))
		}
	} else if len(args) != numIn {
		return nil, fmt.Errorf("dynamic: call expects %d argument(s), got %d", numIn, len(args))
	}

	in := make([]reflect.Value, len(args))
	for i, arg := range args {
		var want reflect.Type
		if fnType.IsVariadic() && i >= numIn-1 {
			want = fnType.In(numIn - 1).Elem()
		} else {
			want = fnType.In(i)
		}
		value, err := coerceArgument(arg, want, i)
		if err != nil {
			return nil, err
		}
		in[i] = value
	}
	return in, nil
}

func coerceArgument(arg any, want reflect.Type, position int) (reflect.Value, error) {
	value, err := coerceTo(arg, want)
	if err != nil {
		return reflect.Value{}, fmt.Errorf("dynamic: argument %d: %w", position, err)
	}
	return value, nil
}

func coerceTo(arg any, want reflect.Type) (reflect.Value, error) {
	if arg == nil {
		switch want.Kind() {
		case reflect.Interface, reflect.Pointer, reflect.Map, reflect.Slice, reflect.Chan, reflect.Func:
			return reflect.Zero(want), nil
		}
		return reflect.Value{}, fmt.Errorf("nil is not assignable to %s", want)
	}
	value := reflect.ValueOf(arg)
	if value.Type().AssignableTo(want) {
		return value, nil
	}
	if value.Type().ConvertibleTo(want) {
		return value.Convert(want), nil
	}
	return reflect.Value{}, fmt.Errorf("value of type %T is not assignable to %s", arg, want)
}

func collectResults(out []reflect.Value) (any, error) {
	switch len(out) {
	case 0:
		return nil, nil
	case 1:
		if out[0].Type().Implements(errType) {
			return nil, asError(out[0])
		}
		return out[0].Interface(), nil
	case 2:
		if !out[1].Type().Implements(errType) {
			return nil, fmt.Errorf("dynamic: callable returns (%s, %s), want second result to be error", out[0].Type(), out[1].Type())
		}
		return out[0].Interface(), asError(out[1])
	default:
		return nil, fmt.Errorf("dynamic: callable returns %d values, want at most 2", len(out))
	}
}

func asError(value reflect.Value) error {
	if value.IsNil() {
		return nil
	}
	return value.Interface().(error)
}
