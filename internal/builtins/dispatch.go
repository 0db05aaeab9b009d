package builtins

import (
	"fmt"

	"gridlang/internal/value"
)

// GetMember implements member access: map key lookup, string/array
// method-vs-function unification via the pure builtin table, and the
// grid-object/regex fixed attribute and method tables. Shared by both
// execution backends so the logic is written once.
func GetMember(obj value.Value, name string) (value.Value, error) {
	switch o := obj.(type) {
	case *value.Map:
		v, ok := o.Get(name)
		if !ok {
			return value.Undefined, nil
		}
		return v, nil
	case *value.Grid:
		return gridMember(o, name)
	case *value.Regex:
		return regexMember(o, name)
	case *value.Array:
		// arr.remove(v) removes by VALUE; the free function remove(arr, idx?)
		// removes by index. The two must not collapse into one, so the
		// method form is special-cased ahead of the shared pure-builtin table.
		if name == "remove" {
			return &value.BoundMethod{Self: obj, Method: removeByValueMethod}, nil
		}
		if fn, ok := Lookup(name); ok {
			return &value.BoundMethod{Self: obj, Method: fn}, nil
		}
		return value.Undefined, nil
	case string:
		if fn, ok := Lookup(name); ok {
			return &value.BoundMethod{Self: obj, Method: fn}, nil
		}
		return value.Undefined, nil
	default:
		return value.Undefined, nil
	}
}

// Invoke dispatches a native-shaped callable (NativeFunction or
// BoundMethod, self prepended as args[0]). ok is false when fn is a
// *value.Function, which only the active backend can execute against
// its own chunk or AST body.
func Invoke(call value.Caller, fn value.Value, args []value.Value) (result value.Value, ok bool, err error) {
	switch f := fn.(type) {
	case *value.NativeFunction:
		v, err := f.Fn(call, args)
		return v, true, err
	case *value.BoundMethod:
		full := make([]value.Value, 0, len(args)+1)
		full = append(full, f.Self)
		full = append(full, args...)
		v, err := f.Method.Fn(call, full)
		return v, true, err
	default:
		return nil, false, nil
	}
}

// SetMember implements member assignment: map-set for maps; for
// grid-objects only diags/cellSize/colorMap are assignable, everything
// else is a runtime error.
func SetMember(obj value.Value, name string, v value.Value) error {
	switch o := obj.(type) {
	case *value.Map:
		o.Set(name, v)
		return nil
	case *value.Grid:
		switch name {
		case "diags":
			o.Diags = value.Truthy(v)
			return nil
		case "cellSize":
			o.CellSize = int(value.ToNumber(v))
			return nil
		case "colorMap":
			o.ColorMap = v
			return nil
		default:
			return fmt.Errorf("grid attribute %q is not assignable", name)
		}
	default:
		return fmt.Errorf("cannot set member %q on a %s", name, value.TypeName(obj))
	}
}
