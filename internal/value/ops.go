package value

import (
	"fmt"
	"math"
	"strings"
)

// Add implements `+`: numeric addition, or string concatenation when
// either operand is a string. Shared by the VM and the tree-walk evaluator
// so the two backends can never drift on this rule.
func Add(l, r Value) Value {
	_, lIsStr := l.(string)
	_, rIsStr := r.(string)
	if lIsStr || rIsStr {
		return ToString(l) + ToString(r)
	}
	return ToNumber(l) + ToNumber(r)
}

// Mod and Pow round out the arithmetic family not already covered by a
// single Go operator.
func Mod(l, r Value) Value { return math.Mod(ToNumber(l), ToNumber(r)) }
func Pow(l, r Value) Value { return math.Pow(ToNumber(l), ToNumber(r)) }

// Compare orders two values for </<=/>/>=: lexicographic when both are
// strings, numeric otherwise.
func Compare(l, r Value) int {
	if ls, ok := l.(string); ok {
		if rs, ok := r.(string); ok {
			return strings.Compare(ls, rs)
		}
	}
	ln, rn := ToNumber(l), ToNumber(r)
	switch {
	case ln < rn:
		return -1
	case ln > rn:
		return 1
	default:
		return 0
	}
}

// Membership implements `l in r`: array element test, map key presence, or
// string substring test.
func Membership(l, r Value) bool {
	switch c := r.(type) {
	case *Array:
		for _, e := range c.Elements {
			if Equals(e, l) {
				return true
			}
		}
		return false
	case *Map:
		s, ok := l.(string)
		if !ok {
			return false
		}
		_, ok = c.Get(s)
		return ok
	case string:
		s, ok := l.(string)
		if !ok {
			return false
		}
		return strings.Contains(c, s)
	default:
		return false
	}
}

// IndexGet implements indexed reads: array by integer index, map by any
// string, string by integer (read-only). Out-of-range reads yield
// Undefined rather than erroring.
func IndexGet(obj, idx Value) (Value, error) {
	switch o := obj.(type) {
	case *Array:
		i := int(ToNumber(idx))
		if i < 0 || i >= len(o.Elements) {
			return Undefined, nil
		}
		return o.Elements[i], nil
	case *Map:
		key, ok := idx.(string)
		if !ok {
			return nil, fmt.Errorf("map index must be a string, got %s", TypeName(idx))
		}
		v, ok := o.Get(key)
		if !ok {
			return Undefined, nil
		}
		return v, nil
	case string:
		i := int(ToNumber(idx))
		if i < 0 || i >= len(o) {
			return Undefined, nil
		}
		return string(o[i]), nil
	default:
		return nil, fmt.Errorf("cannot index a %s", TypeName(obj))
	}
}

// IndexSet implements indexed assignment: array element write (in-bounds
// only — out-of-range writes are a runtime error), map key write
// (any string key, inserted if new).
func IndexSet(obj, idx, v Value) error {
	switch o := obj.(type) {
	case *Array:
		i := int(ToNumber(idx))
		if i < 0 || i >= len(o.Elements) {
			return fmt.Errorf("array index %d out of range (len %d)", i, len(o.Elements))
		}
		o.Elements[i] = v
		return nil
	case *Map:
		key, ok := idx.(string)
		if !ok {
			return fmt.Errorf("map index must be a string, got %s", TypeName(idx))
		}
		o.Set(key, v)
		return nil
	default:
		return fmt.Errorf("cannot index-assign a %s", TypeName(obj))
	}
}
