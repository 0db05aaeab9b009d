package builtins

import (
	"gridlang/internal/value"
)

func init() {
	register("append", biAppend)
	register("add", biAdd)
	register("insert", biInsert)
	register("remove", biRemove)
	register("merge", biMerge)
	register("diff", biDiff)
	register("intersect", biIntersect)
	register("union", biUnion)
}

// biAppend returns a NEW array with v appended (/: array ops never
// mutate the receiver in place, mirroring sort's copy semantics).
func biAppend(call value.Caller, a []value.Value) (value.Value, error) {
	arr, ok := arg(a, 0).(*value.Array)
	if !ok {
		return value.NewArray(nil), nil
	}
	out := make([]value.Value, len(arr.Elements)+1)
	copy(out, arr.Elements)
	out[len(arr.Elements)] = arg(a, 1)
	return value.NewArray(out), nil
}

// biAdd implements add(arr, v, idx?): inserts v at idx (default: end),
// returning a new array.
func biAdd(call value.Caller, a []value.Value) (value.Value, error) {
	arr, ok := arg(a, 0).(*value.Array)
	if !ok {
		return value.NewArray(nil), nil
	}
	v := arg(a, 1)
	idx := len(arr.Elements)
	if len(a) > 2 && !value.IsUndefined(a[2]) && !value.IsNull(a[2]) {
		idx = clampIdx(int(num(a[2])), len(arr.Elements))
	}
	return spliceInsert(arr.Elements, idx, v), nil
}

// biInsert is an alias shape of add, kept distinct so the two top-level
// names in array table both resolve to working builtins even though
// they describe the same operation in the source material.
func biInsert(call value.Caller, a []value.Value) (value.Value, error) {
	return biAdd(call, a)
}

func spliceInsert(elems []value.Value, idx int, v value.Value) *value.Array {
	out := make([]value.Value, 0, len(elems)+1)
	out = append(out, elems[:idx]...)
	out = append(out, v)
	out = append(out, elems[idx:]...)
	return value.NewArray(out)
}

// biRemove implements the top-level `remove(arr, idx?)` form: removes by
// index (default: last element). This is deliberately NOT the same
// operation as the `arr.remove(v)` method form, which removes by value
// (see dispatch.go's GetMember) — the two must not be collapsed.
func biRemove(call value.Caller, a []value.Value) (value.Value, error) {
	arr, ok := arg(a, 0).(*value.Array)
	if !ok {
		return value.NewArray(nil), nil
	}
	if len(arr.Elements) == 0 {
		return value.NewArray(nil), nil
	}
	idx := len(arr.Elements) - 1
	if len(a) > 1 && !value.IsUndefined(a[1]) && !value.IsNull(a[1]) {
		idx = clampIdx(int(num(a[1])), len(arr.Elements)-1)
	}
	out := make([]value.Value, 0, len(arr.Elements)-1)
	out = append(out, arr.Elements[:idx]...)
	out = append(out, arr.Elements[idx+1:]...)
	return value.NewArray(out), nil
}

// removeByValue implements the `arr.remove(v)` method form: removes the
// first element equal to v, or returns the array unchanged if absent.
func removeByValue(arr *value.Array, v value.Value) *value.Array {
	for i, e := range arr.Elements {
		if value.Equals(e, v) {
			out := make([]value.Value, 0, len(arr.Elements)-1)
			out = append(out, arr.Elements[:i]...)
			out = append(out, arr.Elements[i+1:]...)
			return value.NewArray(out)
		}
	}
	out := make([]value.Value, len(arr.Elements))
	copy(out, arr.Elements)
	return value.NewArray(out)
}

// removeByValueMethod is the `arr.remove(v)` method-form native, resolved by
// GetMember ahead of the shared pure table (see dispatch.go).
var removeByValueMethod = &value.NativeFunction{Name: "Array.remove", Fn: func(call value.Caller, a []value.Value) (value.Value, error) {
	arr, ok := arg(a, 0).(*value.Array)
	if !ok {
		return value.NewArray(nil), nil
	}
	return removeByValue(arr, arg(a, 1)), nil
}}

func asElements(v value.Value) []value.Value {
	if arr, ok := v.(*value.Array); ok {
		return arr.Elements
	}
	return nil
}

// biMerge concatenates any number of arrays, preserving duplicates.
func biMerge(call value.Caller, a []value.Value) (value.Value, error) {
	var out []value.Value
	for _, v := range a {
		out = append(out, asElements(v)...)
	}
	return value.NewArray(out), nil
}

// biDiff returns elements of the first array not present in the second.
func biDiff(call value.Caller, a []value.Value) (value.Value, error) {
	first := asElements(arg(a, 0))
	second := asElements(arg(a, 1))
	var out []value.Value
	for _, e := range first {
		if !containsValue(second, e) {
			out = append(out, e)
		}
	}
	return value.NewArray(out), nil
}

// biIntersect returns elements present in both arrays, deduplicated,
// preserving the first array's order.
func biIntersect(call value.Caller, a []value.Value) (value.Value, error) {
	first := asElements(arg(a, 0))
	second := asElements(arg(a, 1))
	var out []value.Value
	for _, e := range first {
		if containsValue(second, e) && !containsValue(out, e) {
			out = append(out, e)
		}
	}
	return value.NewArray(out), nil
}

// biUnion returns the deduplicated concatenation of all given arrays,
// preserving first-seen order.
func biUnion(call value.Caller, a []value.Value) (value.Value, error) {
	var out []value.Value
	for _, v := range a {
		for _, e := range asElements(v) {
			if !containsValue(out, e) {
				out = append(out, e)
			}
		}
	}
	return value.NewArray(out), nil
}

func containsValue(elems []value.Value, needle value.Value) bool {
	for _, e := range elems {
		if value.Equals(e, needle) {
			return true
		}
	}
	return false
}
