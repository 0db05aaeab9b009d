package builtins

import (
	"fmt"
	"math"

	"gridlang/internal/value"
)

func init() {
	register("len", biLen)
	register("keys", biKeys)
	register("values", biValues)
	register("range", biRange)
	register("assert", biAssert)
}

func biLen(call value.Caller, args []value.Value) (value.Value, error) {
	return float64(value.Len(arg(args, 0))), nil
}

func biKeys(call value.Caller, args []value.Value) (value.Value, error) {
	m, ok := arg(args, 0).(*value.Map)
	if !ok {
		return value.NewArray(nil), nil
	}
	ks := m.Keys()
	elems := make([]value.Value, len(ks))
	for i, k := range ks {
		elems[i] = k
	}
	return value.NewArray(elems), nil
}

func biValues(call value.Caller, args []value.Value) (value.Value, error) {
	m, ok := arg(args, 0).(*value.Map)
	if !ok {
		return value.NewArray(nil), nil
	}
	ks := m.Keys()
	elems := make([]value.Value, len(ks))
	for i, k := range ks {
		v, _ := m.Get(k)
		elems[i] = v
	}
	return value.NewArray(elems), nil
}

// biRange implements range(start, end?, step=1): with one argument it
// ranges [0, start); with two or three, [start, end) stepping by step.
func biRange(call value.Caller, args []value.Value) (value.Value, error) {
	var start, end, step float64
	step = 1
	switch {
	case len(args) >= 3 && !value.IsUndefined(args[2]) && !value.IsNull(args[2]):
		start, end, step = num(args[0]), num(args[1]), num(args[2])
	case len(args) >= 2 && !value.IsUndefined(args[1]) && !value.IsNull(args[1]):
		start, end = num(args[0]), num(args[1])
	default:
		start, end = 0, num(arg(args, 0))
	}
	if step == 0 {
		return nil, fmt.Errorf("range() step must not be zero")
	}
	var elems []value.Value
	if step > 0 {
		for v := start; v < end; v += step {
			elems = append(elems, v)
		}
	} else {
		for v := start; v > end; v += step {
			elems = append(elems, v)
		}
	}
	return value.NewArray(elems), nil
}

func biAssert(call value.Caller, args []value.Value) (value.Value, error) {
	cond := arg(args, 0)
	if value.Truthy(cond) {
		return value.Null, nil
	}
	msg := "Assertion failed"
	if len(args) > 1 && !value.IsUndefined(args[1]) {
		msg = str(args[1])
	}
	return nil, assertionError{msg}
}

// assertionError is recognized by the interpreter and re-raised as an
// AssertionError GridError carrying the call site's line/col.
type assertionError struct{ msg string }

func (e assertionError) Error() string { return e.msg }

func IsAssertionFailure(err error) (string, bool) {
	if ae, ok := err.(assertionError); ok {
		return ae.msg, true
	}
	return "", false
}

func isNaN(f float64) bool { return math.IsNaN(f) }
